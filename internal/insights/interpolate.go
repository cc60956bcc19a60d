package insights

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

const missingValue = "n/a"

var placeholder = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// Interpolate replaces every {{field}} with the matching value. Unknown
// fields render as "n/a".
func Interpolate(text string, values map[string]interface{}) string {
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		key := placeholder.FindStringSubmatch(match)[1]
		v, ok := values[key]
		if !ok || v == nil {
			return missingValue
		}
		return formatValue(v)
	})
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return missingValue
		}
		return strconv.FormatFloat(math.Round(x*100)/100, 'f', -1, 64)
	case float32:
		return formatValue(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		if x {
			return "yes"
		}
		return "no"
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
