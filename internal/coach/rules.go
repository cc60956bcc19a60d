package coach

import (
	"fmt"
	"strings"

	"github.com/yourusername/trade-journal/internal/models"
)

const (
	TopicPsychology = "psychology"
	TopicRisk       = "risk"
	TopicStrategy   = "strategy"
	TopicSession    = "session"
	TopicTiming     = "timing"
	TopicGeneral    = "general"
)

// Topics are matched in order; the first keyword hit wins
var topicKeywords = []struct {
	topic    string
	keywords []string
}{
	{TopicPsychology, []string{"tilt", "angry", "emotion", "frustrat", "revenge", "feel", "stress", "fomo"}},
	{TopicRisk, []string{"risk", "drawdown", "size", "sizing", "stop", "lose", "losing"}},
	{TopicStrategy, []string{"strategy", "setup", "edge", "system"}},
	{TopicSession, []string{"today", "session", "right now", "this morning"}},
	{TopicTiming, []string{"time", "hour", "when", "monday", "friday", "news"}},
}

type personality struct {
	opener string
	closer string
}

var personalities = map[string]personality{
	"supportive": {
		opener: "You're doing the work by asking.",
		closer: "One good decision at a time.",
	},
	"strict": {
		opener: "Straight answer.",
		closer: "Follow the plan. No exceptions.",
	},
	"analytical": {
		opener: "Here is what the numbers say.",
		closer: "Re-check these figures after your next ten trades.",
	},
}

// ClassifyTopic routes a question to a topic by keyword
func ClassifyTopic(question string) string {
	q := strings.ToLower(question)
	for _, entry := range topicKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(q, kw) {
				return entry.topic
			}
		}
	}
	return TopicGeneral
}

// RuleCoach produces deterministic template answers
type RuleCoach struct{}

// NewRuleCoach creates a rule coach
func NewRuleCoach() *RuleCoach {
	return &RuleCoach{}
}

// Respond answers question from the snapshot alone
func (c *RuleCoach) Respond(question string, snap Snapshot) Response {
	topic := ClassifyTopic(question)

	var body string
	var suggestions []string
	switch topic {
	case TopicPsychology:
		body, suggestions = psychologyAnswer(snap)
	case TopicRisk:
		body, suggestions = riskAnswer(snap)
	case TopicStrategy:
		body, suggestions = strategyAnswer(snap)
	case TopicSession:
		body, suggestions = sessionAnswer(snap)
	case TopicTiming:
		body, suggestions = timingAnswer(snap)
	default:
		body, suggestions = generalAnswer(snap)
	}

	p, ok := personalities[snap.Personality]
	if !ok {
		p = personalities["supportive"]
	}

	return Response{
		Topic:       topic,
		Answer:      strings.Join([]string{p.opener, body, p.closer}, " "),
		Suggestions: suggestions,
		Source:      SourceRules,
	}
}

func psychologyAnswer(s Snapshot) (string, []string) {
	if p, ok := s.hasPattern(models.PatternTilt, models.PatternRevengeTrading); ok {
		return fmt.Sprintf("Your recent trades show %s (severity %d of 10). This is the moment to stop, not to win it back.",
				strings.ReplaceAll(string(p.Type), "_", " "), p.Severity),
			[]string{"Close the platform for at least 30 minutes", "Write down what triggered the last entry"}
	}
	if s.Metrics.CurrentStreak <= -3 {
		return fmt.Sprintf("You are on a %d-trade losing streak. Streaks feel personal but they are part of the distribution.",
				-s.Metrics.CurrentStreak),
			[]string{"Cut size in half until the next winner"}
	}
	if len(s.RecentEmotions) > 0 {
		return fmt.Sprintf("Your recent journal entries mention feeling %s. Name the emotion before every entry.",
				strings.Join(s.RecentEmotions, ", ")),
			[]string{"Add an emotion check to your pre-trade checklist"}
	}
	return "No emotional red flags in your recent trades. Keep journaling how you feel before each entry.", nil
}

func riskAnswer(s Snapshot) (string, []string) {
	m := s.Metrics
	text := fmt.Sprintf("Your maximum drawdown is %.2f (%.1f%% of peak) and the current drawdown is %.2f. Risk score: %.0f of 100.",
		m.MaxDrawdown, m.MaxDrawdownPercent*100, m.CurrentDrawdown, s.RiskScore)
	var suggestions []string
	if s.RiskScore >= 70 {
		text += " That is elevated; trade smaller until it comes down."
		suggestions = append(suggestions, "Reduce position size by half")
	}
	if _, ok := s.hasPattern(models.PatternPositionSizingError); ok {
		suggestions = append(suggestions, "Use the position size calculator before every trade")
	}
	if m.ProfitFactor.Float() < 1 && m.TotalTrades > 0 {
		suggestions = append(suggestions, "Review every losing trade from the last week")
	}
	return text, suggestions
}

func strategyAnswer(s Snapshot) (string, []string) {
	if p, ok := s.hasPattern(models.PatternStrategyDegradation); ok {
		name, _ := p.Metadata["strategy"].(string)
		if name == "" {
			name = "One of your strategies"
		}
		return fmt.Sprintf("%s is losing its edge: recent results are clearly worse than earlier ones.", name),
			[]string{"Paper trade it until it recovers", "Compare it against your other strategies"}
	}
	m := s.Metrics
	return fmt.Sprintf("Across %d trades your expectancy is %.2f per trade with a profit factor of %s.",
		m.TotalTrades, m.Expectancy, m.ProfitFactor.String()), nil
}

func sessionAnswer(s Snapshot) (string, []string) {
	n := len(s.TodayTrades)
	if n == 0 {
		return "You have not traded yet today. Start with your A+ setups only.", nil
	}
	pnl := s.todayPnL()
	text := fmt.Sprintf("Today: %d trades, net %.2f.", n, pnl)
	var suggestions []string
	if _, ok := s.hasPattern(models.PatternOvertrading); ok {
		text += " That is well above your usual pace."
		suggestions = append(suggestions, "Stop taking new trades today")
	}
	if pnl < 0 {
		suggestions = append(suggestions, "Respect your daily loss limit")
	}
	return text, suggestions
}

func timingAnswer(s Snapshot) (string, []string) {
	if p, ok := s.hasPattern(models.PatternMondaySyndrome, models.PatternFridayCarelessness, models.PatternNewsTrading); ok {
		return fmt.Sprintf("Timing is a factor: %s was flagged in your recent trades.",
				strings.ReplaceAll(string(p.Type), "_", " ")),
			[]string{"Block the weak time slots in your trading plan"}
	}
	return fmt.Sprintf("No timing problems detected. Your recent regime is %s.",
		strings.ReplaceAll(string(s.Regime), "_", " ")), nil
}

func generalAnswer(s Snapshot) (string, []string) {
	m := s.Metrics
	if m.TotalTrades == 0 {
		return "There are no trades in your journal yet. Log a few trades and ask again.", nil
	}
	text := fmt.Sprintf("You have %d trades with a %.0f%% win rate and total P&L of %.2f.",
		m.TotalTrades, m.WinRate*100, m.TotalPnL)
	var suggestions []string
	for _, in := range s.TopInsights {
		suggestions = append(suggestions, in.Title)
		if len(suggestions) == 3 {
			break
		}
	}
	return text, suggestions
}
