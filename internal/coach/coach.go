package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Completer is the chat completion boundary
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Coach answers with the LLM when configured and the rule coach otherwise
type Coach struct {
	rules *RuleCoach
	llm   Completer
	log   *logrus.Entry
}

// New creates a coach. llm may be nil.
func New(llm Completer, logger *logrus.Logger) *Coach {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Coach{
		rules: NewRuleCoach(),
		llm:   llm,
		log:   logger.WithField("component", "coach"),
	}
}

// Ask answers question. LLM failures fall back to the rule coach.
func (c *Coach) Ask(ctx context.Context, question string, snap Snapshot) Response {
	fallback := c.rules.Respond(question, snap)
	if c.llm == nil {
		return fallback
	}

	answer, err := c.llm.Complete(ctx, SystemPrompt(snap.Personality), UserPrompt(question, snap))
	if err != nil {
		c.log.WithError(err).Warn("LLM coach failed, using rule-based answer")
		return fallback
	}

	return Response{
		Topic:       fallback.Topic,
		Answer:      strings.TrimSpace(answer),
		Suggestions: fallback.Suggestions,
		Source:      SourceLLM,
	}
}

// SystemPrompt sets the coach persona
func SystemPrompt(personality string) string {
	if _, ok := personalities[personality]; !ok {
		personality = "supportive"
	}
	return fmt.Sprintf(
		"You are a %s trading performance coach. Answer in at most four sentences, "+
			"refer only to the data provided and never give financial advice about specific securities.",
		personality)
}

type promptContext struct {
	TotalTrades    int      `json:"total_trades"`
	WinRate        float64  `json:"win_rate"`
	ProfitFactor   string   `json:"profit_factor"`
	Expectancy     float64  `json:"expectancy"`
	MaxDrawdownPct float64  `json:"max_drawdown_percent"`
	CurrentStreak  int      `json:"current_streak"`
	Regime         string   `json:"regime"`
	RiskScore      float64  `json:"risk_score"`
	ActivePatterns []string `json:"active_patterns"`
	TodayTrades    int      `json:"today_trades"`
	TodayPnL       float64  `json:"today_pnl"`
	RecentEmotions []string `json:"recent_emotions"`
}

// UserPrompt embeds a compact JSON view of the snapshot ahead of the question
func UserPrompt(question string, snap Snapshot) string {
	pc := promptContext{
		TotalTrades:    snap.Metrics.TotalTrades,
		WinRate:        snap.Metrics.WinRate,
		ProfitFactor:   snap.Metrics.ProfitFactor.String(),
		Expectancy:     snap.Metrics.Expectancy,
		MaxDrawdownPct: snap.Metrics.MaxDrawdownPercent,
		CurrentStreak:  snap.Metrics.CurrentStreak,
		Regime:         string(snap.Regime),
		RiskScore:      snap.RiskScore,
		TodayTrades:    len(snap.TodayTrades),
		TodayPnL:       snap.todayPnL(),
		RecentEmotions: snap.RecentEmotions,
	}
	for _, p := range snap.ActivePatterns {
		pc.ActivePatterns = append(pc.ActivePatterns, string(p.Type))
	}

	data, err := json.Marshal(pc)
	if err != nil {
		data = []byte("{}")
	}
	return fmt.Sprintf("Trader context: %s\n\nQuestion: %s", data, question)
}
