package engine

import (
	"time"

	"github.com/yourusername/trade-journal/internal/config"
	"github.com/yourusername/trade-journal/internal/models"
	"github.com/yourusername/trade-journal/internal/patterns"
)

// Options tunes the engine
type Options struct {
	ContextTTL           time.Duration
	TradeLimit           int
	RecentWindow         int
	DefaultRiskTolerance models.RiskTolerance
	DefaultPersonality   string

	PersistPatterns bool
	PersistInsights bool

	AdvancedAnalytics bool
	AnomalyDetection  bool
	MLInsights        bool

	Patterns patterns.Config
}

// DefaultOptions returns the options used when no configuration is loaded
func DefaultOptions() Options {
	return Options{
		ContextTTL:           5 * time.Minute,
		TradeLimit:           1000,
		RecentWindow:         100,
		DefaultRiskTolerance: models.RiskModerate,
		DefaultPersonality:   "supportive",
		PersistPatterns:      true,
		PersistInsights:      true,
		AdvancedAnalytics:    true,
		AnomalyDetection:     true,
		MLInsights:           true,
		Patterns:             patterns.DefaultConfig(),
	}
}

// OptionsFromConfig maps loaded configuration onto engine options, keeping
// defaults for unset values
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	if cfg.Engine.ContextTTLSeconds > 0 {
		opts.ContextTTL = cfg.ContextTTL()
	}
	if cfg.Engine.TradeLimit > 0 {
		opts.TradeLimit = cfg.Engine.TradeLimit
	}
	if cfg.Engine.RecentWindow > 0 {
		opts.RecentWindow = cfg.Engine.RecentWindow
	}
	if cfg.Engine.DefaultRiskTolerance != "" {
		opts.DefaultRiskTolerance = models.RiskTolerance(cfg.Engine.DefaultRiskTolerance)
	}
	if cfg.Coach.DefaultPersonality != "" {
		opts.DefaultPersonality = cfg.Coach.DefaultPersonality
	}
	opts.PersistPatterns = cfg.Engine.PersistPatterns
	opts.PersistInsights = cfg.Engine.PersistInsights
	opts.AdvancedAnalytics = cfg.Features.AdvancedAnalyticsEnabled
	opts.AnomalyDetection = cfg.Features.AnomalyDetectionEnabled
	opts.MLInsights = cfg.Features.MLInsightsEnabled
	opts.Patterns = patterns.FromConfig(cfg.Patterns)
	return opts
}
