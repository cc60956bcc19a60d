// Package config provides configuration management for the trade journal service.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Engine    EngineConfig    `mapstructure:"engine" validate:"required"`
	Patterns  PatternConfig   `mapstructure:"patterns"`
	Coach     CoachConfig     `mapstructure:"coach"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Features  FeaturesConfig  `mapstructure:"features"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration. When disabled
// the service keeps trades in memory.
type DatabaseConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"omitempty,gt=0"`
}

// RedisConfig represents the Redis connection used for shared cooldown state
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db" validate:"gte=0"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	Host                string   `mapstructure:"host"`
	Port                int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeoutSeconds  int      `mapstructure:"read_timeout_seconds" validate:"gt=0"`
	WriteTimeoutSeconds int      `mapstructure:"write_timeout_seconds" validate:"gt=0"`
	AllowedOrigins      []string `mapstructure:"allowed_origins"`
}

// EngineConfig represents the intelligence engine configuration
type EngineConfig struct {
	ContextTTLSeconds    int    `mapstructure:"context_ttl_seconds" validate:"required,gt=0"`
	TradeLimit           int    `mapstructure:"trade_limit" validate:"required,gt=0"`
	RecentWindow         int    `mapstructure:"recent_window" validate:"required,gt=0"`
	CooldownStore        string `mapstructure:"cooldown_store" validate:"required,cooldownstore"`
	DefaultRiskTolerance string `mapstructure:"default_risk_tolerance" validate:"required,risktolerance"`
	PersistPatterns      bool   `mapstructure:"persist_patterns"`
	PersistInsights      bool   `mapstructure:"persist_insights"`
}

// PatternConfig holds detector thresholds. Zero values keep the built-in
// defaults.
type PatternConfig struct {
	CooldownHours            int     `mapstructure:"cooldown_hours" validate:"gte=0"`
	MondayMinTrades          int     `mapstructure:"monday_min_trades" validate:"gte=0"`
	OtherDayMinTrades        int     `mapstructure:"other_day_min_trades" validate:"gte=0"`
	MondayWinRateGap         float64 `mapstructure:"monday_win_rate_gap" validate:"gte=0,lte=1"`
	FridayMinTrades          int     `mapstructure:"friday_min_trades" validate:"gte=0"`
	FridayAfternoonMinTrades int     `mapstructure:"friday_afternoon_min_trades" validate:"gte=0"`
	FridayAfternoonHour      int     `mapstructure:"friday_afternoon_hour" validate:"gte=0,lte=23"`
	FridayWinRateGap         float64 `mapstructure:"friday_win_rate_gap" validate:"gte=0,lte=1"`
	NewsMaxDurationMinutes   int     `mapstructure:"news_max_duration_minutes" validate:"gte=0"`
	DegradationMinTrades     int     `mapstructure:"degradation_min_trades" validate:"gte=0"`
	DegradationWinRateDrop   float64 `mapstructure:"degradation_win_rate_drop" validate:"gte=0,lte=1"`
	StyleDriftWindow         int     `mapstructure:"style_drift_window" validate:"gte=0"`
	StyleDriftMinOffStyle    int     `mapstructure:"style_drift_min_off_style" validate:"gte=0"`
	RevengeWindowMinutes     int     `mapstructure:"revenge_window_minutes" validate:"gte=0"`
	RevengeSizeMultiplier    float64 `mapstructure:"revenge_size_multiplier" validate:"gte=0"`
	OvertradingMultiplier    float64 `mapstructure:"overtrading_multiplier" validate:"gte=0"`
	OvertradingMinDaily      int     `mapstructure:"overtrading_min_daily" validate:"gte=0"`
	OvertradingMinDays       int     `mapstructure:"overtrading_min_days" validate:"gte=0"`
	TiltMinLosses            int     `mapstructure:"tilt_min_losses" validate:"gte=0"`
	TiltMaxGapMinutes        int     `mapstructure:"tilt_max_gap_minutes" validate:"gte=0"`
	LossAversionMinTrades    int     `mapstructure:"loss_aversion_min_trades" validate:"gte=0"`
	LossAversionHoldRatio    float64 `mapstructure:"loss_aversion_hold_ratio" validate:"gte=0"`
	SizingMinTrades          int     `mapstructure:"sizing_min_trades" validate:"gte=0"`
	SizingMultiplier         float64 `mapstructure:"sizing_multiplier" validate:"gte=0"`
	PlanWindow               int     `mapstructure:"plan_window" validate:"gte=0"`
	PlanMinTracked           int     `mapstructure:"plan_min_tracked" validate:"gte=0"`
	PlanBrokenRate           float64 `mapstructure:"plan_broken_rate" validate:"gte=0,lte=1"`
}

// CoachConfig represents the coach configuration
type CoachConfig struct {
	DefaultPersonality string  `mapstructure:"default_personality" validate:"omitempty,oneof=supportive strict analytical"`
	LLMEnabled         bool    `mapstructure:"llm_enabled"`
	LLMURL             string  `mapstructure:"llm_url" validate:"omitempty,url"`
	APIKey             string  `mapstructure:"api_key"`
	Model              string  `mapstructure:"model"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds" validate:"gte=0"`
	MaxRetries         int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit          float64 `mapstructure:"rate_limit" validate:"gte=0"`
}

// SchedulerConfig represents periodic background work
type SchedulerConfig struct {
	Enabled             bool   `mapstructure:"enabled"`
	RefreshSchedule     string `mapstructure:"refresh_schedule"`
	MaintenanceSchedule string `mapstructure:"maintenance_schedule"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// FeaturesConfig represents feature flags
type FeaturesConfig struct {
	AdvancedAnalyticsEnabled bool `mapstructure:"advanced_analytics_enabled"`
	AnomalyDetectionEnabled  bool `mapstructure:"anomaly_detection_enabled"`
	MLInsightsEnabled        bool `mapstructure:"ml_insights_enabled"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// ContextTTL returns how long a built context stays cached
func (c *Config) ContextTTL() time.Duration {
	return time.Duration(c.Engine.ContextTTLSeconds) * time.Second
}

// ServerAddress returns the listen address of the HTTP API
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
