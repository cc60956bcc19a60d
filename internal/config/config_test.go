package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	validConfigPath     = "testdata/valid_config.yaml"
	expansionConfigPath = "testdata/expansion_config.yaml"
	testDBPassword      = "TEST_DB_PASSWORD"
	expandedSecretValue = "expanded_secret_value"
)

func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "trade-journal", cfg.App.Name)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 24, cfg.Patterns.CooldownHours)
	assert.Equal(t, 3, cfg.Patterns.TiltMinLosses)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "0.0.0.0:8080", cfg.ServerAddress())
	assert.Equal(t, 300, int(cfg.ContextTTL().Seconds()))

	require.NoError(t, Validate(cfg))
}

func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load("testdata/nonexistent_config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoadExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv(testDBPassword, expandedSecretValue)

	cfg, err := Load(expansionConfigPath)
	require.NoError(t, err)
	assert.Equal(t, expandedSecretValue, cfg.Database.Password)
	assert.Equal(t, "conservative", cfg.Engine.DefaultRiskTolerance)
}

func TestLoadWithDefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "trade-journal", cfg.App.Name)
	assert.Equal(t, 300, cfg.Engine.ContextTTLSeconds)
	assert.Equal(t, 100, cfg.Engine.RecentWindow)
	assert.Equal(t, "memory", cfg.Engine.CooldownStore)
	assert.Equal(t, 24, cfg.Patterns.CooldownHours)
	assert.False(t, cfg.Database.Enabled)
	require.NoError(t, Validate(cfg))
}

func TestLoadWithDefaultsEnvOverride(t *testing.T) {
	t.Setenv("TRADE_JOURNAL_SERVER_PORT", "9090")

	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestValidateRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "invalid environment",
			mutate:  func(c *Config) { c.App.Environment = "invalid" },
			wantErr: "development, staging, production",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.App.LogLevel = "verbose" },
			wantErr: "debug, info, warn, error",
		},
		{
			name:    "invalid risk tolerance",
			mutate:  func(c *Config) { c.Engine.DefaultRiskTolerance = "yolo" },
			wantErr: "conservative, moderate, aggressive",
		},
		{
			name:    "invalid cooldown store",
			mutate:  func(c *Config) { c.Engine.CooldownStore = "disk" },
			wantErr: "memory, redis",
		},
		{
			name: "redis store without addr",
			mutate: func(c *Config) {
				c.Engine.CooldownStore = "redis"
				c.Redis.Addr = ""
			},
			wantErr: "redis addr is required",
		},
		{
			name: "llm without url",
			mutate: func(c *Config) {
				c.Coach.LLMEnabled = true
				c.Coach.LLMURL = ""
			},
			wantErr: "llm_url is required",
		},
		{
			name: "production without ssl",
			mutate: func(c *Config) {
				c.App.Environment = "production"
			},
			wantErr: "requires SSL mode",
		},
		{
			name:    "idle above max connections",
			mutate:  func(c *Config) { c.Database.MaxIdleConnections = 50 },
			wantErr: "max_idle_connections",
		},
		{
			name:    "win rate gap above one",
			mutate:  func(c *Config) { c.Patterns.MondayWinRateGap = 1.5 },
			wantErr: "MondayWinRateGap",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(validConfigPath)
			require.NoError(t, err)

			tt.mutate(cfg)
			err = Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: 5433, Name: "journal", User: "u", Password: "p", SSLMode: "require",
	}}
	assert.Equal(t, "postgres://u:p@db:5433/journal?sslmode=require", cfg.GetDatabaseDSN())
}

func TestParseSecretData(t *testing.T) {
	out := &secretsmanager.GetSecretValueOutput{
		SecretString: aws.String(`{"database_password":"db-secret","coach_api_key":"sk-test"}`),
	}
	secrets, err := parseSecretData(out)
	require.NoError(t, err)

	cfg := &Config{}
	cfg.Redis.Password = "keep"
	overlaySecretsOnConfig(cfg, secrets)

	assert.Equal(t, "db-secret", cfg.Database.Password)
	assert.Equal(t, "sk-test", cfg.Coach.APIKey)
	assert.Equal(t, "keep", cfg.Redis.Password)

	_, err = parseSecretData(&secretsmanager.GetSecretValueOutput{})
	assert.ErrorIs(t, err, errNoSecretDataFound)
}

func TestApplySecretsFromEnvDisabled(t *testing.T) {
	os.Unsetenv("AWS_SECRETS_ENABLED")
	require.NoError(t, ApplySecretsFromEnv(context.Background(), &Config{}))
}

func TestApplySecretsFromEnvRequiresRegion(t *testing.T) {
	t.Setenv("AWS_SECRETS_ENABLED", "true")
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_SECRET_NAME", "")
	require.Error(t, ApplySecretsFromEnv(context.Background(), &Config{}))
}
