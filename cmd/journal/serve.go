package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/trade-journal/internal/api"
	"github.com/yourusername/trade-journal/internal/cache"
	"github.com/yourusername/trade-journal/internal/coach"
	"github.com/yourusername/trade-journal/internal/config"
	"github.com/yourusername/trade-journal/internal/database"
	"github.com/yourusername/trade-journal/internal/engine"
	"github.com/yourusername/trade-journal/internal/health"
	"github.com/yourusername/trade-journal/internal/metrics"
	"github.com/yourusername/trade-journal/internal/repository"
	"github.com/yourusername/trade-journal/internal/scheduler"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, appLog, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg, appLog)
	},
}

func serve(parent context.Context, cfg *config.Config, appLog *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     Version,
	}).Info("Trade journal starting")

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	checkerCfg := health.Config{ServiceName: cfg.App.Name, Version: Version}

	var repos *repository.Repositories
	if cfg.Database.Enabled {
		db, err := database.Initialize(ctx, cfg, appLog)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()
		if repos, err = repository.NewRepositories(db); err != nil {
			return fmt.Errorf("failed to initialize repositories: %w", err)
		}
		checkerCfg.DB = db
		appLog.Info("Database connection established")
	} else {
		repos = repository.NewMemoryRepositories()
		appLog.Warn("Database disabled; trades are kept in memory only")
	}

	opts := engine.OptionsFromConfig(cfg)
	cooldowns, closeCooldowns := newCooldownStore(ctx, cfg, opts, appLog)
	defer closeCooldowns()

	eng := engine.New(engine.Dependencies{
		Repos:     repos,
		Cooldowns: cooldowns,
		Coach:     newCoach(cfg, appLog),
		Logger:    appLog,
	}, opts)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.NewScheduler(eng, appLog)
		if err := sched.ScheduleContextRefresh(cfg.Scheduler.RefreshSchedule); err != nil {
			return err
		}
		if err := sched.ScheduleCacheMaintenance(cfg.Scheduler.MaintenanceSchedule); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
	}

	server := api.NewServer(cfg, eng, health.NewChecker(checkerCfg), appLog)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api server failed: %w", err)
		}
	case <-ctx.Done():
		appLog.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if sched != nil {
		if err := sched.Stop(); err != nil {
			appLog.WithError(err).Error("Failed to stop scheduler")
		}
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("Failed to shut down API server")
	}

	appLog.Info("Trade journal stopped")
	return nil
}

// newCoach returns the rules coach, backed by the LLM client when enabled
func newCoach(cfg *config.Config, appLog *logrus.Logger) *coach.Coach {
	if !cfg.Coach.LLMEnabled {
		return coach.New(nil, appLog)
	}

	llmCfg := coach.DefaultLLMConfig()
	llmCfg.URL = cfg.Coach.LLMURL
	llmCfg.APIKey = cfg.Coach.APIKey
	if cfg.Coach.Model != "" {
		llmCfg.Model = cfg.Coach.Model
	}
	if cfg.Coach.TimeoutSeconds > 0 {
		llmCfg.Timeout = time.Duration(cfg.Coach.TimeoutSeconds) * time.Second
	}
	llmCfg.MaxRetries = cfg.Coach.MaxRetries
	if cfg.Coach.RateLimit > 0 {
		llmCfg.RateLimit = cfg.Coach.RateLimit
	}

	appLog.WithFields(logrus.Fields{
		"llm_url": cfg.Coach.LLMURL,
		"model":   llmCfg.Model,
	}).Info("LLM coach enabled")
	return coach.New(coach.NewLLMClient(llmCfg, appLog), appLog)
}

// newCooldownStore picks the cooldown backend. The returned func releases it.
func newCooldownStore(ctx context.Context, cfg *config.Config, opts engine.Options, appLog *logrus.Logger) (cache.CooldownStore, func()) {
	retention := 2 * opts.Patterns.Cooldown
	if cfg.Engine.CooldownStore != "redis" {
		return cache.NewMemoryCooldownStore(retention), func() {}
	}

	client := cache.NewRedisClient(cfg.Redis)
	store := cache.NewRedisCooldownStore(ctx, client, cfg.Redis.KeyPrefix, retention, appLog)
	return store, func() {
		if err := client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			appLog.WithError(err).Warn("Failed to close redis client")
		}
	}
}
