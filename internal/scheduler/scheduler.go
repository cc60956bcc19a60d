// Package scheduler runs periodic context refresh and cache maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ContextRefresher is the engine surface the scheduler drives
type ContextRefresher interface {
	// RefreshAll fully recomputes every cached context and returns how many
	// were rebuilt
	RefreshAll(ctx context.Context) (int, error)
	// EvictExpired drops expired cache entries and returns how many remain
	EvictExpired() int
}

// Scheduler manages scheduled engine jobs
type Scheduler struct {
	cron            *cron.Cron
	engine          ContextRefresher
	logger          *logrus.Entry
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	jobTimeout      time.Duration
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(engine ContextRefresher, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		engine:          engine,
		logger:          logger.WithField("component", "scheduler"),
		jobIDs:          make([]cron.EntryID, 0),
		jobTimeout:      4 * time.Minute,
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleContextRefresh schedules a full recompute of every cached context.
// Day-bucketed metrics drift under incremental updates until this runs.
func (s *Scheduler) ScheduleContextRefresh(cronExpression string) error {
	return s.schedule(cronExpression, "context refresh", s.refreshContexts)
}

// ScheduleCacheMaintenance schedules eviction of expired contexts
func (s *Scheduler) ScheduleCacheMaintenance(cronExpression string) error {
	return s.schedule(cronExpression, "cache maintenance", s.maintainCache)
}

func (s *Scheduler) schedule(cronExpression, name string, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, job)
	if err != nil {
		return fmt.Errorf("failed to add %s job: %w", name, err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Infof("Scheduled %s job", name)
	return nil
}

func (s *Scheduler) refreshContexts() {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	start := time.Now()
	refreshed, err := s.engine.RefreshAll(ctx)
	entry := s.logger.WithFields(logrus.Fields{
		"refreshed":   refreshed,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Error("Scheduled context refresh failed")
		return
	}
	entry.Info("Scheduled context refresh completed")
}

func (s *Scheduler) maintainCache() {
	remaining := s.engine.EvictExpired()
	s.logger.WithField("cached_contexts", remaining).Debug("Cache maintenance completed")
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.Infof("Scheduler started with %d jobs", len(s.jobIDs))

	return nil
}

// Stop stops the scheduler, waiting up to the graceful timeout for running jobs
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.isRunning = false
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("scheduler jobs did not finish within %s", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}
