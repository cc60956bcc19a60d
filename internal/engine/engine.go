// Package engine ties the analytics, detectors and generators into a cached
// per-profile UnifiedContext. The engine is the only component that performs
// I/O or holds mutable state.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/yourusername/trade-journal/internal/analytics"
	"github.com/yourusername/trade-journal/internal/anomaly"
	"github.com/yourusername/trade-journal/internal/cache"
	"github.com/yourusername/trade-journal/internal/coach"
	"github.com/yourusername/trade-journal/internal/insights"
	"github.com/yourusername/trade-journal/internal/logger"
	"github.com/yourusername/trade-journal/internal/metrics"
	"github.com/yourusername/trade-journal/internal/models"
	"github.com/yourusername/trade-journal/internal/patterns"
	"github.com/yourusername/trade-journal/internal/prediction"
	"github.com/yourusername/trade-journal/internal/regime"
	"github.com/yourusername/trade-journal/internal/repository"
)

// ErrContextUnavailable wraps trade source and preferences failures
var ErrContextUnavailable = errors.New("user context unavailable")

const (
	historyWindow       = 30 * 24 * time.Hour
	coachEmotionLimit   = 5
	coachInsightLimit   = 3
	criticalPatternFrom = 8
)

// Dependencies are the collaborators an Engine needs. Repos is required;
// every other field has a working default.
type Dependencies struct {
	Repos     *repository.Repositories
	Cooldowns cache.CooldownStore
	Coach     *coach.Coach
	Logger    *logrus.Logger
	Clock     func() time.Time
}

// Engine builds, caches and incrementally updates UnifiedContexts
type Engine struct {
	repos     *repository.Repositories
	cooldowns cache.CooldownStore
	coach     *coach.Coach
	opts      Options
	now       func() time.Time

	contexts *gocache.Cache
	group    singleflight.Group

	calculator *analytics.Calculator
	extractor  *analytics.FeatureExtractor
	anomalies  *anomaly.Detector
	generator  *insights.Generator
	predictor  *prediction.Predictor
	sizer      *prediction.PositionSizer

	log   *logger.EngineLogger
	audit *logger.AuditLogger
}

// New creates an engine
func New(deps Dependencies, opts Options) *Engine {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = logrus.New()
		deps.Logger.SetOutput(io.Discard)
	}
	if deps.Cooldowns == nil {
		deps.Cooldowns = cache.NewMemoryCooldownStore(2 * opts.Patterns.Cooldown)
	}
	if deps.Coach == nil {
		deps.Coach = coach.New(nil, deps.Logger)
	}
	if opts.ContextTTL <= 0 {
		opts.ContextTTL = DefaultOptions().ContextTTL
	}

	return &Engine{
		repos:      deps.Repos,
		cooldowns:  deps.Cooldowns,
		coach:      deps.Coach,
		opts:       opts,
		now:        deps.Clock,
		contexts:   gocache.New(opts.ContextTTL, 2*opts.ContextTTL),
		calculator: analytics.NewCalculator(deps.Clock),
		extractor:  analytics.NewFeatureExtractor(deps.Clock),
		anomalies:  anomaly.NewDetector(deps.Clock),
		generator:  insights.NewGenerator(deps.Clock),
		predictor:  prediction.NewPredictor(),
		sizer:      prediction.NewPositionSizer(),
		log:        logger.NewEngineLogger(deps.Logger),
		audit:      logger.NewAuditLogger(deps.Logger),
	}
}

func contextKey(userID, profileID uuid.UUID) string {
	return userID.String() + ":" + profileID.String()
}

// Initialize returns the cached context of a profile, building it on a miss.
// Concurrent misses for the same profile share a single build.
func (e *Engine) Initialize(ctx context.Context, userID, profileID uuid.UUID) (*UnifiedContext, error) {
	key := contextKey(userID, profileID)
	if v, ok := e.contexts.Get(key); ok {
		metrics.RecordCacheHit()
		return v.(*UnifiedContext), nil
	}
	metrics.RecordCacheMiss()

	v, err, _ := e.group.Do(key, func() (interface{}, error) {
		if v, ok := e.contexts.Get(key); ok {
			return v, nil
		}
		uc, err := e.build(ctx, userID, profileID)
		if err != nil {
			return nil, err
		}
		e.contexts.SetDefault(key, uc)
		metrics.UpdateCachedContexts(e.contexts.ItemCount())
		return uc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*UnifiedContext), nil
}

// build runs the full pipeline over the stored trade history
func (e *Engine) build(ctx context.Context, userID, profileID uuid.UUID) (*UnifiedContext, error) {
	start := time.Now()

	trades, err := e.repos.Trade.GetByProfile(ctx, userID, profileID, e.opts.TradeLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load trades: %w", ErrContextUnavailable, err)
	}
	trades = analytics.SortChronological(trades)

	prefs, err := e.loadPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	uc := &UnifiedContext{
		UserID:       userID,
		ProfileID:    profileID,
		Preferences:  prefs,
		Trades:       trades,
		RecentTrades: tail(trades, e.opts.RecentWindow),
		TodayTrades:  tradesOnDay(trades, analytics.DayOf(now)),
		BuiltAt:      now,
		UpdatedAt:    now,
	}

	uc.Metrics = e.calculator.Calculate(trades)
	e.refreshDerived(uc)
	if e.opts.AnomalyDetection {
		uc.anomalyInsights = e.anomalies.Detect(trades, &uc.Metrics)
	}

	uc.History = e.loadHistory(ctx, userID, profileID, now)

	state := seedCooldowns(e.loadCooldowns(ctx, userID, profileID), uc.History)
	detector := patterns.NewDetector(e.opts.Patterns, prefs, e.now)
	found, state := detector.DetectAll(trades, state)
	e.saveCooldowns(ctx, userID, profileID, state)

	newInsights := e.applyPatterns(uc, detector, found)
	e.persist(ctx, uc, found, newInsights)

	duration := time.Since(start)
	metrics.RecordContextBuild(duration.Seconds())
	metrics.UpdateRiskScore(userID.String(), uc.RiskScore)
	e.log.LogContextBuilt(userID.String(), len(trades), len(uc.ActivePatterns), len(uc.rankedInsights()), duration)

	return uc, nil
}

// OnNewTrade folds a freshly recorded trade into the cached context of its
// profile, building the context first when none is cached. It returns the
// patterns and insights the trade produced.
func (e *Engine) OnNewTrade(ctx context.Context, trade models.Trade) (*TradeUpdate, error) {
	if trade.UserID == uuid.Nil {
		return nil, models.ErrMissingUserID
	}
	start := time.Now()

	uc, err := e.lockCurrent(ctx, trade.UserID, trade.ProfileID)
	if err != nil {
		return nil, err
	}
	if uc.containsTrade(trade.ID) {
		// the build already read it from the trade source
		uc.mu.Unlock()
		return &TradeUpdate{Dashboard: uc.Snapshot()}, nil
	}
	// cooldown state is loaded and saved under uc.mu
	state := e.loadCooldowns(ctx, trade.UserID, trade.ProfileID)

	now := e.now()
	prior := uc.Trades

	uc.Trades = append(append([]models.Trade(nil), prior...), trade)
	uc.TodayTrades = tradesOnDay(uc.Trades, analytics.DayOf(now))
	uc.SessionTrades = append(uc.SessionTrades, trade)
	uc.UpdatedAt = now

	if trade.HasTimestamp() && trade.ClosedAt().Before(uc.Metrics.PeriodEnd) {
		// a backdated trade invalidates the running streak and drawdown
		uc.Trades = analytics.SortChronological(uc.Trades)
		uc.RecentTrades = tail(uc.Trades, e.opts.RecentWindow)
		uc.Metrics = e.calculator.Calculate(uc.Trades)
	} else {
		uc.RecentTrades = tail(append(uc.RecentTrades, trade), e.opts.RecentWindow)
		uc.Metrics = e.calculator.UpdateIncremental(uc.Metrics, trade)
	}
	e.refreshDerived(uc)

	var newInsights []models.Insight
	if e.opts.AnomalyDetection && len(prior) > 0 {
		if insight, ok := e.anomalies.Check(trade, anomaly.NewBaseline(prior)); ok {
			uc.anomalyInsights = append(uc.anomalyInsights, insight)
			newInsights = append(newInsights, insight)
		}
	}

	detector := patterns.NewDetector(e.opts.Patterns, uc.Preferences, e.now)
	found, state := detector.DetectIncremental(trade, uc.RecentTrades, state)
	newInsights = append(e.applyPatterns(uc, detector, found), newInsights...)
	e.saveCooldowns(ctx, trade.UserID, trade.ProfileID, state)
	uc.mu.Unlock()

	e.persist(ctx, uc, found, newInsights)

	duration := time.Since(start)
	metrics.RecordIncrementalUpdate(duration.Seconds())
	e.log.LogIncrementalUpdate(trade.UserID.String(), trade.ID.String(), len(found), duration)

	dashboard := uc.Snapshot()
	metrics.UpdateRiskScore(trade.UserID.String(), dashboard.RiskScore)
	return &TradeUpdate{
		NewPatterns: found,
		NewInsights: newInsights,
		Dashboard:   dashboard,
	}, nil
}

// lockCurrent returns the cached context of a profile with uc.mu held for
// writing. A context retired by RefreshAll while the caller waited for the
// lock is skipped in favor of its replacement.
func (e *Engine) lockCurrent(ctx context.Context, userID, profileID uuid.UUID) (*UnifiedContext, error) {
	for {
		uc, err := e.Initialize(ctx, userID, profileID)
		if err != nil {
			return nil, err
		}
		uc.mu.Lock()
		if !uc.retired {
			return uc, nil
		}
		uc.mu.Unlock()
	}
}

// TradeUpdate is the result of OnNewTrade
type TradeUpdate struct {
	NewPatterns []models.DetectedPattern `json:"new_patterns"`
	NewInsights []models.Insight         `json:"new_insights"`
	Dashboard   *Dashboard               `json:"dashboard"`
}

// RecordTrade stores a trade in the trade source and folds it into the context
func (e *Engine) RecordTrade(ctx context.Context, trade models.Trade) (*TradeUpdate, error) {
	if trade.UserID == uuid.Nil {
		return nil, models.ErrMissingUserID
	}
	if trade.ID == uuid.Nil {
		trade.ID = uuid.New()
	}
	if trade.CreatedAt.IsZero() {
		trade.CreatedAt = e.now().UTC()
	}
	if err := e.repos.Trade.Create(ctx, &trade); err != nil {
		return nil, fmt.Errorf("failed to record trade: %w", err)
	}
	e.audit.LogTradeRecorded(trade.ID.String(), trade.UserID.String(), trade.Symbol, string(trade.Side), trade.PnL, trade.ClosedAt())

	return e.OnNewTrade(ctx, trade)
}

// refreshDerived recomputes everything derived from Trades and Metrics.
// Callers hold uc.mu or own uc exclusively.
func (e *Engine) refreshDerived(uc *UnifiedContext) {
	uc.Features = e.extractor.ExtractFeatures(uc.UserID, uc.ProfileID, uc.Trades, &uc.Metrics)
	uc.Strategies = e.calculator.CompareStrategies(uc.Trades)
	uc.Regime = regime.Analyze(uc.Trades, &uc.Metrics)
	if e.opts.AdvancedAnalytics {
		adv := e.calculator.CalculateAdvanced(uc.Trades)
		uc.Advanced = &adv
	}
}

// applyPatterns merges found into the active set, refreshes interactions,
// insights and the risk score, and returns the insights for found.
// Callers hold uc.mu or own uc exclusively.
func (e *Engine) applyPatterns(uc *UnifiedContext, detector *patterns.Detector, found []models.DetectedPattern) []models.Insight {
	since := e.now().Add(-e.opts.Patterns.Cooldown)
	carried := make([]models.DetectedPattern, 0, len(uc.ActivePatterns)+len(uc.History))
	carried = append(carried, uc.ActivePatterns...)
	carried = append(carried, uc.History...)
	uc.ActivePatterns = mergeActive(carried, found, since)
	uc.Interactions = detector.DetectInteractions(uc.ActivePatterns)

	history := insights.Context{History: uc.History}
	fresh := make(map[uuid.UUID]bool, len(found))
	for i := range found {
		fresh[found[i].ID] = true
	}

	uc.patternInsights = nil
	var newInsights []models.Insight
	for i := range uc.ActivePatterns {
		insight := e.generator.FromPattern(uc.ActivePatterns[i], history)
		uc.patternInsights = append(uc.patternInsights, insight)
		if fresh[uc.ActivePatterns[i].ID] {
			newInsights = append(newInsights, insight)
		}
	}
	uc.History = append(uc.History, found...)

	if e.opts.MLInsights {
		uc.mlInsights = e.generator.GenerateML(uc.Features, &uc.Metrics, uc.ActivePatterns)
	}

	uc.RiskScore = ContextRiskScore(&uc.Metrics, uc.ActivePatterns, uc.Interactions)

	for i := range found {
		p := &found[i]
		metrics.RecordPattern(string(p.Type), SeverityLabel(p.Severity))
		e.log.LogPatternDetected(uc.UserID.String(), string(p.Type), SeverityLabel(p.Severity), p.Confidence, p.EstimatedCost)
		if p.Severity >= criticalPatternFrom {
			e.audit.LogCriticalPattern(uc.UserID.String(), string(p.Type), len(p.TradesAffected), p.EstimatedCost)
		}
	}
	for i := range newInsights {
		metrics.RecordInsight(string(newInsights[i].Category))
	}

	return newInsights
}

// Dashboard returns a snapshot of the profile's context
func (e *Engine) Dashboard(ctx context.Context, userID, profileID uuid.UUID) (*Dashboard, error) {
	uc, err := e.Initialize(ctx, userID, profileID)
	if err != nil {
		return nil, err
	}
	return uc.Snapshot(), nil
}

// Predict estimates the outcome of a candidate trade from the profile's history
func (e *Engine) Predict(ctx context.Context, userID, profileID uuid.UUID, setup models.TradeSetup) (models.TradePrediction, error) {
	uc, err := e.Initialize(ctx, userID, profileID)
	if err != nil {
		return models.TradePrediction{}, err
	}

	uc.mu.RLock()
	pred := e.predictor.Predict(setup, uc.RecentTrades, &uc.Features, &uc.Metrics)
	uc.mu.RUnlock()

	pred.UserID = userID
	metrics.RecordPrediction(string(pred.Recommendation))
	e.log.LogPrediction(userID.String(), setup.Symbol, string(pred.Recommendation), pred.WinProbability, pred.RiskScore)
	return pred, nil
}

// PositionSize sizes a trade. Zero account size, risk tolerance, win rate and
// risk-reward are filled from the profile's preferences and metrics.
func (e *Engine) PositionSize(ctx context.Context, userID, profileID uuid.UUID, req prediction.SizingRequest) (prediction.SizingResult, error) {
	uc, err := e.Initialize(ctx, userID, profileID)
	if err != nil {
		return prediction.SizingResult{}, err
	}

	uc.mu.RLock()
	if req.AccountSize <= 0 {
		req.AccountSize = uc.Preferences.AccountSize
	}
	if req.RiskTolerance == "" {
		req.RiskTolerance = uc.Preferences.RiskTolerance
	}
	if req.WinRate <= 0 {
		req.WinRate = uc.Metrics.WinRate
	}
	if req.AvgRiskReward <= 0 {
		req.AvgRiskReward = uc.Metrics.AvgRiskReward
	}
	uc.mu.RUnlock()

	return e.sizer.Size(req), nil
}

// Ask answers a coach question against the profile's context
func (e *Engine) Ask(ctx context.Context, userID, profileID uuid.UUID, question string) (coach.Response, error) {
	uc, err := e.Initialize(ctx, userID, profileID)
	if err != nil {
		return coach.Response{}, err
	}

	snap := e.coachSnapshot(uc)
	resp := e.coach.Ask(ctx, question, snap)
	metrics.RecordCoachResponse(resp.Source)
	return resp, nil
}

func (e *Engine) coachSnapshot(uc *UnifiedContext) coach.Snapshot {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	personality := uc.Preferences.CoachPersonality
	if personality == "" {
		personality = e.opts.DefaultPersonality
	}
	top := uc.rankedInsights()
	if len(top) > coachInsightLimit {
		top = top[:coachInsightLimit]
	}

	return coach.Snapshot{
		Personality:    personality,
		Metrics:        uc.Metrics,
		Regime:         uc.Regime.Regime,
		RiskScore:      uc.RiskScore,
		ActivePatterns: append([]models.DetectedPattern(nil), uc.ActivePatterns...),
		TodayTrades:    append([]models.Trade(nil), uc.TodayTrades...),
		RecentEmotions: uc.recentEmotions(coachEmotionLimit),
		TopInsights:    top,
	}
}

// Invalidate drops the cached context of a profile
func (e *Engine) Invalidate(userID, profileID uuid.UUID, reason string) {
	e.contexts.Delete(contextKey(userID, profileID))
	metrics.UpdateCachedContexts(e.contexts.ItemCount())
	e.log.LogContextInvalidated(userID.String(), reason)
}

// RefreshAll rebuilds every cached context from the trade source, restoring
// the day-bucketed metrics that incremental updates leave stale. Each rebuild
// shares the single-flight path of Initialize.
func (e *Engine) RefreshAll(ctx context.Context) (int, error) {
	var errs []error
	refreshed := 0
	for key, item := range e.contexts.Items() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		old := item.Object.(*UnifiedContext)
		_, err, _ := e.group.Do(key, func() (interface{}, error) {
			if cur, ok := e.contexts.Get(key); ok && cur != old {
				return cur, nil
			}
			return e.rebuild(ctx, key, old)
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		refreshed++
	}
	return refreshed, errors.Join(errs...)
}

// rebuild replaces old in the cache. old stays locked until the replacement
// is published so that no trade lands on it in between.
func (e *Engine) rebuild(ctx context.Context, key string, old *UnifiedContext) (*UnifiedContext, error) {
	old.mu.Lock()
	defer old.mu.Unlock()

	uc, err := e.build(ctx, old.UserID, old.ProfileID)
	if err != nil {
		return nil, err
	}
	uc.SessionTrades = append([]models.Trade(nil), old.SessionTrades...)
	e.contexts.SetDefault(key, uc)
	old.retired = true
	return uc, nil
}

// EvictExpired removes expired contexts and returns how many remain cached
func (e *Engine) EvictExpired() int {
	e.contexts.DeleteExpired()
	count := e.contexts.ItemCount()
	metrics.UpdateCachedContexts(count)
	return count
}

func (e *Engine) loadPreferences(ctx context.Context, userID uuid.UUID) (models.Preferences, error) {
	prefs, err := e.repos.Preferences.Get(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		p := models.DefaultPreferences(userID)
		p.RiskTolerance = e.opts.DefaultRiskTolerance
		p.CoachPersonality = e.opts.DefaultPersonality
		return p, nil
	}
	if err != nil {
		return models.Preferences{}, fmt.Errorf("%w: failed to load preferences: %w", ErrContextUnavailable, err)
	}
	return *prefs, nil
}

// loadHistory reads earlier detections; failures degrade to an empty history
func (e *Engine) loadHistory(ctx context.Context, userID, profileID uuid.UUID, now time.Time) []models.DetectedPattern {
	history, err := e.repos.Pattern.History(ctx, userID, profileID, "", now.Add(-historyWindow))
	if err != nil {
		e.log.WithError(err).WithField("user_id", userID.String()).Warn("Failed to load pattern history")
		return nil
	}
	return history
}

func (e *Engine) loadCooldowns(ctx context.Context, userID, profileID uuid.UUID) patterns.CooldownState {
	state, err := e.cooldowns.Load(ctx, userID, profileID)
	if err != nil {
		e.log.WithError(err).WithField("user_id", userID.String()).Warn("Failed to load cooldown state")
		return patterns.CooldownState{}
	}
	return state
}

// seedCooldowns lets persisted detections gate re-emission when the cooldown
// store has lost its state
func seedCooldowns(state patterns.CooldownState, history []models.DetectedPattern) patterns.CooldownState {
	out := state.Copy()
	for i := range history {
		if last, ok := out[history[i].Type]; !ok || history[i].DetectedAt.After(last) {
			out[history[i].Type] = history[i].DetectedAt
		}
	}
	return out
}

func (e *Engine) saveCooldowns(ctx context.Context, userID, profileID uuid.UUID, state patterns.CooldownState) {
	if err := e.cooldowns.Save(ctx, userID, profileID, state); err != nil {
		e.log.WithError(err).WithField("user_id", userID.String()).Warn("Failed to save cooldown state")
	}
}

// persist writes patterns and insights best-effort; failures are only logged
func (e *Engine) persist(ctx context.Context, uc *UnifiedContext, found []models.DetectedPattern, newInsights []models.Insight) {
	if e.opts.PersistPatterns {
		for i := range found {
			if err := e.repos.Pattern.Insert(ctx, &found[i]); err != nil {
				metrics.RecordPersistenceFailure("pattern")
				e.audit.LogPersistenceFailure(uc.UserID.String(), "pattern", 1, err)
			}
		}
	}
	if e.opts.PersistInsights && len(newInsights) > 0 {
		if err := e.repos.Insight.InsertBatch(ctx, newInsights); err != nil {
			metrics.RecordPersistenceFailure("insight")
			e.audit.LogPersistenceFailure(uc.UserID.String(), "insight", len(newInsights), err)
		}
	}
}
