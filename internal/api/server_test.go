package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/trade-journal/internal/coach"
	"github.com/yourusername/trade-journal/internal/config"
	"github.com/yourusername/trade-journal/internal/engine"
	"github.com/yourusername/trade-journal/internal/health"
	"github.com/yourusername/trade-journal/internal/models"
	"github.com/yourusername/trade-journal/internal/prediction"
	"github.com/yourusername/trade-journal/internal/repository"
)

var (
	apiUser = uuid.MustParse("66666666-6666-6666-6666-666666666666")
	apiNow  = time.Date(2024, time.June, 3, 12, 0, 0, 0, time.UTC)
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Dashboard(ctx context.Context, userID, profileID uuid.UUID) (*engine.Dashboard, error) {
	args := m.Called(ctx, userID, profileID)
	if d := args.Get(0); d != nil {
		return d.(*engine.Dashboard), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) RecordTrade(ctx context.Context, trade models.Trade) (*engine.TradeUpdate, error) {
	args := m.Called(ctx, trade)
	if u := args.Get(0); u != nil {
		return u.(*engine.TradeUpdate), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) Predict(ctx context.Context, userID, profileID uuid.UUID, setup models.TradeSetup) (models.TradePrediction, error) {
	args := m.Called(ctx, userID, profileID, setup)
	return args.Get(0).(models.TradePrediction), args.Error(1)
}

func (m *MockService) PositionSize(ctx context.Context, userID, profileID uuid.UUID, req prediction.SizingRequest) (prediction.SizingResult, error) {
	args := m.Called(ctx, userID, profileID, req)
	return args.Get(0).(prediction.SizingResult), args.Error(1)
}

func (m *MockService) Ask(ctx context.Context, userID, profileID uuid.UUID, question string) (coach.Response, error) {
	args := m.Called(ctx, userID, profileID, question)
	return args.Get(0).(coach.Response), args.Error(1)
}

func (m *MockService) Invalidate(userID, profileID uuid.UUID, reason string) {
	m.Called(userID, profileID, reason)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:                "127.0.0.1",
			Port:                8080,
			ReadTimeoutSeconds:  5,
			WriteTimeoutSeconds: 5,
			AllowedOrigins:      []string{"https://journal.example.com"},
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestServer(service Service) *Server {
	checker := health.NewChecker(health.Config{ServiceName: "trade-journal"})
	checker.SetReady(true)
	return NewServer(testConfig(), service, checker, quietLogger())
}

func newEngineServer() *Server {
	eng := engine.New(engine.Dependencies{
		Repos: repository.NewMemoryRepositories(),
		Clock: func() time.Time { return apiNow },
	}, engine.DefaultOptions())
	return newTestServer(eng)
}

func do(s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func profilePath(suffix string) string {
	return fmt.Sprintf("/v1/users/%s/profiles/default/%s", apiUser, suffix)
}

func tradeRow(id, pnl string) models.TradeRow {
	return models.TradeRow{
		ID:         id,
		Symbol:     " aapl ",
		Side:       "Long",
		EntryPrice: "100",
		ExitPrice:  "101.5",
		Quantity:   "10",
		EntryTime:  "2024-06-03T10:00:00Z",
		ExitTime:   "2024-06-03T10:20:00Z",
		PnL:        pnl,
	}
}

func TestRecordTradeAndDashboard(t *testing.T) {
	s := newEngineServer()
	id := uuid.New().String()

	// warm the context so the trade counts toward the session
	rec := do(s, http.MethodGet, profilePath("dashboard"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(s, http.MethodPost, profilePath("trades"), tradeRow(id, "15"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var update engine.TradeUpdate
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&update))
	require.NotNil(t, update.Dashboard)
	assert.Equal(t, 1, update.Dashboard.SessionTrades)
	assert.Equal(t, 1, update.Dashboard.TodayTrades)
	assert.InDelta(t, 15.0, update.Dashboard.TodayPnL, 1e-9)

	rec = do(s, http.MethodGet, profilePath("dashboard"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var dashboard engine.Dashboard
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&dashboard))
	assert.Equal(t, apiUser, dashboard.UserID)
	assert.Equal(t, uuid.Nil, dashboard.ProfileID)
	require.Len(t, dashboard.RecentTrades, 1)
	assert.Equal(t, "AAPL", dashboard.RecentTrades[0].Symbol)
	assert.Equal(t, models.TradeSideLong, dashboard.RecentTrades[0].Side)

	// the same trade id again
	rec = do(s, http.MethodPost, profilePath("trades"), tradeRow(id, "15"))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRecordTradeRejectsBadInput(t *testing.T) {
	s := newTestServer(new(MockService))

	tests := []struct {
		name string
		path string
		body interface{}
	}{
		{"malformed user id", "/v1/users/not-a-uuid/profiles/default/trades", tradeRow("", "1")},
		{"malformed trade id", profilePath("trades"), tradeRow("nope", "1")},
		{"missing symbol", profilePath("trades"), models.TradeRow{PnL: "1"}},
		{"unknown side", profilePath("trades"), models.TradeRow{Symbol: "MSFT", Side: "sideways"}},
		{"not json", profilePath("trades"), "just a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.NotEmpty(t, body.Details)
		})
	}
}

func TestPredictOnEmptyHistory(t *testing.T) {
	s := newEngineServer()

	rec := do(s, http.MethodPost, profilePath("predict"), models.TradeSetup{Symbol: "tsla"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var pred models.TradePrediction
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&pred))
	assert.Equal(t, "TSLA", pred.Symbol)
	assert.Equal(t, apiUser, pred.UserID)
	assert.NotEmpty(t, pred.Recommendation)
}

func TestPositionSizeFillsFromProfile(t *testing.T) {
	svc := new(MockService)
	s := newTestServer(svc)

	req := prediction.SizingRequest{EntryPrice: 100, StopLossPercent: 0.02}
	svc.On("PositionSize", mock.Anything, apiUser, uuid.Nil, req).
		Return(prediction.SizingResult{Shares: 12}, nil)

	rec := do(s, http.MethodPost, profilePath("position-size"), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result prediction.SizingResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, 12.0, result.Shares)
	svc.AssertExpectations(t)

	rec = do(s, http.MethodPost, profilePath("position-size"), prediction.SizingRequest{WinRate: 1.5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCoach(t *testing.T) {
	svc := new(MockService)
	s := newTestServer(svc)

	svc.On("Ask", mock.Anything, apiUser, uuid.Nil, "how is my risk?").
		Return(coach.Response{Topic: "risk", Answer: "steady", Source: coach.SourceRules}, nil)

	rec := do(s, http.MethodPost, profilePath("coach"), CoachRequest{Question: "  how is my risk?  "})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp coach.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "risk", resp.Topic)

	rec = do(s, http.MethodPost, profilePath("coach"), CoachRequest{Question: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNumberOfCalls(t, "Ask", 1)
}

func TestInvalidateContext(t *testing.T) {
	svc := new(MockService)
	s := newTestServer(svc)

	profile := uuid.New()
	svc.On("Invalidate", apiUser, profile, "api request").Return()

	path := fmt.Sprintf("/v1/users/%s/profiles/%s/context", apiUser, profile)
	rec := do(s, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	svc.AssertExpectations(t)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"source failure", fmt.Errorf("%w: failed to load trades: timeout", engine.ErrContextUnavailable), http.StatusServiceUnavailable},
		{"not found", models.ErrNotFound, http.StatusNotFound},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Dashboard", mock.Anything, apiUser, uuid.Nil).Return(nil, tt.err)
			s := newTestServer(svc)

			rec := do(s, http.MethodGet, profilePath("dashboard"), nil)
			assert.Equal(t, tt.status, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, http.StatusText(tt.status), body.Error)
			if tt.status >= http.StatusInternalServerError {
				assert.Empty(t, body.Details)
			}
		})
	}
}

func TestHealthMetricsAndCORS(t *testing.T) {
	s := newEngineServer()

	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/ready", nil).Code)
	require.Equal(t, http.StatusOK, do(s, http.MethodGet, profilePath("dashboard"), nil).Code)

	rec := do(s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "trade_journal_http_request_duration_seconds"))
	assert.Contains(t, rec.Body.String(), `route="/v1/users/{user}/profiles/{profile}/dashboard"`)

	req := httptest.NewRequest(http.MethodOptions, profilePath("dashboard"), nil)
	req.Header.Set("Origin", "https://journal.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	pre := httptest.NewRecorder()
	s.Handler().ServeHTTP(pre, req)
	assert.Equal(t, "https://journal.example.com", pre.Header().Get("Access-Control-Allow-Origin"))
}
