package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error { return s.err }

func serve(c *Checker, path string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	c.RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthAndLive(t *testing.T) {
	c := NewChecker(Config{ServiceName: "trade-journal", Version: "1.0.0"})

	for _, path := range []string{"/health", "/live"} {
		rec := serve(c, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)

		var body HealthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, "trade-journal", body.Service)
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		db         DatabasePinger
		wantStatus int
		wantChecks map[string]string
	}{
		{
			name:       "not marked ready",
			ready:      false,
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"service": "not_ready"},
		},
		{
			name:       "ready without database",
			ready:      true,
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"service": "ok"},
		},
		{
			name:       "database down",
			ready:      true,
			db:         stubPinger{err: errors.New("connection refused")},
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"service": "ok", "database": "error: connection refused"},
		},
		{
			name:       "database up",
			ready:      true,
			db:         stubPinger{},
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"service": "ok", "database": "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker(Config{ServiceName: "trade-journal", DB: tt.db})
			c.SetReady(tt.ready)

			rec := serve(c, "/ready")
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body ReadyResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantChecks, body.Checks)
		})
	}
}
