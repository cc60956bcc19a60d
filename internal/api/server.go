// Package api exposes the intelligence engine over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/trade-journal/internal/coach"
	"github.com/yourusername/trade-journal/internal/config"
	"github.com/yourusername/trade-journal/internal/engine"
	"github.com/yourusername/trade-journal/internal/health"
	"github.com/yourusername/trade-journal/internal/metrics"
	"github.com/yourusername/trade-journal/internal/models"
	"github.com/yourusername/trade-journal/internal/prediction"
)

// Service is the engine surface the API serves
type Service interface {
	Dashboard(ctx context.Context, userID, profileID uuid.UUID) (*engine.Dashboard, error)
	RecordTrade(ctx context.Context, trade models.Trade) (*engine.TradeUpdate, error)
	Predict(ctx context.Context, userID, profileID uuid.UUID, setup models.TradeSetup) (models.TradePrediction, error)
	PositionSize(ctx context.Context, userID, profileID uuid.UUID, req prediction.SizingRequest) (prediction.SizingResult, error)
	Ask(ctx context.Context, userID, profileID uuid.UUID, question string) (coach.Response, error)
	Invalidate(userID, profileID uuid.UUID, reason string)
}

// Server is the HTTP API server
type Server struct {
	router     *mux.Router
	handler    http.Handler
	httpServer *http.Server
	service    Service
	checker    *health.Checker
	validate   *validator.Validate
	logger     *logrus.Logger
}

// NewServer wires the routes, metrics middleware and CORS policy
func NewServer(cfg *config.Config, service Service, checker *health.Checker, logger *logrus.Logger) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		service:  service,
		checker:  checker,
		validate: validator.New(),
		logger:   logger,
	}
	s.setupRoutes(cfg.Metrics)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	s.handler = c.Handler(s.router)

	s.httpServer = &http.Server{
		Addr:         cfg.ServerAddress(),
		Handler:      s.handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes(mc config.MetricsConfig) {
	s.router.Use(s.instrument)

	s.checker.RegisterRoutes(s.router)
	if mc.Enabled {
		path := mc.Path
		if path == "" {
			path = "/metrics"
		}
		s.router.Handle(path, metrics.Handler()).Methods(http.MethodGet)
	}

	v1 := s.router.PathPrefix("/v1/users/{user}/profiles/{profile}").Subrouter()
	v1.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	v1.HandleFunc("/trades", s.handleRecordTrade).Methods(http.MethodPost)
	v1.HandleFunc("/predict", s.handlePredict).Methods(http.MethodPost)
	v1.HandleFunc("/position-size", s.handlePositionSize).Methods(http.MethodPost)
	v1.HandleFunc("/coach", s.handleCoach).Methods(http.MethodPost)
	v1.HandleFunc("/context", s.handleInvalidate).Methods(http.MethodDelete)
}

// Handler returns the root handler including CORS
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting API server")
	s.checker.SetReady(true)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and drains in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	s.checker.SetReady(false)
	s.logger.Info("Stopping API server")
	return s.httpServer.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument records request duration per route template
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		duration := time.Since(start)
		metrics.RecordHTTPRequest(route, r.Method, strconv.Itoa(rec.status), duration.Seconds())

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"route":       route,
			"status":      rec.status,
			"duration_ms": duration.Milliseconds(),
		}).Debug("HTTP request")
	})
}
