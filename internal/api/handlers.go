package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/yourusername/trade-journal/internal/engine"
	"github.com/yourusername/trade-journal/internal/models"
	"github.com/yourusername/trade-journal/internal/prediction"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// CoachRequest is the body of a coach question
type CoachRequest struct {
	Question string `json:"question" validate:"required"`
}

type profileKey struct {
	user    uuid.UUID
	profile uuid.UUID
}

func parseProfile(r *http.Request) (profileKey, error) {
	vars := mux.Vars(r)
	user, err := uuid.Parse(vars["user"])
	if err != nil || user == uuid.Nil {
		return profileKey{}, fmt.Errorf("%w: user", models.ErrInvalidID)
	}
	// "default" addresses the nil profile
	var profile uuid.UUID
	if raw := vars["profile"]; raw != "default" {
		if profile, err = uuid.Parse(raw); err != nil {
			return profileKey{}, fmt.Errorf("%w: profile", models.ErrInvalidID)
		}
	}
	return profileKey{user: user, profile: profile}, nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	key, err := parseProfile(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	dashboard, err := s.service.Dashboard(r.Context(), key.user, key.profile)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (s *Server) handleRecordTrade(w http.ResponseWriter, r *http.Request) {
	key, err := parseProfile(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var row models.TradeRow
	if err := decode(w, r, &row); err != nil {
		s.writeError(w, err)
		return
	}
	trade, err := row.ToTrade()
	if err != nil {
		s.writeError(w, err)
		return
	}
	trade.UserID = key.user
	trade.ProfileID = key.profile

	if err := s.validate.Struct(trade); err != nil {
		s.writeError(w, err)
		return
	}

	update, err := s.service.RecordTrade(r.Context(), trade)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, update)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	key, err := parseProfile(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var setup models.TradeSetup
	if err := decode(w, r, &setup); err != nil {
		s.writeError(w, err)
		return
	}
	setup.Symbol = strings.ToUpper(strings.TrimSpace(setup.Symbol))
	if err := s.validate.Struct(setup); err != nil {
		s.writeError(w, err)
		return
	}

	pred, err := s.service.Predict(r.Context(), key.user, key.profile, setup)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

func (s *Server) handlePositionSize(w http.ResponseWriter, r *http.Request) {
	key, err := parseProfile(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req prediction.SizingRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	// zero values are filled from the profile, so only the ranges are checked
	if err := s.validate.StructExcept(req, "AccountSize"); err != nil {
		s.writeError(w, err)
		return
	}
	if req.AccountSize < 0 {
		s.writeError(w, errBadRequest("account_size must not be negative"))
		return
	}

	result, err := s.service.PositionSize(r.Context(), key.user, key.profile, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCoach(w http.ResponseWriter, r *http.Request) {
	key, err := parseProfile(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req CoachRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, err)
		return
	}

	resp, err := s.service.Ask(r.Context(), key.user, key.profile, req.Question)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	key, err := parseProfile(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.service.Invalidate(key.user, key.profile, "api request")
	w.WriteHeader(http.StatusNoContent)
}

type badRequestError string

func (e badRequestError) Error() string { return string(e) }

func errBadRequest(msg string) error { return badRequestError(msg) }

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errBadRequest(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

func statusFor(err error) int {
	var (
		badRequest badRequestError
		invalid    validator.ValidationErrors
	)
	switch {
	case errors.As(err, &badRequest), errors.As(err, &invalid),
		errors.Is(err, models.ErrInvalidID), errors.Is(err, models.ErrMissingUserID),
		errors.Is(err, models.ErrInvalidTrade):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrDuplicateKey):
		return http.StatusConflict
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrContextUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	body := ErrorResponse{Error: http.StatusText(status)}
	if status < http.StatusInternalServerError {
		body.Details = err.Error()
	} else {
		s.logger.WithError(err).Error("Request failed")
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
