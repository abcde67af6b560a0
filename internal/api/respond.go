package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"schedule_mastery/internal/models"
	"schedule_mastery/internal/timeline"
)

// Clock is a minute of the day given either as a number or as "HH:MM".
type Clock struct {
	Minute int
}

func (c *Clock) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		c.Minute = n
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("start must be minutes or HH:MM")
	}
	m, err := timeline.ParseClock(s)
	if err != nil {
		return err
	}
	c.Minute = m
	return nil
}

// Minutes returns nil for an absent clock.
func (c *Clock) Minutes() *int {
	if c == nil {
		return nil
	}
	m := c.Minute
	return &m
}

// decode reads and validates a JSON body. An empty body decodes to the zero
// request. It writes the error response itself and reports success.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeJSONError(w, http.StatusBadRequest, "bad_request", err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return false
	}
	return true
}

// writeError maps engine errors to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInfeasible):
		writeJSONError(w, http.StatusUnprocessableEntity, "infeasible", err.Error())
	case errors.Is(err, models.ErrDutyCapExceeded):
		writeJSONError(w, http.StatusUnprocessableEntity, "duty_cap_exceeded", err.Error())
	case errors.Is(err, models.ErrCrewLimitReached):
		writeJSONError(w, http.StatusUnprocessableEntity, "crew_limit_reached", err.Error())
	case errors.Is(err, models.ErrCrewChangeInvalid):
		writeJSONError(w, http.StatusUnprocessableEntity, "invalid_crew_change", err.Error())
	case errors.Is(err, models.ErrOverlapDetected):
		writeJSONError(w, http.StatusConflict, "overlap", err.Error())
	case errors.Is(err, models.ErrResourceExhausted):
		writeJSONError(w, http.StatusConflict, "inventory_exhausted", err.Error())
	case errors.Is(err, models.ErrAircraftUnavailable):
		writeJSONError(w, http.StatusLocked, "aircraft_unavailable", err.Error())
	case errors.Is(err, models.ErrUnknownAircraft),
		errors.Is(err, models.ErrUnknownRoute),
		errors.Is(err, models.ErrSegmentNotFound),
		errors.Is(err, models.ErrTripNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, code, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, map[string]string{"error": code, "message": msg})
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
