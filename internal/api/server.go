package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"schedule_mastery/internal/game"
	"schedule_mastery/internal/models"
)

type Server struct {
	engine   *game.Engine
	validate *validator.Validate
	logger   *zap.Logger
}

// New constructs the HTTP router wired to the game engine.
func New(engine *game.Engine, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{engine: engine, validate: validator.New(), logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/state", s.handleState)
	r.Get("/routes", s.handleRoutes)
	r.Get("/score", s.handleScore)
	r.Get("/leaderboard", s.handleLeaderboard)

	r.Route("/aircraft/{id}", func(r chi.Router) {
		r.Get("/", s.handleAircraft)
		r.Post("/trips", s.handleAddTrip)
		r.Post("/trips/preview", s.handlePreviewTrip)
		r.Put("/trips/{tripID}/start", s.handleReschedule)
		r.Delete("/segments/{segmentID}", s.handleDeleteSegment)
		r.Post("/crew-change", s.handleArmCrewChange)
		r.Delete("/crew-change", s.handleDisarmCrewChange)
	})

	r.Post("/day/start", s.handleDayStart)
	r.Post("/day/pause", s.handleDayPause)
	r.Post("/day/finish", s.handleDayFinish)

	return r
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

type routeView struct {
	models.Route
	Remaining int `json:"remaining"`
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	inv := s.engine.Inventory()
	routes := s.engine.Catalog().Routes()
	out := make([]routeView, 0, len(routes))
	for _, rt := range routes {
		out = append(out, routeView{Route: rt, Remaining: inv[rt.ID]})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	st := s.engine.Snapshot()
	byAircraft := make(map[string]models.Score, len(st.Fleet))
	for _, ac := range st.Fleet {
		byAircraft[ac.Aircraft.ID] = ac.Score
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_points": st.TotalPoints,
		"aircraft":     byAircraft,
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			writeJSONError(w, http.StatusBadRequest, "invalid_limit", "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	top, err := s.engine.Leaderboard(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, top)
}

func (s *Server) handleAircraft(w http.ResponseWriter, r *http.Request) {
	st, err := s.engine.Aircraft(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type tripRequest struct {
	RouteID string `json:"route_id" validate:"required,alphanum"`
	Start   *Clock `json:"start"`
}

func (s *Server) handleAddTrip(w http.ResponseWriter, r *http.Request) {
	var req tripRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, err := s.engine.Add(chi.URLParam(r, "id"), req.RouteID, req.Start.Minutes())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handlePreviewTrip(w http.ResponseWriter, r *http.Request) {
	var req tripRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, err := s.engine.Preview(chi.URLParam(r, "id"), req.RouteID, req.Start.Minutes())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type rescheduleRequest struct {
	Start *Clock `json:"start" validate:"required"`
}

func (s *Server) handleReschedule(w http.ResponseWriter, r *http.Request) {
	var req rescheduleRequest
	if !s.decode(w, r, &req) {
		return
	}
	trip, err := s.engine.RescheduleTripStart(chi.URLParam(r, "id"), chi.URLParam(r, "tripID"), req.Start.Minute)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

func (s *Server) handleDeleteSegment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.engine.Delete(id, chi.URLParam(r, "segmentID")); err != nil {
		s.writeError(w, err)
		return
	}
	st, err := s.engine.Aircraft(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type crewChangeRequest struct {
	CrewIndex int `json:"crew_index" validate:"required,min=1"`
}

func (s *Server) handleArmCrewChange(w http.ResponseWriter, r *http.Request) {
	var req crewChangeRequest
	if !s.decode(w, r, &req) {
		return
	}
	st, err := s.engine.ArmCrewChange(chi.URLParam(r, "id"), req.CrewIndex)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleDisarmCrewChange(w http.ResponseWriter, r *http.Request) {
	st, err := s.engine.DisarmCrewChange(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleDayStart(w http.ResponseWriter, r *http.Request) {
	s.engine.StartDay()
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleDayPause(w http.ResponseWriter, r *http.Request) {
	s.engine.PauseDay()
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

type finishRequest struct {
	Player string `json:"player" validate:"omitempty,max=40"`
}

func (s *Server) handleDayFinish(w http.ResponseWriter, r *http.Request) {
	var req finishRequest
	if !s.decode(w, r, &req) {
		return
	}
	sum, err := s.engine.FinishDay(r.Context(), req.Player)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
