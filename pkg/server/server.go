// Package server exposes the evaluation service as a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/revlimit/modengine-go/log"
	"github.com/revlimit/modengine-go/pkg/engine/laptime"
	"github.com/revlimit/modengine-go/pkg/model"
	"github.com/revlimit/modengine-go/pkg/server/auth"
	"github.com/revlimit/modengine-go/pkg/service"
	"github.com/revlimit/modengine-go/version"
)

type (
	Server struct {
		evaluator  *service.Evaluator
		adminToken string
		l          *log.Logger
	}
	Option func(*Server)
)

func WithEvaluator(arg *service.Evaluator) Option {
	return func(s *Server) { s.evaluator = arg }
}

func WithAdminToken(token string) Option {
	return func(s *Server) { s.adminToken = token }
}

func WithLogger(arg *log.Logger) Option {
	return func(s *Server) { s.l = arg }
}

func NewServer(opts ...Option) *Server {
	ret := &Server{l: log.Default().Named("server")}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Handler returns the fully wired handler chain including CORS and
// token authentication.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/evaluate", s.handleEvaluate)
	mux.HandleFunc("POST /api/laptime", s.handleLapTime)
	mux.HandleFunc("POST /api/laptime/sample", s.handleLapSample)
	mux.HandleFunc("POST /api/dyno", s.handleDyno)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return newCORS().Handler(auth.Middleware(mux,
		auth.WithAdminToken(s.adminToken),
		auth.WithLogger(s.l.Named("auth"))))
}

type (
	evaluateRequest struct {
		Vehicle *model.VehicleSpec `json:"vehicle"`
		ModIDs  []string           `json:"modIds"`
	}
	lapTimeRequest struct {
		Vehicle *model.VehicleSpec `json:"vehicle"`
		ModIDs  []string           `json:"modIds"`
		TrackID string             `json:"trackId"`
		Skill   string             `json:"skill"`
	}
	dynoRequest struct {
		Vehicle     *model.VehicleSpec    `json:"vehicle"`
		ModIDs      []string              `json:"modIds"`
		Measurement model.DynoMeasurement `json:"measurement"`
	}
	errorResponse struct {
		Error string `json:"error"`
	}
)

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if !s.decode(w, r, &req) || !s.requireVehicle(w, req.Vehicle) {
		return
	}
	res, err := s.evaluator.Evaluate(r.Context(), req.Vehicle, req.ModIDs)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleLapTime(w http.ResponseWriter, r *http.Request) {
	var req lapTimeRequest
	if !s.decode(w, r, &req) || !s.requireVehicle(w, req.Vehicle) {
		return
	}
	if req.TrackID == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "trackId is required"})
		return
	}
	est, unavail, err := s.evaluator.EstimateLapTime(r.Context(),
		req.TrackID, req.Vehicle, req.ModIDs, model.ParseDriverSkill(req.Skill))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"estimate":    est,
		"unavailable": unavail,
	})
}

func (s *Server) handleLapSample(w http.ResponseWriter, r *http.Request) {
	var sample model.LapTimeSample
	if !s.decode(w, r, &sample) {
		return
	}
	if err := s.evaluator.SubmitLapSample(r.Context(), &sample); err != nil {
		if errors.Is(err, service.ErrInvalidSample) {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}

func (s *Server) handleDyno(w http.ResponseWriter, r *http.Request) {
	if !auth.HasRole(r.Context(), auth.RoleAdmin) {
		s.writeJSON(w, http.StatusForbidden, errorResponse{Error: "admin token required"})
		return
	}
	var req dynoRequest
	if !s.decode(w, r, &req) || !s.requireVehicle(w, req.Vehicle) {
		return
	}
	if req.Measurement.WheelHP <= 0 {
		s.writeJSON(w, http.StatusBadRequest,
			errorResponse{Error: "measurement.whp must be positive"})
		return
	}
	buildHash, err := s.evaluator.SubmitDyno(r.Context(),
		req.Vehicle, req.ModIDs, &req.Measurement)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"buildHash": buildHash})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	return true
}

func (s *Server) requireVehicle(w http.ResponseWriter, veh *model.VehicleSpec) bool {
	if veh == nil || veh.ID == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "vehicle is required"})
		return false
	}
	return true
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownModification),
		errors.Is(err, service.ErrInvalidVehicle),
		errors.Is(err, laptime.ErrUnknownTrack):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNoCatalog),
		errors.Is(err, service.ErrNoDynoStore),
		errors.Is(err, service.ErrNoSampleStore):
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		s.l.Error("request failed", log.ErrorField(err))
		s.writeJSON(w, http.StatusInternalServerError,
			errorResponse{Error: "internal error"})
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.l.Error("could not write response", log.ErrorField(err))
	}
}

func newCORS() *cors.Cors {
	return cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowedHeaders: []string{"*"},
		MaxAge:         int(2 * time.Hour / time.Second),
	})
}
