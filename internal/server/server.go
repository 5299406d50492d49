// Package server exposes the TODO engine and stored locations over HTTP.
package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/sitepicker/internal/config"
	"github.com/sells-group/sitepicker/internal/evaluate"
	"github.com/sells-group/sitepicker/internal/model"
	"github.com/sells-group/sitepicker/internal/observability"
	"github.com/sells-group/sitepicker/internal/scorer"
	"github.com/sells-group/sitepicker/internal/store"
)

const maxBodyBytes = 1 << 20

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	svc     *evaluate.Service
	store   store.Store
	metrics *observability.Metrics
	cfg     config.ServerConfig
}

// New creates a Server. metrics may be nil.
func New(svc *evaluate.Service, st store.Store, metrics *observability.Metrics, cfg config.ServerConfig) *Server {
	return &Server{svc: svc, store: st, metrics: metrics, cfg: cfg}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/metro", s.instrument("/api/metro", s.handleMetro))
		r.Method(http.MethodPost, "/evaluate", s.instrument("/api/evaluate", s.handleEvaluate))
		r.Method(http.MethodGet, "/locations", s.instrument("/api/locations", s.handleListLocations))
		r.Route("/locations/{id}", func(r chi.Router) {
			r.Method(http.MethodGet, "/todos", s.instrument("/api/locations/{id}/todos", s.handleLocationTodos))
			r.Method(http.MethodPost, "/sync", s.instrument("/api/locations/{id}/sync", s.handleSync))
			r.Method(http.MethodGet, "/evaluations", s.instrument("/api/locations/{id}/evaluations", s.handleEvaluations))
		})
	})

	r.With(s.requireToken).Method(http.MethodPost, "/webhooks/suggestion-scored",
		s.instrument("/webhooks/suggestion-scored", s.handleSuggestionScored))

	return r
}

func (s *Server) instrument(route string, h http.HandlerFunc) http.Handler {
	return s.metrics.WrapHandler(route, h)
}

func (s *Server) handleMetro(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, s.svc.Directory().Resolve(q.Get("state"), q.Get("city")))
}

type evaluateRequest struct {
	Scores  *model.ScoreRow        `json:"scores"`
	Metrics *model.UpstreamMetrics `json:"metrics"`
	State   string                 `json:"state"`
	City    string                 `json:"city"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res := s.svc.Compute(req.Scores, req.Metrics, req.State, req.City)
	writeJSON(w, http.StatusOK, res)
}

// locationSummary is one row of the location listing.
type locationSummary struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	Address  string               `json:"address"`
	City     string               `json:"city"`
	State    string               `json:"state"`
	Votes    int                  `json:"votes"`
	Proposed bool                 `json:"proposed,omitempty"`
	Scores   model.LocationScores `json:"scores"`
	Badge    *scorer.Badge        `json:"badge"`
	SizeTier string               `json:"size_tier,omitempty"`
}

func (s *Server) handleListLocations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := store.LocationFilter{State: strings.ToUpper(q.Get("state"))}
	for key, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, key+" must be a non-negative integer")
			return
		}
		*dst = n
	}

	var sortFn func([]model.Location)
	switch q.Get("sort") {
	case "", "viable":
		sortFn = scorer.SortMostViable
	case "support":
		sortFn = scorer.SortMostSupport
	default:
		writeError(w, http.StatusBadRequest, "sort must be viable or support")
		return
	}

	locs, err := s.store.ListLocations(r.Context(), filter)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	sortFn(locs)

	out := make([]locationSummary, 0, len(locs))
	for _, loc := range locs {
		scores := scorer.MapScores(loc.Scores)
		sum := locationSummary{
			ID:       loc.ID,
			Name:     loc.Name,
			Address:  loc.Address,
			City:     loc.City,
			State:    loc.State,
			Votes:    loc.Votes,
			Proposed: loc.Proposed,
			Scores:   scores,
			Badge:    scorer.StatusBadge(scores.OverallColor),
		}
		if scores.SizeClassification != nil {
			sum.SizeTier = scorer.SizeTierLabel(*scores.SizeClassification)
		}
		out = append(out, sum)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLocationTodos(w http.ResponseWriter, r *http.Request) {
	ev, err := s.svc.Assess(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Sync(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, evaluate.ErrNoUpstream) {
			writeError(w, http.StatusServiceUnavailable, "upstream sync is not configured")
			return
		}
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleEvaluations(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	if _, err := s.store.GetLocation(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	evs, err := s.store.ListEvaluations(r.Context(), id, limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if evs == nil {
		evs = []model.Evaluation{}
	}
	writeJSON(w, http.StatusOK, evs)
}

type scoredRequest struct {
	LocationID string `json:"location_id"`
}

func (s *Server) handleSuggestionScored(w http.ResponseWriter, r *http.Request) {
	var req scoredRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.LocationID == "" {
		writeError(w, http.StatusBadRequest, "location_id is required")
		return
	}

	ev, err := s.svc.Evaluate(r.Context(), req.LocationID)
	if err != nil {
		zap.L().Error("suggestion-scored webhook failed",
			zap.String("location_id", req.LocationID), zap.Error(err))
		writeStoreError(w, err)
		return
	}

	zap.L().Info("suggestion-scored webhook processed",
		zap.String("location_id", req.LocationID),
		zap.Int("todos", len(ev.Todos)),
	)
	writeJSON(w, http.StatusOK, ev)
}

// requireToken checks the bearer token against server.webhook_token. An
// unset token rejects every request.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || s.cfg.WebhookToken == "" ||
			subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.WebhookToken)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close() //nolint:errcheck
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "location not found")
		return
	}
	zap.L().Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
