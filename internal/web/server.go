// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package web serves the embedded browser UI and the JSON API in front of
// the profile pipeline.
// Implements: prd006-web (R1-R4);
//
//	docs/ARCHITECTURE.md § Web Surface.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdiddy/compound-engine/internal/nlp"
	"github.com/pdiddy/compound-engine/internal/profile"
	"github.com/pdiddy/compound-engine/internal/render"
	"github.com/pdiddy/compound-engine/pkg/types"
)

// ProfileService is the slice of the pipeline the web layer needs.
type ProfileService interface {
	Fetch(ctx context.Context, query string, inputType types.InputType, w io.Writer) (*types.CompoundProfile, error)
	CacheLen() int
}

// EntityTagger decorates summary text with recognized entity mentions.
type EntityTagger interface {
	Entities(text string) ([]nlp.Entity, error)
}

// Server handles the UI page, the profile API, health, and metrics.
type Server struct {
	// Metrics is registered on the server's registry at construction and
	// should be attached to the Fetcher so /metrics sees pipeline outcomes.
	Metrics *Metrics

	profiles ProfileService
	tagger   EntityTagger
	cfg      types.EngineConfig
	log      *slog.Logger
	sessions *sessionStore
	metrics  http.Handler
	started  time.Time
}

// NewServer wires the handler around a profile service. tagger may be nil,
// which disables entity decoration.
func NewServer(profiles ProfileService, tagger EntityTagger, cfg types.EngineConfig, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	reg := prometheus.NewRegistry()
	return &Server{
		Metrics:  NewMetrics(reg),
		profiles: profiles,
		tagger:   tagger,
		cfg:      cfg,
		log:      log,
		sessions: newSessionStore(cfg.Web.SessionTTL),
		metrics:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		started:  time.Now(),
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "" && r.Method == http.MethodGet:
		s.handleIndex(w, r)
	case path == "/api/v1/profile":
		s.handleProfile(w, r)
	case path == "/healthz" && r.Method == http.MethodGet:
		s.handleHealth(w, r)
	case path == "/metrics" && r.Method == http.MethodGet:
		s.metrics.ServeHTTP(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, indexHTML)
}

type profileRequest struct {
	Query     string `json:"query"`
	InputType string `json:"input_type"`
}

type profileResponse struct {
	Profile  *types.CompoundProfile `json:"profile"`
	Summary  string                 `json:"summary,omitempty"`
	Entities []nlp.Entity           `json:"entities,omitempty"`
	Session  sessionInfo            `json:"session"`
}

type sessionInfo struct {
	ID      string `json:"id"`
	Queries int    `json:"queries"`
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	switch r.Method {
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid profile request payload")
			return
		}
	case http.MethodGet:
		req.Query = r.URL.Query().Get("query")
		req.InputType = r.URL.Query().Get("input_type")
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.InputType == "" {
		req.InputType = string(types.InputName)
	}
	inputType, err := types.ParseInputType(req.InputType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sessionID := s.touchSession(w, r)
	queries := s.sessions.countQuery(sessionID)

	p, err := s.profiles.Fetch(r.Context(), req.Query, inputType, io.Discard)
	switch {
	case errors.Is(err, profile.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		s.log.Error("profile fetch failed", "query", req.Query, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	resp := profileResponse{
		Profile: p,
		Session: sessionInfo{ID: sessionID, Queries: queries},
	}
	if s.cfg.Summary.Enabled {
		resp.Summary = render.Summary(p, s.cfg.Summary.MaxSentences)
	}
	if s.tagger != nil && resp.Summary != "" {
		entities, err := s.tagger.Entities(resp.Summary)
		if err != nil {
			// Decoration is optional; the profile still goes out.
			s.log.Warn("entity recognition failed", "error", err)
		} else {
			resp.Entities = entities
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"cached_profiles": s.profiles.CacheLen(),
		"sessions":        s.sessions.len(),
		"uptime_seconds":  int(time.Since(s.started).Seconds()),
	})
}

// touchSession resolves the browser session from the request cookie and
// refreshes the cookie when a new session was minted.
func (s *Server) touchSession(w http.ResponseWriter, r *http.Request) string {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}
	id, created := s.sessions.touch(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			MaxAge:   int(s.sessions.ttl / time.Second),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return id
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
