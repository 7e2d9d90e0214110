package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/simonjung1603/medium-leaderboard/internal/store"
)

// Info describes the ingestion setup; served so the UI can show where the
// numbers come from and how often they move.
type Info struct {
	FeedURL           string `json:"feed_url"`
	DiscoveryInterval string `json:"discovery_interval"`
	ClapsInterval     string `json:"claps_interval"`
}

// Server is the HTTP boundary the leaderboard UI talks to. It only ever
// reads what ingestion wrote, plus one write: sorting a submission into a
// contest category.
type Server struct {
	store   store.Store
	info    Info
	clapInt time.Duration
	port    int
}

// New creates a new HTTP server.
func New(s store.Store, info Info, clapInt time.Duration, port int) *Server {
	if port == 0 {
		port = 8080
	}
	if clapInt == 0 {
		clapInt = 15 * time.Minute
	}
	return &Server{store: s, info: info, clapInt: clapInt, port: port}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.handleHealth)
	r.Get("/api/v1/leaderboard", s.handleLeaderboard)
	r.Get("/api/v1/last-update", s.handleLastUpdate)
	r.Get("/api/v1/config", s.handleConfig)
	r.Get("/api/v1/submissions/{guid}/history", s.handleHistory)
	r.Put("/api/v1/submissions/{guid}/category", s.handleSetCategory)
	return r
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.port)
	fmt.Printf("leaderboard server listening on %s\n", addr)
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	subs, err := s.store.ListByClaps(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  subs,
		"count": len(subs),
	})
}

func (s *Server) handleLastUpdate(w http.ResponseWriter, r *http.Request) {
	latest, ok, err := s.store.LatestClapCheckTime(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !ok {
		latest = time.Now()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"latest": latest,
		"next":   latest.Add(s.clapInt),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.info)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	guid := chi.URLParam(r, "guid")
	entries, err := s.store.ClapHistory(r.Context(), guid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  entries,
		"count": len(entries),
	})
}

func (s *Server) handleSetCategory(w http.ResponseWriter, r *http.Request) {
	guid := chi.URLParam(r, "guid")

	var body struct {
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	cat, err := store.ParseCategory(body.Category)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := s.store.SetCategory(r.Context(), guid, cat); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown submission"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"guid": guid, "category": cat.String()})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
