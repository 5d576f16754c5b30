package server

import (
	"context"
	"encoding/json"
	"net/http"

	"leaderboard-watcher/internal/domain"
	"leaderboard-watcher/internal/middleware"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Watcher is the read side of the watch service.
type Watcher interface {
	Records(ctx context.Context) []domain.GameRecord
	Ranking(ctx context.Context) []domain.WinCount
	LastStatus() domain.CycleStatus
}

type StatusServer struct {
	watcher Watcher
	logger  zerolog.Logger
}

func NewStatusServer(watcher Watcher, logger zerolog.Logger) *StatusServer {
	return &StatusServer{watcher: watcher, logger: logger.With().Str("component", "status_server").Logger()}
}

func (s *StatusServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.health)
	mux.HandleFunc("GET /api/status", s.status)
	mux.HandleFunc("GET /api/records", s.records)
	mux.HandleFunc("GET /api/tally", s.tally)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	return middleware.RequestID(s.logger)(middleware.Recover(c.Handler(mux)))
}

func (s *StatusServer) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]string{"status": "ok"})
}

func (s *StatusServer) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, s.watcher.LastStatus())
}

func (s *StatusServer) records(w http.ResponseWriter, r *http.Request) {
	records := s.watcher.Records(r.Context())
	writeJSON(w, r, map[string]any{"count": len(records), "records": records})
}

func (s *StatusServer) tally(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]any{"ranking": s.watcher.Ranking(r.Context())})
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to encode response")
	}
}
