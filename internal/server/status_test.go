package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leaderboard-watcher/internal/domain"

	"github.com/rs/zerolog"
)

type stubWatcher struct{}

func (stubWatcher) Records(ctx context.Context) []domain.GameRecord {
	return []domain.GameRecord{{Timestamp: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), Map: "Europe", Results: []string{}}}
}

func (stubWatcher) Ranking(ctx context.Context) []domain.WinCount {
	return []domain.WinCount{{Entity: "Alpha", Wins: 2}}
}

func (stubWatcher) LastStatus() domain.CycleStatus {
	return domain.CycleStatus{CycleID: "abc", Outcome: "ok", New: 1}
}

func TestStatusRoutes(t *testing.T) {
	srv := httptest.NewServer(NewStatusServer(stubWatcher{}, zerolog.Nop()).Handler())
	defer srv.Close()

	tests := []struct {
		path  string
		check func(t *testing.T, body map[string]any)
	}{
		{"/healthz", func(t *testing.T, body map[string]any) {
			if body["status"] != "ok" {
				t.Errorf("unexpected body %v", body)
			}
		}},
		{"/api/status", func(t *testing.T, body map[string]any) {
			if body["cycle_id"] != "abc" || body["outcome"] != "ok" {
				t.Errorf("unexpected body %v", body)
			}
		}},
		{"/api/records", func(t *testing.T, body map[string]any) {
			if body["count"] != float64(1) {
				t.Errorf("unexpected body %v", body)
			}
		}},
		{"/api/tally", func(t *testing.T, body map[string]any) {
			ranking, ok := body["ranking"].([]any)
			if !ok || len(ranking) != 1 {
				t.Errorf("unexpected body %v", body)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status %d", resp.StatusCode)
			}
			if resp.Header.Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID header")
			}
			var body map[string]any
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			tt.check(t, body)
		})
	}
}

func TestStatusRejectsWrites(t *testing.T) {
	srv := httptest.NewServer(NewStatusServer(stubWatcher{}, zerolog.Nop()).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/records", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", resp.StatusCode)
	}
}
