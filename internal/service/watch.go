package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"leaderboard-watcher/internal/constants"
	"leaderboard-watcher/internal/domain"
	"leaderboard-watcher/internal/novelty"
	"leaderboard-watcher/internal/parser"
	"leaderboard-watcher/internal/retention"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

const (
	OutcomeOK     = "ok"
	OutcomeNoData = "no_data"
	OutcomeNoNew  = "no_new"
	OutcomeFailed = "failed"
)

type Source interface {
	Fetch(ctx context.Context) (string, error)
}

type RecordStore interface {
	LoadWindow(ctx context.Context, now time.Time) []domain.GameRecord
	Persist(ctx context.Context, records []domain.GameRecord) error
	Window() time.Duration
}

type Publisher interface {
	NotifyRecords(ctx context.Context, records []domain.GameRecord) error
	NotifyRanking(ctx context.Context, ranking []domain.WinCount, window time.Duration) error
	ReportFailure(ctx context.Context, cause error)
}

type Tallier interface {
	Tally(records []domain.GameRecord) []domain.WinCount
}

type WatchService struct {
	source     Source
	store      RecordStore
	publisher  Publisher
	aggregator Tallier
	now        func() time.Time
	logger     zerolog.Logger

	mu   sync.RWMutex
	last domain.CycleStatus
}

func NewWatchService(source Source, store RecordStore, publisher Publisher, aggregator Tallier, logger zerolog.Logger) *WatchService {
	return &WatchService{
		source:     source,
		store:      store,
		publisher:  publisher,
		aggregator: aggregator,
		now:        time.Now,
		logger:     logger.With().Str("component", "watch").Logger(),
	}
}

// Tick runs one cycle and absorbs every failure, including panics, so the
// scheduler keeps going. Unexpected failures go to the fallback channel.
func (s *WatchService) Tick(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, constants.CycleTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			s.logger.Error().Err(err).Msg("cycle panicked")
			s.publisher.ReportFailure(ctx, err)
		}
	}()

	if _, err := s.RunCycle(ctx); err != nil {
		s.publisher.ReportFailure(ctx, err)
	}
}

// RunCycle fetches, parses, deduplicates against the retained window,
// persists and announces new records, then announces the ranking. Fetch
// failures and cycles without new records are normal outcomes, not errors.
func (s *WatchService) RunCycle(ctx context.Context) (domain.CycleStatus, error) {
	cycleID, err := gonanoid.New()
	if err != nil {
		cycleID = "unknown"
	}
	logger := s.logger.With().Str("cycle_id", cycleID).Logger()

	status := domain.CycleStatus{CycleID: cycleID, StartedAt: s.now()}
	finish := func(outcome string, err error) (domain.CycleStatus, error) {
		status.Outcome = outcome
		status.FinishedAt = s.now()
		if err != nil {
			status.Error = err.Error()
		}
		s.setLast(status)
		return status, err
	}

	logger.Info().Msg("cycle started")

	text, err := s.source.Fetch(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("fetch failed, skipping cycle")
		return finish(OutcomeNoData, nil)
	}
	if strings.TrimSpace(text) == "" {
		logger.Info().Msg("page returned no text, skipping cycle")
		return finish(OutcomeNoData, nil)
	}

	parsed := parser.Parse(text, logger)
	status.Parsed = len(parsed)

	now := s.now()
	window := s.store.LoadWindow(ctx, now)

	// results already older than the window would be announced again after
	// every eviction otherwise
	fresh := retention.Evict(parsed, now, s.store.Window())
	if stale := len(parsed) - len(fresh); stale > 0 {
		logger.Debug().Int("stale", stale).Msg("ignoring records outside the retention window")
	}

	novel := novelty.Filter(window, fresh)
	status.New = len(novel)
	status.Retained = len(window)
	if len(novel) == 0 {
		logger.Info().Int("parsed", len(parsed)).Int("retained", len(window)).Msg("no new records")
		return finish(OutcomeNoNew, nil)
	}

	merged := retention.Merge(window, novel)
	if err := s.store.Persist(ctx, merged); err != nil {
		logger.Error().Err(err).Msg("failed to persist records")
		return finish(OutcomeFailed, err)
	}
	status.Retained = len(merged)

	logger.Info().
		Int("parsed", len(parsed)).
		Int("new", len(novel)).
		Int("retained", len(merged)).
		Msg("new records found")

	if err := s.publisher.NotifyRecords(ctx, novel); err != nil {
		logger.Warn().Err(err).Msg("some record notifications were not delivered")
	}

	ranking := s.aggregator.Tally(merged)
	if err := s.publisher.NotifyRanking(ctx, ranking, s.store.Window()); err != nil {
		logger.Warn().Err(err).Msg("some ranking notifications were not delivered")
	}

	logger.Info().Int("ranked", len(ranking)).Msg("cycle completed")
	return finish(OutcomeOK, nil)
}

// Report sends the ranking for the current window without fetching.
func (s *WatchService) Report(ctx context.Context) error {
	ranking := s.Ranking(ctx)
	s.logger.Info().Int("ranked", len(ranking)).Msg("sending ranking report")
	return s.publisher.NotifyRanking(ctx, ranking, s.store.Window())
}

func (s *WatchService) Records(ctx context.Context) []domain.GameRecord {
	return s.store.LoadWindow(ctx, s.now())
}

func (s *WatchService) Ranking(ctx context.Context) []domain.WinCount {
	return s.aggregator.Tally(s.Records(ctx))
}

func (s *WatchService) LastStatus() domain.CycleStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

func (s *WatchService) setLast(status domain.CycleStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = status
}
