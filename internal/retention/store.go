package retention

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"leaderboard-watcher/internal/constants"
	"leaderboard-watcher/internal/domain"
	"leaderboard-watcher/internal/storage"

	"github.com/rs/zerolog"
)

type snapshot struct {
	Version int                 `json:"version"`
	SavedAt time.Time           `json:"saved_at"`
	Records []domain.GameRecord `json:"records"`
}

// Store persists the retained window as one JSON snapshot.
type Store struct {
	blob   storage.Blob
	window time.Duration
	logger zerolog.Logger
}

func NewStore(blob storage.Blob, window time.Duration, logger zerolog.Logger) *Store {
	return &Store{
		blob:   blob,
		window: window,
		logger: logger.With().Str("component", "retention").Logger(),
	}
}

func (s *Store) Window() time.Duration {
	return s.window
}

// Load never fails: absent, unreadable or corrupt storage yields an empty
// window.
func (s *Store) Load(ctx context.Context) []domain.GameRecord {
	ctx, cancel := context.WithTimeout(ctx, constants.StorageTimeout)
	defer cancel()

	data, err := s.blob.Read(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Info().Msg("no stored records yet, starting empty")
		return []domain.GameRecord{}
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to read stored records, starting empty")
		return []domain.GameRecord{}
	}

	records, dropped, err := decode(data)
	if err != nil {
		s.logger.Error().Err(err).Int("bytes", len(data)).Msg("stored records are corrupt, starting empty")
		return []domain.GameRecord{}
	}
	if dropped > 0 {
		s.logger.Warn().Int("dropped", dropped).Msg("skipped stored records with unreadable time")
	}

	s.logger.Debug().Int("records", len(records)).Msg("stored records loaded")
	return records
}

// LoadWindow loads and evicts in one step.
func (s *Store) LoadWindow(ctx context.Context, now time.Time) []domain.GameRecord {
	loaded := s.Load(ctx)
	window := Evict(loaded, now, s.window)
	if evicted := len(loaded) - len(window); evicted > 0 {
		s.logger.Info().Int("evicted", evicted).Int("retained", len(window)).Msg("evicted expired records")
	}
	return window
}

func (s *Store) Persist(ctx context.Context, records []domain.GameRecord) error {
	ctx, cancel := context.WithTimeout(ctx, constants.StorageTimeout)
	defer cancel()

	data, err := encode(records, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	if err := s.blob.Write(ctx, data); err != nil {
		return fmt.Errorf("failed to persist records: %w", err)
	}

	s.logger.Info().Int("records", len(records)).Msg("records persisted")
	return nil
}

func encode(records []domain.GameRecord, savedAt time.Time) ([]byte, error) {
	if records == nil {
		records = []domain.GameRecord{}
	}
	return json.MarshalIndent(snapshot{
		Version: constants.SnapshotVersion,
		SavedAt: savedAt,
		Records: records,
	}, "", "    ")
}

// decode accepts the versioned envelope and the bare array written by
// older deployments. dropped counts legacy entries that could not be read.
func decode(data []byte) (records []domain.GameRecord, dropped int, err error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, 0, errors.New("empty snapshot")
	}

	if trimmed[0] == '[' {
		records, dropped, err = decodeLegacy(trimmed)
		if err != nil {
			return nil, 0, err
		}
	} else {
		var snap snapshot
		if err := json.Unmarshal(trimmed, &snap); err != nil {
			return nil, 0, err
		}
		if snap.Version > constants.SnapshotVersion {
			return nil, 0, fmt.Errorf("unsupported snapshot version %d", snap.Version)
		}
		records = snap.Records
	}

	for i := range records {
		if records[i].Results == nil {
			records[i].Results = []string{}
		}
	}
	if records == nil {
		records = []domain.GameRecord{}
	}
	return records, dropped, nil
}
