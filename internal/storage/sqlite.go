package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const snapshotName = "retention"

type SQLiteBlob struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSQLiteBlob(db *sql.DB, logger zerolog.Logger) *SQLiteBlob {
	return &SQLiteBlob{
		db:     db,
		logger: logger.With().Str("component", "sqlite_store").Logger(),
	}
}

func (b *SQLiteBlob) Read(ctx context.Context) ([]byte, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx,
		`SELECT data FROM snapshots WHERE name = ?`, snapshotName,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, nil
}

func (b *SQLiteBlob) Write(ctx context.Context, data []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO snapshots (name, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		snapshotName, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	b.logger.Debug().Int("bytes", len(data)).Msg("snapshot written")
	return nil
}

func (b *SQLiteBlob) Close() error {
	return b.db.Close()
}
