package storage

import (
	"context"
	"fmt"

	"leaderboard-watcher/internal/config"
	"leaderboard-watcher/internal/constants"
	"leaderboard-watcher/internal/database"

	"github.com/rs/zerolog"
)

// New opens the backend selected by STORE_BACKEND.
func New(cfg *config.Config, logger zerolog.Logger) (Blob, error) {
	logger.Info().Str("backend", cfg.StoreBackend).Msg("opening retention storage")

	switch cfg.StoreBackend {
	case config.BackendFile:
		return NewFileBlob(cfg.StorePath, logger), nil
	case config.BackendSQLite:
		db, err := database.New(cfg.DBPath, logger)
		if err != nil {
			return nil, err
		}
		return NewSQLiteBlob(db, logger), nil
	case config.BackendS3:
		ctx, cancel := context.WithTimeout(context.Background(), constants.StorageTimeout)
		defer cancel()
		return NewS3Blob(ctx, S3Options{
			Bucket:          cfg.S3.Bucket,
			Key:             cfg.S3.Key,
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		}, logger)
	case config.BackendRedis:
		return NewRedisBlob(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Key, logger), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
