package constants

import "time"

const (
	DefaultRetentionWindow = 24 * time.Hour
	DefaultPollInterval    = 300 * time.Second
)

const (
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = 5 * time.Second
	HTTPTimeout          = 15 * time.Second
	CycleTimeout         = 5 * time.Minute
	StorageTimeout       = 10 * time.Second
)

const (
	DefaultMessageLimit      = 2000
	DefaultRecordsPerMessage = 6
	DefaultTopN              = 30
	DefaultWinThreshold      = 50.0

	// discord rejects more than 10 embeds per message
	MaxEmbedsPerMessage = 10
)

const (
	DBMaxOpenConns    = 1
	DBMaxIdleConns    = 1
	DBConnMaxLifetime = 1 * time.Hour
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	SnapshotVersion = 1
	UserAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
)
