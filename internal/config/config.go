package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"leaderboard-watcher/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendS3     = "s3"
	BackendRedis  = "redis"
)

const (
	PolicyOccurrence = "occurrence"
	PolicyThreshold  = "threshold"
)

const (
	EntityResults     = "results"
	EntityWinningClan = "winning_clan"
)

const (
	FormatText  = "text"
	FormatEmbed = "embed"
)

type Config struct {
	SourceURL      string
	SourceSelector string

	WebhookURLs        []string
	FallbackWebhookURL string
	MessageFormat      string
	RecordsPerMessage  int
	MessageLimit       int

	RetentionWindow time.Duration
	PollInterval    time.Duration
	ScheduleCron    string

	TopN         int
	WinPolicy    string
	WinThreshold float64
	WinEntity    string

	RetryAttempts int
	RetryDelay    time.Duration
	HTTPTimeout   time.Duration

	StoreBackend string
	StorePath    string
	DBPath       string
	S3           S3Config
	Redis        RedisConfig

	KafkaBrokers []string
	KafkaTopic   string

	ServerPort string
	LogLevel   string
}

type S3Config struct {
	Bucket          string
	Key             string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}
	return FromLookup(os.LookupEnv, logger)
}

// FromLookup builds a Config from any key lookup; Load passes os.LookupEnv.
func FromLookup(lookup func(string) (string, bool), logger zerolog.Logger) (*Config, error) {
	env := envReader{lookup: lookup}

	cfg := &Config{
		SourceURL:          env.str("SOURCE_URL", ""),
		SourceSelector:     env.str("SOURCE_SELECTOR", "body"),
		WebhookURLs:        splitList(env.str("WEBHOOK_URLS", "")),
		FallbackWebhookURL: env.str("FALLBACK_WEBHOOK_URL", ""),
		MessageFormat:      strings.ToLower(env.str("MESSAGE_FORMAT", FormatText)),
		RecordsPerMessage:  env.int("RECORDS_PER_MESSAGE", constants.DefaultRecordsPerMessage),
		MessageLimit:       env.int("MESSAGE_LIMIT", constants.DefaultMessageLimit),
		RetentionWindow:    env.duration("RETENTION_WINDOW", constants.DefaultRetentionWindow),
		PollInterval:       env.duration("POLL_INTERVAL", constants.DefaultPollInterval),
		ScheduleCron:       env.str("SCHEDULE_CRON", ""),
		TopN:               env.int("TOP_N", constants.DefaultTopN),
		WinPolicy:          strings.ToLower(env.str("WIN_POLICY", PolicyOccurrence)),
		WinThreshold:       env.float("WIN_THRESHOLD", constants.DefaultWinThreshold),
		WinEntity:          strings.ToLower(env.str("WIN_ENTITY", EntityResults)),
		RetryAttempts:      env.int("RETRY_ATTEMPTS", constants.DefaultRetryAttempts),
		RetryDelay:         env.duration("RETRY_DELAY", constants.DefaultRetryDelay),
		HTTPTimeout:        env.duration("HTTP_TIMEOUT", constants.HTTPTimeout),
		StoreBackend:       strings.ToLower(env.str("STORE_BACKEND", BackendFile)),
		StorePath:          env.str("STORE_PATH", "clan_results.json"),
		DBPath:             env.str("DB_PATH", "watcher.db"),
		S3: S3Config{
			Bucket:          env.str("S3_BUCKET", ""),
			Key:             env.str("S3_KEY", "clan_results.json"),
			Endpoint:        env.str("S3_ENDPOINT", ""),
			Region:          env.str("S3_REGION", "auto"),
			AccessKeyID:     env.str("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: env.str("S3_SECRET_ACCESS_KEY", ""),
		},
		Redis: RedisConfig{
			Addr:     env.str("REDIS_ADDR", "localhost:6379"),
			Password: env.str("REDIS_PASSWORD", ""),
			DB:       env.int("REDIS_DB", 0),
			Key:      env.str("REDIS_KEY", "leaderboard:retention"),
		},
		KafkaBrokers: splitList(env.str("KAFKA_BROKERS", "")),
		KafkaTopic:   env.str("KAFKA_TOPIC", "leaderboard-records"),
		ServerPort:   env.str("SERVER_PORT", ""),
		LogLevel:     env.str("LOG_LEVEL", "info"),
	}

	if env.err != nil {
		return nil, env.err
	}

	if cfg.FallbackWebhookURL == "" && len(cfg.WebhookURLs) > 0 {
		cfg.FallbackWebhookURL = cfg.WebhookURLs[0]
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("source_url", cfg.SourceURL).
		Int("webhooks", len(cfg.WebhookURLs)).
		Str("store_backend", cfg.StoreBackend).
		Str("win_policy", cfg.WinPolicy).
		Str("win_entity", cfg.WinEntity).
		Float64("win_threshold", cfg.WinThreshold).
		Int("top_n", cfg.TopN).
		Dur("retention_window", cfg.RetentionWindow).
		Dur("poll_interval", cfg.PollInterval).
		Str("schedule_cron", cfg.ScheduleCron).
		Str("log_level", cfg.LogLevel).
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) validate() error {
	if c.SourceURL == "" {
		return fmt.Errorf("SOURCE_URL is required")
	}
	if len(c.WebhookURLs) == 0 {
		return fmt.Errorf("WEBHOOK_URLS is required")
	}

	switch c.StoreBackend {
	case BackendFile, BackendSQLite, BackendRedis:
	case BackendS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 store backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.WinPolicy {
	case PolicyOccurrence, PolicyThreshold:
	default:
		return fmt.Errorf("unknown WIN_POLICY %q", c.WinPolicy)
	}

	switch c.WinEntity {
	case EntityResults, EntityWinningClan:
	default:
		return fmt.Errorf("unknown WIN_ENTITY %q", c.WinEntity)
	}

	if c.WinPolicy == PolicyThreshold && c.WinEntity == EntityWinningClan {
		return fmt.Errorf("WIN_POLICY=threshold needs per-line percentages and cannot be used with WIN_ENTITY=winning_clan")
	}

	switch c.MessageFormat {
	case FormatText, FormatEmbed:
	default:
		return fmt.Errorf("unknown MESSAGE_FORMAT %q", c.MessageFormat)
	}

	if c.RetentionWindow <= 0 {
		return fmt.Errorf("RETENTION_WINDOW must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	if c.MessageLimit <= 0 {
		return fmt.Errorf("MESSAGE_LIMIT must be positive")
	}
	if c.RecordsPerMessage <= 0 {
		return fmt.Errorf("RECORDS_PER_MESSAGE must be positive")
	}
	if c.RetryAttempts <= 0 {
		return fmt.Errorf("RETRY_ATTEMPTS must be positive")
	}
	if c.TopN < 0 {
		return fmt.Errorf("TOP_N must not be negative")
	}

	return nil
}

type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *envReader) str(key, fallback string) string {
	if v, ok := e.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func (e *envReader) int(key string, fallback int) int {
	raw := e.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		e.fail(fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return v
}

func (e *envReader) float(key string, fallback float64) float64 {
	raw := e.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		e.fail(fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return v
}

// duration accepts Go durations ("24h") and bare seconds ("300").
func (e *envReader) duration(key string, fallback time.Duration) time.Duration {
	raw := e.str(key, "")
	if raw == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		e.fail(fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return v
}

func (e *envReader) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
