package notifier

import (
	"context"
	"errors"
	"io"
	"time"

	"leaderboard-watcher/internal/config"
	"leaderboard-watcher/internal/domain"

	"github.com/rs/zerolog"
)

// Sink is one delivery destination.
type Sink interface {
	Name() string
	SendRecords(ctx context.Context, records []domain.GameRecord) error
	SendRanking(ctx context.Context, ranking []domain.WinCount, window time.Duration) error
	SendText(ctx context.Context, text string) error
}

// Notifier delivers to every sink in turn. Delivery failures are logged and
// never stop the other sinks.
type Notifier struct {
	sinks    []Sink
	fallback Sink
	logger   zerolog.Logger
}

func New(cfg *config.Config, logger zerolog.Logger) (*Notifier, error) {
	opts := DiscordOptions{
		Embeds:            cfg.MessageFormat == config.FormatEmbed,
		RecordsPerMessage: cfg.RecordsPerMessage,
		MessageLimit:      cfg.MessageLimit,
		Attempts:          cfg.RetryAttempts,
		Delay:             cfg.RetryDelay,
		Timeout:           cfg.HTTPTimeout,
	}

	var sinks []Sink
	for _, u := range cfg.WebhookURLs {
		sink, err := NewDiscordSink(u, opts, logger)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}

	if len(cfg.KafkaBrokers) > 0 {
		sink, err := NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.RetryAttempts, cfg.RetryDelay, logger)
		if err != nil {
			logger.Warn().Err(err).Strs("brokers", cfg.KafkaBrokers).Msg("kafka not available, event publishing disabled")
		} else {
			sinks = append(sinks, sink)
		}
	}

	textOpts := opts
	textOpts.Embeds = false
	fallback, err := NewDiscordSink(cfg.FallbackWebhookURL, textOpts, logger)
	if err != nil {
		return nil, err
	}

	return NewWithSinks(sinks, fallback, logger), nil
}

func NewWithSinks(sinks []Sink, fallback Sink, logger zerolog.Logger) *Notifier {
	return &Notifier{
		sinks:    sinks,
		fallback: fallback,
		logger:   logger.With().Str("component", "notifier").Logger(),
	}
}

func (n *Notifier) NotifyRecords(ctx context.Context, records []domain.GameRecord) error {
	if len(records) == 0 {
		return nil
	}
	return n.each(func(s Sink) error {
		return s.SendRecords(ctx, records)
	}, "records", len(records))
}

func (n *Notifier) NotifyRanking(ctx context.Context, ranking []domain.WinCount, window time.Duration) error {
	if len(ranking) == 0 {
		n.logger.Info().Msg("no wins in the retention window, skipping ranking")
		return nil
	}
	return n.each(func(s Sink) error {
		return s.SendRanking(ctx, ranking, window)
	}, "ranking", len(ranking))
}

// ReportFailure sends a cycle failure to the fallback destination.
func (n *Notifier) ReportFailure(ctx context.Context, cause error) {
	if n.fallback == nil {
		return
	}
	if err := n.fallback.SendText(ctx, ErrorText(cause)); err != nil {
		n.logger.Error().Err(err).Str("sink", n.fallback.Name()).Msg("failed to report cycle failure")
	}
}

func (n *Notifier) Close() error {
	var errs []error
	for _, s := range n.sinks {
		if c, ok := s.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

func (n *Notifier) each(send func(Sink) error, what string, count int) error {
	var errs []error
	for _, s := range n.sinks {
		if err := send(s); err != nil {
			n.logger.Error().Err(err).Str("sink", s.Name()).Str("payload", what).Msg("delivery failed")
			errs = append(errs, err)
			continue
		}
		n.logger.Info().Str("sink", s.Name()).Str("payload", what).Int("items", count).Msg("delivered")
	}
	return errors.Join(errs...)
}
