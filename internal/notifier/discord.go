package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"leaderboard-watcher/internal/constants"
	"leaderboard-watcher/internal/domain"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

// webhookAPI is the part of *discordgo.Session used for delivery.
type webhookAPI interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type DiscordOptions struct {
	Embeds            bool
	RecordsPerMessage int
	MessageLimit      int
	Attempts          int
	Delay             time.Duration
	Timeout           time.Duration
}

type DiscordSink struct {
	id     string
	token  string
	api    webhookAPI
	opts   DiscordOptions
	logger zerolog.Logger
}

func NewDiscordSink(webhookURL string, opts DiscordOptions, logger zerolog.Logger) (*DiscordSink, error) {
	id, token, err := ParseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}

	// webhooks need no bot token
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Client = &http.Client{Timeout: opts.Timeout}
	session.UserAgent = "leaderboard-watcher"

	return newDiscordSink(id, token, session, opts, logger), nil
}

func newDiscordSink(id, token string, api webhookAPI, opts DiscordOptions, logger zerolog.Logger) *DiscordSink {
	if opts.Attempts <= 0 {
		opts.Attempts = constants.DefaultRetryAttempts
	}
	if opts.MessageLimit <= 0 {
		opts.MessageLimit = constants.DefaultMessageLimit
	}
	if opts.RecordsPerMessage <= 0 {
		opts.RecordsPerMessage = constants.DefaultRecordsPerMessage
	}
	return &DiscordSink{
		id:     id,
		token:  token,
		api:    api,
		opts:   opts,
		logger: logger.With().Str("component", "discord").Str("webhook_id", id).Logger(),
	}
}

// ParseWebhookURL extracts the id and token from
// https://discord.com/api/webhooks/{id}/{token}.
func ParseWebhookURL(raw string) (id, token string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid webhook url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, p := range parts {
		if p == "webhooks" && i+2 < len(parts) && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("invalid webhook url: expected /api/webhooks/{id}/{token}")
}

func (d *DiscordSink) Name() string {
	return "discord:" + d.id
}

func (d *DiscordSink) SendRecords(ctx context.Context, records []domain.GameRecord) error {
	var errs []error

	if d.opts.Embeds {
		size := min(d.opts.RecordsPerMessage, constants.MaxEmbedsPerMessage)
		for _, group := range groups(records, size) {
			embeds := make([]*discordgo.MessageEmbed, 0, len(group))
			for _, r := range group {
				embeds = append(embeds, RecordEmbed(r))
			}
			if err := d.execute(ctx, &discordgo.WebhookParams{Embeds: embeds}); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	for _, group := range groups(records, d.opts.RecordsPerMessage) {
		blocks := make([]string, 0, len(group))
		for _, r := range group {
			blocks = append(blocks, RecordBlock(r))
		}
		if err := d.SendText(ctx, strings.Join(blocks, "\n")); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *DiscordSink) SendRanking(ctx context.Context, ranking []domain.WinCount, window time.Duration) error {
	return d.SendText(ctx, RankingText(ranking, window))
}

// SendText posts text as one or more chunks in order. A chunk that still
// fails after retries is logged and the remaining chunks are still sent.
func (d *DiscordSink) SendText(ctx context.Context, text string) error {
	var errs []error
	for _, chunk := range Chunk(text, d.opts.MessageLimit) {
		if err := d.execute(ctx, &discordgo.WebhookParams{Content: chunk}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *DiscordSink) execute(ctx context.Context, params *discordgo.WebhookParams) error {
	backoff := retry.WithMaxRetries(uint64(d.opts.Attempts-1), retry.NewConstant(d.opts.Delay))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		_, err := d.api.WebhookExecute(d.id, d.token, true, params, discordgo.WithContext(ctx))
		if err == nil {
			return nil
		}

		d.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", d.opts.Attempts).
			Msg("failed to deliver webhook message")

		if !retryable(err) {
			return err
		}
		return retry.RetryableError(err)
	})
	if err != nil {
		d.logger.Error().Err(err).Int("attempts", attempt).Msg("giving up on webhook message")
		return fmt.Errorf("failed to deliver to %s: %w", d.Name(), err)
	}
	return nil
}

// retryable reports false for client errors other than rate limiting; the
// same request would be rejected again.
func retryable(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		code := restErr.Response.StatusCode
		return code == http.StatusTooManyRequests || code >= 500
	}
	return true
}
