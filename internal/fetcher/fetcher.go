package fetcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leaderboard-watcher/internal/config"
	"leaderboard-watcher/internal/constants"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"github.com/valyala/fasthttp"
)

type Client struct {
	url      string
	selector string
	client   *fasthttp.Client
	timeout  time.Duration
	attempts int
	delay    time.Duration
	logger   zerolog.Logger
}

func NewClient(cfg *config.Config, logger zerolog.Logger) *Client {
	httpClient := &fasthttp.Client{
		Name:                constants.UserAgent,
		ReadTimeout:         cfg.HTTPTimeout,
		WriteTimeout:        cfg.HTTPTimeout,
		MaxIdleConnDuration: 1 * time.Minute,
		MaxResponseBodySize: 16 << 20,
	}
	return newClient(cfg.SourceURL, cfg.SourceSelector, httpClient, cfg.HTTPTimeout, cfg.RetryAttempts, cfg.RetryDelay, logger)
}

func newClient(url, selector string, httpClient *fasthttp.Client, timeout time.Duration, attempts int, delay time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		url:      url,
		selector: selector,
		client:   httpClient,
		timeout:  timeout,
		attempts: attempts,
		delay:    delay,
		logger:   logger.With().Str("component", "fetcher").Str("url", url).Logger(),
	}
}

// Fetch downloads the leaderboard page and returns its text, retrying a
// bounded number of times with a constant delay. An empty string with a nil
// error means the page had no text.
func (c *Client) Fetch(ctx context.Context) (string, error) {
	backoff := retry.WithMaxRetries(uint64(c.attempts-1), retry.NewConstant(c.delay))

	var text string
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		body, contentType, err := c.get(ctx)
		if err != nil {
			c.logger.Warn().
				Err(err).
				Int("attempt", attempt).
				Int("max_attempts", c.attempts).
				Msg("failed to fetch page")
			return retry.RetryableError(err)
		}

		text, err = toText(body, contentType, c.selector)
		if err != nil {
			// the same bytes would fail again
			return err
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s after %d attempts: %w", c.url, attempt, err)
	}

	c.logger.Debug().Int("chars", len(text)).Int("attempts", attempt).Msg("page fetched")
	return text, nil
}

func (c *Client) get(ctx context.Context) ([]byte, string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.8")

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, "", err
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, "", fmt.Errorf("unexpected status: %d", resp.StatusCode())
	}

	// resp is released on return, so the body must be copied
	body := append([]byte(nil), resp.Body()...)
	return body, string(resp.Header.ContentType()), nil
}

func toText(body []byte, contentType, selector string) (string, error) {
	if strings.Contains(strings.ToLower(contentType), "html") {
		return ExtractText(string(body), selector)
	}
	return string(body), nil
}
