package fx

import (
	"context"

	"leaderboard-watcher/internal/aggregate"
	"leaderboard-watcher/internal/config"
	"leaderboard-watcher/internal/fetcher"
	"leaderboard-watcher/internal/logger"
	"leaderboard-watcher/internal/notifier"
	"leaderboard-watcher/internal/retention"
	"leaderboard-watcher/internal/scheduler"
	"leaderboard-watcher/internal/server"
	"leaderboard-watcher/internal/service"
	"leaderboard-watcher/internal/storage"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
)

func ProvideStore(blob storage.Blob, cfg *config.Config, logger zerolog.Logger) *retention.Store {
	return retention.NewStore(blob, cfg.RetentionWindow, logger)
}

func ProvideScheduler(watch *service.WatchService, cfg *config.Config, logger zerolog.Logger) (*scheduler.Scheduler, error) {
	return scheduler.New(watch, cfg.PollInterval, cfg.ScheduleCron, logger)
}

// RegisterClosers releases storage and notification sinks when the app stops.
func RegisterClosers(lc fx.Lifecycle, blob storage.Blob, n *notifier.Notifier, logger zerolog.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			var g errgroup.Group
			g.Go(func() error {
				if err := blob.Close(); err != nil {
					logger.Warn().Err(err).Msg("error closing retention storage")
					return err
				}
				return nil
			})
			g.Go(func() error {
				if err := n.Close(); err != nil {
					logger.Warn().Err(err).Msg("error closing notifier")
					return err
				}
				return nil
			})
			return g.Wait()
		},
	})
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	// storage
	fx.Provide(storage.New),
	fx.Provide(ProvideStore),
	// pipeline
	fx.Provide(fetcher.NewClient),
	fx.Provide(notifier.New),
	fx.Provide(aggregate.NewFromConfig),
	// svc
	fx.Provide(fx.Annotate(
		service.NewWatchService,
		fx.From(new(*fetcher.Client), new(*retention.Store), new(*notifier.Notifier), new(*aggregate.Aggregator)),
	)),
	fx.Provide(ProvideScheduler),
	// server
	fx.Provide(fx.Annotate(
		server.NewStatusServer,
		fx.From(new(*service.WatchService)),
	)),
	fx.Invoke(RegisterClosers),
)
