package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"leaderboard-watcher/internal/config"
	"leaderboard-watcher/internal/constants"
	fxmodules "leaderboard-watcher/internal/fx"
	"leaderboard-watcher/internal/scheduler"
	"leaderboard-watcher/internal/server"
	"leaderboard-watcher/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
)

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	report := flag.Bool("report", false, "send the ranking for the current window and exit")
	flag.Parse()

	if *once || *report {
		os.Exit(runCommand(*report))
	}

	fx.New(
		fxmodules.Module,
		fx.Invoke(runWatcher),
	).Run()
}

func runCommand(report bool) int {
	var (
		watch  *service.WatchService
		logger zerolog.Logger
	)

	app := fx.New(
		fxmodules.Module,
		fx.Populate(&watch, &logger),
		fx.NopLogger,
	)
	if err := app.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.CycleTimeout)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to start")
		return 1
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer stopCancel()
		if err := app.Stop(stopCtx); err != nil {
			logger.Warn().Err(err).Msg("error during shutdown")
		}
	}()

	if report {
		if err := watch.Report(ctx); err != nil {
			logger.Error().Err(err).Msg("ranking report failed")
			return 1
		}
		return 0
	}

	watch.Tick(ctx)
	if watch.LastStatus().Outcome == service.OutcomeFailed {
		return 1
	}
	return 0
}

func runWatcher(
	lc fx.Lifecycle,
	sched *scheduler.Scheduler,
	status *server.StatusServer,
	cfg *config.Config,
	logger zerolog.Logger,
) {
	var srv *http.Server
	if cfg.ServerPort != "" {
		srv = &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
			Handler:           status.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if srv != nil {
				go func() {
					logger.Info().Str("addr", srv.Addr).Msg("status server starting")
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Fatal().Err(err).Msg("status server failed")
					}
				}()
			}
			sched.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down watcher")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			g, gctx := errgroup.WithContext(shutdownCtx)
			g.Go(sched.Stop)
			if srv != nil {
				g.Go(func() error {
					return srv.Shutdown(gctx)
				})
			}
			if err := g.Wait(); err != nil {
				logger.Error().Err(err).Msg("shutdown failed")
				return err
			}
			logger.Info().Msg("watcher stopped gracefully")
			return nil
		},
	})
}
