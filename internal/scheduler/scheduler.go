package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// Cycle is the unit of work run on every tick.
type Cycle interface {
	Tick(ctx context.Context)
}

type Scheduler struct {
	sched  gocron.Scheduler
	cycle  Cycle
	ctx    context.Context
	cancel context.CancelFunc
	logger zerolog.Logger
}

// New schedules cycle every interval, or on cronExpr when it is set. The
// first cycle starts immediately and cycles never overlap: a run that is
// still going when the next tick fires pushes that tick back.
func New(cycle Cycle, interval time.Duration, cronExpr string, logger zerolog.Logger) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	s := &Scheduler{
		sched:  sched,
		cycle:  cycle,
		logger: logger.With().Str("component", "scheduler").Logger(),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	definition := gocron.DurationJob(interval)
	if cronExpr != "" {
		definition = gocron.CronJob(cronExpr, false)
	}

	_, err = sched.NewJob(
		definition,
		gocron.NewTask(s.run),
		gocron.WithName("watch-cycle"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		s.cancel()
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to schedule watch cycle: %w", err)
	}

	s.logger.Info().Dur("interval", interval).Str("cron", cronExpr).Msg("watch cycle scheduled")
	return s, nil
}

func (s *Scheduler) Start() {
	s.sched.Start()
	s.logger.Info().Msg("scheduler started")
}

func (s *Scheduler) Stop() error {
	s.cancel()
	if err := s.sched.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	s.logger.Info().Msg("scheduler stopped")
	return nil
}

func (s *Scheduler) run() {
	start := time.Now()
	s.cycle.Tick(s.ctx)
	s.logger.Debug().Dur("took", time.Since(start)).Msg("tick finished")
}
