package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"

	"marketpulse/internal/logging"
)

// Job is one pipeline run.
type Job func(ctx context.Context)

// Scheduler runs a job once at start and then on a fixed interval. Runs
// never overlap: a slow run delays the next one.
type Scheduler struct {
	cron     *cron.Cron
	job      Job
	interval time.Duration
	logger   *log.Logger
}

func New(interval time.Duration, job Job, logger *log.Logger) *Scheduler {
	logger = logging.Component(logger, "scheduler")
	adapter := cronLogger{logger: logger}

	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.DelayIfStillRunning(adapter)),
		),
		job:      job,
		interval: interval,
		logger:   logger,
	}
}

// Start performs the first run synchronously, then schedules the rest.
func (s *Scheduler) Start() error {
	if s.interval < time.Second {
		return fmt.Errorf("interval must be at least one second, got %s", s.interval)
	}

	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return fmt.Errorf("failed to schedule job: %w", err)
	}

	s.run()

	s.cron.Start()
	s.logger.Info().Str("interval", s.interval.String()).Msg("Scheduler started")
	return nil
}

// Stop prevents further runs. The returned context is done once a run in
// progress has finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info().Msg("Scheduler stopped")
	return s.cron.Stop()
}

func (s *Scheduler) run() {
	start := time.Now()
	s.job(context.Background())
	s.logger.Info().Dur("duration", time.Since(start)).Msg("Run complete")
}

// cronLogger routes robfig/cron messages into the component logger.
type cronLogger struct {
	logger *log.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	fields(l.logger.Debug(), keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields(l.logger.Error().Err(err), keysAndValues).Msg(msg)
}

func fields(e *log.Entry, keysAndValues []interface{}) *log.Entry {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		e = e.Str(fmt.Sprint(keysAndValues[i]), fmt.Sprint(keysAndValues[i+1]))
	}
	return e
}
