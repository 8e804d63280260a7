package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const defaultJobTimeout = 30 * time.Second

// Job is a named unit of scheduled work. Run gets a context bounded by Timeout.
type Job struct {
	Name    string
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// SchedulerService runs household jobs on a cron clock in one location.
type SchedulerService struct {
	cron   *cron.Cron
	logger zerolog.Logger
}

func NewSchedulerService(loc *time.Location, logger zerolog.Logger) *SchedulerService {
	log := logger.With().Str("component", "scheduler").Logger()
	printf := cron.PrintfLogger(&log)
	return &SchedulerService{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithLogger(printf),
			cron.WithChain(cron.Recover(printf), cron.SkipIfStillRunning(printf)),
		),
		logger: log,
	}
}

// ScheduleDaily runs job every day at HH:MM in the scheduler's location.
func (s *SchedulerService) ScheduleDaily(at string, job Job) (cron.EntryID, error) {
	spec, err := buildDailySpec(at)
	if err != nil {
		return 0, fmt.Errorf("schedule %s: %w", job.Name, err)
	}
	return s.add(spec, job)
}

// ScheduleEvery runs job at a fixed interval, rounded down to whole seconds.
func (s *SchedulerService) ScheduleEvery(interval time.Duration, job Job) (cron.EntryID, error) {
	if interval < time.Second {
		return 0, fmt.Errorf("schedule %s: interval %s is under a second", job.Name, interval)
	}
	return s.add(fmt.Sprintf("@every %ds", int(interval.Seconds())), job)
}

func (s *SchedulerService) add(spec string, job Job) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, func() { s.run(job) })
	if err != nil {
		return 0, fmt.Errorf("schedule %s: %w", job.Name, err)
	}
	s.logger.Debug().
		Str("job", job.Name).
		Str("spec", spec).
		Msg("job scheduled")
	return id, nil
}

func (s *SchedulerService) run(job Job) {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	started := time.Now()
	err := job.Run(ctx)
	event := s.logger.Info()
	if err != nil {
		event = s.logger.Error().Err(err)
	}
	event.
		Str("job", job.Name).
		Dur("took", time.Since(started)).
		Msg("job finished")
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to return.
func (s *SchedulerService) Stop() {
	<-s.cron.Stop().Done()
}

// Entries returns the registered jobs with their next run times.
func (s *SchedulerService) Entries() []cron.Entry {
	return s.cron.Entries()
}

// buildDailySpec turns "HH:MM" into a seconds-first cron spec.
func buildDailySpec(at string) (string, error) {
	at = strings.TrimSpace(at)
	t, err := time.Parse("15:04", at)
	if err != nil {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", at)
	}
	return fmt.Sprintf("0 %d %d * * *", t.Minute(), t.Hour()), nil
}
