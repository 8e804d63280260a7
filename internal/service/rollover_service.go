package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"household-planner/internal/lifecycle"
	"household-planner/internal/metrics"
	"household-planner/internal/timewindow"
)

// RolloverService runs the completed → done_yesterday pass over every
// member's tasks.
type RolloverService struct {
	tasks   TaskStore
	members MemberStore
	clock   timewindow.Clock
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

func NewRolloverService(tasks TaskStore, members MemberStore, clock timewindow.Clock, logger zerolog.Logger, m *metrics.Metrics) *RolloverService {
	return &RolloverService{
		tasks:   tasks,
		members: members,
		clock:   clock,
		logger:  logger.With().Str("component", "rollover").Logger(),
		metrics: m,
	}
}

// RollOverAll transitions every eligible task and returns how many moved.
// Malformed tasks are logged and skipped. A member whose tasks cannot be
// loaded or saved does not stop the others; those failures are joined into
// the returned error.
func (s *RolloverService) RollOverAll(ctx context.Context) (int, error) {
	names, err := s.members.ListNames(ctx)
	if err != nil {
		s.metrics.ObserveRollover("error", 0, 0, float64(s.clock.Now().Unix()))
		return 0, fmt.Errorf("list members: %w", err)
	}

	today := timewindow.Today(s.clock)
	var (
		total     int
		malformed int
		errs      []error
	)
	for _, member := range names {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		tasks, err := s.tasks.Load(ctx, member)
		if err != nil {
			errs = append(errs, fmt.Errorf("member %s: %w", member, err))
			continue
		}
		res := lifecycle.RollOver(tasks, today)
		for _, bad := range res.Malformed {
			s.logger.Warn().Err(bad).Str("member", member).Msg("skipping malformed task")
		}
		malformed += len(res.Malformed)
		if res.Transitioned == 0 {
			continue
		}
		if err := s.tasks.Save(ctx, member, tasks); err != nil {
			errs = append(errs, fmt.Errorf("member %s: %w", member, err))
			continue
		}
		total += res.Transitioned
	}

	outcome := "ok"
	if len(errs) > 0 {
		outcome = "error"
	}
	s.metrics.ObserveRollover(outcome, total, malformed, float64(s.clock.Now().Unix()))
	s.logger.Info().
		Str("today", today.String()).
		Int("transitioned", total).
		Int("malformed", malformed).
		Msg("rollover pass finished")
	return total, errors.Join(errs...)
}

// Roller is anything that can run a full rollover pass.
type Roller interface {
	RollOverAll(ctx context.Context) (int, error)
}

// RolloverGate runs the rollover at most once per reference-zone day. It is
// called on activity rather than from a timer, so an idle day runs nothing
// and the first request of a new day pays for the pass.
type RolloverGate struct {
	roller Roller
	clock  timewindow.Clock
	logger zerolog.Logger

	mu      sync.Mutex
	lastRun timewindow.Date
	hasRun  bool
}

func NewRolloverGate(roller Roller, clock timewindow.Clock, logger zerolog.Logger) *RolloverGate {
	return &RolloverGate{
		roller: roller,
		clock:  clock,
		logger: logger.With().Str("component", "rollover_gate").Logger(),
	}
}

// EnsureRolloverRan runs the rollover if it has not been attempted today.
// The day is marked as attempted even when the pass fails, so one broken
// record or an unavailable store costs one attempt per day rather than one
// per request. ran reports whether a pass was started by this call.
func (g *RolloverGate) EnsureRolloverRan(ctx context.Context) (ran bool, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	today := timewindow.Today(g.clock)
	if g.hasRun && g.lastRun == today {
		return false, nil
	}

	previous := "never"
	if g.hasRun {
		previous = g.lastRun.String()
	}
	g.logger.Info().
		Str("previous", previous).
		Str("today", today.String()).
		Msg("running daily rollover")

	count, err := g.roller.RollOverAll(ctx)
	g.lastRun = today
	g.hasRun = true
	if err != nil {
		g.logger.Error().
			Err(err).
			Int("transitioned", count).
			Msg("daily rollover failed, not retrying until tomorrow")
		return true, err
	}
	g.logger.Info().Int("transitioned", count).Msg("daily rollover complete")
	return true, nil
}

// LastRun returns the day of the last attempt; ok is false before the first.
func (g *RolloverGate) LastRun() (day timewindow.Date, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastRun, g.hasRun
}
