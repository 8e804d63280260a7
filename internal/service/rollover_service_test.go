package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"household-planner/internal/model"
	"household-planner/internal/timewindow"
)

func TestRolloverService_RollOverAll(t *testing.T) {
	h := newHarness(t, "Veer", "Avni")
	ctx := context.Background()

	lateYesterday := doneTask("late", model.StatusCompleted, at(14, 23, 59))
	earlyToday := doneTask("early", model.StatusCompleted, at(15, 0, 1))
	lastWeek := doneTask("week", model.StatusCompleted, at(8, 12, 0))
	broken := doneTask("broken", model.StatusCompleted, "not-a-time")
	h.put(t, "Veer", lateYesterday, earlyToday, pendingTask("p", "2024-05-15"))
	h.put(t, "Avni", lastWeek, broken)

	n, err := h.rolloverSvc.RollOverAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	veer := h.load(t, "Veer")
	assert.Equal(t, model.StatusDoneYesterday, veer[0].Status)
	assert.Equal(t, model.StatusCompleted, veer[1].Status)
	assert.Equal(t, model.StatusPending, veer[2].Status)

	avni := h.load(t, "Avni")
	assert.Equal(t, model.StatusDoneYesterday, avni[0].Status)
	assert.Equal(t, model.StatusCompleted, avni[1].Status)
	assert.Equal(t, "not-a-time", *avni[1].CompletedAt)

	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.RolloverRuns.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.TasksRolledOver))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.MalformedRecords.WithLabelValues("rollover")))

	n, err = h.rolloverSvc.RollOverAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRolloverService_NextDayMovesTodaysCompletions(t *testing.T) {
	h := newHarness(t, "Veer")
	ctx := context.Background()
	h.put(t, "Veer", doneTask("t", model.StatusCompleted, at(15, 9, 0)))

	n, err := h.rolloverSvc.RollOverAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	h.clock.Set(baseTime.Add(24 * time.Hour))
	n, err = h.rolloverSvc.RollOverAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, model.StatusDoneYesterday, h.load(t, "Veer")[0].Status)
}

type countingRoller struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *countingRoller) RollOverAll(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return 0, r.err
}

func (r *countingRoller) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestRolloverGate_OncePerDay(t *testing.T) {
	clock := &testClock{now: baseTime}
	roller := &countingRoller{}
	gate := NewRolloverGate(roller, clock, zerolog.Nop())
	ctx := context.Background()

	_, ok := gate.LastRun()
	assert.False(t, ok)

	ran, err := gate.EnsureRolloverRan(ctx)
	require.NoError(t, err)
	assert.True(t, ran)

	clock.Set(baseTime.Add(13 * time.Hour)) // 23:00 the same day
	ran, err = gate.EnsureRolloverRan(ctx)
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Equal(t, 1, roller.Calls())

	clock.Set(baseTime.Add(14 * time.Hour)) // past midnight
	ran, err = gate.EnsureRolloverRan(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 2, roller.Calls())

	day, ok := gate.LastRun()
	assert.True(t, ok)
	assert.Equal(t, timewindow.Date{Year: 2024, Month: time.May, Day: 16}, day)
}

func TestRolloverGate_FailureStillMarksDay(t *testing.T) {
	clock := &testClock{now: baseTime}
	roller := &countingRoller{err: errors.New("disk on fire")}
	gate := NewRolloverGate(roller, clock, zerolog.Nop())
	ctx := context.Background()

	ran, err := gate.EnsureRolloverRan(ctx)
	assert.True(t, ran)
	assert.Error(t, err)

	ran, err = gate.EnsureRolloverRan(ctx)
	assert.False(t, ran)
	assert.NoError(t, err)
	assert.Equal(t, 1, roller.Calls())
}

func TestRolloverGate_ConcurrentCallersRunOnce(t *testing.T) {
	roller := &countingRoller{}
	gate := NewRolloverGate(roller, &testClock{now: baseTime}, zerolog.Nop())

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = gate.EnsureRolloverRan(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, roller.Calls())
}
