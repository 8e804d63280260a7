package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"household-planner/internal/analytics"
	"household-planner/internal/metrics"
	"household-planner/internal/model"
	"household-planner/internal/repository"
	"household-planner/internal/timewindow"
)

// testClock is a settable clock shared by every service in a harness.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Wednesday 15 May 2024, 10:00 in the reference zone. The week starts on
// Monday the 13th.
var baseTime = time.Date(2024, time.May, 15, 10, 0, 0, 0, timewindow.Reference)

type harness struct {
	clock    *testClock
	members  *repository.MemberRepository
	tasks    *repository.TaskRepository
	profiles *repository.ProfileRepository
	metrics  *metrics.Metrics

	memberSvc   *MemberService
	ledgerSvc   *LedgerService
	taskSvc     *TaskService
	rolloverSvc *RolloverService
	insightsSvc *InsightsService
	reminderSvc *ReminderService
}

func newHarness(t *testing.T, members ...string) *harness {
	t.Helper()

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "planner.db"), zerolog.Nop())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	h := &harness{
		clock:    &testClock{now: baseTime},
		members:  repository.NewMemberRepository(db),
		tasks:    repository.NewTaskRepository(db),
		profiles: repository.NewProfileRepository(db),
		metrics:  metrics.New(),
	}
	log := zerolog.Nop()
	h.memberSvc = NewMemberService(h.members, log)
	h.ledgerSvc = NewLedgerService(h.profiles, h.clock, log)
	h.taskSvc = NewTaskService(h.tasks, h.members, h.ledgerSvc, h.clock, log, h.metrics)
	h.rolloverSvc = NewRolloverService(h.tasks, h.members, h.clock, log, h.metrics)
	h.insightsSvc = NewInsightsService(h.members, h.tasks, h.profiles, analytics.New(log), h.clock)
	h.reminderSvc = NewReminderService(h.tasks, h.insightsSvc, h.clock)

	require.NoError(t, h.memberSvc.Seed(context.Background(), members))
	return h
}

// put stores tasks for member directly, bypassing the services.
func (h *harness) put(t *testing.T, member string, tasks ...model.Task) {
	t.Helper()
	require.NoError(t, h.tasks.Save(context.Background(), member, tasks))
}

func (h *harness) load(t *testing.T, member string) []model.Task {
	t.Helper()
	tasks, err := h.tasks.Load(context.Background(), member)
	require.NoError(t, err)
	return tasks
}

func strptr(s string) *string { return &s }

// at returns an instant in the reference zone, stored the way tasks store it.
func at(day, hour, minute int) string {
	return timewindow.FormatInstant(time.Date(2024, time.May, day, hour, minute, 0, 0, timewindow.Reference))
}

func pendingTask(id, due string) model.Task {
	return model.Task{
		ID:          id,
		Description: "task " + id,
		Status:      model.StatusPending,
		CreatedAt:   at(13, 9, 0),
		DueDate:     due,
	}
}

func doneTask(id string, status model.TaskStatus, completedAt string) model.Task {
	task := pendingTask(id, "2024-05-13")
	task.Status = status
	task.CompletedAt = strptr(completedAt)
	return task
}
