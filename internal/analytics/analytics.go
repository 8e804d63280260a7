// Package analytics buckets a member's tasks into calendar days of the
// reference zone and derives counts and efficiency from them.
package analytics

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"household-planner/internal/lifecycle"
	"household-planner/internal/model"
	"household-planner/internal/timewindow"
)

// DaysPerWeek is the length of an activity window.
const DaysPerWeek = 7

// Engine computes window-bucketed metrics. It never mutates tasks.
// Records with unparseable timestamps are skipped and logged.
type Engine struct {
	logger zerolog.Logger
}

func New(logger zerolog.Logger) *Engine {
	return &Engine{logger: logger.With().Str("component", "analytics").Logger()}
}

// CompletedOn counts tasks whose completion falls on day.
func (e *Engine) CompletedOn(tasks []model.Task, day timewindow.Date) int {
	count := 0
	for _, task := range tasks {
		if !task.Status.IsDone() {
			continue
		}
		at, ok := e.completion(task)
		if ok && timewindow.DateOf(at) == day {
			count++
		}
	}
	return count
}

// PendingAsOf counts tasks that existed on day and were not yet completed by
// the end of it. A task completed later still counts as pending on day.
func (e *Engine) PendingAsOf(tasks []model.Task, day timewindow.Date) int {
	count := 0
	for _, task := range tasks {
		created, err := task.CreatedInstant()
		if err != nil {
			e.malformed(task, "created_at", err)
			continue
		}
		if timewindow.DateOf(created).After(day) {
			continue
		}
		if !task.Status.IsDone() {
			count++
			continue
		}
		completed, ok := e.completion(task)
		if !ok || !timewindow.DateOf(completed).After(day) {
			continue
		}
		count++
	}
	return count
}

// CurrentlyPending counts tasks whose status is pending right now.
func CurrentlyPending(tasks []model.Task) int {
	count := 0
	for _, task := range tasks {
		if task.Status == model.StatusPending {
			count++
		}
	}
	return count
}

// CompletedInWeek sums CompletedOn over [weekStart, through], never looking
// past the seventh day of the week.
func (e *Engine) CompletedInWeek(tasks []model.Task, weekStart, through timewindow.Date) int {
	last := weekStart.AddDays(DaysPerWeek - 1)
	if through.Before(last) {
		last = through
	}
	total := 0
	for day := weekStart; !day.After(last); day = day.AddDays(1) {
		total += e.CompletedOn(tasks, day)
	}
	return total
}

// Efficiency is completed / (completed + pending) as a percentage rounded to
// two decimals, or 0 when both are zero.
func Efficiency(completedThisWeek, pendingNow int) float64 {
	total := completedThisWeek + pendingNow
	if total <= 0 {
		return 0.0
	}
	pct := float64(completedThisWeek) / float64(total) * 100
	return math.Round(pct*100) / 100
}

// DayActivity is one bar pair of the weekly activity chart.
type DayActivity struct {
	Day       string `json:"day"`
	Date      string `json:"date"`
	Completed int    `json:"completed"`
	Pending   int    `json:"pending"`
}

// DailyActivity returns Monday..Sunday counts for the week starting at
// weekStart and the largest cell value, floored at 1 so a chart axis is
// never empty.
func (e *Engine) DailyActivity(tasks []model.Task, weekStart timewindow.Date) ([]DayActivity, int) {
	days := make([]DayActivity, 0, DaysPerWeek)
	maxValue := 0
	for i := 0; i < DaysPerWeek; i++ {
		day := weekStart.AddDays(i)
		completed := e.CompletedOn(tasks, day)
		pending := e.PendingAsOf(tasks, day)
		days = append(days, DayActivity{
			Day:       day.Time().Format("Mon"),
			Date:      day.String(),
			Completed: completed,
			Pending:   pending,
		})
		maxValue = max(maxValue, completed, pending)
	}
	return days, max(1, maxValue)
}

// completion returns a done task's completion instant. A missing or
// unparseable completed_at is reported and the task is skipped.
func (e *Engine) completion(task model.Task) (time.Time, bool) {
	at, ok, err := task.CompletedInstant()
	if err == nil && !ok {
		err = lifecycle.ErrNoCompletedAt
	}
	if err != nil {
		e.malformed(task, "completed_at", err)
		return time.Time{}, false
	}
	return at, true
}

func (e *Engine) malformed(task model.Task, field string, err error) {
	e.logger.Warn().
		Err(lifecycle.Malformed(task, field, err)).
		Str("task_id", task.ID).
		Msg("skipping malformed task")
}
