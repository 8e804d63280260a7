// Package lifecycle moves tasks through pending → completed → done_yesterday.
//
// Nothing here touches storage; callers load a member's tasks, apply a
// transition and save the slice back.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"household-planner/internal/model"
	"household-planner/internal/timewindow"
)

var (
	// ErrNotPending is returned when completing a task that is already done.
	ErrNotPending = errors.New("task is not pending")
	// ErrMalformedRecord wraps every diagnostic about an unparseable stored field.
	ErrMalformedRecord = errors.New("malformed task record")
	// ErrNoCompletedAt is the diagnostic cause for a done task without a completion time.
	ErrNoCompletedAt = errors.New("done task has no completed_at")
)

// Complete moves a pending task to completed at now.
func Complete(task *model.Task, now time.Time) error {
	if task.Status != model.StatusPending {
		return ErrNotPending
	}
	stamp := timewindow.FormatInstant(now)
	task.Status = model.StatusCompleted
	task.CompletedAt = &stamp
	return nil
}

// RolloverResult summarises one pass of RollOver.
type RolloverResult struct {
	Transitioned int
	// Malformed holds one ErrMalformedRecord-wrapped error per skipped task.
	Malformed []error
}

// RollOver moves every completed task whose completion date falls before
// today into done_yesterday. Tasks completed today stay completed.
//
// A task with an unparseable completed_at is left untouched and reported in
// Malformed; the rest of the slice is still processed. Running RollOver again
// for the same day transitions nothing.
func RollOver(tasks []model.Task, today timewindow.Date) RolloverResult {
	var res RolloverResult
	for i := range tasks {
		task := &tasks[i]
		if task.Status != model.StatusCompleted {
			continue
		}
		at, ok, err := task.CompletedInstant()
		if err != nil || !ok {
			if err == nil {
				err = ErrNoCompletedAt
			}
			res.Malformed = append(res.Malformed, Malformed(*task, "completed_at", err))
			continue
		}
		if !timewindow.DateOf(at).Before(today) {
			continue
		}
		task.Status = model.StatusDoneYesterday
		res.Transitioned++
	}
	return res
}

// Malformed builds the diagnostic for a task whose field failed to parse.
func Malformed(task model.Task, field string, err error) error {
	return fmt.Errorf("%w: task %s: %s: %v", ErrMalformedRecord, task.ID, field, err)
}

// Validate checks the invariants every stored task must satisfy.
func Validate(task model.Task) error {
	switch task.Status {
	case model.StatusPending:
		if task.CompletedAt != nil {
			return fmt.Errorf("task %s: pending with completed_at set", task.ID)
		}
		return nil
	case model.StatusCompleted, model.StatusDoneYesterday:
	default:
		return fmt.Errorf("task %s: unknown status %q", task.ID, task.Status)
	}

	completed, ok, err := task.CompletedInstant()
	if err != nil {
		return Malformed(task, "completed_at", err)
	}
	if !ok {
		return fmt.Errorf("task %s: %s without completed_at", task.ID, task.Status)
	}
	created, err := task.CreatedInstant()
	if err != nil {
		return Malformed(task, "created_at", err)
	}
	if completed.Before(created) {
		return fmt.Errorf("task %s: completed before it was created", task.ID)
	}
	return nil
}
