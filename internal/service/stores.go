package service

import (
	"context"

	"household-planner/internal/model"
)

// TaskStore persists each member's ordered task list. Save replaces the
// whole list. A member with nothing stored loads as an empty list.
type TaskStore interface {
	Load(ctx context.Context, member string) ([]model.Task, error)
	Save(ctx context.Context, member string, tasks []model.Task) error
}

// ProfileStore persists star balances and their ledgers. An unknown member
// loads as the zero profile.
type ProfileStore interface {
	Load(ctx context.Context, member string) (model.StarProfile, error)
	Save(ctx context.Context, member string, profile model.StarProfile) error
}

// MemberStore is the household roster.
type MemberStore interface {
	ListNames(ctx context.Context) ([]string, error)
	Add(ctx context.Context, name string) error
	Remove(ctx context.Context, name string) error
}

// Stores is one storage backend seen through all three contracts.
type Stores struct {
	Members  MemberStore
	Tasks    TaskStore
	Profiles ProfileStore
}

// findTask is a linear scan; collections hold at most a few hundred tasks.
func findTask(tasks []model.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
