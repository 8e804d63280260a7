package service

import (
	"context"

	"github.com/rs/zerolog"

	"household-planner/internal/lifecycle"
	"household-planner/internal/metrics"
	"household-planner/internal/model"
)

// CheckedTaskStore reports loaded tasks that break the lifecycle invariants.
// Records pass through unchanged so a bad row never blocks a member.
type CheckedTaskStore struct {
	TaskStore
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

func NewCheckedTaskStore(inner TaskStore, logger zerolog.Logger, m *metrics.Metrics) *CheckedTaskStore {
	return &CheckedTaskStore{
		TaskStore: inner,
		logger:    logger.With().Str("component", "task_store").Logger(),
		metrics:   m,
	}
}

func (s *CheckedTaskStore) Load(ctx context.Context, member string) ([]model.Task, error) {
	tasks, err := s.TaskStore.Load(ctx, member)
	if err != nil {
		return nil, err
	}
	invalid := 0
	for _, task := range tasks {
		if err := lifecycle.Validate(task); err != nil {
			invalid++
			s.logger.Warn().
				Err(err).
				Str("member", member).
				Str("task_id", task.ID).
				Msg("stored task breaks lifecycle invariants")
		}
	}
	s.metrics.ObserveMalformed("load", invalid)
	return tasks, nil
}
