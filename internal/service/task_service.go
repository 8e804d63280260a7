package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"household-planner/internal/lifecycle"
	"household-planner/internal/metrics"
	"household-planner/internal/model"
	"household-planner/internal/timewindow"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Description string
	// DueDate is YYYY-MM-DD; empty means today in the reference zone.
	DueDate  string
	Category string
	Priority string
}

// Completion is the outcome of a successful CompleteTask.
type Completion struct {
	Task         model.Task
	StarsAwarded int
	Balance      int
}

// TaskService wraps task-related business logic.
type TaskService struct {
	tasks   TaskStore
	members MemberStore
	ledger  *LedgerService
	clock   timewindow.Clock
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

func NewTaskService(tasks TaskStore, members MemberStore, ledger *LedgerService, clock timewindow.Clock, logger zerolog.Logger, m *metrics.Metrics) *TaskService {
	return &TaskService{
		tasks:   tasks,
		members: members,
		ledger:  ledger,
		clock:   clock,
		logger:  logger,
		metrics: m,
	}
}

func (s *TaskService) ensureMember(ctx context.Context, member string) error {
	names, err := s.members.ListNames(ctx)
	if err != nil {
		return err
	}
	if !containsName(names, member) {
		return fmt.Errorf("member %q: %w", member, ErrNotFound)
	}
	return nil
}

func (s *TaskService) ListTasks(ctx context.Context, member string) ([]model.Task, error) {
	if err := s.ensureMember(ctx, member); err != nil {
		return nil, err
	}
	return s.tasks.Load(ctx, member)
}

func (s *TaskService) GetTask(ctx context.Context, member, taskID string) (model.Task, error) {
	tasks, err := s.ListTasks(ctx, member)
	if err != nil {
		return model.Task{}, err
	}
	i := findTask(tasks, taskID)
	if i < 0 {
		return model.Task{}, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	return tasks[i], nil
}

// CreateTask appends a pending task to the member's list.
func (s *TaskService) CreateTask(ctx context.Context, member string, input TaskInput) (model.Task, error) {
	if err := s.ensureMember(ctx, member); err != nil {
		return model.Task{}, err
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return model.Task{}, fmt.Errorf("description is required: %w", ErrValidation)
	}

	now := s.clock.Now()
	due := timewindow.DateOf(now)
	if raw := strings.TrimSpace(input.DueDate); raw != "" {
		parsed, err := timewindow.ParseDate(raw)
		if err != nil {
			return model.Task{}, fmt.Errorf("due date %q: %w", raw, ErrValidation)
		}
		due = parsed
	}

	task := model.Task{
		ID:          uuid.NewString(),
		Description: description,
		Status:      model.StatusPending,
		CreatedAt:   timewindow.FormatInstant(now),
		DueDate:     due.String(),
		Category:    optional(input.Category),
		Priority:    optional(input.Priority),
	}

	tasks, err := s.tasks.Load(ctx, member)
	if err != nil {
		return model.Task{}, err
	}
	tasks = append(tasks, task)
	if err := s.tasks.Save(ctx, member, tasks); err != nil {
		return model.Task{}, err
	}

	s.metrics.ObserveCreated(member)
	s.logger.Info().
		Str("member", member).
		Str("task_id", task.ID).
		Str("due", task.DueDate).
		Msg("task created")
	return task, nil
}

// CompleteTask marks a pending task completed and credits the member one
// star. A task that is missing or already done yields ErrNotFound and the
// stored list is left as it was.
//
// The star award happens before CompleteTask returns; it is not retried.
func (s *TaskService) CompleteTask(ctx context.Context, member, taskID string) (Completion, error) {
	if err := s.ensureMember(ctx, member); err != nil {
		return Completion{}, err
	}
	tasks, err := s.tasks.Load(ctx, member)
	if err != nil {
		return Completion{}, err
	}
	i := findTask(tasks, taskID)
	if i < 0 {
		return Completion{}, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	if err := lifecycle.Complete(&tasks[i], s.clock.Now()); err != nil {
		if errors.Is(err, lifecycle.ErrNotPending) {
			return Completion{}, fmt.Errorf("task %s not pending: %w", taskID, ErrNotFound)
		}
		return Completion{}, err
	}
	if err := s.tasks.Save(ctx, member, tasks); err != nil {
		return Completion{}, err
	}

	balance, err := s.ledger.AwardStars(ctx, member, StarsPerTask, "Completed task: "+tasks[i].Description)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("member", member).
			Str("task_id", taskID).
			Msg("task completed but star award failed")
		return Completion{Task: tasks[i]}, fmt.Errorf("award stars: %w", err)
	}

	s.metrics.ObserveCompletion(member, StarsPerTask)
	s.logger.Info().
		Str("member", member).
		Str("task_id", taskID).
		Int("stars", balance).
		Msg("task completed")
	return Completion{Task: tasks[i], StarsAwarded: StarsPerTask, Balance: balance}, nil
}

// UpdateDescription replaces a task's description.
func (s *TaskService) UpdateDescription(ctx context.Context, member, taskID, description string) (model.Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return model.Task{}, fmt.Errorf("description is required: %w", ErrValidation)
	}
	if err := s.ensureMember(ctx, member); err != nil {
		return model.Task{}, err
	}
	tasks, err := s.tasks.Load(ctx, member)
	if err != nil {
		return model.Task{}, err
	}
	i := findTask(tasks, taskID)
	if i < 0 {
		return model.Task{}, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	tasks[i].Description = description
	if err := s.tasks.Save(ctx, member, tasks); err != nil {
		return model.Task{}, err
	}
	s.logger.Info().Str("member", member).Str("task_id", taskID).Msg("task updated")
	return tasks[i], nil
}

// DeleteTask removes a task completely, whatever its status.
func (s *TaskService) DeleteTask(ctx context.Context, member, taskID string) error {
	if err := s.ensureMember(ctx, member); err != nil {
		return err
	}
	tasks, err := s.tasks.Load(ctx, member)
	if err != nil {
		return err
	}
	i := findTask(tasks, taskID)
	if i < 0 {
		return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	tasks = append(tasks[:i], tasks[i+1:]...)
	if err := s.tasks.Save(ctx, member, tasks); err != nil {
		return err
	}
	s.logger.Info().Str("member", member).Str("task_id", taskID).Msg("task deleted")
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
