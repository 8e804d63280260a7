package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"household-planner/internal/model"
)

// TaskRepository stores each member's task list as an ordered collection.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Load returns the member's tasks in stored order. A member with no rows
// gets an empty slice.
func (r *TaskRepository) Load(ctx context.Context, member string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("member = ?", member).
		Order("position ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return tasks, nil
}

// Save replaces the member's whole collection in one transaction.
func (r *TaskRepository) Save(ctx context.Context, member string, tasks []model.Task) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("member = ?", member).Delete(&model.Task{}).Error; err != nil {
			return err
		}
		if len(tasks) == 0 {
			return nil
		}
		rows := make([]model.Task, len(tasks))
		for i, task := range tasks {
			task.Member = member
			task.Position = i
			rows[i] = task
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}
