package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"household-planner/internal/model"
)

// ErrMemberNotFound is returned when no member has the given name.
var ErrMemberNotFound = errors.New("member not found")

// MemberRepository handles the household roster.
type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// ListNames returns member names in roster order.
func (r *MemberRepository) ListNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).Model(&model.Member{}).
		Order("position ASC, id ASC").
		Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return names, nil
}

// Add appends a member to the end of the roster.
func (r *MemberRepository) Add(ctx context.Context, name string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int
		if err := tx.Model(&model.Member{}).Select("COALESCE(MAX(position), -1)").Scan(&last).Error; err != nil {
			return err
		}
		return tx.Create(&model.Member{Name: name, Position: last + 1}).Error
	})
	if err != nil {
		return fmt.Errorf("create member: %w", err)
	}
	return nil
}

// Remove deletes a member together with their tasks and star ledger.
func (r *MemberRepository) Remove(ctx context.Context, name string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("name = ?", name).Delete(&model.Member{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrMemberNotFound
		}
		if err := tx.Where("member = ?", name).Delete(&model.Task{}).Error; err != nil {
			return err
		}
		return tx.Where("member = ?", name).Delete(&model.StarEntry{}).Error
	})
	if errors.Is(err, ErrMemberNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return nil
}
