package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"household-planner/internal/model"
)

// ProfileRepository keeps star balances on the member row and the ledger in
// its own table.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Load returns the member's balance and ledger. Unknown members get the zero
// profile.
func (r *ProfileRepository) Load(ctx context.Context, member string) (model.StarProfile, error) {
	db := r.db.WithContext(ctx)

	var row model.Member
	err := db.Where("name = ?", member).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.StarProfile{}, nil
	}
	if err != nil {
		return model.StarProfile{}, fmt.Errorf("load profile: %w", err)
	}

	var history []model.StarEntry
	if err := db.Where("member = ?", member).Order("id ASC").Find(&history).Error; err != nil {
		return model.StarProfile{}, fmt.Errorf("load star history: %w", err)
	}
	return model.StarProfile{Stars: row.Stars, History: history}, nil
}

// Save stores the balance and appends ledger entries that have not been
// persisted yet. Existing entries are never rewritten.
func (r *ProfileRepository) Save(ctx context.Context, member string, profile model.StarProfile) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Member{}).Where("name = ?", member).Update("stars", profile.Stars)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrMemberNotFound
		}
		for i := range profile.History {
			entry := profile.History[i]
			if entry.ID != 0 {
				continue
			}
			entry.Member = member
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			profile.History[i].ID = entry.ID
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
