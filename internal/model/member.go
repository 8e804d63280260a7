package model

import "time"

// Member is a person in the household with a task list and a star balance.
type Member struct {
	ID             uint   `gorm:"primaryKey"`
	Name           string `gorm:"uniqueIndex;size:20"`
	Position       int
	Stars          int `gorm:"not null;default:0"`
	ProfilePicture string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
