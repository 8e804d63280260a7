package model

import (
	"time"

	"household-planner/internal/timewindow"
)

// TaskStatus is where a task sits in its lifecycle.
type TaskStatus string

const (
	StatusPending       TaskStatus = "pending"
	StatusCompleted     TaskStatus = "completed"
	StatusDoneYesterday TaskStatus = "done_yesterday"
)

// IsDone reports whether the status carries a completion timestamp.
func (s TaskStatus) IsDone() bool {
	return s == StatusCompleted || s == StatusDoneYesterday
}

// Task is a single to-do item owned by one household member.
//
// CreatedAt and CompletedAt hold UTC instants in their stored text form so a
// value that fails to parse is carried through load and save unchanged.
type Task struct {
	ID              string     `gorm:"primaryKey;size:36" json:"id"`
	Member          string     `gorm:"index;size:20" json:"-"`
	Position        int        `json:"-"`
	Description     string     `gorm:"not null" json:"description"`
	Status          TaskStatus `gorm:"size:16;index" json:"status"`
	CreatedAt       string     `gorm:"autoCreateTime:false" json:"created_at"`
	DueDate         string     `gorm:"size:10" json:"due_date"`
	CompletedAt     *string    `json:"completed_at"`
	Category        *string    `json:"category"`
	Priority        *string    `json:"priority"`
	ColorLabel      *string    `json:"color_label"`
	ReflectionNote  *string    `json:"reflection_note"`
	ReflectionEmoji *string    `json:"reflection_emoji"`
}

// CreatedInstant parses CreatedAt.
func (t Task) CreatedInstant() (time.Time, error) {
	return timewindow.ParseInstant(t.CreatedAt)
}

// CompletedInstant parses CompletedAt. ok is false when the task has none.
func (t Task) CompletedInstant() (at time.Time, ok bool, err error) {
	if t.CompletedAt == nil || *t.CompletedAt == "" {
		return time.Time{}, false, nil
	}
	at, err = timewindow.ParseInstant(*t.CompletedAt)
	if err != nil {
		return time.Time{}, true, err
	}
	return at, true, nil
}

// Due parses DueDate.
func (t Task) Due() (timewindow.Date, error) {
	return timewindow.ParseDate(t.DueDate)
}
