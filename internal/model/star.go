package model

import "time"

// StarEntry is one line of a member's star ledger.
type StarEntry struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	Member         string    `gorm:"index;size:20" json:"-"`
	Timestamp      time.Time `json:"timestamp"`
	Reason         string    `json:"reason"`
	Amount         int       `json:"amount"`
	RemainingStars int       `json:"remaining_stars"`
}

// StarProfile is a member's balance plus the append-only ledger behind it.
type StarProfile struct {
	Stars   int         `json:"stars"`
	History []StarEntry `json:"star_history"`
}
