// Package principle defines the personal values checklist and its daily
// check-ins.
package principle

import "time"

// Principle is a personal value the user checks in against daily.
type Principle struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

// Check records a daily check-in. CheckedOn is the YYYY-MM-DD day key and is
// unique per principle.
type Check struct {
	ID          string    `json:"id"`
	PrincipleID string    `json:"principle_id"`
	CheckedOn   string    `json:"checked_on"`
	CreatedAt   time.Time `json:"created_at"`
}

// WithStreak is the list view: the principle plus its streak, recomputed
// from check history on every read.
type WithStreak struct {
	Principle
	Streak       int  `json:"streak"`
	CheckedToday bool `json:"checked_today"`
}
