// Package goal defines long-term goals and their milestones.
package goal

import "time"

// Goal tracks a long-term objective. Progress is a 0..100 percentage. When
// the goal has milestones it is derived from the completed fraction; with no
// milestones it is set manually and ManualProgress is true.
type Goal struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	TargetDate     time.Time `json:"target_date"`
	Progress       int       `json:"progress"`
	ManualProgress bool      `json:"manual_progress"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Milestone is one step towards a goal.
type Milestone struct {
	ID        string    `json:"id"`
	GoalID    string    `json:"goal_id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// WithMilestones is the detail view of a goal.
type WithMilestones struct {
	Goal
	Milestones []Milestone `json:"milestones"`
}
