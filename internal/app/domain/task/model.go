// Package task defines kanban tasks and their subtasks.
package task

import "time"

// Status is the kanban column a task sits in.
type Status string

const (
	StatusTodo  Status = "todo"
	StatusDoing Status = "doing"
	StatusDone  Status = "done"
)

// ParseStatus validates a raw status string; ok is false for unknown values.
func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusTodo, StatusDoing, StatusDone:
		return Status(raw), true
	}
	return "", false
}

// Priority orders tasks within a column.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority validates a raw priority string. Empty defaults to medium;
// unknown values are rejected.
func ParsePriority(raw string) (Priority, bool) {
	switch Priority(raw) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(raw), true
	case "":
		return PriorityMedium, true
	}
	return "", false
}

// Task is a kanban card. Position orders cards within a column; a zero
// DueDate means no deadline.
type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	DueDate     time.Time `json:"due_date"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SubTask is a checklist item under a task.
type SubTask struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	Done      bool      `json:"done"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// WithSubTasks is the detail view of a task.
type WithSubTasks struct {
	Task
	SubTasks []SubTask `json:"subtasks"`
}
