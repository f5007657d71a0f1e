// Package storage declares the persistence interfaces consumed by the domain
// services. Implementations live in the memory and postgres subpackages.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/intizom/intizom/internal/app/domain/finance"
	"github.com/intizom/intizom/internal/app/domain/goal"
	"github.com/intizom/intizom/internal/app/domain/habit"
	"github.com/intizom/intizom/internal/app/domain/notification"
	"github.com/intizom/intizom/internal/app/domain/principle"
	"github.com/intizom/intizom/internal/app/domain/task"
	"github.com/intizom/intizom/internal/app/domain/user"
)

// ErrNotFound is returned by all stores when the requested row does not
// exist. Implementations wrap it with entity context.
var ErrNotFound = errors.New("not found")

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	UpdateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// HabitStore persists habits and their daily completions.
type HabitStore interface {
	CreateHabit(ctx context.Context, h habit.Habit) (habit.Habit, error)
	UpdateHabit(ctx context.Context, h habit.Habit) (habit.Habit, error)
	GetHabit(ctx context.Context, id string) (habit.Habit, error)
	ListHabits(ctx context.Context, userID string) ([]habit.Habit, error)
	// DeleteHabit removes the habit and all of its completions.
	DeleteHabit(ctx context.Context, id string) error

	// CreateCompletion inserts a completion unless one already exists for the
	// same (habit, completed_on) day; inserted reports whether a row was
	// written. The uniqueness check and the insert are atomic.
	CreateCompletion(ctx context.Context, c habit.Completion) (stored habit.Completion, inserted bool, err error)
	// DeleteCompletions removes all completions with from <= completed_at < to
	// and returns how many rows were deleted.
	DeleteCompletions(ctx context.Context, habitID string, from, to time.Time) (int, error)
	ListRecentCompletions(ctx context.Context, habitID string, limit int) ([]habit.Completion, error)
	ListCompletionsInRange(ctx context.Context, habitID string, from, to time.Time) ([]habit.Completion, error)
}

// TaskStore persists kanban tasks and subtasks.
type TaskStore interface {
	CreateTask(ctx context.Context, t task.Task) (task.Task, error)
	UpdateTask(ctx context.Context, t task.Task) (task.Task, error)
	GetTask(ctx context.Context, id string) (task.Task, error)
	ListTasks(ctx context.Context, userID string) ([]task.Task, error)
	// DeleteTask removes the task and its subtasks.
	DeleteTask(ctx context.Context, id string) error

	CreateSubTask(ctx context.Context, st task.SubTask) (task.SubTask, error)
	UpdateSubTask(ctx context.Context, st task.SubTask) (task.SubTask, error)
	GetSubTask(ctx context.Context, id string) (task.SubTask, error)
	ListSubTasks(ctx context.Context, taskID string) ([]task.SubTask, error)
	DeleteSubTask(ctx context.Context, id string) error
}

// GoalStore persists goals and milestones.
type GoalStore interface {
	CreateGoal(ctx context.Context, g goal.Goal) (goal.Goal, error)
	UpdateGoal(ctx context.Context, g goal.Goal) (goal.Goal, error)
	GetGoal(ctx context.Context, id string) (goal.Goal, error)
	ListGoals(ctx context.Context, userID string) ([]goal.Goal, error)
	// DeleteGoal removes the goal and its milestones.
	DeleteGoal(ctx context.Context, id string) error

	CreateMilestone(ctx context.Context, m goal.Milestone) (goal.Milestone, error)
	UpdateMilestone(ctx context.Context, m goal.Milestone) (goal.Milestone, error)
	GetMilestone(ctx context.Context, id string) (goal.Milestone, error)
	ListMilestones(ctx context.Context, goalID string) ([]goal.Milestone, error)
	DeleteMilestone(ctx context.Context, id string) error
}

// FinanceStore persists ledger transactions.
type FinanceStore interface {
	CreateTransaction(ctx context.Context, tx finance.Transaction) (finance.Transaction, error)
	GetTransaction(ctx context.Context, id string) (finance.Transaction, error)
	ListTransactions(ctx context.Context, userID string) ([]finance.Transaction, error)
	ListTransactionsInRange(ctx context.Context, userID string, from, to time.Time) ([]finance.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// PrincipleStore persists principles and their daily checks.
type PrincipleStore interface {
	CreatePrinciple(ctx context.Context, p principle.Principle) (principle.Principle, error)
	UpdatePrinciple(ctx context.Context, p principle.Principle) (principle.Principle, error)
	GetPrinciple(ctx context.Context, id string) (principle.Principle, error)
	ListPrinciples(ctx context.Context, userID string) ([]principle.Principle, error)
	// DeletePrinciple removes the principle and its checks.
	DeletePrinciple(ctx context.Context, id string) error

	// CreateCheck inserts a check unless one exists for the same day; inserted
	// reports whether a row was written.
	CreateCheck(ctx context.Context, c principle.Check) (stored principle.Check, inserted bool, err error)
	DeleteCheck(ctx context.Context, principleID, checkedOn string) (int, error)
	ListChecks(ctx context.Context, principleID string) ([]principle.Check, error)
}

// NotificationStore persists per-user notifications.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error)
	UpdateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error)
	GetNotification(ctx context.Context, id string) (notification.Notification, error)
	ListNotifications(ctx context.Context, userID string) ([]notification.Notification, error)
}
