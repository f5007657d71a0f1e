// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/intizom/intizom/internal/app/domain/finance"
	"github.com/intizom/intizom/internal/app/domain/goal"
	"github.com/intizom/intizom/internal/app/domain/habit"
	"github.com/intizom/intizom/internal/app/domain/notification"
	"github.com/intizom/intizom/internal/app/domain/principle"
	"github.com/intizom/intizom/internal/app/domain/task"
	"github.com/intizom/intizom/internal/app/domain/user"
	"github.com/intizom/intizom/internal/app/storage"
)

// Store implements the storage interfaces using a database handle.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.HabitStore = (*Store)(nil)
var _ storage.TaskStore = (*Store)(nil)
var _ storage.GoalStore = (*Store)(nil)
var _ storage.FinanceStore = (*Store)(nil)
var _ storage.PrincipleStore = (*Store)(nil)
var _ storage.NotificationStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func mapRowErr(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, pin_hash, role, plan, trial_ends_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, u.ID, u.Email, u.Name, u.PasswordHash, u.PINHash, u.Role, u.Plan, toNullTime(u.TrialEndsAt), u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u user.User) (user.User, error) {
	existing, err := s.GetUser(ctx, u.ID)
	if err != nil {
		return user.User{}, err
	}
	u.Email = existing.Email
	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET name = $2, password_hash = $3, pin_hash = $4, role = $5, plan = $6, trial_ends_at = $7, updated_at = $8
		WHERE id = $1
	`, u.ID, u.Name, u.PasswordHash, u.PINHash, u.Role, u.Plan, toNullTime(u.TrialEndsAt), u.UpdatedAt)
	if err != nil {
		return user.User{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return user.User{}, storage.ErrNotFound
	}
	return u, nil
}

const userColumns = `id, email, name, password_hash, pin_hash, role, plan, trial_ends_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (user.User, error) {
	var (
		u           user.User
		trialEndsAt sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.PINHash, &u.Role, &u.Plan, &trialEndsAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return user.User{}, err
	}
	if trialEndsAt.Valid {
		u.TrialEndsAt = trialEndsAt.Time.UTC()
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return user.User{}, mapRowErr(err, "user")
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return user.User{}, mapRowErr(err, "user")
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// --- HabitStore -------------------------------------------------------------

const habitColumns = `id, user_id, title, description, category, frequency, color, icon, streak, longest_streak, is_active, paused_at, created_at, updated_at`

func (s *Store) CreateHabit(ctx context.Context, h habit.Habit) (habit.Habit, error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if h.CreatedAt.IsZero() {
		h.CreatedAt = now
	}
	h.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, h.ID, h.UserID, h.Title, h.Description, h.Category, h.Frequency, h.Color, h.Icon,
		h.Streak, h.LongestStreak, h.IsActive, toNullTime(h.PausedAt), h.CreatedAt, h.UpdatedAt)
	if err != nil {
		return habit.Habit{}, err
	}
	return h, nil
}

func (s *Store) UpdateHabit(ctx context.Context, h habit.Habit) (habit.Habit, error) {
	existing, err := s.GetHabit(ctx, h.ID)
	if err != nil {
		return habit.Habit{}, err
	}
	h.UserID = existing.UserID
	h.CreatedAt = existing.CreatedAt
	h.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE habits
		SET title = $2, description = $3, category = $4, frequency = $5, color = $6, icon = $7,
		    streak = $8, longest_streak = $9, is_active = $10, paused_at = $11, updated_at = $12
		WHERE id = $1
	`, h.ID, h.Title, h.Description, h.Category, h.Frequency, h.Color, h.Icon,
		h.Streak, h.LongestStreak, h.IsActive, toNullTime(h.PausedAt), h.UpdatedAt)
	if err != nil {
		return habit.Habit{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return habit.Habit{}, storage.ErrNotFound
	}
	return h, nil
}

func scanHabit(row interface{ Scan(...any) error }) (habit.Habit, error) {
	var (
		h        habit.Habit
		pausedAt sql.NullTime
	)
	if err := row.Scan(&h.ID, &h.UserID, &h.Title, &h.Description, &h.Category, &h.Frequency,
		&h.Color, &h.Icon, &h.Streak, &h.LongestStreak, &h.IsActive, &pausedAt, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return habit.Habit{}, err
	}
	if pausedAt.Valid {
		h.PausedAt = pausedAt.Time.UTC()
	}
	return h, nil
}

func (s *Store) GetHabit(ctx context.Context, id string) (habit.Habit, error) {
	h, err := scanHabit(s.db.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = $1`, id))
	if err != nil {
		return habit.Habit{}, mapRowErr(err, "habit")
	}
	return h, nil
}

func (s *Store) ListHabits(ctx context.Context, userID string) ([]habit.Habit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+habitColumns+` FROM habits
		WHERE $1 = '' OR user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []habit.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	return result, rows.Err()
}

func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	// Completions go with the habit via ON DELETE CASCADE.
	result, err := s.db.ExecContext(ctx, `DELETE FROM habits WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) CreateCompletion(ctx context.Context, c habit.Completion) (habit.Completion, bool, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()

	// The unique (habit_id, completed_on) index makes the insert atomic with
	// the duplicate check, closing the concurrent double-complete window.
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO habit_completions (id, habit_id, completed_at, completed_on, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (habit_id, completed_on) DO NOTHING
	`, c.ID, c.HabitID, c.CompletedAt, c.CompletedOn, c.Note, c.CreatedAt)
	if err != nil {
		return habit.Completion{}, false, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		existing, err := s.getCompletionByDay(ctx, c.HabitID, c.CompletedOn)
		if err != nil {
			return habit.Completion{}, false, err
		}
		return existing, false, nil
	}
	return c, true, nil
}

func (s *Store) getCompletionByDay(ctx context.Context, habitID, completedOn string) (habit.Completion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, habit_id, completed_at, completed_on, note, created_at
		FROM habit_completions
		WHERE habit_id = $1 AND completed_on = $2
	`, habitID, completedOn)

	var c habit.Completion
	if err := row.Scan(&c.ID, &c.HabitID, &c.CompletedAt, &c.CompletedOn, &c.Note, &c.CreatedAt); err != nil {
		return habit.Completion{}, mapRowErr(err, "completion")
	}
	return c, nil
}

func (s *Store) DeleteCompletions(ctx context.Context, habitID string, from, to time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM habit_completions
		WHERE habit_id = $1 AND completed_at >= $2 AND completed_at < $3
	`, habitID, from, to)
	if err != nil {
		return 0, err
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

func (s *Store) ListRecentCompletions(ctx context.Context, habitID string, limit int) ([]habit.Completion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, habit_id, completed_at, completed_on, note, created_at
		FROM habit_completions
		WHERE habit_id = $1
		ORDER BY completed_at DESC
		LIMIT $2
	`, habitID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCompletions(rows)
}

func (s *Store) ListCompletionsInRange(ctx context.Context, habitID string, from, to time.Time) ([]habit.Completion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, habit_id, completed_at, completed_on, note, created_at
		FROM habit_completions
		WHERE habit_id = $1 AND completed_at >= $2 AND completed_at < $3
		ORDER BY completed_at
	`, habitID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCompletions(rows)
}

func scanCompletions(rows *sql.Rows) ([]habit.Completion, error) {
	var result []habit.Completion
	for rows.Next() {
		var c habit.Completion
		if err := rows.Scan(&c.ID, &c.HabitID, &c.CompletedAt, &c.CompletedOn, &c.Note, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// --- TaskStore --------------------------------------------------------------

const taskColumns = `id, user_id, title, description, status, priority, due_date, position, created_at, updated_at`

func (s *Store) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, t.ID, t.UserID, t.Title, t.Description, t.Status, t.Priority, toNullTime(t.DueDate), t.Position, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return task.Task{}, err
	}
	return t, nil
}

func (s *Store) UpdateTask(ctx context.Context, t task.Task) (task.Task, error) {
	existing, err := s.GetTask(ctx, t.ID)
	if err != nil {
		return task.Task{}, err
	}
	t.UserID = existing.UserID
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, priority = $5, due_date = $6, position = $7, updated_at = $8
		WHERE id = $1
	`, t.ID, t.Title, t.Description, t.Status, t.Priority, toNullTime(t.DueDate), t.Position, t.UpdatedAt)
	if err != nil {
		return task.Task{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return task.Task{}, storage.ErrNotFound
	}
	return t, nil
}

func scanTask(row interface{ Scan(...any) error }) (task.Task, error) {
	var (
		t       task.Task
		dueDate sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &dueDate, &t.Position, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return task.Task{}, err
	}
	if dueDate.Valid {
		t.DueDate = dueDate.Time.UTC()
	}
	return t, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (task.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		return task.Task{}, mapRowErr(err, "task")
	}
	return t, nil
}

func (s *Store) ListTasks(ctx context.Context, userID string) ([]task.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE $1 = '' OR user_id = $1
		ORDER BY position, created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) CreateSubTask(ctx context.Context, st task.SubTask) (task.SubTask, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	st.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subtasks (id, task_id, title, done, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, st.ID, st.TaskID, st.Title, st.Done, st.Position, st.CreatedAt)
	if err != nil {
		return task.SubTask{}, err
	}
	return st, nil
}

func (s *Store) UpdateSubTask(ctx context.Context, st task.SubTask) (task.SubTask, error) {
	existing, err := s.GetSubTask(ctx, st.ID)
	if err != nil {
		return task.SubTask{}, err
	}
	st.TaskID = existing.TaskID
	st.CreatedAt = existing.CreatedAt

	result, err := s.db.ExecContext(ctx, `
		UPDATE subtasks SET title = $2, done = $3, position = $4 WHERE id = $1
	`, st.ID, st.Title, st.Done, st.Position)
	if err != nil {
		return task.SubTask{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return task.SubTask{}, storage.ErrNotFound
	}
	return st, nil
}

func (s *Store) GetSubTask(ctx context.Context, id string) (task.SubTask, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, task_id, title, done, position, created_at FROM subtasks WHERE id = $1
	`, id)

	var st task.SubTask
	if err := row.Scan(&st.ID, &st.TaskID, &st.Title, &st.Done, &st.Position, &st.CreatedAt); err != nil {
		return task.SubTask{}, mapRowErr(err, "subtask")
	}
	return st, nil
}

func (s *Store) ListSubTasks(ctx context.Context, taskID string) ([]task.SubTask, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, title, done, position, created_at
		FROM subtasks
		WHERE task_id = $1
		ORDER BY position, created_at
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []task.SubTask
	for rows.Next() {
		var st task.SubTask
		if err := rows.Scan(&st.ID, &st.TaskID, &st.Title, &st.Done, &st.Position, &st.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, st)
	}
	return result, rows.Err()
}

func (s *Store) DeleteSubTask(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM subtasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// --- GoalStore --------------------------------------------------------------

const goalColumns = `id, user_id, title, description, target_date, progress, manual_progress, created_at, updated_at`

func (s *Store) CreateGoal(ctx context.Context, g goal.Goal) (goal.Goal, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goals (`+goalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, g.ID, g.UserID, g.Title, g.Description, toNullTime(g.TargetDate), g.Progress, g.ManualProgress, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return goal.Goal{}, err
	}
	return g, nil
}

func (s *Store) UpdateGoal(ctx context.Context, g goal.Goal) (goal.Goal, error) {
	existing, err := s.GetGoal(ctx, g.ID)
	if err != nil {
		return goal.Goal{}, err
	}
	g.UserID = existing.UserID
	g.CreatedAt = existing.CreatedAt
	g.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE goals
		SET title = $2, description = $3, target_date = $4, progress = $5, manual_progress = $6, updated_at = $7
		WHERE id = $1
	`, g.ID, g.Title, g.Description, toNullTime(g.TargetDate), g.Progress, g.ManualProgress, g.UpdatedAt)
	if err != nil {
		return goal.Goal{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return goal.Goal{}, storage.ErrNotFound
	}
	return g, nil
}

func scanGoal(row interface{ Scan(...any) error }) (goal.Goal, error) {
	var (
		g          goal.Goal
		targetDate sql.NullTime
	)
	if err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &targetDate, &g.Progress, &g.ManualProgress, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return goal.Goal{}, err
	}
	if targetDate.Valid {
		g.TargetDate = targetDate.Time.UTC()
	}
	return g, nil
}

func (s *Store) GetGoal(ctx context.Context, id string) (goal.Goal, error) {
	g, err := scanGoal(s.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1`, id))
	if err != nil {
		return goal.Goal{}, mapRowErr(err, "goal")
	}
	return g, nil
}

func (s *Store) ListGoals(ctx context.Context, userID string) ([]goal.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+goalColumns+` FROM goals
		WHERE $1 = '' OR user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []goal.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) CreateMilestone(ctx context.Context, m goal.Milestone) (goal.Milestone, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO milestones (id, goal_id, title, completed, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.ID, m.GoalID, m.Title, m.Completed, m.Position, m.CreatedAt)
	if err != nil {
		return goal.Milestone{}, err
	}
	return m, nil
}

func (s *Store) UpdateMilestone(ctx context.Context, m goal.Milestone) (goal.Milestone, error) {
	existing, err := s.GetMilestone(ctx, m.ID)
	if err != nil {
		return goal.Milestone{}, err
	}
	m.GoalID = existing.GoalID
	m.CreatedAt = existing.CreatedAt

	result, err := s.db.ExecContext(ctx, `
		UPDATE milestones SET title = $2, completed = $3, position = $4 WHERE id = $1
	`, m.ID, m.Title, m.Completed, m.Position)
	if err != nil {
		return goal.Milestone{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return goal.Milestone{}, storage.ErrNotFound
	}
	return m, nil
}

func (s *Store) GetMilestone(ctx context.Context, id string) (goal.Milestone, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, goal_id, title, completed, position, created_at FROM milestones WHERE id = $1
	`, id)

	var m goal.Milestone
	if err := row.Scan(&m.ID, &m.GoalID, &m.Title, &m.Completed, &m.Position, &m.CreatedAt); err != nil {
		return goal.Milestone{}, mapRowErr(err, "milestone")
	}
	return m, nil
}

func (s *Store) ListMilestones(ctx context.Context, goalID string) ([]goal.Milestone, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, goal_id, title, completed, position, created_at
		FROM milestones
		WHERE goal_id = $1
		ORDER BY position, created_at
	`, goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []goal.Milestone
	for rows.Next() {
		var m goal.Milestone
		if err := rows.Scan(&m.ID, &m.GoalID, &m.Title, &m.Completed, &m.Position, &m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (s *Store) DeleteMilestone(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM milestones WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// --- FinanceStore -----------------------------------------------------------

func (s *Store) CreateTransaction(ctx context.Context, tx finance.Transaction) (finance.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.CreatedAt = time.Now().UTC()
	if tx.OccurredAt.IsZero() {
		tx.OccurredAt = tx.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, type, amount, category, note, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, tx.ID, tx.UserID, tx.Type, tx.Amount, tx.Category, tx.Note, tx.OccurredAt, tx.CreatedAt)
	if err != nil {
		return finance.Transaction{}, err
	}
	return tx, nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (finance.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, type, amount, category, note, occurred_at, created_at
		FROM transactions WHERE id = $1
	`, id)

	var tx finance.Transaction
	if err := row.Scan(&tx.ID, &tx.UserID, &tx.Type, &tx.Amount, &tx.Category, &tx.Note, &tx.OccurredAt, &tx.CreatedAt); err != nil {
		return finance.Transaction{}, mapRowErr(err, "transaction")
	}
	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, userID string) ([]finance.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, type, amount, category, note, occurred_at, created_at
		FROM transactions
		WHERE $1 = '' OR user_id = $1
		ORDER BY occurred_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (s *Store) ListTransactionsInRange(ctx context.Context, userID string, from, to time.Time) ([]finance.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, type, amount, category, note, occurred_at, created_at
		FROM transactions
		WHERE user_id = $1 AND occurred_at >= $2 AND occurred_at < $3
		ORDER BY occurred_at
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]finance.Transaction, error) {
	var result []finance.Transaction
	for rows.Next() {
		var tx finance.Transaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Type, &tx.Amount, &tx.Category, &tx.Note, &tx.OccurredAt, &tx.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, tx)
	}
	return result, rows.Err()
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// --- PrincipleStore ---------------------------------------------------------

func (s *Store) CreatePrinciple(ctx context.Context, p principle.Principle) (principle.Principle, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO principles (id, user_id, title, description, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.UserID, p.Title, p.Description, p.Position, p.CreatedAt)
	if err != nil {
		return principle.Principle{}, err
	}
	return p, nil
}

func (s *Store) UpdatePrinciple(ctx context.Context, p principle.Principle) (principle.Principle, error) {
	existing, err := s.GetPrinciple(ctx, p.ID)
	if err != nil {
		return principle.Principle{}, err
	}
	p.UserID = existing.UserID
	p.CreatedAt = existing.CreatedAt

	result, err := s.db.ExecContext(ctx, `
		UPDATE principles SET title = $2, description = $3, position = $4 WHERE id = $1
	`, p.ID, p.Title, p.Description, p.Position)
	if err != nil {
		return principle.Principle{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return principle.Principle{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) GetPrinciple(ctx context.Context, id string) (principle.Principle, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, description, position, created_at FROM principles WHERE id = $1
	`, id)

	var p principle.Principle
	if err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.Position, &p.CreatedAt); err != nil {
		return principle.Principle{}, mapRowErr(err, "principle")
	}
	return p, nil
}

func (s *Store) ListPrinciples(ctx context.Context, userID string) ([]principle.Principle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, description, position, created_at
		FROM principles
		WHERE $1 = '' OR user_id = $1
		ORDER BY position, created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []principle.Principle
	for rows.Next() {
		var p principle.Principle
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.Position, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) DeletePrinciple(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM principles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) CreateCheck(ctx context.Context, c principle.Check) (principle.Check, bool, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO principle_checks (id, principle_id, checked_on, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (principle_id, checked_on) DO NOTHING
	`, c.ID, c.PrincipleID, c.CheckedOn, c.CreatedAt)
	if err != nil {
		return principle.Check{}, false, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		row := s.db.QueryRowContext(ctx, `
			SELECT id, principle_id, checked_on, created_at
			FROM principle_checks
			WHERE principle_id = $1 AND checked_on = $2
		`, c.PrincipleID, c.CheckedOn)
		var existing principle.Check
		if err := row.Scan(&existing.ID, &existing.PrincipleID, &existing.CheckedOn, &existing.CreatedAt); err != nil {
			return principle.Check{}, false, mapRowErr(err, "check")
		}
		return existing, false, nil
	}
	return c, true, nil
}

func (s *Store) DeleteCheck(ctx context.Context, principleID, checkedOn string) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM principle_checks WHERE principle_id = $1 AND checked_on = $2
	`, principleID, checkedOn)
	if err != nil {
		return 0, err
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

func (s *Store) ListChecks(ctx context.Context, principleID string) ([]principle.Check, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, principle_id, checked_on, created_at
		FROM principle_checks
		WHERE principle_id = $1
		ORDER BY checked_on DESC
	`, principleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []principle.Check
	for rows.Next() {
		var c principle.Check
		if err := rows.Scan(&c.ID, &c.PrincipleID, &c.CheckedOn, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// --- NotificationStore ------------------------------------------------------

func (s *Store) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, title, body, read_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, n.ID, n.UserID, n.Title, n.Body, toNullTime(n.ReadAt), n.CreatedAt)
	if err != nil {
		return notification.Notification{}, err
	}
	return n, nil
}

func (s *Store) UpdateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	existing, err := s.GetNotification(ctx, n.ID)
	if err != nil {
		return notification.Notification{}, err
	}
	n.UserID = existing.UserID
	n.CreatedAt = existing.CreatedAt

	result, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET title = $2, body = $3, read_at = $4 WHERE id = $1
	`, n.ID, n.Title, n.Body, toNullTime(n.ReadAt))
	if err != nil {
		return notification.Notification{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return notification.Notification{}, storage.ErrNotFound
	}
	return n, nil
}

func (s *Store) GetNotification(ctx context.Context, id string) (notification.Notification, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, body, read_at, created_at FROM notifications WHERE id = $1
	`, id)

	var (
		n      notification.Notification
		readAt sql.NullTime
	)
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &readAt, &n.CreatedAt); err != nil {
		return notification.Notification{}, mapRowErr(err, "notification")
	}
	if readAt.Valid {
		n.ReadAt = readAt.Time.UTC()
	}
	return n, nil
}

func (s *Store) ListNotifications(ctx context.Context, userID string) ([]notification.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, body, read_at, created_at
		FROM notifications
		WHERE $1 = '' OR user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []notification.Notification
	for rows.Next() {
		var (
			n      notification.Notification
			readAt sql.NullTime
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &readAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		if readAt.Valid {
			n.ReadAt = readAt.Time.UTC()
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func toNullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
