// Package memory is an in-memory implementation of the storage interfaces.
// It is safe for concurrent use and is primarily intended for tests and local
// development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/intizom/intizom/internal/app/domain/finance"
	"github.com/intizom/intizom/internal/app/domain/goal"
	"github.com/intizom/intizom/internal/app/domain/habit"
	"github.com/intizom/intizom/internal/app/domain/notification"
	"github.com/intizom/intizom/internal/app/domain/principle"
	"github.com/intizom/intizom/internal/app/domain/task"
	"github.com/intizom/intizom/internal/app/domain/user"
	"github.com/intizom/intizom/internal/app/storage"
)

// Store holds every entity in mutex-guarded maps.
type Store struct {
	mu     sync.RWMutex
	nextID int64

	users        map[string]user.User
	usersByEmail map[string]string
	habits       map[string]habit.Habit
	completions  map[string][]habit.Completion // habitID -> completions
	tasks        map[string]task.Task
	subTasks     map[string]task.SubTask
	goals        map[string]goal.Goal
	milestones   map[string]goal.Milestone
	transactions map[string]finance.Transaction
	principles   map[string]principle.Principle
	checks       map[string][]principle.Check // principleID -> checks
	notes        map[string]notification.Notification
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.HabitStore = (*Store)(nil)
var _ storage.TaskStore = (*Store)(nil)
var _ storage.GoalStore = (*Store)(nil)
var _ storage.FinanceStore = (*Store)(nil)
var _ storage.PrincipleStore = (*Store)(nil)
var _ storage.NotificationStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:       1,
		users:        make(map[string]user.User),
		usersByEmail: make(map[string]string),
		habits:       make(map[string]habit.Habit),
		completions:  make(map[string][]habit.Completion),
		tasks:        make(map[string]task.Task),
		subTasks:     make(map[string]task.SubTask),
		goals:        make(map[string]goal.Goal),
		milestones:   make(map[string]goal.Milestone),
		transactions: make(map[string]finance.Transaction),
		principles:   make(map[string]principle.Principle),
		checks:       make(map[string][]principle.Check),
		notes:        make(map[string]notification.Notification),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(u.Email))
	if _, exists := s.usersByEmail[email]; exists {
		return user.User{}, fmt.Errorf("user with email %s already exists", email)
	}
	if u.ID == "" {
		u.ID = s.nextIDLocked()
	}
	now := time.Now().UTC()
	u.Email = email
	u.CreatedAt = now
	u.UpdatedAt = now

	s.users[u.ID] = u
	s.usersByEmail[email] = u.ID
	return u, nil
}

func (s *Store) UpdateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.users[u.ID]
	if !ok {
		return user.User{}, fmt.Errorf("user %s: %w", u.ID, storage.ErrNotFound)
	}
	u.Email = original.Email
	u.CreatedAt = original.CreatedAt
	u.UpdatedAt = time.Now().UTC()
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return user.User{}, fmt.Errorf("user %s: %w", email, storage.ErrNotFound)
	}
	return s.users[id], nil
}

func (s *Store) ListUsers(_ context.Context) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	delete(s.users, id)
	delete(s.usersByEmail, u.Email)

	// Ownership cascade.
	for hid, h := range s.habits {
		if h.UserID == id {
			delete(s.habits, hid)
			delete(s.completions, hid)
		}
	}
	for tid, t := range s.tasks {
		if t.UserID == id {
			s.deleteTaskLocked(tid)
		}
	}
	for gid, g := range s.goals {
		if g.UserID == id {
			s.deleteGoalLocked(gid)
		}
	}
	for txID, tx := range s.transactions {
		if tx.UserID == id {
			delete(s.transactions, txID)
		}
	}
	for pid, p := range s.principles {
		if p.UserID == id {
			delete(s.principles, pid)
			delete(s.checks, pid)
		}
	}
	for nid, n := range s.notes {
		if n.UserID == id {
			delete(s.notes, nid)
		}
	}
	return nil
}

// HabitStore implementation ---------------------------------------------------

func (s *Store) CreateHabit(_ context.Context, h habit.Habit) (habit.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h.ID == "" {
		h.ID = s.nextIDLocked()
	}
	now := time.Now().UTC()
	if h.CreatedAt.IsZero() {
		h.CreatedAt = now
	}
	h.UpdatedAt = now
	s.habits[h.ID] = h
	return h, nil
}

func (s *Store) UpdateHabit(_ context.Context, h habit.Habit) (habit.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.habits[h.ID]
	if !ok {
		return habit.Habit{}, fmt.Errorf("habit %s: %w", h.ID, storage.ErrNotFound)
	}
	h.UserID = original.UserID
	h.CreatedAt = original.CreatedAt
	h.UpdatedAt = time.Now().UTC()
	s.habits[h.ID] = h
	return h, nil
}

func (s *Store) GetHabit(_ context.Context, id string) (habit.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.habits[id]
	if !ok {
		return habit.Habit{}, fmt.Errorf("habit %s: %w", id, storage.ErrNotFound)
	}
	return h, nil
}

func (s *Store) ListHabits(_ context.Context, userID string) ([]habit.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []habit.Habit
	for _, h := range s.habits {
		if userID == "" || h.UserID == userID {
			result = append(result, h)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (s *Store) DeleteHabit(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.habits[id]; !ok {
		return fmt.Errorf("habit %s: %w", id, storage.ErrNotFound)
	}
	delete(s.habits, id)
	delete(s.completions, id)
	return nil
}

func (s *Store) CreateCompletion(_ context.Context, c habit.Completion) (habit.Completion, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.habits[c.HabitID]; !ok {
		return habit.Completion{}, false, fmt.Errorf("habit %s: %w", c.HabitID, storage.ErrNotFound)
	}
	for _, existing := range s.completions[c.HabitID] {
		if existing.CompletedOn == c.CompletedOn {
			return existing, false, nil
		}
	}
	if c.ID == "" {
		c.ID = s.nextIDLocked()
	}
	c.CreatedAt = time.Now().UTC()
	s.completions[c.HabitID] = append(s.completions[c.HabitID], c)
	return c, true, nil
}

func (s *Store) DeleteCompletions(_ context.Context, habitID string, from, to time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.completions[habitID][:0]
	deleted := 0
	for _, c := range s.completions[habitID] {
		if !c.CompletedAt.Before(from) && c.CompletedAt.Before(to) {
			deleted++
			continue
		}
		kept = append(kept, c)
	}
	s.completions[habitID] = kept
	return deleted, nil
}

func (s *Store) ListRecentCompletions(_ context.Context, habitID string, limit int) ([]habit.Completion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := append([]habit.Completion(nil), s.completions[habitID]...)
	sort.Slice(all, func(i, j int) bool { return all[i].CompletedAt.After(all[j].CompletedAt) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *Store) ListCompletionsInRange(_ context.Context, habitID string, from, to time.Time) ([]habit.Completion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []habit.Completion
	for _, c := range s.completions[habitID] {
		if !c.CompletedAt.Before(from) && c.CompletedAt.Before(to) {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CompletedAt.Before(result[j].CompletedAt) })
	return result, nil
}

// TaskStore implementation ----------------------------------------------------

func (s *Store) CreateTask(_ context.Context, t task.Task) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = s.nextIDLocked()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	s.tasks[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTask(_ context.Context, t task.Task) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.tasks[t.ID]
	if !ok {
		return task.Task{}, fmt.Errorf("task %s: %w", t.ID, storage.ErrNotFound)
	}
	t.UserID = original.UserID
	t.CreatedAt = original.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	s.tasks[t.ID] = t
	return t, nil
}

func (s *Store) GetTask(_ context.Context, id string) (task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return task.Task{}, fmt.Errorf("task %s: %w", id, storage.ErrNotFound)
	}
	return t, nil
}

func (s *Store) ListTasks(_ context.Context, userID string) ([]task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []task.Task
	for _, t := range s.tasks {
		if userID == "" || t.UserID == userID {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Position != result[j].Position {
			return result[i].Position < result[j].Position
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return fmt.Errorf("task %s: %w", id, storage.ErrNotFound)
	}
	s.deleteTaskLocked(id)
	return nil
}

func (s *Store) deleteTaskLocked(id string) {
	delete(s.tasks, id)
	for stID, st := range s.subTasks {
		if st.TaskID == id {
			delete(s.subTasks, stID)
		}
	}
}

func (s *Store) CreateSubTask(_ context.Context, st task.SubTask) (task.SubTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[st.TaskID]; !ok {
		return task.SubTask{}, fmt.Errorf("task %s: %w", st.TaskID, storage.ErrNotFound)
	}
	if st.ID == "" {
		st.ID = s.nextIDLocked()
	}
	st.CreatedAt = time.Now().UTC()
	s.subTasks[st.ID] = st
	return st, nil
}

func (s *Store) UpdateSubTask(_ context.Context, st task.SubTask) (task.SubTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.subTasks[st.ID]
	if !ok {
		return task.SubTask{}, fmt.Errorf("subtask %s: %w", st.ID, storage.ErrNotFound)
	}
	st.TaskID = original.TaskID
	st.CreatedAt = original.CreatedAt
	s.subTasks[st.ID] = st
	return st, nil
}

func (s *Store) GetSubTask(_ context.Context, id string) (task.SubTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.subTasks[id]
	if !ok {
		return task.SubTask{}, fmt.Errorf("subtask %s: %w", id, storage.ErrNotFound)
	}
	return st, nil
}

func (s *Store) ListSubTasks(_ context.Context, taskID string) ([]task.SubTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []task.SubTask
	for _, st := range s.subTasks {
		if st.TaskID == taskID {
			result = append(result, st)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Position != result[j].Position {
			return result[i].Position < result[j].Position
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) DeleteSubTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subTasks[id]; !ok {
		return fmt.Errorf("subtask %s: %w", id, storage.ErrNotFound)
	}
	delete(s.subTasks, id)
	return nil
}

// GoalStore implementation ----------------------------------------------------

func (s *Store) CreateGoal(_ context.Context, g goal.Goal) (goal.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g.ID == "" {
		g.ID = s.nextIDLocked()
	}
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now
	s.goals[g.ID] = g
	return g, nil
}

func (s *Store) UpdateGoal(_ context.Context, g goal.Goal) (goal.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.goals[g.ID]
	if !ok {
		return goal.Goal{}, fmt.Errorf("goal %s: %w", g.ID, storage.ErrNotFound)
	}
	g.UserID = original.UserID
	g.CreatedAt = original.CreatedAt
	g.UpdatedAt = time.Now().UTC()
	s.goals[g.ID] = g
	return g, nil
}

func (s *Store) GetGoal(_ context.Context, id string) (goal.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.goals[id]
	if !ok {
		return goal.Goal{}, fmt.Errorf("goal %s: %w", id, storage.ErrNotFound)
	}
	return g, nil
}

func (s *Store) ListGoals(_ context.Context, userID string) ([]goal.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []goal.Goal
	for _, g := range s.goals {
		if userID == "" || g.UserID == userID {
			result = append(result, g)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (s *Store) DeleteGoal(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.goals[id]; !ok {
		return fmt.Errorf("goal %s: %w", id, storage.ErrNotFound)
	}
	s.deleteGoalLocked(id)
	return nil
}

func (s *Store) deleteGoalLocked(id string) {
	delete(s.goals, id)
	for mid, m := range s.milestones {
		if m.GoalID == id {
			delete(s.milestones, mid)
		}
	}
}

func (s *Store) CreateMilestone(_ context.Context, m goal.Milestone) (goal.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.goals[m.GoalID]; !ok {
		return goal.Milestone{}, fmt.Errorf("goal %s: %w", m.GoalID, storage.ErrNotFound)
	}
	if m.ID == "" {
		m.ID = s.nextIDLocked()
	}
	m.CreatedAt = time.Now().UTC()
	s.milestones[m.ID] = m
	return m, nil
}

func (s *Store) UpdateMilestone(_ context.Context, m goal.Milestone) (goal.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.milestones[m.ID]
	if !ok {
		return goal.Milestone{}, fmt.Errorf("milestone %s: %w", m.ID, storage.ErrNotFound)
	}
	m.GoalID = original.GoalID
	m.CreatedAt = original.CreatedAt
	s.milestones[m.ID] = m
	return m, nil
}

func (s *Store) GetMilestone(_ context.Context, id string) (goal.Milestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.milestones[id]
	if !ok {
		return goal.Milestone{}, fmt.Errorf("milestone %s: %w", id, storage.ErrNotFound)
	}
	return m, nil
}

func (s *Store) ListMilestones(_ context.Context, goalID string) ([]goal.Milestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []goal.Milestone
	for _, m := range s.milestones {
		if m.GoalID == goalID {
			result = append(result, m)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Position != result[j].Position {
			return result[i].Position < result[j].Position
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) DeleteMilestone(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.milestones[id]; !ok {
		return fmt.Errorf("milestone %s: %w", id, storage.ErrNotFound)
	}
	delete(s.milestones, id)
	return nil
}

// FinanceStore implementation -------------------------------------------------

func (s *Store) CreateTransaction(_ context.Context, tx finance.Transaction) (finance.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.ID == "" {
		tx.ID = s.nextIDLocked()
	}
	tx.CreatedAt = time.Now().UTC()
	if tx.OccurredAt.IsZero() {
		tx.OccurredAt = tx.CreatedAt
	}
	s.transactions[tx.ID] = tx
	return tx, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (finance.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.transactions[id]
	if !ok {
		return finance.Transaction{}, fmt.Errorf("transaction %s: %w", id, storage.ErrNotFound)
	}
	return tx, nil
}

func (s *Store) ListTransactions(_ context.Context, userID string) ([]finance.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []finance.Transaction
	for _, tx := range s.transactions {
		if userID == "" || tx.UserID == userID {
			result = append(result, tx)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OccurredAt.After(result[j].OccurredAt) })
	return result, nil
}

func (s *Store) ListTransactionsInRange(_ context.Context, userID string, from, to time.Time) ([]finance.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []finance.Transaction
	for _, tx := range s.transactions {
		if tx.UserID != userID {
			continue
		}
		if !tx.OccurredAt.Before(from) && tx.OccurredAt.Before(to) {
			result = append(result, tx)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OccurredAt.Before(result[j].OccurredAt) })
	return result, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[id]; !ok {
		return fmt.Errorf("transaction %s: %w", id, storage.ErrNotFound)
	}
	delete(s.transactions, id)
	return nil
}

// PrincipleStore implementation -----------------------------------------------

func (s *Store) CreatePrinciple(_ context.Context, p principle.Principle) (principle.Principle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = s.nextIDLocked()
	}
	p.CreatedAt = time.Now().UTC()
	s.principles[p.ID] = p
	return p, nil
}

func (s *Store) UpdatePrinciple(_ context.Context, p principle.Principle) (principle.Principle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.principles[p.ID]
	if !ok {
		return principle.Principle{}, fmt.Errorf("principle %s: %w", p.ID, storage.ErrNotFound)
	}
	p.UserID = original.UserID
	p.CreatedAt = original.CreatedAt
	s.principles[p.ID] = p
	return p, nil
}

func (s *Store) GetPrinciple(_ context.Context, id string) (principle.Principle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.principles[id]
	if !ok {
		return principle.Principle{}, fmt.Errorf("principle %s: %w", id, storage.ErrNotFound)
	}
	return p, nil
}

func (s *Store) ListPrinciples(_ context.Context, userID string) ([]principle.Principle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []principle.Principle
	for _, p := range s.principles {
		if userID == "" || p.UserID == userID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Position != result[j].Position {
			return result[i].Position < result[j].Position
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) DeletePrinciple(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.principles[id]; !ok {
		return fmt.Errorf("principle %s: %w", id, storage.ErrNotFound)
	}
	delete(s.principles, id)
	delete(s.checks, id)
	return nil
}

func (s *Store) CreateCheck(_ context.Context, c principle.Check) (principle.Check, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.principles[c.PrincipleID]; !ok {
		return principle.Check{}, false, fmt.Errorf("principle %s: %w", c.PrincipleID, storage.ErrNotFound)
	}
	for _, existing := range s.checks[c.PrincipleID] {
		if existing.CheckedOn == c.CheckedOn {
			return existing, false, nil
		}
	}
	if c.ID == "" {
		c.ID = s.nextIDLocked()
	}
	c.CreatedAt = time.Now().UTC()
	s.checks[c.PrincipleID] = append(s.checks[c.PrincipleID], c)
	return c, true, nil
}

func (s *Store) DeleteCheck(_ context.Context, principleID, checkedOn string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.checks[principleID][:0]
	deleted := 0
	for _, c := range s.checks[principleID] {
		if c.CheckedOn == checkedOn {
			deleted++
			continue
		}
		kept = append(kept, c)
	}
	s.checks[principleID] = kept
	return deleted, nil
}

func (s *Store) ListChecks(_ context.Context, principleID string) ([]principle.Check, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := append([]principle.Check(nil), s.checks[principleID]...)
	sort.Slice(result, func(i, j int) bool { return result[i].CheckedOn > result[j].CheckedOn })
	return result, nil
}

// NotificationStore implementation --------------------------------------------

func (s *Store) CreateNotification(_ context.Context, n notification.Notification) (notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == "" {
		n.ID = s.nextIDLocked()
	}
	n.CreatedAt = time.Now().UTC()
	s.notes[n.ID] = n
	return n, nil
}

func (s *Store) UpdateNotification(_ context.Context, n notification.Notification) (notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.notes[n.ID]
	if !ok {
		return notification.Notification{}, fmt.Errorf("notification %s: %w", n.ID, storage.ErrNotFound)
	}
	n.UserID = original.UserID
	n.CreatedAt = original.CreatedAt
	s.notes[n.ID] = n
	return n, nil
}

func (s *Store) GetNotification(_ context.Context, id string) (notification.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notes[id]
	if !ok {
		return notification.Notification{}, fmt.Errorf("notification %s: %w", id, storage.ErrNotFound)
	}
	return n, nil
}

func (s *Store) ListNotifications(_ context.Context, userID string) ([]notification.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []notification.Notification
	for _, n := range s.notes {
		if userID == "" || n.UserID == userID {
			result = append(result, n)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}
