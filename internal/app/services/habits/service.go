// Package habits implements the streak and completion engine: the running
// streak counters, the flat today view, the month grid, and the habit
// pause/resume lifecycle.
package habits

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/intizom/intizom/internal/app/domain/habit"
	"github.com/intizom/intizom/internal/app/metrics"
	"github.com/intizom/intizom/internal/app/storage"
	"github.com/intizom/intizom/internal/errors"
	"github.com/intizom/intizom/pkg/logger"
)

const recentCompletionLimit = 30

// Service manages habits and their completions for one user at a time.
type Service struct {
	store storage.HabitStore
	log   *logger.Logger
	clock Clock
}

// New constructs a habit service backed by the given store.
func New(store storage.HabitStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("habits")
	}
	return &Service{store: store, log: log, clock: SystemClock()}
}

// WithClock overrides the time source. Intended for tests.
func (s *Service) WithClock(clock Clock) *Service {
	s.clock = clock
	return s
}

// CreateInput carries the caller-settable habit fields.
type CreateInput struct {
	Title       string
	Description string
	Category    string
	Frequency   string
	Color       string
	Icon        string
}

// Create registers a new active habit with a zero streak.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (habit.Habit, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return habit.Habit{}, errors.Validation("title is required")
	}

	h := habit.Habit{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Category:    habit.ParseCategory(in.Category),
		Frequency:   habit.ParseFrequency(in.Frequency),
		Color:       strings.TrimSpace(in.Color),
		Icon:        strings.TrimSpace(in.Icon),
		IsActive:    true,
	}
	created, err := s.store.CreateHabit(ctx, h)
	if err != nil {
		return habit.Habit{}, errors.Internal("create habit", err)
	}
	s.log.WithField("habit_id", created.ID).WithField("user_id", userID).Info("habit created")
	return created, nil
}

// UpdateInput carries the editable habit fields. Nil pointers leave the
// field unchanged.
type UpdateInput struct {
	Title       *string
	Description *string
	Category    *string
	Frequency   *string
	Color       *string
	Icon        *string
}

// Update edits habit metadata. Streaks and lifecycle state are untouched.
func (s *Service) Update(ctx context.Context, userID, habitID string, in UpdateInput) (habit.Habit, error) {
	h, err := s.owned(ctx, userID, habitID)
	if err != nil {
		return habit.Habit{}, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return habit.Habit{}, errors.Validation("title is required")
		}
		h.Title = title
	}
	if in.Description != nil {
		h.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		h.Category = habit.ParseCategory(*in.Category)
	}
	if in.Frequency != nil {
		h.Frequency = habit.ParseFrequency(*in.Frequency)
	}
	if in.Color != nil {
		h.Color = strings.TrimSpace(*in.Color)
	}
	if in.Icon != nil {
		h.Icon = strings.TrimSpace(*in.Icon)
	}

	updated, err := s.store.UpdateHabit(ctx, h)
	if err != nil {
		return habit.Habit{}, errors.Internal("update habit", err)
	}
	return updated, nil
}

// Delete removes a habit and all of its completions.
func (s *Service) Delete(ctx context.Context, userID, habitID string) error {
	if _, err := s.owned(ctx, userID, habitID); err != nil {
		return err
	}
	if err := s.store.DeleteHabit(ctx, habitID); err != nil {
		return errors.Internal("delete habit", err)
	}
	s.log.WithField("habit_id", habitID).WithField("user_id", userID).Info("habit deleted")
	return nil
}

// Get returns one habit with its today flag and recent completions.
func (s *Service) Get(ctx context.Context, userID, habitID string) (habit.WithStatus, error) {
	h, err := s.owned(ctx, userID, habitID)
	if err != nil {
		return habit.WithStatus{}, err
	}
	return s.withStatus(ctx, h)
}

// List returns the user's habits, each with the completed-today flag and the
// most recent completions.
func (s *Service) List(ctx context.Context, userID string) ([]habit.WithStatus, error) {
	items, err := s.store.ListHabits(ctx, userID)
	if err != nil {
		return nil, errors.Internal("list habits", err)
	}
	result := make([]habit.WithStatus, 0, len(items))
	for _, h := range items {
		ws, err := s.withStatus(ctx, h)
		if err != nil {
			return nil, err
		}
		result = append(result, ws)
	}
	return result, nil
}

// Complete marks the habit done for today. A habit already completed today
// is returned unchanged.
func (s *Service) Complete(ctx context.Context, userID, habitID, note string) (habit.WithStatus, error) {
	h, err := s.owned(ctx, userID, habitID)
	if err != nil {
		return habit.WithStatus{}, err
	}

	now := s.clock.Now().UTC()
	_, inserted, err := s.store.CreateCompletion(ctx, habit.Completion{
		HabitID:     habitID,
		CompletedAt: now,
		CompletedOn: habit.DayKey(now),
		Note:        strings.TrimSpace(note),
	})
	if err != nil {
		return habit.WithStatus{}, errors.Internal("record completion", err)
	}
	if inserted {
		h.Streak++
		if h.Streak > h.LongestStreak {
			h.LongestStreak = h.Streak
		}
		if h, err = s.store.UpdateHabit(ctx, h); err != nil {
			return habit.WithStatus{}, errors.Internal("update streak", err)
		}
		metrics.RecordHabitCompletion("complete")
	}
	return s.withStatus(ctx, h)
}

// Uncomplete removes today's completion and steps the streak back, never
// below zero. The longest streak is a high-water mark and is not touched.
func (s *Service) Uncomplete(ctx context.Context, userID, habitID string) (habit.WithStatus, error) {
	h, err := s.owned(ctx, userID, habitID)
	if err != nil {
		return habit.WithStatus{}, err
	}

	dayStart := startOfDay(s.clock.Now())
	deleted, err := s.store.DeleteCompletions(ctx, habitID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return habit.WithStatus{}, errors.Internal("delete completions", err)
	}
	if deleted > 0 && h.Streak > 0 {
		h.Streak--
		if h, err = s.store.UpdateHabit(ctx, h); err != nil {
			return habit.WithStatus{}, errors.Internal("update streak", err)
		}
		metrics.RecordHabitCompletion("uncomplete")
	}
	return s.withStatus(ctx, h)
}

// ToggleResult reports the outcome of a date toggle.
type ToggleResult struct {
	Day       int  `json:"day"`
	Completed bool `json:"completed"`
}

// ToggleDate flips the completion state of an arbitrary calendar day given
// as YYYY-MM-DD. The running streak is nudged only when the toggled day is
// today; historic edits leave the counter alone.
func (s *Service) ToggleDate(ctx context.Context, userID, habitID, date string) (ToggleResult, error) {
	h, err := s.owned(ctx, userID, habitID)
	if err != nil {
		return ToggleResult{}, err
	}

	day, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return ToggleResult{}, errors.Validation("date must be YYYY-MM-DD")
	}
	dayStart := startOfDay(day)
	isToday := dayStart.Equal(startOfDay(s.clock.Now()))

	existing, err := s.store.ListCompletionsInRange(ctx, habitID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return ToggleResult{}, errors.Internal("query completions", err)
	}

	if len(existing) > 0 {
		if _, err := s.store.DeleteCompletions(ctx, habitID, dayStart, dayStart.AddDate(0, 0, 1)); err != nil {
			return ToggleResult{}, errors.Internal("delete completions", err)
		}
		if isToday && h.Streak > 0 {
			h.Streak--
			if _, err := s.store.UpdateHabit(ctx, h); err != nil {
				return ToggleResult{}, errors.Internal("update streak", err)
			}
		}
		metrics.RecordHabitCompletion("uncomplete")
		return ToggleResult{Day: dayStart.Day(), Completed: false}, nil
	}

	// Noon keeps the stored instant clear of both day-boundary comparisons.
	_, inserted, err := s.store.CreateCompletion(ctx, habit.Completion{
		HabitID:     habitID,
		CompletedAt: dayStart.Add(12 * time.Hour),
		CompletedOn: habit.DayKey(dayStart),
	})
	if err != nil {
		return ToggleResult{}, errors.Internal("record completion", err)
	}
	if inserted && isToday {
		h.Streak++
		if h.Streak > h.LongestStreak {
			h.LongestStreak = h.Streak
		}
		if _, err := s.store.UpdateHabit(ctx, h); err != nil {
			return ToggleResult{}, errors.Internal("update streak", err)
		}
	}
	metrics.RecordHabitCompletion("complete")
	return ToggleResult{Day: dayStart.Day(), Completed: true}, nil
}

// Pause stops tracking without resetting streaks. Pausing an already paused
// habit is a no-op.
func (s *Service) Pause(ctx context.Context, userID, habitID string) (habit.Habit, error) {
	h, err := s.owned(ctx, userID, habitID)
	if err != nil {
		return habit.Habit{}, err
	}
	if !h.IsActive {
		return h, nil
	}
	h.IsActive = false
	h.PausedAt = s.clock.Now().UTC()
	updated, err := s.store.UpdateHabit(ctx, h)
	if err != nil {
		return habit.Habit{}, errors.Internal("pause habit", err)
	}
	s.log.WithField("habit_id", habitID).Info("habit paused")
	return updated, nil
}

// Resume reactivates a paused habit.
func (s *Service) Resume(ctx context.Context, userID, habitID string) (habit.Habit, error) {
	h, err := s.owned(ctx, userID, habitID)
	if err != nil {
		return habit.Habit{}, err
	}
	if h.IsActive {
		return h, nil
	}
	h.IsActive = true
	h.PausedAt = time.Time{}
	updated, err := s.store.UpdateHabit(ctx, h)
	if err != nil {
		return habit.Habit{}, errors.Internal("resume habit", err)
	}
	s.log.WithField("habit_id", habitID).Info("habit resumed")
	return updated, nil
}

// MonthView renders the month grid: for every habit visible in the month,
// its completed day numbers and lifecycle bounds.
func (s *Service) MonthView(ctx context.Context, userID string, year, month int) (habit.MonthView, error) {
	if year < 1970 || year > 9999 {
		return habit.MonthView{}, errors.Validation("year out of range")
	}
	if month < 1 || month > 12 {
		return habit.MonthView{}, errors.Validation("month must be 1..12")
	}

	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)
	daysInMonth := monthEnd.AddDate(0, 0, -1).Day()

	items, err := s.store.ListHabits(ctx, userID)
	if err != nil {
		return habit.MonthView{}, errors.Internal("list habits", err)
	}

	view := habit.MonthView{
		Year:        year,
		Month:       month,
		DaysInMonth: daysInMonth,
		Habits:      []habit.MonthHabit{},
	}
	for _, h := range items {
		// Habits created after the month, or paused before it started, are
		// not rendered at all.
		if !h.CreatedAt.Before(monthEnd) {
			continue
		}
		if !h.IsActive && h.PausedAt.Before(monthStart) {
			continue
		}

		firstActive := 1
		if !h.CreatedAt.Before(monthStart) {
			firstActive = h.CreatedAt.Day()
		}

		lastActive := daysInMonth
		var pausedDay *int
		if !h.IsActive && !h.PausedAt.Before(monthStart) && h.PausedAt.Before(monthEnd) {
			d := h.PausedAt.Day()
			lastActive = d
			pausedDay = &d
		}

		completions, err := s.store.ListCompletionsInRange(ctx, h.ID, monthStart, monthEnd)
		if err != nil {
			return habit.MonthView{}, errors.Internal("query completions", err)
		}
		days := make([]int, 0, len(completions))
		for _, c := range completions {
			days = append(days, c.CompletedAt.UTC().Day())
		}

		view.Habits = append(view.Habits, habit.MonthHabit{
			ID:             h.ID,
			Title:          h.Title,
			Category:       h.Category,
			Color:          h.Color,
			Icon:           h.Icon,
			CompletedDays:  days,
			FirstActiveDay: firstActive,
			LastActiveDay:  lastActive,
			PausedDay:      pausedDay,
		})
	}
	return view, nil
}

func (s *Service) owned(ctx context.Context, userID, habitID string) (habit.Habit, error) {
	h, err := s.store.GetHabit(ctx, habitID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return habit.Habit{}, errors.NotFound("habit not found")
		}
		return habit.Habit{}, errors.Internal("load habit", err)
	}
	if h.UserID != userID {
		return habit.Habit{}, errors.Forbidden("habit belongs to another user")
	}
	return h, nil
}

func (s *Service) withStatus(ctx context.Context, h habit.Habit) (habit.WithStatus, error) {
	recent, err := s.store.ListRecentCompletions(ctx, h.ID, recentCompletionLimit)
	if err != nil {
		return habit.WithStatus{}, errors.Internal("query completions", err)
	}
	todayKey := habit.DayKey(s.clock.Now().UTC())
	completedToday := false
	for _, c := range recent {
		if c.CompletedOn == todayKey {
			completedToday = true
			break
		}
	}
	return habit.WithStatus{Habit: h, CompletedToday: completedToday, RecentCompletions: recent}, nil
}
