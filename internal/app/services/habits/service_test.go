package habits

import (
	"context"
	"testing"
	"time"

	"github.com/intizom/intizom/internal/app/domain/habit"
	"github.com/intizom/intizom/internal/app/storage/memory"
	"github.com/intizom/intizom/internal/errors"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) advanceDays(n int) { c.t = c.t.AddDate(0, 0, n) }

func newTestService(t *testing.T) (*Service, *memory.Store, *fakeClock) {
	t.Helper()
	store := memory.New()
	clock := &fakeClock{t: time.Date(2026, 2, 20, 9, 30, 0, 0, time.UTC)}
	svc := New(store, nil).WithClock(clock)
	return svc, store, clock
}

func mustCreate(t *testing.T, svc *Service, userID, title string) habit.Habit {
	t.Helper()
	h, err := svc.Create(context.Background(), userID, CreateInput{Title: title})
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}
	return h
}

func TestCompleteBuildsStreakOverConsecutiveDays(t *testing.T) {
	svc, _, clock := newTestService(t)
	h := mustCreate(t, svc, "u1", "read")

	for day := 1; day <= 5; day++ {
		ws, err := svc.Complete(context.Background(), "u1", h.ID, "")
		if err != nil {
			t.Fatalf("complete day %d: %v", day, err)
		}
		if ws.Streak != day {
			t.Fatalf("day %d: streak = %d, want %d", day, ws.Streak, day)
		}
		if ws.LongestStreak < day {
			t.Fatalf("day %d: longest = %d, want >= %d", day, ws.LongestStreak, day)
		}
		if !ws.CompletedToday {
			t.Fatalf("day %d: expected completed_today", day)
		}
		clock.advanceDays(1)
	}
}

func TestCompleteIsIdempotentWithinADay(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := mustCreate(t, svc, "u1", "read")

	first, err := svc.Complete(context.Background(), "u1", h.ID, "")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	second, err := svc.Complete(context.Background(), "u1", h.ID, "")
	if err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if second.Streak != first.Streak {
		t.Fatalf("streak changed on duplicate complete: %d -> %d", first.Streak, second.Streak)
	}
	if len(second.RecentCompletions) != 1 {
		t.Fatalf("expected one completion, got %d", len(second.RecentCompletions))
	}
}

func TestUncompleteStepsStreakBack(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := mustCreate(t, svc, "u1", "read")

	if _, err := svc.Complete(context.Background(), "u1", h.ID, ""); err != nil {
		t.Fatalf("complete: %v", err)
	}
	ws, err := svc.Uncomplete(context.Background(), "u1", h.ID)
	if err != nil {
		t.Fatalf("uncomplete: %v", err)
	}
	if ws.Streak != 0 {
		t.Fatalf("streak = %d, want 0", ws.Streak)
	}
	if ws.CompletedToday {
		t.Fatalf("expected completed_today false")
	}
	if ws.LongestStreak != 1 {
		t.Fatalf("longest = %d, want 1 (high-water mark kept)", ws.LongestStreak)
	}
}

func TestUncompleteNeverGoesNegative(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := mustCreate(t, svc, "u1", "read")

	ws, err := svc.Uncomplete(context.Background(), "u1", h.ID)
	if err != nil {
		t.Fatalf("uncomplete: %v", err)
	}
	if ws.Streak != 0 {
		t.Fatalf("streak = %d, want 0", ws.Streak)
	}
}

func TestToggleDateIsItsOwnInverse(t *testing.T) {
	svc, _, clock := newTestService(t)
	h := mustCreate(t, svc, "u1", "read")

	// Build a streak of two so today's toggle has something to step back to.
	if _, err := svc.Complete(context.Background(), "u1", h.ID, ""); err != nil {
		t.Fatalf("complete: %v", err)
	}
	clock.advanceDays(1)
	if _, err := svc.Complete(context.Background(), "u1", h.ID, ""); err != nil {
		t.Fatalf("complete: %v", err)
	}

	today := habit.DayKey(clock.Now())
	res, err := svc.ToggleDate(context.Background(), "u1", h.ID, today)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if res.Completed {
		t.Fatalf("expected toggle to uncomplete")
	}
	res, err = svc.ToggleDate(context.Background(), "u1", h.ID, today)
	if err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if !res.Completed {
		t.Fatalf("expected toggle to complete")
	}

	ws, err := svc.Get(context.Background(), "u1", h.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ws.Streak != 2 {
		t.Fatalf("streak = %d, want 2 after double toggle", ws.Streak)
	}
	if !ws.CompletedToday {
		t.Fatalf("expected completed_today after double toggle")
	}
}

func TestToggleDateHistoricEditLeavesStreakAlone(t *testing.T) {
	svc, _, clock := newTestService(t)
	h := mustCreate(t, svc, "u1", "read")

	if _, err := svc.Complete(context.Background(), "u1", h.ID, ""); err != nil {
		t.Fatalf("complete: %v", err)
	}

	past := habit.DayKey(clock.Now().AddDate(0, 0, -10))
	res, err := svc.ToggleDate(context.Background(), "u1", h.ID, past)
	if err != nil {
		t.Fatalf("toggle past: %v", err)
	}
	if !res.Completed {
		t.Fatalf("expected past day completed")
	}

	ws, err := svc.Get(context.Background(), "u1", h.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ws.Streak != 1 {
		t.Fatalf("streak = %d, want 1 (historic edit must not nudge it)", ws.Streak)
	}
}

func TestToggleDateRejectsBadInput(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := mustCreate(t, svc, "u1", "read")

	_, err := svc.ToggleDate(context.Background(), "u1", h.ID, "20-02-2026")
	se := errors.GetServiceError(err)
	if se == nil || se.Code != errors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestOwnershipChecks(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := mustCreate(t, svc, "u1", "read")

	_, err := svc.Complete(context.Background(), "u2", h.ID, "")
	se := errors.GetServiceError(err)
	if se == nil || se.Code != errors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	_, err = svc.Complete(context.Background(), "u1", "missing", "")
	se = errors.GetServiceError(err)
	if se == nil || se.Code != errors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMonthViewVisibilityBoundary(t *testing.T) {
	svc, store, clock := newTestService(t)
	created, err := store.CreateHabit(context.Background(), habit.Habit{
		UserID:    "u1",
		Title:     "gym",
		Category:  habit.CategoryFitness,
		Frequency: habit.FrequencyDaily,
		IsActive:  true,
		CreatedAt: time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed habit: %v", err)
	}
	clock.t = time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)

	jan, err := svc.MonthView(context.Background(), "u1", 2026, 1)
	if err != nil {
		t.Fatalf("january view: %v", err)
	}
	if len(jan.Habits) != 0 {
		t.Fatalf("habit created in february must not appear in january")
	}

	feb, err := svc.MonthView(context.Background(), "u1", 2026, 2)
	if err != nil {
		t.Fatalf("february view: %v", err)
	}
	if len(feb.Habits) != 1 {
		t.Fatalf("expected one habit in february, got %d", len(feb.Habits))
	}
	if feb.Habits[0].FirstActiveDay != 15 {
		t.Fatalf("first_active_day = %d, want 15", feb.Habits[0].FirstActiveDay)
	}
	if feb.DaysInMonth != 28 {
		t.Fatalf("days_in_month = %d, want 28", feb.DaysInMonth)
	}
	if feb.Habits[0].LastActiveDay != 28 {
		t.Fatalf("last_active_day = %d, want 28", feb.Habits[0].LastActiveDay)
	}
	if created.ID != feb.Habits[0].ID {
		t.Fatalf("unexpected habit id in view")
	}
}

func TestMonthViewPauseBoundary(t *testing.T) {
	svc, store, clock := newTestService(t)
	if _, err := store.CreateHabit(context.Background(), habit.Habit{
		UserID:    "u1",
		Title:     "gym",
		IsActive:  true,
		CreatedAt: time.Date(2025, 12, 1, 8, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("seed habit: %v", err)
	}

	habits, _ := store.ListHabits(context.Background(), "u1")
	clock.t = time.Date(2026, 2, 10, 14, 0, 0, 0, time.UTC)
	if _, err := svc.Pause(context.Background(), "u1", habits[0].ID); err != nil {
		t.Fatalf("pause: %v", err)
	}

	feb, err := svc.MonthView(context.Background(), "u1", 2026, 2)
	if err != nil {
		t.Fatalf("february view: %v", err)
	}
	if len(feb.Habits) != 1 {
		t.Fatalf("expected habit visible in pause month")
	}
	if feb.Habits[0].PausedDay == nil || *feb.Habits[0].PausedDay != 10 {
		t.Fatalf("paused_day = %v, want 10", feb.Habits[0].PausedDay)
	}
	if feb.Habits[0].LastActiveDay != 10 {
		t.Fatalf("last_active_day = %d, want 10", feb.Habits[0].LastActiveDay)
	}

	mar, err := svc.MonthView(context.Background(), "u1", 2026, 3)
	if err != nil {
		t.Fatalf("march view: %v", err)
	}
	if len(mar.Habits) != 0 {
		t.Fatalf("habit paused in february must not appear in march")
	}

	jan, err := svc.MonthView(context.Background(), "u1", 2026, 1)
	if err != nil {
		t.Fatalf("january view: %v", err)
	}
	if len(jan.Habits) != 1 {
		t.Fatalf("expected habit visible before pause month")
	}
	if jan.Habits[0].PausedDay != nil {
		t.Fatalf("paused_day must be nil outside the pause month")
	}
	if jan.Habits[0].LastActiveDay != 31 {
		t.Fatalf("last_active_day = %d, want 31", jan.Habits[0].LastActiveDay)
	}
}

func TestMonthViewCompletedDays(t *testing.T) {
	svc, _, clock := newTestService(t)
	h := mustCreate(t, svc, "u1", "read")

	clock.t = time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)
	for _, day := range []string{"2026-02-03", "2026-02-01"} {
		if _, err := svc.ToggleDate(context.Background(), "u1", h.ID, day); err != nil {
			t.Fatalf("toggle %s: %v", day, err)
		}
	}

	feb, err := svc.MonthView(context.Background(), "u1", 2026, 2)
	if err != nil {
		t.Fatalf("february view: %v", err)
	}
	if len(feb.Habits) != 1 {
		t.Fatalf("expected one habit")
	}
	got := feb.Habits[0].CompletedDays
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("completed_days = %v, want [1 3]", got)
	}
}

func TestPauseAndResumeLeaveStreaksAlone(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := mustCreate(t, svc, "u1", "read")

	if _, err := svc.Complete(context.Background(), "u1", h.ID, ""); err != nil {
		t.Fatalf("complete: %v", err)
	}

	paused, err := svc.Pause(context.Background(), "u1", h.ID)
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if paused.IsActive || paused.PausedAt.IsZero() {
		t.Fatalf("expected paused state with timestamp")
	}
	if paused.Streak != 1 {
		t.Fatalf("pause must not reset streak")
	}

	resumed, err := svc.Resume(context.Background(), "u1", h.ID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !resumed.IsActive || !resumed.PausedAt.IsZero() {
		t.Fatalf("expected active state with cleared pause timestamp")
	}
	if resumed.Streak != 1 {
		t.Fatalf("resume must not reset streak")
	}
}

func TestCreateValidatesAndDefaults(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.Create(context.Background(), "u1", CreateInput{Title: "  "}); err == nil {
		t.Fatalf("expected validation error for blank title")
	}

	h, err := svc.Create(context.Background(), "u1", CreateInput{Title: "meditate", Category: "zen"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if h.Category != habit.CategoryOther {
		t.Fatalf("category = %s, want other fallback", h.Category)
	}
	if h.Frequency != habit.FrequencyDaily {
		t.Fatalf("frequency = %s, want daily default", h.Frequency)
	}
	if !h.IsActive || h.Streak != 0 {
		t.Fatalf("new habit must start active with zero streak")
	}
}

func TestDeleteRemovesCompletions(t *testing.T) {
	svc, store, _ := newTestService(t)
	h := mustCreate(t, svc, "u1", "read")

	if _, err := svc.Complete(context.Background(), "u1", h.ID, ""); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := svc.Delete(context.Background(), "u1", h.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	left, err := store.ListRecentCompletions(context.Background(), h.ID, 10)
	if err != nil {
		t.Fatalf("list completions: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("expected completions removed with habit, got %d", len(left))
	}
}
