// Package principles implements the values checklist. Unlike habits, a
// principle's streak is never stored: it is recomputed from the full check
// history on every read, so historic edits are always reflected.
package principles

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/intizom/intizom/internal/app/domain/principle"
	"github.com/intizom/intizom/internal/app/storage"
	"github.com/intizom/intizom/internal/errors"
	"github.com/intizom/intizom/pkg/logger"
)

// Clock supplies the wall time used for day-boundary arithmetic.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Service manages principles and their daily checks.
type Service struct {
	store storage.PrincipleStore
	log   *logger.Logger
	clock Clock
}

// New constructs a principle service backed by the given store.
func New(store storage.PrincipleStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("principles")
	}
	return &Service{store: store, log: log, clock: systemClock{}}
}

// WithClock overrides the time source. Intended for tests.
func (s *Service) WithClock(clock Clock) *Service {
	s.clock = clock
	return s
}

// Create adds a principle.
func (s *Service) Create(ctx context.Context, userID, title, description string, position int) (principle.Principle, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return principle.Principle{}, errors.Validation("title is required")
	}
	created, err := s.store.CreatePrinciple(ctx, principle.Principle{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Position:    position,
	})
	if err != nil {
		return principle.Principle{}, errors.Internal("create principle", err)
	}
	return created, nil
}

// UpdateInput carries the editable principle fields. Nil pointers leave the
// field unchanged.
type UpdateInput struct {
	Title       *string
	Description *string
	Position    *int
}

// Update edits a principle.
func (s *Service) Update(ctx context.Context, userID, principleID string, in UpdateInput) (principle.Principle, error) {
	p, err := s.owned(ctx, userID, principleID)
	if err != nil {
		return principle.Principle{}, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return principle.Principle{}, errors.Validation("title is required")
		}
		p.Title = title
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Position != nil {
		p.Position = *in.Position
	}
	updated, err := s.store.UpdatePrinciple(ctx, p)
	if err != nil {
		return principle.Principle{}, errors.Internal("update principle", err)
	}
	return updated, nil
}

// Delete removes a principle and its checks.
func (s *Service) Delete(ctx context.Context, userID, principleID string) error {
	if _, err := s.owned(ctx, userID, principleID); err != nil {
		return err
	}
	if err := s.store.DeletePrinciple(ctx, principleID); err != nil {
		return errors.Internal("delete principle", err)
	}
	return nil
}

// List returns the user's principles with streaks recomputed from history.
func (s *Service) List(ctx context.Context, userID string) ([]principle.WithStreak, error) {
	items, err := s.store.ListPrinciples(ctx, userID)
	if err != nil {
		return nil, errors.Internal("list principles", err)
	}
	result := make([]principle.WithStreak, 0, len(items))
	for _, p := range items {
		ws, err := s.withStreak(ctx, p)
		if err != nil {
			return nil, err
		}
		result = append(result, ws)
	}
	return result, nil
}

// ToggleCheck flips the check-in for a given YYYY-MM-DD day, today when the
// date is empty, and returns the fresh streak.
func (s *Service) ToggleCheck(ctx context.Context, userID, principleID, date string) (principle.WithStreak, error) {
	p, err := s.owned(ctx, userID, principleID)
	if err != nil {
		return principle.WithStreak{}, err
	}

	day := dayKey(s.clock.Now())
	if date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", date, time.UTC)
		if err != nil {
			return principle.WithStreak{}, errors.Validation("date must be YYYY-MM-DD")
		}
		day = dayKey(parsed)
	}
	_, inserted, err := s.store.CreateCheck(ctx, principle.Check{PrincipleID: principleID, CheckedOn: day})
	if err != nil {
		return principle.WithStreak{}, errors.Internal("record check", err)
	}
	if !inserted {
		if _, err := s.store.DeleteCheck(ctx, principleID, day); err != nil {
			return principle.WithStreak{}, errors.Internal("delete check", err)
		}
	}
	return s.withStreak(ctx, p)
}

func (s *Service) withStreak(ctx context.Context, p principle.Principle) (principle.WithStreak, error) {
	checks, err := s.store.ListChecks(ctx, p.ID)
	if err != nil {
		return principle.WithStreak{}, errors.Internal("list checks", err)
	}
	now := s.clock.Now()
	streak := computeStreak(checks, now)
	today := dayKey(now)
	checkedToday := false
	for _, c := range checks {
		if c.CheckedOn == today {
			checkedToday = true
			break
		}
	}
	return principle.WithStreak{Principle: p, Streak: streak, CheckedToday: checkedToday}, nil
}

// computeStreak counts the consecutive run of checked days ending today or
// yesterday. Checks are expected newest first; any gap over one day breaks
// the run.
func computeStreak(checks []principle.Check, now time.Time) int {
	if len(checks) == 0 {
		return 0
	}
	today := startOfDay(now)

	head, err := time.ParseInLocation("2006-01-02", checks[0].CheckedOn, time.UTC)
	if err != nil {
		return 0
	}
	if today.Sub(head) > 24*time.Hour {
		return 0
	}

	streak := 1
	prev := head
	for _, c := range checks[1:] {
		day, err := time.ParseInLocation("2006-01-02", c.CheckedOn, time.UTC)
		if err != nil {
			break
		}
		if prev.Sub(day) != 24*time.Hour {
			break
		}
		streak++
		prev = day
	}
	return streak
}

func (s *Service) owned(ctx context.Context, userID, principleID string) (principle.Principle, error) {
	p, err := s.store.GetPrinciple(ctx, principleID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return principle.Principle{}, errors.NotFound("principle not found")
		}
		return principle.Principle{}, errors.Internal("load principle", err)
	}
	if p.UserID != userID {
		return principle.Principle{}, errors.Forbidden("principle belongs to another user")
	}
	return p, nil
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
