// Package goals implements goal tracking with milestone-derived progress.
// Toggling a milestone recomputes the parent goal's percentage; goals
// without milestones carry a manually set percentage instead.
package goals

import (
	"context"
	stderrors "errors"
	"math"
	"strings"
	"time"

	"github.com/intizom/intizom/internal/app/domain/goal"
	"github.com/intizom/intizom/internal/app/storage"
	"github.com/intizom/intizom/internal/errors"
	"github.com/intizom/intizom/pkg/logger"
)

// Service manages goals and milestones.
type Service struct {
	store storage.GoalStore
	log   *logger.Logger
}

// New constructs a goal service backed by the given store.
func New(store storage.GoalStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("goals")
	}
	return &Service{store: store, log: log}
}

// CreateInput carries the caller-settable goal fields.
type CreateInput struct {
	Title       string
	Description string
	TargetDate  time.Time
}

// Create adds a goal at zero progress.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (goal.Goal, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return goal.Goal{}, errors.Validation("title is required")
	}
	created, err := s.store.CreateGoal(ctx, goal.Goal{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		TargetDate:  in.TargetDate,
	})
	if err != nil {
		return goal.Goal{}, errors.Internal("create goal", err)
	}
	s.log.WithField("goal_id", created.ID).WithField("user_id", userID).Info("goal created")
	return created, nil
}

// UpdateInput carries the editable goal fields. Nil pointers leave the field
// unchanged.
type UpdateInput struct {
	Title       *string
	Description *string
	TargetDate  *time.Time
}

// Update edits goal metadata.
func (s *Service) Update(ctx context.Context, userID, goalID string, in UpdateInput) (goal.Goal, error) {
	g, err := s.owned(ctx, userID, goalID)
	if err != nil {
		return goal.Goal{}, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return goal.Goal{}, errors.Validation("title is required")
		}
		g.Title = title
	}
	if in.Description != nil {
		g.Description = strings.TrimSpace(*in.Description)
	}
	if in.TargetDate != nil {
		g.TargetDate = *in.TargetDate
	}
	updated, err := s.store.UpdateGoal(ctx, g)
	if err != nil {
		return goal.Goal{}, errors.Internal("update goal", err)
	}
	return updated, nil
}

// SetProgress sets the percentage directly. Rejected when the goal has
// milestones, which own the progress value.
func (s *Service) SetProgress(ctx context.Context, userID, goalID string, progress int) (goal.Goal, error) {
	g, err := s.owned(ctx, userID, goalID)
	if err != nil {
		return goal.Goal{}, err
	}
	if progress < 0 || progress > 100 {
		return goal.Goal{}, errors.Validation("progress must be 0..100")
	}
	milestones, err := s.store.ListMilestones(ctx, goalID)
	if err != nil {
		return goal.Goal{}, errors.Internal("list milestones", err)
	}
	if len(milestones) > 0 {
		return goal.Goal{}, errors.Conflict("progress is derived from milestones")
	}
	g.Progress = progress
	g.ManualProgress = true
	updated, err := s.store.UpdateGoal(ctx, g)
	if err != nil {
		return goal.Goal{}, errors.Internal("update goal", err)
	}
	return updated, nil
}

// Delete removes a goal and its milestones.
func (s *Service) Delete(ctx context.Context, userID, goalID string) error {
	if _, err := s.owned(ctx, userID, goalID); err != nil {
		return err
	}
	if err := s.store.DeleteGoal(ctx, goalID); err != nil {
		return errors.Internal("delete goal", err)
	}
	return nil
}

// Get returns a goal with its milestones.
func (s *Service) Get(ctx context.Context, userID, goalID string) (goal.WithMilestones, error) {
	g, err := s.owned(ctx, userID, goalID)
	if err != nil {
		return goal.WithMilestones{}, err
	}
	milestones, err := s.store.ListMilestones(ctx, goalID)
	if err != nil {
		return goal.WithMilestones{}, errors.Internal("list milestones", err)
	}
	return goal.WithMilestones{Goal: g, Milestones: milestones}, nil
}

// List returns the user's goals with milestones.
func (s *Service) List(ctx context.Context, userID string) ([]goal.WithMilestones, error) {
	items, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, errors.Internal("list goals", err)
	}
	result := make([]goal.WithMilestones, 0, len(items))
	for _, g := range items {
		milestones, err := s.store.ListMilestones(ctx, g.ID)
		if err != nil {
			return nil, errors.Internal("list milestones", err)
		}
		result = append(result, goal.WithMilestones{Goal: g, Milestones: milestones})
	}
	return result, nil
}

// AddMilestone appends a milestone and recomputes the goal's progress, which
// switches the goal to derived progress.
func (s *Service) AddMilestone(ctx context.Context, userID, goalID, title string, position int) (goal.Milestone, error) {
	if _, err := s.owned(ctx, userID, goalID); err != nil {
		return goal.Milestone{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return goal.Milestone{}, errors.Validation("title is required")
	}
	created, err := s.store.CreateMilestone(ctx, goal.Milestone{GoalID: goalID, Title: title, Position: position})
	if err != nil {
		return goal.Milestone{}, errors.Internal("create milestone", err)
	}
	if err := s.recomputeProgress(ctx, goalID); err != nil {
		return goal.Milestone{}, err
	}
	return created, nil
}

// UpdateMilestone edits a milestone's title or position.
func (s *Service) UpdateMilestone(ctx context.Context, userID, milestoneID string, title *string, position *int) (goal.Milestone, error) {
	m, err := s.ownedMilestone(ctx, userID, milestoneID)
	if err != nil {
		return goal.Milestone{}, err
	}
	if title != nil {
		trimmed := strings.TrimSpace(*title)
		if trimmed == "" {
			return goal.Milestone{}, errors.Validation("title is required")
		}
		m.Title = trimmed
	}
	if position != nil {
		m.Position = *position
	}
	updated, err := s.store.UpdateMilestone(ctx, m)
	if err != nil {
		return goal.Milestone{}, errors.Internal("update milestone", err)
	}
	return updated, nil
}

// ToggleMilestone flips a milestone and recomputes the parent's progress.
func (s *Service) ToggleMilestone(ctx context.Context, userID, milestoneID string) (goal.Milestone, error) {
	m, err := s.ownedMilestone(ctx, userID, milestoneID)
	if err != nil {
		return goal.Milestone{}, err
	}
	m.Completed = !m.Completed
	updated, err := s.store.UpdateMilestone(ctx, m)
	if err != nil {
		return goal.Milestone{}, errors.Internal("update milestone", err)
	}
	if err := s.recomputeProgress(ctx, m.GoalID); err != nil {
		return goal.Milestone{}, err
	}
	return updated, nil
}

// DeleteMilestone removes a milestone and recomputes the parent's progress.
func (s *Service) DeleteMilestone(ctx context.Context, userID, milestoneID string) error {
	m, err := s.ownedMilestone(ctx, userID, milestoneID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteMilestone(ctx, milestoneID); err != nil {
		return errors.Internal("delete milestone", err)
	}
	return s.recomputeProgress(ctx, m.GoalID)
}

func (s *Service) recomputeProgress(ctx context.Context, goalID string) error {
	g, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return errors.Internal("load goal", err)
	}
	milestones, err := s.store.ListMilestones(ctx, goalID)
	if err != nil {
		return errors.Internal("list milestones", err)
	}
	if len(milestones) == 0 {
		// Last milestone removed; the manual percentage takes over again.
		if !g.ManualProgress {
			g.Progress = 0
		}
	} else {
		completed := 0
		for _, m := range milestones {
			if m.Completed {
				completed++
			}
		}
		g.Progress = int(math.Round(100 * float64(completed) / float64(len(milestones))))
		g.ManualProgress = false
	}
	if _, err := s.store.UpdateGoal(ctx, g); err != nil {
		return errors.Internal("update goal", err)
	}
	return nil
}

func (s *Service) owned(ctx context.Context, userID, goalID string) (goal.Goal, error) {
	g, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return goal.Goal{}, errors.NotFound("goal not found")
		}
		return goal.Goal{}, errors.Internal("load goal", err)
	}
	if g.UserID != userID {
		return goal.Goal{}, errors.Forbidden("goal belongs to another user")
	}
	return g, nil
}

func (s *Service) ownedMilestone(ctx context.Context, userID, milestoneID string) (goal.Milestone, error) {
	m, err := s.store.GetMilestone(ctx, milestoneID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return goal.Milestone{}, errors.NotFound("milestone not found")
		}
		return goal.Milestone{}, errors.Internal("load milestone", err)
	}
	if _, err := s.owned(ctx, userID, m.GoalID); err != nil {
		return goal.Milestone{}, err
	}
	return m, nil
}
