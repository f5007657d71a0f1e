// Package subscriptions implements plan gating and the trial lifecycle.
// Every account starts on a trial; when it lapses the account is moved to
// the expired plan and write access to the productivity features is denied
// until an admin grants pro.
package subscriptions

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/intizom/intizom/internal/app/domain/user"
	"github.com/intizom/intizom/internal/app/storage"
	"github.com/intizom/intizom/internal/errors"
	"github.com/intizom/intizom/pkg/logger"
)

// Service manages subscription plans.
type Service struct {
	store storage.UserStore
	log   *logger.Logger
	now   func() time.Time
}

// New constructs a subscription service backed by the user store.
func New(store storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("subscriptions")
	}
	return &Service{store: store, log: log, now: time.Now}
}

// WithClock overrides the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Gate returns nil when the account may use the app, or a plan-expired
// error. A trial found lapsed here is downgraded in place rather than
// waiting for the nightly sweep.
func (s *Service) Gate(ctx context.Context, userID string) error {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return errors.Unauthorized("account no longer exists")
		}
		return errors.Internal("load user", err)
	}

	switch u.Plan {
	case user.PlanPro:
		return nil
	case user.PlanTrial:
		if s.now().UTC().Before(u.TrialEndsAt) {
			return nil
		}
		u.Plan = user.PlanExpired
		if _, err := s.store.UpdateUser(ctx, u); err != nil {
			s.log.WithError(err).WithField("user_id", u.ID).Warn("downgrade lapsed trial")
		}
		return errors.PlanExpired()
	default:
		return errors.PlanExpired()
	}
}

// GrantPro upgrades an account to the pro plan.
func (s *Service) GrantPro(ctx context.Context, userID string) (user.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return user.User{}, errors.NotFound("user not found")
		}
		return user.User{}, errors.Internal("load user", err)
	}
	u.Plan = user.PlanPro
	u.TrialEndsAt = time.Time{}
	updated, err := s.store.UpdateUser(ctx, u)
	if err != nil {
		return user.User{}, errors.Internal("update user", err)
	}
	s.log.WithField("user_id", userID).Info("pro plan granted")
	return updated, nil
}

// ExtendTrial pushes a trial end date out by the given number of days.
func (s *Service) ExtendTrial(ctx context.Context, userID string, days int) (user.User, error) {
	if days <= 0 {
		return user.User{}, errors.Validation("days must be positive")
	}
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return user.User{}, errors.NotFound("user not found")
		}
		return user.User{}, errors.Internal("load user", err)
	}
	base := u.TrialEndsAt
	if now := s.now().UTC(); base.Before(now) {
		base = now
	}
	u.Plan = user.PlanTrial
	u.TrialEndsAt = base.AddDate(0, 0, days)
	updated, err := s.store.UpdateUser(ctx, u)
	if err != nil {
		return user.User{}, errors.Internal("update user", err)
	}
	return updated, nil
}

// SweepExpiredTrials downgrades every lapsed trial account and returns the
// downgraded user ids.
func (s *Service) SweepExpiredTrials(ctx context.Context) ([]string, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, errors.Internal("list users", err)
	}
	now := s.now().UTC()
	var expired []string
	for _, u := range users {
		if u.Plan != user.PlanTrial || now.Before(u.TrialEndsAt) {
			continue
		}
		u.Plan = user.PlanExpired
		if _, err := s.store.UpdateUser(ctx, u); err != nil {
			s.log.WithError(err).WithField("user_id", u.ID).Warn("downgrade trial failed")
			continue
		}
		expired = append(expired, u.ID)
	}
	return expired, nil
}
