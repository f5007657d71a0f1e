// Package users implements account registration, login, token refresh,
// profile management, the app-lock PIN, and the admin user listing.
package users

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/intizom/intizom/internal/app/auth"
	"github.com/intizom/intizom/internal/app/domain/user"
	"github.com/intizom/intizom/internal/app/storage"
	"github.com/intizom/intizom/internal/errors"
	"github.com/intizom/intizom/pkg/logger"
)

const (
	minPasswordLen = 8
	minPINLen      = 4
	maxPINLen      = 6
)

// Service manages user accounts.
type Service struct {
	store     storage.UserStore
	tokens    *auth.Manager
	log       *logger.Logger
	trialDays int
	now       func() time.Time
}

// New constructs a user service. trialDays controls how long new accounts
// stay on the trial plan.
func New(store storage.UserStore, tokens *auth.Manager, trialDays int, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	if trialDays <= 0 {
		trialDays = 14
	}
	return &Service{store: store, tokens: tokens, log: log, trialDays: trialDays, now: time.Now}
}

// WithClock overrides the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Register creates an account on the trial plan and returns a token pair.
func (s *Service) Register(ctx context.Context, email, name, password string) (user.User, auth.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if !strings.Contains(email, "@") {
		return user.User{}, auth.TokenPair{}, errors.Validation("valid email is required")
	}
	if name == "" {
		return user.User{}, auth.TokenPair{}, errors.Validation("name is required")
	}
	if len(password) < minPasswordLen {
		return user.User{}, auth.TokenPair{}, errors.Validation("password must be at least 8 characters")
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return user.User{}, auth.TokenPair{}, errors.Conflict("email already registered")
	} else if !stderrors.Is(err, storage.ErrNotFound) {
		return user.User{}, auth.TokenPair{}, errors.Internal("lookup email", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return user.User{}, auth.TokenPair{}, err
	}

	created, err := s.store.CreateUser(ctx, user.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         user.RoleUser,
		Plan:         user.PlanTrial,
		TrialEndsAt:  s.now().UTC().AddDate(0, 0, s.trialDays),
	})
	if err != nil {
		return user.User{}, auth.TokenPair{}, errors.Internal("create user", err)
	}

	pair, err := s.tokens.IssuePair(created.ID, string(created.Role))
	if err != nil {
		return user.User{}, auth.TokenPair{}, err
	}
	s.log.WithField("user_id", created.ID).Info("user registered")
	return created, pair, nil
}

// Login verifies credentials and returns a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (user.User, auth.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return user.User{}, auth.TokenPair{}, errors.Unauthorized("invalid credentials")
		}
		return user.User{}, auth.TokenPair{}, errors.Internal("lookup email", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return user.User{}, auth.TokenPair{}, errors.Unauthorized("invalid credentials")
	}

	pair, err := s.tokens.IssuePair(u.ID, string(u.Role))
	if err != nil {
		return user.User{}, auth.TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh exchanges a refresh token for a fresh pair. The account must
// still exist; role changes since issuance are picked up here.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return auth.TokenPair{}, err
	}
	u, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return auth.TokenPair{}, errors.Unauthorized("account no longer exists")
		}
		return auth.TokenPair{}, errors.Internal("load user", err)
	}
	return s.tokens.IssuePair(u.ID, string(u.Role))
}

// Get returns one account by id.
func (s *Service) Get(ctx context.Context, userID string) (user.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return user.User{}, errors.NotFound("user not found")
		}
		return user.User{}, errors.Internal("load user", err)
	}
	return u, nil
}

// UpdateName changes the display name.
func (s *Service) UpdateName(ctx context.Context, userID, name string) (user.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return user.User{}, errors.Validation("name is required")
	}
	u, err := s.Get(ctx, userID)
	if err != nil {
		return user.User{}, err
	}
	u.Name = name
	updated, err := s.store.UpdateUser(ctx, u)
	if err != nil {
		return user.User{}, errors.Internal("update user", err)
	}
	return updated, nil
}

// SetPIN configures the app-lock PIN, a short numeric second factor for the
// client UI.
func (s *Service) SetPIN(ctx context.Context, userID, pin string) error {
	if !validPIN(pin) {
		return errors.Validation("pin must be 4 to 6 digits")
	}
	u, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	hash, err := auth.HashPIN(pin)
	if err != nil {
		return err
	}
	u.PINHash = hash
	if _, err := s.store.UpdateUser(ctx, u); err != nil {
		return errors.Internal("update user", err)
	}
	return nil
}

// VerifyPIN checks a candidate PIN against the stored hash.
func (s *Service) VerifyPIN(ctx context.Context, userID, pin string) error {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !u.HasPIN() {
		return errors.NotFound("no pin configured")
	}
	if !auth.CheckPIN(u.PINHash, pin) {
		return errors.Unauthorized("wrong pin")
	}
	return nil
}

// ClearPIN removes the app-lock PIN after verifying the current one.
func (s *Service) ClearPIN(ctx context.Context, userID, pin string) error {
	if err := s.VerifyPIN(ctx, userID, pin); err != nil {
		return err
	}
	u, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	u.PINHash = ""
	if _, err := s.store.UpdateUser(ctx, u); err != nil {
		return errors.Internal("update user", err)
	}
	return nil
}

// List returns every account. Admin only; enforced by the HTTP layer.
func (s *Service) List(ctx context.Context) ([]user.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, errors.Internal("list users", err)
	}
	return users, nil
}

// Delete removes an account and all of its data.
func (s *Service) Delete(ctx context.Context, userID string) error {
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return errors.NotFound("user not found")
		}
		return errors.Internal("delete user", err)
	}
	s.log.WithField("user_id", userID).Info("user deleted")
	return nil
}

func validPIN(pin string) bool {
	if len(pin) < minPINLen || len(pin) > maxPINLen {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
