// Package notifications implements in-app notifications: per-user delivery,
// read tracking, and the admin broadcast.
package notifications

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/intizom/intizom/internal/app/domain/notification"
	"github.com/intizom/intizom/internal/app/storage"
	"github.com/intizom/intizom/internal/errors"
	"github.com/intizom/intizom/pkg/logger"
)

// Service manages notifications.
type Service struct {
	store storage.NotificationStore
	users storage.UserStore
	log   *logger.Logger
	now   func() time.Time
}

// New constructs a notification service. The user store is consulted for
// broadcast fan-out.
func New(store storage.NotificationStore, users storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("notifications")
	}
	return &Service{store: store, users: users, log: log, now: time.Now}
}

// List returns a user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]notification.Notification, error) {
	items, err := s.store.ListNotifications(ctx, userID)
	if err != nil {
		return nil, errors.Internal("list notifications", err)
	}
	return items, nil
}

// MarkRead stamps a notification as read. Reading twice is a no-op.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) (notification.Notification, error) {
	n, err := s.store.GetNotification(ctx, notificationID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return notification.Notification{}, errors.NotFound("notification not found")
		}
		return notification.Notification{}, errors.Internal("load notification", err)
	}
	if n.UserID != userID {
		return notification.Notification{}, errors.Forbidden("notification belongs to another user")
	}
	if n.Read() {
		return n, nil
	}
	n.ReadAt = s.now().UTC()
	updated, err := s.store.UpdateNotification(ctx, n)
	if err != nil {
		return notification.Notification{}, errors.Internal("update notification", err)
	}
	return updated, nil
}

// Send delivers a notification to one user.
func (s *Service) Send(ctx context.Context, userID, title, body string) (notification.Notification, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return notification.Notification{}, errors.Validation("title is required")
	}
	created, err := s.store.CreateNotification(ctx, notification.Notification{
		UserID: userID,
		Title:  title,
		Body:   strings.TrimSpace(body),
	})
	if err != nil {
		return notification.Notification{}, errors.Internal("create notification", err)
	}
	return created, nil
}

// Broadcast delivers a notification to every account. Admin only; enforced
// by the HTTP layer. Returns how many were delivered.
func (s *Service) Broadcast(ctx context.Context, title, body string) (int, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, errors.Validation("title is required")
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return 0, errors.Internal("list users", err)
	}
	sent := 0
	for _, u := range users {
		if _, err := s.store.CreateNotification(ctx, notification.Notification{
			UserID: u.ID,
			Title:  title,
			Body:   strings.TrimSpace(body),
		}); err != nil {
			s.log.WithError(err).WithField("user_id", u.ID).Warn("broadcast delivery failed")
			continue
		}
		sent++
	}
	s.log.WithField("count", sent).Info("broadcast sent")
	return sent, nil
}

// NotifyTrialExpired tells a user their trial lapsed. Satisfies the trial
// sweeper's notifier hook.
func (s *Service) NotifyTrialExpired(ctx context.Context, userID string) error {
	_, err := s.Send(ctx, userID, "Your trial has ended", "Upgrade to keep tracking your habits, tasks and goals.")
	return err
}
