// Package notification defines per-user notifications delivered in-app.
package notification

import "time"

// Notification is a message shown to a user. A zero ReadAt means unread.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	ReadAt    time.Time `json:"read_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Read reports whether the notification has been read.
func (n Notification) Read() bool { return !n.ReadAt.IsZero() }
