package store

import (
	"context"

	"pricealerts/internal/alert"
)

// DefaultListLimit applies when a caller passes a non-positive limit.
const DefaultListLimit = 20

// NotificationReader serves a user's notification inbox.
type NotificationReader interface {
	// ListNotifications returns the newest notifications of userID first.
	ListNotifications(ctx context.Context, userID string, limit int) ([]alert.Notification, error)
	// MarkNotificationsRead flags every unread notification of userID as
	// read and returns how many changed.
	MarkNotificationsRead(ctx context.Context, userID string) (int64, error)
}

// Limit clamps n to (0, max]; non-positive n falls back to DefaultListLimit.
func Limit(n, max int) int {
	if n <= 0 {
		n = DefaultListLimit
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}
