// Package store defines the persistence contracts of the sweep engine.
package store

import (
	"context"
	"errors"

	"pricealerts/internal/alert"
)

var (
	// ErrNotFound is returned when the alert does not exist.
	ErrNotFound = errors.New("alert not found")
	// ErrConflict is returned when the alert changed since it was loaded:
	// it was deactivated or another sweep already recorded a notification.
	ErrConflict = errors.New("alert state changed concurrently")
)

// Store is what a sweep needs from persistence.
//
//go:generate mockgen -package=storemock -destination=storemock/mock_store.go -source=store.go Store
type Store interface {
	// LoadActiveAlerts returns every alert with Active set.
	LoadActiveAlerts(ctx context.Context) ([]alert.Alert, error)
	// UpdateAlert applies u only while the alert is still active and its
	// last notification time equals u.ExpectedLastNotifiedAt.
	UpdateAlert(ctx context.Context, id string, u alert.StateUpdate) error
	// InsertNotification persists d as an unread notification.
	InsertNotification(ctx context.Context, d alert.Draft) (alert.Notification, error)
}
