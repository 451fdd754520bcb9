// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"errors"

	"attendance_bot/internal/model"
)

// ErrNotFound is returned when no subscriber exists for a chat.
var ErrNotFound = errors.New("subscriber not found")

// Storage is the interface for all persistence operations. Subscriber
// records are read and written whole; the last writer wins.
type Storage interface {
	GetSubscriber(ctx context.Context, chatID int64) (*model.Subscriber, error)
	ListSubscribers(ctx context.Context) ([]model.Subscriber, error)
	UpsertSubscriber(ctx context.Context, sub *model.Subscriber) error
	DeleteSubscriber(ctx context.Context, chatID int64) error

	Close() error
}
