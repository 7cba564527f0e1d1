package notification

import (
	"context"
	"errors"
)

// ErrDuplicate is returned when a notification for the same event already exists.
var ErrDuplicate = errors.New("notification already recorded")

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByMember(ctx context.Context, memberID string, limit int) ([]Notification, error)
}
