package ioutboxrepo

import (
	"context"
	"time"

	"github.com/campuseats/canteen/internal/service/models/outbox"
)

// IOutboxRepository defines the interface for outbox operations.
type IOutboxRepository interface {
	// Insert adds a new event to the outbox, inside the caller's transaction.
	Insert(ctx context.Context, msg outbox.Message) error

	// GetPendingMessages retrieves events that are ready for publication.
	GetPendingMessages(ctx context.Context, limit int) ([]outbox.Message, error)

	// Delete removes an event after successful delivery.
	Delete(ctx context.Context, id int64) error

	// UpdateRetry updates retry count and error information.
	UpdateRetry(
		ctx context.Context,
		id int64,
		retryCount int,
		lastError string,
		nextRetryAt time.Time,
	) error
}
