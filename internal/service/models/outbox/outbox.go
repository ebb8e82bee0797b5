package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/campuseats/canteen/internal/service/models/order"
)

const (
	RoutingKeyOrderPlaced        = "orders.placed"
	RoutingKeyOrderStatusChanged = "orders.status_changed"
)

// Message represents an order event awaiting publication to RabbitMQ.
type Message struct {
	ID           int64
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}

type orderEvent struct {
	OrderID     int64  `json:"orderId"`
	CustomerID  int64  `json:"customerId"`
	ShopOwnerID int64  `json:"shopOwnerId"`
	Status      string `json:"status"`
	TotalCents  int64  `json:"totalCents"`
	OccurredAt  string `json:"occurredAt"`
}

// NewOrderEventMessage builds an outbox row for a placed order or a status
// change, ready for the worker to publish.
func NewOrderEventMessage(exchange, routingKey string, o order.Order, maxRetries int) (Message, error) {
	now := time.Now()
	payload, err := json.Marshal(orderEvent{
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		ShopOwnerID: o.ShopOwnerID,
		Status:      o.Status.String(),
		TotalCents:  o.TotalCents,
		OccurredAt:  now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal order event: %w", err)
	}

	return Message{
		ExchangeName: exchange,
		RoutingKey:   routingKey,
		Payload:      payload,
		ContentType:  "application/json",
		MaxRetries:   maxRetries,
		CreatedAt:    now,
		UpdatedAt:    now,
		NextRetryAt:  now,
	}, nil
}
