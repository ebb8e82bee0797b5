package order

import (
	"time"

	"github.com/campuseats/canteen/internal/service/models/currency"
	"github.com/campuseats/canteen/internal/service/models/orderitem"
)

// Order represents a single-shop order. A cart spanning several shops is
// partitioned into one order per shop before anything is persisted.
type Order struct {
	ID            int64                 `json:"id"`
	CustomerID    int64                 `json:"customerId"`
	ShopOwnerID   int64                 `json:"shopOwnerId"`
	OrderTime     time.Time             `json:"orderTime"`
	ScheduledTime time.Time             `json:"scheduledTime"`
	TotalCents    int64                 `json:"totalCents"`
	TotalCurrency currency.Currency     `json:"totalCurrency"`
	Status        Status                `json:"status"`
	UpdatedAt     time.Time             `json:"updatedAt"`
	OrderItems    []orderitem.OrderItem `json:"orderItems"`
}

// DailySummary aggregates one shop's orders over a 24-hour window.
type DailySummary struct {
	ShopOwnerID          int64     `json:"shopOwnerId"`
	Date                 time.Time `json:"date"`
	OrderCount           int       `json:"orderCount"`
	AcceptedRevenueCents int64     `json:"acceptedRevenueCents"`
	PendingCount         int       `json:"pendingCount"`
}
