package iorderrepo

import (
	"context"
	"time"

	"github.com/campuseats/canteen/internal/service/models/order"
)

// IOrderRepository is an interface for the order postgres repository.
type IOrderRepository interface {
	Insert(ctx context.Context, o order.Order) (order.Order, error)
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)

	// GetForUpdate loads one order and locks its row for the duration of
	// the surrounding transaction.
	GetForUpdate(ctx context.Context, id int64) (order.Order, error)

	UpdateStatus(ctx context.Context, id int64, status order.Status) error

	// DailySummary aggregates one shop's orders with order_time in
	// [from, to).
	DailySummary(ctx context.Context, shopOwnerID int64, from, to time.Time) (order.DailySummary, error)
}
