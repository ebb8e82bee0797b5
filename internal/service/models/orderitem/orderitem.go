package orderitem

import (
	"time"

	"github.com/campuseats/canteen/internal/service/models/currency"
)

// ItemStatusPending is the default item annotation. Item status is a
// free-form note decoupled from the order-level state machine.
const ItemStatusPending = "pending"

// OrderItem represents one food line within an order.
type OrderItem struct {
	ID            int64             `json:"id"`
	OrderID       int64             `json:"orderId"`
	FoodID        int64             `json:"foodId"`
	FoodName      string            `json:"foodName"`
	Quantity      int               `json:"quantity"`
	PriceCents    int64             `json:"priceCents"`
	PriceCurrency currency.Currency `json:"priceCurrency"`
	ItemStatus    string            `json:"itemStatus"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// LineTotalCents is the item's contribution to the order total.
func (oi *OrderItem) LineTotalCents() int64 {
	return int64(oi.Quantity) * oi.PriceCents
}
