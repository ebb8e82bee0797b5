package food

import (
	"fmt"
	"time"

	"github.com/campuseats/canteen/internal/service/models/currency"
)

// Food represents a catalog item owned by exactly one shop.
type Food struct {
	ID            int64             `json:"id"`
	ShopOwnerID   int64             `json:"shopOwnerId"`
	Name          string            `json:"name"`
	PriceCents    int64             `json:"priceCents"`
	PriceCurrency currency.Currency `json:"priceCurrency"`
	Stock         int               `json:"stock"`
	IsAvailable   bool              `json:"isAvailable"`
	ImageURL      string            `json:"imageUrl,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// Normalize re-derives the availability flag from stock. A food with zero
// stock is never available; an owner may still hide an in-stock food.
func (f *Food) Normalize() {
	if f.Stock <= 0 {
		f.Stock = 0
		f.IsAvailable = false
	}
}

// NotFoundError is returned when a referenced food id does not resolve.
type NotFoundError struct {
	FoodID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("food %d not found", e.FoodID)
}

// InsufficientStockError is returned by a reservation that would drive
// stock negative. The reservation performs no mutation in that case.
type InsufficientStockError struct {
	FoodID    int64
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for food %d: requested %d", e.FoodID, e.Requested)
}
