package cart

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/campuseats/canteen/internal/service/models/food"
)

// Item is a raw cart entry as submitted by the customer.
type Item struct {
	FoodID   int64 `json:"foodId"`
	Quantity int   `json:"quantity"`
}

// Line is a cart entry with its food resolved.
type Line struct {
	Food     food.Food
	Quantity int
}

// Group is the subset of a cart belonging to one shop. It is the unit of
// atomic order creation: either the whole group becomes an order or none
// of it does.
type Group struct {
	ShopOwnerID int64
	Lines       []Line
	TotalCents  int64
}

var ErrEmptyCart = errors.New("cart is empty")

// InvalidScheduleError is returned when the scheduled time does not parse
// as a valid instant.
type InvalidScheduleError struct {
	Value string
}

func (e *InvalidScheduleError) Error() string {
	return fmt.Sprintf("invalid scheduled time %q", e.Value)
}

// InvalidQuantityError is returned for a non-positive line quantity.
type InvalidQuantityError struct {
	FoodID   int64
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d for food %d", e.Quantity, e.FoodID)
}

// ParseScheduledTime validates the customer-supplied schedule. Only the
// format is checked; whether the instant lies in the future is left to the
// presentation layer.
func ParseScheduledTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, &InvalidScheduleError{Value: s}
	}

	return t, nil
}

// Partition splits resolved cart lines into per-shop groups and computes
// each group's total in cents. Groups are ordered by shop owner id so the
// result is deterministic.
func Partition(lines []Line) ([]Group, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	byShop := make(map[int64]*Group)
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, &InvalidQuantityError{FoodID: line.Food.ID, Quantity: line.Quantity}
		}

		group, ok := byShop[line.Food.ShopOwnerID]
		if !ok {
			group = &Group{ShopOwnerID: line.Food.ShopOwnerID}
			byShop[line.Food.ShopOwnerID] = group
		}
		group.Lines = append(group.Lines, line)
		group.TotalCents += int64(line.Quantity) * line.Food.PriceCents
	}

	groups := make([]Group, 0, len(byShop))
	for _, group := range byShop {
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].ShopOwnerID < groups[j].ShopOwnerID
	})

	return groups, nil
}
