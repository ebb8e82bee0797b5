package ifoodrepo

import (
	"context"

	"github.com/campuseats/canteen/internal/service/models/food"
)

// IFoodRepository is an interface for the food postgres repository. Reserve
// and Restock are the inventory ledger operations; both are single-statement
// and rely on the store's row-level serialization.
type IFoodRepository interface {
	Insert(ctx context.Context, f food.Food) (food.Food, error)
	Update(ctx context.Context, f food.Food) (food.Food, error)
	Query(ctx context.Context, filter *food.QueryFoodsModel) ([]food.Food, error)

	// Reserve atomically decrements stock by quantity and re-derives
	// availability. It fails with food.InsufficientStockError and performs
	// no mutation when stock < quantity.
	Reserve(ctx context.Context, foodID int64, quantity int) error

	// Restock atomically returns quantity units to stock.
	Restock(ctx context.Context, foodID int64, quantity int) error
}
