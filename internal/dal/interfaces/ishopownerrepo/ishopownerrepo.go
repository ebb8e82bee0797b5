package ishopownerrepo

import (
	"context"

	"github.com/campuseats/canteen/internal/service/models/shopowner"
)

// IShopOwnerRepository is an interface for the shop owner profile postgres repository.
type IShopOwnerRepository interface {
	Insert(ctx context.Context, s shopowner.ShopOwner) (shopowner.ShopOwner, error)
	GetByID(ctx context.Context, id int64) (shopowner.ShopOwner, error)
	GetByAccountID(ctx context.Context, accountID string) (shopowner.ShopOwner, error)
}
