package uow

import (
	"context"

	"github.com/campuseats/canteen/internal/dal/interfaces/icustomerrepo"
	"github.com/campuseats/canteen/internal/dal/interfaces/ifoodrepo"
	"github.com/campuseats/canteen/internal/dal/interfaces/iorderitemrepo"
	"github.com/campuseats/canteen/internal/dal/interfaces/iorderrepo"
	"github.com/campuseats/canteen/internal/dal/interfaces/ioutboxrepo"
	"github.com/campuseats/canteen/internal/dal/interfaces/ishopownerrepo"
	"github.com/campuseats/canteen/internal/dal/postgres"
	customerrepo "github.com/campuseats/canteen/internal/dal/repositories/customer/postgres"
	foodrepo "github.com/campuseats/canteen/internal/dal/repositories/food/postgres"
	orderrepo "github.com/campuseats/canteen/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/campuseats/canteen/internal/dal/repositories/orderitem/postgres"
	outboxrepo "github.com/campuseats/canteen/internal/dal/repositories/outbox/postgres"
	shopownerrepo "github.com/campuseats/canteen/internal/dal/repositories/shopowner/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// unitOfWork scopes repository access to a single transaction. Before Begin
// the repositories run against the pool directly, which is how read-only
// callers use it.
type unitOfWork struct {
	pool          *pgxpool.Pool
	tx            pgx.Tx
	foodRepo      ifoodrepo.IFoodRepository
	orderRepo     iorderrepo.IOrderRepository
	orderItemRepo iorderitemrepo.IOrderItemRepository
	outboxRepo    ioutboxrepo.IOutboxRepository
	customerRepo  icustomerrepo.ICustomerRepository
	shopOwnerRepo ishopownerrepo.IShopOwnerRepository
}

func NewUnitOfWork(client *postgres.Client) *unitOfWork {
	pool := client.Pool()

	return &unitOfWork{
		pool:          pool,
		foodRepo:      foodrepo.NewPostgresFoodRepository(pool),
		orderRepo:     orderrepo.NewPostgresOrderRepository(pool),
		orderItemRepo: orderitemrepo.NewPostgresOrderItemRepository(pool),
		outboxRepo:    outboxrepo.NewPostgresOutboxRepository(pool),
		customerRepo:  customerrepo.NewPostgresCustomerRepository(pool),
		shopOwnerRepo: shopownerrepo.NewPostgresShopOwnerRepository(pool),
	}
}

func (u *unitOfWork) FoodRepository() ifoodrepo.IFoodRepository {
	return u.foodRepo
}

func (u *unitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *unitOfWork) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return u.orderItemRepo
}

func (u *unitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

func (u *unitOfWork) CustomerRepository() icustomerrepo.ICustomerRepository {
	return u.customerRepo
}

func (u *unitOfWork) ShopOwnerRepository() ishopownerrepo.IShopOwnerRepository {
	return u.shopOwnerRepo
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.foodRepo = foodrepo.NewPostgresFoodRepository(tx)
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(tx)
	u.outboxRepo = outboxrepo.NewPostgresOutboxRepository(tx)
	u.customerRepo = customerrepo.NewPostgresCustomerRepository(tx)
	u.shopOwnerRepo = shopownerrepo.NewPostgresShopOwnerRepository(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Rollback(ctx)
}
