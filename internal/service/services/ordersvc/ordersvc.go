package ordersvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/campuseats/canteen/internal/dal/interfaces/ifoodrepo"
	"github.com/campuseats/canteen/internal/dal/interfaces/iorderitemrepo"
	"github.com/campuseats/canteen/internal/dal/interfaces/iorderrepo"
	"github.com/campuseats/canteen/internal/dal/interfaces/ioutboxrepo"
	"github.com/campuseats/canteen/internal/dal/postgres"
	"github.com/campuseats/canteen/internal/dal/uow"
	"github.com/campuseats/canteen/internal/service/models/cart"
	"github.com/campuseats/canteen/internal/service/models/currency"
	"github.com/campuseats/canteen/internal/service/models/food"
	"github.com/campuseats/canteen/internal/service/models/order"
	"github.com/campuseats/canteen/internal/service/models/orderitem"
	"github.com/campuseats/canteen/internal/service/models/outbox"
	"github.com/spf13/viper"
)

// ErrNotOrderOwner is returned when a shop owner tries to act on another
// shop's order.
var ErrNotOrderOwner = errors.New("order belongs to another shop")

// unitOfWork is the transactional scope the orchestrator works in. One
// instance covers exactly one shop group or one status transition.
type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	FoodRepository() ifoodrepo.IFoodRepository
	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

// Policy gates the two behaviors the fulfillment machine inherited loose
// semantics for. Defaults keep the strict adjacency graph and no stock
// compensation.
type Policy struct {
	// LooseTransitions accepts any recognized target from a non-terminal
	// state instead of enforcing the adjacency graph.
	LooseTransitions bool
	// RestockOnCancel returns reserved stock when an order is rejected or
	// cancelled.
	RestockOnCancel bool
}

// EventConfig locates the exchange order events are published to.
type EventConfig struct {
	Exchange   string
	MaxRetries int
}

// OrderService orchestrates order placement and fulfillment transitions.
type OrderService struct {
	pgClient   *postgres.Client
	uowFactory func() unitOfWork
	policy     Policy
	events     EventConfig
}

func (s *OrderService) newUOW() unitOfWork {
	if s.uowFactory != nil {
		return s.uowFactory()
	}

	return uow.NewUnitOfWork(s.pgClient)
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		policy: Policy{
			LooseTransitions: viper.GetBool("orders.loose_transitions"),
			RestockOnCancel:  viper.GetBool("orders.restock_on_cancel"),
		},
		events: EventConfig{
			Exchange:   viper.GetString("rabbitmq.events.exchange"),
			MaxRetries: viper.GetInt("rabbitmq.events.max_retries"),
		},
	}
	if s.events.MaxRetries == 0 {
		s.events.MaxRetries = 5
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.pgClient == nil && s.uowFactory == nil {
		panic("order service requires a postgres client or a unit of work factory")
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
	}
}

// WithUnitOfWorkFactory overrides the transactional store, used to run the
// service against an in-memory fake.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *OrderService) {
		s.uowFactory = factory
	}
}

// WithPolicy overrides the transition and restock policy.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPolicy(p Policy) option {
	return func(s *OrderService) {
		s.policy = p
	}
}

// GroupFailure reports one shop group whose unit of work was rolled back.
type GroupFailure struct {
	ShopOwnerID int64
	Err         error
}

// PlacementResult is the outcome of one PlaceOrder call. Placement is
// per-shop atomic, not globally atomic: some groups may commit while others
// fail.
type PlacementResult struct {
	Placed []order.Order
	Failed []GroupFailure
}

// OrderIDs lists the identifiers of the created orders.
func (r *PlacementResult) OrderIDs() []int64 {
	ids := make([]int64, len(r.Placed))
	for i, o := range r.Placed {
		ids[i] = o.ID
	}

	return ids
}

// PlaceOrder partitions the cart into per-shop groups and creates one order
// per group, reserving stock for every line inside the group's transaction.
// A failed reservation rolls back only its own group; the returned error
// joins the per-group failures and is nil when every group committed.
func (s *OrderService) PlaceOrder(
	ctx context.Context,
	customerID int64,
	items []cart.Item,
	scheduledTime string,
) (*PlacementResult, error) {
	if len(items) == 0 {
		return nil, cart.ErrEmptyCart
	}

	scheduledAt, err := cart.ParseScheduledTime(scheduledTime)
	if err != nil {
		return nil, err
	}

	lines, err := s.resolveCart(ctx, items)
	if err != nil {
		return nil, err
	}

	groups, err := cart.Partition(lines)
	if err != nil {
		return nil, err
	}

	result := &PlacementResult{}
	var groupErrs []error
	for _, group := range groups {
		placed, err := s.placeGroup(ctx, customerID, group, scheduledAt)
		if err != nil {
			slog.Error("Shop group rolled back during order placement",
				"customer_id", customerID,
				"shop_owner_id", group.ShopOwnerID,
				"error", err,
			)
			result.Failed = append(result.Failed, GroupFailure{ShopOwnerID: group.ShopOwnerID, Err: err})
			groupErrs = append(groupErrs, err)

			continue
		}
		result.Placed = append(result.Placed, *placed)
	}

	return result, errors.Join(groupErrs...)
}

// resolveCart loads every referenced food and attaches it to its line.
func (s *OrderService) resolveCart(ctx context.Context, items []cart.Item) ([]cart.Line, error) {
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.FoodID
	}

	foods, err := s.newUOW().FoodRepository().Query(ctx, &food.QueryFoodsModel{Ids: ids})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cart foods: %w", err)
	}

	byID := make(map[int64]food.Food, len(foods))
	for _, f := range foods {
		byID[f.ID] = f
	}

	lines := make([]cart.Line, len(items))
	for i, item := range items {
		f, ok := byID[item.FoodID]
		if !ok {
			return nil, &food.NotFoundError{FoodID: item.FoodID}
		}
		lines[i] = cart.Line{Food: f, Quantity: item.Quantity}
	}

	return lines, nil
}

// placeGroup runs one shop group's unit of work: reserve every line, then
// create the order row and its items. The order is never visible unless all
// reservations succeeded.
func (s *OrderService) placeGroup(
	ctx context.Context,
	customerID int64,
	group cart.Group,
	scheduledAt time.Time,
) (*order.Order, error) {
	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin unit of work: %w", err)
	}

	placed, err := s.placeGroupInWork(ctx, work, customerID, group, scheduledAt)
	if err != nil {
		if rbErr := work.Rollback(ctx); rbErr != nil {
			slog.Error("Rollback failed", "shop_owner_id", group.ShopOwnerID, "error", rbErr)
		}

		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit unit of work: %w", err)
	}

	return placed, nil
}

func (s *OrderService) placeGroupInWork(
	ctx context.Context,
	work unitOfWork,
	customerID int64,
	group cart.Group,
	scheduledAt time.Time,
) (*order.Order, error) {
	for _, line := range group.Lines {
		if err := work.FoodRepository().Reserve(ctx, line.Food.ID, line.Quantity); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	placed, err := work.OrderRepository().Insert(ctx, order.Order{
		CustomerID:    customerID,
		ShopOwnerID:   group.ShopOwnerID,
		OrderTime:     now,
		ScheduledTime: scheduledAt,
		TotalCents:    group.TotalCents,
		TotalCurrency: currency.CurrencyUSD,
		Status:        order.StatusPending,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, err
	}

	orderItems := make([]orderitem.OrderItem, len(group.Lines))
	for i, line := range group.Lines {
		orderItems[i] = orderitem.OrderItem{
			OrderID:       placed.ID,
			FoodID:        line.Food.ID,
			FoodName:      line.Food.Name,
			Quantity:      line.Quantity,
			PriceCents:    line.Food.PriceCents,
			PriceCurrency: line.Food.PriceCurrency,
			ItemStatus:    orderitem.ItemStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	}

	placed.OrderItems, err = work.OrderItemRepository().BulkInsert(ctx, orderItems)
	if err != nil {
		return nil, err
	}

	if err := s.enqueueEvent(ctx, work, outbox.RoutingKeyOrderPlaced, placed); err != nil {
		return nil, err
	}

	return &placed, nil
}

// UpdateOrderStatus drives one order through the fulfillment state machine.
// Only the owning shop may transition an order; collected and cancelled are
// immutable regardless of policy.
func (s *OrderService) UpdateOrderStatus(
	ctx context.Context,
	shopOwnerID int64,
	orderID int64,
	requestedStatus string,
) (order.Order, error) {
	target, err := order.ParseStatus(requestedStatus)
	if err != nil {
		return order.Order{}, err
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, fmt.Errorf("failed to begin unit of work: %w", err)
	}

	updated, err := s.transitionInWork(ctx, work, shopOwnerID, orderID, target)
	if err != nil {
		if rbErr := work.Rollback(ctx); rbErr != nil {
			slog.Error("Rollback failed", "order_id", orderID, "error", rbErr)
		}

		return order.Order{}, err
	}

	if err := work.Commit(ctx); err != nil {
		return order.Order{}, fmt.Errorf("failed to commit unit of work: %w", err)
	}

	return updated, nil
}

func (s *OrderService) transitionInWork(
	ctx context.Context,
	work unitOfWork,
	shopOwnerID int64,
	orderID int64,
	target order.Status,
) (order.Order, error) {
	o, err := work.OrderRepository().GetForUpdate(ctx, orderID)
	if err != nil {
		return order.Order{}, err
	}

	if o.ShopOwnerID != shopOwnerID {
		return order.Order{}, ErrNotOrderOwner
	}

	if o.Status.IsTerminal() {
		return order.Order{}, &order.TerminalStateError{OrderID: o.ID, Status: o.Status}
	}

	if !s.policy.LooseTransitions && !o.Status.CanTransitionTo(target) {
		return order.Order{}, &order.InvalidTransitionError{OrderID: o.ID, From: o.Status, To: target}
	}

	if err := work.OrderRepository().UpdateStatus(ctx, o.ID, target); err != nil {
		return order.Order{}, err
	}
	o.Status = target

	if s.policy.RestockOnCancel && (target == order.StatusRejected || target == order.StatusCancelled) {
		if err := s.restockItems(ctx, work, o.ID); err != nil {
			return order.Order{}, err
		}
	}

	if err := s.enqueueEvent(ctx, work, outbox.RoutingKeyOrderStatusChanged, o); err != nil {
		return order.Order{}, err
	}

	return o, nil
}

func (s *OrderService) restockItems(ctx context.Context, work unitOfWork, orderID int64) error {
	items, err := work.OrderItemRepository().Query(ctx, &orderitem.QueryOrderItemsModel{
		OrderIds: []int64{orderID},
	})
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := work.FoodRepository().Restock(ctx, item.FoodID, item.Quantity); err != nil {
			return err
		}
	}

	return nil
}

func (s *OrderService) enqueueEvent(
	ctx context.Context,
	work unitOfWork,
	routingKey string,
	o order.Order,
) error {
	msg, err := outbox.NewOrderEventMessage(s.events.Exchange, routingKey, o, s.events.MaxRetries)
	if err != nil {
		return err
	}

	return work.OutboxRepository().Insert(ctx, msg)
}

// GetOrders retrieves orders with their items based on filter.
func (s *OrderService) GetOrders(
	ctx context.Context,
	filter order.QueryOrdersModel,
) ([]order.Order, error) {
	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, &filter)
	if err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	itemFilter := &orderitem.QueryOrderItemsModel{}
	for _, o := range orders {
		itemFilter.OrderIds = append(itemFilter.OrderIds, o.ID)
	}
	items, err := work.OrderItemRepository().Query(ctx, itemFilter)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		for _, item := range items {
			if item.OrderID == orders[i].ID {
				orders[i].OrderItems = append(orders[i].OrderItems, item)
			}
		}
	}

	return orders, nil
}
