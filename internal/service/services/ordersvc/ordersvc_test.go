package ordersvc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	orderrepo "github.com/campuseats/canteen/internal/dal/repositories/order/postgres"
	"github.com/campuseats/canteen/internal/service/models/cart"
	"github.com/campuseats/canteen/internal/service/models/currency"
	"github.com/campuseats/canteen/internal/service/models/food"
	"github.com/campuseats/canteen/internal/service/models/order"
	"github.com/campuseats/canteen/internal/service/models/orderitem"
	"github.com/campuseats/canteen/internal/service/models/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(store *fakeStore, opts ...option) *OrderService {
	opts = append([]option{WithUnitOfWorkFactory(store.newUOW)}, opts...)

	return MustNewOrderService(opts...)
}

func seedFood(store *fakeStore, id, shopOwnerID, priceCents int64, stock int) {
	store.addFood(food.Food{
		ID:            id,
		ShopOwnerID:   shopOwnerID,
		Name:          fmt.Sprintf("food-%d", id),
		PriceCents:    priceCents,
		PriceCurrency: currency.CurrencyUSD,
		Stock:         stock,
		IsAvailable:   stock > 0,
	})
}

func futureSchedule() string {
	return time.Now().Add(2 * time.Hour).UTC().Format(time.RFC3339)
}

func TestPlaceOrder_SplitsCartAcrossShops(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedFood(store, 1, 10, 500, 3)
	seedFood(store, 2, 10, 1000, 7)
	seedFood(store, 3, 20, 750, 5)
	svc := newTestService(store)

	result, err := svc.PlaceOrder(context.Background(), 42, []cart.Item{
		{FoodID: 1, Quantity: 2},
		{FoodID: 2, Quantity: 1},
		{FoodID: 3, Quantity: 1},
	}, futureSchedule())

	require.NoError(t, err)
	require.Len(t, result.Placed, 2)
	assert.Empty(t, result.Failed)

	byShop := make(map[int64]order.Order)
	for _, o := range result.Placed {
		byShop[o.ShopOwnerID] = o
	}

	first, ok := byShop[10]
	require.True(t, ok)
	assert.Equal(t, int64(2000), first.TotalCents)
	assert.Equal(t, order.StatusPending, first.Status)
	assert.Equal(t, int64(42), first.CustomerID)
	assert.Len(t, first.OrderItems, 2)

	second, ok := byShop[20]
	require.True(t, ok)
	assert.Equal(t, int64(750), second.TotalCents)
	assert.Len(t, second.OrderItems, 1)

	assert.Equal(t, 1, store.foods[1].Stock)
	assert.Equal(t, 6, store.foods[2].Stock)
	assert.Equal(t, 4, store.foods[3].Stock)
	assert.Len(t, store.outbox, 2)
	for _, msg := range store.outbox {
		assert.Equal(t, outbox.RoutingKeyOrderPlaced, msg.RoutingKey)
	}
}

func TestPlaceOrder_InsufficientStockRollsBackGroup(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedFood(store, 1, 10, 500, 3)
	seedFood(store, 2, 10, 1000, 7)
	svc := newTestService(store)

	result, err := svc.PlaceOrder(context.Background(), 42, []cart.Item{
		{FoodID: 1, Quantity: 5},
		{FoodID: 2, Quantity: 1},
	}, futureSchedule())

	require.Error(t, err)
	var stockErr *food.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(1), stockErr.FoodID)

	require.NotNil(t, result)
	assert.Empty(t, result.Placed)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, int64(10), result.Failed[0].ShopOwnerID)

	// the whole shop group rolled back, including the line that had stock
	assert.Equal(t, 3, store.foods[1].Stock)
	assert.Equal(t, 7, store.foods[2].Stock)
	assert.Empty(t, store.orders)
	assert.Empty(t, store.outbox)
}

func TestPlaceOrder_PartialFailureKeepsIndependentGroups(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedFood(store, 1, 10, 500, 0)
	seedFood(store, 2, 20, 750, 5)
	svc := newTestService(store)

	result, err := svc.PlaceOrder(context.Background(), 42, []cart.Item{
		{FoodID: 1, Quantity: 1},
		{FoodID: 2, Quantity: 2},
	}, futureSchedule())

	require.Error(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Placed, 1)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, int64(20), result.Placed[0].ShopOwnerID)
	assert.Equal(t, int64(1500), result.Placed[0].TotalCents)
	assert.Equal(t, int64(10), result.Failed[0].ShopOwnerID)

	assert.Len(t, store.orders, 1)
	assert.Equal(t, 3, store.foods[2].Stock)
	assert.Equal(t, 0, store.foods[1].Stock)
}

func TestPlaceOrder_ReservationDrainsAvailability(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedFood(store, 1, 10, 500, 2)
	svc := newTestService(store)

	_, err := svc.PlaceOrder(context.Background(), 42, []cart.Item{
		{FoodID: 1, Quantity: 2},
	}, futureSchedule())

	require.NoError(t, err)
	assert.Equal(t, 0, store.foods[1].Stock)
	assert.False(t, store.foods[1].IsAvailable)
}

func TestPlaceOrder_InputValidation(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedFood(store, 1, 10, 500, 3)
	svc := newTestService(store)

	tests := []struct {
		name      string
		items     []cart.Item
		schedule  string
		wantErrAs any
		wantErrIs error
	}{
		{
			name:      "empty cart",
			items:     nil,
			schedule:  futureSchedule(),
			wantErrIs: cart.ErrEmptyCart,
		},
		{
			name:      "invalid schedule",
			items:     []cart.Item{{FoodID: 1, Quantity: 1}},
			schedule:  "tomorrow at noon",
			wantErrAs: new(*cart.InvalidScheduleError),
		},
		{
			name:      "unknown food",
			items:     []cart.Item{{FoodID: 999, Quantity: 1}},
			schedule:  futureSchedule(),
			wantErrAs: new(*food.NotFoundError),
		},
		{
			name:      "zero quantity",
			items:     []cart.Item{{FoodID: 1, Quantity: 0}},
			schedule:  futureSchedule(),
			wantErrAs: new(*cart.InvalidQuantityError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.PlaceOrder(context.Background(), 42, tt.items, tt.schedule)
			require.Error(t, err)
			assert.Nil(t, result)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
			}
			if tt.wantErrAs != nil {
				assert.ErrorAs(t, err, tt.wantErrAs)
			}
			assert.Empty(t, store.orders)
			assert.Equal(t, 3, store.foods[1].Stock)
		})
	}
}

func seedOrder(store *fakeStore, id, shopOwnerID int64, status order.Status, items ...orderitem.OrderItem) {
	store.addOrder(order.Order{
		ID:            id,
		CustomerID:    42,
		ShopOwnerID:   shopOwnerID,
		OrderTime:     time.Now(),
		ScheduledTime: time.Now().Add(time.Hour),
		TotalCents:    1000,
		TotalCurrency: currency.CurrencyUSD,
		Status:        status,
	}, items...)
}

func TestUpdateOrderStatus_Transitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		from      order.Status
		target    string
		policy    Policy
		owner     int64
		wantErrAs any
		wantErrIs error
		want      order.Status
	}{
		{
			name:   "pending to accepted",
			from:   order.StatusPending,
			target: "accepted",
			owner:  10,
			want:   order.StatusAccepted,
		},
		{
			name:   "accepted to ready",
			from:   order.StatusAccepted,
			target: "ready",
			owner:  10,
			want:   order.StatusReady,
		},
		{
			name:   "ready to collected",
			from:   order.StatusReady,
			target: "collected",
			owner:  10,
			want:   order.StatusCollected,
		},
		{
			name:      "pending to collected skips the graph",
			from:      order.StatusPending,
			target:    "collected",
			owner:     10,
			wantErrAs: new(*order.InvalidTransitionError),
		},
		{
			name:   "loose policy allows skipping",
			from:   order.StatusPending,
			target: "collected",
			owner:  10,
			policy: Policy{LooseTransitions: true},
			want:   order.StatusCollected,
		},
		{
			name:      "collected is immutable",
			from:      order.StatusCollected,
			target:    "pending",
			owner:     10,
			wantErrAs: new(*order.TerminalStateError),
		},
		{
			name:      "cancelled is immutable even under loose policy",
			from:      order.StatusCancelled,
			target:    "pending",
			owner:     10,
			policy:    Policy{LooseTransitions: true},
			wantErrAs: new(*order.TerminalStateError),
		},
		{
			name:      "unknown status",
			from:      order.StatusPending,
			target:    "shipped",
			owner:     10,
			wantErrAs: new(*order.UnknownStatusError),
		},
		{
			name:      "foreign shop owner",
			from:      order.StatusPending,
			target:    "accepted",
			owner:     99,
			wantErrIs: ErrNotOrderOwner,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			seedOrder(store, 1, 10, tt.from)
			svc := newTestService(store, WithPolicy(tt.policy))

			updated, err := svc.UpdateOrderStatus(context.Background(), tt.owner, 1, tt.target)

			if tt.wantErrIs == nil && tt.wantErrAs == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.want, updated.Status)
				assert.Equal(t, tt.want, store.orders[1].Status)
				require.Len(t, store.outbox, 1)
				assert.Equal(t, outbox.RoutingKeyOrderStatusChanged, store.outbox[0].RoutingKey)

				return
			}

			require.Error(t, err)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
			}
			if tt.wantErrAs != nil {
				assert.ErrorAs(t, err, tt.wantErrAs)
			}
			assert.Equal(t, tt.from, store.orders[1].Status)
			assert.Empty(t, store.outbox)
		})
	}
}

func TestUpdateOrderStatus_OrderNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeStore())

	_, err := svc.UpdateOrderStatus(context.Background(), 10, 404, "accepted")
	assert.ErrorIs(t, err, orderrepo.ErrOrderNotFound)
}

func TestUpdateOrderStatus_RestockOnCancel(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedFood(store, 1, 10, 500, 0)
	seedOrder(store, 1, 10, order.StatusPending, orderitem.OrderItem{
		FoodID:        1,
		FoodName:      "food-1",
		Quantity:      2,
		PriceCents:    500,
		PriceCurrency: currency.CurrencyUSD,
		ItemStatus:    orderitem.ItemStatusPending,
	})

	t.Run("disabled by default", func(t *testing.T) {
		svc := newTestService(store)
		_, err := svc.UpdateOrderStatus(context.Background(), 10, 1, "rejected")
		require.NoError(t, err)
		assert.Equal(t, 0, store.foods[1].Stock)
	})

	t.Run("returns stock when enabled", func(t *testing.T) {
		store := newFakeStore()
		store.addFood(food.Food{
			ID: 1, ShopOwnerID: 10, Name: "food-1",
			PriceCents: 500, PriceCurrency: currency.CurrencyUSD,
			Stock: 0, IsAvailable: false,
		})
		seedOrder(store, 1, 10, order.StatusPending, orderitem.OrderItem{
			FoodID:     1,
			Quantity:   2,
			PriceCents: 500,
			ItemStatus: orderitem.ItemStatusPending,
		})
		svc := newTestService(store, WithPolicy(Policy{RestockOnCancel: true}))

		_, err := svc.UpdateOrderStatus(context.Background(), 10, 1, "rejected")
		require.NoError(t, err)
		assert.Equal(t, 2, store.foods[1].Stock)
		assert.True(t, store.foods[1].IsAvailable)
	})
}

func TestGetOrders_JoinsItems(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seedOrder(store, 1, 10, order.StatusPending, orderitem.OrderItem{
		FoodID: 1, FoodName: "food-1", Quantity: 2, PriceCents: 500,
	})
	seedOrder(store, 2, 20, order.StatusAccepted, orderitem.OrderItem{
		FoodID: 2, FoodName: "food-2", Quantity: 1, PriceCents: 750,
	})
	svc := newTestService(store)

	orders, err := svc.GetOrders(context.Background(), order.QueryOrdersModel{
		CustomerIds: []int64{42},
	})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	for _, o := range orders {
		require.Len(t, o.OrderItems, 1)
		assert.Equal(t, o.ID, o.OrderItems[0].OrderID)
	}

	scoped, err := svc.GetOrders(context.Background(), order.QueryOrdersModel{
		ShopOwnerIds: []int64{20},
	})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "food-2", scoped[0].OrderItems[0].FoodName)
}

func TestPlaceOrder_ConcurrentReservationsNeverOversell(t *testing.T) {
	t.Parallel()

	const (
		stock   = 10
		callers = 25
	)

	store := newFakeStore()
	seedFood(store, 1, 10, 500, stock)
	svc := newTestService(store)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(customerID int64) {
			defer wg.Done()
			_, err := svc.PlaceOrder(context.Background(), customerID, []cart.Item{
				{FoodID: 1, Quantity: 1},
			}, futureSchedule())
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()

				return
			}
			var stockErr *food.InsufficientStockError
			if !errors.As(err, &stockErr) {
				t.Errorf("unexpected placement error: %v", err)
			}
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, stock, succeeded)
	assert.Len(t, store.orders, stock)
	assert.Equal(t, 0, store.foods[1].Stock)
	assert.False(t, store.foods[1].IsAvailable)
}
