package ordersvc

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/campuseats/canteen/internal/dal/interfaces/ifoodrepo"
	"github.com/campuseats/canteen/internal/dal/interfaces/iorderitemrepo"
	"github.com/campuseats/canteen/internal/dal/interfaces/iorderrepo"
	"github.com/campuseats/canteen/internal/dal/interfaces/ioutboxrepo"
	orderrepo "github.com/campuseats/canteen/internal/dal/repositories/order/postgres"
	"github.com/campuseats/canteen/internal/service/models/food"
	"github.com/campuseats/canteen/internal/service/models/order"
	"github.com/campuseats/canteen/internal/service/models/orderitem"
	"github.com/campuseats/canteen/internal/service/models/outbox"
)

// fakeStore is an in-memory stand-in for the transactional store. A fake
// unit of work holds the store mutex from Begin to Commit/Rollback, which
// serializes transactions the way row locks do, and rolls back by restoring
// a snapshot taken at Begin.
type fakeStore struct {
	mu          sync.Mutex
	foods       map[int64]food.Food
	orders      map[int64]order.Order
	items       map[int64][]orderitem.OrderItem
	outbox      []outbox.Message
	nextOrderID int64
	nextItemID  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		foods:  make(map[int64]food.Food),
		orders: make(map[int64]order.Order),
		items:  make(map[int64][]orderitem.OrderItem),
	}
}

func (s *fakeStore) addFood(f food.Food) {
	s.foods[f.ID] = f
}

func (s *fakeStore) addOrder(o order.Order, items ...orderitem.OrderItem) {
	if o.ID == 0 {
		s.nextOrderID++
		o.ID = s.nextOrderID
	} else if o.ID > s.nextOrderID {
		s.nextOrderID = o.ID
	}
	s.orders[o.ID] = o
	for i := range items {
		s.nextItemID++
		items[i].ID = s.nextItemID
		items[i].OrderID = o.ID
	}
	s.items[o.ID] = items
}

type fakeSnapshot struct {
	foods       map[int64]food.Food
	orders      map[int64]order.Order
	items       map[int64][]orderitem.OrderItem
	outbox      []outbox.Message
	nextOrderID int64
	nextItemID  int64
}

func (s *fakeStore) snapshot() *fakeSnapshot {
	snap := &fakeSnapshot{
		foods:       make(map[int64]food.Food, len(s.foods)),
		orders:      make(map[int64]order.Order, len(s.orders)),
		items:       make(map[int64][]orderitem.OrderItem, len(s.items)),
		outbox:      append([]outbox.Message(nil), s.outbox...),
		nextOrderID: s.nextOrderID,
		nextItemID:  s.nextItemID,
	}
	for id, f := range s.foods {
		snap.foods[id] = f
	}
	for id, o := range s.orders {
		snap.orders[id] = o
	}
	for id, items := range s.items {
		snap.items[id] = append([]orderitem.OrderItem(nil), items...)
	}

	return snap
}

func (s *fakeStore) restore(snap *fakeSnapshot) {
	s.foods = snap.foods
	s.orders = snap.orders
	s.items = snap.items
	s.outbox = snap.outbox
	s.nextOrderID = snap.nextOrderID
	s.nextItemID = snap.nextItemID
}

type fakeUOW struct {
	store *fakeStore
	inTx  bool
	snap  *fakeSnapshot
}

func (s *fakeStore) newUOW() unitOfWork {
	return &fakeUOW{store: s}
}

func (u *fakeUOW) Begin(_ context.Context) error {
	u.store.mu.Lock()
	u.inTx = true
	u.snap = u.store.snapshot()

	return nil
}

func (u *fakeUOW) Commit(_ context.Context) error {
	if u.inTx {
		u.inTx = false
		u.snap = nil
		u.store.mu.Unlock()
	}

	return nil
}

func (u *fakeUOW) Rollback(_ context.Context) error {
	if u.inTx {
		u.store.restore(u.snap)
		u.inTx = false
		u.snap = nil
		u.store.mu.Unlock()
	}

	return nil
}

// run executes fn with the store locked, unless a transaction already
// holds the lock.
func (u *fakeUOW) run(fn func()) {
	if !u.inTx {
		u.store.mu.Lock()
		defer u.store.mu.Unlock()
	}
	fn()
}

func (u *fakeUOW) FoodRepository() ifoodrepo.IFoodRepository {
	return &fakeFoodRepo{u: u}
}

func (u *fakeUOW) OrderRepository() iorderrepo.IOrderRepository {
	return &fakeOrderRepo{u: u}
}

func (u *fakeUOW) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return &fakeOrderItemRepo{u: u}
}

func (u *fakeUOW) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return &fakeOutboxRepo{u: u}
}

type fakeFoodRepo struct {
	u *fakeUOW
}

func (r *fakeFoodRepo) Insert(_ context.Context, f food.Food) (food.Food, error) {
	r.u.run(func() {
		r.u.store.addFood(f)
	})

	return f, nil
}

func (r *fakeFoodRepo) Update(_ context.Context, f food.Food) (food.Food, error) {
	var err error
	r.u.run(func() {
		if _, ok := r.u.store.foods[f.ID]; !ok {
			err = &food.NotFoundError{FoodID: f.ID}

			return
		}
		r.u.store.foods[f.ID] = f
	})

	return f, err
}

func (r *fakeFoodRepo) Query(_ context.Context, filter *food.QueryFoodsModel) ([]food.Food, error) {
	var result []food.Food
	r.u.run(func() {
		for _, f := range r.u.store.foods {
			if len(filter.Ids) > 0 && !containsID(filter.Ids, f.ID) {
				continue
			}
			if len(filter.ShopOwnerIds) > 0 && !containsID(filter.ShopOwnerIds, f.ShopOwnerID) {
				continue
			}
			if filter.PurchasableOnly && (!f.IsAvailable || f.Stock <= 0) {
				continue
			}
			result = append(result, f)
		}
	})
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}

func (r *fakeFoodRepo) Reserve(_ context.Context, foodID int64, quantity int) error {
	var err error
	r.u.run(func() {
		f, ok := r.u.store.foods[foodID]
		if !ok || f.Stock < quantity {
			err = &food.InsufficientStockError{FoodID: foodID, Requested: quantity}

			return
		}
		f.Stock -= quantity
		f.IsAvailable = f.Stock > 0
		r.u.store.foods[foodID] = f
	})

	return err
}

func (r *fakeFoodRepo) Restock(_ context.Context, foodID int64, quantity int) error {
	var err error
	r.u.run(func() {
		f, ok := r.u.store.foods[foodID]
		if !ok {
			err = &food.NotFoundError{FoodID: foodID}

			return
		}
		if f.Stock == 0 {
			f.IsAvailable = true
		}
		f.Stock += quantity
		r.u.store.foods[foodID] = f
	})

	return err
}

type fakeOrderRepo struct {
	u *fakeUOW
}

func (r *fakeOrderRepo) Insert(_ context.Context, o order.Order) (order.Order, error) {
	r.u.run(func() {
		r.u.store.nextOrderID++
		o.ID = r.u.store.nextOrderID
		r.u.store.orders[o.ID] = o
	})

	return o, nil
}

func (r *fakeOrderRepo) Query(_ context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	var result []order.Order
	r.u.run(func() {
		for _, o := range r.u.store.orders {
			if len(filter.Ids) > 0 && !containsID(filter.Ids, o.ID) {
				continue
			}
			if len(filter.CustomerIds) > 0 && !containsID(filter.CustomerIds, o.CustomerID) {
				continue
			}
			if len(filter.ShopOwnerIds) > 0 && !containsID(filter.ShopOwnerIds, o.ShopOwnerID) {
				continue
			}
			result = append(result, o)
		}
	})
	sort.Slice(result, func(i, j int) bool {
		return result[i].OrderTime.After(result[j].OrderTime)
	})

	return result, nil
}

func (r *fakeOrderRepo) GetForUpdate(_ context.Context, id int64) (order.Order, error) {
	var o order.Order
	var err error
	r.u.run(func() {
		got, ok := r.u.store.orders[id]
		if !ok {
			err = orderrepo.ErrOrderNotFound

			return
		}
		o = got
	})

	return o, err
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id int64, status order.Status) error {
	var err error
	r.u.run(func() {
		o, ok := r.u.store.orders[id]
		if !ok {
			err = orderrepo.ErrOrderNotFound

			return
		}
		o.Status = status
		o.UpdatedAt = time.Now()
		r.u.store.orders[id] = o
	})

	return err
}

func (r *fakeOrderRepo) DailySummary(
	_ context.Context,
	shopOwnerID int64,
	from, to time.Time,
) (order.DailySummary, error) {
	summary := order.DailySummary{ShopOwnerID: shopOwnerID, Date: from}
	r.u.run(func() {
		for _, o := range r.u.store.orders {
			if o.ShopOwnerID != shopOwnerID {
				continue
			}
			if o.OrderTime.Before(from) || !o.OrderTime.Before(to) {
				continue
			}
			summary.OrderCount++
			if o.Status == order.StatusAccepted {
				summary.AcceptedRevenueCents += o.TotalCents
			}
			if o.Status == order.StatusPending {
				summary.PendingCount++
			}
		}
	})

	return summary, nil
}

type fakeOrderItemRepo struct {
	u *fakeUOW
}

func (r *fakeOrderItemRepo) BulkInsert(
	_ context.Context,
	orderItems []orderitem.OrderItem,
) ([]orderitem.OrderItem, error) {
	result := make([]orderitem.OrderItem, 0, len(orderItems))
	r.u.run(func() {
		for _, item := range orderItems {
			r.u.store.nextItemID++
			item.ID = r.u.store.nextItemID
			r.u.store.items[item.OrderID] = append(r.u.store.items[item.OrderID], item)
			result = append(result, item)
		}
	})

	return result, nil
}

func (r *fakeOrderItemRepo) Query(
	_ context.Context,
	filter *orderitem.QueryOrderItemsModel,
) ([]orderitem.OrderItem, error) {
	var result []orderitem.OrderItem
	r.u.run(func() {
		for orderID, items := range r.u.store.items {
			if len(filter.OrderIds) > 0 && !containsID(filter.OrderIds, orderID) {
				continue
			}
			result = append(result, items...)
		}
	})
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}

type fakeOutboxRepo struct {
	u *fakeUOW
}

func (r *fakeOutboxRepo) Insert(_ context.Context, msg outbox.Message) error {
	r.u.run(func() {
		msg.ID = int64(len(r.u.store.outbox) + 1)
		r.u.store.outbox = append(r.u.store.outbox, msg)
	})

	return nil
}

func (r *fakeOutboxRepo) GetPendingMessages(_ context.Context, limit int) ([]outbox.Message, error) {
	var result []outbox.Message
	r.u.run(func() {
		for _, msg := range r.u.store.outbox {
			if len(result) == limit {
				break
			}
			result = append(result, msg)
		}
	})

	return result, nil
}

func (r *fakeOutboxRepo) Delete(_ context.Context, id int64) error {
	r.u.run(func() {
		kept := r.u.store.outbox[:0]
		for _, msg := range r.u.store.outbox {
			if msg.ID != id {
				kept = append(kept, msg)
			}
		}
		r.u.store.outbox = kept
	})

	return nil
}

func (r *fakeOutboxRepo) UpdateRetry(
	_ context.Context,
	id int64,
	retryCount int,
	lastError string,
	nextRetryAt time.Time,
) error {
	r.u.run(func() {
		for i := range r.u.store.outbox {
			if r.u.store.outbox[i].ID == id {
				r.u.store.outbox[i].RetryCount = retryCount
				r.u.store.outbox[i].LastError = lastError
				r.u.store.outbox[i].NextRetryAt = nextRetryAt
			}
		}
	})

	return nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}

	return false
}
