package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/campuseats/canteen/internal/dal/postgres"
	"github.com/campuseats/canteen/internal/service/models/currency"
	"github.com/campuseats/canteen/internal/service/models/order"
	"github.com/campuseats/canteen/internal/service/models/orderitem"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ErrOrderNotFound is returned when an order id does not resolve.
var ErrOrderNotFound = errors.New("order not found")

// OrderDal represents the order data access layer model.
type OrderDal struct {
	Id            int64     `db:"id"`
	CustomerId    int64     `db:"customer_id"`
	ShopOwnerId   int64     `db:"shop_owner_id"`
	OrderTime     time.Time `db:"order_time"`
	ScheduledTime time.Time `db:"scheduled_time"`
	TotalCents    int64     `db:"total_cents"`
	TotalCurrency string    `db:"total_currency"`
	Status        string    `db:"status"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	cur, err := currency.ParseCurrency(o.TotalCurrency)
	if err != nil {
		return nil, err
	}
	status, err := order.ParseStatus(o.Status)
	if err != nil {
		return nil, err
	}

	return &order.Order{
		ID:            o.Id,
		CustomerID:    o.CustomerId,
		ShopOwnerID:   o.ShopOwnerId,
		OrderTime:     o.OrderTime,
		ScheduledTime: o.ScheduledTime,
		TotalCents:    o.TotalCents,
		TotalCurrency: cur,
		Status:        status,
		UpdatedAt:     o.UpdatedAt,
		OrderItems:    []orderitem.OrderItem{},
	}, nil
}

// PostgresOrderRepository represents a Postgres order repository.
type PostgresOrderRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn postgres.Conn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var orderColumns = []string{
	"id",
	"customer_id",
	"shop_owner_id",
	"order_time",
	"scheduled_time",
	"total_cents",
	"total_currency",
	"status",
	"updated_at",
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var dal OrderDal
	var orderTime, scheduledTime, updatedAt pgtype.Timestamptz

	err := row.Scan(
		&dal.Id,
		&dal.CustomerId,
		&dal.ShopOwnerId,
		&orderTime,
		&scheduledTime,
		&dal.TotalCents,
		&dal.TotalCurrency,
		&dal.Status,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	dal.OrderTime = orderTime.Time
	dal.ScheduledTime = scheduledTime.Time
	dal.UpdatedAt = updatedAt.Time

	return dal.ToModel()
}

// Insert creates one order row and returns it with its generated id. Items
// are inserted separately within the same transaction.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	sql, args, err := r.sb.
		Insert("orders").
		Columns(
			"customer_id",
			"shop_owner_id",
			"order_time",
			"scheduled_time",
			"total_cents",
			"total_currency",
			"status",
			"updated_at",
		).
		Values(
			o.CustomerID,
			o.ShopOwnerID,
			o.OrderTime,
			o.ScheduledTime,
			o.TotalCents,
			o.TotalCurrency.String(),
			o.Status.String(),
			o.UpdatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&o.ID); err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	return o, nil
}

// Query retrieves orders based on filter criteria, newest first.
func (r *PostgresOrderRepository) Query(
	ctx context.Context,
	filter *order.QueryOrdersModel,
) ([]order.Order, error) {
	query := r.sb.
		Select(orderColumns...).
		From("orders")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"id": filter.Ids})
	}

	if len(filter.CustomerIds) > 0 {
		query = query.Where(sq.Eq{"customer_id": filter.CustomerIds})
	}

	if len(filter.ShopOwnerIds) > 0 {
		query = query.Where(sq.Eq{"shop_owner_id": filter.ShopOwnerIds})
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = s.String()
		}
		query = query.Where(sq.Eq{"status": statuses})
	}

	if filter.OrderedFrom != nil {
		query = query.Where(sq.GtOrEq{"order_time": *filter.OrderedFrom})
	}

	if filter.OrderedTo != nil {
		query = query.Where(sq.Lt{"order_time": *filter.OrderedTo})
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.OrderBy("order_time DESC", "id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		model, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// GetForUpdate loads one order and locks its row until the surrounding
// transaction ends, so status transitions are serialized per order.
func (r *PostgresOrderRepository) GetForUpdate(ctx context.Context, id int64) (order.Order, error) {
	sql, args, err := r.sb.
		Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build query: %w", err)
	}

	model, err := scanOrder(r.conn.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, ErrOrderNotFound
		}

		return order.Order{}, fmt.Errorf("failed to get order for update: %w", err)
	}

	return *model, nil
}

// UpdateStatus writes the new status. Legality of the transition is the
// service layer's responsibility.
func (r *PostgresOrderRepository) UpdateStatus(
	ctx context.Context,
	id int64,
	status order.Status,
) error {
	sql, args, err := r.sb.
		Update("orders").
		Set("status", status.String()).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// DailySummary aggregates one shop's orders with order_time in [from, to).
func (r *PostgresOrderRepository) DailySummary(
	ctx context.Context,
	shopOwnerID int64,
	from, to time.Time,
) (order.DailySummary, error) {
	sql := `
		SELECT
			count(*),
			coalesce(sum(total_cents) FILTER (WHERE status = 'accepted'), 0),
			count(*) FILTER (WHERE status = 'pending')
		FROM orders
		WHERE shop_owner_id = $1 AND order_time >= $2 AND order_time < $3
	`

	summary := order.DailySummary{
		ShopOwnerID: shopOwnerID,
		Date:        from,
	}

	err := r.conn.QueryRow(ctx, sql, shopOwnerID, from, to).Scan(
		&summary.OrderCount,
		&summary.AcceptedRevenueCents,
		&summary.PendingCount,
	)
	if err != nil {
		return order.DailySummary{}, fmt.Errorf("failed to aggregate daily summary: %w", err)
	}

	return summary, nil
}
