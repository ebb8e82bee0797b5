package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/campuseats/canteen/internal/dal/postgres"
	"github.com/campuseats/canteen/internal/service/models/currency"
	"github.com/campuseats/canteen/internal/service/models/food"
	"github.com/jackc/pgx/v5/pgtype"
)

// FoodDal represents the food data access layer model.
type FoodDal struct {
	Id            int64     `db:"id"`
	ShopOwnerId   int64     `db:"shop_owner_id"`
	Name          string    `db:"name"`
	PriceCents    int64     `db:"price_cents"`
	PriceCurrency string    `db:"price_currency"`
	Stock         int       `db:"stock"`
	IsAvailable   bool      `db:"is_available"`
	ImageUrl      string    `db:"image_url"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// ToModel converts FoodDal to the service layer Food model.
func (f *FoodDal) ToModel() (*food.Food, error) {
	cur, err := currency.ParseCurrency(f.PriceCurrency)
	if err != nil {
		return nil, err
	}

	return &food.Food{
		ID:            f.Id,
		ShopOwnerID:   f.ShopOwnerId,
		Name:          f.Name,
		PriceCents:    f.PriceCents,
		PriceCurrency: cur,
		Stock:         f.Stock,
		IsAvailable:   f.IsAvailable,
		ImageURL:      f.ImageUrl,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}, nil
}

// PostgresFoodRepository represents a Postgres food repository.
type PostgresFoodRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresFoodRepository creates a new Postgres food repository.
func NewPostgresFoodRepository(conn postgres.Conn) *PostgresFoodRepository {
	return &PostgresFoodRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var foodColumns = []string{
	"id",
	"shop_owner_id",
	"name",
	"price_cents",
	"price_currency",
	"stock",
	"is_available",
	"image_url",
	"created_at",
	"updated_at",
}

// Insert creates a new food and returns it with its generated id.
func (r *PostgresFoodRepository) Insert(ctx context.Context, f food.Food) (food.Food, error) {
	f.Normalize()

	sql, args, err := r.sb.
		Insert("foods").
		Columns(
			"shop_owner_id",
			"name",
			"price_cents",
			"price_currency",
			"stock",
			"is_available",
			"image_url",
			"created_at",
			"updated_at",
		).
		Values(
			f.ShopOwnerID,
			f.Name,
			f.PriceCents,
			f.PriceCurrency.String(),
			f.Stock,
			f.IsAvailable,
			f.ImageURL,
			f.CreatedAt,
			f.UpdatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return food.Food{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&f.ID); err != nil {
		return food.Food{}, fmt.Errorf("failed to insert food: %w", err)
	}

	return f, nil
}

// Update rewrites a food's editable fields.
func (r *PostgresFoodRepository) Update(ctx context.Context, f food.Food) (food.Food, error) {
	f.Normalize()

	sql, args, err := r.sb.
		Update("foods").
		Set("name", f.Name).
		Set("price_cents", f.PriceCents).
		Set("price_currency", f.PriceCurrency.String()).
		Set("stock", f.Stock).
		Set("is_available", f.IsAvailable).
		Set("image_url", f.ImageURL).
		Set("updated_at", f.UpdatedAt).
		Where(sq.Eq{"id": f.ID}).
		ToSql()
	if err != nil {
		return food.Food{}, fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return food.Food{}, fmt.Errorf("failed to update food: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return food.Food{}, &food.NotFoundError{FoodID: f.ID}
	}

	return f, nil
}

// Query retrieves foods based on filter criteria.
func (r *PostgresFoodRepository) Query(
	ctx context.Context,
	filter *food.QueryFoodsModel,
) ([]food.Food, error) {
	query := r.sb.
		Select(foodColumns...).
		From("foods")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"id": filter.Ids})
	}

	if len(filter.ShopOwnerIds) > 0 {
		query = query.Where(sq.Eq{"shop_owner_id": filter.ShopOwnerIds})
	}

	if filter.PurchasableOnly {
		query = query.Where(sq.Eq{"is_available": true}).Where(sq.Gt{"stock": 0})
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query foods: %w", err)
	}
	defer rows.Close()

	var result []food.Food
	for rows.Next() {
		var dal FoodDal
		var createdAt, updatedAt pgtype.Timestamptz

		err := rows.Scan(
			&dal.Id,
			&dal.ShopOwnerId,
			&dal.Name,
			&dal.PriceCents,
			&dal.PriceCurrency,
			&dal.Stock,
			&dal.IsAvailable,
			&dal.ImageUrl,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan food: %w", err)
		}

		dal.CreatedAt = createdAt.Time
		dal.UpdatedAt = updatedAt.Time

		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert food dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Reserve decrements stock by quantity in a single conditional update. The
// WHERE guard serializes concurrent reservations on the same row; a group
// whose reservation fails gets zero rows affected and no mutation.
func (r *PostgresFoodRepository) Reserve(ctx context.Context, foodID int64, quantity int) error {
	sql := `
		UPDATE foods
		SET stock = stock - $2,
		    is_available = stock - $2 > 0,
		    updated_at = now()
		WHERE id = $1 AND stock >= $2
	`

	tag, err := r.conn.Exec(ctx, sql, foodID, quantity)
	if err != nil {
		return fmt.Errorf("failed to reserve stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return &food.InsufficientStockError{FoodID: foodID, Requested: quantity}
	}

	return nil
}

// Restock returns quantity units to stock. A food that had sold out becomes
// available again.
func (r *PostgresFoodRepository) Restock(ctx context.Context, foodID int64, quantity int) error {
	sql := `
		UPDATE foods
		SET stock = stock + $2,
		    is_available = CASE WHEN stock = 0 THEN true ELSE is_available END,
		    updated_at = now()
		WHERE id = $1
	`

	tag, err := r.conn.Exec(ctx, sql, foodID, quantity)
	if err != nil {
		return fmt.Errorf("failed to restock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return &food.NotFoundError{FoodID: foodID}
	}

	return nil
}
