package postgresrepo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/campuseats/canteen/internal/dal/postgres"
	"github.com/campuseats/canteen/internal/service/models/shopowner"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// PostgresShopOwnerRepository represents a Postgres shop owner profile repository.
type PostgresShopOwnerRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresShopOwnerRepository creates a new Postgres shop owner repository.
func NewPostgresShopOwnerRepository(conn postgres.Conn) *PostgresShopOwnerRepository {
	return &PostgresShopOwnerRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert creates a shop owner profile, one per external account.
func (r *PostgresShopOwnerRepository) Insert(
	ctx context.Context,
	s shopowner.ShopOwner,
) (shopowner.ShopOwner, error) {
	sql, args, err := r.sb.
		Insert("shop_owner_profiles").
		Columns("account_id", "name", "shop_name", "created_at").
		Values(s.AccountID, s.Name, s.ShopName, s.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return shopowner.ShopOwner{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&s.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shopowner.ShopOwner{}, shopowner.ErrAccountTaken
		}

		return shopowner.ShopOwner{}, fmt.Errorf("failed to insert shop owner: %w", err)
	}

	return s, nil
}

func (r *PostgresShopOwnerRepository) getWhere(
	ctx context.Context,
	pred interface{},
) (shopowner.ShopOwner, error) {
	sql, args, err := r.sb.
		Select("id", "account_id", "name", "shop_name", "created_at").
		From("shop_owner_profiles").
		Where(pred).
		ToSql()
	if err != nil {
		return shopowner.ShopOwner{}, fmt.Errorf("failed to build query: %w", err)
	}

	var s shopowner.ShopOwner
	var createdAt pgtype.Timestamptz
	err = r.conn.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.AccountID, &s.Name, &s.ShopName, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shopowner.ShopOwner{}, shopowner.ErrNotFound
		}

		return shopowner.ShopOwner{}, fmt.Errorf("failed to get shop owner: %w", err)
	}
	s.CreatedAt = createdAt.Time

	return s, nil
}

// GetByID retrieves one shop owner profile by id.
func (r *PostgresShopOwnerRepository) GetByID(
	ctx context.Context,
	id int64,
) (shopowner.ShopOwner, error) {
	return r.getWhere(ctx, sq.Eq{"id": id})
}

// GetByAccountID retrieves the profile wrapping an identity-provider account.
func (r *PostgresShopOwnerRepository) GetByAccountID(
	ctx context.Context,
	accountID string,
) (shopowner.ShopOwner, error) {
	return r.getWhere(ctx, sq.Eq{"account_id": accountID})
}
