package postgresrepo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/campuseats/canteen/internal/dal/postgres"
	"github.com/campuseats/canteen/internal/service/models/customer"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// PostgresCustomerRepository represents a Postgres customer profile repository.
type PostgresCustomerRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresCustomerRepository creates a new Postgres customer repository.
func NewPostgresCustomerRepository(conn postgres.Conn) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert creates a customer profile. The profile is 1:1 with its external
// account; unique violations map onto the model's sentinel errors.
func (r *PostgresCustomerRepository) Insert(
	ctx context.Context,
	c customer.Customer,
) (customer.Customer, error) {
	var rollNo *string
	if c.RollNo != "" {
		rollNo = &c.RollNo
	}

	sql, args, err := r.sb.
		Insert("customer_profiles").
		Columns("account_id", "name", "roll_no", "created_at").
		Values(c.AccountID, c.Name, rollNo, c.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return customer.Customer{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&c.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "customer_profiles_roll_no_key" {
				return customer.Customer{}, customer.ErrRollNoTaken
			}

			return customer.Customer{}, customer.ErrAccountTaken
		}

		return customer.Customer{}, fmt.Errorf("failed to insert customer: %w", err)
	}

	return c, nil
}

func (r *PostgresCustomerRepository) getWhere(
	ctx context.Context,
	pred interface{},
) (customer.Customer, error) {
	sql, args, err := r.sb.
		Select("id", "account_id", "name", "coalesce(roll_no, '')", "created_at").
		From("customer_profiles").
		Where(pred).
		ToSql()
	if err != nil {
		return customer.Customer{}, fmt.Errorf("failed to build query: %w", err)
	}

	var c customer.Customer
	var createdAt pgtype.Timestamptz
	err = r.conn.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.AccountID, &c.Name, &c.RollNo, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return customer.Customer{}, customer.ErrNotFound
		}

		return customer.Customer{}, fmt.Errorf("failed to get customer: %w", err)
	}
	c.CreatedAt = createdAt.Time

	return c, nil
}

// GetByID retrieves one customer profile by id.
func (r *PostgresCustomerRepository) GetByID(ctx context.Context, id int64) (customer.Customer, error) {
	return r.getWhere(ctx, sq.Eq{"id": id})
}

// GetByAccountID retrieves the profile wrapping an identity-provider account.
func (r *PostgresCustomerRepository) GetByAccountID(
	ctx context.Context,
	accountID string,
) (customer.Customer, error) {
	return r.getWhere(ctx, sq.Eq{"account_id": accountID})
}
