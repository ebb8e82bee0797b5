package icustomerrepo

import (
	"context"

	"github.com/campuseats/canteen/internal/service/models/customer"
)

// ICustomerRepository is an interface for the customer profile postgres repository.
type ICustomerRepository interface {
	Insert(ctx context.Context, c customer.Customer) (customer.Customer, error)
	GetByID(ctx context.Context, id int64) (customer.Customer, error)
	GetByAccountID(ctx context.Context, accountID string) (customer.Customer, error)
}
