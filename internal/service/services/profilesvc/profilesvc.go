package profilesvc

import (
	"context"
	"fmt"
	"time"

	"github.com/campuseats/canteen/internal/dal/interfaces/icustomerrepo"
	"github.com/campuseats/canteen/internal/dal/interfaces/ishopownerrepo"
	"github.com/campuseats/canteen/internal/dal/postgres"
	"github.com/campuseats/canteen/internal/dal/uow"
	"github.com/campuseats/canteen/internal/service/models/customer"
	"github.com/campuseats/canteen/internal/service/models/shopowner"
)

type unitOfWork interface {
	CustomerRepository() icustomerrepo.ICustomerRepository
	ShopOwnerRepository() ishopownerrepo.IShopOwnerRepository
}

// ProfileService creates and resolves the profiles wrapping external
// identity-provider accounts. It never sees credentials.
type ProfileService struct {
	pgClient   *postgres.Client
	uowFactory func() unitOfWork
}

func (s *ProfileService) newUOW() unitOfWork {
	if s.uowFactory != nil {
		return s.uowFactory()
	}

	return uow.NewUnitOfWork(s.pgClient)
}

// option is a function that configures the ProfileService.
type option func(*ProfileService)

// MustNewProfileService creates a new ProfileService.
func MustNewProfileService(opts ...option) *ProfileService {
	s := &ProfileService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.pgClient == nil && s.uowFactory == nil {
		panic("profile service requires a postgres client or a unit of work factory")
	}

	return s
}

// WithPostgresClient sets the Postgres client for the ProfileService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *ProfileService) {
		s.pgClient = pgClient
	}
}

// WithUnitOfWorkFactory overrides the store, used in tests.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *ProfileService) {
		s.uowFactory = factory
	}
}

// RegisterCustomer creates the customer profile for an authenticated
// account, once.
func (s *ProfileService) RegisterCustomer(
	ctx context.Context,
	accountID, name, rollNo string,
) (customer.Customer, error) {
	created, err := s.newUOW().CustomerRepository().Insert(ctx, customer.Customer{
		AccountID: accountID,
		Name:      name,
		RollNo:    rollNo,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return customer.Customer{}, fmt.Errorf("failed to register customer: %w", err)
	}

	return created, nil
}

// RegisterShopOwner creates the shop owner profile for an authenticated
// account, once.
func (s *ProfileService) RegisterShopOwner(
	ctx context.Context,
	accountID, name, shopName string,
) (shopowner.ShopOwner, error) {
	created, err := s.newUOW().ShopOwnerRepository().Insert(ctx, shopowner.ShopOwner{
		AccountID: accountID,
		Name:      name,
		ShopName:  shopName,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return shopowner.ShopOwner{}, fmt.Errorf("failed to register shop owner: %w", err)
	}

	return created, nil
}

// ResolveCustomer maps an authenticated account onto its profile.
func (s *ProfileService) ResolveCustomer(ctx context.Context, accountID string) (customer.Customer, error) {
	return s.newUOW().CustomerRepository().GetByAccountID(ctx, accountID)
}

// ResolveShopOwner maps an authenticated account onto its profile.
func (s *ProfileService) ResolveShopOwner(ctx context.Context, accountID string) (shopowner.ShopOwner, error) {
	return s.newUOW().ShopOwnerRepository().GetByAccountID(ctx, accountID)
}
