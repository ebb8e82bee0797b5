package foodsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campuseats/canteen/internal/dal/interfaces/ifoodrepo"
	"github.com/campuseats/canteen/internal/dal/postgres"
	"github.com/campuseats/canteen/internal/dal/uow"
	"github.com/campuseats/canteen/internal/service/models/food"
)

// ErrNotFoodOwner is returned when a shop owner edits another shop's food.
var ErrNotFoodOwner = errors.New("food belongs to another shop")

type unitOfWork interface {
	FoodRepository() ifoodrepo.IFoodRepository
}

// FoodService manages a shop's catalog.
type FoodService struct {
	pgClient   *postgres.Client
	uowFactory func() unitOfWork
}

func (s *FoodService) newUOW() unitOfWork {
	if s.uowFactory != nil {
		return s.uowFactory()
	}

	return uow.NewUnitOfWork(s.pgClient)
}

// option is a function that configures the FoodService.
type option func(*FoodService)

// MustNewFoodService creates a new FoodService.
func MustNewFoodService(opts ...option) *FoodService {
	s := &FoodService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.pgClient == nil && s.uowFactory == nil {
		panic("food service requires a postgres client or a unit of work factory")
	}

	return s
}

// WithPostgresClient sets the Postgres client for the FoodService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *FoodService) {
		s.pgClient = pgClient
	}
}

// WithUnitOfWorkFactory overrides the store, used in tests.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *FoodService) {
		s.uowFactory = factory
	}
}

// CreateFood adds a food to the acting shop owner's catalog. A food created
// with zero stock starts unavailable.
func (s *FoodService) CreateFood(ctx context.Context, shopOwnerID int64, f food.Food) (food.Food, error) {
	now := time.Now()
	f.ShopOwnerID = shopOwnerID
	f.CreatedAt = now
	f.UpdatedAt = now
	f.IsAvailable = f.Stock > 0
	f.Normalize()

	created, err := s.newUOW().FoodRepository().Insert(ctx, f)
	if err != nil {
		return food.Food{}, fmt.Errorf("failed to create food: %w", err)
	}

	return created, nil
}

// UpdateFood rewrites a food's editable fields after checking ownership.
// Setting stock to zero forces the food unavailable; an owner may also hide
// an in-stock food by clearing the availability flag.
func (s *FoodService) UpdateFood(ctx context.Context, shopOwnerID int64, f food.Food) (food.Food, error) {
	work := s.newUOW()

	existing, err := work.FoodRepository().Query(ctx, &food.QueryFoodsModel{Ids: []int64{f.ID}})
	if err != nil {
		return food.Food{}, fmt.Errorf("failed to load food: %w", err)
	}
	if len(existing) == 0 {
		return food.Food{}, &food.NotFoundError{FoodID: f.ID}
	}
	if existing[0].ShopOwnerID != shopOwnerID {
		return food.Food{}, ErrNotFoodOwner
	}

	f.ShopOwnerID = shopOwnerID
	f.CreatedAt = existing[0].CreatedAt
	f.UpdatedAt = time.Now()
	f.Normalize()

	updated, err := work.FoodRepository().Update(ctx, f)
	if err != nil {
		return food.Food{}, fmt.Errorf("failed to update food: %w", err)
	}

	return updated, nil
}

// ListShopFoods returns the whole catalog of one shop.
func (s *FoodService) ListShopFoods(ctx context.Context, shopOwnerID int64) ([]food.Food, error) {
	return s.newUOW().FoodRepository().Query(ctx, &food.QueryFoodsModel{
		ShopOwnerIds: []int64{shopOwnerID},
	})
}

// ListPurchasable returns foods customers can order right now: available
// and in stock, across all shops.
func (s *FoodService) ListPurchasable(ctx context.Context) ([]food.Food, error) {
	return s.newUOW().FoodRepository().Query(ctx, &food.QueryFoodsModel{
		PurchasableOnly: true,
	})
}
