package savefood

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/campuseats/canteen/internal/service/models/currency"
	"github.com/campuseats/canteen/internal/service/models/food"
	"github.com/campuseats/canteen/internal/service/models/shopowner"
	"github.com/campuseats/canteen/internal/service/services/foodsvc"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// service is an interface for the service layer.
type service interface {
	CreateFood(ctx context.Context, shopOwnerID int64, f food.Food) (food.Food, error)
	UpdateFood(ctx context.Context, shopOwnerID int64, f food.Food) (food.Food, error)
}

type profiles interface {
	ResolveShopOwner(ctx context.Context, accountID string) (shopowner.ShopOwner, error)
}

// saveFoodRequest represents a catalog create or edit request.
type saveFoodRequest struct {
	Name          string `json:"name"          validate:"required"`
	PriceCents    int64  `json:"priceCents"    validate:"gt=0"`
	PriceCurrency string `json:"priceCurrency" validate:"required"`
	Stock         int    `json:"stock"         validate:"gte=0"`
	IsAvailable   bool   `json:"isAvailable"`
	ImageURL      string `json:"imageUrl"`
}

// Validate validates the save food request.
func (r *saveFoodRequest) Validate() error {
	return validator.New().Struct(r)
}

// toModel converts saveFoodRequest to food.Food.
func (r *saveFoodRequest) toModel() (*food.Food, error) {
	cur, err := currency.ParseCurrency(r.PriceCurrency)
	if err != nil {
		return nil, err
	}

	return &food.Food{
		Name:          r.Name,
		PriceCents:    r.PriceCents,
		PriceCurrency: cur,
		Stock:         r.Stock,
		IsAvailable:   r.IsAvailable,
		ImageURL:      r.ImageURL,
	}, nil
}

// SaveFood handles catalog create (POST) and edit (PUT with a food id).
func SaveFood(w http.ResponseWriter, r *http.Request, service service, profiles profiles) {
	principal, err := profiles.ResolveShopOwner(r.Context(), r.Header.Get("X-Account-Id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		slog.Error("Error resolving shop owner profile", "error", err)

		return
	}

	req := saveFoodRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for save food", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for save food", "error", err)

		return
	}

	model, err := req.toModel()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error converting save food request to model", "error", err)

		return
	}

	var saved food.Food
	if rawID := chi.URLParam(r, "foodID"); rawID != "" {
		model.ID, err = strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			http.Error(w, "invalid food id", http.StatusBadRequest)

			return
		}
		saved, err = service.UpdateFood(r.Context(), principal.ID, *model)
	} else {
		saved, err = service.CreateFood(r.Context(), principal.ID, *model)
	}
	if err != nil {
		status := http.StatusInternalServerError

		var notFound *food.NotFoundError
		switch {
		case errors.As(err, &notFound):
			status = http.StatusNotFound
		case errors.Is(err, foodsvc.ErrNotFoodOwner):
			status = http.StatusForbidden
		}

		http.Error(w, err.Error(), status)
		slog.Error("Error saving food", "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(saved); err != nil {
		slog.Error("Error sending response for save food", "error", err)
	}
}
