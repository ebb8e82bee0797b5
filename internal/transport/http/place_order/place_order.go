package placeorder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/campuseats/canteen/internal/service/models/cart"
	"github.com/campuseats/canteen/internal/service/models/customer"
	"github.com/campuseats/canteen/internal/service/models/food"
	"github.com/campuseats/canteen/internal/service/services/ordersvc"
	"github.com/go-playground/validator/v10"
)

// service is an interface for the service layer.
type service interface {
	PlaceOrder(ctx context.Context, customerID int64, items []cart.Item, scheduledTime string) (*ordersvc.PlacementResult, error)
}

type profiles interface {
	ResolveCustomer(ctx context.Context, accountID string) (customer.Customer, error)
}

// itemInPlaceOrderRequest represents one cart entry in a place order request.
type itemInPlaceOrderRequest struct {
	FoodID   int64 `json:"foodId"   validate:"gt=0"`
	Quantity int   `json:"quantity" validate:"gt=0"`
}

// placeOrderRequest represents a place order request.
type placeOrderRequest struct {
	CartItems     []itemInPlaceOrderRequest `json:"cartItems"     validate:"required,min=1,dive"`
	ScheduledTime string                    `json:"scheduledTime" validate:"required"`
}

// Validate validates the place order request.
func (r *placeOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

type groupFailureInResponse struct {
	ShopOwnerID int64  `json:"shopOwnerId"`
	Error       string `json:"error"`
}

type placeOrderResponse struct {
	OrderIDs []int64                  `json:"orderIds"`
	Failed   []groupFailureInResponse `json:"failed,omitempty"`
}

// PlaceOrder handles the order placement request. Each shop in the cart is
// an independent unit of work, so the response can carry both created
// orders and failed groups.
func PlaceOrder(w http.ResponseWriter, r *http.Request, service service, profiles profiles) {
	principal, err := profiles.ResolveCustomer(r.Context(), r.Header.Get("X-Account-Id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		slog.Error("Error resolving customer profile", "error", err)

		return
	}

	req := placeOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for place order", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for place order", "error", err)

		return
	}

	items := make([]cart.Item, len(req.CartItems))
	for i, item := range req.CartItems {
		items[i] = cart.Item{FoodID: item.FoodID, Quantity: item.Quantity}
	}

	result, err := service.PlaceOrder(r.Context(), principal.ID, items, req.ScheduledTime)
	if err != nil && result == nil {
		status := http.StatusInternalServerError

		var notFound *food.NotFoundError
		var badSchedule *cart.InvalidScheduleError
		var badQuantity *cart.InvalidQuantityError
		switch {
		case errors.Is(err, cart.ErrEmptyCart),
			errors.As(err, &notFound),
			errors.As(err, &badSchedule),
			errors.As(err, &badQuantity):
			status = http.StatusBadRequest
		}

		http.Error(w, err.Error(), status)
		slog.Error("Error placing order", "error", err)

		return
	}

	resp := placeOrderResponse{OrderIDs: result.OrderIDs()}
	for _, failure := range result.Failed {
		resp.Failed = append(resp.Failed, groupFailureInResponse{
			ShopOwnerID: failure.ShopOwnerID,
			Error:       failure.Err.Error(),
		})
	}

	if len(resp.OrderIDs) == 0 && len(resp.Failed) > 0 {
		w.WriteHeader(http.StatusConflict)
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Error sending response for place order", "error", err)
	}
}
