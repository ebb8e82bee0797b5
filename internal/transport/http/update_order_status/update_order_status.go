package updateorderstatus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/campuseats/canteen/internal/service/models/order"
	"github.com/campuseats/canteen/internal/service/models/shopowner"
	"github.com/campuseats/canteen/internal/service/services/ordersvc"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// service is an interface for the service layer.
type service interface {
	UpdateOrderStatus(ctx context.Context, shopOwnerID, orderID int64, requestedStatus string) (order.Order, error)
}

type profiles interface {
	ResolveShopOwner(ctx context.Context, accountID string) (shopowner.ShopOwner, error)
}

// updateOrderStatusRequest represents a status change request.
type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Validate validates the status change request.
func (r *updateOrderStatusRequest) Validate() error {
	return validator.New().Struct(r)
}

// UpdateOrderStatus handles a fulfillment transition request from the
// owning shop.
func UpdateOrderStatus(w http.ResponseWriter, r *http.Request, service service, profiles profiles) {
	principal, err := profiles.ResolveShopOwner(r.Context(), r.Header.Get("X-Account-Id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		slog.Error("Error resolving shop owner profile", "error", err)

		return
	}

	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)

		return
	}

	req := updateOrderStatusRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for status update", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for status update", "error", err)

		return
	}

	updated, err := service.UpdateOrderStatus(r.Context(), principal.ID, orderID, req.Status)
	if err != nil {
		status := http.StatusInternalServerError

		var unknown *order.UnknownStatusError
		var terminal *order.TerminalStateError
		var invalid *order.InvalidTransitionError
		switch {
		case errors.As(err, &unknown):
			status = http.StatusBadRequest
		case errors.As(err, &terminal), errors.As(err, &invalid):
			status = http.StatusConflict
		case errors.Is(err, ordersvc.ErrNotOrderOwner):
			status = http.StatusForbidden
		}

		http.Error(w, err.Error(), status)
		slog.Error("Error updating order status", "order_id", orderID, "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(updated); err != nil {
		slog.Error("Error sending response for status update", "error", err)
	}
}
