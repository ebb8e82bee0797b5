package registershopowner

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/campuseats/canteen/internal/service/models/shopowner"
	"github.com/go-playground/validator/v10"
)

type service interface {
	RegisterShopOwner(ctx context.Context, accountID, name, shopName string) (shopowner.ShopOwner, error)
}

// registerShopOwnerRequest represents a shop owner signup request.
type registerShopOwnerRequest struct {
	Name     string `json:"name"     validate:"required"`
	ShopName string `json:"shopName" validate:"required"`
}

func (r *registerShopOwnerRequest) Validate() error {
	return validator.New().Struct(r)
}

// RegisterShopOwner handles the one-time shop owner profile creation.
func RegisterShopOwner(w http.ResponseWriter, r *http.Request, service service) {
	accountID := r.Header.Get("X-Account-Id")
	if accountID == "" {
		http.Error(w, "missing account id", http.StatusUnauthorized)

		return
	}

	req := registerShopOwnerRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for shop owner signup", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for shop owner signup", "error", err)

		return
	}

	created, err := service.RegisterShopOwner(r.Context(), accountID, req.Name, req.ShopName)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, shopowner.ErrAccountTaken) {
			status = http.StatusConflict
		}

		http.Error(w, err.Error(), status)
		slog.Error("Error registering shop owner", "error", err)

		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		slog.Error("Error sending response for shop owner signup", "error", err)
	}
}
