package registercustomer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/campuseats/canteen/internal/service/models/customer"
	"github.com/go-playground/validator/v10"
)

type service interface {
	RegisterCustomer(ctx context.Context, accountID, name, rollNo string) (customer.Customer, error)
}

// registerCustomerRequest represents a customer signup request. The account
// id comes from the identity provider, already authenticated.
type registerCustomerRequest struct {
	Name   string `json:"name"   validate:"required"`
	RollNo string `json:"rollNo"`
}

func (r *registerCustomerRequest) Validate() error {
	return validator.New().Struct(r)
}

// RegisterCustomer handles the one-time customer profile creation.
func RegisterCustomer(w http.ResponseWriter, r *http.Request, service service) {
	accountID := r.Header.Get("X-Account-Id")
	if accountID == "" {
		http.Error(w, "missing account id", http.StatusUnauthorized)

		return
	}

	req := registerCustomerRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for customer signup", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for customer signup", "error", err)

		return
	}

	created, err := service.RegisterCustomer(r.Context(), accountID, req.Name, req.RollNo)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, customer.ErrAccountTaken) || errors.Is(err, customer.ErrRollNoTaken) {
			status = http.StatusConflict
		}

		http.Error(w, err.Error(), status)
		slog.Error("Error registering customer", "error", err)

		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		slog.Error("Error sending response for customer signup", "error", err)
	}
}
