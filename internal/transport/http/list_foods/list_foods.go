package listfoods

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/campuseats/canteen/internal/service/models/food"
	"github.com/gorilla/schema"
)

type service interface {
	ListShopFoods(ctx context.Context, shopOwnerID int64) ([]food.Food, error)
	ListPurchasable(ctx context.Context) ([]food.Food, error)
}

type queryFoodsRequest struct {
	ShopOwnerID int64 `schema:"shopOwnerId,omitempty"`
}

// ListFoods returns one shop's catalog when shopOwnerId is given, otherwise
// the purchasable foods across all shops (the customer menu).
func ListFoods(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	query := &queryFoodsRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request", "error", err)

		return
	}

	var foods []food.Food
	var err error
	if query.ShopOwnerID > 0 {
		foods, err = service.ListShopFoods(r.Context(), query.ShopOwnerID)
	} else {
		foods, err = service.ListPurchasable(r.Context())
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error listing foods", "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(foods); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response", "error", err)
	}
}
