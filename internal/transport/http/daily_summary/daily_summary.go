package dailysummary

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/campuseats/canteen/internal/service/models/order"
	"github.com/campuseats/canteen/internal/service/models/shopowner"
)

type service interface {
	DailySummary(ctx context.Context, shopOwnerID int64, date time.Time) (order.DailySummary, error)
}

type profiles interface {
	ResolveShopOwner(ctx context.Context, accountID string) (shopowner.ShopOwner, error)
}

// DailySummary handles the shop dashboard aggregate request. The date query
// parameter defaults to today.
func DailySummary(w http.ResponseWriter, r *http.Request, service service, profiles profiles) {
	principal, err := profiles.ResolveShopOwner(r.Context(), r.Header.Get("X-Account-Id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		slog.Error("Error resolving shop owner profile", "error", err)

		return
	}

	date := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		date, err = time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)

			return
		}
	}

	summary, err := service.DailySummary(r.Context(), principal.ID, date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error computing daily summary", "shop_owner_id", principal.ID, "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(summary); err != nil {
		slog.Error("Error sending response for daily summary", "error", err)
	}
}
