package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/campuseats/canteen/internal/service/models/cart"
	"github.com/campuseats/canteen/internal/service/models/customer"
	"github.com/campuseats/canteen/internal/service/models/food"
	"github.com/campuseats/canteen/internal/service/models/order"
	"github.com/campuseats/canteen/internal/service/models/shopowner"
	"github.com/campuseats/canteen/internal/service/services/ordersvc"
	dailysummary "github.com/campuseats/canteen/internal/transport/http/daily_summary"
	listfoods "github.com/campuseats/canteen/internal/transport/http/list_foods"
	listorders "github.com/campuseats/canteen/internal/transport/http/list_orders"
	placeorder "github.com/campuseats/canteen/internal/transport/http/place_order"
	registercustomer "github.com/campuseats/canteen/internal/transport/http/register_customer"
	registershopowner "github.com/campuseats/canteen/internal/transport/http/register_shop_owner"
	savefood "github.com/campuseats/canteen/internal/transport/http/save_food"
	updateorderstatus "github.com/campuseats/canteen/internal/transport/http/update_order_status"
	"github.com/campuseats/canteen/pkg/http/middleware/trace"
	"github.com/campuseats/canteen/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
)

type orderService interface {
	PlaceOrder(ctx context.Context, customerID int64, items []cart.Item, scheduledTime string) (*ordersvc.PlacementResult, error)
	UpdateOrderStatus(ctx context.Context, shopOwnerID, orderID int64, requestedStatus string) (order.Order, error)
	GetOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error)
}

type foodService interface {
	CreateFood(ctx context.Context, shopOwnerID int64, f food.Food) (food.Food, error)
	UpdateFood(ctx context.Context, shopOwnerID int64, f food.Food) (food.Food, error)
	ListShopFoods(ctx context.Context, shopOwnerID int64) ([]food.Food, error)
	ListPurchasable(ctx context.Context) ([]food.Food, error)
}

type profileService interface {
	RegisterCustomer(ctx context.Context, accountID, name, rollNo string) (customer.Customer, error)
	RegisterShopOwner(ctx context.Context, accountID, name, shopName string) (shopowner.ShopOwner, error)
	ResolveCustomer(ctx context.Context, accountID string) (customer.Customer, error)
	ResolveShopOwner(ctx context.Context, accountID string) (shopowner.ShopOwner, error)
}

type reportService interface {
	DailySummary(ctx context.Context, shopOwnerID int64, date time.Time) (order.DailySummary, error)
}

type HTTPTransport struct {
	server   *http.Server
	router   *chi.Mux
	orders   orderService
	foods    foodService
	profiles profileService
	reports  reportService
}

func NewHTTPTransport(
	orders orderService,
	foods foodService,
	profiles profileService,
	reports reportService,
) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	return &HTTPTransport{
		server:   server,
		router:   router,
		orders:   orders,
		foods:    foods,
		profiles: profiles,
		reports:  reports,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Post("/orders", h.placeOrder)
		r.Get("/orders", h.listOrders)
		r.Post("/orders/{orderID}/status", h.updateOrderStatus)
		r.Get("/foods", h.listFoods)
		r.Post("/foods", h.saveFood)
		r.Put("/foods/{foodID}", h.saveFood)
		r.Get("/reports/daily", h.dailySummary)
		r.Post("/customers", h.registerCustomer)
		r.Post("/shop-owners", h.registerShopOwner)
	})
}

func (h *HTTPTransport) placeOrder(w http.ResponseWriter, r *http.Request) {
	placeorder.PlaceOrder(w, r, h.orders, h.profiles)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.orders)
}

func (h *HTTPTransport) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	updateorderstatus.UpdateOrderStatus(w, r, h.orders, h.profiles)
}

func (h *HTTPTransport) listFoods(w http.ResponseWriter, r *http.Request) {
	listfoods.ListFoods(w, r, h.foods)
}

func (h *HTTPTransport) saveFood(w http.ResponseWriter, r *http.Request) {
	savefood.SaveFood(w, r, h.foods, h.profiles)
}

func (h *HTTPTransport) dailySummary(w http.ResponseWriter, r *http.Request) {
	dailysummary.DailySummary(w, r, h.reports, h.profiles)
}

func (h *HTTPTransport) registerCustomer(w http.ResponseWriter, r *http.Request) {
	registercustomer.RegisterCustomer(w, r, h.profiles)
}

func (h *HTTPTransport) registerShopOwner(w http.ResponseWriter, r *http.Request) {
	registershopowner.RegisterShopOwner(w, r, h.profiles)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
