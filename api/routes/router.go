package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ch-Lokesh-21/truestyle-backend/api/controllers"
	"github.com/Ch-Lokesh-21/truestyle-backend/api/middleware"
	addresssvc "github.com/Ch-Lokesh-21/truestyle-backend/internal/address"
	cartsvc "github.com/Ch-Lokesh-21/truestyle-backend/internal/cart"
	checkoutsvc "github.com/Ch-Lokesh-21/truestyle-backend/internal/checkout"
	exchangesvc "github.com/Ch-Lokesh-21/truestyle-backend/internal/exchanges"
	orderssvc "github.com/Ch-Lokesh-21/truestyle-backend/internal/orders"
	returnsvc "github.com/Ch-Lokesh-21/truestyle-backend/internal/returns"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/config"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/db"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/logger"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DBPinger    db.Pinger
	RedisPinger db.Pinger
	RateStore   middleware.RateStore
	Registry    *prometheus.Registry
	Cart        cartsvc.Service
	Checkout    checkoutsvc.Service
	Orders      orderssvc.Service
	Returns     returnsvc.Service
	Exchanges   exchangesvc.Service
	Addresses   *addresssvc.Repository
}

// NewRouter assembles the API surface.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	checkoutPolicy := middleware.NewRateLimitPolicy(
		"checkout",
		cfg.RateLimit.CheckoutWindow,
		cfg.RateLimit.CheckoutIPLimit,
		cfg.RateLimit.CheckoutUserLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, deps.RedisPinger))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.Cart, logg))
			r.Get("/availability", controllers.CartAvailability(deps.Cart, logg))
			r.Post("/", controllers.CartAdd(deps.Cart, logg))
			r.Put("/{itemId}", controllers.CartUpdate(deps.Cart, logg))
			r.Delete("/{itemId}", controllers.CartRemove(deps.Cart, logg))
			r.Post("/{itemId}/move-to-wishlist", controllers.CartMoveToWishlist(deps.Cart, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistList(deps.Cart, logg))
			r.Delete("/{itemId}", controllers.WishlistRemove(deps.Cart, logg))
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", controllers.AddressList(deps.Addresses, logg))
			r.Post("/", controllers.AddressCreate(deps.Addresses, logg))
			r.Delete("/{addressId}", controllers.AddressDelete(deps.Addresses, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(checkoutPolicy, deps.RateStore, logg))
				r.Post("/place-order-cod", controllers.PlaceCOD(deps.Checkout, logg))
				r.Post("/initiate-order", controllers.InitiateOrder(deps.Checkout, logg))
				r.Post("/confirm-order", controllers.ConfirmOrder(deps.Checkout, logg))
			})

			r.Route("/my", func(r chi.Router) {
				r.Get("/", controllers.OrderListMine(deps.Orders, logg))
				r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
				r.Put("/{orderId}/status", controllers.OrderStatusUpdate(deps.Orders, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePrivileged(logg))
				r.Get("/", controllers.OrderListAll(deps.Orders, logg))
				r.Put("/{orderId}/status", controllers.OrderStatusUpdate(deps.Orders, logg))
			})
		})

		r.Route("/returns", func(r chi.Router) {
			r.Get("/", controllers.ReturnList(deps.Returns, logg))
			r.Post("/", controllers.ReturnCreate(deps.Returns, logg))
			r.With(middleware.RequirePrivileged(logg)).
				Put("/{returnId}/status", controllers.ReturnDecision(deps.Returns, logg))
		})

		r.Route("/exchanges", func(r chi.Router) {
			r.Get("/", controllers.ExchangeList(deps.Exchanges, logg))
			r.Post("/", controllers.ExchangeCreate(deps.Exchanges, logg))
			r.With(middleware.RequirePrivileged(logg)).
				Put("/{exchangeId}/status", controllers.ExchangeDecision(deps.Exchanges, logg))
		})
	})

	return r
}
