package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopcore-labs/shopcore-backend/api/controllers"
	webhookcontrollers "github.com/shopcore-labs/shopcore-backend/api/controllers/webhooks"
	"github.com/shopcore-labs/shopcore-backend/api/middleware"
	cartsvc "github.com/shopcore-labs/shopcore-backend/internal/cart"
	checkoutsvc "github.com/shopcore-labs/shopcore-backend/internal/checkout"
	couponsvc "github.com/shopcore-labs/shopcore-backend/internal/coupons"
	ordersvc "github.com/shopcore-labs/shopcore-backend/internal/orders"
	stripewebhook "github.com/shopcore-labs/shopcore-backend/internal/webhooks/stripe"
	"github.com/shopcore-labs/shopcore-backend/pkg/config"
	"github.com/shopcore-labs/shopcore-backend/pkg/db"
	"github.com/shopcore-labs/shopcore-backend/pkg/logger"
	"github.com/shopcore-labs/shopcore-backend/pkg/metrics"
	"github.com/shopcore-labs/shopcore-backend/pkg/redis"
	"github.com/shopcore-labs/shopcore-backend/pkg/stripe"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	Stripe      *stripe.Client
	Cart        cartsvc.Service
	Checkout    checkoutsvc.Service
	Coupons     couponsvc.Service
	Orders      ordersvc.Service
	Webhook     *stripewebhook.Service
	WebhookGd   *stripewebhook.IdempotencyGuard
	HTTPMetrics *metrics.HTTPMetrics
	Registry    *prometheus.Registry
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(d.Logger),
		middleware.RequestID(d.Logger),
		middleware.Logging(d.Logger),
		middleware.CORS(),
	)
	if d.HTTPMetrics != nil {
		r.Use(d.HTTPMetrics.Middleware)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(d.Config))
		r.Get("/ready", controllers.HealthReady(d.Config, d.Logger, d.DB, d.Redis))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	// Stripe authenticates this route with its signature header, not a token.
	r.Post("/webhook-checkout", webhookcontrollers.StripeWebhook(d.Webhook, d.Stripe, d.WebhookGd, d.Logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(d.Config.JWT, d.Logger))
		r.Use(middleware.Idempotency(d.Redis, d.Config.Checkout, d.Logger))

		r.Route("/cart", func(r chi.Router) {
			r.Post("/", controllers.CartAdd(d.Cart, d.Logger))
			r.Get("/", controllers.CartFetch(d.Cart, d.Logger))
			r.Delete("/", controllers.CartClear(d.Cart, d.Logger))
			r.Put("/applyCoupon", controllers.CartApplyCoupon(d.Cart, d.Logger))
			r.Put("/{itemId}", controllers.CartUpdateItem(d.Cart, d.Logger))
			r.Delete("/{itemId}", controllers.CartRemoveItem(d.Cart, d.Logger))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/checkout-session/{cartId}", controllers.OrderCheckoutSession(d.Checkout, d.Logger))
			r.Post("/{cartId}", controllers.OrderCreateCash(d.Checkout, d.Logger))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("admin", d.Logger))
				r.Get("/", controllers.OrdersList(d.Orders, d.Logger))
				r.Get("/{orderId}", controllers.OrderDetail(d.Orders, d.Logger))
				r.Put("/{orderId}/pay", controllers.OrderMarkPaid(d.Orders, d.Logger))
				r.Put("/{orderId}/deliver", controllers.OrderMarkDelivered(d.Orders, d.Logger))
			})
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Use(middleware.RequireRole("admin", d.Logger))
			r.Post("/", controllers.CouponCreate(d.Coupons, d.Logger))
			r.Get("/", controllers.CouponsList(d.Coupons, d.Logger))
			r.Get("/{couponId}", controllers.CouponDetail(d.Coupons, d.Logger))
			r.Put("/{couponId}", controllers.CouponUpdate(d.Coupons, d.Logger))
			r.Delete("/{couponId}", controllers.CouponDelete(d.Coupons, d.Logger))
		})
	})

	return r
}
