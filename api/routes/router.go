package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voltline/voltline-backend/api/controllers"
	"github.com/voltline/voltline-backend/api/middleware"
	internalauth "github.com/voltline/voltline-backend/internal/auth"
	"github.com/voltline/voltline-backend/internal/checkout"
	"github.com/voltline/voltline-backend/internal/inventory"
	"github.com/voltline/voltline-backend/internal/notifications"
	"github.com/voltline/voltline-backend/internal/orders"
	"github.com/voltline/voltline-backend/internal/payments"
	"github.com/voltline/voltline-backend/internal/returns"
	"github.com/voltline/voltline-backend/internal/stores"
	"github.com/voltline/voltline-backend/pkg/config"
	"github.com/voltline/voltline-backend/pkg/db"
	"github.com/voltline/voltline-backend/pkg/enums"
	"github.com/voltline/voltline-backend/pkg/logger"
	"github.com/voltline/voltline-backend/pkg/metrics"
	"github.com/voltline/voltline-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	metricsRegistry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	authService internalauth.Service,
	checkoutService checkout.Service,
	ordersService orders.Service,
	paymentsService payments.Service,
	returnsService returns.Service,
	notificationsService notifications.Service,
	storesService stores.Service,
	inventoryRepo inventory.Repository,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Metrics(httpMetrics),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.RateLimit.LoginWindow,
		cfg.RateLimit.LoginIPLimit,
		cfg.RateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.RateLimit.RegisterWindow,
		cfg.RateLimit.RegisterIPLimit,
		cfg.RateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if metricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Post("/validate", controllers.PublicValidate(logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(
				middleware.AuthRateLimit(registerPolicy, redisClient, logg),
				middleware.Idempotency(redisClient, logg),
			).Post("/register", controllers.Register(authService, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.Login(authService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(redisClient, logg))

			r.Get("/ping", controllers.PrivatePing())

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", controllers.PlaceOrder(checkoutService, logg))
				r.Get("/", controllers.ListMyOrders(ordersService, logg))
				r.Get("/{orderId}", controllers.GetOrder(ordersService, logg))
				r.Post("/{orderId}/payment", controllers.ConfirmPayment(paymentsService, logg))
				r.Post("/{orderId}/items/{itemId}/return", controllers.RequestReturn(returnsService, logg))
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(notificationsService, logg))
				r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
				r.Get("/ping", controllers.AdminPing())
				r.Route("/orders", func(r chi.Router) {
					r.Get("/", controllers.AdminListOrders(ordersService, logg))
					r.Post("/{orderId}/verify", controllers.AdminVerifyPayment(ordersService, logg))
					r.Post("/{orderId}/correction", controllers.AdminRequestCorrection(ordersService, logg))
					r.Post("/{orderId}/ship", controllers.AdminMarkShipped(ordersService, logg))
					r.Post("/{orderId}/dispatch", controllers.AdminMarkOutForDelivery(ordersService, logg))
					r.Post("/{orderId}/deliver", controllers.AdminMarkDelivered(ordersService, logg))
					r.Post("/{orderId}/items/{itemId}/return/resolve", controllers.ResolveReturn(returnsService, logg))
				})
			})

			r.Route("/seller", func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.RoleSeller, logg))
				r.Use(middleware.RequireStore(logg))
				r.Get("/store", controllers.SellerMyStore(storesService, logg))
				r.Get("/inventory", controllers.SellerInventory(inventoryRepo, logg))
				r.Route("/orders", func(r chi.Router) {
					r.Get("/", controllers.SellerListOrders(ordersService, logg))
					r.Post("/{orderId}/accept", controllers.SellerAcceptOrder(ordersService, logg))
					r.Post("/{orderId}/decline", controllers.SellerDeclineOrder(ordersService, logg))
					r.Post("/{orderId}/dispatch", controllers.SellerMarkOutForDelivery(ordersService, logg))
					r.Post("/{orderId}/deliver", controllers.SellerMarkDelivered(ordersService, logg))
					r.Post("/{orderId}/items/{itemId}/return/resolve", controllers.ResolveReturn(returnsService, logg))
				})
			})
		})
	})

	return r
}
