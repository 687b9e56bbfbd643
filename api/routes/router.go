package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vuhoang/marketplace-backend/api/controllers"
	"github.com/vuhoang/marketplace-backend/api/middleware"
	"github.com/vuhoang/marketplace-backend/internal/notifications"
	"github.com/vuhoang/marketplace-backend/internal/orders"
	"github.com/vuhoang/marketplace-backend/internal/payments"
	"github.com/vuhoang/marketplace-backend/pkg/config"
	"github.com/vuhoang/marketplace-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	ordersSvc orders.Service,
	paymentsSvc payments.Service,
	notificationsSvc notifications.Service,
	readyChecks map[string]func() error,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readyChecks))
	})

	// The gateway redirects the customer's browser here; no bearer token.
	r.Get("/api/v1/payments/return", controllers.PaymentReturn(paymentsSvc, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(ordersSvc, logg))
			r.Get("/", controllers.ListOrders(ordersSvc, logg))
			r.Get("/{orderId}", controllers.GetOrder(ordersSvc, logg))
			r.Patch("/{orderId}/status", controllers.UpdateOrderStatus(ordersSvc, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsSvc, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsSvc, logg))
		})
	})

	return r
}
