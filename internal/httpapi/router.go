package httpapi

import (
	"net/http"
	"time"

	"github.com/ronnyMakhuddin/PasarKalikatir/internal/accounts"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/catalog"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/config"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/idempotency"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/orders"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/platform/observability"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/reports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const requestTimeout = 60 * time.Second

// Services are the workflows exposed over HTTP.
type Services struct {
	Intake         *orders.IntakeService
	Flow           *orders.SellerFlow
	Status         *orders.StatusService
	Cleanup        *orders.CleanupService
	Catalog        *catalog.Service
	Accounts       *accounts.Service
	Reports        *reports.Service
	Idempotency    idempotency.Store
	IdempotencyTTL time.Duration
}

type Handler struct {
	svc    Services
	logger observability.Logger
}

// NewRouter builds the HTTP surface wrapped in OpenTelemetry server spans.
func NewRouter(svc Services, logger observability.Logger) http.Handler {
	h := &Handler{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(h.identify)

		r.Get("/products", h.ListProducts)
		r.Get("/products/{id}", h.GetProduct)
		r.With(h.idempotent).Post("/checkout", h.Checkout)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Post("/accounts", h.Register)
			r.Get("/accounts/me", h.Me)
			r.Post("/orders/{id}/status", h.TransitionOrder)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireSeller)
			r.Post("/products", h.AddProduct)
			r.Patch("/products/{id}", h.UpdateProduct)
			r.Post("/seller/orders/{id}/confirm", h.ConfirmOrder)
			r.Post("/seller/orders/{id}/reject", h.RejectOrder)
			r.Post("/orders/{id}/reconcile", h.ReconcileOrder)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Delete("/products/{id}", h.DeleteProduct)
			r.Route("/admin", func(r chi.Router) {
				r.Delete("/orders/{id}", h.DeleteOrder)
				r.Get("/cleanup", h.ScanInvalidOrders)
				r.Post("/cleanup", h.PurgeInvalidOrders)
				r.Get("/sellers", h.ListSellers)
				r.Post("/sellers/{id}/verify", h.VerifySeller)
				r.Post("/sellers/{id}/reject", h.RejectSeller)
				r.Get("/reports/summary", h.ReportSummary)
				r.Get("/reports/orders.csv", h.ExportOrders)
			})
		})
	})

	return otelhttp.NewHandler(r, config.ServiceName)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok", "service": config.ServiceName})
}
