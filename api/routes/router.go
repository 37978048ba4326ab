package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/quotewise/quotewise-backend/api/controllers"
	"github.com/quotewise/quotewise-backend/api/middleware"
	"github.com/quotewise/quotewise-backend/internal/bindings"
	"github.com/quotewise/quotewise-backend/internal/inventory"
	"github.com/quotewise/quotewise-backend/internal/quotations"
	"github.com/quotewise/quotewise-backend/internal/ratios"
	"github.com/quotewise/quotewise-backend/internal/reconcile"
	"github.com/quotewise/quotewise-backend/internal/suppliers"
	"github.com/quotewise/quotewise-backend/pkg/config"
	"github.com/quotewise/quotewise-backend/pkg/logger"
)

// Services bundles the domain services mounted by the router.
type Services struct {
	Reconcile  reconcile.Service
	Quotations quotations.Service
	Inventory  inventory.Service
	Bindings   bindings.Service
	Ratios     ratios.Service
	Suppliers  suppliers.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	gatherer prometheus.Gatherer,
	svcs Services,
	checks ...controllers.ReadinessCheck,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.SessionID(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, checks...))
	})
	r.Method(http.MethodGet, "/metrics", controllers.Metrics(gatherer))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/reconcile", func(r chi.Router) {
			r.Post("/", controllers.ReconcileRun(svcs.Reconcile, logg))
			r.Get("/view", controllers.ReconcileView(svcs.Reconcile, logg))
			r.Delete("/view", controllers.ReconcileReset(svcs.Reconcile, logg))
			r.Post("/refresh", controllers.ReconcileRefresh(svcs.Reconcile, logg))
		})

		r.Route("/quotations", func(r chi.Router) {
			r.Get("/", controllers.QuotationsList(svcs.Quotations, logg))
			r.Post("/import", controllers.QuotationsImport(svcs.Quotations, logg))
			r.Post("/refresh-computed", controllers.QuotationsRefreshComputed(svcs.Quotations, logg))
			r.Patch("/{quotationId}/remark", controllers.QuotationRemark(svcs.Quotations, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.InventoryList(svcs.Inventory, logg))
			r.Post("/upc-sku", controllers.InventoryUPCSku(svcs.Inventory, logg))
		})

		r.Route("/bindings", func(r chi.Router) {
			r.Get("/", controllers.BindingGet(svcs.Bindings, logg))
			r.Put("/", controllers.BindingSet(svcs.Bindings, logg))
			r.Delete("/", controllers.BindingClear(svcs.Bindings, logg))
			r.Post("/lookup", controllers.BindingsLookup(svcs.Bindings, logg))
		})

		r.Route("/ratios", func(r chi.Router) {
			r.Get("/", controllers.RatiosGet(svcs.Ratios, logg))
			r.Put("/", controllers.RatioSet(svcs.Ratios, logg))
			r.Delete("/", controllers.RatioClear(svcs.Ratios, logg))
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Post("/names-by-sku", controllers.SupplierNamesBySKU(svcs.Suppliers, logg))
			r.Get("/store-relations", controllers.SupplierStoreRelations(svcs.Suppliers, logg))
		})
	})

	return r
}
