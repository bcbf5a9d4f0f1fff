package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/schemedesk/schemedesk-backend/api/controllers"
	"github.com/schemedesk/schemedesk-backend/api/middleware"
	"github.com/schemedesk/schemedesk-backend/internal/approval"
	"github.com/schemedesk/schemedesk-backend/internal/catalog"
	settlementsvc "github.com/schemedesk/schemedesk-backend/internal/settlement"
	"github.com/schemedesk/schemedesk-backend/pkg/config"
	"github.com/schemedesk/schemedesk-backend/pkg/db"
	"github.com/schemedesk/schemedesk-backend/pkg/logger"
	"github.com/schemedesk/schemedesk-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	catalogService catalog.Service,
	approvalService approval.Service,
	settlementService settlementsvc.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Idempotency(redisClient, logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/schemes", func(r chi.Router) {
		r.Post("/", controllers.CreateScheme(catalogService, logg))
		r.Get("/", controllers.ListSchemes(catalogService, logg))
		r.Get("/{schemeId}", controllers.GetScheme(catalogService, logg))
		r.Post("/{schemeId}/decision", controllers.DecideScheme(approvalService, logg))
		r.Post("/{schemeId}/resubmit", controllers.ResubmitScheme(approvalService, logg))
		r.Get("/{schemeId}/approvals", controllers.ApprovalHistory(approvalService, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(catalogService, logg))
	})

	r.Route("/api/v1/sales", func(r chi.Router) {
		r.Post("/", controllers.SettleSale(settlementService, logg))
		r.Get("/", controllers.ListSales(catalogService, logg))
	})

	return r
}
