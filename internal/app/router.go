package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pharmledger/pharmledger/internal/dispense"
	"github.com/pharmledger/pharmledger/internal/observability"
	"github.com/pharmledger/pharmledger/internal/reports"
	"github.com/pharmledger/pharmledger/internal/settings"
	"github.com/pharmledger/pharmledger/internal/stock"
	"github.com/pharmledger/pharmledger/internal/transfer"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	StockHandler    *stock.Handler
	DispenseHandler *dispense.Handler
	ReportsHandler  *reports.Handler
	TransferHandler *transfer.Handler
	SettingsHandler *settings.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/stock", params.StockHandler.MountRoutes)
	r.Route("/dispense", params.DispenseHandler.MountRoutes)
	r.Route("/reports", params.ReportsHandler.MountRoutes)
	r.Route("/transfer", params.TransferHandler.MountRoutes)
	r.Route("/settings", params.SettingsHandler.MountRoutes)

	return r
}
