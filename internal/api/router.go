package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/api/handlers"
	custommiddleware "github.com/pdekker/Portfolio-Dashboard-Analytics/internal/api/middleware"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/config"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/service"
)

// Services bundles the service dependencies the router wires into handlers.
type Services struct {
	System    *service.SystemService
	Analytics *service.AnalyticsService
	Snapshot  *service.SnapshotService
	Live      *service.LiveService
	SavedView *service.SavedViewService
	Provider  *service.ProviderService
}

// NewRouter creates and configures the HTTP router
func NewRouter(services Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(services.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
			r.Get("/status", systemHandler.Status)
		})

		// Analytics operations over the snapshot history and live data
		r.Route("/analytics", func(r chi.Router) {
			analyticsHandler := handlers.NewAnalyticsHandler(services.Analytics)
			r.Get("/aggregate", analyticsHandler.Aggregate)
			r.Get("/aggregate/export", analyticsHandler.ExportAggregate)
			r.Get("/compare", analyticsHandler.Compare)
			r.Get("/compare/live", analyticsHandler.CompareLive)
			r.Get("/risk", analyticsHandler.Risk)
			r.Get("/attribution", analyticsHandler.Attribution)
			r.Get("/reconcile", analyticsHandler.Reconcile)
		})

		// Snapshot history management
		r.Route("/snapshots", func(r chi.Router) {
			snapshotHandler := handlers.NewSnapshotHandler(services.Snapshot, services.Live)
			r.Get("/", snapshotHandler.Dates)
			r.Post("/capture", snapshotHandler.Capture)
			r.Get("/{date}", snapshotHandler.Snapshot)
			r.Put("/{date}", snapshotHandler.Replace)
		})

		// Saved view presets
		r.Route("/views", func(r chi.Router) {
			viewHandler := handlers.NewSavedViewHandler(services.SavedView)
			r.Get("/", viewHandler.Views)
			r.Post("/", viewHandler.CreateView)
			r.Get("/{id}", viewHandler.View)
			r.Put("/{id}", viewHandler.UpdateView)
			r.Delete("/{id}", viewHandler.DeleteView)
		})

		// Market-data provider credentials
		r.Route("/providers", func(r chi.Router) {
			providerHandler := handlers.NewProviderHandler(services.Provider)
			r.Get("/{provider}/token", providerHandler.Token)
			r.Put("/{provider}/token", providerHandler.SetToken)
		})
	})

	return r
}
