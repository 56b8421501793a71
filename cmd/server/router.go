package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/errata-app/errata-api/internal/api"
	"github.com/errata-app/errata-api/internal/api/middleware"
)

// newRouter builds the HTTP routing table for the application.
func newRouter(app *application) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.TraceMiddleware)
	r.Use(chimiddleware.Recoverer)

	authMiddleware := middleware.NewAuthMiddleware(app.tokenService)

	errorHandler := api.NewErrorHandler(app.reviewService, app.logger)
	revisionHandler := api.NewRevisionHandler(app.reviewService, app.logger)
	progressHandler := api.NewProgressHandler(app.progressionService, app.logger)
	leaderboardHandler := api.NewLeaderboardHandler(app.leaderboardService, app.logger)
	collectionHandler := api.NewCollectionHandler(app.collectionService, app.logger)
	assistantHandler := api.NewAssistantHandler(app.generator, app.logger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		// All API routes require an authenticated user.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/errors", errorHandler.Create)
			r.Get("/errors", errorHandler.List)
			r.Post("/errors/{id}/archive", errorHandler.Archive)

			r.Get("/revision/due", revisionHandler.Due)
			r.Get("/revision/upcoming", revisionHandler.Upcoming)
			r.Post("/revision/{id}/outcome", revisionHandler.RecordOutcome)

			r.Get("/progress", progressHandler.Get)
			r.Get("/leaderboard", leaderboardHandler.Get)

			r.Post("/collection", collectionHandler.Create)
			r.Get("/collection", collectionHandler.List)

			r.Post("/ai/explain", assistantHandler.Explain)
			r.Post("/ai/plan", assistantHandler.Plan)
		})
	})

	return r
}
