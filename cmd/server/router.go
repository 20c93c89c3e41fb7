package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/hanzi-cloze/internal/api"
	apiMiddleware "github.com/phrazzld/hanzi-cloze/internal/api/middleware"
)

// setupRouter creates the router with all routes and middleware. The bare
// paths are kept alongside /api for clients of the original service.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))

	exerciseHandler := api.NewExerciseHandler(app.exerciseService, app.logger)
	translateHandler := api.NewTranslateHandler(app.translator, app.logger)
	healthHandler := api.NewHealthHandler(app.healthDeps(), app.logger)

	r.Post("/generate", exerciseHandler.Generate)
	r.Get("/task/{id}", exerciseHandler.GetTask)
	r.Post("/translate", translateHandler.Translate)
	r.Get("/health", healthHandler.Health)
	r.Get("/test-connection", healthHandler.TestConnection)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", exerciseHandler.Generate)
		r.Get("/tasks/{id}", exerciseHandler.GetTask)
		r.Post("/translate", translateHandler.Translate)
		r.Get("/exercises/{word}", exerciseHandler.ListArchived)
	})

	return r
}
