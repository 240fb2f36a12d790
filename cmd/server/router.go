package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tuluyhansozen/Lexical-sub002/internal/api"
	"github.com/tuluyhansozen/Lexical-sub002/internal/platform/logger"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(app.requestLogger)

	reviewHandler := api.NewReviewHandler(app.reviewService, app.logger)
	calibrationHandler := api.NewCalibrationHandler(app.calibrationService, app.logger)
	syncHandler := api.NewSyncHandler(app.syncEngine, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/reviews", reviewHandler.SubmitReview)
		r.Post("/exposures", reviewHandler.SubmitExposure)
		r.Post("/calibration", calibrationHandler.Calibrate)
		r.Post("/sync", syncHandler.Sync)

		r.Get("/words/due", reviewHandler.DueWords)
		r.Post("/words/ignore", reviewHandler.IgnoreWord)
		r.Post("/words/unignore", reviewHandler.UnignoreWord)

		r.Get("/profile", reviewHandler.Profile)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}

// requestLogger stores a request-scoped logger in the context so
// downstream handlers pick up the request ID automatically.
func (app *application) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := app.logger
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			log = log.With("request_id", reqID)
		}
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), log)))
	})
}
