package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/atinyakov/LeafGuard/internal/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the
// LeafGuard API. It applies request logging globally, JSON content-type
// enforcement on the auth endpoints, and bearer-token authentication on
// everything that touches a user's data.
//
// Routes:
//
//	GET    /api/ping          → liveness probe
//	POST   /api/signup        → authHandler.Signup
//	POST   /api/login         → authHandler.Login
//	POST   /api/predict       → predictHandler.Predict
//	GET    /api/admin/users   → authHandler.ListUsers   (bearer, admin)
//	POST   /api/history       → historyHandler.Create   (bearer)
//	GET    /api/history       → historyHandler.List     (bearer)
//	DELETE /api/history/{id}  → historyHandler.Delete   (bearer)
func NewRouter(
	authHandler *AuthHandler,
	historyHandler *HistoryHandler,
	predictHandler *PredictHandler,
	verifier middleware.TokenVerifier,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	// Mount API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", predictHandler.Ping)

		// Public endpoints
		r.Group(func(r chi.Router) {
			// Only allow requests with Content-Type: application/json
			r.Use(chiMiddleware.AllowContentType("application/json"))
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
		})

		// Classifier boundary: multipart upload, no auth; restricting
		// access is a deployment concern
		r.Post("/predict", predictHandler.Predict)

		// Protected group: requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(verifier))
			r.Get("/admin/users", authHandler.ListUsers)
			r.Post("/history", historyHandler.Create)
			r.Get("/history", historyHandler.List)
			r.Delete("/history/{id}", historyHandler.Delete)
		})
	})

	return r
}
