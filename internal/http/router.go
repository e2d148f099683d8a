package http

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/airborne/server/internal/auth"
	"github.com/airborne/server/internal/http/handlers"
	"github.com/airborne/server/internal/middleware"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(userHandler *handlers.UserHandler, pushHandler *handlers.PushHandler, jwtService *auth.JWTService) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	healthHandler := handlers.NewHealthHandler()
	r.Get("/health", healthHandler.ServeHTTP)

	// Protected routes (require valid session token)
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(jwtService))

		r.Route("/users", func(r chi.Router) {
			r.Post("/bootstrap", userHandler.HandleBootstrap)
			r.Get("/me", userHandler.HandleMe)
		})

		r.Route("/push", func(r chi.Router) {
			r.Post("/tokens", pushHandler.HandleRegister)
			r.Delete("/tokens", pushHandler.HandleUnregister)
			r.Get("/tokens", pushHandler.HandleList)
			r.Post("/test", pushHandler.HandleSendTest)
		})
	})

	return r
}
