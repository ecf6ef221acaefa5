package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/cardlyhq/cardly-backend/internal/handlers"
	"github.com/cardlyhq/cardly-backend/internal/middleware"
)

// Setup registers all API routes. Signup and signin carry the tighter
// per-IP rate limiter; everything else relies on the global one.
func Setup(r chi.Router, auth *handlers.AuthHandler, cards *handlers.CardHandler, upload *handlers.UploadHandler) {
	authLimit := middleware.AuthRateLimit()

	r.Group(func(r chi.Router) {
		r.Use(authLimit)
		r.Post("/api/auth/signup", auth.Signup)
		r.Post("/api/auth/signin", auth.Signin)
	})
	r.Post("/api/auth/logout", auth.Logout)
	r.Get("/api/auth/me", auth.Me)

	r.Post("/api/cards", cards.Create)
	r.Get("/api/cards", cards.List)
	r.Delete("/api/cards/{id}", cards.Delete)

	// Public card link: anyone with the id can view
	r.Get("/api/card/{id}", cards.GetPublic)

	r.Post("/api/upload", upload.Upload)
}
