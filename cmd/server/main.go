package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/cardlyhq/cardly-backend/internal/config"
	"github.com/cardlyhq/cardly-backend/internal/handlers"
	"github.com/cardlyhq/cardly-backend/internal/kv"
	"github.com/cardlyhq/cardly-backend/internal/middleware"
	"github.com/cardlyhq/cardly-backend/internal/routes"
	"github.com/cardlyhq/cardly-backend/internal/services"
	"github.com/cardlyhq/cardly-backend/internal/store"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	// Key-value store handle (nil means in-memory fallback for the whole
	// process; new credentials require a restart)
	rdb := kv.Client()
	if rdb != nil {
		log.Println("✅ Key-value store configured")
	} else {
		log.Println("⚠️  No key-value store configured. Cards and accounts will not survive a restart.")
	}
	kvStore := kv.Wrap(rdb)

	// The in-memory fallback is owned here and shared by reference so every
	// service degrades to the same process-lifetime state.
	mem := store.NewMemoryStore()
	cardStore := store.NewCardStore(kvStore, mem)
	userStore := store.NewUserStore(kvStore, mem)
	sessions := services.NewSessionService(kvStore, mem)

	// Cloudinary is optional; without it POST /api/upload reports 503
	var uploads *services.CloudinaryService
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		svc, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v", err)
			log.Println("File uploads will not be available")
		} else {
			uploads = svc
			log.Println("✅ Cloudinary service initialized")
		}
	} else {
		log.Println("Warning: Cloudinary credentials not found. File uploads will not be available")
	}

	authHandler := handlers.NewAuthHandler(userStore, sessions, cfg.IsProduction())
	cardHandler := handlers.NewCardHandler(cardStore, sessions, cfg.FrontendURL)
	uploadHandler := handlers.NewUploadHandler(uploads, sessions)

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.IsProduction() {
		r.Use(middleware.SecurityHeaders)
		r.Use(middleware.GlobalRateLimit())
		log.Println("✅ Production security enabled (security headers, per-IP rate limiting)")
	}

	// Health check (no auth)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.Setup(r, authHandler, cardHandler, uploadHandler)

	log.Printf("🚀 Cardly backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
