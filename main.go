package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/viktoriatyapkova/RPM/handlers"
	"github.com/viktoriatyapkova/RPM/lib/catalog"
	"github.com/viktoriatyapkova/RPM/lib/db"
	"github.com/viktoriatyapkova/RPM/lib/health"
	"github.com/viktoriatyapkova/RPM/lib/kinopoisk"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", slog.Any("error", err))
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "watchlist.db"
	}

	gormDB, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: db.NewLogger(logger),
	})
	if err != nil {
		logger.Error("Failed to open database", slog.String("path", dbPath), slog.Any("error", err))
		os.Exit(1)
	}

	if err := db.RunMigrations(gormDB, logger); err != nil {
		logger.Error("Failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}

	// Seeding runs to completion before the server accepts traffic. A
	// provider failure here is fatal rather than retried.
	client := kinopoisk.NewClient(os.Getenv("KINOPOISK_API_KEY"), logger)
	if err := catalog.Seed(context.Background(), gormDB, client, logger); err != nil {
		logger.Error("Failed to seed catalog", slog.Any("error", err))
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      newRouter(gormDB),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Starting server", slog.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Server exited")
}

func newRouter(gormDB *gorm.DB) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", health.Check(gormDB))

	r.Get("/movies", handlers.HandleMovies(gormDB))
	r.Get("/movies/search", handlers.HandleMovieSearch(gormDB))
	r.Get("/movies/{id}", handlers.HandleMovie(gormDB))

	r.Post("/users", handlers.HandleCreateUser(gormDB))
	r.Get("/users/{id}", handlers.HandleUser(gormDB))
	r.Put("/users/{id}", handlers.HandleUpdateUser(gormDB))

	r.Post("/users/{id}/watchlist/{movie_id}", handlers.HandleAddToWatchlist(gormDB))
	r.Delete("/users/{id}/watchlist/{movie_id}", handlers.HandleRemoveFromWatchlist(gormDB))
	r.Post("/users/{id}/watched/{movie_id}", handlers.HandleAddToWatched(gormDB))
	r.Delete("/users/{id}/watched/{movie_id}", handlers.HandleRemoveFromWatched(gormDB))

	return r
}
