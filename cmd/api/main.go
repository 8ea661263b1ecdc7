package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/upascal/fast-api-backend-template/internal/auth"
	"github.com/upascal/fast-api-backend-template/internal/config"
	"github.com/upascal/fast-api-backend-template/internal/db"
	"github.com/upascal/fast-api-backend-template/internal/handlers"
	"github.com/upascal/fast-api-backend-template/internal/middleware"
	"github.com/upascal/fast-api-backend-template/internal/store"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", slog.Any("error", err))
		os.Exit(1)
	}

	log := newLogger(cfg)

	conn, err := db.Connect(cfg)
	if err != nil {
		log.Error("db connect", slog.Any("error", err))
		os.Exit(1)
	}
	defer conn.Close()

	if err := db.Migrate(context.Background(), conn); err != nil {
		log.Error("db migrate", slog.Any("error", err))
		os.Exit(1)
	}

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		log.Error("token issuer", slog.Any("error", err))
		os.Exit(1)
	}

	users := store.New(conn)
	authSvc := auth.NewService(users, tokens, cfg.AccessTokenTTL())
	guard := middleware.NewAuth(tokens, users)
	h := handlers.NewHandler(users, authSvc, log, version)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: newRouter(cfg, log, h, guard),
	}

	go func() {
		log.Info("listening", slog.String("addr", srv.Addr), slog.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server exited")
}

func newRouter(cfg *config.Config, log *slog.Logger, h *handlers.Handler, guard *middleware.Auth) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedHeaders:   cfg.CORSHeaders,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: true,
	}))

	r.Get("/health", h.Health.Check)

	// Public
	r.Post("/auth/token", h.Auth.Token)
	r.Post("/users", h.Users.Create)

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireUser)

		r.Get("/auth/me", h.Auth.Me)
		r.Get("/users/{id}", h.Users.Get)
		r.Put("/users/{id}", h.Users.Update)
		r.Delete("/users/{id}", h.Users.Delete)
	})

	// Superuser only
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireSuperuser)

		r.Get("/users", h.Users.List)
	})

	return r
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Environment == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}
