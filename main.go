package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"skillbridge-api/internal/config"
	"skillbridge-api/internal/container"
	"skillbridge-api/internal/handler"
	"skillbridge-api/internal/middleware"
	"skillbridge-api/pkg/logger"
)

// Resources holds all resources that need cleanup
type Resources struct {
	container *container.Container
	server    *http.Server
	log       *logger.Logger
	mu        sync.Mutex
	closed    bool
}

// Cleanup gracefully closes all resources
func (r *Resources) Cleanup(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error

	r.log.Info("Starting graceful shutdown...")

	// Stop accepting new requests first
	if r.server != nil {
		r.log.Info("Shutting down HTTP server...")
		if err := r.server.Shutdown(ctx); err != nil {
			r.log.WithError(err).Error("Failed to shutdown HTTP server")
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		}
	}

	if r.container != nil {
		r.log.Info("Stopping realtime listener...")
		r.container.Listener.Stop()

		r.log.Info("Stopping session store...")
		r.container.Sessions.Stop()

		if r.container.Redis != nil {
			healthCtx, healthCancel := context.WithTimeout(ctx, 2*time.Second)
			if err := r.container.Redis.Health(healthCtx); err != nil {
				r.log.WithError(err).Warn("Redis health check failed before closing")
			}
			healthCancel()

			if err := r.container.Redis.Close(); err != nil {
				r.log.WithError(err).Error("Failed to close Redis connection")
				errs = append(errs, fmt.Errorf("Redis close: %w", err))
			}
		}

		if r.container.DB != nil {
			r.container.DB.Close()
			r.log.Info("Database connection pool closed")
		}
	}

	if len(errs) > 0 {
		r.log.WithField("error_count", len(errs)).Error("Cleanup completed with errors")
		return fmt.Errorf("cleanup completed with %d errors: %v", len(errs), errs)
	}

	r.log.Info("Graceful shutdown completed successfully")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(map[string]interface{}{
		"port":        cfg.Port,
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
	}).Info("Starting skillbridge-api server")

	ctx := context.Background()

	c, err := container.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create container")
	}

	if err := c.Sessions.Start(ctx); err != nil {
		log.WithError(err).Fatal("Failed to start session store")
	}
	if err := c.Listener.Start(ctx); err != nil {
		log.WithError(err).Fatal("Failed to start realtime listener")
	}

	router := setupRouter(c)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   0, // SSE streams stay open; per-route timeouts cover the rest
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	resources := &Resources{
		container: c,
		server:    server,
		log:       log,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := resources.Cleanup(cleanupCtx); err != nil {
			log.WithError(err).Error("Cleanup completed with errors")
		}
	}()

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Server starting on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Server error occurred")
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErrChan:
		log.WithError(err).Error("Server failed, initiating shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := resources.Cleanup(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown completed with errors")
		os.Exit(1)
	}

	log.Info("Application shutdown complete")
}

// setupRouter configures and returns the HTTP router
func setupRouter(c *container.Container) *chi.Mux {
	cfg := c.GetConfig()
	log := c.GetLogger()

	r := chi.NewRouter()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins

	r.Use(middleware.CORS(corsConfig, log))
	r.Use(middleware.RequestID(log))
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))

	healthHandler := handler.NewHealthHandler(c)
	authHandler := handler.NewAuthHandler(c.Accounts, c.Sessions, log)
	profileHandler := handler.NewProfileHandler(c.Reconciler, c.ProfileRepo, log)
	occupationHandler := handler.NewOccupationHandler(c.Matching, log)
	assessmentHandler := handler.NewAssessmentHandler(c.Assessments, log)
	adminHandler := handler.NewAdminHandler(c.Admin, log)
	communityHandler := handler.NewCommunityHandler(c.Community, c.Listener, log)
	statsHandler := handler.NewStatsHandler(c.Stats, log)

	r.Get("/health", healthHandler.Check)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/signup", authHandler.SignUp)
		r.Post("/auth/signin", authHandler.SignIn)
		r.Get("/auth/session", authHandler.Session)
		r.Get("/stats/platform", statsHandler.Platform)
		r.Get("/occupations/trending", occupationHandler.Trending)

		// Search personalizes when a token is present. The auth-event
		// feed also sits here: a signed-out client may report sign-out,
		// but any user-bearing event takes its identity from the token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(c.AuthService, log))
			r.Post("/auth/events", authHandler.AuthEvent)
			r.Get("/occupations/search", occupationHandler.Search)
			r.Get("/occupations/{id}", occupationHandler.Detail)
		})

		// Authenticated endpoints, any role
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(c.AuthService, log))
			r.Use(middleware.Guard(c.Roles, middleware.AnyAuthenticated(), log))

			r.Post("/auth/signout", authHandler.SignOut)
			r.Post("/profile/ensure", profileHandler.Ensure)
			r.Get("/profile/me", profileHandler.Me)
			r.Patch("/profile/me", profileHandler.Update)
		})

		// User area: admins are redirected to their own dashboard
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(c.AuthService, log))
			r.Use(middleware.Guard(c.Roles, middleware.UserOnly(), log))

			r.Get("/occupations/recommendations", occupationHandler.Recommendations)
			r.Put("/occupations/current", occupationHandler.SetCurrent)

			r.Get("/assessment/occupations/{id}/groups", assessmentHandler.WizardGroups)
			r.Post("/assessment/submit", assessmentHandler.Submit)
			r.Get("/assessment/skills", assessmentHandler.MySkills)

			r.Post("/goals", assessmentHandler.SetGoal)
			r.Get("/goals/progress", assessmentHandler.GoalProgress)

			r.Get("/community/channel", communityHandler.GeneralChannel)
			r.Get("/community/channels/{id}/messages", communityHandler.Messages)
			r.Post("/community/channels/{id}/messages", communityHandler.Post)
			r.Get("/community/channels/{id}/stream", communityHandler.Stream)
		})

		// Admin area
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(c.AuthService, log))
			r.Use(middleware.Guard(c.Roles, middleware.AdminOnly(), log))

			r.Get("/stats", adminHandler.Stats)
			r.Get("/users", adminHandler.Users)
			r.Get("/users/{id}", adminHandler.UserDetail)
			r.Put("/users/{id}/role", adminHandler.SetRole)
			r.Delete("/users/{id}", adminHandler.DeleteUser)
			r.Get("/occupations", adminHandler.Occupations)
		})
	})

	return r
}
