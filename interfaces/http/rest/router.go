// Package rest wires the HTTP surface of the service.
package rest

import (
	"net/http"

	"chirp/application/ports"
	"chirp/application/services"
	"chirp/infrastructure/config"
	"chirp/interfaces/http/rest/handlers"
	"chirp/interfaces/http/rest/middleware"
	"chirp/pkg/auth"
	"chirp/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg           *config.Config
	logger        *zap.Logger
	metrics       *observability.Metrics
	tokens        *auth.TokenService
	users         ports.UserRepository
	authService   *services.AuthService
	userService   *services.UserService
	postService   *services.PostService
	notifyService *services.NotificationService
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	metrics *observability.Metrics,
	tokens *auth.TokenService,
	users ports.UserRepository,
	authService *services.AuthService,
	userService *services.UserService,
	postService *services.PostService,
	notifyService *services.NotificationService,
) *Router {
	return &Router{
		cfg:           cfg,
		logger:        logger,
		metrics:       metrics,
		tokens:        tokens,
		users:         users,
		authService:   authService,
		userService:   userService,
		postService:   postService,
		notifyService: notifyService,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.cfg.EnableMetrics {
		router.Use(middleware.Metrics(rt.metrics))
	}

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)

	authHandler := handlers.NewAuthHandler(rt.authService, rt.logger, rt.cfg.MaxBodyBytes)
	userHandler := handlers.NewUserHandler(rt.userService, rt.logger, rt.cfg.MaxBodyBytes)
	postHandler := handlers.NewPostHandler(rt.postService, rt.logger, rt.cfg.MaxBodyBytes)
	notificationHandler := handlers.NewNotificationHandler(rt.notifyService, rt.logger)

	router.Route("/api", func(r chi.Router) {
		// Session endpoints; register and login are the only open routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate(rt.tokens, rt.users, rt.logger))
				r.Get("/me", authHandler.Me)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.Authenticate(rt.tokens, rt.users, rt.logger))
			r.Get("/profile/{username}", userHandler.Profile)
			r.Get("/suggested", userHandler.Suggested)
			r.Post("/follow/{id}", userHandler.Follow)
			r.Patch("/update", userHandler.Update)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Use(middleware.Authenticate(rt.tokens, rt.users, rt.logger))
			r.Get("/all", postHandler.All)
			r.Get("/following", postHandler.Following)
			r.Get("/user/{username}", postHandler.ByUser)
			r.Get("/likes/{id}", postHandler.Liked)
			r.Post("/create", postHandler.Create)
			r.Post("/like/{id}", postHandler.Like)
			r.Post("/comment/{id}", postHandler.Comment)
			r.Delete("/{id}", postHandler.Delete)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(middleware.Authenticate(rt.tokens, rt.users, rt.logger))
			r.Get("/", notificationHandler.List)
			r.Delete("/", notificationHandler.Clear)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
