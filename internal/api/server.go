// Package api provides the HTTP API server and handlers for the Bookshelf application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	authService    *service.AuthService
	bookService    *service.BookService
	reviewService  *service.ReviewService
	allowedOrigins []string
	router         *chi.Mux
	logger         *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(authService *service.AuthService, bookService *service.BookService, reviewService *service.ReviewService, allowedOrigins []string, logger *slog.Logger) *Server {
	s := &Server{
		authService:    authService,
		bookService:    bookService,
		reviewService:  reviewService,
		allowedOrigins: allowedOrigins,
		router:         chi.NewRouter(),
		logger:         logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints (public).
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.handleSignup)
			r.Post("/login", s.handleLogin)
		})

		r.Route("/books", func(r chi.Router) {
			// Search is deliberately public.
			r.Get("/search", s.handleSearchBooks)

			// Everything else requires auth.
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/", s.handleCreateBook)
				r.Get("/", s.handleListBooks)
				r.Get("/all", s.handleListAllBooks)
				r.Get("/{id}", s.handleGetBook)
				r.Patch("/{id}", s.handleUpdateBook)
				r.Delete("/{id}", s.handleDeleteBook)
				r.Post("/{id}/reviews", s.handleAddReview)
			})
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Patch("/{id}", s.handleUpdateReview)
			r.Delete("/{id}", s.handleDeleteReview)
		})
	})
}
