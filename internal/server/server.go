// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: New opens the store and wires
//
//	sqlite.DB → services → handlers → chi routes
//
// so no other package constructs its own dependencies.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/trivia-league/internal/auth"
	"github.com/sakif/trivia-league/internal/config"
	"github.com/sakif/trivia-league/internal/handler"
	"github.com/sakif/trivia-league/internal/mailer"
	"github.com/sakif/trivia-league/internal/metrics"
	"github.com/sakif/trivia-league/internal/middleware"
	sqliteRepo "github.com/sakif/trivia-league/internal/repository/sqlite"
	"github.com/sakif/trivia-league/internal/service"
)

const shutdownTimeout = 30 * time.Second

// Server owns the database connection and the router. The connection is
// closed when Run returns.
type Server struct {
	router  *chi.Mux
	config  *config.Config
	logger  *slog.Logger
	db      *sqliteRepo.DB
	metrics *metrics.Metrics
}

// Option tweaks a Server before its routes are built.
type Option func(*options)

type options struct {
	mailer    mailer.Mailer
	passwords *auth.PasswordService
}

// WithMailer replaces the mailer chosen from configuration.
func WithMailer(m mailer.Mailer) Option {
	return func(o *options) { o.mailer = m }
}

// WithPasswordService replaces the default bcrypt cost, mainly for tests.
func WithPasswordService(p *auth.PasswordService) Option {
	return func(o *options) { o.passwords = p }
}

// New opens the store and builds the full handler tree.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	o := options{passwords: auth.NewPasswordService()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.mailer == nil {
		o.mailer = newMailer(cfg, logger)
	}

	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	if cfg.MetricsEnabled {
		s.metrics = metrics.New()
	}

	if err := s.setupRoutes(o); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

func newMailer(cfg *config.Config, logger *slog.Logger) mailer.Mailer {
	if cfg.SMTP.Host == "" {
		return mailer.NewLog(logger)
	}
	return mailer.NewSMTP(mailer.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
	})
}

// setupRoutes registers:
//
//	GET  /leaderboard                              global ranking
//	GET  /leaderboard/{username}                   league + following view
//	POST /follow/{username}/{playerToFollow}       *
//	POST /unfollow/{username}/{playerToUnfollow}   *
//	GET  /getUserPoints/{username}
//	POST /updatePoints                             *
//	POST /quizResult                               *
//	GET  /profile/{username}
//	GET  /me
//	POST /register, /login, /logout                *
//	GET  /data, /datacategories
//	POST /addquestions, /addcategories             *
//	POST /suggestcategory                          *
//	GET  /healthz, /metrics
//
// Routes marked * are rate limited per client IP.
func (s *Server) setupRoutes(o options) error {
	var tokens *auth.TokenService
	if s.config.AuthEnabled() {
		var err error
		tokens, err = auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
		if err != nil {
			return fmt.Errorf("creating token service: %w", err)
		}
	} else {
		s.logger.Warn("JWT_SECRET not set, sessions are disabled and mutating routes are open")
	}
	guard := auth.NewGuard(tokens)

	leaderboardSvc := service.NewLeaderboardService(s.db, s.metrics, s.logger)
	followSvc := service.NewFollowService(s.db, s.metrics, s.logger)
	pointsSvc := service.NewPointsService(s.db, s.metrics, s.logger)
	accountSvc := service.NewAccountService(s.db, o.passwords, tokens, s.logger)
	contentSvc := service.NewContentService(s.db, s.db, s.logger)
	suggestionSvc := service.NewSuggestionService(o.mailer, s.config.SupportEmail, s.logger)

	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardSvc, followSvc, guard, s.logger)
	pointsHandler := handler.NewPointsHandler(pointsSvc, guard, s.logger)
	accountHandler := handler.NewAccountHandler(accountSvc, s.config.TokenTTL, s.logger)
	contentHandler := handler.NewContentHandler(contentSvc, suggestionSvc, s.logger)
	healthHandler := handler.NewHealthHandler(s.db, s.logger)

	// Order: request id first so every later log line carries it; Recoverer
	// inside Logger so a panic is still logged as a 500.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger, s.metrics))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.CORS(s.config.AllowedOrigins))
	s.router.Use(guard.LoadSession)

	s.router.Get("/healthz", healthHandler.HandleHealth)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	s.router.Get("/leaderboard", leaderboardHandler.HandleGlobal)
	s.router.Get("/leaderboard/{username}", leaderboardHandler.HandlePlayerView)
	s.router.Get("/getUserPoints/{username}", pointsHandler.HandleGetPoints)
	s.router.Get("/profile/{username}", pointsHandler.HandleProfile)
	s.router.Get("/me", pointsHandler.HandleMe)
	s.router.Get("/data", contentHandler.HandleListQuestions)
	s.router.Get("/datacategories", contentHandler.HandleListCategories)

	limiter := middleware.NewIPRateLimiter(s.config.RateLimitRPS, s.config.RateLimitBurst)
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(limiter))

		r.Post("/follow/{username}/{playerToFollow}", leaderboardHandler.HandleFollow)
		r.Post("/unfollow/{username}/{playerToUnfollow}", leaderboardHandler.HandleUnfollow)
		r.Post("/updatePoints", pointsHandler.HandleUpdatePoints)
		r.Post("/quizResult", pointsHandler.HandleQuizResult)
		r.Post("/register", accountHandler.HandleRegister)
		r.Post("/login", accountHandler.HandleLogin)
		r.Post("/logout", accountHandler.HandleLogout)
		r.Post("/addquestions", contentHandler.HandleAddQuestions)
		r.Post("/addcategories", contentHandler.HandleAddCategories)
		r.Post("/suggestcategory", contentHandler.HandleSuggestCategory)
	})

	return nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Run calls it; tests that never Run must.
func (s *Server) Close() error {
	return s.db.Close()
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully:
// stop accepting connections, let in-flight requests finish (up to
// shutdownTimeout), and close the database.
func (s *Server) Run(ctx context.Context) error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.Bool("auth", s.config.AuthEnabled()),
			slog.Bool("metrics", s.metrics != nil),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
		return nil
	}
}
