package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/macrolog/backend/config"
	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/middleware"
	"github.com/pageza/macrolog/backend/internal/router"
	"github.com/pageza/macrolog/backend/internal/service"
)

const shutdownTimeout = 10 * time.Second

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	log    *logger.Logger
}

// New wires services and routes. redisClient may be nil, in which case
// search results are not cached and searches are not rate limited.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *logger.Logger) *Server {
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	remote := service.NewFoodSearchClient(service.FoodSearchConfig{
		BaseURL:       cfg.FoodSearchURL,
		UserAgent:     cfg.FoodSearchUserAgent,
		PageSize:      cfg.SearchPageSize,
		Timeout:       cfg.SearchTimeout,
		RatePerMinute: cfg.SearchRatePerMinute,
	}, log)
	searcher := service.NewCachedSearcher(remote, redisClient, cfg.SearchCacheTTL, log)

	templates := service.NewTemplateService(db, log)
	entries := service.NewEntryService(db)

	engine := router.SetupRouter(router.Dependencies{
		DB:            db,
		Auth:          service.NewAuthService(db, cfg.JWTSecret),
		Searcher:      searcher,
		Templates:     templates,
		Entries:       entries,
		Composer:      service.NewEntryComposer(entries, templates, log),
		SearchLimiter: middleware.NewSearchRateLimiter(redisClient, cfg.SearchUserLimit),
		Scheduler: service.SchedulerConfig{
			Debounce: cfg.SearchDebounce,
			Timeout:  cfg.SearchTimeout,
		},
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Log:                log,
	})

	return &Server{
		router: engine,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log.WithComponent("server"),
	}
}

// Handler exposes the routes, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Stop(shutdownCtx)
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}
