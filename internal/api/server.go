// Package api exposes transaction entry and the ledger over HTTP.
package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/pennywise/internal/engine"
	"github.com/Veraticus/pennywise/internal/llm"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Processor turns text and receipt images into processed drafts.
type Processor interface {
	Process(ctx context.Context, userInput string) (*model.ProcessResult, error)
	ProcessReceipt(ctx context.Context, image llm.Image) (*model.ProcessedReceipt, error)
}

// Config holds API server configuration.
type Config struct {
	Locale         string
	AllowedOrigins []string
	CacheTTL       time.Duration
	Port           int
	// MaxImageBytes limits receipt uploads.
	MaxImageBytes int64
}

// DefaultConfig returns defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"*"},
		Locale:         "en",
		CacheTTL:       time.Minute,
		MaxImageBytes:  10 << 20,
	}
}

// Server is the HTTP API server.
type Server struct {
	store       service.Storage
	processor   Processor
	categorizer *engine.AutoCategorizer
	cache       Cache
	router      *gin.Engine
	httpServer  *http.Server
	logger      *slog.Logger
	config      Config
}

// NewServer creates a new API server. A nil cache disables response caching.
func NewServer(cfg Config, store service.Storage, processor Processor, categorizer *engine.AutoCategorizer, cache Cache, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cache == nil {
		cache = NoopCache{}
	}
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = DefaultConfig().MaxImageBytes
	}

	s := &Server{
		config:      cfg,
		store:       store,
		processor:   processor,
		categorizer: categorizer,
		cache:       cache,
		logger:      logger,
	}

	s.router = gin.New()
	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		// AI calls can take a while; keep the write timeout above the adapter's.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(requestLogger(s.logger))

	corsConfig := cors.Config{
		AllowOrigins:  s.config.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Accept-Language"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 || (len(corsConfig.AllowOrigins) == 1 && corsConfig.AllowOrigins[0] == "*") {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	}
	s.router.Use(cors.New(corsConfig))

	s.router.Use(localizerMiddleware(s.config.Locale))
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.health)

	v1 := s.router.Group("/v1")
	{
		v1.GET("/categories", s.listCategories)

		v1.POST("/parse", s.parse)
		v1.POST("/receipts", s.parseReceipt)
		v1.POST("/categorize", s.categorize)

		v1.GET("/transactions", s.listTransactions)
		v1.POST("/transactions", s.createTransaction)
		v1.GET("/transactions/:id", s.getTransaction)
		v1.PUT("/transactions/:id", s.updateTransaction)
		v1.DELETE("/transactions/:id", s.deleteTransaction)

		v1.GET("/summary", s.summary)
	}
}

// Router returns the HTTP handler, for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Starting API server", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// StartTLS serves HTTPS with cert until Shutdown is called.
func (s *Server) StartTLS(cert tls.Certificate) error {
	s.httpServer.TLSConfig = &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	s.logger.Info("Starting API server with TLS", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
