package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"app-transcript/internal/api/middleware"
	"app-transcript/internal/api/v1/handlers"
	v1routes "app-transcript/internal/api/v1/routes"
	"app-transcript/web"
)

// Config represents API server configuration
type Config struct {
	Addr         string
	MaxUploadMB  int64
	SessionTTL   time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Environment  string
}

// Server represents the HTTP server
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer builds the router with the page, the JSON API, health and metrics
func NewServer(
	config Config,
	handler *handlers.TranscriptionHandler,
	registry *prometheus.Registry,
	logger *zap.Logger,
) (*Server, error) {
	if config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := web.Templates(nil)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.MaxMultipartMemory = 32 << 20
	router.SetHTMLTemplate(tmpl)

	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogging(logger))
	router.Use(middleware.ErrorHandler(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))
	router.StaticFS("/static", web.Static())

	// a little headroom over the file limit for the other multipart fields
	bodyLimit := config.MaxUploadMB*1024*1024 + 1024*1024
	app := router.Group("/", middleware.Session(int(config.SessionTTL.Seconds())), middleware.LimitBody(bodyLimit))
	v1routes.RegisterPageRoutes(app, handler)

	api := app.Group("/api")
	{
		v1 := api.Group("/v1", middleware.CORS(middleware.DefaultCORSConfig()))
		v1routes.RegisterRoutes(v1, handler)
	}

	httpServer := &http.Server{
		Addr:         config.Addr,
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{
		config:     config,
		router:     router,
		httpServer: httpServer,
		logger:     logger,
	}, nil
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.httpServer.Addr),
		zap.String("environment", s.config.Environment),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server shutdown complete")
	return nil
}

// Router returns the Gin router (useful for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
