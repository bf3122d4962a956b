// Package api exposes the Folio HTTP surface: folder and file operations,
// quota reads, tenant lifecycle, and blog CRUD, all under /api/v1.
//
// The principal making a request is taken from the X-Folio-Actor header;
// token verification happens upstream of this layer.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/foliocms/folio/internal/logger"
	"github.com/foliocms/folio/pkg/metrics"
	"github.com/foliocms/folio/pkg/storage"
	"github.com/foliocms/folio/pkg/store/document"
	"github.com/foliocms/folio/pkg/tenant"
	"github.com/foliocms/folio/pkg/tenant/deletion"
)

// actorHeader carries the authenticated principal's tenant ID.
const actorHeader = "X-Folio-Actor"

// Config contains the HTTP server settings.
type Config struct {
	// ListenAddr is the address to bind (e.g., ":8080").
	ListenAddr string

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// CORSOrigins lists allowed origins. Empty disables CORS headers.
	CORSOrigins []string

	// MetricsEnabled exposes the Prometheus registry on /metrics.
	MetricsEnabled bool

	// Debug keeps gin in debug mode. Off in production.
	Debug bool
}

// Defaults are the tenant policy values applied when creating tenants.
type Defaults struct {
	// QuotaBytes for new tenants. 0 means unlimited.
	QuotaBytes int64

	// MaxBlogs for new tenants. 0 means unlimited.
	MaxBlogs int
}

// Services bundles the domain components the handlers delegate to.
type Services struct {
	Storage  *storage.Manager
	Quota    *storage.Accountant
	Tenants  *tenant.Repository
	Deletion *deletion.Orchestrator

	// Documents backs blog-tree teardown, which reaches below the
	// repository to empty subcollections.
	Documents document.Store

	// TenantDefaults seed new tenant records.
	TenantDefaults Defaults
}

// Server is the Folio HTTP server.
type Server struct {
	cfg        Config
	services   Services
	engine     *gin.Engine
	httpServer *http.Server
	metrics    *metrics.HTTPMetrics
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(cfg Config, services Services) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	if len(cfg.CORSOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.CORSOrigins
		corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", actorHeader}
		engine.Use(cors.New(corsConfig))
	}

	s := &Server{
		cfg:      cfg,
		services: services,
		engine:   engine,
		metrics:  metrics.NewHTTPMetrics(),
		httpServer: &http.Server{
			Addr:         cfg.ListenAddr,
			Handler:      engine,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
	}

	engine.Use(s.observeRequests())
	s.setupRoutes()

	return s
}

// Handler returns the underlying HTTP handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully within the
// configured timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		logger.Info("HTTP server listening on %s", s.cfg.ListenAddr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) setupRoutes() {
	if s.cfg.MetricsEnabled && metrics.IsEnabled() {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
			metrics.GetRegistry(),
			promhttp.HandlerOpts{},
		)))
	}

	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.engine.Group("/api/v1")
	v1.Use(requireActor())

	files := v1.Group("/files")
	{
		files.GET("", s.handleListFiles)
		files.POST("/folder", s.handleCreateFolder)
		files.POST("/upload", s.handleUpload)
		files.POST("/rename", s.handleRename)
		files.POST("/move", s.handleMove)
		files.DELETE("", s.handleDeleteFile)
		files.DELETE("/prefix", s.handleDeletePrefix)
	}

	v1.GET("/quota", s.handleQuota)

	tenants := v1.Group("/tenants")
	{
		tenants.POST("", s.handleCreateTenant)
		tenants.GET("/:id", s.handleGetTenant)
		tenants.DELETE("/:id", s.handleDeleteTenant)
	}

	blogs := v1.Group("/blogs")
	{
		blogs.POST("", s.handleCreateBlog)
		blogs.GET("", s.handleListBlogs)
		blogs.GET("/:id", s.handleGetBlog)
		blogs.PATCH("/:id/default", s.handleSetDefaultBlog)
		blogs.DELETE("/:id", s.handleDeleteBlog)
	}
}

// requireActor rejects requests without an authenticated principal.
func requireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(actorHeader) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing " + actorHeader + " header",
			})
			return
		}
		c.Next()
	}
}

// observeRequests records per-route request metrics.
func (s *Server) observeRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// actor returns the authenticated principal's tenant ID.
func actor(c *gin.Context) string {
	return c.GetHeader(actorHeader)
}
