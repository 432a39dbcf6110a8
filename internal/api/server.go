package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/matrixforge/ledhost/internal/domain/app"
	"github.com/matrixforge/ledhost/internal/domain/registry"
	"github.com/matrixforge/ledhost/internal/domain/sched"
	"github.com/matrixforge/ledhost/internal/infrastructure/logging"
	"github.com/matrixforge/ledhost/internal/infrastructure/monitoring"
	"github.com/matrixforge/ledhost/internal/input"
)

// Loop is the read side of the scheduler the API needs.
type Loop interface {
	Snapshot() sched.Snapshot
}

// Config tunes the HTTP surface.
type Config struct {
	Addr string

	// Development enables verbose gin output.
	Development bool

	// EventsPerSecond and EventBurst bound how fast one websocket
	// client may inject input.
	EventsPerSecond int
	EventBurst      int
}

// DefaultConfig listens on :8090 with a gamepad-friendly rate limit.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8090",
		EventsPerSecond: 30,
		EventBurst:      10,
	}
}

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg     Config
	router  *gin.Engine
	loop    Loop
	apps    *app.Manager
	reg     *registry.Registry
	input   *input.Router
	metrics *monitoring.Metrics
	gather  prometheus.Gatherer
	log     *logging.Logger

	srv *http.Server
}

// NewServer wires routes over the given dependencies. gather serves
// /metrics and may be nil to disable the endpoint.
func NewServer(cfg Config, loop Loop, apps *app.Manager, reg *registry.Registry, in *input.Router, metrics *monitoring.Metrics, gather prometheus.Gatherer, log *logging.Logger) *Server {
	def := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.EventsPerSecond <= 0 {
		cfg.EventsPerSecond = def.EventsPerSecond
	}
	if cfg.EventBurst <= 0 {
		cfg.EventBurst = def.EventBurst
	}
	if metrics == nil {
		metrics = monitoring.New(nil)
	}
	if log == nil {
		log = logging.NewNop()
	}

	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Accept", "Origin"},
		MaxAge:       12 * time.Hour,
	}))

	s := &Server{
		cfg:     cfg,
		router:  router,
		loop:    loop,
		apps:    apps,
		reg:     reg,
		input:   in,
		metrics: metrics,
		gather:  gather,
		log:     log,
	}

	router.GET("/health", s.health)
	router.GET("/state", s.state)
	router.GET("/apps", s.listApps)
	router.POST("/input", s.postInput)
	router.GET("/stream", s.handleStream)
	if gather != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gather, promhttp.HandlerOpts{})))
	}

	return s
}

// Handler returns the underlying HTTP handler, used by tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens and serves until Shutdown. Blocks.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info("http server listening", zap.String("addr", s.cfg.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
