package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/wildfire-tracker/internal/loader"
)

// EventStore is the loader surface the API reads from.
type EventStore interface {
	sharedobs.ReadinessChecker
	State() loader.State
	Refetch(ctx context.Context) loader.Result
}

// Server exposes health, readiness, metrics and the events API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	// stop ends work started by handlers that outlives its request.
	stop context.CancelFunc
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /api routes. rps bounds API requests per second across all clients.
func NewServer(addr string, events EventStore, rps int, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	router.GET("/healthz", gin.WrapF(sharedobs.LivenessHandler()))
	router.GET("/readyz", gin.WrapF(sharedobs.ReadinessHandler(events)))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	lifetime, stop := context.WithCancel(context.Background())
	api := router.Group("/api", RateLimitMiddleware(rps))
	NewHandler(lifetime, events, logger).RegisterRoutes(api)

	return &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     router,
			ReadTimeout: 10 * time.Second,
			// A forced refresh runs a whole load cycle inside the request.
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		stop:   stop,
	}
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
// Refreshes still in flight are cancelled first.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stop()
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
