package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smartspec/build-advisor/internal/metrics"
)

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(h *Handler, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	r := gin.New()
	r.Use(RequestID(), AccessLog(log.Named("access")), Recovery(log))

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Older clients post here directly.
	r.POST("/recommendation", h.Recommend)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/recommendation", h.Recommend)
		v1.GET("/past_builds/:userID", h.PastBuilds)
		v1.GET("/builds/:id", h.GetBuild)
		v1.GET("/builds/:id/export.xlsx", h.ExportBuild)
	}

	return r
}

// Server owns the HTTP listener.
type Server struct {
	srv *http.Server
	log *zap.Logger
}

// NewServer wraps handler in an http.Server listening on addr.
func NewServer(addr string, handler http.Handler, generationTimeout time.Duration, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			// Responses wait for the model, so the write deadline follows its timeout.
			WriteTimeout: generationTimeout + 15*time.Second,
			IdleTimeout:  120 * time.Second,
		},
		log: log,
	}
}

// Start blocks until the server stops. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.log.Info("http server listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
