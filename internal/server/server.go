package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// StatusReporter describes the aggregation state exposed on /health.
type StatusReporter interface {
	Len() int
}

type Server struct {
	Engine *gin.Engine
	Addr   string
	status StatusReporter
}

func New(addr string, status StatusReporter, mode string) *Server {
	if mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		Engine: r,
		Addr:   addr,
		status: status,
	}

	r.GET("/health", s.healthHandler)

	return s
}

func (s *Server) healthHandler(c *gin.Context) {
	body := gin.H{"status": "healthy"}
	if s.status != nil {
		body["buckets"] = s.status.Len()
	}
	c.JSON(http.StatusOK, body)
}

// shutdownGrace bounds how long in-flight requests may finish after ctx ends.
const shutdownGrace = 5 * time.Second

// Run serves until ctx is cancelled or the listener fails. A cancelled ctx
// drains in-flight requests and returns the shutdown error, if any.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("[Server] Listening", "address", s.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve %s: %w", s.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(drainCtx); err != nil {
			return fmt.Errorf("shutdown %s: %w", s.Addr, err)
		}
		slog.Info("[Server] Stopped", "address", s.Addr)
		return nil
	})
	return g.Wait()
}
