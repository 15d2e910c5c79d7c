package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/compozy/defaultdesk/engine/infra/cache"
	"github.com/compozy/defaultdesk/engine/infra/monitoring"
	"github.com/compozy/defaultdesk/engine/infra/postgres"
	"github.com/compozy/defaultdesk/engine/infra/sqlite"
	"github.com/compozy/defaultdesk/pkg/config"
	"github.com/compozy/defaultdesk/pkg/logger"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const (
	httpReadTimeout       = 15 * time.Second
	httpWriteTimeout      = 60 * time.Second
	httpIdleTimeout       = 60 * time.Second
	monitoringInitTimeout = 500 * time.Millisecond
	cleanupTimeout        = 10 * time.Second
	hostAny               = "0.0.0.0"
	hostLoopback          = "127.0.0.1"
)

type Server struct {
	cfg        *config.Config
	ctx        context.Context
	cancel     context.CancelFunc
	router     *gin.Engine
	httpServer *http.Server
	db         *postgres.Store
	auditDB    *sqlite.Store
	cache      *cache.Cache
	monitoring *monitoring.Service
	files      http.Handler
	cleanupMu  sync.Mutex
	cleanups   []func(context.Context)
}

func NewServer(ctx context.Context) (*Server, error) {
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return nil, fmt.Errorf("configuration missing from context; attach a manager with config.ContextWithManager")
	}
	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{cfg: cfg, ctx: serverCtx, cancel: cancel}, nil
}

// Run opens every dependency, serves until SIGINT/SIGTERM or ctx is done,
// then drains in-flight requests and closes resources in reverse order.
func (s *Server) Run() error {
	log := logger.FromContext(s.ctx)
	defer s.cleanup()
	state, err := s.setupDependencies()
	if err != nil {
		return err
	}
	if err := s.buildRouter(state); err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}
	s.httpServer = s.createHTTPServer()
	sigCtx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		s.logStartupBanner()
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Debug("Shutdown requested, draining connections")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})
	err = g.Wait()
	s.cancel()
	if err != nil {
		return err
	}
	log.Info("Server shutdown completed successfully")
	return nil
}

// Handler exposes the router once Run has built it.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) createHTTPServer() *http.Server {
	addr := net.JoinHostPort(s.cfg.Server.Host, strconv.Itoa(s.cfg.Server.Port))
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: httpReadTimeout,
		ReadTimeout:       httpReadTimeout,
		WriteTimeout:      httpWriteTimeout,
		IdleTimeout:       httpIdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return s.ctx },
	}
}

func (s *Server) onCleanup(fn func(context.Context)) {
	s.cleanupMu.Lock()
	defer s.cleanupMu.Unlock()
	s.cleanups = append(s.cleanups, fn)
}

func (s *Server) cleanup() {
	s.cleanupMu.Lock()
	fns := s.cleanups
	s.cleanups = nil
	s.cleanupMu.Unlock()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), cleanupTimeout)
	defer cancel()
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i](ctx)
	}
}

func friendlyHost(h string) string {
	if h == hostAny || h == "::" || h == "" {
		return hostLoopback
	}
	return h
}
