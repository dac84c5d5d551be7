// ABOUTME: Gateway orchestrates the HTTP server and conversation lifecycle
// ABOUTME: Owns the registry, provider service, and graceful shutdown

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/parley-dev/parley/internal/config"
	"github.com/parley-dev/parley/internal/conversation"
	"github.com/parley-dev/parley/internal/preset"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Gateway wires the HTTP API to the conversation registry and the
// provider service.
type Gateway struct {
	config    *config.Config
	registry  *conversation.Registry
	generator conversation.Generator
	presets   *preset.Library
	logger    *slog.Logger

	httpServer *http.Server

	// loopCtx is the lifetime of conversation loops. It outlives any
	// single request and is canceled on shutdown.
	loopCtx    context.Context
	loopCancel context.CancelFunc

	limiters limiterSet
}

// New creates a gateway. The preset library may be empty but not nil.
func New(cfg *config.Config, registry *conversation.Registry, gen conversation.Generator, presets *preset.Library, logger *slog.Logger) *Gateway {
	loopCtx, loopCancel := context.WithCancel(context.Background())

	g := &Gateway{
		config:     cfg,
		registry:   registry,
		generator:  gen,
		presets:    presets,
		logger:     logger.With("component", "gateway"),
		loopCtx:    loopCtx,
		loopCancel: loopCancel,
		limiters:   newLimiterSet(cfg.RateLimit),
	}

	g.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           g.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return g
}

// Handler returns the fully composed HTTP handler, including CORS and
// rate limiting.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", g.handleHealth)

	mux.HandleFunc("POST /api/conversations", g.limit(g.limiters.standard, g.handleCreateConversation))
	mux.HandleFunc("GET /api/conversations/{id}", g.limit(g.limiters.standard, g.handleGetConversation))
	mux.HandleFunc("POST /api/conversations/{id}/pause", g.limit(g.limiters.standard, g.handlePause))
	mux.HandleFunc("POST /api/conversations/{id}/resume", g.limit(g.limiters.standard, g.handleResume))
	mux.HandleFunc("POST /api/conversations/{id}/stop", g.limit(g.limiters.standard, g.handleStop))
	mux.HandleFunc("GET /api/conversations/{id}/events", g.limit(g.limiters.standard, g.handleStreamEvents))
	mux.HandleFunc("GET /api/conversations/{id}/download", g.limit(g.limiters.export, g.handleDownload))
	mux.HandleFunc("GET /api/conversations/{id}/transcript", g.limit(g.limiters.export, g.handleTranscript))

	mux.HandleFunc("GET /api/analytics/conversations", g.limit(g.limiters.list, g.handleAnalyticsList))
	mux.HandleFunc("GET /api/analytics/{id}", g.limit(g.limiters.analytics, g.handleAnalyticsDetail))
	mux.HandleFunc("GET /api/analytics/{id}/report", g.limit(g.limiters.export, g.handleAnalyticsReport))

	mux.HandleFunc("GET /api/presets", g.limit(g.limiters.standard, g.handleListPresets))

	return g.corsMiddleware(mux)
}

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails. Conversation loops are canceled on the way out.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", g.config.Server.HTTPAddr, err)
	}

	g.logger.Info("HTTP server listening", "addr", ln.Addr().String())

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if err := g.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egCtx.Done()
		g.logger.Info("shutting down")

		// Fresh context since the run context is already canceled.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := g.httpServer.Shutdown(shutdownCtx)
		g.loopCancel()
		g.registry.Close()
		return err
	})

	return eg.Wait()
}

// startConversation registers the orchestrator and runs its loop in the
// background, tied to the gateway lifetime rather than the request.
func (g *Gateway) startConversation(o *conversation.Orchestrator) {
	g.registry.Add(o)
	go o.Run(g.loopCtx)
}
