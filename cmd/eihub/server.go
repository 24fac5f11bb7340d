package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/juander/eihub-rag/internal/api"
	"github.com/juander/eihub-rag/internal/appstate"
	"github.com/juander/eihub-rag/internal/config"
	"github.com/juander/eihub-rag/internal/qa"
)

const shutdownTimeout = 5 * time.Second

func runServer() error {
	fmt.Fprintf(os.Stderr, "eihub version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Backend initialization runs once in the background; requests arriving
	// before it settles observe the initializing state. Failures are
	// recorded in state and reported on every request, never retried.
	state := appstate.NewManager(nil)
	go state.Initialize(cfg)

	askTimeout, err := time.ParseDuration(cfg.Backend.AskTimeout)
	if err != nil {
		slog.Warn("invalid ask timeout, using default 60s", "value", cfg.Backend.AskTimeout, "error", err)
		askTimeout = 60 * time.Second
	}
	svc := qa.NewService(state, askTimeout)

	handler := api.NewHandler(api.Deps{
		State:        state,
		QA:           svc,
		DocumentsDir: cfg.Backend.DocumentsDir,
		RepoBaseURL:  cfg.Docs.RepoBaseURL,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// MCP server on stdio transport, beside the HTTP surface.
	mcpSrv := api.NewMCPServer(api.MCPDeps{QA: svc, State: state})
	stdioSrv := server.NewStdioServer(mcpSrv)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fmt.Fprintf(os.Stderr, "eihub listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := stdioSrv.Listen(gCtx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		fmt.Fprintln(os.Stderr, "shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
