package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sadopc/capscope/internal/engine"
	"github.com/sadopc/capscope/internal/insight"
	"github.com/sadopc/capscope/internal/observability"
	"github.com/sadopc/capscope/internal/server"
)

const serveUsage = `Usage: capscope serve [flags]

Serve the analysis API. Insights are stored in the local sqlite database;
callers identify themselves with a bearer token from api_tokens.

Examples:
  capscope serve
  capscope serve --addr :9090
  CAPSCOPE_API_TOKENS=s3cret=alice capscope serve
`

func serveCmd(e *env, args []string) int {
	fs := e.newFlagSet("serve", serveUsage)
	addr := fs.String("addr", e.cfg.ListenAddr, "Listen address")
	dbPath := fs.String("db", e.cfg.InsightDB(), "Insight database path")
	if ok, code := parse(fs, args); !ok {
		return code
	}

	store, err := insight.NewSQLiteStore(*dbPath)
	if err != nil {
		return e.fail("opening insight store: %v", err)
	}
	defer store.Close()

	if len(e.cfg.APITokens) == 0 {
		e.log.Warn().Msg("no api_tokens configured; insight routes will reject every caller")
	}

	metrics := observability.NewMetrics()
	persister := insight.NewPersister(store,
		insight.WithLogger(e.log),
		insight.WithRecorder(metrics),
	)
	handler := server.New(server.Options{
		Engine:  engine.New(engine.WithPersister(persister), engine.WithCounter(metrics)),
		Store:   store,
		Tokens:  e.cfg.APITokens,
		Logger:  e.log,
		Metrics: metrics,
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		e.log.Info().Str("addr", *addr).Str("db", *dbPath).Msg("capscope API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return e.fail("server: %v", err)
		}
	case <-ctx.Done():
		e.log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return e.fail("shutdown: %v", err)
		}
	}
	return exitOK
}
