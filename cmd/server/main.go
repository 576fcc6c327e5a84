package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"taskflow/internal/api"
	"taskflow/internal/app"
	"taskflow/internal/config"
	internaldb "taskflow/internal/db"
	"taskflow/internal/middleware"
)

const (
	shutdownTimeout    = 15 * time.Second
	limiterSweepPeriod = 5 * time.Minute
)

func main() {
	// Load .env file (if present)
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := newLogger(cfg)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// writeDB: single-connection pool for serialized writes (WAL + txlock=immediate).
	// readDB:  ReadPoolSize connections for concurrent reads.
	writeDB, readDB, err := internaldb.OpenPair(cfg.MetaDBPath, cfg.ReadPoolSize)
	if err != nil {
		return fmt.Errorf("open workflow store: %w", err)
	}
	defer writeDB.Close() //nolint:errcheck
	defer readDB.Close()  //nolint:errcheck

	logger.Info("running migrations", "path", cfg.MetaDBPath)
	if err := internaldb.Migrate(writeDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	application, err := app.New(app.Deps{Cfg: cfg, WriteDB: writeDB, ReadDB: readDB, Logger: logger})
	if err != nil {
		return err
	}

	validator, err := middleware.NewValidator(ctx, cfg.Auth)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	})

	handler := api.NewHandler(application.Services, logger)
	router := newRouter(cfg, handler, middleware.Auth(validator, application.UserLookup, logger), limiter)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if application.Purger != nil {
		if err := application.Purger.Start(ctx); err != nil {
			return fmt.Errorf("notification purger: %w", err)
		}
		defer application.Purger.Stop()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		limiter.RunSweeper(gctx, limiterSweepPeriod)
		return nil
	})
	g.Go(func() error {
		logger.Info("HTTP API listening", "addr", cfg.ListenAddr, "tls", cfg.TLSCertFile != "")
		logger.Info("try: curl -H 'Authorization: Bearer <jwt>' http://" + curlHostForListenAddr(cfg.ListenAddr) + "/v1/me")
		var err error
		if cfg.TLSCertFile != "" {
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newRouter assembles the public and authenticated routes.
func newRouter(cfg *config.Config, h *api.Handler, auth func(http.Handler) http.Handler, limiter *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(auth)
		r.Use(limiter.Middleware)
		h.Register(r)
	})
	return r
}

// curlHostForListenAddr turns a listen address into a host:port usable in
// an example curl command.
func curlHostForListenAddr(listenAddr string) string {
	addr := strings.TrimSpace(listenAddr)
	if addr == "" {
		return "localhost:8080"
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
