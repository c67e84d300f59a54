package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/profile-service/jwtauth"
	"github.com/profile-service/jwtauth/config"
	"github.com/profile-service/jwtauth/core"
	"github.com/profile-service/jwtauth/jwks"
	"github.com/profile-service/jwtauth/kvstore"
	"github.com/profile-service/jwtauth/validator"
)

const shutdownTimeout = 30 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server.

Configuration is read from the key-value store, then the config file, then
the environment, the first source holding a key winning. The store itself is
chosen from the config file and environment only (kv_backend, redis_addr,
db_url).`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()

	bootstrap, err := bootstrapSources(cmd)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, bootstrap...)
	if err != nil {
		return err
	}
	defer closeStore()

	cfg, err := config.Load(ctx, append([]config.Source{config.StoreSource(store)}, bootstrap...)...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := configureLogger(logger, cfg); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	authMiddleware, err := newAuthMiddleware(cfg, store, jwtauth.NewLogrusLogger(logger), jwtauth.NewPrometheusMetrics(registry))
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newRouter(authMiddleware, registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":       cfg.ListenAddr,
			"issuer":     cfg.Issuer(),
			"kv_backend": cfg.KVBackend,
		}).Info("Starting HTTP server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	logger.Info("Server stopped")

	return nil
}

// bootstrapSources returns the config file (when --config is set) and
// environment sources, in that order.
func bootstrapSources(cmd *cobra.Command) ([]config.Source, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	prefix, err := cmd.Flags().GetString("env-prefix")
	if err != nil {
		return nil, err
	}

	var sources []config.Source
	if path != "" {
		file, err := config.FileSource(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, file)
	}
	return append(sources, config.EnvSource(prefix)), nil
}

// openStore opens the store named by kv_backend. The returned func
// releases it.
func openStore(ctx context.Context, sources ...config.Source) (kvstore.Store, func(), error) {
	backend, _ := config.Lookup(ctx, config.KeyKVBackend, sources...)

	switch backend {
	case "", config.BackendMemory:
		return kvstore.NewMemory(), func() {}, nil
	case config.BackendRedis:
		addr, ok := config.Lookup(ctx, config.KeyRedisAddr, sources...)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", config.ErrMissingKey, config.KeyRedisAddr)
		}
		store, err := kvstore.DialRedis(ctx, addr)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case config.BackendPostgres:
		databaseURL, ok := config.Lookup(ctx, config.KeyDatabaseURL, sources...)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", config.ErrMissingKey, config.KeyDatabaseURL)
		}
		store, err := kvstore.OpenPostgres(ctx, databaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown %s %q", config.KeyKVBackend, backend)
	}
}

func configureLogger(logger *logrus.Logger, cfg *config.Config) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", config.KeyLogLevel, err)
	}
	logger.SetLevel(level)

	switch cfg.LogFormat {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("invalid %s %q: expected json or text", config.KeyLogFormat, cfg.LogFormat)
	}
	return nil
}

// newAuthMiddleware wires the JWKS cache, provider and core for cfg. Tokens
// are bound to the {id} route parameter.
func newAuthMiddleware(cfg *config.Config, store kvstore.Store, logger jwtauth.Logger, metrics jwtauth.Metrics) (*jwtauth.JWTMiddleware, error) {
	cache, err := jwks.NewCache(store, jwks.WithCacheTTL(cfg.CacheTTL))
	if err != nil {
		return nil, err
	}

	provider, err := jwks.NewProvider(
		jwks.WithCache(cache),
		jwks.WithLogger(logger),
		jwks.WithMetrics(metrics),
	)
	if err != nil {
		return nil, err
	}

	verifier, err := validator.New(validator.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	c, err := core.New(
		core.WithKeySetProvider(provider),
		core.WithVerifier(verifier),
		core.WithConfig(cfg),
		core.WithLogger(logger),
		core.WithMetrics(metrics),
		core.WithTracer(jwtauth.Tracer(nil)),
	)
	if err != nil {
		return nil, err
	}

	return jwtauth.New(
		jwtauth.WithCore(c),
		jwtauth.WithSubjectExtractor(func(r *http.Request) string {
			return chi.URLParam(r, "id")
		}),
		jwtauth.WithLogger(logger),
	)
}

func newRouter(auth *jwtauth.JWTMiddleware, gatherer prometheus.Gatherer) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID, middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	router.With(auth.CheckJWT).Get("/api/profile/{id}", func(w http.ResponseWriter, r *http.Request) {
		subject, ok := core.Subject(r.Context())
		if !ok {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "no verified subject"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"subject": subject})
	})

	return router
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
