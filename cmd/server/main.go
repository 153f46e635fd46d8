package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/datenight/planner/internal/adapters/cache"
	"github.com/datenight/planner/internal/adapters/http/api"
	"github.com/datenight/planner/internal/adapters/http/swagger"
	"github.com/datenight/planner/internal/adapters/providers"
	app "github.com/datenight/planner/internal/app"
	"github.com/datenight/planner/internal/config"
	"github.com/datenight/planner/internal/domain/aggregate"
	"github.com/datenight/planner/pkg/logger"
	"github.com/datenight/planner/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	cacheSweepInterval        = time.Minute
	redisDialTimeout          = 2 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> .env -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't configured yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	configureMetrics(cfg)

	provs, backend, cleanup := buildProviders(ctx, cfg, log)
	defer cleanup()

	svc := newService(cfg, provs, backend, log)
	for _, name := range svc.GetStats().EnabledProviders {
		log.Info(ctx, "provider enabled", logger.String("provider", name))
	}

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("cache", backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}

	log.Info(shutdownCtx, "server stopped")
}

// configureMetrics applies the configured metric naming and constant labels.
func configureMetrics(cfg *config.Config) {
	metrics.Configure(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithCustomLabels(cfg.MetricsLabels),
	)
}

// buildProviders creates every provider adapter from its credentials and
// wraps them with the configured response cache. The returned backend is the
// cache actually in use, which is "none" when Redis is unreachable.
func buildProviders(ctx context.Context, cfg *config.Config, log logger.Logger) ([]aggregate.Provider, string, func()) {
	base := []aggregate.Provider{
		providers.NewGoogle(cfg.GoogleAPIKey, providers.WithGoogleBaseURL(cfg.GoogleBaseURL)),
		providers.NewFoursquare(cfg.FoursquareAPIKey, providers.WithFoursquareBaseURL(cfg.FoursquareBaseURL)),
		providers.NewYelp(cfg.YelpAPIKey),
		providers.NewTicketmaster(cfg.TicketmasterAPIKey),
		providers.NewEventbrite(cfg.EventbriteToken),
	}

	store, backend, cleanup := newStore(ctx, cfg, log)
	if store == nil {
		return base, backend, cleanup
	}
	wrapped := make([]aggregate.Provider, len(base))
	for i, p := range base {
		wrapped[i] = providers.NewCached(p, store, cfg.CacheTTL(), log.Named("cache"))
	}
	return wrapped, backend, cleanup
}

func newStore(ctx context.Context, cfg *config.Config, log logger.Logger) (cache.Store, string, func()) {
	switch cfg.CacheBackend {
	case cache.BackendMemory:
		mem := cache.NewMemory()
		go mem.RunSweeper(ctx, cacheSweepInterval)
		return mem, cache.BackendMemory, func() {}
	case cache.BackendRedis:
		client, err := cache.NewRedisClient(ctx, cache.RedisOptions{
			Addr:        cfg.RedisAddr,
			Password:    cfg.RedisPassword,
			DB:          cfg.RedisDB,
			DialTimeout: redisDialTimeout,
		})
		if err != nil {
			log.Warn(ctx, "redis unavailable; provider cache disabled", logger.String("addr", cfg.RedisAddr), logger.Error(err))
			return nil, cache.BackendNone, func() {}
		}
		return cache.NewRedis(client, ""), cache.BackendRedis, func() { _ = client.Close() }
	default:
		return nil, cache.BackendNone, func() {}
	}
}

func newService(cfg *config.Config, provs []aggregate.Provider, backend string, log logger.Logger) *app.Service {
	return app.New(
		app.WithLogger(log.Named("service")),
		app.WithProviders(provs...),
		app.WithAggregator(aggregate.New(
			aggregate.WithProviderTimeout(cfg.ProviderTimeout()),
			aggregate.WithLogger(log.Named("aggregate")),
		)),
		app.WithFloors(cfg.Floors),
		app.WithSurpriseLimit(cfg.SurpriseLimit),
		app.WithMaxExcludeIDs(cfg.MaxExcludeIDs),
		app.WithMaxPairDistance(cfg.MaxPairDistanceMiles),
		app.WithCacheBackend(backend),
	)
}

func newRouter(ctx context.Context, svc *app.Service) *mux.Router {
	r := mux.NewRouter()
	swagger.Register(ctx, r)
	api.NewServer(svc).Register(ctx, r)
	return r
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
