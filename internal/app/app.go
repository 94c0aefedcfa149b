package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/averku/storefront/internal/catalog/fakestore"
	"github.com/averku/storefront/internal/domain/cart"
	"github.com/averku/storefront/internal/handler"
	"github.com/averku/storefront/internal/kv"
	"github.com/averku/storefront/pkg/health"
	"github.com/averku/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles
// graceful shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("catalog_url", cfg.CatalogURL),
	)

	// Session storage: PostgreSQL when configured, in-memory otherwise.
	var store kv.Store
	if cfg.DatabaseURL != "" {
		pg, err := kv.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create kv store")
		}
		defer pg.Close()
		store = pg
	} else {
		lg.Info("No database configured, session state is in-memory only")
		store = kv.NewMemory()
	}

	// Remote catalog client with instrumented transport. The per-call
	// timeout lives here; the core treats a timeout as an unavailable
	// catalog.
	catalogClient := fakestore.NewClient(cfg.CatalogURL, &http.Client{
		Timeout: cfg.CatalogTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		),
	})

	resolver := cart.NewResolver(catalogClient, lg.Named("resolver"))

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("kv", 5*time.Second, store.Ping)
	healthSvc.AddReadinessCheck("catalog", 5*time.Second, func(ctx context.Context) error {
		_, err := catalogClient.Categories(ctx)
		return err
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.SetReady(true)

	// HTTP handlers and routes.
	h := handler.New(catalogClient, resolver, catalogClient, store, lg.Named("handler"))
	router := mux.NewRouter()
	router.HandleFunc("/livez", healthSvc.LiveEndpoint)
	router.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	h.Register(router)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(router,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization", handler.SessionHeader},
				ExposeHeaders:    []string{handler.SessionHeader},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
