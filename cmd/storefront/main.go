package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bindassticks/storefront/internal/app"
	"github.com/bindassticks/storefront/internal/config"
	"github.com/bindassticks/storefront/pkg/bootstrap"
	"github.com/bindassticks/storefront/pkg/config/configloader"
	"github.com/bindassticks/storefront/pkg/nats"
	"github.com/bindassticks/storefront/pkg/telemetry"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run loads the configuration, connects the backends and serves HTTP and pprof until ctx is done.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](app.ServiceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	tp, err := telemetry.NewTracerProvider(ctx, app.ServiceName, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer shutdownProvider(tp, "tracer", cfg.Shutdown.Timeout, logger)

	var metricsHandler http.Handler
	if cfg.Telemetry.Metrics.Enabled {
		mp, handler, err := telemetry.NewMeterProvider(app.ServiceName)
		if err != nil {
			return err
		}
		defer shutdownProvider(mp, "meter", cfg.Shutdown.Timeout, logger)
		metricsHandler = handler
	}

	natsConn, err := nats.NewClient(cfg.Nats.Url, cfg.Nats.Timeout)
	if err != nil {
		return err
	}
	defer natsConn.Close()
	js, err := nats.NewJetStreamContext(natsConn)
	if err != nil {
		return err
	}
	if _, err := nats.EnsureStream(ctx, js, cfg.Nats.Stream); err != nil {
		return err
	}
	logger.Info("Connected to NATS", slog.String("stream", cfg.Nats.Stream.Name))

	products, closeProducts, err := app.NewProductStore(ctx, cfg.Catalog, logger)
	if err != nil {
		return fmt.Errorf("failed to open product store: %w", err)
	}
	defer closeProducts()

	uploader, closeUploader, err := app.NewUploader(ctx, cfg.Media, logger)
	if err != nil {
		return fmt.Errorf("failed to create image uploader: %w", err)
	}
	defer closeUploader()

	sessions, closeSessions, err := app.NewSessionStore(ctx, cfg.Session, logger)
	if err != nil {
		return fmt.Errorf("failed to create session store: %w", err)
	}
	defer closeSessions()

	verifier, err := app.NewVerifier(ctx, cfg.Admin)
	if err != nil {
		return err
	}

	deps, err := app.SetupDependencies(cfg, app.Backends{
		Products:       products,
		Uploader:       uploader,
		Sessions:       sessions,
		Publisher:      nats.NewNatsPublisher(js),
		Verifier:       verifier,
		MetricsHandler: metricsHandler,
	}, logger)
	if err != nil {
		return err
	}
	httpServer := app.SetupHttpServer(deps, cfg)

	g, gCtx := errgroup.WithContext(ctx)
	serve(gCtx, g, httpServer, "HTTP", cfg.Shutdown.Timeout, logger)
	if cfg.PProf.Enabled {
		serve(gCtx, g, &http.Server{Addr: cfg.PProf.Addr}, "pprof", cfg.Shutdown.Timeout, logger)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// serve runs srv in g and shuts it down gracefully once ctx is done.
func serve(ctx context.Context, g *errgroup.Group, srv *http.Server, name string, timeout time.Duration, logger *slog.Logger) {
	g.Go(func() error {
		logger.Info(name+" server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server failed: %w", name, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down " + name + " server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

func shutdownProvider(p telemetry.Shutdowner, name string, timeout time.Duration, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		logger.Error("Failed to shut down "+name+" provider", "error", err)
	}
}
