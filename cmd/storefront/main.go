package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/storefront-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/logger"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/sequence"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	code := 0
	if err := run(cfg, log); err != nil {
		log.Error("storefront stopped", zap.Error(err))
		code = 1
	}
	_ = log.Sync()
	os.Exit(code)
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	publisher, closePublisher, err := newPublisher(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closePublisher()

	sharedHTTP := &http.Client{Timeout: cfg.UpstreamTimeout}

	authBase := clients.NewClient("auth-service", cfg.AuthURL, sharedHTTP)
	productsBase := clients.NewClient("product-service", cfg.ProductsURL, sharedHTTP)
	searchBase := clients.NewClient("search-service", cfg.SearchURL, sharedHTTP)

	checkout := clients.NewCheckoutClient(productsBase)
	catalogSvc := catalog.NewService(
		clients.NewProductsClient(productsBase),
		clients.NewSearchClient(searchBase),
		log.Named("catalog"),
	)

	sessions := session.NewRegistry(func(l *zap.Logger) *cart.Cart {
		return cart.New(checkout, l.Named("cart"))
	}, publisher, session.Options{
		TTL:             cfg.SessionTTL,
		CheckoutTimeout: cfg.UpstreamTimeout,
		Logger:          log.Named("session"),
	})

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:   log.Named("http"),
		Sessions: sessions,
		Catalog:  catalogSvc,
		Products: catalogSvc,
		Auth:     clients.NewAuthClient(authBase),
		HealthProbes: []clients.HealthProbe{
			{Name: "auth-service", Client: authBase, Path: "/api/auth/check-session"},
			{Name: "product-service", Client: productsBase, Path: "/api/products"},
			{Name: "search-service", Client: searchBase, Path: "/api/search/products"},
		},
		UpstreamTimeout:  cfg.UpstreamTimeout,
		CookieSecure:     cfg.SessionCookieSecure,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.UpstreamTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return sessions.Run(gctx, cfg.SessionSweepInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		log.Info("shutdown complete")
		return nil
	})

	return g.Wait()
}

// newPublisher wires the CartCheckedOut publisher when both Postgres and
// RabbitMQ are configured, and a no-op publisher otherwise.
func newPublisher(ctx context.Context, cfg config.Config, log *zap.Logger) (session.Publisher, func(), error) {
	if !cfg.EventsEnabled() {
		log.Info("event publishing disabled: DATABASE_DSN and RABBITMQ_URL are both required")
		return events.NopPublisher{Logger: log}, func() {}, nil
	}

	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseDSN, log.Named("migrate")); err != nil {
			return nil, nil, err
		}
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	conn, err := events.Dial(ctx, cfg.RabbitMQURL, 10, log.Named("rabbitmq"))
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	pub, err := events.NewPublisher(conn, sequence.NewRepository(pool), events.PublisherOptions{Logger: log.Named("events")})
	if err != nil {
		_ = conn.Close()
		pool.Close()
		return nil, nil, err
	}

	closeAll := func() {
		_ = pub.Close()
		_ = conn.Close()
		pool.Close()
	}
	return pub, closeAll, nil
}
