// Command api serves the catalog HTTP API.
//
//	@title						Catalog API
//	@version					1.0
//	@description				E-commerce catalog with user authentication and admin-gated product management.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	_ "github.com/shopfront/catalog-api/docs"
	"github.com/shopfront/catalog-api/internal/api"
	"github.com/shopfront/catalog-api/internal/core/ports"
	"github.com/shopfront/catalog-api/internal/core/service"
	"github.com/shopfront/catalog-api/internal/infrastructure/db/gormdb"
	mongostore "github.com/shopfront/catalog-api/internal/infrastructure/db/mongo"
	redisstore "github.com/shopfront/catalog-api/internal/infrastructure/db/redis"
	"github.com/shopfront/catalog-api/internal/infrastructure/messaging/rabbitmq"
	"github.com/shopfront/catalog-api/internal/infrastructure/queue"
	"github.com/shopfront/catalog-api/internal/infrastructure/security"
	"github.com/shopfront/catalog-api/internal/pkg/config"
	"github.com/shopfront/catalog-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// stores bundles the repositories of the selected driver.
// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type stores struct {
	users      ports.UserRepository
	categories ports.CategoryRepository
	products   ports.ProductRepository
	health     ports.Pinger
	close      func(ctx context.Context) error
}

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:       cfg.LogLevel,
		Pretty:      cfg.Env == "development",
		Environment: cfg.Env,
		Version:     version,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("catalog api stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Error().Err(err).Msg("store close failed")
		}
	}()
	probes := map[string]ports.Pinger{"database": st.health}

	var catalogOpts []service.CatalogOption

	// --- Product cache (optional) ---
	if cfg.Redis.Enabled {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		probes["redis"] = redisstore.NewHealth(rdb)
		catalogOpts = append(catalogOpts, service.WithProductCache(redisstore.NewProductCache(rdb, cfg.Redis.ProductTTL)))
		log.Info().Str("addr", cfg.Redis.Addr).Msg("product cache enabled")
	}

	// --- Catalog events (optional) ---
	var dispatcher *queue.Dispatcher
	if cfg.AMQP.URL != "" {
		publisher, err := rabbitmq.NewPublisher(rabbitmq.Config{URL: cfg.AMQP.URL, Exchange: cfg.AMQP.Exchange}, logger.Component("rabbitmq"))
		if err != nil {
			return err
		}
		defer publisher.Close()

		dispatcher = queue.NewDispatcher(cfg.AMQP.Workers, publisher, logger.Component("dispatcher"))
		dispatcher.Start(context.Background())
		catalogOpts = append(catalogOpts, service.WithEventEmitter(dispatcher))
		log.Info().Str("exchange", cfg.AMQP.Exchange).Int("workers", cfg.AMQP.Workers).Msg("catalog events enabled")
	}

	// --- Services ---
	tokens, err := security.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTAlgorithm)
	if err != nil {
		return err
	}
	authService := service.NewAuthService(
		st.users,
		security.NewBcryptHasher(cfg.Auth.BcryptCost),
		tokens,
		cfg.Auth.AccessTokenTTL,
		logger.Component("auth"),
	)
	catalogService := service.NewCatalogService(st.categories, st.products, logger.Component("catalog"), catalogOpts...)

	if cfg.Auth.BootstrapAdmin() {
		if _, err := authService.EnsureAdmin(ctx, cfg.Auth.BootstrapAdminEmail, cfg.Auth.BootstrapAdminUsername, cfg.Auth.BootstrapAdminPassword); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		ProjectName:    cfg.ProjectName,
		APIPrefix:      cfg.APIPrefix,
		CORSOrigins:    cfg.CORSOrigins,
		LoginRateLimit: cfg.Auth.LoginRateLimit,
		Auth:           authService,
		Access:         service.NewAccessService(tokens, st.users),
		Catalog:        catalogService,
		Probes:         probes,
		Registerer:     prometheus.DefaultRegisterer,
		Gatherer:       prometheus.DefaultGatherer,
		Log:            logger.Component("http"),
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("driver", cfg.Store.Driver).Msg("starting catalog api")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	// --- Graceful shutdown ---
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if dispatcher != nil {
		if err := dispatcher.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("event queue not fully drained")
		}
	}
	return nil
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Store.Driver {
	case "mongo":
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &stores{
			users:      mongostore.NewUserRepository(db),
			categories: mongostore.NewCategoryRepository(db),
			products:   mongostore.NewProductRepository(db),
			health:     mongostore.NewHealth(client),
			close:      client.Disconnect,
		}, nil
	default:
		db, err := gormdb.Open(ctx, gormdb.Config{
			Driver:       cfg.Store.Driver,
			DSN:          cfg.Store.DatabaseURL,
			Debug:        cfg.Store.SQLDebug,
			MaxOpenConns: cfg.Store.MaxOpenConns,
		})
		if err != nil {
			return nil, err
		}
		return &stores{
			users:      gormdb.NewUserRepository(db),
			categories: gormdb.NewCategoryRepository(db),
			products:   gormdb.NewProductRepository(db),
			health:     gormdb.NewHealth(db),
			close:      func(context.Context) error { return gormdb.Close(db) },
		}, nil
	}
}
