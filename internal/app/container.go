// Package app wires the storefront's dependencies.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	catalogApp "github.com/mirelabalan/fanvault/internal/catalog/application"
	catalogDomain "github.com/mirelabalan/fanvault/internal/catalog/domain"
	catalogPersistence "github.com/mirelabalan/fanvault/internal/catalog/infrastructure/persistence"
	"github.com/mirelabalan/fanvault/internal/delivery"
	engagementApp "github.com/mirelabalan/fanvault/internal/engagement/application"
	engagementDomain "github.com/mirelabalan/fanvault/internal/engagement/domain"
	engagementPersistence "github.com/mirelabalan/fanvault/internal/engagement/infrastructure/persistence"
	entitlementApp "github.com/mirelabalan/fanvault/internal/entitlement/application"
	entitlementDomain "github.com/mirelabalan/fanvault/internal/entitlement/domain"
	entitlementPersistence "github.com/mirelabalan/fanvault/internal/entitlement/infrastructure/persistence"
	identityApp "github.com/mirelabalan/fanvault/internal/identity/application"
	identityQueries "github.com/mirelabalan/fanvault/internal/identity/application/queries"
	identityDomain "github.com/mirelabalan/fanvault/internal/identity/domain"
	identityPersistence "github.com/mirelabalan/fanvault/internal/identity/infrastructure/persistence"
	ingestionApp "github.com/mirelabalan/fanvault/internal/ingestion/application"
	"github.com/mirelabalan/fanvault/internal/ingestion/infrastructure/sessionstore"
	settlementApp "github.com/mirelabalan/fanvault/internal/settlement/application"
	settlementDomain "github.com/mirelabalan/fanvault/internal/settlement/domain"
	settlementPersistence "github.com/mirelabalan/fanvault/internal/settlement/infrastructure/persistence"
	sharedApplication "github.com/mirelabalan/fanvault/internal/shared/application"
	"github.com/mirelabalan/fanvault/internal/shared/infrastructure/eventbus"
	"github.com/mirelabalan/fanvault/internal/shared/infrastructure/migrations"
	"github.com/mirelabalan/fanvault/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/mirelabalan/fanvault/internal/shared/infrastructure/persistence"
	"github.com/mirelabalan/fanvault/pkg/config"
	"github.com/mirelabalan/fanvault/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics observability.Metrics

	// Database. Exactly one of DB and SQLiteDB is set.
	DB       *pgxpool.Pool
	SQLiteDB *sql.DB

	RedisClient *redis.Client

	// Repositories
	UserRepo         identityDomain.Repository
	ItemRepo         catalogDomain.Repository
	SubscriptionRepo entitlementDomain.SubscriptionRepository
	PurchaseRepo     entitlementDomain.PurchaseRepository
	ProcessedRepo    settlementDomain.ProcessedPaymentRepository
	ResponseRepo     engagementDomain.Repository
	OutboxRepo       outbox.Repository
	SessionStore     ingestionApp.SessionStore

	UnitOfWork     sharedApplication.UnitOfWork
	EventPublisher eventbus.Publisher

	// Services
	Identity   *identityApp.Service
	Stats      *identityQueries.StatsHandler
	Gate       *catalogApp.Gate
	Engine     *entitlementApp.Engine
	Ingestion  *ingestionApp.Service
	Settlement *settlementApp.Handler
	Dispatcher *delivery.Dispatcher
	Responder  *engagementApp.Responder

	OutboxProcessor *outbox.Processor

	closers []func()
}

// Options tune container construction.
type Options struct {
	// Sender delivers assets over the chat platform. When nil, sends are
	// logged instead, which is what local mode wants.
	Sender delivery.Sender

	// Metrics collects application metrics. Defaults to a no-op.
	Metrics observability.Metrics
}

// NewContainer creates and wires all dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*Container, error) {
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: opts.Metrics,
	}
	if c.Metrics == nil {
		c.Metrics = observability.NoopMetrics{}
	}

	if err := c.connectDatabase(ctx); err != nil {
		return nil, err
	}

	c.connectRedis(ctx)

	if err := c.connectPublisher(); err != nil {
		c.Close()
		return nil, err
	}

	sender := opts.Sender
	if sender == nil {
		sender = delivery.NewLogSender(logger)
	}

	c.Identity = identityApp.NewService(c.UserRepo, c.OutboxRepo, c.UnitOfWork, logger)
	c.Stats = identityQueries.NewStatsHandler(c.UserRepo)

	c.Engine = entitlementApp.NewEngine(
		c.SubscriptionRepo,
		c.PurchaseRepo,
		c.UserRepo,
		c.OutboxRepo,
		c.UnitOfWork,
		cfg.SubscriptionPeriod(),
		logger,
	).WithMetrics(c.Metrics)

	c.Gate = catalogApp.NewGate(c.ItemRepo, c.Engine, c.OutboxRepo, c.UnitOfWork, logger)

	c.Ingestion = ingestionApp.NewService(c.SessionStore, c.Gate, logger)

	c.Dispatcher = delivery.NewDispatcher(sender, logger).WithMetrics(c.Metrics)

	c.Settlement = settlementApp.NewHandler(
		c.ProcessedRepo,
		c.Engine,
		c.Gate,
		c.Dispatcher,
		c.UnitOfWork,
		logger,
	).WithMetrics(c.Metrics)

	c.Responder = engagementApp.NewResponder(c.ResponseRepo)

	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, outbox.ProcessorConfig{
		PollInterval: cfg.OutboxPollInterval,
		BatchSize:    cfg.OutboxBatchSize,
		MaxRetries:   cfg.OutboxMaxRetries,
	}, logger)

	return c, nil
}

func (c *Container) connectDatabase(ctx context.Context) error {
	if c.Config.UseSQLite() {
		if dir := filepath.Dir(c.Config.SQLitePath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create data directory: %w", err)
			}
		}

		db, err := sql.Open("sqlite", c.Config.SQLitePath)
		if err != nil {
			return fmt.Errorf("open sqlite database: %w", err)
		}
		// Serialized writes keep the modernc driver happy.
		db.SetMaxOpenConns(1)

		if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
			db.Close()
			return fmt.Errorf("run migrations: %w", err)
		}

		c.SQLiteDB = db
		c.closers = append(c.closers, func() { db.Close() })
		c.UnitOfWork = sharedPersistence.NewSQLiteUnitOfWork(db)
		c.UserRepo = identityPersistence.NewSQLiteUserRepository(db)
		c.ItemRepo = catalogPersistence.NewSQLiteItemRepository(db)
		c.SubscriptionRepo = entitlementPersistence.NewSQLiteSubscriptionRepository(db)
		c.PurchaseRepo = entitlementPersistence.NewSQLitePurchaseRepository(db)
		c.ProcessedRepo = settlementPersistence.NewSQLiteProcessedPaymentRepository(db)
		c.ResponseRepo = engagementPersistence.NewSQLiteResponseRepository(db)
		c.OutboxRepo = outbox.NewSQLiteRepository(db)

		c.Logger.Info("using local sqlite database", "path", c.Config.SQLitePath)
		return nil
	}

	pool, err := pgxpool.New(ctx, c.Config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return fmt.Errorf("run migrations: %w", err)
	}

	c.DB = pool
	c.closers = append(c.closers, pool.Close)
	c.UnitOfWork = sharedPersistence.NewPostgresUnitOfWork(pool)
	c.UserRepo = identityPersistence.NewPostgresUserRepository(pool)
	c.ItemRepo = catalogPersistence.NewPostgresItemRepository(pool)
	c.SubscriptionRepo = entitlementPersistence.NewPostgresSubscriptionRepository(pool)
	c.PurchaseRepo = entitlementPersistence.NewPostgresPurchaseRepository(pool)
	c.ProcessedRepo = settlementPersistence.NewPostgresProcessedPaymentRepository(pool)
	c.ResponseRepo = engagementPersistence.NewPostgresResponseRepository(pool)
	c.OutboxRepo = outbox.NewPostgresRepository(pool)

	c.Logger.Info("connected to database")
	return nil
}

// connectRedis attaches the Redis-backed session store, falling back to
// memory when Redis is unreachable. Local mode skips Redis entirely.
func (c *Container) connectRedis(ctx context.Context) {
	c.SessionStore = sessionstore.NewMemoryStore()

	if c.Config.UseSQLite() || c.Config.RedisURL == "" {
		return
	}

	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		c.Logger.Warn("invalid Redis URL, upload sessions held in memory", "error", err)
		return
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		c.Logger.Warn("Redis not available, upload sessions held in memory", "error", err)
		client.Close()
		return
	}

	c.RedisClient = client
	c.SessionStore = sessionstore.NewRedisStore(client)
	c.closers = append(c.closers, func() { client.Close() })
	c.Logger.Info("connected to Redis")
}

func (c *Container) connectPublisher() error {
	publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
	if err != nil {
		if c.Config.IsDevelopment() || c.Config.UseSQLite() {
			c.Logger.Warn("RabbitMQ not available, using noop publisher", "error", err)
			c.EventPublisher = eventbus.NewNoopPublisher(c.Logger)
			return nil
		}
		return fmt.Errorf("connect to RabbitMQ: %w", err)
	}

	c.EventPublisher = publisher
	c.closers = append(c.closers, func() { publisher.Close() })
	return nil
}

// Close releases all resources held by the container.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
