package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog/internal/config"
	"catalog/internal/handlers"
	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App is the wired HTTP application with the resources it owns.
type App struct {
	Fiber *fiber.App

	cfg  *config.Config
	log  *logrus.Logger
	db   *gorm.DB
	mq   *rabbitmq.Client
	auth *services.AuthService
}

type catalogRepositories struct {
	products  repositories.CatalogRepository[models.Product, models.ProductOption]
	inventory repositories.CatalogRepository[models.InventoryItem, models.InventoryItemOption]
}

// NewApp opens the store, connects the optional event broker and registers all routes.
func NewApp(cfg *config.Config, logger *logrus.Logger) (*App, error) {
	a := &App{cfg: cfg, log: logger}

	repos, err := a.openRepositories()
	if err != nil {
		return nil, err
	}

	if cfg.SeedData {
		ctx := context.Background()
		if err := seedCatalog[models.Product, models.ProductOption](ctx, repos.products, productSeed, logger.WithField("resource", "product")); err != nil {
			a.Close()
			return nil, err
		}
		if err := seedCatalog[models.InventoryItem, models.InventoryItemOption](ctx, repos.inventory, inventorySeed, logger.WithField("resource", "inventory item")); err != nil {
			a.Close()
			return nil, err
		}
	}

	var events services.EventPublisher
	if cfg.EventsEnabled() {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue}, logger)
		if err != nil {
			logger.WithError(err).Warn("RabbitMQ unavailable, catalog events disabled")
		} else {
			a.mq = mq
			events = services.NewBreakerPublisher(mq, logger)
		}
	}

	productService := services.NewProductService(repos.products, logger, events)
	inventoryService := services.NewInventoryItemService(repos.inventory, logger, events)
	a.auth = services.NewAuthService(services.AuthConfig{
		Secret:       cfg.JWTSecret,
		Username:     cfg.AuthUsername,
		PasswordHash: cfg.AuthPasswordHash,
		TokenTTL:     cfg.TokenTTL,
	}, logger)

	app := fiber.New(fiber.Config{
		AppName:      "catalog",
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{Output: logger.Out}))
	app.Use(middleware.Metrics())

	app.Get("/health", a.handleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	var guards []fiber.Handler
	if a.auth.Enabled() {
		handlers.NewAuthHandler(a.auth).RegisterRoutes(api)
		guards = append(guards, middleware.AuthRequired(a.auth))
	} else {
		logger.Warn("JWT_SECRET is not set, write routes are unauthenticated")
	}
	handlers.NewProductHandler(productService).RegisterRoutes(api, guards...)
	handlers.NewInventoryItemHandler(inventoryService).RegisterRoutes(api, guards...)

	a.Fiber = app
	return a, nil
}

func (a *App) openRepositories() (*catalogRepositories, error) {
	if a.cfg.DatabaseDriver == "memory" {
		a.log.Info("Using in-memory catalog store")
		return &catalogRepositories{
			products:  repositories.NewMemoryCatalogRepository[models.Product, models.ProductOption](),
			inventory: repositories.NewMemoryCatalogRepository[models.InventoryItem, models.InventoryItemOption](),
		}, nil
	}

	db, err := repositories.OpenDatabase(a.cfg.DatabaseDriver, a.cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := repositories.Migrate(db); err != nil {
		closeDB(db)
		return nil, err
	}
	a.db = db
	a.log.WithField("driver", a.cfg.DatabaseDriver).Info("Database connected and migrated")

	return &catalogRepositories{
		products:  repositories.NewGORMCatalogRepository[models.Product, models.ProductOption](db),
		inventory: repositories.NewGORMCatalogRepository[models.InventoryItem, models.InventoryItemOption](db),
	}, nil
}

func (a *App) handleHealth(c *fiber.Ctx) error {
	status := fiber.StatusOK
	body := fiber.Map{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"database": a.cfg.DatabaseDriver,
		"events":   a.mq != nil,
	}

	if a.db != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := pingDB(ctx, a.db); err != nil {
			a.log.WithError(err).Error("Health check failed")
			status = fiber.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body["error"] = err.Error()
		}
	}
	return c.Status(status).JSON(body)
}

// StartConsumer logs catalog events read back from the queue until ctx ends.
// It is a no-op when no broker is connected.
func (a *App) StartConsumer(ctx context.Context) error {
	if a.mq == nil {
		return nil
	}
	return a.mq.ConsumeEvents(ctx, rabbitmq.LogEventHandler(a.log.WithField("component", "consumer")))
}

// Close releases the broker connection and the database.
func (a *App) Close() error {
	var errs []error
	if a.mq != nil {
		if err := a.mq.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.db != nil {
		if err := closeDB(a.db); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}
