package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"catalog/internal/config"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	logger := cfg.NewLogger()

	app, err := NewApp(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize application")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RabbitMQConsume {
		if err := app.StartConsumer(ctx); err != nil {
			logger.WithError(err).Error("Failed to start RabbitMQ consumer")
		}
	}

	go func() {
		logger.WithField("port", cfg.AppPort).Info("Starting server")
		if err := app.Fiber.Listen(cfg.AppPort); err != nil {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	if err := app.Fiber.Shutdown(); err != nil {
		logger.WithError(err).Error("Error during Fiber shutdown")
	}
	if err := app.Close(); err != nil {
		logger.WithError(err).Error("Error releasing resources")
	}
	logger.Info("Server gracefully stopped")
}
