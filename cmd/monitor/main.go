package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/cyberone/financial-mesh/internal/config"
	"github.com/cyberone/financial-mesh/internal/models"
	"github.com/cyberone/financial-mesh/internal/queue"
)

// monitor tails the mesh event queue so operators see transfers, status
// changes and auth failures without polling the store.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// Connect to RabbitMQ
	logger.Info("connecting to RabbitMQ...")
	rabbitmq, err := queue.NewRabbitMQ(cfg.RabbitMQ.URI)
	if err != nil {
		logger.Fatal("failed to connect to RabbitMQ", zap.Error(err))
	}
	defer rabbitmq.Close()

	events, err := rabbitmq.ConsumeEvents(ctx)
	if err != nil {
		logger.Fatal("failed to consume events", zap.Error(err))
	}

	go func() {
		for evt := range events {
			fields := []zap.Field{
				zap.String("type", string(evt.Type)),
				zap.String("account_id", evt.AccountID),
				zap.String("details", evt.Details),
				zap.Time("timestamp", evt.Timestamp),
			}
			if evt.TransactionID != "" {
				fields = append(fields, zap.String("tx_id", evt.TransactionID))
			}

			switch evt.Severity {
			case models.SeverityCritical:
				logger.Error("mesh event", fields...)
			case models.SeverityWarning:
				logger.Warn("mesh event", fields...)
			default:
				logger.Info("mesh event", fields...)
			}
		}
	}()

	logger.Info("event monitor started")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down monitor...")
	cancel()
	logger.Info("monitor shut down successfully")
}
