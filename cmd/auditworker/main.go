package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/ashwath129/DayMap/internal/config"
	"github.com/ashwath129/DayMap/internal/infra/logger"
	mq "github.com/ashwath129/DayMap/internal/infra/queue"
)

const auditQueue = "daymap.itinerary_change.audit"

type changeLogEvent struct {
	ChangeID   string `json:"change_id"`
	SessionID  string `json:"session_id"`
	GroupID    string `json:"group_id"`
	UserID     string `json:"user_id"`
	ChangeType string `json:"change_type"`
	CreatedAt  string `json:"created_at"`
}

// auditworker tails the itinerary change-log exchange and emits one
// structured line per structural edit, for retention outside the database.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	zl, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	conn, err := mq.Dial(cfg)
	if err != nil {
		zl.Fatal("rabbitmq dial failed", zap.Error(err))
	}
	defer conn.Close()

	consumer, err := mq.NewConsumer(conn, auditQueue, 50, zl, cfg)
	if err != nil {
		zl.Fatal("consumer setup failed", zap.Error(err))
	}
	defer consumer.Close()

	if err := consumer.Bind(
		cfg.RabbitMQ.ExchangeName.ItineraryChange,
		cfg.RabbitMQ.RoutingKey.ItineraryChangeInsert,
	); err != nil {
		zl.Fatal("queue bind failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zl.Info("audit worker consuming", zap.String("queue", auditQueue))

	err = consumer.Handle(ctx, func(body []byte) error {
		var ev changeLogEvent
		if err := sonic.Unmarshal(body, &ev); err != nil {
			// Malformed payloads are dropped, not requeued.
			zl.Warn("unparseable change event", zap.Error(err))
			return nil
		}
		zl.Info("itinerary change",
			zap.String("change_id", ev.ChangeID),
			zap.String("session_id", ev.SessionID),
			zap.String("group_id", ev.GroupID),
			zap.String("user_id", ev.UserID),
			zap.String("change_type", ev.ChangeType),
			zap.String("created_at", ev.CreatedAt),
		)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		zl.Error("consumer stopped", zap.Error(err))
	}
}
