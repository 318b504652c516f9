package bootstrap

import (
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/supabase-community/auth-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ashwath129/DayMap/internal/config"
	"github.com/ashwath129/DayMap/internal/infra/cache"
	"github.com/ashwath129/DayMap/internal/infra/db"
	"github.com/ashwath129/DayMap/internal/infra/feed"
	"github.com/ashwath129/DayMap/internal/infra/logger"
	"github.com/ashwath129/DayMap/internal/infra/planner"
	mq "github.com/ashwath129/DayMap/internal/infra/queue"
	"github.com/ashwath129/DayMap/internal/live"
	"github.com/ashwath129/DayMap/internal/modules/handler"
	"github.com/ashwath129/DayMap/internal/modules/repo"
	"github.com/ashwath129/DayMap/internal/modules/service"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := repo.AutoMigrate(d); err != nil {
				return nil, err
			}
		}
		return d, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return cache.New(cfg)
	})

	// RabbitMQ connection
	do.Provide(inj, func(i *do.Injector) (*amqp.Connection, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return mq.Dial(cfg)
	})

	// RabbitMQ publisher
	do.Provide(inj, func(i *do.Injector) (*mq.Publisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		conn := do.MustInvoke[*amqp.Connection](i)
		log := do.MustInvoke[*zap.Logger](i)
		return mq.NewPublisher(conn, log, cfg)
	})

	// change feed
	do.Provide(inj, func(i *do.Injector) (feed.Feed, error) {
		return feed.NewRedisFeed(
			do.MustInvoke[*redis.Client](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// unread notifier
	do.Provide(inj, func(i *do.Injector) (*live.Notifier, error) {
		return live.NewNotifier(do.MustInvoke[*redis.Client](i)), nil
	})

	// plan generation backend
	do.Provide(inj, func(i *do.Injector) (planner.Planner, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return planner.New(cfg)
	})

	// Supabase auth
	do.Provide(inj, func(i *do.Injector) (auth.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return auth.New(cfg.Supabase.ProjectRef, cfg.Supabase.AnonKey), nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.GroupRepo, error) {
		return repo.NewGroupRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.MessageRepo, error) {
		return repo.NewMessageRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.SessionRepo, error) {
		return repo.NewSessionRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.GroupService, error) {
		return service.NewGroupService(
			do.MustInvoke[repo.GroupRepo](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.MessageService, error) {
		return service.NewMessageService(
			do.MustInvoke[repo.MessageRepo](i),
			do.MustInvoke[repo.GroupRepo](i),
			do.MustInvoke[feed.Feed](i),
			do.MustInvoke[*live.Notifier](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.LiveSessionService, error) {
		return service.NewLiveSessionService(
			do.MustInvoke[repo.SessionRepo](i),
			do.MustInvoke[service.GroupService](i),
			do.MustInvoke[service.MessageService](i),
			do.MustInvoke[feed.Feed](i),
			do.MustInvoke[*mq.Publisher](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.PlanChatService, error) {
		return service.NewPlanChatService(
			do.MustInvoke[service.GroupService](i),
			do.MustInvoke[service.LiveSessionService](i),
			do.MustInvoke[service.MessageService](i),
			do.MustInvoke[planner.Planner](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.NotificationService, error) {
		return service.NewNotificationService(
			do.MustInvoke[repo.GroupRepo](i),
			do.MustInvoke[repo.SessionRepo](i),
			do.MustInvoke[*live.Notifier](i),
		), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.GroupHandler, error) {
		return handler.NewGroupHandler(do.MustInvoke[service.GroupService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.MessageHandler, error) {
		return handler.NewMessageHandler(do.MustInvoke[service.MessageService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.SessionHandler, error) {
		return handler.NewSessionHandler(do.MustInvoke[service.LiveSessionService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ItineraryHandler, error) {
		return handler.NewItineraryHandler(do.MustInvoke[service.LiveSessionService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.PlanChatHandler, error) {
		return handler.NewPlanChatHandler(do.MustInvoke[service.PlanChatService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.NotificationHandler, error) {
		return handler.NewNotificationHandler(do.MustInvoke[service.NotificationService](i)), nil
	})

	return inj
}
