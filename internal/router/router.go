package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/supabase-community/auth-go"
	"go.uber.org/zap"

	"github.com/ashwath129/DayMap/internal/config"
	"github.com/ashwath129/DayMap/internal/middleware"
	"github.com/ashwath129/DayMap/internal/modules/handler"
	"github.com/ashwath129/DayMap/internal/modules/serializer"
)

type RouterDeps struct {
	Config              *config.Config
	Log                 *zap.Logger
	AuthClient          auth.Client
	GroupHandler        *handler.GroupHandler
	MessageHandler      *handler.MessageHandler
	SessionHandler      *handler.SessionHandler
	ItineraryHandler    *handler.ItineraryHandler
	PlanChatHandler     *handler.PlanChatHandler
	NotificationHandler *handler.NotificationHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	serializer.SetLogger(d.Log)

	r := gin.New()
	r.Use(gin.Recovery())

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(middleware.OtelTracing(d.Config.App.Name))
		r.Use(middleware.TraceID())
	}

	r.Use(middleware.ZapLogger(d.Log))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	v1 := r.Group("/api/v1")
	{
		v1.Use(middleware.UserAuth(d.AuthClient))

		v1.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "pong"}) })

		groups := v1.Group("/groups")
		{
			groups.POST("", d.GroupHandler.CreateGroup)
			groups.GET("", d.GroupHandler.ListGroups)
			groups.POST("/join", d.GroupHandler.JoinByCode)
			groups.GET("/:group_id", d.GroupHandler.GetGroup)
			groups.DELETE("/:group_id", d.GroupHandler.DeleteGroup)
			groups.POST("/:group_id/join", d.GroupHandler.JoinGroup)
			groups.POST("/:group_id/leave", d.GroupHandler.LeaveGroup)
			groups.GET("/:group_id/members", d.GroupHandler.ListMembers)

			messages := groups.Group("/:group_id/messages")
			{
				messages.POST("", d.MessageHandler.SendMessage)
				messages.GET("", d.MessageHandler.GetMessages)
				messages.POST("/:message_id/reactions", d.MessageHandler.ToggleReaction)
			}

			session := groups.Group("/:group_id/session")
			{
				session.POST("", d.SessionHandler.StartSession)
				session.GET("", d.SessionHandler.GetSession)
				session.DELETE("", d.SessionHandler.EndSession)
				session.POST("/heartbeat", d.SessionHandler.Heartbeat)
				session.POST("/leave", d.SessionHandler.LeaveSession)
				session.GET("/participants", d.SessionHandler.GetParticipants)
			}

			itin := groups.Group("/:group_id/itinerary")
			{
				itin.PUT("", d.ItineraryHandler.ReplaceDocument)
				itin.POST("/days", d.ItineraryHandler.AddDay)
				itin.DELETE("/days/:day_id", d.ItineraryHandler.RemoveDay)
				itin.POST("/reorder", d.ItineraryHandler.ReorderDays)

				itin.PUT("/days/:day_id/field", d.ItineraryHandler.SetField)
				itin.PUT("/days/:day_id/meals", d.ItineraryHandler.SetMeal)
				itin.POST("/days/:day_id/activities", d.ItineraryHandler.AppendActivity)
				itin.PUT("/days/:day_id/activities/:index", d.ItineraryHandler.SetActivity)
				itin.DELETE("/days/:day_id/activities/:index", d.ItineraryHandler.RemoveActivity)
			}

			groups.POST("/:group_id/aichat", d.PlanChatHandler.Chat)

			notifications := groups.Group("/:group_id/notifications")
			{
				notifications.GET("/unread", d.NotificationHandler.GetFlags)
				notifications.POST("/read", d.NotificationHandler.MarkRead)
			}
		}
	}
	return r
}
