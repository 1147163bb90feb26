package http

import (
	"log/slog"
	"net/http"

	"alumnet/auth"
	"alumnet/moderation"
	"alumnet/services"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the REST surface. Every route except the health check
// resolves the acting member through the auth middleware.
func NewRouter(graph services.ISocialGraphService,
	messages services.IMessageService,
	notifications services.INotificationService,
	gate *moderation.Gate,
	jwtSecret []byte,
	log *slog.Logger) *gin.Engine {

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	connectionHandler := NewConnectionHandler(graph, log)
	messageHandler := NewMessageHandler(messages, log)
	notificationHandler := NewNotificationHandler(notifications, log)
	moderationHandler := NewModerationHandler(gate, log)

	authed := router.Group("/", auth.Middleware(jwtSecret))

	authed.POST("/connections", connectionHandler.Create)
	authed.GET("/connections", connectionHandler.List)
	authed.PATCH("/connections/:id", connectionHandler.Update)
	authed.DELETE("/connections/:id", connectionHandler.Delete)

	authed.GET("/messages", messageHandler.History)
	authed.POST("/messages", messageHandler.Send)
	authed.POST("/messages/mark-read", messageHandler.MarkRead)
	authed.GET("/messages/search", messageHandler.Search)

	authed.GET("/notifications", notificationHandler.List)
	authed.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	authed.PATCH("/notifications", notificationHandler.Patch)
	authed.POST("/notifications/events", notificationHandler.PostEvent)

	authed.POST("/moderation/preview", moderationHandler.Preview)

	return router
}
