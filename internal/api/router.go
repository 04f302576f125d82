package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Kiranbanna12/xrozen-chat/config"
	"github.com/Kiranbanna12/xrozen-chat/internal/handler"
	"github.com/Kiranbanna12/xrozen-chat/internal/middlewares"
	"github.com/Kiranbanna12/xrozen-chat/middleware/jwt"
	"github.com/Kiranbanna12/xrozen-chat/utils/ratelimit"
)

// NewRouter assembles the HTTP surface
func NewRouter(
	tokens *jwt.TokenManager,
	limiter ratelimit.Limiter,
	rateLimitCfg *config.RateLimitConfig,
	authHandler *handler.AuthHandler,
	projectHandler *handler.ProjectHandler,
	messageHandler *handler.MessageHandler,
	membershipHandler *handler.MembershipHandler,
	shareHandler *handler.ShareHandler,
	unreadHandler *handler.UnreadHandler,
	wsHandler *handler.WSHandler,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())
	r.Use(middlewares.TraceMiddleware())
	r.Use(middlewares.RateLimitMiddleware(limiter, rateLimitCfg.QPS, rateLimitCfg.Burst))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Share resolution accepts anonymous callers; a present token still
	// identifies registered users.
	api.POST("/shares/resolve", middlewares.OptionalAuthMiddleware(tokens), shareHandler.ResolveShare)

	// Protected routes
	protected := api.Group("/")
	protected.Use(middlewares.AuthMiddleware(tokens))
	{
		projects := protected.Group("/projects")
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:project_id", projectHandler.GetProject)

			projects.POST("/:project_id/messages", messageHandler.SendMessage)
			projects.GET("/:project_id/messages", messageHandler.ListMessages)

			projects.POST("/:project_id/join", membershipHandler.JoinProject)
			projects.GET("/:project_id/members", membershipHandler.ListMembers)

			projects.POST("/:project_id/join-requests", membershipHandler.RequestJoin)
			projects.GET("/:project_id/join-requests", membershipHandler.ListJoinRequests)

			projects.POST("/:project_id/shares", shareHandler.CreateShare)
			projects.GET("/:project_id/shares", shareHandler.ListShares)

			projects.POST("/:project_id/read", unreadHandler.MarkProjectRead)
		}

		messages := protected.Group("/messages")
		{
			messages.GET("/:message_id", messageHandler.GetMessage)
			messages.POST("/:message_id/delivered", messageHandler.MarkDelivered)
			messages.POST("/:message_id/read", messageHandler.MarkRead)
		}

		members := protected.Group("/members")
		{
			members.DELETE("/:member_id", membershipHandler.RemoveMember)
		}

		requests := protected.Group("/join-requests")
		{
			requests.POST("/:request_id/respond", membershipHandler.RespondJoinRequest)
		}

		shares := protected.Group("/shares")
		{
			shares.DELETE("/:share_id", shareHandler.RevokeShare)
		}

		protected.GET("/unread", unreadHandler.GetUnread)
		protected.GET("/ws", wsHandler.Subscribe)
	}

	return r
}
