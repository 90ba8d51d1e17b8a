package main

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/pcbfab/chat-service/internal/handlers"
	"github.com/pcbfab/chat-service/internal/middleware"
	"github.com/pcbfab/chat-service/pkg/auth"
)

func APIEndpoints(
	r *gin.Engine,
	jwtMgr *auth.JWTManager,
	rdb *redis.Client,
	wsH *handlers.WebSocketHandler,
	chatH *handlers.ChatHandler,
	adminH *handlers.AdminHandler,
) {
	// WebSocket endpoint
	r.GET("/ws", middleware.WSAuthMiddleware(jwtMgr, rdb), wsH.HandleWebSocket)

	// Chat API
	api := r.Group("/api/chat", middleware.AuthMiddleware(jwtMgr, rdb))
	{
		api.GET("/rooms/:room/messages", chatH.GetRoomMessages)
		api.GET("/rooms/:room/online", chatH.GetOnlineUsers)
		api.GET("/unread", chatH.GetUnreadCount)
	}

	// Admin API
	admin := r.Group("/api/admin", middleware.AuthMiddleware(jwtMgr, rdb), middleware.AdminOnly())
	{
		admin.POST("/blocks", adminH.BlockUser)
		admin.DELETE("/blocks/:id", adminH.UnblockUser)
	}
}
