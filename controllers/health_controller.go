package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/middleware"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/services"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/ws"
)

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Health pings the database.
func Health(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := svc.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// WebSocket: thông báo realtime và số chưa đọc
func NotificationsSocket(hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		hub.ServeNotifications(c.Writer, c.Request, c.GetString(middleware.ContextUserID))
	}
}

func BadgeSocket(hub *ws.Hub, svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.ContextUserID)
		// gửi số chưa đọc hiện tại ngay khi kết nối
		var unread int64
		if userID != "" {
			n, err := svc.UnreadCount(c.Request.Context(), userID)
			if err != nil {
				respondError(c, err)
				return
			}
			unread = n
		}
		hub.ServeBadge(c.Writer, c.Request, userID, unread)
	}
}
