package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/services"
)

// Thống kê tổng quan cho admin
func AdminStats(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svc.AdminStats(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": stats})
	}
}

type roleInput struct {
	Role string `json:"role" binding:"required"`
}

func SetUserRole(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in roleInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "role is required")
			return
		}
		user, err := svc.SetRole(c.Request.Context(), c.Param("id"), in.Role)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": ownAccount(user)})
	}
}
