package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/services"
)

type listenInput struct {
	Position int `json:"position" binding:"min=0"`
}

// Lưu vị trí nghe
func RecordListen(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustUser(c)
		if !ok {
			return
		}
		var in listenInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "position must be a non-negative number of seconds")
			return
		}
		h, err := svc.RecordListen(c.Request.Context(), user.ID, c.Param("id"), in.Position)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": h})
	}
}

func ListeningHistory(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustUser(c)
		if !ok {
			return
		}
		items, err := svc.ListeningHistory(c.Request.Context(), user.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": items})
	}
}
