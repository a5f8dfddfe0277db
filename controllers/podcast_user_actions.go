package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/services"
)

// Thích / bỏ thích podcast
func ToggleLike(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustUser(c)
		if !ok {
			return
		}
		liked, count, err := svc.ToggleLike(c.Request.Context(), user, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"liked": liked, "like_count": count})
	}
}

type commentInput struct {
	Content string `json:"content" binding:"required"`
}

func AddComment(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustUser(c)
		if !ok {
			return
		}
		var in commentInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err.Error())
			return
		}
		cm, err := svc.AddComment(c.Request.Context(), user, c.Param("id"), in.Content)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": cm})
	}
}

func ListComments(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.ListComments(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": items})
	}
}

func DeleteComment(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustUser(c)
		if !ok {
			return
		}
		if err := svc.DeleteComment(c.Request.Context(), user, c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
	}
}
