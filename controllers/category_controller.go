package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/middleware"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/models"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/services"
)

// Admin xem được cả danh mục đã tắt (?all=true)
func ListCategories(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		all := false
		if u, ok := middleware.CurrentUser(c); ok && u.Role == models.RoleAdmin {
			all = c.Query("all") == "true"
		}
		items, err := svc.ListCategories(c.Request.Context(), all)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": items})
	}
}

type categoryInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func CreateCategory(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in categoryInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err.Error())
			return
		}
		cat, err := svc.CreateCategory(c.Request.Context(), in.Name, in.Description)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": cat})
	}
}

type categoryStatusInput struct {
	Active *bool `json:"active" binding:"required"`
}

// Bật / tắt danh mục
func SetCategoryStatus(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in categoryStatusInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "active is required")
			return
		}
		cat, err := svc.SetCategoryActive(c.Request.Context(), c.Param("id"), *in.Active)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": cat})
	}
}
