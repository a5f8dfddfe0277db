package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/services"
)

// Top tác giả theo số podcast
func TopCreators(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, ok := queryInt(c, "limit", 10)
		if !ok {
			return
		}
		items, err := svc.TopCreators(c.Request.Context(), limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": items})
	}
}

func GetUser(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svc.GetUser(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": u})
	}
}

func Followers(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.Followers(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": items, "total": len(items)})
	}
}

func Following(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.Following(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": items, "total": len(items)})
	}
}

// Theo dõi tác giả
func Follow(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustUser(c)
		if !ok {
			return
		}
		if err := svc.Follow(c.Request.Context(), user, c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"following": true})
	}
}

func Unfollow(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustUser(c)
		if !ok {
			return
		}
		if err := svc.Unfollow(c.Request.Context(), user.ID, c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"following": false})
	}
}

// Thông tin cá nhân
func Me() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustUser(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": ownAccount(user)})
	}
}

func UpdateMe(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustUser(c)
		if !ok {
			return
		}
		var in services.ProfileUpdate
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err.Error())
			return
		}
		updated, err := svc.UpdateProfile(c.Request.Context(), user.ID, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "profile updated", "data": ownAccount(updated)})
	}
}
