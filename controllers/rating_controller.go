package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/services"
)

type ratingInput struct {
	Score   int    `json:"score" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// Đánh giá podcast (1-5 sao), gửi lại sẽ cập nhật
func RatePodcast(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustUser(c)
		if !ok {
			return
		}
		var in ratingInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "score must be between 1 and 5")
			return
		}

		rating, podcast, err := svc.RatePodcast(c.Request.Context(), user, c.Param("id"), in.Score, in.Comment)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"data":           rating,
			"average_rating": podcast.AverageRating,
			"rating_count":   podcast.RatingCount,
		})
	}
}

func ListRatings(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.ListRatings(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": items})
	}
}
