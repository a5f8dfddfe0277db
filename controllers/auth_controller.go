package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/logging"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/middleware"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/models"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/services"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/utils"
)

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

func Register(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in RegisterInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err.Error())
			return
		}
		user, err := svc.Register(c.Request.Context(), in.Email, in.Password, in.Name)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "account created", "user": ownAccount(user)})
	}
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Login(svc *services.Service, tokens *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in LoginInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err.Error())
			return
		}
		user, err := svc.Authenticate(c.Request.Context(), in.Email, in.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		issueToken(c, tokens, user)
	}
}

type ClerkLoginInput struct {
	ClerkToken string `json:"clerk_token" binding:"required"`
}

// ClerkLogin đổi token Clerk lấy JWT của hệ thống
func ClerkLogin(svc *services.Service, tokens *utils.TokenIssuer, verifier middleware.IdentityVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "identity provider is not configured"})
			return
		}
		var in ClerkLoginInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "clerk_token is required")
			return
		}

		ident, err := verifier.VerifyToken(c.Request.Context(), in.ClerkToken)
		if err != nil {
			logging.Debug().Err(err).Msg("clerk token rejected")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		user, err := svc.UpsertExternalUser(c.Request.Context(), ident, models.ProviderClerk)
		if err != nil {
			respondError(c, err)
			return
		}
		if !user.Active {
			c.JSON(http.StatusForbidden, gin.H{"error": "account is disabled"})
			return
		}
		issueToken(c, tokens, user)
	}
}

func issueToken(c *gin.Context, tokens *utils.TokenIssuer, user models.User) {
	token, err := tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": ownAccount(user)})
}
