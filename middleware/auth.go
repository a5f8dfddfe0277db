package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/clerkinc/clerk-sdk-go/clerk"
	"github.com/gin-gonic/gin"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/logging"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/models"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/services"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/utils"
)

const (
	ContextUser   = "user"
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// IdentityVerifier checks tokens issued by an external identity provider.
type IdentityVerifier interface {
	VerifyToken(ctx context.Context, token string) (services.Identity, error)
}

// ClerkVerifier verifies Clerk session tokens and loads the Clerk user.
type ClerkVerifier struct {
	client clerk.Client
}

func NewClerkVerifier(secretKey string) (*ClerkVerifier, error) {
	if secretKey == "" {
		return nil, errors.New("missing Clerk secret key")
	}
	client, err := clerk.NewClient(secretKey)
	if err != nil {
		return nil, err
	}
	return &ClerkVerifier{client: client}, nil
}

func (v *ClerkVerifier) VerifyToken(_ context.Context, token string) (services.Identity, error) {
	sess, err := v.client.VerifyToken(token)
	if err != nil {
		return services.Identity{}, err
	}

	u, err := v.client.Users().Read(sess.Subject)
	if err != nil {
		return services.Identity{}, err
	}

	id := services.Identity{ID: u.ID, ImageURL: u.ProfileImageURL}
	if len(u.EmailAddresses) > 0 {
		id.Email = u.EmailAddresses[0].EmailAddress
	}
	var parts []string
	for _, p := range []*string{u.FirstName, u.LastName} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	id.Name = strings.Join(parts, " ")
	return id, nil
}

// AuthMiddleware accepts a local JWT first and falls back to the identity
// provider. The token comes from the Authorization or X-Auth-Token header,
// or from the token query parameter for WebSocket clients.
func AuthMiddleware(svc *services.Service, tokens *utils.TokenIssuer, verifier IdentityVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or malformed Authorization header"})
			return
		}

		user, err := authenticate(c, svc, tokens, verifier, token)
		if err != nil {
			logging.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("authentication failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if !user.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account is disabled"})
			return
		}

		c.Set(ContextUser, user)
		c.Set(ContextUserID, user.ID)
		c.Set(ContextRole, user.Role)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and lets
// anonymous requests through.
func OptionalAuth(svc *services.Service, tokens *utils.TokenIssuer, verifier IdentityVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}
		user, err := authenticate(c, svc, tokens, verifier, token)
		if err == nil && user.Active {
			c.Set(ContextUser, user)
			c.Set(ContextUserID, user.ID)
			c.Set(ContextRole, user.Role)
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, svc *services.Service, tokens *utils.TokenIssuer, verifier IdentityVerifier, token string) (models.User, error) {
	ctx := c.Request.Context()

	// 1) JWT local
	claims, jwtErr := tokens.VerifyToken(token)
	if jwtErr == nil {
		return svc.GetUser(ctx, claims.UserID)
	}

	// 2) Clerk
	if verifier == nil {
		return models.User{}, jwtErr
	}
	ident, err := verifier.VerifyToken(ctx, token)
	if err != nil {
		return models.User{}, errors.Join(jwtErr, err)
	}
	return svc.UpsertExternalUser(ctx, ident, models.ProviderClerk)
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		header = c.GetHeader("X-Auth-Token")
	}
	if header == "" {
		if t := c.Query("token"); t != "" {
			return t, true
		}
		return "", false
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if u.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}
