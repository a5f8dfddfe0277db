package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/config"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/controllers"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/middleware"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/services"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/utils"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/ws"
)

// Deps bundles what the handlers need.
type Deps struct {
	Service   *services.Service
	Tokens    *utils.TokenIssuer
	Verifier  middleware.IdentityVerifier
	Hub       *ws.Hub
	Discovery config.DiscoveryConfig
	Limiter   *middleware.RateLimiter
}

func SetupRoutes(r *gin.Engine, d Deps) {
	svc := d.Service
	auth := middleware.AuthMiddleware(svc, d.Tokens, d.Verifier)
	admin := middleware.RequireAdmin()
	limit := middleware.RateLimit(d.Limiter)

	r.GET("/ping", controllers.Ping)
	r.GET("/health", controllers.Health(svc))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// ---------------- AUTH ----------------
	authGroup := api.Group("/auth")
	authGroup.Use(limit)
	{
		authGroup.POST("/register", controllers.Register(svc))
		authGroup.POST("/login", controllers.Login(svc, d.Tokens))
		authGroup.POST("/clerk", controllers.ClerkLogin(svc, d.Tokens, d.Verifier))
	}

	// ---------------- PODCASTS ----------------
	podcasts := api.Group("/podcasts")
	{
		podcasts.GET("", controllers.ListPodcasts(svc, d.Discovery))
		podcasts.GET("/trending", controllers.TrendingPodcasts(svc, d.Discovery))
		podcasts.GET("/featured", controllers.FeaturedPodcasts(svc, d.Discovery))
		podcasts.GET("/:id", controllers.GetPodcast(svc))
		podcasts.GET("/:id/similar", controllers.SimilarPodcasts(svc, d.Discovery))
		podcasts.GET("/:id/ratings", controllers.ListRatings(svc))
		podcasts.GET("/:id/comments", controllers.ListComments(svc))

		protected := podcasts.Group("")
		protected.Use(auth)
		{
			protected.POST("", limit, controllers.CreatePodcast(svc))
			protected.DELETE("/:id", controllers.DeletePodcast(svc))
			protected.POST("/:id/like", controllers.ToggleLike(svc))
			protected.POST("/:id/ratings", controllers.RatePodcast(svc))
			protected.POST("/:id/comments", limit, controllers.AddComment(svc))
			protected.POST("/:id/history", controllers.RecordListen(svc))
		}
	}

	api.DELETE("/comments/:id", auth, controllers.DeleteComment(svc))

	// ---------------- USERS ----------------
	users := api.Group("/users")
	{
		users.GET("/top", controllers.TopCreators(svc))
		users.GET("/:id", controllers.GetUser(svc))
		users.GET("/:id/podcasts", controllers.UserPodcasts(svc, d.Discovery))
		users.GET("/:id/followers", controllers.Followers(svc))
		users.GET("/:id/following", controllers.Following(svc))
		users.POST("/:id/follow", auth, controllers.Follow(svc))
		users.DELETE("/:id/follow", auth, controllers.Unfollow(svc))
	}

	me := api.Group("/me")
	me.Use(auth)
	{
		me.GET("", controllers.Me())
		me.PUT("", controllers.UpdateMe(svc))
		me.GET("/history", controllers.ListeningHistory(svc))
	}

	// ---------------- NOTIFICATIONS ----------------
	notifications := api.Group("/notifications")
	notifications.Use(auth)
	{
		notifications.GET("", controllers.ListNotifications(svc))
		notifications.GET("/unread-count", controllers.UnreadCount(svc))
		notifications.PUT("/read-all", controllers.MarkAllRead(svc))
		notifications.PUT("/:id/read", controllers.MarkRead(svc))
		notifications.DELETE("/:id", controllers.DeleteNotification(svc))
	}

	// ---------------- CATEGORIES ----------------
	categories := api.Group("/categories")
	{
		categories.GET("", middleware.OptionalAuth(svc, d.Tokens, d.Verifier), controllers.ListCategories(svc))
		categories.POST("", auth, admin, controllers.CreateCategory(svc))
		categories.PATCH("/:id/status", auth, admin, controllers.SetCategoryStatus(svc))
	}

	// ---------------- ADMIN ----------------
	adminGroup := api.Group("/admin")
	adminGroup.Use(auth, admin)
	{
		adminGroup.GET("/stats", controllers.AdminStats(svc))
		adminGroup.PATCH("/users/:id/role", controllers.SetUserRole(svc))
	}

	// ---------------- WEBSOCKET ----------------
	wsGroup := r.Group("/ws")
	wsGroup.Use(auth)
	{
		wsGroup.GET("/notifications", controllers.NotificationsSocket(d.Hub))
		wsGroup.GET("/badge", controllers.BadgeSocket(d.Hub, svc))
	}
}
