package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/config"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/logging"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/middleware"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/routes"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/services"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/utils"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/ws"
)

func main() {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(cfg.Log.Logging())

	db, err := config.ConnectDB(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("cannot connect to database")
	}

	ids, err := utils.NewIDGenerator(cfg.Server.MachineID)
	if err != nil {
		logging.Fatal().Err(err).Msg("cannot create id generator")
	}
	tokens, err := utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	if err != nil {
		logging.Fatal().Err(err).Msg("cannot create token issuer")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub()
	go hub.Run(ctx)

	svc := services.New(db, ids)
	svc.Hub = hub
	svc.SimilarLimit = cfg.Discovery.SimilarLimit
	if cfg.Storage.SupabaseURL != "" {
		svc.Blobs = services.NewSupabaseStore(cfg.Storage.SupabaseURL, cfg.Storage.SupabaseKey, cfg.Storage.Bucket, cfg.Storage.Timeout)
	} else {
		logging.Warn().Msg("SUPABASE_URL not set, uploads are disabled")
	}
	if cfg.Generation.URL != "" {
		svc.Generator = services.NewHTTPGenerator(cfg.Generation.URL, cfg.Generation.APIKey, cfg.Generation.Timeout)
	}

	var verifier middleware.IdentityVerifier
	if cfg.Auth.ClerkSecretKey != "" {
		cv, err := middleware.NewClerkVerifier(cfg.Auth.ClerkSecretKey)
		if err != nil {
			logging.Fatal().Err(err).Msg("clerk init failed")
		}
		verifier = cv
	} else {
		logging.Info().Msg("CLERK_SECRET_KEY not set, only local accounts can sign in")
	}

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Prometheus())

	// CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Auth-Token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, routes.Deps{
		Service:   svc,
		Tokens:    tokens,
		Verifier:  verifier,
		Hub:       hub,
		Discovery: cfg.Discovery,
		Limiter:   middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           r,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}

	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
}
