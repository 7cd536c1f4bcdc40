package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "referral-rewards-backend/docs"
	"referral-rewards-backend/internal/common/config"
	"referral-rewards-backend/internal/common/logger"
	"referral-rewards-backend/internal/common/middleware"
	challengeHTTP "referral-rewards-backend/internal/features/challenge/delivery/http"
	challengeRedis "referral-rewards-backend/internal/features/challenge/repository/redis"
	challengeService "referral-rewards-backend/internal/features/challenge/service"
	fraudRedis "referral-rewards-backend/internal/features/fraud/repository/redis"
	fraudService "referral-rewards-backend/internal/features/fraud/service"
	ledgerHTTP "referral-rewards-backend/internal/features/ledger/delivery/http"
	ledgerRedis "referral-rewards-backend/internal/features/ledger/repository/redis"
	ledgerService "referral-rewards-backend/internal/features/ledger/service"
	referralHTTP "referral-rewards-backend/internal/features/referral/delivery/http"
	referralRedis "referral-rewards-backend/internal/features/referral/repository/redis"
	referralService "referral-rewards-backend/internal/features/referral/service"
	topupService "referral-rewards-backend/internal/features/topup/service"
	userHTTP "referral-rewards-backend/internal/features/user/delivery/http"
	userRedis "referral-rewards-backend/internal/features/user/repository/redis"
	userService "referral-rewards-backend/internal/features/user/service"
	"referral-rewards-backend/internal/platform/geoip"
	"referral-rewards-backend/internal/platform/identity"
	"referral-rewards-backend/internal/platform/redis"
	"referral-rewards-backend/internal/platform/vtu"
	"referral-rewards-backend/internal/workers"
)

// @title           Referral Rewards API
// @version         1.0
// @description     Rewards ledger and eligibility engine for the referral program: token grants, airtime and data delivery, referral bonuses and challenges.

// @host      localhost:8080
// @BasePath  /api/v1

// @tag.name users
// @tag.description Accounts, welcome rewards and token purchases

// @tag.name ledger
// @tag.description Token balances and reward history

// @tag.name referrals
// @tag.description Referred friends and their claimable bonuses

// @tag.name challenges
// @tag.description Invitation challenges and referral milestones

func main() {
	cfg := config.Load()
	logger.Init("referral-rewards-backend", cfg.Debug)

	logger.Info().Bool("debug", cfg.Debug).Msg("Starting referral rewards backend")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient, err := redis.Open(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	vtuClient := vtu.NewClient(cfg.VTU.BaseURL, cfg.VTU.Username, cfg.VTU.Password,
		time.Duration(cfg.VTU.TimeoutSeconds)*time.Second)
	geoClient := geoip.NewClient(cfg.GeoIP.Endpoint, cfg.GeoIP.Token)
	identityProvider := identity.NewHTTPProvider(cfg.Identity.BaseURL, cfg.Identity.APIKey)

	ledgerRepo := ledgerRedis.NewRepository(redisClient)
	referralRepo := referralRedis.NewRepository(redisClient)
	challengeRepo := challengeRedis.NewRepository(redisClient)
	fraudRepo := fraudRedis.NewRepository(redisClient,
		time.Duration(cfg.Fraud.RegistrationCooldown)*time.Second)
	userRepo := userRedis.NewRepository(redisClient)

	gateway := topupService.NewService(vtuClient, cfg.VTU.AdmissionThreshold)
	ledgerSvc := ledgerService.NewService(ledgerRepo)
	directory := userService.NewDirectory(userRepo, cfg.Cipher.Shift)
	referralSvc := referralService.NewService(referralRepo, ledgerSvc, gateway, directory)
	challengeSvc := challengeService.NewService(challengeRepo, ledgerSvc, referralSvc)
	fraudSvc := fraudService.NewService(fraudRepo, gateway)
	userSvc := userService.NewService(userRepo, fraudSvc, identityProvider, geoClient,
		gateway, ledgerSvc, referralSvc, cfg.Cipher.Shift)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept"}
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	userHTTP.NewUserHandler(userSvc).RegisterRoutes(v1)
	ledgerHTTP.NewLedgerHandler(ledgerSvc).RegisterRoutes(v1)
	referralHTTP.NewReferralHandler(referralSvc).RegisterRoutes(v1)
	challengeHTTP.NewChallengeHandler(challengeSvc).RegisterRoutes(v1)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "referral-rewards-backend",
		})
	})

	monitor := workers.NewBalanceMonitor(gateway,
		time.Duration(cfg.VTU.BalanceCheckMinutes)*time.Minute)
	if err := monitor.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start balance monitor")
	}
	defer monitor.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}
