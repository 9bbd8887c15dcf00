package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pocketplan/budget-api/config"
	"github.com/pocketplan/budget-api/events"
	"github.com/pocketplan/budget-api/handlers"
	"github.com/pocketplan/budget-api/middleware"
	"github.com/pocketplan/budget-api/routes"
	"github.com/pocketplan/budget-api/services"
	"github.com/pocketplan/budget-api/store"
	"github.com/pocketplan/budget-api/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(!cfg.IsProduction(), cfg.LogLevel); err != nil {
		panic(err)
	}
	defer utils.SyncLogger()
	log := utils.Logger()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.NeedsPostgres() {
		var err error
		db, err = config.InitDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		log.Info("database connected")

		if err := config.RunMigrations(db); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var sb *supabase.Client
	if cfg.NeedsSupabase() {
		var err error
		sb, err = supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, &supabase.ClientOptions{})
		if err != nil {
			log.Fatal("failed to create supabase client", zap.Error(err))
		}
	}

	profiles, err := store.New(ctx, store.Config{
		Backend:       store.Backend(cfg.DataBackend),
		DB:            db,
		EncryptionKey: cfg.DataEncryptionKey,
		Supabase:      sb,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
	})
	if err != nil {
		log.Fatal("failed to initialize profile store", zap.Error(err))
	}
	defer profiles.Close()

	wsHandler := handlers.NewWSHandler()
	budgetService := services.NewBudgetService(profiles, wsHandler)
	profileService := services.NewProfileService(profiles, budgetService)
	challengeService := services.NewChallengeService(profiles)

	// Profile creation runs in the worker when a broker is configured.
	var hook services.PostConfirmationHook = profileService
	if cfg.AMQPURL != "" {
		client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			log.Fatal("failed to connect to broker", zap.Error(err))
		}
		defer client.Close()
		hook = client
		log.Info("publishing confirmed users", zap.String("queue", cfg.AMQPQueue))
	}

	var provider services.Authenticator
	switch cfg.AuthProvider {
	case "supabase":
		provider = services.NewSupabaseAuthenticator(sb.Auth, cfg.SupabaseJWTSecret)
	default:
		tokens := utils.NewTokenIssuer(cfg.JWTSecret, "pocketplan", cfg.AccessTokenTTL)
		mailer := services.NewEmailService(cfg.ResendAPIKey, cfg.EmailFrom)
		local := services.NewLocalAuthenticator(db, tokens, mailer)
		go scheduleSessionCleaning(ctx, local)
		provider = local
	}
	authService := services.NewAuthService(provider, hook)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.RequestLogger())

	limiter := middleware.NewRateLimiter(cfg.RateLimit, time.Minute)
	go limiter.RunCleanup(ctx, 5*time.Minute)
	router.Use(limiter.Handler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": version,
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	deps := &routes.Services{
		Auth:       authService,
		Budgets:    budgetService,
		Profiles:   profileService,
		Challenges: challengeService,
		WS:         wsHandler,
		InFlight:   middleware.NewInFlightGuard(),
	}

	v1 := router.Group("/api/v1")
	{
		routes.SetupAuthRoutes(v1, deps)

		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware(authService))
		{
			routes.SetupSessionRoutes(protected, deps)
			routes.SetupBudgetRoutes(protected, deps)
			routes.SetupUserRoutes(protected, deps)
			routes.SetupChallengeRoutes(protected, deps)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		utils.LogStartup("pocketplan-api", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = wsHandler.M.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
}

func scheduleSessionCleaning(ctx context.Context, auth *services.LocalAuthenticator) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	cleanExpiredSessions(ctx, auth)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleanExpiredSessions(ctx, auth)
		}
	}
}

func cleanExpiredSessions(ctx context.Context, auth *services.LocalAuthenticator) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	rows, err := auth.CleanExpiredSessions(ctx)
	if err != nil {
		utils.Logger().Error("session cleanup failed", zap.Error(err))
		return
	}
	if rows > 0 {
		utils.Logger().Info("cleaned expired sessions", zap.Int64("rows", rows))
	}
}
