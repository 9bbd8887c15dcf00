package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/pocketplan/budget-api/config"
	"github.com/pocketplan/budget-api/events"
	"github.com/pocketplan/budget-api/services"
	"github.com/pocketplan/budget-api/store"
	"github.com/pocketplan/budget-api/utils"

	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
)

// profile-worker creates the profile record of every confirmed user
// published by the API.
func main() {
	cfg := config.Load()

	if err := utils.InitLogger(!cfg.IsProduction(), cfg.LogLevel); err != nil {
		panic(err)
	}
	defer utils.SyncLogger()
	log := utils.Logger()

	log.Info("starting profile-worker")

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	if cfg.AMQPURL == "" {
		log.Fatal("AMQP_URL is required for the profile worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.DataBackend == string(store.BackendPostgres) {
		var err error
		db, err = config.InitDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()
	}

	var sb *supabase.Client
	if cfg.DataBackend == string(store.BackendSupabase) {
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

	profileService := services.NewProfileService(profiles, services.NewBudgetService(profiles, nil))

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		log.Fatal("failed to connect to broker", zap.Error(err))
	}
	defer client.Close()

	log.Info("consuming confirmed users", zap.String("queue", cfg.AMQPQueue))
	if err := client.Consume(ctx, profileService.OnConfirmed); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("message consumption failed", zap.Error(err))
	}
	log.Info("profile-worker stopped")
}
