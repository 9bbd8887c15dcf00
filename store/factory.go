package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pocketplan/budget-api/utils"

	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
)

// Config selects and configures a backend. Only the fields of the chosen
// backend are read.
type Config struct {
	Backend Backend

	DB            *sql.DB
	EncryptionKey string

	Supabase *supabase.Client

	MongoURI      string
	MongoDatabase string
}

// New builds the ProfileStore named by cfg.Backend.
func New(ctx context.Context, cfg Config) (ProfileStore, error) {
	if !cfg.Backend.IsValid() {
		return nil, fmt.Errorf("invalid data backend: %q", cfg.Backend)
	}

	log := utils.Logger()
	switch cfg.Backend {
	case BackendPostgres:
		if cfg.DB == nil {
			return nil, fmt.Errorf("postgres backend requires a database connection")
		}
		log.Info("initialized postgres profile store", zap.Bool("encrypted", cfg.EncryptionKey != ""))
		return NewPostgresStore(cfg.DB, cfg.EncryptionKey), nil
	case BackendSupabase:
		if cfg.Supabase == nil {
			return nil, fmt.Errorf("supabase backend requires a client")
		}
		log.Info("initialized supabase profile store")
		return NewSupabaseStore(cfg.Supabase), nil
	case BackendMongo:
		s, err := NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize mongo store: %w", err)
		}
		log.Info("initialized mongo profile store", zap.String("database", cfg.MongoDatabase))
		return s, nil
	default:
		log.Info("initialized memory profile store")
		return NewMemoryStore(), nil
	}
}
