// Package store holds the profile data collaborator: one record per user,
// keyed by user id, with partial-update semantics.
package store

import (
	"context"
	"errors"

	"github.com/pocketplan/budget-api/models"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("profile not found")

// ProfileStore is implemented by every data backend. Update operations write
// only the fields supplied and create the record when it is missing.
// CreateProfile is idempotent: an existing record is left untouched.
type ProfileStore interface {
	CreateProfile(ctx context.Context, p *models.Profile) error
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) error

	GetBudget(ctx context.Context, userID string) (*models.BudgetData, error)
	UpdateBudget(ctx context.Context, userID string, update models.BudgetUpdate) error

	GetIncome(ctx context.Context, userID string) (decimal.Decimal, error)
	UpdateIncome(ctx context.Context, userID string, income decimal.Decimal) error

	GetChallenges(ctx context.Context, userID string) ([]models.Challenge, error)
	UpdateChallenges(ctx context.Context, userID string, challenges []models.Challenge) error

	Close() error
}

// Backend names accepted by DATA_BACKEND.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendSupabase Backend = "supabase"
	BackendMongo    Backend = "mongo"
	BackendMemory   Backend = "memory"
)

func (b Backend) IsValid() bool {
	switch b {
	case BackendPostgres, BackendSupabase, BackendMongo, BackendMemory:
		return true
	}
	return false
}

func emptyBudget() *models.BudgetData {
	return &models.BudgetData{
		FixedBudgets:    []models.BudgetEntry{},
		VariableBudgets: []models.BudgetEntry{},
	}
}

func copyEntries(in []models.BudgetEntry) []models.BudgetEntry {
	if in == nil {
		return nil
	}
	out := make([]models.BudgetEntry, len(in))
	copy(out, in)
	return out
}

func copyChallenges(in []models.Challenge) []models.Challenge {
	out := make([]models.Challenge, len(in))
	copy(out, in)
	return out
}

func orEmpty(entries []models.BudgetEntry) []models.BudgetEntry {
	if entries == nil {
		return []models.BudgetEntry{}
	}
	return entries
}
