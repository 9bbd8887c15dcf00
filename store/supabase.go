package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pocketplan/budget-api/models"

	"github.com/shopspring/decimal"
	"github.com/supabase-community/supabase-go"
)

const profilesTable = "user_profiles"

// SupabaseStore talks to the managed table through PostgREST.
type SupabaseStore struct {
	client *supabase.Client
}

// profileRow mirrors the user_profiles columns.
type profileRow struct {
	ID              string               `json:"id"`
	Email           string               `json:"email,omitempty"`
	FirstName       string               `json:"first_name,omitempty"`
	LastName        string               `json:"last_name,omitempty"`
	Income          decimal.NullDecimal  `json:"income"`
	SavingsGoal     decimal.NullDecimal  `json:"savings_goal"`
	FixedBudgets    []models.BudgetEntry `json:"fixed_budgets"`
	VariableBudgets []models.BudgetEntry `json:"variable_budgets"`
	Challenges      []models.Challenge   `json:"challenges"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

func NewSupabaseStore(client *supabase.Client) *SupabaseStore {
	return &SupabaseStore{client: client}
}

func (s *SupabaseStore) CreateProfile(ctx context.Context, p *models.Profile) error {
	now := time.Now().UTC()
	row := profileRow{
		ID:              p.ID,
		Email:           p.Email,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		Income:          decimal.NewNullDecimal(p.Income),
		SavingsGoal:     decimal.NewNullDecimal(p.SavingsGoal),
		FixedBudgets:    orEmpty(p.FixedBudgets),
		VariableBudgets: orEmpty(p.VariableBudgets),
		Challenges:      copyChallenges(p.Challenges),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	existing, err := s.fetch(p.ID, "id")
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	if _, _, err := s.client.From(profilesTable).Insert(row, false, "", "", "").Execute(); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (s *SupabaseStore) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	row, err := s.fetch(userID, "*")
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNotFound
	}
	return &models.Profile{
		ID:              row.ID,
		Email:           row.Email,
		FirstName:       row.FirstName,
		LastName:        row.LastName,
		Income:          row.Income.Decimal,
		SavingsGoal:     row.SavingsGoal.Decimal,
		FixedBudgets:    orEmpty(row.FixedBudgets),
		VariableBudgets: orEmpty(row.VariableBudgets),
		Challenges:      copyChallenges(row.Challenges),
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}, nil
}

func (s *SupabaseStore) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) error {
	if update.Empty() {
		return nil
	}
	fields := map[string]interface{}{}
	if update.FirstName != nil {
		fields["first_name"] = *update.FirstName
	}
	if update.LastName != nil {
		fields["last_name"] = *update.LastName
	}
	if update.Income != nil {
		fields["income"] = *update.Income
	}
	if update.SavingsGoal != nil {
		fields["savings_goal"] = *update.SavingsGoal
	}
	return s.upsert(userID, fields)
}

func (s *SupabaseStore) GetBudget(ctx context.Context, userID string) (*models.BudgetData, error) {
	row, err := s.fetch(userID, "id,fixed_budgets,variable_budgets")
	if err != nil {
		return nil, err
	}
	if row == nil {
		return emptyBudget(), nil
	}
	return &models.BudgetData{
		FixedBudgets:    orEmpty(row.FixedBudgets),
		VariableBudgets: orEmpty(row.VariableBudgets),
	}, nil
}

func (s *SupabaseStore) UpdateBudget(ctx context.Context, userID string, update models.BudgetUpdate) error {
	if update.Empty() {
		return nil
	}
	fields := map[string]interface{}{}
	if update.FixedBudgets != nil {
		fields["fixed_budgets"] = update.FixedBudgets
	}
	if update.VariableBudgets != nil {
		fields["variable_budgets"] = update.VariableBudgets
	}
	return s.upsert(userID, fields)
}

func (s *SupabaseStore) GetIncome(ctx context.Context, userID string) (decimal.Decimal, error) {
	row, err := s.fetch(userID, "id,income")
	if err != nil {
		return decimal.Zero, err
	}
	if row == nil {
		return decimal.Zero, ErrNotFound
	}
	return row.Income.Decimal, nil
}

func (s *SupabaseStore) UpdateIncome(ctx context.Context, userID string, income decimal.Decimal) error {
	return s.upsert(userID, map[string]interface{}{"income": income})
}

func (s *SupabaseStore) GetChallenges(ctx context.Context, userID string) ([]models.Challenge, error) {
	row, err := s.fetch(userID, "id,challenges")
	if err != nil {
		return nil, err
	}
	if row == nil {
		return []models.Challenge{}, nil
	}
	return copyChallenges(row.Challenges), nil
}

func (s *SupabaseStore) UpdateChallenges(ctx context.Context, userID string, challenges []models.Challenge) error {
	return s.upsert(userID, map[string]interface{}{"challenges": copyChallenges(challenges)})
}

func (s *SupabaseStore) Close() error { return nil }

func (s *SupabaseStore) fetch(userID, columns string) (*profileRow, error) {
	data, _, err := s.client.From(profilesTable).
		Select(columns, "", false).
		Eq("id", userID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("select profile: %w", err)
	}

	var rows []profileRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// upsert merges fields into the row, creating it when missing.
func (s *SupabaseStore) upsert(userID string, fields map[string]interface{}) error {
	fields["id"] = userID
	fields["updated_at"] = time.Now().UTC()
	if _, _, err := s.client.From(profilesTable).Insert(fields, true, "id", "", "").Execute(); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
