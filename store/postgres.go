package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pocketplan/budget-api/models"
	"github.com/pocketplan/budget-api/utils"

	"github.com/shopspring/decimal"
)

// PostgresStore keeps profiles in the user_profiles table. Budget lists are
// JSONB; when an encryption key is configured they are sealed before writing.
type PostgresStore struct {
	db            *sql.DB
	encryptionKey string
}

// encryptedData wraps a sealed JSON document inside a JSONB column.
type encryptedData struct {
	Encrypted string `json:"encrypted"`
}

func NewPostgresStore(db *sql.DB, encryptionKey string) *PostgresStore {
	return &PostgresStore{db: db, encryptionKey: encryptionKey}
}

func (s *PostgresStore) CreateProfile(ctx context.Context, p *models.Profile) error {
	fixed, err := s.seal(orEmpty(p.FixedBudgets))
	if err != nil {
		return err
	}
	variable, err := s.seal(orEmpty(p.VariableBudgets))
	if err != nil {
		return err
	}
	challenges, err := json.Marshal(copyChallenges(p.Challenges))
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_profiles (id, email, first_name, last_name, income, savings_goal,
		                           fixed_budgets, variable_budgets, challenges, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (id) DO NOTHING
	`, p.ID, p.Email, p.FirstName, p.LastName, p.Income, p.SavingsGoal, string(fixed), string(variable), string(challenges), now)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var (
		p               models.Profile
		fixed, variable []byte
		challenges      []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, COALESCE(email, ''), COALESCE(first_name, ''), COALESCE(last_name, ''),
		       COALESCE(income, 0), COALESCE(savings_goal, 0),
		       fixed_budgets, variable_budgets, challenges, created_at, updated_at
		FROM user_profiles
		WHERE id = $1
	`, userID).Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.Income, &p.SavingsGoal,
		&fixed, &variable, &challenges, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select profile: %w", err)
	}

	if p.FixedBudgets, err = s.open(fixed); err != nil {
		return nil, err
	}
	if p.VariableBudgets, err = s.open(variable); err != nil {
		return nil, err
	}
	if p.Challenges, err = decodeChallenges(challenges); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) error {
	if update.Empty() {
		return nil
	}
	// NULL parameters keep the stored value.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_profiles (id, first_name, last_name, income, savings_goal, created_at, updated_at)
		VALUES ($1, COALESCE($2, ''), COALESCE($3, ''), COALESCE($4::numeric, 0), COALESCE($5::numeric, 0), NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			first_name   = COALESCE($2, user_profiles.first_name),
			last_name    = COALESCE($3, user_profiles.last_name),
			income       = COALESCE($4::numeric, user_profiles.income),
			savings_goal = COALESCE($5::numeric, user_profiles.savings_goal),
			updated_at   = NOW()
	`, userID, nullString(update.FirstName), nullString(update.LastName),
		nullDecimal(update.Income), nullDecimal(update.SavingsGoal))
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetBudget(ctx context.Context, userID string) (*models.BudgetData, error) {
	var fixed, variable []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT fixed_budgets, variable_budgets FROM user_profiles WHERE id = $1
	`, userID).Scan(&fixed, &variable)
	if errors.Is(err, sql.ErrNoRows) {
		return emptyBudget(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("select budgets: %w", err)
	}

	data := emptyBudget()
	if data.FixedBudgets, err = s.open(fixed); err != nil {
		return nil, err
	}
	if data.VariableBudgets, err = s.open(variable); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *PostgresStore) UpdateBudget(ctx context.Context, userID string, update models.BudgetUpdate) error {
	if update.Empty() {
		return nil
	}

	var fixed, variable interface{}
	if update.FixedBudgets != nil {
		sealed, err := s.seal(update.FixedBudgets)
		if err != nil {
			return err
		}
		fixed = string(sealed)
	}
	if update.VariableBudgets != nil {
		sealed, err := s.seal(update.VariableBudgets)
		if err != nil {
			return err
		}
		variable = string(sealed)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_profiles (id, fixed_budgets, variable_budgets, created_at, updated_at)
		VALUES ($1, COALESCE($2::jsonb, '[]'::jsonb), COALESCE($3::jsonb, '[]'::jsonb), NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			fixed_budgets    = COALESCE($2::jsonb, user_profiles.fixed_budgets),
			variable_budgets = COALESCE($3::jsonb, user_profiles.variable_budgets),
			updated_at       = NOW()
	`, userID, fixed, variable)
	if err != nil {
		return fmt.Errorf("update budgets: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetIncome(ctx context.Context, userID string) (decimal.Decimal, error) {
	var income decimal.Decimal
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(income, 0) FROM user_profiles WHERE id = $1
	`, userID).Scan(&income)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, ErrNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("select income: %w", err)
	}
	return income, nil
}

func (s *PostgresStore) UpdateIncome(ctx context.Context, userID string, income decimal.Decimal) error {
	return s.UpdateProfile(ctx, userID, models.ProfileUpdate{Income: &income})
}

func (s *PostgresStore) GetChallenges(ctx context.Context, userID string) ([]models.Challenge, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT challenges FROM user_profiles WHERE id = $1
	`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []models.Challenge{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select challenges: %w", err)
	}
	return decodeChallenges(raw)
}

func (s *PostgresStore) UpdateChallenges(ctx context.Context, userID string, challenges []models.Challenge) error {
	raw, err := json.Marshal(copyChallenges(challenges))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_profiles (id, challenges, created_at, updated_at)
		VALUES ($1, $2::jsonb, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET challenges = EXCLUDED.challenges, updated_at = NOW()
	`, userID, string(raw))
	if err != nil {
		return fmt.Errorf("update challenges: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// seal marshals entries and, with a key configured, wraps them encrypted.
func (s *PostgresStore) seal(entries []models.BudgetEntry) ([]byte, error) {
	plain, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}
	if s.encryptionKey == "" {
		return plain, nil
	}
	sealed, err := utils.Encrypt(s.encryptionKey, plain)
	if err != nil {
		return nil, fmt.Errorf("encrypt budgets: %w", err)
	}
	return json.Marshal(encryptedData{Encrypted: sealed})
}

// open accepts both plain and sealed documents so a key can be introduced
// without rewriting existing rows.
func (s *PostgresStore) open(raw []byte) ([]models.BudgetEntry, error) {
	if len(raw) == 0 {
		return []models.BudgetEntry{}, nil
	}

	var wrapper encryptedData
	if err := json.Unmarshal(raw, &wrapper); err == nil && wrapper.Encrypted != "" {
		plain, err := utils.Decrypt(s.encryptionKey, wrapper.Encrypted)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt budgets: %w", err)
		}
		raw = plain
	}

	var entries []models.BudgetEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode budgets: %w", err)
	}
	return orEmpty(entries), nil
}

func decodeChallenges(raw []byte) ([]models.Challenge, error) {
	challenges := []models.Challenge{}
	if len(raw) == 0 {
		return challenges, nil
	}
	if err := json.Unmarshal(raw, &challenges); err != nil {
		return nil, fmt.Errorf("decode challenges: %w", err)
	}
	return challenges, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
