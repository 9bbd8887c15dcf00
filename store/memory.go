package store

import (
	"context"
	"sync"
	"time"

	"github.com/pocketplan/budget-api/models"

	"github.com/shopspring/decimal"
)

// MemoryStore keeps profiles in process memory. Used in development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*models.Profile
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]*models.Profile),
		now:      time.Now,
	}
}

func (s *MemoryStore) CreateProfile(ctx context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[p.ID]; exists {
		return nil
	}
	clone := cloneProfile(p)
	now := s.now()
	clone.CreatedAt, clone.UpdatedAt = now, now
	s.profiles[p.ID] = clone
	return nil
}

func (s *MemoryStore) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneProfile(p), nil
}

func (s *MemoryStore) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.upsert(userID)
	if update.FirstName != nil {
		p.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		p.LastName = *update.LastName
	}
	if update.Income != nil {
		p.Income = *update.Income
	}
	if update.SavingsGoal != nil {
		p.SavingsGoal = *update.SavingsGoal
	}
	return nil
}

func (s *MemoryStore) GetBudget(ctx context.Context, userID string) (*models.BudgetData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return emptyBudget(), nil
	}
	return &models.BudgetData{
		FixedBudgets:    orEmpty(copyEntries(p.FixedBudgets)),
		VariableBudgets: orEmpty(copyEntries(p.VariableBudgets)),
	}, nil
}

func (s *MemoryStore) UpdateBudget(ctx context.Context, userID string, update models.BudgetUpdate) error {
	if update.Empty() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.upsert(userID)
	if update.FixedBudgets != nil {
		p.FixedBudgets = copyEntries(update.FixedBudgets)
	}
	if update.VariableBudgets != nil {
		p.VariableBudgets = copyEntries(update.VariableBudgets)
	}
	return nil
}

func (s *MemoryStore) GetIncome(ctx context.Context, userID string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return decimal.Zero, ErrNotFound
	}
	return p.Income, nil
}

func (s *MemoryStore) UpdateIncome(ctx context.Context, userID string, income decimal.Decimal) error {
	return s.UpdateProfile(ctx, userID, models.ProfileUpdate{Income: &income})
}

func (s *MemoryStore) GetChallenges(ctx context.Context, userID string) ([]models.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return []models.Challenge{}, nil
	}
	return copyChallenges(p.Challenges), nil
}

func (s *MemoryStore) UpdateChallenges(ctx context.Context, userID string, challenges []models.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.upsert(userID)
	p.Challenges = copyChallenges(challenges)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// upsert returns the record for userID, creating it first. Caller holds mu.
func (s *MemoryStore) upsert(userID string) *models.Profile {
	p, ok := s.profiles[userID]
	now := s.now()
	if !ok {
		p = &models.Profile{ID: userID, CreatedAt: now}
		s.profiles[userID] = p
	}
	p.UpdatedAt = now
	return p
}

func cloneProfile(p *models.Profile) *models.Profile {
	clone := *p
	clone.FixedBudgets = copyEntries(p.FixedBudgets)
	clone.VariableBudgets = copyEntries(p.VariableBudgets)
	clone.Challenges = copyChallenges(p.Challenges)
	return &clone
}
