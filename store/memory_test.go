package store

import (
	"context"
	"errors"
	"testing"

	"github.com/pocketplan/budget-api/models"

	"github.com/shopspring/decimal"
)

func TestMemoryStore_CreateIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.CreateProfile(ctx, &models.Profile{ID: "user-1", FirstName: "Ana"}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateProfile(ctx, &models.Profile{ID: "user-1", FirstName: "Other"}); err != nil {
		t.Fatal(err)
	}

	p, err := s.GetProfile(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if p.FirstName != "Ana" {
		t.Errorf("FirstName = %q, the second create should not overwrite", p.FirstName)
	}
}

func TestMemoryStore_MissingProfile(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.GetProfile(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProfile() error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetIncome(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetIncome() error = %v, want ErrNotFound", err)
	}

	budget, err := s.GetBudget(ctx, "nobody")
	if err != nil || budget.FixedBudgets == nil || budget.VariableBudgets == nil {
		t.Errorf("GetBudget() = %+v, %v, want empty lists", budget, err)
	}
	challenges, err := s.GetChallenges(ctx, "nobody")
	if err != nil || challenges == nil || len(challenges) != 0 {
		t.Errorf("GetChallenges() = %v, %v, want empty list", challenges, err)
	}
}

func TestMemoryStore_PartialUpdates(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first := "Ana"
	if err := s.UpdateProfile(ctx, "user-1", models.ProfileUpdate{FirstName: &first}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateIncome(ctx, "user-1", decimal.NewFromInt(3000)); err != nil {
		t.Fatal(err)
	}
	food := []models.BudgetEntry{{Title: "Food", Amount: decimal.NewFromInt(200)}}
	if err := s.UpdateBudget(ctx, "user-1", models.BudgetUpdate{VariableBudgets: food}); err != nil {
		t.Fatal(err)
	}

	p, err := s.GetProfile(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if p.FirstName != "Ana" || !p.Income.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("profile = %+v", p)
	}
	if len(p.VariableBudgets) != 1 || len(p.FixedBudgets) != 0 {
		t.Errorf("budgets = %v / %v", p.FixedBudgets, p.VariableBudgets)
	}

	// An empty, non-nil list clears the set.
	if err := s.UpdateBudget(ctx, "user-1", models.BudgetUpdate{VariableBudgets: []models.BudgetEntry{}}); err != nil {
		t.Fatal(err)
	}
	budget, _ := s.GetBudget(ctx, "user-1")
	if len(budget.VariableBudgets) != 0 {
		t.Errorf("variable budgets = %v, want cleared", budget.VariableBudgets)
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	food := []models.BudgetEntry{{Title: "Food", Amount: decimal.NewFromInt(200)}}
	_ = s.UpdateBudget(ctx, "user-1", models.BudgetUpdate{VariableBudgets: food})
	food[0].Title = "changed"

	budget, _ := s.GetBudget(ctx, "user-1")
	budget.VariableBudgets[0].Amount = decimal.Zero

	again, _ := s.GetBudget(ctx, "user-1")
	if again.VariableBudgets[0].Title != "Food" || !again.VariableBudgets[0].Amount.Equal(decimal.NewFromInt(200)) {
		t.Errorf("stored entry = %+v, callers must not alias store state", again.VariableBudgets[0])
	}
}

func TestBackendIsValid(t *testing.T) {
	for _, b := range []Backend{BackendPostgres, BackendSupabase, BackendMongo, BackendMemory} {
		if !b.IsValid() {
			t.Errorf("%q should be valid", b)
		}
	}
	if Backend("sqlite").IsValid() {
		t.Error("sqlite should not be valid")
	}
}

func TestNew_MemoryAndInvalid(t *testing.T) {
	s, err := New(context.Background(), Config{Backend: BackendMemory})
	if err != nil {
		t.Fatalf("New(memory) error = %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("New(memory) = %T", s)
	}

	if _, err := New(context.Background(), Config{Backend: "nope"}); err == nil {
		t.Error("New(nope) error = nil")
	}
	if _, err := New(context.Background(), Config{Backend: BackendPostgres}); err == nil {
		t.Error("New(postgres) without a connection should fail")
	}
}
