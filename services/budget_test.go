package services

import (
	"context"
	"errors"
	"testing"

	"github.com/pocketplan/budget-api/models"
	"github.com/pocketplan/budget-api/store"

	"github.com/shopspring/decimal"
)

type recordingNotifier struct {
	totals []decimal.Decimal
}

func (n *recordingNotifier) NotifyTotal(userID string, total decimal.Decimal) {
	n.totals = append(n.totals, total)
}

// brokenStore fails every budget write and read.
type brokenStore struct {
	store.ProfileStore
}

func (brokenStore) GetBudget(ctx context.Context, userID string) (*models.BudgetData, error) {
	return nil, errors.New("connection refused")
}

func (brokenStore) UpdateBudget(ctx context.Context, userID string, update models.BudgetUpdate) error {
	return errors.New("connection refused")
}

func (brokenStore) GetIncome(ctx context.Context, userID string) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("connection refused")
}

// unreadableStore keeps its data but fails budget and challenge reads.
type unreadableStore struct {
	*store.MemoryStore
}

func (unreadableStore) GetBudget(ctx context.Context, userID string) (*models.BudgetData, error) {
	return nil, errors.New("read timeout")
}

func (unreadableStore) GetChallenges(ctx context.Context, userID string) ([]models.Challenge, error) {
	return nil, errors.New("read timeout")
}

func newBudgetService() (*BudgetService, *store.MemoryStore, *recordingNotifier) {
	s := store.NewMemoryStore()
	n := &recordingNotifier{}
	return NewBudgetService(s, n), s, n
}

func TestMergeFixedDefaults(t *testing.T) {
	stored := []models.BudgetEntry{
		{Title: "Rent/Mortgage", Amount: decimal.NewFromInt(1200)},
		{Title: "Gas", Amount: decimal.Zero},
		{Title: "Boat", Amount: decimal.NewFromInt(99)},
	}

	got := MergeFixedDefaults(stored)

	want := map[string]int64{"Rent/Mortgage": 1200, "Gas": 150, "Utilities": 120}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for _, e := range got {
		if !e.Amount.Equal(decimal.NewFromInt(want[e.Title])) {
			t.Errorf("%s = %s, want %d", e.Title, e.Amount, want[e.Title])
		}
	}
}

func TestBudgetService_LoadNewUserShowsDefaults(t *testing.T) {
	svc, _, _ := newBudgetService()

	data := svc.Load(context.Background(), "user-1")
	if len(data.FixedBudgets) != len(models.FixedCategories) {
		t.Errorf("fixed budgets = %d, want %d", len(data.FixedBudgets), len(models.FixedCategories))
	}
	if data.VariableBudgets == nil || len(data.VariableBudgets) != 0 {
		t.Errorf("variable budgets = %v, want empty", data.VariableBudgets)
	}
}

func TestBudgetService_LoadFailureShowsDefaults(t *testing.T) {
	svc := NewBudgetService(brokenStore{}, nil)

	data := svc.Load(context.Background(), "user-1")
	if len(data.FixedBudgets) != len(models.FixedCategories) || len(data.VariableBudgets) != 0 {
		t.Errorf("Load() = %+v, want defaults only", data)
	}
}

func TestBudgetService_SaveIsPartial(t *testing.T) {
	svc, _, _ := newBudgetService()
	ctx := context.Background()

	if err := svc.Save(ctx, "user-1", models.BudgetUpdate{VariableBudgets: entries("Food", 300)}); err != nil {
		t.Fatalf("Save(variable) error = %v", err)
	}
	if err := svc.Save(ctx, "user-1", models.BudgetUpdate{FixedBudgets: entries("Gas", 90)}); err != nil {
		t.Fatalf("Save(fixed) error = %v", err)
	}

	data := svc.Load(ctx, "user-1")
	if len(data.VariableBudgets) != 1 || data.VariableBudgets[0].Title != "Food" {
		t.Errorf("variable budgets = %v, fixed save should not touch them", data.VariableBudgets)
	}
	for _, e := range data.FixedBudgets {
		if e.Title == "Gas" && !e.Amount.Equal(decimal.NewFromInt(90)) {
			t.Errorf("Gas = %s, want 90", e.Amount)
		}
	}
}

func TestBudgetService_SaveEmptyUpdateIsNoop(t *testing.T) {
	svc, _, n := newBudgetService()

	if err := svc.Save(context.Background(), "user-1", models.BudgetUpdate{}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if len(n.totals) != 0 {
		t.Errorf("notified %d times, want none", len(n.totals))
	}
}

func TestBudgetService_SaveValidation(t *testing.T) {
	tests := []struct {
		name    string
		update  models.BudgetUpdate
		wantErr error
	}{
		{
			name:    "duplicate variable title",
			update:  models.BudgetUpdate{VariableBudgets: entries("Food", 100, "Food", 50)},
			wantErr: ErrDuplicateTitle,
		},
		{
			name:    "negative variable amount",
			update:  models.BudgetUpdate{VariableBudgets: entries("Food", -5)},
			wantErr: ErrNegativeAmount,
		},
		{
			name:    "blank variable title",
			update:  models.BudgetUpdate{VariableBudgets: entries(" ", 5)},
			wantErr: ErrMissingBudget,
		},
		{
			name:    "unknown fixed category",
			update:  models.BudgetUpdate{FixedBudgets: entries("Boat", 5)},
			wantErr: ErrUnknownCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newBudgetService()
			if err := svc.Save(context.Background(), "user-1", tt.update); !errors.Is(err, tt.wantErr) {
				t.Errorf("Save() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBudgetService_SaveFailure(t *testing.T) {
	svc := NewBudgetService(brokenStore{}, nil)

	err := svc.Save(context.Background(), "user-1", models.BudgetUpdate{VariableBudgets: entries("Food", 1)})
	if !errors.Is(err, ErrBudgetSaveFailed) {
		t.Errorf("Save() error = %v, want ErrBudgetSaveFailed", err)
	}
}

func TestBudgetService_VariableLifecycle(t *testing.T) {
	svc, _, n := newBudgetService()
	ctx := context.Background()

	data, err := svc.AddVariable(ctx, "user-1", "  Food ", "250.50")
	if err != nil {
		t.Fatalf("AddVariable() error = %v", err)
	}
	if len(data.VariableBudgets) != 1 || data.VariableBudgets[0].Title != "Food" {
		t.Fatalf("variable budgets = %v", data.VariableBudgets)
	}

	if _, err := svc.AddVariable(ctx, "user-1", "Food", "10"); !errors.Is(err, ErrDuplicateTitle) {
		t.Errorf("duplicate AddVariable() error = %v, want ErrDuplicateTitle", err)
	}

	data, err = svc.EditVariable(ctx, "user-1", "Food", "300")
	if err != nil {
		t.Fatalf("EditVariable() error = %v", err)
	}
	if !data.VariableBudgets[0].Amount.Equal(decimal.NewFromInt(300)) {
		t.Errorf("Food = %s, want 300", data.VariableBudgets[0].Amount)
	}

	data, err = svc.DeleteVariable(ctx, "user-1", "Food")
	if err != nil {
		t.Fatalf("DeleteVariable() error = %v", err)
	}
	if len(data.VariableBudgets) != 0 {
		t.Errorf("variable budgets = %v, want empty", data.VariableBudgets)
	}
	if got := svc.Load(ctx, "user-1").VariableBudgets; len(got) != 0 {
		t.Errorf("stored variable budgets = %v, want empty", got)
	}

	if len(n.totals) != 3 {
		t.Fatalf("notified %d times, want 3", len(n.totals))
	}
	// Defaults are 800 + 150 + 120.
	if !n.totals[1].Equal(decimal.NewFromInt(1370)) {
		t.Errorf("total after edit = %s, want 1370", n.totals[1])
	}
}

func TestBudgetService_AddVariableRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		amount  string
		wantErr error
	}{
		{"missing title", "", "10", ErrMissingBudget},
		{"missing amount", "Food", " ", ErrMissingBudget},
		{"negative amount", "Food", "-1", ErrNegativeAmount},
		{"not a number", "Food", "ten", ErrNegativeAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newBudgetService()
			if _, err := svc.AddVariable(context.Background(), "user-1", tt.title, tt.amount); !errors.Is(err, tt.wantErr) {
				t.Errorf("AddVariable() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBudgetService_EditMissingVariable(t *testing.T) {
	svc, _, _ := newBudgetService()

	if _, err := svc.EditVariable(context.Background(), "user-1", "Nope", "1"); !errors.Is(err, ErrBudgetNotFound) {
		t.Errorf("EditVariable() error = %v, want ErrBudgetNotFound", err)
	}
	if _, err := svc.DeleteVariable(context.Background(), "user-1", "Nope"); !errors.Is(err, ErrBudgetNotFound) {
		t.Errorf("DeleteVariable() error = %v, want ErrBudgetNotFound", err)
	}
}

func TestBudgetService_Overview(t *testing.T) {
	svc, s, n := newBudgetService()
	ctx := context.Background()

	if err := s.UpdateIncome(ctx, "user-1", decimal.NewFromInt(6000)); err != nil {
		t.Fatal(err)
	}

	overview := svc.Overview(ctx, "user-1")
	if !overview.Income.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("Income = %s, want 6000", overview.Income)
	}
	if overview.Advice.Kind != models.AdviceRemaining {
		t.Errorf("Advice.Kind = %q, want %q", overview.Advice.Kind, models.AdviceRemaining)
	}
	if !overview.Advice.Remaining.Equal(decimal.NewFromInt(4930)) {
		t.Errorf("Remaining = %s, want 4930", overview.Advice.Remaining)
	}
	if len(n.totals) != 1 {
		t.Errorf("notified %d times, want 1", len(n.totals))
	}
}

func TestBudgetService_OverviewWithoutProfile(t *testing.T) {
	svc := NewBudgetService(brokenStore{}, nil)

	overview := svc.Overview(context.Background(), "user-1")
	if !overview.Income.IsZero() {
		t.Errorf("Income = %s, want 0", overview.Income)
	}
	if overview.Advice.Kind != models.AdviceExceedsIncome {
		t.Errorf("Advice.Kind = %q, want %q", overview.Advice.Kind, models.AdviceExceedsIncome)
	}
}

func TestBudgetService_VariableWritesKeepDataWhenReadFails(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	seeded := []models.BudgetEntry{
		{Title: "Food", Amount: decimal.NewFromInt(300)},
		{Title: "Fun", Amount: decimal.NewFromInt(100)},
	}
	if err := mem.UpdateBudget(ctx, "user-1", models.BudgetUpdate{VariableBudgets: seeded}); err != nil {
		t.Fatal(err)
	}
	n := &recordingNotifier{}
	svc := NewBudgetService(unreadableStore{mem}, n)

	writes := map[string]func() (*models.BudgetData, error){
		"add":    func() (*models.BudgetData, error) { return svc.AddVariable(ctx, "user-1", "Gym", "50") },
		"edit":   func() (*models.BudgetData, error) { return svc.EditVariable(ctx, "user-1", "Food", "10") },
		"delete": func() (*models.BudgetData, error) { return svc.DeleteVariable(ctx, "user-1", "Fun") },
	}
	for name, write := range writes {
		t.Run(name, func(t *testing.T) {
			if _, err := write(); !errors.Is(err, ErrBudgetSaveFailed) {
				t.Fatalf("error = %v, want ErrBudgetSaveFailed", err)
			}
			stored, err := mem.GetBudget(ctx, "user-1")
			if err != nil {
				t.Fatal(err)
			}
			if len(stored.VariableBudgets) != 2 ||
				stored.VariableBudgets[0].Title != "Food" ||
				!stored.VariableBudgets[0].Amount.Equal(decimal.NewFromInt(300)) ||
				stored.VariableBudgets[1].Title != "Fun" {
				t.Errorf("stored = %+v, want the seeded budgets", stored.VariableBudgets)
			}
		})
	}
	if len(n.totals) != 0 {
		t.Errorf("notified %d totals, want none", len(n.totals))
	}
}
