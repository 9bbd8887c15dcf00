package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pocketplan/budget-api/models"
	"github.com/pocketplan/budget-api/store"
	"github.com/pocketplan/budget-api/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrDuplicateTitle   = errors.New("Record already exists")
	ErrNegativeAmount   = errors.New("Amount must be a positive number.")
	ErrMissingBudget    = errors.New("Please enter a title and amount.")
	ErrUnknownCategory  = errors.New("unknown fixed budget category")
	ErrBudgetNotFound   = errors.New("budget not found")
	ErrBudgetSaveFailed = errors.New("Failed to save budget. Please try again.")
)

// TotalNotifier is told whenever a user's total budgeted amount is computed.
type TotalNotifier interface {
	NotifyTotal(userID string, total decimal.Decimal)
}

type BudgetService struct {
	store    store.ProfileStore
	notifier TotalNotifier
}

func NewBudgetService(s store.ProfileStore, notifier TotalNotifier) *BudgetService {
	return &BudgetService{store: s, notifier: notifier}
}

// Load returns the user's budgets with every fixed category present. A read
// failure is logged and shows empty budgets.
func (s *BudgetService) Load(ctx context.Context, userID string) *models.BudgetData {
	data, err := s.store.GetBudget(ctx, userID)
	if err != nil {
		utils.Logger().Error("failed to load budgets",
			zap.String("user_id", utils.MaskID(userID)), zap.Error(err))
		data = &models.BudgetData{}
	}
	return &models.BudgetData{
		FixedBudgets:    MergeFixedDefaults(data.FixedBudgets),
		VariableBudgets: cloneEntries(data.VariableBudgets),
	}
}

// loadForWrite is Load for read-modify-write paths. A read failure is
// returned instead of shown as empty budgets, so nothing is overwritten.
func (s *BudgetService) loadForWrite(ctx context.Context, userID string) (*models.BudgetData, error) {
	data, err := s.store.GetBudget(ctx, userID)
	if err != nil {
		utils.Logger().Error("failed to load budgets for update",
			zap.String("user_id", utils.MaskID(userID)), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrBudgetSaveFailed, err)
	}
	return &models.BudgetData{
		FixedBudgets:    MergeFixedDefaults(data.FixedBudgets),
		VariableBudgets: cloneEntries(data.VariableBudgets),
	}, nil
}

// MergeFixedDefaults lays stored fixed amounts over the category defaults. A
// zero or missing stored amount shows the default. Unknown titles are dropped.
func MergeFixedDefaults(stored []models.BudgetEntry) []models.BudgetEntry {
	merged := make([]models.BudgetEntry, 0, len(models.FixedCategories))
	for _, cat := range models.FixedCategories {
		amount := cat.DefaultAmount
		for _, e := range stored {
			if e.Title == cat.Title && !e.Amount.IsZero() {
				amount = e.Amount
			}
		}
		merged = append(merged, models.BudgetEntry{Title: cat.Title, Amount: amount})
	}
	return merged
}

// Save writes the supplied budget lists. Lists left nil are not touched and
// an update with neither list succeeds without a write.
func (s *BudgetService) Save(ctx context.Context, userID string, update models.BudgetUpdate) error {
	if update.Empty() {
		return nil
	}
	if update.FixedBudgets != nil {
		if err := validateFixed(update.FixedBudgets); err != nil {
			return err
		}
	}
	if update.VariableBudgets != nil {
		if err := validateVariable(update.VariableBudgets); err != nil {
			return err
		}
	}

	if err := s.store.UpdateBudget(ctx, userID, update); err != nil {
		utils.Logger().Error("failed to save budgets",
			zap.String("user_id", utils.MaskID(userID)), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrBudgetSaveFailed, err)
	}
	utils.LogBudgetAction("budgets_saved", userID,
		zap.Bool("fixed", update.FixedBudgets != nil),
		zap.Bool("variable", update.VariableBudgets != nil))
	s.publishTotal(ctx, userID)
	return nil
}

// AddVariable appends a new variable budget. Titles must be unique.
func (s *BudgetService) AddVariable(ctx context.Context, userID, title, amountText string) (*models.BudgetData, error) {
	title = strings.TrimSpace(title)
	if title == "" || strings.TrimSpace(amountText) == "" {
		return nil, ErrMissingBudget
	}
	amount, err := parseEntryAmount(amountText)
	if err != nil {
		return nil, err
	}

	data, err := s.loadForWrite(ctx, userID)
	if err != nil {
		return nil, err
	}
	if indexOf(data.VariableBudgets, title) >= 0 {
		return nil, ErrDuplicateTitle
	}
	data.VariableBudgets = append(data.VariableBudgets, models.BudgetEntry{Title: title, Amount: amount})

	if err := s.Save(ctx, userID, models.BudgetUpdate{VariableBudgets: data.VariableBudgets}); err != nil {
		return nil, err
	}
	return data, nil
}

// EditVariable changes the amount of an existing variable budget.
func (s *BudgetService) EditVariable(ctx context.Context, userID, title, amountText string) (*models.BudgetData, error) {
	amount, err := parseEntryAmount(amountText)
	if err != nil {
		return nil, err
	}

	data, err := s.loadForWrite(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := indexOf(data.VariableBudgets, title)
	if i < 0 {
		return nil, ErrBudgetNotFound
	}
	data.VariableBudgets[i].Amount = amount

	if err := s.Save(ctx, userID, models.BudgetUpdate{VariableBudgets: data.VariableBudgets}); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *BudgetService) DeleteVariable(ctx context.Context, userID, title string) (*models.BudgetData, error) {
	data, err := s.loadForWrite(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := indexOf(data.VariableBudgets, title)
	if i < 0 {
		return nil, ErrBudgetNotFound
	}
	data.VariableBudgets = append(data.VariableBudgets[:i], data.VariableBudgets[i+1:]...)

	if err := s.Save(ctx, userID, models.BudgetUpdate{VariableBudgets: data.VariableBudgets}); err != nil {
		return nil, err
	}
	return data, nil
}

// Overview loads budgets and income and computes the advice for them.
func (s *BudgetService) Overview(ctx context.Context, userID string) *models.BudgetOverview {
	data := s.Load(ctx, userID)
	income := s.income(ctx, userID)
	advice := ComputeAdvice(data.FixedBudgets, data.VariableBudgets, income, s.totalCallback(userID))
	return &models.BudgetOverview{BudgetData: *data, Income: income, Advice: advice}
}

// Advice is Overview without the budget lists.
func (s *BudgetService) Advice(ctx context.Context, userID string) models.Advice {
	return s.Overview(ctx, userID).Advice
}

func (s *BudgetService) publishTotal(ctx context.Context, userID string) {
	if s.notifier == nil {
		return
	}
	data := s.Load(ctx, userID)
	s.notifier.NotifyTotal(userID, sumEntries(data.FixedBudgets).Add(sumEntries(data.VariableBudgets)))
}

func (s *BudgetService) totalCallback(userID string) func(decimal.Decimal) {
	if s.notifier == nil {
		return nil
	}
	return func(total decimal.Decimal) { s.notifier.NotifyTotal(userID, total) }
}

func (s *BudgetService) income(ctx context.Context, userID string) decimal.Decimal {
	income, err := s.store.GetIncome(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			utils.Logger().Error("failed to load income",
				zap.String("user_id", utils.MaskID(userID)), zap.Error(err))
		}
		return decimal.Zero
	}
	return income
}

// parseEntryAmount accepts a plain non-negative number.
func parseEntryAmount(text string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil || amount.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	return amount, nil
}

func validateFixed(entries []models.BudgetEntry) error {
	for _, e := range entries {
		known := false
		for _, cat := range models.FixedCategories {
			if cat.Title == e.Title {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("%w: %s", ErrUnknownCategory, e.Title)
		}
		if e.Amount.IsNegative() {
			return ErrNegativeAmount
		}
	}
	return nil
}

func validateVariable(entries []models.BudgetEntry) error {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.Title) == "" {
			return ErrMissingBudget
		}
		if e.Amount.IsNegative() {
			return ErrNegativeAmount
		}
		if seen[e.Title] {
			return ErrDuplicateTitle
		}
		seen[e.Title] = true
	}
	return nil
}

func indexOf(entries []models.BudgetEntry, title string) int {
	for i, e := range entries {
		if e.Title == title {
			return i
		}
	}
	return -1
}

func cloneEntries(in []models.BudgetEntry) []models.BudgetEntry {
	out := make([]models.BudgetEntry, len(in))
	copy(out, in)
	return out
}
