package models

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Mobile clients expect plain JSON numbers for amounts.
	decimal.MarshalJSONWithoutQuotes = true
}

// BudgetEntry is one budget line. Titles are unique within their set.
type BudgetEntry struct {
	Title  string          `json:"title"`
	Amount decimal.Decimal `json:"amount"`
}

// FixedCategory is a predetermined monthly expense with its default amount.
type FixedCategory struct {
	Title         string
	DefaultAmount decimal.Decimal
}

var FixedCategories = []FixedCategory{
	{Title: "Rent/Mortgage", DefaultAmount: decimal.NewFromInt(800)},
	{Title: "Gas", DefaultAmount: decimal.NewFromInt(150)},
	{Title: "Utilities", DefaultAmount: decimal.NewFromInt(120)},
}

type BudgetData struct {
	FixedBudgets    []BudgetEntry `json:"fixed_budgets"`
	VariableBudgets []BudgetEntry `json:"variable_budgets"`
}

// BudgetUpdate is a partial write: a nil list is left untouched, an empty
// non-nil list clears the stored set.
type BudgetUpdate struct {
	FixedBudgets    []BudgetEntry `json:"fixed_budgets,omitempty"`
	VariableBudgets []BudgetEntry `json:"variable_budgets,omitempty"`
}

func (u BudgetUpdate) Empty() bool {
	return u.FixedBudgets == nil && u.VariableBudgets == nil
}

type AddVariableBudgetRequest struct {
	Title  string `json:"title"`
	Amount string `json:"amount"`
}

type EditVariableBudgetRequest struct {
	Amount string `json:"amount"`
}

// AdviceKind identifies which rule produced the advice message.
type AdviceKind string

const (
	AdviceNone           AdviceKind = ""
	AdviceExceedsIncome  AdviceKind = "exceeds_income"
	AdviceRemaining      AdviceKind = "remaining"
	AdviceVariableOver35 AdviceKind = "variable_over_35"
	AdviceCategoryOver15 AdviceKind = "category_over_15"
)

type Advice struct {
	Message       string          `json:"message,omitempty"`
	Kind          AdviceKind      `json:"kind,omitempty"`
	Category      string          `json:"category,omitempty"`
	TotalBudgeted decimal.Decimal `json:"total_budgeted"`
	Remaining     decimal.Decimal `json:"remaining"`
}

// BudgetOverview is what the budgets screen renders.
type BudgetOverview struct {
	BudgetData
	Income decimal.Decimal `json:"income"`
	Advice Advice          `json:"advice"`
}
