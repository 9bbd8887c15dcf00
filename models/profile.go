package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Profile is the per-user record held by the profile data store.
type Profile struct {
	ID              string          `json:"id"`
	Email           string          `json:"email"`
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name"`
	Income          decimal.Decimal `json:"income"`
	SavingsGoal     decimal.Decimal `json:"savings_goal"`
	FixedBudgets    []BudgetEntry   `json:"fixed_budgets"`
	VariableBudgets []BudgetEntry   `json:"variable_budgets"`
	Challenges      []Challenge     `json:"challenges"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProfileUpdate only writes the fields that are set.
type ProfileUpdate struct {
	FirstName   *string          `json:"first_name,omitempty"`
	LastName    *string          `json:"last_name,omitempty"`
	Income      *decimal.Decimal `json:"income,omitempty"`
	SavingsGoal *decimal.Decimal `json:"savings_goal,omitempty"`
}

func (u ProfileUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Income == nil && u.SavingsGoal == nil
}

type UpdateAccountRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Income      *string `json:"income"`
	SavingsGoal *string `json:"savings_goal"`
}

type UpdateIncomeRequest struct {
	Income string `json:"income" binding:"required"`
}

// Dashboard is the summary shown on the dashboard tab.
type Dashboard struct {
	Income        decimal.Decimal `json:"income"`
	SavingsGoal   decimal.Decimal `json:"savings_goal"`
	TotalBudgeted decimal.Decimal `json:"total_budgeted"`
	Remaining     decimal.Decimal `json:"remaining"`
	Advice        Advice          `json:"advice"`
	Challenges    []Challenge     `json:"challenges"`
}
