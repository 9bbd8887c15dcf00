package services

import (
	"fmt"

	"github.com/pocketplan/budget-api/models"

	"github.com/shopspring/decimal"
)

var (
	variableShareLimit = decimal.NewFromFloat(0.35)
	categoryShareLimit = decimal.NewFromFloat(0.15)
	hundred            = decimal.NewFromInt(100)
)

// ComputeAdvice produces at most one advisory message. Rules run in a fixed
// order and a later match overwrites an earlier one, so the last matching
// rule wins even when an earlier message was more urgent. onTotal, when set,
// receives the total budgeted.
func ComputeAdvice(fixed, variable []models.BudgetEntry, income decimal.Decimal, onTotal func(decimal.Decimal)) models.Advice {
	totalFixed := sumEntries(fixed)
	totalVariable := sumEntries(variable)
	total := totalFixed.Add(totalVariable)
	if onTotal != nil {
		onTotal(total)
	}

	remaining := income.Sub(total)
	advice := models.Advice{TotalBudgeted: total, Remaining: remaining}

	if total.GreaterThan(income) {
		advice.Kind = models.AdviceExceedsIncome
		advice.Message = "Caution: Your total budgets exceed your monthly income!"
	} else if remaining.IsPositive() {
		advice.Kind = models.AdviceRemaining
		advice.Message = fmt.Sprintf("Great job! You have $%s remaining to budget. Consider putting this into savings.",
			remaining.StringFixed(2))
	}

	if !income.IsPositive() {
		return advice
	}

	if totalVariable.GreaterThan(income.Mul(variableShareLimit)) {
		advice.Kind = models.AdviceVariableOver35
		advice.Message = fmt.Sprintf("Warning: Your total variable budget ($%s) is over 35%% of your income.",
			totalVariable.StringFixed(2))
	}

	categoryLimit := income.Mul(categoryShareLimit)
	for _, set := range [][]models.BudgetEntry{fixed, variable} {
		for _, entry := range set {
			if entry.Amount.GreaterThan(categoryLimit) {
				advice.Kind = models.AdviceCategoryOver15
				advice.Category = entry.Title
				advice.Message = fmt.Sprintf("High Spend: %s budget ($%s) is over 15%% of your total income.",
					entry.Title, entry.Amount.StringFixed(2))
			}
		}
	}

	return advice
}

func sumEntries(entries []models.BudgetEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}
