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
	"golang.org/x/sync/errgroup"
)

const (
	incomeUpdatedMessage = "Successful Income Update"
	updateFailedMessage  = "Could not update!"
)

type ProfileService struct {
	store   store.ProfileStore
	budgets *BudgetService
}

func NewProfileService(s store.ProfileStore, budgets *BudgetService) *ProfileService {
	return &ProfileService{store: s, budgets: budgets}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			utils.Logger().Error("failed to load profile",
				zap.String("user_id", utils.MaskID(userID)), zap.Error(err))
		}
		return nil, err
	}
	return p, nil
}

// UpdateAccount writes the account settings that were supplied. Income and
// savings goal arrive as typed text.
func (s *ProfileService) UpdateAccount(ctx context.Context, userID string, req models.UpdateAccountRequest) models.ValidationResult {
	var update models.ProfileUpdate
	if req.FirstName != nil {
		name := strings.TrimSpace(*req.FirstName)
		update.FirstName = &name
	}
	if req.LastName != nil {
		name := strings.TrimSpace(*req.LastName)
		update.LastName = &name
	}
	if req.Income != nil {
		income := utils.ParseAmountText(*req.Income)
		update.Income = &income
	}
	if req.SavingsGoal != nil {
		goal := utils.ParseAmountText(*req.SavingsGoal)
		update.SavingsGoal = &goal
	}

	if err := s.store.UpdateProfile(ctx, userID, update); err != nil {
		utils.Logger().Error("failed to update account",
			zap.String("user_id", utils.MaskID(userID)), zap.Error(err))
		return models.ValidationResult{IsValid: false, Message: updateFailedMessage}
	}
	return models.ValidationResult{IsValid: true, Message: "Account updated"}
}

// Income is zero when the profile is missing or cannot be read.
func (s *ProfileService) Income(ctx context.Context, userID string) decimal.Decimal {
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

func (s *ProfileService) SavingsGoal(ctx context.Context, userID string) decimal.Decimal {
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			utils.Logger().Error("failed to load savings goal",
				zap.String("user_id", utils.MaskID(userID)), zap.Error(err))
		}
		return decimal.Zero
	}
	return p.SavingsGoal
}

func (s *ProfileService) UpdateIncome(ctx context.Context, userID string, income decimal.Decimal) models.ValidationResult {
	if income.IsNegative() {
		return models.ValidationResult{IsValid: false, Message: ErrNegativeAmount.Error()}
	}
	if err := s.store.UpdateIncome(ctx, userID, income); err != nil {
		utils.Logger().Error("failed to update income",
			zap.String("user_id", utils.MaskID(userID)), zap.Error(err))
		return models.ValidationResult{IsValid: false, Message: updateFailedMessage}
	}
	utils.LogBudgetAction("income_updated", userID, zap.String("income", utils.MaskAmount(income.String())))
	return models.ValidationResult{IsValid: true, Message: incomeUpdatedMessage}
}

// OnConfirmed creates the profile of a newly confirmed user from the
// metadata captured at sign-up. Failures are logged and swallowed so the
// confirmation itself always succeeds.
func (s *ProfileService) OnConfirmed(ctx context.Context, user models.ConfirmedUser) error {
	p := &models.Profile{
		ID:              user.UserID,
		Email:           user.Email,
		FixedBudgets:    []models.BudgetEntry{},
		VariableBudgets: []models.BudgetEntry{},
		Challenges:      []models.Challenge{},
	}
	if md := user.Metadata; md != nil {
		p.FirstName = md.FirstName
		p.LastName = md.LastName
		p.Income = utils.ParseAmountText(md.Income)
		p.SavingsGoal = utils.ParseAmountText(md.SavingsGoal)
	}

	if err := s.store.CreateProfile(ctx, p); err != nil {
		utils.Logger().Error("error creating user profile",
			zap.String("user_id", utils.MaskID(user.UserID)), zap.Error(err))
		return nil
	}
	utils.Logger().Info("created user profile", zap.String("user_id", utils.MaskID(user.UserID)))
	return nil
}

// Dashboard gathers the summary shown after sign-in. The reads run
// concurrently; only a failed profile or challenge read fails the call.
func (s *ProfileService) Dashboard(ctx context.Context, userID string) (*models.Dashboard, error) {
	var (
		profile    *models.Profile
		budgets    *models.BudgetData
		challenges []models.Challenge
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.store.GetProfile(gctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			profile = &models.Profile{ID: userID}
			return nil
		}
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		budgets = s.budgets.Load(gctx, userID)
		return nil
	})
	g.Go(func() error {
		c, err := s.store.GetChallenges(gctx, userID)
		if err != nil {
			return fmt.Errorf("load challenges: %w", err)
		}
		challenges = c
		return nil
	})
	if err := g.Wait(); err != nil {
		utils.Logger().Error("failed to build dashboard",
			zap.String("user_id", utils.MaskID(userID)), zap.Error(err))
		return nil, err
	}

	advice := ComputeAdvice(budgets.FixedBudgets, budgets.VariableBudgets, profile.Income, s.budgets.totalCallback(userID))
	return &models.Dashboard{
		Income:        profile.Income,
		SavingsGoal:   profile.SavingsGoal,
		TotalBudgeted: advice.TotalBudgeted,
		Remaining:     advice.Remaining,
		Advice:        advice,
		Challenges:    challenges,
	}, nil
}
