package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pocketplan/budget-api/models"
	"github.com/pocketplan/budget-api/utils"

	"go.uber.org/zap"
)

var (
	ErrUnrecognizedAuthResponse = errors.New("unrecognized auth response")
	ErrUnsupportedSignInMethod  = errors.New("unsupported sign-in method")
	ErrUnknownSignInStep        = errors.New("unknown sign-in step")
)

// StepError names the next-step code the router refused to handle.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	switch e.Err {
	case ErrUnsupportedSignInMethod:
		return "Unsupported sign-in method: " + e.Step
	case ErrUnknownSignInStep:
		return "Unknown sign-in step: " + e.Step
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Step)
}

func (e *StepError) Unwrap() error { return e.Err }

var unsupportedSignInSteps = map[models.SignInStep]bool{
	models.SignInContinueEmailSetup:        true,
	models.SignInContinueFirstFactor:       true,
	models.SignInConfirmWithPassword:       true,
	models.SignInContinueMFASetupSelection: true,
	models.SignInContinueTOTPSetup:         true,
	models.SignInConfirmCustomChallenge:    true,
	models.SignInContinueMFASelection:      true,
	models.SignInConfirmSMSCode:            true,
	models.SignInConfirmTOTPCode:           true,
	models.SignInConfirmEmailCode:          true,
}

// AutoSignInner completes the automatic sign-in offered after confirmation.
type AutoSignInner interface {
	AutoSignIn(ctx context.Context, token string) (*models.AuthResult, error)
}

// AuthRouter decides which screen follows an auth result.
type AuthRouter struct {
	auth AutoSignInner
}

func NewAuthRouter(auth AutoSignInner) *AuthRouter {
	return &AuthRouter{auth: auth}
}

// Route dispatches on the result family. Unsupported and unknown sign-in steps
// are returned to the caller without navigating.
func (r *AuthRouter) Route(ctx context.Context, res *models.AuthResult, flow *models.AuthFlow, nav Navigator) error {
	if res == nil {
		return ErrUnrecognizedAuthResponse
	}
	if flow == nil {
		flow = &models.AuthFlow{}
	}
	switch res.Family {
	case models.FamilySignUp:
		return r.routeSignUp(ctx, res, flow, nav)
	case models.FamilySignIn:
		return r.routeSignIn(res, flow, nav)
	default:
		return ErrUnrecognizedAuthResponse
	}
}

func (r *AuthRouter) routeSignIn(res *models.AuthResult, flow *models.AuthFlow, nav Navigator) error {
	step := res.SignInStep
	switch step {
	case models.SignInDone:
		flow.Pending = nil
		nav.GoToDashboard(models.NavParams{"user": userParam(flow.User)})
	case models.SignInConfirmSignUp:
		nav.GoToConfirm(models.NavParams{
			"type":     models.ConfirmSignUpCode,
			"username": flow.User.Email,
		})
	case models.SignInResetPassword:
		// The caller starts the reset itself.
	case models.SignInNewPasswordRequired:
		params := models.NavParams{"type": models.ConfirmNewPasswordRequired}
		if res.ChallengeToken != "" {
			params["challenge_token"] = res.ChallengeToken
		}
		nav.GoToConfirm(params)
	default:
		err := &StepError{Step: string(step), Err: ErrUnknownSignInStep}
		if unsupportedSignInSteps[step] {
			err.Err = ErrUnsupportedSignInMethod
		}
		utils.Logger().Error("sign-in step not handled", zap.String("step", string(step)), zap.Error(err))
		return err
	}
	return nil
}

func (r *AuthRouter) routeSignUp(ctx context.Context, res *models.AuthResult, flow *models.AuthFlow, nav Navigator) error {
	switch res.SignUpStep {
	case models.SignUpDone:
		nav.GoToDashboard(models.NavParams{"user": userParam(flow.User)})
	case models.SignUpConfirmSignUp:
		nav.GoToConfirm(models.NavParams{
			"type":     models.ConfirmSignUpCode,
			"username": flow.User.Email,
		})
	case models.SignUpCompleteAutoLogin:
		next, err := r.auth.AutoSignIn(ctx, res.AutoSignInToken)
		if err != nil {
			return fmt.Errorf("auto sign-in: %w", err)
		}
		return r.Route(ctx, next, flow, nav)
	}
	return nil
}

// userParam serializes the flow user the way the dashboard screen reads it.
func userParam(u models.FlowUser) string {
	b, err := json.Marshal(u)
	if err != nil {
		return "{}"
	}
	return string(b)
}
