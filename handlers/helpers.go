package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketplan/budget-api/models"
	"github.com/pocketplan/budget-api/services"
	"github.com/pocketplan/budget-api/store"
	"github.com/pocketplan/budget-api/utils"

	"github.com/gin-gonic/gin"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var validation *services.ValidationError
	var step *services.StepError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &step), errors.Is(err, services.ErrUnsupportedAuthOp):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrNotAuthenticated),
		errors.Is(err, utils.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrUserExists),
		errors.Is(err, services.ErrAlreadyConfirmed),
		errors.Is(err, services.ErrDuplicateTitle):
		return http.StatusConflict
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrBudgetNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidCode),
		errors.Is(err, services.ErrNegativeAmount),
		errors.Is(err, services.ErrMissingBudget),
		errors.Is(err, services.ErrUnknownCategory),
		errors.Is(err, services.ErrUnknownChallenge),
		errors.Is(err, services.ErrUnrecognizedAuthResponse):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// errorMessage hides internal failures behind a generic message.
func errorMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "An unexpected error occurred. Please try again."
	}
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		return validation.Message
	}
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return "Incorrect username or password."
	case errors.Is(err, services.ErrInvalidCode):
		return "Invalid verification code provided, please try again."
	case errors.Is(err, services.ErrUserExists):
		return "An account with the given email already exists."
	case errors.Is(err, services.ErrDuplicateTitle),
		errors.Is(err, services.ErrNegativeAmount),
		errors.Is(err, services.ErrMissingBudget):
		return unwrapAll(err).Error()
	}
	return err.Error()
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	c.JSON(status, gin.H{"error": errorMessage(err, status)})
}

// respondNext returns the screen the app should show next.
func respondNext(c *gin.Context, status int, nav *services.NavigationRecorder, extra gin.H) {
	body := gin.H{}
	for k, v := range extra {
		body[k] = v
	}
	if next := nav.Last(); next != nil {
		body["next"] = next
	}
	c.JSON(status, body)
}

// respondResult turns a ValidationResult into 200 or 500.
func respondResult(c *gin.Context, result models.ValidationResult) {
	status := http.StatusOK
	if !result.IsValid {
		status = http.StatusInternalServerError
	}
	c.JSON(status, result)
}

func unwrapAll(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
