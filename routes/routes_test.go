package routes

import (
	"net/http"
	"testing"

	"github.com/pocketplan/budget-api/handlers"
	"github.com/pocketplan/budget-api/middleware"
	"github.com/pocketplan/budget-api/services"
	"github.com/pocketplan/budget-api/store"

	"github.com/gin-gonic/gin"
)

func TestRoutesRegistered(t *testing.T) {
	gin.SetMode(gin.TestMode)

	profiles := store.NewMemoryStore()
	budgets := services.NewBudgetService(profiles, nil)
	deps := &Services{
		Auth:       services.NewAuthService(nil, nil),
		Budgets:    budgets,
		Profiles:   services.NewProfileService(profiles, budgets),
		Challenges: services.NewChallengeService(profiles),
		WS:         handlers.NewWSHandler(),
		InFlight:   middleware.NewInFlightGuard(),
	}

	r := gin.New()
	v1 := r.Group("/api/v1")
	SetupAuthRoutes(v1, deps)
	SetupSessionRoutes(v1, deps)
	SetupBudgetRoutes(v1, deps)
	SetupUserRoutes(v1, deps)
	SetupChallengeRoutes(v1, deps)

	registered := make(map[string]bool)
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	want := []string{
		http.MethodPost + " /api/v1/auth/signup",
		http.MethodPost + " /api/v1/auth/login",
		http.MethodPost + " /api/v1/auth/confirm-signup",
		http.MethodPost + " /api/v1/auth/confirm-signin",
		http.MethodPost + " /api/v1/auth/resend-code",
		http.MethodPost + " /api/v1/auth/reset-password",
		http.MethodPost + " /api/v1/auth/confirm-reset-password",
		http.MethodGet + " /api/v1/auth/status",
		http.MethodPost + " /api/v1/auth/logout",
		http.MethodGet + " /api/v1/auth/me",
		http.MethodGet + " /api/v1/ws",
		http.MethodGet + " /api/v1/budgets",
		http.MethodPut + " /api/v1/budgets",
		http.MethodPost + " /api/v1/budgets/variable",
		http.MethodPut + " /api/v1/budgets/variable/:title",
		http.MethodDelete + " /api/v1/budgets/variable/:title",
		http.MethodGet + " /api/v1/budgets/advice",
		http.MethodGet + " /api/v1/budgets/chart",
		http.MethodGet + " /api/v1/user/profile",
		http.MethodPut + " /api/v1/user/profile",
		http.MethodGet + " /api/v1/user/income",
		http.MethodPut + " /api/v1/user/income",
		http.MethodGet + " /api/v1/user/savings-goal",
		http.MethodGet + " /api/v1/dashboard",
		http.MethodGet + " /api/v1/challenges/catalog",
		http.MethodGet + " /api/v1/challenges",
		http.MethodPut + " /api/v1/challenges",
		http.MethodPost + " /api/v1/challenges/:id/toggle",
	}
	for _, w := range want {
		if !registered[w] {
			t.Errorf("route %s not registered", w)
		}
	}
	if len(registered) != len(want) {
		t.Errorf("registered %d routes, want %d", len(registered), len(want))
	}
}
