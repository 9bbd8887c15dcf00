package routes

import (
	"github.com/pocketplan/budget-api/handlers"
	"github.com/pocketplan/budget-api/middleware"
	"github.com/pocketplan/budget-api/services"

	"github.com/gin-gonic/gin"
)

// Services is everything the route setup needs to build handlers.
type Services struct {
	Auth       *services.AuthService
	Budgets    *services.BudgetService
	Profiles   *services.ProfileService
	Challenges *services.ChallengeService
	WS         *handlers.WSHandler
	InFlight   *middleware.InFlightGuard
}

// SetupAuthRoutes sets up public authentication routes.
func SetupAuthRoutes(rg *gin.RouterGroup, s *Services) {
	authHandler := handlers.NewAuthHandler(s.Auth, s.WS)

	rg.POST("/auth/signup", s.InFlight.Guard("signup"), authHandler.Signup)
	rg.POST("/auth/login", s.InFlight.Guard("login"), authHandler.Login)
	rg.POST("/auth/confirm-signup", s.InFlight.Guard("confirm_signup"), authHandler.ConfirmSignUp)
	rg.POST("/auth/confirm-signin", authHandler.ConfirmSignIn)
	rg.POST("/auth/resend-code", authHandler.ResendCode)
	rg.POST("/auth/reset-password", authHandler.ResetPassword)
	rg.POST("/auth/confirm-reset-password", s.InFlight.Guard("confirm_reset"), authHandler.ConfirmResetPassword)
	rg.GET("/auth/status", authHandler.Status)
}

// SetupSessionRoutes sets up the protected auth routes.
func SetupSessionRoutes(rg *gin.RouterGroup, s *Services) {
	authHandler := handlers.NewAuthHandler(s.Auth, s.WS)

	rg.POST("/auth/logout", authHandler.Logout)
	rg.GET("/auth/me", authHandler.Me)
	rg.GET("/ws", s.WS.HandleWS)
}

// SetupBudgetRoutes sets up protected budget routes. Every write is guarded
// against double submission.
func SetupBudgetRoutes(rg *gin.RouterGroup, s *Services) {
	h := handlers.NewBudgetHandler(s.Budgets)
	save := s.InFlight.Guard("save_budgets")

	rg.GET("/budgets", h.GetBudgets)
	rg.PUT("/budgets", save, h.UpdateBudgets)
	rg.POST("/budgets/variable", save, h.AddVariable)
	rg.PUT("/budgets/variable/:title", save, h.EditVariable)
	rg.DELETE("/budgets/variable/:title", save, h.DeleteVariable)
	rg.GET("/budgets/advice", h.GetAdvice)
	rg.GET("/budgets/chart", h.GetChart)
}

// SetupUserRoutes sets up protected user routes.
func SetupUserRoutes(rg *gin.RouterGroup, s *Services) {
	userHandler := handlers.NewUserHandler(s.Profiles)

	rg.GET("/user/profile", userHandler.GetProfile)
	rg.PUT("/user/profile", s.InFlight.Guard("update_account"), userHandler.UpdateProfile)
	rg.GET("/user/income", userHandler.GetIncome)
	rg.PUT("/user/income", s.InFlight.Guard("update_income"), userHandler.UpdateIncome)
	rg.GET("/user/savings-goal", userHandler.GetSavingsGoal)
	rg.GET("/dashboard", userHandler.GetDashboard)
}

// SetupChallengeRoutes sets up the savings challenge routes.
func SetupChallengeRoutes(rg *gin.RouterGroup, s *Services) {
	h := handlers.NewChallengeHandler(s.Challenges)
	save := s.InFlight.Guard("save_challenges")

	rg.GET("/challenges/catalog", h.GetCatalog)
	rg.GET("/challenges", h.GetJoined)
	rg.PUT("/challenges", save, h.UpdateJoined)
	rg.POST("/challenges/:id/toggle", save, h.Toggle)
}
