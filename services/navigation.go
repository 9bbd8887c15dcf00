package services

import "github.com/pocketplan/budget-api/models"

// Navigator performs screen transitions on behalf of the auth router. The
// params bag is forwarded verbatim to the destination screen.
type Navigator interface {
	GoToLogin()
	GoToSignUp()
	GoToDashboard(params models.NavParams)
	GoToInvalidLogin(params models.NavParams)
	GoToResetPassword()
	GoToAccountSettings(params models.NavParams)
	GoToConfirm(params models.NavParams)
	GoBack()
}

// NavigationRecorder is a Navigator that remembers every transition so an
// HTTP handler can hand the final one back to the app.
type NavigationRecorder struct {
	Transitions []models.Navigation
}

func (r *NavigationRecorder) push(screen models.Screen, params models.NavParams) {
	r.Transitions = append(r.Transitions, models.Navigation{Screen: screen, Params: params})
}

func (r *NavigationRecorder) GoToLogin()  { r.push(models.ScreenLogin, nil) }
func (r *NavigationRecorder) GoToSignUp() { r.push(models.ScreenSignUp, nil) }
func (r *NavigationRecorder) GoToDashboard(params models.NavParams) {
	r.push(models.ScreenDashboard, params)
}
func (r *NavigationRecorder) GoToInvalidLogin(params models.NavParams) {
	r.push(models.ScreenInvalidLogin, params)
}
func (r *NavigationRecorder) GoToResetPassword() { r.push(models.ScreenResetPassword, nil) }
func (r *NavigationRecorder) GoToAccountSettings(params models.NavParams) {
	r.push(models.ScreenAccountSettings, params)
}
func (r *NavigationRecorder) GoToConfirm(params models.NavParams) {
	r.push(models.ScreenConfirm, params)
}
func (r *NavigationRecorder) GoBack() { r.push(models.ScreenBack, nil) }

// Last returns the most recent transition, or nil when none happened.
func (r *NavigationRecorder) Last() *models.Navigation {
	if len(r.Transitions) == 0 {
		return nil
	}
	last := r.Transitions[len(r.Transitions)-1]
	return &last
}
