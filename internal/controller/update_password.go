package controller

import (
	"context"

	"github.com/Goofygiraffe06/otprelay/internal/logging"
)

type UpdatePasswordForm struct {
	NewPassword     string
	ConfirmPassword string
}

// UpdatePassword sets a new password for the user who followed a reset link.
type UpdatePassword struct {
	gate
	auth AuthProvider
}

func NewUpdatePassword(auth AuthProvider) *UpdatePassword {
	return &UpdatePassword{auth: auth}
}

// Establish adopts the session carried by a recovery link. An empty token
// is ignored, as when the page was reached from the phone reset flow.
func (u *UpdatePassword) Establish(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	if _, err := u.auth.SetSession(ctx, accessToken, ""); err != nil {
		logging.WarnLog("Recovery session rejected: %v", err)
		return fromAuth(err)
	}
	return nil
}

func (u *UpdatePassword) Submit(ctx context.Context, form UpdatePasswordForm) (Outcome, error) {
	if !u.enter() {
		return Outcome{}, ErrSubmitInFlight
	}
	defer u.leave()

	if form.NewPassword != form.ConfirmPassword {
		return Outcome{}, invalid("passwords_mismatch")
	}
	user, err := u.auth.UpdateUserPassword(ctx, form.NewPassword)
	if err != nil {
		logging.WarnLog("Password update failed: %v", err)
		return Outcome{}, fromAuth(err)
	}

	logging.InfoLog("Password updated for user %s", user.ID)
	out := info("password_updated")
	out.Navigate = RouteLogin
	return out, nil
}
