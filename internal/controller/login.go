package controller

import (
	"context"

	"github.com/Goofygiraffe06/otprelay/internal/logging"
	"github.com/Goofygiraffe06/otprelay/internal/utils"
)

type LoginForm struct {
	Identifier string `validate:"required,identifier"`
	Password   string
}

// Login signs a user in with an email or phone number and a password.
type Login struct {
	gate
	auth AuthProvider
}

func NewLogin(auth AuthProvider) *Login {
	return &Login{auth: auth}
}

// Submit validates the form and signs in. On success the user goes on to
// pick a language.
func (l *Login) Submit(ctx context.Context, form LoginForm) (Outcome, error) {
	if !l.enter() {
		return Outcome{}, ErrSubmitInFlight
	}
	defer l.leave()

	if err := validate.Struct(form); err != nil {
		if failedTag(err) == "required" {
			return Outcome{}, invalid("enter_identifier")
		}
		return Outcome{}, invalid("invalid_identifier")
	}

	idHash := utils.HashIdentifier(form.Identifier)
	if _, err := l.auth.SignInWithPassword(ctx, credentials(form.Identifier, form.Password)); err != nil {
		logging.WarnLog("Login failed [%s]: %v", idHash, err)
		return Outcome{}, fromAuth(err)
	}

	logging.InfoLog("Login succeeded [%s]", idHash)
	return Outcome{Navigate: RouteSelectLanguage}, nil
}
