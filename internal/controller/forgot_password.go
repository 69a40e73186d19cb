package controller

import (
	"context"
	"strings"
	"sync"

	"github.com/Goofygiraffe06/otprelay/internal/identifier"
	"github.com/Goofygiraffe06/otprelay/internal/logging"
	"github.com/Goofygiraffe06/otprelay/internal/utils"
)

type ForgotPasswordForm struct {
	Identifier string `validate:"required,identifier"`
	OTP        string
}

// ForgotPassword sends a reset link by email, or a code by SMS followed by a
// hand-off to the update-password page.
type ForgotPassword struct {
	gate
	auth        AuthProvider
	relay       Relay
	redirectTo  string
	verifyCodes bool

	mu      sync.Mutex
	otpSent bool
	phone   string
}

type ForgotPasswordOption func(*ForgotPassword)

// WithResetCodeVerification makes the phone path check the code with the
// relay before moving on.
func WithResetCodeVerification() ForgotPasswordOption {
	return func(f *ForgotPassword) { f.verifyCodes = true }
}

// NewForgotPassword builds the controller. appOrigin is where the web app is
// served; reset e-mails link back to its update-password page.
func NewForgotPassword(auth AuthProvider, relay Relay, appOrigin string, opts ...ForgotPasswordOption) *ForgotPassword {
	f := &ForgotPassword{
		auth:       auth,
		relay:      relay,
		redirectTo: strings.TrimRight(appOrigin, "/") + RouteUpdatePassword,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// OTPSent reports whether a code was sent for the current phone number.
func (f *ForgotPassword) OTPSent() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.otpSent
}

func (f *ForgotPassword) Submit(ctx context.Context, form ForgotPasswordForm) (Outcome, error) {
	if !f.enter() {
		return Outcome{}, ErrSubmitInFlight
	}
	defer f.leave()

	if err := validate.Struct(form); err != nil {
		if failedTag(err) == "required" {
			return Outcome{}, invalid("enter_identifier")
		}
		return Outcome{}, invalid("invalid_identifier")
	}

	idHash := utils.HashIdentifier(form.Identifier)
	if identifier.Classify(form.Identifier) == identifier.Email {
		if err := f.auth.ResetPasswordForEmail(ctx, form.Identifier, f.redirectTo); err != nil {
			logging.WarnLog("Reset link failed [%s]: %v", idHash, err)
			return Outcome{}, fromAuth(err)
		}
		logging.InfoLog("Reset link requested [%s]", idHash)
		return info("reset_link_sent"), nil
	}

	phone := form.Identifier
	f.mu.Lock()
	if f.phone != phone {
		f.phone = phone
		f.otpSent = false
	}
	sent := f.otpSent
	f.mu.Unlock()

	if !sent {
		if err := sendOTP(ctx, f.relay, phone); err != nil {
			logging.WarnLog("Reset OTP send failed [%s]: %v", idHash, err)
			return Outcome{}, err
		}
		f.mu.Lock()
		if f.phone == phone {
			f.otpSent = true
		}
		f.mu.Unlock()
		logging.InfoLog("Reset OTP sent [%s]", idHash)
		return info("otp_sent"), nil
	}

	if form.OTP == "" {
		return Outcome{}, invalid("otp_required")
	}
	if f.verifyCodes {
		if err := verifyOTP(ctx, f.relay, phone, form.OTP); err != nil {
			logging.WarnLog("Reset OTP rejected [%s]: %v", idHash, err)
			return Outcome{}, err
		}
	}
	return Outcome{Navigate: updatePasswordRoute(phone)}, nil
}
