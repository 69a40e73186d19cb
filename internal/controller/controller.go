// Package controller drives the login, signup, password reset and language
// forms. Each controller validates input locally, then calls the auth
// provider or the OTP relay and reports where the user should go next.
package controller

import (
	"context"
	"net/url"
	"sync/atomic"

	"github.com/Goofygiraffe06/otprelay/internal/identifier"
	"github.com/Goofygiraffe06/otprelay/internal/models"
	"github.com/Goofygiraffe06/otprelay/internal/provider"
	"github.com/go-playground/validator/v10"
)

// Routes the controllers navigate to.
const (
	RouteLogin          = "/auth/login"
	RouteSelectLanguage = "/auth/select-language"
	RouteUpdatePassword = "/auth/update-password"
)

// OTPLength is the code length the signup form insists on.
const OTPLength = 6

// Outcome is what a successful submit asks the UI to do. Navigate is a
// route; Info is a non-error message to show.
type Outcome struct {
	Navigate string
	Info     string
	InfoKey  string
}

func info(key string) Outcome {
	return Outcome{Info: messages[key], InfoKey: key}
}

// AuthProvider is the authentication backend.
type AuthProvider interface {
	SignInWithPassword(ctx context.Context, cred provider.Credentials) (*provider.Session, error)
	SignUp(ctx context.Context, cred provider.Credentials) (models.User, *provider.Session, error)
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
	UpdateUserPassword(ctx context.Context, password string) (models.User, error)
	SetSession(ctx context.Context, accessToken, refreshToken string) (*provider.Session, error)
}

// Relay is the OTP relay service.
type Relay interface {
	CheckPhone(ctx context.Context, phone string) (models.CheckPhoneResponse, error)
	SendOTP(ctx context.Context, phone string) (models.OTPResponse, error)
	VerifyOTP(ctx context.Context, phone, code string) (models.OTPResponse, error)
}

// English texts for the translation keys the controllers emit.
var messages = map[string]string{
	"fill_all_fields":    "Please fill in all fields.",
	"enter_identifier":   "Please enter an email or phone number.",
	"invalid_identifier": "Invalid email or phone number format.",
	"phone_registered":   "Phone number is already registered.",
	"otp_sent":           "OTP sent to your phone. Please enter the OTP below.",
	"otp_failed":         "Failed to send OTP.",
	"otp_length":         "Please enter the 6-digit OTP sent to your phone.",
	"otp_required":       "Please enter the OTP sent to your phone.",
	"otp_invalid":        "The OTP you entered is incorrect.",
	"reset_link_sent":    "A password reset link has been sent to your email.",
	"passwords_mismatch": "Passwords do not match.",
	"password_updated":   "Password updated successfully. You can now log in with your new password.",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := identifier.RegisterValidations(v); err != nil {
		panic(err)
	}
	return v
}

// failedTag returns the first failing tag of a validate.Struct error,
// preferring "required" over shape checks.
func failedTag(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return ""
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return "required"
		}
	}
	return verrs[0].Tag()
}

// credentials puts id in the Email or Phone slot according to its kind.
func credentials(id, password string) provider.Credentials {
	if identifier.Classify(id) == identifier.Email {
		return provider.Credentials{Email: id, Password: password}
	}
	return provider.Credentials{Phone: id, Password: password}
}

// gate is the form's loading flag. While it is held further submits are
// refused; in-flight calls are never cancelled.
type gate struct{ busy atomic.Bool }

func (g *gate) enter() bool { return g.busy.CompareAndSwap(false, true) }

func (g *gate) leave() { g.busy.Store(false) }

// Loading reports whether a submit is in flight.
func (g *gate) Loading() bool { return g.busy.Load() }

// sendOTP asks the relay for a code. A relay-side failure keeps the relay's
// message, or a generic one when it gave none.
func sendOTP(ctx context.Context, r Relay, phone string) error {
	res, err := r.SendOTP(ctx, phone)
	if err != nil {
		return fromRelay(err)
	}
	if !res.Success {
		if res.Error == "" {
			return &ProviderError{Message: messages["otp_failed"]}
		}
		return &ProviderError{Message: res.Error}
	}
	return nil
}

// verifyOTP checks code with the relay. Only used when code verification is
// switched on.
func verifyOTP(ctx context.Context, r Relay, phone, code string) error {
	res, err := r.VerifyOTP(ctx, phone, code)
	if err != nil {
		return fromRelay(err)
	}
	if !res.Success {
		return &ProviderError{Message: res.Error}
	}
	if res.Valid == nil || !*res.Valid {
		return invalid("otp_invalid")
	}
	return nil
}

// updatePasswordRoute is the phone reset target, carrying the phone number.
func updatePasswordRoute(phone string) string {
	return RouteUpdatePassword + "?phone=" + url.QueryEscape(phone)
}
