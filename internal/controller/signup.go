package controller

import (
	"context"
	"sync"
	"unicode/utf8"

	"github.com/Goofygiraffe06/otprelay/internal/identifier"
	"github.com/Goofygiraffe06/otprelay/internal/logging"
	"github.com/Goofygiraffe06/otprelay/internal/utils"
)

type SignupState int

const (
	Editing SignupState = iota
	CheckingPhone
	SendingOTP
	AwaitingOTP
	Submitting
	Done
	Failed
)

func (s SignupState) String() string {
	switch s {
	case Editing:
		return "editing"
	case CheckingPhone:
		return "checking_phone"
	case SendingOTP:
		return "sending_otp"
	case AwaitingOTP:
		return "awaiting_otp"
	case Submitting:
		return "submitting"
	case Done:
		return "done"
	case Failed:
		return "error"
	default:
		return "unknown"
	}
}

// SignupSession is the content of one signup form. OTPSent is the only flag
// deciding what the next submit does.
type SignupSession struct {
	FullName   string `validate:"required"`
	Identifier string `validate:"required,identifier"`
	Password   string `validate:"required"`
	OTP        string
	OTPSent    bool
}

type SignupOption func(*Signup)

// WithCodeVerification makes the phone path check the entered code with the
// relay before creating the account.
func WithCodeVerification() SignupOption {
	return func(s *Signup) { s.verifyCodes = true }
}

// Signup creates an account by email, or by phone after an SMS code has
// been requested.
type Signup struct {
	gate
	auth        AuthProvider
	relay       Relay
	verifyCodes bool

	mu      sync.Mutex
	session SignupSession
	state   SignupState
}

func NewSignup(auth AuthProvider, relay Relay, opts ...SignupOption) *Signup {
	s := &Signup{auth: auth, relay: relay}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Signup) SetFullName(v string) {
	s.mu.Lock()
	s.session.FullName = v
	s.mu.Unlock()
}

// SetIdentifier changes the email or phone. A different value starts the
// OTP step over.
func (s *Signup) SetIdentifier(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v == s.session.Identifier {
		return
	}
	s.session.Identifier = v
	s.session.OTPSent = false
	s.session.OTP = ""
	s.state = Editing
}

func (s *Signup) SetPassword(v string) {
	s.mu.Lock()
	s.session.Password = v
	s.mu.Unlock()
}

func (s *Signup) SetOTP(v string) {
	s.mu.Lock()
	s.session.OTP = v
	s.mu.Unlock()
}

// Session returns a copy of the form content.
func (s *Signup) Session() SignupSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *Signup) State() SignupState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ShowOTPField reports whether the code input should be visible.
func (s *Signup) ShowOTPField() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.OTPSent && identifier.IsPhone(s.session.Identifier)
}

func (s *Signup) setState(st SignupState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// fail records the error state and passes err through.
func (s *Signup) fail(err error) (Outcome, error) {
	s.setState(Failed)
	return Outcome{}, err
}

// Submit advances the form by one step.
func (s *Signup) Submit(ctx context.Context) (Outcome, error) {
	if !s.enter() {
		return Outcome{}, ErrSubmitInFlight
	}
	defer s.leave()

	form := s.Session()
	if err := validate.Struct(form); err != nil {
		if failedTag(err) == "required" {
			return s.fail(invalid("fill_all_fields"))
		}
		return s.fail(invalid("invalid_identifier"))
	}

	if identifier.Classify(form.Identifier) == identifier.Email {
		return s.signUp(ctx, form)
	}
	return s.phoneStep(ctx, form)
}

// phoneStep re-checks the number on every submit, then either requests a
// code or, once one was sent, creates the account.
func (s *Signup) phoneStep(ctx context.Context, form SignupSession) (Outcome, error) {
	phone := form.Identifier
	phoneHash := utils.HashIdentifier(phone)

	s.setState(CheckingPhone)
	res, err := s.relay.CheckPhone(ctx, phone)
	if err != nil {
		logging.WarnLog("Signup phone check failed [%s]: %v", phoneHash, err)
		return s.fail(fromRelay(err))
	}
	if !res.Success {
		if res.Available != nil && !*res.Available {
			logging.InfoLog("Signup rejected: phone registered [%s]", phoneHash)
			return s.fail(invalid("phone_registered"))
		}
		return s.fail(&ProviderError{Message: res.Error})
	}

	if !form.OTPSent {
		s.setState(SendingOTP)
		if err := sendOTP(ctx, s.relay, phone); err != nil {
			logging.WarnLog("Signup OTP send failed [%s]: %v", phoneHash, err)
			return s.fail(err)
		}
		s.mu.Lock()
		// the identifier may have been edited while the code was on its way
		if s.session.Identifier == phone {
			s.session.OTPSent = true
			s.state = AwaitingOTP
		}
		s.mu.Unlock()
		logging.InfoLog("Signup OTP sent [%s]", phoneHash)
		return info("otp_sent"), nil
	}

	if utf8.RuneCountInString(form.OTP) != OTPLength {
		s.setState(AwaitingOTP)
		return Outcome{}, invalid("otp_length")
	}
	if s.verifyCodes {
		s.setState(Submitting)
		if err := verifyOTP(ctx, s.relay, phone, form.OTP); err != nil {
			logging.WarnLog("Signup OTP rejected [%s]: %v", phoneHash, err)
			return s.fail(err)
		}
	}
	return s.signUp(ctx, form)
}

func (s *Signup) signUp(ctx context.Context, form SignupSession) (Outcome, error) {
	s.setState(Submitting)
	cred := credentials(form.Identifier, form.Password)
	cred.FullName = form.FullName

	idHash := utils.HashIdentifier(form.Identifier)
	user, _, err := s.auth.SignUp(ctx, cred)
	if err != nil {
		logging.WarnLog("Signup failed [%s]: %v", idHash, err)
		return s.fail(fromAuth(err))
	}

	logging.InfoLog("Signup succeeded [%s] user=%s", idHash, user.ID)
	s.setState(Done)
	return Outcome{Navigate: RouteLogin}, nil
}
