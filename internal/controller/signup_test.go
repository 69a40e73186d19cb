package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/Goofygiraffe06/otprelay/internal/models"
	"github.com/Goofygiraffe06/otprelay/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPhone = "+12025550123"

func newPhoneSignup(auth *fakeAuth, r *fakeRelay, opts ...SignupOption) *Signup {
	s := NewSignup(auth, r, opts...)
	s.SetFullName("Ada Lovelace")
	s.SetIdentifier(testPhone)
	s.SetPassword("secret")
	return s
}

func TestSignupRequiresAllFields(t *testing.T) {
	auth, r := &fakeAuth{}, &fakeRelay{}
	s := NewSignup(auth, r)
	s.SetIdentifier("a@b.co")
	s.SetPassword("secret")

	_, err := s.Submit(context.Background())
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Please fill in all fields.", ve.Message)
	assert.Empty(t, auth.signUps)
	assert.Empty(t, r.checks)
}

func TestSignupInvalidIdentifier(t *testing.T) {
	s := NewSignup(&fakeAuth{}, &fakeRelay{})
	s.SetFullName("Ada")
	s.SetIdentifier("ada@")
	s.SetPassword("secret")

	_, err := s.Submit(context.Background())
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Invalid email or phone number format.", ve.Message)
}

func TestSignupByEmail(t *testing.T) {
	auth, r := &fakeAuth{}, &fakeRelay{}
	s := NewSignup(auth, r)
	s.SetFullName("Ada")
	s.SetIdentifier("ada@example.com")
	s.SetPassword("secret")

	out, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RouteLogin, out.Navigate)
	assert.Equal(t, Done, s.State())
	assert.Equal(t, []provider.Credentials{{Email: "ada@example.com", Password: "secret", FullName: "Ada"}}, auth.signUps)
	assert.Empty(t, r.checks)
}

func TestSignupByEmailProviderError(t *testing.T) {
	auth := &fakeAuth{err: &provider.Error{Status: 422, Message: "User already registered"}}
	s := NewSignup(auth, &fakeRelay{})
	s.SetFullName("Ada")
	s.SetIdentifier("ada@example.com")
	s.SetPassword("secret")

	_, err := s.Submit(context.Background())
	assert.EqualError(t, err, "User already registered")
	assert.Equal(t, Failed, s.State())
}

func TestSignupPhoneFirstSubmitSendsOTP(t *testing.T) {
	auth, r := &fakeAuth{}, &fakeRelay{}
	s := newPhoneSignup(auth, r)
	assert.False(t, s.ShowOTPField())

	out, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "OTP sent to your phone. Please enter the OTP below.", out.Info)
	assert.Empty(t, out.Navigate)
	assert.Equal(t, []string{testPhone}, r.checks)
	assert.Equal(t, []string{testPhone}, r.sends)
	assert.Empty(t, auth.signUps)
	assert.True(t, s.Session().OTPSent)
	assert.True(t, s.ShowOTPField())
	assert.Equal(t, AwaitingOTP, s.State())
}

func TestSignupPhoneAlreadyRegistered(t *testing.T) {
	r := &fakeRelay{registered: map[string]bool{testPhone: true}}
	s := newPhoneSignup(&fakeAuth{}, r)

	_, err := s.Submit(context.Background())
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Phone number is already registered.", ve.Message)
	assert.Empty(t, r.sends)
	assert.False(t, s.Session().OTPSent)
	assert.Equal(t, Failed, s.State())
}

func TestSignupPhoneDirectoryFailureIsNotRegistered(t *testing.T) {
	r := &fakeRelay{checkFail: "Invalid API key"}
	s := newPhoneSignup(&fakeAuth{}, r)

	_, err := s.Submit(context.Background())
	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "Invalid API key", pe.Message)
	assert.Empty(t, r.sends)
}

func TestSignupPhoneSendFailures(t *testing.T) {
	t.Run("relay message", func(t *testing.T) {
		r := &fakeRelay{sendRes: &models.OTPResponse{Success: false, Error: "Error sending OTP: Invalid parameter"}}
		s := newPhoneSignup(&fakeAuth{}, r)

		_, err := s.Submit(context.Background())
		assert.EqualError(t, err, "Error sending OTP: Invalid parameter")
		assert.False(t, s.Session().OTPSent)
	})

	t.Run("generic message", func(t *testing.T) {
		r := &fakeRelay{sendRes: &models.OTPResponse{Success: false}}
		s := newPhoneSignup(&fakeAuth{}, r)

		_, err := s.Submit(context.Background())
		assert.EqualError(t, err, "Failed to send OTP.")
	})

	t.Run("network", func(t *testing.T) {
		r := &fakeRelay{sendErr: errNetwork}
		s := newPhoneSignup(&fakeAuth{}, r)

		_, err := s.Submit(context.Background())
		var te *TransportError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, "connection refused", te.Message)
		assert.False(t, s.Session().OTPSent)

		// a retry is a fresh send
		r.sendErr = nil
		_, err = s.Submit(context.Background())
		require.NoError(t, err)
		assert.Len(t, r.sends, 2)
	})
}

func TestSignupPhoneSecondSubmit(t *testing.T) {
	auth, r := &fakeAuth{}, &fakeRelay{}
	s := newPhoneSignup(auth, r)
	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	s.SetOTP("123")
	_, err = s.Submit(context.Background())
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Message, "6-digit OTP")
	assert.Empty(t, auth.signUps)

	// five Arabic-Indic digits are ten bytes but still too short
	s.SetOTP("١٢٣٤٥")
	_, err = s.Submit(context.Background())
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "otp_length", ve.Key)
	assert.Empty(t, auth.signUps)

	// six Arabic-Indic digits are six characters
	s.SetOTP("١٢٣٤٥٦")
	out, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RouteLogin, out.Navigate)
	assert.Equal(t, []provider.Credentials{{Phone: testPhone, Password: "secret", FullName: "Ada Lovelace"}}, auth.signUps)

	// every submit re-checks the number; the code is never sent anywhere
	assert.Len(t, r.checks, 4)
	assert.Len(t, r.sends, 1)
	assert.Empty(t, r.verifies)
}

func TestSignupWithCodeVerification(t *testing.T) {
	auth, r := &fakeAuth{}, &fakeRelay{validCode: "424242"}
	s := newPhoneSignup(auth, r, WithCodeVerification())
	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	s.SetOTP("111111")
	_, err = s.Submit(context.Background())
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "otp_invalid", ve.Key)
	assert.Empty(t, auth.signUps)

	s.SetOTP("424242")
	_, err = s.Submit(context.Background())
	require.NoError(t, err)
	assert.Len(t, auth.signUps, 1)
	assert.Equal(t, []string{"111111", "424242"}, r.verifies)
}

func TestSignupChangingIdentifierRestartsOTP(t *testing.T) {
	r := &fakeRelay{}
	s := newPhoneSignup(&fakeAuth{}, r)
	_, err := s.Submit(context.Background())
	require.NoError(t, err)
	require.True(t, s.Session().OTPSent)

	s.SetIdentifier("+12025550199")
	assert.False(t, s.Session().OTPSent)
	assert.False(t, s.ShowOTPField())
	assert.Equal(t, Editing, s.State())

	_, err = s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{testPhone, "+12025550199"}, r.sends)
}

func TestSignupStateString(t *testing.T) {
	assert.Equal(t, "awaiting_otp", AwaitingOTP.String())
	assert.Equal(t, "error", Failed.String())
	assert.Equal(t, "unknown", SignupState(42).String())
}

func TestSignupIdentifierEditedWhileSending(t *testing.T) {
	r := &fakeRelay{}
	s := newPhoneSignup(&fakeAuth{}, r)
	r.onSend = func(string) { s.SetIdentifier("+12025550199") }

	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	assert.False(t, s.Session().OTPSent)
	assert.False(t, s.ShowOTPField())
	assert.Equal(t, Editing, s.State())
}
