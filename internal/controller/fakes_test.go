package controller

import (
	"context"
	"errors"
	"sync"

	"github.com/Goofygiraffe06/otprelay/internal/models"
	"github.com/Goofygiraffe06/otprelay/internal/provider"
	"github.com/Goofygiraffe06/otprelay/internal/relay"
)

type fakeAuth struct {
	mu        sync.Mutex
	signIns   []provider.Credentials
	signUps   []provider.Credentials
	resets    []string
	redirects []string
	passwords []string
	tokens    []string
	err       error
	block     chan struct{}
}

func (f *fakeAuth) wait() {
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeAuth) SignInWithPassword(ctx context.Context, cred provider.Credentials) (*provider.Session, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signIns = append(f.signIns, cred)
	if f.err != nil {
		return nil, f.err
	}
	return &provider.Session{AccessToken: "at"}, nil
}

func (f *fakeAuth) SignUp(ctx context.Context, cred provider.Credentials) (models.User, *provider.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signUps = append(f.signUps, cred)
	if f.err != nil {
		return models.User{}, nil, f.err
	}
	return models.User{ID: "u1", Email: cred.Email, Phone: cred.Phone}, nil, nil
}

func (f *fakeAuth) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, email)
	f.redirects = append(f.redirects, redirectTo)
	return f.err
}

func (f *fakeAuth) UpdateUserPassword(ctx context.Context, password string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwords = append(f.passwords, password)
	if f.err != nil {
		return models.User{}, f.err
	}
	return models.User{ID: "u1"}, nil
}

func (f *fakeAuth) SetSession(ctx context.Context, accessToken, refreshToken string) (*provider.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, accessToken)
	if f.err != nil {
		return nil, f.err
	}
	return &provider.Session{AccessToken: accessToken}, nil
}

type fakeRelay struct {
	mu         sync.Mutex
	checks     []string
	sends      []string
	verifies   []string
	registered map[string]bool
	checkErr   error
	checkFail  string
	sendRes    *models.OTPResponse
	sendErr    error
	validCode  string
	onSend     func(phone string)
}

func (f *fakeRelay) CheckPhone(ctx context.Context, phone string) (models.CheckPhoneResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks = append(f.checks, phone)
	switch {
	case f.checkErr != nil:
		return models.CheckPhoneResponse{}, f.checkErr
	case f.checkFail != "":
		return models.CheckPhoneResponse{Success: false, Error: f.checkFail}, nil
	case f.registered[phone]:
		return models.CheckPhoneResponse{Success: false, Available: models.Bool(false), Error: "Phone number is already registered"}, nil
	}
	return models.CheckPhoneResponse{Success: true, Available: models.Bool(true)}, nil
}

func (f *fakeRelay) SendOTP(ctx context.Context, phone string) (models.OTPResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, phone)
	if f.onSend != nil {
		f.onSend(phone)
	}
	if f.sendErr != nil {
		return models.OTPResponse{}, f.sendErr
	}
	if f.sendRes != nil {
		return *f.sendRes, nil
	}
	return models.OTPResponse{Success: true, Status: "pending"}, nil
}

func (f *fakeRelay) VerifyOTP(ctx context.Context, phone, code string) (models.OTPResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifies = append(f.verifies, code)
	return models.OTPResponse{Success: true, Status: "approved", Valid: models.Bool(code == f.validCode)}, nil
}

var errNetwork = &relay.TransportError{Op: "send-otp", Err: errors.New("connection refused")}
