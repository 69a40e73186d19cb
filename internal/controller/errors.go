package controller

import (
	"errors"

	"github.com/Goofygiraffe06/otprelay/internal/provider"
	"github.com/Goofygiraffe06/otprelay/internal/relay"
)

// ErrSubmitInFlight is returned when a form is submitted while its previous
// submit has not finished.
var ErrSubmitInFlight = errors.New("submit already in progress")

// ValidationError is bad local input. It never reaches the network.
// Key names the translation of Message.
type ValidationError struct {
	Key     string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ProviderError is a failed auth, SMS or directory call. Message is the
// upstream text, shown as is.
type ProviderError struct {
	Message string
	Err     error
}

func (e *ProviderError) Error() string { return e.Message }

func (e *ProviderError) Unwrap() error { return e.Err }

// TransportError is a network failure talking to the relay or the provider.
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string { return e.Message }

func (e *TransportError) Unwrap() error { return e.Err }

func invalid(key string) *ValidationError {
	return &ValidationError{Key: key, Message: messages[key]}
}

// fromAuth sorts an AuthProvider error into the taxonomy.
func fromAuth(err error) error {
	var pe *provider.Error
	if errors.As(err, &pe) || errors.Is(err, provider.ErrNoSession) {
		return &ProviderError{Message: err.Error(), Err: err}
	}
	return &TransportError{Message: err.Error(), Err: err}
}

// fromRelay sorts a Relay error into the taxonomy.
func fromRelay(err error) error {
	var te *relay.TransportError
	if errors.As(err, &te) {
		return &TransportError{Message: te.Error(), Err: err}
	}
	return &ProviderError{Message: err.Error(), Err: err}
}
