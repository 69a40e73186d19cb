// Package identifier classifies user-entered login keys as an email address
// or a phone number.
package identifier

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Kind is the classification of an identifier.
type Kind int

const (
	Invalid Kind = iota
	Email
	Phone
)

func (k Kind) String() string {
	switch k {
	case Email:
		return "email"
	case Phone:
		return "phone"
	default:
		return "invalid"
	}
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// E.164-like: optional '+', leading 1-9, 2 to 15 digits in total.
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
)

// IsEmail reports whether s has the local@domain.tld shape.
func IsEmail(s string) bool { return emailPattern.MatchString(s) }

// IsPhone reports whether s has the E.164-like phone shape.
func IsPhone(s string) bool { return phonePattern.MatchString(s) }

// Classify returns Email, Phone or Invalid. Email wins when both match,
// which cannot happen since phones never contain '@'.
func Classify(s string) Kind {
	switch {
	case IsEmail(s):
		return Email
	case IsPhone(s):
		return Phone
	default:
		return Invalid
	}
}

// RegisterValidations adds the "identifier" and "phone" tags to v.
func RegisterValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return Classify(fl.Field().String()) != Invalid
	}); err != nil {
		return err
	}
	return v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	})
}
