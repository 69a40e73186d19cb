package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Goofygiraffe06/otprelay/internal/logging"
	"github.com/Goofygiraffe06/otprelay/internal/models"
	"github.com/Goofygiraffe06/otprelay/internal/utils"
	"github.com/golang-jwt/jwt/v5"
)

// Session is a provider-issued session.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         models.User
}

// Expired reports whether the access token is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Session returns the current session or nil.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Client) storeSession(s *Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

// accessClaims are the GoTrue access-token claims we read.
type accessClaims struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
	jwt.RegisteredClaims
}

// SetSession installs a session from a recovery redirect. The token is
// signed by the provider with a secret we do not hold, so it is decoded
// without verification; the provider re-checks it on every call.
func (c *Client) SetSession(_ context.Context, accessToken, refreshToken string) (*Session, error) {
	if accessToken == "" {
		return nil, errors.New("access token is required")
	}
	claims := &accessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		logging.WarnLog("Provider session rejected [%s]: %v", utils.HashToken(accessToken), err)
		return nil, fmt.Errorf("invalid access token: %w", err)
	}

	s := &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: models.User{
			ID:    claims.Subject,
			Email: claims.Email,
			Phone: claims.Phone,
		},
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	if s.Expired(time.Now()) {
		return nil, &Error{Status: 401, Code: "session_expired", Message: "Session expired"}
	}

	c.storeSession(s)
	logging.InfoLog("Provider session established [%s]", utils.HashIdentifier(s.User.ID))
	return s, nil
}
