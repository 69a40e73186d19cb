// Package provider is a client for the GoTrue authentication API exposed by
// Supabase under /auth/v1. Credential storage, password hashing, sessions and
// reset e-mails all live on the provider; this package only calls it.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Goofygiraffe06/otprelay/internal/models"
	"github.com/Goofygiraffe06/otprelay/internal/transport"
	"github.com/google/uuid"
	auth "github.com/supabase-community/auth-go"
	"github.com/supabase-community/auth-go/types"
)

// Error is a failed provider call. Message is meant to be shown to the user
// verbatim.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// ErrNoSession is returned by calls that need a signed-in user.
var ErrNoSession = errors.New("Auth session missing!")

// errorBody covers the shapes GoTrue has used for error payloads over time.
type errorBody struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
	Error            string `json:"error"`
	ErrorCode        string `json:"error_code"`
}

func (b errorBody) text() string {
	for _, s := range []string{b.Msg, b.Message, b.ErrorDescription, b.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// statusPrefix starts every non-200 error the auth SDK returns; the raw
// response body follows it.
const statusPrefix = "response status code "

// apiError turns an SDK failure into *Error when GoTrue answered with an
// error status. Network failures and cancellations pass through unchanged.
func apiError(err error, call *transport.Call) error {
	status := call.Status()
	if err == nil || status == 0 || !strings.HasPrefix(err.Error(), statusPrefix) {
		return err
	}
	var eb errorBody
	if _, body, ok := strings.Cut(err.Error(), ": "); ok {
		_ = json.Unmarshal([]byte(body), &eb)
	}
	msg := eb.text()
	if msg == "" {
		msg = fmt.Sprintf("%d %s", status, http.StatusText(status))
	}
	return &Error{Status: status, Code: eb.ErrorCode, Message: msg}
}

// api builds an SDK client bound to ctx for one call.
func api(ctx context.Context, hc *http.Client, authURL, apiKey, token string, opts ...transport.Option) (auth.Client, *transport.Call) {
	bound, call := transport.Bind(ctx, hc, opts...)
	c := auth.New("", apiKey).WithCustomAuthURL(authURL).WithClient(*bound)
	if token != "" {
		c = c.WithToken(token)
	}
	return c, call
}

func authURL(projectURL string) string {
	return strings.TrimRight(projectURL, "/") + "/auth/v1"
}

func userModel(u types.User) models.User {
	name, _ := u.UserMetadata["full_name"].(string)
	m := models.User{Email: u.Email, Phone: u.Phone, FullName: name, CreatedAt: u.CreatedAt}
	if u.ID != uuid.Nil {
		m.ID = u.ID.String()
	}
	return m
}

func sessionModel(s types.Session) *Session {
	exp := time.Unix(int64(s.ExpiresAt), 0)
	if s.ExpiresAt == 0 && s.ExpiresIn > 0 {
		exp = time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	return &Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    exp,
		User:         userModel(s.User),
	}
}

// Client is the anonymous-key client used by the form controllers. It keeps
// the session of the signed-in user, if any.
type Client struct {
	authURL string
	apiKey  string
	http    *http.Client

	mu      sync.RWMutex
	session *Session
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// NewClient builds a client for the project at projectURL.
func NewClient(projectURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		authURL: authURL(projectURL),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) api(ctx context.Context, token string, opts ...transport.Option) (auth.Client, *transport.Call) {
	return api(ctx, c.http, c.authURL, c.apiKey, token, opts...)
}
