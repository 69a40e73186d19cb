// Package sms talks to the Twilio Verify v2 API, which owns OTP generation,
// delivery and code checking.
package sms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Goofygiraffe06/otprelay/internal/logging"
	"github.com/Goofygiraffe06/otprelay/internal/transport"
	"github.com/Goofygiraffe06/otprelay/internal/utils"
	"github.com/twilio/twilio-go/client"
	verify "github.com/twilio/twilio-go/rest/verify/v2"
)

// ChannelSMS is the only delivery channel the relay uses.
const ChannelSMS = "sms"

// Check is the outcome of a verification check.
type Check struct {
	Status string
	Valid  bool
}

// Error is a failed Twilio call.
type Error struct {
	StatusCode int
	Code       int
	Message    string
	MoreInfo   string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("twilio: http %d", e.StatusCode)
	}
	return e.Message
}

type Client struct {
	base       *url.URL
	accountSID string
	authToken  string
	serviceSID string
	http       *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithBaseURL points the client somewhere other than verify.twilio.com.
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			logging.WarnLog("Ignoring Twilio base URL %q", raw)
			return
		}
		c.base = u
	}
}

func NewClient(accountSID, authToken, serviceSID string, opts ...Option) *Client {
	c := &Client{
		accountSID: accountSID,
		authToken:  authToken,
		serviceSID: serviceSID,
		http:       &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// service builds a Verify API bound to ctx for one call.
func (c *Client) service(ctx context.Context) (*verify.ApiService, *transport.Call) {
	hc, call := transport.Bind(ctx, c.http, transport.WithBaseURL(c.base))
	tc := &client.Client{
		Credentials: client.NewCredentials(c.accountSID, c.authToken),
		HTTPClient:  hc,
	}
	return verify.NewApiServiceWithClient(tc), call
}

// StartVerification asks Twilio to send a code to phone and returns the
// verification status (normally "pending").
func (c *Client) StartVerification(ctx context.Context, phone, channel string) (string, error) {
	if channel == "" {
		channel = ChannelSMS
	}
	params := &verify.CreateVerificationParams{}
	params.SetTo(phone)
	params.SetChannel(channel)

	api, call := c.service(ctx)
	res, err := api.CreateVerification(c.serviceSID, params)
	if err != nil {
		err = apiError(err, call)
		logging.WarnLog("SMS verification start failed [%s]: %v", utils.HashIdentifier(phone), err)
		return "", err
	}
	status := deref(res.Status)
	logging.InfoLog("SMS verification started [%s] status=%s", utils.HashIdentifier(phone), status)
	return status, nil
}

// CheckVerification submits code for phone. A wrong code is not an error:
// Twilio answers with status "pending" and valid=false.
func (c *Client) CheckVerification(ctx context.Context, phone, code string) (Check, error) {
	params := &verify.CreateVerificationCheckParams{}
	params.SetTo(phone)
	params.SetCode(code)

	api, call := c.service(ctx)
	res, err := api.CreateVerificationCheck(c.serviceSID, params)
	if err != nil {
		err = apiError(err, call)
		logging.WarnLog("SMS verification check failed [%s]: %v", utils.HashIdentifier(phone), err)
		return Check{}, err
	}
	check := Check{Status: deref(res.Status)}
	if res.Valid != nil {
		check.Valid = *res.Valid
	}
	logging.InfoLog("SMS verification checked [%s] status=%s", utils.HashIdentifier(phone), check.Status)
	return check, nil
}

// apiError turns an SDK failure into *Error when Twilio answered at all.
// Network failures and cancellations pass through unchanged.
func apiError(err error, call *transport.Call) error {
	var restErr *client.TwilioRestError
	if errors.As(err, &restErr) {
		status := restErr.Status
		if status == 0 {
			status = call.Status()
		}
		return &Error{StatusCode: status, Code: restErr.Code, Message: restErr.Message, MoreInfo: restErr.MoreInfo}
	}
	if status := call.Status(); status >= http.StatusBadRequest {
		return &Error{StatusCode: status}
	}
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
