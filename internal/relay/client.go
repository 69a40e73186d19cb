// Package relay is the HTTP client for the OTP relay endpoints.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Goofygiraffe06/otprelay/internal/models"
)

// TransportError means the relay could not be reached or answered with
// something that is not a relay response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 20 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckPhone asks whether phone is free to sign up with. A 400 for an
// already registered number is a normal answer, not an error.
func (c *Client) CheckPhone(ctx context.Context, phone string) (models.CheckPhoneResponse, error) {
	var res models.CheckPhoneResponse
	err := c.post(ctx, "check-phone", "/api/check-phone", models.PhoneRequest{Phone: phone}, &res)
	return res, err
}

// SendOTP asks the relay to text a verification code to phone.
func (c *Client) SendOTP(ctx context.Context, phone string) (models.OTPResponse, error) {
	var res models.OTPResponse
	err := c.post(ctx, "send-otp", "/api/send-otp", models.PhoneRequest{Phone: phone}, &res)
	return res, err
}

// VerifyOTP asks the relay whether code is the one sent to phone.
func (c *Client) VerifyOTP(ctx context.Context, phone, code string) (models.OTPResponse, error) {
	var res models.OTPResponse
	err := c.post(ctx, "verify-otp", "/api/verify-otp", models.VerifyOTPRequest{Phone: phone, Code: code}, &res)
	return res, err
}

// post sends in as JSON and decodes the reply into out whatever the status,
// since the relay reports failures inside the body.
func (c *Client) post(ctx context.Context, op, path string, in, out any) error {
	buf, err := json.Marshal(in)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("%s: unexpected response (%s)", op, resp.Status)}
	}
	return nil
}
