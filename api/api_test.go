package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Goofygiraffe06/otprelay/api"
	"github.com/Goofygiraffe06/otprelay/internal/i18n"
	"github.com/Goofygiraffe06/otprelay/internal/logging"
	"github.com/Goofygiraffe06/otprelay/internal/manager"
	"github.com/Goofygiraffe06/otprelay/internal/models"
	"github.com/Goofygiraffe06/otprelay/internal/sms"
	"github.com/Goofygiraffe06/otprelay/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeDirectory struct {
	mu    sync.Mutex
	users map[string][]models.User
	err   error
	panic string
	calls int
}

func (f *fakeDirectory) ListUsersByPhone(ctx context.Context, phone string) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.panic != "" {
		panic(f.panic)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.users[phone], nil
}

type fakeSMS struct {
	mu     sync.Mutex
	status string
	err    error
	panic  string
	sent   []string
	codes  map[string]string
}

func (f *fakeSMS) StartVerification(ctx context.Context, phone, channel string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panic != "" {
		panic(f.panic)
	}
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, phone+"/"+channel)
	return f.status, nil
}

func (f *fakeSMS) CheckVerification(ctx context.Context, phone, code string) (sms.Check, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return sms.Check{}, f.err
	}
	if f.codes[phone] == code {
		return sms.Check{Status: "approved", Valid: true}, nil
	}
	return sms.Check{Status: "pending", Valid: false}, nil
}

type fixture struct {
	dir     *fakeDirectory
	sms     *fakeSMS
	mgr     *manager.WorkManager
	handler http.Handler
}

func setup(t *testing.T) *fixture {
	t.Helper()

	bundle, err := i18n.LoadEmbedded()
	require.NoError(t, err)

	f := &fixture{
		dir: &fakeDirectory{users: map[string][]models.User{}},
		sms: &fakeSMS{status: "pending", codes: map[string]string{}},
		mgr: manager.NewWorkManager(
			manager.WithDirectoryWorkers(2),
			manager.WithSMSWorkers(2),
			manager.WithQueueSize(8),
			manager.WithCallTimeout(time.Second),
		),
	}
	t.Cleanup(f.mgr.Close)

	f.handler = api.NewRouter(api.Deps{
		Directory:      f.dir,
		SMS:            f.sms,
		Locales:        bundle,
		Manager:        f.mgr,
		AllowedOrigins: []string{"http://localhost:3000"},
		MaxBodyBytes:   1 << 10,
	})
	return f
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeCheck(t *testing.T, rr *httptest.ResponseRecorder) models.CheckPhoneResponse {
	t.Helper()
	var res models.CheckPhoneResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res), "response not valid JSON")
	return res
}

func decodeOTP(t *testing.T, rr *httptest.ResponseRecorder) models.OTPResponse {
	t.Helper()
	var res models.OTPResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res), "response not valid JSON")
	return res
}

func TestCheckPhone(t *testing.T) {
	t.Run("missing phone", func(t *testing.T) {
		f := setup(t)
		rr := post(t, f.handler, "/api/check-phone", `{}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"success":false,"error":"Phone number is required"}`, rr.Body.String())
		assert.Zero(t, f.dir.calls)
	})

	t.Run("empty body", func(t *testing.T) {
		f := setup(t)
		rr := post(t, f.handler, "/api/check-phone", ``)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Phone number is required", decodeCheck(t, rr).Error)
	})

	t.Run("invalid json", func(t *testing.T) {
		f := setup(t)
		rr := post(t, f.handler, "/api/check-phone", `{"phone":`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid JSON", decodeCheck(t, rr).Error)
	})

	t.Run("available", func(t *testing.T) {
		f := setup(t)
		rr := post(t, f.handler, "/api/check-phone", `{"phone":"+12025550123"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		res := decodeCheck(t, rr)
		assert.True(t, res.Success)
		require.NotNil(t, res.Available)
		assert.True(t, *res.Available)
		assert.Equal(t, 1, f.dir.calls)
	})

	t.Run("already registered", func(t *testing.T) {
		f := setup(t)
		f.dir.users["+12025550123"] = []models.User{{ID: "u1"}}
		rr := post(t, f.handler, "/api/check-phone", `{"phone":"+12025550123"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"success":false,"available":false,"error":"Phone number is already registered"}`, rr.Body.String())
	})

	t.Run("directory error", func(t *testing.T) {
		f := setup(t)
		f.dir.err = errors.New("Invalid API key")
		rr := post(t, f.handler, "/api/check-phone", `{"phone":"+12025550123"}`)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		res := decodeCheck(t, rr)
		assert.False(t, res.Success)
		assert.Nil(t, res.Available)
		assert.Equal(t, "Invalid API key", res.Error)
	})

	t.Run("directory panic", func(t *testing.T) {
		f := setup(t)
		f.dir.panic = "nil map"
		rr := post(t, f.handler, "/api/check-phone", `{"phone":"+12025550123"}`)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		res := decodeCheck(t, rr)
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "nil map")
	})
}

func TestCheckPhoneWithSQLiteDirectory(t *testing.T) {
	dir, err := store.NewSQLiteDirectory(filepath.Join(t.TempDir(), "dir.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dir.Close() })
	_, err = dir.AddUser(context.Background(), models.User{Phone: "12025550123"})
	require.NoError(t, err)

	mgr := manager.NewWorkManager(manager.WithCallTimeout(time.Second))
	t.Cleanup(mgr.Close)
	h := api.CheckPhoneHandler(dir, mgr)

	rr := post(t, h, "/api/check-phone", `{"phone":"+12025550123"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = post(t, h, "/api/check-phone", `{"phone":"+12025550199"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSendOTP(t *testing.T) {
	t.Run("missing phone", func(t *testing.T) {
		f := setup(t)
		rr := post(t, f.handler, "/api/send-otp", `{"phone":"  "}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"success":false,"error":"Phone number is required"}`, rr.Body.String())
		assert.Empty(t, f.sms.sent)
	})

	t.Run("sent", func(t *testing.T) {
		f := setup(t)
		rr := post(t, f.handler, "/api/send-otp", `{"phone":"+12025550123"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"success":true,"status":"pending"}`, rr.Body.String())
		assert.Equal(t, []string{"+12025550123/sms"}, f.sms.sent)
	})

	t.Run("provider error", func(t *testing.T) {
		f := setup(t)
		f.sms.err = errors.New("Invalid parameter: To")
		rr := post(t, f.handler, "/api/send-otp", `{"phone":"+12025550123"}`)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"success":false,"error":"Error sending OTP: Invalid parameter: To"}`, rr.Body.String())
	})

	t.Run("provider panic does not take the server down", func(t *testing.T) {
		f := setup(t)
		f.sms.panic = "connection reset"
		rr := post(t, f.handler, "/api/send-otp", `{"phone":"+12025550123"}`)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		res := decodeOTP(t, rr)
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "connection reset")

		f.sms.panic = ""
		rr = post(t, f.handler, "/api/send-otp", `{"phone":"+12025550123"}`)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("no dedup between calls", func(t *testing.T) {
		f := setup(t)
		post(t, f.handler, "/api/send-otp", `{"phone":"+12025550123"}`)
		post(t, f.handler, "/api/send-otp", `{"phone":"+12025550123"}`)

		assert.Len(t, f.sms.sent, 2)
	})

	t.Run("pools closed", func(t *testing.T) {
		f := setup(t)
		f.mgr.Close()
		rr := post(t, f.handler, "/api/send-otp", `{"phone":"+12025550123"}`)

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.False(t, decodeOTP(t, rr).Success)
	})

	t.Run("oversized body", func(t *testing.T) {
		f := setup(t)
		big := `{"phone":"` + strings.Repeat("1", 2<<10) + `"}`
		rr := post(t, f.handler, "/api/send-otp", big)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, f.sms.sent)
	})
}

func TestVerifyOTP(t *testing.T) {
	f := setup(t)
	f.sms.codes["+12025550123"] = "123456"

	rr := post(t, f.handler, "/api/verify-otp", `{"phone":"+12025550123","code":"123456"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"status":"approved","valid":true}`, rr.Body.String())

	rr = post(t, f.handler, "/api/verify-otp", `{"phone":"+12025550123","code":"000000"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"status":"pending","valid":false}`, rr.Body.String())

	rr = post(t, f.handler, "/api/verify-otp", `{"code":"123456"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Phone number is required", decodeOTP(t, rr).Error)

	rr = post(t, f.handler, "/api/verify-otp", `{"phone":"+12025550123"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Verification code is required", decodeOTP(t, rr).Error)

	f.sms.err = errors.New("Max check attempts reached")
	rr = post(t, f.handler, "/api/verify-otp", `{"phone":"+12025550123","code":"123456"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Error verifying OTP: Max check attempts reached", decodeOTP(t, rr).Error)
}

func TestRootAndHealth(t *testing.T) {
	f := setup(t)

	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "OTP relay server is running!", rr.Body.String())

	rr = httptest.NewRecorder()
	f.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestRequestLogLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logging.GetLogger()
	logging.SetLogger(zap.New(core))
	t.Cleanup(func() { logging.SetLogger(prev) })

	f := setup(t)
	f.sms.err = errors.New("Invalid parameter: To")

	f.handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	f.handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	post(t, f.handler, "/api/check-phone", `{}`)
	post(t, f.handler, "/api/send-otp", `{"phone":"+12025550123"}`)

	var levels []zapcore.Level
	for _, e := range logs.FilterMessage("http request").All() {
		levels = append(levels, e.Level)
	}
	assert.Equal(t, []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}, levels)
}

func TestLocales(t *testing.T) {
	f := setup(t)

	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/locales/ar/translation.json", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var msgs map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &msgs))
	assert.NotEmpty(t, msgs["login"])

	for _, path := range []string{"/locales/fr/translation.json", "/locales/en/missing.json", "/locales/en/translation"} {
		rr = httptest.NewRecorder()
		f.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rr.Code, path)
	}
}

func TestCORS(t *testing.T) {
	f := setup(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/send-otp", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodPost, "/api/send-otp", bytes.NewReader([]byte(`{"phone":"+12025550123"}`)))
	req.Header.Set("Origin", "http://evil.test")
	rr = httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}
