package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Goofygiraffe06/otprelay/internal/logging"
	"github.com/Goofygiraffe06/otprelay/internal/models"
	"github.com/Goofygiraffe06/otprelay/internal/workerpool"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

const (
	msgInvalidJSON   = "Invalid JSON"
	msgPhoneRequired = "Phone number is required"
	msgCodeRequired  = "Verification code is required"
	msgServerBusy    = "Server busy, try again later"
)

func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.ErrorLog("JSON encoding failed: %v", err)
	}
}

func respondFailure(w http.ResponseWriter, code int, msg string) {
	respondJSON(w, code, models.FailureResponse{Success: false, Error: msg})
}

// decodeJSON reads a JSON body into dst. An empty body counts as {}.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// decodePhone decodes and validates a {phone} body, answering the request
// itself when it is unusable.
func decodePhone(w http.ResponseWriter, r *http.Request) (models.PhoneRequest, bool) {
	var req models.PhoneRequest
	if err := decodeJSON(r, &req); err != nil {
		respondFailure(w, http.StatusBadRequest, msgInvalidJSON)
		return req, false
	}
	req.Phone = strings.TrimSpace(req.Phone)
	if err := validate.Struct(req); err != nil {
		respondFailure(w, http.StatusBadRequest, msgPhoneRequired)
		return req, false
	}
	return req, true
}

// isOverload reports whether err means the worker pools refused the call.
func isOverload(err error) bool {
	return errors.Is(err, workerpool.ErrQueueFull) || errors.Is(err, workerpool.ErrPoolClosed)
}
