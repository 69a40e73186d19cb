package api

import (
	"net/http"

	"github.com/Goofygiraffe06/otprelay/internal/models"
)

// RootHandler is the plain-text liveness check.
func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OTP relay server is running!"))
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.StatusResponse{Status: "ok"})
}
