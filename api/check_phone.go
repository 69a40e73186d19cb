package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Goofygiraffe06/otprelay/internal/logging"
	"github.com/Goofygiraffe06/otprelay/internal/manager"
	"github.com/Goofygiraffe06/otprelay/internal/models"
	"github.com/Goofygiraffe06/otprelay/internal/utils"
)

// Directory finds registered users by phone number.
type Directory interface {
	ListUsersByPhone(ctx context.Context, phone string) ([]models.User, error)
}

const msgPhoneRegistered = "Phone number is already registered"

// CheckPhoneHandler reports whether a phone number is free to sign up with.
// Two concurrent checks for the same number may both see it as free; nothing
// is reserved between the check and the provider sign-up.
func CheckPhoneHandler(dir Directory, mgr *manager.WorkManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		req, ok := decodePhone(w, r)
		if !ok {
			logging.WarnLog("Check phone failed: invalid request")
			return
		}
		phoneHash := utils.HashIdentifier(req.Phone)

		var users []models.User
		err := mgr.Directory(r.Context(), func(ctx context.Context) error {
			var err error
			users, err = dir.ListUsersByPhone(ctx, req.Phone)
			return err
		})
		if err != nil {
			if isOverload(err) {
				logging.WarnLog("Check phone rejected: pools saturated [%s]", phoneHash)
				respondFailure(w, http.StatusServiceUnavailable, msgServerBusy)
				return
			}
			logging.ErrorLog("Check phone failed: directory error [%s]: %v", phoneHash, err)
			respondJSON(w, http.StatusInternalServerError, models.CheckPhoneResponse{Success: false, Error: err.Error()})
			return
		}

		if len(users) > 0 {
			logging.InfoLog("Check phone: already registered [%s] %v", phoneHash, time.Since(start))
			respondJSON(w, http.StatusBadRequest, models.CheckPhoneResponse{
				Success:   false,
				Available: models.Bool(false),
				Error:     msgPhoneRegistered,
			})
			return
		}

		logging.InfoLog("Check phone: available [%s] %v", phoneHash, time.Since(start))
		respondJSON(w, http.StatusOK, models.CheckPhoneResponse{Success: true, Available: models.Bool(true)})
	}
}
