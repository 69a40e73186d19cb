package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/Goofygiraffe06/otprelay/internal/logging"
	"github.com/Goofygiraffe06/otprelay/internal/manager"
	"github.com/Goofygiraffe06/otprelay/internal/models"
	"github.com/Goofygiraffe06/otprelay/internal/sms"
	"github.com/Goofygiraffe06/otprelay/internal/utils"
)

// OTPChecker checks a code the user received by SMS.
type OTPChecker interface {
	CheckVerification(ctx context.Context, phone, code string) (sms.Check, error)
}

// VerifyOTPHandler asks the SMS provider whether code is right for phone.
// A wrong code is a successful request with valid=false.
func VerifyOTPHandler(checker OTPChecker, mgr *manager.WorkManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.VerifyOTPRequest
		if err := decodeJSON(r, &req); err != nil {
			respondFailure(w, http.StatusBadRequest, msgInvalidJSON)
			return
		}
		req.Phone = strings.TrimSpace(req.Phone)
		req.Code = strings.TrimSpace(req.Code)
		if req.Phone == "" {
			respondFailure(w, http.StatusBadRequest, msgPhoneRequired)
			return
		}
		if err := validate.Struct(req); err != nil {
			respondFailure(w, http.StatusBadRequest, msgCodeRequired)
			return
		}
		phoneHash := utils.HashIdentifier(req.Phone)

		var check sms.Check
		err := mgr.SMS(r.Context(), func(ctx context.Context) error {
			var err error
			check, err = checker.CheckVerification(ctx, req.Phone, req.Code)
			return err
		})
		if err != nil {
			if isOverload(err) {
				respondFailure(w, http.StatusServiceUnavailable, msgServerBusy)
				return
			}
			logging.ErrorLog("Verify OTP failed [%s]: %v", phoneHash, err)
			respondJSON(w, http.StatusInternalServerError, models.OTPResponse{
				Success: false,
				Error:   "Error verifying OTP: " + err.Error(),
			})
			return
		}

		logging.InfoLog("Verify OTP [%s] status=%s valid=%v", phoneHash, check.Status, check.Valid)
		respondJSON(w, http.StatusOK, models.OTPResponse{Success: true, Status: check.Status, Valid: models.Bool(check.Valid)})
	}
}
