package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Goofygiraffe06/otprelay/internal/logging"
	"github.com/Goofygiraffe06/otprelay/internal/manager"
	"github.com/Goofygiraffe06/otprelay/internal/models"
	"github.com/Goofygiraffe06/otprelay/internal/sms"
	"github.com/Goofygiraffe06/otprelay/internal/utils"
)

// OTPSender starts an SMS verification.
type OTPSender interface {
	StartVerification(ctx context.Context, phone, channel string) (string, error)
}

// SendOTPHandler triggers OTP delivery. Every call reaches the provider:
// there is no dedup window and no rate limit.
func SendOTPHandler(sender OTPSender, mgr *manager.WorkManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		req, ok := decodePhone(w, r)
		if !ok {
			logging.WarnLog("Send OTP failed: invalid request")
			return
		}
		phoneHash := utils.HashIdentifier(req.Phone)

		var status string
		err := mgr.SMS(r.Context(), func(ctx context.Context) error {
			var err error
			status, err = sender.StartVerification(ctx, req.Phone, sms.ChannelSMS)
			return err
		})
		if err != nil {
			if isOverload(err) {
				logging.WarnLog("Send OTP rejected: pools saturated [%s]", phoneHash)
				respondFailure(w, http.StatusServiceUnavailable, msgServerBusy)
				return
			}
			logging.ErrorLog("Send OTP failed [%s]: %v", phoneHash, err)
			respondJSON(w, http.StatusInternalServerError, models.OTPResponse{
				Success: false,
				Error:   "Error sending OTP: " + err.Error(),
			})
			return
		}

		logging.InfoLog("Send OTP success [%s] status=%s %v", phoneHash, status, time.Since(start))
		respondJSON(w, http.StatusOK, models.OTPResponse{Success: true, Status: status})
	}
}
