package models

// PhoneRequest is the body of check-phone and send-otp.
type PhoneRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// VerifyOTPRequest is the body of verify-otp.
type VerifyOTPRequest struct {
	Phone string `json:"phone" validate:"required"`
	Code  string `json:"code" validate:"required"`
}
