package models

type StatusResponse struct {
	Status string `json:"status"`
}

// CheckPhoneResponse reports whether a phone number is free to register.
// Success keeps its historical double meaning (request ok and phone free);
// Available is only set once the directory lookup completed, so a nil
// Available means the lookup itself failed.
type CheckPhoneResponse struct {
	Success   bool   `json:"success"`
	Available *bool  `json:"available,omitempty"`
	Error     string `json:"error,omitempty"`
}

// OTPResponse is returned by send-otp and verify-otp.
type OTPResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status,omitempty"`
	Valid   *bool  `json:"valid,omitempty"`
	Error   string `json:"error,omitempty"`
}

// FailureResponse is the generic {success:false,error} envelope.
type FailureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Bool returns a pointer to b, for the optional response flags.
func Bool(b bool) *bool { return &b }
