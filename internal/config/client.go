package config

// RelayBaseURL is where the form controllers reach the relay.
func RelayBaseURL() string {
	return GetEnv("RELAY_BASE_URL", "http://localhost:3002")
}

// AppOrigin is the public origin of the web app, used to build redirect targets.
func AppOrigin() string {
	return GetEnv("APP_ORIGIN", "http://localhost:3000")
}

// VerifyOTPCodes makes the phone flows check the entered code with the relay
// before mutating the account. Off by default.
func VerifyOTPCodes() bool {
	return GetBool("OTP_VERIFY_CODES", false)
}

// DefaultLanguage is used when no preference is stored.
func DefaultLanguage() string {
	return GetEnv("DEFAULT_LANGUAGE", "en")
}

// AuthformLogFile is where the terminal client writes its logs.
func AuthformLogFile() string {
	return GetEnv("AUTHFORM_LOG_FILE", "authform.log")
}

// AuthformConfigDir holds the terminal client's saved preferences. Empty
// means the user config directory.
func AuthformConfigDir() string {
	return GetEnv("AUTHFORM_CONFIG_DIR", "")
}
