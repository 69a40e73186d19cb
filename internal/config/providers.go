package config

// fallbackSupabaseURL is the project URL the frontend shipped with when no
// environment override is present.
const fallbackSupabaseURL = "https://vgtfaprvrhkhmnstdclq.supabase.co"

// SupabaseURL is the base URL of the authentication provider.
func SupabaseURL() string {
	return FirstEnv(fallbackSupabaseURL, "SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL")
}

// SupabaseAnonKey is the public key used by the anonymous client.
func SupabaseAnonKey() string {
	return FirstEnv("", "SUPABASE_ANON_KEY", "NEXT_PUBLIC_SUPABASE_ANON_KEY")
}

// SupabaseServiceKey is the elevated key used for admin directory lookups.
func SupabaseServiceKey() string {
	return MustGetEnv("SUPABASE_SERVICE_KEY")
}

func TwilioAccountSID() string {
	return MustGetEnv("TWILIO_ACCOUNT_SID")
}

func TwilioAuthToken() string {
	return MustGetEnv("TWILIO_AUTH_TOKEN")
}

func TwilioVerifyServiceSID() string {
	return MustGetEnv("TWILIO_VERIFY_SERVICE_SID")
}

// TwilioBaseURL allows pointing the SMS client at a mock.
func TwilioBaseURL() string {
	return GetEnv("TWILIO_BASE_URL", "https://verify.twilio.com")
}

// DirectoryDriver selects the user directory backend: "supabase" or "sqlite".
func DirectoryDriver() string {
	return GetEnv("DIRECTORY_DRIVER", "supabase")
}

func DirectorySQLitePath() string {
	return GetEnv("DIRECTORY_SQLITE_PATH", "otprelay.db")
}
