package core

// User-facing copy
const (
	MsgInvalidInput      = "Please check your input"
	MsgUnknownError      = "Unknown error"
	MsgUnexpectedFormat  = "Unexpected response format"
	MsgTryAgainLater     = "Something went wrong, please try again later"
	MsgDataNotFound      = "Data not found"
	MsgLoadFailed        = "Failed to load data"
	MsgLoginFailed       = "Login failed, please try again"
	MsgRegisterFailed    = "Registration failed, please try again"
	MsgRegistered        = "Registration succeeded, please verify your email"
	MsgResetMailFailed   = "Failed to send email, please try again"
	MsgResetMailSent     = "Email sent, check your inbox or spam folder."
	MsgResetFailed       = "Failed to reset password, please try again"
	MsgResetDone         = "Password reset succeeded, please log in"
	MsgResetTokenInvalid = "Invalid token"
	MsgSyncStarted       = "Schedule synchronization started"
	MsgSyncFailed        = "An error occurred while starting synchronization"
	MsgSessionExpired    = "Your session has expired, please log in again"
)

// Upstream error code tables per form
var (
	LoginMessages = map[string]string{
		"INVALID_EMAIL":  "Invalid email format",
		"NOT_FOUND":      "User not found",
		"INVALID_DOMAIN": "Email domain must be uad.ac.id",
		"NOT_VERIFIED":   "Email has not been verified",
		"INVALID":        "Wrong email or password",
	}

	RegisterMessages = map[string]string{
		"INVALID_EMAIL":     "Invalid email format",
		"EMAIL_EXISTS":      "Email is already registered",
		"INVALID_DOMAIN":    "Email domain must be uad.ac.id",
		"PASSWORD_MISMATCH": "Passwords do not match",
		"ALREADY_EXISTS":    "Email is already registered",
	}

	ForgotMessages = map[string]string{
		"INVALID_EMAIL": "Invalid email format",
		"NOT_FOUND":     "User not found",
	}

	ResetMessages = map[string]string{
		"PASSWORD_MISMATCH": "Passwords do not match",
		"INVALID":           "Invalid token",
		"NOT_FOUND":         "User not found",
		"REQUIRED":          "Token must not be empty",
	}

	SyncMessages = map[string]string{
		"NOT_FOUND":    "User not found",
		"NOT_VERIFIED": "Please reset your password to match your portal account",
	}
)
