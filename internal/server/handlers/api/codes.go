package api

const (
	// Generic request/server errors
	CodeInvalidRequest = "E_INVALID_REQUEST" // bad or invalid request
	CodeRateLimited    = "E_RATE_LIMITED"    // rate limit exceeded
	CodeInternalError  = "E_INTERNAL_ERROR"  // internal server error
	CodeAccessDenied   = "E_ACCESS_DENIED"   // path escapes the served root

	// Auth errors
	CodeUnauthorized       = "E_UNAUTHORIZED"        // missing or invalid session
	CodeInvalidCredentials = "E_INVALID_CREDENTIALS" // login with wrong username/password

	// Entry errors
	CodeEntryNotFound       = "E_ENTRY_NOT_FOUND"       // the target entry does not exist
	CodePermissionSetFailed = "E_PERMISSION_SET_FAILED" // chmod-level failure toggling a flag
)
