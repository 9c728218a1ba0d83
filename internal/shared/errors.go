package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrBackendUnauthorized indicates the backend rejected the session
	// token. The session must be destroyed and the user sent to login.
	ErrBackendUnauthorized = errors.New("backend rejected credentials")
	// ErrBackendUnavailable indicates the backend could not be reached.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrRoleCeiling indicates an attempt to assign or remove a role
	// above the actor's ceiling.
	ErrRoleCeiling = errors.New("role exceeds permitted ceiling")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// UserSafeMessage maps internal errors onto text safe to show in a
// form's general error slot.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid username or password"
	case errors.Is(err, ErrRoleCeiling):
		return "You are not allowed to assign that role"
	case errors.Is(err, ErrNotFound):
		return "The requested record was not found"
	case errors.Is(err, ErrBackendUnavailable):
		return "The inventory service is unavailable, try again shortly"
	default:
		return "Something went wrong, please try again"
	}
}
