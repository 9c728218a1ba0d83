package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/stockpilot/stockpilot/internal/guard"
	"github.com/stockpilot/stockpilot/internal/shared"
)

// HandleBackendError reacts to a failed backend call. A 401 means the
// token is no longer honoured: the session is destroyed (a no-op if a
// parallel request already did it) and the user is redirected to
// login. Returns true when the error was terminal and the response is
// already written.
func HandleBackendError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, sessions *shared.SessionManager, err error) bool {
	if !errors.Is(err, shared.ErrBackendUnauthorized) {
		return false
	}
	if logger != nil {
		logger.Info("backend rejected session token, forcing logout", slog.String("path", r.URL.Path))
	}
	sessions.Destroy(shared.SessionFromContext(r.Context()))
	http.Redirect(w, r, guard.LoginPath, http.StatusSeeOther)
	return true
}
