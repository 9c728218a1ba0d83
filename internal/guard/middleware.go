package guard

import (
	"log/slog"
	"net/http"

	"github.com/stockpilot/stockpilot/internal/authz"
	"github.com/stockpilot/stockpilot/internal/shared"
	"github.com/stockpilot/stockpilot/internal/view"
)

// LoginPath is where anonymous visitors are sent.
const LoginPath = "/auth/login"

// Middleware gates whole routes behind the session's principal. The
// checks are synchronous reads of already-loaded session state; the
// only side effect is the redirect for anonymous visitors.
type Middleware struct {
	Logger    *slog.Logger
	Templates *view.Engine
}

// Protect enforces a rule for every request in the subtree. Order of
// failure: no principal redirects to login, an authenticated principal
// failing the rule gets the access-denied page. A signed-in user is
// told they lack rights rather than silently bounced.
func (m Middleware) Protect(rule authz.Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := shared.PrincipalFromContext(r.Context())
			switch authz.Authorize(p, rule) {
			case authz.DecisionAllow:
				next.ServeHTTP(w, r)
			case authz.DecisionUnauthenticated:
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			default:
				m.renderDenied(w, r, p)
			}
		})
	}
}

// RequireAuth admits any authenticated principal.
func (m Middleware) RequireAuth() func(http.Handler) http.Handler {
	return m.Protect(authz.Rule{})
}

// RequireRoles admits only the listed roles.
func (m Middleware) RequireRoles(roles ...authz.Role) func(http.Handler) http.Handler {
	return m.Protect(authz.Rule{AllowedRoles: roles})
}

// RequirePermission admits principals passing the capability predicate.
func (m Middleware) RequirePermission(pred func(*authz.Principal) bool) func(http.Handler) http.Handler {
	return m.Protect(authz.Rule{Permission: pred})
}

func (m Middleware) renderDenied(w http.ResponseWriter, r *http.Request, p *authz.Principal) {
	w.WriteHeader(http.StatusForbidden)
	if m.Templates == nil {
		_, _ = w.Write([]byte("Access denied"))
		return
	}
	data := view.TemplateData{
		Title:       "Access denied",
		CurrentPath: r.URL.Path,
		Principal:   p,
	}
	if err := m.Templates.Render(w, "pages/denied.html", data); err != nil && m.Logger != nil {
		m.Logger.Error("render denied", slog.Any("error", err))
	}
}
