package activity

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockpilot/stockpilot/internal/auth"
	"github.com/stockpilot/stockpilot/internal/authz"
	"github.com/stockpilot/stockpilot/internal/backend"
	"github.com/stockpilot/stockpilot/internal/guard"
	"github.com/stockpilot/stockpilot/internal/shared"
	"github.com/stockpilot/stockpilot/internal/view"
)

// Handler serves the activity log page. Admins and superadmins see
// every user's entries; everyone else is scoped to their own.
type Handler struct {
	logger    *slog.Logger
	client    *backend.Client
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
	guard     guard.Middleware
}

// NewHandler constructs the activity handler.
func NewHandler(logger *slog.Logger, client *backend.Client, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager, g guard.Middleware) *Handler {
	return &Handler{logger: logger, client: client, templates: templates, csrf: csrf, sessions: sessions, guard: g}
}

// MountRoutes registers activity routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(authz.CanViewOwnActivity))
		r.Get("/", h.showActivity)
	})
}

type activityPageData struct {
	Entries  []backend.ActivityEntry
	AllUsers bool
	LoadFail bool
}

func (h *Handler) showActivity(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	p := sess.Principal()
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)

	// Scope decides the query, not the response: viewers and editors
	// only ever request their own entries.
	scopeUserID := p.ID
	allUsers := authz.CanViewAllActivity(p)
	if allUsers {
		scopeUserID = 0
	}

	data := activityPageData{AllUsers: allUsers}
	entries, err := h.client.ActivityLogs(r.Context(), sess.Token(), scopeUserID)
	if err != nil {
		if auth.HandleBackendError(w, r, h.logger, h.sessions, err) {
			return
		}
		h.logger.Error("load activity logs", slog.Any("error", err))
		data.LoadFail = true
	} else {
		data.Entries = entries
	}

	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{Title: "Activity", CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Principal: p, Data: data}
	if err := h.templates.Render(w, "pages/activity.html", viewData); err != nil {
		h.logger.Error("render activity", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
