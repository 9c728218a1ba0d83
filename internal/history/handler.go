package history

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stockpilot/stockpilot/internal/auth"
	"github.com/stockpilot/stockpilot/internal/authz"
	"github.com/stockpilot/stockpilot/internal/backend"
	"github.com/stockpilot/stockpilot/internal/guard"
	"github.com/stockpilot/stockpilot/internal/shared"
	"github.com/stockpilot/stockpilot/internal/view"
)

// Handler serves the daily transaction history and record deletion.
type Handler struct {
	logger    *slog.Logger
	client    *backend.Client
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
	guard     guard.Middleware
}

// NewHandler constructs the history handler.
func NewHandler(logger *slog.Logger, client *backend.Client, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager, g guard.Middleware) *Handler {
	return &Handler{logger: logger, client: client, templates: templates, csrf: csrf, sessions: sessions, guard: g}
}

// MountRoutes registers history routes. Viewing is open to any
// authenticated user; deleting records is admin territory.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAuth())
		r.Get("/", h.showHistory)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(authz.CanDeleteTransaction))
		r.Post("/{txType}/{txID}/delete", h.handleDelete)
	})
}

type historyPageData struct {
	Entries   []backend.HistoryEntry
	Day       string
	CanDelete bool
	LoadFail  bool
}

func (h *Handler) showHistory(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	p := sess.Principal()
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)

	day := r.URL.Query().Get("date")
	if day != "" {
		if _, err := time.Parse("2006-01-02", day); err != nil {
			day = ""
		}
	}

	data := historyPageData{
		Day:       day,
		CanDelete: guard.ForPermission(authz.CanDeleteTransaction).Allows(p),
	}
	entries, err := h.client.DailyHistory(r.Context(), sess.Token(), day)
	if err != nil {
		if auth.HandleBackendError(w, r, h.logger, h.sessions, err) {
			return
		}
		h.logger.Error("load daily history", slog.Any("error", err))
		data.LoadFail = true
	} else {
		data.Entries = entries
	}

	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{Title: "Daily history", CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Principal: p, Data: data}
	if err := h.templates.Render(w, "pages/history.html", viewData); err != nil {
		h.logger.Error("render history", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())

	txType := chi.URLParam(r, "txType")
	if txType != "add" && txType != "sell" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	txID, err := strconv.ParseInt(chi.URLParam(r, "txID"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.client.DeleteHistory(r.Context(), sess.Token(), txType, txID); err != nil {
		if auth.HandleBackendError(w, r, h.logger, h.sessions, err) {
			return
		}
		h.logger.Error("delete history record", slog.Any("error", err))
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: shared.UserSafeMessage(err)})
	} else {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Transaction record deleted"})
	}
	http.Redirect(w, r, "/history", http.StatusSeeOther)
}
