package profile

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stockpilot/stockpilot/internal/auth"
	"github.com/stockpilot/stockpilot/internal/backend"
	"github.com/stockpilot/stockpilot/internal/guard"
	"github.com/stockpilot/stockpilot/internal/shared"
	"github.com/stockpilot/stockpilot/internal/view"
)

// Handler serves the caller's own profile page. The ownership rule is
// trivial here: the page only ever shows and edits the session's own
// account via the backend's /user/me endpoints.
type Handler struct {
	logger    *slog.Logger
	client    *backend.Client
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
	guard     guard.Middleware
	validator *validator.Validate
}

// NewHandler constructs the profile handler.
func NewHandler(logger *slog.Logger, client *backend.Client, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager, g guard.Middleware) *Handler {
	return &Handler{logger: logger, client: client, templates: templates, csrf: csrf, sessions: sessions, guard: g, validator: validator.New()}
}

// MountRoutes registers profile routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAuth())
		r.Get("/", h.showProfile)
		r.Post("/", h.handleUpdate)
	})
}

type profileForm struct {
	Username string `validate:"required,min=3,max=64"`
	Password string `validate:"omitempty,min=6"`
}

func (h *Handler) showProfile(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	me, err := h.client.Me(r.Context(), sess.Token())
	if err != nil {
		if auth.HandleBackendError(w, r, h.logger, h.sessions, err) {
			return
		}
		h.logger.Error("load profile", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	h.renderProfile(w, r, me, profileForm{Username: me.Username}, map[string]string{}, http.StatusOK)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	form := profileForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	errors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			errors[fieldErr.Field()] = fieldErr.Error()
		}
	}

	if len(errors) == 0 {
		err := h.client.UpdateProfile(r.Context(), sess.Token(), backend.UpdateProfileInput{
			Username: form.Username,
			Password: form.Password,
		})
		if err != nil {
			if auth.HandleBackendError(w, r, h.logger, h.sessions, err) {
				return
			}
			h.logger.Error("update profile failed", slog.Any("error", err))
			errors["general"] = shared.UserSafeMessage(err)
		} else {
			// Username may have changed; refresh the stored identity.
			if me, err := h.client.Me(r.Context(), sess.Token()); err == nil {
				p := sess.Principal()
				if p != nil {
					p.Username = me.Username
					sess.SetIdentity(sess.Token(), *p)
				}
			}
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Profile updated"})
			http.Redirect(w, r, "/profile", http.StatusSeeOther)
			return
		}
	}

	me, err := h.client.Me(r.Context(), sess.Token())
	if err != nil {
		if auth.HandleBackendError(w, r, h.logger, h.sessions, err) {
			return
		}
		h.logger.Error("reload profile", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	form.Password = ""
	h.renderProfile(w, r, me, form, errors, http.StatusBadRequest)
}

func (h *Handler) renderProfile(w http.ResponseWriter, r *http.Request, me *backend.UserRecord, form profileForm, errors map[string]string, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Profile",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Principal:   sess.Principal(),
		Data:        map[string]any{"Me": me, "Form": form, "Errors": errors},
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, "pages/profile.html", viewData); err != nil {
		h.logger.Error("render profile", slog.Any("error", err))
	}
}
