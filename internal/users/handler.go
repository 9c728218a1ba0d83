package users

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stockpilot/stockpilot/internal/auth"
	"github.com/stockpilot/stockpilot/internal/authz"
	"github.com/stockpilot/stockpilot/internal/backend"
	"github.com/stockpilot/stockpilot/internal/guard"
	"github.com/stockpilot/stockpilot/internal/shared"
	"github.com/stockpilot/stockpilot/internal/view"
)

// Handler serves the user administration pages. The whole subtree is
// limited to admins and superadmins; per-action rules (role ceiling,
// delete targets) are re-checked against the predicate layer before
// any backend call, not just hidden in the form markup.
type Handler struct {
	logger    *slog.Logger
	client    *backend.Client
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
	guard     guard.Middleware
	validator *validator.Validate
}

// NewHandler constructs the users handler.
func NewHandler(logger *slog.Logger, client *backend.Client, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager, g guard.Middleware) *Handler {
	return &Handler{logger: logger, client: client, templates: templates, csrf: csrf, sessions: sessions, guard: g, validator: validator.New()}
}

// MountRoutes registers user administration routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRoles(authz.RoleSuperadmin, authz.RoleAdmin))
		r.Get("/", h.showUsers)
		r.Post("/", h.handleCreate)
		r.Post("/{userID}/delete", h.handleDelete)
	})
}

type createUserForm struct {
	Username string `validate:"required,min=3,max=64"`
	Password string `validate:"required,min=6"`
	Role     string `validate:"required"`
}

type usersPageData struct {
	Users           []backend.UserRecord
	Form            createUserForm
	Errors          map[string]string
	AssignableRoles []authz.Role
	LoadFail        bool
}

func (h *Handler) showUsers(w http.ResponseWriter, r *http.Request) {
	h.renderUsers(w, r, createUserForm{Role: authz.RoleViewer.String()}, map[string]string{}, http.StatusOK)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	p := sess.Principal()

	form := createUserForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
		Role:     r.PostFormValue("role"),
	}
	errors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			errors[fieldErr.Field()] = fieldErr.Error()
		}
	}

	// The dropdown already omits roles above the actor's ceiling, but
	// a crafted submission must fail here too.
	target := authz.ParseRole(form.Role)
	if len(errors) == 0 {
		if !authz.CanCreateUsers(p) {
			errors["general"] = shared.UserSafeMessage(shared.ErrRoleCeiling)
		} else if !authz.CanAssignRole(p, target) {
			h.logger.Warn("role ceiling rejected submission",
				slog.String("actor", p.Username),
				slog.String("requested_role", form.Role))
			errors["Role"] = shared.UserSafeMessage(shared.ErrRoleCeiling)
		}
	}

	if len(errors) == 0 {
		err := h.client.RegisterUser(r.Context(), sess.Token(), backend.RegisterUserInput{
			Username: form.Username,
			Password: form.Password,
			Role:     target.String(),
		})
		if err != nil {
			if auth.HandleBackendError(w, r, h.logger, h.sessions, err) {
				return
			}
			h.logger.Error("register user failed", slog.Any("error", err))
			errors["general"] = shared.UserSafeMessage(err)
		} else {
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "User " + form.Username + " created"})
			http.Redirect(w, r, "/users", http.StatusSeeOther)
			return
		}
	}

	form.Password = ""
	h.renderUsers(w, r, form, errors, http.StatusBadRequest)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	p := sess.Principal()

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if userID == p.ID {
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "You cannot delete your own account"})
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}

	// The target's role decides whether the actor may delete it, so
	// look the account up first.
	users, err := h.client.Users(r.Context(), sess.Token())
	if err != nil {
		if auth.HandleBackendError(w, r, h.logger, h.sessions, err) {
			return
		}
		h.logger.Error("load users for delete", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	var target *backend.UserRecord
	for i := range users {
		if users[i].ID == userID {
			target = &users[i]
			break
		}
	}
	if target == nil {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	if !authz.CanDeleteUser(p, authz.ParseRole(target.Role)) {
		h.logger.Warn("delete user denied",
			slog.String("actor", p.Username),
			slog.String("target_role", target.Role))
		h.renderDenied(w, r)
		return
	}

	if err := h.client.DeleteUser(r.Context(), sess.Token(), userID); err != nil {
		if auth.HandleBackendError(w, r, h.logger, h.sessions, err) {
			return
		}
		h.logger.Error("delete user failed", slog.Any("error", err))
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: shared.UserSafeMessage(err)})
	} else {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "User " + target.Username + " deleted"})
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (h *Handler) renderUsers(w http.ResponseWriter, r *http.Request, form createUserForm, errors map[string]string, status int) {
	sess := shared.SessionFromContext(r.Context())
	p := sess.Principal()
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)

	data := usersPageData{
		Form:            form,
		Errors:          errors,
		AssignableRoles: assignableRoles(p),
	}
	users, err := h.client.Users(r.Context(), sess.Token())
	if err != nil {
		if auth.HandleBackendError(w, r, h.logger, h.sessions, err) {
			return
		}
		h.logger.Error("load users", slog.Any("error", err))
		data.LoadFail = true
	} else {
		data.Users = users
	}

	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{Title: "Users", CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Principal: p, Data: data}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, "pages/users.html", viewData); err != nil {
		h.logger.Error("render users", slog.Any("error", err))
	}
}

func (h *Handler) renderDenied(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	w.WriteHeader(http.StatusForbidden)
	viewData := view.TemplateData{Title: "Access denied", CurrentPath: r.URL.Path, Principal: sess.Principal()}
	if err := h.templates.Render(w, "pages/denied.html", viewData); err != nil {
		h.logger.Error("render denied", slog.Any("error", err))
	}
}

// assignableRoles lists the roles the actor may hand out, driving the
// form's dropdown options.
func assignableRoles(p *authz.Principal) []authz.Role {
	var out []authz.Role
	for _, role := range authz.Roles() {
		if authz.CanAssignRole(p, role) {
			out = append(out, role)
		}
	}
	return out
}
