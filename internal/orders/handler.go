package orders

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stockpilot/stockpilot/internal/auth"
	"github.com/stockpilot/stockpilot/internal/authz"
	"github.com/stockpilot/stockpilot/internal/backend"
	"github.com/stockpilot/stockpilot/internal/guard"
	"github.com/stockpilot/stockpilot/internal/shared"
	"github.com/stockpilot/stockpilot/internal/view"
)

// Handler serves the order list, order creation and CSV export.
type Handler struct {
	logger    *slog.Logger
	client    *backend.Client
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
	guard     guard.Middleware
	validator *validator.Validate
}

// NewHandler constructs the orders handler.
func NewHandler(logger *slog.Logger, client *backend.Client, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager, g guard.Middleware) *Handler {
	return &Handler{logger: logger, client: client, templates: templates, csrf: csrf, sessions: sessions, guard: g, validator: validator.New()}
}

// MountRoutes registers order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAuth())
		r.Get("/", h.showOrders)
		r.Get("/export", h.handleExport)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(authz.CanAddEditStock))
		r.Get("/new", h.showCreateForm)
		r.Post("/new", h.handleCreate)
	})
}

type ordersPageData struct {
	Orders    []backend.Order
	CanCreate bool
	LoadFail  bool
}

func (h *Handler) showOrders(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	p := sess.Principal()
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)

	data := ordersPageData{CanCreate: guard.ForPermission(authz.CanAddEditStock).Allows(p)}
	orders, err := h.client.Orders(r.Context(), sess.Token())
	if err != nil {
		if auth.HandleBackendError(w, r, h.logger, h.sessions, err) {
			return
		}
		h.logger.Error("load orders", slog.Any("error", err))
		data.LoadFail = true
	} else {
		data.Orders = orders
	}

	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{Title: "Orders", CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Principal: p, Data: data}
	if err := h.templates.Render(w, "pages/orders.html", viewData); err != nil {
		h.logger.Error("render orders", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	csv, err := h.client.ExportOrders(r.Context(), sess.Token())
	if err != nil {
		if auth.HandleBackendError(w, r, h.logger, h.sessions, err) {
			return
		}
		h.logger.Error("export orders", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	filename := "orders-" + time.Now().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(csv)
}

type orderForm struct {
	ProductID       int64   `validate:"required,gt=0"`
	Quantity        int64   `validate:"required,gt=0"`
	SellingPrice    float64 `validate:"gte=0"`
	CustomerName    string  `validate:"required,min=2"`
	CustomerAddress string  `validate:"max=500"`
	CustomerPhone   string  `validate:"max=32"`
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderCreate(w, r, orderForm{}, map[string]string{}, http.StatusOK)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	form, errors := parseOrderForm(r)
	if len(errors) == 0 {
		if err := h.validator.Struct(form); err != nil {
			for _, fieldErr := range err.(validator.ValidationErrors) {
				errors[fieldErr.Field()] = fieldErr.Error()
			}
		}
	}
	if len(errors) == 0 {
		err := h.client.CreateOrder(r.Context(), sess.Token(), backend.CreateOrderInput{
			ProductID:       form.ProductID,
			Quantity:        form.Quantity,
			SellingPrice:    form.SellingPrice,
			CustomerName:    form.CustomerName,
			CustomerAddress: form.CustomerAddress,
			CustomerPhone:   form.CustomerPhone,
		})
		if err != nil {
			if auth.HandleBackendError(w, r, h.logger, h.sessions, err) {
				return
			}
			h.logger.Error("create order failed", slog.Any("error", err))
			errors["general"] = shared.UserSafeMessage(err)
		} else {
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Order created"})
			http.Redirect(w, r, "/orders", http.StatusSeeOther)
			return
		}
	}
	h.renderCreate(w, r, form, errors, http.StatusBadRequest)
}

func (h *Handler) renderCreate(w http.ResponseWriter, r *http.Request, form orderForm, errors map[string]string, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)

	products, err := h.client.ProductDetails(r.Context(), sess.Token())
	if err != nil {
		if auth.HandleBackendError(w, r, h.logger, h.sessions, err) {
			return
		}
		h.logger.Error("load product picker", slog.Any("error", err))
	}

	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "New order",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Principal:   sess.Principal(),
		Data:        map[string]any{"Form": form, "Errors": errors, "Products": products},
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, "pages/order_form.html", viewData); err != nil {
		h.logger.Error("render order form", slog.Any("error", err))
	}
}

func parseOrderForm(r *http.Request) (orderForm, map[string]string) {
	errors := make(map[string]string)
	form := orderForm{
		CustomerName:    r.PostFormValue("customer_name"),
		CustomerAddress: r.PostFormValue("customer_address"),
		CustomerPhone:   r.PostFormValue("customer_phone"),
	}
	if id, err := strconv.ParseInt(r.PostFormValue("product_id"), 10, 64); err == nil {
		form.ProductID = id
	} else {
		errors["product_id"] = "Pick a product"
	}
	if qty, err := strconv.ParseInt(r.PostFormValue("quantity"), 10, 64); err == nil {
		form.Quantity = qty
	} else {
		errors["quantity"] = "Quantity is not valid"
	}
	if priceStr := r.PostFormValue("selling_price"); priceStr != "" {
		if price, err := strconv.ParseFloat(priceStr, 64); err == nil {
			form.SellingPrice = price
		} else {
			errors["selling_price"] = "Selling price is not valid"
		}
	}
	return form, errors
}
