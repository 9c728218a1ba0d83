package products

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/stockpilot/stockpilot/internal/auth"
	"github.com/stockpilot/stockpilot/internal/authz"
	"github.com/stockpilot/stockpilot/internal/backend"
	"github.com/stockpilot/stockpilot/internal/guard"
	"github.com/stockpilot/stockpilot/internal/shared"
	"github.com/stockpilot/stockpilot/internal/view"
)

// Handler serves the stock dashboard and the add/sell forms.
type Handler struct {
	logger    *slog.Logger
	client    *backend.Client
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
	guard     guard.Middleware
}

// NewHandler constructs the products handler.
func NewHandler(logger *slog.Logger, client *backend.Client, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager, g guard.Middleware) *Handler {
	return &Handler{logger: logger, client: client, templates: templates, csrf: csrf, sessions: sessions, guard: g}
}

// MountRoutes registers dashboard and stock routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAuth())
		r.Get("/", h.showDashboard)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(authz.CanAddEditStock))
		r.Get("/stock/add", h.showAddForm)
		r.Post("/stock/add", h.handleAdd)
		r.Get("/stock/sell", h.showSellForm)
		r.Post("/stock/sell", h.handleSell)
	})
}

type dashboardPageData struct {
	Summary  *backend.Summary
	Products []backend.ProductDetail
	CanEdit  bool
	LoadFail bool
}

func (h *Handler) showDashboard(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	p := sess.Principal()
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)

	data := dashboardPageData{
		CanEdit: guard.ForPermission(authz.CanAddEditStock).Allows(p),
	}

	// Summary and picker list come from two endpoints; fetch them
	// together.
	var summary *backend.Summary
	var details []backend.ProductDetail
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		summary, err = h.client.SummaryEnhanced(ctx, sess.Token())
		return err
	})
	g.Go(func() error {
		var err error
		details, err = h.client.ProductDetails(ctx, sess.Token())
		return err
	})
	if err := g.Wait(); err != nil {
		if auth.HandleBackendError(w, r, h.logger, h.sessions, err) {
			return
		}
		h.logger.Error("load dashboard", slog.Any("error", err))
		data.LoadFail = true
	} else {
		data.Summary = summary
		data.Products = details
	}

	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{Title: "Stock overview", CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Principal: p, Data: data}
	if err := h.templates.Render(w, "pages/dashboard.html", viewData); err != nil {
		h.logger.Error("render dashboard", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

type addStockForm struct {
	ProductName   string
	Quantity      int64
	PurchasePrice float64
}

type sellStockForm struct {
	ProductID    int64
	Quantity     int64
	SellingPrice float64
}

func (h *Handler) showAddForm(w http.ResponseWriter, r *http.Request) {
	h.renderAdd(w, r, addStockForm{}, map[string]string{}, http.StatusOK)
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	form, errors := parseAddForm(r)
	if len(errors) == 0 {
		err := h.client.AddStock(r.Context(), sess.Token(), backend.AddStockInput{
			ProductName:   form.ProductName,
			Quantity:      form.Quantity,
			PurchasePrice: form.PurchasePrice,
		})
		if err != nil {
			if auth.HandleBackendError(w, r, h.logger, h.sessions, err) {
				return
			}
			h.logger.Error("add stock failed", slog.Any("error", err))
			errors["general"] = shared.UserSafeMessage(err)
		} else {
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Stock added"})
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
	}
	h.renderAdd(w, r, form, errors, http.StatusBadRequest)
}

func (h *Handler) showSellForm(w http.ResponseWriter, r *http.Request) {
	h.renderSell(w, r, sellStockForm{}, map[string]string{}, http.StatusOK)
}

func (h *Handler) handleSell(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	form, errors := parseSellForm(r)
	if len(errors) == 0 {
		err := h.client.SellStock(r.Context(), sess.Token(), backend.SellStockInput{
			ProductID:    form.ProductID,
			Quantity:     form.Quantity,
			SellingPrice: form.SellingPrice,
		})
		if err != nil {
			if auth.HandleBackendError(w, r, h.logger, h.sessions, err) {
				return
			}
			h.logger.Error("sell stock failed", slog.Any("error", err))
			errors["general"] = shared.UserSafeMessage(err)
		} else {
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Sale recorded"})
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
	}
	h.renderSell(w, r, form, errors, http.StatusBadRequest)
}

func (h *Handler) renderAdd(w http.ResponseWriter, r *http.Request, form addStockForm, errors map[string]string, status int) {
	h.renderForm(w, r, "pages/stock_add.html", "Add stock", map[string]any{"Form": form, "Errors": errors}, status)
}

func (h *Handler) renderSell(w http.ResponseWriter, r *http.Request, form sellStockForm, errors map[string]string, status int) {
	sess := shared.SessionFromContext(r.Context())
	products, err := h.client.ProductDetails(r.Context(), sess.Token())
	if err != nil {
		if auth.HandleBackendError(w, r, h.logger, h.sessions, err) {
			return
		}
		h.logger.Error("load product picker", slog.Any("error", err))
	}
	h.renderForm(w, r, "pages/stock_sell.html", "Sell stock", map[string]any{"Form": form, "Errors": errors, "Products": products}, status)
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, page, title string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Principal:   sess.Principal(),
		Data:        data,
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, page, viewData); err != nil {
		h.logger.Error("render stock form", slog.Any("error", err))
	}
}

func parseAddForm(r *http.Request) (addStockForm, map[string]string) {
	errors := make(map[string]string)
	form := addStockForm{ProductName: r.PostFormValue("product_name")}
	if form.ProductName == "" {
		errors["product_name"] = "Product name is required"
	}
	if qty, err := strconv.ParseInt(r.PostFormValue("quantity"), 10, 64); err == nil && qty > 0 {
		form.Quantity = qty
	} else {
		errors["quantity"] = "Quantity must be a positive number"
	}
	if price, err := strconv.ParseFloat(r.PostFormValue("purchase_price"), 64); err == nil && price >= 0 {
		form.PurchasePrice = price
	} else {
		errors["purchase_price"] = "Purchase price is not valid"
	}
	return form, errors
}

func parseSellForm(r *http.Request) (sellStockForm, map[string]string) {
	errors := make(map[string]string)
	form := sellStockForm{}
	if id, err := strconv.ParseInt(r.PostFormValue("product_id"), 10, 64); err == nil {
		form.ProductID = id
	} else {
		errors["product_id"] = "Pick a product"
	}
	if qty, err := strconv.ParseInt(r.PostFormValue("quantity"), 10, 64); err == nil && qty > 0 {
		form.Quantity = qty
	} else {
		errors["quantity"] = "Quantity must be a positive number"
	}
	if price, err := strconv.ParseFloat(r.PostFormValue("selling_price"), 64); err == nil && price >= 0 {
		form.SellingPrice = price
	} else {
		errors["selling_price"] = "Selling price is not valid"
	}
	return form, errors
}
