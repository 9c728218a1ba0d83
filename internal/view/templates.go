package view

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/stockpilot/stockpilot/internal/authz"
	"github.com/stockpilot/stockpilot/internal/shared"
	"github.com/stockpilot/stockpilot/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	Principal   *authz.Principal
	Data        any
}

// NewEngine parses templates at build-time. Capability predicates are
// exposed as template funcs so nav links and row actions branch on
// the same decision table the guards use.
func NewEngine() (*Engine, error) {
	printer := message.NewPrinter(language.English)
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"formatQty": func(n int64) string {
			return printer.Sprintf("%d", n)
		},
		"formatAmount": func(v float64) string {
			return printer.Sprintf("%.2f", v)
		},
		"canAddEdit":     authz.CanAddEditStock,
		"canDeleteTx":    authz.CanDeleteTransaction,
		"canCreateUsers": authz.CanCreateUsers,
		"canViewAllLogs": authz.CanViewAllActivity,
		"canDeleteUser":  authz.CanDeleteUser,
		"parseRole":      authz.ParseRole,
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}
