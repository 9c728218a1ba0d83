package view_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockpilot/stockpilot/internal/authz"
	"github.com/stockpilot/stockpilot/internal/view"
	_ "github.com/stockpilot/stockpilot/testing"
)

func TestEngineParsesAllTemplates(t *testing.T) {
	_, err := view.NewEngine()
	require.NoError(t, err)
}

func TestDeniedPageRenders(t *testing.T) {
	engine, err := view.NewEngine()
	require.NoError(t, err)

	res := httptest.NewRecorder()
	data := view.TemplateData{
		Title:       "Access denied",
		CurrentPath: "/users",
		Principal:   &authz.Principal{ID: 2, Username: "clerk", Role: authz.RoleEditor},
	}
	require.NoError(t, engine.Render(res, "pages/denied.html", data))
	require.Contains(t, res.Body.String(), "Access denied")
	require.Equal(t, "text/html; charset=utf-8", res.Header().Get("Content-Type"))
}

func TestNavHidesAdminLinksFromViewers(t *testing.T) {
	engine, err := view.NewEngine()
	require.NoError(t, err)

	viewerRes := httptest.NewRecorder()
	require.NoError(t, engine.Render(viewerRes, "pages/denied.html", view.TemplateData{
		Title:     "Access denied",
		Principal: &authz.Principal{ID: 3, Username: "watcher", Role: authz.RoleViewer},
	}))
	body := viewerRes.Body.String()
	require.False(t, strings.Contains(body, `href="/users"`), "viewer nav must not link user admin")
	require.False(t, strings.Contains(body, `href="/stock/add"`), "viewer nav must not link stock forms")

	adminRes := httptest.NewRecorder()
	require.NoError(t, engine.Render(adminRes, "pages/denied.html", view.TemplateData{
		Title:     "Access denied",
		Principal: &authz.Principal{ID: 4, Username: "boss", Role: authz.RoleAdmin},
	}))
	require.Contains(t, adminRes.Body.String(), `href="/users"`)
}
