package app_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/stockpilot/stockpilot/internal/app"
	"github.com/stockpilot/stockpilot/internal/shared"
	_ "github.com/stockpilot/stockpilot/testing"
)

// newStackRouter builds a router running the full middleware chain
// with a GET route that mints a CSRF token and a POST route that only
// answers when the chain lets the request through.
func newStackRouter(t *testing.T) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	for _, mw := range app.MiddlewareStack(app.MiddlewareConfig{
		Logger:         logger,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
	}) {
		r.Use(mw)
	}
	r.Get("/form", func(w http.ResponseWriter, req *http.Request) {
		sess := shared.SessionFromContext(req.Context())
		token, err := csrfManager.EnsureToken(req.Context(), sess)
		require.NoError(t, err)
		_, _ = w.Write([]byte(token))
	})
	r.Post("/submit", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

// primeSession fetches the form page to obtain a session cookie and
// its minted CSRF token.
func primeSession(t *testing.T, router http.Handler) (*http.Cookie, string) {
	t.Helper()
	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/form", nil))
	require.Equal(t, http.StatusOK, res.Code)

	var cookie *http.Cookie
	for _, c := range res.Result().Cookies() {
		if c.Name == "test_session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "session cookie not issued")
	return cookie, res.Body.String()
}

func TestCSRFMiddlewareAcceptsValidToken(t *testing.T) {
	router := newStackRouter(t)
	cookie, token := primeSession(t, router)

	form := url.Values{}
	form.Set(shared.CSRFFormField, token)
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)
}

func TestCSRFMiddlewareRejectsMissingToken(t *testing.T) {
	router := newStackRouter(t)
	cookie, _ := primeSession(t, router)

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.AddCookie(cookie)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestCSRFMiddlewareRejectsMismatchedToken(t *testing.T) {
	router := newStackRouter(t)
	cookie, _ := primeSession(t, router)

	form := url.Values{}
	form.Set(shared.CSRFFormField, "forged-token")
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestSessionCommitFailureIsLogged(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")

	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := chi.NewRouter()
	for _, mw := range app.MiddlewareStack(app.MiddlewareConfig{
		Logger:         logger,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
	}) {
		r.Use(mw)
	}
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		sess := shared.SessionFromContext(req.Context())
		sess.Set("seen", "1")
		_, _ = w.Write([]byte("ok"))
	})

	// Store disappears between load and commit.
	mr.Close()

	res := httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Contains(t, buf.String(), "commit session", "failed session write must reach the logs")
}

func TestCSRFMiddlewareSkipsReads(t *testing.T) {
	router := newStackRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/form", nil))
	require.Equal(t, http.StatusOK, res.Code)
	require.NotEmpty(t, res.Body.String())
}
