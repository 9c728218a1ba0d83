package users_test

import (
	"context"
	"encoding/json"
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

	"github.com/stockpilot/stockpilot/internal/authz"
	"github.com/stockpilot/stockpilot/internal/backend"
	"github.com/stockpilot/stockpilot/internal/guard"
	"github.com/stockpilot/stockpilot/internal/shared"
	"github.com/stockpilot/stockpilot/internal/users"
	"github.com/stockpilot/stockpilot/internal/view"
	_ "github.com/stockpilot/stockpilot/testing"
)

type stubBackend struct {
	mux         *http.ServeMux
	registered  []backend.RegisterUserInput
	deleted     []string
	userListing []backend.UserRecord
}

func newStubBackend() *stubBackend {
	s := &stubBackend{mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /register", func(w http.ResponseWriter, r *http.Request) {
		var input backend.RegisterUserInput
		_ = json.NewDecoder(r.Body).Decode(&input)
		s.registered = append(s.registered, input)
		w.WriteHeader(http.StatusCreated)
	})
	s.mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(s.userListing)
	})
	s.mux.HandleFunc("DELETE /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.deleted = append(s.deleted, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	return s
}

func newUsersRouter(t *testing.T, backendURL string, actor authz.Principal) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	templates, err := view.NewEngine()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client := backend.NewClient(backendURL)
	g := guard.Middleware{Logger: logger, Templates: templates}
	handler := users.NewHandler(logger, client, templates, csrfManager, sessionManager, g)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := sessionManager.Load(context.Background(), req)
			require.NoError(t, err)
			sess.SetIdentity("tok", actor)
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	r.Route("/users", handler.MountRoutes)
	return r
}

func TestCreateUserAboveCeilingRejected(t *testing.T) {
	stub := newStubBackend()
	server := httptest.NewServer(stub.mux)
	defer server.Close()

	router := newUsersRouter(t, server.URL, authz.Principal{ID: 1, Username: "boss", Role: authz.RoleAdmin})

	postData := url.Values{}
	postData.Set("username", "sneaky")
	postData.Set("password", "secret123")
	postData.Set("role", "superadmin")

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(postData.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Empty(t, stub.registered, "backend must not see a submission above the ceiling")
}

func TestCreateUserWithinCeiling(t *testing.T) {
	stub := newStubBackend()
	server := httptest.NewServer(stub.mux)
	defer server.Close()

	router := newUsersRouter(t, server.URL, authz.Principal{ID: 1, Username: "boss", Role: authz.RoleAdmin})

	postData := url.Values{}
	postData.Set("username", "clerk")
	postData.Set("password", "secret123")
	postData.Set("role", "editor")

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(postData.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusSeeOther, res.Code)
	require.Len(t, stub.registered, 1)
	require.Equal(t, "editor", stub.registered[0].Role)
}

func TestEditorCannotReachUserAdmin(t *testing.T) {
	stub := newStubBackend()
	server := httptest.NewServer(stub.mux)
	defer server.Close()

	router := newUsersRouter(t, server.URL, authz.Principal{ID: 2, Username: "clerk", Role: authz.RoleEditor})

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestAdminCannotDeletePeerAdmin(t *testing.T) {
	stub := newStubBackend()
	stub.userListing = []backend.UserRecord{
		{ID: 5, Username: "rival", Role: "admin"},
	}
	server := httptest.NewServer(stub.mux)
	defer server.Close()

	router := newUsersRouter(t, server.URL, authz.Principal{ID: 1, Username: "boss", Role: authz.RoleAdmin})

	req := httptest.NewRequest(http.MethodPost, "/users/5/delete", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusForbidden, res.Code)
	require.Empty(t, stub.deleted)
}
