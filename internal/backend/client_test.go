package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockpilot/stockpilot/internal/backend"
	"github.com/stockpilot/stockpilot/internal/shared"
	_ "github.com/stockpilot/stockpilot/testing"
)

func TestLoginSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "dina", body["username"])
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-1",
			"user":  map[string]any{"id": 4, "username": "dina", "role": "editor"},
		})
	}))
	defer srv.Close()

	client := backend.NewClient(srv.URL)
	res, err := client.Login(context.Background(), "dina", "pw")
	require.NoError(t, err)
	require.Equal(t, "tok-1", res.Token)
	require.Equal(t, "editor", res.User.Role)
}

func TestLoginRejectedMapsToInvalidCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := backend.NewClient(srv.URL)
	_, err := client.Login(context.Background(), "dina", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestExpiredTokenSurfacesUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer stale", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := backend.NewClient(srv.URL)
	_, err := client.SummaryEnhanced(context.Background(), "stale")
	require.ErrorIs(t, err, shared.ErrBackendUnauthorized)
}

func TestBearerTokenAttached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-9", r.Header.Get("Authorization"))
		require.Equal(t, "/activity-logs", r.URL.Path)
		require.Equal(t, "7", r.URL.Query().Get("user_id"))
		_ = json.NewEncoder(w).Encode([]map[string]any{{"id": 1, "user_id": 7, "action": "sell"}})
	}))
	defer srv.Close()

	client := backend.NewClient(srv.URL)
	entries, err := client.ActivityLogs(context.Background(), "tok-9", 7)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, int64(7), entries[0].UserID)
}

func TestDeleteHistoryRejectsUnknownType(t *testing.T) {
	client := backend.NewClient("http://127.0.0.1:0")
	err := client.DeleteHistory(context.Background(), "tok", "void", 1)
	require.Error(t, err)
}
