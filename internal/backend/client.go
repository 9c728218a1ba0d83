package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/stockpilot/stockpilot/internal/shared"
)

// Client wraps the authoritative inventory backend. Every business
// rule lives on the other side of it; this client only moves JSON and
// attaches the session's bearer token. A 401 from any call surfaces
// as shared.ErrBackendUnauthorized so the handler can force logout.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Login exchanges credentials for a token and user record. No token
// is attached: this is the one unauthenticated call.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var out LoginResult
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, "", http.MethodPost, "/login", body, &out); err != nil {
		if errors.Is(err, shared.ErrBackendUnauthorized) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	return &out, nil
}

// SummaryEnhanced fetches the dashboard summary.
func (c *Client) SummaryEnhanced(ctx context.Context, token string) (*Summary, error) {
	var out Summary
	if err := c.do(ctx, token, http.MethodGet, "/summary/enhanced", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProductDetails fetches the short product list for pickers.
func (c *Client) ProductDetails(ctx context.Context, token string) ([]ProductDetail, error) {
	var out []ProductDetail
	if err := c.do(ctx, token, http.MethodGet, "/products/details", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddStock posts a stock addition.
func (c *Client) AddStock(ctx context.Context, token string, in AddStockInput) error {
	return c.do(ctx, token, http.MethodPost, "/add", in, nil)
}

// SellStock posts a stock sale.
func (c *Client) SellStock(ctx context.Context, token string, in SellStockInput) error {
	return c.do(ctx, token, http.MethodPost, "/sell", in, nil)
}

// Orders lists orders.
func (c *Client) Orders(ctx context.Context, token string) ([]Order, error) {
	var out []Order
	if err := c.do(ctx, token, http.MethodGet, "/orders", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateOrder posts a new order.
func (c *Client) CreateOrder(ctx context.Context, token string, in CreateOrderInput) error {
	return c.do(ctx, token, http.MethodPost, "/orders/create", in, nil)
}

// ExportOrders streams the backend's CSV export.
func (c *Client) ExportOrders(ctx context.Context, token string) ([]byte, error) {
	req, err := c.newRequest(ctx, token, http.MethodGet, "/orders/export", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrBackendUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if err := statusError(resp.StatusCode); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

// Users lists all accounts.
func (c *Client) Users(ctx context.Context, token string) ([]UserRecord, error) {
	var out []UserRecord
	if err := c.do(ctx, token, http.MethodGet, "/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RegisterUser creates an account.
func (c *Client) RegisterUser(ctx context.Context, token string, in RegisterUserInput) error {
	return c.do(ctx, token, http.MethodPost, "/register", in, nil)
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, token string, userID int64) error {
	return c.do(ctx, token, http.MethodDelete, "/users/"+strconv.FormatInt(userID, 10), nil, nil)
}

// Me fetches the caller's own account.
func (c *Client) Me(ctx context.Context, token string) (*UserRecord, error) {
	var out UserRecord
	if err := c.do(ctx, token, http.MethodGet, "/user/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile changes the caller's own account.
func (c *Client) UpdateProfile(ctx context.Context, token string, in UpdateProfileInput) error {
	return c.do(ctx, token, http.MethodPost, "/user/update_profile", in, nil)
}

// ActivityLogs lists activity entries. userID of zero means all
// users; the backend still scopes the response to the caller's
// rights.
func (c *Client) ActivityLogs(ctx context.Context, token string, userID int64) ([]ActivityEntry, error) {
	path := "/activity-logs"
	if userID != 0 {
		path += "?user_id=" + strconv.FormatInt(userID, 10)
	}
	var out []ActivityEntry
	if err := c.do(ctx, token, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DailyHistory lists transaction history, optionally for a single day
// (YYYY-MM-DD).
func (c *Client) DailyHistory(ctx context.Context, token string, day string) ([]HistoryEntry, error) {
	path := "/daily-history"
	if day != "" {
		path += "?date=" + url.QueryEscape(day)
	}
	var out []HistoryEntry
	if err := c.do(ctx, token, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteHistory removes an add or sell transaction record.
func (c *Client) DeleteHistory(ctx context.Context, token string, txType string, id int64) error {
	if txType != "add" && txType != "sell" {
		return fmt.Errorf("unknown transaction type %q", txType)
	}
	return c.do(ctx, token, http.MethodDelete, "/history/"+txType+"/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) newRequest(ctx context.Context, token, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, token, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, token, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrBackendUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if err := statusError(resp.StatusCode); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func statusError(code int) error {
	switch {
	case code == http.StatusUnauthorized:
		return shared.ErrBackendUnauthorized
	case code == http.StatusNotFound:
		return shared.ErrNotFound
	case code >= 400:
		return fmt.Errorf("backend returned status %d", code)
	default:
		return nil
	}
}
