// Package gateway implements the HTTP client for the remote member-services
// backend.
//
// Every operation is a single-attempt call: retries, if any, are the
// backend's or the caller's responsibility. Authenticated calls read the
// current session through a provider callback so the gateway never holds
// credentials itself.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/gremialdev/memberflow/internal/models"
)

// Default client configuration constants
const (
	// DefaultTimeout bounds every backend call at the transport level.
	DefaultTimeout = 30 * time.Second
)

// SessionProvider returns the current session snapshot used to authorize calls.
type SessionProvider func() models.Session

// Opts holds configuration options for the backend client.
type Opts struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Session    SessionProvider
}

// Option defines a configuration option for the backend client.
type Option func(*Opts)

// WithBaseURL sets the backend base URL.
func WithBaseURL(url string) Option {
	return func(o *Opts) { o.BaseURL = url }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) { o.Timeout = d }
}

// WithHTTPClient sets a custom HTTP client (used by tests).
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) { o.HTTPClient = c }
}

// WithSessionProvider sets the callback supplying session credentials.
func WithSessionProvider(p SessionProvider) Option {
	return func(o *Opts) { o.Session = p }
}

// Client talks to the remote member-services backend.
type Client struct {
	baseURL string
	http    *http.Client
	session SessionProvider
}

// NewClient creates a backend client from the provided options.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.BaseURL == "" {
		slog.Error("Gateway base URL not set")
		return nil, fmt.Errorf("backend base URL not set")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	session := cfg.Session
	if session == nil {
		session = func() models.Session { return models.Session{} }
	}
	slog.Debug("Gateway.NewClient: client configured", "base_url", cfg.BaseURL, "timeout", cfg.Timeout)
	return &Client{baseURL: cfg.BaseURL, http: httpClient, session: session}, nil
}

// Login authenticates a member and returns the backend's auth result.
func (c *Client) Login(ctx context.Context, username, password string) (models.AuthResult, error) {
	var out models.AuthResult
	body := map[string]string{"username": username, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/login", body, &out); err != nil {
		slog.Error("Gateway.Login failed", "error", err, "username", username)
		return models.AuthResult{}, err
	}
	slog.Debug("Gateway.Login succeeded", "user_id", out.UserID, "token_set", out.Token != "")
	return out, nil
}

// Logout notifies the backend that the session ended. Best-effort: the
// caller clears local state regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodPost, "/api/logout", nil, nil); err != nil {
		slog.Error("Gateway.Logout failed", "error", err)
		return err
	}
	slog.Debug("Gateway.Logout succeeded")
	return nil
}

// GetUser fetches a member record by id.
func (c *Client) GetUser(ctx context.Context, id int64) (models.User, error) {
	var out models.User
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d", id), nil, &out); err != nil {
		slog.Error("Gateway.GetUser failed", "error", err, "id", id)
		return models.User{}, err
	}
	return out, nil
}

// UpdateUser patches a member record. A nil user with nil error mirrors the
// backend's falsy result for rejected updates.
func (c *Client) UpdateUser(ctx context.Context, id int64, values map[string]string) (*models.User, error) {
	var out models.User
	if err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/api/users/%d", id), values, &out); err != nil {
		slog.Error("Gateway.UpdateUser failed", "error", err, "id", id)
		return nil, err
	}
	if out.ID == 0 {
		slog.Debug("Gateway.UpdateUser rejected by backend", "id", id)
		return nil, nil
	}
	return &out, nil
}

// ChangeUserPass changes the member's password.
func (c *Client) ChangeUserPass(ctx context.Context, current, newPass string) error {
	body := map[string]string{"current": current, "new": newPass}
	return c.doJSON(ctx, http.MethodPost, "/api/password/change", body, nil)
}

// ResetUserPass starts a password reset for the given email.
func (c *Client) ResetUserPass(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.doJSON(ctx, http.MethodPost, "/api/password/reset", body, nil)
}

// SetEnrollment submits an enrollment request. Fails by returning an error.
func (c *Client) SetEnrollment(ctx context.Context, values map[string]string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/enrollments", values, nil)
}

// SetComplaintFile uploads one complaint photo and returns its file id.
func (c *Client) SetComplaintFile(ctx context.Context, photo models.Photo) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", photo.Name)
	if err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(photo.Data); err != nil {
		return "", fmt.Errorf("failed to write photo data: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/files", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Error("Gateway.SetComplaintFile request failed", "error", err, "name", photo.Name)
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", c.statusError(resp)
	}
	var out struct {
		FID string `json:"fid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		slog.Error("Gateway.SetComplaintFile decode failed", "error", err, "name", photo.Name)
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	slog.Debug("Gateway.SetComplaintFile succeeded", "name", photo.Name, "fid", out.FID)
	return out.FID, nil
}

// PatchComplaint submits the complaint form with the uploaded file ids.
// A nil complaint with nil error mirrors the backend's falsy result.
func (c *Client) PatchComplaint(ctx context.Context, values map[string]string, fileIDs []string) (*models.Complaint, error) {
	body := struct {
		Values  map[string]string `json:"values"`
		FileIDs []string          `json:"file_ids"`
	}{Values: values, FileIDs: fileIDs}
	var out models.Complaint
	if err := c.doJSON(ctx, http.MethodPatch, "/api/complaints", body, &out); err != nil {
		slog.Error("Gateway.PatchComplaint failed", "error", err)
		return nil, err
	}
	if out.ID == "" {
		slog.Debug("Gateway.PatchComplaint rejected by backend")
		return nil, nil
	}
	return &out, nil
}

// GetComplaints fetches the member's complaint list.
func (c *Client) GetComplaints(ctx context.Context) ([]models.Complaint, error) {
	var out []models.Complaint
	if err := c.doJSON(ctx, http.MethodGet, "/api/complaints", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetInformation fetches the static information record.
func (c *Client) GetInformation(ctx context.Context) (models.Information, error) {
	var out models.Information
	if err := c.doJSON(ctx, http.MethodGet, "/api/information", nil, &out); err != nil {
		return models.Information{}, err
	}
	return out, nil
}

// GetNews fetches the news feed.
func (c *Client) GetNews(ctx context.Context) ([]models.NewsItem, error) {
	var out []models.NewsItem
	if err := c.doJSON(ctx, http.MethodGet, "/api/news", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAlerts fetches the incident alerts shown on the map.
func (c *Client) GetAlerts(ctx context.Context) ([]models.Alert, error) {
	var out []models.Alert
	if err := c.doJSON(ctx, http.MethodGet, "/api/alerts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetAlert publishes a new incident alert.
func (c *Client) SetAlert(ctx context.Context, alert models.Alert) error {
	return c.doJSON(ctx, http.MethodPost, "/api/alerts", alert, nil)
}

// GetDocuments fetches the document library listing.
func (c *Client) GetDocuments(ctx context.Context) ([]models.Document, error) {
	var out []models.Document
	if err := c.doJSON(ctx, http.MethodGet, "/api/documents", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDocument fetches one document by id, body included.
func (c *Client) GetDocument(ctx context.Context, id int64) (models.Document, error) {
	var out models.Document
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/documents/%d", id), nil, &out); err != nil {
		slog.Error("Gateway.GetDocument failed", "error", err, "id", id)
		return models.Document{}, err
	}
	return out, nil
}

// GetComplaintImages fetches the hosted image attachments of a complaint.
func (c *Client) GetComplaintImages(ctx context.Context, complaintID string) ([]models.Image, error) {
	var out []models.Image
	path := fmt.Sprintf("/api/complaints/%s/images", url.PathEscape(complaintID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NewPassword completes a password reset using the emailed token.
func (c *Client) NewPassword(ctx context.Context, token, password string) error {
	body := map[string]string{"token": token, "password": password}
	return c.doJSON(ctx, http.MethodPost, "/api/password/new", body, nil)
}

// RegisterDeviceToken registers the device's push notification token.
func (c *Client) RegisterDeviceToken(ctx context.Context, token string) error {
	body := map[string]string{"token": token}
	return c.doJSON(ctx, http.MethodPost, "/api/devices", body, nil)
}

// doJSON performs one JSON request against the backend. in may be nil for
// bodyless requests; out may be nil when the response body is irrelevant.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// authorize attaches session credentials to an outgoing request.
func (c *Client) authorize(req *http.Request) {
	s := c.session()
	if s.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.AuthToken)
	}
	if s.Cookie != "" {
		req.Header.Set("Cookie", s.Cookie)
	}
	if s.LogoutToken != "" {
		req.Header.Set("X-Logout-Token", s.LogoutToken)
	}
}

// statusError turns a non-2xx response into an error carrying the backend's
// message when the body is a standard error envelope.
func (c *Client) statusError(resp *http.Response) error {
	var envelope struct {
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Message != "" {
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, envelope.Message)
	}
	return fmt.Errorf("backend returned %d", resp.StatusCode)
}
