// Package client talks to the account settings API on behalf of the dialogs. Client
// implements their upload, username lookup and save collaborators; UserCache owns the user
// snapshot they are seeded from.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/janisto/account-settings/internal/dialog"
	applog "github.com/janisto/account-settings/internal/platform/logging"
)

const (
	defaultBaseURL = "http://localhost:8080/v1"
	userAgent      = "account-settings"
	acceptHeader   = "application/json"
)

// TokenSource returns the bearer token for a request.
type TokenSource func(ctx context.Context) (string, error)

// Client is an HTTP client for the v1 API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API root, including the /v1 prefix.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithToken sets a fixed bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.tokens = func(context.Context) (string, error) { return token, nil }
	}
}

// WithTokenSource sets a bearer token provider, called once per request.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithTimeout sets the per-request timeout on the underlying HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// NewClient creates a client. A nil httpClient uses http.DefaultClient.
func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Wire types, matching the API's camelCase JSON.

type apiUser struct {
	ID               string   `json:"id"`
	Email            string   `json:"email"`
	FirstName        string   `json:"firstName"`
	LastName         string   `json:"lastName"`
	Username         string   `json:"username"`
	Photo            string   `json:"photo"`
	CurrentSponsorID string   `json:"currentSponsorId"`
	IsTalentFilled   bool     `json:"isTalentFilled"`
	EmailSettings    []string `json:"emailSettings"`
}

type detailsBody struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Photo     string `json:"photo,omitempty"`
}

type emailSettingsBody struct {
	Categories []string `json:"categories"`
}

type availability struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason"`
}

type uploaded struct {
	URL string `json:"url"`
}

func (u apiUser) snapshot() *dialog.User {
	settings := u.EmailSettings
	if settings == nil {
		settings = []string{}
	}
	return &dialog.User{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Username:         u.Username,
		Photo:            u.Photo,
		CurrentSponsorID: u.CurrentSponsorID,
		IsTalentFilled:   u.IsTalentFilled,
		EmailSettings:    settings,
	}
}

func (c *Client) doRequest(
	ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string,
) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		token, err := c.tokens(ctx)
		if err != nil {
			return nil, fmt.Errorf("obtaining token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return c.httpClient.Do(req)
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	resp, err := c.doRequest(ctx, method, path, query, body, contentType)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	return c.decodeResponse(ctx, resp, out)
}

func (c *Client) decodeResponse(ctx context.Context, resp *http.Response, target any) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if target == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	}

	apiErr := &APIError{Status: resp.StatusCode}
	var problem huma.ErrorModel
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&problem); err == nil {
		apiErr.Title = problem.Title
		apiErr.Detail = problem.Detail
		for _, d := range problem.Errors {
			if d == nil {
				continue
			}
			apiErr.Errors = append(apiErr.Errors, d.Error())
		}
	}
	applog.LogDebug(ctx, "api request failed",
		zap.Int("status", resp.StatusCode),
		zap.String("title", apiErr.Title),
		zap.String("detail", apiErr.Detail),
	)
	return apiErr
}

// GetUser fetches the signed-in user's snapshot.
func (c *Client) GetUser(ctx context.Context) (*dialog.User, error) {
	var u apiUser
	if err := c.doJSON(ctx, http.MethodGet, "/user", nil, nil, &u); err != nil {
		return nil, err
	}
	return u.snapshot(), nil
}

// SaveDetails sends a profile save. An empty Photo removes the avatar.
func (c *Client) SaveDetails(ctx context.Context, p dialog.DetailsPayload) error {
	return c.doJSON(ctx, http.MethodPost, "/user/details", nil, detailsBody(p), nil)
}

// SaveEmailSettings sends the subscribed categories.
func (c *Client) SaveEmailSettings(ctx context.Context, categories []string) error {
	if categories == nil {
		categories = []string{}
	}
	return c.doJSON(ctx, http.MethodPost, "/user/email-settings", nil, emailSettingsBody{Categories: categories}, nil)
}

// CheckAvailable asks whether the signed-in user may claim candidate.
func (c *Client) CheckAvailable(ctx context.Context, candidate string) (dialog.Availability, error) {
	var a availability
	q := url.Values{"username": {candidate}}
	if err := c.doJSON(ctx, http.MethodGet, "/user/username-availability", q, nil, &a); err != nil {
		return dialog.Availability{}, err
	}
	return dialog.Availability{Available: a.Available, Reason: a.Reason}, nil
}

// Upload stores file in folder and returns its public URL.
func (c *Client) Upload(ctx context.Context, file dialog.File, folder string) (string, error) {
	data, err := io.ReadAll(file.Body)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", file.Name, err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	h.Set("Content-Type", detectType(data))
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("building upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("building upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("building upload: %w", err)
	}

	var q url.Values
	if folder != "" {
		q = url.Values{"folder": {folder}}
	}
	resp, err := c.doRequest(ctx, http.MethodPost, "/media", q, &buf, mw.FormDataContentType())
	if err != nil {
		return "", fmt.Errorf("POST /media: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out uploaded
	if err := c.decodeResponse(ctx, resp, &out); err != nil {
		return "", err
	}
	applog.LogDebug(ctx, "media uploaded", zap.String("file", file.Name), zap.String("url", out.URL))
	return out.URL, nil
}

func detectType(data []byte) string {
	ct := http.DetectContentType(data)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return ct
}

// Compile-time interface checks
var (
	_ dialog.Uploader           = (*Client)(nil)
	_ dialog.UsernameChecker    = (*Client)(nil)
	_ dialog.DetailsSaver       = (*Client)(nil)
	_ dialog.EmailSettingsSaver = (*Client)(nil)
)
