package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-bnb-gateway/internal/errors"
)

// Auth endpoint paths on the external API
const (
	PathTokenRefresh = "/api/auth/token/refresh/"
	PathLogin        = "/api/auth/login/"
	PathRegister     = "/api/auth/register/"
)

const maxResponseBytes = 1 << 20

// APIError is returned when the API answers with a non-2xx status.
// Body holds the decoded error payload when it was JSON (e.g. {"non_field_errors": [...]}).
type APIError struct {
	StatusCode int
	Body       map[string]any
	err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: api returned status %d", e.err, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.err
}

// Messages flattens the API error payload into human readable strings.
func (e *APIError) Messages() []string {
	var messages []string
	for _, v := range e.Body {
		switch t := v.(type) {
		case string:
			messages = append(messages, t)
		case []any:
			for _, item := range t {
				if s, ok := item.(string); ok {
					messages = append(messages, s)
				}
			}
		}
	}
	return messages
}

// Client calls the external authentication API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the API at baseURL (e.g. "http://localhost:8000").
// A nil httpClient uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Refresh exchanges a refresh token for a new access token.
// Any response without an access token, including non-2xx statuses, is reported as ErrRefreshDenied.
// Transport and decoding failures are wrapped with ErrUpstreamUnavailable and ErrInvalidResponse respectively.
func (c *Client) Refresh(ctx context.Context, refreshToken *string) (*RefreshResponse, error) {
	var resp RefreshResponse
	status, err := c.postJSON(ctx, PathTokenRefresh, RefreshRequest{Refresh: refreshToken}, &resp)
	if err != nil {
		return nil, fmt.Errorf("[authapi Refresh] %w", err)
	}
	if status < 200 || status > 299 || resp.Access == nil || *resp.Access == "" {
		return nil, &APIError{StatusCode: status, Body: refreshBody(resp), err: apperrors.ErrRefreshDenied}
	}
	return &resp, nil
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenPairResponse, error) {
	return c.tokenPair(ctx, PathLogin, LoginRequest{Email: email, Password: password}, apperrors.ErrLoginFailed)
}

// Signup registers a new account and returns its token pair.
func (c *Client) Signup(ctx context.Context, email, password1, password2 string) (*TokenPairResponse, error) {
	return c.tokenPair(ctx, PathRegister, SignupRequest{Email: email, Password1: password1, Password2: password2}, apperrors.ErrSignupFailed)
}

func (c *Client) tokenPair(ctx context.Context, path string, body any, failure error) (*TokenPairResponse, error) {
	var raw json.RawMessage
	status, err := c.postJSON(ctx, path, body, &raw)
	if err != nil {
		return nil, fmt.Errorf("[authapi %s] %w", path, err)
	}

	if status < 200 || status > 299 {
		apiErr := &APIError{StatusCode: status, err: failure}
		_ = json.Unmarshal(raw, &apiErr.Body)
		return nil, apiErr
	}

	var pair TokenPairResponse
	if err := json.Unmarshal(raw, &pair); err != nil {
		return nil, fmt.Errorf("[authapi %s] %w: %v", path, apperrors.ErrInvalidResponse, err)
	}
	if pair.Access == "" || pair.Refresh == "" || pair.UserID() == "" {
		return nil, &APIError{StatusCode: status, err: failure}
	}
	return &pair, nil
}

// postJSON posts body as JSON and decodes the response into out, returning the HTTP status.
// The body is decoded regardless of status; error payloads are JSON too.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: %v", apperrors.ErrInvalidResponse, err)
	}
	return resp.StatusCode, nil
}

func refreshBody(resp RefreshResponse) map[string]any {
	if resp.Detail == nil {
		return nil
	}
	return map[string]any{"detail": *resp.Detail}
}
