package apiservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-bnb-gateway/internal/errors"
	"github.com/jrsteele09/go-bnb-gateway/sessions"
)

const maxResponseBytes = 4 << 20

// TokenSource resolves the bearer token for a request's session, refreshing when needed.
// *sessions.Manager implements it.
type TokenSource interface {
	AccessToken(ctx context.Context, store sessions.Store) *string
}

// APIError is returned for non-2xx responses from the API.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, strings.TrimSpace(string(e.Body)))
}

// Service calls the marketplace REST API (properties, reservations, ...) on behalf of a session.
type Service struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

func New(baseURL string, httpClient *http.Client, tokens TokenSource) *Service {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Service{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
	}
}

// Get performs an authenticated GET and decodes the JSON response into out.
// Without a session the request is still made, anonymously; public listings don't need a token.
func (s *Service) Get(ctx context.Context, store sessions.Store, path string, out any) error {
	return s.do(ctx, http.MethodGet, path, nil, s.bearer(ctx, store), out)
}

// Post performs an authenticated POST of body as JSON.
func (s *Service) Post(ctx context.Context, store sessions.Store, path string, body, out any) error {
	return s.do(ctx, http.MethodPost, path, body, s.bearer(ctx, store), out)
}

// PostWithoutToken performs an anonymous POST, e.g. for login and signup forms.
func (s *Service) PostWithoutToken(ctx context.Context, path string, body, out any) error {
	return s.do(ctx, http.MethodPost, path, body, nil, out)
}

func (s *Service) bearer(ctx context.Context, store sessions.Store) *string {
	if store == nil {
		return nil
	}
	return s.tokens.AccessToken(ctx, store)
}

func (s *Service) do(ctx context.Context, method, path string, body any, token *string, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("[apiservice %s %s] marshal: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+"/"+strings.TrimLeft(path, "/"), reader)
	if err != nil {
		return fmt.Errorf("[apiservice %s %s] build request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != nil {
		req.Header.Set("Authorization", "Bearer "+*token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("[apiservice %s %s] %w: %v", method, path, apperrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("[apiservice %s %s] read body: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: data}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("[apiservice %s %s] %w: %v", method, path, apperrors.ErrInvalidResponse, err)
	}
	return nil
}
