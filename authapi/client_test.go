package authapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-bnb-gateway/authapi"
	apperrors "github.com/jrsteele09/go-bnb-gateway/internal/errors"
	"github.com/jrsteele09/go-bnb-gateway/internal/utils"
	"github.com/stretchr/testify/require"
)

func newAPI(t *testing.T, handler http.HandlerFunc) *authapi.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return authapi.NewClient(srv.URL+"/", srv.Client())
}

func TestClient_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		var gotBody map[string]any
		c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, authapi.PathTokenRefresh, r.URL.Path)
			require.Equal(t, "application/json", r.Header.Get("Accept"))
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			_, _ = w.Write([]byte(`{"access":"acc2"}`))
		})

		resp, err := c.Refresh(ctx, utils.Ptr("ref1"))
		require.NoError(t, err)
		require.Equal(t, "acc2", *resp.Access)
		require.Nil(t, resp.Refresh)
		require.Equal(t, map[string]any{"refresh": "ref1"}, gotBody)
	})

	t.Run("rotated refresh token", func(t *testing.T) {
		c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"access":"acc2","refresh":"ref2"}`))
		})
		resp, err := c.Refresh(ctx, utils.Ptr("ref1"))
		require.NoError(t, err)
		require.Equal(t, "ref2", *resp.Refresh)
	})

	t.Run("absent refresh token is sent as null", func(t *testing.T) {
		var raw map[string]any
		c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"refresh":["This field may not be null."]}`))
		})
		_, err := c.Refresh(ctx, nil)
		require.ErrorIs(t, err, apperrors.ErrRefreshDenied)
		v, ok := raw["refresh"]
		require.True(t, ok)
		require.Nil(t, v)
	})

	t.Run("denied with detail", func(t *testing.T) {
		c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Token is invalid or expired","code":"token_not_valid"}`))
		})
		_, err := c.Refresh(ctx, utils.Ptr("ref1"))
		require.ErrorIs(t, err, apperrors.ErrRefreshDenied)

		var apiErr *authapi.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		require.Equal(t, []string{"Token is invalid or expired"}, apiErr.Messages())
	})

	t.Run("success status without access", func(t *testing.T) {
		c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"detail":"invalid token"}`))
		})
		_, err := c.Refresh(ctx, utils.Ptr("ref1"))
		require.ErrorIs(t, err, apperrors.ErrRefreshDenied)
	})

	t.Run("error status carrying access is still denied", func(t *testing.T) {
		c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"access":"acc2"}`))
		})
		_, err := c.Refresh(ctx, utils.Ptr("ref1"))
		require.ErrorIs(t, err, apperrors.ErrRefreshDenied)
	})

	t.Run("non json body", func(t *testing.T) {
		c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>bad gateway</html>`))
		})
		_, err := c.Refresh(ctx, utils.Ptr("ref1"))
		require.ErrorIs(t, err, apperrors.ErrInvalidResponse)
	})

	t.Run("network error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := authapi.NewClient(url, nil).Refresh(ctx, utils.Ptr("ref1"))
		require.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
	})
}

func TestClient_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success with uuid pk", func(t *testing.T) {
		c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, authapi.PathLogin, r.URL.Path)
			var req authapi.LoginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "guest@example.com", req.Email)
			require.Equal(t, "hunter22", req.Password)
			_, _ = w.Write([]byte(`{"access":"acc1","refresh":"ref1","user":{"pk":"9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d","email":"guest@example.com"}}`))
		})

		pair, err := c.Login(ctx, "guest@example.com", "hunter22")
		require.NoError(t, err)
		require.Equal(t, "acc1", pair.Access)
		require.Equal(t, "ref1", pair.Refresh)
		require.Equal(t, "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d", pair.UserID())
	})

	t.Run("success with numeric pk", func(t *testing.T) {
		c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"access":"acc1","refresh":"ref1","user":{"pk":7}}`))
		})
		pair, err := c.Login(ctx, "guest@example.com", "hunter22")
		require.NoError(t, err)
		require.Equal(t, "7", pair.UserID())
	})

	t.Run("bad credentials", func(t *testing.T) {
		c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"non_field_errors":["Unable to log in with provided credentials."]}`))
		})
		_, err := c.Login(ctx, "guest@example.com", "wrong")
		require.ErrorIs(t, err, apperrors.ErrLoginFailed)

		var apiErr *authapi.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, []string{"Unable to log in with provided credentials."}, apiErr.Messages())
	})

	t.Run("incomplete token pair", func(t *testing.T) {
		c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"access":"acc1","user":{"pk":7}}`))
		})
		_, err := c.Login(ctx, "guest@example.com", "hunter22")
		require.ErrorIs(t, err, apperrors.ErrLoginFailed)
	})
}

func TestClient_Signup(t *testing.T) {
	c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, authapi.PathRegister, r.URL.Path)
		var req authapi.SignupRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password1 != req.Password2 {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"non_field_errors":["The two password fields didn't match."]}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"access":"acc1","refresh":"ref1","user":{"pk":"u1"}}`))
	})

	pair, err := c.Signup(context.Background(), "new@example.com", "pw-123456", "pw-123456")
	require.NoError(t, err)
	require.Equal(t, "u1", pair.UserID())

	_, err = c.Signup(context.Background(), "new@example.com", "pw-123456", "other")
	require.ErrorIs(t, err, apperrors.ErrSignupFailed)
}
