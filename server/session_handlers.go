package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-bnb-gateway/authapi"
	apperrors "github.com/jrsteele09/go-bnb-gateway/internal/errors"
	"github.com/jrsteele09/go-bnb-gateway/internal/logging"
)

const (
	contentTypeJSON  = "application/json; charset=utf-8"
	maxJSONBodyBytes = 1 << 20
)

var errUnsupportedMediaType = fmt.Errorf("%w: unsupported media type", apperrors.ErrInvalidRequest)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Email     string `json:"email"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
}

type establishRequest struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
}

// SessionResponse is what the navbar reads to decide between "log in" and the user menu.
type SessionResponse struct {
	UserID        *string `json:"user_id"`
	Authenticated bool    `json:"authenticated"`
}

type accessTokenResponse struct {
	Access *string `json:"access"`
}

// LoginHandler relays credentials to the API and, on success, establishes the session cookies.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body loginRequest
		if !decodeRequest(w, r, &body) {
			return
		}
		body.Email = strings.TrimSpace(body.Email)
		if body.Email == "" || body.Password == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email and password are required"})
			return
		}

		pair, err := s.auth.Login(r.Context(), body.Email, body.Password)
		if err != nil {
			s.writeAuthFailure(w, r, "Login", err)
			return
		}
		s.establish(w, r, pair)
	}
}

// SignupHandler registers an account through the API and logs it in.
func (s *Server) SignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body signupRequest
		if !decodeRequest(w, r, &body) {
			return
		}
		body.Email = strings.TrimSpace(body.Email)
		if body.Email == "" || body.Password1 == "" || body.Password2 == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email and both passwords are required"})
			return
		}

		pair, err := s.auth.Signup(r.Context(), body.Email, body.Password1, body.Password2)
		if err != nil {
			s.writeAuthFailure(w, r, "Signup", err)
			return
		}
		s.establish(w, r, pair)
	}
}

// EstablishSessionHandler stores a token triple obtained elsewhere. The values are trusted as given.
func (s *Server) EstablishSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body establishRequest
		if !decodeRequest(w, r, &body) {
			return
		}
		store := s.sessionStore(w, r)
		s.sessions.Establish(store, body.UserID, body.AccessToken, body.RefreshToken)
		userID := s.sessions.UserID(store)
		writeJSON(w, http.StatusOK, SessionResponse{UserID: userID, Authenticated: userID != nil})
	}
}

// LogoutHandler clears the session cookies.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.sessions.Clear(s.sessionStore(w, r))
		w.WriteHeader(http.StatusNoContent)
	}
}

// SessionHandler reports the current user id without touching the network.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := s.sessions.UserID(s.sessionStore(w, r))
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, SessionResponse{UserID: userID, Authenticated: userID != nil})
	}
}

// AccessTokenHandler returns the access token, refreshing it when the cookie has expired.
func (s *Server) AccessTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessToken := s.sessions.AccessToken(r.Context(), s.sessionStore(w, r))
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, accessTokenResponse{Access: accessToken})
	}
}

// RefreshHandler forces one refresh attempt. A failed attempt leaves the browser logged out.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessToken := s.sessions.Refresh(r.Context(), s.sessionStore(w, r))
		w.Header().Set("Cache-Control", "no-store")
		if accessToken == nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "session expired"})
			return
		}
		writeJSON(w, http.StatusOK, accessTokenResponse{Access: accessToken})
	}
}

func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) establish(w http.ResponseWriter, r *http.Request, pair *authapi.TokenPairResponse) {
	store := s.sessionStore(w, r)
	s.sessions.Establish(store, pair.UserID(), pair.Access, pair.Refresh)
	logging.FromContext(r.Context()).Info().Str("user_id", pair.UserID()).Msg("Session established")
	writeJSON(w, http.StatusOK, SessionResponse{UserID: s.sessions.UserID(store), Authenticated: true})
}

// writeAuthFailure maps a login/signup failure to a response. API rejections are passed back as
// messages the form can show; anything else is a gateway problem.
func (s *Server) writeAuthFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	var apiErr *authapi.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
		status := http.StatusUnauthorized
		if op == "Signup" {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, errorResponse{Error: strings.ToLower(op) + " failed", Errors: apiErr.Messages()})
		return
	}

	logging.FromContext(r.Context()).Err(err).Str("op", op).Msg("Auth API call failed")
	if apperrors.Is(err, apperrors.ErrUpstreamUnavailable) || apperrors.Is(err, apperrors.ErrInvalidResponse) || apiErr != nil {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "authentication service unavailable"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

// decodeRequest decodes a JSON body into out, writing the error response itself when it cannot.
func decodeRequest(w http.ResponseWriter, r *http.Request, out any) bool {
	err := decodeJSON(w, r, out)
	switch {
	case err == nil:
		return true
	case apperrors.Is(err, errUnsupportedMediaType):
		writeJSON(w, http.StatusUnsupportedMediaType, errorResponse{Error: "content type must be application/json"})
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
	}
	return false
}

// decodeJSON only accepts application/json bodies. Browsers can send the other "simple" content
// types cross-site without a preflight.
func decodeJSON(w http.ResponseWriter, r *http.Request, out any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("[server decodeJSON] %q: %w", r.Header.Get("Content-Type"), errUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "[server decodeJSON] %v", err)
	}
	return nil
}
