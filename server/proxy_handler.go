package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/jrsteele09/go-bnb-gateway/apiservice"
	"github.com/jrsteele09/go-bnb-gateway/internal/logging"
)

// newAPIProxy relays /api/ requests to the external API. The browser's cookies never leave the
// gateway; the session's access token travels as a bearer header instead.
func (s *Server) newAPIProxy(target *url.URL) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Header.Del("Cookie")
		},
		ModifyResponse: func(resp *http.Response) error {
			// The API does not get to set cookies on the gateway's domain
			resp.Header.Del("Set-Cookie")
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logging.FromContext(r.Context()).Err(err).Str("path", r.URL.Path).Msg("API relay failed")
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: "api unavailable"})
		},
	}
}

// APIProxyHandler attaches the session's bearer token, refreshing it if it has expired, and relays the request.
// Requests without a session are relayed anonymously; the API decides what needs authentication.
// Visitors holding no tokens at all are not sent through a refresh that can only fail.
func (s *Server) APIProxyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := r.Clone(r.Context())
		out.Header.Del("Authorization")

		store := s.sessionStore(w, r)
		if s.sessions.PeekAccessToken(store) != nil || s.sessions.RefreshToken(store) != nil {
			if accessToken := s.sessions.AccessToken(r.Context(), store); accessToken != nil {
				out.Header.Set("Authorization", "Bearer "+*accessToken)
			}
		}
		s.proxy.ServeHTTP(w, out)
	}
}

// MyPropertiesHandler lists the properties owned by the logged in user.
func (s *Server) MyPropertiesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserIDFromContext(r.Context())

		var properties json.RawMessage
		path := "/api/properties/?landlord_id=" + url.QueryEscape(userID)
		if err := s.api.Get(r.Context(), s.sessionStore(w, r), path, &properties); err != nil {
			var apiErr *apiservice.APIError
			if errors.As(err, &apiErr) {
				w.Header().Set("Content-Type", contentTypeJSON)
				w.WriteHeader(apiErr.StatusCode)
				_, _ = w.Write(apiErr.Body)
				return
			}
			logging.FromContext(r.Context()).Err(err).Msg("Failed to list properties")
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: "api unavailable"})
			return
		}

		writeJSON(w, http.StatusOK, properties)
	}
}
