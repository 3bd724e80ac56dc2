package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-bnb-gateway/apiservice"
	"github.com/jrsteele09/go-bnb-gateway/authapi"
	"github.com/jrsteele09/go-bnb-gateway/internal/config"
	"github.com/jrsteele09/go-bnb-gateway/metrics"
	"github.com/jrsteele09/go-bnb-gateway/sessions"
	"github.com/rs/zerolog/log"
)

// AuthClient relays credentials to the external authentication API.
// *authapi.Client implements it.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (*authapi.TokenPairResponse, error)
	Signup(ctx context.Context, email, password1, password2 string) (*authapi.TokenPairResponse, error)
}

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Auth     AuthClient
	Sessions *sessions.Manager
	API      *apiservice.Service
	Metrics  *metrics.Metrics
}

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	handler  http.Handler
	routes   []string
	config   config.Config
	auth     AuthClient
	sessions *sessions.Manager
	api      *apiservice.Service
	metrics  *metrics.Metrics
	proxy    *httputil.ReverseProxy
}

func New(cfg config.Config, deps Deps) (*Server, error) {
	if deps.Auth == nil || deps.Sessions == nil || deps.API == nil {
		return nil, fmt.Errorf("[Server New] auth client, session manager and api service are required")
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	target, err := url.Parse(cfg.GetAPIBaseURL())
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("[Server New] invalid api base url %q: %v", cfg.GetAPIBaseURL(), err)
	}

	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		auth:     deps.Auth,
		sessions: deps.Sessions,
		api:      deps.API,
		metrics:  deps.Metrics,
	}
	s.proxy = s.newAPIProxy(target)

	s.initRoutes()
	s.logRoutes()
	s.handler = s.metrics.InstrumentHandler(s.mux)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	log.Info().Str("allowed_origins", s.config.GetAllowedOrigins().String()).Msg("CORS origins")
	if s.env != config.DevEnv {
		return // Skip route logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			log.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("route")
		} else {
			log.Debug().Str("method", "*").Str("path", parts[0]).Msg("route")
		}
	}
}

// sessionStore returns the cookie jar for this request.
func (s *Server) sessionStore(w http.ResponseWriter, r *http.Request) sessions.Store {
	return sessions.NewCookieStore(w, r, s.config.GetCookieSecure())
}
