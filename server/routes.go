package server

func (s *Server) initRoutes() {
	// SESSION
	s.RegisterRouteFunc("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthSignup, ChainMiddleware(s.SignupHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAuthSession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthSession, ChainMiddleware(s.EstablishSessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAuthToken, ChainMiddleware(s.AccessTokenHandler(), s.APIMiddleware()...))

	// Preflight for the gateway routes; the relay answers its own
	s.RegisterRouteFunc("OPTIONS /auth/", ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("OPTIONS "+RouteMyProperties, ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))

	// API backed pages
	s.RegisterRouteFunc("GET "+RouteMyProperties, ChainMiddleware(s.MyPropertiesHandler(), s.APIMiddleware(s.RequireSession())...))

	// API relay (any method)
	s.RegisterRouteFunc(RouteAPIProxy, ChainMiddleware(s.APIProxyHandler(), s.APIMiddleware()...))

	// Operational
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics.Handler())
}
