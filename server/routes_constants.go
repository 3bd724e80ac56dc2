package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Session Routes
	RouteAuthLogin   = "/auth/login"
	RouteAuthSignup  = "/auth/signup"
	RouteAuthLogout  = "/auth/logout"
	RouteAuthSession = "/auth/session"
	RouteAuthRefresh = "/auth/refresh"
	RouteAuthToken   = "/auth/token"

	// Pages backed by the API
	RouteMyProperties = "/myproperties"

	// Everything under /api/ is relayed to the external API
	RouteAPIProxy = "/api/"

	// Operational Routes
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)
