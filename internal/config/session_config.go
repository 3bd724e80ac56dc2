package config

import "time"

const cookieSecureEnvVar = "COOKIE_SECURE"

type SessionConfig interface {
	GetUserIDLifetime() time.Duration
	GetAccessTokenLifetime() time.Duration
	GetRefreshTokenLifetime() time.Duration
	GetCookieSecure() bool
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetUserIDLifetime() time.Duration {
	return 7 * 24 * time.Hour
}

// GetAccessTokenLifetime is the upper bound for the access token cookie.
func (Session) GetAccessTokenLifetime() time.Duration {
	return 60 * time.Minute
}

func (Session) GetRefreshTokenLifetime() time.Duration {
	return 7 * 24 * time.Hour
}

// GetCookieSecure reports whether session cookies carry the Secure flag.
// Defaults to false in DEV (plain http on localhost) and true everywhere else.
func (Session) GetCookieSecure() bool {
	return GetEnvBool(cookieSecureEnvVar, EnvVars{}.GetEnv() != DevEnv)
}
