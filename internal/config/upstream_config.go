package config

import (
	"strings"
	"time"
)

const (
	apiBaseURLEnvVar  = "API_BASE_URL"
	apiTimeoutEnvVar  = "API_TIMEOUT"
	defaultAPIBaseURL = "http://localhost:8000"
	defaultAPITimeout = 10 * time.Second
)

// UpstreamConfig describes the external REST API the gateway relays to.
type UpstreamConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
}

type Upstream struct{}

var _ UpstreamConfig = Upstream{}

// GetAPIBaseURL returns the API origin without a trailing slash (e.g. "http://localhost:8000").
func (Upstream) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv(apiBaseURLEnvVar, defaultAPIBaseURL), "/")
}

func (Upstream) GetAPITimeout() time.Duration {
	return GetEnvDuration(apiTimeoutEnvVar, defaultAPITimeout)
}
