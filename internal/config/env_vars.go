package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	portEnvVar      = "PORT"
	appNameVar      = "APP_NAME"
	envVar          = "ENV"
	logLevelEnvVar  = "LOG_LEVEL"
	sentryDSNEnvVar = "SENTRY_DSN"
)

// DevEnv is the environment name used for local development.
const DevEnv = "DEV"

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "3000")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "bnb gateway")
}

func (EnvVars) GetEnv() string {
	return strings.ToUpper(GetEnv(envVar, DevEnv))
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelEnvVar, "info")
}

// GetSentryDSN returns the DSN for crash reporting. Empty disables Sentry.
func (EnvVars) GetSentryDSN() string {
	return GetEnv(sentryDSNEnvVar, "")
}

func GetEnv(envVar, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(envVar))
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvBool parses envVar as a bool, returning defaultValue when unset or unparsable.
func GetEnvBool(envVar string, defaultValue bool) bool {
	value := GetEnv(envVar, "")
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// GetEnvDuration parses envVar with time.ParseDuration, returning defaultValue when unset, unparsable or not positive.
func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := GetEnv(envVar, "")
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}
