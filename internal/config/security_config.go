package config

import "strings"

const (
	loginRateVar  = "LOGIN_RATE_PER_MINUTE"
	trustProxyVar = "TRUST_PROXY_HEADERS"
)

type SecurityConfig interface {
	GetEnableRateLimiting() bool
	GetLoginRatePerMinute() int
	GetTrustProxyHeaders() bool
}

type Security struct{}

var _ SecurityConfig = Security{}

func (s Security) GetEnableRateLimiting() bool {
	return s.GetLoginRatePerMinute() > 0
}

// GetLoginRatePerMinute is the number of login attempts allowed per client IP per minute (0 disables)
func (Security) GetLoginRatePerMinute() int {
	return GetEnvInt(loginRateVar, 10)
}

// GetTrustProxyHeaders reports whether X-Forwarded-For may be used to identify clients.
// Only enable it when a reverse proxy in front of the server appends that header.
func (Security) GetTrustProxyHeaders() bool {
	switch strings.ToLower(GetEnv(trustProxyVar, "false")) {
	case "1", "true", "yes":
		return true
	}
	return false
}
