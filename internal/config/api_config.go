package config

import (
	"strings"
	"time"
)

const (
	apiHostVar    = "AICP_API_HOST"
	apiTimeoutVar = "API_TIMEOUT"
	cacheIdleVar  = "CACHE_MAX_IDLE"
)

type APIConfig interface {
	GetAPIHost() string
	GetAPITimeout() time.Duration
	GetCacheMaxIdle() time.Duration
}

type API struct{}

var _ APIConfig = API{}

// GetAPIHost returns the base URL of the AICP backend (e.g. "http://localhost:8000")
func (API) GetAPIHost() string {
	return strings.TrimSuffix(GetEnv(apiHostVar, ""), "/")
}

func (API) GetAPITimeout() time.Duration {
	return GetEnvDuration(apiTimeoutVar, 15*time.Second)
}

// GetCacheMaxIdle is how long fetched API data is kept without being read
func (API) GetCacheMaxIdle() time.Duration {
	return GetEnvDuration(cacheIdleVar, 30*time.Minute)
}
