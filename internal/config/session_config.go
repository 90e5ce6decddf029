package config

import "time"

const (
	sessionStoreVar  = "SESSION_STORE"
	sessionSecretVar = "SESSION_SECRET"
	sessionMaxAgeVar = "SESSION_MAX_AGE"
	redisAddrVar     = "REDIS_ADDR"
	redisPasswordVar = "REDIS_PASSWORD"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type SessionConfig interface {
	GetSessionStore() string
	GetSessionSecret() string
	GetMaxSessionAge() time.Duration
	GetDefaultAccessTokenExpiry() time.Duration
	GetRedisAddr() string
	GetRedisPassword() string
}

type Sessions struct{}

var _ SessionConfig = Sessions{}

func (Sessions) GetSessionStore() string {
	return GetEnv(sessionStoreVar, SessionStoreMemory)
}

// GetSessionSecret returns the key material used to seal tokens held outside the process
func (Sessions) GetSessionSecret() string {
	return GetEnv(sessionSecretVar, "")
}

func (Sessions) GetMaxSessionAge() time.Duration {
	return GetEnvDuration(sessionMaxAgeVar, 7*24*time.Hour)
}

// GetDefaultAccessTokenExpiry is used when an access token carries no exp claim
func (Sessions) GetDefaultAccessTokenExpiry() time.Duration {
	return 5 * time.Minute
}

func (Sessions) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "")
}

func (Sessions) GetRedisPassword() string {
	return GetEnv(redisPasswordVar, "")
}
