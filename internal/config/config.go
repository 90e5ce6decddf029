package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config interface {
	EnvConfig
	APIConfig
	CorsConfig
	SessionConfig
	SecurityConfig
	TelemetryConfig
	Validate() error
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	API
	Cors
	Sessions
	Security
	Telemetry
}

// New loads a .env file when one is present and returns the environment backed config.
func New() Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}
	return mainConfig{}
}

func (c mainConfig) Validate() error {
	if c.GetAPIHost() == "" {
		return fmt.Errorf("%s is required", apiHostVar)
	}
	switch c.GetSessionStore() {
	case SessionStoreMemory:
	case SessionStoreRedis:
		if c.GetRedisAddr() == "" {
			return fmt.Errorf("%s is required when %s=%s", redisAddrVar, sessionStoreVar, SessionStoreRedis)
		}
		if len(c.GetSessionSecret()) < 32 {
			return fmt.Errorf("%s must be at least 32 bytes when %s=%s", sessionSecretVar, sessionStoreVar, SessionStoreRedis)
		}
	default:
		return fmt.Errorf("unknown %s %q", sessionStoreVar, c.GetSessionStore())
	}
	return nil
}
