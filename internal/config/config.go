package config

import (
	"time"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	APIConfig
	SessionConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
	GetLogLevel() string
	GetAllowedHosts() AllowedHosts
}

type APIConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
	GetRetryOnUnauthorized() bool
}

type SessionConfig interface {
	GetCredentialsFile() string
	GetCredentialsKey() string
	GetRefreshTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	API
	Session
}

// New loads an optional .env file and returns the environment backed config.
// Variables already present in the environment take precedence over the file.
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}
