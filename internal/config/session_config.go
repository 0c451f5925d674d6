package config

import (
	"path/filepath"
	"time"
)

const (
	credentialsFileVar   = "CREDENTIALS_FILE"
	credentialsKeyVar    = "CREDENTIALS_KEY"
	refreshTimeoutEnvVar = "SESSION_REFRESH_TIMEOUT"
)

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetCredentialsFile() string {
	return GetEnv(credentialsFileVar, filepath.Join(EnvVars{}.GetDataFolder(), "credentials.json"))
}

// GetCredentialsKey returns the hex encoded 32 byte key used to seal the
// credentials file. Empty means the file is stored as plain JSON.
func (Session) GetCredentialsKey() string {
	return GetEnv(credentialsKeyVar, "")
}

func (Session) GetRefreshTimeout() time.Duration {
	return GetEnvDuration(refreshTimeoutEnvVar, 10*time.Second)
}
