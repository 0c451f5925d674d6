package config

import (
	"strings"
	"time"
)

const (
	apiBaseURLVar           = "API_BASE_URL"
	apiRequestTimeoutVar    = "API_REQUEST_TIMEOUT"
	apiRetryUnauthorizedVar = "API_RETRY_ON_UNAUTHORIZED"
)

type API struct{}

var _ APIConfig = API{}

// GetAPIBaseURL returns the FlexCrew REST API root without a trailing slash
func (API) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv(apiBaseURLVar, "http://localhost:8081"), "/")
}

func (API) GetRequestTimeout() time.Duration {
	return GetEnvDuration(apiRequestTimeoutVar, 15*time.Second)
}

// GetRetryOnUnauthorized controls whether a 401 from the API triggers a silent
// refresh followed by a single replay of the request.
func (API) GetRetryOnUnauthorized() bool {
	return GetEnvBool(apiRetryUnauthorizedVar, true)
}
