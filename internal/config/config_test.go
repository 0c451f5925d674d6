package config_test

import (
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-flexcrew-dashboard/internal/config"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"PORT", "APP_NAME", "FOLDER", "ENV", "LOG_LEVEL",
		"API_BASE_URL", "API_REQUEST_TIMEOUT", "API_RETRY_ON_UNAUTHORIZED",
		"CREDENTIALS_FILE", "CREDENTIALS_KEY", "SESSION_REFRESH_TIMEOUT", "ALLOWED_HOSTS",
	} {
		t.Setenv(name, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	c := config.New()

	require.Equal(t, "127.0.0.1:8080", c.GetPort())
	require.Equal(t, "FlexCrew Dashboard", c.GetAppName())
	require.Equal(t, "./data", c.GetDataFolder())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "info", c.GetLogLevel())
	require.Equal(t, "http://localhost:8081", c.GetAPIBaseURL())
	require.Equal(t, 15*time.Second, c.GetRequestTimeout())
	require.True(t, c.GetRetryOnUnauthorized())
	require.Equal(t, filepath.Join("./data", "credentials.json"), c.GetCredentialsFile())
	require.Empty(t, c.GetCredentialsKey())
	require.Equal(t, 10*time.Second, c.GetRefreshTimeout())
	require.Equal(t, "127.0.0.1, ::1, localhost", c.GetAllowedHosts().String())
}

func TestOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", ":9090")
	t.Setenv("FOLDER", "/var/lib/flexcrew")
	t.Setenv("ENV", "PROD")
	t.Setenv("API_BASE_URL", "https://api.flexcrew.io/")
	t.Setenv("API_REQUEST_TIMEOUT", "3s")
	t.Setenv("API_RETRY_ON_UNAUTHORIZED", "false")
	t.Setenv("SESSION_REFRESH_TIMEOUT", "2s")
	c := config.New()

	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, "PROD", c.GetEnv())
	require.Equal(t, "https://api.flexcrew.io", c.GetAPIBaseURL())
	require.Equal(t, 3*time.Second, c.GetRequestTimeout())
	require.False(t, c.GetRetryOnUnauthorized())
	require.Equal(t, filepath.Join("/var/lib/flexcrew", "credentials.json"), c.GetCredentialsFile())
	require.Equal(t, 2*time.Second, c.GetRefreshTimeout())

	t.Setenv("CREDENTIALS_FILE", "/tmp/creds.json")
	require.Equal(t, "/tmp/creds.json", c.GetCredentialsFile())
}

func TestMalformedValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_REQUEST_TIMEOUT", "soon")
	t.Setenv("SESSION_REFRESH_TIMEOUT", "-1s")
	t.Setenv("API_RETRY_ON_UNAUTHORIZED", "maybe")

	require.Equal(t, 15*time.Second, config.GetEnvDuration("API_REQUEST_TIMEOUT", 15*time.Second))
	require.Equal(t, 10*time.Second, config.GetEnvDuration("SESSION_REFRESH_TIMEOUT", 10*time.Second))
	require.True(t, config.GetEnvBool("API_RETRY_ON_UNAUTHORIZED", true))
	require.Equal(t, "fallback", config.GetEnv("UNSET_FLEXCREW_VAR", "fallback"))
}

func TestListenAddress(t *testing.T) {
	cases := []struct {
		port string
		want string
	}{
		{"9090", "127.0.0.1:9090"},
		{":9090", ":9090"},
		{"127.0.0.1:8080", "127.0.0.1:8080"},
		{"0.0.0.0:80", "0.0.0.0:80"},
		{"[::1]:8080", "[::1]:8080"},
	}

	for _, tc := range cases {
		t.Run(tc.port, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("PORT", tc.port)
			addr := config.New().GetPort()
			require.Equal(t, tc.want, addr)

			_, _, err := net.SplitHostPort(addr)
			require.NoError(t, err)
		})
	}
}

func TestAllowedHosts(t *testing.T) {
	clearEnv(t)
	hosts := config.New().GetAllowedHosts()
	require.True(t, hosts.IsAllowedHost("localhost"))
	require.True(t, hosts.IsAllowedHost("LOCALHOST"))
	require.True(t, hosts.IsAllowedHost("::1"))
	require.False(t, hosts.IsAllowedHost("evil.example"))

	t.Setenv("ALLOWED_HOSTS", " dash.flexcrew.io , [fe80::1] ")
	hosts = config.New().GetAllowedHosts()
	require.True(t, hosts.IsAllowedHost("dash.flexcrew.io"))
	require.True(t, hosts.IsAllowedHost("fe80::1"))
	require.False(t, hosts.IsAllowedHost("localhost"))

	require.True(t, config.ParseAllowedHosts("*").IsAllowedHost("anything"))
}
