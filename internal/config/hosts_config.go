package config

import (
	"sort"
	"strings"
)

const allowedHostsEnvVar = "ALLOWED_HOSTS"

const defaultAllowedHosts = "localhost,127.0.0.1,::1"

// AllowedHosts are the host names the dashboard answers to, without ports
type AllowedHosts map[string]struct{}
type nullValue = struct{}

// IsAllowedHost reports whether host is listed. A "*" entry allows every host.
func (a AllowedHosts) IsAllowedHost(host string) bool {
	if _, ok := a["*"]; ok {
		return true
	}
	_, ok := a[strings.ToLower(host)]
	return ok
}

func (a AllowedHosts) String() string {
	var hosts []string
	for k := range a {
		hosts = append(hosts, k)
	}
	sort.Strings(hosts)
	return strings.Join(hosts, ", ")
}

// ParseAllowedHosts reads a comma separated host list. Brackets around IPv6
// literals are dropped.
func ParseAllowedHosts(list string) AllowedHosts {
	hosts := AllowedHosts{}
	for _, h := range strings.Split(list, ",") {
		h = strings.ToLower(strings.Trim(strings.TrimSpace(h), "[]"))
		if h != "" {
			hosts[h] = nullValue{}
		}
	}
	return hosts
}

func (EnvVars) GetAllowedHosts() AllowedHosts {
	return ParseAllowedHosts(GetEnv(allowedHostsEnvVar, defaultAllowedHosts))
}
