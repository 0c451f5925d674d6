// Package routeguard decides whether a navigation may proceed, given a session
// snapshot. The functions are side-effect free; applying the decision is left
// to the caller.
package routeguard

import (
	"net/url"
	"strings"

	"github.com/jrsteele09/go-flexcrew-dashboard/session"
)

const (
	LoginPath = "/authentication"
	HomePath  = "/"

	// FromParam is the query parameter carrying the navigation intent
	FromParam = "from"
)

// Outcome of a guard check
type Outcome int

const (
	Allow Outcome = iota
	RedirectLogin
	RedirectHome
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

// NavigationIntent remembers where the user was going when the login redirect
// happened. It only travels with that redirect.
type NavigationIntent struct {
	From string
}

// Target returns the path to continue to after login. Anything other than a
// local absolute path falls back to home.
func (n NavigationIntent) Target() string {
	if !IsLocalPath(n.From) || n.From == LoginPath || strings.HasPrefix(n.From, LoginPath+"?") {
		return HomePath
	}
	return n.From
}

// IntentFromQuery reads the navigation intent from a login page query
func IntentFromQuery(q url.Values) NavigationIntent {
	return NavigationIntent{From: q.Get(FromParam)}
}

// Decision is the result of evaluating a guard
type Decision struct {
	Outcome Outcome
	Intent  NavigationIntent
}

func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

// Location returns the redirect target for the decision, or "" when allowed
func (d Decision) Location() string {
	switch d.Outcome {
	case RedirectLogin:
		if d.Intent.From == "" {
			return LoginPath
		}
		return LoginPath + "?" + url.Values{FromParam: {d.Intent.From}}.Encode()
	case RedirectHome:
		return HomePath
	default:
		return ""
	}
}

// RequireAuthenticated sends anonymous users to login, remembering from
func RequireAuthenticated(s session.Session, from string) Decision {
	if !s.IsAuthenticated() {
		return Decision{Outcome: RedirectLogin, Intent: NavigationIntent{From: from}}
	}
	return Decision{Outcome: Allow}
}

// RequireAdmin behaves like RequireAuthenticated and additionally sends
// authenticated users without the ADMIN role home.
func RequireAdmin(s session.Session, from string) Decision {
	if d := RequireAuthenticated(s, from); !d.Allowed() {
		return d
	}
	if !s.IsAdmin() {
		return Decision{Outcome: RedirectHome}
	}
	return Decision{Outcome: Allow}
}

// IsLocalPath accepts paths on this host only, rejecting scheme-relative and
// absolute URLs.
func IsLocalPath(p string) bool {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return false
	}
	u, err := url.Parse(p)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}
