package server

import (
	"net/http"

	"github.com/jrsteele09/go-flexcrew-dashboard/routeguard"
	"github.com/jrsteele09/go-flexcrew-dashboard/session"
	"github.com/rs/zerolog"
)

// Guard names used in logs and metrics
const (
	guardAuthenticated = "authenticated"
	guardAdmin         = "admin"
)

// loadingRefreshSeconds is how soon the loading page asks the browser to retry
const loadingRefreshSeconds = "1"

// RequireBootstrap holds requests on a loading page until the session gate has
// finished restoring any persisted session. Nothing below it runs while the gate
// is still verifying.
func (s *Server) RequireBootstrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.gate.State() != session.Ready {
			w.Header().Set("Refresh", loadingRefreshSeconds)
			s.render(w, r, http.StatusOK, "loading.html", s.pageData("Loading", nil))
			return
		}
		next(w, r)
	}
}

// RequireAuthenticated redirects anonymous users to the login page, carrying
// the requested path as the navigation intent.
func (s *Server) RequireAuthenticated(next http.HandlerFunc) http.HandlerFunc {
	return s.guard(guardAuthenticated, routeguard.RequireAuthenticated, next)
}

// RequireAdmin additionally sends non-admin users to the home page
func (s *Server) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return s.guard(guardAdmin, routeguard.RequireAdmin, next)
}

func (s *Server) guard(name string, check func(session.Session, string) routeguard.Decision, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		decision := check(s.sessions.Snapshot(), intentFrom(r))
		s.metrics.ObserveGuard(name, decision.Outcome.String())
		if decision.Allowed() {
			next(w, r)
			return
		}

		zerolog.Ctx(r.Context()).Debug().
			Str("guard", name).
			Str("decision", decision.Outcome.String()).
			Str("path", r.URL.Path).
			Msg("Navigation redirected")
		http.Redirect(w, r, decision.Location(), http.StatusSeeOther)
	}
}

// intentFrom is the path to come back to after login. Only GET requests can be
// replayed by a redirect.
func intentFrom(r *http.Request) string {
	if r.Method != http.MethodGet {
		return ""
	}
	return r.URL.RequestURI()
}
