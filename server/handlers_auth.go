package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-flexcrew-dashboard/apiclient"
	apperrors "github.com/jrsteele09/go-flexcrew-dashboard/internal/errors"
	"github.com/jrsteele09/go-flexcrew-dashboard/routeguard"
	"github.com/rs/zerolog"
)

// LoginForm is the login page model
type LoginForm struct {
	Email string
	From  string
}

// LoginPageHandler displays the login page (GET /authentication)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intent := routeguard.IntentFromQuery(r.URL.Query())
		if s.sessions.IsAuthenticated() {
			http.Redirect(w, r, intent.Target(), http.StatusSeeOther)
			return
		}

		data := s.pageData("Sign in", LoginForm{From: intent.From})
		s.render(w, r, http.StatusOK, "login.html", data)
	}
}

// LoginSubmissionHandler authenticates against the API and starts the session
// (POST /authentication). On success the browser continues to the navigation
// intent, or home when there is none.
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := r.PostFormValue("email")
		password := r.PostFormValue("password")
		intent := routeguard.NavigationIntent{From: r.PostFormValue(routeguard.FromParam)}
		form := LoginForm{Email: email, From: intent.From}

		if !validEmail(email) || !validLoginPassword(password) {
			s.renderLoginError(w, r, http.StatusBadRequest, form, msgInvalidEntry)
			return
		}

		logger := zerolog.Ctx(r.Context())
		resp, err := s.api.Authenticate(r.Context(), email, password)
		if err != nil {
			status := apiclient.StatusOf(err)
			logger.Warn().Err(err).Int("status", status).Str("email", email).Msg("Login failed")
			switch {
			case status == http.StatusUnauthorized || status == http.StatusForbidden:
				s.renderLoginError(w, r, http.StatusUnauthorized, form, msgBadCredentials)
			case status != 0:
				s.renderLoginError(w, r, http.StatusBadGateway, form, apiMessage(err, msgLoginFailed))
			default:
				s.renderLoginError(w, r, http.StatusBadGateway, form, msgNoServerResponse)
			}
			return
		}

		if !resp.Complete() {
			logger.Warn().Str("email", email).Msg("Login response missing access token, refresh token or role")
			s.renderLoginError(w, r, http.StatusBadGateway, form, msgIncompleteLogin)
			return
		}

		// FlexCrew tokens name the account in the subject; opaque tokens carry none
		if sub := apiclient.TokenSubject(resp.AccessToken); sub != "" && !strings.EqualFold(sub, email) {
			logger.Warn().Str("email", email).Str("subject", sub).Msg("Login token issued for another account")
			s.renderLoginError(w, r, http.StatusBadGateway, form, msgTokenMismatch)
			return
		}

		if err := s.sessions.Login(resp.AccessToken, resp.RefreshToken, email, resp.Role); err != nil {
			logger.Err(err).Msg("Failed to start session")
			s.renderLoginError(w, r, http.StatusBadGateway, form, msgIncompleteLogin)
			return
		}

		http.Redirect(w, r, intent.Target(), http.StatusSeeOther)
	}
}

// LogoutHandler ends the session and returns to the login page
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.sessions.Logout()
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}

func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, status int, form LoginForm, message string) {
	data := s.pageData("Sign in", form)
	data.Error = message
	s.render(w, r, status, "login.html", data)
}

// apiMessage returns the message the API sent with an error response
func apiMessage(err error, fallback string) string {
	var apiErr *apiclient.APIError
	if apperrors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
