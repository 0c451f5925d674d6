package apiclient

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// HeaderRequestID carries a per-request identifier to the API
const HeaderRequestID = "X-Request-ID"

// Refresher obtains a new access token. session.Refresher satisfies it.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// Transport attaches the current access token to every outgoing request. The
// token is read from Source at dispatch time; with no token the request is sent
// without an Authorization header.
//
// When Refresher is set and RetryOnUnauthorized is true, a token whose known
// expiry has passed is refreshed before dispatch, and a 401 response triggers one
// refresh followed by a single replay of the request.
type Transport struct {
	Source              oauth2.TokenSource
	Base                http.RoundTripper
	Refresher           Refresher
	RetryOnUnauthorized bool
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqBodyClosed := false
	if req.Body != nil {
		defer func() {
			if !reqBodyClosed {
				req.Body.Close()
			}
		}()
	}

	token, err := t.Source.Token()
	if err != nil {
		return nil, err
	}

	if t.canRefresh() && token.AccessToken != "" && !token.Valid() {
		if refreshed, err := t.Refresher.Refresh(req.Context()); err == nil {
			token = bearer(refreshed)
		} else {
			log.Warn().Err(err).Str("path", req.URL.Path).Msg("Proactive token refresh failed")
			token = &oauth2.Token{}
		}
	}

	first := t.prepare(req, token)
	reqBodyClosed = true
	resp, err := t.base().RoundTrip(first)
	if err != nil || resp.StatusCode != http.StatusUnauthorized || !t.canRefresh() || !replayable(req) {
		return resp, err
	}

	refreshed, refreshErr := t.Refresher.Refresh(req.Context())
	if refreshErr != nil {
		log.Warn().Err(refreshErr).Str("path", req.URL.Path).Msg("Token refresh after 401 failed")
		return resp, nil
	}

	retry := t.prepare(req, bearer(refreshed))
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return resp, nil
		}
		retry.Body = body
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	log.Debug().Str("path", req.URL.Path).Msg("Replaying request with refreshed token")
	return t.base().RoundTrip(retry)
}

func (t *Transport) prepare(req *http.Request, token *oauth2.Token) *http.Request {
	out := req.Clone(req.Context())
	if out.Header.Get(HeaderRequestID) == "" {
		out.Header.Set(HeaderRequestID, uuid.NewString())
	}
	if token != nil && token.AccessToken != "" {
		token.SetAuthHeader(out)
	}
	return out
}

func (t *Transport) canRefresh() bool {
	return t.Refresher != nil && t.RetryOnUnauthorized
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func replayable(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

func bearer(accessToken string) *oauth2.Token {
	return &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
}
