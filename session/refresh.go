package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-flexcrew-dashboard/internal/errors"
	"github.com/jrsteele09/go-flexcrew-dashboard/internal/metrics"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// RefreshPath is the API endpoint that trades a refresh token for an access token
const RefreshPath = "/api/auth/refresh-token"

const (
	defaultRefreshTimeout = 10 * time.Second
	maxRefreshBody        = 1 << 20
)

type refreshResponse struct {
	AccessToken *string `json:"access_token"`
}

// Refresher exchanges the stored refresh token for a new access token.
// It never retries; retry policy belongs to the caller.
type Refresher struct {
	manager *Manager
	baseURL string
	client  *http.Client
	timeout time.Duration
	metrics *metrics.Metrics
	flights singleflight.Group
}

type RefresherOption func(*Refresher)

// WithRefreshTimeout bounds a single exchange with the API
func WithRefreshTimeout(d time.Duration) RefresherOption {
	return func(r *Refresher) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithRefreshMetrics(m *metrics.Metrics) RefresherOption {
	return func(r *Refresher) {
		r.metrics = m
	}
}

// NewRefresher creates a refresher calling baseURL+RefreshPath. httpClient must not
// be the authenticated client; nil uses http.DefaultClient.
func NewRefresher(manager *Manager, baseURL string, httpClient *http.Client, opts ...RefresherOption) *Refresher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	r := &Refresher{
		manager: manager,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
		timeout: defaultRefreshTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh obtains a new access token and installs it with UpdateAccessToken.
// A failed exchange logs the session out. When a login with another refresh
// token lands while the exchange is in flight, the outcome is discarded and the
// new session is kept.
func (r *Refresher) Refresh(ctx context.Context) (string, error) {
	return r.refresh(ctx, applyNow)
}

func applyNow(fn func()) bool {
	fn()
	return true
}

// refresh runs the exchange and hands the resulting session change to apply,
// which may decline it (returns false) when the caller is gone.
func (r *Refresher) refresh(ctx context.Context, apply func(func()) bool) (string, error) {
	refreshToken := r.manager.Snapshot().RefreshToken
	if refreshToken == "" {
		refreshToken = r.manager.storedRefreshToken()
	}
	if refreshToken == "" {
		r.metrics.ObserveRefresh(metrics.RefreshNoToken)
		return "", fmt.Errorf("[session Refresh] %w", apperrors.ErrNoRefreshToken)
	}

	// Concurrent callers share one exchange. The exchange is detached from any
	// single caller's cancellation and bounded by the refresh timeout instead.
	flight := r.flights.DoChan(refreshToken, func() (any, error) {
		exchangeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		return r.exchange(exchangeCtx, refreshToken)
	})

	var result singleflight.Result
	select {
	case <-ctx.Done():
		r.metrics.ObserveRefresh(metrics.RefreshDiscarded)
		return "", fmt.Errorf("[session Refresh] %w", ctx.Err())
	case result = <-flight:
	}

	if result.Err != nil {
		outcome := metrics.RefreshRequestFailed
		if apperrors.Is(result.Err, apperrors.ErrMalformedRefreshResponse) {
			outcome = metrics.RefreshMalformedResponse
		}
		log.Err(result.Err).Msg("Error refreshing token")
		ended := false
		if !apply(func() { ended = r.manager.logoutFrom(refreshToken) }) {
			outcome = metrics.RefreshDiscarded
		} else if !ended {
			log.Info().Msg("Session replaced during refresh, keeping it")
			outcome = metrics.RefreshDiscarded
		}
		r.metrics.ObserveRefresh(outcome)
		return "", result.Err
	}

	accessToken := result.Val.(string)
	installed := false
	applied := apply(func() {
		installed = r.manager.updateAccessTokenFrom(refreshToken, accessToken)
	})
	if !applied {
		r.metrics.ObserveRefresh(metrics.RefreshDiscarded)
		return accessToken, nil
	}
	if !installed {
		// The token belongs to the replaced session; callers continue with the new one
		log.Info().Msg("Session replaced during refresh, discarding token")
		r.metrics.ObserveRefresh(metrics.RefreshDiscarded)
		return r.manager.Snapshot().AccessToken, nil
	}
	r.metrics.ObserveRefresh(metrics.RefreshSuccess)
	log.Info().Msg("Successfully refreshed access token")
	return accessToken, nil
}

func (r *Refresher) exchange(ctx context.Context, refreshToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+RefreshPath, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("[session Refresh] create request: %w: %v", apperrors.ErrRefreshRequestFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+refreshToken)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("[session Refresh] send request: %w: %v", apperrors.ErrRefreshRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxRefreshBody))
		return "", fmt.Errorf("[session Refresh] status %d: %w", resp.StatusCode, apperrors.ErrRefreshRequestFailed)
	}

	var body refreshResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxRefreshBody)).Decode(&body); err != nil {
		return "", fmt.Errorf("[session Refresh] decode response: %w: %v", apperrors.ErrMalformedRefreshResponse, err)
	}
	if body.AccessToken == nil || *body.AccessToken == "" {
		return "", fmt.Errorf("[session Refresh] %w", apperrors.ErrMalformedRefreshResponse)
	}
	return *body.AccessToken, nil
}
