package apiclient_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-flexcrew-dashboard/apiclient"
	"github.com/jrsteele09/go-flexcrew-dashboard/credentials"
	"github.com/stretchr/testify/require"
)

// recorder captures what the remote side received
type recorder struct {
	mu      sync.Mutex
	auth    []string
	bodies  []string
	reqIDs  []string
	respond func(w http.ResponseWriter, r *http.Request)
}

func newRecorder(t *testing.T, respond func(w http.ResponseWriter, r *http.Request)) (*recorder, *httptest.Server) {
	t.Helper()
	rec := &recorder{respond: respond}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.auth = append(rec.auth, r.Header.Get("Authorization"))
		rec.bodies = append(rec.bodies, string(body))
		rec.reqIDs = append(rec.reqIDs, r.Header.Get(apiclient.HeaderRequestID))
		rec.mu.Unlock()
		if rec.respond != nil {
			rec.respond(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return rec, srv
}

func (r *recorder) authHeaders() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.auth...)
}

// fakeRefresher hands out a fixed token and writes it to the store like the
// session refresher does
type fakeRefresher struct {
	store credentials.Store
	token string
	err   error
	calls atomic.Int32
}

func (f *fakeRefresher) Refresh(context.Context) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	if err := f.store.SetAccessToken(f.token); err != nil {
		return "", err
	}
	return f.token, nil
}

func storeWithToken(t *testing.T, token string) *credentials.InMemoryStore {
	t.Helper()
	store := credentials.NewInMemoryStore()
	if token == "" {
		return store
	}
	require.NoError(t, store.Save(credentials.Record{
		AccessToken:  token,
		RefreshToken: "reftok1",
		UserEmail:    "a@b.com",
		UserRole:     "USER",
	}))
	return store
}

func transportClient(store credentials.Store, refresher apiclient.Refresher, retry bool) *http.Client {
	return &http.Client{Transport: &apiclient.Transport{
		Source:              apiclient.NewStoreTokenSource(store),
		Refresher:           refresher,
		RetryOnUnauthorized: retry,
	}}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.RegisteredClaims{
		Subject:   "a@b.com",
		ExpiresAt: jwtlib.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func get(t *testing.T, c *http.Client, url string) *http.Response {
	t.Helper()
	resp, err := c.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestTransport_NoTokenSendsUnmodified(t *testing.T) {
	rec, srv := newRecorder(t, nil)
	c := transportClient(storeWithToken(t, ""), nil, false)

	resp := get(t, c, srv.URL+"/api/schedules")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{""}, rec.authHeaders())
}

func TestTransport_AttachesCurrentToken(t *testing.T) {
	rec, srv := newRecorder(t, nil)
	store := storeWithToken(t, "tok1")
	c := transportClient(store, nil, false)

	get(t, c, srv.URL+"/a")
	require.NoError(t, store.SetAccessToken("tok2"))
	get(t, c, srv.URL+"/b")
	require.NoError(t, store.SetAccessToken(""))
	get(t, c, srv.URL+"/c")

	require.Equal(t, []string{"Bearer tok1", "Bearer tok2", ""}, rec.authHeaders())
}

func TestTransport_DoesNotMutateCallerRequest(t *testing.T) {
	_, srv := newRecorder(t, nil)
	c := transportClient(storeWithToken(t, "tok1"), nil, false)

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := c.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Empty(t, req.Header.Get("Authorization"))
	require.Empty(t, req.Header.Get(apiclient.HeaderRequestID))
}

func TestTransport_SetsRequestID(t *testing.T) {
	rec, srv := newRecorder(t, nil)
	c := transportClient(storeWithToken(t, ""), nil, false)

	get(t, c, srv.URL)
	get(t, c, srv.URL)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.reqIDs, 2)
	require.NotEmpty(t, rec.reqIDs[0])
	require.NotEqual(t, rec.reqIDs[0], rec.reqIDs[1])
}

// unauthorizedUnless answers 401 to anything but the given bearer
func unauthorizedUnless(token string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`ok`))
	}
}

func TestTransport_RetriesOnceAfterUnauthorized(t *testing.T) {
	rec, srv := newRecorder(t, unauthorizedUnless("tok2"))
	store := storeWithToken(t, "tok1")
	refresher := &fakeRefresher{store: store, token: "tok2"}
	c := transportClient(store, refresher, true)

	resp, err := c.Post(srv.URL+"/api/employees/change-password", "application/json", strings.NewReader(`{"email":"a@b.com"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int32(1), refresher.calls.Load())
	require.Equal(t, []string{"Bearer tok1", "Bearer tok2"}, rec.authHeaders())

	rec.mu.Lock()
	require.Equal(t, []string{`{"email":"a@b.com"}`, `{"email":"a@b.com"}`}, rec.bodies)
	rec.mu.Unlock()
}

func TestTransport_RetryStopsAfterOneAttempt(t *testing.T) {
	rec, srv := newRecorder(t, unauthorizedUnless("never"))
	store := storeWithToken(t, "tok1")
	refresher := &fakeRefresher{store: store, token: "tok2"}
	c := transportClient(store, refresher, true)

	resp := get(t, c, srv.URL)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, int32(1), refresher.calls.Load())
	require.Len(t, rec.authHeaders(), 2)
}

func TestTransport_RetryDisabled(t *testing.T) {
	rec, srv := newRecorder(t, unauthorizedUnless("tok2"))
	store := storeWithToken(t, "tok1")
	refresher := &fakeRefresher{store: store, token: "tok2"}
	c := transportClient(store, refresher, false)

	resp := get(t, c, srv.URL)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, int32(0), refresher.calls.Load())
	require.Equal(t, []string{"Bearer tok1"}, rec.authHeaders())
}

func TestTransport_FailedRefreshReturnsOriginalResponse(t *testing.T) {
	rec, srv := newRecorder(t, unauthorizedUnless("tok2"))
	store := storeWithToken(t, "tok1")
	refresher := &fakeRefresher{store: store, err: errors.New("boom")}
	c := transportClient(store, refresher, true)

	resp := get(t, c, srv.URL)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, int32(1), refresher.calls.Load())
	require.Equal(t, []string{"Bearer tok1"}, rec.authHeaders())
}

func TestTransport_RefreshesExpiredTokenBeforeDispatch(t *testing.T) {
	rec, srv := newRecorder(t, nil)
	expired := signedToken(t, time.Now().Add(-time.Hour))
	store := storeWithToken(t, expired)
	refresher := &fakeRefresher{store: store, token: "tok2"}
	c := transportClient(store, refresher, true)

	resp := get(t, c, srv.URL)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int32(1), refresher.calls.Load())
	require.Equal(t, []string{"Bearer tok2"}, rec.authHeaders())
}

func TestTransport_ValidTokenIsNotRefreshed(t *testing.T) {
	rec, srv := newRecorder(t, nil)
	valid := signedToken(t, time.Now().Add(time.Hour))
	store := storeWithToken(t, valid)
	refresher := &fakeRefresher{store: store, token: "tok2"}
	c := transportClient(store, refresher, true)

	get(t, c, srv.URL)
	require.Equal(t, int32(0), refresher.calls.Load())
	require.Equal(t, []string{"Bearer " + valid}, rec.authHeaders())
}

func TestTokenClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, exp)

	require.True(t, exp.Equal(apiclient.TokenExpiry(token)))
	require.Equal(t, "a@b.com", apiclient.TokenSubject(token))

	require.True(t, apiclient.TokenExpiry("opaque").IsZero())
	require.Empty(t, apiclient.TokenSubject("opaque"))
}
