package session_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/go-flexcrew-dashboard/credentials"
	"github.com/jrsteele09/go-flexcrew-dashboard/session"
	"github.com/stretchr/testify/require"
)

// persistedRefreshOnly stores a previous session whose access token is gone,
// the state left after a reload once the access slot was dropped.
func persistedRefreshOnly(t *testing.T) (*session.Manager, *credentials.InMemoryStore) {
	t.Helper()
	store := credentials.NewInMemoryStore()
	require.NoError(t, store.Save(credentials.Record{
		AccessToken:  "expired",
		RefreshToken: testRefreshToken,
		UserEmail:    testEmail,
		UserRole:     session.RoleAdmin,
	}))
	require.NoError(t, store.SetAccessToken(""))

	m, err := session.NewManager(store)
	require.NoError(t, err)
	require.False(t, m.IsAuthenticated())
	return m, store
}

func waitReady(t *testing.T, g *session.Gate) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, g.Wait(ctx))
	require.Equal(t, session.Ready, g.State())
}

func TestGate_NothingPersisted(t *testing.T) {
	api := newRefreshAPI(t, respondJSON(`{"access_token":"tok2"}`))
	m, _ := newTestManager(t)
	g := session.NewGate(m, session.NewRefresher(m, api.server.URL, api.server.Client()))
	require.Equal(t, session.Verifying, g.State())

	g.Mount(context.Background())

	require.Equal(t, session.Ready, g.State())
	require.Equal(t, int32(0), api.calls.Load())
	require.False(t, m.IsAuthenticated())
}

func TestGate_AlreadyAuthenticated(t *testing.T) {
	api := newRefreshAPI(t, respondJSON(`{"access_token":"tok2"}`))
	m, _ := newTestManager(t)
	require.NoError(t, m.Login(testAccessToken, testRefreshToken, testEmail, session.RoleUser))

	g := session.NewGate(m, session.NewRefresher(m, api.server.URL, api.server.Client()))
	g.Mount(context.Background())

	require.Equal(t, session.Ready, g.State())
	require.Equal(t, int32(0), api.calls.Load())
	require.Equal(t, testAccessToken, m.Snapshot().AccessToken)
}

func TestGate_RestoresSession(t *testing.T) {
	api := newRefreshAPI(t, respondJSON(`{"access_token":"tok2"}`))
	m, store := persistedRefreshOnly(t)

	g := session.NewGate(m, session.NewRefresher(m, api.server.URL, api.server.Client()))
	g.Mount(context.Background())
	waitReady(t, g)

	require.Equal(t, int32(1), api.calls.Load())
	require.True(t, m.IsAuthenticated())
	require.Equal(t, session.RoleAdmin, m.Role())
	require.Equal(t, "tok2", loadRecord(t, store).AccessToken)

	// Ready is terminal; mounting again does not verify twice
	g.Mount(context.Background())
	require.Equal(t, int32(1), api.calls.Load())
}

func TestGate_RefreshFailureStillReady(t *testing.T) {
	api := newRefreshAPI(t, respondStatus(http.StatusUnauthorized))
	m, store := persistedRefreshOnly(t)

	g := session.NewGate(m, session.NewRefresher(m, api.server.URL, api.server.Client()))
	g.Mount(context.Background())
	waitReady(t, g)

	require.Equal(t, int32(1), api.calls.Load())
	require.False(t, m.IsAuthenticated())
	require.Equal(t, credentials.Record{}, loadRecord(t, store))
}

func TestGate_UnmountDiscardsLateRefresh(t *testing.T) {
	release := make(chan struct{})
	api := newRefreshAPI(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		respondJSON(`{"access_token":"tok2"}`)(w, r)
	})
	m, store := persistedRefreshOnly(t)
	before := m.Snapshot()
	beforeRecord := loadRecord(t, store)

	g := session.NewGate(m, session.NewRefresher(m, api.server.URL, api.server.Client()))
	g.Mount(context.Background())
	require.Equal(t, session.Verifying, g.State())

	require.Eventually(t, func() bool { return api.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	g.Unmount()
	close(release)

	// give the detached exchange time to resolve
	time.Sleep(100 * time.Millisecond)

	require.Equal(t, before, m.Snapshot())
	require.Equal(t, beforeRecord, loadRecord(t, store))
	require.Equal(t, session.Verifying, g.State())
}

func TestGateState_String(t *testing.T) {
	require.Equal(t, "verifying", session.Verifying.String())
	require.Equal(t, "ready", session.Ready.String())
	require.Equal(t, "unknown", session.GateState(9).String())
}
