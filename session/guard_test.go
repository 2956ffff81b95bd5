package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognimosyne/mediatranslator/loginlang"
	"github.com/cognimosyne/mediatranslator/session"
	fakeclient "github.com/cognimosyne/mediatranslator/session/clientfake"
	"github.com/cognimosyne/mediatranslator/storage"
)

const (
	testIDToken    = "header.payload.signature"
	testTarget     = "/dashboard/reports?x=1"
	testPoolID     = "ap-northeast-2:pool"
	testIdentityID = "sub-1234"
)

type fakeWarmer struct {
	lock            sync.Mutex
	prewarmTokens   []string
	invalidateCalls int
}

func (w *fakeWarmer) Prewarm(_ context.Context, identityToken string) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.prewarmTokens = append(w.prewarmTokens, identityToken)
}

func (w *fakeWarmer) Invalidate() {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.invalidateCalls++
}

func (w *fakeWarmer) PrewarmedWith() []string {
	w.lock.Lock()
	defer w.lock.Unlock()
	return append([]string(nil), w.prewarmTokens...)
}

func (w *fakeWarmer) InvalidateCalls() int {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.invalidateCalls
}

type guardFixture struct {
	client  *fakeclient.FakeClient
	warmer  *fakeWarmer
	scoped  *storage.MemoryStore
	durable *storage.MemoryStore
	guard   *session.Guard
}

func setupGuard(t *testing.T, options ...session.GuardOption) *guardFixture {
	t.Helper()

	f := &guardFixture{
		client:  fakeclient.New(),
		warmer:  &fakeWarmer{},
		scoped:  storage.NewMemoryStore(),
		durable: storage.NewMemoryStore(),
	}

	guard, err := session.NewGuard(f.client, f.warmer, f.scoped, f.durable, options...)
	require.NoError(t, err)
	t.Cleanup(guard.Close)
	f.guard = guard
	return f
}

func authenticatedSession() session.Session {
	return session.Session{
		Authenticated: true,
		IDToken:       testIDToken,
		Claims: session.Claims{
			Subject:   testIdentityID,
			Email:     "user@example.com",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
}

func TestRequireStoresTargetAndSignsInWithLanguageHint(t *testing.T) {
	f := setupGuard(t)
	f.durable.TrySet(loginlang.StorageKey, "de")
	f.client.SignInSucceedsWith(authenticatedSession())

	err := f.guard.Require(context.Background(), testTarget)
	require.NoError(t, err)

	assert.Equal(t, session.StateAuthenticated, f.guard.State())
	assert.Equal(t, 1, f.client.SignInCalls())
	assert.Equal(t, loginlang.De, f.client.LastSignInOptions().Lang)

	assert.Equal(t, testTarget, f.guard.ConsumeRedirectTarget())
	assert.Equal(t, session.DefaultTarget, f.guard.ConsumeRedirectTarget(), "target is consumed exactly once")
}

func TestRequireSkipsSignInWhenSessionRestores(t *testing.T) {
	f := setupGuard(t)
	f.client.SetSession(authenticatedSession())

	err := f.guard.Require(context.Background(), testTarget)
	require.NoError(t, err)
	assert.Equal(t, 0, f.client.SignInCalls())
}

func TestRequirePersistsTargetBeforeDispatch(t *testing.T) {
	f := setupGuard(t)
	f.client.SignInFails(errors.New("browser not available"))

	err := f.guard.Require(context.Background(), testTarget)
	require.ErrorIs(t, err, session.SignInFailedErr)

	// The destination survived the failed round trip.
	target, ok := f.scoped.TryGet(session.RedirectStorageKey)
	require.True(t, ok)
	assert.Equal(t, testTarget, target)
}

func TestRequireFallsBackToDefaultTarget(t *testing.T) {
	f := setupGuard(t, session.WithDefaultTarget("/home"))
	f.client.SignInSucceedsWith(authenticatedSession())

	require.NoError(t, f.guard.Require(context.Background(), ""))
	assert.Equal(t, "/home", f.guard.ConsumeRedirectTarget())
}

func TestRequireDispatchesOnceWhilePending(t *testing.T) {
	f := setupGuard(t)
	f.client.SignInSucceedsWith(authenticatedSession())

	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	f.client.SignInBlocks(func() {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
	})

	done := make(chan error, 1)
	go func() {
		done <- f.guard.Require(context.Background(), testTarget)
	}()
	<-entered

	// A second caller while the round trip is open must not dispatch again.
	require.NoError(t, f.guard.Require(context.Background(), "/other"))
	assert.Equal(t, session.StateRedirectPending, f.guard.State())

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, f.client.SignInCalls())
}

func TestRequireDeniedAllowsManualRetry(t *testing.T) {
	f := setupGuard(t)
	f.client.SignInFails(errors.New("popup blocked"))

	err := f.guard.Require(context.Background(), testTarget)
	require.ErrorIs(t, err, session.SignInFailedErr)
	assert.Equal(t, session.StateDenied, f.guard.State())
	assert.Equal(t, 1, f.client.SignInCalls(), "a failed dispatch is not retried automatically")

	f.client.SignInSucceedsWith(authenticatedSession())
	require.NoError(t, f.guard.Require(context.Background(), testTarget))
	assert.Equal(t, session.StateAuthenticated, f.guard.State())
	assert.Equal(t, 2, f.client.SignInCalls())
}

func TestAuthenticationPrewarmsCredentials(t *testing.T) {
	f := setupGuard(t)

	f.client.SetSession(authenticatedSession())
	assert.Equal(t, []string{testIDToken}, f.warmer.PrewarmedWith())
}

func TestSignOutClearsEverythingAndIsIdempotent(t *testing.T) {
	cacheKeys := session.IdentityCacheKeys(testPoolID)
	f := setupGuard(t, session.WithIdentityCacheKeys(cacheKeys...))

	f.client.SignInSucceedsWith(authenticatedSession())
	require.NoError(t, f.guard.Require(context.Background(), testTarget))
	for _, key := range cacheKeys {
		f.durable.TrySet(key, "cached-by-sdk")
	}

	require.NoError(t, f.guard.SignOut(context.Background()))
	require.NoError(t, f.guard.SignOut(context.Background()))

	_, ok := f.scoped.TryGet(session.RedirectStorageKey)
	assert.False(t, ok)
	for _, key := range cacheKeys {
		_, ok := f.durable.TryGet(key)
		assert.False(t, ok, "identity cache key %q must be cleared", key)
	}
	assert.GreaterOrEqual(t, f.warmer.InvalidateCalls(), 1)
	assert.Equal(t, session.StateUnknown, f.guard.State())
}
