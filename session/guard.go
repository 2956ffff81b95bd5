package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/cognimosyne/mediatranslator/loginlang"
	"github.com/cognimosyne/mediatranslator/storage"
)

// RedirectStorageKey holds the Pending Redirect Target in the login-scoped
// store: the destination the user asked for before being sent to sign in.
const RedirectStorageKey = "redirect"

// DefaultTarget is used when no destination was captured.
const DefaultTarget = "/dashboard"

// State is the guard's position in the sign-in round trip.
type State int

const (
	// StateUnknown means identity status has not been resolved yet.
	StateUnknown State = iota

	// StateRedirectPending means interactive sign-in has been dispatched
	// and its outcome is not yet known.
	StateRedirectPending

	// StateAuthenticated means the session is valid and protected
	// operations may proceed.
	StateAuthenticated

	// StateDenied means the last sign-in attempt failed. The next Require
	// call starts over; the guard never retries on its own.
	StateDenied
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateRedirectPending:
		return "redirect-pending"
	case StateAuthenticated:
		return "authenticated"
	case StateDenied:
		return "denied"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// CredentialWarmer is the slice of the credential broker the guard drives:
// pre-warm on sign-in, invalidate on sign-out.
type CredentialWarmer interface {
	Prewarm(ctx context.Context, identityToken string)
	Invalidate()
}

// Guard gates protected operations on a valid identity session. It owns
// the Pending Redirect Target and keeps the credential cache in step with
// the session: warmed when authentication appears, cleared when it goes.
type Guard struct {
	client  Client
	warmer  CredentialWarmer
	scoped  storage.Store
	durable storage.Store

	defaultTarget     string
	identityCacheKeys []string
	logger            zerolog.Logger

	lock        sync.Mutex
	state       State
	loaded      bool
	unsubscribe UnsubscribeFunc
}

// GuardOption modifies a Guard.
type GuardOption func(*Guard)

// WithDefaultTarget overrides the fallback destination.
func WithDefaultTarget(target string) GuardOption {
	return func(g *Guard) {
		g.defaultTarget = target
	}
}

// WithIdentityCacheKeys names durable-store entries the provider SDK
// maintains for the identity pool; they are cleared whenever
// authentication goes away so nothing leaks across identities.
func WithIdentityCacheKeys(keys ...string) GuardOption {
	return func(g *Guard) {
		g.identityCacheKeys = keys
	}
}

// WithGuardLogger sets the guard's logger.
func WithGuardLogger(logger zerolog.Logger) GuardOption {
	return func(g *Guard) {
		g.logger = logger
	}
}

// IdentityCacheKeys are the durable cache entries the identity-pool SDK
// keeps per pool.
func IdentityCacheKeys(identityPoolID string) []string {
	return []string{
		"aws.cognito.identity-id." + identityPoolID,
		"aws.cognito.identity-providers." + identityPoolID,
	}
}

// NewGuard creates a Guard subscribed to the client's session transitions.
// Call Close when done with it.
func NewGuard(client Client, warmer CredentialWarmer, scoped, durable storage.Store, options ...GuardOption) (*Guard, error) {
	if client == nil {
		return nil, errors.New("[NewGuard] client is required")
	}
	if warmer == nil {
		return nil, errors.New("[NewGuard] credential warmer is required")
	}
	if scoped == nil {
		return nil, errors.New("[NewGuard] scoped store is required")
	}
	if durable == nil {
		return nil, errors.New("[NewGuard] durable store is required")
	}

	g := &Guard{
		client:        client,
		warmer:        warmer,
		scoped:        scoped,
		durable:       durable,
		defaultTarget: DefaultTarget,
		logger:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(g)
	}
	g.unsubscribe = client.Subscribe(g.onSessionChange)
	return g, nil
}

// Close detaches the guard from the client.
func (g *Guard) Close() {
	if g.unsubscribe != nil {
		g.unsubscribe()
	}
}

// State reports the current guard state.
func (g *Guard) State() State {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.state
}

// onSessionChange reacts to session transitions: authentication appearing
// warms the credential cache for the new token; authentication going away
// clears every credential and identity-scoped cache so a later session
// for a different user cannot observe them.
func (g *Guard) onSessionChange(s Session) {
	if s.Loading {
		return
	}

	if s.Authenticated {
		g.lock.Lock()
		g.state = StateAuthenticated
		g.lock.Unlock()
		g.warmer.Prewarm(context.Background(), s.IDToken)
		return
	}

	g.warmer.Invalidate()
	for _, key := range g.identityCacheKeys {
		g.durable.TryDelete(key)
	}

	g.lock.Lock()
	if g.state == StateAuthenticated {
		g.state = StateUnknown
	}
	g.lock.Unlock()
}

// Require gates a protected operation heading for target. If the session
// is already valid it returns immediately. Otherwise it persists target as
// the Pending Redirect Target, then dispatches interactive sign-in with the
// user's language preference and blocks for the round trip. While a
// dispatch is pending, further calls return without starting another one.
// A failed dispatch leaves the guard in StateDenied; the next call starts
// over.
func (g *Guard) Require(ctx context.Context, target string) error {
	g.lock.Lock()
	switch g.state {
	case StateAuthenticated:
		g.lock.Unlock()
		return nil
	case StateRedirectPending:
		g.lock.Unlock()
		return nil
	case StateDenied:
		g.state = StateUnknown
	}
	loaded := g.loaded
	g.loaded = true
	g.lock.Unlock()

	if !loaded {
		if err := g.client.Load(ctx); err != nil {
			return errors.Wrap(err, "[Guard.Require] resolve identity")
		}
	}
	if g.client.Current().Authenticated {
		g.lock.Lock()
		g.state = StateAuthenticated
		g.lock.Unlock()
		return nil
	}

	// The target must be durable before the round trip starts, so an
	// interrupted flow does not lose the intended destination.
	if target == "" {
		target = g.defaultTarget
	}
	g.scoped.TrySet(RedirectStorageKey, target)

	g.lock.Lock()
	g.state = StateRedirectPending
	g.lock.Unlock()

	opts := SignInOptions{Lang: loginlang.ResolveInitial(g.durable)}
	if err := g.client.SignIn(ctx, opts); err != nil {
		g.lock.Lock()
		g.state = StateDenied
		g.lock.Unlock()
		g.logger.Warn().Err(err).Msg("interactive sign-in failed")
		return errors.Wrap(SignInFailedErr, err.Error())
	}

	g.lock.Lock()
	g.state = StateAuthenticated
	g.lock.Unlock()
	return nil
}

// ConsumeRedirectTarget returns the Pending Redirect Target and removes
// it, so a destination is navigated to at most once. Without a stored
// target the default destination is returned.
func (g *Guard) ConsumeRedirectTarget() string {
	target, ok := g.scoped.TryGet(RedirectStorageKey)
	g.scoped.TryDelete(RedirectStorageKey)
	if !ok || target == "" {
		return g.defaultTarget
	}
	return target
}

// SignOut ends the session and removes everything scoped to it: the
// credential cache (through the subscription), the identity-pool caches,
// and any pending redirect marker. Safe to repeat.
func (g *Guard) SignOut(ctx context.Context) error {
	g.scoped.TryDelete(RedirectStorageKey)
	if err := g.client.SignOut(ctx); err != nil {
		return errors.Wrap(err, "[Guard.SignOut]")
	}

	g.lock.Lock()
	g.state = StateUnknown
	g.loaded = false
	g.lock.Unlock()
	return nil
}
