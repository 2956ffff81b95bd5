package session

import (
	"context"

	"github.com/cognimosyne/mediatranslator/loginlang"
)

// SignInOptions tune the interactive sign-in.
type SignInOptions struct {
	// Lang localizes the hosted login UI.
	Lang loginlang.Code

	// ScreenHint lands the hosted UI on a specific screen, e.g. "signup".
	ScreenHint string
}

// UnsubscribeFunc detaches a listener registered with Subscribe.
type UnsubscribeFunc func()

// Client is the identity-provider client owning the session lifecycle.
// The Guard reads session state through it and reacts to change
// notifications; it never mutates the session directly.
type Client interface {
	// Load resolves the identity status, restoring a stored session and
	// refreshing its tokens when possible. It never performs interactive
	// sign-in.
	Load(ctx context.Context) error

	// SignIn runs the interactive authorization-code flow. It blocks until
	// the provider round trip completes or ctx is done.
	SignIn(ctx context.Context, opts SignInOptions) error

	// SignOut ends the session with the provider and discards stored
	// tokens. Calling it while signed out is a no-op.
	SignOut(ctx context.Context) error

	// Current returns the session as last observed.
	Current() Session

	// Subscribe registers onChange to run after every session transition.
	Subscribe(onChange func(Session)) UnsubscribeFunc
}
