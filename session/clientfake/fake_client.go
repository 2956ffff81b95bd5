package fakeclient

import (
	"context"
	"strconv"
	"sync"

	"github.com/cognimosyne/mediatranslator/session"
)

var _ session.Client = (*FakeClient)(nil)

// FakeClient is an in-memory identity-provider client. Tests script its
// sign-in outcome and inspect what it was called with.
type FakeClient struct {
	lock      sync.Mutex
	current   session.Session
	listeners map[string]func(session.Session)
	nextID    int

	signInSession session.Session
	signInErr     error
	signInHook    func()

	loadCalls    int
	signInCalls  int
	signOutCalls int
	lastSignIn   session.SignInOptions
}

func New() *FakeClient {
	return &FakeClient{listeners: make(map[string]func(session.Session))}
}

// SignInSucceedsWith makes SignIn adopt s and notify subscribers.
func (f *FakeClient) SignInSucceedsWith(s session.Session) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.signInSession = s
	f.signInErr = nil
}

// SignInFails makes SignIn return err without a session change.
func (f *FakeClient) SignInFails(err error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.signInErr = err
}

// SignInBlocks installs a hook that runs inside SignIn, letting tests hold
// the round trip open.
func (f *FakeClient) SignInBlocks(hook func()) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.signInHook = hook
}

// SetSession replaces the current session and notifies subscribers, as if
// the provider reported a transition.
func (f *FakeClient) SetSession(s session.Session) {
	f.lock.Lock()
	f.current = s
	notify := make([]func(session.Session), 0, len(f.listeners))
	for _, l := range f.listeners {
		notify = append(notify, l)
	}
	f.lock.Unlock()

	for _, l := range notify {
		l(s)
	}
}

func (f *FakeClient) LoadCalls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.loadCalls
}

func (f *FakeClient) SignInCalls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.signInCalls
}

func (f *FakeClient) SignOutCalls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.signOutCalls
}

func (f *FakeClient) LastSignInOptions() session.SignInOptions {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.lastSignIn
}

func (f *FakeClient) Load(_ context.Context) error {
	f.lock.Lock()
	f.loadCalls++
	current := f.current
	f.lock.Unlock()

	f.SetSession(current)
	return nil
}

func (f *FakeClient) SignIn(_ context.Context, opts session.SignInOptions) error {
	f.lock.Lock()
	f.signInCalls++
	f.lastSignIn = opts
	err := f.signInErr
	next := f.signInSession
	hook := f.signInHook
	f.lock.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return err
	}
	f.SetSession(next)
	return nil
}

func (f *FakeClient) SignOut(_ context.Context) error {
	f.lock.Lock()
	f.signOutCalls++
	f.lock.Unlock()

	f.SetSession(session.Session{})
	return nil
}

func (f *FakeClient) Current() session.Session {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.current
}

func (f *FakeClient) Subscribe(onChange func(session.Session)) session.UnsubscribeFunc {
	f.lock.Lock()
	defer f.lock.Unlock()

	id := strconv.Itoa(f.nextID)
	f.nextID++
	f.listeners[id] = onChange
	return func() {
		f.lock.Lock()
		defer f.lock.Unlock()
		delete(f.listeners, id)
	}
}
