package fakeexchanger

import (
	"context"
	"sync"

	"github.com/cognimosyne/mediatranslator/credentials"
)

var _ credentials.Exchanger = (*FakeExchanger)(nil)

// FakeExchanger records every exchange and serves canned results, keyed by
// the token it was called with.
type FakeExchanger struct {
	lock     sync.Mutex
	calls    int
	results  map[string]credentials.Credentials
	err      error
	delay    func() // optional hook, runs inside Exchange before returning
	lastSeen string
}

func New() *FakeExchanger {
	return &FakeExchanger{results: make(map[string]credentials.Credentials)}
}

// Returns registers the credentials handed back for a given token.
func (f *FakeExchanger) Returns(identityToken string, creds credentials.Credentials) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.results[identityToken] = creds
}

// Fails makes every subsequent exchange return err.
func (f *FakeExchanger) Fails(err error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.err = err
}

// Blocks installs a hook that runs inside Exchange, letting tests hold the
// exchange open while concurrent callers pile up.
func (f *FakeExchanger) Blocks(hook func()) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.delay = hook
}

func (f *FakeExchanger) Calls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.calls
}

func (f *FakeExchanger) LastToken() string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.lastSeen
}

func (f *FakeExchanger) Exchange(ctx context.Context, identityToken string) (credentials.Credentials, error) {
	f.lock.Lock()
	f.calls++
	f.lastSeen = identityToken
	err := f.err
	creds := f.results[identityToken]
	hook := f.delay
	f.lock.Unlock()

	if hook != nil {
		hook()
	}
	if err := ctx.Err(); err != nil {
		return credentials.Credentials{}, err
	}
	if err != nil {
		return credentials.Credentials{}, err
	}
	return creds, nil
}
