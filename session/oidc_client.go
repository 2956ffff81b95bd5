package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/browser"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/cognimosyne/mediatranslator/storage"
)

// sessionStorageKey holds the persisted token pair, written to the
// encrypted keystore so tokens never land on disk in the clear.
const sessionStorageKey = "identity-session"

// ProviderConfig describes the OIDC provider the client signs in against.
type ProviderConfig struct {
	Issuer         string
	ClientID       string
	RedirectURI    string
	HostedUIDomain string
	Scopes         []string
}

// OIDCClient implements Client against a hosted OIDC provider using the
// authorization-code + PKCE flow with a loopback redirect. Silent renewal
// is not attempted; continuation relies on the refresh token.
type OIDCClient struct {
	cfg      ProviderConfig
	keystore storage.Store
	openURL  func(url string) error
	nowTime  func() time.Time
	logger   zerolog.Logger

	lock      sync.Mutex
	provider  *oidc.Provider
	oauthCfg  *oauth2.Config
	current   Session
	listeners map[string]func(Session)
}

var _ Client = (*OIDCClient)(nil)

// OIDCClientOption modifies an OIDCClient.
type OIDCClientOption func(*OIDCClient)

// WithOpenURL replaces how the hosted UI is opened (primarily for testing).
func WithOpenURL(open func(url string) error) OIDCClientOption {
	return func(c *OIDCClient) {
		c.openURL = open
	}
}

// WithClientNowTime sets the clock (primarily for testing).
func WithClientNowTime(nowFunc func() time.Time) OIDCClientOption {
	return func(c *OIDCClient) {
		c.nowTime = nowFunc
	}
}

// WithClientLogger sets the client's logger.
func WithClientLogger(logger zerolog.Logger) OIDCClientOption {
	return func(c *OIDCClient) {
		c.logger = logger
	}
}

// NewOIDCClient creates a provider client persisting its token pair into
// keystore.
func NewOIDCClient(cfg ProviderConfig, keystore storage.Store, options ...OIDCClientOption) (*OIDCClient, error) {
	if cfg.Issuer == "" {
		return nil, errors.New("[NewOIDCClient] issuer is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("[NewOIDCClient] client id is required")
	}
	if cfg.RedirectURI == "" {
		return nil, errors.New("[NewOIDCClient] redirect URI is required")
	}
	if keystore == nil {
		return nil, errors.New("[NewOIDCClient] keystore is required")
	}

	c := &OIDCClient{
		cfg:       cfg,
		keystore:  keystore,
		openURL:   browser.OpenURL,
		nowTime:   time.Now,
		logger:    zerolog.Nop(),
		listeners: make(map[string]func(Session)),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Current returns the session as last observed.
func (c *OIDCClient) Current() Session {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.current
}

// Subscribe registers onChange; the returned function detaches it.
func (c *OIDCClient) Subscribe(onChange func(Session)) UnsubscribeFunc {
	c.lock.Lock()
	defer c.lock.Unlock()

	id := uuid.New().String()
	c.listeners[id] = onChange
	return func() {
		c.lock.Lock()
		defer c.lock.Unlock()
		delete(c.listeners, id)
	}
}

func (c *OIDCClient) setSession(s Session) {
	c.lock.Lock()
	c.current = s
	notify := make([]func(Session), 0, len(c.listeners))
	for _, l := range c.listeners {
		notify = append(notify, l)
	}
	c.lock.Unlock()

	for _, l := range notify {
		l(s)
	}
}

type storedSession struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
}

// Load restores a stored session, refreshing an expired identity token
// through the refresh token when one is held. It never opens the browser.
func (c *OIDCClient) Load(ctx context.Context) error {
	c.setSession(Session{Loading: true})

	raw, ok := c.keystore.TryGet(sessionStorageKey)
	if !ok {
		c.setSession(Session{})
		return nil
	}

	var stored storedSession
	if err := json.Unmarshal([]byte(raw), &stored); err != nil || stored.IDToken == "" {
		c.keystore.TryDelete(sessionStorageKey)
		c.setSession(Session{})
		return nil
	}

	claims, err := parseClaimsUnverified(stored.IDToken)
	if err != nil {
		c.keystore.TryDelete(sessionStorageKey)
		c.setSession(Session{})
		return nil
	}

	if claims.ExpiresAt.After(c.nowTime()) {
		c.setSession(Session{
			Authenticated: true,
			IDToken:       stored.IDToken,
			RefreshToken:  stored.RefreshToken,
			Claims:        claims,
		})
		return nil
	}

	if stored.RefreshToken == "" {
		c.keystore.TryDelete(sessionStorageKey)
		c.setSession(Session{})
		return nil
	}
	return c.refresh(ctx, stored.RefreshToken)
}

func (c *OIDCClient) refresh(ctx context.Context, refreshToken string) error {
	oauthCfg, verifier, err := c.ensureProvider(ctx)
	if err != nil {
		c.setSession(Session{Err: err})
		return err
	}

	token, err := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		// The refresh token is spent or revoked; drop the session rather
		// than looping on a dead token.
		c.keystore.TryDelete(sessionStorageKey)
		c.setSession(Session{})
		c.logger.Debug().Err(err).Msg("session refresh failed, signed out")
		return nil
	}

	rawIDToken, _ := token.Extra("id_token").(string)
	if rawIDToken == "" {
		c.keystore.TryDelete(sessionStorageKey)
		c.setSession(Session{})
		return nil
	}

	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		wrapped := errors.Wrap(err, "[OIDCClient.refresh] verify refreshed token")
		c.setSession(Session{Err: wrapped})
		return wrapped
	}

	// Cognito does not rotate the refresh token on refresh.
	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}
	return c.adopt(rawIDToken, token.RefreshToken, idToken)
}

// SignIn runs the interactive authorization-code flow: it serves the
// loopback redirect, opens the hosted UI, and blocks until the round trip
// completes or ctx is done.
func (c *OIDCClient) SignIn(ctx context.Context, opts SignInOptions) error {
	oauthCfg, verifier, err := c.ensureProvider(ctx)
	if err != nil {
		return errors.Wrap(SignInFailedErr, err.Error())
	}

	redirect, err := url.Parse(c.cfg.RedirectURI)
	if err != nil {
		return errors.Wrap(err, "[OIDCClient.SignIn] parse redirect URI")
	}

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return errors.Wrap(SignInFailedErr, err.Error())
	}
	defer listener.Close()

	state := uuid.New().String()
	pkceVerifier := oauth2.GenerateVerifier()

	authOpts := []oauth2.AuthCodeOption{oauth2.S256ChallengeOption(pkceVerifier)}
	if opts.Lang != "" {
		authOpts = append(authOpts, oauth2.SetAuthURLParam("lang", string(opts.Lang)))
	}
	if opts.ScreenHint != "" {
		authOpts = append(authOpts, oauth2.SetAuthURLParam("screen_hint", opts.ScreenHint))
	}
	authURL := oauthCfg.AuthCodeURL(state, authOpts...)

	type callbackResult struct {
		code string
		err  error
	}
	results := make(chan callbackResult, 1)
	deliver := func(r callbackResult) {
		// Only the first callback counts; repeats are dropped.
		select {
		case results <- r:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc(redirect.Path, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			deliver(callbackResult{err: errors.New("[OIDCClient.SignIn] state mismatch")})
		case q.Get("error") != "":
			http.Error(w, q.Get("error"), http.StatusBadRequest)
			deliver(callbackResult{err: errors.Errorf("[OIDCClient.SignIn] provider returned %q: %s", q.Get("error"), q.Get("error_description"))})
		default:
			fmt.Fprint(w, "<html><body>Signed in. You can close this window.</body></html>")
			deliver(callbackResult{code: q.Get("code")})
		}
	})
	server := &http.Server{Handler: mux}
	go server.Serve(listener) //nolint:errcheck
	defer server.Close()

	if err := c.openURL(authURL); err != nil {
		return errors.Wrap(SignInFailedErr, err.Error())
	}
	c.logger.Info().Str("url", authURL).Msg("waiting for hosted UI sign-in")

	var result callbackResult
	select {
	case result = <-results:
	case <-ctx.Done():
		return ctx.Err()
	}
	if result.err != nil {
		return result.err
	}

	token, err := oauthCfg.Exchange(ctx, result.code, oauth2.VerifierOption(pkceVerifier))
	if err != nil {
		return errors.Wrap(err, "[OIDCClient.SignIn] code exchange")
	}

	rawIDToken, _ := token.Extra("id_token").(string)
	if rawIDToken == "" {
		return errors.New("[OIDCClient.SignIn] token response missing id_token")
	}
	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return errors.Wrap(err, "[OIDCClient.SignIn] verify id token")
	}

	return c.adopt(rawIDToken, token.RefreshToken, idToken)
}

func (c *OIDCClient) adopt(rawIDToken, refreshToken string, idToken *oidc.IDToken) error {
	var profile struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&profile); err != nil {
		return errors.Wrap(err, "[OIDCClient.adopt] decode claims")
	}

	payload, err := json.Marshal(storedSession{IDToken: rawIDToken, RefreshToken: refreshToken})
	if err != nil {
		return errors.Wrap(err, "[OIDCClient.adopt] encode session")
	}
	c.keystore.TrySet(sessionStorageKey, string(payload))

	c.setSession(Session{
		Authenticated: true,
		IDToken:       rawIDToken,
		RefreshToken:  refreshToken,
		Claims: Claims{
			Subject:   idToken.Subject,
			Email:     profile.Email,
			IssuedAt:  idToken.IssuedAt,
			ExpiresAt: idToken.Expiry,
		},
	})
	return nil
}

// SignOut discards the stored token pair and ends the hosted UI session.
// Repeating it is harmless.
func (c *OIDCClient) SignOut(ctx context.Context) error {
	c.keystore.TryDelete(sessionStorageKey)
	c.setSession(Session{})

	if c.cfg.HostedUIDomain == "" {
		return nil
	}
	if err := c.openURL(c.LogoutURL()); err != nil {
		c.logger.Warn().Err(err).Msg("could not open hosted UI logout")
	}
	return nil
}

// LogoutURL is the hosted UI logout endpoint,
// {domain}/logout?client_id=...&logout_uri=....
func (c *OIDCClient) LogoutURL() string {
	q := url.Values{}
	q.Set("client_id", c.cfg.ClientID)
	q.Set("logout_uri", c.cfg.RedirectURI)
	return fmt.Sprintf("%s/logout?%s", c.cfg.HostedUIDomain, q.Encode())
}

func (c *OIDCClient) ensureProvider(ctx context.Context) (*oauth2.Config, *oidc.IDTokenVerifier, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.provider == nil {
		provider, err := oidc.NewProvider(ctx, c.cfg.Issuer)
		if err != nil {
			return nil, nil, errors.Wrap(err, "[OIDCClient.ensureProvider] discovery")
		}
		c.provider = provider
		c.oauthCfg = &oauth2.Config{
			ClientID:    c.cfg.ClientID,
			Endpoint:    provider.Endpoint(),
			RedirectURL: c.cfg.RedirectURI,
			Scopes:      c.cfg.Scopes,
		}
	}
	return c.oauthCfg, c.provider.Verifier(&oidc.Config{ClientID: c.cfg.ClientID}), nil
}

// parseClaimsUnverified reads the claims of a stored token without
// signature verification. The token was verified when it was adopted;
// this only decides whether it is still fresh enough to reuse.
func parseClaimsUnverified(rawIDToken string) (Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawIDToken, claims); err != nil {
		return Claims{}, errors.Wrap(err, "[parseClaimsUnverified] parse")
	}

	out := Claims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return Claims{}, errors.New("[parseClaimsUnverified] token has no expiry")
	}
	out.ExpiresAt = exp.Time
	return out, nil
}
