package credentials

import (
	"context"
	"strings"
	"time"

	"github.com/cognimosyne/mediatranslator/internal/utils"
	"github.com/cognimosyne/mediatranslator/storage"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// expiryBuffer is the safety margin before the reported expiration within
// which a cached credential is no longer served.
const expiryBuffer = 2 * time.Minute

// defaultExchangeTimeout bounds a single exchange round trip.
const defaultExchangeTimeout = 30 * time.Second

// Exchanger performs the actual identity-token-for-credentials exchange
// with the external provider.
type Exchanger interface {
	Exchange(ctx context.Context, identityToken string) (Credentials, error)
}

// Broker serves temporary AWS credentials for the current identity token.
// Cached credentials are reused while valid; concurrent requests for the
// same token coalesce onto a single in-flight exchange.
type Broker struct {
	scoped    storage.Store
	exchanger Exchanger
	group     singleflight.Group
	nowTime   func() time.Time
	timeout   time.Duration
	logger    zerolog.Logger
}

// BrokerOption modifies a Broker.
type BrokerOption func(*Broker)

// WithNowTime sets the clock (primarily for testing).
func WithNowTime(nowFunc func() time.Time) BrokerOption {
	return func(b *Broker) {
		b.nowTime = nowFunc
	}
}

// WithExchangeTimeout bounds each exchange round trip.
func WithExchangeTimeout(d time.Duration) BrokerOption {
	return func(b *Broker) {
		b.timeout = d
	}
}

// WithLogger sets the broker's logger.
func WithLogger(logger zerolog.Logger) BrokerOption {
	return func(b *Broker) {
		b.logger = logger
	}
}

// NewBroker creates a Broker caching into the login-scoped store.
func NewBroker(scoped storage.Store, exchanger Exchanger, options ...BrokerOption) (*Broker, error) {
	if scoped == nil {
		return nil, errors.New("[NewBroker] scoped store is required")
	}
	if exchanger == nil {
		return nil, errors.New("[NewBroker] exchanger is required")
	}

	b := &Broker{
		scoped:    scoped,
		exchanger: exchanger,
		nowTime:   time.Now,
		timeout:   defaultExchangeTimeout,
		logger:    zerolog.Nop(),
	}
	for _, opt := range options {
		opt(b)
	}
	return b, nil
}

// Obtain returns a valid credential for identityToken, serving the cache
// when possible and otherwise performing (or joining) an exchange.
func (b *Broker) Obtain(ctx context.Context, identityToken string) (Credentials, error) {
	token := strings.TrimSpace(identityToken)
	if token == "" {
		return Credentials{}, ErrInvalidToken
	}

	fingerprint := Fingerprint(token)

	// A different identity token than the one that minted the cache means
	// the identity switched; the stale credential must not be served.
	if marker, ok := b.scoped.TryGet(lastTokenKey); ok && marker != fingerprint {
		b.scoped.TryDelete(CacheStorageKey)
		b.scoped.TryDelete(lastTokenKey)
	}

	if cached, ok := Load(b.scoped); ok && b.stillValid(cached) {
		return cached, nil
	}

	result, err, _ := b.group.Do(fingerprint, func() (any, error) {
		exchangeCtx, cancel := context.WithTimeout(ctx, b.timeout)
		defer cancel()

		creds, err := b.exchanger.Exchange(exchangeCtx, token)
		if err != nil {
			return nil, errors.Wrap(err, "[Broker.Obtain] exchange")
		}
		if creds.SessionToken == "" {
			return nil, ErrIncompleteCredential
		}

		Persist(b.scoped, &creds)
		b.scoped.TrySet(lastTokenKey, fingerprint)

		b.logger.Debug().
			Str("identity_id", utils.Value(creds.IdentityID)).
			Time("expires_at", utils.Value(creds.Expiration)).
			Msg("issued temporary credentials")

		return creds, nil
	})
	if err != nil {
		return Credentials{}, err
	}
	return result.(Credentials), nil
}

// Prewarm obtains credentials in the background so the first balance query
// after sign-in does not pay the exchange latency. Failures are logged and
// otherwise ignored; the next Obtain surfaces them.
func (b *Broker) Prewarm(ctx context.Context, identityToken string) {
	if _, err := b.Obtain(ctx, identityToken); err != nil {
		b.logger.Warn().Err(err).Msg("credential pre-warm failed")
	}
}

// Invalidate drops the cached credential and the last-token marker. Called
// on sign-out so no credential leaks across identities.
func (b *Broker) Invalidate() {
	b.scoped.TryDelete(CacheStorageKey)
	b.scoped.TryDelete(lastTokenKey)
}

func (b *Broker) stillValid(creds Credentials) bool {
	if creds.Expiration == nil {
		// Inherited provider behavior: no expiration reads as valid
		// indefinitely. The caller accepts this risk.
		b.logger.Debug().Msg("reusing cached credentials without expiration")
		return true
	}
	return creds.Expiration.Sub(b.nowTime()) > expiryBuffer
}
