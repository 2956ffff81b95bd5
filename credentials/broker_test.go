package credentials_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognimosyne/mediatranslator/credentials"
	fakeexchanger "github.com/cognimosyne/mediatranslator/credentials/exchangerfake"
	"github.com/cognimosyne/mediatranslator/internal/utils"
	"github.com/cognimosyne/mediatranslator/storage"
)

const (
	testToken      = "eyJ.header.payload"
	otherToken     = "eyJ.other.payload"
	testIdentityID = "ap-northeast-2:11111111-2222-3333-4444-555555555555"
)

type brokerFixture struct {
	store     *storage.MemoryStore
	exchanger *fakeexchanger.FakeExchanger
	broker    *credentials.Broker
	now       time.Time
}

func setupBroker(t *testing.T) *brokerFixture {
	t.Helper()

	f := &brokerFixture{
		store:     storage.NewMemoryStore(),
		exchanger: fakeexchanger.New(),
		now:       time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC),
	}

	broker, err := credentials.NewBroker(f.store, f.exchanger,
		credentials.WithNowTime(func() time.Time { return f.now }),
	)
	require.NoError(t, err)
	f.broker = broker
	return f
}

func (f *brokerFixture) freshCredentials() credentials.Credentials {
	return credentials.Credentials{
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		SessionToken:    "session-token",
		Expiration:      utils.Ptr(f.now.Add(time.Hour)),
		IdentityID:      utils.Ptr(testIdentityID),
	}
}

func TestObtainExchangesOnFirstCall(t *testing.T) {
	f := setupBroker(t)
	f.exchanger.Returns(testToken, f.freshCredentials())

	creds, err := f.broker.Obtain(context.Background(), testToken)
	require.NoError(t, err)
	assert.Equal(t, "AKIDEXAMPLE", creds.AccessKeyID)
	assert.Equal(t, "session-token", creds.SessionToken)
	assert.Equal(t, 1, f.exchanger.Calls())
}

func TestObtainServesCacheWithoutExchanging(t *testing.T) {
	f := setupBroker(t)
	f.exchanger.Returns(testToken, f.freshCredentials())

	_, err := f.broker.Obtain(context.Background(), testToken)
	require.NoError(t, err)

	creds, err := f.broker.Obtain(context.Background(), testToken)
	require.NoError(t, err)
	assert.Equal(t, "AKIDEXAMPLE", creds.AccessKeyID)
	assert.Equal(t, 1, f.exchanger.Calls(), "second call should hit the cache")
}

func TestObtainRefreshesInsideExpiryBuffer(t *testing.T) {
	f := setupBroker(t)

	soon := f.freshCredentials()
	soon.Expiration = utils.Ptr(f.now.Add(90 * time.Second)) // under the two minute buffer
	f.exchanger.Returns(testToken, soon)

	_, err := f.broker.Obtain(context.Background(), testToken)
	require.NoError(t, err)

	replacement := f.freshCredentials()
	replacement.AccessKeyID = "AKIDREPLACED"
	f.exchanger.Returns(testToken, replacement)

	creds, err := f.broker.Obtain(context.Background(), testToken)
	require.NoError(t, err)
	assert.Equal(t, "AKIDREPLACED", creds.AccessKeyID)
	assert.Equal(t, 2, f.exchanger.Calls())
}

func TestObtainTreatsNilExpirationAsValid(t *testing.T) {
	f := setupBroker(t)

	perennial := f.freshCredentials()
	perennial.Expiration = nil
	f.exchanger.Returns(testToken, perennial)

	_, err := f.broker.Obtain(context.Background(), testToken)
	require.NoError(t, err)
	_, err = f.broker.Obtain(context.Background(), testToken)
	require.NoError(t, err)
	assert.Equal(t, 1, f.exchanger.Calls())
}

func TestObtainRejectsBlankTokenBeforeExchanging(t *testing.T) {
	f := setupBroker(t)

	for _, token := range []string{"", "   ", "\n\t"} {
		_, err := f.broker.Obtain(context.Background(), token)
		require.ErrorIs(t, err, credentials.ErrInvalidToken)
	}
	assert.Equal(t, 0, f.exchanger.Calls())
}

func TestObtainCoalescesConcurrentCallers(t *testing.T) {
	f := setupBroker(t)
	f.exchanger.Returns(testToken, f.freshCredentials())

	const callers = 8
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	f.exchanger.Blocks(func() {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
	})

	var wg sync.WaitGroup
	errs := make([]error, callers)
	results := make([]credentials.Credentials, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.broker.Obtain(context.Background(), testToken)
		}(i)
	}

	<-started
	time.Sleep(20 * time.Millisecond) // let the remaining callers queue up
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "AKIDEXAMPLE", results[i].AccessKeyID)
	}
	assert.Equal(t, 1, f.exchanger.Calls(), "concurrent callers should share one exchange")
}

func TestObtainDiscardsCacheWhenIdentityChanges(t *testing.T) {
	f := setupBroker(t)
	f.exchanger.Returns(testToken, f.freshCredentials())

	_, err := f.broker.Obtain(context.Background(), testToken)
	require.NoError(t, err)

	switched := f.freshCredentials()
	switched.AccessKeyID = "AKIDSWITCHED"
	f.exchanger.Returns(otherToken, switched)

	creds, err := f.broker.Obtain(context.Background(), otherToken)
	require.NoError(t, err)
	assert.Equal(t, "AKIDSWITCHED", creds.AccessKeyID)
	assert.Equal(t, 2, f.exchanger.Calls())
}

func TestObtainRejectsCredentialWithoutSessionToken(t *testing.T) {
	f := setupBroker(t)

	incomplete := f.freshCredentials()
	incomplete.SessionToken = ""
	f.exchanger.Returns(testToken, incomplete)

	_, err := f.broker.Obtain(context.Background(), testToken)
	require.ErrorIs(t, err, credentials.ErrIncompleteCredential)

	_, ok := f.store.TryGet(credentials.CacheStorageKey)
	assert.False(t, ok, "failed exchange must not populate the cache")
}

func TestObtainPropagatesExchangeError(t *testing.T) {
	f := setupBroker(t)

	denied := &credentials.ExchangeError{Name: "NotAuthorizedException", Message: "Token expired", StatusCode: 400}
	f.exchanger.Fails(denied)

	_, err := f.broker.Obtain(context.Background(), testToken)
	var exchangeErr *credentials.ExchangeError
	require.ErrorAs(t, err, &exchangeErr)
	assert.True(t, exchangeErr.Denied())
}

func TestInvalidateClearsCacheAndMarker(t *testing.T) {
	f := setupBroker(t)
	f.exchanger.Returns(testToken, f.freshCredentials())

	_, err := f.broker.Obtain(context.Background(), testToken)
	require.NoError(t, err)

	f.broker.Invalidate()
	f.broker.Invalidate() // repeat is harmless

	assert.Equal(t, 0, f.store.Len())

	_, err = f.broker.Obtain(context.Background(), testToken)
	require.NoError(t, err)
	assert.Equal(t, 2, f.exchanger.Calls(), "invalidation should force a fresh exchange")
}

func TestPrewarmSwallowsExchangeFailures(t *testing.T) {
	f := setupBroker(t)
	f.exchanger.Fails(&credentials.ExchangeError{Name: "InternalErrorException", StatusCode: 500})

	f.broker.Prewarm(context.Background(), testToken)
	assert.Equal(t, 1, f.exchanger.Calls())
}
