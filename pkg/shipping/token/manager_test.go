package token_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/parcelforge/shipping/internal/store"
	"github.com/parcelforge/shipping/pkg/shipping"
	"github.com/parcelforge/shipping/pkg/shipping/token"
)

// stubSource counts exchanges and hands out sequenced tokens.
type stubSource struct {
	requests  atomic.Int64
	expiresIn time.Duration
	delay     time.Duration
	err       error
}

func (s *stubSource) RequestToken(ctx context.Context, app *shipping.Application) (string, time.Duration, error) {
	n := s.requests.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return "", 0, s.err
	}
	expiresIn := s.expiresIn
	if expiresIn == 0 {
		expiresIn = time.Hour
	}
	return "token-" + string(rune('0'+n)), expiresIn, nil
}

func newTestManager(t *testing.T, source token.Source, expiresAt *time.Time) (*token.Manager, *store.Memory) {
	t.Helper()

	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.SaveApplication(ctx, &shipping.Application{
		ID:            "app-1",
		Carrier:       shipping.CarrierFedEx,
		ApplicationID: "client-id",
		SharedSecret:  "client-secret",
	}))
	require.NoError(t, mem.SaveToken(ctx, &shipping.Token{
		ID:          "tok-1",
		AccountName: "main",
		Carrier:     shipping.CarrierFedEx,
		AppID:       "app-1",
		AccessToken: "cached-token",
		ExpiresAt:   expiresAt,
	}))

	logger := otelzap.New(zap.NewNop())
	return token.NewManager(shipping.CarrierFedEx, mem, mem, source, logger), mem
}

func TestManager_AccessToken_CachedValid(t *testing.T) {
	source := &stubSource{}
	expiresAt := time.Now().Add(10 * time.Minute)
	mgr, _ := newTestManager(t, source, &expiresAt)

	got, err := mgr.AccessToken(context.Background(), "main")
	require.NoError(t, err)
	assert.Equal(t, "cached-token", got)
	assert.EqualValues(t, 0, source.requests.Load())
}

func TestManager_AccessToken_ExpiredRefreshes(t *testing.T) {
	source := &stubSource{}
	expiresAt := time.Now().Add(-time.Minute)
	mgr, mem := newTestManager(t, source, &expiresAt)

	got, err := mgr.AccessToken(context.Background(), "main")
	require.NoError(t, err)
	assert.Equal(t, "token-1", got)
	assert.EqualValues(t, 1, source.requests.Load())

	// The refreshed token is persisted with its new expiry.
	tok, err := mem.FindToken(context.Background(), "main", shipping.CarrierFedEx)
	require.NoError(t, err)
	assert.Equal(t, "token-1", tok.AccessToken)
	require.NotNil(t, tok.ExpiresAt)
	assert.True(t, tok.ExpiresAt.After(time.Now().Add(30*time.Minute)))
}

func TestManager_AccessToken_WithinMarginRefreshes(t *testing.T) {
	source := &stubSource{}
	// Not yet expired, but inside the safety margin.
	expiresAt := time.Now().Add(30 * time.Second)
	mgr, _ := newTestManager(t, source, &expiresAt)

	got, err := mgr.AccessToken(context.Background(), "main")
	require.NoError(t, err)
	assert.Equal(t, "token-1", got)
	assert.EqualValues(t, 1, source.requests.Load())
}

func TestManager_AccessToken_MissingExpiryRefreshes(t *testing.T) {
	source := &stubSource{}
	mgr, _ := newTestManager(t, source, nil)

	got, err := mgr.AccessToken(context.Background(), "main")
	require.NoError(t, err)
	assert.Equal(t, "token-1", got)
	assert.EqualValues(t, 1, source.requests.Load())
}

func TestManager_AccessToken_ConcurrentSingleRefresh(t *testing.T) {
	source := &stubSource{delay: 20 * time.Millisecond}
	expiresAt := time.Now().Add(-time.Minute)
	mgr, _ := newTestManager(t, source, &expiresAt)

	var wg sync.WaitGroup
	tokens := make([]string, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := mgr.AccessToken(context.Background(), "main")
			assert.NoError(t, err)
			tokens[i] = got
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, source.requests.Load())
	for _, got := range tokens {
		assert.Equal(t, "token-1", got)
	}
}

func TestManager_AccessToken_RefreshError(t *testing.T) {
	source := &stubSource{err: errors.New("invalid_client")}
	expiresAt := time.Now().Add(-time.Minute)
	mgr, _ := newTestManager(t, source, &expiresAt)

	_, err := mgr.AccessToken(context.Background(), "main")
	require.Error(t, err)

	var refreshErr *shipping.TokenRefreshError
	require.ErrorAs(t, err, &refreshErr)
	assert.Equal(t, "main", refreshErr.AccountName)
	assert.Equal(t, shipping.CarrierFedEx, refreshErr.Carrier)
}

func TestManager_AccessToken_UnknownAccount(t *testing.T) {
	source := &stubSource{}
	expiresAt := time.Now().Add(time.Hour)
	mgr, _ := newTestManager(t, source, &expiresAt)

	_, err := mgr.AccessToken(context.Background(), "nobody")
	assert.ErrorIs(t, err, shipping.ErrAccountNotConfigured)
}

func TestManager_Resolve(t *testing.T) {
	source := &stubSource{}
	expiresAt := time.Now().Add(time.Hour)
	mgr, mem := newTestManager(t, source, &expiresAt)

	tok, app, err := mgr.Resolve(context.Background(), "main")
	require.NoError(t, err)
	assert.Equal(t, "main", tok.AccountName)
	assert.Equal(t, "app-1", app.ID)

	// A token pointing at a missing application is a configuration error.
	require.NoError(t, mem.SaveToken(context.Background(), &shipping.Token{
		ID:          "tok-2",
		AccountName: "orphan",
		Carrier:     shipping.CarrierFedEx,
		AppID:       "gone",
	}))
	_, _, err = mgr.Resolve(context.Background(), "orphan")
	assert.ErrorIs(t, err, shipping.ErrApplicationNotConfigured)
}

func TestIsValid(t *testing.T) {
	now := time.Now()

	valid := func(expiresAt time.Time) bool {
		return token.IsValid(&shipping.Token{
			AccessToken: "t",
			ExpiresAt:   &expiresAt,
		}, now)
	}

	assert.True(t, valid(now.Add(2*time.Minute)))
	assert.True(t, valid(now.Add(61*time.Second)))
	assert.False(t, valid(now.Add(60*time.Second)))
	assert.False(t, valid(now.Add(30*time.Second)))
	assert.False(t, valid(now.Add(-time.Second)))

	assert.False(t, token.IsValid(nil, now))
	assert.False(t, token.IsValid(&shipping.Token{AccessToken: "t"}, now))
	expiresAt := now.Add(time.Hour)
	assert.False(t, token.IsValid(&shipping.Token{ExpiresAt: &expiresAt}, now))
}
