// Package token manages per-account OAuth access tokens: cache lookup,
// expiry checking with a safety margin, and serialized refresh.
package token

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"

	"github.com/parcelforge/shipping/pkg/shipping"
)

// expiryMargin is subtracted from the carrier-reported lifetime so a token
// is never presented within a minute of expiring.
const expiryMargin = 60 * time.Second

// Source performs the carrier-specific client-credentials exchange.
type Source interface {
	// RequestToken exchanges application credentials for an access token and
	// its lifetime.
	RequestToken(ctx context.Context, app *shipping.Application) (accessToken string, expiresIn time.Duration, err error)
}

// Manager caches OAuth tokens per account and refreshes them on demand.
// Refreshes for the same account are serialized; different accounts refresh
// independently.
type Manager struct {
	carrier shipping.CarrierType
	tokens  shipping.TokenStore
	apps    shipping.ApplicationStore
	source  Source
	logger  *otelzap.Logger
	now     func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a token manager for one carrier.
func NewManager(carrier shipping.CarrierType, tokens shipping.TokenStore, apps shipping.ApplicationStore, source Source, logger *otelzap.Logger) *Manager {
	return &Manager{
		carrier: carrier,
		tokens:  tokens,
		apps:    apps,
		source:  source,
		logger:  logger,
		now:     time.Now,
		locks:   make(map[string]*sync.Mutex),
	}
}

// Resolve loads the token and application records for an account without
// refreshing. Used when binding an adapter to an account.
func (m *Manager) Resolve(ctx context.Context, accountName string) (*shipping.Token, *shipping.Application, error) {
	tok, err := m.tokens.FindToken(ctx, accountName, m.carrier)
	if err != nil {
		return nil, nil, err
	}
	app, err := m.apps.FindApplication(ctx, tok.AppID, m.carrier)
	if err != nil {
		return nil, nil, err
	}
	return tok, app, nil
}

// AccessToken returns a currently valid access token for the account,
// refreshing through the source when the cached one is missing or inside
// the expiry margin.
func (m *Manager) AccessToken(ctx context.Context, accountName string) (string, error) {
	tok, err := m.tokens.FindToken(ctx, accountName, m.carrier)
	if err != nil {
		return "", err
	}
	if IsValid(tok, m.now()) {
		return tok.AccessToken, nil
	}

	lock := m.accountLock(accountName)
	lock.Lock()
	defer lock.Unlock()

	// Another caller may have refreshed while we waited on the lock.
	tok, err = m.tokens.FindToken(ctx, accountName, m.carrier)
	if err != nil {
		return "", err
	}
	if IsValid(tok, m.now()) {
		return tok.AccessToken, nil
	}

	app, err := m.apps.FindApplication(ctx, tok.AppID, m.carrier)
	if err != nil {
		return "", err
	}

	accessToken, expiresIn, err := m.source.RequestToken(ctx, app)
	if err != nil {
		return "", &shipping.TokenRefreshError{Carrier: m.carrier, AccountName: accountName, Cause: err}
	}

	expiresAt := m.now().Add(expiresIn - expiryMargin)
	tok.AccessToken = accessToken
	tok.ExpiresAt = &expiresAt
	if err := m.tokens.SaveToken(ctx, tok); err != nil {
		return "", err
	}

	m.logger.Ctx(ctx).Info("refreshed access token",
		zap.String("carrier", string(m.carrier)),
		zap.String("account", accountName),
		zap.Time("expires_at", expiresAt))

	return accessToken, nil
}

// IsValid reports whether a token can still be presented at the given time,
// honoring the expiry margin.
func IsValid(tok *shipping.Token, now time.Time) bool {
	if tok == nil || tok.AccessToken == "" || tok.ExpiresAt == nil {
		return false
	}
	return tok.ExpiresAt.After(now.Add(expiryMargin))
}

func (m *Manager) accountLock(accountName string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lock, ok := m.locks[accountName]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	m.locks[accountName] = lock
	return lock
}
