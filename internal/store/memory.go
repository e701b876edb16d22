// Package store provides persistence for labels, OAuth tokens, application
// credentials and label artifacts, with an in-memory implementation for
// development and a Postgres implementation for production.
package store

import (
	"context"
	"sync"

	"github.com/parcelforge/shipping/pkg/shipping"
)

type tokenKey struct {
	account string
	carrier shipping.CarrierType
}

type appKey struct {
	id      string
	carrier shipping.CarrierType
}

// Memory is an in-memory implementation of the label, token and application
// stores. Safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	labels map[string]shipping.Label
	tokens map[tokenKey]shipping.Token
	apps   map[appKey]shipping.Application
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		labels: make(map[string]shipping.Label),
		tokens: make(map[tokenKey]shipping.Token),
		apps:   make(map[appKey]shipping.Application),
	}
}

func (m *Memory) CreateLabel(ctx context.Context, label *shipping.Label) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.labels[label.TrackingNumber] = *label
	return nil
}

func (m *Memory) FindLabel(ctx context.Context, trackingNumber string) (*shipping.Label, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	label, ok := m.labels[trackingNumber]
	if !ok {
		return nil, shipping.ErrLabelNotFound
	}
	return &label, nil
}

func (m *Memory) UpdateLabel(ctx context.Context, label *shipping.Label) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.labels[label.TrackingNumber] = *label
	return nil
}

func (m *Memory) FindToken(ctx context.Context, accountName string, carrier shipping.CarrierType) (*shipping.Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tok, ok := m.tokens[tokenKey{account: accountName, carrier: carrier}]
	if !ok {
		return nil, shipping.ErrAccountNotConfigured
	}
	return &tok, nil
}

func (m *Memory) SaveToken(ctx context.Context, token *shipping.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[tokenKey{account: token.AccountName, carrier: token.Carrier}] = *token
	return nil
}

func (m *Memory) FindApplication(ctx context.Context, appID string, carrier shipping.CarrierType) (*shipping.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	app, ok := m.apps[appKey{id: appID, carrier: carrier}]
	if !ok {
		return nil, shipping.ErrApplicationNotConfigured
	}
	return &app, nil
}

// SaveApplication registers application credentials. Used at startup when
// credentials come from configuration rather than the database.
func (m *Memory) SaveApplication(ctx context.Context, app *shipping.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apps[appKey{id: app.ID, carrier: app.Carrier}] = *app
	return nil
}

var (
	_ shipping.LabelStore       = (*Memory)(nil)
	_ shipping.TokenStore       = (*Memory)(nil)
	_ shipping.ApplicationStore = (*Memory)(nil)
)
