package shipping

import (
	"context"
)

// LabelStore persists created labels and their cancellation bookkeeping.
type LabelStore interface {
	// CreateLabel stores a new label record.
	CreateLabel(ctx context.Context, label *Label) error

	// FindLabel returns the label for a tracking number, or ErrLabelNotFound.
	FindLabel(ctx context.Context, trackingNumber string) (*Label, error)

	// UpdateLabel persists changes to an existing label record.
	UpdateLabel(ctx context.Context, label *Label) error
}

// TokenStore persists per-account OAuth tokens. Each (account, carrier) pair
// has at most one current token record.
type TokenStore interface {
	// FindToken returns the token record for an account, or
	// ErrAccountNotConfigured when none exists.
	FindToken(ctx context.Context, accountName string, carrier CarrierType) (*Token, error)

	// SaveToken creates or updates the token record for its account.
	SaveToken(ctx context.Context, token *Token) error
}

// ApplicationStore resolves OAuth application credentials.
type ApplicationStore interface {
	// FindApplication returns the application record by ID, or
	// ErrApplicationNotConfigured when none exists.
	FindApplication(ctx context.Context, appID string, carrier CarrierType) (*Application, error)
}

// ArtifactStore persists label images returned inline by a carrier and
// returns a stable URL for the stored artifact.
type ArtifactStore interface {
	// SaveArtifact decodes and stores label image data. Format is the
	// carrier's image format code (e.g. "PDF", "ZPLII").
	SaveArtifact(ctx context.Context, trackingNumber, format string, data []byte) (string, error)
}
