// Package shipping provides the canonical data model and carrier abstraction
// for multi-carrier parcel shipping.
package shipping

import (
	"context"
)

// Carrier defines the interface that all carrier adapters implement. An
// adapter is bound to one carrier account at a time via SetAccount; every
// other operation fails with ErrAccountNotSet until an account is bound.
type Carrier interface {
	// Name returns the bound account name, or the carrier type when no
	// account is bound yet.
	Name() string

	// Type returns the carrier identifier.
	Type() CarrierType

	// SetAccount binds the adapter to a configured carrier account. It
	// resolves the account's token and application records and selects the
	// sandbox or live endpoint.
	SetAccount(ctx context.Context, accountName string) error

	// GetRates returns rate quotes for a shipment.
	GetRates(ctx context.Context, req *ShipmentRequest) ([]Rate, error)

	// CreateLabel creates a shipment and returns one label per package.
	CreateLabel(ctx context.Context, req *ShipmentRequest) ([]Label, error)

	// CreateReturnLabel creates a return shipment for a previously shipped
	// package.
	CreateReturnLabel(ctx context.Context, req *ShipmentRequest, ret *ReturnOptions) ([]Label, error)

	// CancelLabel voids a label by tracking number. It returns true when the
	// label is cancelled, including when it was already cancelled before the
	// call. The actor is recorded for audit.
	CancelLabel(ctx context.Context, trackingNumber, actor string) (bool, error)

	// TrackShipment returns the tracking history for a tracking number.
	TrackShipment(ctx context.Context, trackingNumber string) (*TrackingResult, error)

	// SetMarkup sets the cost multiplier applied to created labels:
	// finalCost = base * (1 + markup).
	SetMarkup(markup float64)
}
