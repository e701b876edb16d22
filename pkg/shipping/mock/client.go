// Package mock provides a mock carrier implementation for testing.
package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/parcelforge/shipping/pkg/shipping"
)

// Client is a mock carrier. It returns canned responses and can simulate
// errors and latency; the On* hooks override individual operations.
type Client struct {
	carrierType shipping.CarrierType
	account     string

	Rates   []shipping.Rate
	Err     error
	Latency time.Duration

	OnGetRates    func(ctx context.Context, req *shipping.ShipmentRequest) ([]shipping.Rate, error)
	OnCreateLabel func(ctx context.Context, req *shipping.ShipmentRequest) ([]shipping.Label, error)
}

// New creates a new mock carrier of the given type.
func New(t shipping.CarrierType) *Client {
	return &Client{carrierType: t}
}

// Name returns the bound account name, or the carrier type when unbound.
func (c *Client) Name() string {
	if c.account != "" {
		return c.account
	}
	return string(c.carrierType)
}

// Type returns the carrier identifier.
func (c *Client) Type() shipping.CarrierType {
	return c.carrierType
}

// SetAccount binds the mock to an account name without any lookups.
func (c *Client) SetAccount(ctx context.Context, accountName string) error {
	c.account = accountName
	return nil
}

// SetMarkup is a no-op on the mock.
func (c *Client) SetMarkup(markup float64) {}

// GetRates returns the configured rates, stamped with the bound account.
func (c *Client) GetRates(ctx context.Context, req *shipping.ShipmentRequest) ([]shipping.Rate, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	if c.OnGetRates != nil {
		return c.OnGetRates(ctx, req)
	}
	if c.Err != nil {
		return nil, c.Err
	}

	rates := make([]shipping.Rate, len(c.Rates))
	copy(rates, c.Rates)
	for i := range rates {
		rates[i].Carrier = c.carrierType
		rates[i].AccountName = c.account
	}
	return rates, nil
}

// CreateLabel returns one canned label per package.
func (c *Client) CreateLabel(ctx context.Context, req *shipping.ShipmentRequest) ([]shipping.Label, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	if c.OnCreateLabel != nil {
		return c.OnCreateLabel(ctx, req)
	}
	if c.Err != nil {
		return nil, c.Err
	}

	now := time.Now()
	labels := make([]shipping.Label, 0, len(req.Packages))
	for i, pkg := range req.Packages {
		labels = append(labels, shipping.Label{
			ID:             fmt.Sprintf("%s-label-%d-%d", c.carrierType, now.UnixNano(), i),
			Carrier:        c.carrierType,
			AccountName:    c.account,
			TrackingNumber: fmt.Sprintf("MOCK%d%03d", now.UnixNano()%1_000_000_000, i),
			ServiceType:    req.ServiceType,
			Currency:       "USD",
			ImageFormat:    "PDF",
			ShipperInfo:    req.Shipper,
			RecipientInfo:  req.Recipient,
			PackageInfo:    pkg,
			Status:         shipping.LabelActive,
			CreatedAt:      now,
		})
	}
	return labels, nil
}

// CreateReturnLabel returns a single canned return label.
func (c *Client) CreateReturnLabel(ctx context.Context, req *shipping.ShipmentRequest, ret *shipping.ReturnOptions) ([]shipping.Label, error) {
	labels, err := c.CreateLabel(ctx, req)
	if err != nil {
		return nil, err
	}
	for i := range labels {
		labels[i].IsReturn = true
		if ret != nil {
			labels[i].RMANumber = ret.RMANumber
		}
	}
	return labels, nil
}

// CancelLabel reports success without tracking state.
func (c *Client) CancelLabel(ctx context.Context, trackingNumber, actor string) (bool, error) {
	if err := c.wait(ctx); err != nil {
		return false, err
	}
	if c.Err != nil {
		return false, c.Err
	}
	return true, nil
}

// TrackShipment returns a canned in-transit history.
func (c *Client) TrackShipment(ctx context.Context, trackingNumber string) (*shipping.TrackingResult, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	if c.Err != nil {
		return nil, c.Err
	}

	now := time.Now()
	return &shipping.TrackingResult{
		TrackingNumber: trackingNumber,
		Status:         "IN_TRANSIT",
		Events: []shipping.TrackingEvent{
			{Timestamp: now.Add(-24 * time.Hour), Description: "Picked up", Location: "Origin", Status: "PU"},
			{Timestamp: now.Add(-2 * time.Hour), Description: "In transit", Location: "Hub", Status: "IT"},
		},
	}, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.Latency <= 0 {
		return nil
	}
	select {
	case <-time.After(c.Latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ shipping.Carrier = (*Client)(nil)
