package fedex

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/parcelforge/shipping/pkg/shipping"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	// TokenRequests counts RequestToken calls, for asserting refresh
	// behavior in tests.
	TokenRequests int

	OnRequestToken    func(ctx context.Context, app *shipping.Application) (string, time.Duration, error)
	OnGetRates        func(ctx context.Context, req *RateRequest) (*RateResponse, error)
	OnCreateShipment  func(ctx context.Context, req *ShipmentRequest) (*ShipResponse, error)
	OnCancelShipment  func(ctx context.Context, req *CancelRequest) (*CancelResponse, error)
	OnTrack           func(ctx context.Context, req *TrackRequest) (*TrackResponse, error)
	OnValidateAddress func(ctx context.Context, req *AddressValidationRequest) (*AddressValidationResponse, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// Configure is a no-op for the mock.
func (m *MockAPIClient) Configure(baseURL string, tokens TokenFunc) {}

func (m *MockAPIClient) simulate() error {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}
	if m.SimulateErrors {
		return &APIError{Errors: []APIErrorDetail{{Code: "MOCK.ERROR", Message: "Simulated API error"}}}
	}
	return nil
}

// RequestToken returns a mock access token.
func (m *MockAPIClient) RequestToken(ctx context.Context, app *shipping.Application) (string, time.Duration, error) {
	m.TokenRequests++
	if err := m.simulate(); err != nil {
		return "", 0, err
	}
	if m.OnRequestToken != nil {
		return m.OnRequestToken(ctx, app)
	}
	return "mock-fedex-token-" + uuid.New().String()[:8], time.Hour, nil
}

// GetRates returns mock rate quotes.
func (m *MockAPIClient) GetRates(ctx context.Context, req *RateRequest) (*RateResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGetRates != nil {
		return m.OnGetRates(ctx, req)
	}

	resp := &RateResponse{}
	resp.Output.RateReplyDetails = []RateReplyDetail{
		{
			ServiceType: "FEDEX_GROUND",
			RatedShipmentDetails: []RatedShipmentDetail{
				{RateType: "ACCOUNT", TotalNetCharge: 18.54, Currency: "USD"},
				{RateType: "LIST", TotalNetCharge: 22.10, Currency: "USD"},
			},
		},
		{
			ServiceType: "FEDEX_EXPRESS_SAVER",
			RatedShipmentDetails: []RatedShipmentDetail{
				{RateType: "ACCOUNT", TotalNetCharge: 34.20, Currency: "USD"},
			},
		},
		{
			ServiceType: "PRIORITY_OVERNIGHT",
			RatedShipmentDetails: []RatedShipmentDetail{
				{RateType: "ACCOUNT", TotalNetCharge: 68.75, Currency: "USD"},
			},
		},
	}
	return resp, nil
}

// CreateShipment creates a mock shipment with one package detail and piece
// response per requested line item.
func (m *MockAPIClient) CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCreateShipment != nil {
		return m.OnCreateShipment(ctx, req)
	}

	shipment := TransactionShipment{
		ServiceType: req.RequestedShipment.ServiceType,
	}
	shipment.CompletedShipmentDetail.ShipmentRating.ShipmentRateDetails = []ShipmentRateDetail{
		{
			TotalNetCharge: 25.30,
			Currency:       "USD",
			Surcharges: []Surcharge{
				{SurchargeType: "FUEL", Amount: 2.15},
			},
		},
	}

	for i := range req.RequestedShipment.RequestedPackageLineItems {
		trackingNumber := fmt.Sprintf("7%011d", time.Now().UnixNano()%100000000000+int64(i))
		detail := CompletedPackageDetail{
			TrackingIDs: []TrackingID{{TrackingNumber: trackingNumber, TrackingIDType: "FEDEX"}},
		}
		detail.PackageRating.PackageRateDetails = []PackageRateDetail{{}}
		shipment.CompletedShipmentDetail.CompletedPackageDetails = append(
			shipment.CompletedShipmentDetail.CompletedPackageDetails, detail)

		shipment.PieceResponses = append(shipment.PieceResponses, PieceResponse{
			PackageDocuments: []PackageDocument{
				{
					ContentType: "LABEL",
					DocType:     "PDF",
					URL:         fmt.Sprintf("https://mock.fedex.com/label/%s.pdf", trackingNumber),
				},
			},
		})
	}

	resp := &ShipResponse{}
	resp.Output.TransactionShipments = []TransactionShipment{shipment}
	return resp, nil
}

// CancelShipment voids a mock shipment.
func (m *MockAPIClient) CancelShipment(ctx context.Context, req *CancelRequest) (*CancelResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCancelShipment != nil {
		return m.OnCancelShipment(ctx, req)
	}

	resp := &CancelResponse{}
	resp.Output.CancelledShipment = true
	return resp, nil
}

// Track returns mock tracking detail.
func (m *MockAPIClient) Track(ctx context.Context, req *TrackRequest) (*TrackResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnTrack != nil {
		return m.OnTrack(ctx, req)
	}

	trackingNumber := ""
	if len(req.TrackingInfo) > 0 {
		trackingNumber = req.TrackingInfo[0].TrackingNumberInfo.TrackingNumber
	}

	now := time.Now()
	result := TrackResult{}
	result.LatestStatusDetail.Description = "In transit"
	result.LatestStatusDetail.DerivedCode = "IT"
	result.ScanEvents = []ScanEvent{
		{
			Date:             now.Add(-36 * time.Hour).Format(time.RFC3339),
			EventDescription: "Picked up",
			DerivedStatus:    "PU",
		},
		{
			Date:             now.Add(-12 * time.Hour).Format(time.RFC3339),
			EventDescription: "Departed FedEx hub",
			DerivedStatus:    "IT",
		},
	}
	result.ScanEvents[0].ScanLocation.City = "Memphis"
	result.ScanEvents[0].ScanLocation.StateOrProvinceCode = "TN"
	result.ScanEvents[0].ScanLocation.CountryCode = "US"

	resp := &TrackResponse{}
	resp.Output.CompleteTrackResults = []CompleteTrackResult{
		{TrackingNumber: trackingNumber, TrackResults: []TrackResult{result}},
	}
	return resp, nil
}

// ValidateAddress echoes the input address back with a BUSINESS
// classification.
func (m *MockAPIClient) ValidateAddress(ctx context.Context, req *AddressValidationRequest) (*AddressValidationResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnValidateAddress != nil {
		return m.OnValidateAddress(ctx, req)
	}

	resp := &AddressValidationResponse{}
	for _, toValidate := range req.AddressesToValidate {
		resp.Output.ResolvedAddresses = append(resp.Output.ResolvedAddresses, ResolvedAddress{
			StreetLinesToken:    toValidate.Address.StreetLines,
			City:                toValidate.Address.City,
			StateOrProvinceCode: toValidate.Address.StateOrProvinceCode,
			PostalCode:          toValidate.Address.PostalCode,
			CountryCode:         toValidate.Address.CountryCode,
			Classification:      "BUSINESS",
		})
	}
	return resp, nil
}

var _ APIClient = (*MockAPIClient)(nil)
