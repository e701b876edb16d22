package ups

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/parcelforge/shipping/pkg/shipping"
)

// MockAPIClient is a mock implementation of APIClient for testing and mock
// mode. Responses can be overridden per call through the On* hooks.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	// TokenRequests counts OAuth exchanges, for asserting refresh behavior.
	TokenRequests int

	OnRequestToken    func(ctx context.Context, app *shipping.Application) (string, time.Duration, error)
	OnGetRates        func(ctx context.Context, req *RateRequest) (*RateResponse, error)
	OnCreateShipment  func(ctx context.Context, req *ShipRequest) (*ShipResponse, error)
	OnVoidShipment    func(ctx context.Context, trackingNumber string) (*VoidResponse, error)
	OnTrack           func(ctx context.Context, trackingNumber string) (*TrackResponse, error)
	OnValidateAddress func(ctx context.Context, req *XAVRequest) (*XAVResponse, error)
}

// NewMockAPIClient creates a new mock API client.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

func (m *MockAPIClient) Configure(baseURL string, tokens TokenFunc) {}

func (m *MockAPIClient) simulate() error {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}
	if m.SimulateErrors {
		apiErr := &APIError{StatusCode: 500}
		apiErr.Response.Errors = []APIErrorDetail{{Code: "MOCK.ERROR", Message: "simulated api error"}}
		return apiErr
	}
	return nil
}

// RequestToken returns a mock access token.
func (m *MockAPIClient) RequestToken(ctx context.Context, app *shipping.Application) (string, time.Duration, error) {
	m.TokenRequests++
	if m.SimulateErrors {
		return "", 0, m.simulate()
	}
	if m.OnRequestToken != nil {
		return m.OnRequestToken(ctx, app)
	}
	return "mock-ups-token-" + uuid.New().String(), time.Hour, nil
}

// GetRates returns mock rate quotes with negotiated figures.
func (m *MockAPIClient) GetRates(ctx context.Context, req *RateRequest) (*RateResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGetRates != nil {
		return m.OnGetRates(ctx, req)
	}

	resp := &RateResponse{}
	resp.RateResponse.RatedShipment = []RatedShipment{
		{
			Service:      CodeDescription{Code: "03"},
			TotalCharges: Money{CurrencyCode: "USD", MonetaryValue: "14.23"},
			NegotiatedRateCharges: &ChargeBreakdown{
				TotalCharge: Money{CurrencyCode: "USD", MonetaryValue: "12.80"},
			},
		},
		{
			Service:            CodeDescription{Code: "02"},
			TotalCharges:       Money{CurrencyCode: "USD", MonetaryValue: "28.40"},
			GuaranteedDelivery: &GuaranteedDelivery{BusinessDaysInTransit: "2"},
		},
		{
			Service:            CodeDescription{Code: "01"},
			TotalCharges:       Money{CurrencyCode: "USD", MonetaryValue: "52.10"},
			GuaranteedDelivery: &GuaranteedDelivery{BusinessDaysInTransit: "1", DeliveryByTime: "10:30 A.M."},
		},
	}
	return resp, nil
}

// mockLabelImage is a one-pixel GIF.
var mockLabelImage = base64.StdEncoding.EncodeToString([]byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\x00\x00\x00\xff\xff\xff,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;"))

// CreateShipment creates a mock shipment with one package result per
// requested package.
func (m *MockAPIClient) CreateShipment(ctx context.Context, req *ShipRequest) (*ShipResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCreateShipment != nil {
		return m.OnCreateShipment(ctx, req)
	}

	results := ShipmentResults{
		ShipmentIdentificationNumber: fmt.Sprintf("1Z%09d", time.Now().UnixNano()%1000000000),
		ShipmentCharges: &ShipmentCharges{
			TotalCharges: Money{CurrencyCode: "USD", MonetaryValue: "16.75"},
			ItemizedCharges: []ItemizedCharge{
				{Code: "375", Description: "Fuel Surcharge", MonetaryValue: "1.45"},
			},
		},
		NegotiatedRateCharges: &ChargeBreakdown{
			TotalCharge: Money{CurrencyCode: "USD", MonetaryValue: "15.20"},
			ItemizedCharges: []ItemizedCharge{
				{Code: "375", Description: "Fuel Surcharge", MonetaryValue: "1.30"},
			},
		},
	}
	for i := range req.ShipmentRequest.Shipment.Package {
		results.PackageResults = append(results.PackageResults, PackageResult{
			TrackingNumber: fmt.Sprintf("1Z%09d%03d", time.Now().UnixNano()%1000000000, i),
			ShippingLabel: &ShippingLabel{
				ImageFormat:  CodeDescription{Code: "GIF"},
				GraphicImage: mockLabelImage,
			},
		})
	}

	resp := &ShipResponse{}
	resp.ShipmentResponse.ShipmentResults = results
	return resp, nil
}

// VoidShipment voids a mock shipment.
func (m *MockAPIClient) VoidShipment(ctx context.Context, trackingNumber string) (*VoidResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnVoidShipment != nil {
		return m.OnVoidShipment(ctx, trackingNumber)
	}

	resp := &VoidResponse{}
	resp.VoidShipmentResponse.SummaryResult.Status = CodeDescription{Code: "1", Description: "Success"}
	return resp, nil
}

// Track returns mock tracking detail.
func (m *MockAPIClient) Track(ctx context.Context, trackingNumber string) (*TrackResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnTrack != nil {
		return m.OnTrack(ctx, trackingNumber)
	}

	now := time.Now()
	pkg := TrackPackage{TrackingNumber: trackingNumber}
	pkg.CurrentStatus.Description = "In Transit"
	pkg.CurrentStatus.Code = "IT"

	pickup := TrackActivity{
		Date: now.Add(-30 * time.Hour).Format("20060102"),
		Time: now.Add(-30 * time.Hour).Format("150405"),
	}
	pickup.Status.Type = "P"
	pickup.Status.Description = "Pickup Scan"
	pickup.Location.Address.City = "Louisville"
	pickup.Location.Address.StateProvince = "KY"
	pickup.Location.Address.Country = "US"

	departed := TrackActivity{
		Date: now.Add(-8 * time.Hour).Format("20060102"),
		Time: now.Add(-8 * time.Hour).Format("150405"),
	}
	departed.Status.Type = "I"
	departed.Status.Description = "Departed from Facility"
	pkg.Activity = []TrackActivity{departed, pickup}

	pkg.DeliveryDate = []TrackDeliveryDate{
		{Type: "SDD", Date: now.Add(40 * time.Hour).Format("20060102")},
	}

	resp := &TrackResponse{}
	resp.TrackResponse.Shipment = []TrackShipment{{Package: []TrackPackage{pkg}}}
	return resp, nil
}

// ValidateAddress echoes the input address back as a commercial candidate.
func (m *MockAPIClient) ValidateAddress(ctx context.Context, req *XAVRequest) (*XAVResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnValidateAddress != nil {
		return m.OnValidateAddress(ctx, req)
	}

	resp := &XAVResponse{}
	resp.XAVResponse.Candidate = []XAVCandidate{
		{
			AddressClassification: &CodeDescription{Code: "1", Description: "Commercial"},
			AddressKeyFormat:      req.XAVRequest.AddressKeyFormat,
		},
	}
	return resp, nil
}

var _ APIClient = (*MockAPIClient)(nil)
