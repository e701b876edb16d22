package ups_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/parcelforge/shipping/internal/store"
	"github.com/parcelforge/shipping/pkg/shipping"
	"github.com/parcelforge/shipping/pkg/shipping/ups"
)

func newTestClient(t *testing.T, mockClient *ups.MockAPIClient) (*ups.Client, *store.Memory) {
	t.Helper()

	mem := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.SaveApplication(ctx, &shipping.Application{
		ID:            "app-ups-1",
		Carrier:       shipping.CarrierUPS,
		ApplicationID: "client-id",
		SharedSecret:  "client-secret",
		Name:          "Production",
	}))
	require.NoError(t, mem.SaveToken(ctx, &shipping.Token{
		ID:            "tok-1",
		AccountName:   "ups-main",
		Carrier:       shipping.CarrierUPS,
		AccountNumber: "A1B2C3",
		AppID:         "app-ups-1",
	}))

	artifacts, err := store.NewFileArtifacts(t.TempDir(), "https://labels.example.com")
	require.NoError(t, err)

	logger := otelzap.New(zap.NewNop())
	client := ups.NewWithAPIClient(
		ups.Config{
			HomeCountry: "US",
			DefaultShipper: shipping.Party{
				Contact: shipping.Contact{Name: "Warehouse", Phone: "5025551234", Email: "ship@example.com"},
				Address: shipping.Address{
					StreetLines: []string{"200 Fulfillment Rd"},
					City:        "Louisville",
					StateCode:   "KY",
					PostalCode:  "40203",
					CountryCode: "US",
				},
			},
		},
		mockClient,
		ups.Deps{Tokens: mem, Apps: mem, Labels: mem, Artifacts: artifacts},
		logger,
		nil,
	)
	require.NoError(t, client.SetAccount(ctx, "ups-main"))
	return client, mem
}

func testShipmentRequest() *shipping.ShipmentRequest {
	return &shipping.ShipmentRequest{
		Recipient: shipping.Party{
			Contact: shipping.Contact{Name: "Jane Smith", Phone: "303-555-7788"},
			Address: shipping.Address{
				StreetLines: []string{"456 Oak Ave"},
				City:        "Denver",
				StateCode:   "CO",
				PostalCode:  "80202",
				CountryCode: "US",
			},
		},
		Packages: []shipping.Package{
			{Length: 10, Width: 10, Height: 10, Weight: 5, BoxID: "box-1"},
		},
		ServiceType: "GROUND",
	}
}

func TestClient_GetRates_Success(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client, _ := newTestClient(t, mockAPI)

	rates, err := client.GetRates(context.Background(), testShipmentRequest())

	require.NoError(t, err)
	require.Len(t, rates, 3) // Mock returns 3 services
	assert.Equal(t, shipping.CarrierUPS, rates[0].Carrier)
	assert.Equal(t, "ups-main", rates[0].AccountName)
	assert.Equal(t, "GROUND", rates[0].ServiceType)
	assert.Equal(t, "03", rates[0].ServiceCode)
	assert.Equal(t, 12.80, rates[0].TotalCharge) // Negotiated preferred over published
	assert.True(t, rates[0].Negotiated)
	assert.Equal(t, 28.40, rates[1].TotalCharge)
	assert.False(t, rates[1].Negotiated)
	assert.Equal(t, "2 business days", rates[1].TransitTime)
}

func TestClient_GetRates_AccountNotSet(t *testing.T) {
	logger := otelzap.New(zap.NewNop())
	mem := store.NewMemory()
	client := ups.NewWithAPIClient(
		ups.Config{HomeCountry: "US"},
		ups.NewMockAPIClient(),
		ups.Deps{Tokens: mem, Apps: mem, Labels: mem},
		logger,
		nil,
	)

	_, err := client.GetRates(context.Background(), testShipmentRequest())

	assert.ErrorIs(t, err, shipping.ErrAccountNotSet)
}

func TestClient_CreateLabel_NegotiatedCharges(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client, mem := newTestClient(t, mockAPI)
	client.SetMarkup(0.10)

	req := testShipmentRequest()
	req.Packages = []shipping.Package{
		{Length: 10, Width: 10, Height: 10, Weight: 5, BoxID: "box-1"},
		{Length: 12, Width: 8, Height: 6, Weight: 3, BoxID: "box-2"},
	}

	labels, err := client.CreateLabel(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, labels, 2)

	// Negotiated shipment charge lands on the first package's row only.
	assert.Equal(t, 15.20, labels[0].BaseCost)
	assert.InDelta(t, 16.72, labels[0].Cost, 0.001)
	assert.Equal(t, 1.30, labels[0].ShipmentFees["375"])
	assert.Zero(t, labels[1].BaseCost)
	assert.Empty(t, labels[1].ShipmentFees)

	assert.Equal(t, "GIF", labels[0].ImageFormat)
	assert.Contains(t, labels[0].LabelURL, "https://labels.example.com/")
	assert.Equal(t, "box-2", labels[1].BoxID)

	stored, err := mem.FindLabel(context.Background(), labels[0].TrackingNumber)
	require.NoError(t, err)
	assert.Equal(t, shipping.LabelActive, stored.Status)
}

func TestClient_CreateLabel_InternationalConversion(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client, _ := newTestClient(t, mockAPI)

	var captured *ups.ShipRequest
	mockAPI.OnCreateShipment = func(ctx context.Context, req *ups.ShipRequest) (*ups.ShipResponse, error) {
		captured = req
		resp := &ups.ShipResponse{}
		resp.ShipmentResponse.ShipmentResults = ups.ShipmentResults{
			ShipmentIdentificationNumber: "1Z999AA10123456784",
			ShipmentCharges: &ups.ShipmentCharges{
				TotalCharges: ups.Money{CurrencyCode: "USD", MonetaryValue: "84.10"},
			},
			PackageResults: []ups.PackageResult{
				{TrackingNumber: "1Z999AA10123456784"},
			},
		}
		return resp, nil
	}

	req := &shipping.ShipmentRequest{
		Recipient: shipping.Party{
			Contact: shipping.Contact{Name: "Oliver Grant", Phone: "020 7946 0018"},
			Address: shipping.Address{
				StreetLines: []string{"14 Baker Street"},
				City:        "London",
				PostalCode:  "NW1 6XE",
				CountryCode: "United Kingdom",
			},
		},
		Packages:    []shipping.Package{{Length: 18, Width: 14, Height: 12, Weight: 34, DeclaredValue: 250}},
		ServiceType: "GROUND",
	}

	labels, err := client.CreateLabel(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, labels, 1)
	require.NotNil(t, captured)

	// Domestic ground converts to Worldwide Expedited for a UK destination.
	shipment := captured.ShipmentRequest.Shipment
	assert.Equal(t, "08", shipment.Service.Code)
	assert.Equal(t, "GB", shipment.ShipTo.Address.CountryCode)
	require.NotNil(t, shipment.ShipmentServiceOptions)
	require.NotNil(t, shipment.ShipmentServiceOptions.InternationalForms)
	assert.Equal(t, "02", shipment.ShipmentServiceOptions.InternationalDetail.BrokerageOption)
	assert.Equal(t, "WORLDWIDE_EXPEDITED", labels[0].ServiceType)
}

func TestClient_CreateLabel_EmptyShipResponse(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnCreateShipment = func(ctx context.Context, req *ups.ShipRequest) (*ups.ShipResponse, error) {
		return &ups.ShipResponse{}, nil
	}
	client, _ := newTestClient(t, mockAPI)

	labels, err := client.CreateLabel(context.Background(), testShipmentRequest())
	require.Error(t, err)
	assert.Empty(t, labels)

	var apiErr *shipping.CarrierAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "SHIPMENT.EMPTY", apiErr.Code)
}

func TestClient_CreateReturnLabel(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client, _ := newTestClient(t, mockAPI)

	var captured *ups.ShipRequest
	mockAPI.OnCreateShipment = func(ctx context.Context, req *ups.ShipRequest) (*ups.ShipResponse, error) {
		captured = req
		return ups.NewMockAPIClient().CreateShipment(ctx, req)
	}

	req := testShipmentRequest()
	returnTo := shipping.Party{
		Contact: shipping.Contact{Name: "Returns Dept", Phone: "5025551234"},
		Address: shipping.Address{
			StreetLines: []string{"200 Fulfillment Rd"},
			City:        "Louisville",
			StateCode:   "KY",
			PostalCode:  "40203",
			CountryCode: "US",
		},
	}

	labels, err := client.CreateReturnLabel(context.Background(), req, &shipping.ReturnOptions{
		ReturnAddress: &returnTo,
		RMANumber:     "RMA-4410",
		Reason:        "wrong size",
	})

	require.NoError(t, err)
	require.Len(t, labels, 1)
	assert.True(t, labels[0].IsReturn)
	assert.Equal(t, "RMA-4410", labels[0].RMANumber)

	require.NotNil(t, captured)
	shipment := captured.ShipmentRequest.Shipment
	require.NotNil(t, shipment.ReturnService)
	assert.Equal(t, "9", shipment.ReturnService.Code)
	require.NotNil(t, shipment.ReferenceNumber)
	assert.Equal(t, "RMA-4410", shipment.ReferenceNumber.Value)
	assert.Equal(t, "wrong size", shipment.Description)
}

func TestClient_CancelLabel_Idempotent(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client, _ := newTestClient(t, mockAPI)

	voidCalls := 0
	mockAPI.OnVoidShipment = func(ctx context.Context, trackingNumber string) (*ups.VoidResponse, error) {
		voidCalls++
		resp := &ups.VoidResponse{}
		resp.VoidShipmentResponse.SummaryResult.Status = ups.CodeDescription{Code: "1"}
		return resp, nil
	}

	labels, err := client.CreateLabel(context.Background(), testShipmentRequest())
	require.NoError(t, err)
	trackingNumber := labels[0].TrackingNumber

	ok, err := client.CancelLabel(context.Background(), trackingNumber, "ops@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, voidCalls)

	// Second cancel resolves from the store without a carrier call.
	ok, err = client.CancelLabel(context.Background(), trackingNumber, "ops@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, voidCalls)
}

func TestClient_CancelLabel_VoidRefused(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client, _ := newTestClient(t, mockAPI)

	mockAPI.OnVoidShipment = func(ctx context.Context, trackingNumber string) (*ups.VoidResponse, error) {
		resp := &ups.VoidResponse{}
		resp.VoidShipmentResponse.SummaryResult.Status = ups.CodeDescription{
			Code:        "0",
			Description: "shipment already picked up",
		}
		return resp, nil
	}

	ok, err := client.CancelLabel(context.Background(), "1Z999AA10123456784", "ops@example.com")

	assert.False(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already picked up")
}

func TestClient_TrackShipment_Success(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client, _ := newTestClient(t, mockAPI)

	result, err := client.TrackShipment(context.Background(), "1Z999AA10123456784")

	require.NoError(t, err)
	assert.Equal(t, "1Z999AA10123456784", result.TrackingNumber)
	assert.NotEmpty(t, result.Events)
	assert.NotNil(t, result.EstimatedDelivery)
}

func TestClient_GetRates_APIError(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client, _ := newTestClient(t, mockAPI)
	mockAPI.SimulateErrors = true

	_, err := client.GetRates(context.Background(), testShipmentRequest())

	require.Error(t, err)
	var carrierErr *shipping.CarrierAPIError
	require.ErrorAs(t, err, &carrierErr)
	assert.Equal(t, shipping.CarrierUPS, carrierErr.Carrier)
}

func TestClient_Name(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client, _ := newTestClient(t, mockAPI)

	assert.Equal(t, "ups-main", client.Name())
	assert.Equal(t, shipping.CarrierUPS, client.Type())
}
