package fedex_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/parcelforge/shipping/internal/store"
	"github.com/parcelforge/shipping/pkg/shipping"
	"github.com/parcelforge/shipping/pkg/shipping/fedex"
)

func newTestClient(t *testing.T, mockClient *fedex.MockAPIClient) (*fedex.Client, *store.Memory) {
	t.Helper()

	mem := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.SaveApplication(ctx, &shipping.Application{
		ID:            "app-fedex-1",
		Carrier:       shipping.CarrierFedEx,
		ApplicationID: "client-id",
		SharedSecret:  "client-secret",
		Name:          "Production",
	}))
	require.NoError(t, mem.SaveToken(ctx, &shipping.Token{
		ID:            "tok-1",
		AccountName:   "fedex-main",
		Carrier:       shipping.CarrierFedEx,
		AccountNumber: "510087500",
		AppID:         "app-fedex-1",
	}))

	logger := otelzap.New(zap.NewNop())
	client := fedex.NewWithAPIClient(
		fedex.Config{
			HomeCountry: "US",
			DefaultShipper: shipping.Party{
				Contact: shipping.Contact{Name: "Warehouse", Phone: "9015551234", Email: "ship@example.com"},
				Address: shipping.Address{
					StreetLines: []string{"100 Distribution Way"},
					City:        "Memphis",
					StateCode:   "TN",
					PostalCode:  "38116",
					CountryCode: "US",
				},
			},
		},
		mockClient,
		fedex.Deps{Tokens: mem, Apps: mem, Labels: mem, Artifacts: nil},
		logger,
		nil,
	)
	require.NoError(t, client.SetAccount(ctx, "fedex-main"))
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
		ServiceType: "FEDEX_GROUND",
	}
}

func TestClient_GetRates_Success(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	client, _ := newTestClient(t, mockAPI)

	rates, err := client.GetRates(context.Background(), testShipmentRequest())

	require.NoError(t, err)
	require.Len(t, rates, 3) // Mock returns 3 services
	assert.Equal(t, shipping.CarrierFedEx, rates[0].Carrier)
	assert.Equal(t, "fedex-main", rates[0].AccountName)
	assert.Equal(t, "FEDEX_GROUND", rates[0].ServiceType)
	assert.Equal(t, 18.54, rates[0].TotalCharge) // ACCOUNT preferred over LIST
}

func TestClient_GetRates_AccountNotSet(t *testing.T) {
	logger := otelzap.New(zap.NewNop())
	mem := store.NewMemory()
	client := fedex.NewWithAPIClient(
		fedex.Config{HomeCountry: "US"},
		fedex.NewMockAPIClient(),
		fedex.Deps{Tokens: mem, Apps: mem, Labels: mem},
		logger,
		nil,
	)

	_, err := client.GetRates(context.Background(), testShipmentRequest())

	assert.ErrorIs(t, err, shipping.ErrAccountNotSet)
}

func TestClient_GetRates_APIError(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	client, _ := newTestClient(t, mockAPI)
	mockAPI.SimulateErrors = true

	_, err := client.GetRates(context.Background(), testShipmentRequest())

	require.Error(t, err)
	var carrierErr *shipping.CarrierAPIError
	require.ErrorAs(t, err, &carrierErr)
	assert.Equal(t, shipping.CarrierFedEx, carrierErr.Carrier)
}

func TestClient_CreateLabel_MultiPackage(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
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

	// Shipment cost and fees land on the first package's row only.
	assert.Equal(t, 25.30, labels[0].BaseCost)
	assert.InDelta(t, 27.83, labels[0].Cost, 0.001)
	assert.Equal(t, 2.15, labels[0].ShipmentFees["FUEL"])
	assert.Zero(t, labels[1].BaseCost)
	assert.Zero(t, labels[1].Cost)
	assert.Empty(t, labels[1].ShipmentFees)

	assert.Equal(t, "box-1", labels[0].BoxID)
	assert.Equal(t, "box-2", labels[1].BoxID)
	assert.Equal(t, shipping.LabelActive, labels[0].Status)
	assert.False(t, labels[0].IsReturn)

	stored, err := mem.FindLabel(context.Background(), labels[0].TrackingNumber)
	require.NoError(t, err)
	assert.Equal(t, labels[0].ID, stored.ID)
}

func TestClient_CreateLabel_EmptyShipResponse(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	mockAPI.OnCreateShipment = func(ctx context.Context, req *fedex.ShipmentRequest) (*fedex.ShipResponse, error) {
		return &fedex.ShipResponse{}, nil
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
	mockAPI := fedex.NewMockAPIClient()
	client, _ := newTestClient(t, mockAPI)

	labels, err := client.CreateReturnLabel(context.Background(), testShipmentRequest(), &shipping.ReturnOptions{
		RMANumber:  "RMA-7001",
		Reason:     "damaged in transit",
		PrintLabel: true,
	})

	require.NoError(t, err)
	require.Len(t, labels, 1)
	assert.True(t, labels[0].IsReturn)
	assert.Equal(t, "RMA-7001", labels[0].RMANumber)
}

func TestClient_CancelLabel_Idempotent(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	client, _ := newTestClient(t, mockAPI)

	cancelCalls := 0
	mockAPI.OnCancelShipment = func(ctx context.Context, req *fedex.CancelRequest) (*fedex.CancelResponse, error) {
		cancelCalls++
		resp := &fedex.CancelResponse{}
		resp.Output.CancelledShipment = true
		return resp, nil
	}

	labels, err := client.CreateLabel(context.Background(), testShipmentRequest())
	require.NoError(t, err)
	trackingNumber := labels[0].TrackingNumber

	ok, err := client.CancelLabel(context.Background(), trackingNumber, "ops@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, cancelCalls)

	// Second cancel resolves from the store without a carrier call.
	ok, err = client.CancelLabel(context.Background(), trackingNumber, "ops@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, cancelCalls)
}

func TestClient_CancelLabel_CarrierRefusal(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	client, _ := newTestClient(t, mockAPI)

	mockAPI.OnCancelShipment = func(ctx context.Context, req *fedex.CancelRequest) (*fedex.CancelResponse, error) {
		resp := &fedex.CancelResponse{}
		resp.Output.CancelledShipment = false
		resp.Output.Message = "shipment already in transit"
		return resp, nil
	}

	ok, err := client.CancelLabel(context.Background(), "794000000001", "ops@example.com")

	assert.False(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in transit")
}

func TestClient_TrackShipment_Success(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	client, _ := newTestClient(t, mockAPI)

	result, err := client.TrackShipment(context.Background(), "794000000001")

	require.NoError(t, err)
	assert.Equal(t, "794000000001", result.TrackingNumber)
	assert.NotEmpty(t, result.Events)
}

func TestClient_TrackShipment_BodyError(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	client, _ := newTestClient(t, mockAPI)

	mockAPI.OnTrack = func(ctx context.Context, req *fedex.TrackRequest) (*fedex.TrackResponse, error) {
		resp := &fedex.TrackResponse{}
		resp.Output.CompleteTrackResults = []fedex.CompleteTrackResult{
			{
				TrackingNumber: "794000000002",
				TrackResults: []fedex.TrackResult{
					{Error: &fedex.TrackError{Code: "TRACKING.TRACKINGNUMBER.NOTFOUND", Message: "tracking number not found"}},
				},
			},
		}
		return resp, nil
	}

	_, err := client.TrackShipment(context.Background(), "794000000002")

	require.Error(t, err)
	var carrierErr *shipping.CarrierAPIError
	require.ErrorAs(t, err, &carrierErr)
	assert.Equal(t, "TRACKING.TRACKINGNUMBER.NOTFOUND", carrierErr.Code)
}

func TestClient_Name(t *testing.T) {
	mockAPI := fedex.NewMockAPIClient()
	client, _ := newTestClient(t, mockAPI)

	assert.Equal(t, "fedex-main", client.Name())
	assert.Equal(t, shipping.CarrierFedEx, client.Type())
}
