package shipping_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/parcelforge/shipping/pkg/shipping"
	"github.com/parcelforge/shipping/pkg/shipping/mock"
)

func newComparison(t *testing.T, fedexMock, upsMock *mock.Client) *shipping.Comparison {
	t.Helper()

	registry := shipping.NewRegistry()
	registry.Register(shipping.CarrierFedEx, func() shipping.Carrier { return fedexMock })
	registry.Register(shipping.CarrierUPS, func() shipping.Carrier { return upsMock })

	return shipping.NewComparison(registry, otelzap.New(zap.NewNop()))
}

func testAccounts() []shipping.Account {
	return []shipping.Account{
		{Name: "fedex-main", Carrier: shipping.CarrierFedEx},
		{Name: "ups-main", Carrier: shipping.CarrierUPS},
	}
}

func TestCompareRates_CheapestPerServiceType(t *testing.T) {
	fedexMock := mock.New(shipping.CarrierFedEx)
	fedexMock.Rates = []shipping.Rate{
		{ServiceType: "GROUND", TotalCharge: 11.50, Currency: "USD"},
		{ServiceType: "EXPRESS", TotalCharge: 42.00, Currency: "USD"},
	}
	upsMock := mock.New(shipping.CarrierUPS)
	upsMock.Rates = []shipping.Rate{
		{ServiceType: "GROUND", TotalCharge: 12.80, Currency: "USD"},
		{ServiceType: "EXPRESS", TotalCharge: 39.90, Currency: "USD"},
	}

	cmp := newComparison(t, fedexMock, upsMock)
	result, err := cmp.CompareRates(context.Background(), &shipping.ShipmentRequest{}, testAccounts())
	require.NoError(t, err)
	require.Len(t, result.AllRates, 2)

	ground, ok := result.CheapestFor("GROUND")
	require.True(t, ok)
	assert.Equal(t, shipping.CarrierFedEx, ground.Carrier)
	assert.Equal(t, 11.50, ground.TotalCharge)

	express, ok := result.CheapestFor("EXPRESS")
	require.True(t, ok)
	assert.Equal(t, shipping.CarrierUPS, express.Carrier)
	assert.Equal(t, 39.90, express.TotalCharge)

	overall, ok := result.CheapestOverall()
	require.True(t, ok)
	assert.Equal(t, "GROUND", overall.ServiceType)

	assert.Equal(t, []string{"GROUND", "EXPRESS"}, result.ServiceTypes())
}

func TestCompareRates_TieGoesToEarlierAccount(t *testing.T) {
	fedexMock := mock.New(shipping.CarrierFedEx)
	fedexMock.Rates = []shipping.Rate{
		{ServiceType: "GROUND", TotalCharge: 10.00, Currency: "USD"},
	}
	upsMock := mock.New(shipping.CarrierUPS)
	upsMock.Rates = []shipping.Rate{
		{ServiceType: "GROUND", TotalCharge: 10.00, Currency: "USD"},
	}

	cmp := newComparison(t, fedexMock, upsMock)
	result, err := cmp.CompareRates(context.Background(), &shipping.ShipmentRequest{}, testAccounts())
	require.NoError(t, err)

	ground, ok := result.CheapestFor("GROUND")
	require.True(t, ok)
	assert.Equal(t, shipping.CarrierFedEx, ground.Carrier)
	assert.Equal(t, "fedex-main", ground.AccountName)
}

func TestCompareRates_PartialFailure(t *testing.T) {
	fedexMock := mock.New(shipping.CarrierFedEx)
	fedexMock.Err = shipping.NewCarrierAPIError(shipping.CarrierFedEx, "SYSTEM.UNAVAILABLE", "try later").
		WithStatusCode(503)
	upsMock := mock.New(shipping.CarrierUPS)
	upsMock.Rates = []shipping.Rate{
		{ServiceType: "GROUND", TotalCharge: 12.80, Currency: "USD"},
	}

	cmp := newComparison(t, fedexMock, upsMock)
	result, err := cmp.CompareRates(context.Background(), &shipping.ShipmentRequest{}, testAccounts())

	var partial *shipping.PartialFailure
	require.ErrorAs(t, err, &partial)
	require.Len(t, partial.Errors, 1)

	var apiErr *shipping.CarrierAPIError
	require.ErrorAs(t, partial.Errors["fedex-main"], &apiErr)
	assert.Equal(t, "SYSTEM.UNAVAILABLE", apiErr.Code)

	// The surviving carrier still contributes quotes.
	ground, ok := result.CheapestFor("GROUND")
	require.True(t, ok)
	assert.Equal(t, shipping.CarrierUPS, ground.Carrier)

	failed := result.AllRates["fedex-main"]
	assert.Error(t, failed.Err)
	assert.Empty(t, failed.Rates)
}

func TestCompareRates_AllFail(t *testing.T) {
	fedexMock := mock.New(shipping.CarrierFedEx)
	fedexMock.Err = errors.New("timeout")
	upsMock := mock.New(shipping.CarrierUPS)
	upsMock.Err = errors.New("401 unauthorized")

	cmp := newComparison(t, fedexMock, upsMock)
	result, err := cmp.CompareRates(context.Background(), &shipping.ShipmentRequest{}, testAccounts())

	var partial *shipping.PartialFailure
	require.ErrorAs(t, err, &partial)
	assert.Len(t, partial.Errors, 2)
	assert.Empty(t, result.Cheapest)

	_, ok := result.CheapestOverall()
	assert.False(t, ok)
}

func TestCompareRates_UnregisteredCarrier(t *testing.T) {
	upsMock := mock.New(shipping.CarrierUPS)
	upsMock.Rates = []shipping.Rate{
		{ServiceType: "GROUND", TotalCharge: 12.80, Currency: "USD"},
	}

	registry := shipping.NewRegistry()
	registry.Register(shipping.CarrierUPS, func() shipping.Carrier { return upsMock })
	cmp := shipping.NewComparison(registry, otelzap.New(zap.NewNop()))

	result, err := cmp.CompareRates(context.Background(), &shipping.ShipmentRequest{}, testAccounts())

	var partial *shipping.PartialFailure
	require.ErrorAs(t, err, &partial)
	assert.ErrorIs(t, partial.Errors["fedex-main"], shipping.ErrUnsupportedCarrier)

	_, ok := result.CheapestFor("GROUND")
	assert.True(t, ok)
}
