package shipping_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelforge/shipping/pkg/shipping"
	"github.com/parcelforge/shipping/pkg/shipping/mock"
)

func TestRegistry_NewAndTypes(t *testing.T) {
	registry := shipping.NewRegistry()
	registry.Register(shipping.CarrierFedEx, func() shipping.Carrier {
		return mock.New(shipping.CarrierFedEx)
	})
	registry.Register(shipping.CarrierUPS, func() shipping.Carrier {
		return mock.New(shipping.CarrierUPS)
	})

	assert.Equal(t, 2, registry.Count())
	assert.Equal(t, []shipping.CarrierType{shipping.CarrierFedEx, shipping.CarrierUPS}, registry.Types())

	carrier, err := registry.New(shipping.CarrierUPS)
	require.NoError(t, err)
	assert.Equal(t, shipping.CarrierUPS, carrier.Type())

	// Each call constructs a fresh adapter.
	other, err := registry.New(shipping.CarrierUPS)
	require.NoError(t, err)
	assert.NotSame(t, carrier, other)
}

func TestRegistry_UnsupportedCarrier(t *testing.T) {
	registry := shipping.NewRegistry()

	_, err := registry.New(shipping.CarrierFedEx)
	assert.ErrorIs(t, err, shipping.ErrUnsupportedCarrier)
}

func TestRegistry_ReRegisterKeepsOrder(t *testing.T) {
	registry := shipping.NewRegistry()
	registry.Register(shipping.CarrierFedEx, func() shipping.Carrier {
		return mock.New(shipping.CarrierFedEx)
	})
	registry.Register(shipping.CarrierUPS, func() shipping.Carrier {
		return mock.New(shipping.CarrierUPS)
	})
	registry.Register(shipping.CarrierFedEx, func() shipping.Carrier {
		return mock.New(shipping.CarrierFedEx)
	})

	assert.Equal(t, 2, registry.Count())
	assert.Equal(t, []shipping.CarrierType{shipping.CarrierFedEx, shipping.CarrierUPS}, registry.Types())
}
