package servicetype_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parcelforge/shipping/pkg/shipping"
	"github.com/parcelforge/shipping/pkg/shipping/servicetype"
)

func TestMapper_Normalize_FedEx(t *testing.T) {
	m := servicetype.NewMapper(shipping.CarrierFedEx)

	assert.Equal(t, "FEDEX_GROUND", m.Normalize("ground"))
	assert.Equal(t, "FEDEX_GROUND", m.Normalize("FedEx Ground"))
	assert.Equal(t, "FEDEX_2_DAY", m.Normalize("FedEx 2-Day"))
	assert.Equal(t, "FEDEX_2_DAY", m.Normalize("2day"))
	assert.Equal(t, "FEDEX_INTERNATIONAL_PRIORITY", m.Normalize("IP"))
	assert.Equal(t, "SMART_POST", m.Normalize("FedEx Ground Economy"))

	// Canonical codes pass through untouched.
	assert.Equal(t, "PRIORITY_OVERNIGHT", m.Normalize("PRIORITY_OVERNIGHT"))
}

func TestMapper_Normalize_UPS(t *testing.T) {
	m := servicetype.NewMapper(shipping.CarrierUPS)

	assert.Equal(t, "GROUND", m.Normalize("UPS Ground"))
	assert.Equal(t, "SECOND_DAY_AIR", m.Normalize("2nd Day Air"))
	assert.Equal(t, "NEXT_DAY_AIR_EARLY", m.Normalize("Next Day Air Early A.M."))
	assert.Equal(t, "WORLDWIDE_SAVER", m.Normalize("saver"))

	// Numeric wire codes resolve to canonical names.
	assert.Equal(t, "GROUND", m.Normalize("03"))
	assert.Equal(t, "WORLDWIDE_EXPEDITED", m.Normalize("08"))
}

func TestMapper_Normalize_UnknownPassesThrough(t *testing.T) {
	m := servicetype.NewMapper(shipping.CarrierFedEx)

	assert.Equal(t, "SAME DAY COURIER", m.Normalize("Same Day Courier"))
	assert.Equal(t, "", m.Normalize("  "))
}

func TestMapper_InternationalEquivalent(t *testing.T) {
	fedex := servicetype.NewMapper(shipping.CarrierFedEx)
	ups := servicetype.NewMapper(shipping.CarrierUPS)

	got, ok := fedex.InternationalEquivalent("FEDEX_GROUND")
	assert.True(t, ok)
	assert.Equal(t, "INTERNATIONAL_GROUND", got)

	got, ok = ups.InternationalEquivalent("NEXT_DAY_AIR")
	assert.True(t, ok)
	assert.Equal(t, "WORLDWIDE_EXPRESS", got)

	_, ok = fedex.InternationalEquivalent("INTERNATIONAL_ECONOMY")
	assert.False(t, ok)
}

func TestMapper_DomesticEquivalent(t *testing.T) {
	fedex := servicetype.NewMapper(shipping.CarrierFedEx)
	ups := servicetype.NewMapper(shipping.CarrierUPS)

	got, ok := fedex.DomesticEquivalent("FEDEX_INTERNATIONAL_PRIORITY")
	assert.True(t, ok)
	assert.Equal(t, "PRIORITY_OVERNIGHT", got)

	got, ok = ups.DomesticEquivalent("STANDARD")
	assert.True(t, ok)
	assert.Equal(t, "GROUND", got)

	_, ok = ups.DomesticEquivalent("GROUND")
	assert.False(t, ok)
}

func TestMapper_IsInternational(t *testing.T) {
	fedex := servicetype.NewMapper(shipping.CarrierFedEx)
	ups := servicetype.NewMapper(shipping.CarrierUPS)

	assert.True(t, fedex.IsInternational("INTERNATIONAL_ECONOMY"))
	assert.False(t, fedex.IsInternational("FEDEX_GROUND"))

	// UPS Standard serves cross-border ground lanes.
	assert.True(t, ups.IsInternational("STANDARD"))
	assert.False(t, ups.IsInternational("SECOND_DAY_AIR"))
}
