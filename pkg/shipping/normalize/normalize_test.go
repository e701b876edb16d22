package normalize_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelforge/shipping/pkg/shipping"
	"github.com/parcelforge/shipping/pkg/shipping/normalize"
	"github.com/parcelforge/shipping/pkg/shipping/servicetype"
)

// stubValidator echoes the input address with a fixed classification, or
// fails with the configured error. Corrections override individual fields.
type stubValidator struct {
	classification normalize.Classification
	corrections    shipping.Address
	err            error

	lastInput shipping.Address
}

func (v *stubValidator) ValidateAddress(ctx context.Context, addr shipping.Address) (*normalize.ValidatedAddress, error) {
	v.lastInput = addr
	if v.err != nil {
		return nil, v.err
	}
	return &normalize.ValidatedAddress{
		Address:        v.corrections,
		Classification: v.classification,
	}, nil
}

func newNormalizer(v *stubValidator, carrier shipping.CarrierType) *normalize.Normalizer {
	return normalize.New(v, servicetype.NewMapper(carrier), "US")
}

func TestNormalize_DomesticParty(t *testing.T) {
	v := &stubValidator{classification: normalize.ClassificationResidential}
	n := newNormalizer(v, shipping.CarrierFedEx)

	result, err := n.Normalize(context.Background(), shipping.Party{
		Contact: shipping.Contact{
			Name:  "Pat Doyle",
			Phone: "1-719-534-3655",
		},
		Address: shipping.Address{
			StreetLines: []string{"123  Main~St *Apt 4"},
			City:        " Colorado Springs ",
			StateCode:   "Colorado",
			PostalCode:  " 80903 ",
			CountryCode: "United States",
		},
	}, "FEDEX_GROUND")
	require.NoError(t, err)

	assert.Equal(t, "7195343655", result.Party.Contact.Phone)
	assert.Equal(t, []string{"123 MainSt Apt 4"}, result.Party.Address.StreetLines)
	assert.Equal(t, "Colorado Springs", result.Party.Address.City)
	assert.Equal(t, "CO", result.Party.Address.StateCode)
	assert.Equal(t, "80903", result.Party.Address.PostalCode)
	assert.Equal(t, "US", result.Party.Address.CountryCode)
	assert.True(t, result.Residential)
	assert.True(t, result.Party.Address.Residential)
	assert.Equal(t, "FEDEX_GROUND", result.ServiceType)
}

func TestNormalize_InternationalServiceConversion(t *testing.T) {
	v := &stubValidator{classification: normalize.ClassificationBusiness}
	n := newNormalizer(v, shipping.CarrierUPS)

	result, err := n.Normalize(context.Background(), shipping.Party{
		Address: shipping.Address{
			StreetLines: []string{"10 Downing Street"},
			City:        "London",
			PostalCode:  "SW1A 2AA",
			CountryCode: "United Kingdom",
		},
	}, "GROUND")
	require.NoError(t, err)

	assert.Equal(t, "GB", result.Party.Address.CountryCode)
	assert.Equal(t, "WORLDWIDE_EXPEDITED", result.ServiceType)
	assert.False(t, result.Residential)
}

func TestNormalize_DomesticServiceConversion(t *testing.T) {
	v := &stubValidator{classification: normalize.ClassificationUnknown}
	n := newNormalizer(v, shipping.CarrierUPS)

	result, err := n.Normalize(context.Background(), shipping.Party{
		Address: shipping.Address{
			StreetLines: []string{"55 Water St"},
			City:        "New York",
			StateCode:   "NY",
			PostalCode:  "10041",
			CountryCode: "US",
		},
	}, "WORLDWIDE_EXPRESS")
	require.NoError(t, err)

	assert.Equal(t, "NEXT_DAY_AIR", result.ServiceType)
}

func TestNormalize_UnsupportedServiceForDestination(t *testing.T) {
	v := &stubValidator{classification: normalize.ClassificationUnknown}
	n := newNormalizer(v, shipping.CarrierFedEx)

	// GROUND_HOME_DELIVERY converts, but a code with no international
	// equivalent is rejected.
	_, err := n.Normalize(context.Background(), shipping.Party{
		Address: shipping.Address{
			StreetLines: []string{"1 Rue de Rivoli"},
			City:        "Paris",
			PostalCode:  "75001",
			CountryCode: "France",
		},
	}, "FEDEX_FREIGHT_PRIORITY")
	require.Error(t, err)
	assert.ErrorIs(t, err, shipping.ErrUnsupportedService)

	var unsupported *shipping.UnsupportedServiceError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "FR", unsupported.Country)
}

func TestNormalize_ValidatorCorrectionsMerged(t *testing.T) {
	v := &stubValidator{
		classification: normalize.ClassificationBusiness,
		corrections: shipping.Address{
			StreetLines: []string{"350 5TH AVE"},
			City:        "NEW YORK",
			PostalCode:  "10118-0110",
		},
	}
	n := newNormalizer(v, shipping.CarrierFedEx)

	result, err := n.Normalize(context.Background(), shipping.Party{
		Address: shipping.Address{
			StreetLines: []string{"350 Fifth Avenue"},
			City:        "New York",
			StateCode:   "NY",
			PostalCode:  "10118",
			CountryCode: "US",
		},
	}, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"350 5TH AVE"}, result.Party.Address.StreetLines)
	assert.Equal(t, "10118-0110", result.Party.Address.PostalCode)
	// Empty correction keeps the input value.
	assert.Equal(t, "NY", result.Party.Address.StateCode)
}

func TestNormalize_ValidatorError(t *testing.T) {
	wantErr := &shipping.AddressValidationError{
		Carrier: shipping.CarrierUPS,
		Message: "no candidates",
	}
	v := &stubValidator{err: wantErr}
	n := newNormalizer(v, shipping.CarrierUPS)

	_, err := n.Normalize(context.Background(), shipping.Party{
		Address: shipping.Address{CountryCode: "US"},
	}, "")
	require.Error(t, err)

	var validationErr *shipping.AddressValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestCountryCode(t *testing.T) {
	assert.Equal(t, "US", normalize.CountryCode("United States"))
	assert.Equal(t, "CA", normalize.CountryCode("canada"))
	assert.Equal(t, "GB", normalize.CountryCode("United Kingdom"))
	assert.Equal(t, "DE", normalize.CountryCode("de"))
	assert.Equal(t, "NARNIA", normalize.CountryCode("Narnia"))
}

func TestStateCode(t *testing.T) {
	assert.Equal(t, "CO", normalize.StateCode("Colorado", "US"))
	assert.Equal(t, "ON", normalize.StateCode("Ontario", "CA"))
	assert.Equal(t, "QC", normalize.StateCode("Québec", "CA"))
	assert.Equal(t, "TX", normalize.StateCode("tx", "US"))
	assert.Equal(t, "OUTBACK", normalize.StateCode("Outback", "US"))
}

func TestPhoneNumber(t *testing.T) {
	assert.Equal(t, "7195343655", normalize.PhoneNumber("1-719-534-3655", "US"))
	assert.Equal(t, "7195343655", normalize.PhoneNumber("(719) 534-3655", "US"))
	assert.Equal(t, "4165551234", normalize.PhoneNumber("+1 416 555 1234", "CA"))
	assert.Equal(t, "2079460958", normalize.PhoneNumber("020 7946 0958", "GB"))
	assert.Equal(t, "493012345", normalize.PhoneNumber("+49 30 12345", "DE"))
}

func TestCleanStreetLines(t *testing.T) {
	got := normalize.CleanStreetLines([]string{
		"123 Main St.,  Apt #4",
		"c/o  O'Brien",
	})
	assert.Equal(t, []string{"123 Main St., Apt #4", "co OBrien"}, got)
}
