// Package normalize prepares merchant-supplied addresses for carrier APIs:
// country, state and phone normalization, street-line sanitization,
// cross-border service-type substitution, and external address validation.
package normalize

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/parcelforge/shipping/pkg/shipping"
	"github.com/parcelforge/shipping/pkg/shipping/servicetype"
)

// Classification is the carrier's verdict on what kind of address this is.
type Classification string

const (
	ClassificationResidential Classification = "RESIDENTIAL"
	ClassificationBusiness    Classification = "BUSINESS"
	ClassificationUnknown     Classification = "UNKNOWN"
)

// ValidatedAddress is the outcome of a carrier address validation call.
type ValidatedAddress struct {
	Address        shipping.Address
	Classification Classification
}

// Validator performs carrier-side address validation. Implementations return
// *shipping.AddressValidationError on rejection.
type Validator interface {
	ValidateAddress(ctx context.Context, addr shipping.Address) (*ValidatedAddress, error)
}

// Result is a fully normalized party plus the possibly substituted service
// type.
type Result struct {
	Party       shipping.Party
	ServiceType string
	Residential bool
}

// Normalizer runs the address pipeline for one carrier.
type Normalizer struct {
	validator   Validator
	mapper      *servicetype.Mapper
	homeCountry string
}

// New creates a normalizer. The home country decides which shipments count
// as international; empty defaults to US.
func New(validator Validator, mapper *servicetype.Mapper, homeCountry string) *Normalizer {
	if homeCountry == "" {
		homeCountry = "US"
	}
	return &Normalizer{
		validator:   validator,
		mapper:      mapper,
		homeCountry: strings.ToUpper(homeCountry),
	}
}

// Normalize runs the full pipeline on a party. The service type, when
// non-empty, must already be in canonical form; it is substituted with its
// domestic or international equivalent when the destination requires it.
func (n *Normalizer) Normalize(ctx context.Context, party shipping.Party, serviceType string) (*Result, error) {
	country := CountryCode(party.Address.CountryCode)

	if serviceType != "" {
		serviceType = n.convertServiceType(serviceType, country)
		if country != n.homeCountry && !n.mapper.IsInternational(serviceType) {
			return nil, &shipping.UnsupportedServiceError{
				Carrier:     n.mapper.Carrier(),
				ServiceType: serviceType,
				Country:     country,
			}
		}
	}

	state := party.Address.StateCode
	if country == "US" || country == "CA" {
		state = StateCode(state, country)
	}

	addr := shipping.Address{
		StreetLines: CleanStreetLines(party.Address.StreetLines),
		City:        strings.TrimSpace(party.Address.City),
		StateCode:   state,
		PostalCode:  strings.TrimSpace(party.Address.PostalCode),
		CountryCode: country,
	}

	validated, err := n.validator.ValidateAddress(ctx, addr)
	if err != nil {
		return nil, err
	}
	merge(&addr, validated.Address)

	residential := validated.Classification == ClassificationResidential
	addr.Residential = residential

	result := &Result{
		Party: shipping.Party{
			Contact: shipping.Contact{
				Name:    party.Contact.Name,
				Company: party.Contact.Company,
				Phone:   PhoneNumber(party.Contact.Phone, country),
				Email:   party.Contact.Email,
			},
			Address: addr,
		},
		ServiceType: serviceType,
		Residential: residential,
	}
	return result, nil
}

// HomeCountry returns the configured home country code.
func (n *Normalizer) HomeCountry() string {
	return n.homeCountry
}

// convertServiceType swaps a service code for its cross-border equivalent:
// international codes become domestic for home-country destinations, and
// domestic codes become international for everything else. Codes without an
// equivalence entry pass through.
func (n *Normalizer) convertServiceType(code, country string) string {
	isInternational := n.mapper.IsInternational(code)

	if country == n.homeCountry && isInternational {
		if domestic, ok := n.mapper.DomesticEquivalent(code); ok {
			return domestic
		}
		return code
	}
	if country != n.homeCountry && !isInternational {
		if international, ok := n.mapper.InternationalEquivalent(code); ok {
			return international
		}
	}
	return code
}

// merge overwrites addr fields with the validator's corrections, keeping the
// original value where validation returned nothing.
func merge(addr *shipping.Address, validated shipping.Address) {
	if len(validated.StreetLines) > 0 {
		addr.StreetLines = validated.StreetLines
	}
	if validated.City != "" {
		addr.City = validated.City
	}
	if validated.StateCode != "" {
		addr.StateCode = validated.StateCode
	}
	if validated.PostalCode != "" {
		addr.PostalCode = validated.PostalCode
	}
}

// CountryCode resolves a country name or code to ISO alpha-2. Unknown input
// passes through uppercased.
func CountryCode(country string) string {
	country = strings.ToUpper(strings.TrimSpace(country))
	if code, ok := countryCodes[country]; ok {
		return code
	}
	return country
}

// StateCode resolves a US state or Canadian province name to its two-letter
// code. Two-letter alphabetic input is assumed to already be a code.
func StateCode(state, countryCode string) string {
	state = strings.ToUpper(strings.TrimSpace(state))
	if isTwoLetterCode(state) {
		return state
	}
	if countryCode == "CA" {
		if code, ok := caProvinces[state]; ok {
			return code
		}
		return state
	}
	if code, ok := usStates[state]; ok {
		return code
	}
	return state
}

// PhoneNumber strips formatting and applies per-country digit rules: US and
// CA numbers are reduced to ten digits with a leading country code "1"
// dropped; GB numbers drop the leading trunk "0". Other countries keep the
// bare digits.
func PhoneNumber(phone, countryCode string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	p := digits.String()

	switch countryCode {
	case "US", "CA":
		if len(p) == 10 {
			return p
		}
		if len(p) == 11 && p[0] == '1' {
			return p[1:]
		}
	case "GB":
		if len(p) == 11 && p[0] == '0' {
			return p[1:]
		}
	}
	return p
}

var (
	streetCharsRe = regexp.MustCompile(`[^\p{L}\p{N}\s\-.,#]`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// CleanStreetLines strips special characters from street lines, keeping
// letters, digits and basic punctuation, and collapses runs of whitespace.
func CleanStreetLines(lines []string) []string {
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = streetCharsRe.ReplaceAllString(line, "")
		line = whitespaceRe.ReplaceAllString(line, " ")
		cleaned = append(cleaned, strings.TrimSpace(line))
	}
	return cleaned
}

func isTwoLetterCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
