package shipping

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions callers branch on with errors.Is.
var (
	// ErrAccountNotSet means a carrier operation ran before SetAccount.
	ErrAccountNotSet = errors.New("carrier account not set")

	// ErrAccountNotConfigured means no token record exists for the account.
	ErrAccountNotConfigured = errors.New("account not configured")

	// ErrApplicationNotConfigured means no OAuth application exists for the
	// account.
	ErrApplicationNotConfigured = errors.New("application not configured")

	// ErrUnsupportedCarrier means the carrier type is not in the registry.
	ErrUnsupportedCarrier = errors.New("unsupported carrier")

	// ErrUnsupportedService means the service type cannot serve the
	// destination and no equivalent exists.
	ErrUnsupportedService = errors.New("unsupported service type")

	// ErrLabelNotFound means no label record matches the tracking number.
	ErrLabelNotFound = errors.New("label not found")
)

// CarrierAPIError is a structured rejection from a carrier API: a non-2xx
// response, or a 2xx body that carries carrier-level error entries.
type CarrierAPIError struct {
	Carrier    CarrierType
	Code       string
	Message    string
	StatusCode int
	Cause      error
}

func (e *CarrierAPIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: carrier api error %s: %s", e.Carrier, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: carrier api error: %s", e.Carrier, e.Message)
}

func (e *CarrierAPIError) Unwrap() error { return e.Cause }

// NewCarrierAPIError builds a CarrierAPIError from carrier-supplied code and
// message.
func NewCarrierAPIError(carrier CarrierType, code, message string) *CarrierAPIError {
	return &CarrierAPIError{Carrier: carrier, Code: code, Message: message}
}

// WithStatusCode attaches the HTTP status code.
func (e *CarrierAPIError) WithStatusCode(status int) *CarrierAPIError {
	e.StatusCode = status
	return e
}

// WithCause attaches an underlying error.
func (e *CarrierAPIError) WithCause(cause error) *CarrierAPIError {
	e.Cause = cause
	return e
}

// AddressValidationError means the carrier's address validation service
// rejected the address or could not be reached.
type AddressValidationError struct {
	Carrier CarrierType
	Message string
	Cause   error
}

func (e *AddressValidationError) Error() string {
	return fmt.Sprintf("%s: address validation failed: %s", e.Carrier, e.Message)
}

func (e *AddressValidationError) Unwrap() error { return e.Cause }

// UnsupportedServiceError means the requested service type has no equivalent
// for the shipment's destination.
type UnsupportedServiceError struct {
	Carrier     CarrierType
	ServiceType string
	Country     string
}

func (e *UnsupportedServiceError) Error() string {
	return fmt.Sprintf("%s: service type %q not available for destination %s", e.Carrier, e.ServiceType, e.Country)
}

func (e *UnsupportedServiceError) Is(target error) bool {
	return target == ErrUnsupportedService
}

// TokenRefreshError means the OAuth token exchange for an account failed.
type TokenRefreshError struct {
	Carrier     CarrierType
	AccountName string
	Cause       error
}

func (e *TokenRefreshError) Error() string {
	return fmt.Sprintf("%s: token refresh failed for account %s: %v", e.Carrier, e.AccountName, e.Cause)
}

func (e *TokenRefreshError) Unwrap() error { return e.Cause }

// PartialFailure reports that one or more carriers failed during a rate
// comparison while others succeeded. The comparison result still carries the
// successful quotes.
type PartialFailure struct {
	// Errors maps the failed account name to its error.
	Errors map[string]error
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("rate comparison: %d carrier(s) failed", len(e.Errors))
}
