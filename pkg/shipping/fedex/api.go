package fedex

import (
	"context"
	"time"

	"github.com/parcelforge/shipping/pkg/shipping"
)

// TokenFunc supplies a currently valid bearer token for API calls.
type TokenFunc func(ctx context.Context) (string, error)

// APIClient defines the interface for FedEx REST API operations. The HTTP
// implementation talks to the sandbox or live endpoint; the mock serves
// tests and mock mode.
type APIClient interface {
	// Configure points the client at an endpoint and sets the token source.
	// Called when an adapter binds an account.
	Configure(baseURL string, tokens TokenFunc)

	// RequestToken performs the OAuth client-credentials exchange.
	RequestToken(ctx context.Context, app *shipping.Application) (string, time.Duration, error)

	// GetRates fetches rate quotes. POST /rate/v1/rates/quotes
	GetRates(ctx context.Context, req *RateRequest) (*RateResponse, error)

	// CreateShipment creates a shipment. POST /ship/v1/shipments
	CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipResponse, error)

	// CancelShipment voids a shipment. PUT /ship/v1/shipments/cancel
	CancelShipment(ctx context.Context, req *CancelRequest) (*CancelResponse, error)

	// Track fetches tracking detail. POST /track/v1/trackingnumbers
	Track(ctx context.Context, req *TrackRequest) (*TrackResponse, error)

	// ValidateAddress resolves an address. POST /address/v1/addresses/resolve
	ValidateAddress(ctx context.Context, req *AddressValidationRequest) (*AddressValidationResponse, error)
}

// ============================================================================
// API Request/Response Types (match FedEx REST API structure)
// ============================================================================

// AccountNumber is FedEx's wrapped account number.
type AccountNumber struct {
	Value string `json:"value"`
}

// APIAddress is the FedEx address shape.
type APIAddress struct {
	StreetLines         []string `json:"streetLines"`
	City                string   `json:"city"`
	StateOrProvinceCode string   `json:"stateOrProvinceCode,omitempty"`
	PostalCode          string   `json:"postalCode"`
	CountryCode         string   `json:"countryCode"`
	Residential         bool     `json:"residential,omitempty"`
}

// APIContact is the FedEx contact shape.
type APIContact struct {
	PersonName   string `json:"personName,omitempty"`
	CompanyName  string `json:"companyName,omitempty"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`
}

// TIN is a tax identification entry.
type TIN struct {
	Number  string `json:"number"`
	TinType string `json:"tinType"`
}

// APIParty is a contact plus address.
type APIParty struct {
	Contact APIContact `json:"contact"`
	Address APIAddress `json:"address"`
	Tins    []TIN      `json:"tins,omitempty"`
}

// Weight in the FedEx unit/value shape.
type Weight struct {
	Units string  `json:"units"`
	Value float64 `json:"value"`
}

// Dimensions in the FedEx shape.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Units  string  `json:"units"`
}

// PackageSpecialServices carries per-package options like signature.
type PackageSpecialServices struct {
	SpecialServiceTypes []string `json:"specialServiceTypes,omitempty"`
	SignatureOptionType string   `json:"signatureOptionType,omitempty"`
}

// PackageLineItem is one requested package.
type PackageLineItem struct {
	SequenceNumber         int                     `json:"sequenceNumber,omitempty"`
	Weight                 Weight                  `json:"weight"`
	Dimensions             Dimensions              `json:"dimensions"`
	ItemDescription        string                  `json:"itemDescription,omitempty"`
	PackageSpecialServices *PackageSpecialServices `json:"packageSpecialServices,omitempty"`
}

// ResponsibleParty identifies who pays.
type ResponsibleParty struct {
	AccountNumber AccountNumber `json:"accountNumber"`
	Address       *APIAddress   `json:"address,omitempty"`
}

// Payor wraps the responsible party.
type Payor struct {
	ResponsibleParty ResponsibleParty `json:"responsibleParty"`
}

// PaymentDetail is a charges or duties payment clause.
type PaymentDetail struct {
	PaymentType string `json:"paymentType"`
	Payor       *Payor `json:"payor,omitempty"`
}

// Money is a currency amount.
type Money struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

// Commodity is a customs line item.
type Commodity struct {
	Description          string `json:"description"`
	Quantity             int    `json:"quantity"`
	QuantityUnits        string `json:"quantityUnits"`
	UnitPrice            Money  `json:"unitPrice"`
	CustomsValue         Money  `json:"customsValue"`
	Weight               Weight `json:"weight"`
	HarmonizedCode       string `json:"harmonizedCode,omitempty"`
	CountryOfManufacture string `json:"countryOfManufacture"`
}

// ImporterOfRecord identifies the importer when it differs from the
// recipient.
type ImporterOfRecord struct {
	Contact       APIContact    `json:"contact"`
	Address       APIAddress    `json:"address"`
	AccountNumber AccountNumber `json:"accountNumber"`
	Tins          []TIN         `json:"tins,omitempty"`
}

// CustomsClearanceDetail carries duties payment and commodities.
type CustomsClearanceDetail struct {
	DutiesPayment    PaymentDetail     `json:"dutiesPayment"`
	Commodities      []Commodity       `json:"commodities,omitempty"`
	ImporterOfRecord *ImporterOfRecord `json:"importerOfRecord,omitempty"`
}

// Reference is a shipment reference entry.
type Reference struct {
	ReferenceType string `json:"referenceType"`
	Value         string `json:"value"`
}

// RMADetail carries the return merchandise authorization reason.
type RMADetail struct {
	Reason string `json:"reason,omitempty"`
}

// ReturnEmailDetail holds the merchant contact for emailed return labels.
type ReturnEmailDetail struct {
	MerchantPhoneNumber string `json:"merchantPhoneNumber,omitempty"`
}

// ReturnAssociationDetail links a return to the outbound shipment.
type ReturnAssociationDetail struct {
	TrackingNumber string `json:"trackingNumber,omitempty"`
	ShipDatestamp  string `json:"shipDatestamp,omitempty"`
}

// ReturnShipmentDetail configures a return shipment.
type ReturnShipmentDetail struct {
	ReturnType              string                   `json:"returnType"`
	ReturnEmailDetail       *ReturnEmailDetail       `json:"returnEmailDetail,omitempty"`
	RMA                     *RMADetail               `json:"rma,omitempty"`
	ReturnAssociationDetail *ReturnAssociationDetail `json:"returnAssociationDetail,omitempty"`
}

// EmailLabelRecipient is one recipient of an emailed pending label.
type EmailLabelRecipient struct {
	EmailAddress string `json:"emailAddress"`
	Role         string `json:"role"`
}

// EmailLabelDetail lists pending-label recipients.
type EmailLabelDetail struct {
	Recipients []EmailLabelRecipient `json:"recipients"`
}

// PendingShipmentDetail configures an emailed pending shipment.
type PendingShipmentDetail struct {
	PendingShipmentType string            `json:"pendingShipmentType"`
	EmailLabelDetail    *EmailLabelDetail `json:"emailLabelDetail,omitempty"`
	ExpirationTimeStamp string            `json:"expirationTimeStamp,omitempty"`
}

// ShipmentSpecialServices carries shipment-level options.
type ShipmentSpecialServices struct {
	SpecialServiceTypes   []string               `json:"specialServiceTypes,omitempty"`
	Reference             *Reference             `json:"reference,omitempty"`
	ReturnShipmentDetail  *ReturnShipmentDetail  `json:"returnShipmentDetail,omitempty"`
	PendingShipmentDetail *PendingShipmentDetail `json:"pendingShipmentDetail,omitempty"`
}

// EmailNotificationRecipient is one ship-notification recipient.
type EmailNotificationRecipient struct {
	Name                           string   `json:"name,omitempty"`
	EmailNotificationRecipientType string   `json:"emailNotificationRecipientType"`
	EmailAddress                   string   `json:"emailAddress"`
	NotificationFormatType         string   `json:"notificationFormatType"`
	NotificationType               string   `json:"notificationType"`
	Locale                         string   `json:"locale,omitempty"`
	NotificationEventType          []string `json:"notificationEventType"`
}

// EmailNotificationDetail groups notification recipients.
type EmailNotificationDetail struct {
	AggregationType             string                       `json:"aggregationType,omitempty"`
	EmailNotificationRecipients []EmailNotificationRecipient `json:"emailNotificationRecipients"`
}

// EmailDetailRecipient is one invoice document recipient.
type EmailDetailRecipient struct {
	EmailAddress     string `json:"emailAddress"`
	EmailAddressType string `json:"emailAddressType"`
}

// DocumentDisposition describes how a generated document is delivered.
type DocumentDisposition struct {
	DispositionType string `json:"dispositionType"`
	EmailDetail     *struct {
		EmailRecipients []EmailDetailRecipient `json:"emailRecipients"`
	} `json:"emailDetail,omitempty"`
}

// ShippingDocumentSpecification requests customs documents.
type ShippingDocumentSpecification struct {
	ShippingDocumentTypes   []string `json:"shippingDocumentTypes"`
	CommercialInvoiceDetail *struct {
		DocumentFormat struct {
			Dispositions []DocumentDisposition `json:"dispositions"`
		} `json:"documentFormat"`
	} `json:"commercialInvoiceDetail,omitempty"`
}

// LabelSpecification selects the label image.
type LabelSpecification struct {
	ImageType      string `json:"imageType"`
	LabelStockType string `json:"labelStockType"`
}

// RequestedShipment is the body shared by rate and ship requests, with the
// fields each endpoint cares about.
type RequestedShipment struct {
	Shipper                       APIParty                       `json:"shipper"`
	Recipient                     *APIParty                      `json:"recipient,omitempty"`
	Recipients                    []APIParty                     `json:"recipients,omitempty"`
	PickupType                    string                         `json:"pickupType"`
	ServiceType                   string                         `json:"serviceType,omitempty"`
	PackagingType                 string                         `json:"packagingType"`
	RateRequestType               []string                       `json:"rateRequestType,omitempty"`
	TotalPackageCount             int                            `json:"totalPackageCount,omitempty"`
	RequestedPackageLineItems     []PackageLineItem              `json:"requestedPackageLineItems"`
	LabelSpecification            *LabelSpecification            `json:"labelSpecification,omitempty"`
	ShippingChargesPayment        *PaymentDetail                 `json:"shippingChargesPayment,omitempty"`
	ShipmentSpecialServices       *ShipmentSpecialServices       `json:"shipmentSpecialServices,omitempty"`
	EmailNotificationDetail       *EmailNotificationDetail       `json:"emailNotificationDetail,omitempty"`
	CustomsClearanceDetail        *CustomsClearanceDetail        `json:"customsClearanceDetail,omitempty"`
	ShippingDocumentSpecification *ShippingDocumentSpecification `json:"shippingDocumentSpecification,omitempty"`
	BlockInsightVisibility        *bool                          `json:"blockInsightVisibility,omitempty"`
}

// RateRequest is the rate quote request body.
type RateRequest struct {
	AccountNumber     *AccountNumber    `json:"accountNumber,omitempty"`
	RequestedShipment RequestedShipment `json:"requestedShipment"`
}

// ShipmentRequest is the ship request body.
type ShipmentRequest struct {
	RequestedShipment    RequestedShipment `json:"requestedShipment"`
	AccountNumber        AccountNumber     `json:"accountNumber"`
	LabelResponseOptions string            `json:"labelResponseOptions"`
}

// CancelRequest voids a shipment by tracking number.
type CancelRequest struct {
	AccountNumber     AccountNumber `json:"accountNumber"`
	EmailShipment     string        `json:"emailShipment"`
	SenderCountryCode string        `json:"senderCountryCode"`
	DeletionControl   string        `json:"deletionControl"`
	TrackingNumber    string        `json:"trackingNumber"`
}

// TrackingNumberInfo identifies one tracked shipment.
type TrackingNumberInfo struct {
	TrackingNumber string `json:"trackingNumber"`
}

// TrackingInfo wraps the tracking number info.
type TrackingInfo struct {
	TrackingNumberInfo TrackingNumberInfo `json:"trackingNumberInfo"`
}

// TrackRequest is the tracking request body.
type TrackRequest struct {
	IncludeDetailedScans bool           `json:"includeDetailedScans"`
	TrackingInfo         []TrackingInfo `json:"trackingInfo"`
}

// AddressToValidate wraps one address for resolution.
type AddressToValidate struct {
	Address APIAddress `json:"address"`
}

// AddressValidationRequest is the address resolution request body.
type AddressValidationRequest struct {
	AddressesToValidate []AddressToValidate `json:"addressesToValidate"`
}

// ----------------------------------------------------------------------------
// Responses
// ----------------------------------------------------------------------------

// TokenResponse is the OAuth exchange response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// RatedShipmentDetail is one rate figure for a service.
type RatedShipmentDetail struct {
	RateType       string  `json:"rateType"`
	TotalNetCharge float64 `json:"totalNetCharge"`
	Currency       string  `json:"currency"`
}

// RateReplyDetail is one service's quote.
type RateReplyDetail struct {
	ServiceType          string                `json:"serviceType"`
	ServiceName          string                `json:"serviceName,omitempty"`
	RatedShipmentDetails []RatedShipmentDetail `json:"ratedShipmentDetails"`
	Commit               *struct {
		TransitDays struct {
			Description string `json:"description,omitempty"`
		} `json:"transitDays,omitempty"`
	} `json:"commit,omitempty"`
}

// RateResponse is the rate quote response.
type RateResponse struct {
	Output struct {
		RateReplyDetails []RateReplyDetail `json:"rateReplyDetails"`
	} `json:"output"`
}

// Surcharge is one fee entry in a rating detail.
type Surcharge struct {
	SurchargeType string  `json:"surchargeType"`
	Description   string  `json:"description,omitempty"`
	Amount        float64 `json:"amount"`
}

// ShipmentRateDetail is the shipment-level rating.
type ShipmentRateDetail struct {
	TotalNetCharge float64     `json:"totalNetCharge"`
	Currency       string      `json:"currency"`
	Surcharges     []Surcharge `json:"surcharges,omitempty"`
}

// PackageRateDetail is the per-package rating.
type PackageRateDetail struct {
	Surcharges []Surcharge `json:"surcharges,omitempty"`
}

// TrackingID is one assigned tracking number.
type TrackingID struct {
	TrackingNumber string `json:"trackingNumber"`
	TrackingIDType string `json:"trackingIdType,omitempty"`
}

// CompletedPackageDetail is one package's result.
type CompletedPackageDetail struct {
	TrackingIDs   []TrackingID `json:"trackingIds"`
	PackageRating struct {
		PackageRateDetails []PackageRateDetail `json:"packageRateDetails"`
	} `json:"packageRating"`
}

// CompletedShipmentDetail is the whole shipment's result.
type CompletedShipmentDetail struct {
	CompletedPackageDetails []CompletedPackageDetail `json:"completedPackageDetails"`
	ShipmentRating          struct {
		ShipmentRateDetails []ShipmentRateDetail `json:"shipmentRateDetails"`
	} `json:"shipmentRating"`
}

// PackageDocument is one returned label artifact.
type PackageDocument struct {
	ContentType  string `json:"contentType"`
	DocType      string `json:"docType"`
	URL          string `json:"url,omitempty"`
	EncodedLabel string `json:"encodedLabel,omitempty"`
}

// PieceResponse holds documents for one package.
type PieceResponse struct {
	PackageDocuments []PackageDocument `json:"packageDocuments"`
}

// TransactionShipment is one created shipment.
type TransactionShipment struct {
	ServiceType             string                  `json:"serviceType"`
	CompletedShipmentDetail CompletedShipmentDetail `json:"completedShipmentDetail"`
	PieceResponses          []PieceResponse         `json:"pieceResponses"`
}

// ShipResponse is the shipment creation response.
type ShipResponse struct {
	Output struct {
		TransactionShipments []TransactionShipment `json:"transactionShipments"`
	} `json:"output"`
}

// CancelResponse is the cancel response. CancelledShipment false with a
// message means the carrier refused the void.
type CancelResponse struct {
	Output struct {
		CancelledShipment bool   `json:"cancelledShipment"`
		Message           string `json:"message,omitempty"`
	} `json:"output"`
}

// TrackError is a body-level tracking failure.
type TrackError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScanEvent is one scan in a shipment's tracking history.
type ScanEvent struct {
	Date             string `json:"date"`
	EventDescription string `json:"eventDescription"`
	DerivedStatus    string `json:"derivedStatus,omitempty"`
	ScanLocation     struct {
		City                string `json:"city,omitempty"`
		StateOrProvinceCode string `json:"stateOrProvinceCode,omitempty"`
		CountryCode         string `json:"countryCode,omitempty"`
	} `json:"scanLocation"`
}

// DateAndTime is one dated milestone in a track result.
type DateAndTime struct {
	Type     string `json:"type"`
	DateTime string `json:"dateTime"`
}

// TrackResult is one shipment's tracking detail.
type TrackResult struct {
	Error              *TrackError `json:"error,omitempty"`
	LatestStatusDetail struct {
		Description   string `json:"description,omitempty"`
		DerivedCode   string `json:"derivedCode,omitempty"`
		StatusByLocale string `json:"statusByLocale,omitempty"`
	} `json:"latestStatusDetail"`
	DateAndTimes []DateAndTime `json:"dateAndTimes,omitempty"`
	ScanEvents   []ScanEvent   `json:"scanEvents,omitempty"`
}

// CompleteTrackResult groups track results for one tracking number.
type CompleteTrackResult struct {
	TrackingNumber string        `json:"trackingNumber"`
	TrackResults   []TrackResult `json:"trackResults"`
}

// TrackResponse is the tracking response.
type TrackResponse struct {
	Output struct {
		CompleteTrackResults []CompleteTrackResult `json:"completeTrackResults"`
	} `json:"output"`
}

// ResolvedAddress is one address resolution result.
type ResolvedAddress struct {
	StreetLinesToken    []string `json:"streetLinesToken,omitempty"`
	City                string   `json:"city,omitempty"`
	StateOrProvinceCode string   `json:"stateOrProvinceCode,omitempty"`
	PostalCode          string   `json:"postalCode,omitempty"`
	CountryCode         string   `json:"countryCode,omitempty"`
	Classification      string   `json:"classification,omitempty"`
}

// AddressValidationResponse is the address resolution response.
type AddressValidationResponse struct {
	Output struct {
		ResolvedAddresses []ResolvedAddress `json:"resolvedAddresses"`
	} `json:"output"`
}

// APIErrorDetail is one error entry in a FedEx error body.
type APIErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIError represents an error body from the FedEx API.
type APIError struct {
	Errors     []APIErrorDetail `json:"errors"`
	StatusCode int              `json:"-"`
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return e.Errors[0].Code + ": " + e.Errors[0].Message
	}
	return "fedex api error"
}

// Code returns the first error code, or empty.
func (e *APIError) Code() string {
	if len(e.Errors) > 0 {
		return e.Errors[0].Code
	}
	return ""
}

// Message returns the first error message, or empty.
func (e *APIError) Message() string {
	if len(e.Errors) > 0 {
		return e.Errors[0].Message
	}
	return ""
}
