package ups

import (
	"context"
	"strings"
	"time"

	"github.com/parcelforge/shipping/pkg/shipping"
)

// TokenFunc supplies a currently valid bearer token for API calls.
type TokenFunc func(ctx context.Context) (string, error)

// APIClient defines the interface for UPS REST API operations.
type APIClient interface {
	// Configure points the client at an endpoint and sets the token source.
	Configure(baseURL string, tokens TokenFunc)

	// RequestToken performs the OAuth client-credentials exchange.
	RequestToken(ctx context.Context, app *shipping.Application) (string, time.Duration, error)

	// GetRates shops rate quotes. POST /api/rating/v2409/Shop
	GetRates(ctx context.Context, req *RateRequest) (*RateResponse, error)

	// CreateShipment creates a shipment. POST /api/shipments/v2409/ship
	CreateShipment(ctx context.Context, req *ShipRequest) (*ShipResponse, error)

	// VoidShipment voids a shipment. DELETE /api/shipments/v2409/void/cancel/{trackingNumber}
	VoidShipment(ctx context.Context, trackingNumber string) (*VoidResponse, error)

	// Track fetches tracking detail. GET /api/track/v1/details/{trackingNumber}
	Track(ctx context.Context, trackingNumber string) (*TrackResponse, error)

	// ValidateAddress runs street-level validation. POST /api/addressvalidation/v2/3
	ValidateAddress(ctx context.Context, req *XAVRequest) (*XAVResponse, error)
}

// ============================================================================
// API Request/Response Types (match UPS REST API structure)
// ============================================================================
//
// UPS serializes numeric figures as strings on the wire; the types below
// keep them as strings and conversion happens at the decompose layer.

// CodeDescription is UPS's pervasive code/description pair.
type CodeDescription struct {
	Code        string `json:"Code"`
	Description string `json:"Description,omitempty"`
}

// Money is a currency amount.
type Money struct {
	CurrencyCode  string `json:"CurrencyCode"`
	MonetaryValue string `json:"MonetaryValue"`
}

// Phone is a contact phone number.
type Phone struct {
	Number    string `json:"Number"`
	Extension string `json:"Extension,omitempty"`
}

// APIAddress is the UPS address shape.
type APIAddress struct {
	AddressLine       []string `json:"AddressLine"`
	City              string   `json:"City"`
	StateProvinceCode string   `json:"StateProvinceCode,omitempty"`
	PostalCode        string   `json:"PostalCode"`
	CountryCode       string   `json:"CountryCode"`
}

// ShipParty is a shipper, ship-to or ship-from party.
type ShipParty struct {
	Name                   string     `json:"Name"`
	AttentionName          string     `json:"AttentionName,omitempty"`
	CompanyDisplayableName string     `json:"CompanyDisplayableName,omitempty"`
	ShipperNumber          string     `json:"ShipperNumber,omitempty"`
	Phone                  *Phone     `json:"Phone,omitempty"`
	EMailAddress           string     `json:"EMailAddress,omitempty"`
	Address                APIAddress `json:"Address"`
	ResidentialIndicator   string     `json:"ResidentialIndicator,omitempty"`
}

// Dimensions in the UPS string-valued shape.
type Dimensions struct {
	UnitOfMeasurement CodeDescription `json:"UnitOfMeasurement"`
	Length            string          `json:"Length"`
	Width             string          `json:"Width"`
	Height            string          `json:"Height"`
}

// PackageWeight in the UPS string-valued shape.
type PackageWeight struct {
	UnitOfMeasurement CodeDescription `json:"UnitOfMeasurement"`
	Weight            string          `json:"Weight"`
}

// ReferenceNumber is one package or shipment reference.
type ReferenceNumber struct {
	Code             string `json:"Code,omitempty"`
	Value            string `json:"Value"`
	BarCodeIndicator string `json:"BarCodeIndicator,omitempty"`
}

// DeliveryConfirmation requests a signature on delivery.
type DeliveryConfirmation struct {
	DCISType string `json:"DCISType"`
}

// PackageServiceOptions carries per-package options.
type PackageServiceOptions struct {
	DeliveryConfirmation *DeliveryConfirmation `json:"DeliveryConfirmation,omitempty"`
}

// APIPackage is one package. Ship requests use Packaging, rate requests use
// PackagingType; only one is set per call.
type APIPackage struct {
	Packaging             *CodeDescription       `json:"Packaging,omitempty"`
	PackagingType         *CodeDescription       `json:"PackagingType,omitempty"`
	Dimensions            Dimensions             `json:"Dimensions"`
	PackageWeight         PackageWeight          `json:"PackageWeight"`
	ReferenceNumber       []ReferenceNumber      `json:"ReferenceNumber,omitempty"`
	PackageServiceOptions *PackageServiceOptions `json:"PackageServiceOptions,omitempty"`
}

// AccountNumber is UPS's wrapped account number.
type AccountNumber struct {
	Value string `json:"Value"`
}

// BillShipper bills the shipper's account.
type BillShipper struct {
	AccountNumber AccountNumber `json:"AccountNumber"`
}

// BillThirdParty bills a third-party account.
type BillThirdParty struct {
	AccountNumber AccountNumber `json:"AccountNumber"`
	Address       *APIAddress   `json:"Address,omitempty"`
}

// ShipmentCharge is one charge clause. Type 01 is transportation, 02 is
// duties and taxes.
type ShipmentCharge struct {
	Type           string          `json:"Type"`
	BillShipper    *BillShipper    `json:"BillShipper,omitempty"`
	BillReceiver   *struct{}       `json:"BillReceiver,omitempty"`
	BillThirdParty *BillThirdParty `json:"BillThirdParty,omitempty"`
}

// PaymentInformation groups the shipment charges.
type PaymentInformation struct {
	ShipmentCharge []ShipmentCharge `json:"ShipmentCharge"`
}

// ShipmentRatingOptions requests negotiated rates.
type ShipmentRatingOptions struct {
	NegotiatedRatesIndicator string `json:"NegotiatedRatesIndicator"`
}

// EmailNotification is the email block of a quantum-view notification.
type EmailNotification struct {
	EMailAddress             string `json:"EMailAddress"`
	UndeliverableEMailAddress string `json:"UndeliverableEMailAddress,omitempty"`
	FromEMailAddress         string `json:"FromEMailAddress,omitempty"`
	FromName                 string `json:"FromName,omitempty"`
	Subject                  string `json:"Subject,omitempty"`
	Message                  string `json:"Message,omitempty"`
}

// PhoneMessage carries a phone number for voice or text notifications.
type PhoneMessage struct {
	PhoneNumber string `json:"PhoneNumber"`
}

// Locale selects the notification language.
type Locale struct {
	Language string `json:"Language"`
	Dialect  string `json:"Dialect"`
}

// APINotification is one quantum-view notification entry. Code 6 is the ship
// notification.
type APINotification struct {
	NotificationCode string            `json:"NotificationCode"`
	EMail            EmailNotification `json:"EMail"`
	VoiceMessage     *PhoneMessage     `json:"VoiceMessage,omitempty"`
	TextMessage      *PhoneMessage     `json:"TextMessage,omitempty"`
	Locale           *Locale           `json:"Locale,omitempty"`
}

// ProductUnit is the quantity and unit price of a customs product.
type ProductUnit struct {
	Number            string          `json:"Number"`
	Value             string          `json:"Value"`
	UnitOfMeasurement CodeDescription `json:"UnitOfMeasurement"`
}

// Product is one customs line item on the international forms.
type Product struct {
	Description       string      `json:"Description"`
	CommodityCode     string      `json:"CommodityCode,omitempty"`
	OriginCountryCode string      `json:"OriginCountryCode"`
	Unit              ProductUnit `json:"Unit"`
}

// FormCharge is one charge entry on the international forms.
type FormCharge struct {
	Type          string `json:"Type"`
	MonetaryValue string `json:"MonetaryValue"`
}

// ImporterOfRecord identifies the importer when it differs from the
// consignee.
type ImporterOfRecord struct {
	Name                    string     `json:"Name"`
	Address                 APIAddress `json:"Address"`
	Phone                   *Phone     `json:"Phone,omitempty"`
	EMailAddress            string     `json:"EMailAddress,omitempty"`
	TaxIdentificationNumber string     `json:"TaxIdentificationNumber,omitempty"`
	VATNumber               string     `json:"VATNumber,omitempty"`
}

// FormContacts names the sold-to party on the invoice.
type FormContacts struct {
	SoldTo ShipParty `json:"SoldTo"`
}

// InternationalForms requests commercial and proforma invoices.
type InternationalForms struct {
	FormType                               string            `json:"FormType"`
	InvoiceNumber                          string            `json:"InvoiceNumber,omitempty"`
	InvoiceDate                            string            `json:"InvoiceDate"`
	ReasonForExport                        string            `json:"ReasonForExport"`
	CurrencyCode                           string            `json:"CurrencyCode"`
	Contacts                               *FormContacts     `json:"Contacts,omitempty"`
	Product                                []Product         `json:"Product"`
	Charges                                []FormCharge      `json:"Charges,omitempty"`
	DeclarationStatement                   string            `json:"DeclarationStatement,omitempty"`
	TermsOfShipment                        string            `json:"TermsOfShipment,omitempty"`
	Comments                               string            `json:"Comments,omitempty"`
	Purpose                                string            `json:"Purpose,omitempty"`
	DocumentIndicator                      string            `json:"DocumentIndicator,omitempty"`
	ProformaIndicator                      string            `json:"ProformaIndicator,omitempty"`
	PaperlessDocumentIndicator             string            `json:"PaperlessDocumentIndicator,omitempty"`
	PrintCopyOfPaperlessDocumentsIndicator string            `json:"PrintCopyOfPaperlessDocumentsIndicator,omitempty"`
	ImporterOfRecord                       *ImporterOfRecord `json:"ImporterOfRecord,omitempty"`
}

// InternationalDetail selects the brokerage option. 02 bills duties to the
// recipient.
type InternationalDetail struct {
	BrokerageOption string `json:"BrokerageOption"`
}

// ShipmentServiceOptions carries shipment-level options.
type ShipmentServiceOptions struct {
	Notification        []APINotification    `json:"Notification,omitempty"`
	InternationalForms  *InternationalForms  `json:"InternationalForms,omitempty"`
	InternationalDetail *InternationalDetail `json:"InternationalDetail,omitempty"`
}

// Shipment is the body shared by rate and ship requests.
type Shipment struct {
	Description            string                  `json:"Description,omitempty"`
	Shipper                ShipParty               `json:"Shipper"`
	ShipTo                 ShipParty               `json:"ShipTo"`
	ShipFrom               *ShipParty              `json:"ShipFrom,omitempty"`
	PaymentInformation     *PaymentInformation     `json:"PaymentInformation,omitempty"`
	ShipmentRatingOptions  *ShipmentRatingOptions  `json:"ShipmentRatingOptions,omitempty"`
	Service                CodeDescription         `json:"Service"`
	InvoiceLineTotal       *Money                  `json:"InvoiceLineTotal,omitempty"`
	Package                []APIPackage            `json:"Package"`
	ShipmentServiceOptions *ShipmentServiceOptions `json:"ShipmentServiceOptions,omitempty"`
	ReturnService          *CodeDescription        `json:"ReturnService,omitempty"`
	ReferenceNumber        *ReferenceNumber        `json:"ReferenceNumber,omitempty"`
}

// TransactionReference tags a request.
type TransactionReference struct {
	CustomerContext string `json:"CustomerContext,omitempty"`
}

// APIRequest is the Request block of rate and ship bodies.
type APIRequest struct {
	RequestOption        string                `json:"RequestOption,omitempty"`
	SubVersion           string                `json:"SubVersion,omitempty"`
	TransactionReference *TransactionReference `json:"TransactionReference,omitempty"`
}

// LabelStockSize selects the label dimensions in inches.
type LabelStockSize struct {
	Height string `json:"Height"`
	Width  string `json:"Width"`
}

// LabelSpecification selects the label image.
type LabelSpecification struct {
	LabelImageFormat CodeDescription `json:"LabelImageFormat"`
	LabelStockSize   *LabelStockSize `json:"LabelStockSize,omitempty"`
}

// RateRequest is the rate quote request body.
type RateRequest struct {
	RateRequest struct {
		Request  APIRequest `json:"Request"`
		Shipment Shipment   `json:"Shipment"`
	} `json:"RateRequest"`
}

// ShipRequest is the ship request body.
type ShipRequest struct {
	ShipmentRequest struct {
		Request            APIRequest          `json:"Request"`
		Shipment           Shipment            `json:"Shipment"`
		LabelSpecification *LabelSpecification `json:"LabelSpecification,omitempty"`
	} `json:"ShipmentRequest"`
}

// AddressKeyFormat is the XAV address shape.
type AddressKeyFormat struct {
	AddressLine        []string `json:"AddressLine"`
	PoliticalDivision2 string   `json:"PoliticalDivision2,omitempty"`
	PoliticalDivision1 string   `json:"PoliticalDivision1,omitempty"`
	PostcodePrimaryLow string   `json:"PostcodePrimaryLow,omitempty"`
	CountryCode        string   `json:"CountryCode"`
}

// XAVRequest is the address validation request body.
type XAVRequest struct {
	XAVRequest struct {
		AddressKeyFormat AddressKeyFormat `json:"AddressKeyFormat"`
	} `json:"XAVRequest"`
}

// ----------------------------------------------------------------------------
// Responses
// ----------------------------------------------------------------------------

// ItemizedCharge is one accessorial fee. Code 100 is additional handling.
type ItemizedCharge struct {
	Code          string `json:"Code"`
	Description   string `json:"Description,omitempty"`
	CurrencyCode  string `json:"CurrencyCode,omitempty"`
	MonetaryValue string `json:"MonetaryValue"`
}

// ChargeBreakdown groups a total with its itemized fees.
type ChargeBreakdown struct {
	TotalCharge     Money            `json:"TotalCharge"`
	ItemizedCharges []ItemizedCharge `json:"ItemizedCharges,omitempty"`
}

// ShipmentCharges is the published charge block.
type ShipmentCharges struct {
	TotalCharges    Money            `json:"TotalCharges"`
	ItemizedCharges []ItemizedCharge `json:"ItemizedCharges,omitempty"`
}

// GuaranteedDelivery carries the committed transit time.
type GuaranteedDelivery struct {
	BusinessDaysInTransit string `json:"BusinessDaysInTransit,omitempty"`
	DeliveryByTime        string `json:"DeliveryByTime,omitempty"`
}

// RatedShipment is one service's quote.
type RatedShipment struct {
	Service              CodeDescription     `json:"Service"`
	TotalCharges         Money               `json:"TotalCharges"`
	NegotiatedRateCharges *ChargeBreakdown   `json:"NegotiatedRateCharges,omitempty"`
	GuaranteedDelivery   *GuaranteedDelivery `json:"GuaranteedDelivery,omitempty"`
}

// RateResponse is the rate quote response.
type RateResponse struct {
	RateResponse struct {
		RatedShipment []RatedShipment `json:"RatedShipment"`
	} `json:"RateResponse"`
}

// ShippingLabel is one returned label image.
type ShippingLabel struct {
	ImageFormat  CodeDescription `json:"ImageFormat"`
	GraphicImage string          `json:"GraphicImage"`
}

// NegotiatedCharges is the per-package negotiated fee block.
type NegotiatedCharges struct {
	ItemizedCharges []ItemizedCharge `json:"ItemizedCharges,omitempty"`
}

// PackageResult is one package's result.
type PackageResult struct {
	TrackingNumber    string             `json:"TrackingNumber"`
	ShippingLabel     *ShippingLabel     `json:"ShippingLabel,omitempty"`
	ItemizedCharges   []ItemizedCharge   `json:"ItemizedCharges,omitempty"`
	NegotiatedCharges *NegotiatedCharges `json:"NegotiatedCharges,omitempty"`
}

// ShipmentResults is the created shipment's result block.
type ShipmentResults struct {
	ShipmentIdentificationNumber string           `json:"ShipmentIdentificationNumber"`
	ShipmentCharges              *ShipmentCharges `json:"ShipmentCharges,omitempty"`
	NegotiatedRateCharges        *ChargeBreakdown `json:"NegotiatedRateCharges,omitempty"`
	PackageResults               []PackageResult  `json:"PackageResults"`
}

// ShipResponse is the shipment creation response.
type ShipResponse struct {
	ShipmentResponse struct {
		ShipmentResults ShipmentResults `json:"ShipmentResults"`
	} `json:"ShipmentResponse"`
}

// VoidResponse is the void response. SummaryResult status code 1 means the
// void succeeded.
type VoidResponse struct {
	VoidShipmentResponse struct {
		SummaryResult struct {
			Status CodeDescription `json:"Status"`
		} `json:"SummaryResult"`
	} `json:"VoidShipmentResponse"`
}

// TrackActivity is one scan in a tracked package's history.
type TrackActivity struct {
	Location struct {
		Address struct {
			City          string `json:"city,omitempty"`
			StateProvince string `json:"stateProvince,omitempty"`
			Country       string `json:"country,omitempty"`
		} `json:"address"`
	} `json:"location"`
	Status struct {
		Type        string `json:"type,omitempty"`
		Description string `json:"description,omitempty"`
		Code        string `json:"code,omitempty"`
	} `json:"status"`
	Date string `json:"date"`
	Time string `json:"time"`
}

// TrackDeliveryDate is one dated delivery milestone.
type TrackDeliveryDate struct {
	Type string `json:"type"`
	Date string `json:"date"`
}

// TrackPackage is one tracked package.
type TrackPackage struct {
	TrackingNumber string              `json:"trackingNumber"`
	Activity       []TrackActivity     `json:"activity,omitempty"`
	DeliveryDate   []TrackDeliveryDate `json:"deliveryDate,omitempty"`
	CurrentStatus  struct {
		Description string `json:"description,omitempty"`
		Code        string `json:"code,omitempty"`
	} `json:"currentStatus"`
}

// TrackShipment groups packages for one tracked shipment.
type TrackShipment struct {
	Package []TrackPackage `json:"package"`
}

// TrackResponse is the tracking response.
type TrackResponse struct {
	TrackResponse struct {
		Shipment []TrackShipment `json:"shipment"`
	} `json:"trackResponse"`
}

// XAVCandidate is one validated address candidate. Classification code 2 is
// residential.
type XAVCandidate struct {
	AddressClassification *CodeDescription `json:"AddressClassification,omitempty"`
	AddressKeyFormat      AddressKeyFormat `json:"AddressKeyFormat"`
}

// XAVResponse is the address validation response.
type XAVResponse struct {
	XAVResponse struct {
		Candidate []XAVCandidate `json:"Candidate"`
	} `json:"XAVResponse"`
}

// APIErrorDetail is one error entry in a UPS error body.
type APIErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIError represents an error body from the UPS API.
type APIError struct {
	Response struct {
		Errors []APIErrorDetail `json:"errors"`
	} `json:"response"`
	StatusCode int `json:"-"`
}

func (e *APIError) Error() string {
	if len(e.Response.Errors) > 0 {
		messages := make([]string, 0, len(e.Response.Errors))
		for _, detail := range e.Response.Errors {
			messages = append(messages, detail.Message)
		}
		return e.Response.Errors[0].Code + ": " + strings.Join(messages, ", ")
	}
	return "ups api error"
}

// Code returns the first error code, or empty.
func (e *APIError) Code() string {
	if len(e.Response.Errors) > 0 {
		return e.Response.Errors[0].Code
	}
	return ""
}

// Message returns the first error message, or empty.
func (e *APIError) Message() string {
	if len(e.Response.Errors) > 0 {
		return e.Response.Errors[0].Message
	}
	return ""
}
