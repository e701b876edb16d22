package shipping

import (
	"time"
)

// CarrierType identifies a supported carrier. The set is closed: adapters
// exist only for the carriers enumerated here.
type CarrierType string

const (
	CarrierFedEx CarrierType = "fedex"
	CarrierUPS   CarrierType = "ups"
)

// LabelStatus represents the lifecycle state of a shipping label.
type LabelStatus string

const (
	LabelActive    LabelStatus = "ACTIVE"
	LabelCancelled LabelStatus = "CANCELLED"
)

// SignatureType represents a signature requirement on delivery.
type SignatureType string

const (
	SignatureDirect      SignatureType = "DIRECT"
	SignatureIndirect    SignatureType = "INDIRECT"
	SignatureAdult       SignatureType = "ADULT"
	SignatureNotRequired SignatureType = "NO_SIGNATURE_REQUIRED"
)

// DutiesPayor identifies who pays duties and taxes on an international move.
type DutiesPayor string

const (
	DutiesRecipient  DutiesPayor = "RECIPIENT"
	DutiesShipper    DutiesPayor = "SHIPPER"
	DutiesThirdParty DutiesPayor = "THIRD_PARTY"
)

// Contact represents the person attached to an address.
type Contact struct {
	Name    string
	Company string
	Phone   string
	Email   string
}

// Address represents a postal address. StateCode and CountryCode are the
// normalized two-letter codes once the address has passed through the
// normalizer; before that they may hold free text.
type Address struct {
	StreetLines []string
	City        string
	StateCode   string
	PostalCode  string
	CountryCode string
	Residential bool
}

// Party is a contact plus address, e.g. shipper or recipient.
type Party struct {
	Contact Contact
	Address Address
}

// Package represents one physical package. Dimensions are inches, weight
// is pounds; both carriers are fed imperial units on the wire.
type Package struct {
	Weight        float64
	Length        float64
	Width         float64
	Height        float64
	DeclaredValue float64
	BoxID         string
}

// CommodityItem is a customs line item for international shipments.
type CommodityItem struct {
	Description          string
	Quantity             int
	UnitPrice            float64
	Weight               float64
	HarmonizedCode       string
	CountryOfManufacture string
	UnitOfMeasurement    string
}

// Importer identifies the importer of record when it differs from the
// recipient.
type Importer struct {
	Party         Party
	AccountNumber string
	TaxID         string
	VATNumber     string
}

// Notification describes one ship-notification email.
type Notification struct {
	Email       string
	FailedEmail string
	FromEmail   string
	FromName    string
	Subject     string
	Message     string
	Phone       string
	Code        string
}

// Options carries the optional parts of a shipment request: signature,
// notifications, billing and customs data.
type Options struct {
	SignatureRequired bool
	SignatureType     SignatureType
	Notifications     []Notification

	DutiesPaymentType DutiesPayor
	ThirdPartyAccount string
	ThirdParty        *Party
	Importer          *Importer

	Currency             string
	ReasonForExport      string
	Items                []CommodityItem
	DeclarationStatement string
	Comments             string

	InvoiceNumber    string
	InvoiceDate      string
	CustomerPONumber string
	MarketOrderID    string
	Reference        string
}

// ShipmentRequest is the canonical input to rate and label operations.
type ShipmentRequest struct {
	Shipper     Party
	Recipient   Party
	Packages    []Package
	ServiceType string
	Options     Options
}

// ReturnOptions configures return-label creation.
type ReturnOptions struct {
	// ReturnAddress is where the package ships back to. Nil means the
	// configured default return address.
	ReturnAddress          *Party
	Reason                 string
	RMANumber              string
	OriginalTrackingNumber string
	ShipDate               string
	// PrintLabel requests an immediately printable label instead of an
	// emailed pending one.
	PrintLabel bool
	ExpiresAt  time.Time
}

// Rate is one canonical rate quote.
type Rate struct {
	Carrier     CarrierType
	AccountName string
	ServiceType string
	ServiceCode string
	TotalCharge float64
	Currency    string
	TransitTime string
	Negotiated  bool
}

// Label is the canonical record of one created label. A multi-package
// shipment produces one Label per physical package; shipment-level cost and
// fees are attributed to the first package row only.
type Label struct {
	ID            string
	Carrier       CarrierType
	AccountName   string
	AccountNumber string

	TrackingNumber string
	ServiceType    string

	// BaseCost is the carrier's shipment-level charge; Cost is BaseCost
	// with the account markup applied.
	BaseCost float64
	Cost     float64
	Currency string

	ShipmentFees       map[string]float64
	PackageFees        map[string]float64
	AdditionalHandling float64

	LabelURL    string
	ImageFormat string

	ShipperInfo   Party
	RecipientInfo Party
	PackageInfo   Package
	BoxID         string

	InvoiceNumber    string
	CustomerPONumber string
	MarketOrderID    string

	IsReturn  bool
	RMANumber string

	Status             LabelStatus
	CreatedAt          time.Time
	CancelledAt        *time.Time
	CancelledBy        string
	CancellationReason string
}

// TrackingEvent is one scan in a shipment's history.
type TrackingEvent struct {
	Timestamp   time.Time
	Description string
	Location    string
	Status      string
}

// TrackingResult is the canonical tracking response.
type TrackingResult struct {
	TrackingNumber    string
	Status            string
	Events            []TrackingEvent
	EstimatedDelivery *time.Time
}

// Account is the read-only configuration for one carrier account.
type Account struct {
	Name          string
	Carrier       CarrierType
	AccountNumber string
	// Markup is the per-account multiplier: finalCost = base * (1 + Markup).
	Markup float64
}

// Application holds the OAuth application credentials for a carrier account.
type Application struct {
	ID            string
	Carrier       CarrierType
	ApplicationID string
	SharedSecret  string
	Name          string
	Sandbox       bool
}

// Token is one cached OAuth access token. At most one token record is
// current per account.
type Token struct {
	ID            string
	AccountName   string
	Carrier       CarrierType
	AccountNumber string
	AppID         string
	AccessToken   string
	RefreshToken  string
	ExpiresAt     *time.Time
}
