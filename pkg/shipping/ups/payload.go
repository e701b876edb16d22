package ups

import (
	"context"
	"fmt"
	"time"

	"github.com/parcelforge/shipping/pkg/shipping"
	"github.com/parcelforge/shipping/pkg/shipping/normalize"
)

// buildRateRequest normalizes the recipient and assembles the Shop payload.
// The returned normalize.Result carries the possibly substituted service
// type.
func (c *Client) buildRateRequest(ctx context.Context, req *shipping.ShipmentRequest) (*RateRequest, *normalize.Result, error) {
	shipper := c.resolveShipper(req.Shipper)
	serviceType := c.mapper.Normalize(req.ServiceType)

	norm, err := c.normalizer.Normalize(ctx, req.Recipient, serviceType)
	if err != nil {
		return nil, nil, err
	}

	packages := c.buildPackages(req, false)
	if req.Options.SignatureRequired {
		confirmation := &DeliveryConfirmation{DCISType: mapSignatureType(req.Options.SignatureType)}
		for i := range packages {
			packages[i].PackageServiceOptions = &PackageServiceOptions{DeliveryConfirmation: confirmation}
		}
	}

	shipperParty := c.shipperToAPI(shipper)
	shipTo := partyToAPI(norm.Party, norm.Residential)

	shipment := Shipment{
		Shipper:  shipperParty,
		ShipTo:   shipTo,
		ShipFrom: &shipperParty,
		Service: CodeDescription{
			Code: c.serviceCode(norm.ServiceType, norm.Party.Address.CountryCode),
		},
		Package: packages,
		ShipmentRatingOptions: &ShipmentRatingOptions{
			NegotiatedRatesIndicator: "Y",
		},
	}

	if isInternationalShipment(shipper.Address.CountryCode, norm.Party.Address.CountryCode) {
		shipment.ShipmentServiceOptions = &ShipmentServiceOptions{
			InternationalDetail: &InternationalDetail{BrokerageOption: "02"},
		}
	}

	rateReq := &RateRequest{}
	rateReq.RateRequest.Request = APIRequest{
		RequestOption:        "Shop",
		TransactionReference: &TransactionReference{CustomerContext: "rate comparison"},
	}
	rateReq.RateRequest.Shipment = shipment
	return rateReq, norm, nil
}

// buildShipmentRequest assembles the ship payload. When ret is non-nil the
// shipment is built as a return: the package moves from the customer back to
// the return address.
func (c *Client) buildShipmentRequest(ctx context.Context, req *shipping.ShipmentRequest, ret *shipping.ReturnOptions) (*ShipRequest, *normalize.Result, error) {
	shipper := c.resolveShipper(req.Shipper)

	recipient := req.Recipient
	if ret != nil {
		recipient = c.resolveReturnAddress(ret)
	}

	serviceType := c.mapper.Normalize(req.ServiceType)
	norm, err := c.normalizer.Normalize(ctx, recipient, serviceType)
	if err != nil {
		return nil, nil, err
	}
	// Keep the caller's contact over the validator's echo.
	norm.Party.Contact = recipient.Contact
	norm.Party.Contact.Phone = normalize.PhoneNumber(recipient.Contact.Phone, norm.Party.Address.CountryCode)

	packages := c.buildPackages(req, true)
	applyPackageReferences(packages, req)
	if req.Options.SignatureRequired && norm.Party.Address.CountryCode == "US" {
		confirmation := &DeliveryConfirmation{DCISType: mapSignatureType(req.Options.SignatureType)}
		for i := range packages {
			packages[i].PackageServiceOptions = &PackageServiceOptions{DeliveryConfirmation: confirmation}
		}
	}

	shipTo := partyToAPI(norm.Party, norm.Residential)

	shipment := Shipment{
		Description:        "Package",
		Shipper:            c.shipperToAPI(shipper),
		ShipTo:             shipTo,
		PaymentInformation: c.buildPaymentInformation(req),
		ShipmentRatingOptions: &ShipmentRatingOptions{
			NegotiatedRatesIndicator: "Y",
		},
		Service: CodeDescription{
			Code: c.serviceCode(norm.ServiceType, norm.Party.Address.CountryCode),
		},
		Package: packages,
	}

	// Canada and Puerto Rico destinations require the invoice line total.
	if norm.Party.Address.CountryCode == "CA" || norm.Party.Address.StateCode == "PR" {
		total := 0.0
		for _, pkg := range req.Packages {
			total += pkg.DeclaredValue
		}
		if total == 0 {
			total = 1
		}
		shipment.InvoiceLineTotal = &Money{
			CurrencyCode:  "USD",
			MonetaryValue: formatMoney(total),
		}
	}

	if len(req.Options.Notifications) > 0 {
		shipment.ShipmentServiceOptions = &ShipmentServiceOptions{
			Notification: buildNotifications(req.Options.Notifications),
		}
	}

	if isInternationalShipment(shipment.Shipper.Address.CountryCode, shipTo.Address.CountryCode) {
		if shipment.ShipmentServiceOptions == nil {
			shipment.ShipmentServiceOptions = &ShipmentServiceOptions{}
		}
		shipment.ShipmentServiceOptions.InternationalForms = c.buildInternationalForms(req, shipTo, norm.Party)
		shipment.ShipmentServiceOptions.InternationalDetail = &InternationalDetail{BrokerageOption: "02"}
	}

	if ret != nil {
		shipment.ReturnService = &CodeDescription{Code: "9", Description: "Return Service"}
		if ret.Reason != "" {
			shipment.Description = ret.Reason
		}
		if ret.RMANumber != "" {
			shipment.ReferenceNumber = &ReferenceNumber{Value: ret.RMANumber, BarCodeIndicator: "1"}
		}
	}

	shipReq := &ShipRequest{}
	shipReq.ShipmentRequest.Request = APIRequest{RequestOption: "validate"}
	shipReq.ShipmentRequest.Shipment = shipment
	shipReq.ShipmentRequest.LabelSpecification = &LabelSpecification{
		LabelImageFormat: CodeDescription{Code: "GIF"},
		LabelStockSize:   &LabelStockSize{Height: "6", Width: "4"},
	}
	return shipReq, norm, nil
}

// buildPackages converts canonical packages to the UPS wire shape. Ship
// requests use the Packaging key, rate requests use PackagingType.
func (c *Client) buildPackages(req *shipping.ShipmentRequest, forShip bool) []APIPackage {
	packaging := &CodeDescription{Code: "02"}

	packages := make([]APIPackage, 0, len(req.Packages))
	for _, pkg := range req.Packages {
		apiPkg := APIPackage{
			Dimensions: Dimensions{
				UnitOfMeasurement: CodeDescription{Code: "IN"},
				Length:            formatDimension(pkg.Length),
				Width:             formatDimension(pkg.Width),
				Height:            formatDimension(pkg.Height),
			},
			PackageWeight: PackageWeight{
				UnitOfMeasurement: CodeDescription{Code: "LBS"},
				Weight:            formatWeight(pkg.Weight),
			},
		}
		if forShip {
			apiPkg.Packaging = packaging
		} else {
			apiPkg.PackagingType = packaging
		}
		packages = append(packages, apiPkg)
	}
	return packages
}

// applyPackageReferences attaches the shipment references plus the per
// package box reference to every package.
func applyPackageReferences(packages []APIPackage, req *shipping.ShipmentRequest) {
	var shared []ReferenceNumber
	if req.Options.InvoiceNumber != "" {
		shared = append(shared, ReferenceNumber{Code: "IK", Value: req.Options.InvoiceNumber})
	}
	if req.Options.CustomerPONumber != "" {
		shared = append(shared, ReferenceNumber{Code: "PO", Value: req.Options.CustomerPONumber})
	}
	if req.Options.MarketOrderID != "" {
		shared = append(shared, ReferenceNumber{Code: "MO", Value: req.Options.MarketOrderID})
	}

	for i := range packages {
		refs := make([]ReferenceNumber, len(shared), len(shared)+1)
		copy(refs, shared)
		boxID := "00"
		if i < len(req.Packages) && req.Packages[i].BoxID != "" {
			boxID = req.Packages[i].BoxID
		}
		refs = append(refs, ReferenceNumber{Code: "EI", Value: boxID})
		packages[i].ReferenceNumber = refs
	}
}

// buildPaymentInformation bills transportation to the bound account or a
// third party, and adds a duties clause when the caller selected a payor.
func (c *Client) buildPaymentInformation(req *shipping.ShipmentRequest) *PaymentInformation {
	transportation := ShipmentCharge{
		Type: "01",
		BillShipper: &BillShipper{
			AccountNumber: AccountNumber{Value: c.account.number},
		},
	}
	if req.Options.ThirdPartyAccount != "" {
		transportation = ShipmentCharge{
			Type: "01",
			BillThirdParty: &BillThirdParty{
				AccountNumber: AccountNumber{Value: req.Options.ThirdPartyAccount},
				Address:       thirdPartyAddress(req.Options.ThirdParty),
			},
		}
	}

	charges := []ShipmentCharge{transportation}

	if req.Options.DutiesPaymentType != "" {
		duties := ShipmentCharge{Type: "02"}
		switch req.Options.DutiesPaymentType {
		case shipping.DutiesShipper:
			duties.BillShipper = &BillShipper{
				AccountNumber: AccountNumber{Value: c.account.number},
			}
		case shipping.DutiesThirdParty:
			if req.Options.ThirdPartyAccount != "" {
				duties.BillThirdParty = &BillThirdParty{
					AccountNumber: AccountNumber{Value: req.Options.ThirdPartyAccount},
					Address:       thirdPartyAddress(req.Options.ThirdParty),
				}
			} else {
				duties.BillReceiver = &struct{}{}
			}
		default:
			duties.BillReceiver = &struct{}{}
		}
		charges = append(charges, duties)
	}

	return &PaymentInformation{ShipmentCharge: charges}
}

func thirdPartyAddress(party *shipping.Party) *APIAddress {
	if party == nil {
		return nil
	}
	addr := addressToAPI(party.Address)
	return &addr
}

// buildNotifications converts ship notifications to quantum-view entries.
// Code 6 is the ship notification.
func buildNotifications(notifications []shipping.Notification) []APINotification {
	entries := make([]APINotification, 0, len(notifications))
	for _, n := range notifications {
		if n.Email == "" {
			continue
		}
		code := n.Code
		if code == "" {
			code = "6"
		}
		entry := APINotification{
			NotificationCode: code,
			EMail: EmailNotification{
				EMailAddress:              n.Email,
				UndeliverableEMailAddress: n.FailedEmail,
				FromEMailAddress:          n.FromEmail,
				FromName:                  n.FromName,
				Subject:                   n.Subject,
				Message:                   n.Message,
			},
			Locale: &Locale{Language: "en", Dialect: "US"},
		}
		if n.Phone != "" {
			entry.VoiceMessage = &PhoneMessage{PhoneNumber: n.Phone}
			entry.TextMessage = &PhoneMessage{PhoneNumber: n.Phone}
		}
		entries = append(entries, entry)
	}
	return entries
}

// buildInternationalForms requests paperless commercial and proforma
// invoices with the customs products.
func (c *Client) buildInternationalForms(req *shipping.ShipmentRequest, soldTo ShipParty, recipient shipping.Party) *InternationalForms {
	invoiceDate := req.Options.InvoiceDate
	if invoiceDate == "" {
		invoiceDate = time.Now().Format("20060102")
	}

	currency := req.Options.Currency
	if currency == "" {
		currency = "USD"
	}

	reason := req.Options.ReasonForExport
	if reason == "" {
		reason = "SALE"
	}

	declaration := req.Options.DeclarationStatement
	if declaration == "" {
		declaration = "I declare that the information provided is true and correct."
	}

	forms := &InternationalForms{
		FormType:        "01",
		InvoiceNumber:   req.Options.InvoiceNumber,
		InvoiceDate:     invoiceDate,
		ReasonForExport: reason,
		CurrencyCode:    currency,
		Contacts:        &FormContacts{SoldTo: soldTo},
		Product:         buildProducts(req.Options.Items),
		Charges: []FormCharge{
			{Type: "DISCOUNT", MonetaryValue: "0"},
		},
		DeclarationStatement:                   declaration,
		TermsOfShipment:                        "DDU",
		Comments:                               req.Options.Comments,
		Purpose:                                "SOLD",
		DocumentIndicator:                      "Y",
		ProformaIndicator:                      "Y",
		PaperlessDocumentIndicator:             "Y",
		PrintCopyOfPaperlessDocumentsIndicator: "Y",
	}

	if imp := req.Options.Importer; imp != nil && importerDiffers(imp, recipient) {
		phone := normalize.PhoneNumber(imp.Party.Contact.Phone, imp.Party.Address.CountryCode)
		forms.ImporterOfRecord = &ImporterOfRecord{
			Name:                    imp.Party.Contact.Name,
			Address:                 addressToAPI(imp.Party.Address),
			Phone:                   &Phone{Number: phone},
			EMailAddress:            imp.Party.Contact.Email,
			TaxIdentificationNumber: imp.TaxID,
			VATNumber:               imp.VATNumber,
		}
	}
	return forms
}

// buildProducts converts customs items to invoice products.
func buildProducts(items []shipping.CommodityItem) []Product {
	products := make([]Product, 0, len(items))
	for _, item := range items {
		description := item.Description
		if description == "" {
			description = "General Merchandise"
		}
		origin := item.CountryOfManufacture
		if origin == "" {
			origin = "US"
		}
		quantity := item.Quantity
		if quantity == 0 {
			quantity = 1
		}
		unit := item.UnitOfMeasurement
		if unit == "" {
			unit = "PCS"
		}
		products = append(products, Product{
			Description:       description,
			CommodityCode:     item.HarmonizedCode,
			OriginCountryCode: origin,
			Unit: ProductUnit{
				Number:            fmt.Sprintf("%d", quantity),
				Value:             formatMoney(item.UnitPrice),
				UnitOfMeasurement: CodeDescription{Code: unit},
			},
		})
	}
	return products
}

// serviceCode converts a canonical service type to the UPS wire code. Ground
// style services pick a country dependent code: UPS Standard for Canada and
// Mexico, Worldwide Expedited for other international destinations.
func (c *Client) serviceCode(serviceType, recipientCountry string) string {
	groundLike := serviceType == "" || serviceType == "GROUND" ||
		serviceType == "WORLDWIDE_SAVER" || serviceType == "STANDARD"

	if groundLike {
		switch {
		case recipientCountry == "CA" || recipientCountry == "MX":
			return "11"
		case recipientCountry == "US":
			return "03"
		default:
			return "08"
		}
	}

	codes := map[string]string{
		"NEXT_DAY_AIR_EARLY":     "14",
		"NEXT_DAY_AIR":           "01",
		"NEXT_DAY_AIR_SAVER":     "13",
		"SECOND_DAY_AIR_AM":      "59",
		"SECOND_DAY_AIR":         "02",
		"THREE_DAY_SELECT":       "12",
		"GROUND":                 "03",
		"WORLDWIDE_EXPRESS":      "07",
		"WORLDWIDE_EXPEDITED":    "08",
		"WORLDWIDE_SAVER":        "65",
		"WORLDWIDE_EXPRESS_PLUS": "54",
		"STANDARD":               "11",
	}
	if code, ok := codes[serviceType]; ok {
		return code
	}
	return "03"
}

// shipperToAPI converts the shipper party including the account number.
func (c *Client) shipperToAPI(p shipping.Party) ShipParty {
	attention := "ShipDept"
	phone := normalize.PhoneNumber(p.Contact.Phone, p.Address.CountryCode)
	return ShipParty{
		Name:                   p.Contact.Name,
		AttentionName:          attention,
		CompanyDisplayableName: p.Contact.Company,
		ShipperNumber:          c.account.number,
		Phone:                  &Phone{Number: phone},
		EMailAddress:           p.Contact.Email,
		Address:                addressToAPI(p.Address),
	}
}

// partyToAPI converts a recipient party. The state code only applies to US
// and Canada; Ireland addresses carry the literal IE per UPS convention.
func partyToAPI(p shipping.Party, residential bool) ShipParty {
	name := p.Contact.Company
	if name == "" {
		name = p.Contact.Name
	}
	attention := ""
	if p.Address.CountryCode != "US" && !residential {
		attention = p.Contact.Name
	}

	addr := addressToAPI(p.Address)
	switch {
	case p.Address.CountryCode == "US" || p.Address.CountryCode == "CA":
		// keep state code
	case p.Address.CountryCode == "IE":
		addr.StateProvinceCode = "IE"
	default:
		addr.StateProvinceCode = ""
	}

	indicator := "N"
	if residential {
		indicator = "Y"
	}

	phone := normalize.PhoneNumber(p.Contact.Phone, p.Address.CountryCode)
	return ShipParty{
		Name:                 name,
		AttentionName:        attention,
		Phone:                &Phone{Number: phone},
		EMailAddress:         p.Contact.Email,
		Address:              addr,
		ResidentialIndicator: indicator,
	}
}

func addressToAPI(a shipping.Address) APIAddress {
	return APIAddress{
		AddressLine:       a.StreetLines,
		City:              a.City,
		StateProvinceCode: a.StateCode,
		PostalCode:        a.PostalCode,
		CountryCode:       a.CountryCode,
	}
}

// mapSignatureType converts a signature requirement to the DCIS type code.
// 1 is no signature, 2 is signature required, 3 is adult signature.
func mapSignatureType(t shipping.SignatureType) string {
	switch t {
	case shipping.SignatureAdult:
		return "3"
	case shipping.SignatureDirect, shipping.SignatureIndirect:
		return "2"
	case shipping.SignatureNotRequired:
		return "1"
	default:
		return "2"
	}
}

func isInternationalShipment(shipperCountry, recipientCountry string) bool {
	return shipperCountry != recipientCountry
}

func importerDiffers(imp *shipping.Importer, recipient shipping.Party) bool {
	return imp.Party.Contact.Name != recipient.Contact.Name ||
		imp.Party.Address.City != recipient.Address.City ||
		imp.Party.Address.StateCode != recipient.Address.StateCode ||
		imp.Party.Address.PostalCode != recipient.Address.PostalCode ||
		imp.Party.Address.CountryCode != recipient.Address.CountryCode
}

// formatDimension clamps to a whole inch minimum of one, as a string.
func formatDimension(v float64) string {
	n := int(v)
	if n < 1 {
		n = 1
	}
	return fmt.Sprintf("%d", n)
}

// formatWeight renders pounds with one decimal place.
func formatWeight(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
