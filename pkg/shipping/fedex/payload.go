package fedex

import (
	"context"

	"github.com/parcelforge/shipping/pkg/shipping"
	"github.com/parcelforge/shipping/pkg/shipping/normalize"
)

// buildRateRequest normalizes the recipient and assembles the rate quote
// payload. The returned normalize.Result carries the possibly substituted
// service type.
func (c *Client) buildRateRequest(ctx context.Context, req *shipping.ShipmentRequest) (*RateRequest, *normalize.Result, error) {
	shipper := c.resolveShipper(req.Shipper)
	serviceType := c.mapper.Normalize(req.ServiceType)

	norm, err := c.normalizer.Normalize(ctx, req.Recipient, serviceType)
	if err != nil {
		return nil, nil, err
	}

	lineItems := packagesToLineItems(req.Packages, false)
	for i := range lineItems {
		lineItems[i].SequenceNumber = i + 1
	}
	if req.Options.SignatureRequired {
		applySignature(lineItems, req.Options.SignatureType)
	}

	requested := RequestedShipment{
		Shipper:                   partyToAPI(shipper),
		Recipient:                 apiPartyPtr(partyToAPI(norm.Party)),
		PickupType:                "USE_SCHEDULED_PICKUP",
		RateRequestType:           []string{"LIST", "ACCOUNT"},
		PackagingType:             "YOUR_PACKAGING",
		RequestedPackageLineItems: lineItems,
	}

	if req.Options.Reference != "" {
		requested.ShipmentSpecialServices = &ShipmentSpecialServices{
			SpecialServiceTypes: []string{"REFERENCE"},
			Reference: &Reference{
				ReferenceType: "CUSTOMER_REFERENCE",
				Value:         req.Options.Reference,
			},
		}
	}

	if isInternationalShipment(shipper.Address.CountryCode, norm.Party.Address.CountryCode) {
		requested.CustomsClearanceDetail = c.buildCustoms(req, shipper, norm.Party, false)
	}

	rateReq := &RateRequest{RequestedShipment: requested}
	if c.account.number != "" {
		rateReq.AccountNumber = &AccountNumber{Value: c.account.number}
	}
	return rateReq, norm, nil
}

// buildShipmentRequest assembles the ship payload. When ret is non-nil the
// shipment is built as a return.
func (c *Client) buildShipmentRequest(ctx context.Context, req *shipping.ShipmentRequest, ret *shipping.ReturnOptions) (*ShipmentRequest, *normalize.Result, error) {
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

	lineItems := packagesToLineItems(req.Packages, ret != nil)
	payment := c.buildPaymentDetail(req, shipper, norm.ServiceType)

	requested := RequestedShipment{
		Shipper:                   partyToAPI(shipper),
		Recipients:                []APIParty{partyToAPI(norm.Party)},
		PickupType:                "USE_SCHEDULED_PICKUP",
		ServiceType:               norm.ServiceType,
		PackagingType:             "YOUR_PACKAGING",
		TotalPackageCount:         len(lineItems),
		RequestedPackageLineItems: lineItems,
		LabelSpecification: &LabelSpecification{
			ImageType:      "PDF",
			LabelStockType: "PAPER_4X6",
		},
		ShippingChargesPayment: &payment,
	}

	if ret != nil {
		requested.ShipmentSpecialServices = buildReturnDetail(ret, norm.Party)
		blockInsight := false
		requested.BlockInsightVisibility = &blockInsight
	}

	c.applyExtraOptions(&requested, req, shipper, norm.Party)

	return &ShipmentRequest{
		RequestedShipment:    requested,
		AccountNumber:        AccountNumber{Value: c.account.number},
		LabelResponseOptions: "URL_ONLY",
	}, norm, nil
}

// buildCancelRequest assembles the void payload.
func (c *Client) buildCancelRequest(trackingNumber string) *CancelRequest {
	return &CancelRequest{
		AccountNumber:     AccountNumber{Value: c.account.number},
		EmailShipment:     "false",
		SenderCountryCode: c.normalizer.HomeCountry(),
		DeletionControl:   "DELETE_ALL_PACKAGES",
		TrackingNumber:    trackingNumber,
	}
}

// buildPaymentDetail constructs the shipping charges payment clause. A third
// party account forces THIRD_PARTY billing; ground shipments omit the payor
// block.
func (c *Client) buildPaymentDetail(req *shipping.ShipmentRequest, shipper shipping.Party, serviceType string) PaymentDetail {
	paymentType := "SENDER"
	accountNumber := c.account.number
	if req.Options.ThirdPartyAccount != "" {
		paymentType = "THIRD_PARTY"
		accountNumber = req.Options.ThirdPartyAccount
	} else if req.Options.DutiesPaymentType != "" {
		paymentType = string(req.Options.DutiesPaymentType)
	}

	if serviceType == "FEDEX_GROUND" {
		return PaymentDetail{PaymentType: paymentType}
	}

	payor := &Payor{
		ResponsibleParty: ResponsibleParty{
			AccountNumber: AccountNumber{Value: accountNumber},
		},
	}
	switch paymentType {
	case "RECIPIENT", "THIRD_PARTY", "COLLECT":
		addr := addressToAPI(shipper.Address)
		payor.ResponsibleParty.Address = &addr
	}

	return PaymentDetail{PaymentType: paymentType, Payor: payor}
}

// applyExtraOptions adds reference, signature, notification and customs
// blocks to an assembled shipment.
func (c *Client) applyExtraOptions(requested *RequestedShipment, req *shipping.ShipmentRequest, shipper, recipient shipping.Party) {
	if req.Options.Reference != "" {
		if requested.ShipmentSpecialServices == nil {
			requested.ShipmentSpecialServices = &ShipmentSpecialServices{}
		}
		requested.ShipmentSpecialServices.Reference = &Reference{
			ReferenceType: "CUSTOMER_REFERENCE",
			Value:         req.Options.Reference,
		}
	}

	if req.Options.SignatureRequired {
		applySignature(requested.RequestedPackageLineItems, req.Options.SignatureType)
	}

	for _, notify := range req.Options.Notifications {
		if notify.Email == "" {
			continue
		}
		if requested.EmailNotificationDetail == nil {
			requested.EmailNotificationDetail = &EmailNotificationDetail{AggregationType: "PER_PACKAGE"}
		}
		requested.EmailNotificationDetail.EmailNotificationRecipients = append(
			requested.EmailNotificationDetail.EmailNotificationRecipients,
			EmailNotificationRecipient{
				Name:                           recipient.Contact.Name,
				EmailNotificationRecipientType: "SHIPPER",
				EmailAddress:                   notify.Email,
				NotificationFormatType:         "TEXT",
				NotificationType:               "EMAIL",
				Locale:                         "en_US",
				NotificationEventType:          []string{"ON_PICKUP_DRIVER_ARRIVED", "ON_SHIPMENT"},
			})
	}

	if isInternationalShipment(shipper.Address.CountryCode, recipient.Address.CountryCode) {
		requested.CustomsClearanceDetail = c.buildCustoms(req, shipper, recipient, true)
		requested.ShippingDocumentSpecification = buildInvoiceDocuments(shipper.Contact.Email)
	}
}

// buildCustoms assembles the customs clearance detail: duties payment,
// commodities (for shipments) and importer of record.
func (c *Client) buildCustoms(req *shipping.ShipmentRequest, shipper, recipient shipping.Party, includeCommodities bool) *CustomsClearanceDetail {
	detail := &CustomsClearanceDetail{
		DutiesPayment: PaymentDetail{PaymentType: "RECIPIENT"},
	}
	if includeCommodities {
		detail.Commodities = c.prepareCommodities(req, shipper)
	}

	switch req.Options.DutiesPaymentType {
	case shipping.DutiesShipper:
		detail.DutiesPayment.PaymentType = "SENDER"
	case shipping.DutiesThirdParty:
		if req.Options.ThirdPartyAccount != "" {
			addr := addressToAPI(shipper.Address)
			detail.DutiesPayment = PaymentDetail{
				PaymentType: "THIRD_PARTY",
				Payor: &Payor{
					ResponsibleParty: ResponsibleParty{
						AccountNumber: AccountNumber{Value: req.Options.ThirdPartyAccount},
						Address:       &addr,
					},
				},
			}
		}
	}

	if imp := req.Options.Importer; imp != nil && importerDiffers(imp, recipient) {
		detail.ImporterOfRecord = &ImporterOfRecord{
			Contact:       contactToAPI(imp.Party.Contact),
			Address:       addressToAPI(imp.Party.Address),
			AccountNumber: AccountNumber{Value: imp.AccountNumber},
			Tins: []TIN{
				{Number: imp.TaxID, TinType: "BUSINESS_NATIONAL"},
				{Number: imp.VATNumber, TinType: "BUSINESS_VAT"},
			},
		}
	}

	return detail
}

// prepareCommodities converts customs items, falling back to a single
// general-merchandise line when no items were supplied.
func (c *Client) prepareCommodities(req *shipping.ShipmentRequest, shipper shipping.Party) []Commodity {
	currency := req.Options.Currency
	if currency == "" {
		currency = "USD"
	}

	if len(req.Options.Items) > 0 {
		commodities := make([]Commodity, 0, len(req.Options.Items))
		for _, item := range req.Options.Items {
			quantity := item.Quantity
			if quantity == 0 {
				quantity = 1
			}
			origin := item.CountryOfManufacture
			if origin == "" {
				origin = shipper.Address.CountryCode
			}
			commodities = append(commodities, Commodity{
				Description:          item.Description,
				Quantity:             quantity,
				QuantityUnits:        "PCS",
				UnitPrice:            Money{Currency: currency, Amount: item.UnitPrice},
				CustomsValue:         Money{Currency: currency, Amount: item.UnitPrice * float64(quantity)},
				Weight:               Weight{Units: "LB", Value: item.Weight},
				HarmonizedCode:       item.HarmonizedCode,
				CountryOfManufacture: origin,
			})
		}
		return commodities
	}

	var totalValue, totalWeight float64
	for _, pkg := range req.Packages {
		totalValue += pkg.DeclaredValue
		totalWeight += pkg.Weight
	}
	return []Commodity{
		{
			Description:          "General Merchandise",
			Quantity:             1,
			QuantityUnits:        "PCS",
			UnitPrice:            Money{Currency: currency, Amount: totalValue},
			CustomsValue:         Money{Currency: currency, Amount: totalValue},
			Weight:               Weight{Units: "LB", Value: totalWeight},
			CountryOfManufacture: shipper.Address.CountryCode,
		},
	}
}

// buildReturnDetail assembles the return special services block. Print
// returns produce an immediate label; everything else goes out as an
// emailed pending shipment.
func buildReturnDetail(ret *shipping.ReturnOptions, recipient shipping.Party) *ShipmentSpecialServices {
	services := &ShipmentSpecialServices{
		SpecialServiceTypes: []string{"RETURN_SHIPMENT"},
	}

	if ret.PrintLabel {
		services.ReturnShipmentDetail = &ReturnShipmentDetail{ReturnType: "PRINT_RETURN_LABEL"}
		return services
	}

	reason := ret.Reason
	if reason == "" {
		reason = "none"
	}
	services.ReturnShipmentDetail = &ReturnShipmentDetail{
		ReturnType:        "PENDING",
		ReturnEmailDetail: &ReturnEmailDetail{MerchantPhoneNumber: recipient.Contact.Phone},
		RMA:               &RMADetail{Reason: reason},
	}
	if ret.OriginalTrackingNumber != "" {
		services.ReturnShipmentDetail.ReturnAssociationDetail = &ReturnAssociationDetail{
			TrackingNumber: ret.OriginalTrackingNumber,
			ShipDatestamp:  ret.ShipDate,
		}
	}

	pending := &PendingShipmentDetail{
		PendingShipmentType: "EMAIL",
		EmailLabelDetail: &EmailLabelDetail{
			Recipients: []EmailLabelRecipient{
				{EmailAddress: recipient.Contact.Email, Role: "SHIPMENT_COMPLETOR"},
			},
		},
	}
	if !ret.ExpiresAt.IsZero() {
		pending.ExpirationTimeStamp = ret.ExpiresAt.Format("2006-01-02")
	}
	services.PendingShipmentDetail = pending

	return services
}

func buildInvoiceDocuments(shipperEmail string) *ShippingDocumentSpecification {
	spec := &ShippingDocumentSpecification{
		ShippingDocumentTypes: []string{"COMMERCIAL_INVOICE", "PRO_FORMA_INVOICE"},
	}
	spec.CommercialInvoiceDetail = &struct {
		DocumentFormat struct {
			Dispositions []DocumentDisposition `json:"dispositions"`
		} `json:"documentFormat"`
	}{}
	for _, disposition := range []string{"EMAILED", "PRINTED"} {
		d := DocumentDisposition{DispositionType: disposition}
		d.EmailDetail = &struct {
			EmailRecipients []EmailDetailRecipient `json:"emailRecipients"`
		}{
			EmailRecipients: []EmailDetailRecipient{
				{EmailAddress: shipperEmail, EmailAddressType: "SHIPPER"},
			},
		}
		spec.CommercialInvoiceDetail.DocumentFormat.Dispositions = append(
			spec.CommercialInvoiceDetail.DocumentFormat.Dispositions, d)
	}
	return spec
}

// ----------------------------------------------------------------------------
// Conversion helpers
// ----------------------------------------------------------------------------

func partyToAPI(p shipping.Party) APIParty {
	return APIParty{
		Contact: contactToAPI(p.Contact),
		Address: addressToAPI(p.Address),
	}
}

func contactToAPI(c shipping.Contact) APIContact {
	return APIContact{
		PersonName:   c.Name,
		CompanyName:  c.Company,
		PhoneNumber:  c.Phone,
		EmailAddress: c.Email,
	}
}

func addressToAPI(a shipping.Address) APIAddress {
	return APIAddress{
		StreetLines:         a.StreetLines,
		City:                a.City,
		StateOrProvinceCode: a.StateCode,
		PostalCode:          a.PostalCode,
		CountryCode:         a.CountryCode,
		Residential:         a.Residential,
	}
}

func apiPartyPtr(p APIParty) *APIParty { return &p }

func packagesToLineItems(pkgs []shipping.Package, returnShipment bool) []PackageLineItem {
	items := make([]PackageLineItem, len(pkgs))
	for i, pkg := range pkgs {
		items[i] = PackageLineItem{
			Weight: Weight{Units: "LB", Value: pkg.Weight},
			Dimensions: Dimensions{
				Length: pkg.Length,
				Width:  pkg.Width,
				Height: pkg.Height,
				Units:  "IN",
			},
		}
		if returnShipment {
			items[i].ItemDescription = "Return item"
		}
	}
	return items
}

func applySignature(items []PackageLineItem, signatureType shipping.SignatureType) {
	for i := range items {
		items[i].PackageSpecialServices = &PackageSpecialServices{
			SpecialServiceTypes: []string{"SIGNATURE_OPTION"},
			SignatureOptionType: mapSignatureType(signatureType),
		}
	}
}

func mapSignatureType(t shipping.SignatureType) string {
	switch t {
	case shipping.SignatureDirect:
		return "DIRECT"
	case shipping.SignatureIndirect:
		return "INDIRECT"
	case shipping.SignatureAdult:
		return "ADULT"
	case shipping.SignatureNotRequired:
		return "NO_SIGNATURE_REQUIRED"
	default:
		return "DIRECT"
	}
}

func isInternationalShipment(shipperCountry, recipientCountry string) bool {
	return shipperCountry != recipientCountry
}

func importerDiffers(imp *shipping.Importer, recipient shipping.Party) bool {
	if imp.Party.Contact.Name != recipient.Contact.Name {
		return true
	}
	a, b := imp.Party.Address, recipient.Address
	if len(a.StreetLines) != len(b.StreetLines) {
		return true
	}
	for i := range a.StreetLines {
		if a.StreetLines[i] != b.StreetLines[i] {
			return true
		}
	}
	return a.City != b.City || a.StateCode != b.StateCode ||
		a.PostalCode != b.PostalCode || a.CountryCode != b.CountryCode
}
