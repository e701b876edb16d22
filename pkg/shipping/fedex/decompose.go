package fedex

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/google/uuid"

	"github.com/parcelforge/shipping/pkg/shipping"
)

// decomposeRates flattens the rate response into canonical rates, preferring
// the ACCOUNT figure over LIST when both are present.
func (c *Client) decomposeRates(resp *RateResponse) []shipping.Rate {
	rates := make([]shipping.Rate, 0, len(resp.Output.RateReplyDetails))
	for _, detail := range resp.Output.RateReplyDetails {
		if len(detail.RatedShipmentDetails) == 0 {
			continue
		}

		chosen := detail.RatedShipmentDetails[0]
		for _, rated := range detail.RatedShipmentDetails {
			if rated.RateType == "ACCOUNT" {
				chosen = rated
				break
			}
		}

		transit := ""
		if detail.Commit != nil {
			transit = detail.Commit.TransitDays.Description
		}

		rates = append(rates, shipping.Rate{
			Carrier:     shipping.CarrierFedEx,
			AccountName: c.account.name,
			ServiceType: detail.ServiceType,
			ServiceCode: detail.ServiceType,
			TotalCharge: chosen.TotalNetCharge,
			Currency:    chosen.Currency,
			TransitTime: transit,
		})
	}
	return rates
}

// decomposeShipment turns the ship response into one label row per package.
// Shipment-level cost and fees land on the first row only; the account
// markup is applied to the shipment cost.
func (c *Client) decomposeShipment(ctx context.Context, req *shipping.ShipmentRequest, resp *ShipResponse, serviceType string, ret *shipping.ReturnOptions) ([]shipping.Label, error) {
	if len(resp.Output.TransactionShipments) == 0 {
		return nil, shipping.NewCarrierAPIError(shipping.CarrierFedEx, "SHIPMENT.EMPTY",
			"ship response contained no shipments")
	}
	shipment := resp.Output.TransactionShipments[0]
	completed := shipment.CompletedShipmentDetail
	if len(completed.CompletedPackageDetails) == 0 {
		return nil, shipping.NewCarrierAPIError(shipping.CarrierFedEx, "SHIPMENT.EMPTY",
			"ship response contained no package details")
	}

	var shippingCost float64
	var currency string
	shipmentFees := make(map[string]float64)
	if len(completed.ShipmentRating.ShipmentRateDetails) > 0 {
		rateDetail := completed.ShipmentRating.ShipmentRateDetails[0]
		shippingCost = rateDetail.TotalNetCharge
		currency = rateDetail.Currency
		for _, surcharge := range rateDetail.Surcharges {
			shipmentFees[surcharge.SurchargeType] = surcharge.Amount
		}
	}

	resolvedService := shipment.ServiceType
	if resolvedService == "" {
		resolvedService = serviceType
	}

	markup := 1.0 + c.markup
	now := time.Now().UTC()

	labels := make([]shipping.Label, 0, len(completed.CompletedPackageDetails))
	for i, pkgDetail := range completed.CompletedPackageDetails {
		trackingNumber := ""
		if len(pkgDetail.TrackingIDs) > 0 {
			trackingNumber = pkgDetail.TrackingIDs[0].TrackingNumber
		}

		labelURL, imageFormat, err := c.resolveLabelArtifact(ctx, shipment, i, trackingNumber)
		if err != nil {
			return nil, err
		}

		packageFees := make(map[string]float64)
		var additionalHandling float64
		if len(pkgDetail.PackageRating.PackageRateDetails) > 0 {
			for _, surcharge := range pkgDetail.PackageRating.PackageRateDetails[0].Surcharges {
				packageFees[surcharge.SurchargeType] = surcharge.Amount
				if surcharge.SurchargeType == "ADDITIONAL_HANDLING" {
					additionalHandling = surcharge.Amount
				}
			}
		}

		// Shipment-level cost and fees attach to the first package only.
		rowCost := 0.0
		rowFees := map[string]float64{}
		if i == 0 {
			rowCost = shippingCost
			rowFees = shipmentFees
		}

		label := shipping.Label{
			ID:                 uuid.New().String(),
			Carrier:            shipping.CarrierFedEx,
			AccountName:        c.account.name,
			AccountNumber:      c.account.number,
			TrackingNumber:     trackingNumber,
			ServiceType:        resolvedService,
			BaseCost:           rowCost,
			Cost:               rowCost * markup,
			Currency:           currency,
			ShipmentFees:       rowFees,
			PackageFees:        packageFees,
			AdditionalHandling: additionalHandling,
			LabelURL:           labelURL,
			ImageFormat:        imageFormat,
			ShipperInfo:        req.Shipper,
			RecipientInfo:      req.Recipient,
			InvoiceNumber:      req.Options.InvoiceNumber,
			CustomerPONumber:   req.Options.CustomerPONumber,
			MarketOrderID:      req.Options.MarketOrderID,
			Status:             shipping.LabelActive,
			CreatedAt:          now,
		}
		if i < len(req.Packages) {
			label.PackageInfo = req.Packages[i]
			label.BoxID = req.Packages[i].BoxID
		}
		if ret != nil {
			label.IsReturn = true
			label.RMANumber = ret.RMANumber
		}

		labels = append(labels, label)
	}

	return labels, nil
}

// resolveLabelArtifact picks the label URL for a package: a carrier-hosted
// URL when present, otherwise the inline encoded label is decoded and stored
// through the artifact store.
func (c *Client) resolveLabelArtifact(ctx context.Context, shipment TransactionShipment, index int, trackingNumber string) (string, string, error) {
	if index >= len(shipment.PieceResponses) || len(shipment.PieceResponses[index].PackageDocuments) == 0 {
		return "missing label data", "PDF", nil
	}
	doc := shipment.PieceResponses[index].PackageDocuments[0]

	if doc.URL != "" {
		return doc.URL, "url", nil
	}

	if doc.ContentType == "LABEL" && doc.EncodedLabel != "" {
		format := doc.DocType
		if format == "" {
			format = "PDF"
		}
		data, err := base64.StdEncoding.DecodeString(doc.EncodedLabel)
		if err != nil {
			return "", "", &shipping.CarrierAPIError{
				Carrier: shipping.CarrierFedEx,
				Code:    "LABEL.DECODE",
				Message: "label data is not valid base64",
				Cause:   err,
			}
		}
		url, err := c.artifacts.SaveArtifact(ctx, trackingNumber, format, data)
		if err != nil {
			return "", "", err
		}
		return url, format, nil
	}

	return "missing label data", "PDF", nil
}

// decomposeTracking converts the track response; a body-level error entry is
// surfaced as a CarrierAPIError.
func decomposeTracking(resp *TrackResponse) (*shipping.TrackingResult, error) {
	if len(resp.Output.CompleteTrackResults) == 0 {
		return nil, shipping.NewCarrierAPIError(shipping.CarrierFedEx, "TRACKING.NOTFOUND", "no tracking results returned")
	}
	complete := resp.Output.CompleteTrackResults[0]
	if len(complete.TrackResults) == 0 {
		return nil, shipping.NewCarrierAPIError(shipping.CarrierFedEx, "TRACKING.NOTFOUND", "no tracking results returned")
	}

	result := complete.TrackResults[0]
	if result.Error != nil {
		return nil, shipping.NewCarrierAPIError(shipping.CarrierFedEx, result.Error.Code, result.Error.Message)
	}

	tracking := &shipping.TrackingResult{
		TrackingNumber: complete.TrackingNumber,
		Status:         result.LatestStatusDetail.Description,
	}

	for _, event := range result.ScanEvents {
		timestamp, _ := time.Parse(time.RFC3339, event.Date)
		location := event.ScanLocation.City
		if event.ScanLocation.StateOrProvinceCode != "" {
			location += ", " + event.ScanLocation.StateOrProvinceCode
		}
		tracking.Events = append(tracking.Events, shipping.TrackingEvent{
			Timestamp:   timestamp,
			Description: event.EventDescription,
			Location:    location,
			Status:      event.DerivedStatus,
		})
	}

	for _, dt := range result.DateAndTimes {
		if dt.Type == "ESTIMATED_DELIVERY" {
			if estimated, err := time.Parse(time.RFC3339, dt.DateTime); err == nil {
				tracking.EstimatedDelivery = &estimated
			}
		}
	}

	return tracking, nil
}
