package ups

import (
	"context"
	"encoding/base64"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/parcelforge/shipping/pkg/shipping"
)

// additionalHandlingCode is the UPS itemized charge code for additional
// handling.
const additionalHandlingCode = "100"

// decomposeRates flattens the Shop response into canonical rates, preferring
// the negotiated figure over the published one.
func (c *Client) decomposeRates(resp *RateResponse) []shipping.Rate {
	rates := make([]shipping.Rate, 0, len(resp.RateResponse.RatedShipment))
	for _, rated := range resp.RateResponse.RatedShipment {
		charge := rated.TotalCharges
		negotiated := false
		if rated.NegotiatedRateCharges != nil && rated.NegotiatedRateCharges.TotalCharge.MonetaryValue != "" {
			charge = rated.NegotiatedRateCharges.TotalCharge
			negotiated = true
		}

		transit := ""
		if rated.GuaranteedDelivery != nil && rated.GuaranteedDelivery.BusinessDaysInTransit != "" {
			transit = rated.GuaranteedDelivery.BusinessDaysInTransit + " business days"
		}

		rates = append(rates, shipping.Rate{
			Carrier:     shipping.CarrierUPS,
			AccountName: c.account.name,
			ServiceType: c.mapper.Normalize(rated.Service.Code),
			ServiceCode: rated.Service.Code,
			TotalCharge: parseMoney(charge.MonetaryValue),
			Currency:    charge.CurrencyCode,
			TransitTime: transit,
			Negotiated:  negotiated,
		})
	}
	return rates
}

// decomposeShipment turns the ship response into one label row per package.
// Shipment-level cost and fees land on the first row only; the account
// markup is applied to the shipment cost.
func (c *Client) decomposeShipment(ctx context.Context, req *shipping.ShipmentRequest, resp *ShipResponse, serviceType string, ret *shipping.ReturnOptions) ([]shipping.Label, error) {
	results := resp.ShipmentResponse.ShipmentResults
	if len(results.PackageResults) == 0 {
		return nil, shipping.NewCarrierAPIError(shipping.CarrierUPS, "SHIPMENT.EMPTY",
			"ship response contained no package results")
	}

	// Negotiated charges win over published ones when present.
	var shippingCost float64
	var currency string
	shipmentFees := make(map[string]float64)
	switch {
	case results.NegotiatedRateCharges != nil:
		shippingCost = parseMoney(results.NegotiatedRateCharges.TotalCharge.MonetaryValue)
		currency = results.NegotiatedRateCharges.TotalCharge.CurrencyCode
		for _, charge := range results.NegotiatedRateCharges.ItemizedCharges {
			shipmentFees[charge.Code] = parseMoney(charge.MonetaryValue)
		}
	case results.ShipmentCharges != nil:
		shippingCost = parseMoney(results.ShipmentCharges.TotalCharges.MonetaryValue)
		currency = results.ShipmentCharges.TotalCharges.CurrencyCode
		for _, charge := range results.ShipmentCharges.ItemizedCharges {
			shipmentFees[charge.Code] = parseMoney(charge.MonetaryValue)
		}
	}

	markup := 1.0 + c.markup
	now := time.Now().UTC()

	labels := make([]shipping.Label, 0, len(results.PackageResults))
	for i, pkgResult := range results.PackageResults {
		trackingNumber := pkgResult.TrackingNumber
		if trackingNumber == "" {
			trackingNumber = results.ShipmentIdentificationNumber
		}

		labelURL, imageFormat, err := c.resolveLabelArtifact(ctx, pkgResult, trackingNumber)
		if err != nil {
			return nil, err
		}

		itemized := pkgResult.ItemizedCharges
		if pkgResult.NegotiatedCharges != nil && len(pkgResult.NegotiatedCharges.ItemizedCharges) > 0 {
			itemized = pkgResult.NegotiatedCharges.ItemizedCharges
		}
		packageFees := make(map[string]float64)
		var additionalHandling float64
		for _, charge := range itemized {
			amount := parseMoney(charge.MonetaryValue)
			packageFees[charge.Code] = amount
			if charge.Code == additionalHandlingCode {
				additionalHandling = amount
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
			Carrier:            shipping.CarrierUPS,
			AccountName:        c.account.name,
			AccountNumber:      c.account.number,
			TrackingNumber:     trackingNumber,
			ServiceType:        serviceType,
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

// resolveLabelArtifact decodes the inline label image and stores it through
// the artifact store.
func (c *Client) resolveLabelArtifact(ctx context.Context, pkgResult PackageResult, trackingNumber string) (string, string, error) {
	if pkgResult.ShippingLabel == nil || pkgResult.ShippingLabel.GraphicImage == "" {
		return "", "GIF", nil
	}

	format := pkgResult.ShippingLabel.ImageFormat.Code
	if format == "" {
		format = "GIF"
	}

	data, err := base64.StdEncoding.DecodeString(pkgResult.ShippingLabel.GraphicImage)
	if err != nil {
		return "", "", shipping.NewCarrierAPIError(shipping.CarrierUPS, "LABEL.DECODE", "failed to decode label image").WithCause(err)
	}

	labelURL, err := c.artifacts.SaveArtifact(ctx, trackingNumber, format, data)
	if err != nil {
		return "", "", err
	}
	return labelURL, format, nil
}

// decomposeTracking flattens the track response into canonical events.
func decomposeTracking(resp *TrackResponse, trackingNumber string) (*shipping.TrackingResult, error) {
	var pkg *TrackPackage
	for i := range resp.TrackResponse.Shipment {
		for j := range resp.TrackResponse.Shipment[i].Package {
			candidate := &resp.TrackResponse.Shipment[i].Package[j]
			if candidate.TrackingNumber == trackingNumber || pkg == nil {
				pkg = candidate
			}
		}
	}
	if pkg == nil {
		return nil, shipping.NewCarrierAPIError(shipping.CarrierUPS, "TRACKING.NOTFOUND", "no tracking results returned")
	}

	tracking := &shipping.TrackingResult{
		TrackingNumber: pkg.TrackingNumber,
		Status:         pkg.CurrentStatus.Description,
	}

	for _, activity := range pkg.Activity {
		timestamp, _ := time.Parse("20060102 150405", activity.Date+" "+activity.Time)
		location := activity.Location.Address.City
		if activity.Location.Address.StateProvince != "" {
			location += ", " + activity.Location.Address.StateProvince
		}
		tracking.Events = append(tracking.Events, shipping.TrackingEvent{
			Timestamp:   timestamp,
			Description: activity.Status.Description,
			Location:    location,
			Status:      activity.Status.Type,
		})
	}

	for _, delivery := range pkg.DeliveryDate {
		if delivery.Type == "SDD" || delivery.Type == "RDD" {
			if estimated, err := time.Parse("20060102", delivery.Date); err == nil {
				tracking.EstimatedDelivery = &estimated
				break
			}
		}
	}

	return tracking, nil
}

func parseMoney(value string) float64 {
	amount, _ := strconv.ParseFloat(value, 64)
	return amount
}
