// Package fedex provides the FedEx carrier adapter: OAuth-backed REST
// integration for rating, shipping, returns, cancellation and tracking.
package fedex

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/parcelforge/shipping/pkg/shipping"
	"github.com/parcelforge/shipping/pkg/shipping/normalize"
	"github.com/parcelforge/shipping/pkg/shipping/servicetype"
	"github.com/parcelforge/shipping/pkg/shipping/token"
)

const carrierName = "fedex"

const (
	defaultSandboxURL = "https://apis-sandbox.fedex.com"
	defaultLiveURL    = "https://apis.fedex.com"
)

// Config holds FedEx adapter configuration.
type Config struct {
	SandboxURL string
	LiveURL    string
	Timeout    time.Duration
	UseMock    bool // When true, uses mock API client

	HomeCountry          string
	DefaultShipper       shipping.Party
	DefaultReturnAddress shipping.Party
}

// Deps are the stores the adapter persists through.
type Deps struct {
	Tokens    shipping.TokenStore
	Apps      shipping.ApplicationStore
	Labels    shipping.LabelStore
	Artifacts shipping.ArtifactStore
}

type boundAccount struct {
	name   string
	number string
	app    *shipping.Application
}

// Client is the FedEx carrier adapter. It implements the shipping.Carrier
// interface and delegates API calls to the underlying APIClient (mock or
// HTTP).
type Client struct {
	config    Config
	apiClient APIClient
	tokens    *token.Manager

	mapper     *servicetype.Mapper
	normalizer *normalize.Normalizer

	labels    shipping.LabelStore
	artifacts shipping.ArtifactStore

	account boundAccount
	markup  float64

	logger *otelzap.Logger
	tracer trace.Tracer
}

// New creates a new FedEx client. If cfg.UseMock is true, it uses a mock API
// client instead of HTTP.
func New(cfg Config, deps Deps, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient
	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL: liveURL(cfg),
			Timeout: cfg.Timeout,
		})
	}
	return NewWithAPIClient(cfg, apiClient, deps, logger, tracer)
}

// NewWithAPIClient creates a new FedEx client with a custom API client.
// This is useful for injecting mock clients in tests.
func NewWithAPIClient(cfg Config, apiClient APIClient, deps Deps, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	c := &Client{
		config:    cfg,
		apiClient: apiClient,
		labels:    deps.Labels,
		artifacts: deps.Artifacts,
		mapper:    servicetype.NewMapper(shipping.CarrierFedEx),
		logger:    logger,
		tracer:    tracer,
	}
	c.tokens = token.NewManager(shipping.CarrierFedEx, deps.Tokens, deps.Apps, apiClient, logger)
	c.normalizer = normalize.New(&addressValidator{client: c}, c.mapper, cfg.HomeCountry)
	return c
}

// Name returns the bound account name, or the carrier name before binding.
func (c *Client) Name() string {
	if c.account.name != "" {
		return c.account.name
	}
	return carrierName
}

// Type returns the carrier identifier.
func (c *Client) Type() shipping.CarrierType {
	return shipping.CarrierFedEx
}

// SetMarkup sets the cost multiplier applied to created labels.
func (c *Client) SetMarkup(markup float64) {
	c.markup = markup
}

// SetAccount binds the adapter to a configured account, selecting the
// sandbox endpoint when the account's application is a sandbox one.
func (c *Client) SetAccount(ctx context.Context, accountName string) error {
	tok, app, err := c.tokens.Resolve(ctx, accountName)
	if err != nil {
		return err
	}

	c.account = boundAccount{
		name:   accountName,
		number: tok.AccountNumber,
		app:    app,
	}

	baseURL := liveURL(c.config)
	if app.Sandbox || strings.Contains(strings.ToLower(app.Name), "sandbox") {
		baseURL = sandboxURL(c.config)
	}
	c.apiClient.Configure(baseURL, func(ctx context.Context) (string, error) {
		return c.tokens.AccessToken(ctx, accountName)
	})

	c.logger.Ctx(ctx).Info("bound FedEx account",
		zap.String("account", accountName),
		zap.Bool("sandbox", baseURL == sandboxURL(c.config)))
	return nil
}

// GetRates returns rate quotes from FedEx.
func (c *Client) GetRates(ctx context.Context, req *shipping.ShipmentRequest) ([]shipping.Rate, error) {
	if err := c.requireAccount(); err != nil {
		return nil, err
	}

	c.logger.Ctx(ctx).Info("getting FedEx rates",
		zap.String("account", c.account.name),
		zap.String("destination", req.Recipient.Address.CountryCode),
		zap.Int("package_count", len(req.Packages)))

	apiReq, _, err := c.buildRateRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	apiResp, err := c.apiClient.GetRates(ctx, apiReq)
	if err != nil {
		return nil, c.wrapAPIError(err)
	}

	return c.decomposeRates(apiResp), nil
}

// CreateLabel creates a shipment and returns one label per package.
func (c *Client) CreateLabel(ctx context.Context, req *shipping.ShipmentRequest) ([]shipping.Label, error) {
	return c.createLabels(ctx, req, nil)
}

// CreateReturnLabel creates a return shipment.
func (c *Client) CreateReturnLabel(ctx context.Context, req *shipping.ShipmentRequest, ret *shipping.ReturnOptions) ([]shipping.Label, error) {
	if ret == nil {
		ret = &shipping.ReturnOptions{}
	}
	return c.createLabels(ctx, req, ret)
}

func (c *Client) createLabels(ctx context.Context, req *shipping.ShipmentRequest, ret *shipping.ReturnOptions) ([]shipping.Label, error) {
	if err := c.requireAccount(); err != nil {
		return nil, err
	}

	c.logger.Ctx(ctx).Info("creating FedEx shipment",
		zap.String("account", c.account.name),
		zap.String("service_type", req.ServiceType),
		zap.Bool("is_return", ret != nil),
		zap.Int("package_count", len(req.Packages)))

	apiReq, norm, err := c.buildShipmentRequest(ctx, req, ret)
	if err != nil {
		return nil, err
	}

	apiResp, err := c.apiClient.CreateShipment(ctx, apiReq)
	if err != nil {
		return nil, c.wrapAPIError(err)
	}

	labels, err := c.decomposeShipment(ctx, req, apiResp, norm.ServiceType, ret)
	if err != nil {
		return nil, err
	}

	for i := range labels {
		if err := c.labels.CreateLabel(ctx, &labels[i]); err != nil {
			return nil, err
		}
	}
	return labels, nil
}

// CancelLabel voids a label. Cancelling an already cancelled label succeeds
// without a carrier call.
func (c *Client) CancelLabel(ctx context.Context, trackingNumber, actor string) (bool, error) {
	if err := c.requireAccount(); err != nil {
		return false, err
	}

	label, err := c.labels.FindLabel(ctx, trackingNumber)
	if err != nil && !errors.Is(err, shipping.ErrLabelNotFound) {
		return false, err
	}
	if label != nil && label.Status == shipping.LabelCancelled {
		return true, nil
	}

	apiResp, err := c.apiClient.CancelShipment(ctx, c.buildCancelRequest(trackingNumber))
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && isAlreadyCancelled(apiErr.Code(), apiErr.Message()) {
			c.markCancelled(ctx, label, actor, "already cancelled with carrier")
			return true, nil
		}
		return false, c.wrapAPIError(err)
	}

	if !apiResp.Output.CancelledShipment {
		if isAlreadyCancelled("", apiResp.Output.Message) {
			c.markCancelled(ctx, label, actor, "already cancelled with carrier")
			return true, nil
		}
		return false, shipping.NewCarrierAPIError(shipping.CarrierFedEx, "SHIP.CANCEL.FAILED", apiResp.Output.Message)
	}

	c.markCancelled(ctx, label, actor, "")
	return true, nil
}

// TrackShipment returns tracking history for a tracking number.
func (c *Client) TrackShipment(ctx context.Context, trackingNumber string) (*shipping.TrackingResult, error) {
	if err := c.requireAccount(); err != nil {
		return nil, err
	}

	apiResp, err := c.apiClient.Track(ctx, &TrackRequest{
		IncludeDetailedScans: true,
		TrackingInfo: []TrackingInfo{
			{TrackingNumberInfo: TrackingNumberInfo{TrackingNumber: trackingNumber}},
		},
	})
	if err != nil {
		return nil, c.wrapAPIError(err)
	}

	return decomposeTracking(apiResp)
}

func (c *Client) requireAccount() error {
	if c.account.name == "" {
		return shipping.ErrAccountNotSet
	}
	return nil
}

func (c *Client) markCancelled(ctx context.Context, label *shipping.Label, actor, reason string) {
	if label == nil {
		return
	}
	now := time.Now().UTC()
	label.Status = shipping.LabelCancelled
	label.CancelledAt = &now
	label.CancelledBy = actor
	label.CancellationReason = reason
	if err := c.labels.UpdateLabel(ctx, label); err != nil {
		c.logger.Ctx(ctx).Warn("failed to record label cancellation",
			zap.String("tracking_number", label.TrackingNumber),
			zap.Error(err))
	}
}

// wrapAPIError converts an APIError into the canonical carrier error.
func (c *Client) wrapAPIError(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return shipping.NewCarrierAPIError(shipping.CarrierFedEx, apiErr.Code(), apiErr.Message()).
			WithStatusCode(apiErr.StatusCode).
			WithCause(err)
	}
	return err
}

func isAlreadyCancelled(code, message string) bool {
	if code == "SHIPMENT.ALREADYCANCELLED" {
		return true
	}
	msg := strings.ToLower(message)
	return strings.Contains(msg, "already cancelled") || strings.Contains(msg, "already canceled")
}

// resolveShipper fills missing shipper fields from the configured default.
func (c *Client) resolveShipper(p shipping.Party) shipping.Party {
	if p.Contact.Name == "" {
		p.Contact = c.config.DefaultShipper.Contact
	}
	if p.Address.CountryCode == "" {
		p.Address = c.config.DefaultShipper.Address
	}
	return p
}

func (c *Client) resolveReturnAddress(ret *shipping.ReturnOptions) shipping.Party {
	if ret.ReturnAddress != nil {
		return *ret.ReturnAddress
	}
	return c.config.DefaultReturnAddress
}

func liveURL(cfg Config) string {
	if cfg.LiveURL != "" {
		return cfg.LiveURL
	}
	return defaultLiveURL
}

func sandboxURL(cfg Config) string {
	if cfg.SandboxURL != "" {
		return cfg.SandboxURL
	}
	return defaultSandboxURL
}

// addressValidator adapts the FedEx address resolution endpoint to the
// normalize.Validator interface.
type addressValidator struct {
	client *Client
}

func (v *addressValidator) ValidateAddress(ctx context.Context, addr shipping.Address) (*normalize.ValidatedAddress, error) {
	resp, err := v.client.apiClient.ValidateAddress(ctx, &AddressValidationRequest{
		AddressesToValidate: []AddressToValidate{{Address: addressToAPI(addr)}},
	})
	if err != nil {
		return nil, &shipping.AddressValidationError{
			Carrier: shipping.CarrierFedEx,
			Message: "address resolution request failed",
			Cause:   err,
		}
	}
	if len(resp.Output.ResolvedAddresses) == 0 {
		return nil, &shipping.AddressValidationError{
			Carrier: shipping.CarrierFedEx,
			Message: "no resolved address returned",
		}
	}

	resolved := resp.Output.ResolvedAddresses[0]
	validated := &normalize.ValidatedAddress{
		Address: shipping.Address{
			StreetLines: resolved.StreetLinesToken,
			City:        resolved.City,
			StateCode:   resolved.StateOrProvinceCode,
			PostalCode:  resolved.PostalCode,
			CountryCode: resolved.CountryCode,
		},
	}
	switch resolved.Classification {
	case "RESIDENTIAL":
		validated.Classification = normalize.ClassificationResidential
	case "BUSINESS":
		validated.Classification = normalize.ClassificationBusiness
	default:
		// UNKNOWN stays unresolved; the shipment proceeds as commercial.
		validated.Classification = normalize.ClassificationUnknown
	}
	return validated, nil
}

var _ shipping.Carrier = (*Client)(nil)
var _ normalize.Validator = (*addressValidator)(nil)
