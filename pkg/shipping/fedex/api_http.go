package fedex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/parcelforge/shipping/pkg/shipping"
)

// HTTPAPIClient is the production implementation of APIClient using HTTP.
type HTTPAPIClient struct {
	baseURL    string
	tokens     TokenFunc
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPAPIClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Configure points the client at an endpoint and sets the token source.
func (c *HTTPAPIClient) Configure(baseURL string, tokens TokenFunc) {
	c.baseURL = baseURL
	c.tokens = tokens
}

// RequestToken performs the OAuth client-credentials exchange.
// POST /oauth/token with form-encoded credentials.
func (c *HTTPAPIClient) RequestToken(ctx context.Context, app *shipping.Application) (string, time.Duration, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", app.ApplicationID)
	form.Set("client_secret", app.SharedSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, c.parseError(resp)
	}

	var result TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", 0, fmt.Errorf("failed to decode token response: %w", err)
	}

	return result.AccessToken, time.Duration(result.ExpiresIn) * time.Second, nil
}

// GetRates fetches rate quotes from the FedEx API.
func (c *HTTPAPIClient) GetRates(ctx context.Context, req *RateRequest) (*RateResponse, error) {
	var result RateResponse
	if err := c.doJSON(ctx, http.MethodPost, "/rate/v1/rates/quotes", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateShipment creates a shipment via the FedEx API.
func (c *HTTPAPIClient) CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipResponse, error) {
	var result ShipResponse
	if err := c.doJSON(ctx, http.MethodPost, "/ship/v1/shipments", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CancelShipment voids a shipment via the FedEx API.
func (c *HTTPAPIClient) CancelShipment(ctx context.Context, req *CancelRequest) (*CancelResponse, error) {
	var result CancelResponse
	if err := c.doJSON(ctx, http.MethodPut, "/ship/v1/shipments/cancel", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Track fetches tracking detail via the FedEx API.
func (c *HTTPAPIClient) Track(ctx context.Context, req *TrackRequest) (*TrackResponse, error) {
	var result TrackResponse
	if err := c.doJSON(ctx, http.MethodPost, "/track/v1/trackingnumbers", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ValidateAddress resolves an address via the FedEx API.
func (c *HTTPAPIClient) ValidateAddress(ctx context.Context, req *AddressValidationRequest) (*AddressValidationResponse, error) {
	var result AddressValidationResponse
	if err := c.doJSON(ctx, http.MethodPost, "/address/v1/addresses/resolve", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// doJSON performs an authenticated JSON request and decodes the response.
func (c *HTTPAPIClient) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.parseError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// doRequest performs an HTTP request with proper headers and authentication.
func (c *HTTPAPIClient) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "parcelforge-shipping/1.0")

	if c.tokens != nil {
		token, err := c.tokens(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.httpClient.Do(req)
}

// parseError extracts error information from an HTTP response.
func (c *HTTPAPIClient) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && len(apiErr.Errors) > 0 {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	return &APIError{
		Errors: []APIErrorDetail{{
			Code:    fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message: string(body),
		}},
		StatusCode: resp.StatusCode,
	}
}

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)
