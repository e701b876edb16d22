package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Storage. When DATABASE_DSN is empty the service keeps labels, tokens
	// and applications in memory.
	DatabaseDSN     string `envconfig:"DATABASE_DSN"`
	ArtifactDir     string `envconfig:"ARTIFACT_DIR" default:"/var/lib/parcelforge/labels"`
	ArtifactBaseURL string `envconfig:"ARTIFACT_BASE_URL" default:"http://localhost:8080/labels"`

	// Address normalization
	HomeCountry string `envconfig:"HOME_COUNTRY" default:"US"`

	// Default shipper, used when a request omits the shipper party.
	ShipperName       string `envconfig:"SHIPPER_NAME"`
	ShipperCompany    string `envconfig:"SHIPPER_COMPANY"`
	ShipperPhone      string `envconfig:"SHIPPER_PHONE"`
	ShipperEmail      string `envconfig:"SHIPPER_EMAIL"`
	ShipperStreet     string `envconfig:"SHIPPER_STREET"`
	ShipperCity       string `envconfig:"SHIPPER_CITY"`
	ShipperState      string `envconfig:"SHIPPER_STATE"`
	ShipperPostalCode string `envconfig:"SHIPPER_POSTAL_CODE"`
	ShipperCountry    string `envconfig:"SHIPPER_COUNTRY" default:"US"`

	// FedEx
	FedExSandboxURL string `envconfig:"FEDEX_SANDBOX_URL" default:"https://apis-sandbox.fedex.com"`
	FedExLiveURL    string `envconfig:"FEDEX_LIVE_URL" default:"https://apis.fedex.com"`
	FedExEnabled    bool   `envconfig:"FEDEX_ENABLED" default:"true"`
	FedExUseMock    bool   `envconfig:"FEDEX_USE_MOCK" default:"false"`

	// UPS
	UPSSandboxURL string `envconfig:"UPS_SANDBOX_URL" default:"https://wwwcie.ups.com"`
	UPSLiveURL    string `envconfig:"UPS_LIVE_URL" default:"https://onlinetools.ups.com"`
	UPSEnabled    bool   `envconfig:"UPS_ENABLED" default:"true"`
	UPSUseMock    bool   `envconfig:"UPS_USE_MOCK" default:"false"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"true"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"parcelforge-shipping"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("fedex.enabled", c.FedExEnabled),
		attribute.Bool("ups.enabled", c.UPSEnabled),
	}
}
