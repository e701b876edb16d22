package main

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/parcelforge/shipping/internal/config"
	"github.com/parcelforge/shipping/internal/store"
	"github.com/parcelforge/shipping/internal/telemetry"
	"github.com/parcelforge/shipping/pkg/shipping"
	"github.com/parcelforge/shipping/pkg/shipping/fedex"
	"github.com/parcelforge/shipping/pkg/shipping/ups"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (trace.Tracer, func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return noop.NewTracerProvider().Tracer(cfg.ServiceName),
			func(context.Context) error { return nil }, nil
	}
	return telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
}

// stores groups the persistence backends the carrier adapters write through.
type stores struct {
	labels    shipping.LabelStore
	tokens    shipping.TokenStore
	apps      shipping.ApplicationStore
	artifacts shipping.ArtifactStore
}

func initStores(cfg *config.Config) (*stores, error) {
	artifacts, err := store.NewFileArtifacts(cfg.ArtifactDir, cfg.ArtifactBaseURL)
	if err != nil {
		return nil, err
	}

	if cfg.DatabaseDSN == "" {
		mem := store.NewMemory()
		return &stores{labels: mem, tokens: mem, apps: mem, artifacts: artifacts}, nil
	}

	db, err := store.NewGorm(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	return &stores{labels: db, tokens: db, apps: db, artifacts: artifacts}, nil
}

func initCarrierRegistry(cfg *config.Config, st *stores, logger *otelzap.Logger, tracer trace.Tracer) *shipping.Registry {
	registry := shipping.NewRegistry()

	shipper := defaultShipper(cfg)

	if cfg.FedExEnabled {
		fedexCfg := fedex.Config{
			SandboxURL:           cfg.FedExSandboxURL,
			LiveURL:              cfg.FedExLiveURL,
			Timeout:              30 * time.Second,
			UseMock:              cfg.FedExUseMock,
			HomeCountry:          cfg.HomeCountry,
			DefaultShipper:       shipper,
			DefaultReturnAddress: shipper,
		}
		registry.Register(shipping.CarrierFedEx, func() shipping.Carrier {
			return fedex.New(fedexCfg, fedex.Deps{
				Tokens:    st.tokens,
				Apps:      st.apps,
				Labels:    st.labels,
				Artifacts: st.artifacts,
			}, logger, tracer)
		})
	}

	if cfg.UPSEnabled {
		upsCfg := ups.Config{
			SandboxURL:           cfg.UPSSandboxURL,
			LiveURL:              cfg.UPSLiveURL,
			Timeout:              30 * time.Second,
			UseMock:              cfg.UPSUseMock,
			HomeCountry:          cfg.HomeCountry,
			DefaultShipper:       shipper,
			DefaultReturnAddress: shipper,
		}
		registry.Register(shipping.CarrierUPS, func() shipping.Carrier {
			return ups.New(upsCfg, ups.Deps{
				Tokens:    st.tokens,
				Apps:      st.apps,
				Labels:    st.labels,
				Artifacts: st.artifacts,
			}, logger, tracer)
		})
	}

	return registry
}

func defaultShipper(cfg *config.Config) shipping.Party {
	return shipping.Party{
		Contact: shipping.Contact{
			Name:    cfg.ShipperName,
			Company: cfg.ShipperCompany,
			Phone:   cfg.ShipperPhone,
			Email:   cfg.ShipperEmail,
		},
		Address: shipping.Address{
			StreetLines: []string{cfg.ShipperStreet},
			City:        cfg.ShipperCity,
			StateCode:   cfg.ShipperState,
			PostalCode:  cfg.ShipperPostalCode,
			CountryCode: cfg.ShipperCountry,
		},
	}
}
