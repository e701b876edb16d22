package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/parcelforge/shipping/pkg/shipping"
)

// labelRecord is the labels table row. Structured columns (parties, fees)
// are serialized as JSON.
type labelRecord struct {
	ID            string `gorm:"primaryKey"`
	Carrier       string `gorm:"index"`
	AccountName   string
	AccountNumber string

	TrackingNumber string `gorm:"uniqueIndex"`
	ServiceType    string

	BaseCost float64
	Cost     float64
	Currency string

	ShipmentFees       map[string]float64 `gorm:"serializer:json"`
	PackageFees        map[string]float64 `gorm:"serializer:json"`
	AdditionalHandling float64

	LabelURL    string
	ImageFormat string

	ShipperInfo   shipping.Party   `gorm:"serializer:json"`
	RecipientInfo shipping.Party   `gorm:"serializer:json"`
	PackageInfo   shipping.Package `gorm:"serializer:json"`
	BoxID         string

	InvoiceNumber    string
	CustomerPONumber string
	MarketOrderID    string

	IsReturn  bool
	RMANumber string

	Status             string `gorm:"index"`
	CreatedAt          time.Time
	CancelledAt        *time.Time
	CancelledBy        string
	CancellationReason string
}

func (labelRecord) TableName() string { return "labels" }

type tokenRecord struct {
	ID            string `gorm:"primaryKey"`
	AccountName   string `gorm:"index:idx_tokens_account,unique"`
	Carrier       string `gorm:"index:idx_tokens_account,unique"`
	AccountNumber string
	AppID         string
	AccessToken   string
	RefreshToken  string
	ExpiresAt     *time.Time
	UpdatedAt     time.Time
}

func (tokenRecord) TableName() string { return "tokens" }

type applicationRecord struct {
	ID            string `gorm:"primaryKey"`
	Carrier       string `gorm:"index"`
	ApplicationID string
	SharedSecret  string
	Name          string
	Sandbox       bool
}

func (applicationRecord) TableName() string { return "applications" }

// Gorm is the Postgres-backed store.
type Gorm struct {
	db *gorm.DB
}

// NewGorm opens a Postgres connection and migrates the schema.
func NewGorm(dsn string) (*Gorm, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.AutoMigrate(&labelRecord{}, &tokenRecord{}, &applicationRecord{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return &Gorm{db: db}, nil
}

func (g *Gorm) CreateLabel(ctx context.Context, label *shipping.Label) error {
	return g.db.WithContext(ctx).Create(labelToRecord(label)).Error
}

func (g *Gorm) FindLabel(ctx context.Context, trackingNumber string) (*shipping.Label, error) {
	var rec labelRecord
	err := g.db.WithContext(ctx).Where("tracking_number = ?", trackingNumber).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shipping.ErrLabelNotFound
	}
	if err != nil {
		return nil, err
	}
	return recordToLabel(&rec), nil
}

func (g *Gorm) UpdateLabel(ctx context.Context, label *shipping.Label) error {
	return g.db.WithContext(ctx).Save(labelToRecord(label)).Error
}

func (g *Gorm) FindToken(ctx context.Context, accountName string, carrier shipping.CarrierType) (*shipping.Token, error) {
	var rec tokenRecord
	err := g.db.WithContext(ctx).
		Where("account_name = ? AND carrier = ?", accountName, string(carrier)).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shipping.ErrAccountNotConfigured
	}
	if err != nil {
		return nil, err
	}
	return &shipping.Token{
		ID:            rec.ID,
		AccountName:   rec.AccountName,
		Carrier:       shipping.CarrierType(rec.Carrier),
		AccountNumber: rec.AccountNumber,
		AppID:         rec.AppID,
		AccessToken:   rec.AccessToken,
		RefreshToken:  rec.RefreshToken,
		ExpiresAt:     rec.ExpiresAt,
	}, nil
}

func (g *Gorm) SaveToken(ctx context.Context, token *shipping.Token) error {
	rec := tokenRecord{
		ID:            token.ID,
		AccountName:   token.AccountName,
		Carrier:       string(token.Carrier),
		AccountNumber: token.AccountNumber,
		AppID:         token.AppID,
		AccessToken:   token.AccessToken,
		RefreshToken:  token.RefreshToken,
		ExpiresAt:     token.ExpiresAt,
	}
	return g.db.WithContext(ctx).Save(&rec).Error
}

func (g *Gorm) FindApplication(ctx context.Context, appID string, carrier shipping.CarrierType) (*shipping.Application, error) {
	var rec applicationRecord
	err := g.db.WithContext(ctx).
		Where("id = ? AND carrier = ?", appID, string(carrier)).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shipping.ErrApplicationNotConfigured
	}
	if err != nil {
		return nil, err
	}
	return &shipping.Application{
		ID:            rec.ID,
		Carrier:       shipping.CarrierType(rec.Carrier),
		ApplicationID: rec.ApplicationID,
		SharedSecret:  rec.SharedSecret,
		Name:          rec.Name,
		Sandbox:       rec.Sandbox,
	}, nil
}

// SaveApplication registers application credentials.
func (g *Gorm) SaveApplication(ctx context.Context, app *shipping.Application) error {
	rec := applicationRecord{
		ID:            app.ID,
		Carrier:       string(app.Carrier),
		ApplicationID: app.ApplicationID,
		SharedSecret:  app.SharedSecret,
		Name:          app.Name,
		Sandbox:       app.Sandbox,
	}
	return g.db.WithContext(ctx).Save(&rec).Error
}

func labelToRecord(l *shipping.Label) *labelRecord {
	return &labelRecord{
		ID:                 l.ID,
		Carrier:            string(l.Carrier),
		AccountName:        l.AccountName,
		AccountNumber:      l.AccountNumber,
		TrackingNumber:     l.TrackingNumber,
		ServiceType:        l.ServiceType,
		BaseCost:           l.BaseCost,
		Cost:               l.Cost,
		Currency:           l.Currency,
		ShipmentFees:       l.ShipmentFees,
		PackageFees:        l.PackageFees,
		AdditionalHandling: l.AdditionalHandling,
		LabelURL:           l.LabelURL,
		ImageFormat:        l.ImageFormat,
		ShipperInfo:        l.ShipperInfo,
		RecipientInfo:      l.RecipientInfo,
		PackageInfo:        l.PackageInfo,
		BoxID:              l.BoxID,
		InvoiceNumber:      l.InvoiceNumber,
		CustomerPONumber:   l.CustomerPONumber,
		MarketOrderID:      l.MarketOrderID,
		IsReturn:           l.IsReturn,
		RMANumber:          l.RMANumber,
		Status:             string(l.Status),
		CreatedAt:          l.CreatedAt,
		CancelledAt:        l.CancelledAt,
		CancelledBy:        l.CancelledBy,
		CancellationReason: l.CancellationReason,
	}
}

func recordToLabel(r *labelRecord) *shipping.Label {
	return &shipping.Label{
		ID:                 r.ID,
		Carrier:            shipping.CarrierType(r.Carrier),
		AccountName:        r.AccountName,
		AccountNumber:      r.AccountNumber,
		TrackingNumber:     r.TrackingNumber,
		ServiceType:        r.ServiceType,
		BaseCost:           r.BaseCost,
		Cost:               r.Cost,
		Currency:           r.Currency,
		ShipmentFees:       r.ShipmentFees,
		PackageFees:        r.PackageFees,
		AdditionalHandling: r.AdditionalHandling,
		LabelURL:           r.LabelURL,
		ImageFormat:        r.ImageFormat,
		ShipperInfo:        r.ShipperInfo,
		RecipientInfo:      r.RecipientInfo,
		PackageInfo:        r.PackageInfo,
		BoxID:              r.BoxID,
		InvoiceNumber:      r.InvoiceNumber,
		CustomerPONumber:   r.CustomerPONumber,
		MarketOrderID:      r.MarketOrderID,
		IsReturn:           r.IsReturn,
		RMANumber:          r.RMANumber,
		Status:             shipping.LabelStatus(r.Status),
		CreatedAt:          r.CreatedAt,
		CancelledAt:        r.CancelledAt,
		CancelledBy:        r.CancelledBy,
		CancellationReason: r.CancellationReason,
	}
}

var (
	_ shipping.LabelStore       = (*Gorm)(nil)
	_ shipping.TokenStore       = (*Gorm)(nil)
	_ shipping.ApplicationStore = (*Gorm)(nil)
)
