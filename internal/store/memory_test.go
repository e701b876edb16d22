package store_test

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelforge/shipping/internal/store"
	"github.com/parcelforge/shipping/pkg/shipping"
)

func TestMemory_Labels(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	label := &shipping.Label{
		ID:             "lbl-1",
		Carrier:        shipping.CarrierFedEx,
		TrackingNumber: "794600001234",
		Status:         shipping.LabelActive,
		Cost:           27.83,
		CreatedAt:      time.Now(),
	}
	require.NoError(t, mem.CreateLabel(ctx, label))

	found, err := mem.FindLabel(ctx, "794600001234")
	require.NoError(t, err)
	assert.Equal(t, "lbl-1", found.ID)
	assert.Equal(t, 27.83, found.Cost)

	now := time.Now()
	found.Status = shipping.LabelCancelled
	found.CancelledAt = &now
	require.NoError(t, mem.UpdateLabel(ctx, found))

	again, err := mem.FindLabel(ctx, "794600001234")
	require.NoError(t, err)
	assert.Equal(t, shipping.LabelCancelled, again.Status)
	require.NotNil(t, again.CancelledAt)

	_, err = mem.FindLabel(ctx, "nope")
	assert.ErrorIs(t, err, shipping.ErrLabelNotFound)
}

func TestMemory_Tokens(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.SaveToken(ctx, &shipping.Token{
		ID:          "tok-1",
		AccountName: "main",
		Carrier:     shipping.CarrierFedEx,
		AccessToken: "abc",
	}))
	// Same account name under another carrier is a distinct record.
	require.NoError(t, mem.SaveToken(ctx, &shipping.Token{
		ID:          "tok-2",
		AccountName: "main",
		Carrier:     shipping.CarrierUPS,
		AccessToken: "xyz",
	}))

	tok, err := mem.FindToken(ctx, "main", shipping.CarrierFedEx)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok.AccessToken)

	tok, err = mem.FindToken(ctx, "main", shipping.CarrierUPS)
	require.NoError(t, err)
	assert.Equal(t, "xyz", tok.AccessToken)

	_, err = mem.FindToken(ctx, "other", shipping.CarrierFedEx)
	assert.ErrorIs(t, err, shipping.ErrAccountNotConfigured)
}

func TestMemory_Applications(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.SaveApplication(ctx, &shipping.Application{
		ID:      "app-1",
		Carrier: shipping.CarrierUPS,
	}))

	app, err := mem.FindApplication(ctx, "app-1", shipping.CarrierUPS)
	require.NoError(t, err)
	assert.Equal(t, "app-1", app.ID)

	_, err = mem.FindApplication(ctx, "app-1", shipping.CarrierFedEx)
	assert.ErrorIs(t, err, shipping.ErrApplicationNotConfigured)
}

func TestFileArtifacts_SaveArtifact(t *testing.T) {
	dir := t.TempDir()
	artifacts, err := store.NewFileArtifacts(dir, "https://labels.example.com")
	require.NoError(t, err)

	data, err := base64.StdEncoding.DecodeString("R0lGODlhAQABAAAAACw=")
	require.NoError(t, err)

	url, err := artifacts.SaveArtifact(context.Background(), "1Z999AA10123456784", "GIF", data)
	require.NoError(t, err)
	assert.Equal(t, "https://labels.example.com/1Z999AA10123456784.gif", url)

	written, err := os.ReadFile(filepath.Join(dir, "1Z999AA10123456784.gif"))
	require.NoError(t, err)
	assert.Equal(t, data, written)
}

func TestFileArtifacts_FormatExtensions(t *testing.T) {
	dir := t.TempDir()
	artifacts, err := store.NewFileArtifacts(dir, "http://localhost/labels")
	require.NoError(t, err)

	url, err := artifacts.SaveArtifact(context.Background(), "794600001234", "ZPLII", []byte("^XA^XZ"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/labels/794600001234.zpl", url)

	url, err = artifacts.SaveArtifact(context.Background(), "794600001235", "TIFF", []byte{0x49, 0x49})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/labels/794600001235.bin", url)
}
