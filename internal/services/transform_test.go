// internal/services/transform_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/shopify-automation/internal/models"
)

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"US $12.34", 12.34},
		{"₩15,000", 15000},
		{"  8 ", 8},
		{"", 0},
		{"free", 0},
		{"1.2.3", 0},
		{"$ - ", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, ExtractPrice(tt.in), 0.0001)
		})
	}
}

func TestTransformDetail(t *testing.T) {
	draft, err := TransformDetail(sampleDetail("42"))
	require.NoError(t, err)

	assert.Equal(t, "Wireless Mouse", draft.Title)
	assert.InDelta(t, 19.99*MarkupMultiplier, draft.Price, 0.0001)
	assert.InDelta(t, 19.99, draft.CompareAtPrice, 0.0001)
	assert.Equal(t, DefaultVendor, draft.Vendor)
	assert.Equal(t, DefaultProductType, draft.ProductType)
	assert.Equal(t, DefaultImportTags, draft.Tags)
	assert.Equal(t, DefaultInventory, draft.InventoryQuantity)
	assert.Equal(t, InventoryManagement, draft.InventoryManagement)
	assert.Equal(t, models.ProductStatusActive, draft.Status)
	assert.Equal(t, []string{"https://img.example.com/1.jpg", "https://img.example.com/2.jpg"}, draft.Images)
	assert.Equal(t, "https://img.example.com/1.jpg", draft.ImageURL)

	require.Len(t, draft.Variants, 2)
	assert.Equal(t, "Black", draft.Variants[0].Title)
	assert.InDelta(t, 15.0, draft.Variants[0].Price, 0.0001)
	assert.InDelta(t, 10.0, draft.Variants[0].CompareAtPrice, 0.0001)
	assert.Equal(t, DefaultVariantInventory, draft.Variants[0].InventoryQuantity)
	assert.Equal(t, DefaultVariantTitle, draft.Variants[1].Title)
	assert.Zero(t, draft.Variants[1].Price)
}

func TestTransformDetailUnparseablePriceIsZero(t *testing.T) {
	detail := sampleDetail("1")
	detail.Price = "price on request"
	detail.Images = nil
	detail.Variants = nil

	draft, err := TransformDetail(detail)
	require.NoError(t, err)
	assert.Zero(t, draft.Price)
	assert.Zero(t, draft.CompareAtPrice)
	assert.Empty(t, draft.ImageURL)
	assert.Empty(t, draft.Variants)
}

func TestTransformDetailRejectsMissingData(t *testing.T) {
	_, err := TransformDetail(nil)
	assert.ErrorIs(t, err, ErrEmptySourceRecord)

	_, err = TransformDetail(&RawDetail{ID: "1", Price: "$1"})
	assert.ErrorIs(t, err, ErrMissingTitle)
}

func TestSchemaTransformerReportsFailures(t *testing.T) {
	diag := &recordingDiag{}
	transformer := NewSchemaTransformer(diag)

	_, err := transformer.Transform(context.Background(), &RawDetail{ID: "77"})
	require.Error(t, err)

	require.Len(t, diag.events, 1)
	event := diag.events[0]
	assert.Equal(t, models.LogLevelError, event.Level)
	assert.Equal(t, "transform", event.Entry.Module)
	assert.Equal(t, "77", event.Entry.Fields["source_product_id"])

	_, err = transformer.Transform(context.Background(), sampleDetail("78"))
	require.NoError(t, err)
	assert.Len(t, diag.events, 1)
}
