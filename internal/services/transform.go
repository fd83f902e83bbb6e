// internal/services/transform.go
package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/javajoker/shopify-automation/internal/models"
)

const (
	MarkupMultiplier        = 1.5
	DefaultVendor           = "AliExpress Import"
	DefaultProductType      = "General"
	DefaultImportTags       = "aliexpress,import"
	DefaultInventory        = 100
	DefaultVariantInventory = 50
	DefaultVariantTitle     = "Default"
	InventoryManagement     = "shopify"
)

var (
	ErrEmptySourceRecord = errors.New("source record is empty")
	ErrMissingTitle      = errors.New("source record has no title")
)

// ExtractPrice keeps only ASCII digits and dots from a scraped price text.
// Anything unparseable after that is treated as 0.
func ExtractPrice(text string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, text)

	if cleaned == "" {
		return 0
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return price
}

func markup(price float64) float64 {
	if price <= 0 {
		return 0
	}
	return price * MarkupMultiplier
}

// TransformDetail maps a scraped product page onto the storefront schema.
// Numeric fields never fail; a missing record or title does.
func TransformDetail(raw *RawDetail) (*ProductDraft, error) {
	if raw == nil {
		return nil, ErrEmptySourceRecord
	}

	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return nil, ErrMissingTitle
	}

	price := ExtractPrice(raw.Price)
	images := make([]string, 0, len(raw.Images))
	for _, img := range raw.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}

	draft := &ProductDraft{
		Title:               title,
		Description:         raw.Description,
		Price:               markup(price),
		CompareAtPrice:      price,
		Vendor:              DefaultVendor,
		ProductType:         DefaultProductType,
		Tags:                DefaultImportTags,
		Images:              images,
		InventoryQuantity:   DefaultInventory,
		InventoryManagement: InventoryManagement,
		Status:              models.ProductStatusActive,
	}
	if len(images) > 0 {
		draft.ImageURL = images[0]
	}

	for _, v := range raw.Variants {
		variantPrice := ExtractPrice(v.Price)
		name := strings.TrimSpace(v.Name)
		if name == "" {
			name = DefaultVariantTitle
		}
		draft.Variants = append(draft.Variants, models.ProductVariant{
			Title:             name,
			Price:             markup(variantPrice),
			CompareAtPrice:    variantPrice,
			InventoryQuantity: DefaultVariantInventory,
		})
	}

	return draft, nil
}

// SchemaTransformer wraps TransformDetail and reports failures to diagnostics.
type SchemaTransformer struct {
	diag Diagnostics
}

func NewSchemaTransformer(diag Diagnostics) *SchemaTransformer {
	return &SchemaTransformer{diag: diag}
}

func (t *SchemaTransformer) Transform(ctx context.Context, raw *RawDetail) (*ProductDraft, error) {
	draft, err := TransformDetail(raw)
	if err != nil && t.diag != nil {
		fields := map[string]interface{}{}
		if raw != nil {
			fields["source_product_id"] = raw.ID
		}
		t.diag.Record(ctx, models.LogLevelError, LogEntry{
			Message:  "product data transform failed",
			Module:   "transform",
			Function: "Transform",
			Fields:   fields,
			Err:      err,
		})
	}
	return draft, err
}
