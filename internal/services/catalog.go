// internal/services/catalog.go
package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/shopify-automation/internal/models"
)

// SourceCatalog is the marketplace products are imported from.
type SourceCatalog interface {
	SearchProducts(ctx context.Context, params SearchParams) ([]RawListing, error)
	GetTrendingProducts(ctx context.Context, category string, limit int) ([]RawListing, error)
	// GetProductDetail returns (nil, nil) when the page yielded no data.
	GetProductDetail(ctx context.Context, productID string) (*RawDetail, error)
}

// DestinationCatalog is the storefront imported products are published to.
type DestinationCatalog interface {
	ListProducts(ctx context.Context, cursor string, limit int) (*ProductPage, error)
	GetProduct(ctx context.Context, id string) (*ShopifyProduct, error)
	CreateProduct(ctx context.Context, draft *ProductDraft) (*ShopifyProduct, error)
	UpdateProduct(ctx context.Context, id string, update *ShopifyProductUpdate) (*ShopifyProduct, error)
	DeleteProduct(ctx context.Context, id string) error
	// TestConnection returns the shop record the credentials belong to.
	TestConnection(ctx context.Context) (*ShopInfo, error)
}

// TextGenerator produces marketing copy. It never fails: on error it returns
// a fixed fallback text, so callers must not assume well-formed output.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string, maxTokens int) string
}

// Diagnostics records structured events. Implementations must not panic or
// block the caller on sink failures.
type Diagnostics interface {
	Record(ctx context.Context, level models.LogLevel, entry LogEntry)
}

type LogEntry struct {
	Message   string
	Module    string
	Function  string
	UserID    *uuid.UUID
	ProductID *uuid.UUID
	Fields    map[string]interface{}
	Err       error
}

type SearchParams struct {
	Keyword   string  `json:"keyword"`
	Category  string  `json:"category"`
	MinOrders int     `json:"min_orders"`
	MaxPrice  float64 `json:"max_price,omitempty"`
	Page      int     `json:"page"`
	Limit     int     `json:"limit"`
}

// RawListing is a search result card as scraped, all values still text.
type RawListing struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Price      string `json:"price"`
	ImageURL   string `json:"image_url"`
	Orders     string `json:"orders"`
	Rating     string `json:"rating,omitempty"`
	URL        string `json:"url"`
	IsTrending bool   `json:"is_trending,omitempty"`
}

type RawVariant struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// RawDetail is a scraped product page.
type RawDetail struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Price        string       `json:"price"`
	Description  string       `json:"description"`
	Images       []string     `json:"images"`
	Variants     []RawVariant `json:"variants"`
	Shipping     string       `json:"shipping"`
	Rating       string       `json:"rating"`
	ReviewsCount string       `json:"reviews_count"`
	Orders       string       `json:"orders"`
	URL          string       `json:"url"`
}

// ProductDraft is a source record mapped onto the storefront schema.
type ProductDraft struct {
	Title               string                  `json:"title"`
	Description         string                  `json:"description"`
	Price               float64                 `json:"price"`
	CompareAtPrice      float64                 `json:"compare_at_price"`
	Vendor              string                  `json:"vendor"`
	ProductType         string                  `json:"product_type"`
	Tags                string                  `json:"tags"`
	ImageURL            string                  `json:"image_url"`
	Images              []string                `json:"images"`
	InventoryQuantity   int                     `json:"inventory_quantity"`
	InventoryManagement string                  `json:"inventory_management"`
	Status              models.ProductStatus    `json:"status"`
	Variants            []models.ProductVariant `json:"variants,omitempty"`
}

type ShopifyProduct struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	BodyHTML    string           `json:"body_html"`
	Vendor      string           `json:"vendor"`
	ProductType string           `json:"product_type"`
	Handle      string           `json:"handle"`
	Tags        string           `json:"tags"`
	Status      string           `json:"status"`
	PublishedAt *time.Time       `json:"published_at"`
	Variants    []ShopifyVariant `json:"variants"`
	Images      []ShopifyImage   `json:"images"`
	Image       *ShopifyImage    `json:"image"`
}

type ShopifyVariant struct {
	ID                  int64   `json:"id,omitempty"`
	Title               string  `json:"title,omitempty"`
	Option1             string  `json:"option1,omitempty"`
	Price               string  `json:"price"`
	CompareAtPrice      *string `json:"compare_at_price,omitempty"`
	SKU                 string  `json:"sku,omitempty"`
	InventoryQuantity   int     `json:"inventory_quantity"`
	InventoryManagement string  `json:"inventory_management,omitempty"`
}

type ShopifyImage struct {
	ID  int64  `json:"id,omitempty"`
	Src string `json:"src"`
}

type ShopInfo struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Domain          string `json:"domain"`
	MyshopifyDomain string `json:"myshopify_domain"`
	Currency        string `json:"currency"`
	PlanName        string `json:"plan_name,omitempty"`
}

// ShopifyProductUpdate carries only the fields being changed.
type ShopifyProductUpdate struct {
	Title       *string `json:"title,omitempty"`
	BodyHTML    *string `json:"body_html,omitempty"`
	Vendor      *string `json:"vendor,omitempty"`
	ProductType *string `json:"product_type,omitempty"`
	Tags        *string `json:"tags,omitempty"`
	Status      *string `json:"status,omitempty"`
}

func (u *ShopifyProductUpdate) IsEmpty() bool {
	return u == nil || (u.Title == nil && u.BodyHTML == nil && u.Vendor == nil &&
		u.ProductType == nil && u.Tags == nil && u.Status == nil)
}

// ProductPage is one page of a cursor-paginated product listing. An empty
// NextCursor means the listing is exhausted.
type ProductPage struct {
	Products   []ShopifyProduct
	NextCursor string
}
