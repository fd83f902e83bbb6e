// internal/services/shopify_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/javajoker/shopify-automation/internal/config"
	"github.com/javajoker/shopify-automation/internal/metrics"
)

const (
	maxShopifyResponseSize = 10 * 1024 * 1024
	maxShopifyPageSize     = 250
)

var (
	ErrShopifyNotConfigured = errors.New("shopify: shop url and access token are required")
	ErrShopifyNotFound      = errors.New("shopify: product not found")
	ErrShopifyUnavailable   = errors.New("shopify: request failed")
)

// ShopifyAPIError is a non-2xx answer from the Admin API.
type ShopifyAPIError struct {
	StatusCode int
	Body       string
}

func (e *ShopifyAPIError) Error() string {
	return fmt.Sprintf("shopify: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsShopifyError reports whether err came from talking to Shopify.
func IsShopifyError(err error) bool {
	var apiErr *ShopifyAPIError
	return errors.As(err, &apiErr) ||
		errors.Is(err, ErrShopifyNotFound) ||
		errors.Is(err, ErrShopifyNotConfigured) ||
		errors.Is(err, ErrShopifyUnavailable)
}

// ShopifyService talks to the Shopify Admin REST API.
type ShopifyService struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

func NewShopifyService(cfg config.ShopifyConfig) *ShopifyService {
	s := &ShopifyService{
		accessToken: cfg.AccessToken,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
	if cfg.ShopURL != "" {
		s.baseURL = cfg.ShopBaseURL()
	}
	return s
}

func (s *ShopifyService) configured() bool {
	return s.baseURL != "" && s.accessToken != ""
}

type shopifyProductEnvelope struct {
	Product ShopifyProduct `json:"product"`
}

type shopifyProductsEnvelope struct {
	Products []ShopifyProduct `json:"products"`
}

// ListProducts returns one page. Pass the previous page's NextCursor to
// continue; an empty cursor starts from the beginning.
func (s *ShopifyService) ListProducts(ctx context.Context, cursor string, limit int) (*ProductPage, error) {
	if limit <= 0 || limit > maxShopifyPageSize {
		limit = maxShopifyPageSize
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		query.Set("page_info", cursor)
	}

	var out shopifyProductsEnvelope
	header, err := s.do(ctx, "list_products", http.MethodGet, "/products.json?"+query.Encode(), nil, &out)
	if err != nil {
		return nil, err
	}

	return &ProductPage{
		Products:   out.Products,
		NextCursor: nextPageInfo(header.Get("Link")),
	}, nil
}

// ListAllProducts follows the destination's cursor until the listing is
// exhausted. A cursor that repeats ends the walk.
func ListAllProducts(ctx context.Context, destination DestinationCatalog) ([]ShopifyProduct, error) {
	var all []ShopifyProduct
	cursor := ""
	for {
		page, err := destination.ListProducts(ctx, cursor, maxShopifyPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Products...)
		if page.NextCursor == "" || page.NextCursor == cursor {
			return all, nil
		}
		cursor = page.NextCursor
	}
}

func (s *ShopifyService) GetProduct(ctx context.Context, id string) (*ShopifyProduct, error) {
	var out shopifyProductEnvelope
	if _, err := s.do(ctx, "get_product", http.MethodGet, "/products/"+url.PathEscape(id)+".json", nil, &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

func (s *ShopifyService) CreateProduct(ctx context.Context, draft *ProductDraft) (*ShopifyProduct, error) {
	if draft == nil {
		return nil, errors.New("shopify: nothing to create")
	}

	payload := shopifyProductEnvelope{Product: buildShopifyProduct(draft)}

	var out shopifyProductEnvelope
	if _, err := s.do(ctx, "create_product", http.MethodPost, "/products.json", payload, &out); err != nil {
		return nil, err
	}
	if out.Product.ID == 0 {
		return nil, errors.New("shopify: create response carried no product id")
	}
	return &out.Product, nil
}

func (s *ShopifyService) UpdateProduct(ctx context.Context, id string, update *ShopifyProductUpdate) (*ShopifyProduct, error) {
	if update.IsEmpty() {
		return s.GetProduct(ctx, id)
	}

	payload := map[string]interface{}{"product": update}

	var out shopifyProductEnvelope
	if _, err := s.do(ctx, "update_product", http.MethodPut, "/products/"+url.PathEscape(id)+".json", payload, &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

func (s *ShopifyService) DeleteProduct(ctx context.Context, id string) error {
	_, err := s.do(ctx, "delete_product", http.MethodDelete, "/products/"+url.PathEscape(id)+".json", nil, nil)
	return err
}

// TestConnection fetches the shop record to verify credentials.
func (s *ShopifyService) TestConnection(ctx context.Context) (*ShopInfo, error) {
	var out struct {
		Shop ShopInfo `json:"shop"`
	}
	if _, err := s.do(ctx, "shop_info", http.MethodGet, "/shop.json", nil, &out); err != nil {
		return nil, err
	}
	return &out.Shop, nil
}

func (s *ShopifyService) do(ctx context.Context, operation, method, path string, body, out interface{}) (http.Header, error) {
	if !s.configured() {
		return nil, ErrShopifyNotConfigured
	}

	var err error
	done := metrics.TrackExternal("shopify", operation)
	defer func() { done(err) }()

	var reader io.Reader
	if body != nil {
		data, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			err = fmt.Errorf("shopify: failed to encode request: %w", marshalErr)
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		err = fmt.Errorf("shopify: failed to create request: %w", err)
		return nil, err
	}
	req.Header.Set("X-Shopify-Access-Token", s.accessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrShopifyUnavailable, err)
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxShopifyResponseSize))
	if err != nil {
		err = fmt.Errorf("%w: reading response: %v", ErrShopifyUnavailable, err)
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		err = ErrShopifyNotFound
		return nil, err
	}
	if resp.StatusCode >= 400 {
		err = &ShopifyAPIError{StatusCode: resp.StatusCode, Body: truncate(string(data), 500)}
		return nil, err
	}

	if out != nil && len(data) > 0 {
		if err = json.Unmarshal(data, out); err != nil {
			err = fmt.Errorf("%w: decoding response: %v", ErrShopifyUnavailable, err)
			return nil, err
		}
	}
	return resp.Header, nil
}

func buildShopifyProduct(draft *ProductDraft) ShopifyProduct {
	product := ShopifyProduct{
		Title:       draft.Title,
		BodyHTML:    draft.Description,
		Vendor:      draft.Vendor,
		ProductType: draft.ProductType,
		Tags:        draft.Tags,
		Status:      string(draft.Status),
	}

	for _, src := range draft.Images {
		product.Images = append(product.Images, ShopifyImage{Src: src})
	}
	if len(product.Images) == 0 && draft.ImageURL != "" {
		product.Images = []ShopifyImage{{Src: draft.ImageURL}}
	}

	if len(draft.Variants) == 0 {
		product.Variants = []ShopifyVariant{{
			Price:               formatPrice(draft.Price),
			CompareAtPrice:      compareAtPrice(draft.CompareAtPrice),
			InventoryQuantity:   draft.InventoryQuantity,
			InventoryManagement: draft.InventoryManagement,
		}}
		return product
	}

	for _, v := range draft.Variants {
		product.Variants = append(product.Variants, ShopifyVariant{
			Option1:             v.Title,
			Price:               formatPrice(v.Price),
			CompareAtPrice:      compareAtPrice(v.CompareAtPrice),
			SKU:                 v.SKU,
			InventoryQuantity:   v.InventoryQuantity,
			InventoryManagement: draft.InventoryManagement,
		})
	}
	return product
}

// formatPrice renders a money amount the way the Admin API expects: a
// two-decimal string.
func formatPrice(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

func compareAtPrice(amount float64) *string {
	if amount <= 0 {
		return nil
	}
	s := formatPrice(amount)
	return &s
}

// ParsePrice reads a Shopify money string, returning 0 for blanks.
func ParsePrice(value string) float64 {
	if strings.TrimSpace(value) == "" {
		return 0
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// nextPageInfo extracts the page_info of the rel="next" entry of a Link header.
func nextPageInfo(link string) string {
	for _, part := range strings.Split(link, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}

		isNext := false
		for _, attr := range segments[1:] {
			if strings.TrimSpace(attr) == `rel="next"` {
				isNext = true
				break
			}
		}
		if !isNext {
			continue
		}

		target := strings.Trim(strings.TrimSpace(segments[0]), "<>")
		u, err := url.Parse(target)
		if err != nil {
			return ""
		}
		return u.Query().Get("page_info")
	}
	return ""
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
