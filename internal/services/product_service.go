// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/shopify-automation/internal/models"
	"github.com/javajoker/shopify-automation/internal/utils"
)

const (
	productModule     = "products"
	seoPromptMaxToken = 500
	metaDescMaxLen    = 160
)

type ProductService struct {
	db          *gorm.DB
	destination DestinationCatalog
	generator   TextGenerator
	diag        Diagnostics
}

// ProductSummary is the list view of a product.
type ProductSummary struct {
	ID        uuid.UUID            `json:"id"`
	ShopifyID *string              `json:"shopify_id"`
	Title     string               `json:"title"`
	Price     float64              `json:"price"`
	ImageURL  string               `json:"image_url"`
	Status    models.ProductStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// UpdateProductRequest lists the only fields a client may change. Nil fields
// are left untouched.
type UpdateProductRequest struct {
	Title             *string               `json:"title,omitempty" validate:"omitempty,min=1,max=500"`
	Description       *string               `json:"description,omitempty"`
	Price             *float64              `json:"price,omitempty" validate:"omitempty,min=0"`
	CompareAtPrice    *float64              `json:"compare_at_price,omitempty" validate:"omitempty,min=0"`
	Vendor            *string               `json:"vendor,omitempty" validate:"omitempty,max=255"`
	ProductType       *string               `json:"product_type,omitempty" validate:"omitempty,max=255"`
	Tags              *string               `json:"tags,omitempty"`
	Status            *models.ProductStatus `json:"status,omitempty" validate:"omitempty,oneof=active draft archived"`
	MetaTitle         *string               `json:"meta_title,omitempty" validate:"omitempty,max=255"`
	MetaDescription   *string               `json:"meta_description,omitempty"`
	ImageURL          *string               `json:"image_url,omitempty" validate:"omitempty,max=1000"`
	Images            []string              `json:"images,omitempty"`
	InventoryQuantity *int                  `json:"inventory_quantity,omitempty" validate:"omitempty,min=0"`
}

type SyncResult struct {
	Fetched int `json:"fetched"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

type ShopifyStatus struct {
	Connected bool      `json:"connected"`
	Shop      *ShopInfo `json:"shop,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// SEOContent is generated storefront metadata.
type SEOContent struct {
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	Keywords        string `json:"keywords"`
}

func NewProductService(db *gorm.DB, destination DestinationCatalog, generator TextGenerator, diag Diagnostics) *ProductService {
	return &ProductService{
		db:          db,
		destination: destination,
		generator:   generator,
		diag:        diag,
	}
}

func (s *ProductService) ListProducts(ctx context.Context, params utils.PaginationParams) ([]ProductSummary, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{})
	if params.Search != "" {
		query = query.Where("title LIKE ?", "%"+likeEscaper.Replace(params.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []models.Product
	query = utils.ApplySort(query, params, []string{"created_at", "updated_at", "title", "price"})
	if err := utils.ApplyPagination(query, params).Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	summaries := make([]ProductSummary, 0, len(products))
	for _, p := range products {
		summaries = append(summaries, ProductSummary{
			ID:        p.ID,
			ShopifyID: p.ShopifyID,
			Title:     p.Title,
			Price:     p.Price,
			ImageURL:  p.ImageURL,
			Status:    p.Status,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		})
	}
	return summaries, total, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

// UpdateProduct applies the allow-listed fields locally. With pushRemote the
// storefront copy is updated first and a remote failure aborts the change.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest, pushRemote bool) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := req.updates()
	if len(updates) == 0 {
		return product, nil
	}

	if pushRemote && product.ShopifyID != nil && s.destination != nil {
		if _, err := s.destination.UpdateProduct(ctx, *product.ShopifyID, req.remoteUpdate()); err != nil {
			return nil, fmt.Errorf("shopify update failed: %w", err)
		}
	}

	if err := s.db.WithContext(ctx).Model(product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.record(ctx, models.LogLevelInfo, "product updated", "UpdateProduct", &product.ID, nil, map[string]interface{}{
		"fields": len(updates),
		"remote": pushRemote,
	})
	return s.GetProduct(ctx, id)
}

func (r *UpdateProductRequest) updates() map[string]interface{} {
	updates := map[string]interface{}{}
	if r.Title != nil {
		updates["title"] = *r.Title
	}
	if r.Description != nil {
		updates["description"] = *r.Description
	}
	if r.Price != nil {
		updates["price"] = *r.Price
	}
	if r.CompareAtPrice != nil {
		updates["compare_at_price"] = *r.CompareAtPrice
	}
	if r.Vendor != nil {
		updates["vendor"] = *r.Vendor
	}
	if r.ProductType != nil {
		updates["product_type"] = *r.ProductType
	}
	if r.Tags != nil {
		updates["tags"] = *r.Tags
	}
	if r.Status != nil {
		updates["status"] = *r.Status
	}
	if r.MetaTitle != nil {
		updates["meta_title"] = *r.MetaTitle
	}
	if r.MetaDescription != nil {
		updates["meta_description"] = *r.MetaDescription
	}
	if r.ImageURL != nil {
		updates["image_url"] = *r.ImageURL
	}
	if r.Images != nil {
		updates["images"] = models.StringList(r.Images)
	}
	if r.InventoryQuantity != nil {
		updates["inventory_quantity"] = *r.InventoryQuantity
	}
	return updates
}

func (r *UpdateProductRequest) remoteUpdate() *ShopifyProductUpdate {
	u := &ShopifyProductUpdate{
		Title:       r.Title,
		BodyHTML:    r.Description,
		Vendor:      r.Vendor,
		ProductType: r.ProductType,
		Tags:        r.Tags,
	}
	if r.Status != nil {
		status := string(*r.Status)
		u.Status = &status
	}
	return u
}

// DeleteProduct removes the local record for good, freeing its shopify_id
// and handle so a later import or resync can insert it again. With
// deleteRemote the storefront product goes first; a missing remote product is
// not an error.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID, deleteRemote bool) error {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	if deleteRemote && product.ShopifyID != nil && s.destination != nil {
		err := s.destination.DeleteProduct(ctx, *product.ShopifyID)
		if err != nil && !errors.Is(err, ErrShopifyNotFound) {
			return fmt.Errorf("shopify delete failed: %w", err)
		}
	}

	if err := s.db.WithContext(ctx).Unscoped().Delete(product).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.record(ctx, models.LogLevelInfo, "product deleted", "DeleteProduct", &product.ID, nil, map[string]interface{}{
		"remote": deleteRemote,
	})
	return nil
}

// SyncFromShopify upserts every storefront product by shopify id. Local
// products missing remotely are left alone.
func (s *ProductService) SyncFromShopify(ctx context.Context) (*SyncResult, error) {
	remotes, err := ListAllProducts(ctx, s.destination)
	if err != nil {
		s.record(ctx, models.LogLevelError, "shopify sync failed", "SyncFromShopify", nil, err, nil)
		return nil, err
	}

	result := &SyncResult{}
	for i := range remotes {
		result.Fetched++
		created, err := s.upsertRemote(ctx, &remotes[i])
		switch {
		case err != nil:
			result.Failed++
			s.record(ctx, models.LogLevelWarning, "failed to sync shopify product", "SyncFromShopify", nil, err, map[string]interface{}{
				"shopify_id": remotes[i].ID,
			})
		case created:
			result.Created++
		default:
			result.Updated++
		}
	}

	s.record(ctx, models.LogLevelInfo, "shopify sync completed", "SyncFromShopify", nil, nil, map[string]interface{}{
		"fetched": result.Fetched,
		"created": result.Created,
		"updated": result.Updated,
		"failed":  result.Failed,
	})
	return result, nil
}

func (s *ProductService) upsertRemote(ctx context.Context, remote *ShopifyProduct) (bool, error) {
	shopifyID := strconv.FormatInt(remote.ID, 10)
	fields := productFieldsFromShopify(remote)

	var existing models.Product
	err := s.db.WithContext(ctx).Where("shopify_id = ?", shopifyID).First(&existing).Error
	if err == nil {
		return false, s.db.WithContext(ctx).Model(&existing).Updates(fields).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	product := &models.Product{
		ShopifyID:    &shopifyID,
		ImportSource: models.ImportSourceShopify,
	}
	applyShopifyFields(product, remote)
	return true, s.db.WithContext(ctx).Create(product).Error
}

func productFieldsFromShopify(remote *ShopifyProduct) map[string]interface{} {
	var p models.Product
	applyShopifyFields(&p, remote)

	fields := map[string]interface{}{
		"title":              p.Title,
		"description":        p.Description,
		"vendor":             p.Vendor,
		"product_type":       p.ProductType,
		"tags":               p.Tags,
		"status":             p.Status,
		"price":              p.Price,
		"compare_at_price":   p.CompareAtPrice,
		"inventory_quantity": p.InventoryQuantity,
		"images":             p.Images,
		"image_url":          p.ImageURL,
		"variants":           p.Variants,
	}
	if p.Handle != nil {
		fields["handle"] = *p.Handle
	}
	return fields
}

func applyShopifyFields(p *models.Product, remote *ShopifyProduct) {
	p.Title = remote.Title
	p.Description = remote.BodyHTML
	p.Vendor = remote.Vendor
	p.ProductType = remote.ProductType
	p.Tags = remote.Tags
	p.Status = models.ProductStatus(remote.Status)
	if p.Status == "" {
		p.Status = models.ProductStatusActive
	}
	if remote.Handle != "" {
		handle := remote.Handle
		p.Handle = &handle
	}

	p.Images = models.StringList{}
	for _, img := range remote.Images {
		p.Images = append(p.Images, img.Src)
	}
	if remote.Image != nil {
		p.ImageURL = remote.Image.Src
	} else if len(p.Images) > 0 {
		p.ImageURL = p.Images[0]
	}

	p.Variants = models.Variants{}
	for i, v := range remote.Variants {
		price := ParsePrice(v.Price)
		compareAt := 0.0
		if v.CompareAtPrice != nil {
			compareAt = ParsePrice(*v.CompareAtPrice)
		}
		if i == 0 {
			p.Price = price
			p.CompareAtPrice = compareAt
			p.InventoryManagement = v.InventoryManagement
		}
		p.InventoryQuantity += v.InventoryQuantity
		p.Variants = append(p.Variants, models.ProductVariant{
			Title:             v.Title,
			Price:             price,
			CompareAtPrice:    compareAt,
			InventoryQuantity: v.InventoryQuantity,
			SKU:               v.SKU,
		})
	}
}

// FindOrphans lists storefront products with no local record, which is what
// an import leaves behind when the local write fails after a remote create.
func (s *ProductService) FindOrphans(ctx context.Context) ([]ShopifyProduct, error) {
	var known []string
	err := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("shopify_id IS NOT NULL").
		Pluck("shopify_id", &known).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load shopify ids: %w", err)
	}

	local := make(map[string]bool, len(known))
	for _, id := range known {
		local[id] = true
	}

	remotes, err := ListAllProducts(ctx, s.destination)
	if err != nil {
		return nil, err
	}

	orphans := []ShopifyProduct{}
	for _, p := range remotes {
		if !local[strconv.FormatInt(p.ID, 10)] {
			orphans = append(orphans, p)
		}
	}

	if len(orphans) > 0 {
		s.record(ctx, models.LogLevelWarning, "storefront products without local record", "FindOrphans", nil, nil, map[string]interface{}{
			"count": len(orphans),
		})
	}
	return orphans, nil
}

// ShopifyStatus reports whether the storefront answers with the configured
// credentials.
func (s *ProductService) ShopifyStatus(ctx context.Context) *ShopifyStatus {
	status := &ShopifyStatus{}
	if s.destination == nil {
		status.Error = "not_configured"
		return status
	}

	shop, err := s.destination.TestConnection(ctx)
	switch {
	case errors.Is(err, ErrShopifyNotConfigured):
		status.Error = "not_configured"
	case err != nil:
		status.Error = "unavailable"
		s.record(ctx, models.LogLevelError, "shopify connection test failed", "ShopifyStatus", nil, err, nil)
	case shop.ID == 0:
		status.Error = "unavailable"
	default:
		status.Connected = true
		status.Shop = shop
	}
	return status
}

// GenerateSEO asks the generator for meta fields and stores them. Fields the
// reply does not contain fall back to the product's own title, description
// and type.
func (s *ProductService) GenerateSEO(ctx context.Context, id uuid.UUID) (*SEOContent, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	reply := s.generator.GenerateContent(ctx, seoPrompt(product), seoPromptMaxToken)
	fields := SEOContentParser.Parse(reply)

	seo := &SEOContent{
		MetaTitle:       fields[FieldMetaTitle],
		MetaDescription: fields[FieldMetaDescription],
		Keywords:        fields[FieldKeywords],
	}
	if seo.MetaTitle == "" {
		seo.MetaTitle = product.Title
	}
	if seo.MetaDescription == "" {
		seo.MetaDescription = truncateRunes(product.Description, metaDescMaxLen)
	}
	if seo.Keywords == "" {
		seo.Keywords = product.ProductType
	}

	err = s.db.WithContext(ctx).Model(product).Updates(map[string]interface{}{
		"meta_title":       seo.MetaTitle,
		"meta_description": seo.MetaDescription,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save seo fields: %w", err)
	}

	s.record(ctx, models.LogLevelInfo, "seo content generated", "GenerateSEO", &product.ID, nil, nil)
	return seo, nil
}

func seoPrompt(product *models.Product) string {
	return fmt.Sprintf(`다음 제품 정보를 바탕으로 SEO 최적화된 메타 정보를 생성해주세요:

제품명: %s
설명: %s
카테고리: %s

다음 형식으로 응답해주세요:

메타 타이틀: [SEO 최적화된 제목, 50-60자]
메타 설명: [SEO 최적화된 설명, 150-160자]
키워드: [주요 키워드들, 쉼표로 구분]`, product.Title, product.Description, product.ProductType)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func (s *ProductService) record(ctx context.Context, level models.LogLevel, message, function string, productID *uuid.UUID, err error, fields map[string]interface{}) {
	if s.diag == nil {
		return
	}
	s.diag.Record(ctx, level, LogEntry{
		Message:   message,
		Module:    productModule,
		Function:  function,
		ProductID: productID,
		Fields:    fields,
		Err:       err,
	})
}
