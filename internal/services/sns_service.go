// internal/services/sns_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/shopify-automation/internal/models"
	"github.com/javajoker/shopify-automation/internal/utils"
)

const (
	snsModule          = "sns"
	defaultContentType = "post"
)

type SNSService struct {
	db        *gorm.DB
	generator TextGenerator
	diag      Diagnostics
}

type PlatformInfo struct {
	Name         models.Platform `json:"name"`
	DisplayName  string          `json:"display_name"`
	ContentTypes []string        `json:"content_types"`
	Description  string          `json:"description"`
}

var supportedPlatforms = []PlatformInfo{
	{Name: models.PlatformInstagram, DisplayName: "Instagram", ContentTypes: []string{"post", "story", "reel"}, Description: "사진과 비디오 공유 플랫폼"},
	{Name: models.PlatformTikTok, DisplayName: "TikTok", ContentTypes: []string{"video", "duet"}, Description: "짧은 비디오 공유 플랫폼"},
	{Name: models.PlatformPinterest, DisplayName: "Pinterest", ContentTypes: []string{"pin", "board"}, Description: "이미지 기반 소셜 미디어"},
	{Name: models.PlatformFacebook, DisplayName: "Facebook", ContentTypes: []string{"post", "story"}, Description: "소셜 네트워킹 플랫폼"},
	{Name: models.PlatformTwitter, DisplayName: "Twitter", ContentTypes: []string{"tweet", "thread"}, Description: "마이크로블로깅 플랫폼"},
}

type GenerateSNSContentRequest struct {
	Platform    string `json:"platform" form:"platform" validate:"required,platform"`
	ContentType string `json:"content_type" form:"content_type" validate:"omitempty,max=50"`
}

// UpdateSNSContentRequest lists the only fields a client may change. Nil
// fields are left untouched.
type UpdateSNSContentRequest struct {
	Title            *string                `json:"title,omitempty" validate:"omitempty,max=500"`
	Description      *string                `json:"description,omitempty"`
	Hashtags         *string                `json:"hashtags,omitempty"`
	ContentType      *string                `json:"content_type,omitempty" validate:"omitempty,max=50"`
	ImageURLs        []string               `json:"image_urls,omitempty"`
	IsPublished      *bool                  `json:"is_published,omitempty"`
	PublishedURL     *string                `json:"published_url,omitempty" validate:"omitempty,url"`
	PlatformSettings map[string]interface{} `json:"platform_settings,omitempty"`
	Likes            *int64                 `json:"likes,omitempty" validate:"omitempty,min=0"`
	Comments         *int64                 `json:"comments,omitempty" validate:"omitempty,min=0"`
	Shares           *int64                 `json:"shares,omitempty" validate:"omitempty,min=0"`
	Views            *int64                 `json:"views,omitempty" validate:"omitempty,min=0"`
}

func NewSNSService(db *gorm.DB, generator TextGenerator, diag Diagnostics) *SNSService {
	return &SNSService{db: db, generator: generator, diag: diag}
}

func (s *SNSService) Platforms() []PlatformInfo {
	return supportedPlatforms
}

func (s *SNSService) Generate(ctx context.Context, productID uuid.UUID, req *GenerateSNSContentRequest) (*models.SNSContent, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	generated := s.generator.GenerateContent(ctx, snsPrompt(product, req.Platform, contentType, false), 0)
	fields := SNSContentParser.Parse(generated)

	content := &models.SNSContent{
		ProductID:        product.ID,
		Platform:         models.Platform(req.Platform),
		ContentType:      contentType,
		Title:            fields[FieldTitle],
		Description:      fields[FieldDescription],
		Hashtags:         fields[FieldHashtags],
		GeneratedContent: generated,
		ImageURLs:        models.StringList{},
	}
	if product.ImageURL != "" {
		content.ImageURLs = models.StringList{product.ImageURL}
	}

	if err := s.db.WithContext(ctx).Create(content).Error; err != nil {
		return nil, fmt.Errorf("failed to save sns content: %w", err)
	}

	s.record(ctx, models.LogLevelInfo, "sns content generated", "Generate", &product.ID, map[string]interface{}{
		"platform":   req.Platform,
		"content_id": content.ID.String(),
	})
	return content, nil
}

// Regenerate replaces the generated text of an existing record. Engagement
// counters and publish state are kept.
func (s *SNSService) Regenerate(ctx context.Context, contentID uuid.UUID) (*models.SNSContent, error) {
	content, err := s.Get(ctx, contentID)
	if err != nil {
		return nil, err
	}

	product, err := s.findProduct(ctx, content.ProductID)
	if err != nil {
		return nil, err
	}

	generated := s.generator.GenerateContent(ctx, snsPrompt(product, string(content.Platform), content.ContentType, true), 0)
	fields := SNSContentParser.Parse(generated)

	updates := map[string]interface{}{
		"title":             fields[FieldTitle],
		"description":       fields[FieldDescription],
		"hashtags":          fields[FieldHashtags],
		"generated_content": generated,
	}
	if err := s.db.WithContext(ctx).Model(content).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update sns content: %w", err)
	}

	s.record(ctx, models.LogLevelInfo, "sns content regenerated", "Regenerate", &product.ID, map[string]interface{}{
		"content_id": content.ID.String(),
	})
	return s.Get(ctx, contentID)
}

func (s *SNSService) Update(ctx context.Context, contentID uuid.UUID, req *UpdateSNSContentRequest) (*models.SNSContent, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	content, err := s.Get(ctx, contentID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Hashtags != nil {
		updates["hashtags"] = *req.Hashtags
	}
	if req.ContentType != nil {
		updates["content_type"] = *req.ContentType
	}
	if req.ImageURLs != nil {
		updates["image_urls"] = models.StringList(req.ImageURLs)
	}
	if req.IsPublished != nil {
		updates["is_published"] = *req.IsPublished
		if *req.IsPublished && !content.IsPublished {
			updates["published_at"] = time.Now()
		}
	}
	if req.PublishedURL != nil {
		updates["published_url"] = *req.PublishedURL
	}
	if req.PlatformSettings != nil {
		updates["platform_settings"] = models.JSONB(req.PlatformSettings)
	}
	if req.Likes != nil {
		updates["likes"] = *req.Likes
	}
	if req.Comments != nil {
		updates["comments"] = *req.Comments
	}
	if req.Shares != nil {
		updates["shares"] = *req.Shares
	}
	if req.Views != nil {
		updates["views"] = *req.Views
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(content).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update sns content: %w", err)
		}
	}

	return s.Get(ctx, contentID)
}

func (s *SNSService) Get(ctx context.Context, contentID uuid.UUID) (*models.SNSContent, error) {
	var content models.SNSContent
	if err := s.db.WithContext(ctx).First(&content, "id = ?", contentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSNSContentNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &content, nil
}

func (s *SNSService) ListByProduct(ctx context.Context, productID uuid.UUID, platform string) ([]models.SNSContent, error) {
	query := s.db.WithContext(ctx).Where("product_id = ?", productID)
	if platform != "" {
		query = query.Where("platform = ?", platform)
	}

	var contents []models.SNSContent
	if err := query.Order("created_at DESC").Find(&contents).Error; err != nil {
		return nil, fmt.Errorf("failed to list sns content: %w", err)
	}
	return contents, nil
}

func (s *SNSService) Delete(ctx context.Context, contentID uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.SNSContent{}, "id = ?", contentID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete sns content: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSNSContentNotFound
	}
	return nil
}

func (s *SNSService) findProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

func (s *SNSService) record(ctx context.Context, level models.LogLevel, message, function string, productID *uuid.UUID, fields map[string]interface{}) {
	if s.diag == nil {
		return
	}
	s.diag.Record(ctx, level, LogEntry{
		Message:   message,
		Module:    snsModule,
		Function:  function,
		ProductID: productID,
		Fields:    fields,
	})
}

func snsPrompt(product *models.Product, platform, contentType string, again bool) string {
	var b strings.Builder
	b.WriteString("제품 정보:\n")
	fmt.Fprintf(&b, "- 제품명: %s\n", product.Title)
	fmt.Fprintf(&b, "- 설명: %s\n", product.Description)
	fmt.Fprintf(&b, "- 가격: $%s\n", formatPrice(product.Price))
	fmt.Fprintf(&b, "- 카테고리: %s\n\n", product.ProductType)

	if again {
		fmt.Fprintf(&b, "%s용 %s 콘텐츠를 다시 생성해주세요.\n", platform, contentType)
		b.WriteString("이전 콘텐츠와 다른 스타일로 작성해주세요.\n\n")
	} else {
		fmt.Fprintf(&b, "%s용 %s 콘텐츠를 생성해주세요.\n", platform, contentType)
	}

	b.WriteString("다음을 포함해주세요:\n")
	b.WriteString("1. 매력적인 제목 (제목: 으로 시작)\n")
	b.WriteString("2. 제품을 홍보하는 설명 (설명: 으로 시작)\n")
	b.WriteString("3. 관련 해시태그 (최대 20개, 한 줄)\n")
	b.WriteString("4. 고객이 행동하도록 유도하는 문구\n\n")
	b.WriteString("한국어로 작성해주세요.")
	return b.String()
}
