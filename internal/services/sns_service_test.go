// internal/services/sns_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/shopify-automation/internal/database/dbtest"
	"github.com/javajoker/shopify-automation/internal/models"
	"github.com/javajoker/shopify-automation/internal/utils"
)

const generatedSNSCopy = `제목: 여름 필수템
설명: 가볍고 조용한 무선 마우스
#마우스 #무선 #여름
지금 바로 구매하세요!`

type SNSServiceTestSuite struct {
	suite.Suite
	db        *gorm.DB
	generator *stubGenerator
	diag      *recordingDiag
	service   *SNSService
	product   *models.Product
}

func (s *SNSServiceTestSuite) SetupTest() {
	s.db = dbtest.New(s.T())
	s.generator = &stubGenerator{reply: generatedSNSCopy}
	s.diag = &recordingDiag{}
	s.service = NewSNSService(s.db, s.generator, s.diag)

	s.product = &models.Product{
		Title:       "Wireless Mouse",
		Description: "Quiet clicks",
		Price:       29.99,
		ProductType: "Electronics",
		ImageURL:    "https://img.example.com/1.jpg",
	}
	require.NoError(s.T(), s.db.Create(s.product).Error)
}

func (s *SNSServiceTestSuite) generate(platform string) *models.SNSContent {
	content, err := s.service.Generate(context.Background(), s.product.ID, &GenerateSNSContentRequest{Platform: platform})
	require.NoError(s.T(), err)
	return content
}

func (s *SNSServiceTestSuite) TestGenerate() {
	content := s.generate("instagram")

	assert.Equal(s.T(), models.PlatformInstagram, content.Platform)
	assert.Equal(s.T(), "post", content.ContentType)
	assert.Equal(s.T(), "여름 필수템", content.Title)
	assert.Equal(s.T(), "가볍고 조용한 무선 마우스", content.Description)
	assert.Equal(s.T(), "#마우스 #무선 #여름", content.Hashtags)
	assert.Equal(s.T(), generatedSNSCopy, content.GeneratedContent)
	assert.Equal(s.T(), models.StringList{"https://img.example.com/1.jpg"}, content.ImageURLs)

	require.Len(s.T(), s.generator.prompts, 1)
	prompt := s.generator.prompts[0]
	assert.Contains(s.T(), prompt, "Wireless Mouse")
	assert.Contains(s.T(), prompt, "$29.99")
	assert.Contains(s.T(), prompt, "instagram용 post 콘텐츠를 생성해주세요")

	stored, err := s.service.Get(context.Background(), content.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), content.Title, stored.Title)
	assert.Contains(s.T(), s.diag.messages(), "sns content generated")
}

func (s *SNSServiceTestSuite) TestGenerateWithFallbackText() {
	s.generator.reply = FallbackContent

	content := s.generate("tiktok")

	assert.Empty(s.T(), content.Title)
	assert.Empty(s.T(), content.Hashtags)
	assert.Equal(s.T(), FallbackContent, content.GeneratedContent)
}

func (s *SNSServiceTestSuite) TestGenerateValidation() {
	_, err := s.service.Generate(context.Background(), s.product.ID, &GenerateSNSContentRequest{Platform: "myspace"})
	assert.True(s.T(), utils.IsValidationError(err))

	_, err = s.service.Generate(context.Background(), uuid.New(), &GenerateSNSContentRequest{Platform: "instagram"})
	assert.ErrorIs(s.T(), err, ErrProductNotFound)
	assert.Empty(s.T(), s.generator.prompts)
}

func (s *SNSServiceTestSuite) TestRegenerateKeepsEngagement() {
	content := s.generate("facebook")
	require.NoError(s.T(), s.db.Model(content).Updates(map[string]interface{}{"likes": 12, "is_published": true}).Error)

	s.generator.reply = "Title: New angle\n#fresh"
	regenerated, err := s.service.Regenerate(context.Background(), content.ID)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), "New angle", regenerated.Title)
	assert.Empty(s.T(), regenerated.Description)
	assert.Equal(s.T(), "#fresh", regenerated.Hashtags)
	assert.Equal(s.T(), int64(12), regenerated.Likes)
	assert.True(s.T(), regenerated.IsPublished)
	assert.Contains(s.T(), s.generator.prompts[1], "다시 생성해주세요")
}

func (s *SNSServiceTestSuite) TestUpdateOnlyTouchesGivenFields() {
	content := s.generate("pinterest")

	title := "Edited"
	views := int64(99)
	published := true
	updated, err := s.service.Update(context.Background(), content.ID, &UpdateSNSContentRequest{
		Title:       &title,
		Views:       &views,
		IsPublished: &published,
	})
	require.NoError(s.T(), err)

	assert.Equal(s.T(), "Edited", updated.Title)
	assert.Equal(s.T(), content.Description, updated.Description)
	assert.Equal(s.T(), int64(99), updated.Views)
	assert.True(s.T(), updated.IsPublished)
	require.NotNil(s.T(), updated.PublishedAt)
	firstPublished := *updated.PublishedAt

	// publishing again keeps the original timestamp
	again, err := s.service.Update(context.Background(), content.ID, &UpdateSNSContentRequest{IsPublished: &published})
	require.NoError(s.T(), err)
	assert.True(s.T(), firstPublished.Equal(*again.PublishedAt))

	badURL := "not a url"
	_, err = s.service.Update(context.Background(), content.ID, &UpdateSNSContentRequest{PublishedURL: &badURL})
	assert.True(s.T(), utils.IsValidationError(err))
}

func (s *SNSServiceTestSuite) TestListByProductAndDelete() {
	s.generate("instagram")
	twitter := s.generate("twitter")

	all, err := s.service.ListByProduct(context.Background(), s.product.ID, "")
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, 2)

	onlyTwitter, err := s.service.ListByProduct(context.Background(), s.product.ID, "twitter")
	require.NoError(s.T(), err)
	require.Len(s.T(), onlyTwitter, 1)
	assert.Equal(s.T(), twitter.ID, onlyTwitter[0].ID)

	require.NoError(s.T(), s.service.Delete(context.Background(), twitter.ID))
	assert.ErrorIs(s.T(), s.service.Delete(context.Background(), twitter.ID), ErrSNSContentNotFound)

	_, err = s.service.Get(context.Background(), twitter.ID)
	assert.ErrorIs(s.T(), err, ErrSNSContentNotFound)
}

func (s *SNSServiceTestSuite) TestPlatforms() {
	platforms := s.service.Platforms()
	require.Len(s.T(), platforms, 5)
	for _, p := range platforms {
		assert.True(s.T(), utils.IsKnownPlatform(string(p.Name)), p.Name)
		assert.NotEmpty(s.T(), p.ContentTypes)
	}
}

func TestSNSServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SNSServiceTestSuite))
}
