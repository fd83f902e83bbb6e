// internal/services/import_service_test.go
package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/shopify-automation/internal/database/dbtest"
	"github.com/javajoker/shopify-automation/internal/models"
)

type ImportServiceTestSuite struct {
	suite.Suite
	db          *gorm.DB
	source      *mockSource
	destination *mockDestination
	diag        *recordingDiag
	service     *ImportService
}

func (s *ImportServiceTestSuite) SetupTest() {
	s.db = dbtest.New(s.T())
	s.source = new(mockSource)
	s.destination = new(mockDestination)
	s.diag = &recordingDiag{}
	s.service = NewImportService(s.db, s.source, s.destination, &fakeArchiver{key: "aliexpress/"}, s.diag)
}

func (s *ImportServiceTestSuite) seedImported(sourceURL string) {
	require.NoError(s.T(), s.db.Create(&models.Product{
		Title:        "Existing",
		ImportSource: models.ImportSourceAliExpress,
		SourceURL:    sourceURL,
	}).Error)
}

func (s *ImportServiceTestSuite) countProducts() int64 {
	var count int64
	require.NoError(s.T(), s.db.Model(&models.Product{}).Count(&count).Error)
	return count
}

func (s *ImportServiceTestSuite) TestImportOneSuccess() {
	ctx := context.Background()
	s.source.On("GetProductDetail", mock.Anything, "1005").Return(sampleDetail("1005"), nil).Once()
	s.destination.On("CreateProduct", mock.Anything, mock.MatchedBy(func(d *ProductDraft) bool {
		return d.Title == "Wireless Mouse" && d.Vendor == DefaultVendor
	})).Return(&ShopifyProduct{ID: 9001, Handle: "wireless-mouse"}, nil).Once()

	product, err := s.service.ImportOne(ctx, "1005")
	require.NoError(s.T(), err)

	assert.Equal(s.T(), "9001", product.ShopifyIDValue())
	assert.Equal(s.T(), "1005", product.SourceProductID)
	assert.Equal(s.T(), models.ImportSourceAliExpress, product.ImportSource)
	assert.Equal(s.T(), "https://www.aliexpress.com/item/1005.html", product.SourceURL)
	assert.Equal(s.T(), "aliexpress/1005.json", product.SourceArchiveKey)

	var stored models.Product
	require.NoError(s.T(), s.db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(s.T(), "Wireless Mouse", stored.Title)
	assert.InDelta(s.T(), 29.985, stored.Price, 0.01)
	assert.InDelta(s.T(), 19.99, stored.CompareAtPrice, 0.001)
	assert.Equal(s.T(), "wireless-mouse", *stored.Handle)
	assert.Equal(s.T(), "aliexpress/1005.json", stored.SourceArchiveKey)
	assert.Len(s.T(), stored.Variants, 2)
	assert.Equal(s.T(), models.StringList{"https://img.example.com/1.jpg", "https://img.example.com/2.jpg"}, stored.Images)
	assert.Equal(s.T(), "1005", stored.SourceData["id"])

	assert.Contains(s.T(), s.diag.messages(), "product imported")
	s.source.AssertExpectations(s.T())
	s.destination.AssertExpectations(s.T())
}

func (s *ImportServiceTestSuite) TestImportOneAlreadyImportedSkipsRemoteCalls() {
	s.seedImported("https://www.aliexpress.com/item/1005.html")

	_, err := s.service.ImportOne(context.Background(), "1005")

	require.Error(s.T(), err)
	assert.Equal(s.T(), ErrKindAlreadyImported, ImportErrorKindOf(err))
	s.source.AssertNotCalled(s.T(), "GetProductDetail", mock.Anything, mock.Anything)
	s.destination.AssertNotCalled(s.T(), "CreateProduct", mock.Anything, mock.Anything)
}

func (s *ImportServiceTestSuite) TestImportOneSubstringMatchCountsAsImported() {
	s.seedImported("https://www.aliexpress.com/item/5512.html")

	_, err := s.service.ImportOne(context.Background(), "55")

	assert.Equal(s.T(), ErrKindAlreadyImported, ImportErrorKindOf(err))
}

func (s *ImportServiceTestSuite) TestImportOneEmptyID() {
	_, err := s.service.ImportOne(context.Background(), "  ")

	assert.Equal(s.T(), ErrKindSourceUnavailable, ImportErrorKindOf(err))
	s.source.AssertNotCalled(s.T(), "GetProductDetail", mock.Anything, mock.Anything)
}

func (s *ImportServiceTestSuite) TestImportOneSourceFailure() {
	s.source.On("GetProductDetail", mock.Anything, "1").Return(nil, errors.New("timeout")).Once()
	s.source.On("GetProductDetail", mock.Anything, "2").Return(nil, nil).Once()

	_, err := s.service.ImportOne(context.Background(), "1")
	assert.Equal(s.T(), ErrKindSourceUnavailable, ImportErrorKindOf(err))

	_, err = s.service.ImportOne(context.Background(), "2")
	assert.Equal(s.T(), ErrKindSourceUnavailable, ImportErrorKindOf(err))

	s.destination.AssertNotCalled(s.T(), "CreateProduct", mock.Anything, mock.Anything)
	assert.Zero(s.T(), s.countProducts())
}

func (s *ImportServiceTestSuite) TestImportOneTransformFailure() {
	detail := sampleDetail("7")
	detail.Title = "   "
	s.source.On("GetProductDetail", mock.Anything, "7").Return(detail, nil).Once()

	_, err := s.service.ImportOne(context.Background(), "7")

	assert.Equal(s.T(), ErrKindTransformFailed, ImportErrorKindOf(err))
	assert.ErrorIs(s.T(), err, ErrMissingTitle)
	s.destination.AssertNotCalled(s.T(), "CreateProduct", mock.Anything, mock.Anything)
	assert.Contains(s.T(), s.diag.messages(), "product data transform failed")
}

func (s *ImportServiceTestSuite) TestImportOneDestinationRejectedLeavesNoLocalRow() {
	s.source.On("GetProductDetail", mock.Anything, "8").Return(sampleDetail("8"), nil).Once()
	s.destination.On("CreateProduct", mock.Anything, mock.Anything).
		Return(nil, &ShopifyAPIError{StatusCode: 422, Body: `{"errors":"title"}`}).Once()

	_, err := s.service.ImportOne(context.Background(), "8")

	assert.Equal(s.T(), ErrKindDestinationRejected, ImportErrorKindOf(err))
	assert.True(s.T(), IsShopifyError(err))
	assert.Zero(s.T(), s.countProducts())
}

func (s *ImportServiceTestSuite) TestImportOnePersistenceFailureKeepsRemoteID() {
	require.NoError(s.T(), s.db.Callback().Create().Before("gorm:create").Register("test:fail_products", func(tx *gorm.DB) {
		if tx.Statement.Table == "products" {
			tx.AddError(errors.New("disk full"))
		}
	}))
	s.source.On("GetProductDetail", mock.Anything, "9").Return(sampleDetail("9"), nil).Once()
	s.destination.On("CreateProduct", mock.Anything, mock.Anything).Return(&ShopifyProduct{ID: 4242}, nil).Once()

	_, err := s.service.ImportOne(context.Background(), "9")

	var ie *ImportError
	require.ErrorAs(s.T(), err, &ie)
	assert.Equal(s.T(), ErrKindPersistenceFailed, ie.Kind)
	assert.Equal(s.T(), "4242", ie.ShopifyID)
	assert.Zero(s.T(), s.countProducts())
	// no compensating delete and no retry
	s.destination.AssertNumberOfCalls(s.T(), "CreateProduct", 1)
	s.destination.AssertNotCalled(s.T(), "DeleteProduct", mock.Anything, mock.Anything)
}

func (s *ImportServiceTestSuite) TestImportOneArchiveFailureIsOnlyAWarning() {
	s.service.archiver = &fakeArchiver{err: errors.New("bucket missing")}
	s.source.On("GetProductDetail", mock.Anything, "10").Return(sampleDetail("10"), nil).Once()
	s.destination.On("CreateProduct", mock.Anything, mock.Anything).Return(&ShopifyProduct{ID: 10}, nil).Once()

	product, err := s.service.ImportOne(context.Background(), "10")

	require.NoError(s.T(), err)
	assert.Empty(s.T(), product.SourceArchiveKey)
	assert.Contains(s.T(), s.diag.messages(), "source payload archive failed")
}

func (s *ImportServiceTestSuite) TestImportOneFallsBackToCanonicalURLAndHandle() {
	detail := sampleDetail("11")
	detail.URL = ""
	s.source.On("GetProductDetail", mock.Anything, "11").Return(detail, nil).Once()
	s.destination.On("CreateProduct", mock.Anything, mock.Anything).Return(&ShopifyProduct{ID: 11}, nil).Once()

	product, err := s.service.ImportOne(context.Background(), "11")

	require.NoError(s.T(), err)
	assert.Equal(s.T(), "https://www.aliexpress.com/item/11.html", product.SourceURL)
	require.NotNil(s.T(), product.Handle)
	assert.NotEmpty(s.T(), *product.Handle)
}

func (s *ImportServiceTestSuite) TestImportManyContinuesPastFailures() {
	s.seedImported("https://www.aliexpress.com/item/100.html")
	s.source.On("GetProductDetail", mock.Anything, "200").Return(nil, errors.New("blocked")).Once()
	s.source.On("GetProductDetail", mock.Anything, "300").Return(sampleDetail("300"), nil).Once()
	s.destination.On("CreateProduct", mock.Anything, mock.Anything).Return(&ShopifyProduct{ID: 300}, nil).Once()

	result, err := s.service.ImportMany(context.Background(), []string{"100", "200", "300", "300", ""})

	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{"100"}, result.Skipped)
	require.Len(s.T(), result.Items, 2)
	assert.Equal(s.T(), 1, result.Succeeded)
	assert.Equal(s.T(), 1, result.Failed)

	assert.Equal(s.T(), "200", result.Items[0].SourceProductID)
	assert.Equal(s.T(), string(models.ImportItemStatusFailed), result.Items[0].Status)
	assert.Equal(s.T(), ErrKindSourceUnavailable, result.Items[0].ErrorKind)
	assert.Equal(s.T(), ErrKindSourceUnavailable.Description(), result.Items[0].Error)

	assert.Equal(s.T(), "300", result.Items[1].SourceProductID)
	assert.Equal(s.T(), string(models.ImportItemStatusSucceeded), result.Items[1].Status)
	assert.Equal(s.T(), "300", result.Items[1].ShopifyID)
	assert.NotNil(s.T(), result.Items[1].ProductID)
}

func (s *ImportServiceTestSuite) TestImportManyDestinationRejectionIsIsolated() {
	s.source.On("GetProductDetail", mock.Anything, "101").Return(sampleDetail("101"), nil).Once()
	s.source.On("GetProductDetail", mock.Anything, "202").Return(sampleDetail("202"), nil).Once()
	s.source.On("GetProductDetail", mock.Anything, "303").Return(sampleDetail("303"), nil).Once()
	s.destination.On("CreateProduct", mock.Anything, mock.Anything).Return(&ShopifyProduct{ID: 1}, nil).Once()
	s.destination.On("CreateProduct", mock.Anything, mock.Anything).Return(nil, &ShopifyAPIError{StatusCode: 422, Body: "title is invalid"}).Once()
	s.destination.On("CreateProduct", mock.Anything, mock.Anything).Return(&ShopifyProduct{ID: 3}, nil).Once()

	result, err := s.service.ImportMany(context.Background(), []string{"101", "202", "303"})

	require.NoError(s.T(), err)
	require.Len(s.T(), result.Items, 3)
	assert.Empty(s.T(), result.Skipped)
	assert.Equal(s.T(), 2, result.Succeeded)
	assert.Equal(s.T(), 1, result.Failed)

	first, middle, last := result.Items[0], result.Items[1], result.Items[2]
	assert.Equal(s.T(), string(models.ImportItemStatusSucceeded), first.Status)
	require.NotNil(s.T(), first.ProductID)
	assert.Equal(s.T(), "1", first.ShopifyID)

	assert.Equal(s.T(), "202", middle.SourceProductID)
	assert.Equal(s.T(), string(models.ImportItemStatusFailed), middle.Status)
	assert.Equal(s.T(), ErrKindDestinationRejected, middle.ErrorKind)
	assert.Nil(s.T(), middle.ProductID)

	assert.Equal(s.T(), string(models.ImportItemStatusSucceeded), last.Status)
	require.NotNil(s.T(), last.ProductID)
	assert.Equal(s.T(), "3", last.ShopifyID)

	var rejected int64
	require.NoError(s.T(), s.db.Unscoped().Model(&models.Product{}).Where("source_product_id = ?", "202").Count(&rejected).Error)
	assert.Zero(s.T(), rejected)
	assert.Equal(s.T(), int64(2), s.countProducts())

	for _, id := range []*uuid.UUID{first.ProductID, last.ProductID} {
		var stored models.Product
		assert.NoError(s.T(), s.db.First(&stored, "id = ?", *id).Error)
	}
	s.destination.AssertExpectations(s.T())
}

func (s *ImportServiceTestSuite) TestReimportAfterDeleteSucceeds() {
	ctx := context.Background()
	products := NewProductService(s.db, s.destination, &stubGenerator{}, s.diag)

	s.source.On("GetProductDetail", mock.Anything, "1005").Return(sampleDetail("1005"), nil).Twice()
	s.destination.On("CreateProduct", mock.Anything, mock.Anything).Return(&ShopifyProduct{ID: 9001, Handle: "wireless-mouse"}, nil).Once()
	s.destination.On("DeleteProduct", mock.Anything, "9001").Return(nil).Once()
	s.destination.On("CreateProduct", mock.Anything, mock.Anything).Return(&ShopifyProduct{ID: 9002, Handle: "wireless-mouse"}, nil).Once()

	first, err := s.service.ImportOne(ctx, "1005")
	require.NoError(s.T(), err)
	require.NoError(s.T(), products.DeleteProduct(ctx, first.ID, true))

	second, err := s.service.ImportOne(ctx, "1005")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "9002", second.ShopifyIDValue())
	assert.Equal(s.T(), "wireless-mouse", *second.Handle)

	var rows int64
	require.NoError(s.T(), s.db.Unscoped().Model(&models.Product{}).Count(&rows).Error)
	assert.Equal(s.T(), int64(1), rows)
	s.destination.AssertExpectations(s.T())
}

func (s *ImportServiceTestSuite) TestImportOneRecordsEveryStep() {
	s.source.On("GetProductDetail", mock.Anything, "1005").Return(sampleDetail("1005"), nil).Once()
	s.destination.On("CreateProduct", mock.Anything, mock.Anything).Return(&ShopifyProduct{ID: 9001}, nil).Once()

	_, err := s.service.ImportOne(context.Background(), "1005")
	require.NoError(s.T(), err)

	assert.Equal(s.T(), []string{
		"duplicate check passed",
		"fetching source product",
		"source product transformed",
		"product created in shopify",
		"product imported",
	}, s.diag.messages())
}

func (s *ImportServiceTestSuite) TestStartBatchRunsToCompletion() {
	s.seedImported("https://www.aliexpress.com/item/1.html")
	s.source.On("GetProductDetail", mock.Anything, "2").Return(sampleDetail("2"), nil).Once()
	s.source.On("GetProductDetail", mock.Anything, "3").Return(nil, errors.New("gone")).Once()
	s.destination.On("CreateProduct", mock.Anything, mock.Anything).Return(&ShopifyProduct{ID: 2}, nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	job, err := s.service.StartBatch(ctx, []string{"1", "2", "3"})
	require.NoError(s.T(), err)
	// the job must outlive the request that started it
	cancel()

	assert.Equal(s.T(), models.ImportJobStatusProcessing, job.Status)
	assert.Equal(s.T(), 2, job.Total)
	assert.Equal(s.T(), models.StringList{"1"}, job.Skipped)

	s.service.Wait()

	stored, err := s.service.GetJob(context.Background(), job.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.ImportJobStatusCompleted, stored.Status)
	assert.NotNil(s.T(), stored.CompletedAt)
	assert.Equal(s.T(), 1, stored.Succeeded)
	assert.Equal(s.T(), 1, stored.Failed)
	require.Len(s.T(), stored.Items, 2)

	byID := map[string]models.ImportJobItem{}
	for _, item := range stored.Items {
		byID[item.SourceProductID] = item
	}
	assert.Equal(s.T(), models.ImportItemStatusSucceeded, byID["2"].Status)
	assert.NotNil(s.T(), byID["2"].ProductID)
	assert.Equal(s.T(), "2", byID["2"].ShopifyID)
	assert.Equal(s.T(), models.ImportItemStatusFailed, byID["3"].Status)
	assert.Equal(s.T(), string(ErrKindSourceUnavailable), byID["3"].ErrorKind)
}

func (s *ImportServiceTestSuite) TestStartBatchNothingToImport() {
	s.seedImported("https://www.aliexpress.com/item/1.html")

	_, err := s.service.StartBatch(context.Background(), []string{"1", "1"})

	assert.ErrorIs(s.T(), err, ErrNothingToImport)
	var jobs int64
	s.db.Model(&models.ImportJob{}).Count(&jobs)
	assert.Zero(s.T(), jobs)
}

func (s *ImportServiceTestSuite) TestGetJobNotFound() {
	_, err := s.service.GetJob(context.Background(), uuid.New())
	assert.ErrorIs(s.T(), err, ErrImportJobNotFound)
}

func (s *ImportServiceTestSuite) TestStatus() {
	s.seedImported("https://www.aliexpress.com/item/1.html")
	require.NoError(s.T(), s.db.Create(&models.Product{Title: "Manual", ImportSource: models.ImportSourceManual}).Error)

	status, err := s.service.Status(context.Background())

	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), status.TotalImported)
	assert.Len(s.T(), status.RecentImports, 1)
	assert.Empty(s.T(), status.RecentJobs)
}

func TestImportServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ImportServiceTestSuite))
}
