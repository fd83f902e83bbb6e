// internal/services/import_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/shopify-automation/internal/database"
	"github.com/javajoker/shopify-automation/internal/metrics"
	"github.com/javajoker/shopify-automation/internal/models"
	"github.com/javajoker/shopify-automation/internal/utils"
)

const (
	importModule      = "import"
	recentImportLimit = 10
)

// PayloadArchiver keeps the raw scraped payload of an imported product.
type PayloadArchiver interface {
	ArchiveSourcePayload(ctx context.Context, sourceID string, payload []byte) (string, error)
}

// ImportService moves products from the source catalog to the storefront and
// records them locally.
type ImportService struct {
	db          *gorm.DB
	source      SourceCatalog
	destination DestinationCatalog
	guard       *DuplicateGuard
	transformer *SchemaTransformer
	archiver    PayloadArchiver
	diag        Diagnostics
	wg          sync.WaitGroup
}

type ImportItemResult struct {
	SourceProductID string          `json:"source_product_id"`
	Status          string          `json:"status"`
	ProductID       *uuid.UUID      `json:"product_id,omitempty"`
	ShopifyID       string          `json:"shopify_id,omitempty"`
	ErrorKind       ImportErrorKind `json:"error_kind,omitempty"`
	Error           string          `json:"error,omitempty"`
}

type BatchResult struct {
	Items     []ImportItemResult `json:"items"`
	Skipped   []string           `json:"skipped"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
}

type ImportStatus struct {
	RecentImports []models.Product   `json:"recent_imports"`
	TotalImported int64              `json:"total_imported"`
	RecentJobs    []models.ImportJob `json:"recent_jobs"`
}

// NewImportService wires the pipeline. archiver may be nil.
func NewImportService(db *gorm.DB, source SourceCatalog, destination DestinationCatalog, archiver PayloadArchiver, diag Diagnostics) *ImportService {
	return &ImportService{
		db:          db,
		source:      source,
		destination: destination,
		guard:       NewDuplicateGuard(db),
		transformer: NewSchemaTransformer(diag),
		archiver:    archiver,
		diag:        diag,
	}
}

// ImportOne imports a single source identifier. Failures are *ImportError.
func (s *ImportService) ImportOne(ctx context.Context, sourceID string) (*models.Product, error) {
	sourceID = strings.TrimSpace(sourceID)

	product, err := s.importOne(ctx, sourceID)
	if err != nil {
		kind := ImportErrorKindOf(err)
		metrics.RecordImport(string(kind))
		level := models.LogLevelError
		if kind == ErrKindAlreadyImported {
			level = models.LogLevelWarning
		}
		s.record(ctx, level, "product import failed", sourceID, nil, err, map[string]interface{}{"error_kind": string(kind)})
		return nil, err
	}

	metrics.RecordImport("succeeded")
	s.record(ctx, models.LogLevelInfo, "product imported", sourceID, &product.ID, nil, map[string]interface{}{
		"shopify_id": product.ShopifyIDValue(),
	})
	return product, nil
}

func (s *ImportService) importOne(ctx context.Context, sourceID string) (*models.Product, error) {
	fail := func(kind ImportErrorKind, err error) *ImportError {
		return &ImportError{Kind: kind, SourceProductID: sourceID, Err: err}
	}

	if sourceID == "" {
		return nil, fail(ErrKindSourceUnavailable, errors.New("empty product id"))
	}

	// Check for duplicates
	exists, err := s.guard.Exists(ctx, sourceID)
	if err != nil {
		return nil, fail(ErrKindInternal, err)
	}
	if exists {
		return nil, fail(ErrKindAlreadyImported, nil)
	}
	s.record(ctx, models.LogLevelDebug, "duplicate check passed", sourceID, nil, nil, nil)

	// Fetch from source
	s.record(ctx, models.LogLevelDebug, "fetching source product", sourceID, nil, nil, nil)
	detail, err := s.source.GetProductDetail(ctx, sourceID)
	if err != nil {
		return nil, fail(ErrKindSourceUnavailable, err)
	}
	if detail == nil {
		return nil, fail(ErrKindSourceUnavailable, errors.New("source returned no data"))
	}

	draft, err := s.transformer.Transform(ctx, detail)
	if err != nil {
		return nil, fail(ErrKindTransformFailed, err)
	}
	s.record(ctx, models.LogLevelDebug, "source product transformed", sourceID, nil, nil, map[string]interface{}{
		"price":    draft.Price,
		"variants": len(draft.Variants),
	})

	// Publish remotely before writing anything locally
	remote, err := s.destination.CreateProduct(ctx, draft)
	if err != nil {
		return nil, fail(ErrKindDestinationRejected, err)
	}
	shopifyID := strconv.FormatInt(remote.ID, 10)
	s.record(ctx, models.LogLevelDebug, "product created in shopify", sourceID, nil, nil, map[string]interface{}{"shopify_id": shopifyID})

	product := buildImportedProduct(sourceID, detail, draft, remote)
	err = database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		return tx.Create(product).Error
	})
	if err != nil {
		ie := fail(ErrKindPersistenceFailed, err)
		ie.ShopifyID = shopifyID
		return nil, ie
	}

	s.archive(ctx, product, detail)
	return product, nil
}

func buildImportedProduct(sourceID string, detail *RawDetail, draft *ProductDraft, remote *ShopifyProduct) *models.Product {
	shopifyID := strconv.FormatInt(remote.ID, 10)

	handle := remote.Handle
	if handle == "" {
		handle = utils.HandleFor(draft.Title, sourceID)
	}

	sourceURL := strings.TrimSpace(detail.URL)
	if !strings.Contains(sourceURL, sourceID) {
		sourceURL = BuildProductURL(defaultSourceBaseURL, sourceID)
	}

	return &models.Product{
		ShopifyID:           &shopifyID,
		Title:               draft.Title,
		Description:         draft.Description,
		Price:               draft.Price,
		CompareAtPrice:      draft.CompareAtPrice,
		Vendor:              draft.Vendor,
		ProductType:         draft.ProductType,
		Tags:                draft.Tags,
		Status:              draft.Status,
		ImageURL:            draft.ImageURL,
		Images:              models.StringList(draft.Images),
		InventoryQuantity:   draft.InventoryQuantity,
		InventoryManagement: draft.InventoryManagement,
		Variants:            models.Variants(draft.Variants),
		Handle:              &handle,
		ImportSource:        models.ImportSourceAliExpress,
		SourceURL:           sourceURL,
		SourceProductID:     sourceID,
		SourceData:          sourcePayload(detail),
	}
}

const defaultSourceBaseURL = "https://www.aliexpress.com"

func sourcePayload(detail *RawDetail) models.JSONB {
	data, err := json.Marshal(detail)
	if err != nil {
		return nil
	}
	var out models.JSONB
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

// archive stores the raw payload. Failures only produce a warning.
func (s *ImportService) archive(ctx context.Context, product *models.Product, detail *RawDetail) {
	if s.archiver == nil {
		return
	}

	payload, err := json.Marshal(detail)
	if err == nil {
		var key string
		key, err = s.archiver.ArchiveSourcePayload(ctx, product.SourceProductID, payload)
		if err == nil {
			product.SourceArchiveKey = key
			err = s.db.WithContext(ctx).Model(product).Update("source_archive_key", key).Error
		}
	}
	if err != nil {
		s.record(ctx, models.LogLevelWarning, "source payload archive failed", product.SourceProductID, &product.ID, err, nil)
	}
}

// ImportMany imports ids one after another. Already imported ids are reported
// in Skipped and never reach the source catalog.
func (s *ImportService) ImportMany(ctx context.Context, ids []string) (*BatchResult, error) {
	skipped, fresh, err := s.guard.Partition(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{Skipped: skipped, Items: make([]ImportItemResult, 0, len(fresh))}
	if result.Skipped == nil {
		result.Skipped = []string{}
	}

	for _, id := range fresh {
		item := s.importItem(ctx, id)
		if item.Status == string(models.ImportItemStatusSucceeded) {
			result.Succeeded++
		} else {
			result.Failed++
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}

func (s *ImportService) importItem(ctx context.Context, id string) ImportItemResult {
	item := ImportItemResult{SourceProductID: id}

	product, err := s.ImportOne(ctx, id)
	if err != nil {
		kind := ImportErrorKindOf(err)
		item.Status = string(models.ImportItemStatusFailed)
		item.ErrorKind = kind
		item.Error = kind.Description()
		var ie *ImportError
		if errors.As(err, &ie) {
			item.ShopifyID = ie.ShopifyID
		}
		return item
	}

	item.Status = string(models.ImportItemStatusSucceeded)
	item.ProductID = &product.ID
	item.ShopifyID = product.ShopifyIDValue()
	return item
}

// StartBatch records a job for the new ids and processes it in the
// background. It returns ErrNothingToImport when every id is already known.
func (s *ImportService) StartBatch(ctx context.Context, ids []string) (*models.ImportJob, error) {
	requested := dedupeIDs(ids)
	skipped, fresh, err := s.guard.Partition(ctx, requested)
	if err != nil {
		return nil, err
	}
	if len(fresh) == 0 {
		return nil, ErrNothingToImport
	}

	job := &models.ImportJob{
		Status:    models.ImportJobStatusProcessing,
		Requested: models.StringList(requested),
		Skipped:   models.StringList(skipped),
		Total:     len(fresh),
	}
	for _, id := range fresh {
		job.Items = append(job.Items, models.ImportJobItem{
			SourceProductID: id,
			Status:          models.ImportItemStatusPending,
		})
	}

	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, fmt.Errorf("failed to create import job: %w", err)
	}

	s.record(ctx, models.LogLevelInfo, "import job started", "", nil, nil, map[string]interface{}{
		"job_id":  job.ID.String(),
		"total":   job.Total,
		"skipped": len(skipped),
	})

	runCtx := context.WithoutCancel(ctx)
	items := append([]models.ImportJobItem(nil), job.Items...)

	s.wg.Add(1)
	metrics.ImportJobsInFlight.Inc()
	go func() {
		defer s.wg.Done()
		defer metrics.ImportJobsInFlight.Dec()
		s.runJob(runCtx, job.ID, items)
	}()

	return job, nil
}

func (s *ImportService) runJob(ctx context.Context, jobID uuid.UUID, items []models.ImportJobItem) {
	succeeded, failed := 0, 0

	for _, item := range items {
		res := s.importItem(ctx, item.SourceProductID)

		updates := map[string]interface{}{
			"status":        res.Status,
			"error_kind":    string(res.ErrorKind),
			"error_message": res.Error,
			"shopify_id":    res.ShopifyID,
		}
		if res.ProductID != nil {
			updates["product_id"] = *res.ProductID
		}
		if res.Status == string(models.ImportItemStatusSucceeded) {
			succeeded++
		} else {
			failed++
		}

		err := s.db.WithContext(ctx).Model(&models.ImportJobItem{}).
			Where("id = ?", item.ID).
			Updates(updates).Error
		if err != nil {
			s.record(ctx, models.LogLevelError, "failed to update import job item", item.SourceProductID, nil, err, map[string]interface{}{"job_id": jobID.String()})
		}

		err = s.db.WithContext(ctx).Model(&models.ImportJob{}).
			Where("id = ?", jobID).
			Updates(map[string]interface{}{"succeeded": succeeded, "failed": failed}).Error
		if err != nil {
			s.record(ctx, models.LogLevelError, "failed to update import job progress", "", nil, err, map[string]interface{}{"job_id": jobID.String()})
		}
	}

	now := time.Now()
	err := s.db.WithContext(ctx).Model(&models.ImportJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":       models.ImportJobStatusCompleted,
			"completed_at": now,
		}).Error
	if err != nil {
		s.record(ctx, models.LogLevelError, "failed to complete import job", "", nil, err, map[string]interface{}{"job_id": jobID.String()})
		return
	}

	s.record(ctx, models.LogLevelInfo, "import job completed", "", nil, nil, map[string]interface{}{
		"job_id":    jobID.String(),
		"succeeded": succeeded,
		"failed":    failed,
	})
}

// Wait blocks until every background job has finished.
func (s *ImportService) Wait() {
	s.wg.Wait()
}

func (s *ImportService) GetJob(ctx context.Context, id uuid.UUID) (*models.ImportJob, error) {
	var job models.ImportJob
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&job, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImportJobNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &job, nil
}

func (s *ImportService) RecentJobs(ctx context.Context, limit int) ([]models.ImportJob, error) {
	if limit <= 0 {
		limit = recentImportLimit
	}
	var jobs []models.ImportJob
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to list import jobs: %w", err)
	}
	return jobs, nil
}

// Status lists the latest AliExpress imports along with recent jobs.
func (s *ImportService) Status(ctx context.Context) (*ImportStatus, error) {
	status := &ImportStatus{}

	query := s.db.WithContext(ctx).Model(&models.Product{}).Where("import_source = ?", models.ImportSourceAliExpress)
	if err := query.Count(&status.TotalImported).Error; err != nil {
		return nil, fmt.Errorf("failed to count imports: %w", err)
	}

	err := s.db.WithContext(ctx).
		Where("import_source = ?", models.ImportSourceAliExpress).
		Order("created_at DESC").
		Limit(recentImportLimit).
		Find(&status.RecentImports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent imports: %w", err)
	}

	jobs, err := s.RecentJobs(ctx, recentImportLimit)
	if err != nil {
		return nil, err
	}
	status.RecentJobs = jobs
	return status, nil
}

func (s *ImportService) record(ctx context.Context, level models.LogLevel, message, sourceID string, productID *uuid.UUID, err error, fields map[string]interface{}) {
	if s.diag == nil {
		return
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}
	if sourceID != "" {
		fields["source_product_id"] = sourceID
	}
	s.diag.Record(ctx, level, LogEntry{
		Message:   message,
		Module:    importModule,
		Function:  "ImportOne",
		ProductID: productID,
		Fields:    fields,
		Err:       err,
	})
}
