// internal/handlers/aliexpress.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/shopify-automation/internal/i18n"
	"github.com/javajoker/shopify-automation/internal/services"
	"github.com/javajoker/shopify-automation/internal/utils"
)

const (
	maxSearchLimit      = 50
	defaultSearchLimit  = 20
	defaultCategoryName = "Home & Garden"
	defaultMinOrders    = 100
)

type AliExpressHandler struct {
	source        services.SourceCatalog
	importService *services.ImportService
}

type ImportRequest struct {
	ProductID string `json:"product_id" validate:"required,max=64"`
}

type ImportBatchRequest struct {
	ProductIDs []string `json:"product_ids" validate:"required,min=1,max=100,dive,required,max=64"`
}

func NewAliExpressHandler(source services.SourceCatalog, importService *services.ImportService) *AliExpressHandler {
	return &AliExpressHandler{
		source:        source,
		importService: importService,
	}
}

// GET /aliexpress/search
func (h *AliExpressHandler) Search(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	params := services.SearchParams{
		Keyword:   c.Query("keyword"),
		Category:  c.DefaultQuery("category", defaultCategoryName),
		MinOrders: queryInt(c, "min_orders", defaultMinOrders),
		Page:      queryInt(c, "page", 1),
		Limit:     queryInt(c, "limit", defaultSearchLimit),
	}
	if params.Keyword == "" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "keyword"), nil)
		return
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 || params.Limit > maxSearchLimit {
		params.Limit = defaultSearchLimit
	}
	if v := c.Query("max_price"); v != "" {
		maxPrice, err := strconv.ParseFloat(v, 64)
		if err != nil || maxPrice < 0 {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "max_price"), nil)
			return
		}
		params.MaxPrice = maxPrice
	}

	listings, err := h.source.SearchProducts(c.Request.Context(), params)
	if err != nil {
		logrus.WithError(err).WithField("keyword", params.Keyword).Warn("AliExpress search failed")
		utils.BadGatewayResponse(c, i18n.T(lang, i18n.KeyImportSourceUnavailable))
		return
	}
	if listings == nil {
		listings = []services.RawListing{}
	}

	utils.SuccessResponseWithMeta(c, listings, gin.H{
		"keyword": params.Keyword,
		"page":    params.Page,
		"count":   len(listings),
	})
}

// GET /aliexpress/trending
func (h *AliExpressHandler) Trending(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	category := c.DefaultQuery("category", defaultCategoryName)
	limit := queryInt(c, "limit", defaultSearchLimit)
	if limit < 1 || limit > maxSearchLimit {
		limit = defaultSearchLimit
	}

	listings, err := h.source.GetTrendingProducts(c.Request.Context(), category, limit)
	if err != nil {
		logrus.WithError(err).WithField("category", category).Warn("AliExpress trending lookup failed")
		utils.BadGatewayResponse(c, i18n.T(lang, i18n.KeyImportSourceUnavailable))
		return
	}
	if listings == nil {
		listings = []services.RawListing{}
	}

	utils.SuccessResponseWithMeta(c, listings, gin.H{
		"category": category,
		"count":    len(listings),
	})
}

// GET /aliexpress/product/:id
func (h *AliExpressHandler) GetProduct(c *gin.Context) {
	detail, ok := h.fetchDetail(c)
	if !ok {
		return
	}
	utils.SuccessResponse(c, detail)
}

// GET /aliexpress/product/:id/analytics
func (h *AliExpressHandler) GetAnalytics(c *gin.Context) {
	detail, ok := h.fetchDetail(c)
	if !ok {
		return
	}
	utils.SuccessResponse(c, services.AnalyzeDetail(c.Param("id"), detail))
}

func (h *AliExpressHandler) fetchDetail(c *gin.Context) (*services.RawDetail, bool) {
	lang := utils.GetLangFromContext(c)
	id := c.Param("id")

	detail, err := h.source.GetProductDetail(c.Request.Context(), id)
	if err != nil {
		logrus.WithError(err).WithField("product_id", id).Warn("AliExpress detail lookup failed")
		utils.BadGatewayResponse(c, i18n.T(lang, i18n.KeyImportSourceUnavailable))
		return nil, false
	}
	if detail == nil {
		utils.NotFoundResponse(c, i18n.KeySourceProductNotFound)
		return nil, false
	}
	return detail, true
}

// POST /aliexpress/import
//
// Starts a background job by default. With ?sync=true the import runs inline
// and the response carries the created product.
func (h *AliExpressHandler) Import(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req ImportRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if sync, _ := strconv.ParseBool(c.Query("sync")); sync {
		product, err := h.importService.ImportOne(c.Request.Context(), req.ProductID)
		if err != nil {
			h.handleImportError(c, err)
			return
		}
		utils.CreatedResponse(c, product)
		return
	}

	job, err := h.importService.StartBatch(c.Request.Context(), []string{req.ProductID})
	if err != nil {
		if errors.Is(err, services.ErrNothingToImport) {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyImportAlreadyImported), nil)
			return
		}
		internalError(c, err, "Failed to start import")
		return
	}

	utils.AcceptedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyImportStarted),
		"job":     job,
	})
}

// POST /aliexpress/import-batch
func (h *AliExpressHandler) ImportBatch(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req ImportBatchRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if sync, _ := strconv.ParseBool(c.Query("sync")); sync {
		result, err := h.importService.ImportMany(c.Request.Context(), req.ProductIDs)
		if err != nil {
			internalError(c, err, "Batch import failed")
			return
		}
		utils.SuccessResponse(c, result)
		return
	}

	job, err := h.importService.StartBatch(c.Request.Context(), req.ProductIDs)
	if err != nil {
		if errors.Is(err, services.ErrNothingToImport) {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyImportAllAlreadyImported), nil)
			return
		}
		internalError(c, err, "Failed to start batch import")
		return
	}

	utils.AcceptedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyImportStarted),
		"job":     job,
	})
}

// GET /aliexpress/import-status
func (h *AliExpressHandler) ImportStatus(c *gin.Context) {
	status, err := h.importService.Status(c.Request.Context())
	if err != nil {
		internalError(c, err, "Failed to load import status")
		return
	}
	utils.SuccessResponse(c, status)
}

// GET /aliexpress/import-jobs/:id
func (h *AliExpressHandler) GetImportJob(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "import job")
	if !ok {
		return
	}

	job, err := h.importService.GetJob(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrImportJobNotFound) {
			utils.NotFoundResponse(c, i18n.KeyImportJobNotFound)
			return
		}
		internalError(c, err, "Failed to load import job")
		return
	}
	utils.SuccessResponse(c, job)
}

var importErrorResponses = map[services.ImportErrorKind]struct {
	status int
	code   string
	key    string
}{
	services.ErrKindAlreadyImported:     {http.StatusConflict, "ALREADY_IMPORTED", i18n.KeyImportAlreadyImported},
	services.ErrKindSourceUnavailable:   {http.StatusBadGateway, "SOURCE_UNAVAILABLE", i18n.KeyImportSourceUnavailable},
	services.ErrKindTransformFailed:     {http.StatusUnprocessableEntity, "TRANSFORM_FAILED", i18n.KeyImportTransformFailed},
	services.ErrKindDestinationRejected: {http.StatusBadGateway, "DESTINATION_REJECTED", i18n.KeyImportDestinationRejected},
	services.ErrKindPersistenceFailed:   {http.StatusInternalServerError, "PERSISTENCE_FAILED", i18n.KeyImportPersistenceFailed},
	services.ErrKindInternal:            {http.StatusInternalServerError, "INTERNAL_ERROR", i18n.KeyImportInternal},
}

func (h *AliExpressHandler) handleImportError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)
	kind := services.ImportErrorKindOf(err)

	resp, ok := importErrorResponses[kind]
	if !ok {
		resp = importErrorResponses[services.ErrKindInternal]
	}

	var details interface{}
	var ie *services.ImportError
	if errors.As(err, &ie) && ie.ShopifyID != "" {
		details = gin.H{"shopify_id": ie.ShopifyID}
	}

	utils.ErrorResponse(c, resp.status, resp.code, i18n.T(lang, resp.key), details)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
