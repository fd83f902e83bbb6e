// internal/handlers/product.go
package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/shopify-automation/internal/i18n"
	"github.com/javajoker/shopify-automation/internal/services"
	"github.com/javajoker/shopify-automation/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
}

func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	products, total, err := h.productService.ListProducts(c.Request.Context(), params)
	if err != nil {
		internalError(c, err, "Failed to list products")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(products, total, params))
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// PUT /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseUUIDParam(c, "id", "product")
	if !ok {
		return
	}

	var req services.UpdateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}

	pushRemote, _ := strconv.ParseBool(c.Query("remote"))
	product, err := h.productService.UpdateProduct(c.Request.Context(), id, &req, pushRemote)
	if err != nil {
		h.handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductUpdated),
		"product": product,
	})
}

// DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseUUIDParam(c, "id", "product")
	if !ok {
		return
	}

	deleteRemote, _ := strconv.ParseBool(c.Query("remote"))
	if err := h.productService.DeleteProduct(c.Request.Context(), id, deleteRemote); err != nil {
		h.handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductDeleted),
	})
}

// POST /products/sync-shopify
func (h *ProductHandler) SyncShopify(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	result, err := h.productService.SyncFromShopify(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductSynced),
		"result":  result,
	})
}

// GET /products/reconcile
func (h *ProductHandler) Reconcile(c *gin.Context) {
	orphans, err := h.productService.FindOrphans(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"orphans": orphans,
		"count":   len(orphans),
	})
}

// GET /products/shopify-status
func (h *ProductHandler) ShopifyStatus(c *gin.Context) {
	utils.SuccessResponse(c, h.productService.ShopifyStatus(c.Request.Context()))
}

// POST /products/:id/seo
func (h *ProductHandler) GenerateSEO(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseUUIDParam(c, "id", "product")
	if !ok {
		return
	}

	seo, err := h.productService.GenerateSEO(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductSEOGenerated),
		"seo":     seo,
	})
}

func (h *ProductHandler) handleError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	switch {
	case errors.Is(err, services.ErrProductNotFound):
		utils.NotFoundResponse(c, i18n.KeyProductNotFound)
	case utils.IsValidationError(err):
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
	case services.IsShopifyError(err):
		logrus.WithError(err).Warn("Shopify request failed")
		utils.BadGatewayResponse(c, i18n.T(lang, i18n.KeyShopifyUnavailable))
	default:
		internalError(c, err, "Product request failed")
	}
}
