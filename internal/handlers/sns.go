// internal/handlers/sns.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/shopify-automation/internal/i18n"
	"github.com/javajoker/shopify-automation/internal/services"
	"github.com/javajoker/shopify-automation/internal/utils"
)

type SNSHandler struct {
	snsService *services.SNSService
}

func NewSNSHandler(snsService *services.SNSService) *SNSHandler {
	return &SNSHandler{snsService: snsService}
}

// GET /sns/platforms
func (h *SNSHandler) GetPlatforms(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{"platforms": h.snsService.Platforms()})
}

// GET /sns/content/:product_id
func (h *SNSHandler) ListContent(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	productID, ok := parseUUIDParam(c, "product_id", "product")
	if !ok {
		return
	}

	platform := c.Query("platform")
	if platform != "" && !utils.IsKnownPlatform(platform) {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "platform"), nil)
		return
	}

	contents, err := h.snsService.ListByProduct(c.Request.Context(), productID, platform)
	if err != nil {
		internalError(c, err, "Failed to list sns content")
		return
	}
	utils.SuccessResponse(c, contents)
}

// POST /sns/generate/:product_id
func (h *SNSHandler) Generate(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	productID, ok := parseUUIDParam(c, "product_id", "product")
	if !ok {
		return
	}

	var req services.GenerateSNSContentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	content, err := h.snsService.Generate(c.Request.Context(), productID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeySNSContentGenerated),
		"content": content,
	})
}

// GET /sns/item/:id
func (h *SNSHandler) GetContent(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "content")
	if !ok {
		return
	}

	content, err := h.snsService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	utils.SuccessResponse(c, content)
}

// PUT /sns/content/:id
func (h *SNSHandler) UpdateContent(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseUUIDParam(c, "id", "content")
	if !ok {
		return
	}

	var req services.UpdateSNSContentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	content, err := h.snsService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeySNSContentUpdated),
		"content": content,
	})
}

// POST /sns/content/:id/regenerate
func (h *SNSHandler) Regenerate(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseUUIDParam(c, "id", "content")
	if !ok {
		return
	}

	content, err := h.snsService.Regenerate(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeySNSContentRegenerated),
		"content": content,
	})
}

// DELETE /sns/content/:id
func (h *SNSHandler) DeleteContent(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseUUIDParam(c, "id", "content")
	if !ok {
		return
	}

	if err := h.snsService.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeySNSContentDeleted),
	})
}

func (h *SNSHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		utils.NotFoundResponse(c, i18n.KeyProductNotFound)
	case errors.Is(err, services.ErrSNSContentNotFound):
		utils.NotFoundResponse(c, i18n.KeySNSContentNotFound)
	case utils.IsValidationError(err):
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
	default:
		internalError(c, err, "SNS content request failed")
	}
}
