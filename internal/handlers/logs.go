// internal/handlers/logs.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/shopify-automation/internal/i18n"
	"github.com/javajoker/shopify-automation/internal/services"
	"github.com/javajoker/shopify-automation/internal/utils"
)

const defaultPurgeDays = 30

type LogHandler struct {
	logService *services.LogService
}

func NewLogHandler(logService *services.LogService) *LogHandler {
	return &LogHandler{logService: logService}
}

// GET /logs
func (h *LogHandler) GetLogs(c *gin.Context) {
	filter, ok := parseLogFilter(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	logs, total, err := h.logService.ListLogs(c.Request.Context(), filter, params)
	if err != nil {
		internalError(c, err, "Failed to list logs")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(logs, total, params))
}

// GET /logs/realtime?last_id=
func (h *LogHandler) Realtime(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var lastID uint64
	if v := c.Query("last_id"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "last_id"), nil)
			return
		}
		lastID = parsed
	}

	logs, latest, err := h.logService.Realtime(c.Request.Context(), uint(lastID))
	if err != nil {
		internalError(c, err, "Failed to fetch realtime logs")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"logs":    logs,
		"last_id": latest,
	})
}

// GET /logs/errors
func (h *LogHandler) GetErrors(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	logs, total, err := h.logService.ListErrors(c.Request.Context(), params)
	if err != nil {
		internalError(c, err, "Failed to list error logs")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(logs, total, params))
}

// DELETE /logs?days=
func (h *LogHandler) Purge(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	days := defaultPurgeDays
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 365 {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "days"), nil)
			return
		}
		days = parsed
	}

	deleted, err := h.logService.PurgeOlderThan(c.Request.Context(), days)
	if err != nil {
		internalError(c, err, "Failed to purge logs")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyLogsPurged, deleted),
		"deleted": deleted,
	})
}

// GET /logs/export?format=json|csv
func (h *LogHandler) Export(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	format := services.ExportFormat(c.DefaultQuery("format", string(services.ExportJSON)))
	if format != services.ExportJSON && format != services.ExportCSV {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyLogsInvalidFormat), nil)
		return
	}

	filter, ok := parseLogFilter(c)
	if !ok {
		return
	}

	logs, err := h.logService.Export(c.Request.Context(), filter)
	if err != nil {
		internalError(c, err, "Failed to export logs")
		return
	}

	if format == services.ExportJSON {
		utils.SuccessResponseWithMeta(c, logs, gin.H{"count": len(logs)})
		return
	}

	body, err := services.LogsToCSV(logs)
	if err != nil {
		internalError(c, err, "Failed to render csv export")
		return
	}

	filename := fmt.Sprintf("logs_%s.csv", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(body))
}

func parseLogFilter(c *gin.Context) (services.LogFilter, bool) {
	lang := utils.GetLangFromContext(c)
	filter := services.LogFilter{
		Level:  c.Query("level"),
		Module: c.Query("module"),
		Search: c.Query("search"),
	}

	for _, f := range []struct {
		name string
		dst  **time.Time
	}{
		{"start_date", &filter.StartDate},
		{"end_date", &filter.EndDate},
	} {
		v := c.Query(f.name)
		if v == "" {
			continue
		}
		t, err := parseDate(v)
		if err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, f.name), nil)
			return filter, false
		}
		*f.dst = &t
	}
	return filter, true
}

// parseDate accepts RFC 3339 timestamps or plain YYYY-MM-DD dates.
func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
