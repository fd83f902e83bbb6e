// internal/services/log_service.go
package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/shopify-automation/internal/metrics"
	"github.com/javajoker/shopify-automation/internal/models"
	"github.com/javajoker/shopify-automation/internal/utils"
)

const realtimeLogBatch = 10

// LogService is the diagnostics sink: every event goes to logrus and, when a
// database is attached, to the logs table. It also answers log queries.
type LogService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

type LogFilter struct {
	Level     string
	Module    string
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
}

type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)

func NewLogService(db *gorm.DB, logger *logrus.Logger) *LogService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogService{db: db, logger: logger}
}

func (s *LogService) Record(ctx context.Context, level models.LogLevel, entry LogEntry) {
	fields := logrus.Fields{}
	for k, v := range entry.Fields {
		fields[k] = v
	}
	if entry.Module != "" {
		fields["module"] = entry.Module
	}
	if entry.Function != "" {
		fields["function"] = entry.Function
	}
	if entry.ProductID != nil {
		fields["product_id"] = entry.ProductID.String()
	}

	row := models.Log{
		Level:     level,
		Message:   entry.Message,
		Module:    entry.Module,
		Function:  entry.Function,
		UserID:    entry.UserID,
		ProductID: entry.ProductID,
	}

	if meta, ok := utils.RequestMetaFromContext(ctx); ok {
		fields["request_id"] = meta.RequestID
		row.IPAddress = meta.IPAddress
		row.UserAgent = meta.UserAgent
		row.RequestPath = meta.Path
		row.RequestMethod = meta.Method
	}

	logEntry := s.logger.WithFields(fields)
	if entry.Err != nil {
		logEntry = logEntry.WithError(entry.Err)
		row.Traceback = entry.Err.Error()
	}
	logEntry.Log(logrusLevel(level), entry.Message)

	if s.db == nil {
		return
	}

	if len(entry.Fields) > 0 {
		row.Context = models.JSONB(entry.Fields)
	}

	// the row outlives a cancelled request
	dbCtx := context.Background()
	if ctx != nil {
		dbCtx = context.WithoutCancel(ctx)
	}
	if err := s.db.WithContext(dbCtx).Create(&row).Error; err != nil {
		s.logger.WithError(err).Warn("Failed to persist diagnostic log")
	}
}

func logrusLevel(level models.LogLevel) logrus.Level {
	switch level {
	case models.LogLevelDebug:
		return logrus.DebugLevel
	case models.LogLevelWarning:
		return logrus.WarnLevel
	case models.LogLevelError, models.LogLevelCritical:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func (s *LogService) applyFilter(query *gorm.DB, filter LogFilter) *gorm.DB {
	if filter.Level != "" {
		query = query.Where("level = ?", strings.ToUpper(filter.Level))
	}
	if filter.Module != "" {
		query = query.Where("module LIKE ?", "%"+filter.Module+"%")
	}
	if filter.Search != "" {
		query = query.Where("message LIKE ?", "%"+filter.Search+"%")
	}
	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("created_at <= ?", *filter.EndDate)
	}
	return query
}

func (s *LogService) ListLogs(ctx context.Context, filter LogFilter, params utils.PaginationParams) ([]models.Log, int64, error) {
	query := s.applyFilter(s.db.WithContext(ctx).Model(&models.Log{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count logs: %w", err)
	}

	var logs []models.Log
	if err := utils.ApplyPagination(query.Order("created_at DESC, id DESC"), params).Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list logs: %w", err)
	}
	return logs, total, nil
}

// Realtime returns up to ten newest entries after lastID, plus the id the
// client should send next time.
func (s *LogService) Realtime(ctx context.Context, lastID uint) ([]models.Log, uint, error) {
	query := s.db.WithContext(ctx).Order("id DESC").Limit(realtimeLogBatch)
	if lastID > 0 {
		query = query.Where("id > ?", lastID)
	}

	var logs []models.Log
	if err := query.Find(&logs).Error; err != nil {
		return nil, lastID, fmt.Errorf("failed to fetch realtime logs: %w", err)
	}

	latest := lastID
	for _, l := range logs {
		if l.ID > latest {
			latest = l.ID
		}
	}
	return logs, latest, nil
}

func (s *LogService) ListErrors(ctx context.Context, params utils.PaginationParams) ([]models.Log, int64, error) {
	return s.ListLogs(ctx, LogFilter{Level: string(models.LogLevelError)}, params)
}

// PurgeOlderThan hard-deletes entries older than the given number of days.
func (s *LogService) PurgeOlderThan(ctx context.Context, days int) (int64, error) {
	if days < 1 {
		return 0, fmt.Errorf("days must be at least 1")
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.Log{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge logs: %w", result.Error)
	}

	metrics.LogsPurgedTotal.Add(float64(result.RowsAffected))
	s.Record(ctx, models.LogLevelInfo, LogEntry{
		Message:  "purged old logs",
		Module:   "logs",
		Function: "PurgeOlderThan",
		Fields:   map[string]interface{}{"deleted": result.RowsAffected, "days": days},
	})
	return result.RowsAffected, nil
}

// RunRetention purges on every tick until ctx is done.
func (s *LogService) RunRetention(ctx context.Context, days int, interval time.Duration) {
	if days < 1 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.PurgeOlderThan(ctx, days); err != nil {
				s.logger.WithError(err).Error("Log retention failed")
			}
		}
	}
}

func (s *LogService) Export(ctx context.Context, filter LogFilter) ([]models.Log, error) {
	var logs []models.Log
	err := s.applyFilter(s.db.WithContext(ctx).Model(&models.Log{}), filter).
		Order("created_at DESC, id DESC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to export logs: %w", err)
	}
	return logs, nil
}

// LogsToCSV renders the export columns used by the dashboard download.
func LogsToCSV(logs []models.Log) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"ID", "Level", "Message", "Module", "Function", "Created At"}); err != nil {
		return "", err
	}
	for _, l := range logs {
		record := []string{
			strconv.FormatUint(uint64(l.ID), 10),
			string(l.Level),
			l.Message,
			l.Module,
			l.Function,
			l.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	return buf.String(), w.Error()
}
