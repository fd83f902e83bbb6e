// internal/models/import_job.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// ImportJob tracks a background batch import so callers can poll its progress.
type ImportJob struct {
	BaseModel
	Status      ImportJobStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	Requested   StringList      `json:"requested" gorm:"type:jsonb"`
	Skipped     StringList      `json:"skipped" gorm:"type:jsonb"`
	Total       int             `json:"total"`
	Succeeded   int             `json:"succeeded"`
	Failed      int             `json:"failed"`
	CompletedAt *time.Time      `json:"completed_at"`

	Items []ImportJobItem `json:"items,omitempty" gorm:"foreignKey:JobID"`
}

type ImportJobItem struct {
	BaseModel
	JobID           uuid.UUID        `json:"job_id" gorm:"type:uuid;not null;index"`
	SourceProductID string           `json:"source_product_id" gorm:"size:64;not null"`
	Status          ImportItemStatus `json:"status" gorm:"type:varchar(20);not null"`
	ErrorKind       string           `json:"error_kind,omitempty" gorm:"size:50"`
	ErrorMessage    string           `json:"error_message,omitempty" gorm:"size:500"`
	ProductID       *uuid.UUID       `json:"product_id,omitempty" gorm:"type:uuid"`
	ShopifyID       string           `json:"shopify_id,omitempty" gorm:"size:64"`
}
