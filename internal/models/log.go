// internal/models/log.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Log is an append-only diagnostic event. The integer id lets clients poll
// for entries newer than the last one they saw.
type Log struct {
	ID            uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt     time.Time  `json:"created_at" gorm:"index"`
	Level         LogLevel   `json:"level" gorm:"type:varchar(20);not null;index"`
	Message       string     `json:"message" gorm:"type:text;not null"`
	Module        string     `json:"module" gorm:"size:100;index"`
	Function      string     `json:"function" gorm:"size:100"`
	UserID        *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid"`
	ProductID     *uuid.UUID `json:"product_id,omitempty" gorm:"type:uuid"`
	Context       JSONB      `json:"context,omitempty" gorm:"type:jsonb"`
	Traceback     string     `json:"traceback,omitempty" gorm:"type:text"`
	IPAddress     string     `json:"ip_address,omitempty" gorm:"size:45"`
	UserAgent     string     `json:"user_agent,omitempty" gorm:"size:500"`
	RequestPath   string     `json:"request_path,omitempty" gorm:"size:500"`
	RequestMethod string     `json:"request_method,omitempty" gorm:"size:10"`
}
