// internal/models/sns_content.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type SNSContent struct {
	BaseModel
	ProductID         uuid.UUID  `json:"product_id" gorm:"type:uuid;not null;index"`
	Platform          Platform   `json:"platform" gorm:"type:varchar(50);not null;index"`
	ContentType       string     `json:"content_type" gorm:"size:50;default:'post'"`
	Title             string     `json:"title" gorm:"size:500"`
	Description       string     `json:"description" gorm:"type:text"`
	Hashtags          string     `json:"hashtags" gorm:"type:text"`
	ImageURLs         StringList `json:"image_urls" gorm:"type:jsonb"`
	GeneratedContent  string     `json:"generated_content" gorm:"type:text"`
	GeneratedHashtags string     `json:"generated_hashtags" gorm:"type:text"`
	IsPublished       bool       `json:"is_published" gorm:"default:false"`
	PublishedAt       *time.Time `json:"published_at"`
	PublishedURL      string     `json:"published_url" gorm:"size:1000"`
	PlatformSettings  JSONB      `json:"platform_settings" gorm:"type:jsonb"`
	Likes             int64      `json:"likes" gorm:"default:0"`
	Comments          int64      `json:"comments" gorm:"default:0"`
	Shares            int64      `json:"shares" gorm:"default:0"`
	Views             int64      `json:"views" gorm:"default:0"`
}

func (SNSContent) TableName() string {
	return "sns_contents"
}
