// internal/models/product.go
package models

import (
	"database/sql/driver"
	"encoding/json"
)

type Product struct {
	BaseModel
	ShopifyID           *string       `json:"shopify_id" gorm:"size:64;uniqueIndex"`
	Title               string        `json:"title" gorm:"size:500;not null"`
	Description         string        `json:"description" gorm:"type:text"`
	Price               float64       `json:"price" gorm:"type:decimal(10,2);default:0"`
	CompareAtPrice      float64       `json:"compare_at_price" gorm:"type:decimal(10,2);default:0"`
	Vendor              string        `json:"vendor" gorm:"size:255"`
	ProductType         string        `json:"product_type" gorm:"size:255"`
	Tags                string        `json:"tags" gorm:"type:text"`
	Status              ProductStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`
	MetaTitle           string        `json:"meta_title" gorm:"size:255"`
	MetaDescription     string        `json:"meta_description" gorm:"type:text"`
	ImageURL            string        `json:"image_url" gorm:"size:1000"`
	Images              StringList    `json:"images" gorm:"type:jsonb"`
	InventoryQuantity   int           `json:"inventory_quantity" gorm:"default:0"`
	InventoryManagement string        `json:"inventory_management" gorm:"size:50"`
	Variants            Variants      `json:"variants" gorm:"type:jsonb"`
	Handle              *string       `json:"handle" gorm:"size:255;uniqueIndex"`
	ImportSource        ImportSource  `json:"import_source" gorm:"type:varchar(50);default:'manual';index"`
	SourceURL           string        `json:"source_url" gorm:"size:1000"`
	SourceProductID     string        `json:"source_product_id,omitempty" gorm:"size:64;index"`
	SourceData          JSONB         `json:"source_data,omitempty" gorm:"type:jsonb"`
	SourceArchiveKey    string        `json:"source_archive_key,omitempty" gorm:"size:500"`
}

type ProductVariant struct {
	Title             string  `json:"title"`
	Price             float64 `json:"price"`
	CompareAtPrice    float64 `json:"compare_at_price"`
	InventoryQuantity int     `json:"inventory_quantity"`
	SKU               string  `json:"sku,omitempty"`
}

type Variants []ProductVariant

func (v Variants) Value() (driver.Value, error) {
	if v == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]ProductVariant(v))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (v *Variants) Scan(value interface{}) error {
	if value == nil {
		*v = Variants{}
		return nil
	}

	bytes, err := scanBytes(value)
	if err != nil {
		return err
	}
	if len(bytes) == 0 {
		*v = Variants{}
		return nil
	}

	return json.Unmarshal(bytes, (*[]ProductVariant)(v))
}

// ShopifyIDValue returns the remote id or an empty string when the product
// has not been pushed yet.
func (p *Product) ShopifyIDValue() string {
	if p.ShopifyID == nil {
		return ""
	}
	return *p.ShopifyID
}
