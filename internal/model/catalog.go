package model

import (
	"time"

	"github.com/google/uuid"
)

// CatalogItem is one supplier price-list row. The whole table is
// overwritten wholesale on each import: rows are upserted keyed on the
// normalized Specs string, the catalog's business key.
type CatalogItem struct {
	ID                  uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	No                  string    `gorm:"type:varchar(20)" json:"no"`
	ItemCode            string    `gorm:"type:varchar(100);index" json:"item_code"`
	ItemName            string    `gorm:"type:varchar(255)" json:"item_name"`
	Specs               string    `gorm:"type:varchar(500);uniqueIndex;not null" json:"specs"`
	Qty                 float64   `json:"qty"`
	BuyingPriceRMB      float64   `gorm:"type:decimal(18,4)" json:"buying_price_rmb"`
	TotalBuyingPriceRMB float64   `gorm:"type:decimal(18,4)" json:"total_buying_price_rmb"`
	ExchangeRate        float64   `gorm:"type:decimal(18,4)" json:"exchange_rate"`
	BuyingPriceVND      float64   `gorm:"type:decimal(18,2)" json:"buying_price_vnd"`
	TotalBuyingPriceVND float64   `gorm:"type:decimal(18,2)" json:"total_buying_price_vnd"`
	Leadtime            string    `gorm:"type:varchar(100)" json:"leadtime"`
	Supplier            string    `gorm:"type:varchar(255);index" json:"supplier"`
	Images              string    `gorm:"type:text" json:"images"` // blob-store ref or external URL
	Type                string    `gorm:"type:varchar(100)" json:"type"`
	NUOC                string    `gorm:"column:nuoc;type:varchar(20)" json:"nuoc"` // New/Used/Old/Custom flag
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
