package model

import (
	"time"

	"github.com/google/uuid"
)

// Quote is a saved quotation. Quotes are write-once history records: a
// new save always inserts a new row with a fresh QuoteNo, never updates
// an existing one. ConfigJSON is the serialized snapshot of the seven
// global cost parameters at save time, stored verbatim.
type Quote struct {
	ID          uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	QuoteNo     string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"quote_no"`
	Customer    string      `gorm:"type:varchar(255);not null;index" json:"customer"`
	QuoteDate   time.Time   `gorm:"not null" json:"quote_date"`
	TotalProfit float64     `gorm:"type:decimal(18,2)" json:"total_profit"`
	ConfigJSON  string      `gorm:"type:text" json:"config_json"`
	BackupRef   string      `gorm:"type:text" json:"backup_ref"` // blob ref of the workbook backup
	Lines       []QuoteLine `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// QuoteLine is one persisted line of a saved quote. All monetary columns
// are the frozen output of the pricing engine at save time; the synthetic
// TOTAL row is never stored.
type QuoteLine struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	QuoteID uuid.UUID `gorm:"type:uuid;not null;index" json:"quote_id"`

	No       int    `gorm:"not null" json:"no"`
	Warning  string `gorm:"type:varchar(50)" json:"warning"`
	ItemCode string `gorm:"type:varchar(100)" json:"item_code"`
	ItemName string `gorm:"type:varchar(255)" json:"item_name"`
	Specs    string `gorm:"type:varchar(500)" json:"specs"`

	Qty            float64 `json:"qty"`
	BuyingPriceRMB float64 `gorm:"type:decimal(18,4)" json:"buying_price_rmb"`
	ExchangeRate   float64 `gorm:"type:decimal(18,4)" json:"exchange_rate"`
	BuyingPriceVND float64 `gorm:"type:decimal(18,2)" json:"buying_price_vnd"`
	TotalBuyingVND float64 `gorm:"type:decimal(18,2)" json:"total_buying_vnd"`
	APPrice        float64 `gorm:"type:decimal(18,2)" json:"ap_price"`
	APTotal        float64 `gorm:"type:decimal(18,2)" json:"ap_total"`
	UnitPrice      float64 `gorm:"type:decimal(18,2)" json:"unit_price"`
	TotalPrice     float64 `gorm:"type:decimal(18,2)" json:"total_price"`
	Gap            float64 `gorm:"type:decimal(18,2)" json:"gap"`

	EndUserFee     float64 `gorm:"type:decimal(18,2)" json:"end_user_fee"`
	BuyerFee       float64 `gorm:"type:decimal(18,2)" json:"buyer_fee"`
	ImportTax      float64 `gorm:"type:decimal(18,2)" json:"import_tax"`
	VAT            float64 `gorm:"column:vat;type:decimal(18,2)" json:"vat"`
	Transportation float64 `gorm:"type:decimal(18,2)" json:"transportation"`
	ManagementFee  float64 `gorm:"type:decimal(18,2)" json:"management_fee"`
	Payback        float64 `gorm:"type:decimal(18,2)" json:"payback"`

	Profit    float64 `gorm:"type:decimal(18,2)" json:"profit"`
	ProfitPct float64 `gorm:"type:decimal(8,2)" json:"profit_pct"`
	Status    string  `gorm:"type:varchar(20)" json:"status"`

	Supplier string `gorm:"type:varchar(255)" json:"supplier"`
	Leadtime string `gorm:"type:varchar(100)" json:"leadtime"`
	ImageRef string `gorm:"type:text" json:"image_ref"`

	CreatedAt time.Time `json:"created_at"`
}
