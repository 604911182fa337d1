package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tracking status constants for customer orders.
const (
	OrderStatusReceived  = "RECEIVED"
	OrderStatusShipping  = "SHIPPING"
	OrderStatusArrived   = "ARRIVED"
	OrderStatusDelivered = "DELIVERED"
)

// Payment status constants.
const (
	PaymentPending = "PENDING"
	PaymentPaid    = "PAID"
	PaymentOverdue = "OVERDUE"
)

// CustomerOrder is a customer purchase order under tracking. The PO file
// itself lives in the blob store; FileRef and FolderPath point at it.
type CustomerOrder struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PONumber     string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"po_number"`
	CustomerName string          `gorm:"type:varchar(255);not null;index" json:"customer_name"`
	TotalValue   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_value"`
	FileRef      string          `gorm:"type:text" json:"file_ref"`
	FolderPath   string          `gorm:"type:text" json:"folder_path"`
	Status       string          `gorm:"type:varchar(20);not null;default:'RECEIVED';index" json:"status"`
	ProofRef     string          `gorm:"type:text" json:"proof_ref"` // delivery proof image, if uploaded
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// SupplierOrder is one per-supplier workbook split out of a master
// purchase sheet and archived in the blob store.
type SupplierOrder struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PONumber  string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"po_number"`
	Supplier  string    `gorm:"type:varchar(255);not null;index" json:"supplier"`
	LineCount int       `json:"line_count"`
	FileRef   string    `gorm:"type:text" json:"file_ref"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Payment is opened automatically when a customer order is marked
// DELIVERED; the daily sweep flips PENDING payments past their ETA to
// OVERDUE.
type Payment struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PONumber   string          `gorm:"type:varchar(50);not null;index" json:"po_number"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Status     string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	ETAPayment time.Time       `gorm:"not null" json:"eta_payment"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
