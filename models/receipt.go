package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ReceiptTable     = "fs_receipts"
	ReceiptLineTable = "fs_receipt_lines"
)

// Receipt statuses. A draft receipt does not materialize ledger units;
// only completion does.
const (
	ReceiptDraft     = "draft"
	ReceiptCompleted = "completed"
)

// Receipt is an inward goods record (GRN).
type Receipt struct {
	ID          string        `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID       *string       `gorm:"type:uuid;index" json:"orgId,omitempty"`
	SlipNo      string        `gorm:"size:40;not null" json:"slipNo"`
	StockAreaID string        `gorm:"type:uuid;not null" json:"stockAreaId"`
	SupplierID  *string       `gorm:"type:uuid" json:"supplierId,omitempty"`
	Status      string        `gorm:"size:20;not null;default:'draft'" json:"status"`
	Note        string        `gorm:"size:255" json:"note,omitempty"`
	DocumentURL string        `gorm:"size:512" json:"documentUrl,omitempty"`
	CreatedBy   string        `gorm:"type:uuid;not null" json:"createdBy"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	Lines       []ReceiptLine `gorm:"foreignKey:ReceiptID" json:"lines,omitempty"`
}

type ReceiptLine struct {
	ID            string          `gorm:"type:uuid;primaryKey" json:"id"`
	ReceiptID     string          `gorm:"type:uuid;index;not null" json:"receiptId"`
	LineNo        int             `gorm:"not null" json:"lineNo"`
	MaterialID    string          `gorm:"type:uuid;not null" json:"materialId"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	SerialNumbers []string        `gorm:"serializer:json" json:"serialNumbers,omitempty"`
	MACAddresses  []string        `gorm:"serializer:json" json:"macAddresses,omitempty"`
	UnitCost      decimal.Decimal `gorm:"type:decimal(20,4)" json:"unitCost"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (Receipt) TableName() string     { return ReceiptTable }
func (ReceiptLine) TableName() string { return ReceiptLineTable }
