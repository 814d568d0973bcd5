package models

import "time"

const (
	ConsumptionTable     = "fs_consumptions"
	ConsumptionLineTable = "fs_consumption_lines"
)

// Consumption records units consumed against a service ticket. Units are
// pulled from the technician's person stock first, then from a warehouse.
type Consumption struct {
	ID          string            `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID       *string           `gorm:"type:uuid;index" json:"orgId,omitempty"`
	SlipNo      string            `gorm:"size:40;not null" json:"slipNo"`
	TicketID    string            `gorm:"size:64;not null;index" json:"ticketId"`
	FromUserID  *string           `gorm:"type:uuid;index" json:"fromUserId,omitempty"`
	StockAreaID *string           `gorm:"type:uuid;index" json:"stockAreaId,omitempty"`
	Note        string            `gorm:"size:255" json:"note,omitempty"`
	CreatedBy   string            `gorm:"type:uuid;not null" json:"createdBy"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	Lines       []ConsumptionLine `gorm:"foreignKey:ConsumptionID" json:"lines,omitempty"`
}

type ConsumptionLine struct {
	ID            string   `gorm:"type:uuid;primaryKey" json:"id"`
	ConsumptionID string   `gorm:"type:uuid;index;not null" json:"consumptionId"`
	LineNo        int      `gorm:"not null" json:"lineNo"`
	MaterialID    string   `gorm:"type:uuid;not null" json:"materialId"`
	Quantity      int      `gorm:"not null" json:"quantity"`
	SerialNumbers []string `gorm:"serializer:json" json:"serialNumbers,omitempty"`
	UnitIDs       []string `gorm:"serializer:json" json:"unitIds,omitempty"`
	// WarehouseQuantity is the part of Quantity pulled from the stated stock
	// area (the rest came off person stock). The stock level aggregator
	// charges only this part against the area.
	WarehouseQuantity int       `gorm:"not null;default:0" json:"warehouseQuantity"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (Consumption) TableName() string     { return ConsumptionTable }
func (ConsumptionLine) TableName() string { return ConsumptionLineTable }
