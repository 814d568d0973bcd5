package models

import "time"

const StockAreaTable = "fs_stock_areas"

// StockArea is a warehouse or a warehouse section.
type StockArea struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID     *string   `gorm:"type:uuid;index" json:"orgId,omitempty"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	Code      string    `gorm:"size:64" json:"code,omitempty"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (StockArea) TableName() string { return StockAreaTable }
