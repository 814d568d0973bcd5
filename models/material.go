package models

import "time"

const MaterialTable = "fs_materials"

// Material is a catalog entry. Descriptive fields may change, but a material
// is never physically deleted once ledger units reference it.
type Material struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID     *string   `gorm:"type:uuid;index" json:"orgId,omitempty"`
	Code      string    `gorm:"size:64;not null" json:"code"` // unique per org among active rows
	Name      string    `gorm:"size:200;not null" json:"name"`
	Type      string    `gorm:"size:40" json:"type"` // equipment / cable / component
	UOM       string    `gorm:"size:16;not null;default:'pcs'" json:"uom"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Material) TableName() string { return MaterialTable }
