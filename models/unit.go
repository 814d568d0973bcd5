package models

import "time"

const UnitTable = "fs_units"

// Unit statuses.
const (
	UnitAvailable = "available"
	UnitAllocated = "allocated"
	UnitInTransit = "in_transit"
	UnitFaulty    = "faulty"
	UnitConsumed  = "consumed"
)

// Unit location kinds. LocationID holds the stock area id for warehouse,
// the user id for person, and is cleared for consumed.
const (
	LocWarehouse = "warehouse"
	LocPerson    = "person"
	LocConsumed  = "consumed"
)

// Unit is one ledger row: a uniquely serialized physical item, or one
// countable piece of a bulk material (a bulk receipt of 10 creates 10 rows).
// Location and status only ever change through the ledger's guarded
// transition; rows are never deleted, consumed is terminal.
type Unit struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID         *string   `gorm:"type:uuid;index" json:"orgId,omitempty"`
	MaterialID    string    `gorm:"type:uuid;not null;index:idx_fs_units_pick,priority:1" json:"materialId"`
	SerialNumber  *string   `gorm:"size:120" json:"serialNumber,omitempty"` // unique among active rows
	MACAddress    *string   `gorm:"size:64" json:"macAddress,omitempty"`    // unique among active rows
	LocationType  string    `gorm:"size:20;not null;index:idx_fs_units_pick,priority:3" json:"locationType"`
	LocationID    *string   `gorm:"type:uuid;index:idx_fs_units_pick,priority:4" json:"locationId,omitempty"`
	Status        string    `gorm:"size:20;not null;index:idx_fs_units_pick,priority:2" json:"status"`
	TicketID      *string   `gorm:"size:64;index" json:"ticketId,omitempty"`
	ReceiptLineID string    `gorm:"type:uuid;index;not null" json:"receiptLineId"` // provenance
	Active        bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Unit) TableName() string { return UnitTable }

// Serialized reports whether the unit carries any identity.
func (u *Unit) Serialized() bool { return u.SerialNumber != nil || u.MACAddress != nil }
