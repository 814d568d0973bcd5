package models

import "time"

const (
	TransferTable     = "fs_transfers"
	TransferLineTable = "fs_transfer_lines"
)

// Transfer destination kinds. The legacy system stored "PERSON"/"VAN"
// sentinels in the destination area column; here the kind is an explicit
// column and DestAreaID stays a real area id (for person transfers it keeps
// the source area so the foreign key never goes null).
const (
	DestWarehouse = "warehouse"
	DestPerson    = "person"
)

// Transfer moves units out of a source stock area, either to another stock
// area or onto a technician's person stock. Transfers commit atomically and
// are recorded already completed.
type Transfer struct {
	ID           string         `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID        *string        `gorm:"type:uuid;index" json:"orgId,omitempty"`
	SlipNo       string         `gorm:"size:40;not null" json:"slipNo"`
	SourceAreaID string         `gorm:"type:uuid;not null;index" json:"sourceAreaId"`
	DestKind     string         `gorm:"size:20;not null" json:"destKind"`
	DestAreaID   string         `gorm:"type:uuid;not null;index" json:"destAreaId"`
	DestUserID   *string        `gorm:"type:uuid;index" json:"destUserId,omitempty"`
	TicketID     *string        `gorm:"size:64" json:"ticketId,omitempty"`
	Note         string         `gorm:"size:255" json:"note,omitempty"`
	CreatedBy    string         `gorm:"type:uuid;not null" json:"createdBy"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	Lines        []TransferLine `gorm:"foreignKey:TransferID" json:"lines,omitempty"`
}

type TransferLine struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	TransferID    string    `gorm:"type:uuid;index;not null" json:"transferId"`
	LineNo        int       `gorm:"not null" json:"lineNo"`
	MaterialID    string    `gorm:"type:uuid;not null" json:"materialId"`
	Quantity      int       `gorm:"not null" json:"quantity"`
	SerialNumbers []string  `gorm:"serializer:json" json:"serialNumbers,omitempty"`
	UnitIDs       []string  `gorm:"serializer:json" json:"unitIds,omitempty"` // resolved ledger units
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Transfer) TableName() string     { return TransferTable }
func (TransferLine) TableName() string { return TransferLineTable }
