package models

import "time"

const (
	ReturnTable     = "fs_returns"
	ReturnLineTable = "fs_return_lines"
)

// Return statuses. Only approval touches the ledger; rejection updates the
// record itself and nothing else.
const (
	ReturnPending  = "pending"
	ReturnApproved = "approved"
	ReturnRejected = "rejected"
)

// Return reasons.
const (
	ReturnReasonOK     = "ok"
	ReturnReasonFaulty = "faulty"
)

// Return brings units held by a technician back to a warehouse, pending an
// approval decision.
type Return struct {
	ID           string       `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID        *string      `gorm:"type:uuid;index" json:"orgId,omitempty"`
	SlipNo       string       `gorm:"size:40;not null" json:"slipNo"`
	FromUserID   string       `gorm:"type:uuid;not null;index" json:"fromUserId"`
	TargetAreaID string       `gorm:"type:uuid;not null" json:"targetAreaId"`
	Reason       string       `gorm:"size:20;not null;default:'ok'" json:"reason"`
	Status       string       `gorm:"size:20;not null;default:'pending'" json:"status"`
	Note         string       `gorm:"size:255" json:"note,omitempty"`
	CreatedBy    string       `gorm:"type:uuid;not null" json:"createdBy"`
	DecidedBy    *string      `gorm:"type:uuid" json:"decidedBy,omitempty"`
	DecidedAt    *time.Time   `json:"decidedAt,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	Lines        []ReturnLine `gorm:"foreignKey:ReturnID" json:"lines,omitempty"`
}

type ReturnLine struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	ReturnID      string    `gorm:"type:uuid;index;not null" json:"returnId"`
	LineNo        int       `gorm:"not null" json:"lineNo"`
	MaterialID    string    `gorm:"type:uuid;not null" json:"materialId"`
	Quantity      int       `gorm:"not null" json:"quantity"`
	SerialNumbers []string  `gorm:"serializer:json" json:"serialNumbers,omitempty"`
	UnitIDs       []string  `gorm:"serializer:json" json:"unitIds,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Return) TableName() string     { return ReturnTable }
func (ReturnLine) TableName() string { return ReturnLineTable }
