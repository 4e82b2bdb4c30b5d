package models

import (
	"time"

	"gorm.io/datatypes"
)

// Ledger event types. ProjectCreated, CreditTraded and CreditRetired are the
// public ledger events; the token/approval types mirror the standard events
// the underlying ERC-20/ERC-1155 contracts emit.
const (
	EventProjectCreated = "ProjectCreated"
	EventCreditTraded   = "CreditTraded"
	EventCreditRetired  = "CreditRetired"
	EventTokenTransfer  = "TokenTransfer"
	EventTokenApproval  = "TokenApproval"
	EventApprovalForAll = "ApprovalForAll"
)

// LedgerEvent is one row of the append-only operation log. The sequence is
// the admission order of the write that produced it and doubles as the block
// number reported to consumers. Rows are immutable once written.
type LedgerEvent struct {
	Sequence  uint64         `gorm:"column:sequence;primaryKey;autoIncrement" json:"sequence"`
	Type      string         `gorm:"column:type;type:varchar(30);not null;index" json:"type"`
	ProjectID *int64         `gorm:"column:project_id;index" json:"project_id,omitempty"`
	Payload   datatypes.JSON `gorm:"column:payload;not null" json:"payload"`
	TxHash    string         `gorm:"column:tx_hash;type:varchar(66);not null;uniqueIndex" json:"tx_hash"`
	CreatedAt time.Time      `json:"created_at"`
}

func (LedgerEvent) TableName() string {
	return "ledger_events"
}
