package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OperatorApproval is a holder-granted, ledger-wide permission allowing an
// operator to move all of the holder's credit balances across all projects.
// Independent per (owner, operator) pair; each grant overwrites the prior
// value.
type OperatorApproval struct {
	ApprovalID uuid.UUID `gorm:"column:approval_id;type:uuid;primaryKey" json:"approval_id"`
	Owner      string    `gorm:"column:owner;type:varchar(42);not null;uniqueIndex:idx_approval_owner_operator" json:"owner"`
	Operator   string    `gorm:"column:operator;type:varchar(42);not null;uniqueIndex:idx_approval_owner_operator" json:"operator"`
	Approved   bool      `gorm:"column:approved;not null;default:false" json:"approved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (OperatorApproval) TableName() string {
	return "operator_approvals"
}

func (a *OperatorApproval) BeforeCreate(tx *gorm.DB) error {
	if a.ApprovalID == uuid.Nil {
		a.ApprovalID = uuid.New()
	}
	return nil
}
