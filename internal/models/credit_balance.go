package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreditBalance holds one (holder, project) credit position. 1 unit = 1 ton
// CO2-equivalent, zero decimal places. Rows are created on first credit and
// may reach zero without being deleted.
type CreditBalance struct {
	BalanceID uuid.UUID `gorm:"column:balance_id;type:uuid;primaryKey" json:"balance_id"`
	Holder    string    `gorm:"column:holder;type:varchar(42);not null;uniqueIndex:idx_credit_holder_project" json:"holder"`
	ProjectID int64     `gorm:"column:project_id;not null;uniqueIndex:idx_credit_holder_project" json:"project_id"`
	Balance   int64     `gorm:"column:balance;not null;default:0" json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CreditBalance) TableName() string {
	return "credit_balances"
}

func (b *CreditBalance) BeforeCreate(tx *gorm.DB) error {
	if b.BalanceID == uuid.Nil {
		b.BalanceID = uuid.New()
	}
	return nil
}
