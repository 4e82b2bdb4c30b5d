package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenBalance is one account's payment-token balance in base units
// (6 implied decimal places, smallest unit = 1e-6 mUSDC).
type TokenBalance struct {
	BalanceID uuid.UUID `gorm:"column:balance_id;type:uuid;primaryKey" json:"balance_id"`
	Account   string    `gorm:"column:account;type:varchar(42);not null;uniqueIndex" json:"account"`
	Balance   int64     `gorm:"column:balance;not null;default:0" json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TokenBalance) TableName() string {
	return "token_balances"
}

func (b *TokenBalance) BeforeCreate(tx *gorm.DB) error {
	if b.BalanceID == uuid.Nil {
		b.BalanceID = uuid.New()
	}
	return nil
}

// TokenAllowance is the remaining delegated spend granted by owner to
// spender. Approve overwrites; transferFrom decrements.
type TokenAllowance struct {
	AllowanceID uuid.UUID `gorm:"column:allowance_id;type:uuid;primaryKey" json:"allowance_id"`
	Owner       string    `gorm:"column:owner;type:varchar(42);not null;uniqueIndex:idx_allowance_owner_spender" json:"owner"`
	Spender     string    `gorm:"column:spender;type:varchar(42);not null;uniqueIndex:idx_allowance_owner_spender" json:"spender"`
	Amount      int64     `gorm:"column:amount;not null;default:0" json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (TokenAllowance) TableName() string {
	return "token_allowances"
}

func (a *TokenAllowance) BeforeCreate(tx *gorm.DB) error {
	if a.AllowanceID == uuid.Nil {
		a.AllowanceID = uuid.New()
	}
	return nil
}
