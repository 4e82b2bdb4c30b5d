package token

import (
	"canopy-backend/internal/models"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Row-level primitives shared with the credit ledger's settlement path. All
// of them expect to run inside the caller's transaction; none of them emit
// events.

// BalanceTx reads an account balance inside tx; missing rows read as zero.
func BalanceTx(tx *gorm.DB, account common.Address) (int64, error) {
	var row models.TokenBalance
	err := tx.Where("account = ?", models.AddressKey(account)).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.Balance, nil
}

// AllowanceTx reads the remaining (owner, spender) allowance inside tx.
func AllowanceTx(tx *gorm.DB, owner, spender common.Address) (int64, error) {
	var row models.TokenAllowance
	err := tx.Where("owner = ? AND spender = ?", models.AddressKey(owner), models.AddressKey(spender)).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.Amount, nil
}

// CreditTx adds amount to an account, creating the row on first credit.
func CreditTx(tx *gorm.DB, account common.Address, amount int64) error {
	row := models.TokenBalance{Account: models.AddressKey(account), Balance: amount}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"balance": gorm.Expr("balance + ?", amount)}),
	}).Create(&row).Error
}

// DebitTx subtracts amount from an account, failing with
// ErrInsufficientBalance rather than driving the balance negative.
func DebitTx(tx *gorm.DB, account common.Address, amount int64) error {
	var row models.TokenBalance
	err := tx.Where("account = ?", models.AddressKey(account)).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		if amount == 0 {
			return nil
		}
		return ErrInsufficientBalance
	}
	if err != nil {
		return err
	}
	if row.Balance < amount {
		return ErrInsufficientBalance
	}
	row.Balance -= amount
	return tx.Save(&row).Error
}

// SpendAllowanceTx decrements the (owner, spender) allowance, failing with
// ErrInsufficientAllowance when the grant does not cover amount.
func SpendAllowanceTx(tx *gorm.DB, owner, spender common.Address, amount int64) error {
	var row models.TokenAllowance
	err := tx.Where("owner = ? AND spender = ?", models.AddressKey(owner), models.AddressKey(spender)).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		if amount == 0 {
			return nil
		}
		return ErrInsufficientAllowance
	}
	if err != nil {
		return err
	}
	if row.Amount < amount {
		return ErrInsufficientAllowance
	}
	row.Amount -= amount
	return tx.Save(&row).Error
}
