package token

import (
	"context"

	"canopy-backend/internal/events"
	"canopy-backend/internal/models"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Token metadata, fixed to match the original mock settlement token.
const (
	Name     = "Mock USDC"
	Symbol   = "mUSDC"
	Decimals = 6
)

// Service implements the payment-token ledger (balances, allowances, gated
// mint authority). Amounts are base units with 6 implied decimal places.
type Service struct {
	DB     *gorm.DB
	Events *events.Service

	// Admin is the sole identity allowed to mint.
	Admin common.Address
}

type transferPayload struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

type approvalPayload struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	Amount  int64  `json:"amount"`
}

// Mint credits amount to an account. Only the admin may call; a zero amount
// is a no-op on balances but is still admitted and receipted.
func (s *Service) Mint(ctx context.Context, caller, to common.Address, amount int64) (*events.Receipt, error) {
	if caller != s.Admin {
		return nil, ErrUnauthorized
	}
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	if to == (common.Address{}) {
		return nil, ErrInvalidAddress
	}

	var ev *models.LedgerEvent
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := CreditTx(tx, to, amount); err != nil {
			return err
		}
		var err error
		ev, err = s.Events.Append(tx, models.EventTokenTransfer, nil, transferPayload{
			From:   models.AddressKey(common.Address{}),
			To:     models.AddressKey(to),
			Amount: amount,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Events.Publish(ctx, ev)
	return events.ReceiptFor(ev), nil
}

// Transfer moves amount from the caller to another account.
func (s *Service) Transfer(ctx context.Context, caller, to common.Address, amount int64) (*events.Receipt, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	if to == (common.Address{}) {
		return nil, ErrInvalidAddress
	}

	var ev *models.LedgerEvent
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := DebitTx(tx, caller, amount); err != nil {
			return err
		}
		if err := CreditTx(tx, to, amount); err != nil {
			return err
		}
		var err error
		ev, err = s.Events.Append(tx, models.EventTokenTransfer, nil, transferPayload{
			From:   models.AddressKey(caller),
			To:     models.AddressKey(to),
			Amount: amount,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Events.Publish(ctx, ev)
	return events.ReceiptFor(ev), nil
}

// Approve sets the caller's allowance for spender to amount, overwriting any
// prior value (not additive).
func (s *Service) Approve(ctx context.Context, caller, spender common.Address, amount int64) (*events.Receipt, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	if spender == (common.Address{}) {
		return nil, ErrInvalidAddress
	}

	var ev *models.LedgerEvent
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		allowance := models.TokenAllowance{
			Owner:   models.AddressKey(caller),
			Spender: models.AddressKey(spender),
			Amount:  amount,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner"}, {Name: "spender"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"amount": amount}),
		}).Create(&allowance).Error; err != nil {
			return err
		}
		var err error
		ev, err = s.Events.Append(tx, models.EventTokenApproval, nil, approvalPayload{
			Owner:   models.AddressKey(caller),
			Spender: models.AddressKey(spender),
			Amount:  amount,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Events.Publish(ctx, ev)
	return events.ReceiptFor(ev), nil
}

// TransferFrom moves amount from owner to another account on the strength of
// the allowance owner granted the caller. The allowance is checked before the
// balance and is decremented on success.
func (s *Service) TransferFrom(ctx context.Context, caller, owner, to common.Address, amount int64) (*events.Receipt, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	if to == (common.Address{}) {
		return nil, ErrInvalidAddress
	}

	var ev *models.LedgerEvent
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		allowance, err := AllowanceTx(tx, owner, caller)
		if err != nil {
			return err
		}
		if allowance < amount {
			return ErrInsufficientAllowance
		}
		balance, err := BalanceTx(tx, owner)
		if err != nil {
			return err
		}
		if balance < amount {
			return ErrInsufficientBalance
		}
		if err := SpendAllowanceTx(tx, owner, caller, amount); err != nil {
			return err
		}
		if err := DebitTx(tx, owner, amount); err != nil {
			return err
		}
		if err := CreditTx(tx, to, amount); err != nil {
			return err
		}
		ev, err = s.Events.Append(tx, models.EventTokenTransfer, nil, transferPayload{
			From:   models.AddressKey(owner),
			To:     models.AddressKey(to),
			Amount: amount,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Events.Publish(ctx, ev)
	return events.ReceiptFor(ev), nil
}

// BalanceOf returns an account's balance; unknown accounts hold zero.
func (s *Service) BalanceOf(ctx context.Context, account common.Address) (int64, error) {
	return BalanceTx(s.DB.WithContext(ctx), account)
}

// Allowance returns the remaining delegated spend for (owner, spender).
func (s *Service) Allowance(ctx context.Context, owner, spender common.Address) (int64, error) {
	return AllowanceTx(s.DB.WithContext(ctx), owner, spender)
}

// TotalSupply is the sum of all balances. Transfers conserve it; only mint
// increases it.
func (s *Service) TotalSupply(ctx context.Context) (int64, error) {
	var total int64
	err := s.DB.WithContext(ctx).Model(&models.TokenBalance{}).
		Select("COALESCE(SUM(balance), 0)").Scan(&total).Error
	return total, err
}
