package ledger

import (
	"context"
	"math"

	"canopy-backend/internal/events"
	"canopy-backend/internal/models"
	"canopy-backend/internal/token"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ledgerAddress is the fixed identity the ledger itself acts under. Buyers
// grant it payment-token allowance and sellers grant it operator approval,
// exactly as they would approve the deployed contract address on chain.
var ledgerAddress = common.BytesToAddress(crypto.Keccak256([]byte("canopy/credit-ledger"))[12:])

// Address returns the ledger's operator/spender identity.
func Address() common.Address {
	return ledgerAddress
}

// Service implements the multi-asset credit ledger: project issuance, the
// buy/settle/fee-split protocol, retirement and operator approvals. Every
// write runs in one transaction and appends its event inside that
// transaction, so a failed precondition leaves no partial effect.
type Service struct {
	DB     *gorm.DB
	Events *events.Service

	// FeePercent is the integer trade fee percentage, fixed at creation.
	FeePercent int64

	// Admin is the issuance authority and fee receiver.
	Admin common.Address

	// MetadataURI is the constant metadata template returned for every id.
	MetadataURI string
}

// ProjectInfo is the read shape for one project.
type ProjectInfo struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	TotalTons int64  `json:"total_tons"`
}

type projectCreatedPayload struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Location      string `json:"location"`
	InitialSupply int64  `json:"initial_supply"`
}

type creditTradedPayload struct {
	ProjectID    int64  `json:"project_id"`
	Amount       int64  `json:"amount"`
	PricePerUnit int64  `json:"price_per_unit"`
	Seller       string `json:"seller"`
	Buyer        string `json:"buyer"`
}

type creditRetiredPayload struct {
	ProjectID int64  `json:"project_id"`
	Amount    int64  `json:"amount"`
	Owner     string `json:"owner"`
}

type approvalForAllPayload struct {
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

// MintNewProject creates the next sequential project and mints its entire
// initial supply to recipient. Admin only; a project is created once and
// never re-minted.
func (s *Service) MintNewProject(ctx context.Context, caller common.Address, name, location string, initialSupply int64, recipient common.Address) (*ProjectInfo, *events.Receipt, error) {
	if caller != s.Admin {
		return nil, nil, ErrUnauthorized
	}
	if initialSupply <= 0 {
		return nil, nil, ErrInvalidAmount
	}
	if recipient == (common.Address{}) {
		return nil, nil, ErrInvalidAddress
	}

	var project models.Project
	var ev *models.LedgerEvent
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Ids are sequential from 0 and rows are never deleted, so the row
		// count is the next id.
		var count int64
		if err := tx.Model(&models.Project{}).Count(&count).Error; err != nil {
			return err
		}

		project = models.Project{
			ID:        count,
			Name:      name,
			Location:  location,
			TotalTons: initialSupply,
		}
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		if err := addCreditsTx(tx, recipient, project.ID, initialSupply); err != nil {
			return err
		}

		var err error
		ev, err = s.Events.Append(tx, models.EventProjectCreated, &project.ID, projectCreatedPayload{
			ID:            project.ID,
			Name:          name,
			Location:      location,
			InitialSupply: initialSupply,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	s.Events.Publish(ctx, ev)
	info := &ProjectInfo{ID: project.ID, Name: project.Name, Location: project.Location, TotalTons: project.TotalTons}
	return info, events.ReceiptFor(ev), nil
}

// BuyCredits atomically settles a trade: the buyer pays amount*pricePerUnit
// through their allowance, the seller receives the proceeds less the fee, the
// admin receives the fee, and the credits move from seller to buyer.
//
// Preconditions are checked in a fixed order before any mutation; the order
// is part of the observable contract.
func (s *Service) BuyCredits(ctx context.Context, caller common.Address, projectID, amount, pricePerUnit int64, seller common.Address) (*events.Receipt, error) {
	if amount <= 0 || pricePerUnit < 0 {
		return nil, ErrInvalidAmount
	}
	if caller == seller {
		return nil, ErrSelfTrade
	}

	// The settlement arithmetic must not wrap. The original contract runs on
	// checked uint256 math and reverts on overflow; here the same inputs are
	// rejected up front.
	if pricePerUnit != 0 && amount > math.MaxInt64/pricePerUnit {
		return nil, ErrInvalidAmount
	}
	totalCost := amount * pricePerUnit
	if s.FeePercent != 0 && totalCost > math.MaxInt64/s.FeePercent {
		return nil, ErrInvalidAmount
	}
	fee := totalCost * s.FeePercent / 100
	amountToSeller := totalCost - fee

	var ev *models.LedgerEvent
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sellerCredits, err := creditBalanceTx(tx, seller, projectID)
		if err != nil {
			return err
		}
		if sellerCredits < amount {
			return ErrInsufficientSellerBalance
		}

		buyerFunds, err := token.BalanceTx(tx, caller)
		if err != nil {
			return err
		}
		if buyerFunds < totalCost {
			return ErrInsufficientBuyerBalance
		}

		allowance, err := token.AllowanceTx(tx, caller, ledgerAddress)
		if err != nil {
			return err
		}
		if allowance < totalCost {
			return ErrInsufficientAllowance
		}

		approved, err := isApprovedTx(tx, seller, ledgerAddress)
		if err != nil {
			return err
		}
		if !approved {
			return ErrMissingOperatorApproval
		}

		// Settlement: pull payment from the buyer via the allowance, split
		// it between seller and fee receiver, then move the credits. The fee
		// rounding remainder stays with the seller.
		if err := token.SpendAllowanceTx(tx, caller, ledgerAddress, totalCost); err != nil {
			return err
		}
		if err := token.DebitTx(tx, caller, totalCost); err != nil {
			return err
		}
		if err := token.CreditTx(tx, seller, amountToSeller); err != nil {
			return err
		}
		if err := token.CreditTx(tx, s.Admin, fee); err != nil {
			return err
		}
		if err := subCreditsTx(tx, seller, projectID, amount); err != nil {
			return err
		}
		if err := addCreditsTx(tx, caller, projectID, amount); err != nil {
			return err
		}

		ev, err = s.Events.Append(tx, models.EventCreditTraded, &projectID, creditTradedPayload{
			ProjectID:    projectID,
			Amount:       amount,
			PricePerUnit: pricePerUnit,
			Seller:       models.AddressKey(seller),
			Buyer:        models.AddressKey(caller),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Events.Publish(ctx, ev)
	return events.ReceiptFor(ev), nil
}

// RetireCredits permanently burns amount of the caller's own holdings for a
// project. The project's total issuance record is unchanged; retirement only
// reduces circulating balance. There is no unretire.
func (s *Service) RetireCredits(ctx context.Context, caller common.Address, projectID, amount int64) (*events.Receipt, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var ev *models.LedgerEvent
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		balance, err := creditBalanceTx(tx, caller, projectID)
		if err != nil {
			return err
		}
		if balance < amount {
			return ErrInsufficientBalance
		}
		if err := subCreditsTx(tx, caller, projectID, amount); err != nil {
			return err
		}

		ev, err = s.Events.Append(tx, models.EventCreditRetired, &projectID, creditRetiredPayload{
			ProjectID: projectID,
			Amount:    amount,
			Owner:     models.AddressKey(caller),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Events.Publish(ctx, ev)
	return events.ReceiptFor(ev), nil
}

// SetApprovalForAll grants or revokes ledger-wide operator authority over all
// of the caller's credit balances. Each call overwrites the prior value for
// the (owner, operator) pair.
func (s *Service) SetApprovalForAll(ctx context.Context, caller, operator common.Address, approved bool) (*events.Receipt, error) {
	if operator == (common.Address{}) {
		return nil, ErrInvalidAddress
	}

	var ev *models.LedgerEvent
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.OperatorApproval{
			Owner:    models.AddressKey(caller),
			Operator: models.AddressKey(operator),
			Approved: approved,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner"}, {Name: "operator"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"approved": approved}),
		}).Create(&row).Error; err != nil {
			return err
		}

		var err error
		ev, err = s.Events.Append(tx, models.EventApprovalForAll, nil, approvalForAllPayload{
			Owner:    models.AddressKey(caller),
			Operator: models.AddressKey(operator),
			Approved: approved,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Events.Publish(ctx, ev)
	return events.ReceiptFor(ev), nil
}

// IsApprovedForAll reports whether operator holds standing authority over
// owner's credit balances.
func (s *Service) IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error) {
	return isApprovedTx(s.DB.WithContext(ctx), owner, operator)
}

// BalanceOf returns a holder's credit balance for one project; unknown
// (holder, project) pairs hold zero.
func (s *Service) BalanceOf(ctx context.Context, holder common.Address, projectID int64) (int64, error) {
	return creditBalanceTx(s.DB.WithContext(ctx), holder, projectID)
}

// ProjectInfo returns the stored metadata for one project.
func (s *Service) ProjectInfo(ctx context.Context, projectID int64) (*ProjectInfo, error) {
	var project models.Project
	err := s.DB.WithContext(ctx).Where("id = ?", projectID).First(&project).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ProjectInfo{ID: project.ID, Name: project.Name, Location: project.Location, TotalTons: project.TotalTons}, nil
}

// NextProjectID returns the id the next created project will receive.
func (s *Service) NextProjectID(ctx context.Context) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Project{}).Count(&count).Error
	return count, err
}

// URI returns the metadata URI template. It is the same for every project id
// in this version; the id parameter is accepted for interface parity.
func (s *Service) URI(projectID int64) string {
	_ = projectID
	return s.MetadataURI
}

// RetiredSupply returns the cumulative retired amount for a project:
// issuance minus circulating balance.
func (s *Service) RetiredSupply(ctx context.Context, projectID int64) (int64, error) {
	info, err := s.ProjectInfo(ctx, projectID)
	if err != nil {
		return 0, err
	}
	var circulating int64
	err = s.DB.WithContext(ctx).Model(&models.CreditBalance{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(SUM(balance), 0)").Scan(&circulating).Error
	if err != nil {
		return 0, err
	}
	return info.TotalTons - circulating, nil
}

func creditBalanceTx(tx *gorm.DB, holder common.Address, projectID int64) (int64, error) {
	var row models.CreditBalance
	err := tx.Where("holder = ? AND project_id = ?", models.AddressKey(holder), projectID).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.Balance, nil
}

func isApprovedTx(tx *gorm.DB, owner, operator common.Address) (bool, error) {
	var row models.OperatorApproval
	err := tx.Where("owner = ? AND operator = ?", models.AddressKey(owner), models.AddressKey(operator)).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return row.Approved, nil
}

func addCreditsTx(tx *gorm.DB, holder common.Address, projectID, amount int64) error {
	row := models.CreditBalance{Holder: models.AddressKey(holder), ProjectID: projectID, Balance: amount}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "holder"}, {Name: "project_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"balance": gorm.Expr("balance + ?", amount)}),
	}).Create(&row).Error
}

func subCreditsTx(tx *gorm.DB, holder common.Address, projectID, amount int64) error {
	var row models.CreditBalance
	err := tx.Where("holder = ? AND project_id = ?", models.AddressKey(holder), projectID).First(&row).Error
	if err == gorm.ErrRecordNotFound {
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
