package ledger

import "errors"

// Failure reasons mirror the revert messages of the original contract so the
// front-end can surface them to the user unchanged.
var (
	ErrUnauthorized              = errors.New("Caller is not the contract owner")
	ErrInvalidAmount             = errors.New("Amount must be greater than zero")
	ErrInvalidAddress            = errors.New("Invalid address to mint to")
	ErrSelfTrade                 = errors.New("Buyer cannot be the seller")
	ErrInsufficientSellerBalance = errors.New("Seller has insufficient balance")
	ErrInsufficientBuyerBalance  = errors.New("Buyer has insufficient USDC balance")
	ErrInsufficientAllowance     = errors.New("Check USDC allowance for buyer")
	ErrMissingOperatorApproval   = errors.New("Seller has not approved the ledger as operator")
	ErrInsufficientBalance       = errors.New("Insufficient credit balance")
	ErrProjectNotFound           = errors.New("Project not found")
)
