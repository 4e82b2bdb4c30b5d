package token

import "errors"

var (
	ErrUnauthorized          = errors.New("Caller is not the token owner")
	ErrInvalidAmount         = errors.New("Amount must not be negative")
	ErrInvalidAddress        = errors.New("Invalid address")
	ErrInsufficientBalance   = errors.New("Insufficient balance")
	ErrInsufficientAllowance = errors.New("Insufficient allowance")
)
