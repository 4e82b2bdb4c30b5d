package token

import (
	"errors"

	"canopy-backend/internal/middleware"
	"canopy-backend/internal/pkg/response"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *Service
}

func statusFor(err error) int {
	if errors.Is(err, ErrUnauthorized) {
		return fiber.StatusForbidden
	}
	if errors.Is(err, ErrInvalidAmount) || errors.Is(err, ErrInvalidAddress) ||
		errors.Is(err, ErrInsufficientBalance) || errors.Is(err, ErrInsufficientAllowance) {
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// Meta GET /api/v1/token/meta
func (h *Handlers) Meta(c *fiber.Ctx) error {
	return response.Success(c, "Token metadata", fiber.Map{
		"name":     Name,
		"symbol":   Symbol,
		"decimals": Decimals,
	}, nil)
}

// Mint POST /api/v1/token/mint
func (h *Handlers) Mint(c *fiber.Ctx) error {
	var body struct {
		To     string `json:"to"`
		Amount int64  `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if !common.IsHexAddress(body.To) {
		return response.Error(c, "Invalid address format for to", fiber.StatusBadRequest, nil)
	}

	receipt, err := h.Service.Mint(c.Context(), middleware.GetCaller(c), common.HexToAddress(body.To), body.Amount)
	if err != nil {
		return response.Error(c, err.Error(), statusFor(err), nil)
	}
	return response.Success(c, "Tokens minted", receipt, nil)
}

// Transfer POST /api/v1/token/transfer
func (h *Handlers) Transfer(c *fiber.Ctx) error {
	var body struct {
		To     string `json:"to"`
		Amount int64  `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if !common.IsHexAddress(body.To) {
		return response.Error(c, "Invalid address format for to", fiber.StatusBadRequest, nil)
	}

	receipt, err := h.Service.Transfer(c.Context(), middleware.GetCaller(c), common.HexToAddress(body.To), body.Amount)
	if err != nil {
		return response.Error(c, err.Error(), statusFor(err), nil)
	}
	return response.Success(c, "Transfer complete", receipt, nil)
}

// Approve POST /api/v1/token/approve
func (h *Handlers) Approve(c *fiber.Ctx) error {
	var body struct {
		Spender string `json:"spender"`
		Amount  int64  `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if !common.IsHexAddress(body.Spender) {
		return response.Error(c, "Invalid address format for spender", fiber.StatusBadRequest, nil)
	}

	receipt, err := h.Service.Approve(c.Context(), middleware.GetCaller(c), common.HexToAddress(body.Spender), body.Amount)
	if err != nil {
		return response.Error(c, err.Error(), statusFor(err), nil)
	}
	return response.Success(c, "Allowance set", receipt, nil)
}

// TransferFrom POST /api/v1/token/transfer-from
func (h *Handlers) TransferFrom(c *fiber.Ctx) error {
	var body struct {
		Owner  string `json:"owner"`
		To     string `json:"to"`
		Amount int64  `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if !common.IsHexAddress(body.Owner) {
		return response.Error(c, "Invalid address format for owner", fiber.StatusBadRequest, nil)
	}
	if !common.IsHexAddress(body.To) {
		return response.Error(c, "Invalid address format for to", fiber.StatusBadRequest, nil)
	}

	receipt, err := h.Service.TransferFrom(c.Context(), middleware.GetCaller(c),
		common.HexToAddress(body.Owner), common.HexToAddress(body.To), body.Amount)
	if err != nil {
		return response.Error(c, err.Error(), statusFor(err), nil)
	}
	return response.Success(c, "Transfer complete", receipt, nil)
}

// BalanceOf GET /api/v1/token/balance/:address
func (h *Handlers) BalanceOf(c *fiber.Ctx) error {
	raw := c.Params("address")
	if !common.IsHexAddress(raw) {
		return response.Error(c, "Invalid address", fiber.StatusBadRequest, nil)
	}
	balance, err := h.Service.BalanceOf(c.Context(), common.HexToAddress(raw))
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Token balance", fiber.Map{"balance": balance}, nil)
}

// Allowance GET /api/v1/token/allowance?owner=&spender=
func (h *Handlers) Allowance(c *fiber.Ctx) error {
	owner := c.Query("owner")
	spender := c.Query("spender")
	if !common.IsHexAddress(owner) || !common.IsHexAddress(spender) {
		return response.Error(c, "Invalid owner or spender address", fiber.StatusBadRequest, nil)
	}
	amount, err := h.Service.Allowance(c.Context(), common.HexToAddress(owner), common.HexToAddress(spender))
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Allowance", fiber.Map{"allowance": amount}, nil)
}
