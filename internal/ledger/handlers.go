package ledger

import (
	"errors"
	"strconv"

	"canopy-backend/internal/middleware"
	"canopy-backend/internal/pkg/response"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *Service
	ChainID int64
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, ErrProjectNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidAddress),
		errors.Is(err, ErrSelfTrade), errors.Is(err, ErrInsufficientSellerBalance),
		errors.Is(err, ErrInsufficientBuyerBalance), errors.Is(err, ErrInsufficientAllowance),
		errors.Is(err, ErrMissingOperatorApproval), errors.Is(err, ErrInsufficientBalance):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// Meta serves GET /api/v1/ledger/meta. Clients read the ledger's operator
// address here before issuing approvals.
func (h *Handlers) Meta(c *fiber.Ctx) error {
	nextID, err := h.Service.NextProjectID(c.Context())
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Ledger metadata", fiber.Map{
		"address":         Address().Hex(),
		"fee_percent":     h.Service.FeePercent,
		"chain_id":        h.ChainID,
		"next_project_id": nextID,
	}, nil)
}

// MintNewProject POST /api/v1/ledger/mint-new-project
func (h *Handlers) MintNewProject(c *fiber.Ctx) error {
	var body struct {
		Name          string `json:"name"`
		Location      string `json:"location"`
		InitialSupply int64  `json:"initial_supply"`
		Recipient     string `json:"recipient"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if body.Recipient != "" && !common.IsHexAddress(body.Recipient) {
		return response.Error(c, "Invalid address format for recipient", fiber.StatusBadRequest, nil)
	}

	project, receipt, err := h.Service.MintNewProject(c.Context(), middleware.GetCaller(c),
		body.Name, body.Location, body.InitialSupply, common.HexToAddress(body.Recipient))
	if err != nil {
		return response.Error(c, err.Error(), statusFor(err), nil)
	}
	return response.SuccessCreated(c, "Project created", fiber.Map{
		"project": project,
		"receipt": receipt,
	}, nil)
}

// BuyCredits POST /api/v1/ledger/buy-credits
func (h *Handlers) BuyCredits(c *fiber.Ctx) error {
	var body struct {
		ProjectID    *int64 `json:"project_id"`
		Amount       int64  `json:"amount"`
		PricePerUnit int64  `json:"price_per_unit"`
		Seller       string `json:"seller"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if body.ProjectID == nil || body.Seller == "" {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if !common.IsHexAddress(body.Seller) {
		return response.Error(c, "Invalid address format for seller", fiber.StatusBadRequest, nil)
	}

	receipt, err := h.Service.BuyCredits(c.Context(), middleware.GetCaller(c),
		*body.ProjectID, body.Amount, body.PricePerUnit, common.HexToAddress(body.Seller))
	if err != nil {
		return response.Error(c, err.Error(), statusFor(err), nil)
	}
	return response.Success(c, "Credits purchased", receipt, nil)
}

// RetireCredits POST /api/v1/ledger/retire-credits
func (h *Handlers) RetireCredits(c *fiber.Ctx) error {
	var body struct {
		ProjectID *int64 `json:"project_id"`
		Amount    int64  `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if body.ProjectID == nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}

	receipt, err := h.Service.RetireCredits(c.Context(), middleware.GetCaller(c), *body.ProjectID, body.Amount)
	if err != nil {
		return response.Error(c, err.Error(), statusFor(err), nil)
	}
	return response.Success(c, "Credits retired", receipt, nil)
}

// SetApprovalForAll POST /api/v1/ledger/set-approval-for-all
func (h *Handlers) SetApprovalForAll(c *fiber.Ctx) error {
	var body struct {
		Operator string `json:"operator"`
		Approved *bool  `json:"approved"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if body.Approved == nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	if !common.IsHexAddress(body.Operator) {
		return response.Error(c, "Invalid address format for operator", fiber.StatusBadRequest, nil)
	}

	receipt, err := h.Service.SetApprovalForAll(c.Context(), middleware.GetCaller(c),
		common.HexToAddress(body.Operator), *body.Approved)
	if err != nil {
		return response.Error(c, err.Error(), statusFor(err), nil)
	}
	return response.Success(c, "Operator approval set", receipt, nil)
}

// IsApprovedForAll GET /api/v1/ledger/is-approved-for-all?owner=&operator=
func (h *Handlers) IsApprovedForAll(c *fiber.Ctx) error {
	owner := c.Query("owner")
	operator := c.Query("operator")
	if !common.IsHexAddress(owner) || !common.IsHexAddress(operator) {
		return response.Error(c, "Invalid owner or operator address", fiber.StatusBadRequest, nil)
	}
	approved, err := h.Service.IsApprovedForAll(c.Context(), common.HexToAddress(owner), common.HexToAddress(operator))
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Operator approval", fiber.Map{"approved": approved}, nil)
}

// BalanceOf GET /api/v1/ledger/balance/:address/:projectId
func (h *Handlers) BalanceOf(c *fiber.Ctx) error {
	raw := c.Params("address")
	if !common.IsHexAddress(raw) {
		return response.Error(c, "Invalid address", fiber.StatusBadRequest, nil)
	}
	projectID, err := strconv.ParseInt(c.Params("projectId"), 10, 64)
	if err != nil || projectID < 0 {
		return response.Error(c, "Invalid project id", fiber.StatusBadRequest, nil)
	}
	balance, err := h.Service.BalanceOf(c.Context(), common.HexToAddress(raw), projectID)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Credit balance", fiber.Map{"balance": balance}, nil)
}

// ProjectInfo GET /api/v1/ledger/project/:projectId
func (h *Handlers) ProjectInfo(c *fiber.Ctx) error {
	projectID, err := strconv.ParseInt(c.Params("projectId"), 10, 64)
	if err != nil || projectID < 0 {
		return response.Error(c, "Invalid project id", fiber.StatusBadRequest, nil)
	}
	info, err := h.Service.ProjectInfo(c.Context(), projectID)
	if err != nil {
		return response.Error(c, err.Error(), statusFor(err), nil)
	}
	retired, err := h.Service.RetiredSupply(c.Context(), projectID)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Project info", fiber.Map{
		"project": info,
		"retired": retired,
	}, nil)
}

// NextProjectID GET /api/v1/ledger/next-project-id
func (h *Handlers) NextProjectID(c *fiber.Ctx) error {
	nextID, err := h.Service.NextProjectID(c.Context())
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Next project id", fiber.Map{"next_project_id": nextID}, nil)
}

// URI GET /api/v1/ledger/uri/:projectId
func (h *Handlers) URI(c *fiber.Ctx) error {
	projectID, err := strconv.ParseInt(c.Params("projectId"), 10, 64)
	if err != nil || projectID < 0 {
		return response.Error(c, "Invalid project id", fiber.StatusBadRequest, nil)
	}
	return response.Success(c, "Metadata URI", fiber.Map{"uri": h.Service.URI(projectID)}, nil)
}
