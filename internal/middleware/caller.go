package middleware

import (
	"canopy-backend/internal/pkg/response"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
)

// CallerHeader carries the address submitting a write. The front-end adapter
// signs transactions out of band; by the time a write is admitted here its
// caller identity is established, so the header is trusted as-is.
const CallerHeader = "X-Caller-Address"

const callerLocal = "caller_address"

// RequireCaller validates the caller address header and stores the parsed
// address in Locals. Writes without a valid caller are rejected before any
// service code runs.
func RequireCaller() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(CallerHeader)
		if raw == "" {
			return response.Error(c, "Missing "+CallerHeader+" header", fiber.StatusBadRequest, nil)
		}
		if !common.IsHexAddress(raw) {
			return response.Error(c, "Invalid caller address", fiber.StatusBadRequest, nil)
		}
		c.Locals(callerLocal, common.HexToAddress(raw))
		return c.Next()
	}
}

// GetCaller returns the caller address stored by RequireCaller.
func GetCaller(c *fiber.Ctx) common.Address {
	if addr, ok := c.Locals(callerLocal).(common.Address); ok {
		return addr
	}
	return common.Address{}
}
