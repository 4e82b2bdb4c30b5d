package events

import (
	"strconv"
	"strings"

	"canopy-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Handlers struct {
	Service *Service
}

// GetEvents GET /api/v1/events?from=&to=&type=
// from/to are inclusive sequence bounds; type is a comma-separated filter.
func (h *Handlers) GetEvents(c *fiber.Ctx) error {
	var from, to uint64
	var err error
	if raw := c.Query("from"); raw != "" {
		from, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return response.Error(c, "Invalid from sequence", fiber.StatusBadRequest, nil)
		}
	}
	if raw := c.Query("to"); raw != "" {
		to, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return response.Error(c, "Invalid to sequence", fiber.StatusBadRequest, nil)
		}
	}

	var types []string
	if raw := c.Query("type"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
	}

	evs, err := h.Service.Range(c.Context(), from, to, types)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Ledger events", evs, fiber.Map{"count": len(evs)})
}

// GetEventByTxHash GET /api/v1/events/:txHash
func (h *Handlers) GetEventByTxHash(c *fiber.Ctx) error {
	txHash := c.Params("txHash")
	ev, err := h.Service.ByTxHash(c.Context(), txHash)
	if err == gorm.ErrRecordNotFound {
		return response.Error(c, "Event not found", fiber.StatusNotFound, nil)
	}
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Ledger event", ev, nil)
}
