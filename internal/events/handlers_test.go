package events

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"canopy-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEventHandlersTest(t *testing.T) (*fiber.App, *Service) {
	s := setupEventsTest(t)
	h := &Handlers{Service: s}

	app := fiber.New()
	app.Get("/api/v1/events", h.GetEvents)
	app.Get("/api/v1/events/:txHash", h.GetEventByTxHash)
	return app, s
}

func TestGetEventsHandler(t *testing.T) {
	app, s := setupEventHandlersTest(t)

	appendEvent(t, s, models.EventProjectCreated, map[string]interface{}{"id": 0})
	appendEvent(t, s, models.EventCreditTraded, map[string]interface{}{"n": 1})
	appendEvent(t, s, models.EventCreditRetired, map[string]interface{}{"n": 2})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/events", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "success", result["status"])
	assert.Len(t, result["data"], 3)
	meta := result["metadata"].(map[string]interface{})
	assert.Equal(t, float64(3), meta["count"])
}

func TestGetEventsHandler_Filters(t *testing.T) {
	app, s := setupEventHandlersTest(t)

	appendEvent(t, s, models.EventProjectCreated, map[string]interface{}{"id": 0})
	appendEvent(t, s, models.EventCreditTraded, map[string]interface{}{"n": 1})
	appendEvent(t, s, models.EventCreditTraded, map[string]interface{}{"n": 2})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/events?type=CreditTraded&from=3", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	data := result["data"].([]interface{})
	require.Len(t, data, 1)
	ev := data[0].(map[string]interface{})
	assert.Equal(t, models.EventCreditTraded, ev["type"])
	assert.Equal(t, float64(3), ev["sequence"])
}

func TestGetEventsHandler_BadBounds(t *testing.T) {
	app, _ := setupEventHandlersTest(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/events?from=abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetEventByTxHashHandler(t *testing.T) {
	app, s := setupEventHandlersTest(t)

	ev := appendEvent(t, s, models.EventProjectCreated, map[string]interface{}{"id": 0})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/events/"+ev.TxHash, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	got := result["data"].(map[string]interface{})
	assert.Equal(t, ev.TxHash, got["tx_hash"])
}

func TestGetEventByTxHashHandler_NotFound(t *testing.T) {
	app, _ := setupEventHandlersTest(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/events/0xdeadbeef", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
