package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/chamados-service/internal/api/dto"
	"github.com/spec-kit/chamados-service/internal/api/http/handlers"
	"github.com/spec-kit/chamados-service/internal/config"
	"github.com/spec-kit/chamados-service/internal/events"
	"github.com/spec-kit/chamados-service/internal/observability"
	"github.com/spec-kit/chamados-service/internal/persistence"
	"github.com/spec-kit/chamados-service/internal/repository"
	"github.com/spec-kit/chamados-service/internal/service"
)

func setupTestApp(t *testing.T, seed bool) *fiber.App {
	t.Helper()

	store, err := persistence.Open(t.Context(), config.SQLiteConfig{
		Path:          filepath.Join(t.TempDir(), "test.db"),
		RunMigrations: true,
		Seed:          seed,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(store.Close)

	metrics := observability.NewMetrics()
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: repository.NewTicketRepository(store.DB()),
		Dispatcher: events.NewInMemoryDispatcher(),
	})

	app := fiber.New()
	RegisterMiddlewares(app, MiddlewareConfig{
		Logger:       zap.NewNop(),
		Metrics:      metrics,
		Timeout:      5 * time.Second,
		AllowOrigins: "*",
	})
	RegisterRoutes(app, RouteConfig{
		Health:  handlers.NewHealthHandler("chamados-service", "test", store, metrics),
		Tickets: handlers.NewTicketsHandler(ticketService),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, payload
}

func decodeTicket(t *testing.T, payload []byte) dto.TicketResponse {
	t.Helper()
	var ticket dto.TicketResponse
	require.NoError(t, json.Unmarshal(payload, &ticket))
	return ticket
}

func TestTicketLifecycle(t *testing.T) {
	app := setupTestApp(t, false)

	resp, payload := doJSON(t, app, http.MethodPost, "/tickets", map[string]string{
		"title":       "Wi-Fi issue",
		"description": "Connection drops",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decodeTicket(t, payload)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Open", string(created.Status))
	assert.Equal(t, "Medium", string(created.Priority))
	_, err := time.Parse(time.RFC3339, created.OpenedAt)
	assert.NoError(t, err)

	resp, payload = doJSON(t, app, http.MethodPut, fmt.Sprintf("/tickets/%d", created.ID), map[string]string{
		"status": "In Progress",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	updated := decodeTicket(t, payload)
	assert.Equal(t, "In Progress", string(updated.Status))
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.OpenedAt, updated.OpenedAt)

	resp, payload = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/tickets/%d", created.ID), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, payload)

	resp, payload = doJSON(t, app, http.MethodGet, fmt.Sprintf("/tickets/%d", created.ID), nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var errBody map[string]string
	require.NoError(t, json.Unmarshal(payload, &errBody))
	assert.NotEmpty(t, errBody["message"])
}

func TestListTickets_SeededStore(t *testing.T) {
	app := setupTestApp(t, true)

	resp, payload := doJSON(t, app, http.MethodGet, "/tickets", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tickets []dto.TicketResponse
	require.NoError(t, json.Unmarshal(payload, &tickets))
	require.Len(t, tickets, 2)
	assert.Equal(t, "Wi-Fi problem", tickets[0].Title)
	assert.Equal(t, "Office license request", tickets[1].Title)
}

func TestListTickets_EmptyStore(t *testing.T) {
	app := setupTestApp(t, false)

	resp, payload := doJSON(t, app, http.MethodGet, "/tickets", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, "[]", string(payload))
}

func TestCreateTicket_MissingFields(t *testing.T) {
	app := setupTestApp(t, false)

	resp, payload := doJSON(t, app, http.MethodPost, "/tickets", map[string]string{
		"description": "no title here",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errBody map[string]string
	require.NoError(t, json.Unmarshal(payload, &errBody))
	assert.Contains(t, errBody["message"], "title")
}

func TestCreateTicket_UnknownEnumValue(t *testing.T) {
	app := setupTestApp(t, false)

	resp, _ := doJSON(t, app, http.MethodPost, "/tickets", map[string]string{
		"title":       "t",
		"description": "d",
		"priority":    "Urgent",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateTicket_EmptyBody(t *testing.T) {
	app := setupTestApp(t, false)

	_, payload := doJSON(t, app, http.MethodPost, "/tickets", map[string]string{
		"title":       "t",
		"description": "d",
	})
	created := decodeTicket(t, payload)

	resp, _ := doJSON(t, app, http.MethodPut, fmt.Sprintf("/tickets/%d", created.ID), map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateTicket_NotFound(t *testing.T) {
	app := setupTestApp(t, false)

	resp, _ := doJSON(t, app, http.MethodPut, "/tickets/999", map[string]string{"status": "Closed"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteTicket_NotFound(t *testing.T) {
	app := setupTestApp(t, false)

	resp, _ := doJSON(t, app, http.MethodDelete, "/tickets/999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTicket_InvalidID(t *testing.T) {
	app := setupTestApp(t, false)

	resp, _ := doJSON(t, app, http.MethodGet, "/tickets/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	app := setupTestApp(t, false)

	resp, _ := doJSON(t, app, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, payload := doJSON(t, app, http.MethodGet, "/health/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var metrics map[string]map[string]int64
	require.NoError(t, json.Unmarshal(payload, &metrics))
	assert.Contains(t, metrics, "requests")
}

func TestRequestIDHeader(t *testing.T) {
	app := setupTestApp(t, false)

	resp, _ := doJSON(t, app, http.MethodGet, "/tickets", nil)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
