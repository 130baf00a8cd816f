package http

import (
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method, route string
	status        int
}

type observerStub struct {
	mu   sync.Mutex
	seen []recordedRequest
}

func (o *observerStub) HTTPRequest(method, route string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, recordedRequest{method, route, status})
}

func TestRequestTimeout_AplicaDeadline(t *testing.T) {
	app := fiber.New()
	app.Use(RequestTimeout(time.Second))
	app.Get("/x", func(c *fiber.Ctx) error {
		_, ok := c.UserContext().Deadline()
		return c.JSON(fiber.Map{"deadline": ok})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/x", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body["deadline"])
}

func TestObserveRequests_UsaPlantillaDeRuta(t *testing.T) {
	obs := &observerStub{}
	app := fiber.New()
	app.Use(ObserveRequests(obs))
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusTeapot).SendString(c.Params("id"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/items/42", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()

	require.Len(t, obs.seen, 1)
	assert.Equal(t, recordedRequest{"GET", "/items/:id", fiber.StatusTeapot}, obs.seen[0])
}

func TestRateLimit_Responde429(t *testing.T) {
	app := fiber.New()
	app.Post("/w", RateLimit(NewWriteLimiter(0.001, 2)), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/w", nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{fiber.StatusCreated, fiber.StatusCreated, fiber.StatusTooManyRequests}, codes)
}

func TestNewWriteLimiter_Deshabilitado(t *testing.T) {
	assert.Nil(t, NewWriteLimiter(0, 10))
}
