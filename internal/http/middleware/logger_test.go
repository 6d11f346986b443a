package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_EmitsRouteTemplate(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	app := fiber.New()
	app.Use(Logger(zap.New(core)))
	app.Get("/:code", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/abc123", nil)
	req.Header.Set(fiber.HeaderReferer, "https://social.example.com")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	entries := logs.All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, "/abc123", fields["path"])
	assert.Equal(t, "/:code", fields["route"], "route template groups all short codes")
	assert.Equal(t, "https://social.example.com", fields["referer"])
	assert.EqualValues(t, fiber.StatusOK, fields["status"])
}
