package server_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"lakehouse-utils/core/server"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp_ErrorHandler(t *testing.T) {
	app := server.NewApp(server.Config{})
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return io.ErrUnexpectedEOF
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/teapot", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"error":"short and stout"}`, string(body))

	resp, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestNewApp_JSON(t *testing.T) {
	app := server.NewApp(server.Config{})
	app.Get("/json", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"n": 1})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/json", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"n":1}`, string(body))
}
