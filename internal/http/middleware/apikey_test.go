package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizmetrics/internal/config"
)

func TestSecureCompare(t *testing.T) {
	assert.True(t, secureCompare("secret", "secret"))
	assert.False(t, secureCompare("secret", "Secret"))
	assert.False(t, secureCompare("secret", "secret2"))
	assert.False(t, secureCompare("", "secret"))
	assert.True(t, secureCompare("", ""))
}

func TestAdminAPIKeyAuth(t *testing.T) {
	cfg := &config.Config{AdminAPIKey: "test-key"}

	app := fiber.New()
	app.Get("/protected", AdminAPIKeyAuth(cfg), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	testCases := []struct {
		name     string
		key      string
		expected int
	}{
		{"missing key", "", fiber.StatusUnauthorized},
		{"wrong key", "other-key", fiber.StatusUnauthorized},
		{"correct key", "test-key", fiber.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
			if tc.key != "" {
				req.Header.Set("x-api-key", tc.key)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, resp.StatusCode)
		})
	}
}
