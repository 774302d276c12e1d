package middleware

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLimitedApp(rl *RateLimiter) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(testLogger())})
	app.Use(rl.Handler())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	return app
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows requests within limit", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{
			Max:          5,
			Window:       time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string { return "client-a" },
		})
		defer rl.Stop()
		app := newLimitedApp(rl)

		for i := 0; i < 5; i++ {
			resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, "OK", string(body))
		}
	})

	t.Run("blocks requests over limit", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{
			Max:          2,
			Window:       time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string { return "client-a" },
		})
		defer rl.Stop()
		app := newLimitedApp(rl)

		for i := 0; i < 2; i++ {
			resp, _ := app.Test(httptest.NewRequest("GET", "/test", nil))
			assert.Equal(t, 200, resp.StatusCode)
		}

		resp, _ := app.Test(httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, 429, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("Retry-After"))

		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "RATE_LIMIT_EXCEEDED")
	})

	t.Run("different clients have separate limits", func(t *testing.T) {
		var current string
		rl := NewRateLimiter(RateLimiterConfig{
			Max:          2,
			Window:       time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string { return current },
		})
		defer rl.Stop()
		app := newLimitedApp(rl)

		current = "client-a"
		for i := 0; i < 2; i++ {
			resp, _ := app.Test(httptest.NewRequest("GET", "/test", nil))
			assert.Equal(t, 200, resp.StatusCode)
		}

		resp, _ := app.Test(httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, 429, resp.StatusCode)

		current = "client-b"
		resp, _ = app.Test(httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("window resets", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{
			Max:          1,
			Window:       50 * time.Millisecond,
			KeyGenerator: func(c *fiber.Ctx) string { return "client-a" },
		})
		defer rl.Stop()
		app := newLimitedApp(rl)

		resp, _ := app.Test(httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, 200, resp.StatusCode)
		resp, _ = app.Test(httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, 429, resp.StatusCode)

		time.Sleep(80 * time.Millisecond)

		resp, _ = app.Test(httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("rate limit headers are set", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{
			Max:          10,
			Window:       time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string { return "client-a" },
		})
		defer rl.Stop()
		app := newLimitedApp(rl)

		resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
		require.NoError(t, err)

		assert.Equal(t, "10", resp.Header.Get("X-RateLimit-Limit"))
		assert.Equal(t, "9", resp.Header.Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Reset"))
	})

	t.Run("requests without a client key pass", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{Max: 1})
		defer rl.Stop()
		app := newLimitedApp(rl)

		for i := 0; i < 3; i++ {
			resp, _ := app.Test(httptest.NewRequest("GET", "/test", nil))
			assert.Equal(t, 200, resp.StatusCode)
		}
	})
}

func TestRateLimiter_Stop(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimiterConfig())

	assert.NotPanics(t, func() {
		rl.Stop()
		rl.Stop()
	})
}

func TestRecover(t *testing.T) {
	app := fiber.New()
	app.Use(Recover(testLogger()))
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/panic", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INTERNAL_ERROR")
}
