package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/callguard/internal/domain"
)

// LocalClientKey is the key to retrieve the caller fingerprint from context
const LocalClientKey = "client_key"

// Auth creates an authentication middleware for a single static API key
func Auth(apiKey string) fiber.Handler {
	expected := sha256.Sum256([]byte(apiKey))

	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" || apiKey == "" {
			return domain.ErrUnauthorized
		}

		// compare digests so the check takes constant time regardless of length
		got := sha256.Sum256([]byte(token))
		if subtle.ConstantTimeCompare(got[:], expected[:]) != 1 {
			return domain.ErrUnauthorized
		}

		c.Locals(LocalClientKey, clientKey(token, c.IP()))

		return c.Next()
	}
}

// extractBearerToken extracts token from Authorization header
func extractBearerToken(c *fiber.Ctx) string {
	auth := c.Get("Authorization")
	if auth == "" {
		return ""
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// clientKey identifies a caller for rate limiting without keeping the key itself
func clientKey(token, ip string) string {
	hash := sha256.Sum256([]byte(token + "|" + ip))
	return hex.EncodeToString(hash[:8])
}
