/**
 * @description
 * Admin authentication middleware using JWTs validated against a JWKS.
 * Protects the mutating admin endpoints (manual refresh, cache clear).
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2: HTTP Context
 * - github.com/golang-jwt/jwt/v5: JWT parsing
 * - github.com/MicahParks/keyfunc/v2: JWKS fetching and caching
 *
 * @notes
 * - Requires ADMIN_JWKS_URL to be set in configuration.
 * - Caches JWKS keys to prevent excessive network calls.
 */

package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/belanja-project/backend/internal/config"
	"github.com/belanja-project/backend/internal/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AdminAuthConfig holds the JWKS function
type AdminAuthConfig struct {
	JWKS *keyfunc.JWKS
}

var mwConfig *AdminAuthConfig

// InitAdminAuth initializes the JWKS cache. Should be called at startup.
func InitAdminAuth(cfg *config.Config) error {
	if cfg.Services.AdminJWKSURL == "" {
		// Dev/test setups may run without admin auth; protected routes then reject.
		logger.Info("⚠️ Warning: ADMIN_JWKS_URL is empty. Admin routes will reject all requests.")
		return nil
	}

	jwks, err := keyfunc.Get(cfg.Services.AdminJWKSURL, keyfunc.Options{
		RefreshInterval: time.Hour,
		RefreshErrorHandler: func(err error) {
			logger.Error("There was an error with the JWKS refresh: %v", err)
		},
	})
	if err != nil {
		return err
	}

	mwConfig = &AdminAuthConfig{
		JWKS: jwks,
	}
	logger.Info("✅ Admin auth initialized with JWKS")
	return nil
}

// AdminProtected protects admin routes requiring authentication
func AdminProtected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if mwConfig == nil || mwConfig.JWKS == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Admin auth not configured",
			})
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization header"})
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token format"})
		}

		token, err := jwt.Parse(tokenString, mwConfig.JWKS.Keyfunc)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token: " + err.Error()})
		}
		if !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
		}

		sub, ok := claims["sub"].(string)
		if !ok || sub == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing subject"})
		}

		c.Locals("admin_id", sub)

		return c.Next()
	}
}

// GetAdminID returns the authenticated admin's subject from context
func GetAdminID(c *fiber.Ctx) (string, error) {
	id, ok := c.Locals("admin_id").(string)
	if !ok {
		return "", errors.New("admin id not found in context")
	}
	return id, nil
}
