package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carbonledger/internal/types"
)

// CurrentAPIVersion is assumed when the client sends no X-Api-Version.
const CurrentAPIVersion = "1.0.0"

// VersionMiddleware parses the X-Api-Version header, stores it in context
// and echoes the served version. Only major version 1 is served.
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := c.Get("X-Api-Version", CurrentAPIVersion)

		switch strings.Count(version, ".") {
		case 0:
			version += ".0.0"
		case 1:
			version += ".0"
		}

		if major, _, _ := strings.Cut(version, "."); major != "1" {
			return &types.CustomError{
				Code:    fiber.StatusBadRequest,
				Message: "unsupported API version " + c.Get("X-Api-Version"),
				Type:    "version",
			}
		}

		c.Locals("apiVersion", version)
		c.Set("X-Api-Version", CurrentAPIVersion)

		return c.Next()
	}
}

// APIVersion returns the version negotiated by VersionMiddleware.
func APIVersion(c *fiber.Ctx) string {
	if v, ok := c.Locals("apiVersion").(string); ok {
		return v
	}
	return CurrentAPIVersion
}
