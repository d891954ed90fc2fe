package middleware

import (
	"context"

	"go-pms/internal/common/models"
	"go-pms/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// AccessContextBuilder loads a user's role, organization, permission
// snapshot and property assignments. Implemented by the user service;
// declared here to avoid a middleware → feature dependency.
type AccessContextBuilder interface {
	BuildAccessContext(ctx context.Context, userID string) (*models.AccessContext, error)
}

// AccessContextMiddleware turns authenticated claims into the explicit
// request-scoped AccessContext every service call takes. Runs after
// AuthMiddleware.
func AccessContextMiddleware(builder AccessContextBuilder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		// Dev bypass injected by AuthMiddleware(skipAuth)
		if claims.UserID == "dev-admin-id" {
			c.Locals(string(models.AccessContextKey), &models.AccessContext{RoleID: claims.RoleID})
			return c.Next()
		}

		actx, err := builder.BuildAccessContext(c.UserContext(), claims.UserID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unable to resolve user context",
			})
		}

		c.Locals(string(models.AccessContextKey), actx)
		return c.Next()
	}
}

// AccessFrom returns the AccessContext injected by AccessContextMiddleware,
// or nil when the request never passed through it.
func AccessFrom(c *fiber.Ctx) *models.AccessContext {
	actx, _ := c.Locals(string(models.AccessContextKey)).(*models.AccessContext)
	return actx
}
