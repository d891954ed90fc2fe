package permission

import (
	"go-pms/internal/config"
	"go-pms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PermissionApi struct {
	controller *PermissionController
	config     *config.Config
}

func NewPermissionApi(controller *PermissionController, config *config.Config) *PermissionApi {
	return &PermissionApi{
		controller: controller,
		config:     config,
	}
}

func (h *PermissionApi) Setup(app *fiber.App) {
	perms := app.Group("/api/permissions", middleware.AuthMiddleware(h.config.SkipAuth))

	perms.Get("/roles", h.controller.ListRoles)
	perms.Get("/roles/:role", h.controller.GetRolePermissions)
}
