package permission

import (
	"github.com/gofiber/fiber/v2"
)

type PermissionController struct {
	Registry *Registry
}

func NewPermissionController(registry *Registry) *PermissionController {
	return &PermissionController{
		Registry: registry,
	}
}

// ListRoles godoc
// @Summary List roles
// @Description List the role identifiers defined in the permission table
// @Tags permissions
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/permissions/roles [get]
func (ctrl *PermissionController) ListRoles(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version": ctrl.Registry.Version(),
		"roles":   ctrl.Registry.Roles(),
	})
}

// GetRolePermissions godoc
// @Summary Get role permissions
// @Description Get the permission set for a role
// @Tags permissions
// @Produce json
// @Param role path string true "Role ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/permissions/roles/{role} [get]
func (ctrl *PermissionController) GetRolePermissions(c *fiber.Ctx) error {
	roleID := c.Params("role")

	if !ctrl.Registry.KnownRole(roleID) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Unknown role",
		})
	}

	return c.JSON(fiber.Map{
		"role":        roleID,
		"permissions": ctrl.Registry.PermissionsFor(roleID),
	})
}
