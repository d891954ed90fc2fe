package organization

import (
	"go-pms/internal/middleware"
	"go-pms/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

type OrganizationController struct {
	Service OrganizationService
}

func NewOrganizationController(service OrganizationService) *OrganizationController {
	return &OrganizationController{
		Service: service,
	}
}

// CreateOrganization godoc
// @Summary Create organization
// @Tags organizations
// @Accept json
// @Produce json
// @Param organization body Organization true "Organization Details"
// @Success 201 {object} map[string]interface{}
// @Router /api/organizations [post]
func (ctrl *OrganizationController) CreateOrganization(c *fiber.Ctx) error {
	var org Organization
	if err := c.BodyParser(&org); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	created, err := ctrl.Service.CreateOrganization(c.UserContext(), middleware.AccessFrom(c), &org)
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Organization created successfully",
		"data":    created,
	})
}

// GetOrganization godoc
// @Summary Get organization
// @Tags organizations
// @Produce json
// @Param id path string true "Organization ID"
// @Success 200 {object} Organization
// @Router /api/organizations/{id} [get]
func (ctrl *OrganizationController) GetOrganization(c *fiber.Ctx) error {
	org, err := ctrl.Service.GetOrganization(c.UserContext(), middleware.AccessFrom(c), c.Params("id"))
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(org)
}

// ListOrganizations godoc
// @Summary List organizations
// @Tags organizations
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/organizations [get]
func (ctrl *OrganizationController) ListOrganizations(c *fiber.Ctx) error {
	orgs, err := ctrl.Service.ListOrganizations(c.UserContext(), middleware.AccessFrom(c))
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"data": orgs})
}

// UpdateStatus godoc
// @Summary Update organization status
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/organizations/{id}/status [put]
func (ctrl *OrganizationController) UpdateStatus(c *fiber.Ctx) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Service.UpdateStatus(c.UserContext(), middleware.AccessFrom(c), c.Params("id"), body.Status); err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Organization status updated"})
}
