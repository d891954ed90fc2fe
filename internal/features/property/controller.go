package property

import (
	"strconv"

	"go-pms/internal/middleware"
	"go-pms/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

type PropertyController struct {
	Service PropertyService
}

func NewPropertyController(service PropertyService) *PropertyController {
	return &PropertyController{
		Service: service,
	}
}

// CreateProperty godoc
// @Summary Create property
// @Description Create a building or land property
// @Tags properties
// @Accept json
// @Produce json
// @Success 201 {object} Property
// @Failure 400 {object} map[string]interface{}
// @Router /api/properties [post]
func (ctrl *PropertyController) CreateProperty(c *fiber.Ctx) error {
	var property Property
	if err := c.BodyParser(&property); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	created, err := ctrl.Service.CreateProperty(c.UserContext(), middleware.AccessFrom(c), &property)
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// ListProperties godoc
// @Summary List properties
// @Tags properties
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/properties [get]
func (ctrl *PropertyController) ListProperties(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	properties, total, err := ctrl.Service.ListProperties(c.UserContext(), middleware.AccessFrom(c), page, limit)
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"data":  properties,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetProperty godoc
// @Summary Get property
// @Tags properties
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} Property
// @Router /api/properties/{id} [get]
func (ctrl *PropertyController) GetProperty(c *fiber.Ctx) error {
	property, err := ctrl.Service.GetProperty(c.UserContext(), middleware.AccessFrom(c), c.Params("id"))
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(property)
}

// UpdateProperty godoc
// @Summary Update property
// @Description Edit location, caretaker or status
// @Tags properties
// @Accept json
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} Property
// @Router /api/properties/{id} [put]
func (ctrl *PropertyController) UpdateProperty(c *fiber.Ctx) error {
	var updates map[string]interface{}
	if err := c.BodyParser(&updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	property, err := ctrl.Service.UpdateProperty(c.UserContext(), middleware.AccessFrom(c), c.Params("id"), updates)
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(property)
}

// DeleteProperty godoc
// @Summary Delete property
// @Description Delete a property and terminate its active rent assignments
// @Tags properties
// @Param id path string true "Property ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/properties/{id} [delete]
func (ctrl *PropertyController) DeleteProperty(c *fiber.Ctx) error {
	if err := ctrl.Service.DeleteProperty(c.UserContext(), middleware.AccessFrom(c), c.Params("id")); err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Property deleted"})
}

func (ctrl *PropertyController) AddFloor(c *fiber.Ctx) error {
	var body struct {
		FloorName string `json:"floorName"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	property, err := ctrl.Service.AddFloor(c.UserContext(), middleware.AccessFrom(c), c.Params("id"), body.FloorName)
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(property)
}

func (ctrl *PropertyController) UpdateFloor(c *fiber.Ctx) error {
	floorNumber, err := strconv.Atoi(c.Params("floorNumber"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid floor number"})
	}

	var body struct {
		FloorName string `json:"floorName"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	property, err := ctrl.Service.UpdateFloor(c.UserContext(), middleware.AccessFrom(c), c.Params("id"), floorNumber, body.FloorName)
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(property)
}

func (ctrl *PropertyController) RemoveFloor(c *fiber.Ctx) error {
	floorNumber, err := strconv.Atoi(c.Params("floorNumber"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid floor number"})
	}

	property, err := ctrl.Service.RemoveFloor(c.UserContext(), middleware.AccessFrom(c), c.Params("id"), floorNumber)
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(property)
}

func (ctrl *PropertyController) AddSpace(c *fiber.Ctx) error {
	floorNumber, err := strconv.Atoi(c.Params("floorNumber"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid floor number"})
	}

	var space Space
	if err := c.BodyParser(&space); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	property, err := ctrl.Service.AddSpace(c.UserContext(), middleware.AccessFrom(c), c.Params("id"), floorNumber, space)
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(property)
}

func (ctrl *PropertyController) UpdateSpace(c *fiber.Ctx) error {
	var patch SpacePatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	property, err := ctrl.Service.UpdateSpace(c.UserContext(), middleware.AccessFrom(c), c.Params("id"), c.Params("spaceId"), patch)
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(property)
}

func (ctrl *PropertyController) RemoveSpace(c *fiber.Ctx) error {
	property, err := ctrl.Service.RemoveSpace(c.UserContext(), middleware.AccessFrom(c), c.Params("id"), c.Params("spaceId"))
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(property)
}

func (ctrl *PropertyController) AddSquatter(c *fiber.Ctx) error {
	var squatter Squatter
	if err := c.BodyParser(&squatter); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	property, err := ctrl.Service.AddSquatter(c.UserContext(), middleware.AccessFrom(c), c.Params("id"), squatter)
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(property)
}

func (ctrl *PropertyController) UpdateSquatter(c *fiber.Ctx) error {
	var patch SquatterPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	property, err := ctrl.Service.UpdateSquatter(c.UserContext(), middleware.AccessFrom(c), c.Params("id"), c.Params("squatterId"), patch)
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(property)
}

func (ctrl *PropertyController) RemoveSquatter(c *fiber.Ctx) error {
	property, err := ctrl.Service.RemoveSquatter(c.UserContext(), middleware.AccessFrom(c), c.Params("id"), c.Params("squatterId"))
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(property)
}

func (ctrl *PropertyController) AssignManager(c *fiber.Ctx) error {
	var body struct {
		UserID string `json:"userId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Service.AssignManager(c.UserContext(), middleware.AccessFrom(c), c.Params("id"), body.UserID); err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Manager assigned"})
}

func (ctrl *PropertyController) UnassignManager(c *fiber.Ctx) error {
	if err := ctrl.Service.UnassignManager(c.UserContext(), middleware.AccessFrom(c), c.Params("id"), c.Params("userId")); err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Manager unassigned"})
}
