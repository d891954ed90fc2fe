package rent

import (
	"strconv"

	"go-pms/internal/middleware"
	"go-pms/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

type RentController struct {
	Service RentService
}

func NewRentController(service RentService) *RentController {
	return &RentController{
		Service: service,
	}
}

// Assign godoc
// @Summary Assign tenant
// @Description Lease a space to a tenant; fails with 409 if the space already has an active lease
// @Tags rent
// @Accept json
// @Produce json
// @Success 201 {object} RentAssignment
// @Failure 409 {object} map[string]interface{}
// @Router /api/rent [post]
func (ctrl *RentController) Assign(c *fiber.Ctx) error {
	var req AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	assignment, err := ctrl.Service.Assign(c.UserContext(), middleware.AccessFrom(c), req)
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(assignment)
}

// List godoc
// @Summary List rent assignments
// @Tags rent
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/rent [get]
func (ctrl *RentController) List(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	assignments, total, err := ctrl.Service.List(c.UserContext(), middleware.AccessFrom(c), page, limit)
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"data":  assignments,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// Get godoc
// @Summary Get rent assignment
// @Tags rent
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} RentAssignment
// @Router /api/rent/{id} [get]
func (ctrl *RentController) Get(c *fiber.Ctx) error {
	assignment, err := ctrl.Service.Get(c.UserContext(), middleware.AccessFrom(c), c.Params("id"))
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(assignment)
}

// Edit godoc
// @Summary Edit rent assignment
// @Description Patch lease terms or move the lease to another space
// @Tags rent
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} RentAssignment
// @Router /api/rent/{id} [put]
func (ctrl *RentController) Edit(c *fiber.Ctx) error {
	var patch EditRequest
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	assignment, err := ctrl.Service.Edit(c.UserContext(), middleware.AccessFrom(c), c.Params("id"), patch)
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(assignment)
}

// Terminate godoc
// @Summary Terminate lease
// @Tags rent
// @Param id path string true "Assignment ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/rent/{id}/terminate [post]
func (ctrl *RentController) Terminate(c *fiber.Ctx) error {
	if err := ctrl.Service.Terminate(c.UserContext(), middleware.AccessFrom(c), c.Params("id")); err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Lease terminated"})
}
