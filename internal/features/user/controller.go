package user

import (
	"strconv"

	"go-pms/internal/middleware"
	"go-pms/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Service UserService
}

func NewUserController(service UserService) *UserController {
	return &UserController{
		Service: service,
	}
}

// Register godoc
// @Summary Register user
// @Description Create a pending user account awaiting administrator approval
// @Tags auth
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/auth/register [post]
func (ctrl *UserController) Register(c *fiber.Ctx) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := ctrl.Service.Register(c.UserContext(), body.Username, body.Password, body.Email, body.Phone)
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration received, awaiting approval",
		"data":    user,
	})
}

// Login godoc
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/auth/login [post]
func (ctrl *UserController) Login(c *fiber.Ctx) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	token, user, err := ctrl.Service.Login(c.UserContext(), body.Username, body.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/users [get]
func (ctrl *UserController) ListUsers(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	users, total, err := ctrl.Service.ListUsers(c.UserContext(), middleware.AccessFrom(c), page, limit)
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"data":  users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetUser godoc
// @Summary Get user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} User
// @Router /api/users/{id} [get]
func (ctrl *UserController) GetUser(c *fiber.Ctx) error {
	user, err := ctrl.Service.GetUser(c.UserContext(), middleware.AccessFrom(c), c.Params("id"))
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(user)
}

// Approve godoc
// @Summary Approve user
// @Description Activate a pending user into an organization with a role
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/users/{id}/approve [post]
func (ctrl *UserController) Approve(c *fiber.Ctx) error {
	var body struct {
		RoleID         string `json:"role_id"`
		OrganizationID string `json:"organization_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := ctrl.Service.Approve(c.UserContext(), middleware.AccessFrom(c), c.Params("id"), body.RoleID, body.OrganizationID)
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message": "User approved",
		"data":    user,
	})
}

// Reject godoc
// @Summary Reject user
// @Tags users
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/users/{id}/reject [post]
func (ctrl *UserController) Reject(c *fiber.Ctx) error {
	if err := ctrl.Service.Reject(c.UserContext(), middleware.AccessFrom(c), c.Params("id")); err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "User rejected"})
}

// ReassignRole godoc
// @Summary Reassign role
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/users/{id}/role [put]
func (ctrl *UserController) ReassignRole(c *fiber.Ctx) error {
	var body struct {
		RoleID string `json:"role_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := ctrl.Service.ReassignRole(c.UserContext(), middleware.AccessFrom(c), c.Params("id"), body.RoleID)
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message": "Role reassigned",
		"data":    user,
	})
}

// Deactivate godoc
// @Summary Deactivate user
// @Tags users
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/users/{id}/deactivate [post]
func (ctrl *UserController) Deactivate(c *fiber.Ctx) error {
	if err := ctrl.Service.Deactivate(c.UserContext(), middleware.AccessFrom(c), c.Params("id")); err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "User deactivated"})
}
