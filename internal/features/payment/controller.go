package payment

import (
	"strconv"

	"go-pms/internal/middleware"
	"go-pms/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

type PaymentController struct {
	Service PaymentService
}

func NewPaymentController(service PaymentService) *PaymentController {
	return &PaymentController{
		Service: service,
	}
}

// Record godoc
// @Summary Record payment
// @Description Record a payment against a lease or property
// @Tags payments
// @Accept json
// @Produce json
// @Success 201 {object} Payment
// @Failure 400 {object} map[string]interface{}
// @Router /api/payments [post]
func (ctrl *PaymentController) Record(c *fiber.Ctx) error {
	var req RecordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	payment, err := ctrl.Service.Record(c.UserContext(), middleware.AccessFrom(c), req)
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(payment)
}

// List godoc
// @Summary List payments
// @Tags payments
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/payments [get]
func (ctrl *PaymentController) List(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	payments, total, err := ctrl.Service.List(c.UserContext(), middleware.AccessFrom(c), page, limit)
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"data":  payments,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// Get godoc
// @Summary Get payment
// @Tags payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} Payment
// @Router /api/payments/{id} [get]
func (ctrl *PaymentController) Get(c *fiber.Ctx) error {
	payment, err := ctrl.Service.Get(c.UserContext(), middleware.AccessFrom(c), c.Params("id"))
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(payment)
}

// TotalForRent godoc
// @Summary Total paid for a lease
// @Tags payments
// @Produce json
// @Param rentId path string true "Rent assignment ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/payments/rent/{rentId}/total [get]
func (ctrl *PaymentController) TotalForRent(c *fiber.Ctx) error {
	total, err := ctrl.Service.TotalForRent(c.UserContext(), middleware.AccessFrom(c), c.Params("rentId"))
	if err != nil {
		return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"rentId": c.Params("rentId"), "total": total})
}
