package payment

import (
	"go-pms/internal/config"
	"go-pms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PaymentApi struct {
	controller *PaymentController
	config     *config.Config
	builder    middleware.AccessContextBuilder
}

func NewPaymentApi(controller *PaymentController, config *config.Config, builder middleware.AccessContextBuilder) *PaymentApi {
	return &PaymentApi{
		controller: controller,
		config:     config,
		builder:    builder,
	}
}

func (h *PaymentApi) Setup(app *fiber.App) {
	payments := app.Group("/api/payments",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.AccessContextMiddleware(h.builder),
	)

	payments.Post("/", h.controller.Record)
	payments.Get("/", h.controller.List)
	payments.Get("/rent/:rentId/total", h.controller.TotalForRent)
	payments.Get("/:id", h.controller.Get)
}
