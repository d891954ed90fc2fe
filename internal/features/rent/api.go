package rent

import (
	"go-pms/internal/config"
	"go-pms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type RentApi struct {
	controller *RentController
	config     *config.Config
	builder    middleware.AccessContextBuilder
}

func NewRentApi(controller *RentController, config *config.Config, builder middleware.AccessContextBuilder) *RentApi {
	return &RentApi{
		controller: controller,
		config:     config,
		builder:    builder,
	}
}

func (h *RentApi) Setup(app *fiber.App) {
	rent := app.Group("/api/rent",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.AccessContextMiddleware(h.builder),
	)

	rent.Post("/", h.controller.Assign)
	rent.Get("/", h.controller.List)
	rent.Get("/:id", h.controller.Get)
	rent.Put("/:id", h.controller.Edit)
	rent.Post("/:id/terminate", h.controller.Terminate)
}
