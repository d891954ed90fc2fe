package user

import (
	"go-pms/internal/config"
	"go-pms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	controller *UserController
	config     *config.Config
	builder    middleware.AccessContextBuilder
}

func NewUserApi(controller *UserController, config *config.Config, builder middleware.AccessContextBuilder) *UserApi {
	return &UserApi{
		controller: controller,
		config:     config,
		builder:    builder,
	}
}

func (h *UserApi) Setup(app *fiber.App) {
	auth := app.Group("/api/auth")
	auth.Post("/register", h.controller.Register)
	auth.Post("/login", h.controller.Login)

	users := app.Group("/api/users",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.AccessContextMiddleware(h.builder),
	)

	users.Get("/", h.controller.ListUsers)
	users.Get("/:id", h.controller.GetUser)
	users.Post("/:id/approve", h.controller.Approve)
	users.Post("/:id/reject", h.controller.Reject)
	users.Put("/:id/role", h.controller.ReassignRole)
	users.Post("/:id/deactivate", h.controller.Deactivate)
}
