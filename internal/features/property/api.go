package property

import (
	"go-pms/internal/config"
	"go-pms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PropertyApi struct {
	controller *PropertyController
	config     *config.Config
	builder    middleware.AccessContextBuilder
}

func NewPropertyApi(controller *PropertyController, config *config.Config, builder middleware.AccessContextBuilder) *PropertyApi {
	return &PropertyApi{
		controller: controller,
		config:     config,
		builder:    builder,
	}
}

func (h *PropertyApi) Setup(app *fiber.App) {
	properties := app.Group("/api/properties",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.AccessContextMiddleware(h.builder),
	)

	properties.Post("/", h.controller.CreateProperty)
	properties.Get("/", h.controller.ListProperties)
	properties.Get("/:id", h.controller.GetProperty)
	properties.Put("/:id", h.controller.UpdateProperty)
	properties.Delete("/:id", h.controller.DeleteProperty)

	properties.Post("/:id/floors", h.controller.AddFloor)
	properties.Put("/:id/floors/:floorNumber", h.controller.UpdateFloor)
	properties.Delete("/:id/floors/:floorNumber", h.controller.RemoveFloor)

	properties.Post("/:id/floors/:floorNumber/spaces", h.controller.AddSpace)
	properties.Put("/:id/spaces/:spaceId", h.controller.UpdateSpace)
	properties.Delete("/:id/spaces/:spaceId", h.controller.RemoveSpace)

	properties.Post("/:id/squatters", h.controller.AddSquatter)
	properties.Put("/:id/squatters/:squatterId", h.controller.UpdateSquatter)
	properties.Delete("/:id/squatters/:squatterId", h.controller.RemoveSquatter)

	properties.Post("/:id/managers", h.controller.AssignManager)
	properties.Delete("/:id/managers/:userId", h.controller.UnassignManager)
}
