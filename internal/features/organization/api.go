package organization

import (
	"go-pms/internal/config"
	"go-pms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type OrganizationApi struct {
	controller *OrganizationController
	config     *config.Config
	builder    middleware.AccessContextBuilder
}

func NewOrganizationApi(controller *OrganizationController, config *config.Config, builder middleware.AccessContextBuilder) *OrganizationApi {
	return &OrganizationApi{
		controller: controller,
		config:     config,
		builder:    builder,
	}
}

func (h *OrganizationApi) Setup(app *fiber.App) {
	orgs := app.Group("/api/organizations",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.AccessContextMiddleware(h.builder),
	)

	orgs.Post("/", h.controller.CreateOrganization)
	orgs.Get("/", h.controller.ListOrganizations)
	orgs.Get("/:id", h.controller.GetOrganization)
	orgs.Put("/:id/status", h.controller.UpdateStatus)
}
