package notification

import (
	"go-pms/internal/config"
	"go-pms/internal/middleware"
	"go-pms/pkg/utils"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type NotificationApi struct {
	controller *NotificationController
	config     *config.Config
}

func NewNotificationApi(controller *NotificationController, config *config.Config) *NotificationApi {
	return &NotificationApi{
		controller: controller,
		config:     config,
	}
}

func (h *NotificationApi) Setup(app *fiber.App) {
	group := app.Group("/api/notifications", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.List)
	group.Get("/unread-count", h.controller.GetUnreadCount)
	group.Put("/:id/read", h.controller.MarkAsRead)
	group.Post("/mark-all-read", h.controller.MarkAllAsRead)

	// The claims live in fiber locals, which the websocket handler cannot
	// read after the upgrade; copy the user id across first.
	app.Get("/api/ws", middleware.AuthMiddleware(h.config.SkipAuth), func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims); ok {
			c.Locals("notificationUserID", claims.UserID)
		}
		return c.Next()
	}, websocket.New(h.controller.HandleWebSocket))
}
