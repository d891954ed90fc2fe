package api

import "github.com/gofiber/fiber/v2"

// Route is implemented by every feature API package so Fx can collect
// them into a group and register them against the app at startup.
type Route interface {
	Setup(app *fiber.App)
}
