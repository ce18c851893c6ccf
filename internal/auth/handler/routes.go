package handler

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, h *AuthHandler) {
	auth := app.Group("/api/auth")
	auth.Get("/check-auth", h.CheckAuth)
	auth.Post("/create-account", h.CreateAccount)
	auth.Post("/signin", h.SignIn)
	auth.Post("/signout", h.SignOut)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
}
