package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meddesk/appointment-api/controllers"
	"github.com/meddesk/appointment-api/middleware"
)

// SetupAuthRoutes configures all authentication related routes
func SetupAuthRoutes(app *fiber.App, h *controllers.AuthHandler, jwtSecret string) {
	auth := app.Group("/auth")

	// Public routes
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Post("/refresh", h.RefreshToken)

	// Protected routes
	auth.Get("/me", middleware.Protected(jwtSecret), h.GetUserProfile)
}
