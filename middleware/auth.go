package middleware

import (
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"

	"github.com/meddesk/appointment-api/models"
	"github.com/meddesk/appointment-api/scheduling"
	"github.com/meddesk/appointment-api/utils"
)

// Protected verifies the bearer token and stashes the caller's id and role in
// the request locals.
func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(secret),
		ErrorHandler: jwtError,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
					Message: "Invalid token",
				})
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
					Message: "Invalid token claims",
				})
			}

			id, ok := claims["id"].(float64)
			if !ok {
				return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
					Message: "Invalid user ID in token",
				})
			}
			role, _ := claims["role"].(string)

			c.Locals("userID", uint(id))
			c.Locals("role", models.Role(role))
			return c.Next()
		},
	})
}

// RequireOperation enforces the role column of the authorization policy table
// for the route's operation.
func RequireOperation(op scheduling.Operation) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := scheduling.CheckRole(op, CallerIdentity(c)); err != nil {
			return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
				Message: err.Error(),
			})
		}
		return c.Next()
	}
}

// CallerIdentity reads back what Protected stored.
func CallerIdentity(c *fiber.Ctx) scheduling.Identity {
	identity := scheduling.Identity{}
	if id, ok := c.Locals("userID").(uint); ok {
		identity.ID = id
	}
	if role, ok := c.Locals("role").(models.Role); ok {
		identity.Role = role
	}
	return identity
}

func jwtError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
		Message: "Invalid or expired token",
		Error:   err.Error(),
	})
}
