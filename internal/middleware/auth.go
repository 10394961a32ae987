package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/kudos/internal/config"
	"github.com/example/kudos/internal/models"
	"github.com/example/kudos/internal/utils"
)

const employeeContextKey = "currentEmployeeID"

// AuthMiddleware validates JWT tokens and loads the authenticated employee ID
// into context. The engine trusts this identity as the actor for every
// mutating call.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		employeeID, err := utils.ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(employeeContextKey, employeeID)
		return c.Next()
	}
}

// RequireAdmin allows only employees holding the ADMIN role through.
func RequireAdmin(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		employeeID, ok := GetCurrentEmployeeID(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		var employee models.Employee
		if err := db.Select("role").First(&employee, "id = ?", employeeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
			}
			return err
		}

		if employee.Role != models.RoleAdmin {
			return fiber.NewError(fiber.StatusForbidden, "admin role required")
		}

		return c.Next()
	}
}

// GetCurrentEmployeeID extracts the authenticated employee ID from context.
func GetCurrentEmployeeID(c *fiber.Ctx) (uuid.UUID, bool) {
	value := c.Locals(employeeContextKey)
	if value == nil {
		return uuid.Nil, false
	}

	if id, ok := value.(uuid.UUID); ok {
		return id, true
	}

	return uuid.Nil, false
}
