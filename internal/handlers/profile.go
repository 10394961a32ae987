package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/kudos/internal/middleware"
	"github.com/example/kudos/internal/models"
	"github.com/example/kudos/internal/utils"
)

// ProfileHandler manages the authenticated employee's own surface.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// GetProfile returns the caller's record including both point accounts.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	employeeID, ok := middleware.GetCurrentEmployeeID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var employee models.Employee
	if err := h.db.First(&employee, "id = ?", employeeID).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":             employee.ID,
			"first_name":     employee.FirstName,
			"last_name":      employee.LastName,
			"email":          employee.Email,
			"department":     employee.Department,
			"role":           employee.Role,
			"quota":          employee.Quota,
			"points_balance": employee.PointsBalance,
			"created_at":     employee.CreatedAt,
		},
	})
}

// Activity returns the recent company-wide gifting feed. Read-only consumer
// of the ledger; the amounts here are display data, the ledger is the source
// of truth.
func (h *ProfileHandler) Activity(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	var total int64
	if err := h.db.Model(&models.RewardTransaction{}).Count(&total).Error; err != nil {
		return err
	}

	var transactions []models.RewardTransaction
	if err := h.db.
		Preload("Giver").
		Preload("Allocations.Recipient").
		Preload("Allocations.Category").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&transactions).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       transactions,
		"pagination": pg.Envelope(total),
	})
}
