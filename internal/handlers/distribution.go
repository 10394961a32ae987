package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/kudos/internal/middleware"
	"github.com/example/kudos/internal/models"
	"github.com/example/kudos/internal/services"
	"github.com/example/kudos/internal/utils"
)

// DistributionHandler exposes bulk allowance distribution to admins.
type DistributionHandler struct {
	db           *gorm.DB
	distribution *services.DistributionService
}

// NewDistributionHandler constructs DistributionHandler.
func NewDistributionHandler(db *gorm.DB, distribution *services.DistributionService) *DistributionHandler {
	return &DistributionHandler{db: db, distribution: distribution}
}

type distributeRequest struct {
	Role   string `json:"role"`
	Amount int    `json:"amount"`
	Note   string `json:"note"`
}

// Distribute applies a signed point delta to every employee of a role.
func (h *DistributionHandler) Distribute(c *fiber.Ctx) error {
	adminID, ok := middleware.GetCurrentEmployeeID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req distributeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.distribution.Distribute(c.Context(), services.DistributeInput{
		Role:    req.Role,
		Amount:  req.Amount,
		AdminID: adminID,
		Note:    req.Note,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": result})
}

// List returns distribution batches, newest first.
func (h *DistributionHandler) List(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.AllowanceDistribution{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", models.NormalizeRole(role))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var distributions []models.AllowanceDistribution
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&distributions).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       distributions,
		"pagination": pg.Envelope(total),
	})
}

// Get returns one batch with its per-employee change log.
func (h *DistributionHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var distribution models.AllowanceDistribution
	if err := h.db.Preload("ChangeLogs").
		First(&distribution, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "distribution not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": distribution})
}
