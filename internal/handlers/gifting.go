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

// GiftingHandler exposes point-transfer endpoints.
type GiftingHandler struct {
	db      *gorm.DB
	gifting *services.GiftingService
}

// NewGiftingHandler constructs GiftingHandler.
func NewGiftingHandler(db *gorm.DB, gifting *services.GiftingService) *GiftingHandler {
	return &GiftingHandler{db: db, gifting: gifting}
}

type singleGiftRequest struct {
	RecipientID string `json:"recipient_id"`
	Points      int    `json:"points"`
	CategoryID  string `json:"category_id"`
	Message     string `json:"message"`
}

// GiveSingle transfers points from the caller to one recipient.
func (h *GiftingHandler) GiveSingle(c *fiber.Ctx) error {
	giverID, ok := middleware.GetCurrentEmployeeID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req singleGiftRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid recipient_id")
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid category_id")
	}

	txn, err := h.gifting.GiveSingle(c.Context(), services.SingleGiftInput{
		GiverID:     giverID,
		RecipientID: recipientID,
		Points:      req.Points,
		CategoryID:  categoryID,
		Message:     req.Message,
		Source:      "api",
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": txn})
}

type groupGiftRequest struct {
	GroupType         string                      `json:"group_type"`
	GroupValue        string                      `json:"group_value"`
	TotalPoints       int                         `json:"total_points"`
	CategoryID        string                      `json:"category_id"`
	Mode              string                      `json:"mode"`
	CustomAllocations []services.CustomAllocation `json:"custom_allocations"`
	Message           string                      `json:"message"`
}

// GiveGroup transfers points from the caller to every member of a group.
func (h *GiftingHandler) GiveGroup(c *fiber.Ctx) error {
	giverID, ok := middleware.GetCurrentEmployeeID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req groupGiftRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid category_id")
	}

	txn, err := h.gifting.GiveGroup(c.Context(), services.GroupGiftInput{
		GiverID:           giverID,
		GroupType:         req.GroupType,
		GroupValue:        req.GroupValue,
		TotalPoints:       req.TotalPoints,
		CategoryID:        categoryID,
		Mode:              req.Mode,
		CustomAllocations: req.CustomAllocations,
		Message:           req.Message,
		Source:            "api",
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": txn})
}

// ListGifts returns transactions the caller gave or received.
func (h *GiftingHandler) ListGifts(c *fiber.Ctx) error {
	employeeID, ok := middleware.GetCurrentEmployeeID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	received := h.db.Model(&models.TransactionAllocation{}).
		Select("transaction_id").
		Where("recipient_id = ?", employeeID)
	query := h.db.Model(&models.RewardTransaction{}).
		Where("giver_id = ? OR id IN (?)", employeeID, received)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var transactions []models.RewardTransaction
	if err := query.
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
