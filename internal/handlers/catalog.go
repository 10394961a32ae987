package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/kudos/internal/models"
	"github.com/example/kudos/internal/utils"
)

// CatalogHandler manages the reward catalog and gift categories.
type CatalogHandler struct {
	db *gorm.DB
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

// ListRewards returns the active catalog for employees.
func (h *CatalogHandler) ListRewards(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Reward{}).Where("status = ?", models.RewardActive)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var rewards []models.Reward
	if err := query.Order("points_cost asc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&rewards).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       rewards,
		"pagination": pg.Envelope(total),
	})
}

// GetReward returns a single reward by ID.
func (h *CatalogHandler) GetReward(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var reward models.Reward
	if err := h.db.First(&reward, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "reward not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": reward})
}

type rewardPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	PointsCost  int    `json:"points_cost"`
	Stock       int    `json:"stock"`
	IsPhysical  bool   `json:"is_physical"`
	Status      string `json:"status"`
}

// CreateReward adds a catalog item.
func (h *CatalogHandler) CreateReward(c *fiber.Ctx) error {
	var payload rewardPayload
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if payload.Name == "" || payload.PointsCost <= 0 || payload.Stock < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "name, a positive points_cost and a non-negative stock are required")
	}

	status := models.RewardActive
	if payload.Status != "" {
		status = models.RewardStatus(payload.Status)
		if status != models.RewardActive && status != models.RewardInactive {
			return fiber.NewError(fiber.StatusBadRequest, "invalid status")
		}
	}

	reward := models.Reward{
		Name:        payload.Name,
		Description: payload.Description,
		ImageURL:    payload.ImageURL,
		PointsCost:  payload.PointsCost,
		Stock:       payload.Stock,
		IsPhysical:  payload.IsPhysical,
		Status:      status,
	}
	if err := h.db.Create(&reward).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": reward})
}

// UpdateReward updates catalog metadata. Price changes never touch open
// requests; those carry their creation-time snapshot.
func (h *CatalogHandler) UpdateReward(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var reward models.Reward
	if err := h.db.First(&reward, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "reward not found")
		}
		return err
	}

	var payload map[string]any
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]any{}
	for _, field := range []string{"name", "description", "image_url", "points_cost", "stock", "status"} {
		if value, ok := payload[field]; ok {
			updates[field] = value
		}
	}
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	if err := h.db.Model(&reward).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": reward})
}

// DeleteReward retires a reward. Rewards referenced by requests are
// deactivated instead of removed so history keeps resolving.
func (h *CatalogHandler) DeleteReward(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var referenced int64
	if err := h.db.Model(&models.RedeemRequest{}).
		Where("reward_id = ?", id).
		Count(&referenced).Error; err != nil {
		return err
	}

	if referenced > 0 {
		if err := h.db.Model(&models.Reward{}).
			Where("id = ?", id).
			Update("status", models.RewardInactive).Error; err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "message": "reward deactivated; redemption history references it"})
	}

	if err := h.db.Delete(&models.Reward{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Category endpoints follow the same shape.

// ListCategories returns all gift categories.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	var categories []models.RewardCategory
	if err := h.db.Order("name asc").Find(&categories).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": categories})
}

type categoryPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

// CreateCategory adds a gift category.
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var payload categoryPayload
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if payload.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	category := models.RewardCategory{
		Name:        payload.Name,
		Description: payload.Description,
		IsActive:    true,
	}
	if payload.IsActive != nil {
		category.IsActive = *payload.IsActive
	}
	if err := h.db.Create(&category).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": category})
}

// UpdateCategory updates a gift category; deactivation leaves historical
// allocations untouched.
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var category models.RewardCategory
	if err := h.db.First(&category, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "category not found")
		}
		return err
	}

	var payload categoryPayload
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]any{}
	if payload.Name != "" {
		updates["name"] = payload.Name
	}
	if payload.Description != "" {
		updates["description"] = payload.Description
	}
	if payload.IsActive != nil {
		updates["is_active"] = *payload.IsActive
	}
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	if err := h.db.Model(&category).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": category})
}
