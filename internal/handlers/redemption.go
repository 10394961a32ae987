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

// RedemptionHandler exposes the redemption workflow.
type RedemptionHandler struct {
	db         *gorm.DB
	redemption *services.RedemptionService
}

// NewRedemptionHandler constructs RedemptionHandler.
func NewRedemptionHandler(db *gorm.DB, redemption *services.RedemptionService) *RedemptionHandler {
	return &RedemptionHandler{db: db, redemption: redemption}
}

type createRedemptionRequest struct {
	RewardID        string `json:"reward_id"`
	ShippingType    string `json:"shipping_type"`
	ShippingAddress string `json:"shipping_address"`
}

// Create places a redemption request for the caller.
func (h *RedemptionHandler) Create(c *fiber.Ctx) error {
	employeeID, ok := middleware.GetCurrentEmployeeID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createRedemptionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	rewardID, err := uuid.Parse(req.RewardID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid reward_id")
	}

	request, err := h.redemption.Create(c.Context(), services.CreateRedemptionInput{
		EmployeeID:      employeeID,
		RewardID:        rewardID,
		ShippingType:    models.ShippingType(req.ShippingType),
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": request})
}

// ListOwn returns the caller's redemption requests.
func (h *RedemptionHandler) ListOwn(c *fiber.Ctx) error {
	employeeID, ok := middleware.GetCurrentEmployeeID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.RedeemRequest{}).Where("employee_id = ?", employeeID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var requests []models.RedeemRequest
	if err := query.Preload("Reward").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&requests).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       requests,
		"pagination": pg.Envelope(total),
	})
}

// ConfirmDelivery lets the owner confirm receipt of a shipped reward.
func (h *RedemptionHandler) ConfirmDelivery(c *fiber.Ctx) error {
	employeeID, ok := middleware.GetCurrentEmployeeID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	request, err := h.redemption.ConfirmDelivery(c.Context(), requestID, employeeID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "data": request})
}

// ListAll returns every redemption request for the admin review queue.
func (h *RedemptionHandler) ListAll(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.RedeemRequest{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if shipping := c.Query("shipping_status"); shipping != "" {
		query = query.Where("shipping_status = ?", shipping)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var requests []models.RedeemRequest
	if err := query.Preload("Reward").Preload("Employee").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&requests).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       requests,
		"pagination": pg.Envelope(total),
	})
}

type approveRequest struct {
	DigitalCode string `json:"digital_code"`
}

// Approve moves a pending request to approved.
func (h *RedemptionHandler) Approve(c *fiber.Ctx) error {
	adminID, ok := middleware.GetCurrentEmployeeID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req approveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}

	request, err := h.redemption.Approve(c.Context(), requestID, adminID, req.DigitalCode)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "data": request})
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// Reject moves a pending request to rejected and releases its reservation.
func (h *RedemptionHandler) Reject(c *fiber.Ctx) error {
	adminID, ok := middleware.GetCurrentEmployeeID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req rejectRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}

	request, err := h.redemption.Reject(c.Context(), requestID, adminID, req.Reason)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "data": request})
}

type shipmentRequest struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number"`
	Carrier        string `json:"carrier"`
}

// UpdateShipment advances a physical shipment.
func (h *RedemptionHandler) UpdateShipment(c *fiber.Ctx) error {
	adminID, ok := middleware.GetCurrentEmployeeID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req shipmentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	request, err := h.redemption.UpdateShipment(c.Context(), requestID, adminID, services.ShipmentUpdateInput{
		Status:         models.ShippingStatus(req.Status),
		TrackingNumber: req.TrackingNumber,
		Carrier:        req.Carrier,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "data": request})
}

// MarkReturned records a returned shipment and refunds stock and points.
func (h *RedemptionHandler) MarkReturned(c *fiber.Ctx) error {
	adminID, ok := middleware.GetCurrentEmployeeID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	request, err := h.redemption.MarkReturned(c.Context(), requestID, adminID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "data": request})
}
