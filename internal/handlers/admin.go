package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/kudos/internal/models"
	"github.com/example/kudos/internal/utils"
)

// AdminHandler manages admin-only read surfaces: employees, audit trail,
// dashboard aggregation.
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// ListEmployees returns employees with their accounts, filterable by role
// and department.
func (h *AdminHandler) ListEmployees(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Employee{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", models.NormalizeRole(role))
	}
	if department := c.Query("department"); department != "" {
		query = query.Where("department = ?", department)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var employees []models.Employee
	if err := query.Order("last_name asc, first_name asc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&employees).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       employees,
		"pagination": pg.Envelope(total),
	})
}

// GetEmployee returns one employee.
func (h *AdminHandler) GetEmployee(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var employee models.Employee
	if err := h.db.First(&employee, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "employee not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": employee})
}

// DeleteEmployee removes an employee not referenced by the ledger. Employees
// with transaction or redemption history cannot be deleted.
func (h *AdminHandler) DeleteEmployee(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var given int64
	if err := h.db.Model(&models.RewardTransaction{}).
		Where("giver_id = ?", id).Count(&given).Error; err != nil {
		return err
	}
	var received int64
	if err := h.db.Model(&models.TransactionAllocation{}).
		Where("recipient_id = ?", id).Count(&received).Error; err != nil {
		return err
	}
	var redeemed int64
	if err := h.db.Model(&models.RedeemRequest{}).
		Where("employee_id = ?", id).Count(&redeemed).Error; err != nil {
		return err
	}

	if given+received+redeemed > 0 {
		return fiber.NewError(fiber.StatusConflict, "employee is referenced by ledger records")
	}

	if err := h.db.Delete(&models.Employee{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListAuditLogs returns the append-only trail, newest first.
func (h *AdminHandler) ListAuditLogs(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.AuditLog{})
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if entityType := c.Query("entity_type"); entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var logs []models.AuditLog
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&logs).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       logs,
		"pagination": pg.Envelope(total),
	})
}

// DashboardStats aggregates the ledger for the admin dashboard. Read-only.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	var totalEmployees int64
	if err := h.db.Model(&models.Employee{}).Count(&totalEmployees).Error; err != nil {
		return err
	}

	var totalGifted int64
	if err := h.db.Model(&models.RewardTransaction{}).
		Select("COALESCE(SUM(total_points), 0)").
		Scan(&totalGifted).Error; err != nil {
		return err
	}

	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var statusCounts []statusCount
	if err := h.db.Model(&models.RedeemRequest{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return err
	}

	redemptionsByStatus := make(map[string]int64)
	for _, sc := range statusCounts {
		redemptionsByStatus[sc.Status] = sc.Count
	}

	var pointsRedeemed int64
	if err := h.db.Model(&models.RedeemRequest{}).
		Where("status = ?", models.RequestApproved).
		Select("COALESCE(SUM(points_used), 0)").
		Scan(&pointsRedeemed).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_employees":       totalEmployees,
			"total_points_gifted":   totalGifted,
			"redemptions_by_status": redemptionsByStatus,
			"points_redeemed":       pointsRedeemed,
		},
	})
}
