package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/example/kudos/internal/models"
)

// RedemptionService governs a redemption request from creation through
// approval or rejection and, for physical rewards, through shipment,
// delivery or return.
//
// Points and stock are both reserved at creation: the employee's balance is
// debited and the reward's stock decremented in the same unit. Rejection and
// return are the compensating transitions; each refunds balance and stock
// together, exactly once.
type RedemptionService struct {
	db *gorm.DB
}

// NewRedemptionService constructs RedemptionService.
func NewRedemptionService(db *gorm.DB) *RedemptionService {
	return &RedemptionService{db: db}
}

// CreateRedemptionInput describes a new claim against a reward.
type CreateRedemptionInput struct {
	EmployeeID      uuid.UUID
	RewardID        uuid.UUID
	ShippingType    models.ShippingType
	ShippingAddress string
}

// ShipmentUpdateInput advances a physical shipment.
type ShipmentUpdateInput struct {
	Status         models.ShippingStatus
	TrackingNumber string
	Carrier        string
}

// Create reserves stock and points and inserts a PENDING request. PointsUsed
// snapshots the reward's cost; later catalog price changes never affect an
// open request.
func (s *RedemptionService) Create(ctx context.Context, in CreateRedemptionInput) (*models.RedeemRequest, error) {
	var requestID uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reward, err := findReward(tx, in.RewardID)
		if err != nil {
			return err
		}
		if reward.Status != models.RewardActive {
			return newError(KindValidation, "reward %q is not available", reward.Name)
		}
		employee, err := findEmployee(tx, in.EmployeeID, "employee")
		if err != nil {
			return err
		}
		if err := validateShipping(reward, in); err != nil {
			return err
		}

		if err := debitBalance(tx, employee.ID, reward.PointsCost); err != nil {
			return err
		}
		if err := consumeStock(tx, reward.ID); err != nil {
			return err
		}

		shippingStatus := models.ShippingNotRequired
		if reward.IsPhysical {
			shippingStatus = models.ShippingPending
		}

		request := models.RedeemRequest{
			EmployeeID:      employee.ID,
			RewardID:        reward.ID,
			PointsUsed:      reward.PointsCost,
			Status:          models.RequestPending,
			ShippingType:    in.ShippingType,
			ShippingStatus:  shippingStatus,
			ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		}
		if err := tx.Create(&request).Error; err != nil {
			return err
		}
		requestID = request.ID

		return recordAudit(tx, ActionRedemptionCreated, "redeem_request", request.ID, employee.ID, map[string]any{
			"reward_name":   reward.Name,
			"employee_name": employee.DisplayName(),
			"points_used":   reward.PointsCost,
			"shipping_type": in.ShippingType,
		})
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"request_id": requestID}).Info("redemption request created")
	return s.loadRequest(ctx, requestID)
}

// Approve moves a PENDING request to APPROVED. Physical rewards enter the
// shipment pipeline; digital rewards may receive a one-time code.
func (s *RedemptionService) Approve(ctx context.Context, requestID, adminID uuid.UUID, digitalCode string) (*models.RedeemRequest, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := findRequest(tx, requestID)
		if err != nil {
			return err
		}
		if digitalCode != "" && request.Reward.IsPhysical {
			return newError(KindValidation, "digital codes cannot be attached to physical rewards")
		}

		now := time.Now()
		updates := map[string]any{
			"status":      models.RequestApproved,
			"approved_by": adminID,
			"approved_at": &now,
			"updated_at":  now,
		}
		if request.Reward.IsPhysical {
			updates["shipping_status"] = models.ShippingProcessing
		} else {
			updates["shipping_status"] = models.ShippingNotRequired
			if digitalCode != "" {
				updates["digital_code"] = digitalCode
			}
		}

		res := tx.Model(&models.RedeemRequest{}).
			Where("id = ? AND status = ?", requestID, models.RequestPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return newError(KindInvalidState, "request is not pending")
		}

		details := map[string]any{
			"reward_name":   request.Reward.Name,
			"employee_name": request.Employee.DisplayName(),
			"points_used":   request.PointsUsed,
		}
		if digitalCode != "" {
			// The code is a bearer secret; only a marker goes to the trail.
			details["digital_code"] = "[redacted]"
		}
		return recordAudit(tx, ActionRedemptionApproved, "redeem_request", requestID, adminID, details)
	})
	if err != nil {
		return nil, err
	}
	return s.loadRequest(ctx, requestID)
}

// Reject moves a PENDING request to REJECTED and undoes the creation-time
// reservation: stock and points both return.
func (s *RedemptionService) Reject(ctx context.Context, requestID, adminID uuid.UUID, reason string) (*models.RedeemRequest, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := findRequest(tx, requestID)
		if err != nil {
			return err
		}

		res := tx.Model(&models.RedeemRequest{}).
			Where("id = ? AND status = ?", requestID, models.RequestPending).
			Updates(map[string]any{
				"status":          models.RequestRejected,
				"rejected_reason": reason,
				"updated_at":      time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return newError(KindInvalidState, "request is not pending")
		}

		if err := restoreStock(tx, request.RewardID); err != nil {
			return err
		}
		if err := creditBalance(tx, request.EmployeeID, request.PointsUsed); err != nil {
			return err
		}

		return recordAudit(tx, ActionRedemptionRejected, "redeem_request", requestID, adminID, map[string]any{
			"reward_name":     request.Reward.Name,
			"employee_name":   request.Employee.DisplayName(),
			"points_refunded": request.PointsUsed,
			"reason":          reason,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.loadRequest(ctx, requestID)
}

// UpdateShipment advances an approved physical shipment. SHIPPED requires
// the request to be PROCESSING, DELIVERED requires SHIPPED.
func (s *RedemptionService) UpdateShipment(ctx context.Context, requestID, adminID uuid.UUID, in ShipmentUpdateInput) (*models.RedeemRequest, error) {
	var expected models.ShippingStatus
	switch in.Status {
	case models.ShippingShipped:
		expected = models.ShippingProcessing
	case models.ShippingDelivered:
		expected = models.ShippingShipped
	default:
		return nil, newError(KindValidation, "shipment status must be %s or %s", models.ShippingShipped, models.ShippingDelivered)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := findRequest(tx, requestID)
		if err != nil {
			return err
		}
		if !request.Reward.IsPhysical {
			return newError(KindInvalidState, "request has no shipment")
		}

		now := time.Now()
		updates := map[string]any{
			"shipping_status": in.Status,
			"updated_at":      now,
		}
		if in.TrackingNumber != "" {
			updates["tracking_number"] = in.TrackingNumber
		}
		if in.Carrier != "" {
			updates["carrier"] = in.Carrier
		}
		switch in.Status {
		case models.ShippingShipped:
			updates["shipped_at"] = &now
		case models.ShippingDelivered:
			updates["delivered_at"] = &now
		}

		res := tx.Model(&models.RedeemRequest{}).
			Where("id = ? AND status = ? AND shipping_status = ?", requestID, models.RequestApproved, expected).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return newError(KindInvalidState, "shipment cannot move to %s from %s", in.Status, request.ShippingStatus)
		}

		return recordAudit(tx, ActionShipmentUpdated, "redeem_request", requestID, adminID, map[string]any{
			"reward_name":     request.Reward.Name,
			"employee_name":   request.Employee.DisplayName(),
			"shipping_status": in.Status,
			"tracking_number": in.TrackingNumber,
			"carrier":         in.Carrier,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.loadRequest(ctx, requestID)
}

// MarkReturned is the compensating transition for a shipped-out reward:
// stock and the points used both return to their owners. A second return
// attempt fails and changes nothing.
func (s *RedemptionService) MarkReturned(ctx context.Context, requestID, adminID uuid.UUID) (*models.RedeemRequest, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := findRequest(tx, requestID)
		if err != nil {
			return err
		}

		now := time.Now()
		returnable := []models.ShippingStatus{
			models.ShippingProcessing,
			models.ShippingShipped,
			models.ShippingDelivered,
		}
		res := tx.Model(&models.RedeemRequest{}).
			Where("id = ? AND status = ? AND shipping_status IN ?", requestID, models.RequestApproved, returnable).
			Updates(map[string]any{
				"shipping_status": models.ShippingReturned,
				"returned_at":     &now,
				"updated_at":      now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if request.ShippingStatus == models.ShippingReturned {
				return newError(KindInvalidState, "request already returned")
			}
			return newError(KindInvalidState, "request is not in a returnable state")
		}

		if err := restoreStock(tx, request.RewardID); err != nil {
			return err
		}
		if err := creditBalance(tx, request.EmployeeID, request.PointsUsed); err != nil {
			return err
		}

		return recordAudit(tx, ActionShipmentReturned, "redeem_request", requestID, adminID, map[string]any{
			"reward_name":     request.Reward.Name,
			"employee_name":   request.Employee.DisplayName(),
			"points_refunded": request.PointsUsed,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.loadRequest(ctx, requestID)
}

// ConfirmDelivery lets the owning employee confirm receipt of a SHIPPED
// reward.
func (s *RedemptionService) ConfirmDelivery(ctx context.Context, requestID, employeeID uuid.UUID) (*models.RedeemRequest, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := findRequest(tx, requestID)
		if err != nil {
			return err
		}
		if request.EmployeeID != employeeID {
			return newError(KindForbidden, "request belongs to another employee")
		}

		now := time.Now()
		res := tx.Model(&models.RedeemRequest{}).
			Where("id = ? AND shipping_status = ?", requestID, models.ShippingShipped).
			Updates(map[string]any{
				"shipping_status": models.ShippingDelivered,
				"delivered_at":    &now,
				"updated_at":      now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return newError(KindInvalidState, "shipment is not marked as shipped")
		}

		return recordAudit(tx, ActionDeliveryConfirmed, "redeem_request", requestID, employeeID, map[string]any{
			"reward_name":   request.Reward.Name,
			"employee_name": request.Employee.DisplayName(),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.loadRequest(ctx, requestID)
}

func (s *RedemptionService) loadRequest(ctx context.Context, id uuid.UUID) (*models.RedeemRequest, error) {
	var request models.RedeemRequest
	err := s.db.WithContext(ctx).
		Preload("Reward").
		Preload("Employee").
		First(&request, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func validateShipping(reward *models.Reward, in CreateRedemptionInput) error {
	switch in.ShippingType {
	case models.ShippingPickup, models.ShippingDelivery:
		if !reward.IsPhysical {
			return newError(KindValidation, "reward %q is digital; shipping type must be %s", reward.Name, models.ShippingDigital)
		}
	case models.ShippingDigital:
		if reward.IsPhysical {
			return newError(KindValidation, "reward %q is physical; choose %s or %s", reward.Name, models.ShippingPickup, models.ShippingDelivery)
		}
	default:
		return newError(KindValidation, "unknown shipping type %q", in.ShippingType)
	}
	if in.ShippingType == models.ShippingDelivery && strings.TrimSpace(in.ShippingAddress) == "" {
		return newError(KindValidation, "delivery requires a shipping address")
	}
	return nil
}

func findReward(tx *gorm.DB, id uuid.UUID) (*models.Reward, error) {
	var reward models.Reward
	if err := tx.First(&reward, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "reward not found")
		}
		return nil, err
	}
	return &reward, nil
}

func findRequest(tx *gorm.DB, id uuid.UUID) (*models.RedeemRequest, error) {
	var request models.RedeemRequest
	err := tx.Preload("Reward").Preload("Employee").First(&request, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "redemption request not found")
		}
		return nil, err
	}
	return &request, nil
}

// consumeStock is the atomic stock reservation; losing the guard means the
// last unit went to a concurrent request.
func consumeStock(tx *gorm.DB, rewardID uuid.UUID) error {
	res := tx.Model(&models.Reward{}).
		Where("id = ? AND stock > 0", rewardID).
		UpdateColumn("stock", gorm.Expr("stock - 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return newError(KindOutOfStock, "reward is out of stock")
	}
	return nil
}

func restoreStock(tx *gorm.DB, rewardID uuid.UUID) error {
	return tx.Model(&models.Reward{}).
		Where("id = ?", rewardID).
		UpdateColumn("stock", gorm.Expr("stock + 1")).Error
}

func debitBalance(tx *gorm.DB, employeeID uuid.UUID, points int) error {
	res := tx.Model(&models.Employee{}).
		Where("id = ? AND points_balance >= ?", employeeID, points).
		UpdateColumn("points_balance", gorm.Expr("points_balance - ?", points))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return newError(KindInsufficientBalance, "points balance is insufficient for %d points", points)
	}
	return nil
}
