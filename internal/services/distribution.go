package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/example/kudos/internal/models"
)

// DistributionService applies a signed point delta to every employee of a
// role in one batch. Deductions are floored at zero per employee; the header
// plus one change-log row per employee commit as a single unit.
type DistributionService struct {
	db *gorm.DB
}

// NewDistributionService constructs DistributionService.
func NewDistributionService(db *gorm.DB) *DistributionService {
	return &DistributionService{db: db}
}

// DistributeInput describes one bulk allowance batch.
type DistributeInput struct {
	Role    string
	Amount  int
	AdminID uuid.UUID
	Note    string
}

// DistributionResult summarizes a committed batch.
type DistributionResult struct {
	DistributionID    uuid.UUID `json:"distribution_id"`
	AffectedCount     int       `json:"affected_count"`
	TotalActualChange int       `json:"total_actual_change"`
}

// Distribute grants or deducts points for every employee holding a role and
// resets each employee's quota to the new reference allowance.
func (s *DistributionService) Distribute(ctx context.Context, in DistributeInput) (*DistributionResult, error) {
	if in.Amount == 0 {
		return nil, newError(KindValidation, "amount must be non-zero")
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, newError(KindValidation, "%v", err)
	}

	var result DistributionResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		allowance := models.RoleAllowance{Role: role}
		if err := tx.Where("role = ?", role).FirstOrCreate(&allowance).Error; err != nil {
			return err
		}
		if err := tx.Model(&allowance).Updates(map[string]any{
			"amount":     intAbs(in.Amount),
			"updated_by": in.AdminID,
		}).Error; err != nil {
			return err
		}

		var employees []models.Employee
		if err := tx.Where("role = ?", role).Order("created_at").Find(&employees).Error; err != nil {
			return err
		}
		if len(employees) == 0 {
			return newError(KindEmptySet, "no employees hold role %s", role)
		}

		distribution := models.AllowanceDistribution{
			Role:          role,
			Amount:        in.Amount,
			AffectedCount: len(employees),
			DistributedBy: in.AdminID,
			Note:          in.Note,
		}
		if err := tx.Create(&distribution).Error; err != nil {
			return err
		}

		totalActual := 0
		for _, employee := range employees {
			newBalance, actual := ApplyFloored(employee.PointsBalance, in.Amount)
			totalActual += actual

			if err := tx.Model(&models.Employee{}).
				Where("id = ?", employee.ID).
				Updates(map[string]any{
					"points_balance": newBalance,
					"quota":          intAbs(in.Amount),
					"updated_at":     time.Now(),
				}).Error; err != nil {
				return err
			}

			entry := models.PointsChangeLog{
				DistributionID: distribution.ID,
				EmployeeID:     employee.ID,
				PointsBefore:   employee.PointsBalance,
				PointsChange:   in.Amount,
				ActualChange:   actual,
				PointsAfter:    newBalance,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&distribution).
			UpdateColumn("total_actual_change", totalActual).Error; err != nil {
			return err
		}

		result = DistributionResult{
			DistributionID:    distribution.ID,
			AffectedCount:     len(employees),
			TotalActualChange: totalActual,
		}

		return recordAudit(tx, ActionPointsDistributed, "allowance_distribution", distribution.ID, in.AdminID, map[string]any{
			"role":                role,
			"amount":              in.Amount,
			"affected_count":      len(employees),
			"total_actual_change": totalActual,
			"note":                in.Note,
		})
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"distribution_id": result.DistributionID,
		"role":            role,
		"affected":        result.AffectedCount,
	}).Info("allowance distribution committed")
	return &result, nil
}
