package models

import (
	"github.com/google/uuid"
)

// RoleAllowance stores the current reference allowance for a role. A default
// row is created the first time a distribution targets the role.
type RoleAllowance struct {
	BaseModel
	Role      Role      `gorm:"type:varchar(32);uniqueIndex" json:"role"`
	Amount    int       `json:"amount"`
	UpdatedBy uuid.UUID `gorm:"type:uuid" json:"updated_by"`
}

// AllowanceDistribution is one bulk batch applying a signed point delta to
// every employee of a role.
type AllowanceDistribution struct {
	BaseModel
	Role              Role              `gorm:"type:varchar(32);index" json:"role"`
	Amount            int               `json:"amount"`
	AffectedCount     int               `json:"affected_count"`
	TotalActualChange int               `json:"total_actual_change"`
	DistributedBy     uuid.UUID         `gorm:"type:uuid" json:"distributed_by"`
	Note              string            `json:"note"`
	ChangeLogs        []PointsChangeLog `gorm:"foreignKey:DistributionID" json:"change_logs,omitempty"`
}

// PointsChangeLog snapshots one employee's balance movement within a
// distribution. ActualChange is the floored delta actually applied, which may
// be smaller in magnitude than PointsChange when the zero floor is hit.
type PointsChangeLog struct {
	BaseModel
	DistributionID uuid.UUID `gorm:"type:uuid;index" json:"distribution_id"`
	EmployeeID     uuid.UUID `gorm:"type:uuid;index" json:"employee_id"`
	PointsBefore   int       `json:"points_before"`
	PointsChange   int       `json:"points_change"`
	ActualChange   int       `json:"actual_change"`
	PointsAfter    int       `json:"points_after"`
}
