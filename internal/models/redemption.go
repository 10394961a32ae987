package models

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the approval state of a redemption request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// ShippingType selects how a redeemed reward reaches the employee.
type ShippingType string

const (
	ShippingPickup   ShippingType = "PICKUP"
	ShippingDelivery ShippingType = "DELIVERY"
	ShippingDigital  ShippingType = "DIGITAL"
)

// ShippingStatus is the shipment sub-state for physical rewards. Digital
// requests stay NOT_REQUIRED.
type ShippingStatus string

const (
	ShippingNotRequired ShippingStatus = "NOT_REQUIRED"
	ShippingPending     ShippingStatus = "PENDING"
	ShippingProcessing  ShippingStatus = "PROCESSING"
	ShippingShipped     ShippingStatus = "SHIPPED"
	ShippingDelivered   ShippingStatus = "DELIVERED"
	ShippingReturned    ShippingStatus = "RETURNED"
)

// RedeemRequest is one employee's claim against one reward. PointsUsed
// snapshots the reward's cost at creation time and never follows later
// catalog price changes.
type RedeemRequest struct {
	BaseModel
	EmployeeID      uuid.UUID      `gorm:"type:uuid;index" json:"employee_id"`
	Employee        *Employee      `json:"employee,omitempty"`
	RewardID        uuid.UUID      `gorm:"type:uuid;index" json:"reward_id"`
	Reward          *Reward        `json:"reward,omitempty"`
	PointsUsed      int            `json:"points_used"`
	Status          RequestStatus  `gorm:"type:varchar(16);index" json:"status"`
	ShippingType    ShippingType   `gorm:"type:varchar(16)" json:"shipping_type"`
	ShippingStatus  ShippingStatus `gorm:"type:varchar(16);index" json:"shipping_status"`
	ShippingAddress string         `json:"shipping_address,omitempty"`
	DigitalCode     string         `json:"digital_code,omitempty"`
	ApprovedBy      *uuid.UUID     `gorm:"type:uuid" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
	RejectedReason  string         `json:"rejected_reason,omitempty"`
	TrackingNumber  string         `json:"tracking_number,omitempty"`
	Carrier         string         `json:"carrier,omitempty"`
	ShippedAt       *time.Time     `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time     `json:"delivered_at,omitempty"`
	ReturnedAt      *time.Time     `json:"returned_at,omitempty"`
}
