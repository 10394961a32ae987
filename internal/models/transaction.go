package models

import (
	"github.com/google/uuid"
)

// TransactionType distinguishes single-recipient and group gifts.
type TransactionType string

const (
	TransactionSingle TransactionType = "SINGLE"
	TransactionGroup  TransactionType = "GROUP"
)

// TransactionStatus tracks the lifecycle of a gifting transaction. Gifts
// commit atomically, so COMPLETED is the only status surfaced to callers.
type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "COMPLETED"
)

// RewardTransaction is one gifting event. It owns 1..N allocations whose
// points sum to TotalPoints, and is immutable once created.
type RewardTransaction struct {
	BaseModel
	Type        TransactionType         `gorm:"type:varchar(16)" json:"type"`
	Status      TransactionStatus       `gorm:"type:varchar(16)" json:"status"`
	GiverID     uuid.UUID               `gorm:"type:uuid;index" json:"giver_id"`
	Giver       *Employee               `json:"giver,omitempty"`
	TotalPoints int                     `json:"total_points"`
	Message     string                  `json:"message"`
	Source      string                  `json:"source"`
	GroupType   string                  `json:"group_type,omitempty"`
	GroupValue  string                  `json:"group_value,omitempty"`
	Allocations []TransactionAllocation `gorm:"foreignKey:TransactionID" json:"allocations,omitempty"`
}

// TransactionAllocation is one recipient's share of a gifting transaction.
type TransactionAllocation struct {
	BaseModel
	TransactionID uuid.UUID       `gorm:"type:uuid;index" json:"transaction_id"`
	RecipientID   uuid.UUID       `gorm:"type:uuid;index" json:"recipient_id"`
	Recipient     *Employee       `json:"recipient,omitempty"`
	CategoryID    uuid.UUID       `gorm:"type:uuid;index" json:"category_id"`
	Category      *RewardCategory `json:"category,omitempty"`
	Points        int             `json:"points"`
}
