package models

// RewardStatus controls catalog visibility.
type RewardStatus string

const (
	RewardActive   RewardStatus = "ACTIVE"
	RewardInactive RewardStatus = "INACTIVE"
)

// Reward is a catalog item redeemable for points. Stock is reserved at
// request creation, not at approval.
type Reward struct {
	BaseModel
	Name        string       `json:"name"`
	Description string       `json:"description"`
	ImageURL    string       `json:"image_url"`
	PointsCost  int          `json:"points_cost"`
	Stock       int          `json:"stock"`
	IsPhysical  bool         `json:"is_physical"`
	Status      RewardStatus `gorm:"type:varchar(16);default:'ACTIVE'" json:"status"`
}
