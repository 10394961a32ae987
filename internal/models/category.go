package models

// RewardCategory classifies a point allocation (e.g. "Teamwork"). Only
// active categories can be used in new gifts; historical allocations keep
// their reference after deactivation.
type RewardCategory struct {
	BaseModel
	Name        string `gorm:"uniqueIndex" json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}
