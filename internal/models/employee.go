package models

// Employee carries identity plus two independently managed point accounts:
// Quota is the budget for giving, PointsBalance is the spendable balance
// accumulated from gifts and distributions.
type Employee struct {
	BaseModel
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `gorm:"uniqueIndex" json:"email"`
	PasswordHash  string `json:"-"`
	Department    string `gorm:"index" json:"department"`
	Role          Role   `gorm:"type:varchar(32);index" json:"role"`
	Quota         int    `json:"quota"`
	PointsBalance int    `json:"points_balance"`
}

// DisplayName is the denormalized name written into audit entries.
func (e *Employee) DisplayName() string {
	return e.FirstName + " " + e.LastName
}
