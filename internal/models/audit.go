package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog is the append-only trail written as the last step of every
// mutating operation, inside the same transaction. Details is an open JSON
// payload carrying denormalized context (names, amounts) so an entry can be
// read without re-joining possibly-deleted rows.
type AuditLog struct {
	BaseModel
	Action     string         `gorm:"index" json:"action"`
	EntityType string         `gorm:"index" json:"entity_type"`
	EntityID   uuid.UUID      `gorm:"type:uuid;index" json:"entity_id"`
	ActorID    uuid.UUID      `gorm:"type:uuid;index" json:"actor_id"`
	Details    datatypes.JSON `json:"details"`
}
