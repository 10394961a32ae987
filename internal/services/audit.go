package services

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/example/kudos/internal/models"
)

// Audit actions recorded by the engine.
const (
	ActionGiftSingle         = "gift.single"
	ActionGiftGroup          = "gift.group"
	ActionRedemptionCreated  = "redemption.created"
	ActionRedemptionApproved = "redemption.approved"
	ActionRedemptionRejected = "redemption.rejected"
	ActionShipmentUpdated    = "redemption.shipment_updated"
	ActionShipmentReturned   = "redemption.returned"
	ActionDeliveryConfirmed  = "redemption.delivery_confirmed"
	ActionPointsDistributed  = "allowance.distributed"
)

// recordAudit appends one audit entry inside the caller's transaction. A
// failed audit write fails the whole operation; a mutation must never commit
// unaudited.
func recordAudit(tx *gorm.DB, action, entityType string, entityID, actorID uuid.UUID, details map[string]any) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return err
	}

	entry := models.AuditLog{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		Details:    datatypes.JSON(payload),
	}
	return tx.Create(&entry).Error
}
