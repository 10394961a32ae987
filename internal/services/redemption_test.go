package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/kudos/internal/models"
	"github.com/example/kudos/internal/services"
)

func TestCreate_ReservesStockAndPoints(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewRedemptionService(db)

	employee := createEmployee(t, db, "Rae", "Redeemer", models.RoleEmployee, "Sales", 0, 800)
	reward := createReward(t, db, "Mug", 300, 5, true)

	request, err := svc.Create(context.Background(), services.CreateRedemptionInput{
		EmployeeID:      employee.ID,
		RewardID:        reward.ID,
		ShippingType:    models.ShippingDelivery,
		ShippingAddress: "1 Main St",
	})
	require.NoError(t, err)

	assert.Equal(t, models.RequestPending, request.Status)
	assert.Equal(t, models.ShippingPending, request.ShippingStatus)
	assert.Equal(t, 300, request.PointsUsed)

	assert.Equal(t, 4, reloadReward(t, db, reward.ID).Stock)
	assert.Equal(t, 500, reloadEmployee(t, db, employee.ID).PointsBalance)
	assert.Equal(t, int64(1), countAudit(t, db, services.ActionRedemptionCreated))
}

func TestCreate_DigitalSkipsShipmentMachine(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewRedemptionService(db)

	employee := createEmployee(t, db, "Dan", "Digital", models.RoleEmployee, "Sales", 0, 600)
	reward := createReward(t, db, "Gift Card", 500, 5, false)

	request, err := svc.Create(context.Background(), services.CreateRedemptionInput{
		EmployeeID:   employee.ID,
		RewardID:     reward.ID,
		ShippingType: models.ShippingDigital,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ShippingNotRequired, request.ShippingStatus)
}

func TestCreate_InsufficientBalanceLeavesStockUntouched(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewRedemptionService(db)

	employee := createEmployee(t, db, "Eli", "Short", models.RoleEmployee, "Sales", 0, 300)
	reward := createReward(t, db, "Gift Card", 500, 5, false)

	_, err := svc.Create(context.Background(), services.CreateRedemptionInput{
		EmployeeID:   employee.ID,
		RewardID:     reward.ID,
		ShippingType: models.ShippingDigital,
	})
	assert.True(t, services.IsKind(err, services.KindInsufficientBalance))

	assert.Equal(t, 5, reloadReward(t, db, reward.ID).Stock)
	assert.Equal(t, 300, reloadEmployee(t, db, employee.ID).PointsBalance)
	assert.Zero(t, countAudit(t, db, services.ActionRedemptionCreated))
}

func TestCreate_LastUnitOfStock(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewRedemptionService(db)

	first := createEmployee(t, db, "Fia", "First", models.RoleEmployee, "Sales", 0, 400)
	second := createEmployee(t, db, "Sam", "Second", models.RoleEmployee, "Sales", 0, 400)
	reward := createReward(t, db, "Headphones", 200, 1, true)

	_, err := svc.Create(context.Background(), services.CreateRedemptionInput{
		EmployeeID:   first.ID,
		RewardID:     reward.ID,
		ShippingType: models.ShippingPickup,
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), services.CreateRedemptionInput{
		EmployeeID:   second.ID,
		RewardID:     reward.ID,
		ShippingType: models.ShippingPickup,
	})
	assert.True(t, services.IsKind(err, services.KindOutOfStock))

	// The loser's balance debit rolled back with the unit of work.
	assert.Equal(t, 400, reloadEmployee(t, db, second.ID).PointsBalance)
	assert.Equal(t, 0, reloadReward(t, db, reward.ID).Stock)
}

func TestCreate_Validation(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewRedemptionService(db)

	employee := createEmployee(t, db, "Val", "Idator", models.RoleEmployee, "Sales", 0, 1000)
	physical := createReward(t, db, "Mug", 100, 5, true)
	digital := createReward(t, db, "Voucher", 100, 5, false)
	retired := createReward(t, db, "Old Mug", 100, 5, true)
	require.NoError(t, db.Model(&models.Reward{}).Where("id = ?", retired.ID).
		Update("status", models.RewardInactive).Error)

	_, err := svc.Create(context.Background(), services.CreateRedemptionInput{
		EmployeeID:   employee.ID,
		RewardID:     physical.ID,
		ShippingType: models.ShippingDelivery,
	})
	assert.True(t, services.IsKind(err, services.KindValidation), "delivery without address")

	_, err = svc.Create(context.Background(), services.CreateRedemptionInput{
		EmployeeID:   employee.ID,
		RewardID:     digital.ID,
		ShippingType: models.ShippingPickup,
	})
	assert.True(t, services.IsKind(err, services.KindValidation), "pickup for digital reward")

	_, err = svc.Create(context.Background(), services.CreateRedemptionInput{
		EmployeeID:   employee.ID,
		RewardID:     retired.ID,
		ShippingType: models.ShippingPickup,
	})
	assert.True(t, services.IsKind(err, services.KindValidation), "inactive reward")

	_, err = svc.Create(context.Background(), services.CreateRedemptionInput{
		EmployeeID:   employee.ID,
		RewardID:     uuid.New(),
		ShippingType: models.ShippingPickup,
	})
	assert.True(t, services.IsKind(err, services.KindNotFound), "missing reward")
}

func TestApprove_PhysicalEntersProcessing(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewRedemptionService(db)
	admin := createEmployee(t, db, "Ada", "Admin", models.RoleAdmin, "HQ", 0, 0)
	employee := createEmployee(t, db, "Rae", "Redeemer", models.RoleEmployee, "Sales", 0, 500)
	reward := createReward(t, db, "Mug", 300, 5, true)

	request, err := svc.Create(context.Background(), services.CreateRedemptionInput{
		EmployeeID:   employee.ID,
		RewardID:     reward.ID,
		ShippingType: models.ShippingPickup,
	})
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), request.ID, admin.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, approved.Status)
	assert.Equal(t, models.ShippingProcessing, approved.ShippingStatus)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, admin.ID, *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)

	// Approval keeps the reservation: stock stays decremented.
	assert.Equal(t, 4, reloadReward(t, db, reward.ID).Stock)

	_, err = svc.Approve(context.Background(), request.ID, admin.ID, "")
	assert.True(t, services.IsKind(err, services.KindInvalidState))
}

func TestApprove_DigitalCodeIsRedactedInAudit(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewRedemptionService(db)
	admin := createEmployee(t, db, "Ada", "Admin", models.RoleAdmin, "HQ", 0, 0)
	employee := createEmployee(t, db, "Dan", "Digital", models.RoleEmployee, "Sales", 0, 500)
	reward := createReward(t, db, "Voucher", 200, 5, false)

	request, err := svc.Create(context.Background(), services.CreateRedemptionInput{
		EmployeeID:   employee.ID,
		RewardID:     reward.ID,
		ShippingType: models.ShippingDigital,
	})
	require.NoError(t, err)

	const code = "SECRET-CODE-42"
	approved, err := svc.Approve(context.Background(), request.ID, admin.ID, code)
	require.NoError(t, err)
	assert.Equal(t, models.ShippingNotRequired, approved.ShippingStatus)
	assert.Equal(t, code, approved.DigitalCode)

	var entry models.AuditLog
	require.NoError(t, db.Where("action = ?", services.ActionRedemptionApproved).First(&entry).Error)
	assert.Contains(t, string(entry.Details), "[redacted]")
	assert.NotContains(t, string(entry.Details), code)
}

func TestReject_RestoresStockAndRefundsPoints(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewRedemptionService(db)
	admin := createEmployee(t, db, "Ada", "Admin", models.RoleAdmin, "HQ", 0, 0)
	employee := createEmployee(t, db, "Rae", "Redeemer", models.RoleEmployee, "Sales", 0, 500)
	reward := createReward(t, db, "Mug", 300, 5, true)

	request, err := svc.Create(context.Background(), services.CreateRedemptionInput{
		EmployeeID:   employee.ID,
		RewardID:     reward.ID,
		ShippingType: models.ShippingPickup,
	})
	require.NoError(t, err)
	require.Equal(t, 4, reloadReward(t, db, reward.ID).Stock)
	require.Equal(t, 200, reloadEmployee(t, db, employee.ID).PointsBalance)

	rejected, err := svc.Reject(context.Background(), request.ID, admin.ID, "duplicate request")
	require.NoError(t, err)
	assert.Equal(t, models.RequestRejected, rejected.Status)
	assert.Equal(t, "duplicate request", rejected.RejectedReason)

	assert.Equal(t, 5, reloadReward(t, db, reward.ID).Stock)
	assert.Equal(t, 500, reloadEmployee(t, db, employee.ID).PointsBalance)

	_, err = svc.Reject(context.Background(), request.ID, admin.ID, "again")
	assert.True(t, services.IsKind(err, services.KindInvalidState))
	// The compensation fired exactly once.
	assert.Equal(t, 5, reloadReward(t, db, reward.ID).Stock)
	assert.Equal(t, 500, reloadEmployee(t, db, employee.ID).PointsBalance)
}

func TestReject_RefundsCreationTimeSnapshotAfterPriceChange(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewRedemptionService(db)
	admin := createEmployee(t, db, "Ada", "Admin", models.RoleAdmin, "HQ", 0, 0)
	employee := createEmployee(t, db, "Rae", "Redeemer", models.RoleEmployee, "Sales", 0, 500)
	reward := createReward(t, db, "Mug", 300, 5, true)

	request, err := svc.Create(context.Background(), services.CreateRedemptionInput{
		EmployeeID:   employee.ID,
		RewardID:     reward.ID,
		ShippingType: models.ShippingPickup,
	})
	require.NoError(t, err)

	// Catalog price rises while the request is pending.
	require.NoError(t, db.Model(&models.Reward{}).Where("id = ?", reward.ID).
		Update("points_cost", 900).Error)

	_, err = svc.Reject(context.Background(), request.ID, admin.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 500, reloadEmployee(t, db, employee.ID).PointsBalance)
}

func TestReturnFlow_CompensatesOnceAndOnlyOnce(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewRedemptionService(db)
	admin := createEmployee(t, db, "Ada", "Admin", models.RoleAdmin, "HQ", 0, 0)
	employee := createEmployee(t, db, "Rae", "Redeemer", models.RoleEmployee, "Sales", 0, 500)
	reward := createReward(t, db, "Mug", 300, 5, true)

	request, err := svc.Create(context.Background(), services.CreateRedemptionInput{
		EmployeeID:   employee.ID,
		RewardID:     reward.ID,
		ShippingType: models.ShippingPickup,
	})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), request.ID, admin.ID, "")
	require.NoError(t, err)

	shipped, err := svc.UpdateShipment(context.Background(), request.ID, admin.ID, services.ShipmentUpdateInput{
		Status:         models.ShippingShipped,
		TrackingNumber: "TRK-1",
		Carrier:        "DHL",
	})
	require.NoError(t, err)
	assert.Equal(t, "TRK-1", shipped.TrackingNumber)
	assert.NotNil(t, shipped.ShippedAt)

	returned, err := svc.MarkReturned(context.Background(), request.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ShippingReturned, returned.ShippingStatus)
	assert.NotNil(t, returned.ReturnedAt)

	assert.Equal(t, 5, reloadReward(t, db, reward.ID).Stock)
	assert.Equal(t, 500, reloadEmployee(t, db, employee.ID).PointsBalance)

	_, err = svc.MarkReturned(context.Background(), request.ID, admin.ID)
	require.True(t, services.IsKind(err, services.KindInvalidState))
	assert.Contains(t, err.Error(), "already returned")
	assert.Equal(t, 5, reloadReward(t, db, reward.ID).Stock)
	assert.Equal(t, 500, reloadEmployee(t, db, employee.ID).PointsBalance)
	assert.Equal(t, int64(1), countAudit(t, db, services.ActionShipmentReturned))
}

func TestMarkReturned_RequiresPostApprovalShipmentState(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewRedemptionService(db)
	admin := createEmployee(t, db, "Ada", "Admin", models.RoleAdmin, "HQ", 0, 0)
	employee := createEmployee(t, db, "Dan", "Digital", models.RoleEmployee, "Sales", 0, 500)
	digital := createReward(t, db, "Voucher", 200, 5, false)

	request, err := svc.Create(context.Background(), services.CreateRedemptionInput{
		EmployeeID:   employee.ID,
		RewardID:     digital.ID,
		ShippingType: models.ShippingDigital,
	})
	require.NoError(t, err)

	// Pending requests have nothing shipped out to take back.
	_, err = svc.MarkReturned(context.Background(), request.ID, admin.ID)
	assert.True(t, services.IsKind(err, services.KindInvalidState))

	_, err = svc.Approve(context.Background(), request.ID, admin.ID, "")
	require.NoError(t, err)

	// Digital requests never enter the shipment machine.
	_, err = svc.MarkReturned(context.Background(), request.ID, admin.ID)
	assert.True(t, services.IsKind(err, services.KindInvalidState))
}

func TestShipmentAdvance_EnforcesOrder(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewRedemptionService(db)
	admin := createEmployee(t, db, "Ada", "Admin", models.RoleAdmin, "HQ", 0, 0)
	employee := createEmployee(t, db, "Rae", "Redeemer", models.RoleEmployee, "Sales", 0, 500)
	reward := createReward(t, db, "Mug", 300, 5, true)

	request, err := svc.Create(context.Background(), services.CreateRedemptionInput{
		EmployeeID:   employee.ID,
		RewardID:     reward.ID,
		ShippingType: models.ShippingPickup,
	})
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), request.ID, admin.ID, "")
	require.NoError(t, err)

	// DELIVERED cannot be reached before SHIPPED.
	_, err = svc.UpdateShipment(context.Background(), request.ID, admin.ID, services.ShipmentUpdateInput{
		Status: models.ShippingDelivered,
	})
	assert.True(t, services.IsKind(err, services.KindInvalidState))

	_, err = svc.UpdateShipment(context.Background(), request.ID, admin.ID, services.ShipmentUpdateInput{
		Status: models.ShippingShipped,
	})
	require.NoError(t, err)

	delivered, err := svc.UpdateShipment(context.Background(), request.ID, admin.ID, services.ShipmentUpdateInput{
		Status: models.ShippingDelivered,
	})
	require.NoError(t, err)
	assert.NotNil(t, delivered.DeliveredAt)

	// PROCESSING is set by approval, not by the shipment advance.
	_, err = svc.UpdateShipment(context.Background(), request.ID, admin.ID, services.ShipmentUpdateInput{
		Status: models.ShippingProcessing,
	})
	assert.True(t, services.IsKind(err, services.KindValidation))
}

func TestConfirmDelivery_OwnershipAndState(t *testing.T) {
	db := setupTestDB(t)
	svc := services.NewRedemptionService(db)
	admin := createEmployee(t, db, "Ada", "Admin", models.RoleAdmin, "HQ", 0, 0)
	owner := createEmployee(t, db, "Own", "Er", models.RoleEmployee, "Sales", 0, 500)
	stranger := createEmployee(t, db, "Str", "Anger", models.RoleEmployee, "Sales", 0, 500)
	reward := createReward(t, db, "Mug", 300, 5, true)

	request, err := svc.Create(context.Background(), services.CreateRedemptionInput{
		EmployeeID:   owner.ID,
		RewardID:     reward.ID,
		ShippingType: models.ShippingPickup,
	})
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), request.ID, admin.ID, "")
	require.NoError(t, err)

	// Not yet shipped.
	_, err = svc.ConfirmDelivery(context.Background(), request.ID, owner.ID)
	assert.True(t, services.IsKind(err, services.KindInvalidState))

	_, err = svc.UpdateShipment(context.Background(), request.ID, admin.ID, services.ShipmentUpdateInput{
		Status: models.ShippingShipped,
	})
	require.NoError(t, err)

	_, err = svc.ConfirmDelivery(context.Background(), request.ID, stranger.ID)
	assert.True(t, services.IsKind(err, services.KindForbidden))

	confirmed, err := svc.ConfirmDelivery(context.Background(), request.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ShippingDelivered, confirmed.ShippingStatus)
	assert.NotNil(t, confirmed.DeliveredAt)
	assert.Equal(t, int64(1), countAudit(t, db, services.ActionDeliveryConfirmed))
}
