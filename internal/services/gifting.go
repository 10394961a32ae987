package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/example/kudos/internal/models"
)

// GiftingService executes point transfers between employees. Every gift is
// one atomic unit: quota debit on the giver, balance credit on each
// recipient, the transaction record and its audit entry commit together or
// not at all.
type GiftingService struct {
	db *gorm.DB
}

// NewGiftingService constructs GiftingService.
func NewGiftingService(db *gorm.DB) *GiftingService {
	return &GiftingService{db: db}
}

// Group gift allocation modes.
const (
	GiftModeEqual  = "equal"
	GiftModeCustom = "custom"
)

// Group recipient selectors.
const (
	GroupByRole       = "role"
	GroupByDepartment = "department"
)

// SingleGiftInput describes a one-recipient gift.
type SingleGiftInput struct {
	GiverID     uuid.UUID
	RecipientID uuid.UUID
	Points      int
	CategoryID  uuid.UUID
	Message     string
	Source      string
}

// CustomAllocation assigns an explicit share to one group member.
type CustomAllocation struct {
	RecipientID uuid.UUID `json:"recipient_id"`
	Points      int       `json:"points"`
}

// GroupGiftInput describes a gift to every member of a role or department.
// In equal mode TotalPoints is the per-person amount, not a pool to split.
type GroupGiftInput struct {
	GiverID           uuid.UUID
	GroupType         string
	GroupValue        string
	TotalPoints       int
	CategoryID        uuid.UUID
	Mode              string
	CustomAllocations []CustomAllocation
	Message           string
	Source            string
}

// GiveSingle transfers points from one employee to another.
func (s *GiftingService) GiveSingle(ctx context.Context, in SingleGiftInput) (*models.RewardTransaction, error) {
	if in.Points <= 0 {
		return nil, newError(KindValidation, "points must be positive")
	}
	if in.GiverID == in.RecipientID {
		return nil, newError(KindValidation, "cannot gift points to yourself")
	}

	var txnID uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		giver, err := findEmployee(tx, in.GiverID, "giver")
		if err != nil {
			return err
		}
		recipient, err := findEmployee(tx, in.RecipientID, "recipient")
		if err != nil {
			return err
		}
		category, err := findActiveCategory(tx, in.CategoryID)
		if err != nil {
			return err
		}

		if err := debitQuota(tx, giver.ID, in.Points); err != nil {
			return err
		}
		if err := creditBalance(tx, recipient.ID, in.Points); err != nil {
			return err
		}

		txn := models.RewardTransaction{
			Type:        models.TransactionSingle,
			Status:      models.TransactionCompleted,
			GiverID:     giver.ID,
			TotalPoints: in.Points,
			Message:     in.Message,
			Source:      in.Source,
			Allocations: []models.TransactionAllocation{{
				RecipientID: recipient.ID,
				CategoryID:  category.ID,
				Points:      in.Points,
			}},
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}
		txnID = txn.ID

		return recordAudit(tx, ActionGiftSingle, "reward_transaction", txn.ID, giver.ID, map[string]any{
			"giver_name":     giver.DisplayName(),
			"recipient_name": recipient.DisplayName(),
			"category":       category.Name,
			"points":         in.Points,
		})
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"transaction_id": txnID, "points": in.Points}).Info("single gift completed")
	return s.loadTransaction(ctx, txnID)
}

// GiveGroup transfers points from one giver to every eligible member of a
// group. Executives are eligible givers but never recipients.
func (s *GiftingService) GiveGroup(ctx context.Context, in GroupGiftInput) (*models.RewardTransaction, error) {
	if in.Mode != GiftModeEqual && in.Mode != GiftModeCustom {
		return nil, newError(KindValidation, "mode must be %q or %q", GiftModeEqual, GiftModeCustom)
	}
	if in.Mode == GiftModeEqual && in.TotalPoints <= 0 {
		return nil, newError(KindValidation, "points must be positive")
	}

	var txnID uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		giver, err := findEmployee(tx, in.GiverID, "giver")
		if err != nil {
			return err
		}
		category, err := findActiveCategory(tx, in.CategoryID)
		if err != nil {
			return err
		}

		members, err := resolveGroup(tx, in.GroupType, in.GroupValue, giver.ID)
		if err != nil {
			return err
		}
		if len(members) == 0 {
			return newError(KindEmptySet, "no eligible recipients in %s %q", in.GroupType, in.GroupValue)
		}

		allocations, total, err := buildAllocations(in, members, category.ID)
		if err != nil {
			return err
		}

		if err := debitQuota(tx, giver.ID, total); err != nil {
			return err
		}
		for _, alloc := range allocations {
			if err := creditBalance(tx, alloc.RecipientID, alloc.Points); err != nil {
				return err
			}
		}

		txn := models.RewardTransaction{
			Type:        models.TransactionGroup,
			Status:      models.TransactionCompleted,
			GiverID:     giver.ID,
			TotalPoints: total,
			Message:     in.Message,
			Source:      in.Source,
			GroupType:   in.GroupType,
			GroupValue:  in.GroupValue,
			Allocations: allocations,
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}
		txnID = txn.ID

		return recordAudit(tx, ActionGiftGroup, "reward_transaction", txn.ID, giver.ID, map[string]any{
			"giver_name":   giver.DisplayName(),
			"category":     category.Name,
			"group_type":   in.GroupType,
			"group_value":  in.GroupValue,
			"mode":         in.Mode,
			"recipients":   len(allocations),
			"total_points": total,
		})
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"transaction_id": txnID}).Info("group gift completed")
	return s.loadTransaction(ctx, txnID)
}

func (s *GiftingService) loadTransaction(ctx context.Context, id uuid.UUID) (*models.RewardTransaction, error) {
	var txn models.RewardTransaction
	err := s.db.WithContext(ctx).
		Preload("Giver").
		Preload("Allocations.Recipient").
		Preload("Allocations.Category").
		First(&txn, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func buildAllocations(in GroupGiftInput, members []models.Employee, categoryID uuid.UUID) ([]models.TransactionAllocation, int, error) {
	if in.Mode == GiftModeEqual {
		allocations := make([]models.TransactionAllocation, 0, len(members))
		for _, m := range members {
			allocations = append(allocations, models.TransactionAllocation{
				RecipientID: m.ID,
				CategoryID:  categoryID,
				Points:      in.TotalPoints,
			})
		}
		return allocations, in.TotalPoints * len(members), nil
	}

	if len(in.CustomAllocations) == 0 {
		return nil, 0, newError(KindValidation, "custom mode requires allocations")
	}

	eligible := make(map[uuid.UUID]bool, len(members))
	for _, m := range members {
		eligible[m.ID] = true
	}

	allocations := make([]models.TransactionAllocation, 0, len(in.CustomAllocations))
	total := 0
	for _, custom := range in.CustomAllocations {
		if custom.Points <= 0 {
			return nil, 0, newError(KindValidation, "allocation points must be positive")
		}
		if !eligible[custom.RecipientID] {
			return nil, 0, newError(KindValidation, "recipient %s is not a member of the group", custom.RecipientID)
		}
		allocations = append(allocations, models.TransactionAllocation{
			RecipientID: custom.RecipientID,
			CategoryID:  categoryID,
			Points:      custom.Points,
		})
		total += custom.Points
	}
	return allocations, total, nil
}

// resolveGroup returns the gift-eligible members of a group: everyone
// matching the selector except the giver and executives.
func resolveGroup(tx *gorm.DB, groupType, groupValue string, giverID uuid.UUID) ([]models.Employee, error) {
	query := tx.Where("id <> ?", giverID).Where("role <> ?", models.RoleExecutive)

	switch groupType {
	case GroupByRole:
		role, err := models.ParseRole(groupValue)
		if err != nil {
			return nil, newError(KindValidation, "%v", err)
		}
		query = query.Where("role = ?", role)
	case GroupByDepartment:
		query = query.Where("LOWER(department) = ?", strings.ToLower(strings.TrimSpace(groupValue)))
	default:
		return nil, newError(KindValidation, "group type must be %q or %q", GroupByRole, GroupByDepartment)
	}

	var members []models.Employee
	if err := query.Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func findEmployee(tx *gorm.DB, id uuid.UUID, label string) (*models.Employee, error) {
	var employee models.Employee
	if err := tx.First(&employee, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "%s not found", label)
		}
		return nil, err
	}
	return &employee, nil
}

func findActiveCategory(tx *gorm.DB, id uuid.UUID) (*models.RewardCategory, error) {
	var category models.RewardCategory
	if err := tx.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "category not found")
		}
		return nil, err
	}
	if !category.IsActive {
		return nil, newError(KindValidation, "category %q is not active", category.Name)
	}
	return &category, nil
}

// debitQuota performs an atomic conditional quota deduction. Zero affected
// rows means the guard lost, never a partial debit.
func debitQuota(tx *gorm.DB, employeeID uuid.UUID, points int) error {
	res := tx.Model(&models.Employee{}).
		Where("id = ? AND quota >= ?", employeeID, points).
		UpdateColumn("quota", gorm.Expr("quota - ?", points))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return newError(KindInsufficientQuota, "giving quota is insufficient for %d points", points)
	}
	return nil
}

func creditBalance(tx *gorm.DB, employeeID uuid.UUID, points int) error {
	res := tx.Model(&models.Employee{}).
		Where("id = ?", employeeID).
		UpdateColumn("points_balance", gorm.Expr("points_balance + ?", points))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return newError(KindNotFound, "recipient not found")
	}
	return nil
}
