package services_test

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/kudos/internal/database"
	"github.com/example/kudos/internal/models"
)

var dbSeq atomic.Int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:kudos_%d_%d?mode=memory&cache=shared", time.Now().UnixNano(), dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createEmployee(t *testing.T, db *gorm.DB, first, last string, role models.Role, department string, quota, balance int) models.Employee {
	t.Helper()
	employee := models.Employee{
		FirstName:     first,
		LastName:      last,
		Email:         fmt.Sprintf("%s.%s.%d@example.com", first, last, dbSeq.Add(1)),
		Department:    department,
		Role:          role,
		Quota:         quota,
		PointsBalance: balance,
	}
	require.NoError(t, db.Create(&employee).Error)
	return employee
}

func createCategory(t *testing.T, db *gorm.DB, name string, active bool) models.RewardCategory {
	t.Helper()
	category := models.RewardCategory{Name: name, IsActive: active}
	require.NoError(t, db.Create(&category).Error)
	return category
}

func createReward(t *testing.T, db *gorm.DB, name string, cost, stock int, physical bool) models.Reward {
	t.Helper()
	reward := models.Reward{
		Name:       name,
		PointsCost: cost,
		Stock:      stock,
		IsPhysical: physical,
		Status:     models.RewardActive,
	}
	require.NoError(t, db.Create(&reward).Error)
	return reward
}

func reloadEmployee(t *testing.T, db *gorm.DB, id interface{}) models.Employee {
	t.Helper()
	var employee models.Employee
	require.NoError(t, db.First(&employee, "id = ?", id).Error)
	return employee
}

func reloadReward(t *testing.T, db *gorm.DB, id interface{}) models.Reward {
	t.Helper()
	var reward models.Reward
	require.NoError(t, db.First(&reward, "id = ?", id).Error)
	return reward
}

func countAudit(t *testing.T, db *gorm.DB, action string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Where("action = ?", action).Count(&count).Error)
	return count
}
