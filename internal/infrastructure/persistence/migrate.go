package persistence

import (
	"github.com/dealerlink/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the engine's tables. Ordering follows the
// foreign key direction: reference tables first, then settlement and grade
// tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.CompanyModel{},
		&models.PolicyModel{},
		&models.PolicyAssignmentModel{},
		&models.RateMatrixModel{},
		&models.SettlementModel{},
		&models.GradeTrackingModel{},
		&models.GradeBonusModel{},
	)
}
