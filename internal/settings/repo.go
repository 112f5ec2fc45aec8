package settings

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DaKloudStudios/cruzremodel-backend/internal/repo"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/db/models"
)

// Repository handles business settings persistence. The settings table holds
// a single row; callers always address it through FindFirst.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to settings operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindFirst loads the settings row with its roster and overhead lines.
func (r *Repository) FindFirst(ctx context.Context) (*models.BusinessSettings, error) {
	var settings models.BusinessSettings
	if err := r.DB(ctx).
		Preload("Employees", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("OverheadItems", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

// Create persists a new settings row.
func (r *Repository) Create(ctx context.Context, settings *models.BusinessSettings) error {
	if settings == nil {
		return fmt.Errorf("settings is required")
	}
	return r.DB(ctx).Create(settings).Error
}

// UpdateWithTx saves the scalar settings columns using the provided transaction.
func (r *Repository) UpdateWithTx(tx *gorm.DB, settings *models.BusinessSettings) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if settings == nil {
		return fmt.Errorf("settings is required")
	}
	return tx.Omit("Employees", "OverheadItems").Save(settings).Error
}

// ReplaceEmployeesWithTx swaps the full roster for the settings row.
func (r *Repository) ReplaceEmployeesWithTx(tx *gorm.DB, settingsID uuid.UUID, employees []models.Employee) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if err := tx.Where("settings_id = ?", settingsID).Delete(&models.Employee{}).Error; err != nil {
		return err
	}
	if len(employees) == 0 {
		return nil
	}
	for i := range employees {
		if employees[i].ID == uuid.Nil {
			employees[i].ID = uuid.New()
		}
		employees[i].SettingsID = settingsID
	}
	return tx.Create(&employees).Error
}

// ReplaceOverheadWithTx swaps the full overhead list for the settings row.
func (r *Repository) ReplaceOverheadWithTx(tx *gorm.DB, settingsID uuid.UUID, items []models.OverheadItem) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if err := tx.Where("settings_id = ?", settingsID).Delete(&models.OverheadItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].SettingsID = settingsID
	}
	return tx.Create(&items).Error
}
