package estimates

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DaKloudStudios/cruzremodel-backend/internal/repo"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/db/models"
)

// Repository handles estimate persistence.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to estimate operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create persists a new estimate row.
func (r *Repository) Create(ctx context.Context, estimate *models.Estimate) error {
	if estimate == nil {
		return fmt.Errorf("estimate is required")
	}
	if estimate.ID == uuid.Nil {
		estimate.ID = uuid.New()
	}
	return r.DB(ctx).Create(estimate).Error
}

// FindByID loads an estimate with its items, zones and snapshot.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Estimate, error) {
	var estimate models.Estimate
	if err := r.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Zones", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Snapshot").
		Where("id = ?", id).
		First(&estimate).Error; err != nil {
		return nil, err
	}
	return &estimate, nil
}

// List returns all estimates, most recently touched first, without loading
// line items.
func (r *Repository) List(ctx context.Context) ([]models.Estimate, error) {
	var estimates []models.Estimate
	if err := r.DB(ctx).Order("updated_at DESC").Find(&estimates).Error; err != nil {
		return nil, err
	}
	return estimates, nil
}

// Update saves the estimate metadata and adjustment columns.
func (r *Repository) Update(ctx context.Context, estimate *models.Estimate) error {
	if estimate == nil {
		return fmt.Errorf("estimate is required")
	}
	return r.DB(ctx).Omit("Items", "Zones", "Snapshot").Save(estimate).Error
}

// Delete removes the estimate row. Child rows go with it via the cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.DB(ctx).Where("id = ?", id).Delete(&models.Estimate{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateItem persists a new line item.
func (r *Repository) CreateItem(ctx context.Context, item *models.EstimateItem) error {
	if item == nil {
		return fmt.Errorf("item is required")
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.DB(ctx).Create(item).Error
}

// UpdateItem saves a line item.
func (r *Repository) UpdateItem(ctx context.Context, item *models.EstimateItem) error {
	if item == nil {
		return fmt.Errorf("item is required")
	}
	return r.DB(ctx).Save(item).Error
}

// SaveItemsWithTx saves every provided line item in one transaction.
func (r *Repository) SaveItemsWithTx(tx *gorm.DB, items []models.EstimateItem) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	for i := range items {
		if err := tx.Save(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteItem removes a single line item scoped to its estimate.
func (r *Repository) DeleteItem(ctx context.Context, estimateID, itemID uuid.UUID) error {
	result := r.DB(ctx).
		Where("estimate_id = ? AND id = ?", estimateID, itemID).
		Delete(&models.EstimateItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateZone persists a new zone.
func (r *Repository) CreateZone(ctx context.Context, zone *models.EstimateZone) error {
	if zone == nil {
		return fmt.Errorf("zone is required")
	}
	if zone.ID == uuid.Nil {
		zone.ID = uuid.New()
	}
	return r.DB(ctx).Create(zone).Error
}

// UpdateZone saves a zone.
func (r *Repository) UpdateZone(ctx context.Context, zone *models.EstimateZone) error {
	if zone == nil {
		return fmt.Errorf("zone is required")
	}
	return r.DB(ctx).Save(zone).Error
}

// DeleteZoneWithTx removes a zone and detaches its items inside the provided
// transaction. The items survive; only their zone reference is cleared.
func (r *Repository) DeleteZoneWithTx(tx *gorm.DB, estimateID, zoneID uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if err := tx.Model(&models.EstimateItem{}).
		Where("estimate_id = ? AND zone_id = ?", estimateID, zoneID).
		Update("zone_id", nil).Error; err != nil {
		return err
	}
	result := tx.
		Where("estimate_id = ? AND id = ?", estimateID, zoneID).
		Delete(&models.EstimateZone{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateSnapshot persists the frozen pricing rates for an estimate. The
// unique index on estimate_id guarantees at most one snapshot per estimate.
func (r *Repository) CreateSnapshot(ctx context.Context, snapshot *models.PricingSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot is required")
	}
	if snapshot.ID == uuid.Nil {
		snapshot.ID = uuid.New()
	}
	return r.DB(ctx).Create(snapshot).Error
}
