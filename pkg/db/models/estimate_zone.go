package models

import (
	"time"

	"github.com/google/uuid"
)

// EstimateZone groups items by physical site area. Deleting a zone clears
// zone_id on member items; it never deletes them.
type EstimateZone struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EstimateID uuid.UUID `gorm:"column:estimate_id;type:uuid;not null"`
	Label      string    `gorm:"column:label;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
