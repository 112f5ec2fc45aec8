package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/DaKloudStudios/cruzremodel-backend/pkg/enums"
)

// OverheadItem is one recurring overhead expense on the settings sheet.
type OverheadItem struct {
	ID         uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SettingsID uuid.UUID               `gorm:"column:settings_id;type:uuid;not null"`
	Label      string                  `gorm:"column:label;not null"`
	Amount     float64                 `gorm:"column:amount;not null;default:0"`
	Frequency  enums.OverheadFrequency `gorm:"column:frequency;not null;default:'monthly'"`
	CreatedAt  time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
