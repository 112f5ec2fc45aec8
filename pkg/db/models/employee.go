package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/DaKloudStudios/cruzremodel-backend/pkg/enums"
)

// Employee is a roster entry feeding the labor cost derivation. Wage carries
// the hourly rate for hourly employees and the annual salary otherwise.
type Employee struct {
	ID                 uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SettingsID         uuid.UUID     `gorm:"column:settings_id;type:uuid;not null"`
	Name               string        `gorm:"column:name;not null"`
	PayType            enums.PayType `gorm:"column:pay_type;not null;default:'hourly'"`
	Wage               float64       `gorm:"column:wage;not null;default:0"`
	BurdenPercent      float64       `gorm:"column:burden_percent;not null;default:0"`
	UtilizationPercent float64       `gorm:"column:utilization_percent;not null;default:0"`
	CreatedAt          time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
