package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DaKloudStudios/cruzremodel-backend/pkg/db/models"
	pkgerrors "github.com/DaKloudStudios/cruzremodel-backend/pkg/errors"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/logger"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/pricing"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/redis"
)

const metricsCacheKeyPart = "business-metrics"

type settingsRepository interface {
	FindFirst(ctx context.Context) (*models.BusinessSettings, error)
	Create(ctx context.Context, settings *models.BusinessSettings) error
	UpdateWithTx(tx *gorm.DB, settings *models.BusinessSettings) error
	ReplaceEmployeesWithTx(tx *gorm.DB, settingsID uuid.UUID, employees []models.Employee) error
	ReplaceOverheadWithTx(tx *gorm.DB, settingsID uuid.UUID, items []models.OverheadItem) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// metricsCache is the slice of the redis client the service consumes. A nil
// cache disables caching; metrics are recomputed on every call.
type metricsCache interface {
	CacheKey(parts ...string) string
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Service exposes company settings and derived business metrics.
type Service interface {
	Get(ctx context.Context) (*SettingsDTO, error)
	Update(ctx context.Context, input UpdateSettingsInput) (*SettingsDTO, error)
	Metrics(ctx context.Context) (*MetricsDTO, error)
	CurrentSnapshot(ctx context.Context) (pricing.Snapshot, error)
	CurrentRules(ctx context.Context) (pricing.BusinessRules, error)
	TaxLaborByDefault(ctx context.Context) (bool, error)
}

type service struct {
	repo     settingsRepository
	tx       txRunner
	cache    metricsCache
	cacheTTL time.Duration
	logg     *logger.Logger
}

// NewService builds a settings service. cache may be nil.
func NewService(repo settingsRepository, tx txRunner, cache metricsCache, cacheTTL time.Duration, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		cache:    cache,
		cacheTTL: cacheTTL,
		logg:     logg,
	}, nil
}

// loadOrBootstrap returns the settings row, creating an all-zero one the
// first time the company is asked for its configuration.
func (s *service) loadOrBootstrap(ctx context.Context) (*models.BusinessSettings, error) {
	settings, err := s.repo.FindFirst(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load settings")
	}

	fresh := &models.BusinessSettings{ID: uuid.New()}
	if err := s.repo.Create(ctx, fresh); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bootstrap settings")
	}
	s.logg.Info(ctx, "bootstrapped empty business settings")
	return fresh, nil
}

func (s *service) Get(ctx context.Context) (*SettingsDTO, error) {
	settings, err := s.loadOrBootstrap(ctx)
	if err != nil {
		return nil, err
	}
	return FromModel(settings), nil
}

func (s *service) Update(ctx context.Context, input UpdateSettingsInput) (*SettingsDTO, error) {
	if err := validateUpdate(input); err != nil {
		return nil, err
	}

	settings, err := s.loadOrBootstrap(ctx)
	if err != nil {
		return nil, err
	}

	applyScalars(settings, input)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.UpdateWithTx(tx, settings); err != nil {
			return fmt.Errorf("update settings: %w", err)
		}
		if input.Employees != nil {
			employees := make([]models.Employee, 0, len(*input.Employees))
			for _, e := range *input.Employees {
				employees = append(employees, models.Employee{
					Name:               e.Name,
					PayType:            e.PayType,
					Wage:               e.Wage,
					BurdenPercent:      e.BurdenPercent,
					UtilizationPercent: e.UtilizationPercent,
				})
			}
			if err := s.repo.ReplaceEmployeesWithTx(tx, settings.ID, employees); err != nil {
				return fmt.Errorf("replace employees: %w", err)
			}
		}
		if input.OverheadItems != nil {
			items := make([]models.OverheadItem, 0, len(*input.OverheadItems))
			for _, o := range *input.OverheadItems {
				items = append(items, models.OverheadItem{
					Label:     o.Label,
					Amount:    o.Amount,
					Frequency: o.Frequency,
				})
			}
			if err := s.repo.ReplaceOverheadWithTx(tx, settings.ID, items); err != nil {
				return fmt.Errorf("replace overhead items: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist settings")
	}

	s.invalidateMetrics(ctx)

	updated, err := s.repo.FindFirst(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload settings")
	}
	return FromModel(updated), nil
}

func (s *service) Metrics(ctx context.Context) (*MetricsDTO, error) {
	if s.cache != nil {
		key := s.cache.CacheKey(metricsCacheKeyPart)
		raw, err := s.cache.Get(ctx, key)
		if err == nil {
			var dto MetricsDTO
			if unmarshalErr := json.Unmarshal([]byte(raw), &dto); unmarshalErr == nil {
				return &dto, nil
			}
			// Corrupt entries fall through to a recompute.
		} else if !redis.IsNil(err) {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "metrics cache read failed")
		}
	}

	settings, err := s.loadOrBootstrap(ctx)
	if err != nil {
		return nil, err
	}
	dto := MetricsFromPricing(pricing.ComputeMetrics(ToPricingSettings(settings)))

	if s.cache != nil {
		payload, marshalErr := json.Marshal(dto)
		if marshalErr == nil {
			key := s.cache.CacheKey(metricsCacheKeyPart)
			if setErr := s.cache.Set(ctx, key, payload, s.cacheTTL); setErr != nil {
				s.logg.Warn(s.logg.WithField(ctx, "error", setErr.Error()), "metrics cache write failed")
			}
		}
	}
	return dto, nil
}

// CurrentSnapshot derives the frozen pricing rates a new estimate captures.
// It always recomputes from the stored settings rather than trusting the
// cache, since snapshot capture is a one-time write.
func (s *service) CurrentSnapshot(ctx context.Context) (pricing.Snapshot, error) {
	settings, err := s.loadOrBootstrap(ctx)
	if err != nil {
		return pricing.Snapshot{}, err
	}
	metrics := pricing.ComputeMetrics(ToPricingSettings(settings))
	return pricing.SnapshotFromMetrics(metrics, settings.MaterialMarkupPercent), nil
}

// CurrentRules returns the live fee rules. Unlike labor rates these are
// never frozen into an estimate snapshot; totals always price fees at the
// current configuration.
func (s *service) CurrentRules(ctx context.Context) (pricing.BusinessRules, error) {
	settings, err := s.loadOrBootstrap(ctx)
	if err != nil {
		return pricing.BusinessRules{}, err
	}
	return pricing.BusinessRules{
		MinServiceCallFee:         settings.MinServiceCallFee,
		TripCharge:                settings.TripCharge,
		EmergencySurchargePercent: settings.EmergencySurchargePercent,
	}, nil
}

// TaxLaborByDefault reports the company-wide default for taxing labor.
func (s *service) TaxLaborByDefault(ctx context.Context) (bool, error) {
	settings, err := s.loadOrBootstrap(ctx)
	if err != nil {
		return false, err
	}
	return settings.TaxLaborByDefault, nil
}

func (s *service) invalidateMetrics(ctx context.Context) {
	if s.cache == nil {
		return
	}
	key := s.cache.CacheKey(metricsCacheKeyPart)
	if err := s.cache.Del(ctx, key); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "metrics cache invalidation failed")
	}
}

func applyScalars(settings *models.BusinessSettings, input UpdateSettingsInput) {
	if input.WeeksPerYear != nil {
		settings.WeeksPerYear = *input.WeeksPerYear
	}
	if input.DaysPerWeek != nil {
		settings.DaysPerWeek = *input.DaysPerWeek
	}
	if input.HoursPerDay != nil {
		settings.HoursPerDay = *input.HoursPerDay
	}
	if input.TargetMarginPercent != nil {
		settings.TargetMarginPercent = *input.TargetMarginPercent
	}
	if input.MaterialMarkupPercent != nil {
		settings.MaterialMarkupPercent = *input.MaterialMarkupPercent
	}
	if input.TaxLaborByDefault != nil {
		settings.TaxLaborByDefault = *input.TaxLaborByDefault
	}
	if input.MinServiceCallFee != nil {
		settings.MinServiceCallFee = *input.MinServiceCallFee
	}
	if input.TripCharge != nil {
		settings.TripCharge = *input.TripCharge
	}
	if input.EmergencySurchargePercent != nil {
		settings.EmergencySurchargePercent = *input.EmergencySurchargePercent
	}
}

func validateUpdate(input UpdateSettingsInput) error {
	nonNegative := map[string]*float64{
		"weeks_per_year":              input.WeeksPerYear,
		"days_per_week":               input.DaysPerWeek,
		"hours_per_day":               input.HoursPerDay,
		"material_markup_percent":     input.MaterialMarkupPercent,
		"min_service_call_fee":        input.MinServiceCallFee,
		"trip_charge":                 input.TripCharge,
		"emergency_surcharge_percent": input.EmergencySurchargePercent,
	}
	for field, value := range nonNegative {
		if value != nil && *value < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, field+" must not be negative")
		}
	}
	if input.TargetMarginPercent != nil && (*input.TargetMarginPercent < 0 || *input.TargetMarginPercent >= 100) {
		return pkgerrors.New(pkgerrors.CodeValidation, "target_margin_percent must be in [0, 100)")
	}
	if input.Employees != nil {
		for _, e := range *input.Employees {
			if e.Name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "employee name is required")
			}
			if !e.PayType.IsValid() {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid pay type")
			}
			if e.Wage < 0 || e.BurdenPercent < 0 || e.UtilizationPercent < 0 || e.UtilizationPercent > 100 {
				return pkgerrors.New(pkgerrors.CodeValidation, "employee figures out of range")
			}
		}
	}
	if input.OverheadItems != nil {
		for _, o := range *input.OverheadItems {
			if o.Label == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "overhead label is required")
			}
			if !o.Frequency.IsValid() {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid overhead frequency")
			}
			if o.Amount < 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "overhead amount must not be negative")
			}
		}
	}
	return nil
}
