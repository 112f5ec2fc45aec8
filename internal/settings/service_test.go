package settings

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/DaKloudStudios/cruzremodel-backend/pkg/db/models"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/enums"
	pkgerrors "github.com/DaKloudStudios/cruzremodel-backend/pkg/errors"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/logger"
)

type stubSettingsRepo struct {
	settings  *models.BusinessSettings
	employees []models.Employee
	overhead  []models.OverheadItem
	created   int
}

func (s *stubSettingsRepo) FindFirst(ctx context.Context) (*models.BusinessSettings, error) {
	if s.settings == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cpy := *s.settings
	cpy.Employees = append([]models.Employee(nil), s.employees...)
	cpy.OverheadItems = append([]models.OverheadItem(nil), s.overhead...)
	return &cpy, nil
}

func (s *stubSettingsRepo) Create(ctx context.Context, settings *models.BusinessSettings) error {
	s.created++
	cpy := *settings
	s.settings = &cpy
	return nil
}

func (s *stubSettingsRepo) UpdateWithTx(tx *gorm.DB, settings *models.BusinessSettings) error {
	cpy := *settings
	cpy.Employees = nil
	cpy.OverheadItems = nil
	s.settings = &cpy
	return nil
}

func (s *stubSettingsRepo) ReplaceEmployeesWithTx(tx *gorm.DB, settingsID uuid.UUID, employees []models.Employee) error {
	for i := range employees {
		if employees[i].ID == uuid.Nil {
			employees[i].ID = uuid.New()
		}
		employees[i].SettingsID = settingsID
	}
	s.employees = employees
	return nil
}

func (s *stubSettingsRepo) ReplaceOverheadWithTx(tx *gorm.DB, settingsID uuid.UUID, items []models.OverheadItem) error {
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].SettingsID = settingsID
	}
	s.overhead = items
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type fakeCache struct {
	entries map[string]string
	gets    int
	sets    int
	dels    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (f *fakeCache) CacheKey(parts ...string) string {
	return "cruz:cache:" + strings.Join(parts, ":")
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	f.gets++
	value, ok := f.entries[key]
	if !ok {
		return "", goredis.Nil
	}
	return value, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.sets++
	switch v := value.(type) {
	case string:
		f.entries[key] = v
	case []byte:
		f.entries[key] = string(v)
	}
	return nil
}

func (f *fakeCache) Del(ctx context.Context, keys ...string) error {
	f.dels++
	for _, key := range keys {
		delete(f.entries, key)
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func seededRepo() *stubSettingsRepo {
	id := uuid.New()
	return &stubSettingsRepo{
		settings: &models.BusinessSettings{
			ID:                    id,
			WeeksPerYear:          40,
			DaysPerWeek:           5,
			HoursPerDay:           8,
			TargetMarginPercent:   30,
			MaterialMarkupPercent: 25,
		},
		employees: []models.Employee{
			{ID: uuid.New(), SettingsID: id, Name: "Lead", PayType: enums.PayTypeHourly, Wage: 25, BurdenPercent: 20, UtilizationPercent: 80},
		},
		overhead: []models.OverheadItem{
			{ID: uuid.New(), SettingsID: id, Label: "Shop rent", Amount: 1000, Frequency: enums.OverheadFrequencyMonthly},
		},
	}
}

func TestGetBootstrapsEmptySettings(t *testing.T) {
	repo := &stubSettingsRepo{}
	svc, err := NewService(repo, stubTxRunner{}, nil, time.Hour, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	dto, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if repo.created != 1 {
		t.Fatalf("expected bootstrap create, got %d creates", repo.created)
	}
	if dto.ID == uuid.Nil {
		t.Fatalf("expected bootstrapped settings id")
	}
	if len(dto.Employees) != 0 || len(dto.OverheadItems) != 0 {
		t.Fatalf("expected empty roster and overhead")
	}

	if _, err := svc.Get(context.Background()); err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if repo.created != 1 {
		t.Fatalf("bootstrap should happen once, got %d creates", repo.created)
	}
}

func TestUpdateReplacesRosterAndInvalidatesCache(t *testing.T) {
	repo := seededRepo()
	cache := newFakeCache()
	svc, err := NewService(repo, stubTxRunner{}, cache, time.Hour, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	ctx := context.Background()

	// Warm the cache.
	if _, err := svc.Metrics(ctx); err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected cache write on miss, got %d", cache.sets)
	}

	margin := 35.0
	roster := []EmployeeInput{
		{Name: "Lead", PayType: enums.PayTypeHourly, Wage: 25, BurdenPercent: 20, UtilizationPercent: 80},
		{Name: "Apprentice", PayType: enums.PayTypeHourly, Wage: 18, BurdenPercent: 15, UtilizationPercent: 70},
	}
	dto, err := svc.Update(ctx, UpdateSettingsInput{
		TargetMarginPercent: &margin,
		Employees:           &roster,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if dto.TargetMarginPercent != 35 {
		t.Fatalf("expected margin 35, got %v", dto.TargetMarginPercent)
	}
	if len(dto.Employees) != 2 {
		t.Fatalf("expected roster of 2, got %d", len(dto.Employees))
	}
	if len(dto.OverheadItems) != 1 {
		t.Fatalf("nil overhead input must leave overhead untouched, got %d items", len(dto.OverheadItems))
	}
	if cache.dels != 1 {
		t.Fatalf("expected cache invalidation on update, got %d dels", cache.dels)
	}
}

func TestUpdateRejectsInvalidInput(t *testing.T) {
	repo := seededRepo()
	svc, err := NewService(repo, stubTxRunner{}, nil, time.Hour, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	bad := -5.0
	_, err = svc.Update(context.Background(), UpdateSettingsInput{TripCharge: &bad})
	if pkgErr := pkgerrors.As(err); pkgErr == nil || pkgErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	margin := 100.0
	_, err = svc.Update(context.Background(), UpdateSettingsInput{TargetMarginPercent: &margin})
	if pkgErr := pkgerrors.As(err); pkgErr == nil || pkgErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for margin 100, got %v", err)
	}

	roster := []EmployeeInput{{Name: "Ghost", PayType: enums.PayType("contractor"), Wage: 10}}
	_, err = svc.Update(context.Background(), UpdateSettingsInput{Employees: &roster})
	if pkgErr := pkgerrors.As(err); pkgErr == nil || pkgErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for bad pay type, got %v", err)
	}
}

func TestMetricsServedFromCache(t *testing.T) {
	repo := seededRepo()
	cache := newFakeCache()
	svc, err := NewService(repo, stubTxRunner{}, cache, time.Hour, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	ctx := context.Background()

	first, err := svc.Metrics(ctx)
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	// Season 40*5*8 = 1600 hours; one hourly employee at 80% utilization.
	if first.SeasonHours != 1600 {
		t.Fatalf("expected 1600 season hours, got %v", first.SeasonHours)
	}
	if first.TotalBillableHours != 1280 {
		t.Fatalf("expected 1280 billable hours, got %v", first.TotalBillableHours)
	}

	// Poison the stored settings: a cache hit must not recompute.
	repo.settings.WeeksPerYear = 1

	second, err := svc.Metrics(ctx)
	if err != nil {
		t.Fatalf("Metrics (cached): %v", err)
	}
	if second.SeasonHours != first.SeasonHours {
		t.Fatalf("expected cached metrics, got recomputed %v", second.SeasonHours)
	}
	if cache.sets != 1 {
		t.Fatalf("expected a single cache write, got %d", cache.sets)
	}
}

func TestMetricsRecomputesOnCorruptCacheEntry(t *testing.T) {
	repo := seededRepo()
	cache := newFakeCache()
	cache.entries[cache.CacheKey(metricsCacheKeyPart)] = "{not json"
	svc, err := NewService(repo, stubTxRunner{}, cache, time.Hour, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	dto, err := svc.Metrics(context.Background())
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if dto.SeasonHours != 1600 {
		t.Fatalf("expected recomputed metrics, got %v", dto.SeasonHours)
	}

	var stored MetricsDTO
	if err := json.Unmarshal([]byte(cache.entries[cache.CacheKey(metricsCacheKeyPart)]), &stored); err != nil {
		t.Fatalf("cache entry should be rewritten as valid json: %v", err)
	}
}

func TestCurrentSnapshotUsesStoredMaterialMarkup(t *testing.T) {
	repo := seededRepo()
	svc, err := NewService(repo, stubTxRunner{}, nil, time.Hour, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	snap, err := svc.CurrentSnapshot(context.Background())
	if err != nil {
		t.Fatalf("CurrentSnapshot: %v", err)
	}
	if snap.MaterialMarkupPercent != 25 {
		t.Fatalf("expected material markup 25, got %v", snap.MaterialMarkupPercent)
	}
	if snap.BaseLaborCost != 25 {
		t.Fatalf("expected base labor cost 25 (avg hourly wage), got %v", snap.BaseLaborCost)
	}
	if snap.LaborBurdenPercent != 20 {
		t.Fatalf("expected burden 20, got %v", snap.LaborBurdenPercent)
	}
}
