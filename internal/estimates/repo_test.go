package estimates

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/DaKloudStudios/cruzremodel-backend/pkg/db/models"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/enums"
)

func setupEstimatesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	estimates := `
CREATE TABLE IF NOT EXISTS estimates (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  client_name TEXT,
  status TEXT NOT NULL DEFAULT 'draft',
  trip_charge INTEGER NOT NULL DEFAULT 0,
  emergency_surcharge INTEGER NOT NULL DEFAULT 0,
  apply_tax INTEGER NOT NULL DEFAULT 0,
  tax_labor INTEGER NOT NULL DEFAULT 0,
  tax_rate_percent REAL NOT NULL DEFAULT 0,
  min_job_fee_applied INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	zones := `
CREATE TABLE IF NOT EXISTS estimate_zones (
  id TEXT PRIMARY KEY,
  estimate_id TEXT NOT NULL,
  label TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	items := `
CREATE TABLE IF NOT EXISTS estimate_items (
  id TEXT PRIMARY KEY,
  estimate_id TEXT NOT NULL,
  type TEXT NOT NULL DEFAULT 'other',
  description TEXT NOT NULL,
  quantity REAL NOT NULL DEFAULT 0,
  cost REAL NOT NULL DEFAULT 0,
  rate REAL NOT NULL DEFAULT 0,
  total REAL NOT NULL DEFAULT 0,
  margin_percent REAL NOT NULL DEFAULT 0,
  markup_percent REAL NOT NULL DEFAULT 0,
  calc_basis TEXT,
  zone_id TEXT,
  is_overridden INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	snapshots := `
CREATE TABLE IF NOT EXISTS pricing_snapshots (
  id TEXT PRIMARY KEY,
  estimate_id TEXT NOT NULL UNIQUE,
  base_labor_cost REAL NOT NULL DEFAULT 0,
  labor_burden_percent REAL NOT NULL DEFAULT 0,
  overhead_per_man_hour REAL NOT NULL DEFAULT 0,
  break_even_rate REAL NOT NULL DEFAULT 0,
  target_hourly_rate REAL NOT NULL DEFAULT 0,
  material_markup_percent REAL NOT NULL DEFAULT 0,
  created_at DATETIME
);`

	for _, ddl := range []string{estimates, zones, items, snapshots} {
		require.NoError(t, db.Exec(ddl).Error)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM pricing_snapshots")
		db.Exec("DELETE FROM estimate_items")
		db.Exec("DELETE FROM estimate_zones")
		db.Exec("DELETE FROM estimates")
	})

	return db
}

func seedEstimate(t *testing.T, repo *Repository) *models.Estimate {
	t.Helper()
	estimate := &models.Estimate{
		ID:     uuid.New(),
		Title:  "Deck build",
		Status: enums.EstimateStatusDraft,
	}
	require.NoError(t, repo.Create(context.Background(), estimate))
	return estimate
}

func TestRepositoryFindByIDPreloads(t *testing.T) {
	db := setupEstimatesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	estimate := seedEstimate(t, repo)
	zone := &models.EstimateZone{ID: uuid.New(), EstimateID: estimate.ID, Label: "Backyard"}
	require.NoError(t, repo.CreateZone(ctx, zone))
	require.NoError(t, repo.CreateItem(ctx, &models.EstimateItem{
		ID:          uuid.New(),
		EstimateID:  estimate.ID,
		Type:        enums.ItemTypeLabor,
		Description: "Framing",
		Quantity:    8,
		Rate:        50,
		Total:       400,
		ZoneID:      &zone.ID,
	}))
	require.NoError(t, repo.CreateSnapshot(ctx, &models.PricingSnapshot{
		ID:            uuid.New(),
		EstimateID:    estimate.ID,
		BaseLaborCost: 20,
	}))

	found, err := repo.FindByID(ctx, estimate.ID)
	require.NoError(t, err)
	assert.Equal(t, estimate.ID, found.ID)
	require.Len(t, found.Items, 1)
	require.Len(t, found.Zones, 1)
	require.NotNil(t, found.Snapshot)
	assert.Equal(t, 20.0, found.Snapshot.BaseLaborCost)
	require.NotNil(t, found.Items[0].ZoneID)
	assert.Equal(t, zone.ID, *found.Items[0].ZoneID)
}

func TestRepositorySnapshotUniquePerEstimate(t *testing.T) {
	db := setupEstimatesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	estimate := seedEstimate(t, repo)
	require.NoError(t, repo.CreateSnapshot(ctx, &models.PricingSnapshot{
		ID:         uuid.New(),
		EstimateID: estimate.ID,
	}))
	err := repo.CreateSnapshot(ctx, &models.PricingSnapshot{
		ID:         uuid.New(),
		EstimateID: estimate.ID,
	})
	assert.Error(t, err, "second snapshot for the same estimate must be rejected")
}

func TestRepositoryDeleteZoneDetachesItems(t *testing.T) {
	db := setupEstimatesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	estimate := seedEstimate(t, repo)
	zone := &models.EstimateZone{ID: uuid.New(), EstimateID: estimate.ID, Label: "Garage"}
	require.NoError(t, repo.CreateZone(ctx, zone))
	item := &models.EstimateItem{
		ID:          uuid.New(),
		EstimateID:  estimate.ID,
		Type:        enums.ItemTypeMaterial,
		Description: "Drywall",
		ZoneID:      &zone.ID,
	}
	require.NoError(t, repo.CreateItem(ctx, item))

	require.NoError(t, repo.DeleteZoneWithTx(db, estimate.ID, zone.ID))

	found, err := repo.FindByID(ctx, estimate.ID)
	require.NoError(t, err)
	assert.Empty(t, found.Zones)
	require.Len(t, found.Items, 1)
	assert.Nil(t, found.Items[0].ZoneID)
}

func TestRepositoryDeleteZoneUnknown(t *testing.T) {
	db := setupEstimatesTestDB(t)
	repo := NewRepository(db)

	estimate := seedEstimate(t, repo)
	err := repo.DeleteZoneWithTx(db, estimate.ID, uuid.New())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryDeleteItemScopedToEstimate(t *testing.T) {
	db := setupEstimatesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first := seedEstimate(t, repo)
	second := seedEstimate(t, repo)
	item := &models.EstimateItem{
		ID:          uuid.New(),
		EstimateID:  first.ID,
		Type:        enums.ItemTypeOther,
		Description: "Dump run",
	}
	require.NoError(t, repo.CreateItem(ctx, item))

	// Deleting through the wrong estimate must not touch the item.
	err := repo.DeleteItem(ctx, second.ID, item.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.DeleteItem(ctx, first.ID, item.ID))
}

func TestRepositoryListOrdersByRecency(t *testing.T) {
	db := setupEstimatesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedEstimate(t, repo)
	seedEstimate(t, repo)

	rows, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	for _, row := range rows {
		assert.Empty(t, row.Items, "list must not load line items")
	}
}
