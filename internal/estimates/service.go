package estimates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DaKloudStudios/cruzremodel-backend/pkg/db/models"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/enums"
	pkgerrors "github.com/DaKloudStudios/cruzremodel-backend/pkg/errors"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/logger"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/pricing"
)

type estimatesRepository interface {
	Create(ctx context.Context, estimate *models.Estimate) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Estimate, error)
	List(ctx context.Context) ([]models.Estimate, error)
	Update(ctx context.Context, estimate *models.Estimate) error
	Delete(ctx context.Context, id uuid.UUID) error
	CreateItem(ctx context.Context, item *models.EstimateItem) error
	UpdateItem(ctx context.Context, item *models.EstimateItem) error
	SaveItemsWithTx(tx *gorm.DB, items []models.EstimateItem) error
	DeleteItem(ctx context.Context, estimateID, itemID uuid.UUID) error
	CreateZone(ctx context.Context, zone *models.EstimateZone) error
	UpdateZone(ctx context.Context, zone *models.EstimateZone) error
	DeleteZoneWithTx(tx *gorm.DB, estimateID, zoneID uuid.UUID) error
	CreateSnapshot(ctx context.Context, snapshot *models.PricingSnapshot) error
}

// settingsProvider is the slice of the settings service the estimates domain
// consumes: snapshot capture rates, live fee rules, and the labor tax default.
type settingsProvider interface {
	CurrentSnapshot(ctx context.Context) (pricing.Snapshot, error)
	CurrentRules(ctx context.Context) (pricing.BusinessRules, error)
	TaxLaborByDefault(ctx context.Context) (bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes estimate document operations.
type Service interface {
	Create(ctx context.Context, input CreateEstimateInput) (*EstimateDTO, error)
	List(ctx context.Context) ([]EstimateSummaryDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*EstimateDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateEstimateInput) (*EstimateDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddItem(ctx context.Context, estimateID uuid.UUID, input AddItemInput) (*EstimateDTO, error)
	UpdateItem(ctx context.Context, estimateID, itemID uuid.UUID, input UpdateItemInput) (*EstimateDTO, error)
	RemoveItem(ctx context.Context, estimateID, itemID uuid.UUID) (*EstimateDTO, error)
	ApplyMargin(ctx context.Context, estimateID uuid.UUID, targetMarginPercent float64) (*EstimateDTO, error)
	AddZone(ctx context.Context, estimateID uuid.UUID, label string) (*EstimateDTO, error)
	UpdateZone(ctx context.Context, estimateID, zoneID uuid.UUID, label string) (*EstimateDTO, error)
	RemoveZone(ctx context.Context, estimateID, zoneID uuid.UUID) (*EstimateDTO, error)
	UpdateAdjustments(ctx context.Context, estimateID uuid.UUID, input AdjustmentsInput) (*EstimateDTO, error)
	Totals(ctx context.Context, estimateID uuid.UUID) (*TotalsDTO, error)
}

type service struct {
	repo     estimatesRepository
	settings settingsProvider
	tx       txRunner
	logg     *logger.Logger
}

// NewService builds an estimates service with the provided collaborators.
func NewService(repo estimatesRepository, settings settingsProvider, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("estimates repository required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings provider required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, settings: settings, tx: tx, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateEstimateInput) (*EstimateDTO, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}

	taxLabor, err := s.settings.TaxLaborByDefault(ctx)
	if err != nil {
		return nil, err
	}

	estimate := &models.Estimate{
		ID:         uuid.New(),
		Title:      title,
		ClientName: strings.TrimSpace(input.ClientName),
		Status:     enums.EstimateStatusDraft,
		TaxLabor:   taxLabor,
	}
	if err := s.repo.Create(ctx, estimate); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create estimate")
	}
	s.logg.Info(s.logg.WithEstimateID(ctx, estimate.ID.String()), "estimate created")
	return FromModel(estimate), nil
}

func (s *service) List(ctx context.Context) ([]EstimateSummaryDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list estimates")
	}
	summaries := make([]EstimateSummaryDTO, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, SummaryFromModel(row))
	}
	return summaries, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*EstimateDTO, error) {
	estimate, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(estimate), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateEstimateInput) (*EstimateDTO, error) {
	estimate, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title must not be empty")
		}
		estimate.Title = title
	}
	if input.ClientName != nil {
		estimate.ClientName = strings.TrimSpace(*input.ClientName)
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid estimate status")
		}
		estimate.Status = *input.Status
	}

	if err := s.repo.Update(ctx, estimate); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update estimate")
	}
	return FromModel(estimate), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "estimate not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete estimate")
	}
	return nil
}

func (s *service) AddItem(ctx context.Context, estimateID uuid.UUID, input AddItemInput) (*EstimateDTO, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid item type")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}
	if err := validateItemFigures(input.Quantity, input.Cost, input.Rate); err != nil {
		return nil, err
	}

	estimate, err := s.load(ctx, estimateID)
	if err != nil {
		return nil, err
	}
	snap, err := s.ensureSnapshot(ctx, estimate)
	if err != nil {
		return nil, err
	}
	if input.ZoneID != nil && !zoneExists(estimate, *input.ZoneID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "zone does not belong to estimate")
	}

	seed := seedItem(input, description, snap)
	upd := pricing.ItemUpdate{
		Cost:          input.Cost,
		Rate:          input.Rate,
		MarginPercent: input.Margin,
	}
	// New labor lines default to the frozen target hourly rate unless the
	// caller priced them explicitly.
	if seed.Type == enums.ItemTypeLabor && upd.Rate == nil && upd.MarginPercent == nil {
		rate := snap.TargetHourlyRate
		upd.Rate = &rate
	}
	out := pricing.Reconcile(seed, upd, snap)

	item := &models.EstimateItem{
		ID:            out.ID,
		EstimateID:    estimate.ID,
		Type:          out.Type,
		Description:   out.Description,
		CalcBasis:     out.CalcBasis,
		Quantity:      out.Quantity,
		Cost:          out.Cost,
		Rate:          out.Rate,
		Total:         out.Total,
		MarginPercent: out.MarginPercent,
		MarkupPercent: out.MarkupPercent,
		ZoneID:        out.ZoneID,
		IsOverridden:  out.IsOverridden,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
	}

	return s.Get(ctx, estimateID)
}

func (s *service) UpdateItem(ctx context.Context, estimateID, itemID uuid.UUID, input UpdateItemInput) (*EstimateDTO, error) {
	if err := validateItemFigures(input.Quantity, input.Cost, input.Rate); err != nil {
		return nil, err
	}

	estimate, err := s.load(ctx, estimateID)
	if err != nil {
		return nil, err
	}
	snap, err := s.ensureSnapshot(ctx, estimate)
	if err != nil {
		return nil, err
	}

	item := findItem(estimate, itemID)
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}

	engineItem := itemToEngine(*item)
	if input.ZoneID != nil {
		zoneID := *input.ZoneID
		if zoneID != nil && !zoneExists(estimate, *zoneID) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "zone does not belong to estimate")
		}
		engineItem.ZoneID = zoneID
	}

	out := pricing.Reconcile(engineItem, pricing.ItemUpdate{
		Quantity:      input.Quantity,
		Cost:          input.Cost,
		Rate:          input.Rate,
		MarginPercent: input.Margin,
	}, snap)
	applyEngineItem(out, item)

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
	}
	s.logg.Info(s.logg.WithItemID(s.logg.WithEstimateID(ctx, estimateID.String()), itemID.String()), "item reconciled")
	return s.Get(ctx, estimateID)
}

func (s *service) RemoveItem(ctx context.Context, estimateID, itemID uuid.UUID) (*EstimateDTO, error) {
	if _, err := s.load(ctx, estimateID); err != nil {
		return nil, err
	}
	if err := s.repo.DeleteItem(ctx, estimateID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item")
	}
	return s.Get(ctx, estimateID)
}

// ApplyMargin reprices every line to the target margin from its cost basis.
// Rate-overridden items are repriced like any other line; equalization is an
// explicit bulk action, not a merge.
func (s *service) ApplyMargin(ctx context.Context, estimateID uuid.UUID, targetMarginPercent float64) (*EstimateDTO, error) {
	if targetMarginPercent < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target margin must not be negative")
	}

	estimate, err := s.load(ctx, estimateID)
	if err != nil {
		return nil, err
	}
	snap, err := s.ensureSnapshot(ctx, estimate)
	if err != nil {
		return nil, err
	}

	engineItems := make([]pricing.Item, 0, len(estimate.Items))
	for _, item := range estimate.Items {
		engineItems = append(engineItems, itemToEngine(item))
	}
	equalized := pricing.ApplyMargin(engineItems, targetMarginPercent, snap)

	for i := range estimate.Items {
		applyEngineItem(equalized[i], &estimate.Items[i])
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.SaveItemsWithTx(tx, estimate.Items)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "equalize margins")
	}
	return s.Get(ctx, estimateID)
}

func (s *service) AddZone(ctx context.Context, estimateID uuid.UUID, label string) (*EstimateDTO, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "zone label is required")
	}
	estimate, err := s.load(ctx, estimateID)
	if err != nil {
		return nil, err
	}
	zone := &models.EstimateZone{ID: uuid.New(), EstimateID: estimate.ID, Label: label}
	if err := s.repo.CreateZone(ctx, zone); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create zone")
	}
	return s.Get(ctx, estimateID)
}

func (s *service) UpdateZone(ctx context.Context, estimateID, zoneID uuid.UUID, label string) (*EstimateDTO, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "zone label is required")
	}
	estimate, err := s.load(ctx, estimateID)
	if err != nil {
		return nil, err
	}
	zone := findZone(estimate, zoneID)
	if zone == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "zone not found")
	}
	zone.Label = label
	if err := s.repo.UpdateZone(ctx, zone); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update zone")
	}
	return s.Get(ctx, estimateID)
}

// RemoveZone deletes a zone and detaches its items in one transaction. Items
// are never deleted with their zone.
func (s *service) RemoveZone(ctx context.Context, estimateID, zoneID uuid.UUID) (*EstimateDTO, error) {
	estimate, err := s.load(ctx, estimateID)
	if err != nil {
		return nil, err
	}
	if findZone(estimate, zoneID) == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "zone not found")
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.DeleteZoneWithTx(tx, estimateID, zoneID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "zone not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete zone")
	}
	return s.Get(ctx, estimateID)
}

func (s *service) UpdateAdjustments(ctx context.Context, estimateID uuid.UUID, input AdjustmentsInput) (*EstimateDTO, error) {
	if input.TaxRatePercent != nil && *input.TaxRatePercent < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tax rate must not be negative")
	}

	estimate, err := s.load(ctx, estimateID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ensureSnapshot(ctx, estimate); err != nil {
		return nil, err
	}

	if input.TripCharge != nil {
		estimate.TripCharge = *input.TripCharge
	}
	if input.EmergencySurcharge != nil {
		estimate.EmergencySurcharge = *input.EmergencySurcharge
	}
	if input.ApplyTax != nil {
		estimate.ApplyTax = *input.ApplyTax
	}
	if input.TaxLabor != nil {
		estimate.TaxLabor = *input.TaxLabor
	}
	if input.TaxRatePercent != nil {
		estimate.TaxRatePercent = *input.TaxRatePercent
	}
	if input.MinJobFeeApplied != nil {
		estimate.MinJobFeeApplied = *input.MinJobFeeApplied
	}

	if err := s.repo.Update(ctx, estimate); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update adjustments")
	}
	return s.Get(ctx, estimateID)
}

func (s *service) Totals(ctx context.Context, estimateID uuid.UUID) (*TotalsDTO, error) {
	estimate, err := s.load(ctx, estimateID)
	if err != nil {
		return nil, err
	}
	snap, err := s.ensureSnapshot(ctx, estimate)
	if err != nil {
		return nil, err
	}
	rules, err := s.settings.CurrentRules(ctx)
	if err != nil {
		return nil, err
	}

	engineItems := make([]pricing.Item, 0, len(estimate.Items))
	for _, item := range estimate.Items {
		engineItems = append(engineItems, itemToEngine(item))
	}
	adj := pricing.Adjustments{
		TripCharge:         estimate.TripCharge,
		EmergencySurcharge: estimate.EmergencySurcharge,
		ApplyTax:           estimate.ApplyTax,
		TaxLabor:           estimate.TaxLabor,
		TaxRatePercent:     estimate.TaxRatePercent,
		MinJobFeeApplied:   estimate.MinJobFeeApplied,
	}
	return TotalsFromPricing(pricing.ComputeTotals(engineItems, adj, rules, snap)), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Estimate, error) {
	estimate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "estimate not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load estimate")
	}
	return estimate, nil
}

// ensureSnapshot captures the current company rates the first time an
// estimate is priced. Once written the snapshot never changes; later settings
// edits do not reprice issued estimates.
func (s *service) ensureSnapshot(ctx context.Context, estimate *models.Estimate) (pricing.Snapshot, error) {
	if estimate.Snapshot != nil {
		return snapshotToEngine(estimate.Snapshot), nil
	}

	snap, err := s.settings.CurrentSnapshot(ctx)
	if err != nil {
		return pricing.Snapshot{}, err
	}
	row := &models.PricingSnapshot{
		ID:                    uuid.New(),
		EstimateID:            estimate.ID,
		BaseLaborCost:         snap.BaseLaborCost,
		LaborBurdenPercent:    snap.LaborBurdenPercent,
		OverheadPerManHour:    snap.OverheadPerManHour,
		BreakEvenRate:         snap.BreakEvenRate,
		TargetHourlyRate:      snap.TargetHourlyRate,
		MaterialMarkupPercent: snap.MaterialMarkupPercent,
	}
	if err := s.repo.CreateSnapshot(ctx, row); err != nil {
		return pricing.Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "capture pricing snapshot")
	}
	estimate.Snapshot = row
	s.logg.Info(s.logg.WithEstimateID(ctx, estimate.ID.String()), "pricing snapshot captured")
	return snap, nil
}

// seedItem builds the pre-edit defaults for a new line. Labor seeds its cost
// from the snapshot; material and other lines seed the margin equivalent of
// the frozen material markup so a cost edit prices them at cost plus markup.
func seedItem(input AddItemInput, description string, snap pricing.Snapshot) pricing.Item {
	item := pricing.Item{
		ID:          uuid.New(),
		Type:        input.Type,
		Description: description,
		Quantity:    1,
		CalcBasis:   strings.TrimSpace(input.CalcBasis),
		ZoneID:      input.ZoneID,
	}
	if input.Quantity != nil {
		item.Quantity = *input.Quantity
	}
	if input.Type == enums.ItemTypeLabor {
		item.Cost = snap.LoadedLaborCost()
	} else {
		markup := snap.MaterialMarkupPercent
		item.MarkupPercent = markup
		if markup > 0 {
			item.MarginPercent = 100 * markup / (100 + markup)
		}
	}
	return item
}

func validateItemFigures(quantity, cost, rate *float64) error {
	if quantity != nil && *quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}
	if cost != nil && *cost < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cost must not be negative")
	}
	if rate != nil && *rate < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "rate must not be negative")
	}
	return nil
}

func findItem(estimate *models.Estimate, itemID uuid.UUID) *models.EstimateItem {
	for i := range estimate.Items {
		if estimate.Items[i].ID == itemID {
			return &estimate.Items[i]
		}
	}
	return nil
}

func findZone(estimate *models.Estimate, zoneID uuid.UUID) *models.EstimateZone {
	for i := range estimate.Zones {
		if estimate.Zones[i].ID == zoneID {
			return &estimate.Zones[i]
		}
	}
	return nil
}

func zoneExists(estimate *models.Estimate, zoneID uuid.UUID) bool {
	return findZone(estimate, zoneID) != nil
}
