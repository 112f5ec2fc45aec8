package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	estimatesvc "github.com/DaKloudStudios/cruzremodel-backend/internal/estimates"
	settingssvc "github.com/DaKloudStudios/cruzremodel-backend/internal/settings"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/config"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/enums"
	pkgerrors "github.com/DaKloudStudios/cruzremodel-backend/pkg/errors"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/logger"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/pricing"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSettingsService struct {
	settings settingssvc.SettingsDTO
}

func (s *stubSettingsService) Get(ctx context.Context) (*settingssvc.SettingsDTO, error) {
	cpy := s.settings
	return &cpy, nil
}

func (s *stubSettingsService) Update(ctx context.Context, input settingssvc.UpdateSettingsInput) (*settingssvc.SettingsDTO, error) {
	if input.TargetMarginPercent != nil {
		s.settings.TargetMarginPercent = *input.TargetMarginPercent
	}
	cpy := s.settings
	return &cpy, nil
}

func (s *stubSettingsService) Metrics(ctx context.Context) (*settingssvc.MetricsDTO, error) {
	return &settingssvc.MetricsDTO{SeasonHours: 1600}, nil
}

func (s *stubSettingsService) CurrentSnapshot(ctx context.Context) (pricing.Snapshot, error) {
	return pricing.Snapshot{}, nil
}

func (s *stubSettingsService) CurrentRules(ctx context.Context) (pricing.BusinessRules, error) {
	return pricing.BusinessRules{}, nil
}

func (s *stubSettingsService) TaxLaborByDefault(ctx context.Context) (bool, error) {
	return false, nil
}

type stubEstimatesService struct {
	estimate estimatesvc.EstimateDTO
}

func (s *stubEstimatesService) Create(ctx context.Context, input estimatesvc.CreateEstimateInput) (*estimatesvc.EstimateDTO, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	cpy := s.estimate
	cpy.Title = input.Title
	return &cpy, nil
}

func (s *stubEstimatesService) List(ctx context.Context) ([]estimatesvc.EstimateSummaryDTO, error) {
	return []estimatesvc.EstimateSummaryDTO{{ID: s.estimate.ID, Title: s.estimate.Title}}, nil
}

func (s *stubEstimatesService) Get(ctx context.Context, id uuid.UUID) (*estimatesvc.EstimateDTO, error) {
	if id != s.estimate.ID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "estimate not found")
	}
	cpy := s.estimate
	return &cpy, nil
}

func (s *stubEstimatesService) Update(ctx context.Context, id uuid.UUID, input estimatesvc.UpdateEstimateInput) (*estimatesvc.EstimateDTO, error) {
	cpy := s.estimate
	return &cpy, nil
}

func (s *stubEstimatesService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (s *stubEstimatesService) AddItem(ctx context.Context, estimateID uuid.UUID, input estimatesvc.AddItemInput) (*estimatesvc.EstimateDTO, error) {
	cpy := s.estimate
	return &cpy, nil
}

func (s *stubEstimatesService) UpdateItem(ctx context.Context, estimateID, itemID uuid.UUID, input estimatesvc.UpdateItemInput) (*estimatesvc.EstimateDTO, error) {
	cpy := s.estimate
	return &cpy, nil
}

func (s *stubEstimatesService) RemoveItem(ctx context.Context, estimateID, itemID uuid.UUID) (*estimatesvc.EstimateDTO, error) {
	cpy := s.estimate
	return &cpy, nil
}

func (s *stubEstimatesService) ApplyMargin(ctx context.Context, estimateID uuid.UUID, target float64) (*estimatesvc.EstimateDTO, error) {
	cpy := s.estimate
	return &cpy, nil
}

func (s *stubEstimatesService) AddZone(ctx context.Context, estimateID uuid.UUID, label string) (*estimatesvc.EstimateDTO, error) {
	cpy := s.estimate
	return &cpy, nil
}

func (s *stubEstimatesService) UpdateZone(ctx context.Context, estimateID, zoneID uuid.UUID, label string) (*estimatesvc.EstimateDTO, error) {
	cpy := s.estimate
	return &cpy, nil
}

func (s *stubEstimatesService) RemoveZone(ctx context.Context, estimateID, zoneID uuid.UUID) (*estimatesvc.EstimateDTO, error) {
	cpy := s.estimate
	return &cpy, nil
}

func (s *stubEstimatesService) UpdateAdjustments(ctx context.Context, estimateID uuid.UUID, input estimatesvc.AdjustmentsInput) (*estimatesvc.EstimateDTO, error) {
	cpy := s.estimate
	return &cpy, nil
}

func (s *stubEstimatesService) Totals(ctx context.Context, estimateID uuid.UUID) (*estimatesvc.TotalsDTO, error) {
	return &estimatesvc.TotalsDTO{GrandTotal: 1435}, nil
}

func newTestRouter(t *testing.T) (http.Handler, *stubEstimatesService) {
	t.Helper()
	estimates := &stubEstimatesService{
		estimate: estimatesvc.EstimateDTO{
			ID:     uuid.New(),
			Title:  "Kitchen remodel",
			Status: enums.EstimateStatusDraft,
		},
	}
	cfg := &config.Config{}
	cfg.App.Env = "test"
	handler := NewRouter(Dependencies{
		Config:           cfg,
		Logger:           logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		DBPinger:         stubPinger{},
		RedisPinger:      stubPinger{},
		MetricsRegistry:  prometheus.NewRegistry(),
		SettingsService:  &stubSettingsService{},
		EstimatesService: estimates,
	})
	return handler, estimates
}

func TestHealthRoutes(t *testing.T) {
	handler, _ := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s returned %d", path, w.Code)
		}
		if got := w.Header().Get("X-CruzRemodel-Env"); got != "test" {
			t.Fatalf("expected env header, got %q", got)
		}
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	handler, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("metrics endpoint returned %d", w.Code)
	}
}

func TestSettingsRoutes(t *testing.T) {
	handler, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get settings returned %d", w.Code)
	}

	body := strings.NewReader(`{"target_margin_percent": 35}`)
	req = httptest.NewRequest(http.MethodPut, "/api/v1/settings", body)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("update settings returned %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/settings/metrics", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("metrics returned %d", w.Code)
	}
}

func TestEstimateRoutes(t *testing.T) {
	handler, estimates := newTestRouter(t)
	id := estimates.estimate.ID

	req := httptest.NewRequest(http.MethodPost, "/api/v1/estimates", strings.NewReader(`{"title":"Deck"}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/estimates/"+id.String(), nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get returned %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/estimates/"+uuid.NewString(), nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown estimate returned %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/estimates/not-a-uuid", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed id returned %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/estimates/"+id.String()+"/totals", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("totals returned %d", w.Code)
	}
	var envelope struct {
		Data estimatesvc.TotalsDTO `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode totals: %v", err)
	}
	if envelope.Data.GrandTotal != 1435 {
		t.Fatalf("unexpected grand total %v", envelope.Data.GrandTotal)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/estimates/"+id.String()+"/margin", strings.NewReader(`{"target_margin_percent": 40}`))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("apply margin returned %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/estimates/"+id.String()+"/items", strings.NewReader(`{"type":"labor","description":"Crew","quantity":8}`))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("add item returned %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/estimates/"+id.String()+"/items", strings.NewReader(`{"type":"labour","description":"Crew"}`))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad item type returned %d", w.Code)
	}
}
