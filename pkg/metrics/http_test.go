package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestRequestMetricsExportsCounterAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRequestMetrics(reg)

	m.Observe("GET", "/api/v1/estimates/{id}", "200", 120*time.Millisecond)
	m.Observe("GET", "/api/v1/estimates/{id}", "200", 80*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	count, err := fetchCounterValue(mfs, "http_requests_total")
	if err != nil {
		t.Fatalf("fetch counter: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 requests, got %f", count)
	}

	sum, err := fetchHistogramSum(mfs, "http_request_duration_seconds")
	if err != nil {
		t.Fatalf("fetch histogram: %v", err)
	}
	if sum <= 0 {
		t.Fatalf("expected positive duration sum, got %f", sum)
	}
}

func TestRequestMetricsNilSafe(t *testing.T) {
	var m *RequestMetrics
	m.Observe("GET", "/", "200", time.Millisecond)

	empty := NewRequestMetrics(nil)
	empty.Observe("GET", "/", "200", time.Millisecond)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		var total float64
		for _, metric := range mf.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
		return total, nil
	}
	return 0, fmt.Errorf("metric %q not found", name)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		var sum float64
		for _, metric := range mf.GetMetric() {
			sum += metric.GetHistogram().GetSampleSum()
		}
		return sum, nil
	}
	return 0, fmt.Errorf("metric %q not found", name)
}
