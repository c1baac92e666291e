package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestStagingMetricsExportsCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStagingMetrics(reg)

	m.ObserveUpstream("lookup_barcode", nil, 120*time.Millisecond)
	m.CountCommit("stock_in", nil)
	m.CountCommit("stock_in", errors.New("boom"))
	m.SessionOpened("stock_out")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "storeops_staging_commits_total", "outcome", "success"); err != nil {
		t.Fatalf("fetch commit success: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "storeops_staging_commits_total", "outcome", "failure"); err != nil {
		t.Fatalf("fetch commit failure: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}

	if got, err := fetchGaugeValue(mfs, "storeops_staging_active_sessions", "flow", "stock_out"); err != nil {
		t.Fatalf("fetch gauge: %v", err)
	} else if got != 1 {
		t.Fatalf("expected active sessions=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "storeops_erp_request_duration_seconds", "operation", "lookup_barcode"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestStagingMetricsNilReceiverIsSafe(t *testing.T) {
	var m *StagingMetrics
	m.ObserveUpstream("lookup_barcode", nil, time.Millisecond)
	m.CountCommit("stock_in", nil)
	m.SessionOpened("stock_in")
	m.SessionClosed("stock_in")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("no series with %s=%s", label, value)
}

func fetchGaugeValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetGauge().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("no series with %s=%s", label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("no series with %s=%s", label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
