package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCycle(t *testing.T) {
	c := NewCollector("warden", prometheus.NewRegistry())

	c.RecordCycle("ok", 2*time.Second)
	c.RecordCycle("ok", 3*time.Second)
	c.RecordCycle("degraded", time.Second)

	if got := testutil.ToFloat64(c.cyclesTotal.WithLabelValues("ok")); got != 2 {
		t.Errorf("expected 2 ok cycles, got %v", got)
	}
	if got := testutil.ToFloat64(c.cyclesTotal.WithLabelValues("degraded")); got != 1 {
		t.Errorf("expected 1 degraded cycle, got %v", got)
	}
}

func TestRecordServiceCost(t *testing.T) {
	c := NewCollector("warden", prometheus.NewRegistry())

	c.RecordServiceCost("vector_db", 42.5, 85.0)
	c.RecordServiceCost("vector_db", 44.0, 88.0)

	if got := testutil.ToFloat64(c.effectiveCost.WithLabelValues("vector_db")); got != 44.0 {
		t.Errorf("expected latest cost 44.0, got %v", got)
	}
	if got := testutil.ToFloat64(c.usagePercentage.WithLabelValues("vector_db")); got != 88.0 {
		t.Errorf("expected latest usage 88.0, got %v", got)
	}
}

func TestRecordAlertAndActions(t *testing.T) {
	c := NewCollector("warden", prometheus.NewRegistry())

	c.RecordAlert("CRITICAL", "email", "sent")
	c.RecordAlert("CRITICAL", "event", "failed")
	c.RecordEnforcementAction("disable", "vector_db")
	c.RecordDataQualityWarning("vector_db", "usage")
	c.RecordPersistenceFailure()

	if got := testutil.ToFloat64(c.alertsTotal.WithLabelValues("CRITICAL", "event", "failed")); got != 1 {
		t.Errorf("expected 1 failed event alert, got %v", got)
	}
	if got := testutil.ToFloat64(c.enforcementActions.WithLabelValues("disable", "vector_db")); got != 1 {
		t.Errorf("expected 1 disable action, got %v", got)
	}
	if got := testutil.ToFloat64(c.persistenceFailures); got != 1 {
		t.Errorf("expected 1 persistence failure, got %v", got)
	}
}

func TestHandler_ServesNamespacedMetrics(t *testing.T) {
	c := NewCollector("warden", prometheus.NewRegistry())
	c.RecordCycle("ok", time.Second)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if !strings.Contains(string(body), "warden_cycles_total") {
		t.Error("expected warden_cycles_total in exposition output")
	}
}
