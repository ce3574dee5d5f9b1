package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestEngineMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEngineMetrics(reg, Config{ServiceName: "voltway-test"})

	m.AddCoins("EARNED", 80)
	m.AddCoins("EARNED", 5)
	m.AddCoins("SPENT", -20)
	m.IncAwardRejected("daily_limit_reached")
	m.IncReliability("batch", nil)
	m.IncReliability("batch", errors.New("db down"))
	m.ObserveBatch(2*time.Second, 12)

	if got := testutil.ToFloat64(m.coinsAwarded.WithLabelValues("EARNED")); got != 85 {
		t.Fatalf("expected 85 coins, got %v", got)
	}
	if got := testutil.ToFloat64(m.coinsAwarded.WithLabelValues("SPENT")); got != 0 {
		t.Fatalf("expected negative amounts to be ignored, got %v", got)
	}
	if got := testutil.ToFloat64(m.awardRejected.WithLabelValues("daily_limit_reached")); got != 1 {
		t.Fatalf("expected 1 rejection, got %v", got)
	}
	if got := testutil.ToFloat64(m.reliabilityRuns.WithLabelValues("batch", "failed")); got != 1 {
		t.Fatalf("expected 1 failed run, got %v", got)
	}
	if got := testutil.ToFloat64(m.reliabilityStations); got != 12 {
		t.Fatalf("expected 12 stations, got %v", got)
	}
}

func TestNilEngineMetricsIsSafe(t *testing.T) {
	var m *EngineMetrics
	m.AddCoins("EARNED", 10)
	m.IncBadgeEarned("PIONEER")
	m.ObserveBatch(time.Second, 1)
}
