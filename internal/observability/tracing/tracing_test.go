package tracing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

func TestCleanDropsRedactedAndEmpty(t *testing.T) {
	attrs := clean([]attribute.KeyValue{
		UserID("driver-1"),
		ChargerID(""),
		attribute.String("voltway.comment", "great charger"),
		attribute.Int("voltway.rating", 4),
	})
	if len(attrs) != 2 || attrs[0].Key != KeyUserID || attrs[1].Key != "voltway.rating" {
		t.Fatalf("unexpected attributes: %v", attrs)
	}
}

func TestCleanTruncatesLongValues(t *testing.T) {
	attrs := clean([]attribute.KeyValue{ChargerID(strings.Repeat("x", 300))})
	if got := len(attrs[0].Value.AsString()); got != maxAttributeLen {
		t.Fatalf("expected %d chars, got %d", maxAttributeLen, got)
	}
}

func TestClampRatio(t *testing.T) {
	cases := map[float64]float64{0: 0.1, -1: 0.1, 0.5: 0.5, 3: 1}
	for in, want := range cases {
		if got := clampRatio(in); got != want {
			t.Fatalf("clampRatio(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestUnsupportedProtocol(t *testing.T) {
	if _, err := newExporter("thrift", ""); !errors.Is(err, ErrUnsupportedProtocol) {
		t.Fatalf("expected ErrUnsupportedProtocol, got %v", err)
	}
}

func TestDisabledProviderIsNoop(t *testing.T) {
	provider, err := NewProvider(nil, Config{Enabled: false}, zap.NewNop())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if provider != nil {
		t.Fatalf("expected nil provider when tracing is disabled")
	}

	_, span := Start(context.Background(), "rewards.award", UserID("driver-1"))
	End(span, errors.New("boom"))
}
