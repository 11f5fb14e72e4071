package execution

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSubmitLogsOrder(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	at := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

	exec := NewExecutor(logger).WithClock(func() time.Time { return at })
	fill, err := exec.Submit(Order{PlanID: "p1", Symbol: "NIFTYWEEKLY24350CE", Side: Buy, Qty: 50, Price: 120})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "NIFTYWEEKLY24350CE") {
		t.Fatalf("log does not contain symbol: %s", out)
	}
	if fill.Qty != 50 || fill.Price != 120 || !fill.Ts.Equal(at) {
		t.Fatalf("unexpected fill %+v", fill)
	}
}

func TestSubmitRejectsBadOrders(t *testing.T) {
	exec := NewExecutor(zerolog.Nop())
	if _, err := exec.Submit(Order{Symbol: "X", Side: Buy, Qty: 0, Price: 1}); err == nil {
		t.Fatalf("expected quantity error")
	}
	if _, err := exec.Submit(Order{Symbol: "X", Side: Buy, Qty: 50, Price: 0}); err == nil {
		t.Fatalf("expected price error")
	}
}

func TestSubmitUsesOrderTimestamp(t *testing.T) {
	wall := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := time.Date(2024, 5, 2, 10, 7, 2, 0, time.UTC)
	exec := NewExecutor(zerolog.Nop()).WithClock(func() time.Time { return wall })

	fill, err := exec.Submit(Order{Symbol: "X", Side: Sell, Qty: 50, Price: 130, Ts: tick})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if !fill.Ts.Equal(tick) {
		t.Fatalf("expected fill at %s, got %s", tick, fill.Ts)
	}
	fill, _ = exec.Submit(Order{Symbol: "X", Side: Buy, Qty: 50, Price: 130})
	if !fill.Ts.Equal(wall) {
		t.Fatalf("expected clock timestamp without order time, got %s", fill.Ts)
	}
}
