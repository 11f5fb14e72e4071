package risk

import (
	"errors"
	"testing"
	"time"
)

func TestAllow(t *testing.T) {
	limits := Limits{DailyCapital: 20000}
	if !limits.Allow(19999.9) {
		t.Fatalf("expected notional under limit to pass")
	}
	if limits.Allow(20000.1) {
		t.Fatalf("expected notional above limit to fail")
	}
	if !(Limits{}).Allow(1e9) {
		t.Fatalf("expected zero cap to disable the check")
	}
}

func TestLotsClamp(t *testing.T) {
	limits := Limits{MaxTradeRisk: 200, MaxOpenPositions: 2}
	cases := []struct {
		name         string
		riskPerShare float64
		lotSize      int
		want         int
	}{
		{"raw zero clamps to one", 42, 50, 1},
		{"raw one", 4, 50, 1},
		{"raw two", 2, 50, 2},
		{"raw above cap", 0.5, 50, 2},
		{"no risk", 0, 50, 1},
	}
	for _, tc := range cases {
		if got := limits.Lots(tc.riskPerShare, tc.lotSize); got != tc.want {
			t.Fatalf("%s: expected %d lots got %d", tc.name, tc.want, got)
		}
	}
}

func TestQuantityMultipleOfLot(t *testing.T) {
	limits := Limits{MaxTradeRisk: 200, MaxOpenPositions: 2}
	if qty := limits.Quantity(42, 50); qty != 50 {
		t.Fatalf("expected qty 50, got %d", qty)
	}
	if qty := limits.Quantity(1, 25); qty != 50 {
		t.Fatalf("expected qty 50, got %d", qty)
	}
}

func TestSessionWindow(t *testing.T) {
	s, err := NewSession("09:25", "15:15", "")
	if err != nil {
		t.Fatalf("NewSession error: %v", err)
	}
	day := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	if s.CanEnter(day.Add(9*time.Hour + 24*time.Minute)) {
		t.Fatalf("09:24 should be before entry window")
	}
	if !s.CanEnter(day.Add(9*time.Hour + 25*time.Minute)) {
		t.Fatalf("09:25 should be inside entry window")
	}
	if s.CanEnter(day.Add(15*time.Hour + 15*time.Minute)) {
		t.Fatalf("15:15 should be closed for entries")
	}
	if !s.MustSquareOff(day.Add(15*time.Hour + 15*time.Minute)) {
		t.Fatalf("15:15 should trigger square off")
	}
	if s.MustSquareOff(day.Add(15 * time.Hour)) {
		t.Fatalf("15:00 should not trigger square off")
	}
	if start, end := s.Window(); start != "09:25" || end != "15:15" {
		t.Fatalf("unexpected window %s-%s", start, end)
	}
}

func TestNewSessionRejectsBadInput(t *testing.T) {
	if _, err := NewSession("9h", "15:15", ""); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := NewSession("15:15", "09:25", ""); err == nil {
		t.Fatalf("expected ordering error")
	}
}

func TestGateCheck(t *testing.T) {
	noon := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	gate := Gate{
		Limits:  Limits{MaxDayLoss: 400, DisableOnVIXAbove: 22},
		Session: Session{EntryNotBefore: 9*60 + 25, SquareOff: 15*60 + 15, Location: time.UTC},
	}
	if err := gate.Check(noon, 15, 0, 0); err != nil {
		t.Fatalf("expected entry allowed, got %v", err)
	}
	if err := gate.Check(noon, 15, 0, 1); !errors.Is(err, ErrPlanOpen) {
		t.Fatalf("expected ErrPlanOpen, got %v", err)
	}
	if err := gate.Check(noon, 23, 0, 0); !errors.Is(err, ErrVIXTooHigh) {
		t.Fatalf("expected ErrVIXTooHigh, got %v", err)
	}
	if err := gate.Check(noon, 15, -400, 0); !errors.Is(err, ErrDayLossHit) {
		t.Fatalf("expected ErrDayLossHit, got %v", err)
	}
	if err := gate.Check(noon.Add(-5*time.Hour), 15, 0, 0); !errors.Is(err, ErrOutsideSession) {
		t.Fatalf("expected ErrOutsideSession, got %v", err)
	}
}
