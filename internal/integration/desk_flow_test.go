package integration

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/maheshnellore19-collab/AI-Trader/internal/config"
	"github.com/maheshnellore19-collab/AI-Trader/internal/desk"
	"github.com/maheshnellore19-collab/AI-Trader/internal/market"
	"github.com/maheshnellore19-collab/AI-Trader/internal/plan"
	sig "github.com/maheshnellore19-collab/AI-Trader/internal/signal"
)

func bullish() sig.FeatureSet {
	return sig.FeatureSet{VWAPDist: 0.3, EMA20Slope: 0.1, Breadth: 1.3, FII5D: 250, FutOIChg: -0.5, DXYChg: 0.1, USFut: 0.2}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Market.Timezone = "UTC"
	cfg.Feed.Seed = 11
	cfg.Feed.IntervalMs = 0
	cfg.Sim.ExecutionDelayMs = 0
	cfg.Sim.EntryProbability = 1
	cfg.Sim.ExitProbability = 1
	return cfg
}

func TestReplayFlowOpensAndClosesPlans(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.jsonl")
	recorder, err := market.NewJSONLRecorder(path)
	if err != nil {
		t.Fatalf("recorder: %v", err)
	}
	start := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		snap := sig.Snapshot{Spot: 24350 + float64(i), VIX: 14, Features: bullish(), Ts: start.Add(time.Duration(i) * time.Second)}
		if err := recorder.Record(snap); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if err := recorder.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	cfg := testConfig()
	cfg.Feed.Provider = market.ProviderReplay
	cfg.Feed.ReplayPath = path

	var logs bytes.Buffer
	log := zerolog.New(&logs)
	ctrl, err := desk.FromConfig(cfg, log, func() time.Time { return start })
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	feed, closeFeed, err := desk.FeedFromConfig(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("FeedFromConfig: %v", err)
	}
	defer closeFeed()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snapshots := make(chan sig.Snapshot, 8)
	go func() {
		defer close(snapshots)
		if err := feed.Run(ctx, snapshots); err != nil {
			t.Errorf("feed: %v", err)
		}
	}()
	if err := ctrl.Run(ctx, snapshots); err != nil {
		t.Fatalf("desk run: %v", err)
	}

	history := ctrl.History()
	if len(history) != 2 {
		t.Fatalf("expected two round trips, got %d", len(history))
	}
	for _, p := range history {
		if p.Status != plan.Closed || p.Side != sig.BuyCall || !strings.HasPrefix(p.Symbol, "NIFTYWEEKLY") {
			t.Fatalf("unexpected closed plan %+v", p)
		}
		if !(p.StopLoss < p.EntryPrice && p.EntryPrice < p.Target1 && p.Target1 < p.Target2) {
			t.Fatalf("plan levels out of order %+v", p)
		}
	}
	state := ctrl.State()
	if state.Ticks != 6 || state.Plan != nil {
		t.Fatalf("unexpected final state %+v", state)
	}
	if len(ctrl.Account().Positions) != 0 {
		t.Fatalf("expected flat book, got %+v", ctrl.Account().Positions)
	}
	for _, msg := range []string{"signal detected", "generating trade plan", "order executed", "exiting plan"} {
		if !strings.Contains(logs.String(), msg) {
			t.Fatalf("expected %q in logs", msg)
		}
	}
}

func TestSyntheticFlowRecordsSnapshots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec", "snapshots.jsonl")
	cfg := testConfig()
	cfg.Feed.IntervalMs = 5
	cfg.Feed.RecordPath = path
	cfg.Sim.EntryProbability = 0.3

	ctrl, err := desk.FromConfig(cfg, zerolog.Nop(), nil)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	feed, closeFeed, err := desk.FeedFromConfig(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("FeedFromConfig: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	seen := make(chan struct{}, 64)
	ctrl.Subscribe(func(desk.State) {
		select {
		case seen <- struct{}{}:
		default:
		}
	})

	snapshots := make(chan sig.Snapshot, 8)
	go func() { _ = feed.Run(ctx, snapshots) }()
	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx, snapshots) }()

	for i := 0; i < 5; i++ {
		select {
		case <-seen:
		case <-ctx.Done():
			t.Fatalf("timed out after %d ticks", i)
		}
	}
	cancel()
	<-done
	if err := closeFeed(); err != nil {
		t.Fatalf("close recorder: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open recording: %v", err)
	}
	defer file.Close()
	lines := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines++
	}
	if lines < 5 {
		t.Fatalf("expected at least 5 recorded snapshots, got %d", lines)
	}
	if ctrl.State().Ticks < 5 {
		t.Fatalf("expected at least 5 ticks, got %d", ctrl.State().Ticks)
	}
}
