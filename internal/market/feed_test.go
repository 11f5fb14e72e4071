package market

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/maheshnellore19-collab/AI-Trader/internal/signal"
)

func TestFeedRunEmitsSnapshots(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed := NewFeed(ProviderSynthetic, zerolog.Nop(), WithInterval(10*time.Millisecond), WithGenerator(NewGenerator(1, 24350)))
	snaps := make(chan signal.Snapshot, 1)

	go func() {
		_ = feed.Run(ctx, snaps)
	}()

	select {
	case snap := <-snaps:
		if snap.Spot <= 0 {
			t.Fatalf("unexpected spot %.2f", snap.Spot)
		}
		cancel()
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
}

func TestFeedUnknownProvider(t *testing.T) {
	feed := NewFeed("carrier-pigeon", zerolog.Nop())
	if err := feed.Run(context.Background(), make(chan signal.Snapshot)); err == nil {
		t.Fatalf("expected unknown provider error")
	}
	if ValidProvider("carrier-pigeon") || !ValidProvider("Replay") {
		t.Fatalf("ValidProvider mismatch")
	}
}

func TestRecordThenReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session", "snapshots.jsonl")
	recorder, err := NewJSONLRecorder(path)
	if err != nil {
		t.Fatalf("NewJSONLRecorder error: %v", err)
	}
	g := NewGenerator(5, 24350)
	ts := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	var recorded []signal.Snapshot
	for i := 0; i < 3; i++ {
		snap := g.Next(ts.Add(time.Duration(i) * time.Second))
		recorded = append(recorded, snap)
		if err := recorder.Record(snap); err != nil {
			t.Fatalf("Record error: %v", err)
		}
	}
	if err := recorder.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := recorder.Record(recorded[0]); err == nil {
		t.Fatalf("expected error recording after close")
	}

	feed := NewFeed(ProviderReplay, zerolog.Nop(), WithReplayPath(path), WithInterval(0))
	out := make(chan signal.Snapshot, len(recorded))
	if err := feed.Run(context.Background(), out); err != nil {
		t.Fatalf("replay returned error: %v", err)
	}
	close(out)
	i := 0
	for snap := range out {
		if snap.Spot != recorded[i].Spot || snap.Features != recorded[i].Features || !snap.Ts.Equal(recorded[i].Ts) {
			t.Fatalf("replayed snapshot %d differs: %+v vs %+v", i, snap, recorded[i])
		}
		i++
	}
	if i != len(recorded) {
		t.Fatalf("expected %d replayed snapshots, got %d", len(recorded), i)
	}
}

func TestReplayMissingFile(t *testing.T) {
	feed := NewFeed(ProviderReplay, zerolog.Nop(), WithReplayPath(filepath.Join(t.TempDir(), "missing.jsonl")))
	if err := feed.Run(context.Background(), make(chan signal.Snapshot, 1)); err == nil {
		t.Fatalf("expected open error")
	}
}

func TestWebsocketFeedEmitsSnapshot(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"spot":24351.5,"vix":13.2,"features":{"vwap_dist":0.2,"fii_5d":120}}`))
		_, _, _ = conn.ReadMessage()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	fixed := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	feed := NewFeed(ProviderWebsocket, zerolog.Nop(), WithURL(url), WithClock(func() time.Time { return fixed }))

	snaps := make(chan signal.Snapshot, 1)
	errCh := make(chan error, 1)
	go func() {
		if err := feed.Run(ctx, snaps); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case snap := <-snaps:
		if snap.Spot != 24351.5 || snap.Features.FII5D != 120 {
			t.Fatalf("unexpected snapshot %+v", snap)
		}
		if !snap.Ts.Equal(fixed) {
			t.Fatalf("expected missing timestamp filled from clock, got %s", snap.Ts)
		}
		cancel()
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatalf("timed out waiting for snapshot")
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("feed returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("feed did not stop after cancel")
	}
}

func TestWebsocketFeedRequiresURL(t *testing.T) {
	feed := NewFeed(ProviderWebsocket, zerolog.Nop())
	if err := feed.Run(context.Background(), make(chan signal.Snapshot)); err == nil {
		t.Fatalf("expected url error")
	}
}

func TestRetryDelayResetsAfterConnect(t *testing.T) {
	wait, next := retryDelay(wsMinBackoff, false)
	if wait != time.Second || next != 1800*time.Millisecond {
		t.Fatalf("unexpected first retry wait=%s next=%s", wait, next)
	}

	backoff := wsMinBackoff
	for i := 0; i < 10; i++ {
		_, backoff = retryDelay(backoff, false)
	}
	if backoff != wsMaxBackoff {
		t.Fatalf("expected backoff capped at %s, got %s", wsMaxBackoff, backoff)
	}

	wait, next = retryDelay(backoff, true)
	if wait != wsMinBackoff || next != 1800*time.Millisecond {
		t.Fatalf("expected reset after a connected session, got wait=%s next=%s", wait, next)
	}
}
