package market

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/maheshnellore19-collab/AI-Trader/internal/metrics"
	"github.com/maheshnellore19-collab/AI-Trader/internal/signal"
)

const (
	// ProviderSynthetic emits seeded synthetic snapshots on a ticker.
	ProviderSynthetic = "synthetic"
	// ProviderReplay replays a JSONL file written by JSONLRecorder.
	ProviderReplay = "replay"
	// ProviderWebsocket consumes snapshot JSON frames from a remote websocket.
	ProviderWebsocket = "websocket"
)

const defaultInterval = time.Second

// Feed represents a pluggable market snapshot stream.
type Feed struct {
	provider   string
	log        zerolog.Logger
	interval   time.Duration
	generator  *Generator
	replayPath string
	url        string
	recorder   *JSONLRecorder
	clock      func() time.Time
}

// Option configures Feed construction parameters.
type Option func(*Feed)

// WithInterval overrides the tick cadence for synthetic and replay feeds.
func WithInterval(d time.Duration) Option {
	return func(f *Feed) {
		if d >= 0 {
			f.interval = d
		}
	}
}

// WithGenerator injects the synthetic generator.
func WithGenerator(g *Generator) Option {
	return func(f *Feed) { f.generator = g }
}

// WithReplayPath points the replay provider at a JSONL file.
func WithReplayPath(path string) Option {
	return func(f *Feed) { f.replayPath = path }
}

// WithURL sets the websocket endpoint.
func WithURL(url string) Option {
	return func(f *Feed) { f.url = strings.TrimSpace(url) }
}

// WithRecorder tees every emitted snapshot into a recorder.
func WithRecorder(r *JSONLRecorder) Option {
	return func(f *Feed) { f.recorder = r }
}

// WithClock overrides the timestamp source of the synthetic provider.
func WithClock(clock func() time.Time) Option {
	return func(f *Feed) {
		if clock != nil {
			f.clock = clock
		}
	}
}

// ValidProvider reports whether name selects a known provider.
func ValidProvider(name string) bool {
	switch strings.ToLower(name) {
	case "", ProviderSynthetic, ProviderReplay, ProviderWebsocket:
		return true
	}
	return false
}

// NewFeed constructs a feed backed by the requested provider.
func NewFeed(provider string, log zerolog.Logger, opts ...Option) *Feed {
	if provider == "" {
		provider = ProviderSynthetic
	}
	f := &Feed{
		provider: strings.ToLower(provider),
		log:      log,
		interval: defaultInterval,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.generator == nil {
		f.generator = NewGenerator(0, 0)
	}
	return f
}

// Provider returns the configured provider name.
func (f *Feed) Provider() string { return f.provider }

// Run pushes snapshots onto the provided channel until the context is canceled
// or, for replay, the file is exhausted.
func (f *Feed) Run(ctx context.Context, out chan<- signal.Snapshot) error {
	switch f.provider {
	case ProviderReplay:
		return f.runReplay(ctx, out)
	case ProviderWebsocket:
		return f.runWebsocket(ctx, out)
	case ProviderSynthetic:
		return f.runSynthetic(ctx, out)
	default:
		return fmt.Errorf("unknown feed provider %q", f.provider)
	}
}

func (f *Feed) emit(ctx context.Context, out chan<- signal.Snapshot, snap signal.Snapshot) error {
	if f.recorder != nil {
		if err := f.recorder.Record(snap); err != nil {
			f.log.Warn().Err(err).Msg("record snapshot failed")
		}
	}
	select {
	case out <- snap:
		metrics.SnapshotsTotal.WithLabelValues(f.provider).Inc()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Feed) runSynthetic(ctx context.Context, out chan<- signal.Snapshot) error {
	interval := f.interval
	if interval <= 0 {
		interval = defaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := f.emit(ctx, out, f.generator.Next(f.clock())); err != nil {
				return err
			}
		}
	}
}

func (f *Feed) runReplay(ctx context.Context, out chan<- signal.Snapshot) error {
	if f.replayPath == "" {
		return fmt.Errorf("replay feed requires a path")
	}
	file, err := os.Open(f.replayPath)
	if err != nil {
		return fmt.Errorf("open replay: %w", err)
	}
	defer file.Close()

	f.log.Info().Str("provider", ProviderReplay).Str("path", f.replayPath).Msg("replaying snapshots")

	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var snap signal.Snapshot
		if err := json.Unmarshal([]byte(raw), &snap); err != nil {
			f.log.Warn().Err(err).Int("line", line).Msg("skip malformed replay line")
			continue
		}
		if err := f.emit(ctx, out, snap); err != nil {
			return err
		}
		if f.interval > 0 {
			select {
			case <-time.After(f.interval):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return scanner.Err()
}
