package market

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/gorilla/websocket"

	"github.com/maheshnellore19-collab/AI-Trader/internal/signal"
)

const (
	wsReadTimeout  = 30 * time.Second
	wsPingInterval = 15 * time.Second
	wsMinBackoff   = time.Second
	wsMaxBackoff   = 30 * time.Second
)

func (f *Feed) runWebsocket(ctx context.Context, out chan<- signal.Snapshot) error {
	if f.url == "" {
		return fmt.Errorf("websocket feed requires a url")
	}

	backoff := wsMinBackoff
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		connected, err := f.consumeStream(ctx, out)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var wait time.Duration
		wait, backoff = retryDelay(backoff, connected)
		f.log.Warn().Err(err).Dur("backoff", wait).Msg("snapshot feed disconnected, retrying")
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// retryDelay returns the wait before the next dial and the backoff carried
// forward. A session that managed to connect starts again from the minimum.
func retryDelay(backoff time.Duration, connected bool) (wait, next time.Duration) {
	if connected {
		backoff = wsMinBackoff
	}
	return backoff, time.Duration(math.Min(float64(wsMaxBackoff), float64(backoff)*1.8))
}

// consumeStream reads one connection until it fails. connected reports whether
// the dial succeeded, so the caller can reset its backoff.
func (f *Feed) consumeStream(ctx context.Context, out chan<- signal.Snapshot) (connected bool, err error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	f.log.Info().Str("provider", ProviderWebsocket).Str("url", f.url).Msg("connected market data feed")

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
					f.log.Warn().Err(err).Msg("snapshot feed ping failed")
					return
				}
			case <-pingCtx.Done():
				// unblock ReadMessage on shutdown
				_ = conn.Close()
				return
			}
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return true, ctx.Err()
			}
			return true, err
		}
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		var snap signal.Snapshot
		if err := json.Unmarshal(message, &snap); err != nil {
			f.log.Warn().Err(err).Msg("failed to decode snapshot frame")
			continue
		}
		if snap.Ts.IsZero() {
			snap.Ts = f.clock()
		}
		if err := f.emit(ctx, out, snap); err != nil {
			return true, err
		}
	}
}
