package investlink

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

// StreamCandle is one bar pushed over the websocket feed.
type StreamCandle struct {
	Figi     string `json:"figi"`
	Interval string `json:"interval"`
	Candle
	Closed bool `json:"closed"` // false while the bar is still forming
}

type streamEnvelope struct {
	Event  string       `json:"event"`
	Candle StreamCandle `json:"candle"`
}

// Stream consumes the broker's candle feed for a set of instruments and
// reconnects with backoff until ctx is cancelled.
type Stream struct {
	client   *Client
	figis    []string
	interval string
}

// NewStream prepares a feed subscription over the client's credentials.
func (c *Client) NewStream(figis []string, interval string) *Stream {
	return &Stream{client: c, figis: figis, interval: interval}
}

const (
	streamPingPeriod  = 25 * time.Second
	streamReadTimeout = 60 * time.Second
	maxReconnectWait  = 30 * time.Second
)

// Run delivers closed candles to out. The channel stays open across
// reconnects; Run returns only when ctx is cancelled.
func (s *Stream) Run(ctx context.Context, out chan<- StreamCandle) error {
	wait := time.Second
	for {
		if err := s.runConn(ctx, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[investlink] stream disconnected: %v, retrying in %s", err, wait)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
		if wait > maxReconnectWait {
			wait = maxReconnectWait
		}
	}
}

func (s *Stream) runConn(ctx context.Context, out chan<- StreamCandle) error {
	header := make(map[string][]string)
	if t := s.client.token(); t != "" {
		header["Authorization"] = []string{"Bearer " + t}
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.client.cfg.StreamURL, header)
	if err != nil {
		return err
	}
	defer conn.Close()

	sub := map[string]any{
		"action":   "subscribe",
		"figis":    s.figis,
		"interval": s.interval,
	}
	if err := conn.WriteJSON(sub); err != nil {
		return err
	}
	log.Printf("[investlink] stream subscribed: %d instruments, interval=%s", len(s.figis), s.interval)

	// Keepalive pings; the read loop owns the connection otherwise.
	go func() {
		ticker := time.NewTicker(streamPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				conn.Close()
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var env streamEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			log.Printf("[investlink] stream: bad frame: %v", err)
			continue
		}
		if env.Event != "candle" || !env.Candle.Closed {
			continue
		}

		select {
		case out <- env.Candle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
