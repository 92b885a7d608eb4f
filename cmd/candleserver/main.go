// cmd/candleserver: simulated broker for local runs.
// Serves the same REST and WebSocket surface the bot talks to in production,
// with random-walk candle data, so the whole decision loop can run end to end
// without broker credentials (point BROKER_ROOT_URL and BROKER_STREAM_URL at
// it and use any BROKER_TOKEN).
//
// Config (env vars):
//
//	CANDLE_SERVER_ADDR   listen address (default: ":9001")
//	CANDLE_FIGIS         comma-separated FIGI:START_PRICE pairs (default: "SIM0000000001:250")
//	CANDLE_INTERVAL      simulated bar interval (default: "5min", wall clock compressed to 1s per bar)
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"signalbot/internal/model"
	"signalbot/internal/ringbuf"
)

// instrument holds per-symbol simulation state.
type instrument struct {
	mu      sync.Mutex
	figi    string
	price   float64
	history *ringbuf.Ring
}

const historyCap = 1000

// step produces the next bar with a small random walk and appends it.
func (in *instrument) step(interval model.Interval, ts time.Time) model.Candle {
	in.mu.Lock()
	defer in.mu.Unlock()

	open := in.price
	for i := 0; i < 4; i++ {
		in.price *= 1 + (rand.Float64()*0.4-0.2)/100
	}
	if in.price < 0.01 {
		in.price = 0.01
	}
	high := open
	low := open
	if in.price > high {
		high = in.price
	}
	if in.price < low {
		low = in.price
	}

	c := model.Candle{
		Figi:     in.figi,
		Interval: interval,
		TS:       ts,
		Open:     open,
		High:     high * (1 + rand.Float64()*0.001),
		Low:      low * (1 - rand.Float64()*0.001),
		Close:    in.price,
		Volume:   int64(rand.Intn(900) + 100),
	}
	in.history.Push(c)
	return c
}

func (in *instrument) candles() []model.Candle {
	return in.history.Snapshot()
}

// ---- hub -------------------------------------------------------------------

type hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]chan []byte
}

func newHub() *hub {
	return &hub{clients: make(map[*websocket.Conn]chan []byte)}
}

func (h *hub) register(conn *websocket.Conn) chan []byte {
	ch := make(chan []byte, 256)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()
	return ch
}

func (h *hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	if ch, ok := h.clients[conn]; ok {
		close(ch)
		delete(h.clients, conn)
	}
	h.mu.Unlock()
}

func (h *hub) broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.clients {
		select {
		case ch <- msg:
		default: // slow client, drop the bar
		}
	}
}

// ---- websocket handler -----------------------------------------------------

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

func wsHandler(h *hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[candleserver] upgrade error: %v", err)
			return
		}
		log.Printf("[candleserver] stream client connected: %s", r.RemoteAddr)

		ch := h.register(conn)
		defer func() {
			h.unregister(conn)
			conn.Close()
			log.Printf("[candleserver] stream client disconnected: %s", r.RemoteAddr)
		}()

		// The subscribe frame is read and ignored: every client gets all
		// instruments.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for msg := range ch {
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}

// ---- candle generator ------------------------------------------------------

// streamFrame matches the production feed envelope.
type streamFrame struct {
	Event  string `json:"event"`
	Candle struct {
		Figi     string    `json:"figi"`
		Interval string    `json:"interval"`
		Time     time.Time `json:"time"`
		Open     float64   `json:"open"`
		High     float64   `json:"high"`
		Low      float64   `json:"low"`
		Close    float64   `json:"close"`
		Volume   int64     `json:"volume"`
		Closed   bool      `json:"closed"`
	} `json:"candle"`
}

func runGenerator(h *hub, instruments []*instrument, interval model.Interval) {
	// One simulated bar per wall-clock second: candle time advances by the
	// interval, so indicators see a proper series.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	ts := time.Now().UTC().Truncate(interval.Duration())
	for range ticker.C {
		ts = ts.Add(interval.Duration())
		for _, in := range instruments {
			c := in.step(interval, ts)

			var frame streamFrame
			frame.Event = "candle"
			frame.Candle.Figi = c.Figi
			frame.Candle.Interval = string(interval)
			frame.Candle.Time = c.TS
			frame.Candle.Open = c.Open
			frame.Candle.High = c.High
			frame.Candle.Low = c.Low
			frame.Candle.Close = c.Close
			frame.Candle.Volume = c.Volume
			frame.Candle.Closed = true

			if b, err := json.Marshal(frame); err == nil {
				h.broadcast(b)
			}
		}
	}
}

// ---- REST handlers ---------------------------------------------------------

type restCandle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

func candlesHandler(byFigi map[string]*instrument) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := byFigi[r.URL.Query().Get("figi")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"code": "not_found", "message": "unknown figi"})
			return
		}

		history := in.candles()
		limit := len(history)
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n < limit {
				limit = n
			}
		}
		history = history[len(history)-limit:]

		out := make([]restCandle, len(history))
		for i, c := range history {
			out[i] = restCandle{Time: c.TS, Open: c.Open, High: c.High, Low: c.Low, Close: c.Close, Volume: c.Volume}
		}
		json.NewEncoder(w).Encode(map[string]any{"candles": out})
	}
}

var orderSeq struct {
	mu sync.Mutex
	n  int
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Println("[candleserver] starting simulated broker...")

	addr := envOrDefault("CANDLE_SERVER_ADDR", ":9001")
	figisEnv := envOrDefault("CANDLE_FIGIS", "SIM0000000001:250")
	interval := model.Interval(envOrDefault("CANDLE_INTERVAL", string(model.Interval5Min)))

	instruments, byFigi := parseInstruments(figisEnv)
	if len(instruments) == 0 {
		log.Fatalf("[candleserver] no instruments configured via CANDLE_FIGIS")
	}
	log.Printf("[candleserver] %d instruments, interval=%s (1 bar/second)", len(instruments), interval)

	h := newHub()
	go runGenerator(h, instruments, interval)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler(h))
	mux.HandleFunc("/v1/market/candles", candlesHandler(byFigi))
	mux.HandleFunc("/v1/market/status", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"trading_available": true})
	})
	mux.HandleFunc("/v1/auth/session", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": "sim-token"})
	})
	mux.HandleFunc("/v1/accounts/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/portfolio"):
			json.NewEncoder(w).Encode(map[string]any{
				"positions": []any{},
				"balance":   1000000.0,
				"currency":  "RUB",
			})
		case strings.HasSuffix(r.URL.Path, "/orders/active"):
			json.NewEncoder(w).Encode(map[string]any{"orders": []any{}})
		case r.Method == http.MethodPost:
			orderSeq.mu.Lock()
			orderSeq.n++
			id := fmt.Sprintf("SIM-%d", orderSeq.n)
			orderSeq.mu.Unlock()
			json.NewEncoder(w).Encode(map[string]string{"order_id": id})
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, `{"status":"ok","service":"candleserver"}`)
	})

	log.Printf("[candleserver] listening on %s (stream: ws://localhost%s/ws)", addr, addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("[candleserver] server error: %v", err)
	}
}

// ---- helpers ---------------------------------------------------------------

func parseInstruments(s string) ([]*instrument, map[string]*instrument) {
	var list []*instrument
	byFigi := make(map[string]*instrument)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		seg := strings.SplitN(part, ":", 2)
		if len(seg) != 2 {
			log.Printf("[candleserver] skipping invalid figi spec: %q", part)
			continue
		}
		figi := strings.TrimSpace(seg[0])
		price, err := strconv.ParseFloat(strings.TrimSpace(seg[1]), 64)
		if err != nil || price <= 0 {
			log.Printf("[candleserver] skipping invalid start price: %q", part)
			continue
		}
		in := &instrument{figi: figi, price: price, history: ringbuf.New(historyCap)}
		list = append(list, in)
		byFigi[figi] = in
	}
	return list, byFigi
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
