package investlink

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
)

const testSecret = "JBSWY3DPEHPK3PXP"

func newTestServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	logins := 0
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/auth/session", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ClientCode string `json:"client_code"`
			Password   string `json:"password"`
			TOTP       string `json:"totp"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		if req.ClientCode != "C100" || req.Password != "pw" || !totp.Validate(req.TOTP, testSecret) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"code": "auth_failed", "message": "bad credentials"})
			return
		}
		logins++
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-1"})
	})

	mux.HandleFunc("/v1/market/candles", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"code": "expired", "message": "session expired"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candles": []map[string]any{
				{"time": "2025-03-03T10:00:00Z", "open": 10, "high": 11, "low": 9, "close": 10.5, "volume": 100},
				{"time": "2025-03-03T10:05:00Z", "open": 10.5, "high": 12, "low": 10, "close": 11.5, "volume": 120},
			},
		})
	})

	mux.HandleFunc("/v1/accounts/ACC1/orders", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["type"] != "limit" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"code": "bad_order", "message": "only limit orders"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"order_id": "ORD-7"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &logins
}

func newTestClient(t *testing.T, rootURL string) *Client {
	t.Helper()
	c, err := New(Config{
		ClientCode: "C100",
		Password:   "pw",
		TOTPSecret: testSecret,
		RootURL:    rootURL,
		AccountID:  "ACC1",
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNew_RequiresCredentials(t *testing.T) {
	if _, err := New(Config{ClientCode: "C100"}); err == nil {
		t.Fatal("expected error without password and totp secret")
	}
	if _, err := New(Config{Token: "static"}); err != nil {
		t.Fatalf("static token must suffice: %v", err)
	}
}

func TestLogin_GeneratesValidTOTP(t *testing.T) {
	srv, logins := newTestServer(t)
	c := newTestClient(t, srv.URL)

	if err := c.Login(context.Background()); err != nil {
		t.Fatal(err)
	}
	if *logins != 1 {
		t.Errorf("expected 1 login, got %d", *logins)
	}
	if c.token() != "tok-1" {
		t.Errorf("token not captured: %q", c.token())
	}
}

func TestCandles_RelogsInOnExpiredSession(t *testing.T) {
	srv, logins := newTestServer(t)
	c := newTestClient(t, srv.URL)
	// No explicit Login: the first 401 must trigger one transparently.

	from := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	to := from.Add(2 * time.Hour)
	candles, err := c.Candles(context.Background(), "BBG004730N88", "5min", from, to, 100)
	if err != nil {
		t.Fatal(err)
	}
	if *logins != 1 {
		t.Errorf("expected exactly 1 re-login, got %d", *logins)
	}
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}
	if candles[1].Close != 11.5 || candles[1].Volume != 120 {
		t.Errorf("unexpected candle %+v", candles[1])
	}
}

func TestPlaceLimitOrder(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newTestClient(t, srv.URL)
	if err := c.Login(context.Background()); err != nil {
		t.Fatal(err)
	}

	id, err := c.PlaceLimitOrder(context.Background(), "BBG004730N88", "BUY", 3, 251.4)
	if err != nil {
		t.Fatal(err)
	}
	if id != "ORD-7" {
		t.Errorf("expected ORD-7, got %q", id)
	}
}

func TestAPIErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"code": "rate_limited", "message": "slow down"})
	}))
	t.Cleanup(srv.Close)

	c, err := New(Config{Token: "static", RootURL: srv.URL, AccountID: "ACC1"})
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.TradingStatus(context.Background(), "BBG004730N88")
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr, ok := err.(*apiError)
	if !ok {
		t.Fatalf("expected *apiError, got %T: %v", err, err)
	}
	if apiErr.Code != "rate_limited" || apiErr.Status != http.StatusTooManyRequests {
		t.Errorf("unexpected error %+v", apiErr)
	}
}
