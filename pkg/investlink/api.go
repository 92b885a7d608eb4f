package investlink

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Candle is one OHLCV bar as the broker reports it.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PortfolioPosition is one holding in the account.
type PortfolioPosition struct {
	Figi     string  `json:"figi"`
	Quantity float64 `json:"quantity"`
	AvgPrice float64 `json:"avg_price"`
}

// PortfolioResponse is the full account snapshot.
type PortfolioResponse struct {
	Positions []PortfolioPosition `json:"positions"`
	Balance   float64             `json:"balance"`
	Currency  string              `json:"currency"`
}

// ActiveOrder is an order resting on the book.
type ActiveOrder struct {
	OrderID string  `json:"order_id"`
	Figi    string  `json:"figi"`
	Side    string  `json:"side"`
	Price   float64 `json:"price"`
}

// Candles returns up to limit bars for the instrument, oldest first.
// Interval uses the broker's notation: "1min", "5min", "15min", "hour", "day".
func (c *Client) Candles(ctx context.Context, figi, interval string, from, to time.Time, limit int) ([]Candle, error) {
	q := url.Values{}
	q.Set("figi", figi)
	q.Set("interval", interval)
	q.Set("from", from.UTC().Format(time.RFC3339))
	q.Set("to", to.UTC().Format(time.RFC3339))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var out struct {
		Candles []Candle `json:"candles"`
	}
	if err := c.call(ctx, http.MethodGet, routes["candles"], nil, q, &out); err != nil {
		return nil, err
	}
	return out.Candles, nil
}

// TradingStatus reports whether the instrument currently accepts orders.
func (c *Client) TradingStatus(ctx context.Context, figi string) (bool, error) {
	q := url.Values{}
	q.Set("figi", figi)

	var out struct {
		TradingAvailable bool `json:"trading_available"`
	}
	if err := c.call(ctx, http.MethodGet, routes["status"], nil, q, &out); err != nil {
		return false, err
	}
	return out.TradingAvailable, nil
}

// Portfolio fetches the account's positions and free balance.
func (c *Client) Portfolio(ctx context.Context) (*PortfolioResponse, error) {
	path := fmt.Sprintf(routes["portfolio"], c.cfg.AccountID)
	var out PortfolioResponse
	if err := c.call(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PlaceLimitOrder submits a limit order and returns the broker's order ID.
func (c *Client) PlaceLimitOrder(ctx context.Context, figi, side string, quantity, price float64) (string, error) {
	path := fmt.Sprintf(routes["orders.place"], c.cfg.AccountID)
	var out struct {
		OrderID string `json:"order_id"`
	}
	err := c.call(ctx, http.MethodPost, path, map[string]any{
		"figi":     figi,
		"side":     side,
		"type":     "limit",
		"quantity": quantity,
		"price":    price,
	}, nil, &out)
	if err != nil {
		return "", err
	}
	if out.OrderID == "" {
		return "", fmt.Errorf("investlink: place order: empty order id")
	}
	return out.OrderID, nil
}

// ActiveOrders lists resting orders, optionally filtered by instrument.
func (c *Client) ActiveOrders(ctx context.Context, figi string) ([]ActiveOrder, error) {
	path := fmt.Sprintf(routes["orders.list"], c.cfg.AccountID)
	q := url.Values{}
	if figi != "" {
		q.Set("figi", figi)
	}

	var out struct {
		Orders []ActiveOrder `json:"orders"`
	}
	if err := c.call(ctx, http.MethodGet, path, nil, q, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// CancelOrder drops one resting order.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	path := fmt.Sprintf(routes["orders.drop"], c.cfg.AccountID, orderID)
	return c.call(ctx, http.MethodDelete, path, nil, nil, nil)
}
