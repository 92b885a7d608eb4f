package model

import "time"

// Side is the direction of an order or trade.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// OrderRequest describes a limit order to be placed through the broker.
type OrderRequest struct {
	Figi     string  `json:"figi"`
	Side     Side    `json:"side"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
}

// TradeRecord is the immutable fact of an executed (or dry-run) trade.
// Created by a strategy after every successful order placement and owned
// by the trade ledger thereafter.
type TradeRecord struct {
	OrderID  string    `json:"order_id"`
	Figi     string    `json:"figi"`
	Side     Side      `json:"side"`
	Quantity float64   `json:"quantity"`
	Price    float64   `json:"price"`
	Fee      float64   `json:"fee"`     // broker fee in currency
	Profit   float64   `json:"profit"`  // realized profit in currency, 0 for buys
	Signals  []string  `json:"signals"` // signal names active at decision time
	DryRun   bool      `json:"dry_run"`
	PlacedAt time.Time `json:"placed_at"`
}
