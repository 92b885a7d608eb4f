package strategy

import (
	"context"

	"signalbot/internal/model"
)

// CandleSource loads candle history for an instrument, oldest first.
// Implementations may return fewer than minCount candles when the venue has
// less history; the strategy treats that as a hold, not an error.
type CandleSource interface {
	Candles(ctx context.Context, figi string, interval model.Interval, minCount int) ([]model.Candle, error)
}

// Portfolio is the account view shared with the broker. Refresh re-reads the
// remote state; the getters serve the refreshed snapshot.
type Portfolio interface {
	Refresh(ctx context.Context) error

	// AvailableQty returns the unblocked quantity held for the instrument,
	// 0 when there is no open position.
	AvailableQty(figi string) float64

	// BuyPrice returns the average entry price for the instrument's open
	// position. ok is false without a position.
	BuyPrice(figi string) (price float64, ok bool)

	// Balance returns the free cash balance in account currency.
	Balance() float64
}

// OrderGateway places and cancels orders at the venue.
type OrderGateway interface {
	// TradingAvailable reports whether the venue currently accepts orders
	// for the instrument.
	TradingAvailable(ctx context.Context, figi string) bool

	// CancelOrders cancels any outstanding orders for the instrument.
	CancelOrders(ctx context.Context, figi string) error

	// PostLimitOrder places a limit order and returns the venue order id.
	PostLimitOrder(ctx context.Context, req model.OrderRequest) (orderID string, err error)
}

// Ledger persists executed trades. Failures must not abort the strategy:
// callers log and continue, an already-placed order is never rolled back.
type Ledger interface {
	Record(ctx context.Context, rec model.TradeRecord) error
}
