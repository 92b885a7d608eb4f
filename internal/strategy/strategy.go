// Package strategy runs the per-instrument decision loop: load candle
// history, compute unrealized profit, evaluate the trigger rules, and place
// at most one order per cycle subject to the position-state guards.
package strategy

import (
	"context"
	"fmt"
	"log"
	"time"

	"signalbot/internal/metrics"
	"signalbot/internal/model"
	"signalbot/internal/notification"
	"signalbot/internal/signal"
	"signalbot/internal/trigger"
)

// Config is the immutable per-instrument configuration.
type Config struct {
	Figi       string
	Ticker     string // human-readable instrument label for logs and alerts
	Enabled    bool
	Interval   model.Interval
	Quantity   float64 // units bought per entry; exits always sell everything
	FeePercent float64 // broker fee percent of notional, per leg
	DryRun     bool    // stamps trade records; the gateway decides placement
	Signals    signal.Config

	// BuyRule and SellRule are bound at configuration-load time. A nil rule
	// falls back to the default: buy on any non-exit signal, sell on any
	// signal (the profit guard included).
	BuyRule  trigger.Rule
	SellRule trigger.Rule
}

// Deps are the external collaborators a strategy acts through.
// Notifier, Metrics and Observer are optional.
type Deps struct {
	Candles   CandleSource
	Portfolio Portfolio
	Orders    OrderGateway
	Ledger    Ledger
	Notifier  notification.Notifier
	Metrics   *metrics.Metrics
	Observer  signal.Observer
}

// Strategy is the per-instrument orchestrator. One instance per instrument,
// created once and reused every cycle; it holds no per-cycle mutable state
// beyond the state marker, so cycles are deterministic for fixed inputs.
type Strategy struct {
	cfg      Config
	registry *signal.Registry
	buyRule  trigger.Rule
	sellRule trigger.Rule

	candles   CandleSource
	portfolio Portfolio
	orders    OrderGateway
	ledger    Ledger
	notifier  notification.Notifier
	metrics   *metrics.Metrics

	state State
}

// New builds a strategy for one instrument. Signal configuration problems
// surface here, not mid-cycle.
func New(cfg Config, deps Deps) (*Strategy, error) {
	if cfg.Figi == "" {
		return nil, fmt.Errorf("strategy: figi is required")
	}
	if cfg.Quantity <= 0 {
		return nil, fmt.Errorf("strategy %s: need quantity > 0, got %.2f", cfg.Figi, cfg.Quantity)
	}
	if cfg.FeePercent < 0 {
		return nil, fmt.Errorf("strategy %s: need fee_percent >= 0, got %.4f", cfg.Figi, cfg.FeePercent)
	}
	if deps.Candles == nil || deps.Portfolio == nil || deps.Orders == nil || deps.Ledger == nil {
		return nil, fmt.Errorf("strategy %s: missing collaborator", cfg.Figi)
	}
	if cfg.Interval == "" {
		cfg.Interval = model.Interval5Min
	}

	registry, err := signal.NewRegistry(cfg.Signals, deps.Observer)
	if err != nil {
		return nil, fmt.Errorf("strategy %s: %w", cfg.Figi, err)
	}

	buyRule, sellRule := cfg.BuyRule, cfg.SellRule
	if buyRule == nil {
		buyRule = defaultBuyRule(registry.Names())
	}
	if sellRule == nil {
		sellRule = defaultSellRule(registry.Names())
	}

	return &Strategy{
		cfg:       cfg,
		registry:  registry,
		buyRule:   buyRule,
		sellRule:  sellRule,
		candles:   deps.Candles,
		portfolio: deps.Portfolio,
		orders:    deps.Orders,
		ledger:    deps.Ledger,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,
	}, nil
}

// defaultBuyRule fires on any configured signal except the exit-only profit
// guard, which can never mean "enter".
func defaultBuyRule(names []string) trigger.Rule {
	rules := make([]trigger.Rule, 0, len(names))
	for _, name := range names {
		if name == "profit" {
			continue
		}
		rules = append(rules, trigger.Sig(name))
	}
	if len(rules) == 0 {
		return trigger.Never()
	}
	return trigger.Or(rules...)
}

func defaultSellRule(names []string) trigger.Rule {
	rules := make([]trigger.Rule, 0, len(names))
	for _, name := range names {
		rules = append(rules, trigger.Sig(name))
	}
	if len(rules) == 0 {
		return trigger.Never()
	}
	return trigger.Or(rules...)
}

// Figi returns the instrument this strategy trades.
func (s *Strategy) Figi() string { return s.cfg.Figi }

// Enabled reports whether the instrument takes part in cycles.
func (s *Strategy) Enabled() bool { return s.cfg.Enabled }

// State returns the most recent state marker, for status endpoints.
func (s *Strategy) State() State { return s.state }

// RequiredCandleWindow exposes the registry's window requirement so
// collaborators can pre-size history.
func (s *Strategy) RequiredCandleWindow() int {
	return s.registry.RequiredCandleWindow()
}

// RunCycle executes one full Load→Evaluate→Act pass. Data problems degrade
// to a hold; only execution errors (broker I/O) are returned.
func (s *Strategy) RunCycle(ctx context.Context) error {
	if !s.cfg.Enabled {
		s.state = StateDisabled
		return nil
	}
	if !s.orders.TradingAvailable(ctx, s.cfg.Figi) {
		log.Printf("[strategy] %s: trading unavailable, skipping cycle", s.cfg.Ticker)
		s.state = StateIdle
		return nil
	}

	s.state = StateLoadingCandles
	need := s.registry.RequiredCandleWindow()
	candles, err := s.candles.Candles(ctx, s.cfg.Figi, s.cfg.Interval, need)
	if err != nil {
		s.state = StateIdle
		return fmt.Errorf("load candles %s: %w", s.cfg.Figi, err)
	}
	if len(candles) < need || len(candles) == 0 {
		log.Printf("[strategy] %s: %d candles available, %d required, holding", s.cfg.Ticker, len(candles), need)
		s.state = StateIdle
		return nil
	}

	if err := s.portfolio.Refresh(ctx); err != nil {
		s.state = StateIdle
		return fmt.Errorf("refresh portfolio %s: %w", s.cfg.Figi, err)
	}

	currentPrice := candles[len(candles)-1].Close
	profit := s.unrealizedProfit(currentPrice)

	s.state = StateEvaluating
	buyCtx := s.registry.BuildContext(candles, profit, false)
	sellCtx := s.registry.BuildContext(candles, profit, true)
	action := trigger.Decide(s.buyRule, s.sellRule, buyCtx, sellCtx)
	if s.metrics != nil {
		s.metrics.DecisionsTotal.WithLabelValues(s.cfg.Figi, action.String()).Inc()
	}

	var actErr error
	switch action {
	case trigger.Buy:
		s.state = StateBuying
		actErr = s.buy(ctx, currentPrice, buyCtx)
	case trigger.Sell:
		s.state = StateSelling
		actErr = s.sell(ctx, currentPrice, profit, sellCtx)
	default:
		s.state = StateHolding
	}

	s.state = StateIdle
	return actErr
}

// unrealizedProfit computes the fee-adjusted profit percent of the open
// position, 0 without one. The configured fee is applied to the round-trip
// notional (entry plus current price).
func (s *Strategy) unrealizedProfit(currentPrice float64) float64 {
	if s.portfolio.AvailableQty(s.cfg.Figi) <= 0 {
		return 0
	}
	entry, ok := s.portfolio.BuyPrice(s.cfg.Figi)
	if !ok || entry <= 0 {
		return 0
	}
	fee := s.cfg.FeePercent / 100 * (entry + currentPrice)
	return 100 * (currentPrice - entry - fee) / entry
}

func (s *Strategy) buy(ctx context.Context, price float64, buyCtx trigger.Context) error {
	if s.portfolio.AvailableQty(s.cfg.Figi) > 0 {
		log.Printf("[strategy] %s: position already open, buy suppressed", s.cfg.Ticker)
		return nil
	}

	cost := price * s.cfg.Quantity
	if s.portfolio.Balance() < cost {
		log.Printf("[strategy] %s: balance %.2f below cost %.2f, buy skipped", s.cfg.Ticker, s.portfolio.Balance(), cost)
		return nil
	}

	if err := s.prepareOrder(ctx); err != nil {
		return err
	}
	if s.portfolio.AvailableQty(s.cfg.Figi) > 0 {
		// Refreshed view shows a fill from a previous cycle's order.
		log.Printf("[strategy] %s: refreshed portfolio shows open position, buy suppressed", s.cfg.Ticker)
		return nil
	}

	orderID, err := s.orders.PostLimitOrder(ctx, model.OrderRequest{
		Figi:     s.cfg.Figi,
		Side:     model.Buy,
		Quantity: s.cfg.Quantity,
		Price:    price,
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.OrderFailures.WithLabelValues(s.cfg.Figi).Inc()
		}
		return fmt.Errorf("post buy order %s: %w", s.cfg.Figi, err)
	}
	if s.metrics != nil {
		s.metrics.OrdersTotal.WithLabelValues(s.cfg.Figi, string(model.Buy)).Inc()
	}
	log.Printf("[strategy] %s: BUY %.2f @ %.4f order=%s", s.cfg.Ticker, s.cfg.Quantity, price, orderID)

	rec := model.TradeRecord{
		OrderID:  orderID,
		Figi:     s.cfg.Figi,
		Side:     model.Buy,
		Quantity: s.cfg.Quantity,
		Price:    price,
		Fee:      price * s.cfg.Quantity * s.cfg.FeePercent / 100,
		Signals:  s.registry.Active(buyCtx),
		DryRun:   s.cfg.DryRun,
		PlacedAt: time.Now().UTC(),
	}
	s.record(ctx, rec)
	return nil
}

func (s *Strategy) sell(ctx context.Context, price, profitPct float64, sellCtx trigger.Context) error {
	qty := s.portfolio.AvailableQty(s.cfg.Figi)
	if qty <= 0 {
		log.Printf("[strategy] %s: nothing held, sell suppressed", s.cfg.Ticker)
		return nil
	}

	if err := s.prepareOrder(ctx); err != nil {
		return err
	}
	qty = s.portfolio.AvailableQty(s.cfg.Figi)
	if qty <= 0 {
		log.Printf("[strategy] %s: refreshed portfolio shows no position, sell suppressed", s.cfg.Ticker)
		return nil
	}

	// Partial exits are not supported: the entire held quantity goes.
	orderID, err := s.orders.PostLimitOrder(ctx, model.OrderRequest{
		Figi:     s.cfg.Figi,
		Side:     model.Sell,
		Quantity: qty,
		Price:    price,
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.OrderFailures.WithLabelValues(s.cfg.Figi).Inc()
		}
		return fmt.Errorf("post sell order %s: %w", s.cfg.Figi, err)
	}
	if s.metrics != nil {
		s.metrics.OrdersTotal.WithLabelValues(s.cfg.Figi, string(model.Sell)).Inc()
	}

	profit := 0.0
	if entry, ok := s.portfolio.BuyPrice(s.cfg.Figi); ok {
		profit = profitPct / 100 * entry * qty
	}
	log.Printf("[strategy] %s: SELL %.2f @ %.4f profit=%.4f order=%s", s.cfg.Ticker, qty, price, profit, orderID)

	rec := model.TradeRecord{
		OrderID:  orderID,
		Figi:     s.cfg.Figi,
		Side:     model.Sell,
		Quantity: qty,
		Price:    price,
		Fee:      price * qty * s.cfg.FeePercent / 100,
		Profit:   profit,
		Signals:  s.registry.Active(sellCtx),
		DryRun:   s.cfg.DryRun,
		PlacedAt: time.Now().UTC(),
	}
	s.record(ctx, rec)
	return nil
}

// prepareOrder cancels any outstanding order for the instrument (at most one
// may be in flight) and refreshes the portfolio so guards act on current
// holdings.
func (s *Strategy) prepareOrder(ctx context.Context) error {
	if err := s.orders.CancelOrders(ctx, s.cfg.Figi); err != nil {
		return fmt.Errorf("cancel orders %s: %w", s.cfg.Figi, err)
	}
	if err := s.portfolio.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh portfolio %s: %w", s.cfg.Figi, err)
	}
	return nil
}

// record persists the trade and alerts the operator. Neither failure aborts
// the cycle: the order is already placed.
func (s *Strategy) record(ctx context.Context, rec model.TradeRecord) {
	if err := s.ledger.Record(ctx, rec); err != nil {
		if s.metrics != nil {
			s.metrics.LedgerWriteFailures.Inc()
		}
		log.Printf("[strategy] %s: ledger write failed: %v", s.cfg.Ticker, err)
	}
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, notification.TradeAlert(rec, s.cfg.Ticker)); err != nil {
		if s.metrics != nil {
			s.metrics.NotifyFailures.Inc()
		}
		log.Printf("[strategy] %s: notification failed: %v", s.cfg.Ticker, err)
	}
}
