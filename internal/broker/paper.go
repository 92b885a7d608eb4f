package broker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"signalbot/internal/markethours"
	"signalbot/internal/model"
)

// PaperPortfolio simulates an account for dry runs: orders fill instantly at
// the limit price, cash and positions update in memory.
type PaperPortfolio struct {
	mu        sync.RWMutex
	positions map[string]model.Position
	balance   float64
}

// NewPaperPortfolio starts the simulated account with the given cash.
func NewPaperPortfolio(startBalance float64) *PaperPortfolio {
	return &PaperPortfolio{
		positions: make(map[string]model.Position),
		balance:   startBalance,
	}
}

// Refresh is a no-op: the paper state is always current.
func (p *PaperPortfolio) Refresh(context.Context) error { return nil }

func (p *PaperPortfolio) AvailableQty(figi string) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.positions[figi].Quantity
}

func (p *PaperPortfolio) BuyPrice(figi string) (float64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	pos, ok := p.positions[figi]
	if !ok || pos.Quantity <= 0 {
		return 0, false
	}
	return pos.AvgPrice, true
}

func (p *PaperPortfolio) Balance() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.balance
}

// apply fills an order against the simulated account. Buys average into the
// position; a sell removes the sold quantity and credits the proceeds.
func (p *PaperPortfolio) apply(req model.OrderRequest) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pos := p.positions[req.Figi]
	notional := req.Price * req.Quantity
	switch req.Side {
	case model.Buy:
		total := pos.Quantity + req.Quantity
		if total > 0 {
			pos.AvgPrice = (pos.AvgPrice*pos.Quantity + notional) / total
		}
		pos.Quantity = total
		p.balance -= notional
	case model.Sell:
		pos.Quantity -= req.Quantity
		if pos.Quantity <= 0 {
			pos = model.Position{Figi: req.Figi}
		}
		p.balance += notional
	}
	pos.Figi = req.Figi
	p.positions[req.Figi] = pos
}

// DryRunGateway accepts orders without calling the broker. Fills go straight
// into the paper portfolio; trading availability follows the exchange
// calendar.
type DryRunGateway struct {
	portfolio *PaperPortfolio
}

// NewDryRunGateway wires the gateway to the simulated account.
func NewDryRunGateway(portfolio *PaperPortfolio) *DryRunGateway {
	return &DryRunGateway{portfolio: portfolio}
}

func (g *DryRunGateway) TradingAvailable(_ context.Context, _ string) bool {
	return markethours.IsMarketOpen(time.Now())
}

// CancelOrders is a no-op: paper orders never rest on a book.
func (g *DryRunGateway) CancelOrders(context.Context, string) error { return nil }

// PostLimitOrder fills immediately at the limit price and returns a
// synthetic order ID.
func (g *DryRunGateway) PostLimitOrder(_ context.Context, req model.OrderRequest) (string, error) {
	g.portfolio.apply(req)
	orderID := "PAPER-" + uuid.NewString()
	log.Printf("[broker] dry run: %s %s %.2f @ %.4f order=%s", req.Side, req.Figi, req.Quantity, req.Price, orderID)
	return orderID, nil
}
