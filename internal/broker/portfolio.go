package broker

import (
	"context"
	"fmt"
	"sync"

	"signalbot/internal/model"
	"signalbot/pkg/investlink"
)

// AccountPortfolio is the live account view. Refresh pulls a fresh snapshot;
// the read methods serve from it without further I/O.
type AccountPortfolio struct {
	client *investlink.Client

	mu        sync.RWMutex
	positions map[string]model.Position
	balance   float64
}

// NewAccountPortfolio builds an empty view; call Refresh before reading.
func NewAccountPortfolio(client *investlink.Client) *AccountPortfolio {
	return &AccountPortfolio{
		client:    client,
		positions: make(map[string]model.Position),
	}
}

// Refresh replaces the snapshot with the broker's current state.
func (p *AccountPortfolio) Refresh(ctx context.Context) error {
	resp, err := p.client.Portfolio(ctx)
	if err != nil {
		return fmt.Errorf("broker: portfolio: %w", err)
	}

	positions := make(map[string]model.Position, len(resp.Positions))
	for _, pos := range resp.Positions {
		positions[pos.Figi] = model.Position{
			Figi:     pos.Figi,
			Quantity: pos.Quantity,
			AvgPrice: pos.AvgPrice,
		}
	}

	p.mu.Lock()
	p.positions = positions
	p.balance = resp.Balance
	p.mu.Unlock()
	return nil
}

// AvailableQty returns the held quantity for the instrument, 0 if none.
func (p *AccountPortfolio) AvailableQty(figi string) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.positions[figi].Quantity
}

// BuyPrice returns the average entry price, ok=false without a position.
func (p *AccountPortfolio) BuyPrice(figi string) (float64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	pos, ok := p.positions[figi]
	if !ok || pos.Quantity <= 0 {
		return 0, false
	}
	return pos.AvgPrice, true
}

// Balance returns the free cash balance from the last refresh.
func (p *AccountPortfolio) Balance() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.balance
}
