package broker

import (
	"context"
	"fmt"
	"log"
	"time"

	"signalbot/internal/markethours"
	"signalbot/internal/model"
	"signalbot/pkg/investlink"
)

// Gateway places real orders through the broker.
type Gateway struct {
	client *investlink.Client
}

// NewGateway wraps the client.
func NewGateway(client *investlink.Client) *Gateway {
	return &Gateway{client: client}
}

// TradingAvailable asks the broker for the instrument's status. When the
// status endpoint itself fails, the exchange calendar answers instead so a
// transient API error does not freeze trading decisions.
func (g *Gateway) TradingAvailable(ctx context.Context, figi string) bool {
	ok, err := g.client.TradingStatus(ctx, figi)
	if err != nil {
		log.Printf("[broker] %s: trading status: %v, falling back to calendar", figi, err)
		return markethours.IsMarketOpen(time.Now())
	}
	return ok
}

// CancelOrders drops every resting order for the instrument.
func (g *Gateway) CancelOrders(ctx context.Context, figi string) error {
	orders, err := g.client.ActiveOrders(ctx, figi)
	if err != nil {
		return fmt.Errorf("broker: list orders %s: %w", figi, err)
	}
	for _, o := range orders {
		if err := g.client.CancelOrder(ctx, o.OrderID); err != nil {
			return fmt.Errorf("broker: cancel order %s: %w", o.OrderID, err)
		}
		log.Printf("[broker] %s: cancelled resting order %s", figi, o.OrderID)
	}
	return nil
}

// PostLimitOrder submits the order and returns the broker's order ID.
func (g *Gateway) PostLimitOrder(ctx context.Context, req model.OrderRequest) (string, error) {
	return g.client.PlaceLimitOrder(ctx, req.Figi, string(req.Side), req.Quantity, req.Price)
}
