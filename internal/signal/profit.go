package signal

import "fmt"

// profitGuard is the risk-management signal. It ignores the candle window and
// compares the supplied unrealized profit percent against its take-profit and
// stop-loss bounds. It only ever returns Sell; in trigger contexts it is
// always interpreted as an exit condition, on the buy side too.
type profitGuard struct {
	takeProfit float64 // percent, positive
	stopLoss   float64 // percent, positive
}

func newProfitGuard(p Params) (*profitGuard, error) {
	if p.TakeProfit <= 0 || p.StopLoss <= 0 {
		return nil, fmt.Errorf("profit: need take_profit > 0 and stop_loss > 0, got tp=%.2f sl=%.2f", p.TakeProfit, p.StopLoss)
	}
	return &profitGuard{takeProfit: p.TakeProfit, stopLoss: p.StopLoss}, nil
}

func (s *profitGuard) Name() string { return "profit" }

func (s *profitGuard) MinCandles() int { return 0 }

func (s *profitGuard) Calc(in Input) Decision {
	if in.Profit >= s.takeProfit || in.Profit <= -s.stopLoss {
		return Sell
	}
	return None
}

func (s *profitGuard) exitOnly() {}
