package signal

import (
	"reflect"
	"testing"
)

func TestRegistry_RequiredCandleWindow(t *testing.T) {
	cfg := Config{
		"sma":    {Fast: 5, Slow: 20},  // needs 21
		"rsi":    {Period: 14, Low: 30, High: 70}, // needs 15
		"profit": {TakeProfit: 3, StopLoss: 4},    // needs 0
	}
	r, err := NewRegistry(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := r.RequiredCandleWindow(); got != 21 {
		t.Errorf("expected required window 21, got %d", got)
	}
}

func TestRegistry_EmptyConfig(t *testing.T) {
	r, err := NewRegistry(Config{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := r.RequiredCandleWindow(); got != 0 {
		t.Errorf("expected required window 0 with no signals, got %d", got)
	}
	ctx := r.BuildContext(nil, 0, false)
	if ctx.Signal("sma") {
		t.Error("empty registry context must evaluate every name to false")
	}
}

func TestRegistry_InvalidConfigFailsFast(t *testing.T) {
	if _, err := NewRegistry(Config{"sma": {Fast: 20, Slow: 5}}, nil); err == nil {
		t.Fatal("expected registry construction to fail on invalid signal params")
	}
}

func TestRegistry_ContextInterpretations(t *testing.T) {
	cfg := Config{
		"sma":    {Fast: 2, Slow: 3},
		"profit": {TakeProfit: 3, StopLoss: 4},
	}
	r, err := NewRegistry(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Golden cross window with profit beyond take-profit.
	candles := candlesFromCloses(10, 10, 10, 8, 16)

	buyCtx := r.BuildContext(candles, 5.0, false)
	if !buyCtx.Signal("sma") {
		t.Error("buy context: sma should be true on golden cross")
	}
	// Profit signal is exit-only: Sell maps to true in the buy context too.
	if !buyCtx.Signal("profit") {
		t.Error("buy context: profit signal must stay sell-interpreted")
	}

	sellCtx := r.BuildContext(candles, 5.0, true)
	if sellCtx.Signal("sma") {
		t.Error("sell context: sma should be false on golden cross")
	}
	if !sellCtx.Signal("profit") {
		t.Error("sell context: profit signal should be true beyond take-profit")
	}
}

func TestRegistry_ShortWindowYieldsFalse(t *testing.T) {
	r, err := NewRegistry(Config{"sma": {Fast: 2, Slow: 3}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := r.BuildContext(candlesFromCloses(10, 11), 0, false)
	if ctx.Signal("sma") {
		t.Error("expected false predicate when the window is below MinCandles")
	}
}

func TestRegistry_Deterministic(t *testing.T) {
	cfg := Config{
		"sma": {Fast: 2, Slow: 3},
		"rsi": {Period: 3, Low: 30, High: 70},
	}
	r, err := NewRegistry(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	candles := candlesFromCloses(10, 10, 10, 8, 16)

	first := r.Active(r.BuildContext(candles, 0, false))
	second := r.Active(r.BuildContext(candles, 0, false))
	if !reflect.DeepEqual(first, second) {
		t.Errorf("consecutive evaluations differ: %v then %v", first, second)
	}
}

func TestRegistry_ActiveNames(t *testing.T) {
	cfg := Config{
		"sma":    {Fast: 2, Slow: 3},
		"profit": {TakeProfit: 3, StopLoss: 4},
	}
	r, _ := NewRegistry(cfg, nil)
	candles := candlesFromCloses(10, 10, 10, 8, 16)

	active := r.Active(r.BuildContext(candles, 5.0, false))
	want := []string{"profit", "sma"}
	if !reflect.DeepEqual(active, want) {
		t.Errorf("expected active signals %v, got %v", want, active)
	}
}
