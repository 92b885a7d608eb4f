package config

import (
	"os"
	"path/filepath"
	"testing"

	"signalbot/internal/signal"
	"signalbot/internal/trigger"
)

const sampleRoster = `
instruments:
  - figi: BBG004730N88
    ticker: SBER
    enabled: true
    interval: 5min
    quantity: 10
    fee_percent: 0.3
    dry_run: true
    signals:
      sma:
        fast: 50
        slow: 200
      rsi:
        period: 14
        low: 30
        high: 70
      profit:
        take_profit: 3
        stop_loss: 4
    buy_rule:
      all:
        - signal: sma
        - signal: rsi
    sell_rule:
      any:
        - signal: sma
        - signal: profit
  - figi: BBG006L8G4H1
    ticker: YNDX
    enabled: false
    quantity: 1
    signals:
      ema:
        fast: 9
        slow: 21
`

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "instruments.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadInstruments(t *testing.T) {
	insts, err := LoadInstruments(writeRoster(t, sampleRoster))
	if err != nil {
		t.Fatal(err)
	}
	if len(insts) != 2 {
		t.Fatalf("expected 2 instruments, got %d", len(insts))
	}

	sber := insts[0]
	if sber.Figi != "BBG004730N88" || sber.Ticker != "SBER" || !sber.Enabled {
		t.Errorf("unexpected instrument %+v", sber)
	}
	if sber.Signals["sma"].Fast != 50 || sber.Signals["sma"].Slow != 200 {
		t.Errorf("sma params lost: %+v", sber.Signals["sma"])
	}
	if sber.Signals["profit"].TakeProfit != 3 {
		t.Errorf("profit params lost: %+v", sber.Signals["profit"])
	}
	if insts[1].Enabled {
		t.Error("second instrument must be disabled")
	}
}

func TestLoadInstruments_Validation(t *testing.T) {
	cases := []struct {
		name   string
		roster string
	}{
		{"missing figi", "instruments:\n  - ticker: X\n    quantity: 1\n"},
		{"zero quantity", "instruments:\n  - figi: F1\n    quantity: 0\n"},
		{"bad interval", "instruments:\n  - figi: F1\n    quantity: 1\n    interval: 3min\n"},
		{"duplicate figi", "instruments:\n  - figi: F1\n    quantity: 1\n  - figi: F1\n    quantity: 1\n"},
		{"empty roster", "instruments: []\n"},
		{"unknown field", "instruments:\n  - figi: F1\n    quantity: 1\n    leverage: 5\n"},
	}
	for _, tc := range cases {
		if _, err := LoadInstruments(writeRoster(t, tc.roster)); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestRuleSpec_Compile(t *testing.T) {
	known := signal.Config{"sma": {Fast: 2, Slow: 3}, "rsi": {Period: 14, Low: 30, High: 70}}

	spec := &RuleSpec{All: []RuleSpec{
		{Signal: "sma"},
		{Not: &RuleSpec{Signal: "rsi"}},
	}}
	rule, err := spec.Compile(known)
	if err != nil {
		t.Fatal(err)
	}

	ctx := trigger.Context{
		"sma": func() bool { return true },
		"rsi": func() bool { return false },
	}
	if !rule(ctx) {
		t.Error("expected sma AND NOT rsi to hold")
	}
	ctx["rsi"] = func() bool { return true }
	if rule(ctx) {
		t.Error("expected rule to fail once rsi fires")
	}
}

func TestRuleSpec_CompileRejectsUnknownSignal(t *testing.T) {
	spec := &RuleSpec{Signal: "macd"}
	if _, err := spec.Compile(signal.Config{"sma": {Fast: 2, Slow: 3}}); err == nil {
		t.Fatal("expected error for unconfigured signal reference")
	}
}

func TestRuleSpec_CompileRejectsAmbiguous(t *testing.T) {
	known := signal.Config{"sma": {Fast: 2, Slow: 3}}
	for _, spec := range []*RuleSpec{
		{}, // nothing set
		{Signal: "sma", Any: []RuleSpec{{Signal: "sma"}}},
	} {
		if _, err := spec.Compile(known); err == nil {
			t.Errorf("expected error for spec %+v", spec)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("unexpected redis default %q", cfg.RedisAddr)
	}
	if cfg.CycleInterval.Seconds() != 60 {
		t.Errorf("unexpected cycle interval %v", cfg.CycleInterval)
	}
	if cfg.DryRunBalance != 100000 {
		t.Errorf("unexpected dry-run balance %v", cfg.DryRunBalance)
	}
}
