package signal

import (
	"fmt"
	"sort"

	"signalbot/internal/model"
	"signalbot/internal/trigger"
)

// Registry is the per-instrument collection of instantiated signals. It is
// built once at strategy construction and read-only afterwards.
type Registry struct {
	signals []Signal // sorted by name for deterministic evaluation order
}

// NewRegistry instantiates every configured signal. A bad parameter set is a
// configuration error: construction fails instead of degrading at runtime.
func NewRegistry(cfg Config, obs Observer) (*Registry, error) {
	r := &Registry{signals: make([]Signal, 0, len(cfg))}
	for _, name := range cfg.Names() {
		s, err := New(name, cfg[name], obs)
		if err != nil {
			return nil, fmt.Errorf("registry: %w", err)
		}
		r.signals = append(r.signals, s)
	}
	return r, nil
}

// Names returns the instantiated signal names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, len(r.signals))
	for i, s := range r.signals {
		names[i] = s.Name()
	}
	return names
}

// RequiredCandleWindow is the smallest candle window that satisfies every
// instantiated signal: the max of their MinCandles, 0 with none configured.
func (r *Registry) RequiredCandleWindow() int {
	max := 0
	for _, s := range r.signals {
		if mc := s.MinCandles(); mc > max {
			max = mc
		}
	}
	return max
}

// BuildContext evaluates every signal against the supplied window and profit
// and wraps the results as named predicates. With sellSide false a predicate
// is true when its signal said Buy, with sellSide true when it said Sell; the
// profit signal maps Sell to true in both interpretations.
//
// Signals are evaluated eagerly, once, so the returned context is a
// consistent snapshot of the cycle.
func (r *Registry) BuildContext(candles []model.Candle, profit float64, sellSide bool) trigger.Context {
	in := Input{Candles: candles, Profit: profit}
	ctx := make(trigger.Context, len(r.signals))
	for _, s := range r.signals {
		var res Decision
		if len(candles) >= s.MinCandles() {
			res = s.Calc(in)
		}
		var hit bool
		if _, exit := s.(exitSignal); exit {
			hit = res == Sell
		} else if sellSide {
			hit = res == Sell
		} else {
			hit = res == Buy
		}
		name := s.Name()
		ctx[name] = func() bool { return hit }
	}
	return ctx
}

// Active returns the names of signals whose predicate is true in the given
// context, sorted. Used to tag trade records with the conditions that were
// independently triggering at decision time.
func (r *Registry) Active(ctx trigger.Context) []string {
	var active []string
	for _, s := range r.signals {
		if ctx.Signal(s.Name()) {
			active = append(active, s.Name())
		}
	}
	sort.Strings(active)
	return active
}
