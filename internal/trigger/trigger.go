// Package trigger combines named signal predicates into per-instrument
// buy/sell trigger rules and turns them into a single cycle decision.
//
// Rules are predicate closures composed with the And/Or/Not/Sig combinators
// and bound at configuration-load time; there is no runtime expression
// parsing. A rule must tolerate any well-formed context: predicates for
// names the context does not know evaluate to false, never panic.
package trigger

import "log"

// Action is the decision for one instrument cycle.
type Action int

const (
	Hold Action = iota
	Buy
	Sell
)

func (a Action) String() string {
	switch a {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	}
	return "HOLD"
}

// Context maps signal names to zero-argument predicates closing over the
// latest computed result for that signal.
type Context map[string]func() bool

// Signal evaluates the named predicate. Unknown names are false.
func (c Context) Signal(name string) bool {
	f, ok := c[name]
	if !ok || f == nil {
		return false
	}
	return f()
}

// Rule is a boolean trigger expression over a signal context.
type Rule func(Context) bool

// Sig is the atomic rule: true when the named signal is currently triggering.
func Sig(name string) Rule {
	return func(c Context) bool { return c.Signal(name) }
}

// And is true when every sub-rule is true. And() is true.
func And(rules ...Rule) Rule {
	return func(c Context) bool {
		for _, r := range rules {
			if !r(c) {
				return false
			}
		}
		return true
	}
}

// Or is true when at least one sub-rule is true. Or() is false.
func Or(rules ...Rule) Rule {
	return func(c Context) bool {
		for _, r := range rules {
			if r(c) {
				return true
			}
		}
		return false
	}
}

// Not negates a rule.
func Not(rule Rule) Rule {
	return func(c Context) bool { return !rule(c) }
}

// Never is a rule that never fires. Used for instruments with no trigger
// configured on one side.
func Never() Rule {
	return func(Context) bool { return false }
}

// Decide evaluates the sell rule first: an exit is never blocked by a
// simultaneous buy condition. A panic inside either rule is logged and
// degrades that cycle to Hold.
func Decide(buy, sell Rule, buyCtx, sellCtx Context) (action Action) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[trigger] rule evaluation panicked, holding: %v", r)
			action = Hold
		}
	}()

	if sell != nil && sell(sellCtx) {
		return Sell
	}
	if buy != nil && buy(buyCtx) {
		return Buy
	}
	return Hold
}
