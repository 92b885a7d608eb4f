package strategy

// State is the strategy's position in its cycle state machine:
// Idle → LoadingCandles → Evaluating → {Buying|Selling|Holding} → Idle.
// Disabled is terminal for the cycle: the instrument is skipped entirely.
type State int

const (
	StateIdle State = iota
	StateDisabled
	StateLoadingCandles
	StateEvaluating
	StateBuying
	StateSelling
	StateHolding
)

func (s State) String() string {
	switch s {
	case StateDisabled:
		return "disabled"
	case StateLoadingCandles:
		return "loading_candles"
	case StateEvaluating:
		return "evaluating"
	case StateBuying:
		return "buying"
	case StateSelling:
		return "selling"
	case StateHolding:
		return "holding"
	}
	return "idle"
}
