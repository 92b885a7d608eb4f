package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"signalbot/internal/model"
	"signalbot/internal/signal"
	"signalbot/internal/trigger"
)

// Instrument is one entry of the YAML roster.
type Instrument struct {
	Figi       string        `yaml:"figi"`
	Ticker     string        `yaml:"ticker"`
	Enabled    bool          `yaml:"enabled"`
	Interval   string        `yaml:"interval"`
	Quantity   float64       `yaml:"quantity"`
	FeePercent float64       `yaml:"fee_percent"`
	DryRun     bool          `yaml:"dry_run"`
	Signals    signal.Config `yaml:"signals"`
	BuyRule    *RuleSpec     `yaml:"buy_rule"`
	SellRule   *RuleSpec     `yaml:"sell_rule"`
}

// RuleSpec is the declarative trigger-rule form. Exactly one field may be
// set: a signal reference or one combinator over nested specs.
type RuleSpec struct {
	Signal string     `yaml:"signal"`
	All    []RuleSpec `yaml:"all"`
	Any    []RuleSpec `yaml:"any"`
	Not    *RuleSpec  `yaml:"not"`
}

// Compile turns the spec into an executable rule. Signal references are
// checked against the instrument's configured signals so a typo fails at
// load time rather than evaluating to a silent false.
func (r *RuleSpec) Compile(known signal.Config) (trigger.Rule, error) {
	set := 0
	if r.Signal != "" {
		set++
	}
	if len(r.All) > 0 {
		set++
	}
	if len(r.Any) > 0 {
		set++
	}
	if r.Not != nil {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("rule needs exactly one of signal/all/any/not")
	}

	switch {
	case r.Signal != "":
		if _, ok := known[r.Signal]; !ok {
			return nil, fmt.Errorf("rule references unconfigured signal %q", r.Signal)
		}
		return trigger.Sig(r.Signal), nil
	case len(r.All) > 0:
		rules, err := compileAll(r.All, known)
		if err != nil {
			return nil, err
		}
		return trigger.And(rules...), nil
	case len(r.Any) > 0:
		rules, err := compileAll(r.Any, known)
		if err != nil {
			return nil, err
		}
		return trigger.Or(rules...), nil
	default:
		inner, err := r.Not.Compile(known)
		if err != nil {
			return nil, err
		}
		return trigger.Not(inner), nil
	}
}

func compileAll(specs []RuleSpec, known signal.Config) ([]trigger.Rule, error) {
	rules := make([]trigger.Rule, len(specs))
	for i := range specs {
		rule, err := specs[i].Compile(known)
		if err != nil {
			return nil, err
		}
		rules[i] = rule
	}
	return rules, nil
}

// instrumentsFile is the YAML document root.
type instrumentsFile struct {
	Instruments []Instrument `yaml:"instruments"`
}

var validIntervals = map[string]bool{
	string(model.Interval1Min):  true,
	string(model.Interval5Min):  true,
	string(model.Interval15Min): true,
	string(model.Interval1Hour): true,
	string(model.Interval1Day):  true,
}

// LoadInstruments reads and validates the roster file. Rule specs are only
// syntax-checked here; Compile is the caller's step so compilation errors
// carry the instrument context.
func LoadInstruments(path string) ([]Instrument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var file instrumentsFile
	if err := yaml.UnmarshalStrict(raw, &file); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if len(file.Instruments) == 0 {
		return nil, fmt.Errorf("config: %s: no instruments", path)
	}

	seen := make(map[string]bool, len(file.Instruments))
	for i, inst := range file.Instruments {
		if inst.Figi == "" {
			return nil, fmt.Errorf("config: instrument %d: figi is required", i)
		}
		if seen[inst.Figi] {
			return nil, fmt.Errorf("config: duplicate instrument %s", inst.Figi)
		}
		seen[inst.Figi] = true
		if inst.Interval != "" && !validIntervals[inst.Interval] {
			return nil, fmt.Errorf("config: %s: unknown interval %q", inst.Figi, inst.Interval)
		}
		if inst.Quantity <= 0 {
			return nil, fmt.Errorf("config: %s: need quantity > 0", inst.Figi)
		}
	}
	return file.Instruments, nil
}
