package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeRunner struct {
	figi    string
	enabled bool
	err     error
	panics  bool
	delay   time.Duration
	cycles  int64
}

func (f *fakeRunner) Figi() string  { return f.figi }
func (f *fakeRunner) Enabled() bool { return f.enabled }
func (f *fakeRunner) RunCycle(context.Context) error {
	atomic.AddInt64(&f.cycles, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.panics {
		panic("boom")
	}
	return f.err
}

func (f *fakeRunner) count() int64 { return atomic.LoadInt64(&f.cycles) }

func TestRunCycle_AllEnabledStrategiesRun(t *testing.T) {
	a := &fakeRunner{figi: "FIGI-A", enabled: true}
	b := &fakeRunner{figi: "FIGI-B", enabled: true}
	c := &fakeRunner{figi: "FIGI-C", enabled: true}
	e := New([]Runner{a, b, c}, 0)

	if err := e.RunCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, f := range []*fakeRunner{a, b, c} {
		if f.count() != 1 {
			t.Errorf("%s: expected 1 cycle, got %d", f.figi, f.count())
		}
	}
}

func TestRunCycle_DisabledStrategySkipped(t *testing.T) {
	on := &fakeRunner{figi: "FIGI-ON", enabled: true}
	off := &fakeRunner{figi: "FIGI-OFF", enabled: false}
	e := New([]Runner{on, off}, 0)

	if err := e.RunCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	if off.count() != 0 {
		t.Errorf("disabled strategy ran %d times", off.count())
	}
	if on.count() != 1 {
		t.Errorf("enabled strategy ran %d times", on.count())
	}
}

func TestRunCycle_ErrorIsolatedToInstrument(t *testing.T) {
	bad := &fakeRunner{figi: "FIGI-BAD", enabled: true, err: errors.New("broker down")}
	good := &fakeRunner{figi: "FIGI-GOOD", enabled: true}
	e := New([]Runner{bad, good}, 0)

	if err := e.RunCycle(context.Background()); err != nil {
		t.Fatalf("one instrument's failure must not fail the cycle, got %v", err)
	}
	if good.count() != 1 {
		t.Error("healthy instrument starved by a sibling's error")
	}
}

func TestRunCycle_PanicIsolatedToInstrument(t *testing.T) {
	bad := &fakeRunner{figi: "FIGI-BAD", enabled: true, panics: true}
	good := &fakeRunner{figi: "FIGI-GOOD", enabled: true, delay: 5 * time.Millisecond}
	e := New([]Runner{bad, good}, 0)

	if err := e.RunCycle(context.Background()); err != nil {
		t.Fatalf("panic must be contained, got %v", err)
	}
	if good.count() != 1 {
		t.Error("healthy instrument starved by a sibling's panic")
	}
}

func TestRunCycle_CancelledContext(t *testing.T) {
	r := &fakeRunner{figi: "FIGI-A", enabled: true}
	e := New([]Runner{r}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.RunCycle(ctx); err == nil {
		t.Fatal("expected cancelled context to surface")
	}
	if r.count() != 0 {
		t.Error("strategy ran under a cancelled context")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	r := &fakeRunner{figi: "FIGI-A", enabled: true}
	e := New([]Runner{r}, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("engine did not stop after cancel")
	}
	if r.count() < 1 {
		t.Error("expected at least the immediate first cycle")
	}
}
