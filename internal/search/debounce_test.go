package search

import (
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu      sync.Mutex
	queries []string
}

func (r *recorder) emit(q string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, q)
}

func (r *recorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.queries))
	copy(out, r.queries)
	return out
}

func TestDebouncer_CoalescesBurstIntoLastValue(t *testing.T) {
	rec := &recorder{}
	d := NewDebouncer(50*time.Millisecond, rec.emit)
	defer d.Stop()

	// "Jo" then "John" within the window: exactly one request, for "John".
	d.Input("Jo")
	time.Sleep(10 * time.Millisecond)
	d.Input("John")

	time.Sleep(150 * time.Millisecond)

	got := rec.got()
	if len(got) != 1 {
		t.Fatalf("expected exactly one emit, got %d: %v", len(got), got)
	}
	if got[0] != "John" {
		t.Errorf("expected last value %q, got %q", "John", got[0])
	}
}

func TestDebouncer_SeparateQuiescentPeriodsEmitSeparately(t *testing.T) {
	rec := &recorder{}
	d := NewDebouncer(30*time.Millisecond, rec.emit)
	defer d.Stop()

	d.Input("Jo")
	time.Sleep(100 * time.Millisecond)
	d.Input("Doe")
	time.Sleep(100 * time.Millisecond)

	got := rec.got()
	if len(got) != 2 || got[0] != "Jo" || got[1] != "Doe" {
		t.Errorf("expected [Jo Doe], got %v", got)
	}
}

func TestDebouncer_FlushEmitsImmediately(t *testing.T) {
	rec := &recorder{}
	d := NewDebouncer(time.Hour, rec.emit)
	defer d.Stop()

	d.Input("John")
	d.Flush()

	got := rec.got()
	if len(got) != 1 || got[0] != "John" {
		t.Errorf("expected immediate [John], got %v", got)
	}

	// The cancelled timer must not fire again later.
	time.Sleep(50 * time.Millisecond)
	if len(rec.got()) != 1 {
		t.Errorf("flush did not cancel the scheduled emit: %v", rec.got())
	}
}

func TestDebouncer_StopPreventsLateEmit(t *testing.T) {
	rec := &recorder{}
	d := NewDebouncer(20*time.Millisecond, rec.emit)

	d.Input("abandoned")
	d.Stop()

	time.Sleep(80 * time.Millisecond)
	if len(rec.got()) != 0 {
		t.Errorf("expected no emit after Stop, got %v", rec.got())
	}

	d.Input("ignored")
	time.Sleep(80 * time.Millisecond)
	if len(rec.got()) != 0 {
		t.Errorf("expected Input after Stop to be ignored, got %v", rec.got())
	}
}

func TestNewDebouncer_DefaultDelay(t *testing.T) {
	d := NewDebouncer(0, func(string) {})
	defer d.Stop()
	if d.delay != DefaultQuiescence {
		t.Errorf("expected default quiescence, got %s", d.delay)
	}
}
