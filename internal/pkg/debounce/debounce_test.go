package debounce_test

import (
	"sync"
	"testing"
	"time"

	"github.com/dandedj/csp-client/internal/pkg/debounce"
)

// collector records delivered values under a lock.
type collector struct {
	mu     sync.Mutex
	values []string
}

func (c *collector) add(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = append(c.values, v)
}

func (c *collector) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.values))
	copy(out, c.values)
	return out
}

func TestDebouncer_CoalescesRapidInput(t *testing.T) {
	var c collector
	d := debounce.New(30*time.Millisecond, c.add)
	defer d.Stop()

	d.Set("a")
	time.Sleep(5 * time.Millisecond)
	d.Set("ab")

	time.Sleep(100 * time.Millisecond)

	got := c.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 delivery, got %d: %v", len(got), got)
	}
	if got[0] != "ab" {
		t.Errorf("expected latest value %q, got %q", "ab", got[0])
	}
}

func TestDebouncer_DeliversAfterStablePeriod(t *testing.T) {
	var c collector
	d := debounce.New(10*time.Millisecond, c.add)
	defer d.Stop()

	d.Set("first")
	time.Sleep(50 * time.Millisecond)
	d.Set("second")
	time.Sleep(50 * time.Millisecond)

	got := c.snapshot()
	if len(got) != 2 {
		t.Fatalf("expected 2 deliveries, got %d: %v", len(got), got)
	}
	if got[0] != "first" || got[1] != "second" {
		t.Errorf("unexpected delivery order: %v", got)
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	var c collector
	d := debounce.New(20*time.Millisecond, c.add)

	d.Set("doomed")
	d.Stop()

	time.Sleep(60 * time.Millisecond)

	if got := c.snapshot(); len(got) != 0 {
		t.Fatalf("expected no deliveries after Stop, got %v", got)
	}

	// Set after Stop must be a no-op.
	d.Set("late")
	time.Sleep(60 * time.Millisecond)
	if got := c.snapshot(); len(got) != 0 {
		t.Fatalf("expected Set after Stop to be ignored, got %v", got)
	}
}

func TestDebouncer_Flush(t *testing.T) {
	var c collector
	d := debounce.New(time.Hour, c.add)
	defer d.Stop()

	d.Set("now")
	d.Flush()

	got := c.snapshot()
	if len(got) != 1 || got[0] != "now" {
		t.Fatalf("expected immediate delivery of %q, got %v", "now", got)
	}

	// Flush with nothing pending does not re-deliver.
	d.Flush()
	if got := c.snapshot(); len(got) != 1 {
		t.Fatalf("expected no duplicate delivery, got %v", got)
	}
}

func TestDebouncer_IndependentInstances(t *testing.T) {
	var a, b collector
	da := debounce.New(10*time.Millisecond, a.add)
	db := debounce.New(10*time.Millisecond, b.add)
	defer da.Stop()
	defer db.Stop()

	da.Set("from-a")
	db.Set("from-b")

	time.Sleep(50 * time.Millisecond)

	if got := a.snapshot(); len(got) != 1 || got[0] != "from-a" {
		t.Errorf("instance a: got %v", got)
	}
	if got := b.snapshot(); len(got) != 1 || got[0] != "from-b" {
		t.Errorf("instance b: got %v", got)
	}
}
