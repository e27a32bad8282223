package debounce

import (
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	values []string
}

func (r *recorder) record(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.values...)
}

func TestSetFiresAfterDelay(t *testing.T) {
	rec := &recorder{}
	d := New(20*time.Millisecond, rec.record)
	defer d.Stop()

	d.Set("hello")

	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("fired before delay elapsed: %v", got)
	}

	time.Sleep(60 * time.Millisecond)

	if got := rec.snapshot(); len(got) != 1 || got[0] != "hello" {
		t.Fatalf("expected [hello], got %v", got)
	}
}

func TestRapidSetsOnlyLatestValueFires(t *testing.T) {
	rec := &recorder{}
	d := New(30*time.Millisecond, rec.record)
	defer d.Stop()

	d.Set("first")
	time.Sleep(10 * time.Millisecond)
	d.Set("second")
	time.Sleep(10 * time.Millisecond)
	d.Set("third")

	time.Sleep(80 * time.Millisecond)

	if got := rec.snapshot(); len(got) != 1 || got[0] != "third" {
		t.Fatalf("expected only [third], got %v", got)
	}
}

// A timer whose callback has already started when Set arrives must not
// deliver its now-replaced value. Rapid Sets around the fire instant
// exercise that window; the fired sequence must stay in Set order and
// end on the final value.
func TestExpiredTimerNeverDeliversReplacedValue(t *testing.T) {
	rec := &recorder{}
	d := New(time.Millisecond, rec.record)
	defer d.Stop()

	const last = 200

	for i := 0; i <= last; i++ {
		d.Set(string(rune('A' + i%26)))
		time.Sleep(time.Millisecond)
	}
	d.Set("final")

	time.Sleep(30 * time.Millisecond)

	got := rec.snapshot()

	if len(got) == 0 || got[len(got)-1] != "final" {
		t.Fatalf("last fired value = %v, want final", got)
	}

	for i, v := range got[:len(got)-1] {
		if v == "final" {
			t.Fatalf("final fired early at index %d: %v", i, got)
		}
	}
}

func TestStopCancelsPendingFire(t *testing.T) {
	rec := &recorder{}
	d := New(20*time.Millisecond, rec.record)

	d.Set("doomed")
	d.Stop()

	time.Sleep(60 * time.Millisecond)

	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("callback fired after Stop: %v", got)
	}
}

func TestSetAfterStopIsIgnored(t *testing.T) {
	rec := &recorder{}
	d := New(10*time.Millisecond, rec.record)

	d.Stop()
	d.Set("late")

	time.Sleep(40 * time.Millisecond)

	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("Set after Stop propagated: %v", got)
	}
}
