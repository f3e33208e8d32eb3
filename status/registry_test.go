package status

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func TestMetricMapReturnsSamePointer(t *testing.T) {
	m := NewMetricMap[atomic.Uint64]()
	a := m.Get("x")
	b := m.Get("x")
	if a != b {
		t.Fatalf("Get returned different pointers")
	}
	if !m.Has("x") || m.Has("y") || m.Count() != 1 {
		t.Errorf("unexpected registration state")
	}
}

func TestConcurrentCounters(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := r.Counters.Get(SpritesDropped)
			for j := 0; j < 1000; j++ {
				c.Add(1)
			}
		}()
	}
	wg.Wait()
	if got := r.Counters.Get(SpritesDropped).Load(); got != 8000 {
		t.Errorf("Expected 8000, got %d", got)
	}
}

func TestLineOrdering(t *testing.T) {
	r := NewRegistry()
	r.Counters.Get("b").Store(2)
	r.Counters.Get("a").Store(1)
	r.Gauges.Get(HostFPS).Set(59.73)
	r.Labels.Get(HostMode).Set("terminal")

	got := r.Line()
	want := "host.mode=terminal a=1 b=2 host.fps=59.7"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if r.TotalCount() != 4 {
		t.Errorf("Expected 4 metrics, got %d", r.TotalCount())
	}
}

func TestLabelTruncates(t *testing.T) {
	var l Label
	l.Set(strings.Repeat("z", MaxLabelLen+10))
	if len(l.Get()) != MaxLabelLen {
		t.Errorf("label not truncated")
	}
}
