package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/lixenwraith/agb-ecs/clock"
)

func TestTimePluginRequiresClock(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Expected panic without installed clock")
		}
	}()
	NewApp().AddPlugins(TimePlugin{Source: &clock.Source{}})
}

func TestTimePluginTracksDelta(t *testing.T) {
	var ticks atomic.Int64
	src := &clock.Source{}
	if err := src.SetElapsed(func() time.Duration {
		return time.Duration(ticks.Load()) * time.Millisecond
	}); err != nil {
		t.Fatalf("SetElapsed: %v", err)
	}

	app := NewApp().AddPlugins(TimePlugin{Source: src}, FrameCountPlugin{})

	ticks.Store(16)
	app.Update()
	ticks.Store(40)
	app.Update()

	tm := MustGetResource[*Time](app.World().Resources)
	if tm.Delta != 24*time.Millisecond {
		t.Errorf("Expected delta 24ms, got %v", tm.Delta)
	}
	if tm.Elapsed != 40*time.Millisecond {
		t.Errorf("Expected elapsed 40ms, got %v", tm.Elapsed)
	}

	fc := MustGetResource[*FrameCount](app.World().Resources)
	if fc.N != 2 {
		t.Errorf("Expected frame count 2, got %d", fc.N)
	}
}
