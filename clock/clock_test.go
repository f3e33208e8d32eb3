package clock

import (
	"errors"
	"testing"
	"time"
)

func TestSourceInstallOnce(t *testing.T) {
	var s Source

	if s.Installed() {
		t.Fatal("Expected empty source")
	}

	if err := s.SetElapsed(func() time.Duration { return time.Second }); err != nil {
		t.Fatalf("First install failed: %v", err)
	}

	err := s.SetElapsed(func() time.Duration { return time.Hour })
	if !errors.Is(err, ErrElapsedAlreadySet) {
		t.Fatalf("Expected ErrElapsedAlreadySet, got %v", err)
	}

	if got := s.Elapsed(); got != time.Second {
		t.Errorf("Expected first function to stay installed, got %v", got)
	}
}

func TestSourceElapsedPanicsWhenEmpty(t *testing.T) {
	var s Source
	defer func() {
		if recover() == nil {
			t.Error("Expected panic reading an empty source")
		}
	}()
	s.Elapsed()
}

func TestInstantSub(t *testing.T) {
	var s Source
	var now time.Duration
	if err := s.SetElapsed(func() time.Duration { return now }); err != nil {
		t.Fatal(err)
	}

	a := s.Now()
	now = 250 * time.Millisecond
	b := s.Now()

	if d := b.Sub(a); d != 250*time.Millisecond {
		t.Errorf("Expected 250ms, got %v", d)
	}
	if d := a.Sub(b); d != 0 {
		t.Errorf("Expected saturation at zero, got %v", d)
	}
}
