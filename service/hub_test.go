package service

import (
	"errors"
	"strings"
	"testing"
)

type fakeService struct {
	name     string
	deps     []string
	log      *[]string
	initErr  error
	startErr error
	stopErr  error
	gotArgs  []any
}

func (f *fakeService) Name() string           { return f.name }
func (f *fakeService) Dependencies() []string { return f.deps }

func (f *fakeService) Init(args ...any) error {
	f.gotArgs = args
	*f.log = append(*f.log, "init:"+f.name)
	return f.initErr
}

func (f *fakeService) Start() error {
	*f.log = append(*f.log, "start:"+f.name)
	return f.startErr
}

func (f *fakeService) Stop() error {
	*f.log = append(*f.log, "stop:"+f.name)
	return f.stopErr
}

func newFakes(log *[]string) (*fakeService, *fakeService, *fakeService) {
	// save depends on nothing, audio on save, window on audio and save
	save := &fakeService{name: "save", log: log}
	audio := &fakeService{name: "audio", deps: []string{"save"}, log: log}
	window := &fakeService{name: "window", deps: []string{"audio", "save"}, log: log}
	return save, audio, window
}

func TestHubLifecycleOrder(t *testing.T) {
	var log []string
	save, audio, window := newFakes(&log)

	h := NewHub()
	for _, s := range []Service{window, audio, save} {
		if err := h.Register(s); err != nil {
			t.Fatal(err)
		}
	}

	if err := h.InitAll("cfg"); err != nil {
		t.Fatal(err)
	}
	if err := h.StartAll(); err != nil {
		t.Fatal(err)
	}
	if err := h.StopAll(); err != nil {
		t.Fatal(err)
	}

	want := "init:save init:audio init:window start:save start:audio start:window stop:window stop:audio stop:save"
	if got := strings.Join(log, " "); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if len(audio.gotArgs) != 1 || audio.gotArgs[0] != "cfg" {
		t.Errorf("Init args not forwarded: %v", audio.gotArgs)
	}
}

func TestHubDuplicateRegister(t *testing.T) {
	var log []string
	h := NewHub()
	if err := h.Register(&fakeService{name: "audio", log: &log}); err != nil {
		t.Fatal(err)
	}
	if err := h.Register(&fakeService{name: "audio", log: &log}); err == nil {
		t.Error("Expected duplicate registration error")
	}
}

func TestHubMissingDependency(t *testing.T) {
	var log []string
	h := NewHub()
	h.Register(&fakeService{name: "window", deps: []string{"audio"}, log: &log})
	if err := h.InitAll(); err == nil || !strings.Contains(err.Error(), "unregistered") {
		t.Errorf("Expected unregistered dependency error, got %v", err)
	}
}

func TestHubCycle(t *testing.T) {
	var log []string
	h := NewHub()
	h.Register(&fakeService{name: "a", deps: []string{"b"}, log: &log})
	h.Register(&fakeService{name: "b", deps: []string{"a"}, log: &log})
	if err := h.InitAll(); err == nil || !strings.Contains(err.Error(), "circular") {
		t.Errorf("Expected circular dependency error, got %v", err)
	}
}

func TestHubInitRollback(t *testing.T) {
	var log []string
	save, audio, window := newFakes(&log)
	window.initErr = errors.New("no display")

	h := NewHub()
	h.Register(save)
	h.Register(audio)
	h.Register(window)

	err := h.InitAll()
	if err == nil || !errors.Is(err, window.initErr) {
		t.Fatalf("Expected wrapped init error, got %v", err)
	}
	want := "init:save init:audio init:window stop:audio stop:save"
	if got := strings.Join(log, " "); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestHubStartRollback(t *testing.T) {
	var log []string
	save, audio, window := newFakes(&log)
	audio.startErr = errors.New("speaker busy")

	h := NewHub()
	h.Register(save)
	h.Register(audio)
	h.Register(window)
	if err := h.InitAll(); err != nil {
		t.Fatal(err)
	}
	log = log[:0]

	if err := h.StartAll(); !errors.Is(err, audio.startErr) {
		t.Fatalf("Expected wrapped start error, got %v", err)
	}
	want := "start:save start:audio stop:save"
	if got := strings.Join(log, " "); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	// Nothing left to stop
	log = log[:0]
	h.StopAll()
	if len(log) != 0 {
		t.Errorf("Expected no stops after rollback, got %v", log)
	}
}

func TestHubStopAllJoinsErrors(t *testing.T) {
	var log []string
	save, audio, _ := newFakes(&log)
	save.stopErr = errors.New("flush failed")
	audio.stopErr = errors.New("device gone")

	h := NewHub()
	h.Register(save)
	h.Register(audio)
	h.InitAll()
	h.StartAll()

	err := h.StopAll()
	if !errors.Is(err, save.stopErr) || !errors.Is(err, audio.stopErr) {
		t.Errorf("Expected both stop errors, got %v", err)
	}
}

func TestMustGet(t *testing.T) {
	var log []string
	h := NewHub()
	h.Register(&fakeService{name: "audio", log: &log})

	if s := MustGet[*fakeService](h, "audio"); s.name != "audio" {
		t.Errorf("unexpected service %v", s)
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected panic for missing service")
		}
	}()
	MustGet[*fakeService](h, "window")
}

func TestStartBeforeInit(t *testing.T) {
	if err := NewHub().StartAll(); err == nil {
		t.Error("Expected error starting an uninitialized hub")
	}
}
