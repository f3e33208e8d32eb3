package platform

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/lixenwraith/agb-ecs/engine"
	"github.com/lixenwraith/agb-ecs/gba"
	"github.com/lixenwraith/agb-ecs/status"
)

// LevelTrace is below Debug and never reaches the debug port
const LevelTrace = slog.LevelDebug - 4

// ErrLoggerAlreadySet is returned by InitLogging after the first call
var ErrLoggerAlreadySet = errors.New("platform: logger already set")

var loggerSet atomic.Bool

// InitLogging routes the process-wide slog default to the emulator debug port at level Info
func InitLogging(m *gba.Machine, opts *MgbaHandlerOptions) error {
	if !loggerSet.CompareAndSwap(false, true) {
		return ErrLoggerAlreadySet
	}
	slog.SetDefault(slog.New(NewMgbaHandler(m, opts)))
	return nil
}

// LogPlugin installs the debug port logger; a logger installed earlier is kept
type LogPlugin struct {
	Machine  *gba.Machine
	Registry *status.Registry
}

func (p LogPlugin) Build(*engine.App) {
	_ = InitLogging(p.Machine, &MgbaHandlerOptions{Registry: p.Registry})
}

// MgbaHandlerOptions configures an MgbaHandler
type MgbaHandlerOptions struct {
	// Level is the minimum level written; defaults to Info
	Level slog.Leveler
	// Registry counts written and dropped records when set
	Registry *status.Registry
}

// MgbaHandler is a slog.Handler writing one debug port message per record.
// Records are dropped when the emulator has no debug port.
type MgbaHandler struct {
	m       *gba.Machine
	level   slog.Leveler
	prefix  string // Pre-rendered attrs from WithAttrs
	group   string // Dotted group path for new attrs
	written *atomic.Uint64
	dropped *atomic.Uint64
}

// NewMgbaHandler creates a handler for m; opts may be nil
func NewMgbaHandler(m *gba.Machine, opts *MgbaHandlerOptions) *MgbaHandler {
	h := &MgbaHandler{m: m, level: slog.LevelInfo}
	if opts != nil {
		if opts.Level != nil {
			h.level = opts.Level
		}
		if opts.Registry != nil {
			h.written = opts.Registry.Counters.Get(status.LogRecords)
			h.dropped = opts.Registry.Counters.Get(status.LogDropped)
		}
	}
	return h
}

func (h *MgbaHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level() && level > LevelTrace
}

func (h *MgbaHandler) Handle(_ context.Context, r slog.Record) error {
	level, ok := mgbaLevel(r.Level)
	if !ok {
		return nil
	}
	port, ok := gba.NewMgba(h.m)
	if !ok {
		if h.dropped != nil {
			h.dropped.Add(1)
		}
		return nil
	}

	var sb strings.Builder
	sb.WriteString(r.Message)
	sb.WriteString(h.prefix)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&sb, h.group, a)
		return true
	})
	port.Print(sb.String(), level)

	if h.written != nil {
		h.written.Add(1)
	}
	return nil
}

func (h *MgbaHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var sb strings.Builder
	sb.WriteString(h.prefix)
	for _, a := range attrs {
		appendAttr(&sb, h.group, a)
	}
	h2 := *h
	h2.prefix = sb.String()
	return &h2
}

func (h *MgbaHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.group = h.group + name + "."
	return &h2
}

// mgbaLevel maps a record level to a port level; Trace and below are discarded
func mgbaLevel(l slog.Level) (gba.MgbaLevel, bool) {
	switch {
	case l >= slog.LevelError:
		return gba.MgbaError, true
	case l >= slog.LevelWarn:
		return gba.MgbaWarning, true
	case l >= slog.LevelInfo:
		return gba.MgbaInfo, true
	case l >= slog.LevelDebug:
		return gba.MgbaDebug, true
	}
	return 0, false
}

func appendAttr(sb *strings.Builder, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		sub := group
		if a.Key != "" {
			sub += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			appendAttr(sb, sub, ga)
		}
		return
	}

	sb.WriteByte(' ')
	sb.WriteString(group)
	sb.WriteString(a.Key)
	sb.WriteByte('=')
	v := a.Value.String()
	if strings.ContainsAny(v, " =\"") || v == "" {
		v = strconv.Quote(v)
	}
	sb.WriteString(v)
}

// Fatal writes msg at the debug port's fatal level, the last word before a crash halt
func Fatal(m *gba.Machine, msg string) {
	if port, ok := gba.NewMgba(m); ok {
		port.Print(msg, gba.MgbaFatal)
	}
}
