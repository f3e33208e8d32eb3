package host

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lixenwraith/agb-ecs/gba"
)

// NewLogger opens the host log. The process-wide slog default belongs to the
// program on the machine, so the host logs through its own logger.
// An empty path discards everything.
func NewLogger(path string) (*slog.Logger, io.Closer, error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nopCloser{}, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})), f, nil
}

// DebugSink forwards debug port lines to the host log
func DebugSink(log *slog.Logger) func(gba.DebugLine) {
	return func(line gba.DebugLine) {
		log.Log(context.Background(), debugLevel(line.Level), line.Text, "source", "mgba")
	}
}

func debugLevel(l gba.MgbaLevel) slog.Level {
	switch l {
	case gba.MgbaFatal, gba.MgbaError:
		return slog.LevelError
	case gba.MgbaWarning:
		return slog.LevelWarn
	case gba.MgbaInfo:
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
