// Package host plays the part of the physical console around a gba.Machine:
// it advances machine time, feeds the button register and shows the screen.
package host

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/term"
)

// Mode selects the front end
type Mode string

const (
	ModeTerminal Mode = "terminal"
	ModeWindow   Mode = "window"
	ModeHeadless Mode = "headless"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid host config")

// Config is the host configuration. The program running on the machine has none.
type Config struct {
	Mode  Mode
	Scale int // Window pixels per console pixel
	Mute  bool
	// SavePath persists cartridge SRAM between runs; empty disables
	SavePath  string
	DebugPort bool
	// Frames bounds a headless run; 0 runs until the program exits
	Frames int
	// LogPath receives host logs and debug port output; empty discards
	LogPath string
	// Screenshot, when set, receives a PNG of the last frame
	Screenshot string
	// Record, when set, receives a WAV of the sound output (headless only)
	Record string
}

// DefaultConfig picks the terminal front end when stdout is a terminal
func DefaultConfig() *Config {
	mode := ModeHeadless
	if term.IsTerminal(int(os.Stdout.Fd())) {
		mode = ModeTerminal
	}
	return &Config{
		Mode:      mode,
		Scale:     3,
		DebugPort: true,
		Frames:    600,
	}
}

// LoadConfig applies environment variables then flags over the defaults, then validates
func LoadConfig(args []string) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("agb-demo", flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadEnv() error {
	if v := os.Getenv("AGB_HOST"); v != "" {
		c.Mode = Mode(v)
	}
	if v := os.Getenv("AGB_SCALE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AGB_SCALE: %w", err)
		}
		c.Scale = n
	}
	if v := os.Getenv("AGB_MUTE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("AGB_MUTE: %w", err)
		}
		c.Mute = b
	}
	if v, ok := os.LookupEnv("AGB_SAVE"); ok {
		c.SavePath = v
	}
	if v := os.Getenv("AGB_DEBUG_PORT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("AGB_DEBUG_PORT: %w", err)
		}
		c.DebugPort = b
	}
	if v := os.Getenv("AGB_FRAMES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AGB_FRAMES: %w", err)
		}
		c.Frames = n
	}
	if v, ok := os.LookupEnv("AGB_LOG"); ok {
		c.LogPath = v
	}
	return nil
}

// RegisterFlags binds the config fields to fs, using current values as defaults
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.Func("host", "front end: terminal, window, headless (default "+string(c.Mode)+")", func(s string) error {
		c.Mode = Mode(s)
		return nil
	})
	fs.IntVar(&c.Scale, "scale", c.Scale, "window scale")
	fs.BoolVar(&c.Mute, "mute", c.Mute, "disable audio output")
	fs.StringVar(&c.SavePath, "save", c.SavePath, "save file path")
	fs.BoolVar(&c.DebugPort, "debug-port", c.DebugPort, "expose the mGBA debug port")
	fs.IntVar(&c.Frames, "frames", c.Frames, "headless frame count, 0 for unbounded")
	fs.StringVar(&c.LogPath, "log", c.LogPath, "host log file")
	fs.StringVar(&c.Screenshot, "screenshot", c.Screenshot, "write the last frame as PNG")
	fs.StringVar(&c.Record, "record", c.Record, "write sound output as WAV (headless)")
}

// Validate checks field ranges and combinations
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeTerminal, ModeWindow, ModeHeadless:
	default:
		return fmt.Errorf("%w: unknown host %q", ErrInvalidConfig, c.Mode)
	}
	if c.Scale < 1 || c.Scale > 8 {
		return fmt.Errorf("%w: scale %d out of range 1-8", ErrInvalidConfig, c.Scale)
	}
	if c.Frames < 0 {
		return fmt.Errorf("%w: negative frame count", ErrInvalidConfig)
	}
	if c.Record != "" && c.Mode != ModeHeadless {
		return fmt.Errorf("%w: recording needs the headless host", ErrInvalidConfig)
	}
	if c.Mode == ModeHeadless && c.Frames == 0 && c.Record != "" {
		return fmt.Errorf("%w: unbounded recording", ErrInvalidConfig)
	}
	return nil
}
