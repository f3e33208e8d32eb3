package audio

import (
	"os"
	"strconv"
	"time"
)

// Config controls host audio output
type Config struct {
	Enabled bool
	// Volume is linear, 0 to 1
	Volume float64
	// SampleRate is the output device rate; the machine stream is resampled to it
	SampleRate int
	// Buffer is the speaker buffer length; longer is safer, shorter is snappier
	Buffer time.Duration
}

// DefaultConfig returns the settings used when nothing is configured
func DefaultConfig() *Config {
	return &Config{
		Enabled:    true,
		Volume:     0.5,
		SampleRate: 44100,
		Buffer:     100 * time.Millisecond,
	}
}

// LoadConfig reads audio configuration from environment variables over the defaults.
// Malformed values are ignored.
func LoadConfig() *Config {
	cfg := DefaultConfig()

	if enabled := os.Getenv("AGB_AUDIO_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.Enabled = val
		}
	}

	// Volume 0-100
	if volume := os.Getenv("AGB_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			cfg.Volume = min(max(float64(val)/100.0, 0), 1)
		}
	}

	if sampleRate := os.Getenv("AGB_SAMPLE_RATE"); sampleRate != "" {
		if val, err := strconv.Atoi(sampleRate); err == nil && val > 0 {
			cfg.SampleRate = val
		}
	}

	if buffer := os.Getenv("AGB_AUDIO_BUFFER"); buffer != "" {
		if val, err := time.ParseDuration(buffer); err == nil && val > 0 {
			cfg.Buffer = val
		}
	}

	return cfg
}
