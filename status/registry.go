// Package status collects runtime counters shared between the program and its host.
// Writers cache metric pointers once and then update them with atomics only.
package status

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Well-known metric keys
const (
	SpritesDrawn   = "render.sprites"
	SpritesDropped = "render.sprites_dropped"
	LateFrames     = "runner.late_frames"
	Updates        = "runner.updates"
	LogRecords     = "log.records"
	LogDropped     = "log.dropped"
	ButtonEvents   = "input.button_events"
	HostFPS        = "host.fps"
	HostMode       = "host.mode"
	GamepadName    = "input.gamepad"
)

// Registry is the metrics facade
type Registry struct {
	Counters *MetricMap[atomic.Uint64]
	Gauges   *MetricMap[Gauge]
	Labels   *MetricMap[Label]
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		Counters: NewMetricMap[atomic.Uint64](),
		Gauges:   NewMetricMap[Gauge](),
		Labels:   NewMetricMap[Label](),
	}
}

// TotalCount returns the number of metrics of every kind
func (r *Registry) TotalCount() int {
	return r.Counters.Count() + r.Gauges.Count() + r.Labels.Count()
}

// Line renders every metric as "key=value" pairs in key order, labels first
func (r *Registry) Line() string {
	var parts []string
	r.Labels.Range(func(k string, l *Label) {
		parts = append(parts, k+"="+l.Get())
	})
	r.Counters.Range(func(k string, c *atomic.Uint64) {
		parts = append(parts, fmt.Sprintf("%s=%d", k, c.Load()))
	})
	r.Gauges.Range(func(k string, g *Gauge) {
		parts = append(parts, fmt.Sprintf("%s=%.1f", k, g.Get()))
	})
	return strings.Join(parts, " ")
}
