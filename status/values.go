package status

import (
	"math"
	"sync/atomic"
)

// Gauge is an atomic float64; the zero value reads 0
type Gauge struct {
	bits atomic.Uint64
}

func (g *Gauge) Set(v float64) {
	g.bits.Store(math.Float64bits(v))
}

func (g *Gauge) Get() float64 {
	return math.Float64frombits(g.bits.Load())
}

// MaxLabelLen bounds label values so a status line stays one row
const MaxLabelLen = 32

// Label is an atomic short string; the zero value reads ""
type Label struct {
	ptr atomic.Pointer[string]
}

// Set stores v, truncated to MaxLabelLen bytes
func (l *Label) Set(v string) {
	if len(v) > MaxLabelLen {
		v = v[:MaxLabelLen]
	}
	l.ptr.Store(&v)
}

func (l *Label) Get() string {
	if p := l.ptr.Load(); p != nil {
		return *p
	}
	return ""
}
