package engine

// System priorities; lower values run first within a schedule
const (
	// PriorityFirst is reserved for samplers that must observe the frame before anything else
	PriorityFirst   = -1000
	PriorityDefault = 0
	PriorityLast    = 1000
)

// System is a unit of per-schedule work
type System interface {
	Name() string
	Priority() int // Lower values run first
	Run(w *World)
}

type funcSystem struct {
	name     string
	priority int
	fn       func(w *World)
}

func (s *funcSystem) Name() string  { return s.name }
func (s *funcSystem) Priority() int { return s.priority }
func (s *funcSystem) Run(w *World)  { s.fn(w) }

// NewSystem wraps fn as a System with default priority
func NewSystem(name string, fn func(w *World)) System {
	return &funcSystem{name: name, priority: PriorityDefault, fn: fn}
}

// NewSystemWithPriority wraps fn as a System with explicit priority
func NewSystemWithPriority(name string, priority int, fn func(w *World)) System {
	return &funcSystem{name: name, priority: priority, fn: fn}
}
