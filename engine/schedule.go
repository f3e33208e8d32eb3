package engine

// Schedule labels a phase of an app update
type Schedule uint8

const (
	// Run once, on the first update
	PreStartup Schedule = iota
	Startup
	PostStartup

	// Run every update, in this order
	First
	PreUpdate
	Update
	PostUpdate
	Last

	scheduleCount
)

var (
	startupSchedules = [...]Schedule{PreStartup, Startup, PostStartup}
	mainSchedules    = [...]Schedule{First, PreUpdate, Update, PostUpdate, Last}
)

func (s Schedule) String() string {
	switch s {
	case PreStartup:
		return "PreStartup"
	case Startup:
		return "Startup"
	case PostStartup:
		return "PostStartup"
	case First:
		return "First"
	case PreUpdate:
		return "PreUpdate"
	case Update:
		return "Update"
	case PostUpdate:
		return "PostUpdate"
	case Last:
		return "Last"
	default:
		return "Unknown"
	}
}
