package terminal

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/agb-ecs/gba"
)

// holdFrames keeps a key down after its last press event. Terminals report
// presses and auto-repeat, never releases.
const holdFrames = 6

var runeButtons = map[rune]gba.Button{
	'x': gba.ButtonA,
	'z': gba.ButtonB,
	'a': gba.ButtonL,
	's': gba.ButtonR,
}

var keyButtons = map[tcell.Key]gba.Button{
	tcell.KeyUp:         gba.ButtonUp,
	tcell.KeyDown:       gba.ButtonDown,
	tcell.KeyLeft:       gba.ButtonLeft,
	tcell.KeyRight:      gba.ButtonRight,
	tcell.KeyEnter:      gba.ButtonStart,
	tcell.KeyBackspace:  gba.ButtonSelect,
	tcell.KeyBackspace2: gba.ButtonSelect,
}

// buttonFor maps a key event to a console button
func buttonFor(ev *tcell.EventKey) (gba.Button, bool) {
	if ev.Key() == tcell.KeyRune {
		b, ok := runeButtons[ev.Rune()]
		return b, ok
	}
	b, ok := keyButtons[ev.Key()]
	return b, ok
}

// keyLatch turns press events into held buttons
type keyLatch struct {
	mu    sync.Mutex
	frame uint64
	last  map[gba.Button]uint64
}

func newKeyLatch() *keyLatch {
	return &keyLatch{last: make(map[gba.Button]uint64)}
}

func (l *keyLatch) press(b gba.Button) {
	l.mu.Lock()
	l.last[b] = l.frame
	l.mu.Unlock()
}

// advance moves to the next frame and returns the buttons held during it
func (l *keyLatch) advance() gba.Button {
	l.mu.Lock()
	defer l.mu.Unlock()

	var held gba.Button
	for b, at := range l.last {
		if l.frame-at < holdFrames {
			held |= b
		} else {
			delete(l.last, b)
		}
	}
	l.frame++
	return held
}
