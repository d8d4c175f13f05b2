package term

// Terminals deliver key presses and auto-repeat but never key releases, so a
// held direction is modelled as a latch that each press re-arms and that
// decays after latchFrames frames without a repeat.
const latchFrames = 9

// Action is a held gameplay control.
type Action int

const (
	ActUp Action = iota
	ActDown
	ActLeft
	ActRight
	ActShoot
	ActDash
	actionCount
)

func (a Action) String() string {
	switch a {
	case ActUp:
		return "up"
	case ActDown:
		return "down"
	case ActLeft:
		return "left"
	case ActRight:
		return "right"
	case ActShoot:
		return "shoot"
	case ActDash:
		return "dash"
	default:
		return "unknown"
	}
}

// Latch tracks the remaining frames of each action.
type Latch struct {
	ttl [actionCount]int
}

// Press arms a for latchFrames frames. Pressing a direction releases its
// opposite so a reversal takes effect at once.
func (l *Latch) Press(a Action) {
	if a < 0 || a >= actionCount {
		return
	}
	l.ttl[a] = latchFrames
	switch a {
	case ActUp:
		l.ttl[ActDown] = 0
	case ActDown:
		l.ttl[ActUp] = 0
	case ActLeft:
		l.ttl[ActRight] = 0
	case ActRight:
		l.ttl[ActLeft] = 0
	}
}

// Held reports whether a is still latched.
func (l *Latch) Held(a Action) bool {
	return a >= 0 && a < actionCount && l.ttl[a] > 0
}

// Tick ages every latch by one frame.
func (l *Latch) Tick() {
	for i := range l.ttl {
		if l.ttl[i] > 0 {
			l.ttl[i]--
		}
	}
}

// Release drops every latch.
func (l *Latch) Release() { l.ttl = [actionCount]int{} }
