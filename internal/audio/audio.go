// Package audio plays the short synthesized cues the simulation emits.
package audio

// Event is one of the fixed set of sound cues.
type Event int

const (
	Shoot Event = iota
	Dash
	Hit
	EnemyDown
	Mutate
	BossDown
)

func (e Event) String() string {
	switch e {
	case Shoot:
		return "shoot"
	case Dash:
		return "dash"
	case Hit:
		return "hit"
	case EnemyDown:
		return "enemyDown"
	case Mutate:
		return "mutate"
	case BossDown:
		return "bossDown"
	default:
		return "unknown"
	}
}

// Player is the fire-and-forget sink the simulation writes to.
type Player interface {
	Play(Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Play(Event) {}

// Recorder keeps every event it receives, in order. Tests use it to assert
// which cues a step produced.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Play(e Event) { r.Events = append(r.Events, e) }

// Count returns how many times e was played.
func (r *Recorder) Count(e Event) int {
	n := 0
	for _, got := range r.Events {
		if got == e {
			n++
		}
	}
	return n
}
