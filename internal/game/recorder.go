package game

import (
	"math"

	"github.com/Garsondee/Echo-Arena/internal/catalog"
)

// InputFrame is one recorded fixed-step sample of the logical input flags.
type InputFrame struct {
	Up, Down, Left, Right bool
	Shoot, Dash           bool
}

// Move returns the raw (unnormalized) movement axes of the frame.
func (f InputFrame) Move() (x, y float64) {
	if f.Right {
		x++
	}
	if f.Left {
		x--
	}
	if f.Down {
		y++
	}
	if f.Up {
		y--
	}
	return x, y
}

// Recorder samples input at a fixed cadence independent of frame rate.
type Recorder struct {
	step   float64
	clock  float64
	frames []InputFrame
}

// NewRecorder returns a recorder sampling every step time units. A
// non-positive or non-finite step falls back to FixedStep.
func NewRecorder(step float64) *Recorder {
	if !(step > 0) || math.IsInf(step, 0) {
		step = FixedStep
	}
	return &Recorder{step: step}
}

// Advance accumulates dt (clamped to MaxDelta) and appends one copy of frame
// per whole step elapsed. NaN, infinite or negative dt is ignored. It returns
// the number of samples appended.
func (r *Recorder) Advance(dt float64, frame InputFrame) int {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		return 0
	}
	if dt > MaxDelta {
		dt = MaxDelta
	}
	r.clock += dt
	n := 0
	for r.clock >= r.step {
		r.frames = append(r.frames, frame)
		r.clock -= r.step
		n++
	}
	return n
}

// Remainder is the unconsumed clock, always in [0, step).
func (r *Recorder) Remainder() float64 { return r.clock }

// Len returns the number of samples recorded this cycle.
func (r *Recorder) Len() int { return len(r.frames) }

// Step returns the sample interval.
func (r *Recorder) Step() float64 { return r.step }

// Reset clears the clock and the samples.
func (r *Recorder) Reset() {
	r.clock = 0
	r.frames = r.frames[:0]
}

// Fill pads the samples with frame up to n, or drops any beyond n. The
// cycle's last step calls it so float drift in the accumulated clock never
// leaves a timeline one sample short or long.
func (r *Recorder) Fill(n int, frame InputFrame) {
	if n < 0 {
		n = 0
	}
	for len(r.frames) < n {
		r.frames = append(r.frames, frame)
	}
	r.frames = r.frames[:n]
}

// CycleFrames is the sample count of one complete cycle: floor(duration/step).
func CycleFrames(duration, step float64) int {
	if !(step > 0) || !(duration > 0) {
		return 0
	}
	return int(math.Floor(duration/step + 1e-9))
}

// Seal copies the samples into an immutable Timeline tagged with ch.
func (r *Recorder) Seal(ch catalog.CharacterID) Timeline {
	frames := make([]InputFrame, len(r.frames))
	copy(frames, r.frames)
	return Timeline{frames: frames, character: ch}
}

// Timeline is a recorded cycle of input. It cannot be modified after Seal.
type Timeline struct {
	frames    []InputFrame
	character catalog.CharacterID
}

func (t Timeline) Len() int { return len(t.frames) }

// At returns sample i, or the zero frame when i is out of range.
func (t Timeline) At(i int) InputFrame {
	if i < 0 || i >= len(t.frames) {
		return InputFrame{}
	}
	return t.frames[i]
}

// Frames returns a copy of all samples.
func (t Timeline) Frames() []InputFrame {
	out := make([]InputFrame, len(t.frames))
	copy(out, t.frames)
	return out
}

// Character is the character active when the timeline was recorded.
func (t Timeline) Character() catalog.CharacterID { return t.character }

// NewTimeline builds a timeline from explicit frames (copied).
func NewTimeline(frames []InputFrame, ch catalog.CharacterID) Timeline {
	cp := make([]InputFrame, len(frames))
	copy(cp, frames)
	return Timeline{frames: cp, character: ch}
}

// EchoFrameIndex maps the live countdown to a timeline index:
// floor((cycleDuration - timeLeft) / step), never negative.
func EchoFrameIndex(cycleDuration, timeLeft, step float64) int {
	if !(step > 0) {
		return 0
	}
	v := math.Floor((cycleDuration - timeLeft) / step)
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}
