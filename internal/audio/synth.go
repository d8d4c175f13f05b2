package audio

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

// SampleRate is the output rate handed to the speaker.
const SampleRate = beep.SampleRate(44100)

// WaveType is an oscillator shape.
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveTriangle
)

// Tone describes one cue: a single oscillator with a short attack and a
// release to silence.
type Tone struct {
	Freq     float64
	Duration time.Duration
	Wave     WaveType
	Gain     float64
}

// Tones maps each event to its cue.
var Tones = map[Event]Tone{
	Shoot:     {Freq: 680, Duration: 60 * time.Millisecond, Wave: WaveSquare, Gain: 0.2},
	Dash:      {Freq: 220, Duration: 50 * time.Millisecond, Wave: WaveSaw, Gain: 0.2},
	EnemyDown: {Freq: 300, Duration: 120 * time.Millisecond, Wave: WaveTriangle, Gain: 0.2},
	Hit:       {Freq: 110, Duration: 160 * time.Millisecond, Wave: WaveSaw, Gain: 0.2},
	Mutate:    {Freq: 520, Duration: 300 * time.Millisecond, Wave: WaveSine, Gain: 0.2},
	BossDown:  {Freq: 180, Duration: 500 * time.Millisecond, Wave: WaveTriangle, Gain: 0.2},
}

type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator returns a streamer producing duration worth of wave at freq.
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1
			} else {
				val = -1
			}
		case WaveSaw:
			val = 2 * (o.phase - 0.5)
		case WaveTriangle:
			val = 1 - 4*math.Abs(o.phase-0.5)
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

type envelope struct {
	streamer     beep.Streamer
	position     int
	attack       int
	releaseStart int
	total        int
}

// NewEnvelope ramps s up over attack and exponentially toward silence over
// the remainder of duration.
func NewEnvelope(s beep.Streamer, duration, attack time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	if att > total {
		att = total
	}
	return &envelope{streamer: s, attack: att, releaseStart: att, total: total}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if e.position >= e.total {
			return i, i > 0
		}
		vol := 1.0
		if e.position < e.attack && e.attack > 0 {
			vol = float64(e.position) / float64(e.attack)
		} else if rel := e.total - e.releaseStart; rel > 0 {
			// 0.0001 at the end of the tail, matching a -80 dB fade.
			frac := float64(e.position-e.releaseStart) / float64(rel)
			vol = math.Pow(0.0001, frac)
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume wraps s with a log-scale gain. Zero volume is silent since
// log2(0) is -Inf.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// Sound builds the finite streamer for e at the given master volume.
func Sound(e Event, master float64, rate beep.SampleRate) (beep.Streamer, bool) {
	tone, ok := Tones[e]
	if !ok {
		return nil, false
	}
	osc := NewOscillator(tone.Freq, tone.Duration, tone.Wave, rate)
	env := NewEnvelope(osc, tone.Duration, 5*time.Millisecond, rate)
	return newVolume(env, tone.Gain*master), true
}

// Synth plays events on the system speaker. It is safe for concurrent use.
// When the speaker cannot be opened the synth stays silent.
type Synth struct {
	running atomic.Bool
	muted   atomic.Bool
	silent  atomic.Bool

	mu     sync.RWMutex
	volume float64
}

// NewSynth returns a stopped synth at volume (clamped to [0,1]).
func NewSynth(volume float64, enabled bool) *Synth {
	s := &Synth{}
	s.SetVolume(volume)
	s.muted.Store(!enabled)
	return s
}

var speakerOnce sync.Once
var speakerErr error

// Start opens the speaker. Failing to open it is not an error for the game;
// the synth switches to silent mode and the error is returned for logging.
func (s *Synth) Start() error {
	if s.running.Load() {
		return fmt.Errorf("synth already running")
	}
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(SampleRate, SampleRate.N(time.Second/10))
	})
	s.running.Store(true)
	if speakerErr != nil {
		s.silent.Store(true)
		return fmt.Errorf("init speaker: %w", speakerErr)
	}
	return nil
}

// Stop silences further events. The shared speaker stays open.
func (s *Synth) Stop() {
	s.running.Store(false)
}

func (s *Synth) Play(e Event) {
	if !s.running.Load() || s.muted.Load() || s.silent.Load() {
		return
	}
	s.mu.RLock()
	vol := s.volume
	s.mu.RUnlock()
	if st, ok := Sound(e, vol, SampleRate); ok {
		speaker.Play(st)
	}
}

// SetVolume sets the master volume, clamped to [0,1].
func (s *Synth) SetVolume(v float64) {
	if math.IsNaN(v) || v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	s.mu.Lock()
	s.volume = v
	s.mu.Unlock()
}

func (s *Synth) Volume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volume
}

// ToggleMute flips the mute flag and returns the new state.
func (s *Synth) ToggleMute() bool {
	for {
		old := s.muted.Load()
		if s.muted.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

func (s *Synth) Muted() bool { return s.muted.Load() }
