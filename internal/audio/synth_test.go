package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

func drain(t *testing.T, s beep.Streamer) ([][2]float64, int) {
	t.Helper()
	var out [][2]float64
	buf := make([][2]float64, 512)
	for i := 0; i < 10000; i++ {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out, len(out)
		}
	}
	t.Fatal("streamer never finished")
	return nil, 0
}

func TestOscillator_LengthAndRange(t *testing.T) {
	rate := beep.SampleRate(44100)
	for _, w := range []WaveType{WaveSine, WaveSquare, WaveSaw, WaveTriangle} {
		osc := NewOscillator(440, 50*time.Millisecond, w, rate)
		samples, n := drain(t, osc)
		if n != rate.N(50*time.Millisecond) {
			t.Errorf("wave %d: %d samples, want %d", w, n, rate.N(50*time.Millisecond))
		}
		for i, s := range samples {
			if s[0] < -1 || s[0] > 1 || s[0] != s[1] {
				t.Fatalf("wave %d sample %d out of range or not mono: %v", w, i, s)
			}
		}
		if osc.Err() != nil {
			t.Fatalf("unexpected error %v", osc.Err())
		}
	}
}

func TestEnvelope_StartsSilentAndFades(t *testing.T) {
	rate := beep.SampleRate(44100)
	osc := NewOscillator(100, 100*time.Millisecond, WaveSquare, rate)
	env := NewEnvelope(osc, 100*time.Millisecond, 5*time.Millisecond, rate)
	samples, n := drain(t, env)
	if n == 0 {
		t.Fatal("no samples")
	}
	if samples[0][0] != 0 {
		t.Fatalf("first sample should be silent, got %v", samples[0][0])
	}
	if math.Abs(samples[n-1][0]) > 0.01 {
		t.Fatalf("tail should have faded, got %v", samples[n-1][0])
	}
}

func TestSound_EveryEventHasATone(t *testing.T) {
	for e := Shoot; e <= BossDown; e++ {
		st, ok := Sound(e, 0.7, SampleRate)
		if !ok || st == nil {
			t.Fatalf("no tone for %v", e)
		}
		_, n := drain(t, st)
		if want := SampleRate.N(Tones[e].Duration); n != want {
			t.Errorf("%v: %d samples, want %d", e, n, want)
		}
	}
}

func TestSound_ZeroVolumeIsSilent(t *testing.T) {
	st, _ := Sound(Mutate, 0, SampleRate)
	samples, _ := drain(t, st)
	for i, s := range samples {
		if s[0] != 0 || s[1] != 0 {
			t.Fatalf("sample %d not silent: %v", i, s)
		}
	}
}

func TestSynth_VolumeClampAndMute(t *testing.T) {
	s := NewSynth(3, true)
	if s.Volume() != 1 {
		t.Fatalf("volume should clamp to 1, got %v", s.Volume())
	}
	s.SetVolume(math.NaN())
	if s.Volume() != 0 {
		t.Fatalf("NaN volume should clamp to 0, got %v", s.Volume())
	}
	if !s.ToggleMute() || !s.Muted() {
		t.Fatal("toggle should mute")
	}
	if s.ToggleMute() {
		t.Fatal("second toggle should unmute")
	}
	// Not started: Play is a no-op and must not touch the speaker.
	s.Play(Shoot)
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Play(Shoot)
	r.Play(Hit)
	r.Play(Shoot)
	if r.Count(Shoot) != 2 || r.Count(Hit) != 1 || r.Count(BossDown) != 0 {
		t.Fatalf("counts wrong: %v", r.Events)
	}
	if Shoot.String() != "shoot" || EnemyDown.String() != "enemyDown" {
		t.Fatal("event names wrong")
	}
}
