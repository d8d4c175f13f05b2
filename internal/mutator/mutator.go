// Package mutator holds the ordered list of global modifier presets and the
// persisted index of the active one.
package mutator

import (
	"fmt"
	"strings"

	"github.com/Garsondee/Echo-Arena/internal/store"
)

// UnlockXP is the banked experience needed before the player may cycle
// mutators. The registry does not enforce it; the caller does.
const UnlockXP = 2000

// Kind identifies a preset. Ricochet is the only kind with behaviour beyond
// its scalars.
type Kind int

const (
	None Kind = iota
	LowGravity
	HighGravity
	SlowMotion
	Slippery
	Buffed
	Ricochet
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case LowGravity:
		return "lowG"
	case HighGravity:
		return "highG"
	case SlowMotion:
		return "slowmo"
	case Slippery:
		return "slippery"
	case Buffed:
		return "buffed"
	case Ricochet:
		return "ricochet"
	default:
		return "unknown"
	}
}

// ParseKind maps a preset name (as written by String) back to its Kind.
func ParseKind(s string) (Kind, error) {
	for k := None; k <= Ricochet; k++ {
		if strings.EqualFold(k.String(), s) {
			return k, nil
		}
	}
	return None, fmt.Errorf("unknown mutator %q", s)
}

// Preset is one named set of scalars.
//
//	Speed  multiplies player and echo movement
//	Time   multiplies the frame delta before any simulation math
//	Enemy  multiplies enemy and boss movement
type Preset struct {
	Kind  Kind
	Name  string
	Speed float64
	Time  float64
	Enemy float64
}

// Ricochet reports whether friendly projectiles bounce off the arena edges.
func (p Preset) Ricochet() bool { return p.Kind == Ricochet }

// DefaultPresets returns the built-in cycle order.
func DefaultPresets() []Preset {
	return []Preset{
		{Kind: None, Name: "None", Speed: 1, Time: 1, Enemy: 1},
		{Kind: LowGravity, Name: "Low Gravity", Speed: 1.2, Time: 1, Enemy: 1},
		{Kind: HighGravity, Name: "High Gravity", Speed: 0.85, Time: 1, Enemy: 1},
		{Kind: SlowMotion, Name: "Slow Motion", Speed: 1, Time: 0.75, Enemy: 1},
		{Kind: Slippery, Name: "Slippery", Speed: 1.1, Time: 1, Enemy: 1},
		{Kind: Buffed, Name: "Buffed Enemies", Speed: 1, Time: 1, Enemy: 1.2},
		{Kind: Ricochet, Name: "Ricochet", Speed: 1, Time: 1, Enemy: 1},
	}
}

// Registry cycles through presets and persists the current index.
type Registry struct {
	presets []Preset
	idx     int
	st      store.Store
}

// NewRegistry builds a registry over presets, restoring the index from st.
// An out-of-range stored index is wrapped into range. An empty preset list
// falls back to DefaultPresets.
func NewRegistry(presets []Preset, st store.Store) *Registry {
	if len(presets) == 0 {
		presets = DefaultPresets()
	}
	r := &Registry{presets: append([]Preset(nil), presets...), st: st}
	r.Reload()
	return r
}

// Reload re-reads the persisted index, e.g. after a profile switch.
func (r *Registry) Reload() {
	idx := 0
	if r.st != nil {
		idx = store.Int(r.st, store.KeyMutatorIndex, 0)
	}
	r.idx = wrap(idx, len(r.presets))
}

// SetStore rebinds the registry to another profile's store and reloads.
func (r *Registry) SetStore(st store.Store) {
	r.st = st
	r.Reload()
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func (r *Registry) Current() Preset { return r.presets[r.idx] }

func (r *Registry) Index() int { return r.idx }

func (r *Registry) Len() int { return len(r.presets) }

// Presets returns a copy of the cycle order.
func (r *Registry) Presets() []Preset { return append([]Preset(nil), r.presets...) }

// Next advances to the following preset and persists the new index. The
// in-memory index advances even if persisting fails.
func (r *Registry) Next() (Preset, error) {
	r.idx = (r.idx + 1) % len(r.presets)
	if r.st != nil {
		if err := r.st.Set(store.KeyMutatorIndex, r.idx); err != nil {
			return r.presets[r.idx], fmt.Errorf("persist mutator index: %w", err)
		}
	}
	return r.presets[r.idx], nil
}

func (r *Registry) SpeedScale() float64 { return r.Current().Speed }

func (r *Registry) TimeScale() float64 { return r.Current().Time }

func (r *Registry) EnemySpeedScale() float64 { return r.Current().Enemy }

// Override replaces the scalars of the preset with the given kind. It is used
// to apply config file tuning.
func (r *Registry) Override(k Kind, speed, time, enemy float64) bool {
	for i := range r.presets {
		if r.presets[i].Kind == k {
			r.presets[i].Speed = speed
			r.presets[i].Time = time
			r.presets[i].Enemy = enemy
			return true
		}
	}
	return false
}
