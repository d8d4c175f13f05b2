package game

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/Garsondee/Echo-Arena/internal/audio"
	"github.com/Garsondee/Echo-Arena/internal/catalog"
	"github.com/Garsondee/Echo-Arena/internal/mutator"
	"github.com/Garsondee/Echo-Arena/internal/store"
)

// InputPolicy produces the input for one frame. The harness calls it before
// every Step.
type InputPolicy func(s *Sim, tick int) Input

// Idle holds no keys and aims at the arena centre.
func Idle(s *Sim, _ int) Input {
	return Input{Aim: s.centre()}
}

// Harness is a headless simulation driver. It mirrors a frontend's update
// loop with a fixed frame delta, deterministic seeding and a recording
// presenter and audio sink. Tests and cmd/headless-report build on it.
type Harness struct {
	Width, Height float64

	Sim       *Sim
	SimLog    *SimLog
	Store     store.Store
	Catalog   *catalog.Catalog
	Mutators  *mutator.Registry
	Presenter *RecordingPresenter
	Audio     *audio.Recorder

	FrameDelta float64
	Policy     InputPolicy

	seed     int64
	step     float64
	roll     Rand
	log      *zerolog.Logger
	presets  []mutator.Preset
	xp       int
	upgrades []catalog.UpgradeID
	char     catalog.CharacterID
	noStart  bool
	tick     int
}

// harnessOptionKind controls the pass in which an option is applied.
type harnessOptionKind int

const (
	harnessOptInfra    harnessOptionKind = iota // arena, seed, store, verbose: applied first
	harnessOptProgress                          // xp, upgrades, character: applied once the catalog exists
)

// HarnessOption is a builder function applied to a Harness during construction.
type HarnessOption struct {
	kind harnessOptionKind
	fn   func(*Harness)
}

// WithArena sets the arena dimensions.
func WithArena(w, h float64) HarnessOption {
	return HarnessOption{harnessOptInfra, func(h2 *Harness) {
		h2.Width, h2.Height = w, h
	}}
}

// WithSeed sets the seed for the spawn RNG (and the roll RNG unless
// WithRollRand is also given).
func WithSeed(seed int64) HarnessOption {
	return HarnessOption{harnessOptInfra, func(h *Harness) { h.seed = seed }}
}

// WithRollRand replaces the chance-roll generator, e.g. to force an outcome.
func WithRollRand(r Rand) HarnessOption {
	return HarnessOption{harnessOptInfra, func(h *Harness) { h.roll = r }}
}

// WithVerbose enables per-hit combat logging.
func WithVerbose(v bool) HarnessOption {
	return HarnessOption{harnessOptInfra, func(h *Harness) { h.SimLog = NewSimLog(v) }}
}

// WithStore uses st instead of a fresh in-memory store.
func WithStore(st store.Store) HarnessOption {
	return HarnessOption{harnessOptInfra, func(h *Harness) { h.Store = st }}
}

// WithRecorderStep overrides the fixed recorder step.
func WithRecorderStep(step float64) HarnessOption {
	return HarnessOption{harnessOptInfra, func(h *Harness) { h.step = step }}
}

// WithFrameDelta sets the wall-time delta passed to every Step.
func WithFrameDelta(dt float64) HarnessOption {
	return HarnessOption{harnessOptInfra, func(h *Harness) { h.FrameDelta = dt }}
}

// WithPolicy sets the input policy.
func WithPolicy(p InputPolicy) HarnessOption {
	return HarnessOption{harnessOptInfra, func(h *Harness) { h.Policy = p }}
}

// WithLogger routes process logging from the Sim to l.
func WithLogger(l zerolog.Logger) HarnessOption {
	return HarnessOption{harnessOptInfra, func(h *Harness) { h.log = &l }}
}

// WithMutators replaces the preset list.
func WithMutators(presets []mutator.Preset) HarnessOption {
	return HarnessOption{harnessOptInfra, func(h *Harness) { h.presets = presets }}
}

// WithoutStart builds the Sim but leaves the run in RunNotStarted.
func WithoutStart() HarnessOption {
	return HarnessOption{harnessOptInfra, func(h *Harness) { h.noStart = true }}
}

// WithXP banks xp experience before the run starts.
func WithXP(xp int) HarnessOption {
	return HarnessOption{harnessOptProgress, func(h *Harness) { h.xp = xp }}
}

// WithUpgrades owns and activates each upgrade, in order.
func WithUpgrades(ids ...catalog.UpgradeID) HarnessOption {
	return HarnessOption{harnessOptProgress, func(h *Harness) {
		h.upgrades = append(h.upgrades, ids...)
	}}
}

// WithCharacter owns and selects ch.
func WithCharacter(ch catalog.CharacterID) HarnessOption {
	return HarnessOption{harnessOptProgress, func(h *Harness) { h.char = ch }}
}

// NewHarness constructs a Harness in two passes:
//  1. Infrastructure (arena, seed, store, verbose, policy)
//  2. Progress (xp, upgrades, character), then Sim construction and Start
func NewHarness(opts ...HarnessOption) (*Harness, error) {
	h := &Harness{
		Width:      960,
		Height:     600,
		SimLog:     NewSimLog(false),
		Presenter:  &RecordingPresenter{},
		Audio:      &audio.Recorder{},
		FrameDelta: FixedStep,
		Policy:     Idle,
		seed:       1,
	}
	for _, o := range opts {
		if o.kind == harnessOptInfra {
			o.fn(h)
		}
	}
	if h.Store == nil {
		h.Store = store.NewView(store.NewMemory(), store.Namespace(store.DefaultRoot, ""))
	}
	for _, o := range opts {
		if o.kind == harnessOptProgress {
			o.fn(h)
		}
	}
	if err := h.seedProgress(); err != nil {
		return nil, err
	}

	roll := h.roll
	if roll == nil {
		roll = rand.New(rand.NewSource(h.seed + 1)) // #nosec G404 -- test harness
	}
	h.Mutators = mutator.NewRegistry(h.presets, h.Store)
	seq := 0
	sim, err := New(Deps{
		Store:     h.Store,
		Catalog:   h.Catalog,
		Mutators:  h.Mutators,
		Presenter: h.Presenter,
		Audio:     h.Audio,
		Log:       h.log,
		SimLog:    h.SimLog,
		SpawnRand: rand.New(rand.NewSource(h.seed)), // #nosec G404 -- test harness
		RollRand:  roll,
		Width:     h.Width,
		Height:    h.Height,
		Step:      h.step,
		NewRunID: func() string {
			seq++
			return fmt.Sprintf("seed%d-run%d", h.seed, seq)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("build sim: %w", err)
	}
	h.Sim = sim
	if !h.noStart {
		sim.Start()
	}
	return h, nil
}

func (h *Harness) seedProgress() error {
	if h.xp > 0 {
		if err := h.Store.Set(store.KeyXP, h.xp); err != nil {
			return fmt.Errorf("seed xp: %w", err)
		}
	}
	cat, err := catalog.New(h.Store)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	h.Catalog = cat

	// Ownership is granted directly so seeding does not spend the banked xp.
	owned := store.Strings(h.Store, store.KeyOwnedUpgrades, nil)
	for _, id := range h.upgrades {
		owned = append(owned, id.String())
	}
	if err := h.Store.Set(store.KeyOwnedUpgrades, owned); err != nil {
		return fmt.Errorf("seed upgrades: %w", err)
	}
	if h.char != catalog.Sher {
		if err := h.Store.Set(store.KeyOwnedChars, []string{catalog.Sher.String(), h.char.String()}); err != nil {
			return fmt.Errorf("seed characters: %w", err)
		}
	}
	if err := cat.Load(h.Store); err != nil {
		return fmt.Errorf("reload catalog: %w", err)
	}
	for _, id := range h.upgrades {
		if _, err := cat.SetActive(id, true); err != nil {
			return fmt.Errorf("activate %s: %w", id, err)
		}
	}
	if h.char != catalog.Sher {
		if _, err := cat.SelectCharacter(h.char); err != nil {
			return fmt.Errorf("select %s: %w", h.char, err)
		}
	}
	return nil
}

// RunTicks advances the simulation n frames.
func (h *Harness) RunTicks(n int) {
	for i := 0; i < n; i++ {
		h.tick++
		h.Sim.Step(h.FrameDelta, h.Policy(h.Sim, h.tick))
	}
}

// RunUntil advances up to maxTicks frames, stopping early when predicate
// returns true. It returns the frame at which the predicate held, or -1.
func (h *Harness) RunUntil(predicate func(*Harness) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		h.tick++
		h.Sim.Step(h.FrameDelta, h.Policy(h.Sim, h.tick))
		if predicate(h) {
			return h.tick
		}
	}
	return -1
}

// RunRound advances until the round index changes or the run ends. It
// returns false if neither happened within maxTicks.
func (h *Harness) RunRound(maxTicks int) bool {
	start := h.Sim.Round()
	return h.RunUntil(func(h *Harness) bool {
		return h.Sim.Round() != start || h.Sim.State() != RunRunning
	}, maxTicks) >= 0
}

// CurrentTick returns the number of frames driven so far.
func (h *Harness) CurrentTick() int { return h.tick }

// Snapshot returns the Sim's current snapshot.
func (h *Harness) Snapshot() Snapshot { return h.Sim.Snapshot() }
