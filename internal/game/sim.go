package game

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Echo-Arena/internal/audio"
	"github.com/Garsondee/Echo-Arena/internal/catalog"
	"github.com/Garsondee/Echo-Arena/internal/mutator"
	"github.com/Garsondee/Echo-Arena/internal/store"
	"github.com/Garsondee/Echo-Arena/internal/vmath"
)

// Rand is the slice of math/rand the simulation draws from. Tests substitute
// fixed sequences to force chance rolls.
type Rand interface {
	Float64() float64
}

// Input is one frame of logical input. Aim is an arena position.
type Input struct {
	Up, Down, Left, Right bool
	Shoot, Dash           bool
	Aim                   vmath.Vec2

	// One-shot commands, handled before anything else in the step.
	Mutator bool
	Restart bool
}

// Frame strips the input down to what the recorder keeps.
func (in Input) Frame() InputFrame {
	return InputFrame{
		Up: in.Up, Down: in.Down, Left: in.Left, Right: in.Right,
		Shoot: in.Shoot, Dash: in.Dash,
	}
}

// Deps are the collaborators a Sim is built from. Store is required; the
// rest default to no-ops or fresh instances.
type Deps struct {
	Store     store.Store
	Catalog   *catalog.Catalog
	Mutators  *mutator.Registry
	Presenter Presenter
	Audio     audio.Player
	Log       *zerolog.Logger
	SimLog    *SimLog

	// SpawnRand drives placement, enemy kinds and wander. RollRand drives the
	// chance rolls (damage, echoes, vampire).
	SpawnRand Rand
	RollRand  Rand

	Width, Height float64
	Step          float64 // recorder step; 0 means FixedStep

	NewRunID func() string
}

// Sim owns every live entity and advances them one frame per Step. It is not
// safe for concurrent use; one goroutine drives it.
type Sim struct {
	st     store.Store
	cat    *catalog.Catalog
	muts   *mutator.Registry
	pres   Presenter
	sfx    audio.Player
	log    zerolog.Logger
	simLog *SimLog
	spawn  Rand
	roll   Rand
	newID  func() string

	width, height float64

	state  RunState
	phase  RoundPhase
	paused bool
	tick   int
	runID  string
	clock  float64 // simulated time this run

	round    int
	timeLeft float64
	lives    int
	score    int
	kills    int
	quota    int
	best     int
	totalXP  int
	summary  *RunSummary
	rec      *Recorder
	player   *Player
	echoes   []*Echo
	enemies  []*Enemy
	boss     *Boss
	shots    []Projectile // friendly
	hostile  []Projectile
	particle []Particle

	nextEnemyID int
	nextEchoID  int
}

// New builds a Sim from d. It does not start a run.
func New(d Deps) (*Sim, error) {
	if d.Store == nil {
		return nil, errors.New("game: Deps.Store is required")
	}
	if d.Width <= 0 || d.Height <= 0 {
		return nil, fmt.Errorf("game: arena %vx%v must be positive", d.Width, d.Height)
	}
	s := &Sim{
		st:     d.Store,
		cat:    d.Catalog,
		muts:   d.Mutators,
		pres:   d.Presenter,
		sfx:    d.Audio,
		simLog: d.SimLog,
		spawn:  d.SpawnRand,
		roll:   d.RollRand,
		newID:  d.NewRunID,
		width:  d.Width,
		height: d.Height,
		rec:    NewRecorder(d.Step),
		lives:  playerLives,
		round:  1,
	}
	if s.cat == nil {
		c, err := catalog.New(d.Store)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		s.cat = c
	}
	if s.muts == nil {
		s.muts = mutator.NewRegistry(nil, d.Store)
	}
	if s.pres == nil {
		s.pres = NopPresenter{}
	}
	if s.sfx == nil {
		s.sfx = audio.Nop{}
	}
	if d.Log != nil {
		s.log = *d.Log
	} else {
		s.log = zerolog.Nop()
	}
	if s.simLog == nil {
		s.simLog = NewSimLog(false)
	}
	seed := time.Now().UnixNano()
	if s.spawn == nil {
		s.spawn = rand.New(rand.NewSource(seed)) // #nosec G404 -- gameplay randomness
	}
	if s.roll == nil {
		s.roll = rand.New(rand.NewSource(seed + 1)) // #nosec G404 -- gameplay randomness
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	s.reloadProgress()
	return s, nil
}

func (s *Sim) reloadProgress() {
	s.best = store.Int(s.st, store.KeyBest, 0)
	s.totalXP = store.Int(s.st, store.KeyXP, 0)
}

// RefreshProgress re-reads the stored best score and XP, for example after a
// shop purchase. Unlike Rebind it leaves the run state untouched.
func (s *Sim) RefreshProgress() { s.reloadProgress() }

// Rebind points the Sim at another profile's store, catalog and mutator
// index. It stops any run in progress.
func (s *Sim) Rebind(st store.Store, cat *catalog.Catalog) {
	s.Stop()
	s.st = st
	s.cat = cat
	s.muts.SetStore(st)
	s.reloadProgress()
}

// Start begins a new run. It is a no-op while a run is in progress.
func (s *Sim) Start() {
	if s.state == RunRunning {
		return
	}
	s.reloadProgress()
	s.runID = s.newID()
	s.state = RunRunning
	s.phase = PhaseActive
	s.paused = false
	s.summary = nil
	s.clock = 0
	s.round = 1
	s.lives = playerLives
	s.score = 0
	s.kills = 0
	s.quota = initialQuota
	s.echoes = nil
	s.nextEchoID = 0
	s.player = &Player{
		Radius:    playerRadius,
		Speed:     playerBaseSpeed * s.cat.SpeedMultiplier(),
		Character: s.cat.Selected(),
		Aim:       vmath.V(1, 0),
	}
	s.resetCycle()

	s.pres.UpdateRound(s.round)
	s.pres.UpdateLives(s.lives)
	s.pres.UpdateScore(s.score, s.Multiplier())
	s.simLog.Add(s.tick, "--", "run", "start", fmt.Sprintf("run %s as %s", s.runID, s.player.Character), 0)
	s.log.Info().Str("run", s.runID).Str("character", s.player.Character.String()).
		Str("mutator", s.muts.Current().Name).Msg("run started")
}

// Stop abandons the run without game-over bookkeeping.
func (s *Sim) Stop() {
	if s.state == RunRunning {
		s.simLog.Add(s.tick, "--", "run", "stop", "abandoned", float64(s.score))
	}
	s.state = RunNotStarted
	s.paused = false
	s.player = nil
	s.echoes = nil
	s.clearTransient()
}

// SetPaused suspends or resumes stepping.
func (s *Sim) SetPaused(p bool) { s.paused = p }

func (s *Sim) Paused() bool { return s.paused }

// CycleMutator advances the mutator registry when enough experience is
// banked. It reports whether the mutator changed.
func (s *Sim) CycleMutator() bool {
	if s.totalXP < mutator.UnlockXP {
		s.pres.Toast(fmt.Sprintf("Mutators unlock at %d XP", mutator.UnlockXP))
		s.simLog.Add(s.tick, "--", "mutator", "locked", "", float64(s.totalXP))
		return false
	}
	p, err := s.muts.Next()
	if err != nil {
		s.log.Warn().Err(err).Msg("persist mutator index")
	}
	s.sfx.Play(audio.Mutate)
	s.pres.Toast("Mutator: " + p.Name)
	s.simLog.Add(s.tick, "--", "mutator", "switch", p.Kind.String(), float64(s.muts.Index()))
	return true
}

// RestartCycle replays the current round from its start: countdown,
// timeline and all transient entities are reset and the wave is
// repopulated. Round, score, lives, quota and echoes are untouched.
func (s *Sim) RestartCycle() {
	if s.state != RunRunning {
		return
	}
	s.resetCycle()
	s.simLog.Add(s.tick, "--", "round", "restart", fmt.Sprintf("round %d", s.round), float64(s.round))
}

// Step advances the simulation by elapsed seconds of wall time.
func (s *Sim) Step(elapsed float64, in Input) {
	if s.state != RunRunning || s.paused {
		return
	}
	s.tick++

	dt := elapsed
	if math.IsNaN(dt) || dt < 0 {
		dt = 0
	}
	dt = math.Min(dt, MaxDelta) * s.muts.TimeScale()
	dt = math.Min(dt, MaxDelta)
	s.clock += dt

	// 0. COMMANDS
	if in.Mutator {
		s.CycleMutator()
	}
	if in.Restart {
		s.RestartCycle()
	}

	// 1. RECORD
	// The expiring step records only the time the cycle had left.
	s.rec.Advance(math.Min(dt, math.Max(0, s.timeLeft)), in.Frame())

	// 2. COUNTDOWN
	s.timeLeft -= dt
	if s.timeLeft <= 0 {
		s.rec.Fill(CycleFrames(CycleDuration, s.rec.Step()), in.Frame())
		s.endCycle()
		s.beginNextRound()
	}

	// 3-5. PLAYER
	s.stepPlayer(dt, in)

	// 6. ECHOES
	s.stepEchoes(dt, in.Aim)

	// 7. ENEMIES
	s.stepEnemies(dt)

	// 8. BOSS
	s.stepBoss(dt)

	// 9. PROJECTILES
	s.stepProjectiles(dt)

	// 10-13. COLLISIONS, DAMAGE, DEATHS
	s.resolveCollisions()
	if s.state != RunRunning {
		return
	}

	// 14. PARTICLES
	s.stepParticles(dt)

	// 15. HUD
	s.pres.UpdateTimer(math.Max(0, s.timeLeft))
}

func (s *Sim) stepPlayer(dt float64, in Input) {
	p := s.player
	mx, my := in.Frame().Move()
	move := vmath.V(mx, my).Normalize()
	speed := p.Speed * s.muts.SpeedScale()
	p.Pos = s.clampInside(p.Pos.Add(move.Scale(speed*dt)), p.Radius)

	if in.Dash && p.DashCD <= 0 {
		p.Pos = s.clampInside(p.Pos.Add(move.Scale(dashDistance)), p.Radius)
		p.DashCD = dashCooldown
		s.sfx.Play(audio.Dash)
	} else {
		p.DashCD = math.Max(0, p.DashCD-dt)
	}

	aim := in.Aim.Sub(p.Pos).Normalize()
	if aim != (vmath.Vec2{}) {
		p.Aim = aim
	}
	p.ShootCD = math.Max(0, p.ShootCD-dt)
	if in.Shoot && p.ShootCD <= 0 {
		s.fire(p.Pos, aim, p.Character.Pattern())
		p.ShootCD = shootCooldown
		s.sfx.Play(audio.Shoot)
	}
}

func (s *Sim) stepEchoes(dt float64, aimAt vmath.Vec2) {
	if len(s.echoes) == 0 {
		return
	}
	idx := EchoFrameIndex(CycleDuration, s.timeLeft, s.rec.Step())
	speed := playerBaseSpeed * s.cat.SpeedMultiplier() * s.muts.SpeedScale()
	for _, e := range s.echoes {
		f := e.Timeline.At(idx)
		mx, my := f.Move()
		move := vmath.V(mx, my).Normalize()
		e.Pos = s.clampInside(e.Pos.Add(move.Scale(speed*dt)), e.Radius)

		if f.Dash && e.DashCD <= 0 {
			e.Pos = s.clampInside(e.Pos.Add(move.Scale(dashDistance)), e.Radius)
			e.DashCD = dashCooldown
		} else {
			e.DashCD = math.Max(0, e.DashCD-dt)
		}

		e.ShootCD = math.Max(0, e.ShootCD-dt)
		if f.Shoot && e.ShootCD <= 0 {
			// Movement is replayed; aim follows the live cursor.
			aim := aimAt.Sub(e.Pos).Normalize()
			s.fire(e.Pos, aim, e.Timeline.Character().Pattern())
			e.ShootCD = shootCooldown
		}
	}
}

func (s *Sim) fire(from, aim vmath.Vec2, pattern catalog.FirePattern) {
	for _, d := range firePattern(pattern, aim) {
		s.shots = append(s.shots, newProjectile(from, d, true))
	}
}

func (s *Sim) stepParticles(dt float64) {
	kept := s.particle[:0]
	for _, p := range s.particle {
		p.Life -= dt
		if p.Life > 0 {
			kept = append(kept, p)
		}
	}
	s.particle = kept
}

func (s *Sim) clampInside(p vmath.Vec2, r float64) vmath.Vec2 {
	return vmath.ClampTo(p, r, r, s.width-r, s.height-r)
}

func (s *Sim) centre() vmath.Vec2 { return vmath.V(s.width/2, s.height/2) }

func (s *Sim) insideArena(p vmath.Vec2) bool {
	return p.X >= 0 && p.X <= s.width && p.Y >= 0 && p.Y <= s.height
}

// Multiplier is the score multiplier for the banked experience:
// 1 + clamp(floor(xp/1000)*0.1, 0, 1).
func (s *Sim) Multiplier() float64 { return ScoreMultiplier(s.totalXP) }

// ScoreMultiplier computes the multiplier for totalXP.
func ScoreMultiplier(totalXP int) float64 {
	steps := math.Floor(float64(totalXP) / xpPerMultStep)
	return 1 + vmath.Clamp(steps*multPerStep, 0, maxMultBonus)
}

func (s *Sim) addScore(v int) {
	mult := s.Multiplier()
	s.score += int(math.Floor(float64(v) * mult))
	s.pres.UpdateScore(s.score, mult)
}

func (s *Sim) gameOver() {
	s.state = RunGameOver
	s.best = max(s.best, store.Int(s.st, store.KeyBest, 0), s.score)
	if err := s.st.Set(store.KeyBest, s.best); err != nil {
		s.log.Error().Err(err).Msg("persist best score")
	}
	gained := s.score / scorePerXP
	s.totalXP = store.Int(s.st, store.KeyXP, s.totalXP) + gained
	if err := s.st.Set(store.KeyXP, s.totalXP); err != nil {
		s.log.Error().Err(err).Msg("persist xp")
	}

	sum := RunSummary{
		RunID:    s.runID,
		Score:    s.score,
		Best:     s.best,
		GainedXP: gained,
		TotalXP:  s.totalXP,
		Echoes:   len(s.echoes),
		Kills:    s.kills,
		Round:    s.round,
		Mutator:  s.muts.Current().Name,
		Duration: s.clock,
	}
	s.summary = &sum
	s.player = nil

	s.simLog.Add(s.tick, "--", "run", "game_over", fmt.Sprintf("score %d round %d", s.score, s.round), float64(s.score))
	s.log.Info().Str("run", s.runID).Int("score", s.score).Int("round", s.round).
		Int("kills", s.kills).Int("xp_gained", gained).Msg("run over")
	s.pres.ShowGameOver(sum)
}

// --- Read-only accessors ---

func (s *Sim) State() RunState { return s.state }
func (s *Sim) Phase() RoundPhase { return s.phase }
func (s *Sim) Round() int { return s.round }
func (s *Sim) Lives() int { return s.lives }
func (s *Sim) Score() int { return s.score }
func (s *Sim) Kills() int { return s.kills }
func (s *Sim) Best() int { return s.best }
func (s *Sim) TotalXP() int { return s.totalXP }
func (s *Sim) TimeLeft() float64 { return s.timeLeft }
func (s *Sim) Quota() int { return s.quota }
func (s *Sim) RunID() string { return s.runID }
func (s *Sim) Tick() int { return s.tick }
func (s *Sim) EchoCount() int { return len(s.echoes) }
func (s *Sim) Log() *SimLog { return s.simLog }
func (s *Sim) Catalog() *catalog.Catalog { return s.cat }
func (s *Sim) Mutators() *mutator.Registry { return s.muts }
func (s *Sim) Size() (w, h float64) { return s.width, s.height }

// Summary returns the last finished run, if any.
func (s *Sim) Summary() (RunSummary, bool) {
	if s.summary == nil {
		return RunSummary{}, false
	}
	return *s.summary, true
}

// Timelines returns the recorded timelines of the current echoes.
func (s *Sim) Timelines() []Timeline {
	out := make([]Timeline, len(s.echoes))
	for i, e := range s.echoes {
		out[i] = e.Timeline
	}
	return out
}
