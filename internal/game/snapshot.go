package game

import (
	"github.com/Garsondee/Echo-Arena/internal/mutator"
)

// Snapshot is a value copy of everything a frontend draws. Mutating it does
// not affect the Sim.
type Snapshot struct {
	Width, Height float64

	State    RunState
	Phase    RoundPhase
	Paused   bool
	RunID    string
	Round    int
	TimeLeft float64
	Lives    int
	Score    int
	Kills    int
	Best     int
	TotalXP  int
	Mult     float64
	Mutator  mutator.Preset

	Player    *Player
	Echoes    []Echo
	Enemies   []Enemy
	Boss      *Boss
	Shots     []Projectile
	Hostile   []Projectile
	Particles []Particle
}

// Snapshot copies the current state.
func (s *Sim) Snapshot() Snapshot {
	snap := Snapshot{
		Width:     s.width,
		Height:    s.height,
		State:     s.state,
		Phase:     s.phase,
		Paused:    s.paused,
		RunID:     s.runID,
		Round:     s.round,
		TimeLeft:  max(0, s.timeLeft),
		Lives:     s.lives,
		Score:     s.score,
		Kills:     s.kills,
		Best:      s.best,
		TotalXP:   s.totalXP,
		Mult:      s.Multiplier(),
		Mutator:   s.muts.Current(),
		Shots:     append([]Projectile(nil), s.shots...),
		Hostile:   append([]Projectile(nil), s.hostile...),
		Particles: append([]Particle(nil), s.particle...),
	}
	if s.player != nil {
		p := *s.player
		snap.Player = &p
	}
	if s.boss != nil {
		b := *s.boss
		snap.Boss = &b
	}
	snap.Echoes = make([]Echo, len(s.echoes))
	for i, e := range s.echoes {
		snap.Echoes[i] = *e
	}
	snap.Enemies = make([]Enemy, len(s.enemies))
	for i, e := range s.enemies {
		snap.Enemies[i] = *e
	}
	return snap
}

// XPProgress is the fill fraction of the XP bar: (xp mod 1000) / 1000.
func (sn Snapshot) XPProgress() float64 {
	return float64(sn.TotalXP%xpPerMultStep) / xpPerMultStep
}
