package game

import (
	"fmt"
	"math"

	"github.com/Garsondee/Echo-Arena/internal/vmath"
)

// clearTransient drops every per-cycle entity.
func (s *Sim) clearTransient() {
	s.enemies = nil
	s.boss = nil
	s.shots = nil
	s.hostile = nil
	s.particle = nil
	s.rec.Reset()
}

// resetCycle rewinds the current round to its first frame and populates the
// wave. It is shared by run start, round transitions and RestartCycle.
func (s *Sim) resetCycle() {
	s.timeLeft = CycleDuration
	s.phase = PhaseActive
	s.clearTransient()

	c := s.centre()
	if s.player != nil {
		s.player.Pos = c
		s.player.DashCD = 0
		s.player.ShootCD = 0
	}
	for _, e := range s.echoes {
		e.Pos = c
		e.DashCD = 0
		e.ShootCD = 0
	}
	s.populateWave()
}

// endCycle is the Active → Ending transition: echoes are sealed from the
// cycle's timeline and the clear bonus is granted.
func (s *Sim) endCycle() {
	s.phase = PhaseEnding

	if s.cat.EchoEnabled() {
		n := 1
		if s.cat.DoubleEchoEnabled() && s.roll.Float64() < doubleEchoChance {
			n = 2
		}
		tl := s.rec.Seal(s.player.Character)
		for i := 0; i < n; i++ {
			s.nextEchoID++
			s.echoes = append(s.echoes, &Echo{
				ID:       s.nextEchoID,
				Radius:   echoRadius,
				Timeline: tl,
			})
			s.simLog.Add(s.tick, fmt.Sprintf("E%d", s.nextEchoID), "echo", "spawn",
				fmt.Sprintf("%d frames as %s", tl.Len(), tl.Character()), float64(tl.Len()))
		}
	}

	s.addScore(cycleClearBonus)
	s.simLog.Add(s.tick, "--", "round", "clear", fmt.Sprintf("round %d", s.round), float64(s.score))
}

// beginNextRound is the Ending → Active transition.
func (s *Sim) beginNextRound() {
	s.round++
	s.quota += quotaGrowth
	s.resetCycle()
	s.pres.UpdateRound(s.round)
	s.simLog.Add(s.tick, "--", "round", "start", fmt.Sprintf("round %d quota %d", s.round, s.quota), float64(s.round))
	s.log.Debug().Int("round", s.round).Int("echoes", len(s.echoes)).Msg("round started")
}

// populateWave spawns the boss on boss rounds and tops the enemy list up by
// the current quota, capped at maxEnemies live enemies.
func (s *Sim) populateWave() {
	if IsBossRound(s.round) {
		hp := BossHP(s.round)
		s.boss = &Boss{
			Pos:    vmath.V(s.spawn.Float64()*s.width, s.spawn.Float64()*s.height),
			Radius: bossRadius,
			HP:     hp,
			MaxHP:  hp,
			FireCD: bossFirstVolley,
		}
		s.simLog.Add(s.tick, "BOSS", "round", "boss_spawn", fmt.Sprintf("hp %d", hp), float64(hp))
	}

	n := max(0, min(maxEnemies-len(s.enemies), s.quota))
	edge := s.cat.EdgeSpawn()
	for i := 0; i < n; i++ {
		kind := EnemyKind(int(s.spawn.Float64() * float64(enemyKindCount)))
		if kind >= enemyKindCount {
			kind = enemyKindCount - 1
		}
		var pos vmath.Vec2
		if edge {
			pos = EdgeSpawnPoint(s.spawn, s.width, s.height)
		} else {
			pos, _ = SafeCentreSpawnPoint(s.spawn, s.width, s.height, enemyRadius)
		}
		s.nextEnemyID++
		e := &Enemy{
			ID:     s.nextEnemyID,
			Kind:   kind,
			Pos:    pos,
			Radius: enemyRadius,
			HP:     kind.BaseHP(),
			MaxHP:  kind.BaseHP(),
		}
		if kind.Wanders() {
			ang := s.spawn.Float64() * 2 * math.Pi
			spd := wanderSpeedMin + s.spawn.Float64()*wanderSpeedSpread
			e.Vel = vmath.V(math.Cos(ang)*spd, math.Sin(ang)*spd)
			e.WanderCD = wanderIntervalMin + s.spawn.Float64()*wanderIntervalSpan
		}
		s.enemies = append(s.enemies, e)
	}
}

// EdgeSpawnPoint picks one of the four sides (0 top, 1 right, 2 bottom,
// 3 left) and a point in the band between edgeMargin and edgeMargin+edgeBand
// from that side.
func EdgeSpawnPoint(r Rand, w, h float64) vmath.Vec2 {
	side := int(r.Float64() * 4)
	switch side {
	case 0:
		return vmath.V(edgeMargin+r.Float64()*(w-edgeMargin*2), edgeMargin+r.Float64()*edgeBand)
	case 1:
		return vmath.V(w-edgeMargin-r.Float64()*edgeBand, edgeMargin+r.Float64()*(h-edgeMargin*2))
	case 2:
		return vmath.V(edgeMargin+r.Float64()*(w-edgeMargin*2), h-edgeMargin-r.Float64()*edgeBand)
	default:
		return vmath.V(edgeMargin+r.Float64()*edgeBand, edgeMargin+r.Float64()*(h-edgeMargin*2))
	}
}

// SafeCentreSpawnPoint samples inside [rad, w-rad]×[rad, h-rad], rejecting
// points closer than safeCentreFrac×min(w,h) to the centre. After
// maxSpawnRejection rejections the next sample is accepted as is. It returns
// the point and the number of samples drawn.
func SafeCentreSpawnPoint(r Rand, w, h, rad float64) (vmath.Vec2, int) {
	safe := math.Min(w, h) * safeCentreFrac
	c := vmath.V(w/2, h/2)
	for attempt := 1; ; attempt++ {
		p := vmath.V(rad+r.Float64()*(w-rad*2), rad+r.Float64()*(h-rad*2))
		if attempt > maxSpawnRejection || vmath.DistSq(p, c) >= safe*safe {
			return p, attempt
		}
	}
}
