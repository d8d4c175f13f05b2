package game

import (
	"fmt"

	"github.com/Garsondee/Echo-Arena/internal/audio"
	"github.com/Garsondee/Echo-Arena/internal/catalog"
	"github.com/Garsondee/Echo-Arena/internal/vmath"
)

// RollDamage applies the damage upgrades to base. Mega muscles doubles on
// r < 0.8; otherwise double kill doubles on r < 0.3. r is only drawn when
// one of them is active.
func RollDamage(base int, mega, doubleKill bool, r Rand) int {
	switch {
	case mega:
		if r.Float64() < megaChance {
			return base * 2
		}
	case doubleKill:
		if r.Float64() < doubleKillChance {
			return base * 2
		}
	}
	return base
}

func (s *Sim) rollDamage(base int) int {
	return RollDamage(base, s.cat.Active(catalog.MegaMuscles), s.cat.Active(catalog.DoubleKill), s.roll)
}

func (s *Sim) stepEnemies(dt float64) {
	target := s.player.Pos
	scale := s.muts.EnemySpeedScale()
	for _, e := range s.enemies {
		d := target.Sub(e.Pos).Normalize()

		if !e.Kind.Wanders() {
			e.Pos = s.clampInside(e.Pos.Add(d.Scale(e.Kind.Speed()*scale*dt)), e.Radius)
			continue
		}

		s.wander(e, dt, scale)

		e.FireCD -= dt
		if e.FireCD <= 0 {
			// Off-screen shooters hold fire.
			if s.insideArena(e.Pos) {
				for _, dir := range e.Kind.volley(d) {
					s.hostile = append(s.hostile, newProjectile(e.Pos, dir, false))
				}
			}
			e.FireCD = enemyFireInterval
		}
	}
}

// wander drifts e along its velocity, bouncing off the arena edges, and
// perturbs its heading on a random cadence.
func (s *Sim) wander(e *Enemy, dt, scale float64) {
	e.Pos = e.Pos.Add(e.Vel.Scale(scale * dt))
	r := e.Radius
	if e.Pos.X < r {
		e.Pos.X, e.Vel.X = r, -e.Vel.X
	}
	if e.Pos.X > s.width-r {
		e.Pos.X, e.Vel.X = s.width-r, -e.Vel.X
	}
	if e.Pos.Y < r {
		e.Pos.Y, e.Vel.Y = r, -e.Vel.Y
	}
	if e.Pos.Y > s.height-r {
		e.Pos.Y, e.Vel.Y = s.height-r, -e.Vel.Y
	}

	e.WanderCD -= dt
	if e.WanderCD <= 0 {
		turn := (s.spawn.Float64() - 0.5) * wanderTurnRange
		e.Vel = e.Vel.Rotate(turn)
		e.WanderCD = wanderIntervalMin + s.spawn.Float64()*wanderIntervalSpan
	}
}

func (s *Sim) stepBoss(dt float64) {
	b := s.boss
	if b == nil {
		return
	}
	d := s.player.Pos.Sub(b.Pos).Normalize()
	b.Pos = b.Pos.Add(d.Scale(bossSpeed * s.muts.EnemySpeedScale() * dt))

	b.FireCD -= dt
	if b.FireCD <= 0 {
		for _, dir := range []vmath.Vec2{d, d.Rotate(bossSpread), d.Rotate(-bossSpread)} {
			p := newProjectile(b.Pos, dir, false)
			p.FromBoss = true
			s.hostile = append(s.hostile, p)
		}
		b.FireCD = bossFireInterval
	}
}

func (s *Sim) stepProjectiles(dt float64) {
	ricochet := s.muts.Current().Ricochet()
	for i := range s.shots {
		p := &s.shots[i]
		p.Pos = p.Pos.Add(p.Vel.Scale(dt))
		p.Life -= dt
		if ricochet {
			if p.Pos.X < 0 || p.Pos.X > s.width {
				p.Vel.X = -p.Vel.X
				p.Pos.X = vmath.Clamp(p.Pos.X, 0, s.width)
			}
			if p.Pos.Y < 0 || p.Pos.Y > s.height {
				p.Vel.Y = -p.Vel.Y
				p.Pos.Y = vmath.Clamp(p.Pos.Y, 0, s.height)
			}
		}
	}
	for i := range s.hostile {
		p := &s.hostile[i]
		p.Pos = p.Pos.Add(p.Vel.Scale(dt))
		p.Life -= dt
	}
	s.shots = s.cull(s.shots)
	s.hostile = s.cull(s.hostile)
}

// cull drops spent projectiles and those beyond the arena slack.
func (s *Sim) cull(ps []Projectile) []Projectile {
	kept := ps[:0]
	for _, p := range ps {
		if p.Spent() {
			continue
		}
		if p.Pos.X < -projectileCullSlack || p.Pos.X > s.width+projectileCullSlack ||
			p.Pos.Y < -projectileCullSlack || p.Pos.Y > s.height+projectileCullSlack {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// resolveCollisions runs every contact check for the step. It returns early
// once the run ends.
func (s *Sim) resolveCollisions() {
	p := s.player

	// Boss contact bypasses the life-loss path.
	if s.boss != nil && vmath.CirclesOverlap(p.Pos, p.Radius, s.boss.Pos, s.boss.Radius) {
		s.instantKill("boss contact")
		return
	}

	for _, e := range s.enemies {
		if vmath.CirclesOverlap(p.Pos, p.Radius, e.Pos, e.Radius) {
			s.loseLife("enemy contact")
			if s.state != RunRunning {
				return
			}
		}
	}

	for i := range s.shots {
		b := &s.shots[i]
		if b.Spent() {
			continue
		}
		for _, e := range s.enemies {
			if e.HP <= 0 || !vmath.CirclesOverlap(b.Pos, b.Radius, e.Pos, e.Radius) {
				continue
			}
			b.Life = 0
			dmg := s.rollDamage(b.Damage)
			e.HP -= dmg
			s.simLog.AddVerbose(s.tick, enemyLabel(e), "combat", "hit", fmt.Sprintf("dmg %d hp %d", dmg, e.HP), float64(dmg))
			if e.HP <= 0 {
				s.killEnemy(e)
			}
			break
		}
		if s.boss != nil && !b.Spent() && vmath.CirclesOverlap(b.Pos, b.Radius, s.boss.Pos, s.boss.Radius) {
			b.Life = 0
			dmg := s.rollDamage(b.Damage)
			s.boss.HP -= dmg
			s.simLog.AddVerbose(s.tick, "BOSS", "combat", "hit", fmt.Sprintf("dmg %d hp %d", dmg, s.boss.HP), float64(dmg))
			if s.boss.HP <= 0 {
				s.killBoss()
			}
		}
	}
	s.compactEnemies()

	for i := range s.hostile {
		b := &s.hostile[i]
		if b.Spent() || !vmath.CirclesOverlap(b.Pos, b.Radius, p.Pos, p.Radius) {
			continue
		}
		b.Life = 0
		s.loseLife("projectile")
		if s.state != RunRunning {
			return
		}
	}

	s.shots = s.cull(s.shots)
	s.hostile = s.cull(s.hostile)
}

func (s *Sim) compactEnemies() {
	kept := s.enemies[:0]
	for _, e := range s.enemies {
		if e.HP > 0 {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(s.enemies); i++ {
		s.enemies[i] = nil
	}
	s.enemies = kept
}

func (s *Sim) killEnemy(e *Enemy) {
	s.kills++
	s.addScore(killScore)
	s.burst(e.Pos, killParticles, ParticleGold)
	s.sfx.Play(audio.EnemyDown)
	s.simLog.Add(s.tick, enemyLabel(e), "combat", "kill", e.Kind.String(), float64(s.kills))

	if s.cat.Active(catalog.Vampire) && s.roll.Float64() < vampireChance {
		if s.lives < maxLives {
			s.lives++
			s.pres.UpdateLives(s.lives)
			s.pres.Toast("+1 life")
			s.simLog.Add(s.tick, "--", "upgrade", "vampire", "+1 life", float64(s.lives))
		}
	}
}

func (s *Sim) killBoss() {
	pos := s.boss.Pos
	s.boss = nil
	s.addScore(bossScore)
	s.burst(pos, bossKillParticles, ParticleWhite)
	s.sfx.Play(audio.BossDown)
	s.pres.Toast("Boss defeated!")
	s.simLog.Add(s.tick, "BOSS", "combat", "boss_kill", fmt.Sprintf("round %d", s.round), float64(s.round))
}

func (s *Sim) burst(at vmath.Vec2, n int, c ParticleColor) {
	for i := 0; i < n; i++ {
		s.particle = append(s.particle, Particle{Pos: at, Life: particleLife, Color: c})
	}
}

// loseLife is the normal damage path. Every call costs one life, so two
// overlapping chasers drain two lives in the same step.
func (s *Sim) loseLife(cause string) {
	s.lives = max(0, s.lives-1)
	s.pres.UpdateLives(s.lives)
	s.sfx.Play(audio.Hit)
	s.simLog.Add(s.tick, "P", "combat", "life_lost", cause, float64(s.lives))
	if s.lives <= 0 {
		s.gameOver()
	}
}

// instantKill sets lives to zero directly, skipping the decrement.
func (s *Sim) instantKill(cause string) {
	s.lives = 0
	s.pres.UpdateLives(s.lives)
	s.sfx.Play(audio.Hit)
	s.simLog.Add(s.tick, "P", "combat", "instant_kill", cause, 0)
	s.gameOver()
}

func enemyLabel(e *Enemy) string { return fmt.Sprintf("N%d", e.ID) }
