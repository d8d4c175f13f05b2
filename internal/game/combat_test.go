package game

import (
	"math"
	"math/rand"
	"testing"

	"github.com/Garsondee/Echo-Arena/internal/audio"
	"github.com/Garsondee/Echo-Arena/internal/catalog"
	"github.com/Garsondee/Echo-Arena/internal/mutator"
	"github.com/Garsondee/Echo-Arena/internal/vmath"
)

func TestRollDamage(t *testing.T) {
	tests := []struct {
		name             string
		mega, doubleKill bool
		roll             float64
		want             int
	}{
		{"mega hit", true, false, 0.5, 2},
		{"mega miss", true, false, 0.85, 1},
		{"double kill hit", false, true, 0.2, 2},
		{"double kill miss", false, true, 0.5, 1},
		{"mega wins over double kill", true, true, 0.5, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RollDamage(1, tt.mega, tt.doubleKill, constRand(tt.roll)); got != tt.want {
				t.Fatalf("RollDamage = %d, want %d", got, tt.want)
			}
		})
	}
	t.Run("no upgrades draws nothing", func(t *testing.T) {
		if got := RollDamage(1, false, false, noRand{t}); got != 1 {
			t.Fatalf("RollDamage = %d", got)
		}
	})
}

// placeEnemy replaces the wave with a single enemy at pos.
func placeEnemy(s *Sim, kind EnemyKind, pos vmath.Vec2, hp int) *Enemy {
	e := &Enemy{ID: 99, Kind: kind, Pos: pos, Radius: enemyRadius, HP: hp, MaxHP: hp, FireCD: 10, WanderCD: 10}
	s.enemies = []*Enemy{e}
	return e
}

func TestMegaMuscles_DoublesShotDamage(t *testing.T) {
	h := newHarness(t, WithUpgrades(catalog.MegaMuscles), WithRollRand(constRand(0)))
	s := h.Sim
	e := placeEnemy(s, Chaser, vmath.V(100, 100), 5)
	s.shots = []Projectile{newProjectile(e.Pos, vmath.V(1, 0), true)}

	s.resolveCollisions()
	if e.HP != 3 {
		t.Fatalf("enemy hp = %d, want 3", e.HP)
	}
	if len(s.shots) != 0 {
		t.Fatalf("projectile survived the hit: %d", len(s.shots))
	}
}

func TestKill_ScoresAndRemoves(t *testing.T) {
	h := newHarness(t, WithVerbose(true))
	s := h.Sim
	e := placeEnemy(s, Shooter, vmath.V(100, 100), 1)
	s.shots = []Projectile{
		newProjectile(e.Pos, vmath.V(1, 0), true),
		newProjectile(e.Pos, vmath.V(-1, 0), true),
	}

	s.resolveCollisions()
	if len(s.enemies) != 0 {
		t.Fatalf("dead enemy not removed: %d", len(s.enemies))
	}
	if s.Kills() != 1 || s.Score() != killScore {
		t.Fatalf("kills=%d score=%d", s.Kills(), s.Score())
	}
	// The second shot must not hit a dead enemy.
	if len(s.shots) != 1 {
		t.Fatalf("second shot consumed: %d left", len(s.shots))
	}
	if len(s.particle) != killParticles {
		t.Fatalf("particles = %d", len(s.particle))
	}
	if h.Audio.Count(audio.EnemyDown) != 1 {
		t.Fatal("enemy down sound not played")
	}
	if h.SimLog.CountCategory("combat", "hit") != 1 {
		t.Fatalf("verbose hit entries = %d", h.SimLog.CountCategory("combat", "hit"))
	}
}

func TestBoss_KilledByShots(t *testing.T) {
	h := newHarness(t)
	s := h.Sim
	s.enemies = nil
	s.boss = &Boss{Pos: vmath.V(100, 100), Radius: bossRadius, HP: 1, MaxHP: 25, FireCD: 10}
	s.shots = []Projectile{newProjectile(s.boss.Pos, vmath.V(1, 0), true)}

	s.resolveCollisions()
	if s.boss != nil {
		t.Fatal("boss survived")
	}
	if s.Score() != bossScore || len(s.particle) != bossKillParticles {
		t.Fatalf("score=%d particles=%d", s.Score(), len(s.particle))
	}
	if !h.SimLog.HasEntry("combat", "boss_kill", "round 1") {
		t.Fatal("boss kill not logged")
	}
}

func TestBossContact_InstantKill(t *testing.T) {
	for _, lives := range []int{1, 3} {
		h := newHarness(t)
		s := h.Sim
		s.lives = lives
		s.boss = &Boss{Pos: s.player.Pos, Radius: bossRadius, HP: 25, MaxHP: 25, FireCD: 10}

		h.RunTicks(1)
		if s.Lives() != 0 {
			t.Fatalf("lives %d → %d, want exactly 0", lives, s.Lives())
		}
		if s.State() != RunGameOver || h.Presenter.GameOver == nil {
			t.Fatalf("state = %s", s.State())
		}
		if !h.SimLog.HasEntry("combat", "instant_kill", "boss") {
			t.Fatal("instant kill not logged")
		}
	}
}

func TestBossBullet_NormalLifeLoss(t *testing.T) {
	h := newHarness(t)
	s := h.Sim
	s.enemies = nil
	p := newProjectile(s.player.Pos, vmath.V(1, 0), false)
	p.FromBoss = true
	s.hostile = []Projectile{p}

	s.resolveCollisions()
	if s.Lives() != 2 || s.State() != RunRunning {
		t.Fatalf("lives=%d state=%s", s.Lives(), s.State())
	}
	if len(s.hostile) != 0 {
		t.Fatal("projectile not consumed")
	}
}

func TestHostileBolts_EachCostsALife(t *testing.T) {
	h := newHarness(t)
	s := h.Sim
	s.enemies = nil
	s.hostile = []Projectile{
		newProjectile(s.player.Pos, vmath.V(1, 0), false),
		newProjectile(s.player.Pos, vmath.V(-1, 0), false),
	}

	s.resolveCollisions()
	if s.Lives() != 1 || h.Presenter.Lives != 1 {
		t.Fatalf("lives=%d presenter=%d after two bolts, want 1", s.Lives(), h.Presenter.Lives)
	}
	if len(s.hostile) != 0 {
		t.Fatalf("bolts left = %d", len(s.hostile))
	}

	s.hostile = []Projectile{newProjectile(s.player.Pos, vmath.V(0, 1), false)}
	s.resolveCollisions()
	if s.Lives() != 0 || s.State() != RunGameOver {
		t.Fatalf("lives=%d state=%s after third bolt", s.Lives(), s.State())
	}
	if n := h.SimLog.CountCategory("combat", "life_lost"); n != 3 {
		t.Fatalf("life_lost entries = %d, want 3", n)
	}
}

func TestOverlappingChasers_DrainEveryStep(t *testing.T) {
	h := newHarness(t)
	s := h.Sim
	s.hostile = nil
	a := &Enemy{ID: 1, Kind: Chaser, Pos: s.player.Pos, Radius: enemyRadius, HP: 5, MaxHP: 5}
	b := &Enemy{ID: 2, Kind: Chaser, Pos: s.player.Pos, Radius: enemyRadius, HP: 5, MaxHP: 5}
	s.enemies = []*Enemy{a, b}

	s.resolveCollisions()
	if s.Lives() != 1 {
		t.Fatalf("lives = %d after one step with two chasers, want 1", s.Lives())
	}
	if len(s.enemies) != 2 {
		t.Fatalf("contact removed enemies: %d left", len(s.enemies))
	}

	s.resolveCollisions()
	if s.Lives() != 0 || s.State() != RunGameOver {
		t.Fatalf("lives=%d state=%s after second step", s.Lives(), s.State())
	}
}

func TestLastLife_EndsRun(t *testing.T) {
	h := newHarness(t)
	s := h.Sim
	s.lives = 1
	placeEnemy(s, Chaser, s.player.Pos, 5)
	h.RunTicks(1)
	if s.State() != RunGameOver || s.Lives() != 0 {
		t.Fatalf("state=%s lives=%d", s.State(), s.Lives())
	}
}

func TestVampire_CappedAtFive(t *testing.T) {
	h := newHarness(t, WithUpgrades(catalog.Vampire), WithRollRand(constRand(0)))
	s := h.Sim

	s.lives = 3
	s.killEnemy(&Enemy{ID: 1, Kind: Chaser})
	if s.Lives() != 4 {
		t.Fatalf("lives = %d, want 4", s.Lives())
	}
	s.lives = maxLives
	s.killEnemy(&Enemy{ID: 2, Kind: Chaser})
	if s.Lives() != maxLives {
		t.Fatalf("lives = %d, want cap %d", s.Lives(), maxLives)
	}
	if n := h.SimLog.CountCategory("upgrade", "vampire"); n != 1 {
		t.Fatalf("vampire entries = %d", n)
	}
}

func TestVampire_InactiveDrawsNothing(t *testing.T) {
	h := newHarness(t, WithRollRand(noRand{t}))
	h.Sim.killEnemy(&Enemy{ID: 1, Kind: Chaser})
	if h.Sim.Lives() != 3 {
		t.Fatalf("lives = %d", h.Sim.Lives())
	}
}

func TestShooters_FireVolleys(t *testing.T) {
	tests := []struct {
		kind EnemyKind
		want int
	}{
		{Chaser, 0},
		{Shooter, 1},
		{DoubleShooter, 2},
		{QuadShooter, 4},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			h := newHarness(t)
			s := h.Sim
			e := placeEnemy(s, tt.kind, vmath.V(100, 100), 3)
			e.FireCD = 0
			s.hostile = nil

			s.stepEnemies(FixedStep)
			if len(s.hostile) != tt.want {
				t.Fatalf("volley = %d, want %d", len(s.hostile), tt.want)
			}
			if tt.kind.Wanders() && e.FireCD != enemyFireInterval {
				t.Fatalf("fire cooldown = %v", e.FireCD)
			}
		})
	}
}

func TestWanderers_StayInArena(t *testing.T) {
	h := newHarness(t)
	s := h.Sim
	e := placeEnemy(s, Shooter, vmath.V(5, 5), 3)
	e.Vel = vmath.V(-60, -60)

	s.stepEnemies(0.03)
	if e.Pos.X < e.Radius || e.Pos.Y < e.Radius {
		t.Fatalf("wanderer left the arena: %+v", e.Pos)
	}
	if e.Vel.X <= 0 || e.Vel.Y <= 0 {
		t.Fatalf("velocity not reflected: %+v", e.Vel)
	}
}

func TestRicochet(t *testing.T) {
	presets := []mutator.Preset{
		{Kind: mutator.Ricochet, Name: "Ricochet", Speed: 1, Time: 1, Enemy: 1},
		{Kind: mutator.None, Name: "None", Speed: 1, Time: 1, Enemy: 1},
	}
	h := newHarness(t, WithMutators(presets), WithXP(mutator.UnlockXP))
	s := h.Sim
	w, _ := s.Size()

	s.shots = []Projectile{newProjectile(vmath.V(w-1, 50), vmath.V(1, 0), true)}
	s.stepProjectiles(FixedStep)
	if len(s.shots) != 1 || s.shots[0].Vel.X >= 0 || s.shots[0].Pos.X != w {
		t.Fatalf("shot did not bounce: %+v", s.shots)
	}

	s.CycleMutator()
	s.shots = []Projectile{newProjectile(vmath.V(w-1, 50), vmath.V(1, 0), true)}
	for i := 0; i < 10; i++ {
		s.stepProjectiles(FixedStep)
	}
	if len(s.shots) != 0 {
		t.Fatalf("shot not culled past the edge: %+v", s.shots)
	}
}

func TestHostileProjectiles_DoNotRicochet(t *testing.T) {
	presets := []mutator.Preset{{Kind: mutator.Ricochet, Name: "Ricochet", Speed: 1, Time: 1, Enemy: 1}}
	h := newHarness(t, WithMutators(presets))
	s := h.Sim
	w, _ := s.Size()
	s.hostile = []Projectile{newProjectile(vmath.V(w-1, 50), vmath.V(1, 0), false)}
	s.stepProjectiles(FixedStep)
	if s.hostile[0].Vel.X <= 0 {
		t.Fatal("hostile projectile bounced")
	}
}

func TestFirePattern_ByCharacter(t *testing.T) {
	tests := []struct {
		ch   catalog.CharacterID
		want int
	}{
		{catalog.Sher, 1},
		{catalog.Dubsher, 2},
		{catalog.Quadsher, 4},
	}
	for _, tt := range tests {
		t.Run(tt.ch.String(), func(t *testing.T) {
			h := newHarness(t, WithCharacter(tt.ch), WithPolicy(calm(func(s *Sim, tick int) Input {
				in := Idle(s, tick)
				in.Aim = vmath.V(0, 0)
				in.Shoot = true
				return in
			})))
			h.RunTicks(1)
			if len(h.Sim.shots) != tt.want {
				t.Fatalf("bolts = %d, want %d", len(h.Sim.shots), tt.want)
			}
			if h.Audio.Count(audio.Shoot) != 1 {
				t.Fatal("shoot sound not played")
			}
		})
	}
}

func TestShoot_ZeroAimFiresInPlace(t *testing.T) {
	h := newHarness(t, WithPolicy(calm(func(s *Sim, tick int) Input {
		in := Idle(s, tick)
		in.Shoot = true
		return in
	})))
	h.RunTicks(1)
	if len(h.Sim.shots) != 1 || h.Sim.shots[0].Vel != (vmath.Vec2{}) {
		t.Fatalf("shots = %+v", h.Sim.shots)
	}
}

func TestDash_MovesAndCoolsDown(t *testing.T) {
	h := newHarness(t, WithPolicy(calm(func(s *Sim, tick int) Input {
		in := holdRight(s, tick)
		in.Dash = true
		return in
	})))
	start := h.Sim.player.Pos.X
	h.RunTicks(1)
	moved := h.Sim.player.Pos.X - start
	if moved < dashDistance {
		t.Fatalf("dash moved %v", moved)
	}
	h.RunTicks(1)
	if second := h.Sim.player.Pos.X - start - moved; second > dashDistance/2 {
		t.Fatalf("dash repeated during cooldown: %v", second)
	}
	if h.Audio.Count(audio.Dash) != 1 {
		t.Fatalf("dash sounds = %d", h.Audio.Count(audio.Dash))
	}
}

func TestSpeedUpgrade(t *testing.T) {
	h := newHarness(t, WithUpgrades(catalog.Speed))
	if got := h.Sim.player.Speed; math.Abs(got-playerBaseSpeed*1.1) > 1e-9 {
		t.Fatalf("speed = %v", got)
	}
}

func TestSafeCentreSpawnPoint(t *testing.T) {
	w, h := 960.0, 600.0
	p, n := SafeCentreSpawnPoint(constRand(0.5), w, h, enemyRadius)
	if n != maxSpawnRejection+1 {
		t.Fatalf("attempts = %d, want %d", n, maxSpawnRejection+1)
	}
	if p != vmath.V(w/2, h/2) {
		t.Fatalf("forced sample = %+v, want centre", p)
	}

	p, n = SafeCentreSpawnPoint(constRand(0), w, h, enemyRadius)
	if n != 1 || p != vmath.V(enemyRadius, enemyRadius) {
		t.Fatalf("corner sample = %+v after %d attempts", p, n)
	}

	r := rand.New(rand.NewSource(7))
	safe := min(w, h) * safeCentreFrac
	for i := 0; i < 500; i++ {
		p, n := SafeCentreSpawnPoint(r, w, h, enemyRadius)
		if n <= maxSpawnRejection && vmath.DistSq(p, vmath.V(w/2, h/2)) < safe*safe {
			t.Fatalf("sample %d at %+v inside the safe zone", i, p)
		}
		if p.X < enemyRadius || p.X > w-enemyRadius || p.Y < enemyRadius || p.Y > h-enemyRadius {
			t.Fatalf("sample %d at %+v outside the arena", i, p)
		}
	}
}

func TestEdgeSpawnPoint_InBand(t *testing.T) {
	w, h := 960.0, 600.0
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		p := EdgeSpawnPoint(r, w, h)
		if p.X < edgeMargin || p.X > w-edgeMargin || p.Y < edgeMargin || p.Y > h-edgeMargin {
			t.Fatalf("sample %d at %+v outside the margin", i, p)
		}
		inBand := p.Y <= edgeMargin+edgeBand || p.X >= w-edgeMargin-edgeBand ||
			p.Y >= h-edgeMargin-edgeBand || p.X <= edgeMargin+edgeBand
		if !inBand {
			t.Fatalf("sample %d at %+v not near any edge", i, p)
		}
	}
}

func TestDistanceUpgrade_UsesEdgeSpawn(t *testing.T) {
	h := newHarness(t, WithUpgrades(catalog.Distance))
	w, ht := h.Sim.Size()
	for _, e := range h.Sim.enemies {
		p := e.Pos
		inBand := p.Y <= edgeMargin+edgeBand || p.X >= w-edgeMargin-edgeBand ||
			p.Y >= ht-edgeMargin-edgeBand || p.X <= edgeMargin+edgeBand
		if !inBand {
			t.Fatalf("enemy %d at %+v not spawned on an edge", e.ID, p)
		}
	}
}
