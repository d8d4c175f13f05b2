package game

import (
	"math"

	"github.com/Garsondee/Echo-Arena/internal/catalog"
	"github.com/Garsondee/Echo-Arena/internal/vmath"
)

// EnemyKind is the closed set of enemy behaviours.
type EnemyKind int

const (
	Chaser EnemyKind = iota
	Shooter
	DoubleShooter
	FastChaser
	QuadShooter
	enemyKindCount
)

func (k EnemyKind) String() string {
	switch k {
	case Chaser:
		return "chaser"
	case Shooter:
		return "shooter"
	case DoubleShooter:
		return "double_shooter"
	case FastChaser:
		return "fast_chaser"
	case QuadShooter:
		return "quad_shooter"
	default:
		return "unknown"
	}
}

// Wanders reports whether the kind drifts and shoots instead of chasing.
func (k EnemyKind) Wanders() bool {
	switch k {
	case Shooter, DoubleShooter, QuadShooter:
		return true
	case Chaser, FastChaser:
		return false
	default:
		return false
	}
}

// BaseHP is the spawn hit points of the kind.
func (k EnemyKind) BaseHP() int {
	switch k {
	case Chaser:
		return chaserHP
	default:
		return shooterHP
	}
}

// Speed is the chase speed before the mutator enemy scale.
func (k EnemyKind) Speed() float64 {
	switch k {
	case FastChaser:
		return fastChaserSpeed
	default:
		return enemyBaseSpeed + float64(k)*enemySpeedPerKind
	}
}

// volley returns the firing directions around the unit aim d.
func (k EnemyKind) volley(d vmath.Vec2) []vmath.Vec2 {
	switch k {
	case Shooter:
		return []vmath.Vec2{d}
	case DoubleShooter:
		return []vmath.Vec2{d.Rotate(doubleSpread), d.Rotate(-doubleSpread)}
	case QuadShooter:
		return []vmath.Vec2{d, d.Rotate(quadSpread), d.Rotate(-quadSpread), d.Rotate(2 * quadSpread)}
	case Chaser, FastChaser:
		return nil
	default:
		return nil
	}
}

// Player is the live, input-driven actor.
type Player struct {
	Pos       vmath.Vec2
	Radius    float64
	Speed     float64
	Character catalog.CharacterID
	DashCD    float64
	ShootCD   float64
	Aim       vmath.Vec2 // last unit aim direction, for drawing
}

// Echo replays a recorded timeline.
type Echo struct {
	ID       int
	Pos      vmath.Vec2
	Radius   float64
	ShootCD  float64
	DashCD   float64
	Timeline Timeline
}

// Enemy is one wave member.
type Enemy struct {
	ID       int
	Kind     EnemyKind
	Pos      vmath.Vec2
	Vel      vmath.Vec2 // wanderers only
	Radius   float64
	HP       int
	MaxHP    int
	FireCD   float64
	WanderCD float64
}

// Boss appears on every tenth round.
type Boss struct {
	Pos    vmath.Vec2
	Radius float64
	HP     int
	MaxHP  int
	FireCD float64
}

// BossHP returns the boss hit points for round: 25 + floor(round/10 - 1)*10.
func BossHP(round int) int {
	tier := round/bossRoundInterval - 1
	if tier < 0 {
		tier = 0
	}
	return bossBaseHP + tier*bossHPPerTier
}

// IsBossRound reports whether round spawns a boss.
func IsBossRound(round int) bool {
	return round > 0 && round%bossRoundInterval == 0
}

// Projectile is a friendly or hostile bolt. Vel is a unit direction times the
// projectile speed.
type Projectile struct {
	Pos      vmath.Vec2
	Vel      vmath.Vec2
	Radius   float64
	Life     float64
	Friendly bool
	Damage   int  // friendly only
	FromBoss bool // hostile only, cosmetic
}

// Spent reports whether the projectile can no longer hit anything.
func (p *Projectile) Spent() bool { return p.Life <= 0 }

func newProjectile(pos, dir vmath.Vec2, friendly bool) Projectile {
	speed, life := hostileSpeed, hostileLife
	if friendly {
		speed, life = friendlySpeed, friendlyLife
	}
	p := Projectile{
		Pos:      pos,
		Vel:      dir.Normalize().Scale(speed),
		Radius:   projectileRadius,
		Life:     life,
		Friendly: friendly,
	}
	if friendly {
		p.Damage = baseDamage
	}
	return p
}

// ParticleColor tags the cosmetic burst colour.
type ParticleColor int

const (
	ParticleGold ParticleColor = iota // enemy kill
	ParticleWhite                     // boss kill
)

// Particle is cosmetic only.
type Particle struct {
	Pos   vmath.Vec2
	Life  float64
	Color ParticleColor
}

// firePattern returns the unit directions a character fires around aim.
func firePattern(p catalog.FirePattern, aim vmath.Vec2) []vmath.Vec2 {
	switch p {
	case catalog.FireForward:
		return []vmath.Vec2{aim}
	case catalog.FireForwardBack:
		return []vmath.Vec2{aim, aim.Neg()}
	case catalog.FireCross:
		return []vmath.Vec2{aim, aim.Neg(), aim.Rotate(math.Pi / 2), aim.Rotate(-math.Pi / 2)}
	default:
		return []vmath.Vec2{aim}
	}
}
