package game

// --- Cycle / recorder ---

const (
	CycleDuration = 10.0     // time units per cycle
	FixedStep     = 1.0 / 60 // recorder sample interval
	MaxDelta      = 0.033    // largest frame delta accepted by Step and the recorder
)

// --- Player ---

const (
	playerRadius    = 14.0
	playerBaseSpeed = 200.0 // px per time unit before catalog and mutator scaling
	playerLives     = 3
	maxLives        = 5    // vampire cap
	shootCooldown   = 0.18 // between volleys
	dashDistance    = 220.0
	dashCooldown    = 1.0
)

// --- Echo ---

const echoRadius = 10.0

// --- Enemies ---

const (
	enemyRadius        = 14.0
	enemyBaseSpeed     = 80.0 // plus enemySpeedPerKind × kind
	enemySpeedPerKind  = 20.0
	fastChaserSpeed    = 140.0
	chaserHP           = 5
	shooterHP          = 3
	enemyFireInterval  = 1.2
	wanderSpeedMin     = 40.0
	wanderSpeedSpread  = 30.0
	wanderIntervalMin  = 0.8
	wanderIntervalSpan = 0.8
	wanderTurnRange    = 0.7  // total heading perturbation, centred on zero
	doubleSpread       = 0.25 // rad, DoubleShooter
	quadSpread         = 0.35 // rad, QuadShooter
	maxEnemies         = 25
	initialQuota       = 3
	quotaGrowth        = 2
)

// --- Boss ---

const (
	bossRadius        = 26.0
	bossSpeed         = 60.0
	bossFirstVolley   = 1.2
	bossFireInterval  = 1.0
	bossSpread        = 0.35
	bossRoundInterval = 10
	bossBaseHP        = 25
	bossHPPerTier     = 10
)

// --- Projectiles ---

const (
	projectileRadius    = 4.0
	friendlySpeed       = 460.0
	friendlyLife        = 2.0
	hostileSpeed        = 260.0
	hostileLife         = 3.0
	projectileCullSlack = 20.0 // px beyond the arena before a projectile is dropped
	baseDamage          = 1
)

// --- Score / progression ---

const (
	killScore        = 50
	bossScore        = 500
	cycleClearBonus  = 100
	scorePerXP       = 100
	xpPerMultStep    = 1000
	multPerStep      = 0.1
	maxMultBonus     = 1.0
	doubleEchoChance = 0.3
	vampireChance    = 0.2
	megaChance       = 0.8
	doubleKillChance = 0.3
)

// --- Spawn placement ---

const (
	edgeMargin        = 40.0
	edgeBand          = 90.0
	safeCentreFrac    = 0.18 // of min(W,H)
	maxSpawnRejection = 30
)

// --- Particles ---

const (
	particleLife      = 0.5
	killParticles     = 8
	bossKillParticles = 32
)
