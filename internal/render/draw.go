package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Echo-Arena/internal/catalog"
	"github.com/Garsondee/Echo-Arena/internal/game"
)

// particleFade is the particle lifetime the alpha ramp is scaled against.
const particleFade = 0.5

// hpRingSegments is the polyline resolution of a full HP ring.
const hpRingSegments = 24

// Palette holds the theme-dependent colours of the arena.
type Palette struct {
	Backdrop color.RGBA
	Floor    color.RGBA
	Grid     color.RGBA
	Border   color.RGBA
	Player   color.RGBA
	Echo     color.RGBA
}

var palettes = map[string]Palette{
	"default": {
		Backdrop: color.RGBA{R: 6, G: 6, B: 10, A: 255},
		Floor:    color.RGBA{R: 16, G: 16, B: 26, A: 255},
		Grid:     color.RGBA{R: 28, G: 28, B: 44, A: 255},
		Border:   color.RGBA{R: 90, G: 90, B: 140, A: 255},
		Player:   color.RGBA{R: 120, G: 220, B: 255, A: 255},
		Echo:     color.RGBA{R: 160, G: 140, B: 255, A: 140},
	},
	"neon": {
		Backdrop: color.RGBA{R: 2, G: 0, B: 8, A: 255},
		Floor:    color.RGBA{R: 10, G: 4, B: 22, A: 255},
		Grid:     color.RGBA{R: 60, G: 0, B: 90, A: 255},
		Border:   color.RGBA{R: 0, G: 255, B: 200, A: 255},
		Player:   color.RGBA{R: 0, G: 255, B: 170, A: 255},
		Echo:     color.RGBA{R: 255, G: 0, B: 220, A: 150},
	},
	"mono": {
		Backdrop: color.RGBA{R: 8, G: 8, B: 8, A: 255},
		Floor:    color.RGBA{R: 20, G: 20, B: 20, A: 255},
		Grid:     color.RGBA{R: 45, G: 45, B: 45, A: 255},
		Border:   color.RGBA{R: 160, G: 160, B: 160, A: 255},
		Player:   color.RGBA{R: 230, G: 230, B: 230, A: 255},
		Echo:     color.RGBA{R: 180, G: 180, B: 180, A: 130},
	},
}

// PaletteFor returns the palette of a theme name; unknown names get the
// default.
func PaletteFor(theme string) Palette {
	if p, ok := palettes[theme]; ok {
		return p
	}
	return palettes["default"]
}

var (
	shotColor    = color.RGBA{R: 255, G: 255, B: 200, A: 255}
	hostileColor = color.RGBA{R: 255, G: 110, B: 80, A: 255}
	bossShot     = color.RGBA{R: 230, G: 80, B: 255, A: 255}
	bossColor    = color.RGBA{R: 200, G: 40, B: 120, A: 255}
	ringColor    = color.RGBA{R: 255, G: 255, B: 255, A: 200}
	goldColor    = color.RGBA{R: 255, G: 210, B: 80, A: 255}
	whiteColor   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// enemyColors maps each kind to its fill colour.
func enemyColor(k game.EnemyKind) color.RGBA {
	switch k {
	case game.Chaser:
		return color.RGBA{R: 240, G: 80, B: 80, A: 255}
	case game.Shooter:
		return color.RGBA{R: 255, G: 170, B: 60, A: 255}
	case game.DoubleShooter:
		return color.RGBA{R: 250, G: 220, B: 60, A: 255}
	case game.FastChaser:
		return color.RGBA{R: 255, G: 90, B: 180, A: 255}
	case game.QuadShooter:
		return color.RGBA{R: 120, G: 240, B: 120, A: 255}
	default:
		return whiteColor
	}
}

// lerpColor blends a and b by t in [0,1].
func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	t = math.Max(0, math.Min(1, t))
	mix := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*t) }
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

func withAlpha(c color.RGBA, a float64) color.RGBA {
	c.A = uint8(math.Max(0, math.Min(1, a)) * 255)
	return c
}

// drawArena renders the snapshot's world into screen at (offX, offY).
func drawArena(screen *ebiten.Image, snap game.Snapshot, skin *catalog.Skin, pal Palette, frame, offX, offY int) {
	ox, oy := float32(offX), float32(offY)
	w, h := float32(snap.Width), float32(snap.Height)

	vector.FillRect(screen, ox, oy, w, h, pal.Floor, false)
	drawGrid(screen, offX, offY, int(snap.Width), int(snap.Height), 40, pal.Grid)
	vector.StrokeRect(screen, ox-1, oy-1, w+2, h+2, 2, pal.Border, false)

	for _, p := range snap.Particles {
		c := goldColor
		if p.Color == game.ParticleWhite {
			c = whiteColor
		}
		vector.FillRect(screen, ox+float32(p.Pos.X)-2, oy+float32(p.Pos.Y)-2, 4, 4, withAlpha(c, p.Life/particleFade), false)
	}

	for _, e := range snap.Echoes {
		vector.FillCircle(screen, ox+float32(e.Pos.X), oy+float32(e.Pos.Y), float32(e.Radius), pal.Echo, true)
	}

	for _, e := range snap.Enemies {
		cx, cy := ox+float32(e.Pos.X), oy+float32(e.Pos.Y)
		vector.FillCircle(screen, cx, cy, float32(e.Radius), enemyColor(e.Kind), true)
		if e.MaxHP > 0 && e.HP < e.MaxHP {
			drawRing(screen, cx, cy, float32(e.Radius)+3, float64(e.HP)/float64(e.MaxHP), ringColor)
		}
	}

	if b := snap.Boss; b != nil {
		cx, cy := ox+float32(b.Pos.X), oy+float32(b.Pos.Y)
		pulse := 0.75 + 0.25*math.Sin(float64(frame)/8)
		vector.FillCircle(screen, cx, cy, float32(b.Radius), withAlpha(bossColor, pulse), true)
		vector.StrokeCircle(screen, cx, cy, float32(b.Radius)+2, 2, whiteColor, true)
		drawBossBar(screen, *b, offX, offY, int(snap.Width))
	}

	for _, p := range snap.Shots {
		vector.FillCircle(screen, ox+float32(p.Pos.X), oy+float32(p.Pos.Y), float32(p.Radius), shotColor, true)
	}
	for _, p := range snap.Hostile {
		c := hostileColor
		if p.FromBoss {
			c = bossShot
		}
		vector.FillCircle(screen, ox+float32(p.Pos.X), oy+float32(p.Pos.Y), float32(p.Radius), c, true)
	}

	if p := snap.Player; p != nil {
		drawPlayer(screen, *p, skin, pal.Player, frame, ox, oy)
	}
}

func drawPlayer(screen *ebiten.Image, p game.Player, skin *catalog.Skin, base color.RGBA, frame int, ox, oy float32) {
	cx, cy := ox+float32(p.Pos.X), oy+float32(p.Pos.Y)
	fill := base
	if skin != nil {
		t := 0.5 + 0.5*math.Sin(float64(frame)/20)
		fill = lerpColor(skin.Colors[0], skin.Colors[1], t)
	}
	vector.FillCircle(screen, cx, cy, float32(p.Radius), fill, true)

	// Aim tick, one per bolt direction.
	hl := float32(p.Radius) * 1.8
	for i := 0; i < p.Character.Pattern().Bolts(); i++ {
		a := p.Aim.Rotate(float64(i) * 2 * math.Pi / float64(p.Character.Pattern().Bolts()))
		vector.StrokeLine(screen, cx, cy, cx+float32(a.X)*hl, cy+float32(a.Y)*hl, 2, whiteColor, true)
	}
	if p.DashCD > 0 {
		drawRing(screen, cx, cy, float32(p.Radius)+4, 1-p.DashCD, withAlpha(base, 0.6))
	}
}

// drawRing strokes a clockwise arc from 12 o'clock covering frac of a circle.
func drawRing(screen *ebiten.Image, cx, cy, r float32, frac float64, c color.Color) {
	frac = math.Max(0, math.Min(1, frac))
	n := int(math.Ceil(frac * hpRingSegments))
	if n == 0 {
		return
	}
	step := frac * 2 * math.Pi / float64(n)
	a0 := -math.Pi / 2
	px, py := cx+r*float32(math.Cos(a0)), cy+r*float32(math.Sin(a0))
	for i := 1; i <= n; i++ {
		a := a0 + step*float64(i)
		x, y := cx+r*float32(math.Cos(a)), cy+r*float32(math.Sin(a))
		vector.StrokeLine(screen, px, py, x, y, 2, c, true)
		px, py = x, y
	}
}

func drawBossBar(screen *ebiten.Image, b game.Boss, offX, offY, width int) {
	const barH = 10
	bw := float32(width) * 0.6
	bx := float32(offX) + (float32(width)-bw)/2
	by := float32(offY) + 30
	frac := float32(0)
	if b.MaxHP > 0 {
		frac = float32(max(0, b.HP)) / float32(b.MaxHP)
	}
	vector.FillRect(screen, bx, by, bw, barH, color.RGBA{R: 40, G: 10, B: 30, A: 220}, false)
	vector.FillRect(screen, bx, by, bw*frac, barH, bossColor, false)
	vector.StrokeRect(screen, bx, by, bw, barH, 1, whiteColor, false)
	drawTextCentered(screen, fmt.Sprintf("BOSS %d/%d", max(0, b.HP), b.MaxHP), offX+width/2, int(by)+barH+2, whiteColor)
}

func drawGrid(screen *ebiten.Image, offX, offY, w, h, spacing int, c color.Color) {
	if spacing <= 0 {
		return
	}
	ox, oy := float32(offX), float32(offY)
	for x := 0; x <= w; x += spacing {
		xf := ox + float32(x)
		vector.StrokeLine(screen, xf, oy, xf, oy+float32(h), 1, c, false)
	}
	for y := 0; y <= h; y += spacing {
		yf := oy + float32(y)
		vector.StrokeLine(screen, ox, yf, ox+float32(w), yf, 1, c, false)
	}
}
