package term

import (
	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/Echo-Arena/internal/game"
	"github.com/Garsondee/Echo-Arena/internal/vmath"
)

// Cell is one character of the projected arena.
type Cell struct {
	Rune  rune
	Style tcell.Style
}

// Grid is the arena projected onto a cols×rows character field.
type Grid struct {
	Cols, Rows int
	cells      []Cell
}

// Theme holds the styles that change with the profile's colour theme.
type Theme struct {
	Floor  tcell.Style
	Player tcell.Style
	Echo   tcell.Style
}

var themes = map[string]Theme{
	"default": {
		Floor:  tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray),
		Player: tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true),
		Echo:   tcell.StyleDefault.Foreground(tcell.ColorMediumPurple),
	},
	"neon": {
		Floor:  tcell.StyleDefault.Foreground(tcell.ColorPurple),
		Player: tcell.StyleDefault.Foreground(tcell.ColorLime).Bold(true),
		Echo:   tcell.StyleDefault.Foreground(tcell.ColorFuchsia),
	},
	"mono": {
		Floor:  tcell.StyleDefault.Foreground(tcell.ColorDimGray),
		Player: tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true),
		Echo:   tcell.StyleDefault.Foreground(tcell.ColorSilver),
	},
}

// ThemeFor returns the styles of a theme name; unknown names get the default.
func ThemeFor(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes["default"]
}

var (
	styleShot    = tcell.StyleDefault.Foreground(tcell.ColorLightYellow)
	styleHostile = tcell.StyleDefault.Foreground(tcell.ColorOrangeRed)
	styleBoss    = tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Bold(true)
	styleSpark   = tcell.StyleDefault.Foreground(tcell.ColorGold)
)

func newGrid(cols, rows int, floor tcell.Style) *Grid {
	cols, rows = max(1, cols), max(1, rows)
	g := &Grid{Cols: cols, Rows: rows, cells: make([]Cell, cols*rows)}
	for i := range g.cells {
		g.cells[i] = Cell{Rune: ' ', Style: floor}
	}
	return g
}

// At returns the cell at (x, y). Out-of-range reads return a blank.
func (g *Grid) At(x, y int) Cell {
	if x < 0 || y < 0 || x >= g.Cols || y >= g.Rows {
		return Cell{Rune: ' '}
	}
	return g.cells[y*g.Cols+x]
}

func (g *Grid) set(x, y int, r rune, st tcell.Style) {
	if x < 0 || y < 0 || x >= g.Cols || y >= g.Rows {
		return
	}
	g.cells[y*g.Cols+x] = Cell{Rune: r, Style: st}
}

// Row returns row y as plain text.
func (g *Grid) Row(y int) string {
	rs := make([]rune, g.Cols)
	for x := range rs {
		rs[x] = g.At(x, y).Rune
	}
	return string(rs)
}

// Find returns the first cell holding r, scanning rows top to bottom.
func (g *Grid) Find(r rune) (x, y int, ok bool) {
	for i, c := range g.cells {
		if c.Rune == r {
			return i % g.Cols, i / g.Cols, true
		}
	}
	return 0, 0, false
}

// ToCell maps an arena position to a grid cell, clamped into the grid.
func ToCell(p vmath.Vec2, w, h float64, cols, rows int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	x := int(p.X / w * float64(cols))
	y := int(p.Y / h * float64(rows))
	return min(max(x, 0), cols-1), min(max(y, 0), rows-1)
}

// FromCell maps the centre of a grid cell back into arena coordinates.
func FromCell(x, y int, w, h float64, cols, rows int) vmath.Vec2 {
	if cols <= 0 || rows <= 0 {
		return vmath.Vec2{}
	}
	return vmath.V((float64(x)+0.5)/float64(cols)*w, (float64(y)+0.5)/float64(rows)*h)
}

func enemyRune(k game.EnemyKind) rune {
	switch k {
	case game.Chaser:
		return 'c'
	case game.Shooter:
		return 's'
	case game.DoubleShooter:
		return 'd'
	case game.FastChaser:
		return 'f'
	case game.QuadShooter:
		return 'q'
	default:
		return '?'
	}
}

func enemyStyle(k game.EnemyKind) tcell.Style {
	if k.Wanders() {
		return tcell.StyleDefault.Foreground(tcell.ColorOrange)
	}
	return tcell.StyleDefault.Foreground(tcell.ColorRed)
}

// Project draws snap into a fresh grid styled by th. Later layers overwrite
// earlier ones: floor, particles, shots, echoes, enemies, boss, player.
func Project(snap game.Snapshot, cols, rows int, th Theme) *Grid {
	g := newGrid(cols, rows, th.Floor)
	w, h := snap.Width, snap.Height
	put := func(p vmath.Vec2, r rune, st tcell.Style) {
		x, y := ToCell(p, w, h, g.Cols, g.Rows)
		g.set(x, y, r, st)
	}

	for y := 0; y < g.Rows; y += 4 {
		for x := 0; x < g.Cols; x += 8 {
			g.set(x, y, '·', th.Floor)
		}
	}
	for _, p := range snap.Particles {
		put(p.Pos, '+', styleSpark)
	}
	for _, p := range snap.Shots {
		put(p.Pos, '.', styleShot)
	}
	for _, p := range snap.Hostile {
		put(p.Pos, '*', styleHostile)
	}
	for _, e := range snap.Echoes {
		put(e.Pos, 'e', th.Echo)
	}
	for _, e := range snap.Enemies {
		put(e.Pos, enemyRune(e.Kind), enemyStyle(e.Kind))
	}
	if b := snap.Boss; b != nil {
		// The boss covers its radius in cells.
		cx, cy := ToCell(b.Pos, w, h, g.Cols, g.Rows)
		rx := max(1, int(b.Radius/w*float64(g.Cols)))
		ry := max(1, int(b.Radius/h*float64(g.Rows)))
		for dy := -ry; dy <= ry; dy++ {
			for dx := -rx; dx <= rx; dx++ {
				g.set(cx+dx, cy+dy, 'B', styleBoss)
			}
		}
	}
	if p := snap.Player; p != nil {
		put(p.Pos, '@', th.Player)
	}
	return g
}

// nearestThreat returns the closest enemy or boss to from.
func nearestThreat(snap game.Snapshot, from vmath.Vec2) (vmath.Vec2, bool) {
	best, found := 0.0, false
	var at vmath.Vec2
	for _, e := range snap.Enemies {
		if d := vmath.DistSq(from, e.Pos); !found || d < best {
			best, at, found = d, e.Pos, true
		}
	}
	if b := snap.Boss; b != nil {
		if d := vmath.DistSq(from, b.Pos); !found || d < best {
			at, found = b.Pos, true
		}
	}
	return at, found
}
