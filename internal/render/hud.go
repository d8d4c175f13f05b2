package render

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Echo-Arena/internal/game"
)

// toastFrames is how long a toast banner stays up at 60 TPS.
const toastFrames = 150

// shakeFrames is the length of the hit shake, about 180ms at 60 TPS.
const shakeFrames = 11

// shakeKeys are the shake offsets, spaced evenly over shakeFrames.
var shakeKeys = [...][2]float64{{0, 0}, {4, -2}, {-3, 2}, {0, 0}}

// HUD is the ebiten Presenter. The Sim pushes values into it during Step and
// the frontend draws whatever it holds; it never calls back into the Sim.
type HUD struct {
	feed  *FeedLog
	frame int

	timer   float64
	round   int
	lives   int
	score   int
	mult    float64
	summary *game.RunSummary

	toast    string
	toastTTL int
	shakeTTL int
}

var _ game.Presenter = (*HUD)(nil)

// NewHUD returns a HUD that mirrors toasts into feed.
func NewHUD(feed *FeedLog) *HUD {
	if feed == nil {
		feed = NewFeedLog()
	}
	return &HUD{feed: feed, mult: 1}
}

// Feed returns the event feed the HUD writes to.
func (h *HUD) Feed() *FeedLog { return h.feed }

func (h *HUD) UpdateTimer(remaining float64) { h.timer = remaining }

func (h *HUD) UpdateRound(round int) {
	if round > h.round && h.round > 0 {
		h.feed.Add(h.frame, FeedInfo, fmt.Sprintf("Round %d", round))
	}
	h.round = round
}

// UpdateLives starts a shake when lives drop.
func (h *HUD) UpdateLives(lives int) {
	if lives < h.lives {
		h.shakeTTL = shakeFrames
	}
	h.lives = lives
}

func (h *HUD) UpdateScore(score int, multiplier float64) {
	h.score = score
	h.mult = multiplier
}

func (h *HUD) ShowGameOver(summary game.RunSummary) {
	s := summary
	h.summary = &s
	h.feed.Add(h.frame, FeedWarn, fmt.Sprintf("Game over: %d pts", summary.Score))
}

func (h *HUD) Toast(msg string) {
	h.toast = msg
	h.toastTTL = toastFrames
	h.feed.Add(h.frame, toastKind(msg), msg)
}

// toastKind picks the feed colour for a toast.
func toastKind(msg string) FeedKind {
	switch {
	case strings.Contains(msg, "unlock"), strings.HasPrefix(msg, "Need "):
		return FeedWarn
	case strings.Contains(msg, "defeated"), strings.HasPrefix(msg, "+"), strings.HasPrefix(msg, "Bought "):
		return FeedGood
	default:
		return FeedInfo
	}
}

// Tick advances banner timers. Call once per frame.
func (h *HUD) Tick() {
	h.frame++
	if h.toastTTL > 0 {
		h.toastTTL--
	}
	if h.shakeTTL > 0 {
		h.shakeTTL--
	}
}

// Shake returns the pixel offset of the hit shake, (0, 0) when idle.
func (h *HUD) Shake() (dx, dy int) {
	if h.shakeTTL <= 0 {
		return 0, 0
	}
	t := float64(shakeFrames-h.shakeTTL) / shakeFrames * float64(len(shakeKeys)-1)
	i := int(t)
	if i >= len(shakeKeys)-1 {
		return 0, 0
	}
	f := t - float64(i)
	a, b := shakeKeys[i], shakeKeys[i+1]
	return int(math.Round(a[0] + (b[0]-a[0])*f)), int(math.Round(a[1] + (b[1]-a[1])*f))
}

// Banner returns the current toast while it is still visible.
func (h *HUD) Banner() (string, bool) {
	if h.toastTTL <= 0 {
		return "", false
	}
	return h.toast, true
}

// Summary returns the last game-over summary pushed by the Sim.
func (h *HUD) Summary() (game.RunSummary, bool) {
	if h.summary == nil {
		return game.RunSummary{}, false
	}
	return *h.summary, true
}

// ClearSummary forgets the game-over summary when a new run starts.
func (h *HUD) ClearSummary() { h.summary = nil }

// Values returns the last pushed readouts.
func (h *HUD) Values() (timer float64, round, lives, score int, mult float64) {
	return h.timer, h.round, h.lives, h.score, h.mult
}

var (
	hudText   = color.RGBA{R: 230, G: 230, B: 240, A: 255}
	hudDim    = color.RGBA{R: 140, G: 140, B: 160, A: 255}
	hudLife   = color.RGBA{R: 235, G: 70, B: 90, A: 255}
	hudXPBar  = color.RGBA{R: 120, G: 200, B: 255, A: 255}
	hudPanel  = color.RGBA{R: 8, G: 8, B: 14, A: 200}
	hudBorder = color.RGBA{R: 70, G: 70, B: 110, A: 200}
)

// Draw renders the top bar, XP bar and toast banner over the arena at
// (offX, offY) with size w×h.
func (h *HUD) Draw(screen *ebiten.Image, snap game.Snapshot, offX, offY, w, hgt int) {
	x, y := float32(offX), float32(offY)

	vector.FillRect(screen, x, y, float32(w), 22, hudPanel, false)
	drawText(screen, fmt.Sprintf("ROUND %d", h.round), offX+8, offY+4, hudText)
	drawText(screen, fmt.Sprintf("%5.2fs", h.timer), offX+90, offY+4, timerColor(h.timer))
	drawText(screen, fmt.Sprintf("SCORE %d  x%.1f", h.score, h.mult), offX+170, offY+4, hudText)
	drawText(screen, fmt.Sprintf("BEST %d", snap.Best), offX+340, offY+4, hudDim)
	if snap.Mutator.Name != "" {
		drawText(screen, "MUT "+snap.Mutator.Name, offX+440, offY+4, hudDim)
	}
	for i := 0; i < h.lives; i++ {
		vector.FillCircle(screen, x+float32(w)-14-float32(i)*16, y+11, 5, hudLife, true)
	}

	// XP bar along the bottom edge.
	barY := y + float32(hgt) - 8
	vector.FillRect(screen, x, barY, float32(w), 8, hudPanel, false)
	vector.FillRect(screen, x, barY, float32(w)*float32(snap.XPProgress()), 8, hudXPBar, false)
	vector.StrokeRect(screen, x, barY, float32(w), 8, 1, hudBorder, false)
	drawText(screen, fmt.Sprintf("XP %d", snap.TotalXP), offX+6, int(barY)-16, hudDim)

	if msg, ok := h.Banner(); ok {
		bw := float32(textWidth(msg) + 24)
		bx := x + (float32(w)-bw)/2
		by := y + 34
		vector.FillRect(screen, bx, by, bw, 22, hudPanel, false)
		vector.StrokeRect(screen, bx, by, bw, 22, 1, hudBorder, false)
		drawTextCentered(screen, msg, offX+w/2, int(by)+4, feedColor(toastKind(msg)))
	}
}

func timerColor(t float64) color.RGBA {
	if t < 3 {
		return color.RGBA{R: 255, G: 120, B: 80, A: 255}
	}
	return hudText
}
