// Package render is the ebiten frontend: it turns keyboard and mouse state
// into sim input, steps the Sim once per frame and draws Snapshots plus the
// HUD, menus and event feed.
package render

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Echo-Arena/internal/catalog"
	"github.com/Garsondee/Echo-Arena/internal/game"
	"github.com/Garsondee/Echo-Arena/internal/session"
)

// arenaMargin is the gap between the window edge and the arena.
const arenaMargin = 16

// Options configure NewGame. Session and HUD are required.
type Options struct {
	Session *session.Session
	HUD     *HUD
	Log     zerolog.Logger

	// Keys defaults to the live ebiten input.
	Keys Keys
	// FrameDelta defaults to 1/TPS.
	FrameDelta float64
}

// Game implements ebiten.Game.
type Game struct {
	sess *session.Session
	sim  *game.Sim
	hud  *HUD
	keys Keys
	log  zerolog.Logger
	dt   float64

	screen  Screen
	title   *Menu
	profile *Menu
	shop    *Menu
	offers  []catalog.Offer
	name    TextEntry
	pass    TextEntry
	pending string // name awaiting its password
	signup  bool   // the pending entry registers instead of logging in
	quit    bool

	arenaW, arenaH int
	width, height  int
}

var _ ebiten.Game = (*Game)(nil)

func NewGame(o Options) (*Game, error) {
	if o.Session == nil || o.HUD == nil {
		return nil, errors.New("render: Session and HUD are required")
	}
	if o.Keys == nil {
		o.Keys = &ebitenKeys{}
	}
	if o.FrameDelta <= 0 {
		o.FrameDelta = 1 / float64(ebiten.TPS())
	}
	offers := catalog.Offers()
	items := make([]string, len(offers)+1)
	for i, of := range offers {
		items[i] = of.Name
	}
	items[len(offers)] = "Back"

	w, h := o.Session.Sim().Size()
	g := &Game{
		sess:    o.Session,
		sim:     o.Session.Sim(),
		hud:     o.HUD,
		keys:    o.Keys,
		log:     o.Log,
		dt:      o.FrameDelta,
		title:   NewMenu(titleItems),
		profile: NewMenu(profileItems),
		shop:    NewMenu(items),
		offers:  offers,
		pass:    TextEntry{Secret: true},
		arenaW:  int(w),
		arenaH:  int(h),
	}
	g.width = arenaMargin*2 + g.arenaW + feedPanelWidth
	g.height = arenaMargin*2 + g.arenaH
	return g, nil
}

// Screen returns the active mode.
func (g *Game) Screen() Screen { return g.screen }

func (g *Game) Update() error {
	g.hud.Tick()
	g.handleGlobalKeys()

	switch g.screen {
	case ScreenTitle:
		g.updateTitle()
	case ScreenShop:
		g.updateShop()
	case ScreenProfile:
		g.updateProfile()
	case ScreenPlaying:
		g.updatePlaying()
	case ScreenGameOver:
		g.updateGameOver()
	}
	if g.quit {
		g.sim.Stop()
		return ebiten.Termination
	}
	return nil
}

// typing reports whether a name or password entry is capturing keys.
func (g *Game) typing() bool { return g.name.Active || g.pass.Active }

// handleGlobalKeys covers volume and mute, which work on every screen except
// while typing.
func (g *Game) handleGlobalKeys() {
	if g.typing() {
		return
	}
	switch {
	case g.keys.JustPressed(ebiten.KeyBracketLeft):
		g.report(g.sess.AdjustVolume(-1))
	case g.keys.JustPressed(ebiten.KeyBracketRight):
		g.report(g.sess.AdjustVolume(1))
	case g.keys.JustPressed(ebiten.KeyM):
		g.hud.Toast(g.sess.ToggleMute())
	}
}

// report toasts msg, or logs and toasts err.
func (g *Game) report(msg string, err error) {
	if err != nil {
		g.log.Warn().Err(err).Str("screen", g.screen.String()).Msg("action failed")
		g.hud.Toast("Error: " + err.Error())
		return
	}
	if msg != "" {
		g.hud.Toast(msg)
	}
}

// navigate applies up/down to m and reports whether the item was chosen.
func (g *Game) navigate(m *Menu) bool {
	if anyJust(g.keys, ebiten.KeyArrowUp, ebiten.KeyW) {
		m.Move(-1)
	}
	if anyJust(g.keys, ebiten.KeyArrowDown, ebiten.KeyS) {
		m.Move(1)
	}
	return anyJust(g.keys, ebiten.KeyEnter, ebiten.KeySpace)
}

func (g *Game) updateTitle() {
	if g.keys.JustPressed(ebiten.KeyEscape) {
		g.quit = true
		return
	}
	if !g.navigate(g.title) {
		return
	}
	switch g.title.Selected() {
	case titlePlay:
		g.startRun()
	case titleShop:
		g.screen = ScreenShop
	case titleProfile:
		g.screen = ScreenProfile
	case titleQuit:
		g.quit = true
	}
}

func (g *Game) startRun() {
	g.hud.ClearSummary()
	g.sim.Start()
	g.screen = ScreenPlaying
}

func (g *Game) updateShop() {
	if g.keys.JustPressed(ebiten.KeyEscape) {
		g.screen = ScreenTitle
		return
	}
	if !g.navigate(g.shop) {
		return
	}
	i := g.shop.Selected()
	if i >= len(g.offers) {
		g.screen = ScreenTitle
		return
	}
	g.report(g.sess.Activate(g.offers[i]))
}

func (g *Game) updateProfile() {
	if g.typing() {
		g.updateCredentials()
		return
	}
	if g.keys.JustPressed(ebiten.KeyEscape) {
		g.screen = ScreenTitle
		return
	}
	if !g.navigate(g.profile) {
		return
	}
	switch g.profile.Selected() {
	case profileLogin, profileRegister:
		g.signup = g.profile.Selected() == profileRegister
		g.name.Begin()
	case profileLogout:
		g.report(g.sess.Logout())
	case profileExport:
		g.report(g.sess.Export())
	case profileImport:
		g.report(g.sess.Import())
	case profileReset:
		g.report(g.sess.Reset())
	case profileTheme:
		g.report(g.sess.CycleTheme())
	case profileBack:
		g.screen = ScreenTitle
	}
}

// updateCredentials drives the two-step entry: name, then password.
func (g *Game) updateCredentials() {
	entry := &g.name
	if g.pass.Active {
		entry = &g.pass
	}
	switch {
	case g.keys.JustPressed(ebiten.KeyEscape):
		g.name.Cancel()
		g.pass.Cancel()
		g.pending = ""
	case g.keys.JustPressed(ebiten.KeyEnter):
		if entry == &g.name {
			if name := g.name.Submit(); name != "" {
				g.pending = name
				g.pass.Begin()
			}
			return
		}
		name, pw := g.pending, g.pass.Submit()
		g.pending = ""
		if g.signup {
			g.report(g.sess.Register(name, pw))
		} else {
			g.report(g.sess.Login(name, pw))
		}
	case g.keys.JustPressed(ebiten.KeyBackspace):
		entry.Backspace()
	default:
		entry.Type(g.keys.Chars())
	}
}

func (g *Game) updatePlaying() {
	if anyJust(g.keys, ebiten.KeyP, ebiten.KeyEscape) {
		g.sim.SetPaused(!g.sim.Paused())
	}
	if g.sim.Paused() {
		if g.keys.JustPressed(ebiten.KeyQ) {
			g.sim.Stop()
			g.screen = ScreenTitle
		}
		return
	}

	g.sim.Step(g.dt, ReadInput(g.keys, arenaMargin, arenaMargin))

	if g.sim.State() == game.RunGameOver {
		g.screen = ScreenGameOver
	}
}

func (g *Game) updateGameOver() {
	switch {
	case g.keys.JustPressed(ebiten.KeyC):
		g.report(g.sess.CopySummary())
	case anyJust(g.keys, ebiten.KeyEnter, ebiten.KeySpace):
		g.startRun()
	case g.keys.JustPressed(ebiten.KeyEscape):
		g.screen = ScreenTitle
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	pal := PaletteFor(g.sess.Theme())
	screen.Fill(pal.Backdrop)

	snap := g.sim.Snapshot()
	var skin *catalog.Skin
	if sk, ok := g.sess.Catalog().SkinFor(g.sess.Catalog().Selected()); ok {
		skin = &sk
	}
	dx, dy := g.hud.Shake()
	ox, oy := arenaMargin+dx, arenaMargin+dy
	drawArena(screen, snap, skin, pal, g.hud.frame, ox, oy)
	g.hud.Feed().Draw(screen, g.width-feedPanelWidth, g.height)

	switch g.screen {
	case ScreenTitle:
		g.drawMenu(screen, "ECHO ARENA", g.title, g.titleFooter())
	case ScreenShop:
		g.drawShop(screen)
	case ScreenProfile:
		g.drawProfile(screen)
	case ScreenPlaying:
		g.hud.Draw(screen, snap, ox, oy, g.arenaW, g.arenaH)
		if snap.Paused {
			g.drawPaused(screen)
		}
	case ScreenGameOver:
		g.hud.Draw(screen, snap, ox, oy, g.arenaW, g.arenaH)
		g.drawGameOver(screen)
	}
}

func (g *Game) titleFooter() string {
	return fmt.Sprintf("profile %s  |  %d XP  |  [ ] volume  M mute", g.sess.Profile(), g.sess.Catalog().XP())
}

// panel draws a dimmed box centred in the arena and returns its top-left.
func (g *Game) panel(screen *ebiten.Image, w, h int) (int, int) {
	x := arenaMargin + (g.arenaW-w)/2
	y := arenaMargin + (g.arenaH-h)/2
	vector.FillRect(screen, float32(arenaMargin), float32(arenaMargin), float32(g.arenaW), float32(g.arenaH), color.RGBA{A: 140}, false)
	vector.FillRect(screen, float32(x), float32(y), float32(w), float32(h), hudPanel, false)
	vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), 1, hudBorder, false)
	return x, y
}

func (g *Game) drawMenu(screen *ebiten.Image, heading string, m *Menu, footer string) {
	h := 80 + len(m.Items)*lineH
	x, y := g.panel(screen, 360, h)
	drawTextCentered(screen, heading, x+180, y+12, goldColor)
	for i, item := range m.Items {
		col := hudDim
		prefix := "  "
		if i == m.Cursor {
			col, prefix = hudText, "> "
		}
		drawText(screen, prefix+item, x+40, y+40+i*lineH, col)
	}
	drawTextCentered(screen, footer, x+180, y+h-22, hudDim)
}

func (g *Game) drawShop(screen *ebiten.Image) {
	const w = 520
	h := 90 + len(g.shop.Items)*lineH
	x, y := g.panel(screen, w, h)
	cat := g.sess.Catalog()
	drawTextCentered(screen, fmt.Sprintf("SHOP  (%d XP)", cat.XP()), x+w/2, y+12, goldColor)
	for i, item := range g.shop.Items {
		col := hudDim
		prefix := "  "
		if i == g.shop.Cursor {
			col, prefix = hudText, "> "
		}
		row := y + 40 + i*lineH
		drawText(screen, prefix+item, x+24, row, col)
		if i < len(g.offers) {
			status := cat.Status(g.offers[i])
			drawText(screen, status, x+w-24-textWidth(status), row, col)
		}
	}
	if i := g.shop.Selected(); i < len(g.offers) {
		drawTextCentered(screen, g.offers[i].Desc, x+w/2, y+h-24, hudDim)
	}
}

func (g *Game) drawProfile(screen *ebiten.Image) {
	g.drawMenu(screen, "PROFILE", g.profile, g.profileFooter())
}

func (g *Game) profileFooter() string {
	switch {
	case g.pass.Active:
		return "password for " + g.pending + ": " + g.pass.String() + "_"
	case g.name.Active:
		return "name: " + g.name.String() + "_"
	default:
		return fmt.Sprintf("playing as %s  |  theme %s", g.sess.Profile(), g.sess.Theme())
	}
}

func (g *Game) drawPaused(screen *ebiten.Image) {
	x, y := g.panel(screen, 300, 70)
	drawTextCentered(screen, "PAUSED", x+150, y+12, hudText)
	drawTextCentered(screen, "P resume   Q quit to title", x+150, y+38, hudDim)
}

func (g *Game) drawGameOver(screen *ebiten.Image) {
	sum, ok := g.hud.Summary()
	if !ok {
		return
	}
	x, y := g.panel(screen, 360, 170)
	drawTextCentered(screen, "GAME OVER", x+180, y+12, hudLife)
	lines := []string{
		fmt.Sprintf("score %d   best %d", sum.Score, sum.Best),
		fmt.Sprintf("round %d   kills %d   echoes %d", sum.Round, sum.Kills, sum.Echoes),
		fmt.Sprintf("+%d XP   (total %d)", sum.GainedXP, sum.TotalXP),
	}
	if sum.NewBest() {
		lines = append(lines, "NEW BEST")
	}
	for i, l := range lines {
		drawTextCentered(screen, l, x+180, y+40+i*lineH, hudText)
	}
	drawTextCentered(screen, "Enter retry   C copy   Esc title", x+180, y+146, hudDim)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}
