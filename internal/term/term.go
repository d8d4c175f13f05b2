// Package term is the terminal frontend: a tcell screen showing a character
// projection of the arena, with latched keyboard input standing in for held
// keys.
package term

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Echo-Arena/internal/catalog"
	"github.com/Garsondee/Echo-Arena/internal/game"
	"github.com/Garsondee/Echo-Arena/internal/session"
	"github.com/Garsondee/Echo-Arena/internal/vmath"
)

// frameInterval paces the update loop at roughly 60 frames per second.
const frameInterval = 16 * time.Millisecond

// Mode is the frontend's top-level state.
type Mode int

const (
	ModeTitle Mode = iota
	ModeShop
	ModePlaying
	ModeGameOver
)

func (m Mode) String() string {
	switch m {
	case ModeTitle:
		return "title"
	case ModeShop:
		return "shop"
	case ModePlaying:
		return "playing"
	case ModeGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Options configure New. Screen, Session and Status are required; Status
// must be the Presenter the Sim was built with.
type Options struct {
	Screen  tcell.Screen
	Session *session.Session
	Status  *Status
	Log     zerolog.Logger
}

// Frontend drives a Sim from a tcell screen. Run owns it; it is not safe for
// concurrent use.
type Frontend struct {
	screen tcell.Screen
	sess   *session.Session
	sim    *game.Sim
	status *Status
	log    zerolog.Logger

	mode   Mode
	latch  Latch
	facing vmath.Vec2
	offers []catalog.Offer
	cursor int
	quit   bool

	// One-shot commands collected between frames.
	mutator, restart bool
}

func New(o Options) (*Frontend, error) {
	if o.Screen == nil || o.Session == nil || o.Status == nil {
		return nil, errors.New("term: Screen, Session and Status are required")
	}
	return &Frontend{
		screen: o.Screen,
		sess:   o.Session,
		sim:    o.Session.Sim(),
		status: o.Status,
		log:    o.Log,
		facing: vmath.V(1, 0),
		offers: catalog.Offers(),
	}, nil
}

// Mode returns the active state.
func (f *Frontend) Mode() Mode { return f.mode }

// Run polls events and steps the sim until the player quits or ctx ends.
// The screen must already be initialised; Run does not call Fini.
func (f *Frontend) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := f.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	last := time.Now()

	for !f.quit {
		select {
		case <-ctx.Done():
			f.sim.Stop()
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			f.HandleEvent(ev)
		case now := <-ticker.C:
			f.Frame(now.Sub(last).Seconds())
			last = now
			f.Draw()
		}
	}
	f.sim.Stop()
	return nil
}

// HandleEvent applies one tcell event.
func (f *Frontend) HandleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		f.HandleKey(ev.Key(), ev.Rune())
	case *tcell.EventResize:
		f.screen.Sync()
	}
}

// HandleKey applies a decoded key press. r is only meaningful for
// tcell.KeyRune.
func (f *Frontend) HandleKey(k tcell.Key, r rune) {
	if k == tcell.KeyCtrlC {
		f.quit = true
		return
	}
	if k == tcell.KeyRune {
		switch r {
		case '[':
			f.report(f.sess.AdjustVolume(-1))
			return
		case ']':
			f.report(f.sess.AdjustVolume(1))
			return
		case 'm', 'M':
			f.status.Toast(f.sess.ToggleMute())
			return
		}
	}

	switch f.mode {
	case ModeTitle:
		f.keyTitle(k, r)
	case ModeShop:
		f.keyShop(k, r)
	case ModePlaying:
		f.keyPlaying(k, r)
	case ModeGameOver:
		f.keyGameOver(k, r)
	}
}

func (f *Frontend) report(msg string, err error) {
	if err != nil {
		f.log.Warn().Err(err).Str("mode", f.mode.String()).Msg("action failed")
		f.status.Toast("Error: " + err.Error())
		return
	}
	if msg != "" {
		f.status.Toast(msg)
	}
}

func (f *Frontend) keyTitle(k tcell.Key, r rune) {
	switch {
	case k == tcell.KeyEnter || r == ' ':
		f.startRun()
	case r == 's' || r == 'S':
		f.mode = ModeShop
	case r == 't' || r == 'T':
		f.report(f.sess.CycleTheme())
	case k == tcell.KeyEscape || r == 'q' || r == 'Q':
		f.quit = true
	}
}

func (f *Frontend) startRun() {
	f.status.Summary = nil
	f.latch.Release()
	f.sim.Start()
	f.mode = ModePlaying
}

func (f *Frontend) keyShop(k tcell.Key, r rune) {
	n := len(f.offers)
	switch {
	case k == tcell.KeyUp || r == 'w' || r == 'k':
		f.cursor = (f.cursor - 1 + n) % n
	case k == tcell.KeyDown || r == 's' || r == 'j':
		f.cursor = (f.cursor + 1) % n
	case k == tcell.KeyEnter || r == ' ':
		f.report(f.sess.Activate(f.offers[f.cursor]))
	case k == tcell.KeyEscape || r == 'q':
		f.mode = ModeTitle
	}
}

func (f *Frontend) keyPlaying(k tcell.Key, r rune) {
	if k == tcell.KeyEscape || r == 'p' || r == 'P' {
		f.sim.SetPaused(!f.sim.Paused())
		f.latch.Release()
		return
	}
	if f.sim.Paused() {
		if r == 'q' || r == 'Q' {
			f.sim.Stop()
			f.mode = ModeTitle
		}
		return
	}
	switch {
	case k == tcell.KeyUp || r == 'w' || r == 'W':
		f.latch.Press(ActUp)
	case k == tcell.KeyDown || r == 's' || r == 'S':
		f.latch.Press(ActDown)
	case k == tcell.KeyLeft || r == 'a' || r == 'A':
		f.latch.Press(ActLeft)
	case k == tcell.KeyRight || r == 'd' || r == 'D':
		f.latch.Press(ActRight)
	case r == ' ' || r == 'j':
		f.latch.Press(ActShoot)
	case k == tcell.KeyTab || r == 'x' || r == 'k':
		f.latch.Press(ActDash)
	case r == 'f' || r == 'F':
		f.mutator = true
	case r == 'r' || r == 'R':
		f.restart = true
	}
}

func (f *Frontend) keyGameOver(k tcell.Key, r rune) {
	switch {
	case r == 'c' || r == 'C':
		f.report(f.sess.CopySummary())
	case k == tcell.KeyEnter || r == ' ':
		f.startRun()
	case k == tcell.KeyEscape || r == 'q':
		f.mode = ModeTitle
	}
}

// Input builds this frame's sim input from the latches. The aim point is the
// nearest threat, or a step ahead in the last movement direction.
func (f *Frontend) Input(snap game.Snapshot) game.Input {
	in := game.Input{
		Up:      f.latch.Held(ActUp),
		Down:    f.latch.Held(ActDown),
		Left:    f.latch.Held(ActLeft),
		Right:   f.latch.Held(ActRight),
		Shoot:   f.latch.Held(ActShoot),
		Dash:    f.latch.Held(ActDash),
		Mutator: f.mutator,
		Restart: f.restart,
	}
	var move vmath.Vec2
	if in.Up {
		move.Y--
	}
	if in.Down {
		move.Y++
	}
	if in.Left {
		move.X--
	}
	if in.Right {
		move.X++
	}
	if move.LenSq() > 0 {
		f.facing = move.Normalize()
	}
	if snap.Player == nil {
		return in
	}
	if at, ok := nearestThreat(snap, snap.Player.Pos); ok {
		in.Aim = at
	} else {
		in.Aim = snap.Player.Pos.Add(f.facing.Scale(100))
	}
	return in
}

// Frame advances one frame of elapsed seconds.
func (f *Frontend) Frame(elapsed float64) {
	f.status.Tick()
	if f.mode != ModePlaying || f.sim.Paused() {
		return
	}
	in := f.Input(f.sim.Snapshot())
	f.mutator, f.restart = false, false
	f.sim.Step(elapsed, in)
	f.latch.Tick()
	if f.sim.State() == game.RunGameOver {
		f.mode = ModeGameOver
		f.latch.Release()
	}
}

// Draw renders the current mode to the screen.
func (f *Frontend) Draw() {
	f.screen.Clear()
	cols, rows := f.screen.Size()
	snap := f.sim.Snapshot()

	header := tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)

	switch f.mode {
	case ModeTitle:
		f.drawLines(2, header, "ECHO ARENA")
		f.drawLines(4, dim,
			"Enter  play",
			"S      shop",
			"T      theme",
			"Q      quit",
			"",
			fmt.Sprintf("profile %s   %d XP   theme %s", f.sess.Profile(), f.sess.Catalog().XP(), f.sess.Theme()),
		)
	case ModeShop:
		f.drawShop(header, dim)
	case ModePlaying, ModeGameOver:
		grid := Project(snap, cols, max(1, rows-2), ThemeFor(f.sess.Theme()))
		for y := 0; y < grid.Rows; y++ {
			for x := 0; x < grid.Cols; x++ {
				c := grid.At(x, y)
				f.screen.SetContent(x, y+1, c.Rune, nil, c.Style)
			}
		}
		f.putString(0, 0, f.status.Line(snap), header)
		help := "wasd move  space shoot  x dash  f mutator  r restart  p pause"
		if snap.Paused {
			help = "PAUSED  p resume  q quit to title"
		}
		if f.mode == ModeGameOver {
			help = "GAME OVER  enter retry  c copy summary  esc title"
			if s := f.status.Summary; s != nil {
				help = fmt.Sprintf("GAME OVER  %d pts  round %d  +%d XP  |  enter retry  c copy  esc title", s.Score, s.Round, s.GainedXP)
			}
		}
		f.putString(0, rows-1, help, dim)
	}
	if msg := f.status.Message(); msg != "" {
		f.putString(max(0, cols-len(msg)-1), 0, msg, tcell.StyleDefault.Foreground(tcell.ColorYellow))
	}
	f.screen.Show()
}

func (f *Frontend) drawShop(header, dim tcell.Style) {
	cat := f.sess.Catalog()
	f.putString(2, 1, fmt.Sprintf("SHOP  %d XP   (enter buy/toggle, esc back)", cat.XP()), header)
	for i, o := range f.offers {
		st := dim
		prefix := "  "
		if i == f.cursor {
			st, prefix = header, "> "
		}
		f.putString(2, 3+i, fmt.Sprintf("%s%-16s %-10s %s", prefix, o.Name, cat.Status(o), o.Desc), st)
	}
}

func (f *Frontend) drawLines(y int, st tcell.Style, lines ...string) {
	for i, l := range lines {
		f.putString(4, y+i, l, st)
	}
}

func (f *Frontend) putString(x, y int, s string, st tcell.Style) {
	for _, r := range s {
		f.screen.SetContent(x, y, r, nil, st)
		x++
	}
}
