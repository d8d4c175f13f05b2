package render

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Echo-Arena/internal/catalog"
	"github.com/Garsondee/Echo-Arena/internal/game"
	"github.com/Garsondee/Echo-Arena/internal/session"
	"github.com/Garsondee/Echo-Arena/internal/store"
)

// scriptKeys is a Keys source driven by the test. just is cleared after
// every frame.
type scriptKeys struct {
	held  map[ebiten.Key]bool
	just  map[ebiten.Key]bool
	mouse map[ebiten.MouseButton]bool
	x, y  int
	chars []rune
}

func newScriptKeys() *scriptKeys {
	return &scriptKeys{
		held:  map[ebiten.Key]bool{},
		just:  map[ebiten.Key]bool{},
		mouse: map[ebiten.MouseButton]bool{},
	}
}

func (k *scriptKeys) Pressed(key ebiten.Key) bool         { return k.held[key] || k.just[key] }
func (k *scriptKeys) JustPressed(key ebiten.Key) bool     { return k.just[key] }
func (k *scriptKeys) MouseDown(b ebiten.MouseButton) bool { return k.mouse[b] }
func (k *scriptKeys) Cursor() (int, int)                  { return k.x, k.y }

func (k *scriptKeys) Chars() []rune {
	c := k.chars
	k.chars = nil
	return c
}

func (k *scriptKeys) tap(key ebiten.Key) { k.just[key] = true }

type nopClip struct{ text string }

func (c *nopClip) ReadAll() (string, error) { return c.text, nil }

func (c *nopClip) WriteAll(s string) error {
	c.text = s
	return nil
}

type uiFixture struct {
	g    *Game
	keys *scriptKeys
	hud  *HUD
	clip *nopClip
	st   store.Store
}

func newUI(t *testing.T, xp int) uiFixture {
	t.Helper()
	b := store.NewMemory()
	profiles := store.NewProfiles(b, "")
	profiles.SetHashCost(4)
	guest, err := profiles.Active()
	if err != nil {
		t.Fatal(err)
	}
	if err := guest.Set(store.KeyXP, xp); err != nil {
		t.Fatal(err)
	}
	cat, err := catalog.New(guest)
	if err != nil {
		t.Fatal(err)
	}
	hud := NewHUD(nil)
	seq := 0
	sim, err := game.New(game.Deps{
		Store: guest, Catalog: cat, Presenter: hud,
		Width: 640, Height: 400,
		NewRunID: func() string {
			seq++
			return fmt.Sprintf("ui-%d", seq)
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	clip := &nopClip{}
	sess, err := session.New(session.Options{Sim: sim, Profiles: profiles, Catalog: cat, Clipboard: clip, Log: zerolog.Nop()})
	if err != nil {
		t.Fatal(err)
	}
	keys := newScriptKeys()
	g, err := NewGame(Options{Session: sess, HUD: hud, Keys: keys, FrameDelta: 1.0 / 60, Log: zerolog.Nop()})
	if err != nil {
		t.Fatal(err)
	}
	return uiFixture{g: g, keys: keys, hud: hud, clip: clip, st: guest}
}

// frame runs one Update and clears edge-triggered keys.
func (f uiFixture) frame(t *testing.T) error {
	t.Helper()
	err := f.g.Update()
	clear(f.keys.just)
	return err
}

func (f uiFixture) press(t *testing.T, keys ...ebiten.Key) {
	t.Helper()
	for _, k := range keys {
		f.keys.tap(k)
		if err := f.frame(t); err != nil {
			t.Fatalf("update after %v: %v", k, err)
		}
	}
}

// --- feed ---

func TestFeedLog_RingOrder(t *testing.T) {
	f := NewFeedLog()
	if _, ok := f.Latest(); ok {
		t.Fatal("empty feed has a latest entry")
	}
	for i := 0; i < feedMaxEntries+5; i++ {
		f.Add(i, FeedInfo, fmt.Sprintf("m%d", i))
	}
	if f.Len() != feedMaxEntries {
		t.Fatalf("len = %d", f.Len())
	}
	got := f.Recent()
	if got[0].Message != "m5" || got[len(got)-1].Message != fmt.Sprintf("m%d", feedMaxEntries+4) {
		t.Fatalf("order: first %q last %q", got[0].Message, got[len(got)-1].Message)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Tick <= got[i-1].Tick {
			t.Fatalf("not chronological at %d", i)
		}
	}
	f.Clear()
	if f.Len() != 0 || len(f.Recent()) != 0 {
		t.Fatal("clear kept entries")
	}
}

// --- hud ---

func TestHUD_PresenterState(t *testing.T) {
	h := NewHUD(nil)
	h.UpdateRound(1)
	h.UpdateRound(2)
	h.UpdateLives(2)
	h.UpdateScore(150, 1.5)
	h.UpdateTimer(4.25)

	timer, round, lives, score, mult := h.Values()
	if timer != 4.25 || round != 2 || lives != 2 || score != 150 || mult != 1.5 {
		t.Fatalf("values = %v %d %d %d %v", timer, round, lives, score, mult)
	}
	if e, ok := h.Feed().Latest(); !ok || e.Message != "Round 2" {
		t.Fatalf("feed latest = %+v", e)
	}
	if h.Feed().Len() != 1 {
		t.Fatalf("first round announced: %d entries", h.Feed().Len())
	}
}

func TestHUD_ToastExpires(t *testing.T) {
	h := NewHUD(nil)
	h.Toast("Bought Echo")
	if msg, ok := h.Banner(); !ok || msg != "Bought Echo" {
		t.Fatalf("banner = %q %v", msg, ok)
	}
	for i := 0; i < toastFrames; i++ {
		h.Tick()
	}
	if _, ok := h.Banner(); ok {
		t.Fatal("banner outlived its frames")
	}
	if e, _ := h.Feed().Latest(); e.Kind != FeedGood {
		t.Fatalf("kind = %v", e.Kind)
	}
}

func TestHUD_ShakeOnLifeLoss(t *testing.T) {
	h := NewHUD(nil)
	h.UpdateLives(3)
	if dx, dy := h.Shake(); dx != 0 || dy != 0 || h.shakeTTL != 0 {
		t.Fatal("gaining lives started a shake")
	}
	h.UpdateLives(2)
	if h.shakeTTL != shakeFrames {
		t.Fatalf("shake ttl = %d", h.shakeTTL)
	}
	var right, left bool
	for i := 0; i < shakeFrames; i++ {
		h.Tick()
		dx, dy := h.Shake()
		if dx < -3 || dx > 4 || dy < -2 || dy > 2 {
			t.Fatalf("offset (%d, %d) out of range", dx, dy)
		}
		right = right || dx > 0
		left = left || dx < 0
	}
	if !right || !left {
		t.Fatalf("shake never swung both ways: right=%v left=%v", right, left)
	}
	if dx, dy := h.Shake(); dx != 0 || dy != 0 {
		t.Fatalf("shake outlived its frames: (%d, %d)", dx, dy)
	}
}

func TestHUD_GameOverSummary(t *testing.T) {
	h := NewHUD(nil)
	if _, ok := h.Summary(); ok {
		t.Fatal("summary before game over")
	}
	h.ShowGameOver(game.RunSummary{Score: 320})
	if s, ok := h.Summary(); !ok || s.Score != 320 {
		t.Fatalf("summary = %+v", s)
	}
	h.ClearSummary()
	if _, ok := h.Summary(); ok {
		t.Fatal("summary survived clear")
	}
}

func TestToastKind(t *testing.T) {
	tests := []struct {
		msg  string
		want FeedKind
	}{
		{"Mutators unlock at 2000 XP", FeedWarn},
		{"Need 100 XP for Vampire", FeedWarn},
		{"Boss defeated", FeedGood},
		{"+100 clear bonus", FeedGood},
		{"Bought Echo", FeedGood},
		{"Mutator: Low Gravity", FeedInfo},
	}
	for _, tt := range tests {
		if got := toastKind(tt.msg); got != tt.want {
			t.Errorf("toastKind(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}

// --- menu and text entry ---

func TestMenu_Wraps(t *testing.T) {
	m := NewMenu([]string{"a", "b", "c"})
	m.Move(-1)
	if m.Selected() != 2 {
		t.Fatalf("up from top = %d", m.Selected())
	}
	m.Move(1)
	if m.Selected() != 0 {
		t.Fatalf("down from bottom = %d", m.Selected())
	}
	m.Move(7)
	if m.Selected() != 1 {
		t.Fatalf("move 7 = %d", m.Selected())
	}
	empty := NewMenu(nil)
	empty.Move(1)
	if empty.Cursor != 0 {
		t.Fatal("empty menu moved")
	}
}

func TestTextEntry(t *testing.T) {
	var e TextEntry
	e.Begin()
	e.Type([]rune("  a:b\tc"))
	if e.String() != "  abc" {
		t.Fatalf("buffer = %q", e.String())
	}
	e.Backspace()
	if got := e.Submit(); got != "ab" || e.Active {
		t.Fatalf("submit = %q active=%v", got, e.Active)
	}
	e.Begin()
	e.Type([]rune(strings.Repeat("x", nameLimit+10)))
	if len(e.String()) != nameLimit {
		t.Fatalf("len = %d", len(e.String()))
	}
	e.Cancel()
	if e.Active || e.String() != "" {
		t.Fatal("cancel kept state")
	}
}

func TestTextEntry_Secret(t *testing.T) {
	e := TextEntry{Secret: true}
	e.Begin()
	e.Type([]rune(" a:b\t"))
	if e.String() != "****" {
		t.Fatalf("masked = %q", e.String())
	}
	if got := e.Submit(); got != " a:b" {
		t.Fatalf("secret = %q, want it untrimmed", got)
	}
	e.Begin()
	e.Type([]rune(strings.Repeat("x", passwordLimit+5)))
	if len(e.String()) != passwordLimit {
		t.Fatalf("len = %d", len(e.String()))
	}
}

func TestPaletteFor(t *testing.T) {
	for _, name := range session.Themes {
		if _, ok := palettes[name]; !ok {
			t.Errorf("theme %q has no palette", name)
		}
	}
	if PaletteFor("sepia") != palettes["default"] {
		t.Fatal("unknown theme should fall back to default")
	}
	if PaletteFor("neon").Floor == PaletteFor("default").Floor {
		t.Fatal("neon floor matches default")
	}
}

// --- input mapping ---

func TestReadInput(t *testing.T) {
	k := newScriptKeys()
	k.held[ebiten.KeyW] = true
	k.held[ebiten.KeyArrowLeft] = true
	k.held[ebiten.KeyShiftLeft] = true
	k.mouse[ebiten.MouseButtonLeft] = true
	k.x, k.y = 116, 66
	k.tap(ebiten.KeyF)

	in := ReadInput(k, 16, 16)
	if !in.Up || !in.Left || in.Down || in.Right {
		t.Fatalf("movement = %+v", in)
	}
	if !in.Shoot || !in.Dash || !in.Mutator || in.Restart {
		t.Fatalf("actions = %+v", in)
	}
	if in.Aim.X != 100 || in.Aim.Y != 50 {
		t.Fatalf("aim = %+v", in.Aim)
	}
}

// --- screen flow ---

func TestGame_PlayPauseQuitToTitle(t *testing.T) {
	f := newUI(t, 0)
	if f.g.Screen() != ScreenTitle {
		t.Fatalf("initial screen = %s", f.g.Screen())
	}
	f.press(t, ebiten.KeyEnter)
	if f.g.Screen() != ScreenPlaying || f.g.sim.State() != game.RunRunning {
		t.Fatalf("after play: %s / %s", f.g.Screen(), f.g.sim.State())
	}

	f.press(t, ebiten.KeyP)
	if !f.g.sim.Paused() {
		t.Fatal("P did not pause")
	}
	tick := f.g.sim.Tick()
	f.press(t, ebiten.KeyA)
	if f.g.sim.Tick() != tick {
		t.Fatal("sim stepped while paused")
	}
	f.press(t, ebiten.KeyQ)
	if f.g.Screen() != ScreenTitle || f.g.sim.State() != game.RunNotStarted {
		t.Fatalf("after quit: %s / %s", f.g.Screen(), f.g.sim.State())
	}
}

func TestGame_ShopBuysThroughSession(t *testing.T) {
	f := newUI(t, 25)
	f.press(t, ebiten.KeyArrowDown, ebiten.KeyEnter)
	if f.g.Screen() != ScreenShop {
		t.Fatalf("screen = %s", f.g.Screen())
	}
	// First offer is Echo.
	f.press(t, ebiten.KeyEnter)
	if msg, ok := f.hud.Banner(); !ok || msg != "Bought Echo" {
		t.Fatalf("banner = %q", msg)
	}
	if xp := store.Int(f.st, store.KeyXP, 0); xp != 15 {
		t.Fatalf("xp = %d", xp)
	}
	f.press(t, ebiten.KeyEscape)
	if f.g.Screen() != ScreenTitle {
		t.Fatalf("escape from shop: %s", f.g.Screen())
	}
}

// typeLine types text into the open entry and submits it.
func (f uiFixture) typeLine(t *testing.T, text string) {
	t.Helper()
	f.keys.chars = []rune(text)
	if err := f.frame(t); err != nil {
		t.Fatal(err)
	}
	f.press(t, ebiten.KeyEnter)
}

func TestGame_ProfileRegisterThenLoginByTyping(t *testing.T) {
	f := newUI(t, 0)
	f.press(t, ebiten.KeyArrowDown, ebiten.KeyArrowDown, ebiten.KeyEnter)
	if f.g.Screen() != ScreenProfile {
		t.Fatalf("screen = %s", f.g.Screen())
	}

	f.press(t, ebiten.KeyArrowDown, ebiten.KeyEnter)
	if !f.g.name.Active || !f.g.signup {
		t.Fatal("register did not open name entry")
	}
	// M is a global key but must not toggle mute while typing.
	f.keys.tap(ebiten.KeyM)
	f.typeLine(t, "dee")
	if !f.g.pass.Active || f.g.pending != "dee" {
		t.Fatalf("password entry not opened, pending %q", f.g.pending)
	}
	f.keys.chars = []rune("pa:ss")
	if err := f.frame(t); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(f.g.profileFooter(), "*****_") {
		t.Fatalf("footer = %q", f.g.profileFooter())
	}
	f.press(t, ebiten.KeyEnter)
	if f.g.sess.User() != "dee" {
		t.Fatalf("user = %q", f.g.sess.User())
	}
	if f.g.typing() || f.g.Screen() != ScreenProfile {
		t.Fatal("entry still open")
	}

	// Log out, then log back in with a wrong and a right password.
	f.press(t, ebiten.KeyArrowDown, ebiten.KeyEnter)
	if f.g.sess.User() != "" {
		t.Fatalf("logout left %q", f.g.sess.User())
	}
	f.g.profile.Cursor = profileLogin
	f.press(t, ebiten.KeyEnter)
	f.typeLine(t, "dee")
	f.typeLine(t, "nope")
	if msg, _ := f.hud.Banner(); !strings.HasPrefix(msg, "Error:") || f.g.sess.User() != "" {
		t.Fatalf("bad password: toast %q user %q", msg, f.g.sess.User())
	}
	f.press(t, ebiten.KeyEnter)
	f.typeLine(t, "dee")
	f.typeLine(t, "pa:ss")
	if f.g.sess.User() != "dee" {
		t.Fatalf("user = %q after login", f.g.sess.User())
	}
}

func TestGame_CredentialEntryEscapes(t *testing.T) {
	f := newUI(t, 0)
	f.g.screen = ScreenProfile
	f.press(t, ebiten.KeyEnter)
	f.typeLine(t, "ann")
	f.press(t, ebiten.KeyEscape)
	if f.g.typing() || f.g.pending != "" || f.g.Screen() != ScreenProfile {
		t.Fatal("escape did not close the entry")
	}
}

func TestGame_ThemeCyclesFromProfile(t *testing.T) {
	f := newUI(t, 0)
	f.g.screen = ScreenProfile
	f.g.profile.Cursor = profileTheme
	f.press(t, ebiten.KeyEnter)
	if f.g.sess.Theme() != "neon" {
		t.Fatalf("theme = %q", f.g.sess.Theme())
	}
	if got := store.String(f.st, store.KeyTheme, ""); got != "neon" {
		t.Fatalf("stored theme = %q", got)
	}
	if PaletteFor(f.g.sess.Theme()) != palettes["neon"] {
		t.Fatal("palette does not follow the theme")
	}
}

func TestGame_GameOverCopyAndRetry(t *testing.T) {
	f := newUI(t, 0)
	f.press(t, ebiten.KeyEnter)
	f.g.screen = ScreenGameOver
	f.hud.ShowGameOver(game.RunSummary{RunID: "ui-1", Score: 10})

	f.press(t, ebiten.KeyC)
	// The sim itself never ended, so there is nothing to copy.
	if msg, _ := f.hud.Banner(); msg != "No finished run to copy" || f.clip.text != "" {
		t.Fatalf("copy: toast %q clip %q", msg, f.clip.text)
	}
	f.press(t, ebiten.KeyEnter)
	if f.g.Screen() != ScreenPlaying {
		t.Fatalf("retry screen = %s", f.g.Screen())
	}
	if _, ok := f.hud.Summary(); ok {
		t.Fatal("summary not cleared on retry")
	}
}

func TestGame_QuitTerminates(t *testing.T) {
	f := newUI(t, 0)
	f.keys.tap(ebiten.KeyEscape)
	if err := f.frame(t); !errors.Is(err, ebiten.Termination) {
		t.Fatalf("err = %v, want Termination", err)
	}
}

func TestGame_Layout(t *testing.T) {
	f := newUI(t, 0)
	w, h := f.g.Layout(0, 0)
	if w != 640+2*arenaMargin+feedPanelWidth || h != 400+2*arenaMargin {
		t.Fatalf("layout = %dx%d", w, h)
	}
}
