package render

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/Garsondee/Echo-Arena/internal/game"
	"github.com/Garsondee/Echo-Arena/internal/vmath"
)

// Keys is the slice of ebiten input the frontend reads. Tests swap in a
// scripted source.
type Keys interface {
	Pressed(k ebiten.Key) bool
	JustPressed(k ebiten.Key) bool
	MouseDown(b ebiten.MouseButton) bool
	Cursor() (x, y int)
	Chars() []rune
}

// ebitenKeys reads the live keyboard and mouse.
type ebitenKeys struct {
	chars []rune
}

func (*ebitenKeys) Pressed(k ebiten.Key) bool           { return ebiten.IsKeyPressed(k) }
func (*ebitenKeys) JustPressed(k ebiten.Key) bool       { return inpututil.IsKeyJustPressed(k) }
func (*ebitenKeys) MouseDown(b ebiten.MouseButton) bool { return ebiten.IsMouseButtonPressed(b) }
func (*ebitenKeys) Cursor() (int, int)                  { return ebiten.CursorPosition() }

func (k *ebitenKeys) Chars() []rune {
	k.chars = ebiten.AppendInputChars(k.chars[:0])
	return k.chars
}

func anyPressed(keys Keys, ks ...ebiten.Key) bool {
	for _, k := range ks {
		if keys.Pressed(k) {
			return true
		}
	}
	return false
}

func anyJust(keys Keys, ks ...ebiten.Key) bool {
	for _, k := range ks {
		if keys.JustPressed(k) {
			return true
		}
	}
	return false
}

// ReadInput maps the held keys to one frame of sim input. The arena is drawn
// at (offX, offY), so the cursor is shifted into arena coordinates. Mutator
// and restart are edge triggered.
func ReadInput(keys Keys, offX, offY int) game.Input {
	mx, my := keys.Cursor()
	return game.Input{
		Up:      anyPressed(keys, ebiten.KeyW, ebiten.KeyArrowUp),
		Down:    anyPressed(keys, ebiten.KeyS, ebiten.KeyArrowDown),
		Left:    anyPressed(keys, ebiten.KeyA, ebiten.KeyArrowLeft),
		Right:   anyPressed(keys, ebiten.KeyD, ebiten.KeyArrowRight),
		Shoot:   keys.Pressed(ebiten.KeySpace) || keys.MouseDown(ebiten.MouseButtonLeft),
		Dash:    anyPressed(keys, ebiten.KeyShiftLeft, ebiten.KeyShiftRight) || keys.MouseDown(ebiten.MouseButtonRight),
		Aim:     vmath.V(float64(mx-offX), float64(my-offY)),
		Mutator: keys.JustPressed(ebiten.KeyF),
		Restart: keys.JustPressed(ebiten.KeyR),
	}
}
