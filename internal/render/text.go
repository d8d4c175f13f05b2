package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

// uiFace is the fixed 7x13 bitmap face used for every label.
var uiFace = text.NewGoXFace(basicfont.Face7x13)

// lineH is the row pitch for stacked labels.
const lineH = 15

// drawText draws s with its top-left corner at (x, y).
func drawText(dst *ebiten.Image, s string, x, y int, col color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(col)
	op.LineSpacing = lineH
	text.Draw(dst, s, uiFace, op)
}

// drawTextCentered draws s centred horizontally on cx.
func drawTextCentered(dst *ebiten.Image, s string, cx, y int, col color.Color) {
	drawText(dst, s, cx-textWidth(s)/2, y, col)
}

func textWidth(s string) int {
	w, _ := text.Measure(s, uiFace, lineH)
	return int(w)
}
