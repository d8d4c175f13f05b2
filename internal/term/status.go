package term

import (
	"fmt"

	"github.com/Garsondee/Echo-Arena/internal/game"
)

// toastTicks is how long a toast stays on the status line.
const toastTicks = 120

// Status is the terminal Presenter. It keeps the readouts the status line
// shows and the last toast.
type Status struct {
	Timer   float64
	Round   int
	Lives   int
	Score   int
	Mult    float64
	Summary *game.RunSummary

	toast    string
	toastTTL int
}

var _ game.Presenter = (*Status)(nil)

func NewStatus() *Status { return &Status{Mult: 1} }

func (s *Status) UpdateTimer(v float64) { s.Timer = v }
func (s *Status) UpdateRound(r int)     { s.Round = r }
func (s *Status) UpdateLives(l int)     { s.Lives = l }

func (s *Status) UpdateScore(score int, mult float64) {
	s.Score = score
	s.Mult = mult
}

func (s *Status) ShowGameOver(sum game.RunSummary) {
	s.Summary = &sum
	s.Toast(fmt.Sprintf("Game over: %d pts", sum.Score))
}

func (s *Status) Toast(msg string) {
	s.toast = msg
	s.toastTTL = toastTicks
}

// Tick ages the toast.
func (s *Status) Tick() {
	if s.toastTTL > 0 {
		s.toastTTL--
	}
}

// Message returns the toast while it is visible.
func (s *Status) Message() string {
	if s.toastTTL <= 0 {
		return ""
	}
	return s.toast
}

// Line is the status bar text.
func (s *Status) Line(snap game.Snapshot) string {
	line := fmt.Sprintf("R%d  %5.2fs  lives %d  score %d x%.1f  best %d  xp %d",
		s.Round, s.Timer, s.Lives, s.Score, s.Mult, snap.Best, snap.TotalXP)
	if snap.Mutator.Name != "" {
		line += "  [" + snap.Mutator.Name + "]"
	}
	return line
}
