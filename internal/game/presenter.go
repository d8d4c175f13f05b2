package game

// Presenter receives one-way HUD notifications from the simulation. None of
// its return values are consumed, and implementations must not call back
// into the Sim.
type Presenter interface {
	UpdateTimer(remaining float64)
	UpdateRound(round int)
	UpdateLives(lives int)
	UpdateScore(score int, multiplier float64)
	ShowGameOver(summary RunSummary)
	Toast(msg string)
}

// NopPresenter ignores every notification.
type NopPresenter struct{}

func (NopPresenter) UpdateTimer(float64) {}
func (NopPresenter) UpdateRound(int) {}
func (NopPresenter) UpdateLives(int) {}
func (NopPresenter) UpdateScore(int, float64) {}
func (NopPresenter) ShowGameOver(RunSummary) {}
func (NopPresenter) Toast(string) {}

// RecordingPresenter keeps the latest value of every hook plus all toasts.
// The headless harness uses it in place of a HUD.
type RecordingPresenter struct {
	Timer      float64
	Round      int
	Lives      int
	Score      int
	Multiplier float64
	GameOver   *RunSummary
	Toasts     []string

	LivesUpdates int
	RoundUpdates int
}

func (p *RecordingPresenter) UpdateTimer(v float64) { p.Timer = v }

func (p *RecordingPresenter) UpdateRound(r int) {
	p.Round = r
	p.RoundUpdates++
}

func (p *RecordingPresenter) UpdateLives(l int) {
	p.Lives = l
	p.LivesUpdates++
}

func (p *RecordingPresenter) UpdateScore(s int, m float64) {
	p.Score = s
	p.Multiplier = m
}

func (p *RecordingPresenter) ShowGameOver(s RunSummary) {
	cp := s
	p.GameOver = &cp
}

func (p *RecordingPresenter) Toast(msg string) { p.Toasts = append(p.Toasts, msg) }
