package game

import (
	"fmt"
	"strings"
)

// RunState is the run-level state machine.
type RunState int

const (
	RunNotStarted RunState = iota
	RunRunning
	RunGameOver
)

func (r RunState) String() string {
	switch r {
	case RunNotStarted:
		return "not_started"
	case RunRunning:
		return "running"
	case RunGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// RoundPhase is the cycle-level state machine. Ending is transient: it is
// entered and left within the same step.
type RoundPhase int

const (
	PhaseActive RoundPhase = iota
	PhaseEnding
)

func (p RoundPhase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseEnding:
		return "ending"
	default:
		return "unknown"
	}
}

// RunSummary is handed to the presenter when a run ends.
type RunSummary struct {
	RunID    string  `msgpack:"run_id"`
	Score    int     `msgpack:"score"`
	Best     int     `msgpack:"best"`
	GainedXP int     `msgpack:"gained_xp"`
	TotalXP  int     `msgpack:"total_xp"`
	Echoes   int     `msgpack:"echoes"`
	Kills    int     `msgpack:"kills"`
	Round    int     `msgpack:"round"`
	Mutator  string  `msgpack:"mutator"`
	Duration float64 `msgpack:"duration"` // simulated time units
}

// NewBest reports whether the run set the best score.
func (r RunSummary) NewBest() bool { return r.Score > 0 && r.Score >= r.Best }

// String formats the summary as the multi-line block copied to the clipboard.
func (r RunSummary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Echo Arena run %s\n", r.RunID)
	fmt.Fprintf(&sb, "score %d (best %d)\n", r.Score, r.Best)
	fmt.Fprintf(&sb, "round %d  kills %d  echoes %d\n", r.Round, r.Kills, r.Echoes)
	fmt.Fprintf(&sb, "xp +%d (total %d)\n", r.GainedXP, r.TotalXP)
	if r.Mutator != "" {
		fmt.Fprintf(&sb, "mutator %s\n", r.Mutator)
	}
	return sb.String()
}
