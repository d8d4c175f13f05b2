package game

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Garsondee/Echo-Arena/internal/catalog"
)

// dumpLog prints the full SimLog to t.Log so it appears in `go test -v` output.
func dumpLog(t *testing.T, h *Harness) {
	t.Helper()
	entries := h.SimLog.Entries()
	if len(entries) == 0 {
		t.Log("(no log entries)")
		return
	}
	for _, e := range entries {
		t.Log(e.String())
	}
}

// dumpSummary prints the scenario summary block.
func dumpSummary(t *testing.T, h *Harness) {
	t.Helper()
	t.Log(h.SimLog.Summary(h.CurrentTick(), h.Snapshot()))
	if sum, ok := h.Sim.Summary(); ok {
		t.Log(sum.String())
	}
}

// --- Scenario: Autopilot, no upgrades ---

func TestScenario_AutopilotBaseline(t *testing.T) {
	t.Log("=== TestScenario_AutopilotBaseline ===")
	t.Log("--- Setup: sher, no upgrades, default mutator ---")

	h := newHarness(t, WithSeed(42), WithPolicy(Autopilot()))
	h.RunUntil(func(h *Harness) bool { return h.Sim.State() != RunRunning }, 60*60*3)
	dumpLog(t, h)
	dumpSummary(t, h)

	if h.Sim.Kills() == 0 {
		t.Error("autopilot never killed anything")
	}
	if h.Sim.EchoCount() != 0 {
		t.Errorf("echoes without the upgrade: %d", h.Sim.EchoCount())
	}
}

// --- Scenario: Autopilot with a full loadout ---

func TestScenario_AutopilotLoadout(t *testing.T) {
	t.Log("=== TestScenario_AutopilotLoadout ===")
	t.Log("--- Setup: quadsher, echo+double echo+speed+distance+vampire+mega ---")

	h := newHarness(t,
		WithSeed(7),
		WithCharacter(catalog.Quadsher),
		WithUpgrades(catalog.Echo, catalog.DoubleEcho, catalog.Speed, catalog.Distance, catalog.Vampire, catalog.MegaMuscles),
		WithPolicy(Autopilot()),
	)
	h.RunUntil(func(h *Harness) bool {
		return h.Sim.State() != RunRunning || h.Sim.Round() >= 4
	}, 60*60*3)
	dumpSummary(t, h)

	rounds := h.Sim.Round() - 1
	if got := h.SimLog.CountCategory("echo", "spawn"); got < rounds || got > 2*rounds {
		t.Errorf("echo spawns = %d over %d completed rounds", got, rounds)
	}
	if h.Sim.EchoCount() != h.SimLog.CountCategory("echo", "spawn") {
		t.Errorf("live echoes %d != spawned %d", h.Sim.EchoCount(), h.SimLog.CountCategory("echo", "spawn"))
	}
	for _, tl := range h.Sim.Timelines() {
		if tl.Character() != catalog.Quadsher {
			t.Errorf("timeline tagged %s", tl.Character())
		}
	}
}

// --- Scenario: game over hands the run to the presenter ---

func TestScenario_GameOverReachesPresenter(t *testing.T) {
	h := newHarness(t, WithSeed(5))
	// Idle play at the centre eventually loses every life to the wave.
	tick := h.RunUntil(func(h *Harness) bool { return h.Sim.State() == RunGameOver }, 60*60*5)
	dumpSummary(t, h)
	if tick < 0 {
		t.Skip("idle player survived five minutes; nothing to check")
	}
	if h.Presenter.GameOver == nil {
		t.Fatal("presenter never saw the game over")
	}
	if h.Presenter.Lives != 0 || h.Sim.Lives() != 0 {
		t.Fatalf("lives = %d", h.Sim.Lives())
	}
	last, ok := h.SimLog.LastOf("run", "game_over")
	if !ok {
		t.Fatal("game over not logged")
	}
	if want := fmt.Sprintf("score %d", h.Sim.Score()); !strings.HasPrefix(last.Value, want) {
		t.Fatalf("game over entry = %q, want prefix %q", last.Value, want)
	}
	hits := h.SimLog.FilterEntity("P")
	if len(hits) == 0 {
		t.Fatal("no player entries before game over")
	}
	if fatal := hits[len(hits)-1]; fatal.NumVal != 0 || fatal.Tick != last.Tick {
		t.Fatalf("fatal hit = %+v, game over at tick %d", fatal, last.Tick)
	}
}
