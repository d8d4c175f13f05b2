package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"

	"github.com/Garsondee/Echo-Arena/internal/catalog"
	"github.com/Garsondee/Echo-Arena/internal/game"
)

type runStats struct {
	runIndex int
	seed     int64

	finished bool // reached game over inside the tick budget
	endTick  int
	summary  game.RunSummary

	firstKillTick  int
	firstEchoTick  int
	firstBossTick  int
	firstDeathTick int

	kills      int
	bossKills  int
	echoSpawns int
	lifeLosses int
	restarts   int
	roundsDone int
	causes     map[string]int

	playerEvents int    // journal lines attributed to the player
	finalLine    string // value of the game_over entry

	timelines []game.Timeline
}

// scenarios maps a name to the progress a run starts with.
var scenarios = map[string][]game.HarnessOption{
	"baseline": nil,
	"loadout": {
		game.WithUpgrades(catalog.Echo, catalog.DoubleEcho, catalog.Speed, catalog.Vampire),
		game.WithCharacter(catalog.Dubsher),
	},
	"quadsher": {
		game.WithUpgrades(catalog.Echo),
		game.WithCharacter(catalog.Quadsher),
	},
}

func scenarioNames() string {
	names := make([]string, 0, len(scenarios))
	for k := range scenarios {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var scenario string
	var workers int
	var dumpPath string
	var logLevel string

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 36000, "tick budget per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&scenario, "scenario", "baseline", "scenario name")
	flag.IntVar(&workers, "workers", 4, "runs simulated in parallel")
	flag.StringVar(&dumpPath, "dump", "", "write summaries and echo timelines as msgpack to this file")
	flag.StringVar(&logLevel, "log-level", "warn", "zerolog level for sim diagnostics")
	flag.Parse()

	lvl, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		lvl = zerolog.WarnLevel
	}
	log := zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	opts, ok := scenarios[scenario]
	if !ok {
		fmt.Printf("error: unsupported scenario %q (supported: %s)\n", scenario, scenarioNames())
		return
	}

	batch := uuid.NewString()
	fmt.Printf("=== Headless Arena Report ===\n")
	fmt.Printf("batch=%s scenario=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n\n",
		batch, scenario, runs, ticks, seedBase, seedStep)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	all := make([]runStats, runs)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, workers))
	for i := 0; i < runs; i++ {
		g.Go(func() error {
			seed := seedBase + int64(i)*seedStep
			rs, err := runScenario(ctx, i+1, seed, ticks, opts, log.With().Int("run", i+1).Logger())
			if err != nil {
				return fmt.Errorf("run %d (seed %d): %w", i+1, seed, err)
			}
			all[i] = rs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("report aborted")
		os.Exit(1)
	}

	for _, rs := range all {
		printRun(rs)
	}
	printAggregate(all)

	if dumpPath != "" {
		if err := writeDump(dumpPath, batch, scenario, all); err != nil {
			log.Error().Err(err).Str("path", dumpPath).Msg("dump failed")
			os.Exit(1)
		}
		log.Info().Str("path", dumpPath).Msg("dump written")
	}
}

func runScenario(ctx context.Context, runIndex int, seed int64, ticks int, scenario []game.HarnessOption, log zerolog.Logger) (runStats, error) {
	opts := append([]game.HarnessOption{
		game.WithSeed(seed),
		game.WithPolicy(game.Autopilot()),
		game.WithLogger(log),
	}, scenario...)
	h, err := game.NewHarness(opts...)
	if err != nil {
		return runStats{}, err
	}
	end := h.RunUntil(func(h *game.Harness) bool {
		return h.Sim.State() != game.RunRunning || ctx.Err() != nil
	}, ticks)
	if err := ctx.Err(); err != nil {
		return runStats{}, err
	}

	rs := collectStats(h.SimLog.Entries())
	rs.runIndex = runIndex
	rs.seed = seed
	rs.endTick = end
	if end < 0 {
		rs.endTick = h.CurrentTick()
	}
	rs.playerEvents = len(h.SimLog.FilterEntity("P"))
	if e, ok := h.SimLog.LastOf("run", "game_over"); ok {
		rs.finalLine = e.Value
	}
	rs.summary, rs.finished = h.Sim.Summary()
	rs.timelines = h.Sim.Timelines()
	log.Debug().Int("tick", rs.endTick).Bool("finished", rs.finished).Int("score", rs.summary.Score).Msg("run complete")
	return rs, nil
}

// collectStats derives the per-run counters from the sim journal.
func collectStats(entries []game.SimLogEntry) runStats {
	rs := runStats{causes: map[string]int{}}
	for _, e := range entries {
		switch e.Category {
		case "combat":
			switch e.Key {
			case "kill":
				rs.kills++
			case "boss_kill":
				rs.bossKills++
			case "life_lost", "instant_kill":
				rs.lifeLosses++
				rs.causes[e.Value]++
			}
		case "echo":
			if e.Key == "spawn" {
				rs.echoSpawns++
			}
		case "round":
			switch e.Key {
			case "clear":
				rs.roundsDone++
			case "restart":
				rs.restarts++
			}
		}
	}
	rs.firstKillTick = firstTick(entries, "combat", "kill", "")
	rs.firstEchoTick = firstTick(entries, "echo", "spawn", "")
	rs.firstBossTick = firstTick(entries, "round", "boss_spawn", "")
	rs.firstDeathTick = firstTick(entries, "combat", "life_lost", "")
	return rs
}

func firstTick(entries []game.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

// outcome labels how a run ended.
func outcome(rs runStats) string {
	switch {
	case !rs.finished:
		return "timeout"
	case rs.bossKills > 0:
		return "boss_slain"
	case rs.roundsDone > 0:
		return "cleared_rounds"
	default:
		return "wiped_round1"
	}
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("outcome=%s end_tick=%d score=%d round=%d gained_xp=%d\n",
		outcome(rs), rs.endTick, rs.summary.Score, rs.summary.Round, rs.summary.GainedXP)
	fmt.Printf("phase_markers: first_kill=%d first_echo=%d first_boss=%d first_death=%d\n",
		rs.firstKillTick, rs.firstEchoTick, rs.firstBossTick, rs.firstDeathTick)
	fmt.Printf("event_totals: kills=%d boss_kills=%d echo_spawns=%d life_lost=%d rounds_cleared=%d restarts=%d\n",
		rs.kills, rs.bossKills, rs.echoSpawns, rs.lifeLosses, rs.roundsDone, rs.restarts)
	fmt.Printf("timelines=%d longest=%d frames\n", len(rs.timelines), longestTimeline(rs.timelines))
	fmt.Printf("death_causes: %s player_events=%d\n", joinCounts(rs.causes), rs.playerEvents)
	if rs.finalLine != "" {
		fmt.Printf("final: %s\n", rs.finalLine)
	}
	fmt.Println()
}

func printAggregate(all []runStats) {
	totalKills := 0
	totalBoss := 0
	totalEchoes := 0
	totalLosses := 0
	totalRounds := 0
	totalScore := 0
	finished := 0
	best := 0

	killTicks := make([]int, 0, len(all))
	echoTicks := make([]int, 0, len(all))
	bossTicks := make([]int, 0, len(all))
	deathTicks := make([]int, 0, len(all))
	causes := map[string]int{}
	outcomes := map[string]int{}

	for _, rs := range all {
		totalKills += rs.kills
		totalBoss += rs.bossKills
		totalEchoes += rs.echoSpawns
		totalLosses += rs.lifeLosses
		totalRounds += rs.roundsDone
		totalScore += rs.summary.Score
		best = max(best, rs.summary.Score)
		if rs.finished {
			finished++
		}
		if rs.firstKillTick >= 0 {
			killTicks = append(killTicks, rs.firstKillTick)
		}
		if rs.firstEchoTick >= 0 {
			echoTicks = append(echoTicks, rs.firstEchoTick)
		}
		if rs.firstBossTick >= 0 {
			bossTicks = append(bossTicks, rs.firstBossTick)
		}
		if rs.firstDeathTick >= 0 {
			deathTicks = append(deathTicks, rs.firstDeathTick)
		}
		for k, v := range rs.causes {
			causes[k] += v
		}
		outcomes[outcome(rs)]++
	}

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d finished=%d best_score=%d avg_score=%.1f\n",
		len(all), finished, best, avg(totalScore, len(all)))
	fmt.Printf("avg_events_per_run: kills=%.1f boss_kills=%.1f echo_spawns=%.1f life_lost=%.1f rounds_cleared=%.1f\n",
		avg(totalKills, len(all)), avg(totalBoss, len(all)), avg(totalEchoes, len(all)), avg(totalLosses, len(all)), avg(totalRounds, len(all)))
	fmt.Printf("phase_marker_avg_ticks: first_kill=%s first_echo=%s first_boss=%s first_death=%s\n",
		avgTickString(killTicks), avgTickString(echoTicks), avgTickString(bossTicks), avgTickString(deathTicks))
	fmt.Printf("outcomes: %s\n", joinCounts(outcomes))
	if top := topCause(causes); top != "" {
		fmt.Printf("top_death_cause=%s\n", top)
	}
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

// topCause returns the most frequent key as "name(n)". Ties go to the name
// that sorts first.
func topCause(counts map[string]int) string {
	best := ""
	bestN := 0
	for k, v := range counts {
		if v > bestN || (v == bestN && k < best) {
			best = k
			bestN = v
		}
	}
	if bestN == 0 {
		return ""
	}
	return fmt.Sprintf("%s(%d)", best, bestN)
}

func joinCounts(m map[string]int) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, m[k])
	}
	return strings.Join(parts, ",")
}

func longestTimeline(ts []game.Timeline) int {
	n := 0
	for _, t := range ts {
		n = max(n, t.Len())
	}
	return n
}

type timelineDump struct {
	Character string            `msgpack:"character"`
	Frames    []game.InputFrame `msgpack:"frames"`
}

type runDump struct {
	Run       int             `msgpack:"run"`
	Seed      int64           `msgpack:"seed"`
	Finished  bool            `msgpack:"finished"`
	EndTick   int             `msgpack:"end_tick"`
	Summary   game.RunSummary `msgpack:"summary"`
	Timelines []timelineDump  `msgpack:"timelines"`
	Causes    map[string]int  `msgpack:"causes"`
}

type reportDump struct {
	Batch    string    `msgpack:"batch"`
	Scenario string    `msgpack:"scenario"`
	Runs     []runDump `msgpack:"runs"`
}

func buildDump(batch, scenario string, all []runStats) reportDump {
	d := reportDump{Batch: batch, Scenario: scenario, Runs: make([]runDump, 0, len(all))}
	for _, rs := range all {
		rd := runDump{
			Run:      rs.runIndex,
			Seed:     rs.seed,
			Finished: rs.finished,
			EndTick:  rs.endTick,
			Summary:  rs.summary,
			Causes:   rs.causes,
		}
		for _, t := range rs.timelines {
			rd.Timelines = append(rd.Timelines, timelineDump{Character: t.Character().String(), Frames: t.Frames()})
		}
		d.Runs = append(d.Runs, rd)
	}
	return d
}

func writeDump(path, batch, scenario string, all []runStats) error {
	d := buildDump(batch, scenario, all)
	raw, err := msgpack.Marshal(&d)
	if err != nil {
		return fmt.Errorf("encode dump: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write dump: %w", err)
	}
	return nil
}
