package game

import (
	"fmt"
	"strings"
)

// SimLogEntry is one recorded simulation event.
type SimLogEntry struct {
	Tick     int
	Entity   string  // "P", "E1", "N12", "BOSS", or "--" for global events
	Category string  // run, round, echo, combat, mutator, upgrade
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=0601] E1   echo      spawn            600 frames as sher
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%04d] %-4s %-9s %-16s %s",
		e.Tick, e.Entity, e.Category, e.Key, e.Value)
}

// SimLog collects structured events from a Sim. Unlike the on-screen feed it
// is unbounded and machine-readable; tests and the headless report read it.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, per-hit combat entries are
// recorded as well.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Add records a new entry.
func (sl *SimLog) Add(tick int, entity, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Entity:   entity,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, entity, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(tick, entity, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Len returns the number of entries.
func (sl *SimLog) Len() int { return len(sl.entries) }

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterEntity returns entries for one entity label.
func (sl *SimLog) FilterEntity(label string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Entity == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (sl *SimLog) FilterTickRange(fromTick, toTick int) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return SimLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	var sb strings.Builder
	for _, e := range sl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatRange returns a log string filtered to a tick range.
func (sl *SimLog) FormatRange(fromTick, toTick int) string {
	var sb strings.Builder
	for _, e := range sl.FilterTickRange(fromTick, toTick) {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of a snapshot plus the
// journal's event counts.
func (sl *SimLog) Summary(tick int, snap Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%04d ---\n", tick)
	fmt.Fprintf(&sb, "State: %s  round %d  %.2fs left\n", snap.State, snap.Round, snap.TimeLeft)
	fmt.Fprintf(&sb, "Lives: %d  score %d (x%.1f)  kills %d\n", snap.Lives, snap.Score, snap.Mult, snap.Kills)

	kinds := map[EnemyKind]int{}
	for _, e := range snap.Enemies {
		kinds[e.Kind]++
	}
	sb.WriteString("Enemies: ")
	if len(snap.Enemies) == 0 {
		sb.WriteString("none")
	}
	for k := Chaser; k < enemyKindCount; k++ {
		if n := kinds[k]; n > 0 {
			fmt.Fprintf(&sb, "%s=%d  ", k, n)
		}
	}
	sb.WriteByte('\n')
	if snap.Boss != nil {
		fmt.Fprintf(&sb, "Boss: hp %d/%d\n", snap.Boss.HP, snap.Boss.MaxHP)
	}
	fmt.Fprintf(&sb, "Echoes: %d  shots %d  hostile %d\n", len(snap.Echoes), len(snap.Shots), len(snap.Hostile))
	fmt.Fprintf(&sb, "Events: kills=%d lives_lost=%d echoes=%d rounds=%d\n",
		sl.CountCategory("combat", "kill"),
		sl.CountCategory("combat", "life_lost")+sl.CountCategory("combat", "instant_kill"),
		sl.CountCategory("echo", "spawn"),
		sl.CountCategory("round", "start"))
	return sb.String()
}
