package render

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	feedPanelWidth = 260
	feedMaxEntries = 40
	feedLineHeight = 16
)

// FeedKind tags an entry's colour in the feed panel.
type FeedKind int

const (
	FeedInfo FeedKind = iota
	FeedGood
	FeedWarn
)

// FeedEntry is a single line in the event feed.
type FeedEntry struct {
	Tick    int
	Kind    FeedKind
	Message string
}

// FeedLog is a ring buffer of toast messages rendered in a side panel.
type FeedLog struct {
	entries []FeedEntry
	head    int
	count   int
}

// NewFeedLog creates a feed with a fixed capacity.
func NewFeedLog() *FeedLog {
	return &FeedLog{entries: make([]FeedEntry, feedMaxEntries)}
}

// Add appends an entry, overwriting the oldest once full.
func (f *FeedLog) Add(tick int, kind FeedKind, msg string) {
	f.entries[f.head] = FeedEntry{Tick: tick, Kind: kind, Message: msg}
	f.head = (f.head + 1) % feedMaxEntries
	if f.count < feedMaxEntries {
		f.count++
	}
}

// Len returns the number of stored entries.
func (f *FeedLog) Len() int { return f.count }

// Recent returns entries in chronological order (oldest first).
func (f *FeedLog) Recent() []FeedEntry {
	out := make([]FeedEntry, f.count)
	for i := 0; i < f.count; i++ {
		idx := (f.head - f.count + i + feedMaxEntries) % feedMaxEntries
		out[i] = f.entries[idx]
	}
	return out
}

// Latest returns the newest entry, or false when the feed is empty.
func (f *FeedLog) Latest() (FeedEntry, bool) {
	if f.count == 0 {
		return FeedEntry{}, false
	}
	return f.entries[(f.head-1+feedMaxEntries)%feedMaxEntries], true
}

// Clear empties the feed.
func (f *FeedLog) Clear() {
	f.head, f.count = 0, 0
}

func feedColor(k FeedKind) color.RGBA {
	switch k {
	case FeedGood:
		return color.RGBA{R: 240, G: 200, B: 80, A: 255}
	case FeedWarn:
		return color.RGBA{R: 230, G: 90, B: 90, A: 255}
	default:
		return color.RGBA{R: 150, G: 190, B: 230, A: 255}
	}
}

// Draw renders the feed panel at panelX, newest entry at the bottom.
func (f *FeedLog) Draw(screen *ebiten.Image, panelX, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, feedPanelWidth, float32(panelH), color.RGBA{R: 10, G: 10, B: 16, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1, color.RGBA{R: 50, G: 50, B: 80, A: 255}, false)
	vector.FillRect(screen, float32(panelX), 0, feedPanelWidth, 20, color.RGBA{R: 20, G: 20, B: 34, A: 255}, false)
	drawText(screen, "EVENTS", panelX+8, 4, color.RGBA{R: 200, G: 200, B: 220, A: 255})

	entries := f.Recent()
	maxVisible := (panelH - 28) / feedLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}
	const recent = 3
	y := 26
	for i, e := range entries {
		if i >= len(entries)-recent {
			vector.FillRect(screen, float32(panelX+2), float32(y), feedPanelWidth-4, feedLineHeight, color.RGBA{R: 28, G: 28, B: 44, A: 160}, false)
		}
		col := feedColor(e.Kind)
		vector.FillRect(screen, float32(panelX+5), float32(y+5), 3, 6, col, false)
		drawText(screen, fmt.Sprintf("%5d %s", e.Tick, e.Message), panelX+12, y+1, col)
		y += feedLineHeight
	}
}
