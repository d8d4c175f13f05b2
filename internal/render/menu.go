package render

import (
	"strings"
	"unicode"
)

// Screen is the frontend's top-level mode.
type Screen int

const (
	ScreenTitle Screen = iota
	ScreenShop
	ScreenProfile
	ScreenPlaying
	ScreenGameOver
)

func (s Screen) String() string {
	switch s {
	case ScreenTitle:
		return "title"
	case ScreenShop:
		return "shop"
	case ScreenProfile:
		return "profile"
	case ScreenPlaying:
		return "playing"
	case ScreenGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Title menu entries.
const (
	titlePlay = iota
	titleShop
	titleProfile
	titleQuit
)

var titleItems = []string{"Play", "Shop", "Profile", "Quit"}

// Profile menu entries.
const (
	profileLogin = iota
	profileRegister
	profileLogout
	profileExport
	profileImport
	profileReset
	profileTheme
	profileBack
)

var profileItems = []string{
	"Log in as...",
	"Register...",
	"Log out",
	"Export progress to clipboard",
	"Import progress from clipboard",
	"Reset this profile",
	"Change theme",
	"Back",
}

// Menu is a vertical list with a wrapping cursor.
type Menu struct {
	Items  []string
	Cursor int
}

func NewMenu(items []string) *Menu { return &Menu{Items: items} }

// Move shifts the cursor by d, wrapping at both ends.
func (m *Menu) Move(d int) {
	n := len(m.Items)
	if n == 0 {
		return
	}
	m.Cursor = ((m.Cursor+d)%n + n) % n
}

// Selected is the cursor index clamped to the item count.
func (m *Menu) Selected() int {
	if m.Cursor >= len(m.Items) {
		return len(m.Items) - 1
	}
	return m.Cursor
}

// Typed text limits. Passwords stay under bcrypt's 72-byte input cap for
// ASCII.
const (
	nameLimit     = 24
	passwordLimit = 64
)

// TextEntry collects a single line of typed text. A Secret entry takes any
// printable rune and shows only asterisks.
type TextEntry struct {
	Active bool
	Secret bool
	buf    []rune
}

// Begin clears the buffer and starts capturing.
func (t *TextEntry) Begin() {
	t.Active = true
	t.buf = t.buf[:0]
}

// Cancel stops capturing and drops the text.
func (t *TextEntry) Cancel() {
	t.Active = false
	t.buf = t.buf[:0]
}

// Type appends printable runes. Names refuse ':' since it separates
// namespaces.
func (t *TextEntry) Type(rs []rune) {
	limit := nameLimit
	if t.Secret {
		limit = passwordLimit
	}
	for _, r := range rs {
		if len(t.buf) >= limit || !unicode.IsPrint(r) || (r == ':' && !t.Secret) {
			continue
		}
		t.buf = append(t.buf, r)
	}
}

func (t *TextEntry) Backspace() {
	if len(t.buf) > 0 {
		t.buf = t.buf[:len(t.buf)-1]
	}
}

// Submit stops capturing and returns the text. Names are trimmed; secrets
// are returned as typed.
func (t *TextEntry) Submit() string {
	s := string(t.buf)
	if !t.Secret {
		s = strings.TrimSpace(s)
	}
	t.Active = false
	t.buf = t.buf[:0]
	return s
}

func (t *TextEntry) String() string {
	if t.Secret {
		return strings.Repeat("*", len(t.buf))
	}
	return string(t.buf)
}
