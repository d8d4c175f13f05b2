// Package session holds the frontend-neutral glue between a running Sim and
// the player's profile: login and logout, the shop, clipboard export and
// import, and the persisted master volume. Both the window and terminal
// frontends drive the game through a Session.
package session

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Echo-Arena/internal/catalog"
	"github.com/Garsondee/Echo-Arena/internal/game"
	"github.com/Garsondee/Echo-Arena/internal/store"
)

// volumeStep is the change applied by one volume key press.
const volumeStep = 0.1

// Themes lists the colour themes in cycle order. The first is the default;
// frontends map each name to a palette.
var Themes = []string{"default", "neon", "mono"}

// Mixer is the volume surface of the audio backend.
type Mixer interface {
	SetVolume(v float64)
	Volume() float64
	ToggleMute() bool
	Muted() bool
}

// Clipboard reads and writes plain text.
type Clipboard interface {
	WriteAll(text string) error
	ReadAll() (string, error)
}

// SystemClipboard is the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }
func (SystemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }

// Options configure New. Sim, Profiles and Catalog are required.
type Options struct {
	Sim       *game.Sim
	Profiles  *store.Profiles
	Catalog   *catalog.Catalog
	Mixer     Mixer
	Clipboard Clipboard
	Log       zerolog.Logger
}

// Session is not safe for concurrent use; the frontend's update loop owns it.
type Session struct {
	sim      *game.Sim
	profiles *store.Profiles
	cat      *catalog.Catalog
	mixer    Mixer
	clip     Clipboard
	log      zerolog.Logger
	st       *store.View
	user     string
	theme    string
}

// New binds the Sim to the active profile and restores its volume.
func New(o Options) (*Session, error) {
	if o.Sim == nil || o.Profiles == nil || o.Catalog == nil {
		return nil, errors.New("session: Sim, Profiles and Catalog are required")
	}
	if o.Clipboard == nil {
		o.Clipboard = SystemClipboard{}
	}
	s := &Session{
		sim:      o.Sim,
		profiles: o.Profiles,
		cat:      o.Catalog,
		mixer:    o.Mixer,
		clip:     o.Clipboard,
		log:      o.Log,
	}
	if err := s.rebind(); err != nil {
		return nil, err
	}
	return s, nil
}

// rebind reloads everything that depends on the active profile.
func (s *Session) rebind() error {
	user, err := s.profiles.Current()
	if err != nil {
		return err
	}
	v, err := s.profiles.Active()
	if err != nil {
		return err
	}
	if err := s.cat.Load(v); err != nil {
		return fmt.Errorf("load catalog for %s: %w", v.Namespace(), err)
	}
	s.sim.Rebind(v, s.cat)
	s.st = v
	s.user = user
	s.theme = normalizeTheme(store.String(v, store.KeyTheme, Themes[0]))
	if s.mixer != nil {
		s.mixer.SetVolume(store.Float(v, store.KeyVolume, s.mixer.Volume()))
	}
	s.log.Info().Str("profile", s.Profile()).Str("ns", v.Namespace()).Msg("profile bound")
	return nil
}

func (s *Session) Sim() *game.Sim            { return s.sim }
func (s *Session) Catalog() *catalog.Catalog { return s.cat }
func (s *Session) Store() store.Store        { return s.st }
func (s *Session) Mixer() Mixer              { return s.mixer }

// User returns the logged-in user, or "" for guest.
func (s *Session) User() string { return s.user }

// Profile is the display name of the active profile.
func (s *Session) Profile() string {
	if s.user == "" {
		return "guest"
	}
	return s.user
}

// Register creates a named profile and switches to it, abandoning any run in
// progress.
func (s *Session) Register(name, password string) (string, error) {
	if err := s.profiles.Register(name, password); err != nil {
		return "", err
	}
	if err := s.rebind(); err != nil {
		return "", err
	}
	return "Registered " + s.user, nil
}

// Login switches to a registered profile, abandoning any run in progress.
func (s *Session) Login(name, password string) (string, error) {
	if err := s.profiles.Login(name, password); err != nil {
		return "", err
	}
	if err := s.rebind(); err != nil {
		return "", err
	}
	return "Logged in as " + s.user, nil
}

// Logout returns to the guest profile.
func (s *Session) Logout() (string, error) {
	if s.user == "" {
		return "Already playing as guest", nil
	}
	if err := s.profiles.Logout(); err != nil {
		return "", err
	}
	if err := s.rebind(); err != nil {
		return "", err
	}
	return "Logged out", nil
}

// Reset wipes the active profile's progress.
func (s *Session) Reset() (string, error) {
	if err := s.profiles.Reset(); err != nil {
		return "", err
	}
	if err := s.rebind(); err != nil {
		return "", err
	}
	return "Progress reset for " + s.Profile(), nil
}

// Export copies every profile's progress to the clipboard as JSON.
func (s *Session) Export() (string, error) {
	var buf bytes.Buffer
	if err := s.profiles.Export(&buf); err != nil {
		return "", err
	}
	if err := s.clip.WriteAll(buf.String()); err != nil {
		return "", fmt.Errorf("copy export: %w", err)
	}
	return "Progress copied to clipboard", nil
}

// Import reads a bundle from the clipboard and rebinds the active profile.
func (s *Session) Import() (string, error) {
	text, err := s.clip.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "Clipboard is empty", nil
	}
	n, err := s.profiles.Import(strings.NewReader(text))
	if err != nil {
		return "", err
	}
	if err := s.rebind(); err != nil {
		return "", err
	}
	return fmt.Sprintf("Imported %d keys", n), nil
}

// Activate runs a shop offer. Purchases change XP, so the Sim's cached
// totals are refreshed; the run state is left alone.
func (s *Session) Activate(o catalog.Offer) (string, error) {
	msg, err := s.cat.Activate(o)
	if err != nil {
		return "", err
	}
	s.sim.RefreshProgress()
	return msg, nil
}

// CopySummary puts the last run's summary on the clipboard.
func (s *Session) CopySummary() (string, error) {
	sum, ok := s.sim.Summary()
	if !ok {
		return "No finished run to copy", nil
	}
	if err := s.clip.WriteAll(sum.String()); err != nil {
		return "", fmt.Errorf("copy summary: %w", err)
	}
	return "Summary copied", nil
}

// AdjustVolume nudges the master volume by steps and persists it.
func (s *Session) AdjustVolume(steps int) (string, error) {
	if s.mixer == nil {
		return "No audio", nil
	}
	s.mixer.SetVolume(s.mixer.Volume() + float64(steps)*volumeStep)
	v := s.mixer.Volume()
	if err := s.st.Set(store.KeyVolume, v); err != nil {
		return "", fmt.Errorf("persist volume: %w", err)
	}
	return fmt.Sprintf("Volume %d%%", int(v*100+0.5)), nil
}

// ToggleMute flips mute. Mute is not persisted.
func (s *Session) ToggleMute() string {
	if s.mixer == nil {
		return "No audio"
	}
	if s.mixer.ToggleMute() {
		return "Muted"
	}
	return "Sound on"
}

// Theme returns the active profile's colour theme.
func (s *Session) Theme() string { return s.theme }

// CycleTheme moves to the next theme and persists it.
func (s *Session) CycleTheme() (string, error) {
	next := Themes[0]
	for i, t := range Themes {
		if t == s.theme {
			next = Themes[(i+1)%len(Themes)]
			break
		}
	}
	if err := s.st.Set(store.KeyTheme, next); err != nil {
		return "", fmt.Errorf("persist theme: %w", err)
	}
	s.theme = next
	return "Theme: " + next, nil
}

func normalizeTheme(name string) string {
	for _, t := range Themes {
		if t == name {
			return t
		}
	}
	return Themes[0]
}
