// Package store persists player progress as namespaced key/value pairs.
//
// Values are JSON-encoded and opaque to the backend. A Store is a view onto a
// single namespace; the namespace is derived from the active profile (guest or
// a named user), so two profiles never see each other's keys.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Keys read and written by the game.
const (
	KeyBest           = "best"
	KeyXP             = "xp"
	KeyMutatorIndex   = "mutator_index"
	KeyOwnedUpgrades  = "owned_upgrades"
	KeyUpgradeToggles = "upgrade_toggles"
	KeyOwnedChars     = "owned_chars"
	KeySelectedChar   = "selected_char"
	KeyOwnedSkins     = "owned_skins"
	KeySelectedSkin   = "selected_skin"
	KeyVolume         = "volume"
	KeyTheme          = "theme"
)

// ErrClosed is returned by a backend that has been closed.
var ErrClosed = errors.New("store: backend closed")

// Store is the narrow contract the simulation and catalog consume. Last write
// wins per key; there are no transactions.
type Store interface {
	// Get decodes the value stored under key into dst. It reports false when
	// the key is absent.
	Get(key string, dst any) (bool, error)
	Set(key string, value any) error
}

// Entry is one raw persisted pair.
type Entry struct {
	Namespace string
	Key       string
	Value     []byte
}

// Backend stores raw bytes per (namespace, key).
type Backend interface {
	Load(ns, key string) ([]byte, bool, error)
	Save(ns, key string, value []byte) error
	// Entries lists every pair whose namespace starts with prefix.
	Entries(prefix string) ([]Entry, error)
	// Clear removes every key in ns.
	Clear(ns string) error
	Close() error
}

// View is a Store bound to one namespace of a Backend.
type View struct {
	b  Backend
	ns string
}

// NewView returns a Store over ns.
func NewView(b Backend, ns string) *View {
	return &View{b: b, ns: ns}
}

// Namespace returns the namespace this view reads and writes.
func (v *View) Namespace() string { return v.ns }

func (v *View) Get(key string, dst any) (bool, error) {
	raw, ok, err := v.b.Load(v.ns, key)
	if err != nil {
		return false, fmt.Errorf("load %s/%s: %w", v.ns, key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// Malformed values are treated as missing.
		return false, nil
	}
	return true, nil
}

func (v *View) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := v.b.Save(v.ns, key, raw); err != nil {
		return fmt.Errorf("save %s/%s: %w", v.ns, key, err)
	}
	return nil
}

// Int reads an integer key, returning def when it is missing, malformed or
// unreadable.
func Int(s Store, key string, def int) int {
	var v int
	ok, err := s.Get(key, &v)
	if err != nil || !ok {
		return def
	}
	return v
}

// Float reads a float key with the same defaulting rules as Int.
func Float(s Store, key string, def float64) float64 {
	var v float64
	ok, err := s.Get(key, &v)
	if err != nil || !ok {
		return def
	}
	return v
}

// String reads a string key with the same defaulting rules as Int.
func String(s Store, key, def string) string {
	var v string
	ok, err := s.Get(key, &v)
	if err != nil || !ok {
		return def
	}
	return v
}

// Strings reads a string list key with the same defaulting rules as Int.
func Strings(s Store, key string, def []string) []string {
	var v []string
	ok, err := s.Get(key, &v)
	if err != nil || !ok {
		return def
	}
	return v
}
