package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// DefaultRoot prefixes every namespace written by the game.
const DefaultRoot = "echo_arena_v1"

const (
	metaNamespace  = "meta"
	authNamespace  = "auth"
	keyCurrentUser = "current_user"

	// MaxNameLen is the longest accepted profile name, in runes.
	MaxNameLen = 24
)

var (
	ErrInvalidName = errors.New("invalid profile name")
	ErrUserExists  = errors.New("user already exists")
	ErrUnknownUser = errors.New("unknown user")
	ErrBadPassword = errors.New("wrong password")
)

// authRecord is stored per user under <root>:auth.
type authRecord struct {
	Username string `json:"username"`
	Hash     []byte `json:"hash"`
}

// Namespace returns the namespace holding user's progress. An empty user is
// the guest profile.
func Namespace(root, user string) string {
	if user == "" {
		return root + ":guest"
	}
	return root + ":user:" + user
}

// Profiles switches between the guest profile and named local users. Each
// user has a bcrypt-hashed password kept apart from their progress, so Reset
// never removes credentials.
type Profiles struct {
	b    Backend
	root string
	cost int
}

func NewProfiles(b Backend, root string) *Profiles {
	if root == "" {
		root = DefaultRoot
	}
	return &Profiles{b: b, root: root, cost: bcrypt.DefaultCost}
}

// SetHashCost changes the bcrypt cost of new registrations. Out-of-range
// values fall back to the default.
func (p *Profiles) SetHashCost(cost int) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	p.cost = cost
}

// Root returns the namespace prefix.
func (p *Profiles) Root() string { return p.root }

// Current returns the active user, or "" for guest.
func (p *Profiles) Current() (string, error) {
	raw, ok, err := p.b.Load(p.root+":"+metaNamespace, keyCurrentUser)
	if err != nil {
		return "", fmt.Errorf("read current user: %w", err)
	}
	if !ok {
		return "", nil
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return "", nil
	}
	return name, nil
}

// ValidateName trims name and checks it: 1 to MaxNameLen printable runes,
// no ':'.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLen {
		return "", fmt.Errorf("%w %q: want 1-%d characters", ErrInvalidName, name, MaxNameLen)
	}
	for _, r := range name {
		if r == ':' || !unicode.IsPrint(r) {
			return "", fmt.Errorf("%w %q: %q not allowed", ErrInvalidName, name, r)
		}
	}
	return name, nil
}

// Register creates name with password and makes it the active profile. An
// existing name is refused.
func (p *Profiles) Register(name, password string) error {
	name, err := ValidateName(name)
	if err != nil {
		return err
	}
	if _, ok, err := p.loadAuth(name); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("register %q: %w", name, ErrUserExists)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	raw, _ := json.Marshal(authRecord{Username: name, Hash: hash})
	if err := p.b.Save(p.root+":"+authNamespace, name, raw); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return p.setCurrent(name)
}

// Login checks password against name's record and makes it the active
// profile.
func (p *Profiles) Login(name, password string) error {
	name, err := ValidateName(name)
	if err != nil {
		return err
	}
	rec, ok, err := p.loadAuth(name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("login %q: %w", name, ErrUnknownUser)
	}
	if err := bcrypt.CompareHashAndPassword(rec.Hash, []byte(password)); err != nil {
		return fmt.Errorf("login %q: %w", name, ErrBadPassword)
	}
	return p.setCurrent(name)
}

// Registered reports whether name has credentials.
func (p *Profiles) Registered(name string) (bool, error) {
	name, err := ValidateName(name)
	if err != nil {
		return false, err
	}
	_, ok, err := p.loadAuth(name)
	return ok, err
}

func (p *Profiles) loadAuth(name string) (authRecord, bool, error) {
	raw, ok, err := p.b.Load(p.root+":"+authNamespace, name)
	if err != nil {
		return authRecord{}, false, fmt.Errorf("read credentials: %w", err)
	}
	if !ok {
		return authRecord{}, false, nil
	}
	var rec authRecord
	if err := json.Unmarshal(raw, &rec); err != nil || len(rec.Hash) == 0 {
		return authRecord{}, false, fmt.Errorf("credentials for %q are corrupt", name)
	}
	return rec, true, nil
}

// Logout returns to the guest profile.
func (p *Profiles) Logout() error {
	return p.setCurrent("")
}

func (p *Profiles) setCurrent(name string) error {
	raw, _ := json.Marshal(name)
	if err := p.b.Save(p.root+":"+metaNamespace, keyCurrentUser, raw); err != nil {
		return fmt.Errorf("write current user: %w", err)
	}
	return nil
}

// Active returns a Store over the active profile's namespace.
func (p *Profiles) Active() (*View, error) {
	user, err := p.Current()
	if err != nil {
		return nil, err
	}
	return NewView(p.b, Namespace(p.root, user)), nil
}

// Reset clears every key of the active profile.
func (p *Profiles) Reset() error {
	v, err := p.Active()
	if err != nil {
		return err
	}
	if err := p.b.Clear(v.Namespace()); err != nil {
		return fmt.Errorf("reset %s: %w", v.Namespace(), err)
	}
	return nil
}

// Bundle is the export format: namespace -> key -> raw JSON value.
type Bundle map[string]map[string]json.RawMessage

// Export writes every key under the root as an indented JSON bundle.
func (p *Profiles) Export(w io.Writer) error {
	entries, err := p.b.Entries(p.root + ":")
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	bundle := make(Bundle)
	for _, e := range entries {
		if !json.Valid(e.Value) {
			continue
		}
		ns, ok := bundle[e.Namespace]
		if !ok {
			ns = make(map[string]json.RawMessage)
			bundle[e.Namespace] = ns
		}
		ns[e.Key] = json.RawMessage(e.Value)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(bundle); err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	return nil
}

// Import reads a bundle produced by Export and writes its entries. Namespaces
// outside the root are ignored. It returns the number of keys written.
func (p *Profiles) Import(r io.Reader) (int, error) {
	var bundle Bundle
	if err := json.NewDecoder(r).Decode(&bundle); err != nil {
		return 0, fmt.Errorf("decode bundle: %w", err)
	}
	n := 0
	for ns, kv := range bundle {
		if !strings.HasPrefix(ns, p.root+":") {
			continue
		}
		for k, v := range kv {
			if err := p.b.Save(ns, k, []byte(v)); err != nil {
				return n, fmt.Errorf("import %s/%s: %w", ns, k, err)
			}
			n++
		}
	}
	return n, nil
}
