// Package catalog defines the playable characters, cosmetic skins and
// purchasable upgrades, and tracks which of them the active profile owns.
//
// Experience is the currency. Purchases debit the persisted "xp" key; buying
// never activates an upgrade, activation goes through Toggle only, which is
// where the mega-muscles / double-kill exclusivity lives.
package catalog

import (
	"errors"
	"fmt"
	"image/color"
	"sort"

	"github.com/Garsondee/Echo-Arena/internal/store"
)

// ErrUnknown is returned when an id does not name a catalog item.
var ErrUnknown = errors.New("catalog: unknown item")

// CharacterID names a playable character.
type CharacterID int

const (
	Sher CharacterID = iota
	Dubsher
	Quadsher
)

func (c CharacterID) String() string {
	switch c {
	case Sher:
		return "sher"
	case Dubsher:
		return "dubsher"
	case Quadsher:
		return "quadsher"
	default:
		return "unknown"
	}
}

// ParseCharacter maps a persisted id back to a CharacterID.
func ParseCharacter(s string) (CharacterID, error) {
	for c := Sher; c <= Quadsher; c++ {
		if c.String() == s {
			return c, nil
		}
	}
	return Sher, fmt.Errorf("%w: character %q", ErrUnknown, s)
}

// FirePattern is the bolt layout a character fires.
type FirePattern int

const (
	FireForward     FirePattern = iota // one bolt toward the aim point
	FireForwardBack                    // aim direction and its opposite
	FireCross                          // four bolts at 90 degree steps
)

func (f FirePattern) String() string {
	switch f {
	case FireForward:
		return "forward"
	case FireForwardBack:
		return "forward+back"
	case FireCross:
		return "cross"
	default:
		return "unknown"
	}
}

// Bolts returns how many projectiles one volley emits.
func (f FirePattern) Bolts() int {
	switch f {
	case FireForward:
		return 1
	case FireForwardBack:
		return 2
	case FireCross:
		return 4
	default:
		return 0
	}
}

// Pattern returns the character's firing pattern.
func (c CharacterID) Pattern() FirePattern {
	switch c {
	case Sher:
		return FireForward
	case Dubsher:
		return FireForwardBack
	case Quadsher:
		return FireCross
	default:
		return FireForward
	}
}

// Character is a playable definition.
type Character struct {
	ID    CharacterID
	Name  string
	Price int
	Desc  string
}

// Skin is a cosmetic gradient for one character.
type Skin struct {
	ID     string
	For    CharacterID
	Price  int
	Colors [2]color.RGBA
}

// UpgradeID names a purchasable toggle.
type UpgradeID int

const (
	Echo UpgradeID = iota
	DoubleKill
	Speed
	DoubleEcho
	MegaMuscles
	Distance
	Vampire
)

func (u UpgradeID) String() string {
	switch u {
	case Echo:
		return "echo"
	case DoubleKill:
		return "doubleKill"
	case Speed:
		return "speed"
	case DoubleEcho:
		return "doubleEcho"
	case MegaMuscles:
		return "megaMuscles"
	case Distance:
		return "distance"
	case Vampire:
		return "vampire"
	default:
		return "unknown"
	}
}

// ParseUpgrade maps a persisted id back to an UpgradeID.
func ParseUpgrade(s string) (UpgradeID, error) {
	for u := Echo; u <= Vampire; u++ {
		if u.String() == s {
			return u, nil
		}
	}
	return Echo, fmt.Errorf("%w: upgrade %q", ErrUnknown, s)
}

// exclusive returns the upgrade that cannot be active alongside u.
func (u UpgradeID) exclusive() (UpgradeID, bool) {
	switch u {
	case MegaMuscles:
		return DoubleKill, true
	case DoubleKill:
		return MegaMuscles, true
	}
	return 0, false
}

// Upgrade is a purchasable definition.
type Upgrade struct {
	ID    UpgradeID
	Name  string
	Price int
	Desc  string
}

var characters = []Character{
	{ID: Sher, Name: "Sher", Price: 0, Desc: "Fires forward"},
	{ID: Dubsher, Name: "Dubsher", Price: 100, Desc: "Fires forward and back"},
	{ID: Quadsher, Name: "Quadsher", Price: 250, Desc: "Fires in all four directions"},
}

var skins = []Skin{
	{ID: "sher-skin", For: Sher, Price: 50, Colors: [2]color.RGBA{{0x77, 0x99, 0xff, 0xff}, {0x33, 0xdd, 0xff, 0xff}}},
	{ID: "dubsher-skin", For: Dubsher, Price: 50, Colors: [2]color.RGBA{{0xff, 0x8a, 0x00, 0xff}, {0xff, 0x3b, 0x5c, 0xff}}},
	{ID: "quadsher-skin", For: Quadsher, Price: 50, Colors: [2]color.RGBA{{0x9b, 0xe1, 0x5d, 0xff}, {0x00, 0xe3, 0xae, 0xff}}},
}

var upgrades = []Upgrade{
	{ID: Echo, Name: "Echo", Price: 10, Desc: "Spawn an echo when a cycle ends"},
	{ID: DoubleKill, Name: "Double Kill", Price: 10, Desc: "30% chance of double damage"},
	{ID: Speed, Name: "Speed", Price: 20, Desc: "Movement +10%"},
	{ID: DoubleEcho, Name: "Double Echo", Price: 50, Desc: "30% chance of a second echo"},
	{ID: MegaMuscles, Name: "Mega Muscles", Price: 100, Desc: "80% chance of double damage (excludes Double Kill)"},
	{ID: Distance, Name: "Distance", Price: 10, Desc: "Enemies spawn near the arena edges"},
	{ID: Vampire, Name: "Vampire", Price: 100, Desc: "20% chance of +1 life on a kill"},
}

// Characters returns the character definitions in display order.
func Characters() []Character { return append([]Character(nil), characters...) }

// Skins returns the skin definitions in display order.
func Skins() []Skin { return append([]Skin(nil), skins...) }

// Upgrades returns the upgrade definitions in display order.
func Upgrades() []Upgrade { return append([]Upgrade(nil), upgrades...) }

// CharacterByID looks up a character definition.
func CharacterByID(id CharacterID) (Character, bool) {
	for _, c := range characters {
		if c.ID == id {
			return c, true
		}
	}
	return Character{}, false
}

// UpgradeByID looks up an upgrade definition.
func UpgradeByID(id UpgradeID) (Upgrade, bool) {
	for _, u := range upgrades {
		if u.ID == id {
			return u, true
		}
	}
	return Upgrade{}, false
}

// SkinByID looks up a skin definition.
func SkinByID(id string) (Skin, bool) {
	for _, s := range skins {
		if s.ID == id {
			return s, true
		}
	}
	return Skin{}, false
}

// Catalog is the active profile's ownership and activation state.
type Catalog struct {
	st store.Store

	ownedUpgrades map[UpgradeID]bool
	toggles       map[UpgradeID]bool
	ownedChars    map[CharacterID]bool
	selected      CharacterID
	ownedSkins    map[string]bool
	selectedSkin  string
}

// New loads ownership state from st. Unknown ids in storage are dropped and
// a stored state with both damage upgrades active is repaired.
func New(st store.Store) (*Catalog, error) {
	c := &Catalog{}
	if err := c.Load(st); err != nil {
		return nil, err
	}
	return c, nil
}

// Load rebinds the catalog to st and re-reads everything.
func (c *Catalog) Load(st store.Store) error {
	c.st = st
	c.ownedUpgrades = make(map[UpgradeID]bool)
	c.toggles = make(map[UpgradeID]bool)
	c.ownedChars = map[CharacterID]bool{Sher: true}
	c.ownedSkins = make(map[string]bool)
	c.selected = Sher
	c.selectedSkin = ""

	for _, s := range store.Strings(st, store.KeyOwnedUpgrades, nil) {
		if id, err := ParseUpgrade(s); err == nil {
			c.ownedUpgrades[id] = true
		}
	}
	var toggles map[string]bool
	if ok, err := st.Get(store.KeyUpgradeToggles, &toggles); err != nil {
		return fmt.Errorf("load upgrade toggles: %w", err)
	} else if ok {
		for s, on := range toggles {
			if id, err := ParseUpgrade(s); err == nil && on {
				c.toggles[id] = true
			}
		}
	}
	for _, s := range store.Strings(st, store.KeyOwnedChars, nil) {
		if id, err := ParseCharacter(s); err == nil {
			c.ownedChars[id] = true
		}
	}
	if id, err := ParseCharacter(store.String(st, store.KeySelectedChar, Sher.String())); err == nil && c.ownedChars[id] {
		c.selected = id
	}
	for _, s := range store.Strings(st, store.KeyOwnedSkins, nil) {
		if _, ok := SkinByID(s); ok {
			c.ownedSkins[s] = true
		}
	}
	if s := store.String(st, store.KeySelectedSkin, ""); c.ownedSkins[s] {
		c.selectedSkin = s
	}

	if c.toggles[MegaMuscles] && c.toggles[DoubleKill] {
		c.toggles[DoubleKill] = false
		return c.saveUpgrades()
	}
	return nil
}

// XP returns the banked experience.
func (c *Catalog) XP() int { return store.Int(c.st, store.KeyXP, 0) }

func (c *Catalog) debit(price int) (bool, error) {
	xp := c.XP()
	if xp < price {
		return false, nil
	}
	if err := c.st.Set(store.KeyXP, xp-price); err != nil {
		return false, fmt.Errorf("debit xp: %w", err)
	}
	return true, nil
}

// BuyUpgrade purchases id. Buying an owned upgrade succeeds without charge.
// Insufficient XP yields (false, nil).
func (c *Catalog) BuyUpgrade(id UpgradeID) (bool, error) {
	u, ok := UpgradeByID(id)
	if !ok {
		return false, fmt.Errorf("%w: upgrade %d", ErrUnknown, int(id))
	}
	if c.ownedUpgrades[id] {
		return true, nil
	}
	paid, err := c.debit(u.Price)
	if err != nil || !paid {
		return false, err
	}
	c.ownedUpgrades[id] = true
	return true, c.saveUpgrades()
}

// Toggle flips activation of an owned upgrade. Turning mega muscles or
// double kill on turns the other off in the same transition. It reports
// false when id is not owned.
func (c *Catalog) Toggle(id UpgradeID) (bool, error) {
	if !c.ownedUpgrades[id] {
		return false, nil
	}
	return true, c.setActive(id, !c.toggles[id])
}

// SetActive forces an owned upgrade on or off.
func (c *Catalog) SetActive(id UpgradeID, on bool) (bool, error) {
	if !c.ownedUpgrades[id] {
		return false, nil
	}
	return true, c.setActive(id, on)
}

func (c *Catalog) setActive(id UpgradeID, on bool) error {
	if on {
		if other, ok := id.exclusive(); ok {
			c.toggles[other] = false
		}
	}
	c.toggles[id] = on
	return c.saveUpgrades()
}

func (c *Catalog) saveUpgrades() error {
	owned := make([]string, 0, len(c.ownedUpgrades))
	for id, ok := range c.ownedUpgrades {
		if ok {
			owned = append(owned, id.String())
		}
	}
	sort.Strings(owned)
	toggles := make(map[string]bool, len(c.toggles))
	for id, on := range c.toggles {
		toggles[id.String()] = on
	}
	if err := c.st.Set(store.KeyOwnedUpgrades, owned); err != nil {
		return fmt.Errorf("save owned upgrades: %w", err)
	}
	if err := c.st.Set(store.KeyUpgradeToggles, toggles); err != nil {
		return fmt.Errorf("save upgrade toggles: %w", err)
	}
	return nil
}

// Owned reports whether the upgrade has been bought.
func (c *Catalog) Owned(id UpgradeID) bool { return c.ownedUpgrades[id] }

// Active reports whether the upgrade is switched on. An unowned upgrade is
// never active.
func (c *Catalog) Active(id UpgradeID) bool { return c.ownedUpgrades[id] && c.toggles[id] }

// EchoEnabled reports whether a cycle end should record an echo.
func (c *Catalog) EchoEnabled() bool { return c.Active(Echo) }

// DoubleEchoEnabled reports whether the second-echo roll applies.
func (c *Catalog) DoubleEchoEnabled() bool { return c.Active(DoubleEcho) }

// SpeedMultiplier is the upgrade movement bonus.
func (c *Catalog) SpeedMultiplier() float64 {
	if c.Active(Speed) {
		return 1.1
	}
	return 1.0
}

// EdgeSpawn reports whether enemies are placed along the arena edges.
func (c *Catalog) EdgeSpawn() bool { return c.Active(Distance) }

// BuyCharacter purchases a character. Owned characters succeed free.
func (c *Catalog) BuyCharacter(id CharacterID) (bool, error) {
	ch, ok := CharacterByID(id)
	if !ok {
		return false, fmt.Errorf("%w: character %d", ErrUnknown, int(id))
	}
	if c.ownedChars[id] {
		return true, nil
	}
	paid, err := c.debit(ch.Price)
	if err != nil || !paid {
		return false, err
	}
	c.ownedChars[id] = true
	return true, c.saveCharacters()
}

// SelectCharacter makes an owned character the active one.
func (c *Catalog) SelectCharacter(id CharacterID) (bool, error) {
	if !c.ownedChars[id] {
		return false, nil
	}
	c.selected = id
	return true, c.saveCharacters()
}

// CharacterOwned reports whether id has been bought.
func (c *Catalog) CharacterOwned(id CharacterID) bool { return c.ownedChars[id] }

// Selected returns the active character.
func (c *Catalog) Selected() CharacterID { return c.selected }

// BuySkin purchases a skin. Owned skins succeed free.
func (c *Catalog) BuySkin(id string) (bool, error) {
	s, ok := SkinByID(id)
	if !ok {
		return false, fmt.Errorf("%w: skin %q", ErrUnknown, id)
	}
	if c.ownedSkins[id] {
		return true, nil
	}
	paid, err := c.debit(s.Price)
	if err != nil || !paid {
		return false, err
	}
	c.ownedSkins[id] = true
	return true, c.saveCharacters()
}

// SelectSkin equips an owned skin; an empty id clears the selection.
func (c *Catalog) SelectSkin(id string) (bool, error) {
	if id != "" && !c.ownedSkins[id] {
		return false, nil
	}
	c.selectedSkin = id
	return true, c.saveCharacters()
}

// SelectedSkin returns the equipped skin id, or "" when none is equipped.
func (c *Catalog) SelectedSkin() string { return c.selectedSkin }

// SkinOwned reports whether a skin has been bought.
func (c *Catalog) SkinOwned(id string) bool { return c.ownedSkins[id] }

// SkinFor returns the equipped skin if it belongs to ch.
func (c *Catalog) SkinFor(ch CharacterID) (Skin, bool) {
	s, ok := SkinByID(c.selectedSkin)
	if !ok || s.For != ch {
		return Skin{}, false
	}
	return s, true
}

func (c *Catalog) saveCharacters() error {
	chars := make([]string, 0, len(c.ownedChars))
	for id := Sher; id <= Quadsher; id++ {
		if c.ownedChars[id] {
			chars = append(chars, id.String())
		}
	}
	owned := make([]string, 0, len(c.ownedSkins))
	for id := range c.ownedSkins {
		owned = append(owned, id)
	}
	sort.Strings(owned)

	writes := []struct {
		key string
		val any
	}{
		{store.KeyOwnedChars, chars},
		{store.KeySelectedChar, c.selected.String()},
		{store.KeyOwnedSkins, owned},
		{store.KeySelectedSkin, c.selectedSkin},
	}
	for _, w := range writes {
		if err := c.st.Set(w.key, w.val); err != nil {
			return fmt.Errorf("save %s: %w", w.key, err)
		}
	}
	return nil
}
