package catalog

import (
	"errors"
	"testing"

	"github.com/Garsondee/Echo-Arena/internal/store"
)

func newCatalog(t *testing.T, xp int) (*Catalog, store.Store) {
	t.Helper()
	st := store.NewView(store.NewMemory(), "test")
	if err := st.Set(store.KeyXP, xp); err != nil {
		t.Fatalf("seed xp: %v", err)
	}
	c, err := New(st)
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	return c, st
}

func mustBuy(t *testing.T, c *Catalog, id UpgradeID) {
	t.Helper()
	ok, err := c.BuyUpgrade(id)
	if err != nil || !ok {
		t.Fatalf("buy %v: ok=%v err=%v", id, ok, err)
	}
}

func TestBuyUpgrade_DebitsAndRefusesWhenPoor(t *testing.T) {
	c, st := newCatalog(t, 15)
	mustBuy(t, c, Echo)
	if got := store.Int(st, store.KeyXP, -1); got != 5 {
		t.Fatalf("xp after buying echo = %d, want 5", got)
	}
	ok, err := c.BuyUpgrade(Speed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("buying with insufficient xp should report false")
	}
	if c.Owned(Speed) {
		t.Fatal("failed purchase must not grant ownership")
	}
	// Re-buying an owned item is free.
	mustBuy(t, c, Echo)
	if got := store.Int(st, store.KeyXP, -1); got != 5 {
		t.Fatalf("rebuy should not charge, xp = %d", got)
	}
}

func TestBuyUpgrade_DoesNotActivate(t *testing.T) {
	c, _ := newCatalog(t, 1000)
	mustBuy(t, c, Echo)
	if c.EchoEnabled() {
		t.Fatal("purchase should not switch the upgrade on")
	}
	if ok, _ := c.Toggle(Echo); !ok {
		t.Fatal("toggle of owned upgrade should succeed")
	}
	if !c.EchoEnabled() {
		t.Fatal("echo should be enabled after toggle")
	}
}

func TestToggle_UnownedRefused(t *testing.T) {
	c, _ := newCatalog(t, 0)
	if ok, _ := c.Toggle(MegaMuscles); ok {
		t.Fatal("toggle of unowned upgrade should fail")
	}
	if c.Active(MegaMuscles) {
		t.Fatal("unowned upgrade cannot be active")
	}
}

func TestToggle_DamageUpgradesExclusive(t *testing.T) {
	c, _ := newCatalog(t, 1000)
	mustBuy(t, c, MegaMuscles)
	mustBuy(t, c, DoubleKill)

	steps := []struct {
		toggle       UpgradeID
		mega, double bool
	}{
		{DoubleKill, false, true},
		{MegaMuscles, true, false},
		{DoubleKill, false, true},
		{DoubleKill, false, false},
		{MegaMuscles, true, false},
	}
	for i, s := range steps {
		if _, err := c.Toggle(s.toggle); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if c.Active(MegaMuscles) != s.mega || c.Active(DoubleKill) != s.double {
			t.Fatalf("step %d (toggle %v): mega=%v double=%v, want %v/%v",
				i, s.toggle, c.Active(MegaMuscles), c.Active(DoubleKill), s.mega, s.double)
		}
		if c.Active(MegaMuscles) && c.Active(DoubleKill) {
			t.Fatalf("step %d: both damage upgrades active", i)
		}
	}
}

func TestLoad_RepairsBothDamageUpgradesActive(t *testing.T) {
	st := store.NewView(store.NewMemory(), "test")
	st.Set(store.KeyOwnedUpgrades, []string{"megaMuscles", "doubleKill"})
	st.Set(store.KeyUpgradeToggles, map[string]bool{"megaMuscles": true, "doubleKill": true})

	c, err := New(st)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !c.Active(MegaMuscles) || c.Active(DoubleKill) {
		t.Fatalf("load should keep mega and drop double kill, got mega=%v double=%v",
			c.Active(MegaMuscles), c.Active(DoubleKill))
	}
	var toggles map[string]bool
	st.Get(store.KeyUpgradeToggles, &toggles)
	if toggles["doubleKill"] {
		t.Fatal("repair should be persisted")
	}
}

func TestCharacters_BuySelectPersist(t *testing.T) {
	c, st := newCatalog(t, 120)
	if c.Selected() != Sher || !c.CharacterOwned(Sher) {
		t.Fatal("sher should be owned and selected by default")
	}
	if ok, _ := c.SelectCharacter(Dubsher); ok {
		t.Fatal("selecting an unowned character should fail")
	}
	if ok, err := c.BuyCharacter(Quadsher); ok || err != nil {
		t.Fatalf("quadsher costs 250: ok=%v err=%v", ok, err)
	}
	if ok, err := c.BuyCharacter(Dubsher); !ok || err != nil {
		t.Fatalf("buy dubsher: ok=%v err=%v", ok, err)
	}
	if ok, _ := c.SelectCharacter(Dubsher); !ok {
		t.Fatal("select owned character failed")
	}

	reloaded, err := New(st)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Selected() != Dubsher {
		t.Fatalf("selected after reload = %v", reloaded.Selected())
	}
	if reloaded.XP() != 20 {
		t.Fatalf("xp after reload = %d, want 20", reloaded.XP())
	}
}

func TestSkins(t *testing.T) {
	c, _ := newCatalog(t, 60)
	if ok, _ := c.SelectSkin("sher-skin"); ok {
		t.Fatal("unowned skin should not equip")
	}
	if ok, err := c.BuySkin("sher-skin"); !ok || err != nil {
		t.Fatalf("buy skin: ok=%v err=%v", ok, err)
	}
	c.SelectSkin("sher-skin")
	if s, ok := c.SkinFor(Sher); !ok || s.ID != "sher-skin" {
		t.Fatal("skin should apply to sher")
	}
	if _, ok := c.SkinFor(Dubsher); ok {
		t.Fatal("sher skin must not apply to dubsher")
	}
	if _, err := c.BuySkin("gold"); !errors.Is(err, ErrUnknown) {
		t.Fatalf("unknown skin err = %v", err)
	}
}

func TestFirePatterns(t *testing.T) {
	cases := []struct {
		id    CharacterID
		pat   FirePattern
		bolts int
	}{
		{Sher, FireForward, 1},
		{Dubsher, FireForwardBack, 2},
		{Quadsher, FireCross, 4},
	}
	for _, c := range cases {
		if c.id.Pattern() != c.pat || c.pat.Bolts() != c.bolts {
			t.Errorf("%v: pattern %v (%d bolts)", c.id, c.id.Pattern(), c.id.Pattern().Bolts())
		}
		back, err := ParseCharacter(c.id.String())
		if err != nil || back != c.id {
			t.Errorf("ParseCharacter(%q) = %v, %v", c.id.String(), back, err)
		}
	}
}

func TestSpeedMultiplier(t *testing.T) {
	c, _ := newCatalog(t, 100)
	if c.SpeedMultiplier() != 1 {
		t.Fatal("base multiplier should be 1")
	}
	mustBuy(t, c, Speed)
	c.Toggle(Speed)
	if c.SpeedMultiplier() != 1.1 {
		t.Fatalf("speed multiplier = %v, want 1.1", c.SpeedMultiplier())
	}
}
