package catalog

import "fmt"

// OfferKind groups shop entries.
type OfferKind int

const (
	OfferUpgrade OfferKind = iota
	OfferCharacter
	OfferSkin
)

func (k OfferKind) String() string {
	switch k {
	case OfferUpgrade:
		return "upgrade"
	case OfferCharacter:
		return "character"
	case OfferSkin:
		return "skin"
	default:
		return "unknown"
	}
}

// Offer is one shop line. Exactly one of Upgrade, Character or Skin is
// meaningful, selected by Kind.
type Offer struct {
	Kind      OfferKind
	Upgrade   UpgradeID
	Character CharacterID
	Skin      string
	Name      string
	Price     int
	Desc      string
}

// Offers lists every purchasable in shop order: upgrades, characters, skins.
func Offers() []Offer {
	out := make([]Offer, 0, len(upgrades)+len(characters)+len(skins))
	for _, u := range upgrades {
		out = append(out, Offer{Kind: OfferUpgrade, Upgrade: u.ID, Name: u.Name, Price: u.Price, Desc: u.Desc})
	}
	for _, ch := range characters {
		out = append(out, Offer{Kind: OfferCharacter, Character: ch.ID, Name: ch.Name, Price: ch.Price, Desc: ch.Desc})
	}
	for _, s := range skins {
		name := s.For.String() + " skin"
		out = append(out, Offer{Kind: OfferSkin, Skin: s.ID, Character: s.For, Name: name, Price: s.Price, Desc: "Cosmetic gradient for " + s.For.String()})
	}
	return out
}

// Status is the short ownership label shown next to an offer.
func (c *Catalog) Status(o Offer) string {
	switch o.Kind {
	case OfferUpgrade:
		switch {
		case c.Active(o.Upgrade):
			return "ON"
		case c.Owned(o.Upgrade):
			return "off"
		}
	case OfferCharacter:
		switch {
		case c.selected == o.Character:
			return "playing"
		case c.CharacterOwned(o.Character):
			return "owned"
		}
	case OfferSkin:
		switch {
		case c.selectedSkin == o.Skin:
			return "equipped"
		case c.SkinOwned(o.Skin):
			return "owned"
		}
	}
	return fmt.Sprintf("%d XP", o.Price)
}

// Activate performs the natural action for an offer: buy it when not owned,
// otherwise toggle the upgrade, select the character or equip/unequip the
// skin. It returns a message for the player. Running short of XP is not an
// error.
func (c *Catalog) Activate(o Offer) (string, error) {
	switch o.Kind {
	case OfferUpgrade:
		if !c.Owned(o.Upgrade) {
			return c.buyMessage(o, func() (bool, error) { return c.BuyUpgrade(o.Upgrade) })
		}
		if _, err := c.Toggle(o.Upgrade); err != nil {
			return "", err
		}
		if c.Active(o.Upgrade) {
			return o.Name + " on", nil
		}
		return o.Name + " off", nil

	case OfferCharacter:
		if !c.CharacterOwned(o.Character) {
			return c.buyMessage(o, func() (bool, error) { return c.BuyCharacter(o.Character) })
		}
		if _, err := c.SelectCharacter(o.Character); err != nil {
			return "", err
		}
		return "Playing as " + o.Name, nil

	case OfferSkin:
		if !c.SkinOwned(o.Skin) {
			return c.buyMessage(o, func() (bool, error) { return c.BuySkin(o.Skin) })
		}
		next := o.Skin
		if c.selectedSkin == o.Skin {
			next = ""
		}
		if _, err := c.SelectSkin(next); err != nil {
			return "", err
		}
		if next == "" {
			return o.Name + " removed", nil
		}
		return o.Name + " equipped", nil
	}
	return "", fmt.Errorf("%w: offer kind %d", ErrUnknown, int(o.Kind))
}

func (c *Catalog) buyMessage(o Offer, buy func() (bool, error)) (string, error) {
	ok, err := buy()
	if err != nil {
		return "", err
	}
	if !ok {
		return fmt.Sprintf("Need %d XP for %s", o.Price, o.Name), nil
	}
	return "Bought " + o.Name, nil
}
