package cards

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// View is the display form of a card. The full number never leaves the
// catalog.
type View struct {
	ID      string          `json:"id"`
	Number  string          `json:"number"`
	Last4   string          `json:"last4"`
	Holder  string          `json:"holder"`
	Expiry  string          `json:"expiry"`
	Network Network         `json:"type"`
	Variant Variant         `json:"color"`
	Balance decimal.Decimal `json:"balance"`
}

// Catalog is the read-only list of cards for a session.
type Catalog struct {
	cards []Card
}

// NewCatalog validates every card and keeps them in the given order.
func NewCatalog(cards ...Card) (*Catalog, error) {
	seen := make(map[string]bool, len(cards))
	for _, c := range cards {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("duplicate card id %s", c.ID)
		}
		seen[c.ID] = true
	}
	return &Catalog{cards: append([]Card(nil), cards...)}, nil
}

// List returns the masked cards.
func (c *Catalog) List() []View {
	out := make([]View, 0, len(c.cards))
	for _, card := range c.cards {
		out = append(out, View{
			ID:      card.ID,
			Number:  Mask(card.Number),
			Last4:   Last4(card.Number),
			Holder:  card.Holder,
			Expiry:  card.Expiry,
			Network: card.Network,
			Variant: card.Variant,
			Balance: card.Balance,
		})
	}
	return out
}

// Len returns the number of cards.
func (c *Catalog) Len() int {
	return len(c.cards)
}
