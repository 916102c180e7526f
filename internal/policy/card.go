package policy

import (
	"encoding/json"

	"github.com/cardvault/cardvault/internal/model"
)

// CardMutator applies one allowlisted field value to a card.
type CardMutator func(c *model.Card, raw json.RawMessage) error

// CardFields is the card edit allowlist. It is identical for the
// self-service and administrative tiers; the tiers differ only in the
// ownership guard applied before mutation.
var CardFields = map[string]CardMutator{
	"name": func(c *model.Card, raw json.RawMessage) error {
		s, err := decodeString("name", raw)
		if err != nil {
			return err
		}
		c.Name = s
		return nil
	},
	"creditCardType": func(c *model.Card, raw json.RawMessage) error {
		s, err := decodeString("creditCardType", raw)
		if err != nil {
			return err
		}
		c.CreditCardType = s
		return nil
	},
	"creditCardNumber": func(c *model.Card, raw json.RawMessage) error {
		s, err := decodeString("creditCardNumber", raw)
		if err != nil {
			return err
		}
		c.CreditCardNumber = s
		return nil
	},
	"currencyCode": func(c *model.Card, raw json.RawMessage) error {
		s, err := decodeString("currencyCode", raw)
		if err != nil {
			return err
		}
		c.CurrencyCode = s
		return nil
	},
	"value": func(c *model.Card, raw json.RawMessage) error {
		n, err := decodeInt("value", raw)
		if err != nil {
			return err
		}
		c.Value = n
		return nil
	},
}

// ApplyCard applies every recognized, present field to the card.
func ApplyCard(c *model.Card, fields FieldSet) error {
	for name, mutator := range CardFields {
		raw, ok := fields[name]
		if !ok || isNull(raw) {
			continue
		}
		if err := mutator(c, raw); err != nil {
			return err
		}
	}
	return nil
}
