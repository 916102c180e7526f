package policy

import (
	"encoding/json"

	"github.com/cardvault/cardvault/internal/model"
)

// SubscriptionMutator applies one allowlisted field value to a
// subscription.
type SubscriptionMutator func(s *model.Subscription, raw json.RawMessage) error

// SubscriptionFields is the administrative subscription edit allowlist.
var SubscriptionFields = map[string]SubscriptionMutator{
	"name": func(s *model.Subscription, raw json.RawMessage) error {
		v, err := decodeString("name", raw)
		if err != nil {
			return err
		}
		s.Name = v
		return nil
	},
	"slogan": func(s *model.Subscription, raw json.RawMessage) error {
		v, err := decodeString("slogan", raw)
		if err != nil {
			return err
		}
		s.Slogan = v
		return nil
	},
	"url": func(s *model.Subscription, raw json.RawMessage) error {
		v, err := decodeString("url", raw)
		if err != nil {
			return err
		}
		s.URL = v
		return nil
	},
}

// ApplySubscription applies every recognized, present field.
func ApplySubscription(s *model.Subscription, fields FieldSet) error {
	for name, mutator := range SubscriptionFields {
		raw, ok := fields[name]
		if !ok || isNull(raw) {
			continue
		}
		if err := mutator(s, raw); err != nil {
			return err
		}
	}
	return nil
}
