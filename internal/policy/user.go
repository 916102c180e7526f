package policy

import (
	"encoding/json"

	"github.com/cardvault/cardvault/internal/model"
)

// UserMutator applies one allowlisted field value to a user.
type UserMutator func(u *model.User, raw json.RawMessage) error

// UserSelf is the allowlist for self-service profile edits.
// The subscription foreign key is additionally recognized via
// SubscriptionField and resolved by the service.
var UserSelf = map[string]UserMutator{
	"firstname": func(u *model.User, raw json.RawMessage) error {
		s, err := decodeString("firstname", raw)
		if err != nil {
			return err
		}
		u.Firstname = s
		return nil
	},
	"lastname": func(u *model.User, raw json.RawMessage) error {
		s, err := decodeString("lastname", raw)
		if err != nil {
			return err
		}
		u.Lastname = s
		return nil
	},
	"address": func(u *model.User, raw json.RawMessage) error {
		s, err := decodeString("address", raw)
		if err != nil {
			return err
		}
		u.Address = s
		return nil
	},
	"country": func(u *model.User, raw json.RawMessage) error {
		s, err := decodeString("country", raw)
		if err != nil {
			return err
		}
		u.Country = s
		return nil
	},
}

// UserAdmin is the allowlist for administrative user edits. It extends
// UserSelf with the credential and identity fields only an admin may
// touch.
var UserAdmin = buildUserAdmin()

func buildUserAdmin() map[string]UserMutator {
	table := make(map[string]UserMutator, len(UserSelf)+2)
	for name, mutator := range UserSelf {
		table[name] = mutator
	}
	table["apiKey"] = func(u *model.User, raw json.RawMessage) error {
		s, err := decodeString("apiKey", raw)
		if err != nil {
			return err
		}
		u.APIKey = s
		return nil
	}
	table["email"] = func(u *model.User, raw json.RawMessage) error {
		s, err := decodeString("email", raw)
		if err != nil {
			return err
		}
		u.Email = s
		return nil
	}
	return table
}

// ApplyUser applies every recognized, present field to the user.
// Unknown fields are ignored; a present field with a mismatched JSON
// type aborts with a BadValueError.
func ApplyUser(u *model.User, fields FieldSet, table map[string]UserMutator) error {
	for name, mutator := range table {
		raw, ok := fields[name]
		if !ok || isNull(raw) {
			continue
		}
		if err := mutator(u, raw); err != nil {
			return err
		}
	}
	return nil
}
