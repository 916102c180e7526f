// Package policy implements the field-mutation policy for patch
// requests. Each entity/tier pair has a fixed allowlist table mapping a
// field name to its mutator; fields outside the table are silently
// ignored rather than rejected. Mutators run against an in-memory copy
// of the target, so a failed apply never leaves partial state behind.
package policy

import (
	"encoding/json"
	"fmt"
)

// Foreign-key field names recognized alongside the scalar allowlists.
// They are resolved by the service layer, not by a mutator.
const (
	SubscriptionField = "subscription"
	OwnerField        = "user"
)

// FieldSet is a decoded JSON patch body. Presence in the map gates
// application; an explicit null counts as absent.
type FieldSet map[string]json.RawMessage

// DecodeFields parses a raw JSON object into a FieldSet.
func DecodeFields(body []byte) (FieldSet, error) {
	var fields FieldSet
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("decode patch body: %w", err)
	}
	return fields, nil
}

// Has reports whether the field is present with a non-null value.
func (f FieldSet) Has(name string) bool {
	raw, ok := f[name]
	return ok && !isNull(raw)
}

// StringValue decodes the named field as a JSON string.
// The boolean is false when the field is absent or null.
func (f FieldSet) StringValue(name string) (string, bool, error) {
	if !f.Has(name) {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(f[name], &s); err != nil {
		return "", false, &BadValueError{Field: name, Want: "string"}
	}
	return s, true, nil
}

// BadValueError reports a present field whose JSON type does not match
// the mutator's expectation. It aborts the whole patch.
type BadValueError struct {
	Field string
	Want  string
}

func (e *BadValueError) Error() string {
	return fmt.Sprintf("field %q must be a %s", e.Field, e.Want)
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// decodeString unmarshals a raw value as a string or fails with a
// BadValueError for the given field.
func decodeString(field string, raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &BadValueError{Field: field, Want: "string"}
	}
	return s, nil
}

// decodeInt unmarshals a raw value as an integer or fails with a
// BadValueError for the given field.
func decodeInt(field string, raw json.RawMessage) (int64, error) {
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, &BadValueError{Field: field, Want: "integer"}
	}
	return n, nil
}
