// Copyright (c) 2026 OpenShelf. All rights reserved.

/*
Package audit implements the change-audit subsystem of the OpenShelf catalog.

It defines the flattened, human-comparable representation of an entity's
state ([Snapshot]), the engine that computes field-level deltas between two
such representations ([Diff]), and the immutable append-only [Record] that
the catalog orchestration persists through a [Recorder].

Core Responsibility:

  - Snapshot: ordered field → comparable value view of an entity at a point in time.
  - ChangeSet: field → (old, new) pairs for fields that actually differ.
  - Record: who changed what, when, attributed to an acting user.

Snapshots are never persisted; they exist only as diff input.
*/
package audit

import (
	"encoding/json"
	"fmt"
)

// # Comparable Values

// Kind discriminates the value types a snapshot field may carry.
type Kind uint8

const (
	// KindNull marks an absent value (missing relation, empty optional field).
	KindNull Kind = iota
	// KindString marks a scalar or rendered display string.
	KindString
	// KindBool marks a boolean flag.
	KindBool
)

// Value is a single comparable snapshot field value.
//
// It is a closed union of null, string and bool. Value is comparable with
// ==, which is what the diff engine relies on.
type Value struct {
	kind Kind
	str  string
	b    bool
}

// Null returns the absent value.
func Null() Value { return Value{kind: KindNull} }

// String wraps a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// StringPtr wraps an optional string, mapping nil to [Null].
func StringPtr(p *string) Value {
	if p == nil {
		return Null()
	}
	return String(*p)
}

// Bool wraps a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// IsNull reports whether the value is absent.
func (v Value) IsNull() bool { return v.kind == KindNull }

// String renders the value for logs and labels.
func (v Value) Display() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	default:
		return "—"
	}
}

// MarshalJSON renders the raw value: null, a JSON string, or a JSON bool.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, a JSON string, or a JSON bool.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Null()
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = String(s)
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = Bool(b)
		return nil
	}

	return fmt.Errorf("audit: unsupported snapshot value %s", data)
}

// # Snapshots

// Snapshot is an ordered mapping of field name → comparable value, computed
// at a point in time.
//
// Field order is insertion order, so two snapshots produced by the same
// snapshotter are field-for-field comparable and serialize deterministically.
type Snapshot struct {
	fields []string
	values map[string]Value
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{values: make(map[string]Value)}
}

// Set records a field value, preserving first-insertion order on overwrite.
func (s *Snapshot) Set(field string, v Value) {
	if _, exists := s.values[field]; !exists {
		s.fields = append(s.fields, field)
	}
	s.values[field] = v
}

// Get returns the value for a field and whether the field is present.
func (s *Snapshot) Get(field string) (Value, bool) {
	v, ok := s.values[field]
	return v, ok
}

// Fields returns the field names in insertion order.
func (s *Snapshot) Fields() []string {
	out := make([]string, len(s.fields))
	copy(out, s.fields)
	return out
}

// Len returns the number of fields in the snapshot.
func (s *Snapshot) Len() int { return len(s.fields) }

// # Diff Engine

// Change is an (old, new) value pair for a single field.
type Change struct {
	Old Value
	New Value
}

// MarshalJSON renders the pair as a two-element array, [old, new].
func (c Change) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]Value{c.Old, c.New})
}

// UnmarshalJSON accepts the [old, new] two-element array form.
func (c *Change) UnmarshalJSON(data []byte) error {
	var pair [2]Value
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	c.Old, c.New = pair[0], pair[1]
	return nil
}

// ChangeSet maps field names to their (old, new) change pairs.
//
// An empty ChangeSet means "nothing to audit" — callers must never write a
// record for a no-op save.
type ChangeSet map[string]Change

// Diff compares two snapshots of the same entity and returns the fields
// whose values differ.
//
// Precondition: both snapshots describe the same entity and therefore carry
// the same key set. Comparing snapshots of different entities is a
// programmer error; Diff fails fast by panicking rather than producing a
// misleading delta.
func Diff(before, after *Snapshot) ChangeSet {
	changes := ChangeSet{}

	for _, field := range after.fields {
		oldValue, ok := before.Get(field)
		if !ok {
			panic(fmt.Sprintf("audit: diff over mismatched snapshots: field %q missing from before", field))
		}
		newValue := after.values[field]

		if oldValue != newValue {
			changes[field] = Change{Old: oldValue, New: newValue}
		}
	}

	if before.Len() != after.Len() {
		panic("audit: diff over mismatched snapshots: key sets differ")
	}

	return changes
}

// Creation renders an initial snapshot as a change-set in which every field
// changed from nothing: {field: (null, value)}.
//
// This makes entity creation a degenerate case of the update audit rule,
// with before = all-null.
func Creation(after *Snapshot) ChangeSet {
	changes := ChangeSet{}
	for _, field := range after.fields {
		changes[field] = Change{Old: Null(), New: after.values[field]}
	}
	return changes
}
