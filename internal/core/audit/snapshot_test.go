// Copyright (c) 2026 OpenShelf. All rights reserved.

package audit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestDiff verifies the field-level delta engine: only fields whose values
actually differ survive into the change-set, and identical snapshots yield
an empty one.
*/
func TestDiff(t *testing.T) {
	base := func() *Snapshot {
		s := NewSnapshot()
		s.Set("title", String("Dune"))
		s.Set("adapted", Bool(true))
		s.Set("film_title", String("Dune: Part One"))
		s.Set("isbn", Null())
		return s
	}

	t.Run("identical snapshots produce empty change-set", func(t *testing.T) {
		changes := Diff(base(), base())
		assert.Empty(t, changes)
	})

	t.Run("single field change is isolated", func(t *testing.T) {
		after := base()
		after.Set("film_title", String("Dune: Part Two"))

		changes := Diff(base(), after)

		require.Len(t, changes, 1)
		assert.Equal(t, Change{Old: String("Dune: Part One"), New: String("Dune: Part Two")}, changes["film_title"])
	})

	t.Run("null to value transition is a change", func(t *testing.T) {
		after := base()
		after.Set("isbn", String("9786001234565"))

		changes := Diff(base(), after)

		require.Len(t, changes, 1)
		assert.Equal(t, Null(), changes["isbn"].Old)
		assert.Equal(t, String("9786001234565"), changes["isbn"].New)
	})

	t.Run("bool flip and string change accumulate", func(t *testing.T) {
		after := base()
		after.Set("adapted", Bool(false))
		after.Set("title", String("Dune Messiah"))

		changes := Diff(base(), after)

		assert.Len(t, changes, 2)
		assert.Contains(t, changes, "adapted")
		assert.Contains(t, changes, "title")
	})

	t.Run("mismatched key sets panic", func(t *testing.T) {
		after := base()
		after.Set("extra", String("x"))

		assert.Panics(t, func() { Diff(base(), after) })
	})
}

/*
TestCreation verifies that an initial snapshot renders as a change-set in
which every field transitions from null.
*/
func TestCreation(t *testing.T) {
	s := NewSnapshot()
	s.Set("title", String("Dune"))
	s.Set("isbn", Null())

	changes := Creation(s)

	require.Len(t, changes, 2)
	assert.Equal(t, Change{Old: Null(), New: String("Dune")}, changes["title"])
	assert.Equal(t, Change{Old: Null(), New: Null()}, changes["isbn"])
}

/*
TestSnapshotOrdering verifies insertion-order iteration and overwrite
semantics.
*/
func TestSnapshotOrdering(t *testing.T) {
	s := NewSnapshot()
	s.Set("b", String("1"))
	s.Set("a", String("2"))
	s.Set("b", String("3"))

	assert.Equal(t, []string{"b", "a"}, s.Fields())

	v, ok := s.Get("b")
	require.True(t, ok)
	assert.Equal(t, String("3"), v)
}

/*
TestChangeSetJSON verifies the wire shape of a persisted change-set:
fields map to [old, new] arrays, absent values serialize as null, and the
round-trip restores the original values.
*/
func TestChangeSetJSON(t *testing.T) {
	changes := ChangeSet{
		"title":   {Old: Null(), New: String("Dune")},
		"adapted": {Old: Bool(false), New: Bool(true)},
	}

	data, err := json.Marshal(changes)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title": [null, "Dune"], "adapted": [false, true]}`, string(data))

	var decoded ChangeSet
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, changes, decoded)
}

/*
TestValueDisplay covers the log rendering of each value kind.
*/
func TestValueDisplay(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"string", String("Dune"), "Dune"},
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"null", Null(), "—"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.Display())
		})
	}
}

/*
TestStringPtr verifies nil pointer mapping to the absent value.
*/
func TestStringPtr(t *testing.T) {
	assert.Equal(t, Null(), StringPtr(nil))

	s := "Dune"
	assert.Equal(t, String("Dune"), StringPtr(&s))
}
