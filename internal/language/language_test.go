// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_CodesPositiveAndDistinct(t *testing.T) {
	all := All()
	require.Len(t, all, 11)

	seenCodes := make(map[int]string)
	seenIDs := make(map[string]bool)
	for _, l := range all {
		assert.Positive(t, l.Code, "code for %s", l.ID)
		assert.NotEmpty(t, l.Name, "name for %s", l.ID)

		prev, dup := seenCodes[l.Code]
		assert.False(t, dup, "%s and %s share code %d", prev, l.ID, l.Code)
		seenCodes[l.Code] = l.ID

		assert.False(t, seenIDs[l.ID], "duplicate id %s", l.ID)
		seenIDs[l.ID] = true
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		id     string
		want   int
		wantOK bool
	}{
		{"hi", 1, true},
		{"bn", 2, true},
		{"or", 7, true},
		{"as", 11, true},
		{"HI", 1, true},
		{"hi-IN", 1, true},
		{"ta_IN", 9, true},
		{"", 0, false},
		{"en", 0, false},
		{"not a language", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, ok := Lookup(tt.id)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCode_UnknownIsNil(t *testing.T) {
	assert.Nil(t, Code(""))
	assert.Nil(t, Code("fr"))

	c := Code("te")
	require.NotNil(t, c)
	assert.Equal(t, 10, *c)
}

func TestAll_ReturnsCopy(t *testing.T) {
	a := All()
	a[0].Code = 999

	code, ok := Lookup("hi")
	require.True(t, ok)
	assert.Equal(t, 1, code)
	assert.Equal(t, 1, All()[0].Code)
}

func TestMatch(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"hi-IN,hi;q=0.9,en;q=0.8", "hi"},
		{"bn", "bn"},
		{"en-US,en;q=0.9", ""},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.header))
		})
	}
}
