package numbering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRange_DefaultSelectsEverything(t *testing.T) {
	r, err := ParseRange("", "")
	require.NoError(t, err)
	assert.Equal(t, "000.00..999.99", r.String())
	assert.True(t, r.IsFull())

	for major := 0; major <= MaxMajor; major++ {
		for _, minor := range []int{0, 1, 50, 99} {
			require.True(t, r.Contains(MustNew(major, minor)), "%d.%d", major, minor)
		}
	}
}

func TestRange_InvertedSelectsNothing(t *testing.T) {
	r, err := ParseRange("010.00", "005.00")
	require.NoError(t, err)
	assert.True(t, r.IsEmpty())

	// 010.50 satisfies the "major = lower major" clause on its own; inverted
	// bounds must still select nothing.
	for _, v := range []VisibleNumber{MustNew(10, 50), MustNew(5, 0), MustNew(7, 0), MustNew(10, 0)} {
		assert.False(t, r.Contains(v), v.String())
	}

	sameMajor := NewRange(MustNew(12, 60), MustNew(12, 30))
	assert.True(t, sameMajor.IsEmpty())
	assert.False(t, sameMajor.Contains(MustNew(12, 45)))
}

func TestRange_MatchesCombinedDecimalOrder(t *testing.T) {
	bounds := []Range{
		NewRange(MustNew(3, 50), MustNew(7, 25)),
		NewRange(MustNew(12, 30), MustNew(12, 60)),
		NewRange(MustNew(0, 0), MustNew(0, 0)),
		NewRange(MustNew(998, 99), MustNew(999, 0)),
		NewRange(MustNew(5, 0), MustNew(4, 99)),
	}
	for _, r := range bounds {
		t.Run(r.String(), func(t *testing.T) {
			for major := 0; major <= MaxMajor; major++ {
				for minor := 0; minor <= MaxMinor; minor += 11 {
					v := MustNew(major, minor)
					want := v.Compare(r.From) >= 0 && v.Compare(r.To) <= 0
					require.Equal(t, want, r.Contains(v), v.String())
				}
			}
		})
	}
}

func TestParseRange_Invalid(t *testing.T) {
	_, err := ParseRange("12.345", "")
	assert.Error(t, err)
	_, err = ParseRange("", "abc")
	assert.Error(t, err)

	r, err := ParseRange("5", "")
	require.NoError(t, err)
	assert.Equal(t, MustNew(5, 0), r.From)
	assert.Equal(t, RangeMax, r.To)
}
