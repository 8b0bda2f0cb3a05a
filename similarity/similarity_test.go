package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want int
	}{
		{"identical", "Milo 500g", "Milo 500g", 100},
		{"both empty", "", "", 100},
		{"one empty", "abc", "", 0},
		{"one edit apart", "kitten", "sitting", 76},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Ratio(tc.a, tc.b))
		})
	}
}

func TestTokenSetRatio(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want int
	}{
		{"identical", "Milo 500g", "Milo 500g", 100},
		{"case insensitive", "MILO 500G", "milo 500g", 100},
		{"word order ignored", "500g Milo", "Milo 500g", 100},
		{"duplicate words ignored", "Milo Milo 500g", "milo 500g", 100},
		{"spacing typo", "milo 500 g", "Milo 500g", 94},
		{"size variant", "Milo 400g", "Milo 500g", 94},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TokenSetRatio(tc.a, tc.b))
		})
	}
}

func TestTokenSetRatioUnrelatedNamesScoreLow(t *testing.T) {
	got := TokenSetRatio("Peak Milk 170g", "Indomie Chicken")
	assert.Less(t, got, 85, "unrelated names must stay under the duplicate threshold")
}
