package identify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Black Lotus", "Black Lotus"},
		{"  Black   Lotus \n", "Black Lotus"},
		{"|Black Lotus_", "Black Lotus"},
		{"-- Nightmare --", "Nightmare"},
		{"~~*", ""},
		{"", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, cleanTitle(tc.in), "input %q", tc.in)
	}
}
