package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1,234.50", "1234.50", true},
		{"4.50", "4.5", true},
		{" 2000.00 ", "2000", true},
		{"1,000,000", "1000000", true},
		{"0", "0", true},
		{"abc", "", false},
		{"", "", false},
		{" , ", "", false},
		{"12.3.4", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if !tc.ok {
			assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.True(t, decimal.RequireFromString(tc.out).Equal(got), "%q parsed as %s", tc.in, got)
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in       string
		currency string
		out      string
	}{
		{"1234.5", "CAD", "1,234.50 CAD"},
		{"0", "CAD", "0.00 CAD"},
		{"999", "", "999.00"},
		{"1000000", "", "1,000,000.00"},
		{"-1995.5", "CAD", "-1,995.50 CAD"},
		{"4.505", "", "4.51"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.out, FormatAmount(decimal.RequireFromString(tc.in), tc.currency))
	}
}
