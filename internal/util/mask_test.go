package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"Ana.Romero@Gmail.com": "a…@g….com",
		"a@x.com":              "a@x.com",
		"":                     "",
		"abc":                  "***",
		"sinarroba":            "s…a",
		"@x.com":               "@…m",
	}
	for in, want := range cases {
		require.Equal(t, want, MaskEmail(in), in)
	}
}
