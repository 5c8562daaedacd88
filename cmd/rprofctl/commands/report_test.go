package commands

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

func TestColorSampleLineHighlightsFrequentNames(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = prev }()

	counts := map[string]int{`"hot"`: 9, `"cold"`: 1}
	out := colorSampleLine(` "hot" "cold"`, counts, 10)
	require.Contains(t, out, `"cold"`)
	require.NotEqual(t, ` "hot" "cold"`, out, "the hot name should have been wrapped in color codes")
}

func TestColorSampleLineNoopWithoutSamples(t *testing.T) {
	out := colorSampleLine(` "f"`, map[string]int{}, 0)
	require.Equal(t, ` "f"`, out)
}
