package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/flyingstars/internal/flyingstar"
	"github.com/talgya/flyingstars/internal/minggua"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestChartJSON(t *testing.T) {
	out, err := run(t, "chart", "--period", "9", "--facing", "165", "--json")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "S1 (Bing)", got["facing_mountain"])
	assert.Equal(t, "N1 (Ren)", got["sitting_mountain"])
	assert.Equal(t, "-", got["water_flight_sign"])
	assert.Equal(t, "DoubleFacing", got["formation"])
}

func TestChartText(t *testing.T) {
	out, err := run(t, "chart", "-p", "8", "-f", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "Period 8  facing NE1 (Chou)")
	assert.Contains(t, out, "Formation Prosperous (Prosperous Sitting and Facing)")
	assert.NotContains(t, out, "--replacement")

	out, err = run(t, "chart", "-p", "8", "-f", "37")
	require.NoError(t, err)
	assert.Contains(t, out, "consider --replacement")

	out, err = run(t, "chart", "-p", "9", "--mountain", "N2 (Zi)")
	require.NoError(t, err)
	assert.Contains(t, out, "sitting S2 (Wu)")
}

func TestChartErrors(t *testing.T) {
	_, err := run(t, "chart", "--period", "9")
	assert.ErrorContains(t, err, "--facing")

	_, err = run(t, "chart", "--period", "10", "--facing", "10")
	assert.ErrorIs(t, err, flyingstar.ErrInvalidPeriod)
}

func TestAnnual(t *testing.T) {
	out, err := run(t, "annual", "--year", "2024", "--json")
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.EqualValues(t, 3, got["star"])

	out, err = run(t, "annual", "-y", "1984")
	require.NoError(t, err)
	assert.Contains(t, out, "Year 1984 (Rat)  annual star 7")
}

func TestGua(t *testing.T) {
	out, err := run(t, "gua", "--birth", "1984-06-01", "--gender", "m")
	require.NoError(t, err)
	assert.Contains(t, out, "Solar year 1984")
	assert.Contains(t, out, "Gua 7 Dui")
	assert.Contains(t, out, "Best:  NW SW NE W (Northwest, Southwest, Northeast, West)")
	assert.Contains(t, out, "Worst: N S SE E (North, South, Southeast, East)")

	out, err = run(t, "gua", "-b", "1984-06-01", "-g", "female", "--json")
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.EqualValues(t, 8, got["gua"])

	_, err = run(t, "gua", "--birth", "1984-06-01", "--gender", "x")
	assert.ErrorIs(t, err, minggua.ErrInvalidGender)

	_, err = run(t, "gua", "--birth", "06/01/1984", "--gender", "m")
	assert.Error(t, err)

	_, err = run(t, "gua", "--gender", "m")
	assert.Error(t, err, "birth is required")
}

func TestCompat(t *testing.T) {
	out, err := run(t, "compat", "--person", "1", "--sector", "4")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Excellent (SE, Southeast)"), out)

	out, err = run(t, "compat", "--person", "1", "--sector", "5")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Neutral"), out)

	_, err = run(t, "compat", "--person", "0", "--sector", "1")
	assert.Error(t, err)
}

func TestCompatSectorByCompassCode(t *testing.T) {
	out, err := run(t, "compat", "--person", "1", "--sector", "se")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Excellent (SE, Southeast)"), out)

	out, err = run(t, "compat", "--person", "1", "--sector", "C")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Neutral"), out)

	_, err = run(t, "compat", "--person", "1", "--sector", "up")
	assert.ErrorContains(t, err, "neither a palace number nor a compass code")
}

func TestParseSector(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"4", 4},
		{"N", 1},
		{" sw ", 2},
		{"NE", 8},
		{"c", 5},
	}
	for _, tt := range tests {
		got, err := parseSector(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSectors(t *testing.T) {
	out, err := run(t, "sectors")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 24)
	assert.Contains(t, lines[0], "N1 (Ren)")
	assert.Contains(t, lines[1], "Yin")

	out, err = run(t, "sectors", "--json")
	require.NoError(t, err)
	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got, 24)
}

func TestRenderGrid(t *testing.T) {
	chart := flyingstar.Calculate(flyingstar.Request{Period: 9, FacingDegrees: 165})
	grid := renderChart(chart)
	assert.Equal(t, 15, lipgloss.Height(grid), "three rows of bordered three-line cells")
	assert.Contains(t, grid, "SE")

	rows := strings.Split(grid, "\n")
	// South sits in the top row, North in the bottom row.
	assert.Contains(t, rows[1], "S")
	assert.Contains(t, rows[11], "N")

	annual := renderStars(flyingstar.AnnualChart(2024))
	assert.Equal(t, 12, lipgloss.Height(annual))
}
