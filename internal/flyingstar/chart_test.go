package flyingstar

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/flyingstars/internal/compass"
)

func stars(byPalace map[int]int) Stars {
	var s Stars
	for p, v := range byPalace {
		s[p] = v
	}
	return s
}

func TestFlyIsPermutation(t *testing.T) {
	for start := 1; start <= 9; start++ {
		for _, forward := range []bool{true, false} {
			s := Fly(start, forward)
			assert.Equal(t, start, s.At(5), "centre receives the start star")

			seen := map[int]bool{}
			for p := 1; p <= 9; p++ {
				v := s.At(p)
				require.GreaterOrEqual(t, v, 1)
				require.LessOrEqual(t, v, 9)
				seen[v] = true
			}
			assert.Len(t, seen, 9, "start %d forward %v", start, forward)
		}
	}
}

func TestFlyForwardBackwardMirror(t *testing.T) {
	// Step i lands start+i going forward and start-i going back, so the
	// two always sum to 2*start modulo 9.
	for start := 1; start <= 9; start++ {
		fwd := Fly(start, true)
		bwd := Fly(start, false)
		for _, p := range LoShuPath {
			assert.Equal(t, mod9(2*start), mod9(fwd.At(p)+bwd.At(p)), "start %d palace %d", start, p)
		}
	}
}

func TestFlyConcrete(t *testing.T) {
	got := Fly(9, true)
	want := stars(map[int]int{5: 9, 6: 1, 7: 2, 8: 3, 9: 4, 1: 5, 2: 6, 3: 7, 4: 8})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Fly(9, true) mismatch (-want +got):\n%s", diff)
	}

	got = Fly(4, false)
	want = stars(map[int]int{5: 4, 6: 3, 7: 2, 8: 1, 9: 9, 1: 8, 2: 7, 3: 6, 4: 5})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Fly(4, false) mismatch (-want +got):\n%s", diff)
	}
}

func TestFlyOutOfRangeStart(t *testing.T) {
	// Meaningless, but still a permutation of 1..9.
	s := Fly(-3, true)
	seen := map[int]bool{}
	for p := 1; p <= 9; p++ {
		seen[s.At(p)] = true
	}
	assert.Len(t, seen, 9)
	assert.Equal(t, 6, s.At(5))
}

func TestStarsHelpers(t *testing.T) {
	s := Fly(9, true)
	assert.Equal(t, 0, s.At(0))
	assert.Equal(t, 0, s.At(10))
	assert.Equal(t, 5, s.Find(9))
	assert.Equal(t, 1, s.Find(5))
	assert.Equal(t, 0, s.Find(11))
	assert.Equal(t, map[int]int{1: 5, 2: 6, 3: 7, 4: 8, 5: 9, 6: 1, 7: 2, 8: 3, 9: 4}, s.Map())
}

func TestReplacementStar(t *testing.T) {
	tests := []struct {
		name              string
		star, sub, palace int
		want              int
	}{
		{"five borrows its palace", 5, 1, 2, 2},
		{"five in the north", 5, 1, 1, 2},
		{"five in the south, middle mountain", 5, 2, 9, 9},
		{"own table", 4, 1, 9, 6},
		{"own table third position", 8, 3, 1, 9},
		{"five in the centre has no table", 5, 2, 5, 5},
		{"position out of range", 3, 4, 1, 3},
		{"unknown star", 0, 1, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReplacementStar(tt.star, tt.sub, tt.palace))
		})
	}
}

func TestReplacementTableCoversPalaces(t *testing.T) {
	for _, s := range compass.Sectors {
		row, ok := replacementTable[s.Trigram]
		require.True(t, ok, "palace %d", s.Trigram)
		v := row[s.SubIndex-1]
		assert.NotEqual(t, 5, v, s.Name)
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 9)
	}
	_, ok := replacementTable[5]
	assert.False(t, ok)
}

func TestFlightDirection(t *testing.T) {
	ren, _ := compass.SectorByName("N1 (Ren)")
	bing, _ := compass.SectorByName("S1 (Bing)")
	chou, _ := compass.SectorByName("NE1 (Chou)")
	kun, _ := compass.SectorByName("SW2 (Kun)")

	tests := []struct {
		name   string
		star   int
		origin compass.Sector
		want   bool
	}{
		{"five takes the origin polarity (Yang)", 5, ren, true},
		{"five takes the origin polarity (Yin)", 5, chou, false},
		{"four at first position reads Chen", 4, bing, false},
		{"six at second position reads Qian", 6, kun, true},
		{"one at first position reads Ren", 1, bing, true},
		{"no such palace defaults forward", 0, bing, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FlightDirection(tt.star, tt.origin))
		})
	}
}

func TestCalculatePeriodNineSouthFacing(t *testing.T) {
	c := Calculate(Request{Period: 9, FacingDegrees: 165.0})

	assert.Equal(t, 9, c.Base.At(5))
	assert.Equal(t, "S1 (Bing)", c.FacingMountain())
	assert.Equal(t, "N1 (Ren)", c.SittingMountain())
	assert.Equal(t, "-", c.WaterSign)
	assert.Equal(t, "+", c.MountainSign)
	assert.False(t, c.NeedsReplace)
	assert.Equal(t, 5, c.MountainCenter)
	assert.Equal(t, 4, c.WaterCenter)

	if diff := cmp.Diff(Fly(5, true), c.Mountain); diff != "" {
		t.Errorf("mountain stars (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Fly(4, false), c.Water); diff != "" {
		t.Errorf("water stars (-want +got):\n%s", diff)
	}
	assert.Equal(t, FormationDoubleFacing, c.Formation())
}

func TestCalculateReplacementSouthwest(t *testing.T) {
	c := Calculate(Request{Period: 8, FacingDegrees: 210.0, ForceReplacement: true})

	assert.Equal(t, "SW1 (Wei)", c.FacingMountain())
	assert.Equal(t, "NE1 (Chou)", c.SittingMountain())
	assert.Equal(t, 2, c.Water.At(5))
	assert.Equal(t, "-", c.WaterSign)
	assert.True(t, c.Replacement)
}

func TestCalculateWaterFiveBorrowsFacingPolarity(t *testing.T) {
	c := Calculate(Request{Period: 2, FacingDegrees: 30.0})

	assert.Equal(t, "NE1 (Chou)", c.FacingMountain())
	assert.Equal(t, 5, c.Water.At(5))
	assert.Equal(t, "-", c.WaterSign)
}

func TestCalculateReplacementChangesCentres(t *testing.T) {
	c := Calculate(Request{Period: 9, FacingDegrees: 165.0, ForceReplacement: true})

	assert.Equal(t, 2, c.MountainCenter)
	assert.Equal(t, 6, c.WaterCenter)
	assert.Equal(t, "-", c.MountainSign)
	assert.Equal(t, "-", c.WaterSign)
	assert.Equal(t, 9, c.Base.At(5), "base grid is never replaced")
}

func TestCalculateOverride(t *testing.T) {
	c := Calculate(Request{Period: 8, FacingDegrees: 0, MountainOverride: "S1 (Bing)"})
	assert.Equal(t, "S1 (Bing)", c.FacingMountain())
	assert.Equal(t, "N1 (Ren)", c.SittingMountain())
	assert.False(t, c.NeedsReplace, "void line check uses the original bearing")

	// Wrapping override: Zi's midpoint is 0°, so its sitting side is Wu.
	c = Calculate(Request{Period: 8, FacingDegrees: 37.0, MountainOverride: "N2 (Zi)"})
	assert.Equal(t, "N2 (Zi)", c.FacingMountain())
	assert.Equal(t, "S2 (Wu)", c.SittingMountain())
	assert.True(t, c.NeedsReplace)

	// Unknown names fall back to the bearing.
	c = Calculate(Request{Period: 8, FacingDegrees: 165, MountainOverride: "nowhere"})
	assert.Equal(t, "S1 (Bing)", c.FacingMountain())
}

func TestCalculateGridsArePermutations(t *testing.T) {
	for period := 1; period <= 9; period++ {
		for _, s := range compass.Sectors {
			for _, force := range []bool{false, true} {
				c := Calculate(Request{Period: period, FacingDegrees: s.Midpoint(), ForceReplacement: force})
				for _, grid := range []Stars{c.Base, c.Mountain, c.Water} {
					seen := map[int]bool{}
					for p := 1; p <= 9; p++ {
						seen[grid.At(p)] = true
					}
					require.Len(t, seen, 9, "period %d %s", period, s.Name)
				}
				assert.Equal(t, compass.Opposite(s.Midpoint()), c.Sitting.Midpoint())
			}
		}
	}
}

func TestFormations(t *testing.T) {
	tests := []struct {
		period int
		facing float64
		want   Formation
	}{
		{8, 30, FormationProsperous},
		{8, 45, FormationReversed},
		{8, 0, FormationDoubleSitting},
		{8, 180, FormationDoubleFacing},
		{9, 165, FormationDoubleFacing},
		{9, 180, FormationDoubleSitting},
	}
	for _, tt := range tests {
		c := Calculate(Request{Period: tt.period, FacingDegrees: tt.facing})
		assert.Equal(t, tt.want, c.Formation(), "period %d facing %v", tt.period, tt.facing)
	}
	assert.Equal(t, "Reversed", FormationReversed.String())
}

func TestFormationNames(t *testing.T) {
	tests := []struct {
		f     Formation
		code  string
		label string
	}{
		{FormationNone, "None", "None"},
		{FormationProsperous, "Prosperous", "Prosperous Sitting and Facing"},
		{FormationDoubleFacing, "DoubleFacing", "Double Stars at Facing"},
		{FormationDoubleSitting, "DoubleSitting", "Double Stars at Sitting"},
		{FormationReversed, "Reversed", "Reversed"},
		{Formation(42), "None", "None"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.f.String())
		assert.Equal(t, tt.label, tt.f.Label())
	}
}

func TestChartJSONUsesFormationCode(t *testing.T) {
	raw, err := json.Marshal(Calculate(Request{Period: 9, FacingDegrees: 165}))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "DoubleFacing", got["formation"])
	assert.Equal(t, "S1 (Bing)", got["facing_mountain"])

	raw, err = json.Marshal(map[string]Formation{"f": FormationProsperous})
	require.NoError(t, err)
	assert.JSONEq(t, `{"f":"Prosperous"}`, string(raw))
}

func TestCombinationOfTen(t *testing.T) {
	m, w := Calculate(Request{Period: 8, FacingDegrees: 30}).CombinationOfTen()
	assert.False(t, m)
	assert.True(t, w)

	m, w = Calculate(Request{Period: 8, FacingDegrees: 210}).CombinationOfTen()
	assert.True(t, m)
	assert.False(t, w)

	m, w = Calculate(Request{Period: 9, FacingDegrees: 165}).CombinationOfTen()
	assert.False(t, m)
	assert.False(t, w)
}

func TestGridLayout(t *testing.T) {
	c := Calculate(Request{Period: 9, FacingDegrees: 165})
	g := c.Grid()

	assert.Equal(t, 9, g[0][1].Trigram)
	assert.Equal(t, compass.South, g[0][1].Direction)
	assert.Equal(t, 5, g[1][1].Trigram)
	assert.Equal(t, 9, g[1][1].Base)
	assert.Equal(t, compass.North, g[2][1].Direction)

	palaces := c.Palaces()
	require.Len(t, palaces, 9)
	assert.Equal(t, Palace{Trigram: 9, Direction: compass.South, Base: 4, Mountain: 9, Water: 9}, palaces[8])
}

func TestCalculateChecked(t *testing.T) {
	_, err := CalculateChecked(Request{Period: 0, FacingDegrees: 10})
	assert.True(t, errors.Is(err, ErrInvalidPeriod))

	_, err = CalculateChecked(Request{Period: 10})
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	c, err := CalculateChecked(Request{Period: 9, FacingDegrees: 165})
	require.NoError(t, err)
	assert.Equal(t, 9, c.Period)
}

func TestAnnualStar(t *testing.T) {
	tests := map[int]int{1984: 7, 1999: 1, 2000: 9, 2023: 4, 2024: 3, 2025: 2}
	for year, want := range tests {
		assert.Equal(t, want, AnnualStar(year), "year %d", year)
	}
	assert.Equal(t, 3, AnnualChart(2024).At(5))
}

func TestCalculateBatch(t *testing.T) {
	reqs := make([]Request, 0, 9)
	for p := 1; p <= 9; p++ {
		reqs = append(reqs, Request{Period: p, FacingDegrees: 165})
	}

	charts, err := CalculateBatch(context.Background(), reqs, 3)
	require.NoError(t, err)
	require.Len(t, charts, 9)
	for i, c := range charts {
		assert.Equal(t, i+1, c.Period)
		assert.Equal(t, i+1, c.Base.At(5))
	}

	_, err = CalculateBatch(context.Background(), []Request{{Period: 9}, {Period: 12}}, 0)
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = CalculateBatch(ctx, reqs, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
