package minggua

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/flyingstars/internal/compass"
)

func TestReduceDigits(t *testing.T) {
	tests := map[int]int{0: 0, 7: 7, 1984: 4, 1999: 1, 2000: 2, 1989: 9, -1984: 4}
	for in, want := range tests {
		assert.Equal(t, want, ReduceDigits(in), "input %d", in)
	}
}

func TestLifeGua(t *testing.T) {
	// Reference values worked by hand.
	cases := []struct {
		year   int
		gender Gender
		want   int
	}{
		{1984, Male, 7},   // 22 → 4, 11 - 4
		{1999, Male, 1},   // 28 → 10 → 1, 11 - 1 = 10 → 1
		{1984, Female, 8}, // 4 + 4
		{1999, Female, 8}, // 1 + 4 = 5 → 8
		{1986, Male, 2},   // 24 → 6, 11 - 6 = 5 → 2
		{1986, Female, 1}, // 6 + 4 = 10 → 1
		{2000, Male, 9},   // 2, 11 - 2
		{2000, Female, 6}, // 2 + 4
		{1989, Male, 2},   // 27 → 9, 11 - 9
		{1989, Female, 4}, // 9 + 4 = 13 → 4
	}
	for _, tt := range cases {
		got, err := LifeGua(tt.year, tt.gender)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "year %d gender %s", tt.year, tt.gender)
	}
}

func TestLifeGuaNeverFive(t *testing.T) {
	for year := 1900; year <= 2100; year++ {
		for _, g := range []Gender{Male, Female} {
			gua, err := LifeGua(year, g)
			require.NoError(t, err)
			assert.NotEqual(t, 5, gua, "year %d gender %s", year, g)
			assert.GreaterOrEqual(t, gua, 1)
			assert.LessOrEqual(t, gua, 9)
		}
	}
}

func TestLifeGuaInvalidGender(t *testing.T) {
	_, err := LifeGua(1984, Gender("x"))
	assert.ErrorIs(t, err, ErrInvalidGender)

	_, err = LifeGua(1984, Gender("male"))
	assert.ErrorIs(t, err, ErrInvalidGender, "the core accepts only the short codes")
}

func TestParseGender(t *testing.T) {
	for _, s := range []string{"m", "M", "male", " Male "} {
		g, err := ParseGender(s)
		require.NoError(t, err)
		assert.Equal(t, Male, g)
	}
	g, err := ParseGender("FEMALE")
	require.NoError(t, err)
	assert.Equal(t, Female, g)

	_, err = ParseGender("other")
	assert.ErrorIs(t, err, ErrInvalidGender)
}

func TestSolarYear(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"1984-01-15", 1983},
		{"1984-02-03", 1983},
		{"1984-02-04", 1984},
		{"1984-12-31", 1984},
		{"2000-03-01", 2000},
	}
	for _, tt := range tests {
		d, err := time.Parse(time.DateOnly, tt.date)
		require.NoError(t, err)
		assert.Equal(t, tt.want, SolarYear(d), tt.date)
	}
}

func TestLifeGuaForDate(t *testing.T) {
	// Born before Li Chun, so counted in 1983: 21 → 3, 11 - 3 = 8.
	d := time.Date(1984, time.January, 20, 0, 0, 0, 0, time.UTC)
	gua, err := LifeGuaForDate(d, Male)
	require.NoError(t, err)
	assert.Equal(t, 8, gua)
}

func TestAttributesTable(t *testing.T) {
	for _, gua := range []int{1, 2, 3, 4, 6, 7, 8, 9} {
		a, ok := AttributesFor(gua)
		require.True(t, ok, "gua %d", gua)
		assert.Equal(t, gua, a.Gua)
		assert.Len(t, a.GoodDirections, 4)
		assert.Len(t, a.BadDirections, 4)

		tiers := map[Tier]bool{}
		for _, d := range compass.Directions {
			_, good := a.GoodDirections[d]
			_, bad := a.BadDirections[d]
			assert.True(t, good != bad, "gua %d direction %s must be exactly one of good/bad", gua, d)
			tier, ok := a.TierOf(d)
			require.True(t, ok)
			assert.Equal(t, good, tier.Good())
			tiers[tier] = true
		}
		assert.Len(t, tiers, 8, "gua %d uses every tier once", gua)

		// Fu-Wei is always the trigram's own direction.
		own, _ := a.TierOf(compass.DirectionOf(gua))
		assert.Equal(t, FuWei, own, "gua %d", gua)
	}
}

func TestAttributesAliasFive(t *testing.T) {
	five, ok := AttributesFor(5)
	require.True(t, ok)
	two, _ := AttributesFor(2)
	assert.Equal(t, two, five)

	_, ok = AttributesFor(0)
	assert.False(t, ok)
	assert.Equal(t, Group(""), GroupOf(10))
}

func TestAttributesReturnsCopies(t *testing.T) {
	a, _ := AttributesFor(1)
	delete(a.GoodDirections, compass.North)

	b, _ := AttributesFor(1)
	assert.Len(t, b.GoodDirections, 4)
}

func TestGroups(t *testing.T) {
	for _, g := range []int{1, 3, 4, 9} {
		assert.Equal(t, EastGroup, GroupOf(g))
	}
	for _, g := range []int{2, 6, 7, 8} {
		assert.Equal(t, WestGroup, GroupOf(g))
	}
}

func TestGroupMembersShareGoodDirections(t *testing.T) {
	// A person's good directions are exactly the palaces of their own group.
	for _, gua := range []int{1, 2, 3, 4, 6, 7, 8, 9} {
		a, _ := AttributesFor(gua)
		for d := range a.GoodDirections {
			assert.Equal(t, a.Group, GroupOf(compass.TrigramOf(d)), "gua %d direction %s", gua, d)
		}
	}
}

func TestNewProfile(t *testing.T) {
	p, err := NewProfile(time.Date(1984, time.June, 1, 0, 0, 0, 0, time.UTC), Male)
	require.NoError(t, err)
	assert.Equal(t, 1984, p.SolarYear)
	assert.Equal(t, 7, p.Gua)
	assert.Equal(t, "Dui", p.Attributes.Name)
	assert.Equal(t, Wood, p.YearElement)
	assert.Equal(t, "Rat", p.Zodiac)
	assert.Equal(t, Wealth, p.Relationship.Relationship, "Metal controls Wood")

	_, err = NewProfile(time.Now(), Gender(""))
	assert.ErrorIs(t, err, ErrInvalidGender)
}
