package flyingstar

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/talgya/flyingstars/internal/compass"
)

// ErrInvalidPeriod is returned by CalculateChecked for periods outside 1–9.
var ErrInvalidPeriod = errors.New("period must be between 1 and 9")

// Request holds the inputs of a chart calculation.
type Request struct {
	Period           int     `json:"period"`
	FacingDegrees    float64 `json:"facing_degrees"`
	MountainOverride string  `json:"mountain_override,omitempty"` // Facing mountain name; wins over the bearing when known
	ForceReplacement bool    `json:"force_replacement,omitempty"`
}

// Chart is a computed Flying Star chart.
type Chart struct {
	Period         int            `json:"period"`
	Base           Stars          `json:"-"`
	Mountain       Stars          `json:"-"`
	Water          Stars          `json:"-"`
	Facing         compass.Sector `json:"facing"`
	Sitting        compass.Sector `json:"sitting"`
	Replacement    bool           `json:"replacement"`       // Replacement stars were applied
	NeedsReplace   bool           `json:"needs_replacement"` // Facing bearing lies on a void line
	MountainSign   string         `json:"mountain_flight_sign"`
	WaterSign      string         `json:"water_flight_sign"`
	MountainCenter int            `json:"mountain_center"`
	WaterCenter    int            `json:"water_center"`
}

// FacingMountain returns the facing mountain's display name.
func (c *Chart) FacingMountain() string { return c.Facing.Name }

// SittingMountain returns the sitting mountain's display name.
func (c *Chart) SittingMountain() string { return c.Sitting.Name }

// Calculate derives the chart for a building. It performs no validation:
// an out-of-range period yields a well-defined but meaningless chart.
func Calculate(req Request) *Chart {
	facing, sitting := resolveSectors(req.FacingDegrees, req.MountainOverride)

	base := Fly(req.Period, true)

	// The centre stars are whatever the base grid holds in the sitting and
	// facing palaces.
	mountainSeed := base.At(sitting.Trigram)
	waterSeed := base.At(facing.Trigram)

	if req.ForceReplacement {
		mountainSeed = ReplacementStar(mountainSeed, sitting.SubIndex, sitting.Trigram)
		waterSeed = ReplacementStar(waterSeed, facing.SubIndex, facing.Trigram)
	}

	// Mountain direction is read from the sitting side, water from the facing side.
	mountainForward := FlightDirection(mountainSeed, sitting)
	waterForward := FlightDirection(waterSeed, facing)

	return &Chart{
		Period:         req.Period,
		Base:           base,
		Mountain:       Fly(mountainSeed, mountainForward),
		Water:          Fly(waterSeed, waterForward),
		Facing:         facing,
		Sitting:        sitting,
		Replacement:    req.ForceReplacement,
		NeedsReplace:   compass.NeedsReplacementChart(req.FacingDegrees),
		MountainSign:   Sign(mountainForward),
		WaterSign:      Sign(waterForward),
		MountainCenter: mountainSeed,
		WaterCenter:    waterSeed,
	}
}

// CalculateChecked validates the period before calculating.
func CalculateChecked(req Request) (*Chart, error) {
	if req.Period < 1 || req.Period > 9 {
		return nil, fmt.Errorf("calculate chart: %w (got %d)", ErrInvalidPeriod, req.Period)
	}
	return Calculate(req), nil
}

// resolveSectors finds the facing and sitting mountains. A known override
// name wins over the bearing; its sitting side is taken opposite the band's
// midpoint. An unknown override falls back to the bearing.
func resolveSectors(facingDegrees float64, override string) (facing, sitting compass.Sector) {
	if override != "" {
		if s, ok := compass.SectorByName(override); ok {
			return s, compass.Classify(compass.Opposite(s.Midpoint()))
		}
	}
	return compass.Classify(facingDegrees), compass.Classify(compass.Opposite(facingDegrees))
}

// Palace is one cell of a chart: the three stars seated in a palace.
type Palace struct {
	Trigram   int               `json:"trigram"`
	Direction compass.Direction `json:"direction"`
	Base      int               `json:"base"`
	Mountain  int               `json:"mountain"`
	Water     int               `json:"water"`
}

// Palace returns the star triple of one palace.
func (c *Chart) Palace(trigram int) Palace {
	return Palace{
		Trigram:   trigram,
		Direction: compass.DirectionOf(trigram),
		Base:      c.Base.At(trigram),
		Mountain:  c.Mountain.At(trigram),
		Water:     c.Water.At(trigram),
	}
}

// Palaces returns all nine palaces in trigram order 1–9.
func (c *Chart) Palaces() []Palace {
	out := make([]Palace, 0, 9)
	for t := 1; t <= 9; t++ {
		out = append(out, c.Palace(t))
	}
	return out
}

// GridLayout is the Lo Shu square of palace numbers drawn with South at the top.
var GridLayout = [3][3]int{
	{4, 9, 2},
	{3, 5, 7},
	{8, 1, 6},
}

// Grid returns the chart as a 3×3 square, South on top.
func (c *Chart) Grid() [3][3]Palace {
	var g [3][3]Palace
	for r, row := range GridLayout {
		for col, t := range row {
			g[r][col] = c.Palace(t)
		}
	}
	return g
}

// MarshalJSON flattens the grids into palace→star maps and adds the
// derived grid, formation and combination-of-ten flags.
func (c *Chart) MarshalJSON() ([]byte, error) {
	type alias Chart
	mountainTen, waterTen := c.CombinationOfTen()
	return json.Marshal(struct {
		*alias
		FacingMountain  string       `json:"facing_mountain"`
		SittingMountain string       `json:"sitting_mountain"`
		Base            map[int]int  `json:"base"`
		Mountain        map[int]int  `json:"mountain"`
		Water           map[int]int  `json:"water"`
		Grid            [3][3]Palace `json:"grid"`
		Formation       string       `json:"formation"`
		MountainTen     bool         `json:"mountain_combination_of_ten"`
		WaterTen        bool         `json:"water_combination_of_ten"`
	}{
		alias:           (*alias)(c),
		FacingMountain:  c.FacingMountain(),
		SittingMountain: c.SittingMountain(),
		Base:            c.Base.Map(),
		Mountain:        c.Mountain.Map(),
		Water:           c.Water.Map(),
		Grid:            c.Grid(),
		Formation:       c.Formation().String(),
		MountainTen:     mountainTen,
		WaterTen:        waterTen,
	})
}
