// Package compass provides the 24-mountain compass ring used by the
// Flying Star and Eight Mansions calculators.
// Bearings are degrees clockwise from north.
package compass

import (
	"math"
	"strings"
)

// Polarity is the Yin/Yang charge of a mountain.
type Polarity uint8

const (
	Yang Polarity = iota // Flies forward
	Yin                  // Flies backward
)

// String returns "Yang" or "Yin".
func (p Polarity) String() string {
	if p == Yang {
		return "Yang"
	}
	return "Yin"
}

// Sign returns "+" for Yang and "-" for Yin.
func (p Polarity) Sign() string {
	if p == Yang {
		return "+"
	}
	return "-"
}

// MarshalText renders the polarity by name.
func (p Polarity) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Sector is one of the 24 mountains: a 15° band on the compass ring.
type Sector struct {
	Name     string   `json:"name"`
	Min      float64  `json:"min_degree"`
	Max      float64  `json:"max_degree"` // Max < Min marks the band straddling north
	Trigram  int      `json:"trigram"`    // Lo Shu palace number, never 5
	SubIndex int      `json:"sub_index"`  // 1–3, position inside the palace
	Polarity Polarity `json:"polarity"`
}

// Wraps reports whether the band crosses the 0°/360° seam.
func (s Sector) Wraps() bool {
	return s.Min > s.Max
}

// Contains reports whether a normalised bearing lies in [Min, Max).
func (s Sector) Contains(degree float64) bool {
	if s.Wraps() {
		return degree >= s.Min || degree < s.Max
	}
	return degree >= s.Min && degree < s.Max
}

// Midpoint returns the centre bearing of the band.
func (s Sector) Midpoint() float64 {
	if s.Wraps() {
		return Normalize((s.Min + s.Max + 360) / 2)
	}
	return (s.Min + s.Max) / 2
}

// Direction returns the compass code of the sector's palace.
func (s Sector) Direction() Direction {
	return DirectionOf(s.Trigram)
}

// Sectors is the 24-mountain ring in clockwise order starting at Ren.
// Cardinal palaces (1, 3, 7, 9) run Yang-Yin-Yin; corner palaces
// (2, 4, 6, 8) run Yin-Yang-Yang.
var Sectors = [24]Sector{
	{Name: "N1 (Ren)", Min: 337.5, Max: 352.5, Trigram: 1, SubIndex: 1, Polarity: Yang},
	{Name: "N2 (Zi)", Min: 352.5, Max: 7.5, Trigram: 1, SubIndex: 2, Polarity: Yin},
	{Name: "N3 (Gui)", Min: 7.5, Max: 22.5, Trigram: 1, SubIndex: 3, Polarity: Yin},
	{Name: "NE1 (Chou)", Min: 22.5, Max: 37.5, Trigram: 8, SubIndex: 1, Polarity: Yin},
	{Name: "NE2 (Gen)", Min: 37.5, Max: 52.5, Trigram: 8, SubIndex: 2, Polarity: Yang},
	{Name: "NE3 (Yin)", Min: 52.5, Max: 67.5, Trigram: 8, SubIndex: 3, Polarity: Yang},
	{Name: "E1 (Jia)", Min: 67.5, Max: 82.5, Trigram: 3, SubIndex: 1, Polarity: Yang},
	{Name: "E2 (Mao)", Min: 82.5, Max: 97.5, Trigram: 3, SubIndex: 2, Polarity: Yin},
	{Name: "E3 (Yi)", Min: 97.5, Max: 112.5, Trigram: 3, SubIndex: 3, Polarity: Yin},
	{Name: "SE1 (Chen)", Min: 112.5, Max: 127.5, Trigram: 4, SubIndex: 1, Polarity: Yin},
	{Name: "SE2 (Xun)", Min: 127.5, Max: 142.5, Trigram: 4, SubIndex: 2, Polarity: Yang},
	{Name: "SE3 (Si)", Min: 142.5, Max: 157.5, Trigram: 4, SubIndex: 3, Polarity: Yang},
	{Name: "S1 (Bing)", Min: 157.5, Max: 172.5, Trigram: 9, SubIndex: 1, Polarity: Yang},
	{Name: "S2 (Wu)", Min: 172.5, Max: 187.5, Trigram: 9, SubIndex: 2, Polarity: Yin},
	{Name: "S3 (Ding)", Min: 187.5, Max: 202.5, Trigram: 9, SubIndex: 3, Polarity: Yin},
	{Name: "SW1 (Wei)", Min: 202.5, Max: 217.5, Trigram: 2, SubIndex: 1, Polarity: Yin},
	{Name: "SW2 (Kun)", Min: 217.5, Max: 232.5, Trigram: 2, SubIndex: 2, Polarity: Yang},
	{Name: "SW3 (Shen)", Min: 232.5, Max: 247.5, Trigram: 2, SubIndex: 3, Polarity: Yang},
	{Name: "W1 (Geng)", Min: 247.5, Max: 262.5, Trigram: 7, SubIndex: 1, Polarity: Yang},
	{Name: "W2 (You)", Min: 262.5, Max: 277.5, Trigram: 7, SubIndex: 2, Polarity: Yin},
	{Name: "W3 (Xin)", Min: 277.5, Max: 292.5, Trigram: 7, SubIndex: 3, Polarity: Yin},
	{Name: "NW1 (Xu)", Min: 292.5, Max: 307.5, Trigram: 6, SubIndex: 1, Polarity: Yin},
	{Name: "NW2 (Qian)", Min: 307.5, Max: 322.5, Trigram: 6, SubIndex: 2, Polarity: Yang},
	{Name: "NW3 (Hai)", Min: 322.5, Max: 337.5, Trigram: 6, SubIndex: 3, Polarity: Yang},
}

// VoidLineTolerance is how close (inclusive, in degrees) a bearing may sit
// to a mountain boundary before the standard chart is considered unreliable.
const VoidLineTolerance = 3.0

// boundaries holds the 24 distinct band edges.
var boundaries = func() [24]float64 {
	var b [24]float64
	for i, s := range Sectors {
		b[i] = s.Min
	}
	return b
}()

// Normalize maps any bearing into [0, 360).
func Normalize(degree float64) float64 {
	d := math.Mod(math.Mod(degree, 360)+360, 360)
	if d >= 360 {
		// math.Mod of a tiny negative value can round up to exactly 360.
		d = 0
	}
	return d
}

// Opposite returns the bearing 180° away, normalised.
func Opposite(degree float64) float64 {
	return Normalize(degree + 180)
}

// Classify returns the mountain containing the bearing.
func Classify(degree float64) Sector {
	s, _ := classify(degree)
	return s
}

// classify also reports whether a band actually matched. An unmatched
// bearing (NaN, ±Inf) falls back to the first table entry.
func classify(degree float64) (Sector, bool) {
	d := Normalize(degree)
	for _, s := range Sectors {
		if s.Contains(d) {
			return s, true
		}
	}
	return Sectors[0], false
}

// SectorByName looks up a mountain by its display name.
func SectorByName(name string) (Sector, bool) {
	name = strings.TrimSpace(name)
	for _, s := range Sectors {
		if s.Name == name {
			return s, true
		}
	}
	return Sector{}, false
}

// NeedsReplacementChart reports whether the bearing lies within
// VoidLineTolerance of any mountain boundary (a void line).
func NeedsReplacementChart(degree float64) bool {
	d := Normalize(degree)
	for _, b := range boundaries {
		if circularDistance(d, b) <= VoidLineTolerance {
			return true
		}
	}
	return false
}

// circularDistance returns the shortest arc between two bearings, in [0, 180].
func circularDistance(a, b float64) float64 {
	diff := math.Abs(a - b)
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}

// SubMountainIndex extracts the 1–3 position digit embedded in a mountain
// display name such as "S1 (Bing)". Names without one default to 1.
func SubMountainIndex(name string) int {
	for _, r := range name {
		if r >= '1' && r <= '3' {
			return int(r - '0')
		}
	}
	return 1
}

// FindSector returns the mountain of the given palace at the given position.
func FindSector(trigram, subIndex int) (Sector, bool) {
	for _, s := range Sectors {
		if s.Trigram == trigram && s.SubIndex == subIndex {
			return s, true
		}
	}
	return Sector{}, false
}

// EffectiveTrigram resolves which palace governs a star. Every star but 5
// rules the palace of its own number; 5 has no palace of its own and
// borrows the one it currently occupies.
func EffectiveTrigram(star, palace int) int {
	if star == 5 {
		return palace
	}
	return star
}
