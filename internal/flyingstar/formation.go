package flyingstar

// Formation classifies a chart by where the period's own star lands in the
// Mountain and Water grids.
type Formation uint8

const (
	FormationNone          Formation = iota
	FormationProsperous              // Mountain star at sitting, water star at facing
	FormationDoubleFacing            // Both at facing
	FormationDoubleSitting           // Both at sitting
	FormationReversed                // Mountain star at facing, water star at sitting
)

var formationCodes = [...]string{"None", "Prosperous", "DoubleFacing", "DoubleSitting", "Reversed"}

var formationLabels = [...]string{
	"None",
	"Prosperous Sitting and Facing",
	"Double Stars at Facing",
	"Double Stars at Sitting",
	"Reversed",
}

// String returns the formation code, e.g. "DoubleFacing".
func (f Formation) String() string {
	if int(f) < len(formationCodes) {
		return formationCodes[f]
	}
	return "None"
}

// Label returns the formation's conventional English name.
func (f Formation) Label() string {
	if int(f) < len(formationLabels) {
		return formationLabels[f]
	}
	return "None"
}

// MarshalText renders the formation by code.
func (f Formation) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Formation reports the chart's formation. Charts whose period stars land
// in neither the sitting nor the facing palace have none.
func (c *Chart) Formation() Formation {
	mountainAt := c.Mountain.Find(c.Period)
	waterAt := c.Water.Find(c.Period)
	sit, face := c.Sitting.Trigram, c.Facing.Trigram

	switch {
	case mountainAt == sit && waterAt == face:
		return FormationProsperous
	case mountainAt == face && waterAt == face:
		return FormationDoubleFacing
	case mountainAt == sit && waterAt == sit:
		return FormationDoubleSitting
	case mountainAt == face && waterAt == sit:
		return FormationReversed
	default:
		return FormationNone
	}
}

// CombinationOfTen reports whether the mountain stars, or the water stars,
// sum to ten with the base star in every palace.
func (c *Chart) CombinationOfTen() (mountain, water bool) {
	mountain, water = true, true
	for p := 1; p <= 9; p++ {
		if c.Mountain[p]+c.Base[p] != 10 {
			mountain = false
		}
		if c.Water[p]+c.Base[p] != 10 {
			water = false
		}
	}
	return mountain, water
}
