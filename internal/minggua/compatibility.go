package minggua

import (
	"fmt"

	"github.com/talgya/flyingstars/internal/compass"
)

// MarshalText renders the tier as its report label.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.Label()), nil
}

// Compatibility is how a palace suits a person.
type Compatibility struct {
	Rating       string            `json:"rating"`
	IsCompatible bool              `json:"is_compatible"`
	Description  string            `json:"description"`
	Direction    compass.Direction `json:"direction"`
	Tier         *Tier             `json:"tier,omitempty"` // Nil for the centre
}

// tierRatings holds rating and description per tier, best first.
var tierRatings = [8]struct {
	rating      string
	description string
}{
	ShengQi: {"Excellent", "Best direction for wealth, vitality and success."},
	TianYi:  {"Very Good", "Supports health and attracts helpful people."},
	YanNian: {"Good", "Favours relationships, harmony and longevity."},
	FuWei:   {"Fair", "Brings stability, clarity and personal growth."},
	HuoHai:  {"Poor", "Minor setbacks, irritations and small losses."},
	WuGui:   {"Bad", "Quarrels, gossip, fire risk and theft."},
	LiuSha:  {"Very Bad", "Scandal, legal trouble and failed relationships."},
	JueMing: {"Worst", "Most unfavourable: illness, loss and misfortune."},
}

// CenterCompatibility is returned for the centre palace, which belongs to
// no compass direction.
var CenterCompatibility = Compatibility{
	Rating:       "Neutral",
	IsCompatible: true,
	Description:  "The centre palace is shared by everyone and carries no personal direction.",
	Direction:    compass.Center,
}

// Analyze rates palace sectorGua for a person of Gua personGua.
func Analyze(personGua, sectorGua int) (Compatibility, error) {
	if sectorGua == 5 {
		return CenterCompatibility, nil
	}

	dir := compass.DirectionOf(sectorGua)
	if dir == "" {
		return Compatibility{}, fmt.Errorf("analyze compatibility: unknown sector gua %d", sectorGua)
	}
	attrs, ok := AttributesFor(personGua)
	if !ok {
		return Compatibility{}, fmt.Errorf("analyze compatibility: unknown person gua %d", personGua)
	}

	tier, ok := attrs.TierOf(dir)
	if !ok {
		// Every trigram rates all eight directions.
		return Compatibility{}, fmt.Errorf("analyze compatibility: gua %d has no rating for %s", personGua, dir)
	}

	r := tierRatings[tier]
	return Compatibility{
		Rating:       r.rating,
		IsCompatible: tier.Good(),
		Description:  fmt.Sprintf("%s: %s", tier.Label(), r.description),
		Direction:    dir,
		Tier:         &tier,
	}, nil
}

// BestDirections returns a person's four good directions, best first.
func BestDirections(personGua int) []compass.Direction {
	return directionsByTier(personGua, ShengQi, FuWei)
}

// WorstDirections returns a person's four bad directions, mildest first.
func WorstDirections(personGua int) []compass.Direction {
	return directionsByTier(personGua, HuoHai, JueMing)
}

func directionsByTier(personGua int, from, to Tier) []compass.Direction {
	attrs, ok := AttributesFor(personGua)
	if !ok {
		return nil
	}
	out := make([]compass.Direction, 0, 4)
	for t := from; t <= to; t++ {
		for _, d := range compass.Directions {
			if got, ok := attrs.TierOf(d); ok && got == t {
				out = append(out, d)
			}
		}
	}
	return out
}
