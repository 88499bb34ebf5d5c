package minggua

import (
	"maps"

	"github.com/talgya/flyingstars/internal/compass"
)

// Group is the Eight Mansions group a trigram belongs to.
type Group string

const (
	EastGroup Group = "East"
	WestGroup Group = "West"
)

// Tier is one of the eight Eight Mansions star qualities a direction holds
// for a person, best first.
type Tier uint8

const (
	ShengQi Tier = iota // Life generating
	TianYi              // Heavenly doctor
	YanNian             // Longevity
	FuWei               // Stability
	HuoHai              // Mishaps
	WuGui               // Five ghosts
	LiuSha              // Six killings
	JueMing             // Total loss
)

// Good reports whether the tier is one of the four favourable ones.
func (t Tier) Good() bool {
	return t <= FuWei
}

// Name returns the tier's pinyin name.
func (t Tier) Name() string {
	switch t {
	case ShengQi:
		return "Sheng-Qi"
	case TianYi:
		return "Tian-Yi"
	case YanNian:
		return "Yan-Nian"
	case FuWei:
		return "Fu-Wei"
	case HuoHai:
		return "Huo-Hai"
	case WuGui:
		return "Wu-Gui"
	case LiuSha:
		return "Liu-Sha"
	case JueMing:
		return "Jue-Ming"
	default:
		return "Unknown"
	}
}

// Label returns the name with its English meaning, as shown in reports.
func (t Tier) Label() string {
	switch t {
	case ShengQi:
		return "Sheng-Qi (Life Generating)"
	case TianYi:
		return "Tian-Yi (Heavenly Doctor)"
	case YanNian:
		return "Yan-Nian (Longevity)"
	case FuWei:
		return "Fu-Wei (Stability)"
	case HuoHai:
		return "Huo-Hai (Mishaps)"
	case WuGui:
		return "Wu-Gui (Five Ghosts)"
	case LiuSha:
		return "Liu-Sha (Six Killings)"
	case JueMing:
		return "Jue-Ming (Total Loss)"
	default:
		return "Unknown"
	}
}

// Attributes describes one trigram.
type Attributes struct {
	Gua            int                        `json:"gua"`
	Name           string                     `json:"name"`
	Element        Element                    `json:"element"`
	Group          Group                      `json:"group"`
	GoodDirections map[compass.Direction]Tier `json:"good_directions"`
	BadDirections  map[compass.Direction]Tier `json:"bad_directions"`
}

// TierOf returns the tier a direction holds for this trigram.
func (a Attributes) TierOf(d compass.Direction) (Tier, bool) {
	if t, ok := a.GoodDirections[d]; ok {
		return t, true
	}
	if t, ok := a.BadDirections[d]; ok {
		return t, true
	}
	return 0, false
}

// attributes is keyed by Gua number; 5 has no entry of its own.
var attributes = map[int]Attributes{
	1: {Gua: 1, Name: "Kan", Element: Water, Group: EastGroup,
		GoodDirections: map[compass.Direction]Tier{compass.SouthEast: ShengQi, compass.East: TianYi, compass.South: YanNian, compass.North: FuWei},
		BadDirections:  map[compass.Direction]Tier{compass.West: HuoHai, compass.NorthEast: WuGui, compass.NorthWest: LiuSha, compass.SouthWest: JueMing}},
	2: {Gua: 2, Name: "Kun", Element: Earth, Group: WestGroup,
		GoodDirections: map[compass.Direction]Tier{compass.NorthEast: ShengQi, compass.West: TianYi, compass.NorthWest: YanNian, compass.SouthWest: FuWei},
		BadDirections:  map[compass.Direction]Tier{compass.East: HuoHai, compass.SouthEast: WuGui, compass.South: LiuSha, compass.North: JueMing}},
	3: {Gua: 3, Name: "Zhen", Element: Wood, Group: EastGroup,
		GoodDirections: map[compass.Direction]Tier{compass.South: ShengQi, compass.North: TianYi, compass.SouthEast: YanNian, compass.East: FuWei},
		BadDirections:  map[compass.Direction]Tier{compass.SouthWest: HuoHai, compass.NorthWest: WuGui, compass.NorthEast: LiuSha, compass.West: JueMing}},
	4: {Gua: 4, Name: "Xun", Element: Wood, Group: EastGroup,
		GoodDirections: map[compass.Direction]Tier{compass.North: ShengQi, compass.South: TianYi, compass.East: YanNian, compass.SouthEast: FuWei},
		BadDirections:  map[compass.Direction]Tier{compass.NorthWest: HuoHai, compass.SouthWest: WuGui, compass.West: LiuSha, compass.NorthEast: JueMing}},
	6: {Gua: 6, Name: "Qian", Element: Metal, Group: WestGroup,
		GoodDirections: map[compass.Direction]Tier{compass.West: ShengQi, compass.NorthEast: TianYi, compass.SouthWest: YanNian, compass.NorthWest: FuWei},
		BadDirections:  map[compass.Direction]Tier{compass.SouthEast: HuoHai, compass.East: WuGui, compass.North: LiuSha, compass.South: JueMing}},
	7: {Gua: 7, Name: "Dui", Element: Metal, Group: WestGroup,
		GoodDirections: map[compass.Direction]Tier{compass.NorthWest: ShengQi, compass.SouthWest: TianYi, compass.NorthEast: YanNian, compass.West: FuWei},
		BadDirections:  map[compass.Direction]Tier{compass.North: HuoHai, compass.South: WuGui, compass.SouthEast: LiuSha, compass.East: JueMing}},
	8: {Gua: 8, Name: "Gen", Element: Earth, Group: WestGroup,
		GoodDirections: map[compass.Direction]Tier{compass.SouthWest: ShengQi, compass.NorthWest: TianYi, compass.West: YanNian, compass.NorthEast: FuWei},
		BadDirections:  map[compass.Direction]Tier{compass.South: HuoHai, compass.North: WuGui, compass.East: LiuSha, compass.SouthEast: JueMing}},
	9: {Gua: 9, Name: "Li", Element: Fire, Group: EastGroup,
		GoodDirections: map[compass.Direction]Tier{compass.East: ShengQi, compass.SouthEast: TianYi, compass.North: YanNian, compass.South: FuWei},
		BadDirections:  map[compass.Direction]Tier{compass.NorthEast: HuoHai, compass.West: WuGui, compass.SouthWest: LiuSha, compass.NorthWest: JueMing}},
}

// AttributesFor returns the trigram attributes of a Gua. Gua 5 reads as 2.
// Unknown numbers report false. The direction maps are copies.
func AttributesFor(gua int) (Attributes, bool) {
	a, ok := attributes[compass.EffectiveTrigram(gua, 2)]
	if !ok {
		return Attributes{}, false
	}
	a.GoodDirections = maps.Clone(a.GoodDirections)
	a.BadDirections = maps.Clone(a.BadDirections)
	return a, true
}

// GroupOf returns the East/West group of a Gua, or "" if unknown.
func GroupOf(gua int) Group {
	a, ok := AttributesFor(gua)
	if !ok {
		return ""
	}
	return a.Group
}
