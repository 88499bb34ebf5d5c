package compass

// Direction is an eight-point compass code.
type Direction string

const (
	North     Direction = "N"
	NorthEast Direction = "NE"
	East      Direction = "E"
	SouthEast Direction = "SE"
	South     Direction = "S"
	SouthWest Direction = "SW"
	West      Direction = "W"
	NorthWest Direction = "NW"
	Center    Direction = "C"
)

// Directions lists the eight outer compass codes clockwise from north.
var Directions = [8]Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

// DirectionOf returns the compass code of a Lo Shu palace (5 is the centre).
func DirectionOf(trigram int) Direction {
	switch trigram {
	case 1:
		return North
	case 2:
		return SouthWest
	case 3:
		return East
	case 4:
		return SouthEast
	case 5:
		return Center
	case 6:
		return NorthWest
	case 7:
		return West
	case 8:
		return NorthEast
	case 9:
		return South
	default:
		return ""
	}
}

// TrigramOf is the inverse of DirectionOf. Unknown codes return 0.
func TrigramOf(d Direction) int {
	for t := 1; t <= 9; t++ {
		if DirectionOf(t) == d {
			return t
		}
	}
	return 0
}

// Name returns the long English name of the direction.
func (d Direction) Name() string {
	switch d {
	case North:
		return "North"
	case NorthEast:
		return "Northeast"
	case East:
		return "East"
	case SouthEast:
		return "Southeast"
	case South:
		return "South"
	case SouthWest:
		return "Southwest"
	case West:
		return "West"
	case NorthWest:
		return "Northwest"
	case Center:
		return "Center"
	default:
		return "Unknown"
	}
}
