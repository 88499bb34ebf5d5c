package minggua

import (
	"fmt"
	"strings"
)

// Element is one of the Five Elements, in production-cycle order.
type Element uint8

const (
	Wood Element = iota
	Fire
	Earth
	Metal
	Water
)

var elementNames = [5]string{"Wood", "Fire", "Earth", "Metal", "Water"}

func (e Element) String() string {
	if int(e) < len(elementNames) {
		return elementNames[e]
	}
	return "Unknown"
}

// MarshalText renders the element by name.
func (e Element) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// ParseElement accepts an element name in any case.
func ParseElement(s string) (Element, error) {
	for i, n := range elementNames {
		if strings.EqualFold(n, strings.TrimSpace(s)) {
			return Element(i), nil
		}
	}
	return 0, fmt.Errorf("unknown element %q", s)
}

// Generates returns the element e produces (Wood → Fire → ... → Water → Wood).
func (e Element) Generates() Element {
	return Element((int(e) + 1) % 5)
}

// Controls returns the element e destroys (two steps along the cycle).
func (e Element) Controls() Element {
	return Element((int(e) + 2) % 5)
}

// Relationship is how a birth-year element bears on a trigram element.
type Relationship string

const (
	Same     Relationship = "Same"     // Identical elements
	Resource Relationship = "Resource" // The year produces the trigram
	Output   Relationship = "Output"   // The trigram produces the year
	Control  Relationship = "Control"  // The year controls the trigram
	Wealth   Relationship = "Wealth"   // The trigram controls the year
)

// RelationshipResult pairs the relationship with report text.
type RelationshipResult struct {
	Relationship Relationship `json:"relationship"`
	GuaElement   Element      `json:"gua_element"`
	YearElement  Element      `json:"year_element"`
	Description  string       `json:"description"`
}

// ElementRelationship classifies guaElement against yearElement by walking
// the production cycle one step (generates) and two steps (controls) in
// both directions.
func ElementRelationship(guaElement, yearElement Element) RelationshipResult {
	var rel Relationship
	var desc string
	switch {
	case guaElement == yearElement:
		rel, desc = Same, fmt.Sprintf("%s meets %s: companions that reinforce each other.", guaElement, yearElement)
	case yearElement.Generates() == guaElement:
		rel, desc = Resource, fmt.Sprintf("%s feeds %s: the year supports the trigram.", yearElement, guaElement)
	case guaElement.Generates() == yearElement:
		rel, desc = Output, fmt.Sprintf("%s feeds %s: the trigram spends itself on the year.", guaElement, yearElement)
	case yearElement.Controls() == guaElement:
		rel, desc = Control, fmt.Sprintf("%s restrains %s: the year pressures the trigram.", yearElement, guaElement)
	default:
		rel, desc = Wealth, fmt.Sprintf("%s restrains %s: the trigram masters the year.", guaElement, yearElement)
	}
	return RelationshipResult{
		Relationship: rel,
		GuaElement:   guaElement,
		YearElement:  yearElement,
		Description:  desc,
	}
}

// YearElement returns the heavenly-stem element of a solar year, read from
// its last digit: 0–1 Metal, 2–3 Water, 4–5 Wood, 6–7 Fire, 8–9 Earth.
func YearElement(solarYear int) Element {
	d := ((solarYear % 10) + 10) % 10
	switch d / 2 {
	case 0:
		return Metal
	case 1:
		return Water
	case 2:
		return Wood
	case 3:
		return Fire
	default:
		return Earth
	}
}

var zodiac = [12]string{
	"Rat", "Ox", "Tiger", "Rabbit", "Dragon", "Snake",
	"Horse", "Goat", "Monkey", "Rooster", "Dog", "Pig",
}

// Zodiac returns the earthly-branch animal of a solar year (1984 is a Rat).
func Zodiac(solarYear int) string {
	return zodiac[(((solarYear-4)%12)+12)%12]
}
