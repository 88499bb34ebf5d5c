package minggua

import (
	"fmt"
	"time"
)

// Profile gathers everything derived from a birth date and gender.
type Profile struct {
	SolarYear    int                `json:"solar_year"`
	Gua          int                `json:"gua"`
	Attributes   Attributes         `json:"attributes"`
	YearElement  Element            `json:"year_element"`
	Zodiac       string             `json:"zodiac"`
	Relationship RelationshipResult `json:"relationship"`
}

// NewProfile derives a person's profile.
func NewProfile(birth time.Time, gender Gender) (Profile, error) {
	year := SolarYear(birth)
	gua, err := LifeGua(year, gender)
	if err != nil {
		return Profile{}, fmt.Errorf("profile: %w", err)
	}

	attrs, _ := AttributesFor(gua)
	yearElement := YearElement(year)
	return Profile{
		SolarYear:    year,
		Gua:          gua,
		Attributes:   attrs,
		YearElement:  yearElement,
		Zodiac:       Zodiac(year),
		Relationship: ElementRelationship(attrs.Element, yearElement),
	}, nil
}
