// Package minggua computes a person's Life Gua (Ming Gua) and the Eight
// Mansions compatibility between a person and a compass palace.
// Everything here is table arithmetic; nothing is stored.
package minggua

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidGender is returned when gender is neither male nor female.
var ErrInvalidGender = errors.New("gender must be 'm' or 'f'")

// Gender selects the male or female Gua formula.
type Gender string

const (
	Male   Gender = "m"
	Female Gender = "f"
)

// Valid reports whether g is one of the two accepted codes.
func (g Gender) Valid() bool {
	return g == Male || g == Female
}

// ParseGender accepts m, f, male and female in any case.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male":
		return Male, nil
	case "f", "female":
		return Female, nil
	}
	return "", fmt.Errorf("parse gender %q: %w", s, ErrInvalidGender)
}

// ReduceDigits sums the decimal digits of n repeatedly until one digit
// remains: 1984 → 22 → 4.
func ReduceDigits(n int) int {
	if n < 0 {
		n = -n
	}
	for n > 9 {
		sum := 0
		for ; n > 0; n /= 10 {
			sum += n % 10
		}
		n = sum
	}
	return n
}

// LifeGua returns the personal trigram number for a solar year. The result
// is never 5: men fall back to 2 and women to 8.
func LifeGua(solarYear int, gender Gender) (int, error) {
	if !gender.Valid() {
		return 0, fmt.Errorf("life gua: %w (got %q)", ErrInvalidGender, string(gender))
	}

	d := ReduceDigits(solarYear)
	var gua int
	if gender == Male {
		gua = 11 - d
	} else {
		gua = d + 4
	}
	for gua > 9 {
		gua -= 9
	}
	for gua < 1 {
		gua += 9
	}

	if gua == 5 {
		if gender == Male {
			return 2, nil
		}
		return 8, nil
	}
	return gua, nil
}

// SolarYear returns the Feng Shui year a date belongs to. The year turns
// on February 4th, a fixed approximation of the Li Chun solar term.
func SolarYear(date time.Time) int {
	y := date.Year()
	if date.Month() < time.February || (date.Month() == time.February && date.Day() < 4) {
		return y - 1
	}
	return y
}

// LifeGuaForDate combines SolarYear and LifeGua.
func LifeGuaForDate(birth time.Time, gender Gender) (int, error) {
	return LifeGua(SolarYear(birth), gender)
}
