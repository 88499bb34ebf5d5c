package flyingstar

import "github.com/talgya/flyingstars/internal/minggua"

// AnnualStar returns the star that enters the centre in a solar year.
// It follows the male Gua arithmetic without the 5 remap: 1984 → 7, 2024 → 3.
func AnnualStar(solarYear int) int {
	star := 11 - minggua.ReduceDigits(solarYear)
	for star > 9 {
		star -= 9
	}
	for star < 1 {
		star += 9
	}
	return star
}

// AnnualChart flies the year's star forward from the centre.
func AnnualChart(solarYear int) Stars {
	return Fly(AnnualStar(solarYear), true)
}
