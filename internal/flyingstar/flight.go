// Package flyingstar derives Xuan Kong Flying Star charts: the Base (period),
// Mountain and Water star grids of a building from its period and facing.
// All functions are pure; every table is read-only.
package flyingstar

// LoShuPath is the order in which a star flies through the nine palaces.
// The centre is visited first.
var LoShuPath = [9]int{5, 6, 7, 8, 9, 1, 2, 3, 4}

// Stars maps a palace (trigram number 1–9, centre = 5) to the star it holds.
// Index 0 is unused.
type Stars [10]int

// At returns the star in the given palace.
func (s Stars) At(palace int) int {
	if palace < 1 || palace > 9 {
		return 0
	}
	return s[palace]
}

// Find returns the palace holding the given star, or 0.
func (s Stars) Find(star int) int {
	for p := 1; p <= 9; p++ {
		if s[p] == star {
			return p
		}
	}
	return 0
}

// Map converts to a palace→star map, the shape JSON consumers expect.
func (s Stars) Map() map[int]int {
	m := make(map[int]int, 9)
	for p := 1; p <= 9; p++ {
		m[p] = s[p]
	}
	return m
}

// Fly places start in the centre and walks LoShuPath, incrementing the star
// at each step when forward and decrementing otherwise, wrapping 9↔1.
func Fly(start int, forward bool) Stars {
	var out Stars
	for i, palace := range LoShuPath {
		if forward {
			out[palace] = mod9(start+i-1) + 1
		} else {
			out[palace] = mod9(start-i+8) + 1
		}
	}
	return out
}

// mod9 is a modulo that stays non-negative for negative operands.
func mod9(n int) int {
	return ((n % 9) + 9) % 9
}

// Sign renders a flight direction the way charts annotate it.
func Sign(forward bool) string {
	if forward {
		return "+"
	}
	return "-"
}
