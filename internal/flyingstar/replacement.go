package flyingstar

import "github.com/talgya/flyingstars/internal/compass"

// replacementTable holds the substitute star for each palace, indexed by
// the mountain's position (1–3) inside that palace. Palace 5 has no row.
var replacementTable = map[int][3]int{
	1: {2, 1, 1}, // Ren, Zi, Gui
	2: {2, 2, 1}, // Wei, Kun, Shen
	3: {1, 2, 2}, // Jia, Mao, Yi
	4: {6, 6, 6}, // Chen, Xun, Si
	6: {6, 6, 6}, // Xu, Qian, Hai
	7: {9, 7, 7}, // Geng, You, Xin
	8: {7, 7, 9}, // Chou, Gen, Yin
	9: {7, 9, 9}, // Bing, Wu, Ding
}

// ReplacementStar returns the substitute for star when a replacement chart
// is drawn. subIndex is the position (1–3) of the mountain the star is
// seated under and palace is the palace it currently occupies; star 5 is
// looked up under that palace. Unknown keys return star unchanged.
func ReplacementStar(star, subIndex, palace int) int {
	row, ok := replacementTable[compass.EffectiveTrigram(star, palace)]
	if !ok || subIndex < 1 || subIndex > 3 {
		return star
	}
	return row[subIndex-1]
}

// FlightDirection reports whether a centre star flies forward (Yang).
// The star's direction follows the polarity of the mountain at the origin's
// position (1–3) inside the star's own palace. Star 5 resolves to the
// origin palace, and so takes the origin mountain's own polarity.
func FlightDirection(star int, origin compass.Sector) bool {
	trigram := compass.EffectiveTrigram(star, origin.Trigram)
	s, ok := compass.FindSector(trigram, origin.SubIndex)
	if !ok {
		return true
	}
	return s.Polarity == compass.Yang
}
