package entity

import "strings"

// BlankLetter marks a blank tile in the bag and on a rack.
const BlankLetter = "*"

type Tile struct {
	Letter string `json:"letter"`
	Score  int    `json:"score"`
}

func (that Tile) IsBlank() bool {
	return that.Letter == BlankLetter
}

// TileKind is one line of a bag distribution.
type TileKind struct {
	Letter string
	Score  int
	Count  int
}

// StandardDistribution is the 100 tile english set: 98 letters and 2 blanks.
var StandardDistribution = []TileKind{
	{"A", 1, 9}, {"B", 3, 2}, {"C", 3, 2}, {"D", 2, 4}, {"E", 1, 12},
	{"F", 4, 2}, {"G", 2, 3}, {"H", 4, 2}, {"I", 1, 9}, {"J", 8, 1},
	{"K", 5, 1}, {"L", 1, 4}, {"M", 3, 2}, {"N", 1, 6}, {"O", 1, 8},
	{"P", 3, 2}, {"Q", 10, 1}, {"R", 1, 6}, {"S", 1, 4}, {"T", 1, 6},
	{"U", 1, 4}, {"V", 4, 2}, {"W", 4, 2}, {"X", 8, 1}, {"Y", 4, 2},
	{"Z", 10, 1}, {BlankLetter, 0, 2},
}

// DistributionSize returns the number of tiles a distribution produces.
func DistributionSize(dist []TileKind) int {
	total := 0
	for _, kind := range dist {
		total += kind.Count
	}
	return total
}

// NormalizeLetter upper-cases a single letter and reports whether it is A-Z.
func NormalizeLetter(letter string) (string, bool) {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return "", false
	}

	return letter, true
}
