package entity

import "math/rand"

// Bag is the shared pool of undrawn tiles. It is treated as unordered.
type Bag struct {
	tiles []Tile
	rng   *rand.Rand
}

func NewBag(dist []TileKind, rng *rand.Rand) *Bag {
	tiles := make([]Tile, 0, DistributionSize(dist))
	for _, kind := range dist {
		for range kind.Count {
			tiles = append(tiles, Tile{Letter: kind.Letter, Score: kind.Score})
		}
	}

	return &Bag{tiles: tiles, rng: rng}
}

// Draw removes up to n uniformly random tiles. Fewer than n are returned when the bag runs out.
func (that *Bag) Draw(n int) []Tile {
	if n > len(that.tiles) {
		n = len(that.tiles)
	}
	if n <= 0 {
		return nil
	}

	drawn := make([]Tile, 0, n)
	for range n {
		idx := that.rng.Intn(len(that.tiles))
		last := len(that.tiles) - 1

		drawn = append(drawn, that.tiles[idx])
		that.tiles[idx] = that.tiles[last]
		that.tiles = that.tiles[:last]
	}

	return drawn
}

func (that *Bag) Return(tiles []Tile) {
	that.tiles = append(that.tiles, tiles...)
}

func (that *Bag) Remaining() int {
	return len(that.tiles)
}

func (that *Bag) IsEmpty() bool {
	return len(that.tiles) == 0
}
