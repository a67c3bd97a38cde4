package entity

import "math/rand"

type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	IsBot     bool   `json:"is_bot"`
	Connected bool   `json:"connected"`
}

func NewBotPlayer(id, name string) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		IsBot:     true,
		Connected: true,
	}
}

// Rack is a player's private ordered hand.
type Rack struct {
	Tiles []Tile `json:"tiles"`
}

func (that *Rack) Len() int {
	return len(that.Tiles)
}

func (that *Rack) Add(tiles ...Tile) {
	that.Tiles = append(that.Tiles, tiles...)
}

// RemoveIndices removes the tiles at the given rack positions and returns them.
// Indices must be valid and distinct.
func (that *Rack) RemoveIndices(indices []int) []Tile {
	drop := make(map[int]bool, len(indices))
	for _, idx := range indices {
		drop[idx] = true
	}

	removed := make([]Tile, 0, len(indices))
	kept := make([]Tile, 0, len(that.Tiles))
	for i, tile := range that.Tiles {
		if drop[i] {
			removed = append(removed, tile)
			continue
		}
		kept = append(kept, tile)
	}

	that.Tiles = kept

	return removed
}

// ValidIndices reports whether every index points at a distinct rack position.
func (that *Rack) ValidIndices(indices []int) bool {
	seen := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(that.Tiles) || seen[idx] {
			return false
		}
		seen[idx] = true
	}

	return true
}

// Contains reports whether the rack holds every tile in tiles, counting duplicates.
func (that *Rack) Contains(tiles []Tile) bool {
	counts := make(map[Tile]int, len(that.Tiles))
	for _, tile := range that.Tiles {
		counts[tile]++
	}

	for _, tile := range tiles {
		if counts[tile] == 0 {
			return false
		}
		counts[tile]--
	}

	return true
}

// Remove drops one rack tile per entry of tiles. The caller checks Contains first.
func (that *Rack) Remove(tiles []Tile) {
	remove := make(map[Tile]int, len(tiles))
	for _, tile := range tiles {
		remove[tile]++
	}

	kept := make([]Tile, 0, len(that.Tiles))
	for _, tile := range that.Tiles {
		if remove[tile] > 0 {
			remove[tile]--
			continue
		}
		kept = append(kept, tile)
	}

	that.Tiles = kept
}

func (that *Rack) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(that.Tiles), func(i, j int) {
		that.Tiles[i], that.Tiles[j] = that.Tiles[j], that.Tiles[i]
	})
}

func (that *Rack) Clone() []Tile {
	out := make([]Tile, len(that.Tiles))
	copy(out, that.Tiles)

	return out
}
