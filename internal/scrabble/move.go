package scrabble

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
)

type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

// Placement is a single tile put on an empty cell by the acting player.
type Placement struct {
	Row         int         `json:"row"`
	Col         int         `json:"col"`
	Tile        entity.Tile `json:"tile"`
	BlankLetter string      `json:"blank_letter,omitempty"`
}

func (that Placement) Position() entity.Position {
	return entity.Position{Row: that.Row, Col: that.Col}
}

// Face is the letter the placement shows on the board.
func (that Placement) Face() string {
	if that.Tile.IsBlank() {
		return that.BlankLetter
	}

	return strings.ToUpper(that.Tile.Letter)
}

// Move is a structurally valid play waiting for the dictionary.
type Move struct {
	PlayerID   string      `json:"player_id"`
	Placements []Placement `json:"placements"`
	Word       string      `json:"word"`
	Score      int         `json:"score"`
	Direction  Direction   `json:"direction"`

	version int
}

// letter is one square of the primary word, used for scoring.
type letter struct {
	Score  int
	Square entity.Square
	New    bool
}

// validatePlacements runs the structural rules of a move against the board and
// returns the primary word with its score.
func validatePlacements(board *entity.Board, placements []Placement) (string, int, Direction, error) {
	if len(placements) == 0 {
		return "", 0, "", apperror.ErrEmptyMove
	}

	placed := make(map[entity.Position]Placement, len(placements))
	for _, p := range placements {
		pos := p.Position()
		if !pos.InBounds() {
			return "", 0, "", fmt.Errorf("%w: %d,%d", apperror.ErrOutOfBounds, p.Row, p.Col)
		}

		if board.IsOccupied(pos) {
			return "", 0, "", fmt.Errorf("%w: %d,%d", apperror.ErrCellOccupied, p.Row, p.Col)
		}

		if _, dup := placed[pos]; dup {
			return "", 0, "", fmt.Errorf("%w: %d,%d", apperror.ErrOverlap, p.Row, p.Col)
		}

		if p.Tile.IsBlank() {
			if _, ok := entity.NormalizeLetter(p.BlankLetter); !ok {
				return "", 0, "", apperror.ErrInvalidBlankLetter
			}
		}

		placed[pos] = p
	}

	dir, err := lineDirection(board, placements)
	if err != nil {
		return "", 0, "", err
	}

	sorted := sortAlong(placements, dir)
	first, last := sorted[0].Position(), sorted[len(sorted)-1].Position()

	for pos := first; pos != last; pos = step(pos, dir, 1) {
		if _, ok := placed[pos]; !ok && !board.IsOccupied(pos) {
			return "", 0, "", apperror.ErrDisconnected
		}
	}

	firstMove := board.IsEmpty()
	if firstMove {
		if !coversCenter(placements) {
			return "", 0, "", apperror.ErrMustCoverCenter
		}
	} else if !touchesBoard(board, placements) {
		return "", 0, "", apperror.ErrNotConnected
	}

	word, letters := extractWord(board, placed, first, last, dir)
	if len(letters) < 2 {
		return "", 0, "", apperror.ErrNoWord
	}

	return word, scoreWord(letters, firstMove), dir, nil
}

// lineDirection picks the axis of the move. A single tile takes the axis along
// which it touches existing tiles, horizontal first.
func lineDirection(board *entity.Board, placements []Placement) (Direction, error) {
	if len(placements) == 1 {
		pos := placements[0].Position()
		if board.IsOccupied(step(pos, Horizontal, -1)) || board.IsOccupied(step(pos, Horizontal, 1)) {
			return Horizontal, nil
		}
		if board.IsOccupied(step(pos, Vertical, -1)) || board.IsOccupied(step(pos, Vertical, 1)) {
			return Vertical, nil
		}
		return Horizontal, nil
	}

	sameRow, sameCol := true, true
	for _, p := range placements[1:] {
		if p.Row != placements[0].Row {
			sameRow = false
		}
		if p.Col != placements[0].Col {
			sameCol = false
		}
	}

	switch {
	case sameRow:
		return Horizontal, nil
	case sameCol:
		return Vertical, nil
	default:
		return "", apperror.ErrNotALine
	}
}

func sortAlong(placements []Placement, dir Direction) []Placement {
	sorted := make([]Placement, len(placements))
	copy(sorted, placements)

	sort.Slice(sorted, func(i, j int) bool {
		if dir == Horizontal {
			return sorted[i].Col < sorted[j].Col
		}
		return sorted[i].Row < sorted[j].Row
	})

	return sorted
}

func step(pos entity.Position, dir Direction, delta int) entity.Position {
	if dir == Horizontal {
		return entity.Position{Row: pos.Row, Col: pos.Col + delta}
	}

	return entity.Position{Row: pos.Row + delta, Col: pos.Col}
}

func touchesBoard(board *entity.Board, placements []Placement) bool {
	for _, p := range placements {
		pos := p.Position()
		neighbours := []entity.Position{
			{Row: pos.Row - 1, Col: pos.Col},
			{Row: pos.Row + 1, Col: pos.Col},
			{Row: pos.Row, Col: pos.Col - 1},
			{Row: pos.Row, Col: pos.Col + 1},
		}

		for _, n := range neighbours {
			if board.IsOccupied(n) {
				return true
			}
		}
	}

	return false
}

// extractWord reads the maximal run of occupied or newly placed cells through first..last.
func extractWord(board *entity.Board, placed map[entity.Position]Placement, first, last entity.Position, dir Direction) (string, []letter) {
	filled := func(pos entity.Position) bool {
		_, isNew := placed[pos]
		return isNew || board.IsOccupied(pos)
	}

	start := first
	for prev := step(start, dir, -1); prev.InBounds() && filled(prev); prev = step(prev, dir, -1) {
		start = prev
	}

	end := last
	for next := step(end, dir, 1); next.InBounds() && filled(next); next = step(next, dir, 1) {
		end = next
	}

	var word strings.Builder
	var letters []letter

	for pos := start; ; pos = step(pos, dir, 1) {
		if p, isNew := placed[pos]; isNew {
			word.WriteString(p.Face())
			letters = append(letters, letter{
				Score:  p.Tile.Score,
				Square: entity.SpecialSquare(pos.Row, pos.Col),
				New:    true,
			})
		} else {
			cell := board.At(pos)
			word.WriteString(cell.Letter)
			letters = append(letters, letter{Score: cell.Tile.Score})
		}

		if pos == end {
			break
		}
	}

	return word.String(), letters
}

// scoreWord applies premiums of newly covered squares only. Tiles already on the
// board count at face value. On the first move the center square doubles the word.
func scoreWord(letters []letter, firstMove bool) int {
	sum, wordMultiplier := 0, 1

	for _, l := range letters {
		if !l.New {
			sum += l.Score
			continue
		}

		letterMultiplier := l.Square.LetterMultiplier
		if letterMultiplier == 0 {
			letterMultiplier = 1
		}
		sum += l.Score * letterMultiplier

		if l.Square.WordMultiplier > 1 {
			wordMultiplier *= l.Square.WordMultiplier
		}
	}

	if firstMove {
		wordMultiplier *= 2
	}

	return sum * wordMultiplier
}

func coversCenter(placements []Placement) bool {
	for _, p := range placements {
		if p.Position().IsCenter() {
			return true
		}
	}

	return false
}
