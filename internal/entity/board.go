package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
)

const (
	BoardSize = 15
	Center    = BoardSize / 2
)

type SquareKind string

const (
	SquareNone         SquareKind = ""
	SquareTripleWord   SquareKind = "triple-word"
	SquareDoubleWord   SquareKind = "double-word"
	SquareTripleLetter SquareKind = "triple-letter"
	SquareDoubleLetter SquareKind = "double-letter"
)

var ErrInvalidPosition = errors.New("invalid board position")

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Position) InBounds() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Col >= 0 && that.Col < BoardSize
}

func (that Position) IsCenter() bool {
	return that.Row == Center && that.Col == Center
}

// Square describes the premium of a board cell.
type Square struct {
	Kind             SquareKind `json:"kind,omitempty"`
	LetterMultiplier int        `json:"letter_multiplier"`
	WordMultiplier   int        `json:"word_multiplier"`
}

var (
	tripleWordSquares = []Position{
		{0, 0}, {0, 7}, {0, 14}, {7, 0}, {7, 14}, {14, 0}, {14, 7}, {14, 14},
	}
	doubleWordSquares = []Position{
		{1, 1}, {2, 2}, {3, 3}, {4, 4}, {1, 13}, {2, 12}, {3, 11}, {4, 10},
		{10, 4}, {11, 3}, {12, 2}, {13, 1}, {10, 10}, {11, 11}, {12, 12}, {13, 13},
	}
	tripleLetterSquares = []Position{
		{1, 5}, {1, 9}, {5, 1}, {5, 5}, {5, 9}, {5, 13}, {9, 1}, {9, 5}, {9, 9}, {9, 13}, {13, 5}, {13, 9},
	}
	doubleLetterSquares = []Position{
		{0, 3}, {0, 11}, {2, 6}, {2, 8}, {3, 0}, {3, 7}, {3, 14}, {6, 2}, {6, 6}, {6, 8}, {6, 12},
		{7, 3}, {7, 11}, {8, 2}, {8, 6}, {8, 8}, {8, 12}, {11, 0}, {11, 7}, {11, 14}, {12, 6}, {12, 8}, {14, 3}, {14, 11},
	}

	squareLayout = buildSquareLayout()
)

func buildSquareLayout() map[Position]Square {
	layout := make(map[Position]Square)

	for _, pos := range doubleLetterSquares {
		layout[pos] = Square{Kind: SquareDoubleLetter, LetterMultiplier: 2, WordMultiplier: 1}
	}
	for _, pos := range tripleLetterSquares {
		layout[pos] = Square{Kind: SquareTripleLetter, LetterMultiplier: 3, WordMultiplier: 1}
	}
	for _, pos := range doubleWordSquares {
		layout[pos] = Square{Kind: SquareDoubleWord, LetterMultiplier: 1, WordMultiplier: 2}
	}
	for _, pos := range tripleWordSquares {
		layout[pos] = Square{Kind: SquareTripleWord, LetterMultiplier: 1, WordMultiplier: 3}
	}

	return layout
}

// SpecialSquare is a pure lookup of the premium at (row, col).
func SpecialSquare(row, col int) Square {
	if square, ok := squareLayout[Position{Row: row, Col: col}]; ok {
		return square
	}

	return Square{Kind: SquareNone, LetterMultiplier: 1, WordMultiplier: 1}
}

// Cell is an occupied board square. Letter is the face shown, which differs from
// Tile.Letter only for blanks.
type Cell struct {
	Tile   Tile   `json:"tile"`
	Letter string `json:"letter"`
}

type Board struct {
	cells [BoardSize][BoardSize]*Cell
}

func NewBoard() *Board {
	return &Board{}
}

func (that *Board) At(pos Position) *Cell {
	if !pos.InBounds() {
		return nil
	}

	return that.cells[pos.Row][pos.Col]
}

func (that *Board) IsOccupied(pos Position) bool {
	return that.At(pos) != nil
}

func (that *Board) Place(pos Position, cell Cell) error {
	if !pos.InBounds() {
		return fmt.Errorf("%w: %d,%d", ErrInvalidPosition, pos.Row, pos.Col)
	}

	if that.cells[pos.Row][pos.Col] != nil {
		return apperror.ErrCellOccupied
	}

	that.cells[pos.Row][pos.Col] = &cell

	return nil
}

func (that *Board) IsEmpty() bool {
	return that.Count() == 0
}

func (that *Board) Count() int {
	count := 0
	for row := range BoardSize {
		for col := range BoardSize {
			if that.cells[row][col] != nil {
				count++
			}
		}
	}

	return count
}

// Reset clears every cell and returns the tiles that were on the board.
func (that *Board) Reset() []Tile {
	var cleared []Tile
	for row := range BoardSize {
		for col := range BoardSize {
			if cell := that.cells[row][col]; cell != nil {
				cleared = append(cleared, cell.Tile)
				that.cells[row][col] = nil
			}
		}
	}

	return cleared
}

// Cells returns a copy of the grid, nil for empty cells.
func (that *Board) Cells() [][]*Cell {
	grid := make([][]*Cell, BoardSize)
	for row := range BoardSize {
		grid[row] = make([]*Cell, BoardSize)
		for col := range BoardSize {
			if cell := that.cells[row][col]; cell != nil {
				cp := *cell
				grid[row][col] = &cp
			}
		}
	}

	return grid
}
