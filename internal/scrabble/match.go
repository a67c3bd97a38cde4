package scrabble

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
)

type Phase string

const (
	PhaseWaiting Phase = "waiting"
	PhasePlaying Phase = "playing"
	PhaseEnded   Phase = "ended"
)

type EndReason string

const (
	EndReasonTilesOut  EndReason = "tiles_out"
	EndReasonTimeUp    EndReason = "time_up"
	EndReasonScoreless EndReason = "scoreless_turns"
	EndReasonAbandoned EndReason = "abandoned"
)

const DefaultRackSize = 7

// ErrBoardChanged is returned when the board moved on while a word was being looked up.
var ErrBoardChanged = errors.New("board changed while the word was being checked")

type Config struct {
	RackSize     int
	Distribution []entity.TileKind
	Rand         *rand.Rand
}

type seat struct {
	player *entity.Player
	rack   entity.Rack
	// scoreless counts this seat's consecutive passes and exchanges.
	scoreless int
}

type pendingPlacement struct {
	Position    entity.Position
	TileIndex   int
	BlankLetter string
}

// Match is the authoritative state of one game in a room. It is not safe for
// concurrent use; the owning room serializes every call.
type Match struct {
	ID string

	phase      Phase
	board      *entity.Board
	bag        *entity.Bag
	seats      map[string]*seat
	order      []string
	turn       int
	pending    []pendingPlacement
	lastMove   *Move
	rackSize   int
	totalTiles int
	rng        *rand.Rand

	version int

	winner    string
	tie       bool
	endReason EndReason
	startedAt time.Time
}

// NewMatch seats players in the given order. Scores on the players are reset.
func NewMatch(id string, players []*entity.Player, cfg Config) *Match {
	if cfg.RackSize <= 0 {
		cfg.RackSize = DefaultRackSize
	}
	if cfg.Distribution == nil {
		cfg.Distribution = entity.StandardDistribution
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint: gosec // game randomness
	}

	match := &Match{
		ID:         id,
		phase:      PhaseWaiting,
		board:      entity.NewBoard(),
		bag:        entity.NewBag(cfg.Distribution, cfg.Rand),
		seats:      make(map[string]*seat, len(players)),
		rackSize:   cfg.RackSize,
		totalTiles: entity.DistributionSize(cfg.Distribution),
		rng:        cfg.Rand,
	}

	for _, player := range players {
		player.Score = 0
		match.seats[player.ID] = &seat{player: player}
		match.order = append(match.order, player.ID)
	}

	return match
}

// Start deals the initial racks in turn order and opens play.
func (that *Match) Start() error {
	if that.phase != PhaseWaiting {
		return apperror.ErrAlreadyStarted
	}

	if len(that.order) == 0 {
		return apperror.ErrNotEnoughPlayers
	}

	for _, id := range that.order {
		that.seats[id].rack.Add(that.bag.Draw(that.rackSize)...)
	}

	that.phase = PhasePlaying
	that.startedAt = time.Now()

	if current := that.seats[that.order[that.turn]]; !current.player.Connected {
		that.advanceTurn()
	}

	return nil
}

func (that *Match) Phase() Phase {
	return that.phase
}

func (that *Match) IsPlaying() bool {
	return that.phase == PhasePlaying
}

func (that *Match) IsEnded() bool {
	return that.phase == PhaseEnded
}

func (that *Match) CurrentPlayerID() string {
	if that.phase != PhasePlaying || len(that.order) == 0 {
		return ""
	}

	return that.order[that.turn]
}

func (that *Match) CurrentPlayer() *entity.Player {
	if id := that.CurrentPlayerID(); id != "" {
		return that.seats[id].player
	}

	return nil
}

func (that *Match) IsSeated(playerID string) bool {
	_, ok := that.seats[playerID]
	return ok
}

func (that *Match) TurnOrder() []string {
	out := make([]string, len(that.order))
	copy(out, that.order)

	return out
}

func (that *Match) Rack(playerID string) []entity.Tile {
	if s, ok := that.seats[playerID]; ok {
		return s.rack.Clone()
	}

	return nil
}

// Board returns a copy of the grid.
func (that *Match) Board() [][]*entity.Cell {
	return that.board.Cells()
}

func (that *Match) TilesLeft() int {
	return that.bag.Remaining()
}

func (that *Match) LastMove() *Move {
	return that.lastMove
}

func (that *Match) StartedAt() time.Time {
	return that.startedAt
}

// Result reports the winner, whether the top score was shared, and why the match ended.
func (that *Match) Result() (string, bool, EndReason) {
	return that.winner, that.tie, that.endReason
}

// confirmTurn checks that playerID may act right now.
func (that *Match) confirmTurn(playerID string) (*seat, error) {
	switch that.phase {
	case PhaseWaiting:
		return nil, apperror.ErrGameIsNotStarted
	case PhaseEnded:
		return nil, apperror.ErrGameFinished
	}

	s, ok := that.seats[playerID]
	if !ok {
		return nil, apperror.ErrSpectator
	}

	if that.order[that.turn] != playerID {
		return nil, apperror.ErrNotYourTurn
	}

	return s, nil
}

// PlaceTile stages a rack tile on an empty cell without committing it.
func (that *Match) PlaceTile(playerID string, pos entity.Position, tileIndex int, blankLetter string) (Placement, error) {
	s, err := that.confirmTurn(playerID)
	if err != nil {
		return Placement{}, err
	}

	if !pos.InBounds() {
		return Placement{}, fmt.Errorf("%w: %d,%d", apperror.ErrOutOfBounds, pos.Row, pos.Col)
	}

	if that.board.IsOccupied(pos) {
		return Placement{}, apperror.ErrCellOccupied
	}

	if tileIndex < 0 || tileIndex >= s.rack.Len() {
		return Placement{}, apperror.ErrInvalidTileIndex
	}

	for _, p := range that.pending {
		if p.Position == pos {
			return Placement{}, apperror.ErrOverlap
		}
		if p.TileIndex == tileIndex {
			return Placement{}, apperror.ErrInvalidTileIndex
		}
	}

	tile := s.rack.Tiles[tileIndex]
	if tile.IsBlank() {
		letter, ok := entity.NormalizeLetter(blankLetter)
		if !ok {
			return Placement{}, apperror.ErrInvalidBlankLetter
		}
		blankLetter = letter
	} else {
		blankLetter = ""
	}

	that.pending = append(that.pending, pendingPlacement{Position: pos, TileIndex: tileIndex, BlankLetter: blankLetter})

	return Placement{Row: pos.Row, Col: pos.Col, Tile: tile, BlankLetter: blankLetter}, nil
}

// RecallTiles drops the staged placements of the turn holder.
func (that *Match) RecallTiles(playerID string) error {
	if _, err := that.confirmTurn(playerID); err != nil {
		return err
	}

	that.pending = nil

	return nil
}

// Pending returns the staged placements resolved against the turn holder's rack.
func (that *Match) Pending() []Placement {
	if len(that.pending) == 0 || that.phase != PhasePlaying {
		return nil
	}

	s := that.seats[that.order[that.turn]]
	out := make([]Placement, 0, len(that.pending))
	for _, p := range that.pending {
		out = append(out, Placement{
			Row:         p.Position.Row,
			Col:         p.Position.Col,
			Tile:        s.rack.Tiles[p.TileIndex],
			BlankLetter: p.BlankLetter,
		})
	}

	return out
}

// PrepareMove runs every rule except the dictionary lookup. An empty placement
// list submits the staged placements. Nothing is mutated.
func (that *Match) PrepareMove(playerID string, placements []Placement) (*Move, error) {
	s, err := that.confirmTurn(playerID)
	if err != nil {
		return nil, err
	}

	if len(placements) == 0 {
		placements = that.Pending()
	}

	if len(placements) == 0 {
		return nil, apperror.ErrEmptyMove
	}

	normalized := make([]Placement, 0, len(placements))
	tiles := make([]entity.Tile, 0, len(placements))
	for _, p := range placements {
		if p.Tile.IsBlank() {
			letter, ok := entity.NormalizeLetter(p.BlankLetter)
			if !ok {
				return nil, apperror.ErrInvalidBlankLetter
			}
			p.BlankLetter = letter
		} else {
			p.BlankLetter = ""
		}

		normalized = append(normalized, p)
		tiles = append(tiles, p.Tile)
	}

	word, score, dir, err := validatePlacements(that.board, normalized)
	if err != nil {
		return nil, err
	}

	if !s.rack.Contains(tiles) {
		return nil, apperror.ErrTileNotInRack
	}

	return &Move{
		PlayerID:   playerID,
		Placements: normalized,
		Word:       word,
		Score:      score,
		Direction:  dir,
		version:    that.version,
	}, nil
}

// MoveResult is what a committed move changed.
type MoveResult struct {
	Move  *Move
	Drawn []entity.Tile
	Ended bool
}

// CommitMove applies a move whose word has been accepted by the dictionary.
// If the match changed since PrepareMove the move is checked again.
func (that *Match) CommitMove(move *Move) (*MoveResult, error) {
	if move.version != that.version {
		again, err := that.PrepareMove(move.PlayerID, move.Placements)
		if err != nil {
			return nil, err
		}

		if again.Word != move.Word {
			return nil, ErrBoardChanged
		}

		move = again
	}

	s, err := that.confirmTurn(move.PlayerID)
	if err != nil {
		return nil, err
	}

	tiles := make([]entity.Tile, 0, len(move.Placements))
	for _, p := range move.Placements {
		cell := entity.Cell{Tile: p.Tile, Letter: p.Face()}
		if err = that.board.Place(p.Position(), cell); err != nil {
			return nil, fmt.Errorf("failed to place tile: %w", err)
		}
		tiles = append(tiles, p.Tile)
	}

	s.player.Score += move.Score
	s.rack.Remove(tiles)
	drawn := that.bag.Draw(len(tiles))
	s.rack.Add(drawn...)

	that.lastMove = move
	that.pending = nil
	s.scoreless = 0
	that.version++

	if that.bag.IsEmpty() && s.rack.Len() == 0 {
		that.end(EndReasonTilesOut)
		return &MoveResult{Move: move, Drawn: drawn, Ended: true}, nil
	}

	that.advanceTurn()

	return &MoveResult{Move: move, Drawn: drawn}, nil
}

// ResetBoard clears the board for the turn holder. Cleared tiles go back to the bag.
func (that *Match) ResetBoard(playerID string) error {
	if _, err := that.confirmTurn(playerID); err != nil {
		return err
	}

	that.bag.Return(that.board.Reset())
	that.pending = nil
	that.lastMove = nil
	that.version++

	return nil
}

// ShuffleRack reorders the turn holder's rack.
func (that *Match) ShuffleRack(playerID string) error {
	s, err := that.confirmTurn(playerID)
	if err != nil {
		return err
	}

	if len(that.pending) > 0 {
		return apperror.ErrPendingPlacements
	}

	s.rack.Shuffle(that.rng)

	return nil
}

// ExchangeTiles returns the chosen rack tiles to the bag, draws replacements and ends the turn.
func (that *Match) ExchangeTiles(playerID string, indices []int) ([]entity.Tile, bool, error) {
	s, err := that.confirmTurn(playerID)
	if err != nil {
		return nil, false, err
	}

	if len(that.pending) > 0 {
		return nil, false, apperror.ErrPendingPlacements
	}

	if len(indices) == 0 {
		return nil, false, apperror.ErrEmptyExchange
	}

	if !s.rack.ValidIndices(indices) {
		return nil, false, apperror.ErrInvalidTileIndex
	}

	if that.bag.Remaining() < len(indices) {
		return nil, false, apperror.ErrBagTooSmall
	}

	that.bag.Return(s.rack.RemoveIndices(indices))
	drawn := that.bag.Draw(len(indices))
	s.rack.Add(drawn...)

	that.version++
	ended := that.scorelessTurn(s)

	return drawn, ended, nil
}

// Pass ends the turn without playing.
func (that *Match) Pass(playerID string) (bool, error) {
	s, err := that.confirmTurn(playerID)
	if err != nil {
		return false, err
	}

	that.pending = nil
	that.version++

	return that.scorelessTurn(s), nil
}

// scorelessTurn ends the match once every seat has passed or exchanged twice in a
// row, otherwise it moves the turn on.
func (that *Match) scorelessTurn(s *seat) bool {
	s.scoreless++

	if that.allScoreless() {
		that.end(EndReasonScoreless)
		return true
	}

	that.advanceTurn()

	return false
}

func (that *Match) allScoreless() bool {
	for _, id := range that.order {
		if that.seats[id].scoreless < 2 {
			return false
		}
	}

	return len(that.order) > 0
}

// SetConnected flags a seat as (dis)connected. A disconnected turn holder loses the
// turn at once; a reconnect takes over a turn left on an offline seat. It reports
// whether the turn holder changed.
func (that *Match) SetConnected(playerID string, connected bool) bool {
	s, ok := that.seats[playerID]
	if !ok {
		return false
	}

	s.player.Connected = connected

	if that.phase != PhasePlaying {
		return false
	}

	holder := that.order[that.turn]
	switch {
	case connected && !that.seats[holder].player.Connected:
	case !connected && holder == playerID:
	default:
		return false
	}

	that.pending = nil
	that.version++
	that.advanceTurn()

	return that.order[that.turn] != holder
}

// RemovePlayer drops a seat. Its rack goes back to the bag. It reports whether the
// turn holder changed.
func (that *Match) RemovePlayer(playerID string) bool {
	s, ok := that.seats[playerID]
	if !ok {
		return false
	}

	that.bag.Return(s.rack.Clone())
	s.rack.Tiles = nil
	delete(that.seats, playerID)

	idx := -1
	for i, id := range that.order {
		if id == playerID {
			idx = i
			break
		}
	}

	wasTurn := idx == that.turn
	that.order = append(that.order[:idx], that.order[idx+1:]...)
	that.version++

	if len(that.order) == 0 {
		that.turn = 0
		if that.phase == PhasePlaying {
			that.end(EndReasonAbandoned)
		}
		return wasTurn
	}

	if idx < that.turn {
		that.turn--
	}

	if !wasTurn {
		return false
	}

	that.pending = nil
	that.turn %= len(that.order)

	if !that.seats[that.order[that.turn]].player.Connected {
		that.advanceTurn()
	}

	return true
}

// Expire ends a timed match.
func (that *Match) Expire() {
	if that.phase == PhasePlaying {
		that.end(EndReasonTimeUp)
	}
}

// advanceTurn moves to the next connected seat in turn order, wrapping. When nobody
// else is connected the turn goes to the next seat anyway.
func (that *Match) advanceTurn() {
	n := len(that.order)
	if n == 0 {
		return
	}

	for i := 1; i <= n; i++ {
		next := (that.turn + i) % n
		if that.seats[that.order[next]].player.Connected {
			that.turn = next
			return
		}
	}

	that.turn = (that.turn + 1) % n
}

func (that *Match) end(reason EndReason) {
	that.phase = PhaseEnded
	that.endReason = reason
	that.pending = nil

	best := -1
	that.winner, that.tie = "", false
	for _, id := range that.order {
		score := that.seats[id].player.Score
		switch {
		case score > best:
			best = score
			that.winner = id
			that.tie = false
		case score == best:
			that.tie = true
		}
	}
}

// TileCount returns the number of tiles in the bag, on racks and on the board.
func (that *Match) TileCount() int {
	count := that.bag.Remaining() + that.board.Count()
	for _, s := range that.seats {
		count += s.rack.Len()
	}

	return count
}

func (that *Match) TotalTiles() int {
	return that.totalTiles
}
