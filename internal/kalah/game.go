package kalah

import (
	"errors"
	"fmt"
)

const (
	StateInProgress = "in_progress"
	StateFinished   = "finished"
)

// Winner of a finished game.
type Winner string

const (
	WinnerNone Winner = ""
	WinnerA    Winner = "A"
	WinnerB    Winner = "B"
	WinnerDraw Winner = "draw"
)

var ErrIllegalMove = errors.New("illegal move")

type Status struct {
	State  string `json:"state"`
	Winner Winner `json:"winner,omitempty"`
}

func (that Status) IsFinished() bool {
	return that.State == StateFinished
}

// Slot is one position seeds can be sown into: a pit, or a side's store.
type Slot struct {
	Side  Side `json:"side"`
	Pit   int  `json:"pit"`
	Store bool `json:"store,omitempty"`
}

// MoveRecord is appended to the log after every accepted move.
type MoveRecord struct {
	Player Side     `json:"player"`
	Pit    int      `json:"pit"`
	Board  Snapshot `json:"board"`
}

// MoveResult describes what a single ApplyMove did.
type MoveResult struct {
	Player Side `json:"player"`
	Pit    int  `json:"pit"`

	// Path lists every slot that received a seed, in sowing order.
	Path []Slot `json:"path"`

	// Captured counts the opponent's seeds only, not the landing seed.
	Capture   bool `json:"capture"`
	Captured  int  `json:"captured"`
	ExtraTurn bool `json:"extra_turn"`

	Status Status   `json:"status"`
	Board  Snapshot `json:"board"`
}

// Game is a Kalah rules engine. It owns its board, turn and move log and
// is not safe for concurrent use.
type Game struct {
	board   *Board
	current Side
	status  Status
	log     []MoveRecord
}

func NewGame(pitsPerSide, initialSeeds int) (*Game, error) {
	board, err := NewBoard(pitsPerSide, initialSeeds)
	if err != nil {
		return nil, err
	}

	return &Game{
		board:   board,
		current: SideA,
		status:  Status{State: StateInProgress},
	}, nil
}

func (that *Game) CurrentPlayer() Side {
	return that.current
}

func (that *Game) Status() Status {
	return that.status
}

func (that *Game) PitsPerSide() int {
	return that.board.PitsPerSide()
}

func (that *Game) BoardSnapshot() Snapshot {
	return that.board.Snapshot()
}

func (that *Game) MoveLog() []MoveRecord {
	return copyLog(that.log)
}

func (that *Game) IsLegal(player Side, pit int) bool {
	return that.checkMove(player, pit) == nil
}

// LegalMoves returns the non-empty pits of player in ascending order, or
// nothing when it is not player's turn or the game is over.
func (that *Game) LegalMoves(player Side) []int {
	var moves []int
	for pit := 0; pit < that.board.pitsPerSide; pit++ {
		if that.IsLegal(player, pit) {
			moves = append(moves, pit)
		}
	}

	return moves
}

// ApplyMove plays pit for the current player. A rejected move leaves the
// game untouched.
func (that *Game) ApplyMove(pit int) (*MoveResult, error) {
	player := that.current

	if err := that.checkMove(player, pit); err != nil {
		return nil, err
	}

	seeds := that.board.pits[player][pit]
	that.board.pits[player][pit] = 0

	path := that.sow(player, pit, seeds)
	last := path[len(path)-1]

	result := &MoveResult{
		Player: player,
		Pit:    pit,
		Path:   path,
	}

	// the last seed in the mover's own store means another go
	result.ExtraTurn = last.Store && last.Side == player

	if !last.Store && last.Side == player {
		result.Captured, result.Capture = that.capture(player, last.Pit)
	}

	if !result.ExtraTurn {
		that.current = player.Opponent()
	}

	if that.board.SideSum(SideA) == 0 || that.board.SideSum(SideB) == 0 {
		that.sweep()
		that.status = Status{State: StateFinished, Winner: that.winner()}
	}

	that.log = append(that.log, MoveRecord{
		Player: player,
		Pit:    pit,
		Board:  that.board.Snapshot(),
	})

	result.Status = that.status
	result.Board = that.board.Snapshot()

	return result, nil
}

// Reset puts the game back to its initial position and clears the log.
func (that *Game) Reset() {
	that.board.Reset()
	that.current = SideA
	that.status = Status{State: StateInProgress}
	that.log = nil
}

// Clone returns a deep copy that can be played on without touching the original.
func (that *Game) Clone() *Game {
	return &Game{
		board:   that.board.clone(),
		current: that.current,
		status:  that.status,
		log:     that.MoveLog(),
	}
}

func copyLog(log []MoveRecord) []MoveRecord {
	if len(log) == 0 {
		return nil
	}

	records := make([]MoveRecord, len(log))
	for i, record := range log {
		records[i] = MoveRecord{Player: record.Player, Pit: record.Pit, Board: record.Board.Clone()}
	}

	return records
}

func (that *Game) checkMove(player Side, pit int) error {
	if that.status.IsFinished() {
		return fmt.Errorf("%w: game is finished", ErrIllegalMove)
	}

	if player != that.current {
		return fmt.Errorf("%w: it is %s's turn", ErrIllegalMove, that.current)
	}

	seeds, err := that.board.Seeds(player, pit)
	if err != nil {
		return err
	}

	if seeds == 0 {
		return fmt.Errorf("%w: pit %d is empty", ErrIllegalMove, pit)
	}

	return nil
}

// sow drops seeds one by one after pit, skipping the opponent's store.
func (that *Game) sow(player Side, pit, seeds int) []Slot {
	path := make([]Slot, 0, seeds)
	slot := Slot{Side: player, Pit: pit}

	for ; seeds > 0; seeds-- {
		slot = that.next(player, slot)

		if slot.Store {
			that.board.stores[slot.Side]++
		} else {
			that.board.pits[slot.Side][slot.Pit]++
		}

		path = append(path, slot)
	}

	return path
}

func (that *Game) next(player Side, slot Slot) Slot {
	switch {
	case slot.Store:
		return Slot{Side: slot.Side.Opponent(), Pit: 0}
	case slot.Pit < that.board.pitsPerSide-1:
		return Slot{Side: slot.Side, Pit: slot.Pit + 1}
	case slot.Side == player:
		return Slot{Side: player, Store: true}
	default:
		return Slot{Side: player, Pit: 0}
	}
}

// capture takes the opposite pit when the last seed landed in an empty pit of player.
func (that *Game) capture(player Side, pit int) (int, bool) {
	opponent := player.Opponent()
	opposite := that.board.OppositeIndex(pit)

	if that.board.pits[player][pit] != 1 || that.board.pits[opponent][opposite] == 0 {
		return 0, false
	}

	captured := that.board.pits[opponent][opposite]
	that.board.pits[opponent][opposite] = 0
	that.board.pits[player][pit] = 0
	that.board.stores[player] += captured + 1

	return captured, true
}

// sweep moves what is left in each row into that row's own store.
func (that *Game) sweep() {
	for _, side := range []Side{SideA, SideB} {
		that.board.stores[side] += that.board.SideSum(side)
		for i := range that.board.pits[side] {
			that.board.pits[side][i] = 0
		}
	}
}

func (that *Game) winner() Winner {
	return winnerOf(Snapshot{Stores: that.board.stores})
}
