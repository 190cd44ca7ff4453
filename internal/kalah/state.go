package kalah

import (
	"errors"
	"fmt"
)

var ErrCorruptState = errors.New("corrupt game state")

// State is everything needed to rebuild a Game, in a form that encodes to JSON.
type State struct {
	PitsPerSide   int          `json:"pits_per_side"`
	InitialSeeds  int          `json:"initial_seeds"`
	Board         Snapshot     `json:"board"`
	CurrentPlayer Side         `json:"current_player"`
	Status        Status       `json:"status"`
	Log           []MoveRecord `json:"log,omitempty"`
}

func (that *Game) State() State {
	return State{
		PitsPerSide:   that.board.pitsPerSide,
		InitialSeeds:  that.board.initialSeeds,
		Board:         that.board.Snapshot(),
		CurrentPlayer: that.current,
		Status:        that.status,
		Log:           that.MoveLog(),
	}
}

// Restore rebuilds a game from state. States that could not have been
// reached by legal play, such as a wrong seed total, are rejected.
func Restore(state State) (*Game, error) {
	game, err := NewGame(state.PitsPerSide, state.InitialSeeds)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptState, err)
	}

	if err = validateState(state); err != nil {
		return nil, err
	}

	for _, side := range []Side{SideA, SideB} {
		copy(game.board.pits[side], state.Board.Pits[side])
	}
	game.board.stores = state.Board.Stores
	game.current = state.CurrentPlayer
	game.status = state.Status
	game.log = copyLog(state.Log)

	return game, nil
}

// Replay plays pits in order on a fresh game.
func Replay(pitsPerSide, initialSeeds int, pits []int) (*Game, error) {
	game, err := NewGame(pitsPerSide, initialSeeds)
	if err != nil {
		return nil, err
	}

	for i, pit := range pits {
		if _, err = game.ApplyMove(pit); err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
	}

	return game, nil
}

func validateState(state State) error {
	for _, side := range []Side{SideA, SideB} {
		if len(state.Board.Pits[side]) != state.PitsPerSide {
			return fmt.Errorf("%w: side %s has %d pits, want %d", ErrCorruptState, side, len(state.Board.Pits[side]), state.PitsPerSide)
		}

		if state.Board.Stores[side] < 0 {
			return fmt.Errorf("%w: negative store on side %s", ErrCorruptState, side)
		}

		for _, seeds := range state.Board.Pits[side] {
			if seeds < 0 {
				return fmt.Errorf("%w: negative pit on side %s", ErrCorruptState, side)
			}
		}
	}

	if state.CurrentPlayer != SideA && state.CurrentPlayer != SideB {
		return fmt.Errorf("%w: unknown current player %d", ErrCorruptState, state.CurrentPlayer)
	}

	want := 2 * state.PitsPerSide * state.InitialSeeds
	if total := state.Board.Total(); total != want {
		return fmt.Errorf("%w: %d seeds on board, want %d", ErrCorruptState, total, want)
	}

	switch state.Status.State {
	case StateInProgress:
		if state.Status.Winner != WinnerNone {
			return fmt.Errorf("%w: game in progress has a winner", ErrCorruptState)
		}
		for _, side := range []Side{SideA, SideB} {
			if state.InitialSeeds > 0 && isEmpty(state.Board.Pits[side]) {
				return fmt.Errorf("%w: game in progress with side %s empty", ErrCorruptState, side)
			}
		}
	case StateFinished:
		if sum := sumPits(state.Board); sum != 0 {
			return fmt.Errorf("%w: finished game has %d seeds left in pits", ErrCorruptState, sum)
		}
		if want := winnerOf(state.Board); state.Status.Winner != want {
			return fmt.Errorf("%w: finished game names winner %q, stores give %q", ErrCorruptState, state.Status.Winner, want)
		}
	default:
		return fmt.Errorf("%w: unknown status %q", ErrCorruptState, state.Status.State)
	}

	return nil
}

func winnerOf(snapshot Snapshot) Winner {
	a, b := snapshot.Stores[SideA], snapshot.Stores[SideB]

	switch {
	case a > b:
		return WinnerA
	case b > a:
		return WinnerB
	default:
		return WinnerDraw
	}
}

func isEmpty(pits []int) bool {
	for _, seeds := range pits {
		if seeds != 0 {
			return false
		}
	}

	return true
}

func sumPits(snapshot Snapshot) int {
	return snapshot.Total() - snapshot.Stores[SideA] - snapshot.Stores[SideB]
}
