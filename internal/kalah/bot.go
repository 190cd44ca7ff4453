package kalah

import (
	"errors"
	"fmt"
)

var ErrNoLegalMove = errors.New("no legal move")

// ChooseMove picks a pit for player by simulating every non-empty pit on a
// copy of the game. It prefers, in order: a move ending in player's store,
// the largest capture, the fullest pit. Ties go to the lowest pit.
// It fails with ErrNoLegalMove when it is not player's turn.
func ChooseMove(game *Game, player Side) (int, error) {
	if game.status.IsFinished() || game.current != player || game.board.SideSum(player) == 0 {
		return 0, fmt.Errorf("%w: side %s", ErrNoLegalMove, player)
	}

	extraTurn := -1
	bestCapture, bestCaptured := -1, 0
	fullest, fullestSeeds := -1, 0

	for pit, seeds := range game.board.pits[player] {
		if seeds == 0 {
			continue
		}

		result, err := simulate(game, player, pit)
		if err != nil {
			return 0, err
		}

		if result.ExtraTurn && extraTurn < 0 {
			extraTurn = pit
		}

		if result.Capture && result.Captured > bestCaptured {
			bestCapture, bestCaptured = pit, result.Captured
		}

		if seeds > fullestSeeds {
			fullest, fullestSeeds = pit, seeds
		}
	}

	switch {
	case extraTurn >= 0:
		return extraTurn, nil
	case bestCapture >= 0:
		return bestCapture, nil
	default:
		return fullest, nil
	}
}

func simulate(game *Game, player Side, pit int) (*MoveResult, error) {
	sandbox := &Game{
		board:   game.board.clone(),
		current: player,
		status:  game.status,
	}

	result, err := sandbox.ApplyMove(pit)
	if err != nil {
		return nil, fmt.Errorf("simulate pit %d: %w", pit, err)
	}

	return result, nil
}
