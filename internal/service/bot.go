package service

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/exp/rand"

	"github.com/rocketscienceinc/kalah-backend/internal/entity"
	"github.com/rocketscienceinc/kalah-backend/internal/kalah"
)

var ErrBotNotFound = errors.New("bot player not found")

type BotService interface {
	// ChooseSide picks the side the bot sits on in a new game.
	ChooseSide() kalah.Side
	// MakeTurn plays for the bot as long as the bot is to move, extra turns included.
	MakeTurn(game *entity.Game) ([]*kalah.MoveResult, error)
}

type botService struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewBotService(seed uint64) BotService {
	return &botService{
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (that *botService) ChooseSide() kalah.Side {
	if that.intn(2) == 0 {
		return kalah.SideA
	}

	return kalah.SideB
}

func (that *botService) MakeTurn(game *entity.Game) ([]*kalah.MoveResult, error) {
	var botPlayer *entity.Player
	for _, player := range game.Players {
		if player.IsBot() {
			botPlayer = player
			break
		}
	}

	if botPlayer == nil {
		return nil, ErrBotNotFound
	}

	var results []*kalah.MoveResult
	for {
		side, ok := game.Turn()
		if !ok || side != botPlayer.Side {
			return results, nil
		}

		pit, err := that.choosePit(game, side)
		if err != nil {
			return results, err
		}

		result, err := game.MakeTurn(side, pit)
		if err != nil {
			return results, fmt.Errorf("bot failed to make turn: %w", err)
		}

		results = append(results, result)
	}
}

func (that *botService) choosePit(game *entity.Game, side kalah.Side) (int, error) {
	engine, err := game.Engine()
	if err != nil {
		return 0, err
	}

	if game.Difficulty == entity.HardDifficulty {
		return kalah.ChooseMove(engine, side)
	}

	moves := engine.LegalMoves(side)
	if len(moves) == 0 {
		return 0, kalah.ErrNoLegalMove
	}

	return moves[that.intn(len(moves))], nil
}

func (that *botService) intn(n int) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.rng.Intn(n)
}
