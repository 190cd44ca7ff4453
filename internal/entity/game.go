package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/kalah-backend/internal/apperror"
	"github.com/rocketscienceinc/kalah-backend/internal/kalah"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"
)

const (
	PublicType  = "public"
	PrivateType = "private"
	WithBotType = "bot"
)

const (
	EasyDifficulty = "easy"
	HardDifficulty = "hard"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

// Game is a Kalah match as it is stored: who plays it and the full engine state.
type Game struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Difficulty string      `json:"difficulty,omitempty"`
	Status     string      `json:"status"`
	Players    []*Player   `json:"players,omitempty"`
	State      kalah.State `json:"state"`
}

func NewGame(id, gameType, difficulty string, pitsPerSide, initialSeeds int) (*Game, error) {
	if err := ValidateType(gameType); err != nil {
		return nil, err
	}

	if gameType == WithBotType {
		if err := ValidateDifficulty(difficulty); err != nil {
			return nil, err
		}
	} else {
		difficulty = ""
	}

	engine, err := kalah.NewGame(pitsPerSide, initialSeeds)
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}

	return &Game{
		ID:         id,
		Type:       gameType,
		Difficulty: difficulty,
		Status:     StatusWaiting,
		State:      engine.State(),
	}, nil
}

func ValidateType(gameType string) error {
	switch gameType {
	case PublicType, PrivateType, WithBotType:
		return nil
	default:
		return fmt.Errorf("%w: %q", apperror.ErrUnknownGameType, gameType)
	}
}

func ValidateDifficulty(difficulty string) error {
	switch difficulty {
	case EasyDifficulty, HardDifficulty:
		return nil
	default:
		return fmt.Errorf("%w: %q", apperror.ErrUnknownDifficulty, difficulty)
	}
}

// Engine rebuilds the rules engine from the stored state.
func (that *Game) Engine() (*kalah.Game, error) {
	engine, err := kalah.Restore(that.State)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", that.ID, err)
	}

	return engine, nil
}

// MakeTurn plays pit for side. The stored state only changes when the move is accepted.
func (that *Game) MakeTurn(side kalah.Side, pit int) (*kalah.MoveResult, error) {
	if err := that.ConfirmOngoingState(); err != nil {
		return nil, err
	}

	engine, err := that.Engine()
	if err != nil {
		return nil, err
	}

	if engine.CurrentPlayer() != side {
		return nil, apperror.ErrNotYourTurn
	}

	result, err := engine.ApplyMove(pit)
	if err != nil {
		return nil, fmt.Errorf("pit %d: %w", pit, err)
	}

	that.sync(engine)

	return result, nil
}

// Reset starts the match over with the same players.
func (that *Game) Reset() error {
	if that.IsWaiting() {
		return apperror.ErrGameIsNotStarted
	}

	engine, err := that.Engine()
	if err != nil {
		return err
	}

	engine.Reset()
	that.sync(engine)

	return nil
}

func (that *Game) sync(engine *kalah.Game) {
	that.State = engine.State()

	if that.State.Status.IsFinished() {
		that.Status = StatusFinished
	} else {
		that.Status = StatusOngoing
	}
}

// Turn returns the side to move, or false if nobody is to move.
func (that *Game) Turn() (kalah.Side, bool) {
	if !that.IsOngoing() {
		return 0, false
	}

	return that.State.CurrentPlayer, true
}

func (that *Game) PlayerBySide(side kalah.Side) *Player {
	for _, player := range that.Players {
		if player.Side == side {
			return player
		}
	}

	return nil
}

func (that *Game) Winner() kalah.Winner {
	return that.State.Status.Winner
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) IsFull() bool {
	return len(that.Players) == 2
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

func (that *Game) IsPublic() bool {
	return that.Type == PublicType
}

func (that *Game) IsWithBot() bool {
	return that.Type == WithBotType
}
