package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/kalah-backend/internal/apperror"
	"github.com/rocketscienceinc/kalah-backend/internal/entity"
	"github.com/rocketscienceinc/kalah-backend/internal/kalah"
	"github.com/rocketscienceinc/kalah-backend/internal/repository"
)

// TurnResult is what a player's move produced, followed by any replies of the bot.
type TurnResult struct {
	Game       *entity.Game        `json:"game"`
	Result     *kalah.MoveResult   `json:"result"`
	BotResults []*kalah.MoveResult `json:"bot_results,omitempty"`
}

type GamePlayService interface {
	StartGame(ctx context.Context, playerID, gameType, difficulty string) (*entity.Game, error)
	JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error)

	GetGameByID(ctx context.Context, gameID string) (*entity.Game, error)
	GetMoveLog(ctx context.Context, gameID string) ([]kalah.MoveRecord, error)

	MakeTurn(ctx context.Context, playerID string, pit int) (*TurnResult, error)
	ResetGame(ctx context.Context, playerID string) (*entity.Game, error)

	LeaveGame(ctx context.Context, playerID string) error
	CleanupGame(ctx context.Context, game *entity.Game)
}

type gamePlayService struct {
	logger *slog.Logger

	playerService PlayerService
	gameService   GameService
	botService    BotService

	defaultDifficulty string
}

func NewGamePlayService(
	logger *slog.Logger,
	playerService PlayerService,
	gameService GameService,
	botService BotService,
	defaultDifficulty string,
) GamePlayService {
	return &gamePlayService{
		logger:            logger,
		playerService:     playerService,
		gameService:       gameService,
		botService:        botService,
		defaultDifficulty: defaultDifficulty,
	}
}

// StartGame returns the player's unfinished game, or seats the player in a new one.
// Public games first try to join a game somebody else is waiting in.
func (that *gamePlayService) StartGame(ctx context.Context, playerID, gameType, difficulty string) (*entity.Game, error) {
	log := that.logger.With("method", "StartGame", "playerID", playerID)

	if err := entity.ValidateType(gameType); err != nil {
		return nil, err
	}

	if gameType == entity.WithBotType && difficulty == "" {
		difficulty = that.defaultDifficulty
	}

	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.InGame() {
		game, err := that.gameService.GetGameByID(ctx, player.GameID)
		switch {
		case err == nil && !game.IsFinished():
			return game, nil
		case err == nil:
			that.CleanupGame(ctx, game)
		case errors.Is(err, repository.ErrGameNotFound):
			log.Debug("player refers to an expired game", "gameID", player.GameID)
		default:
			return nil, fmt.Errorf("failed to get game: %w", err)
		}

		player.GameID = ""
	}

	if gameType == entity.PublicType {
		game, err := that.joinWaitingPublicGame(ctx, player)
		if err == nil {
			log.Info("joined public game", "gameID", game.ID)
			return game, nil
		}

		if !errors.Is(err, repository.ErrGameNotFound) {
			return nil, err
		}
	}

	game, err := that.createGame(ctx, player, gameType, difficulty)
	if err != nil {
		return nil, fmt.Errorf("failed to create new game: %w", err)
	}

	log.Info("game created", "gameID", game.ID, "type", game.Type)

	return game, nil
}

// joinWaitingPublicGame seats player in the first waiting public game that
// still has room. A game that could not take the player for another reason
// goes back on the waiting list.
func (that *gamePlayService) joinWaitingPublicGame(ctx context.Context, player *entity.Player) (*entity.Game, error) {
	for {
		game, err := that.gameService.GetWaitingPublicGame(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get waiting public game: %w", err)
		}

		seated, err := that.seatSecondPlayer(ctx, game.ID, player)
		switch {
		case err == nil:
			return seated, nil
		case errors.Is(err, apperror.ErrGameIsFull), errors.Is(err, repository.ErrGameNotFound):
			continue
		}

		if returnErr := that.gameService.ReturnWaitingPublicGame(ctx, game.ID); returnErr != nil {
			that.logger.Error("failed to return waiting game", "method", "joinWaitingPublicGame", "gameID", game.ID, "error", returnErr)
		}

		return nil, err
	}
}

func (that *gamePlayService) JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == game.ID {
		return game, nil
	}

	if player.InGame() {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrAlreadyInGame, player.GameID)
	}

	return that.seatSecondPlayer(ctx, game.ID, player)
}

// seatSecondPlayer puts player on side B of a waiting game. The player record
// is only pointed at the game once the game has stored the seat.
func (that *gamePlayService) seatSecondPlayer(ctx context.Context, gameID string, player *entity.Player) (*entity.Game, error) {
	game, err := that.gameService.ModifyGame(ctx, gameID, func(game *entity.Game) error {
		if game.IsFull() || !game.IsWaiting() {
			return fmt.Errorf("%w: game id %s", apperror.ErrGameIsFull, game.ID)
		}

		seated := *player
		seated.GameID = game.ID
		seated.Side = kalah.SideB

		game.Status = entity.StatusOngoing
		game.Players = append(game.Players, &seated)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seat player: %w", err)
	}

	player.GameID = game.ID
	player.Side = kalah.SideB
	if err = that.playerService.UpdatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	return game, nil
}

func (that *gamePlayService) GetGameByID(ctx context.Context, gameID string) (*entity.Game, error) {
	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return game, nil
}

func (that *gamePlayService) GetMoveLog(ctx context.Context, gameID string) ([]kalah.MoveRecord, error) {
	game, err := that.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	engine, err := game.Engine()
	if err != nil {
		return nil, err
	}

	return engine.MoveLog(), nil
}

// MakeTurn plays pit for the player and, in a bot game, lets the bot answer.
// Nothing is stored when the move is rejected, and moves on the same game
// are applied one after another.
func (that *gamePlayService) MakeTurn(ctx context.Context, playerID string, pit int) (*TurnResult, error) {
	log := that.logger.With("method", "MakeTurn", "playerID", playerID)

	player, err := that.activePlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	var turn *TurnResult

	game, err := that.gameService.ModifyGame(ctx, player.GameID, func(game *entity.Game) error {
		result, err := game.MakeTurn(player.Side, pit)
		if err != nil {
			return fmt.Errorf("failed to make turn: %w", err)
		}

		turn = &TurnResult{Game: game, Result: result}

		if game.IsWithBot() && game.IsOngoing() {
			turn.BotResults, err = that.botService.MakeTurn(game)
			if err != nil {
				return fmt.Errorf("bot failed to make turn: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if game.IsFinished() {
		log.Info("game finished", "gameID", game.ID, "winner", game.Winner())
	}

	return turn, nil
}

// ResetGame puts the player's game back to the opening position with the same players.
func (that *gamePlayService) ResetGame(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.activePlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	game, err := that.gameService.ModifyGame(ctx, player.GameID, func(game *entity.Game) error {
		if err := game.Reset(); err != nil {
			return fmt.Errorf("failed to reset game: %w", err)
		}

		if game.IsWithBot() {
			if _, err := that.botService.MakeTurn(game); err != nil {
				return fmt.Errorf("bot failed to make first turn: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	that.logger.Info("game reset", "method", "ResetGame", "gameID", game.ID)

	return game, nil
}

func (that *gamePlayService) LeaveGame(ctx context.Context, playerID string) error {
	_, game, err := that.activeGame(ctx, playerID)
	if err != nil {
		return err
	}

	that.CleanupGame(ctx, game)

	return nil
}

func (that *gamePlayService) activePlayer(ctx context.Context, playerID string) (*entity.Player, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if !player.InGame() {
		return nil, apperror.ErrNoActiveGames
	}

	return player, nil
}

func (that *gamePlayService) activeGame(ctx context.Context, playerID string) (*entity.Player, *entity.Game, error) {
	player, err := that.activePlayer(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}

	game, err := that.gameService.GetGameByID(ctx, player.GameID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return player, game, nil
}

func (that *gamePlayService) createGame(ctx context.Context, player *entity.Player, gameType, difficulty string) (*entity.Game, error) {
	game, updatedPlayer, err := that.gameService.CreateGame(ctx, player, gameType, difficulty)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if game.IsWithBot() {
		if err = that.addBotToGame(ctx, game, updatedPlayer); err != nil {
			return nil, fmt.Errorf("failed to add bot to game: %w", err)
		}

		return game, nil
	}

	if err = that.playerService.UpdatePlayer(ctx, updatedPlayer); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	return game, nil
}

func (that *gamePlayService) addBotToGame(ctx context.Context, game *entity.Game, player *entity.Player) error {
	botSide := that.botService.ChooseSide()

	player.Side = botSide.Opponent()
	if err := that.playerService.UpdatePlayer(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	game.Players = append(game.Players, entity.NewBotPlayer(game.ID, botSide))
	game.Status = entity.StatusOngoing

	if _, err := that.botService.MakeTurn(game); err != nil {
		return fmt.Errorf("bot failed to make first turn: %w", err)
	}

	if err := that.gameService.UpdateGame(ctx, game); err != nil {
		return fmt.Errorf("failed to update game with bot: %w", err)
	}

	return nil
}

// CleanupGame deletes the game and frees its players. Failures are only logged.
func (that *gamePlayService) CleanupGame(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "cleanupGame", "gameID", game.ID)

	if err := that.gameService.DeleteGame(ctx, game.ID); err != nil {
		log.Error("failed to delete game", "error", err)
	}

	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		freed := *player
		freed.GameID = ""
		if err := that.playerService.UpdatePlayer(ctx, &freed); err != nil {
			log.Error("failed to update", "player", player.ID, "error", err)
		}
	}
}
