package service

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/kalah-backend/internal/entity"
	"github.com/rocketscienceinc/kalah-backend/internal/kalah"
	"github.com/rocketscienceinc/kalah-backend/internal/pkg"
)

type GameService interface {
	CreateGame(ctx context.Context, player *entity.Player, gameType, difficulty string) (*entity.Game, *entity.Player, error)
	UpdateGame(ctx context.Context, game *entity.Game) error
	ModifyGame(ctx context.Context, id string, change func(game *entity.Game) error) (*entity.Game, error)
	DeleteGame(ctx context.Context, gameID string) error

	GetGameByID(ctx context.Context, id string) (*entity.Game, error)
	GetWaitingPublicGame(ctx context.Context) (*entity.Game, error)
	ReturnWaitingPublicGame(ctx context.Context, id string) error
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	Update(ctx context.Context, id string, change func(game *entity.Game) error) (*entity.Game, error)

	GetByID(ctx context.Context, id string) (*entity.Game, error)
	GetWaitingPublicGame(ctx context.Context) (*entity.Game, error)
	ReturnWaitingPublicGame(ctx context.Context, id string) error

	DeleteByID(ctx context.Context, id string) error
}

type gameService struct {
	gameRepo gameRepo

	pitsPerSide  int
	initialSeeds int
}

// NewGameService creates games on a board of pitsPerSide pits holding initialSeeds seeds each.
func NewGameService(gameRepo gameRepo, pitsPerSide, initialSeeds int) GameService {
	return &gameService{
		gameRepo:     gameRepo,
		pitsPerSide:  pitsPerSide,
		initialSeeds: initialSeeds,
	}
}

// CreateGame stores a new waiting game with player seated on side A.
func (that *gameService) CreateGame(ctx context.Context, player *entity.Player, gameType, difficulty string) (*entity.Game, *entity.Player, error) {
	gameID, err := pkg.GenerateGameID()
	if err != nil {
		return nil, nil, fmt.Errorf("error generating game ID: %w", err)
	}

	game, err := entity.NewGame(gameID, gameType, difficulty, that.pitsPerSide, that.initialSeeds)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create game: %w", err)
	}

	player.GameID = gameID
	player.Side = kalah.SideA

	game.Players = []*entity.Player{player}
	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, nil, fmt.Errorf("failed to create game from storage: %w", err)
	}

	return game, player, nil
}

func (that *gameService) GetGameByID(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve game from storage: %w", err)
	}

	return game, nil
}

func (that *gameService) GetWaitingPublicGame(ctx context.Context) (*entity.Game, error) {
	game, err := that.gameRepo.GetWaitingPublicGame(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve waiting public game from storage: %w", err)
	}

	return game, nil
}

func (that *gameService) ReturnWaitingPublicGame(ctx context.Context, id string) error {
	if err := that.gameRepo.ReturnWaitingPublicGame(ctx, id); err != nil {
		return fmt.Errorf("failed to return waiting public game to storage: %w", err)
	}

	return nil
}

// ModifyGame applies change to the stored game so that no other write lands
// between reading and saving it. Nothing is saved when change fails.
func (that *gameService) ModifyGame(ctx context.Context, id string, change func(game *entity.Game) error) (*entity.Game, error) {
	game, err := that.gameRepo.Update(ctx, id, change)
	if err != nil {
		return nil, fmt.Errorf("failed to modify game: %w", err)
	}

	return game, nil
}

func (that *gameService) UpdateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *gameService) DeleteGame(ctx context.Context, gameID string) error {
	if err := that.gameRepo.DeleteByID(ctx, gameID); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	return nil
}
