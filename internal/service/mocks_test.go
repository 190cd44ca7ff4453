package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/kalah-backend/internal/entity"
	"github.com/rocketscienceinc/kalah-backend/internal/kalah"
)

type mockPlayerRepo struct {
	mock.Mock
}

func (that *mockPlayerRepo) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	args := that.Called(ctx, player)
	return args.Error(0)
}

func (that *mockPlayerRepo) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	args := that.Called(ctx, id)
	return args.Get(0).(*entity.Player), args.Error(1)
}

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameRepo) Update(ctx context.Context, id string, change func(game *entity.Game) error) (*entity.Game, error) {
	args := that.Called(ctx, id)
	return applyChange(args, change)
}

func (that *mockGameRepo) ReturnWaitingPublicGame(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (that *mockGameRepo) GetWaitingPublicGame(ctx context.Context) (*entity.Game, error) {
	args := that.Called(ctx)
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (that *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

type mockPlayerService struct {
	mock.Mock
}

func (that *mockPlayerService) CreatePlayer(ctx context.Context) (*entity.Player, error) {
	args := that.Called(ctx)
	return args.Get(0).(*entity.Player), args.Error(1)
}

func (that *mockPlayerService) GetPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	args := that.Called(ctx, id)
	return args.Get(0).(*entity.Player), args.Error(1)
}

func (that *mockPlayerService) UpdatePlayer(ctx context.Context, player *entity.Player) error {
	args := that.Called(ctx, player)
	return args.Error(0)
}

type mockGameService struct {
	mock.Mock
}

func (that *mockGameService) CreateGame(ctx context.Context, player *entity.Player, gameType, difficulty string) (*entity.Game, *entity.Player, error) {
	args := that.Called(ctx, player, gameType, difficulty)
	return args.Get(0).(*entity.Game), args.Get(1).(*entity.Player), args.Error(2)
}

func (that *mockGameService) UpdateGame(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameService) ModifyGame(ctx context.Context, id string, change func(game *entity.Game) error) (*entity.Game, error) {
	args := that.Called(ctx, id)
	return applyChange(args, change)
}

func (that *mockGameService) ReturnWaitingPublicGame(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

func (that *mockGameService) DeleteGame(ctx context.Context, gameID string) error {
	args := that.Called(ctx, gameID)
	return args.Error(0)
}

func (that *mockGameService) GetGameByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (that *mockGameService) GetWaitingPublicGame(ctx context.Context) (*entity.Game, error) {
	args := that.Called(ctx)
	return args.Get(0).(*entity.Game), args.Error(1)
}

// applyChange runs change on the game a mocked update returns, as storage would.
func applyChange(args mock.Arguments, change func(game *entity.Game) error) (*entity.Game, error) {
	if err := args.Error(1); err != nil {
		return nil, err
	}

	game, _ := args.Get(0).(*entity.Game)
	if err := change(game); err != nil {
		return nil, err
	}

	return game, nil
}

type mockBotService struct {
	mock.Mock
}

func (that *mockBotService) ChooseSide() kalah.Side {
	args := that.Called()
	return args.Get(0).(kalah.Side)
}

func (that *mockBotService) MakeTurn(game *entity.Game) ([]*kalah.MoveResult, error) {
	args := that.Called(game)

	results, _ := args.Get(0).([]*kalah.MoveResult)

	return results, args.Error(1)
}
