package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/kalah-backend/internal/entity"
)

const (
	waitingPublicGamesKey = "games:public:waiting"
	maxUpdateAttempts     = 16
)

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrUpdateContention = errors.New("game keeps changing under the update")
)

type GameRepository interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	Update(ctx context.Context, id string, change func(game *entity.Game) error) (*entity.Game, error)
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	GetWaitingPublicGame(ctx context.Context) (*entity.Game, error)
	ReturnWaitingPublicGame(ctx context.Context, id string) error
	DeleteByID(ctx context.Context, id string) error
}

type dbGame struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGameRepository stores games as JSON documents; a zero ttl keeps them forever.
func NewGameRepository(client *redis.Client, ttl time.Duration) GameRepository {
	return &dbGame{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbGame) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		that.write(ctx, pipe, game, gameJSON)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

// Update loads the game, applies change to it and stores the result, all
// under WATCH. If another writer stores the game in between, change runs
// again on the fresh copy. An error from change aborts without writing.
func (that *dbGame) Update(ctx context.Context, id string, change func(game *entity.Game) error) (*entity.Game, error) {
	key := gameKey(id)

	var updated *entity.Game

	txf := func(tx *redis.Tx) error {
		game, err := decodeGame(tx.Get(ctx, key).Result())
		if err != nil {
			return err
		}

		if err = change(game); err != nil {
			return err
		}

		gameJSON, err := json.Marshal(game)
		if err != nil {
			return fmt.Errorf("could not marshal game: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			that.write(ctx, pipe, game, gameJSON)
			return nil
		})
		if err != nil {
			return err
		}

		updated = game

		return nil
	}

	for range maxUpdateAttempts {
		err := that.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if err != nil {
			return nil, err
		}

		return updated, nil
	}

	return nil, fmt.Errorf("%w: game id %s", ErrUpdateContention, id)
}

func (that *dbGame) write(ctx context.Context, pipe redis.Pipeliner, game *entity.Game, gameJSON []byte) {
	pipe.Set(ctx, gameKey(game.ID), gameJSON, that.ttl)

	if game.IsPublic() && game.IsWaiting() {
		pipe.SAdd(ctx, waitingPublicGamesKey, game.ID)
	} else {
		pipe.SRem(ctx, waitingPublicGamesKey, game.ID)
	}
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	game, err := decodeGame(that.client.Get(ctx, gameKey(id)).Result())
	if err != nil {
		return &entity.Game{}, err
	}

	return game, nil
}

func decodeGame(response string, err error) (*entity.Game, error) {
	if errors.Is(err, redis.Nil) {
		return nil, ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w by id", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal([]byte(response), &existingGame); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}

// GetWaitingPublicGame takes one public game off the waiting list. Expired
// entries and games that are no longer waiting are dropped until a live one
// is found.
func (that *dbGame) GetWaitingPublicGame(ctx context.Context) (*entity.Game, error) {
	for {
		id, err := that.client.SPop(ctx, waitingPublicGamesKey).Result()
		if errors.Is(err, redis.Nil) {
			return nil, ErrGameNotFound
		}

		if err != nil {
			return nil, fmt.Errorf("failed to pop waiting game: %w", err)
		}

		game, err := that.GetByID(ctx, id)
		if errors.Is(err, ErrGameNotFound) {
			continue
		}

		if err != nil {
			return nil, err
		}

		if !game.IsPublic() || !game.IsWaiting() {
			continue
		}

		return game, nil
	}
}

// ReturnWaitingPublicGame puts a game taken with GetWaitingPublicGame back
// on the waiting list when nobody could be seated in it.
func (that *dbGame) ReturnWaitingPublicGame(ctx context.Context, id string) error {
	if err := that.client.SAdd(ctx, waitingPublicGamesKey, id).Err(); err != nil {
		return fmt.Errorf("failed to return waiting game: %w", err)
	}

	return nil
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	cmds, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, gameKey(id))
		pipe.SRem(ctx, waitingPublicGamesKey, id)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete game by ID: %w", err)
	}

	if deleted, _ := cmds[0].(*redis.IntCmd).Result(); deleted == 0 {
		return ErrGameNotFound
	}

	return nil
}

func gameKey(id string) string {
	return "game:" + id
}
