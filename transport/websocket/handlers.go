package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/kalah-backend/internal/entity"
	"github.com/rocketscienceinc/kalah-backend/internal/repository"
)

var (
	errNotConnected = errors.New("connect first")
	errPitRequired  = errors.New("pit is required")
)

// handleConnect binds the connection to a player, creating one when the id is empty or unknown.
func (that *Server) handleConnect(ctx context.Context, c *conn, req *RequestPayload) error {
	player, err := that.getOrCreatePlayer(ctx, req.PlayerID)
	if err != nil {
		return err
	}

	that.bind(c, player.ID)

	payload := ResponsePayload{Player: player}

	if player.InGame() {
		game, err := that.gamePlay.GetGameByID(ctx, player.GameID)
		switch {
		case err == nil:
			payload.Game = game
		case !errors.Is(err, repository.ErrGameNotFound):
			return err
		}
	}

	return that.send(c, actionConnect, payload)
}

func (that *Server) getOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error) {
	if playerID != "" {
		player, err := that.players.GetPlayerByID(ctx, playerID)
		if err == nil {
			return player, nil
		}

		if !errors.Is(err, repository.ErrPlayerNotFound) {
			return nil, err
		}
	}

	player, err := that.players.CreatePlayer(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create a new player: %w", err)
	}

	return player, nil
}

func (that *Server) handleNewGame(ctx context.Context, c *conn, req *RequestPayload) error {
	if c.playerID == "" {
		return errNotConnected
	}

	game, err := that.gamePlay.StartGame(ctx, c.playerID, req.Type, req.Difficulty)
	if err != nil {
		return err
	}

	that.broadcast(actionNewGame, game, ResponsePayload{})

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, c *conn, req *RequestPayload) error {
	if c.playerID == "" {
		return errNotConnected
	}

	game, err := that.gamePlay.JoinGameByID(ctx, req.GameID, c.playerID)
	if err != nil {
		return err
	}

	that.broadcast(actionJoinGame, game, ResponsePayload{})

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, c *conn, req *RequestPayload) error {
	if c.playerID == "" {
		return errNotConnected
	}

	if req.Pit == nil {
		return errPitRequired
	}

	turn, err := that.gamePlay.MakeTurn(ctx, c.playerID, *req.Pit)
	if err != nil {
		return err
	}

	that.broadcast(actionGameTurn, turn.Game, ResponsePayload{
		Result:     turn.Result,
		BotResults: turn.BotResults,
	})

	return nil
}

func (that *Server) handleGameReset(ctx context.Context, c *conn, _ *RequestPayload) error {
	if c.playerID == "" {
		return errNotConnected
	}

	game, err := that.gamePlay.ResetGame(ctx, c.playerID)
	if err != nil {
		return err
	}

	that.broadcast(actionGameReset, game, ResponsePayload{})

	return nil
}

// handleGameLeave ends the player's game and tells everyone who was in it.
func (that *Server) handleGameLeave(ctx context.Context, c *conn, _ *RequestPayload) error {
	if c.playerID == "" {
		return errNotConnected
	}

	player, err := that.players.GetPlayerByID(ctx, c.playerID)
	if err != nil {
		return err
	}

	if !player.InGame() {
		return that.send(c, actionGameLeave, ResponsePayload{Player: player})
	}

	game, err := that.gamePlay.GetGameByID(ctx, player.GameID)
	if err != nil {
		return err
	}

	if err = that.gamePlay.LeaveGame(ctx, c.playerID); err != nil {
		return err
	}

	that.broadcast(actionGameLeave, game, ResponsePayload{})

	return nil
}

func (that *Server) handleGameLog(ctx context.Context, c *conn, req *RequestPayload) error {
	moves, err := that.gamePlay.GetMoveLog(ctx, req.GameID)
	if err != nil {
		return err
	}

	return that.send(c, actionGameLog, ResponsePayload{Moves: moves})
}
