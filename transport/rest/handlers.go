package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/kalah-backend/internal/apperror"
	"github.com/rocketscienceinc/kalah-backend/internal/entity"
	"github.com/rocketscienceinc/kalah-backend/internal/kalah"
	"github.com/rocketscienceinc/kalah-backend/internal/repository"
	"github.com/rocketscienceinc/kalah-backend/internal/service"
)

var errBadRequestBody = errors.New("bad request body")

type GameHandler interface {
	CreatePlayer(w http.ResponseWriter, r *http.Request)

	StartGame(w http.ResponseWriter, r *http.Request)
	JoinGame(w http.ResponseWriter, r *http.Request)
	GetGame(w http.ResponseWriter, r *http.Request)
	GetMoveLog(w http.ResponseWriter, r *http.Request)

	MakeTurn(w http.ResponseWriter, r *http.Request)
	ResetGame(w http.ResponseWriter, r *http.Request)
	LeaveGame(w http.ResponseWriter, r *http.Request)
}

type playerService interface {
	CreatePlayer(ctx context.Context) (*entity.Player, error)
}

type gamePlayService interface {
	StartGame(ctx context.Context, playerID, gameType, difficulty string) (*entity.Game, error)
	JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error)

	GetGameByID(ctx context.Context, gameID string) (*entity.Game, error)
	GetMoveLog(ctx context.Context, gameID string) ([]kalah.MoveRecord, error)

	MakeTurn(ctx context.Context, playerID string, pit int) (*service.TurnResult, error)
	ResetGame(ctx context.Context, playerID string) (*entity.Game, error)
	LeaveGame(ctx context.Context, playerID string) error
}

type gameHandler struct {
	logger *slog.Logger

	players  playerService
	gamePlay gamePlayService
}

func NewGameHandler(logger *slog.Logger, players playerService, gamePlay gamePlayService) GameHandler {
	return &gameHandler{
		logger:   logger.With("component", "rest"),
		players:  players,
		gamePlay: gamePlay,
	}
}

type startGameRequest struct {
	PlayerID   string `json:"player_id"`
	Type       string `json:"type"`
	Difficulty string `json:"difficulty"`
}

type playerRequest struct {
	PlayerID string `json:"player_id"`
}

type turnRequest struct {
	PlayerID string `json:"player_id"`
	Pit      *int   `json:"pit"`
}

type gameResponse struct {
	Game   *entity.Game   `json:"game"`
	Player *entity.Player `json:"player,omitempty"`
}

func (that *gameHandler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	player, err := that.players.CreatePlayer(r.Context())
	if err != nil {
		that.writeError(w, "CreatePlayer", err)
		return
	}

	that.writeJSON(w, http.StatusCreated, map[string]*entity.Player{"player": player})
}

func (that *gameHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	var req startGameRequest
	if err := decode(r, &req); err != nil || req.PlayerID == "" {
		that.writeError(w, "StartGame", errBadRequestBody)
		return
	}

	game, err := that.gamePlay.StartGame(r.Context(), req.PlayerID, req.Type, req.Difficulty)
	if err != nil {
		that.writeError(w, "StartGame", err)
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse{Game: game, Player: playerOf(game, req.PlayerID)})
}

func (that *gameHandler) JoinGame(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decode(r, &req); err != nil || req.PlayerID == "" {
		that.writeError(w, "JoinGame", errBadRequestBody)
		return
	}

	game, err := that.gamePlay.JoinGameByID(r.Context(), r.PathValue("id"), req.PlayerID)
	if err != nil {
		that.writeError(w, "JoinGame", err)
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse{Game: game, Player: playerOf(game, req.PlayerID)})
}

func (that *gameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.gamePlay.GetGameByID(r.Context(), r.PathValue("id"))
	if err != nil {
		that.writeError(w, "GetGame", err)
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse{Game: game})
}

func (that *gameHandler) GetMoveLog(w http.ResponseWriter, r *http.Request) {
	moves, err := that.gamePlay.GetMoveLog(r.Context(), r.PathValue("id"))
	if err != nil {
		that.writeError(w, "GetMoveLog", err)
		return
	}

	if moves == nil {
		moves = []kalah.MoveRecord{}
	}

	that.writeJSON(w, http.StatusOK, map[string][]kalah.MoveRecord{"moves": moves})
}

func (that *gameHandler) MakeTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := decode(r, &req); err != nil || req.PlayerID == "" || req.Pit == nil {
		that.writeError(w, "MakeTurn", errBadRequestBody)
		return
	}

	turn, err := that.gamePlay.MakeTurn(r.Context(), req.PlayerID, *req.Pit)
	if err != nil {
		that.writeError(w, "MakeTurn", err)
		return
	}

	that.writeJSON(w, http.StatusOK, turn)
}

func (that *gameHandler) ResetGame(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decode(r, &req); err != nil || req.PlayerID == "" {
		that.writeError(w, "ResetGame", errBadRequestBody)
		return
	}

	game, err := that.gamePlay.ResetGame(r.Context(), req.PlayerID)
	if err != nil {
		that.writeError(w, "ResetGame", err)
		return
	}

	that.writeJSON(w, http.StatusOK, gameResponse{Game: game})
}

func (that *gameHandler) LeaveGame(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decode(r, &req); err != nil || req.PlayerID == "" {
		that.writeError(w, "LeaveGame", errBadRequestBody)
		return
	}

	if err := that.gamePlay.LeaveGame(r.Context(), req.PlayerID); err != nil {
		that.writeError(w, "LeaveGame", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *gameHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

func (that *gameHandler) writeError(w http.ResponseWriter, method string, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "error", err)
	} else {
		that.logger.Debug("request rejected", "method", method, "error", err)
	}

	that.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, repository.ErrGameNotFound),
		errors.Is(err, repository.ErrPlayerNotFound),
		errors.Is(err, apperror.ErrNoActiveGames):
		return http.StatusNotFound
	case errors.Is(err, errBadRequestBody),
		errors.Is(err, kalah.ErrOutOfRange),
		errors.Is(err, apperror.ErrUnknownGameType),
		errors.Is(err, apperror.ErrUnknownDifficulty):
		return http.StatusBadRequest
	case errors.Is(err, kalah.ErrIllegalMove),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrGameIsNotStarted),
		errors.Is(err, apperror.ErrGameIsFull),
		errors.Is(err, apperror.ErrAlreadyInGame),
		errors.Is(err, repository.ErrUpdateContention):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decode(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	return decoder.Decode(dst)
}

func playerOf(game *entity.Game, playerID string) *entity.Player {
	for _, player := range game.Players {
		if player.ID == playerID {
			return player
		}
	}

	return nil
}
