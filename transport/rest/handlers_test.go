package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/kalah-backend/internal/apperror"
	"github.com/rocketscienceinc/kalah-backend/internal/entity"
	"github.com/rocketscienceinc/kalah-backend/internal/kalah"
	"github.com/rocketscienceinc/kalah-backend/internal/repository"
	"github.com/rocketscienceinc/kalah-backend/internal/service"
)

type mockPlayerService struct {
	mock.Mock
}

func (that *mockPlayerService) CreatePlayer(ctx context.Context) (*entity.Player, error) {
	args := that.Called(ctx)
	return args.Get(0).(*entity.Player), args.Error(1)
}

type mockGamePlayService struct {
	mock.Mock
}

func (that *mockGamePlayService) StartGame(ctx context.Context, playerID, gameType, difficulty string) (*entity.Game, error) {
	args := that.Called(ctx, playerID, gameType, difficulty)
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (that *mockGamePlayService) JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	args := that.Called(ctx, gameID, playerID)
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (that *mockGamePlayService) GetGameByID(ctx context.Context, gameID string) (*entity.Game, error) {
	args := that.Called(ctx, gameID)
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (that *mockGamePlayService) GetMoveLog(ctx context.Context, gameID string) ([]kalah.MoveRecord, error) {
	args := that.Called(ctx, gameID)

	moves, _ := args.Get(0).([]kalah.MoveRecord)

	return moves, args.Error(1)
}

func (that *mockGamePlayService) MakeTurn(ctx context.Context, playerID string, pit int) (*service.TurnResult, error) {
	args := that.Called(ctx, playerID, pit)
	return args.Get(0).(*service.TurnResult), args.Error(1)
}

func (that *mockGamePlayService) ResetGame(ctx context.Context, playerID string) (*entity.Game, error) {
	args := that.Called(ctx, playerID)
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (that *mockGamePlayService) LeaveGame(ctx context.Context, playerID string) error {
	args := that.Called(ctx, playerID)
	return args.Error(0)
}

func newTestRouter(t *testing.T) (http.Handler, *mockPlayerService, *mockGamePlayService) {
	t.Helper()

	players := &mockPlayerService{}
	gamePlay := &mockGamePlayService{}

	t.Cleanup(func() {
		players.AssertExpectations(t)
		gamePlay.AssertExpectations(t)
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewRouter(NewPingHandler(logger, nil), NewGameHandler(logger, players, gamePlay), nil), players, gamePlay
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func newOngoingGame(t *testing.T) *entity.Game {
	t.Helper()

	game, err := entity.NewGame("123", entity.PrivateType, "", kalah.DefaultPitsPerSide, kalah.DefaultInitialSeeds)
	require.NoError(t, err)

	game.Players = []*entity.Player{
		{ID: "p1", Side: kalah.SideA, GameID: game.ID},
		{ID: "p2", Side: kalah.SideB, GameID: game.ID},
	}
	game.Status = entity.StatusOngoing

	return game
}

func TestPingHandler(t *testing.T) {
	t.Run("Pong", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		rec := serve(router, http.MethodGet, "/ping", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "pong", rec.Body.String())
	})

	t.Run("Storage down", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		ping := NewPingHandler(logger, func(context.Context) error { return io.ErrClosedPipe })

		rec := httptest.NewRecorder()
		ping.PingHandler(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestGameHandler_CreatePlayer(t *testing.T) {
	router, players, _ := newTestRouter(t)

	players.On("CreatePlayer", mock.Anything).Return(&entity.Player{ID: "p1"}, nil).Once()

	rec := serve(router, http.MethodPost, "/players", "")

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"player": {"id": "p1", "side": "A"}}`, rec.Body.String())
}

func TestGameHandler_StartGame(t *testing.T) {
	t.Run("Starts a game and reports the caller's seat", func(t *testing.T) {
		router, _, gamePlay := newTestRouter(t)

		game := newOngoingGame(t)
		gamePlay.On("StartGame", mock.Anything, "p2", entity.PublicType, "").Return(game, nil).Once()

		rec := serve(router, http.MethodPost, "/games", `{"player_id": "p2", "type": "public"}`)

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Game   entity.Game   `json:"game"`
			Player entity.Player `json:"player"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "123", body.Game.ID)
		assert.Equal(t, kalah.SideB, body.Player.Side)
	})

	t.Run("Missing player id", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		rec := serve(router, http.MethodPost, "/games", `{"type": "bot"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error": "bad request body"}`, rec.Body.String())
	})

	t.Run("Unknown type", func(t *testing.T) {
		router, _, gamePlay := newTestRouter(t)

		gamePlay.On("StartGame", mock.Anything, "p1", "tournament", "").
			Return((*entity.Game)(nil), fmt.Errorf("%w: %q", apperror.ErrUnknownGameType, "tournament")).Once()

		rec := serve(router, http.MethodPost, "/games", `{"player_id": "p1", "type": "tournament"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGameHandler_MakeTurn(t *testing.T) {
	t.Run("Turn result is returned", func(t *testing.T) {
		router, _, gamePlay := newTestRouter(t)

		game := newOngoingGame(t)
		result, err := game.MakeTurn(kalah.SideA, 0)
		require.NoError(t, err)

		gamePlay.On("MakeTurn", mock.Anything, "p1", 0).
			Return(&service.TurnResult{Game: game, Result: result}, nil).Once()

		rec := serve(router, http.MethodPost, "/games/turn", `{"player_id": "p1", "pit": 0}`)

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Result kalah.MoveResult `json:"result"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, *result, body.Result)
	})

	t.Run("Missing pit", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		rec := serve(router, http.MethodPost, "/games/turn", `{"player_id": "p1"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	errorCases := []struct {
		name   string
		err    error
		status int
	}{
		{"Illegal move", fmt.Errorf("pit 2: %w", kalah.ErrIllegalMove), http.StatusConflict},
		{"Not your turn", apperror.ErrNotYourTurn, http.StatusConflict},
		{"Finished game", apperror.ErrGameFinished, http.StatusConflict},
		{"Out of range", fmt.Errorf("pit 2: %w", kalah.ErrOutOfRange), http.StatusBadRequest},
		{"No game", apperror.ErrNoActiveGames, http.StatusNotFound},
		{"Unknown player", fmt.Errorf("get player: %w", repository.ErrPlayerNotFound), http.StatusNotFound},
		{"Busy game", fmt.Errorf("failed to modify game: %w", repository.ErrUpdateContention), http.StatusConflict},
		{"Storage failure", fmt.Errorf("failed to update game: %w", io.ErrUnexpectedEOF), http.StatusInternalServerError},
	}

	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			router, _, gamePlay := newTestRouter(t)

			gamePlay.On("MakeTurn", mock.Anything, "p1", 2).Return((*service.TurnResult)(nil), tc.err).Once()

			rec := serve(router, http.MethodPost, "/games/turn", `{"player_id": "p1", "pit": 2}`)

			assert.Equal(t, tc.status, rec.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"error": %q}`, tc.err.Error()), rec.Body.String())
		})
	}
}

func TestGameHandler_GetGame(t *testing.T) {
	t.Run("Existing game", func(t *testing.T) {
		router, _, gamePlay := newTestRouter(t)

		gamePlay.On("GetGameByID", mock.Anything, "123").Return(newOngoingGame(t), nil).Once()

		rec := serve(router, http.MethodGet, "/games/123", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Unknown game", func(t *testing.T) {
		router, _, gamePlay := newTestRouter(t)

		gamePlay.On("GetGameByID", mock.Anything, "404").
			Return((*entity.Game)(nil), fmt.Errorf("lookup: %w", repository.ErrGameNotFound)).Once()

		rec := serve(router, http.MethodGet, "/games/404", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGameHandler_GetMoveLog(t *testing.T) {
	router, _, gamePlay := newTestRouter(t)

	gamePlay.On("GetMoveLog", mock.Anything, "123").Return(nil, nil).Once()

	rec := serve(router, http.MethodGet, "/games/123/log", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"moves": []}`, rec.Body.String())
}

func TestGameHandler_JoinGame(t *testing.T) {
	router, _, gamePlay := newTestRouter(t)

	gamePlay.On("JoinGameByID", mock.Anything, "123", "p3").
		Return((*entity.Game)(nil), apperror.ErrGameIsFull).Once()

	rec := serve(router, http.MethodPost, "/games/123/join", `{"player_id": "p3"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGameHandler_ResetAndLeave(t *testing.T) {
	router, _, gamePlay := newTestRouter(t)

	gamePlay.On("ResetGame", mock.Anything, "p1").Return(newOngoingGame(t), nil).Once()
	gamePlay.On("LeaveGame", mock.Anything, "p1").Return(nil).Once()

	rec := serve(router, http.MethodPost, "/games/reset", `{"player_id": "p1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, http.MethodPost, "/games/leave", `{"player_id": "p1"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
