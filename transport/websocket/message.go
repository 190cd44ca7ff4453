package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/kalah-backend/internal/entity"
	"github.com/rocketscienceinc/kalah-backend/internal/kalah"
)

const (
	actionConnect   = "connect"
	actionNewGame   = "game:new"
	actionJoinGame  = "game:join"
	actionGameTurn  = "game:turn"
	actionGameReset = "game:reset"
	actionGameLeave = "game:leave"
	actionGameLog   = "game:log"
	actionError     = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	PlayerID   string `json:"player_id,omitempty"`
	GameID     string `json:"game_id,omitempty"`
	Type       string `json:"type,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Pit        *int   `json:"pit,omitempty"`
}

type ResponsePayload struct {
	Player     *entity.Player      `json:"player,omitempty"`
	Game       *entity.Game        `json:"game,omitempty"`
	Result     *kalah.MoveResult   `json:"result,omitempty"`
	BotResults []*kalah.MoveResult `json:"bot_results,omitempty"`
	Moves      []kalah.MoveRecord  `json:"moves,omitempty"`
	Error      string              `json:"error,omitempty"`
}
